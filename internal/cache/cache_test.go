package cache

import (
	"testing"
	"time"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func TestTTLExpiry(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 1, 14, 12, 0, 0, 0, time.UTC)}
	c, err := New[int](4, time.Minute, clock.Now)
	if err != nil {
		t.Fatal(err)
	}

	c.Set("dashboard", 42)
	if v, ok := c.Get("dashboard"); !ok || v != 42 {
		t.Fatalf("Get = %v, %v", v, ok)
	}

	clock.Advance(59 * time.Second)
	if _, ok := c.Get("dashboard"); !ok {
		t.Fatalf("entry expired early")
	}

	clock.Advance(time.Second)
	if _, ok := c.Get("dashboard"); ok {
		t.Fatalf("entry should expire at ttl")
	}
}

func TestTTLInvalidateAndPurge(t *testing.T) {
	c, err := New[string](0, 0, nil)
	if err != nil {
		t.Fatal(err)
	}
	if c.TTL() != DefaultTTL {
		t.Fatalf("ttl = %v", c.TTL())
	}

	c.Set("a", "x")
	c.Set("b", "y")
	c.Invalidate("a")
	if _, ok := c.Get("a"); ok {
		t.Fatalf("invalidated entry still present")
	}
	if _, ok := c.Get("b"); !ok {
		t.Fatalf("unrelated entry dropped")
	}
	c.Purge()
	if _, ok := c.Get("b"); ok {
		t.Fatalf("purge left entries")
	}
}

func TestTTLEvictsLeastRecent(t *testing.T) {
	c, err := New[int](2, time.Hour, nil)
	if err != nil {
		t.Fatal(err)
	}
	c.Set("a", 1)
	c.Set("b", 2)
	c.Get("a")
	c.Set("c", 3)
	if _, ok := c.Get("b"); ok {
		t.Fatalf("expected b evicted")
	}
	if _, ok := c.Get("a"); !ok {
		t.Fatalf("expected a retained")
	}
}
