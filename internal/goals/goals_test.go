package goals

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"gopkg.in/yaml.v3"
)

func TestParseStatusVocabularies(t *testing.T) {
	cases := map[string]Status{
		"In Progress": StatusActive,
		"in review":   StatusActive,
		"ACTIVE":      StatusActive,
		"Blocked":     StatusBlocked,
		"on hold":     StatusBlocked,
		"Waiting":     StatusBlocked,
		"done":        StatusCompleted,
		"Complete":    StatusCompleted,
		"Completed":   StatusCompleted,
		"SHIPPED":     StatusCompleted,
		"Not Started": StatusNotStarted,
		"backlog":     StatusNotStarted,
		"To Do":       StatusNotStarted,
		"":            StatusUnknown,
		"Parked":      StatusUnknown,
		"  done  ":    StatusCompleted,
	}
	for raw, want := range cases {
		if got := ParseStatus(raw); got != want {
			t.Errorf("ParseStatus(%q) = %v, want %v", raw, got, want)
		}
	}
}

func TestGoalDefaults(t *testing.T) {
	var g Goal
	if got := g.DisplayTitle(); got != DefaultTitle {
		t.Fatalf("DisplayTitle = %q", got)
	}
	if got := g.OwnerName(); got != Unassigned {
		t.Fatalf("OwnerName = %q", got)
	}
	if g.HasOwner() {
		t.Fatalf("empty owner should not count as owned")
	}
	g.Owner = Unassigned
	if g.HasOwner() {
		t.Fatalf("literal Unassigned should not count as owned")
	}
	g.SourceURL = "https://example.com/b"
	if g.URL() != "https://example.com/b" {
		t.Fatalf("URL fallback = %q", g.URL())
	}
	g.NotionURL = "https://example.com/a"
	if g.URL() != "https://example.com/a" {
		t.Fatalf("URL = %q", g.URL())
	}
}

func TestEffortDecodesDefensively(t *testing.T) {
	var list []Goal
	data := `[{"effortPoints": 5}, {"effortPoints": "3.5"}, {"effortPoints": "lots"}, {"effortPoints": null}, {},
		{"effortPoints": "NaN"}, {"effortPoints": "Infinity"}, {"effortPoints": "-Inf"}]`
	if err := json.Unmarshal([]byte(data), &list); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	want := []float64{5, 3.5, 0, 0, 0, 0, 0, 0}
	for i, g := range list {
		if g.EffortPoints.Float() != want[i] {
			t.Errorf("goal %d effort = %v, want %v", i, g.EffortPoints, want[i])
		}
	}
}

func TestEffortYAMLNonFinite(t *testing.T) {
	var list []Goal
	data := "- effortPoints: .nan\n- effortPoints: .inf\n- effortPoints: -.inf\n- effortPoints: 2\n"
	if err := yaml.Unmarshal([]byte(data), &list); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	want := []float64{0, 0, 0, 2}
	for i, g := range list {
		if g.EffortPoints.Float() != want[i] {
			t.Errorf("goal %d effort = %v, want %v", i, g.EffortPoints, want[i])
		}
	}
	if _, err := json.Marshal(list); err != nil {
		t.Fatalf("marshal: %v", err)
	}
}

func TestParseTimeLayouts(t *testing.T) {
	loc := time.UTC
	for _, v := range []string{
		"2026-01-17",
		"2026-01-17T10:00:00Z",
		"2026-01-17T10:00:00.123Z",
		"2026-01-17T10:00:00",
	} {
		if _, ok := ParseTime(v, loc); !ok {
			t.Errorf("ParseTime(%q) failed", v)
		}
	}
	if _, ok := ParseTime("next week", loc); ok {
		t.Errorf("garbage should not parse")
	}
	if _, ok := ParseTime("", loc); ok {
		t.Errorf("empty should not parse")
	}
}

func TestStaleness(t *testing.T) {
	unknown := UnknownStaleness()
	if !unknown.Exceeds(7) || !unknown.Exceeds(10000) {
		t.Fatalf("unknown staleness should exceed every limit")
	}
	if unknown.Within(7) {
		t.Fatalf("unknown staleness is never recent")
	}
	if unknown.Report() != NeverUpdatedDays {
		t.Fatalf("Report = %d", unknown.Report())
	}
	three := KnownStaleness(3)
	if three.Exceeds(7) || !three.Within(7) {
		t.Fatalf("3 days should be recent")
	}
	if !three.Less(unknown) || unknown.Less(three) {
		t.Fatalf("unknown should sort as most stale")
	}
	data, err := json.Marshal(unknown)
	if err != nil || string(data) != "999" {
		t.Fatalf("marshal unknown = %s, %v", data, err)
	}
}

func TestFileSourceFormats(t *testing.T) {
	dir := t.TempDir()

	jsonList := filepath.Join(dir, "list.json")
	if err := os.WriteFile(jsonList, []byte(`[{"id":"g1","owner":"Alice","status":"Done"}]`), 0o644); err != nil {
		t.Fatal(err)
	}
	jsonWrapped := filepath.Join(dir, "wrapped.json")
	if err := os.WriteFile(jsonWrapped, []byte(`{"goals":[{"id":"g1"},{"id":"g2"}]}`), 0o644); err != nil {
		t.Fatal(err)
	}
	yamlFile := filepath.Join(dir, "goals.yml")
	if err := os.WriteFile(yamlFile, []byte("goals:\n  - id: g1\n    owner: Bob\n    effortPoints: 8\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	ctx := context.Background()
	cases := map[string]int{jsonList: 1, jsonWrapped: 2, yamlFile: 1}
	for path, want := range cases {
		got, err := (&FileSource{Path: path}).Fetch(ctx)
		if err != nil {
			t.Fatalf("Fetch(%s): %v", path, err)
		}
		if len(got) != want {
			t.Fatalf("Fetch(%s) len = %d, want %d", path, len(got), want)
		}
	}

	got, _ := (&FileSource{Path: yamlFile}).Fetch(ctx)
	if got[0].Owner != "Bob" || got[0].EffortPoints != 8 {
		t.Fatalf("unexpected yaml goal: %#v", got[0])
	}
}

func TestFileSourceMissingFile(t *testing.T) {
	_, err := (&FileSource{Path: filepath.Join(t.TempDir(), "missing.json")}).Fetch(context.Background())
	if err == nil {
		t.Fatalf("expected error for missing goals file")
	}
}

func TestFileSourceHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := (&FileSource{Path: "goals.json"}).Fetch(ctx)
	if err == nil {
		t.Fatalf("expected context error")
	}
}
