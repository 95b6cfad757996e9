package audit

import (
	"encoding/json"
	"path/filepath"
	"testing"
)

func TestLoggerWritesAndTails(t *testing.T) {
	logger := NewLogger(filepath.Join(t.TempDir(), "audit", "audit.sqlite"))

	for i, eventType := range []string{"dashboard_refresh_started", "dashboard_refresh_finished", "daemon_stopped"} {
		if err := logger.LogEvent("goalpulse", eventType, map[string]any{"seq": i}); err != nil {
			t.Fatalf("LogEvent %s: %v", eventType, err)
		}
	}

	events, err := logger.Tail(2)
	if err != nil {
		t.Fatalf("Tail: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].Type != "dashboard_refresh_finished" || events[1].Type != "daemon_stopped" {
		t.Fatalf("unexpected order: %s, %s", events[0].Type, events[1].Type)
	}
	var payload struct {
		Seq int `json:"seq"`
	}
	if err := json.Unmarshal(events[1].Payload, &payload); err != nil {
		t.Fatal(err)
	}
	if payload.Seq != 2 {
		t.Fatalf("payload seq = %d", payload.Seq)
	}
	if events[0].Actor != "goalpulse" || events[0].TS.IsZero() {
		t.Fatalf("event = %+v", events[0])
	}
}

func TestLogEventUsesEnvPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "env.sqlite")
	t.Setenv("GOALPULSE_AUDIT_DB", path)

	if err := LogEvent("cli", "init", nil); err != nil {
		t.Fatal(err)
	}
	events, err := NewLogger(path).Tail(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 1 || events[0].Type != "init" {
		t.Fatalf("events = %+v", events)
	}
}

func TestTailEmptyLog(t *testing.T) {
	events, err := NewLogger(filepath.Join(t.TempDir(), "audit.sqlite")).Tail(0)
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 0 {
		t.Fatalf("expected no events, got %d", len(events))
	}
}
