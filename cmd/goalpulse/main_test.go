package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"goalpulse/internal/dashboard"
	"goalpulse/internal/metrics"
	"goalpulse/internal/snapshot"
)

func TestExtractWorkspaceFlag(t *testing.T) {
	cases := []struct {
		args      []string
		workspace string
		remaining []string
	}{
		{[]string{"dashboard", "--workspace", "/tmp/ws", "--json"}, "/tmp/ws", []string{"dashboard", "--json"}},
		{[]string{"--workspace=/tmp/ws", "trends"}, "/tmp/ws", []string{"trends"}},
		{[]string{"metrics", "company"}, "", []string{"metrics", "company"}},
	}
	for _, tc := range cases {
		ws, remaining, err := extractWorkspaceFlag(tc.args)
		if err != nil {
			t.Fatalf("%v: %v", tc.args, err)
		}
		if ws != tc.workspace || strings.Join(remaining, " ") != strings.Join(tc.remaining, " ") {
			t.Errorf("%v: got %q %v", tc.args, ws, remaining)
		}
	}

	if _, _, err := extractWorkspaceFlag([]string{"dashboard", "--workspace"}); err == nil {
		t.Error("expected error for missing value")
	}
}

func TestPrintDashboard(t *testing.T) {
	d := dashboard.Dashboard{
		AsOf: time.Date(2026, 1, 14, 12, 0, 0, 0, time.UTC),
		Company: metrics.CompanyMetrics{
			TotalPlanned: 4,
			HealthScore:  55,
			HealthStatus: metrics.LevelAmber,
		},
		Squads: []metrics.SquadMetrics{{Name: "Core", TotalGoals: 2, RiskLevel: metrics.LevelRed}},
		Trends: snapshot.Trends{
			CompletionTrend: snapshot.Up,
			OverdueTrend:    snapshot.Neutral,
			HealthTrend:     snapshot.Down,
			VelocityTrend:   snapshot.Neutral,
			WeekOverWeek:    &snapshot.WeekOverWeek{CompletionDelta: 2, HealthDelta: -3, From: "2026-01-07", To: "2026-01-14"},
		},
	}
	var buf bytes.Buffer
	printDashboard(&buf, d)
	out := buf.String()
	for _, want := range []string{
		"Health: 55 (amber)",
		"Trends: completion up, overdue neutral, health down, velocity neutral",
		"completed +2, overdue +0, health -3",
		"Core: 2 goals, 0 completed, risk red",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestClockForUsesConfiguredZone(t *testing.T) {
	loc := time.FixedZone("UTC+13", 13*60*60)
	now, err := clockFor("", loc)
	if err != nil {
		t.Fatalf("clockFor: %v", err)
	}
	if got := now().Location(); got != loc {
		t.Fatalf("location = %v, want %v", got, loc)
	}

	fixed, err := clockFor("2026-01-14", loc)
	if err != nil {
		t.Fatalf("clockFor as-of: %v", err)
	}
	if got := fixed().Format(time.RFC3339); got != "2026-01-14T00:00:00+13:00" {
		t.Fatalf("as-of = %s", got)
	}
	if _, err := clockFor("soon", loc); err == nil {
		t.Fatal("expected error for bad --as-of")
	}
}
