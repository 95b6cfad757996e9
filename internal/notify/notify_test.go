package notify

import (
	"strings"
	"testing"

	"goalpulse/internal/metrics"
)

func TestFormatHealthChange(t *testing.T) {
	title, msg := FormatHealthChange(metrics.LevelGreen, metrics.LevelRed, 42)
	if !strings.Contains(title, "red") {
		t.Errorf("title = %q", title)
	}
	if msg != "Health score 42: green → red" {
		t.Errorf("message = %q", msg)
	}

	_, msg = FormatHealthChange("", metrics.LevelAmber, 65)
	if msg != "Health score 65 (amber)" {
		t.Errorf("first-run message = %q", msg)
	}
}

func TestFormatRiskDigest(t *testing.T) {
	exec := metrics.ExecutiveMetrics{
		HealthScore:  55,
		HealthStatus: metrics.LevelAmber,
		RiskCounts:   metrics.RiskCounts{Critical: 1, Warning: 2},
		Blocked:      []metrics.GoalRef{{ID: "b"}},
		TopRisks: []metrics.GoalRisk{{
			Risk: metrics.Risk{Type: metrics.RiskCritical, Message: "High priority overdue"},
			Goal: metrics.GoalRef{ID: "a", Title: "Launch billing"},
		}},
	}
	title, msg := FormatRiskDigest(exec)
	if !strings.Contains(title, "55 (amber)") {
		t.Errorf("title = %q", title)
	}
	for _, want := range []string{
		"Risks: 1 critical, 2 warning, 0 caution",
		"Blocked: 1",
		"- [critical] Launch billing: High priority overdue",
	} {
		if !strings.Contains(msg, want) {
			t.Errorf("digest missing %q:\n%s", want, msg)
		}
	}
	if strings.Contains(msg, "High priority overdue:") {
		t.Errorf("empty section rendered:\n%s", msg)
	}
}

func TestAppleScriptEscapesQuotes(t *testing.T) {
	got := appleScript(`say "hi"`, `a "b"`)
	want := `display notification "a \"b\"" with title "say \"hi\""`
	if got != want {
		t.Errorf("script = %s", got)
	}
}

func TestDisabledNotifierIsNoop(t *testing.T) {
	var n *Notifier
	if err := n.Send("t", "m"); err != nil {
		t.Fatal(err)
	}
	if err := (&Notifier{}).Send("t", "m"); err != nil {
		t.Fatal(err)
	}
}
