package goals

import (
	"strings"
	"testing"
	"time"
)

func TestLint(t *testing.T) {
	asOf := time.Date(2026, 1, 14, 12, 0, 0, 0, time.UTC)
	list := []Goal{
		{ID: "ok", Owner: "Ann", Status: "In Progress", DueDate: "2026-02-01", LastUpdated: "2026-01-10"},
		{ID: "dup", Owner: "Ann", Status: "Done"},
		{ID: "dup", Owner: "Bo", Status: "Done"},
		{Owner: "Cy", Status: "Paused"},
		{ID: "dates", Owner: "Unassigned", DueDate: "next week", LastUpdated: "2026-01-20"},
	}

	issues := Lint(list, asOf)
	got := issues.Error()
	for _, want := range []string{
		"dup: id: duplicate id",
		"(no id): id: goal #4 has no id",
		`(no id): status: unrecognised status "Paused"`,
		"dates: owner: no owner; counted as Unassigned",
		`dates: dueDate: unparseable date "next week"`,
		"dates: lastUpdated: in the future",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("lint output missing %q:\n%s", want, got)
		}
	}
	for _, i := range issues {
		if i.GoalID == "ok" {
			t.Errorf("clean goal flagged: %v", i)
		}
	}
	if len(issues) != 6 {
		t.Errorf("expected 6 issues, got %d:\n%s", len(issues), got)
	}
}

func TestLintClean(t *testing.T) {
	asOf := time.Date(2026, 1, 14, 12, 0, 0, 0, time.UTC)
	if issues := Lint([]Goal{{ID: "a", Owner: "Ann", Status: "Done", LastUpdated: "2026-01-14"}}, asOf); len(issues) != 0 {
		t.Fatalf("unexpected issues: %v", issues)
	}
}
