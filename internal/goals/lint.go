package goals

import (
	"fmt"
	"strings"
	"time"
)

// Issue is a data-quality problem on one goal. Issues never stop metric
// computation; the engine applies its defaults instead.
type Issue struct {
	GoalID  string
	Field   string
	Message string
}

func (i Issue) Error() string {
	id := i.GoalID
	if id == "" {
		id = "(no id)"
	}
	if i.Field == "" {
		return fmt.Sprintf("%s: %s", id, i.Message)
	}
	return fmt.Sprintf("%s: %s: %s", id, i.Field, i.Message)
}

// Issues aggregates lint findings.
type Issues []Issue

func (issues Issues) Error() string {
	parts := make([]string, 0, len(issues))
	for _, i := range issues {
		parts = append(parts, i.Error())
	}
	return strings.Join(parts, "\n")
}

// Lint reports fields the metrics engine will fall back on: missing ids and
// owners, duplicate ids, unrecognised statuses, unparseable or future dates.
func Lint(list []Goal, asOf time.Time) Issues {
	var issues Issues
	loc := asOf.Location()
	seen := make(map[string]int, len(list))

	for idx, g := range list {
		id := strings.TrimSpace(g.ID)
		if id == "" {
			issues = append(issues, Issue{Field: "id", Message: fmt.Sprintf("goal #%d has no id", idx+1)})
		} else {
			seen[id]++
			if seen[id] == 2 {
				issues = append(issues, Issue{GoalID: id, Field: "id", Message: "duplicate id"})
			}
		}
		if !g.HasOwner() {
			issues = append(issues, Issue{GoalID: id, Field: "owner", Message: "no owner; counted as " + Unassigned})
		}
		if strings.TrimSpace(g.Status) != "" && g.State() == StatusUnknown {
			issues = append(issues, Issue{GoalID: id, Field: "status", Message: fmt.Sprintf("unrecognised status %q", g.Status)})
		}

		dates := []struct {
			field string
			raw   string
		}{
			{"dueDate", g.DueDate},
			{"lastUpdated", g.LastUpdated},
			{"created_time", g.CreatedTime},
		}
		for _, d := range dates {
			if strings.TrimSpace(d.raw) == "" {
				continue
			}
			if _, ok := ParseTime(d.raw, loc); !ok {
				issues = append(issues, Issue{GoalID: id, Field: d.field, Message: fmt.Sprintf("unparseable date %q", d.raw)})
			}
		}
		if updated, ok := g.Updated(loc); ok && updated.After(asOf) {
			issues = append(issues, Issue{GoalID: id, Field: "lastUpdated", Message: "in the future; treated as updated today"})
		}
	}
	return issues
}
