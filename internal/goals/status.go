package goals

import "strings"

// Status is the lifecycle state derived from a goal's free-text status.
type Status int

const (
	StatusUnknown Status = iota
	StatusActive
	StatusBlocked
	StatusCompleted
	StatusNotStarted
)

// Vocabularies matched case-insensitively by ParseStatus.
var (
	ActiveStatuses     = []string{"In Progress", "In Review", "Active"}
	BlockedStatuses    = []string{"Blocked", "On Hold", "Waiting"}
	CompletedStatuses  = []string{"Done", "Complete", "Completed", "Shipped"}
	NotStartedStatuses = []string{"Not Started", "Backlog", "To Do"}
)

var statusIndex = buildStatusIndex()

func buildStatusIndex() map[string]Status {
	idx := make(map[string]Status)
	add := func(status Status, names []string) {
		for _, name := range names {
			idx[strings.ToLower(name)] = status
		}
	}
	add(StatusActive, ActiveStatuses)
	add(StatusBlocked, BlockedStatuses)
	add(StatusCompleted, CompletedStatuses)
	add(StatusNotStarted, NotStartedStatuses)
	return idx
}

// ParseStatus maps a raw status string onto a Status. Values outside the
// known vocabularies map to StatusUnknown.
func ParseStatus(raw string) Status {
	if s, ok := statusIndex[strings.ToLower(strings.TrimSpace(raw))]; ok {
		return s
	}
	return StatusUnknown
}

func (s Status) String() string {
	switch s {
	case StatusActive:
		return "active"
	case StatusBlocked:
		return "blocked"
	case StatusCompleted:
		return "completed"
	case StatusNotStarted:
		return "not_started"
	default:
		return "unknown"
	}
}

// State returns the parsed status of the goal.
func (g Goal) State() Status {
	return ParseStatus(g.Status)
}
