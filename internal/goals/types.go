package goals

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultTitle is shown for goals without a title.
	DefaultTitle = "Untitled"
	// Unassigned is the owner name used when a goal has no owner.
	Unassigned = "Unassigned"
)

// Goal is a normalized goal record handed to the metrics engine.
// Fields mirror the external tracker and may be missing or malformed;
// accessors apply the defaults.
type Goal struct {
	ID           string `json:"id" yaml:"id"`
	Title        string `json:"goalTitle" yaml:"goalTitle"`
	Owner        string `json:"owner" yaml:"owner"`
	Squad        string `json:"squad,omitempty" yaml:"squad,omitempty"`
	ParentGoal   string `json:"parentGoal,omitempty" yaml:"parentGoal,omitempty"`
	Status       string `json:"status" yaml:"status"`
	Priority     string `json:"priority,omitempty" yaml:"priority,omitempty"`
	DueDate      string `json:"dueDate,omitempty" yaml:"dueDate,omitempty"`
	LastUpdated  string `json:"lastUpdated,omitempty" yaml:"lastUpdated,omitempty"`
	CreatedTime  string `json:"created_time,omitempty" yaml:"created_time,omitempty"`
	EffortPoints Effort `json:"effortPoints" yaml:"effortPoints"`
	NotionURL    string `json:"notionUrl,omitempty" yaml:"notionUrl,omitempty"`
	SourceURL    string `json:"sourceUrl,omitempty" yaml:"sourceUrl,omitempty"`
}

// DisplayTitle returns the goal title or DefaultTitle.
func (g Goal) DisplayTitle() string {
	if t := strings.TrimSpace(g.Title); t != "" {
		return t
	}
	return DefaultTitle
}

// OwnerName returns the owner or Unassigned.
func (g Goal) OwnerName() string {
	if o := strings.TrimSpace(g.Owner); o != "" {
		return o
	}
	return Unassigned
}

// HasOwner reports whether the goal names a real owner.
func (g Goal) HasOwner() bool {
	o := strings.TrimSpace(g.Owner)
	return o != "" && o != Unassigned
}

// URL returns the deep link to the goal in the external tracker.
func (g Goal) URL() string {
	if g.NotionURL != "" {
		return g.NotionURL
	}
	return g.SourceURL
}

// Due returns the parsed due date.
func (g Goal) Due(loc *time.Location) (time.Time, bool) {
	return ParseTime(g.DueDate, loc)
}

// Updated returns the parsed last-updated time.
func (g Goal) Updated(loc *time.Location) (time.Time, bool) {
	return ParseTime(g.LastUpdated, loc)
}

// Created returns the parsed creation time.
func (g Goal) Created(loc *time.Location) (time.Time, bool) {
	return ParseTime(g.CreatedTime, loc)
}

// Effort is a tolerant effort-point value. Numbers and numeric strings are
// accepted; anything else decodes to zero.
type Effort float64

// Float returns the effort as a float64.
func (e Effort) Float() float64 { return float64(e) }

func (e *Effort) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		*e = 0
		return nil
	}
	*e = effortFrom(raw)
	return nil
}

func (e *Effort) UnmarshalYAML(node *yaml.Node) error {
	var raw any
	if err := node.Decode(&raw); err != nil {
		*e = 0
		return nil
	}
	*e = effortFrom(raw)
	return nil
}

func effortFrom(raw any) Effort {
	switch v := raw.(type) {
	case float64:
		return finiteEffort(v)
	case int:
		return Effort(v)
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0
		}
		return finiteEffort(f)
	default:
		return 0
	}
}

// NaN and infinities cannot be marshalled to JSON.
func finiteEffort(f float64) Effort {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return Effort(f)
}

var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseTime parses the date formats the tracker emits. Values without a zone
// are interpreted in loc.
func ParseTime(value string, loc *time.Location) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	if loc == nil {
		loc = time.UTC
	}
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// StartOfDay truncates t to midnight in its own location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// NeverUpdatedDays is the day count reported for goals that were never updated.
const NeverUpdatedDays = 999

// Staleness is the number of whole days since a goal was last updated.
// The zero value is "unknown".
type Staleness struct {
	days  int
	known bool
}

// KnownStaleness returns a staleness of the given number of days.
func KnownStaleness(days int) Staleness {
	return Staleness{days: days, known: true}
}

// UnknownStaleness returns the staleness of a goal that was never updated.
func UnknownStaleness() Staleness {
	return Staleness{}
}

// Days returns the day count and whether it is known.
func (s Staleness) Days() (int, bool) {
	return s.days, s.known
}

// Known reports whether the goal has a last-updated time.
func (s Staleness) Known() bool { return s.known }

// Exceeds reports whether the staleness is strictly greater than limit.
// Unknown staleness exceeds every limit.
func (s Staleness) Exceeds(limit int) bool {
	if !s.known {
		return true
	}
	return s.days > limit
}

// Within reports whether the goal was updated no more than limit days ago.
func (s Staleness) Within(limit int) bool {
	return s.known && s.days <= limit
}

// Less orders staleness values; unknown sorts as the most stale.
func (s Staleness) Less(other Staleness) bool {
	switch {
	case !s.known:
		return false
	case !other.known:
		return true
	default:
		return s.days < other.days
	}
}

// Report returns the day count for display, using NeverUpdatedDays when unknown.
func (s Staleness) Report() int {
	if !s.known {
		return NeverUpdatedDays
	}
	return s.days
}

func (s Staleness) String() string {
	if !s.known {
		return "never"
	}
	return fmt.Sprintf("%dd", s.days)
}

func (s Staleness) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Report())
}
