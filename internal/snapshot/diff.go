package snapshot

import (
	"fmt"

	"github.com/pmezard/go-difflib/difflib"
	"gopkg.in/yaml.v3"
)

// Diff renders two snapshots as YAML and returns their unified diff. An
// empty string means the snapshots carry identical figures.
func Diff(from, to Snapshot) (string, error) {
	a, err := yaml.Marshal(from)
	if err != nil {
		return "", fmt.Errorf("marshal %s: %w", from.Date, err)
	}
	b, err := yaml.Marshal(to)
	if err != nil {
		return "", fmt.Errorf("marshal %s: %w", to.Date, err)
	}

	diff := difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(a)),
		B:        difflib.SplitLines(string(b)),
		FromFile: "snapshot/" + from.Date,
		ToFile:   "snapshot/" + to.Date,
		Context:  3,
	}
	text, err := difflib.GetUnifiedDiffString(diff)
	if err != nil {
		return "", fmt.Errorf("diff snapshots: %w", err)
	}
	return text, nil
}

// Find returns the snapshot for date from history.
func Find(history []Snapshot, date string) (Snapshot, bool) {
	for _, s := range history {
		if s.Date == date {
			return s, true
		}
	}
	return Snapshot{}, false
}
