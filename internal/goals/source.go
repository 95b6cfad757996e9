package goals

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Source fetches the current goal list from an external store.
type Source interface {
	Name() string
	Fetch(ctx context.Context) ([]Goal, error)
}

// FileSource reads goals exported to a JSON or YAML file. The file holds
// either a top-level list or a `goals:` list.
type FileSource struct {
	Path string
}

func (s *FileSource) Name() string { return "file" }

type goalFile struct {
	Goals []Goal `json:"goals" yaml:"goals"`
}

func (s *FileSource) Fetch(ctx context.Context) ([]Goal, error) {
	if s.Path == "" {
		return nil, fmt.Errorf("goals file path is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("read goals: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	switch strings.ToLower(filepath.Ext(s.Path)) {
	case ".yml", ".yaml":
		return decodeYAML(data)
	default:
		return decodeJSON(data)
	}
}

func decodeJSON(data []byte) ([]Goal, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return []Goal{}, nil
	}
	if trimmed[0] == '[' {
		var list []Goal
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return nil, fmt.Errorf("decode goals: %w", err)
		}
		return nonNil(list), nil
	}
	var file goalFile
	if err := json.Unmarshal(trimmed, &file); err != nil {
		return nil, fmt.Errorf("decode goals: %w", err)
	}
	return nonNil(file.Goals), nil
}

func decodeYAML(data []byte) ([]Goal, error) {
	var file goalFile
	if err := yaml.Unmarshal(data, &file); err == nil && file.Goals != nil {
		return file.Goals, nil
	}

	var list []Goal
	if err := yaml.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("goals file must contain `goals:` list or a top-level list: %w", err)
	}
	return nonNil(list), nil
}

func nonNil(list []Goal) []Goal {
	if list == nil {
		return []Goal{}
	}
	return list
}

// StaticSource returns a fixed goal list. It backs tests and one-off
// computations over already-fetched data.
type StaticSource struct {
	Goals []Goal
	Err   error
}

func (s *StaticSource) Name() string { return "static" }

func (s *StaticSource) Fetch(ctx context.Context) ([]Goal, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.Err != nil {
		return nil, s.Err
	}
	out := make([]Goal, len(s.Goals))
	copy(out, s.Goals)
	return out, nil
}
