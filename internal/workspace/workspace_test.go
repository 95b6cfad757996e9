package workspace

import (
	"os"
	"path/filepath"
	"testing"
)

func TestResolveLayout(t *testing.T) {
	root := t.TempDir()
	ws, err := Resolve(root)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if ws.GoalsPath != filepath.Join(root, "goals.json") {
		t.Errorf("goals path = %s", ws.GoalsPath)
	}
	if ws.SnapshotsDir != filepath.Join(root, "snapshots") {
		t.Errorf("snapshots dir = %s", ws.SnapshotsDir)
	}
	if ws.AuditDBPath != filepath.Join(root, "audit", "audit.sqlite") {
		t.Errorf("audit path = %s", ws.AuditDBPath)
	}

	if err := ws.EnsureDirs(); err != nil {
		t.Fatalf("EnsureDirs: %v", err)
	}
	for _, dir := range []string{ws.SnapshotsDir, ws.AuditDir} {
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			t.Errorf("expected dir %s", dir)
		}
	}
}

func TestResolveRejectsFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(file, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Resolve(file); err == nil {
		t.Fatal("expected error for file root")
	}
	if _, err := Resolve(" "); err == nil {
		t.Fatal("expected error for empty root")
	}
}

func TestResolvePath(t *testing.T) {
	root := t.TempDir()
	ws, err := Resolve(root)
	if err != nil {
		t.Fatal(err)
	}
	got, err := ws.ResolvePath("data/goals.yml")
	if err != nil {
		t.Fatal(err)
	}
	if got != filepath.Join(root, "data", "goals.yml") {
		t.Errorf("relative = %s", got)
	}
	abs := filepath.Join(root, "elsewhere.json")
	if got, _ := ws.ResolvePath(abs); got != abs {
		t.Errorf("absolute = %s", got)
	}
	if got, _ := ws.ResolvePath(""); got != "" {
		t.Errorf("empty = %s", got)
	}
}
