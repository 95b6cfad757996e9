package daemon

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFileWatcher(t *testing.T) {
	path := filepath.Join(t.TempDir(), "goals.json")
	w := NewFileWatcher(path)

	changed, err := w.Changed()
	if err != nil {
		t.Fatalf("missing file: %v", err)
	}
	if changed {
		t.Error("missing file should not report a change")
	}

	if err := os.WriteFile(path, []byte(`[]`), 0o644); err != nil {
		t.Fatal(err)
	}
	if changed, _ := w.Changed(); !changed {
		t.Error("expected change on first sighting")
	}
	if changed, _ := w.Changed(); changed {
		t.Error("expected no change without modification")
	}
	if w.State() == nil || w.State().Hash == "" {
		t.Fatal("expected recorded state")
	}

	// Same bytes rewritten: hash unchanged.
	if err := os.WriteFile(path, []byte(`[]`), 0o644); err != nil {
		t.Fatal(err)
	}
	if changed, _ := w.Changed(); changed {
		t.Error("rewrite with identical content should not count")
	}

	if err := os.WriteFile(path, []byte(`[{"id":"g1"}]`), 0o644); err != nil {
		t.Fatal(err)
	}
	if changed, _ := w.Changed(); !changed {
		t.Error("expected change after modification")
	}

	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}
	if changed, _ := w.Changed(); !changed {
		t.Error("deletion should count as a change")
	}
	if changed, _ := w.Changed(); changed {
		t.Error("deletion should be reported once")
	}
}

func TestLaunchAgentPlist(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	root := t.TempDir()
	ws := newTestWorkspace(t, root)

	agent, err := NewLaunchAgent(ws, "/usr/local/bin/goalpulse")
	if err != nil {
		t.Fatal(err)
	}
	if agent.Label != "com.goalpulse."+WorkspaceHash(ws.Root) {
		t.Errorf("label = %s", agent.Label)
	}
	plist := agent.Plist()
	for _, want := range []string{
		"<string>/usr/local/bin/goalpulse</string>",
		"<string>daemon</string>",
		"<string>" + ws.Root + "</string>",
		"goalpulse.log",
	} {
		if !contains(plist, want) {
			t.Errorf("plist missing %q", want)
		}
	}

	if err := agent.Install(); err != nil {
		t.Fatalf("Install: %v", err)
	}
	if _, err := os.Stat(agent.PlistPath); err != nil {
		t.Fatalf("plist not written: %v", err)
	}
	if err := agent.Uninstall(); err != nil {
		t.Fatalf("Uninstall: %v", err)
	}
	if err := agent.Uninstall(); err == nil {
		t.Error("second uninstall should fail")
	}
}
