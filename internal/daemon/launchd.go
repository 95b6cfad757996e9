package daemon

import (
	"crypto/sha256"
	"fmt"
	"html"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"goalpulse/internal/workspace"
)

// LaunchAgent describes the macOS LaunchAgent that keeps `goalpulse daemon run`
// alive for one workspace.
type LaunchAgent struct {
	Label     string
	PlistPath string
	LogPath   string
	Program   []string
	logDir    string
}

// WorkspaceHash is a short stable hash of the workspace root.
func WorkspaceHash(wsRoot string) string {
	h := sha256.Sum256([]byte(wsRoot))
	return fmt.Sprintf("%x", h[:4])
}

// NewLaunchAgent resolves the agent for ws, running binaryPath.
func NewLaunchAgent(ws *workspace.Workspace, binaryPath string) (*LaunchAgent, error) {
	if ws == nil {
		return nil, fmt.Errorf("workspace is nil")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("get home dir: %w", err)
	}
	label := "com.goalpulse." + WorkspaceHash(ws.Root)
	agent := &LaunchAgent{
		Label:     label,
		PlistPath: filepath.Join(home, "Library", "LaunchAgents", label+".plist"),
		LogPath:   filepath.Join(ws.LogDir, "goalpulse.log"),
		logDir:    ws.LogDir,
	}
	if binaryPath != "" {
		abs, err := filepath.Abs(binaryPath)
		if err != nil {
			return nil, fmt.Errorf("resolve binary path: %w", err)
		}
		agent.Program = []string{abs, "daemon", "run", "--workspace", ws.Root}
	}
	return agent, nil
}

// Plist renders the agent definition.
func (a *LaunchAgent) Plist() string {
	var args strings.Builder
	for _, arg := range a.Program {
		fmt.Fprintf(&args, "\t\t<string>%s</string>\n", html.EscapeString(arg))
	}
	logPath := html.EscapeString(a.LogPath)
	return fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE plist PUBLIC "-//Apple//DTD PLIST 1.0//EN" "http://www.apple.com/DTDs/PropertyList-1.0.dtd">
<plist version="1.0">
<dict>
	<key>Label</key>
	<string>%s</string>
	<key>ProgramArguments</key>
	<array>
%s	</array>
	<key>StandardOutPath</key>
	<string>%s</string>
	<key>StandardErrorPath</key>
	<string>%s</string>
	<key>KeepAlive</key>
	<true/>
	<key>RunAtLoad</key>
	<true/>
</dict>
</plist>
`, a.Label, args.String(), logPath, logPath)
}

// Install writes the plist and the log directory.
func (a *LaunchAgent) Install() error {
	if len(a.Program) == 0 {
		return fmt.Errorf("launch agent has no program")
	}
	if err := os.MkdirAll(a.logDir, 0o755); err != nil {
		return fmt.Errorf("ensure log dir: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(a.PlistPath), 0o755); err != nil {
		return fmt.Errorf("ensure LaunchAgents dir: %w", err)
	}
	if err := os.WriteFile(a.PlistPath, []byte(a.Plist()), 0o644); err != nil {
		return fmt.Errorf("write plist: %w", err)
	}
	return nil
}

// Uninstall removes the plist.
func (a *LaunchAgent) Uninstall() error {
	if err := os.Remove(a.PlistPath); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("plist not found: %s", a.PlistPath)
		}
		return fmt.Errorf("remove plist: %w", err)
	}
	return nil
}

// Start loads the agent with launchctl.
func (a *LaunchAgent) Start() error {
	if _, err := os.Stat(a.PlistPath); os.IsNotExist(err) {
		return fmt.Errorf("plist not found: %s (run 'goalpulse daemon install' first)", a.PlistPath)
	}
	output, err := exec.Command("launchctl", "load", a.PlistPath).CombinedOutput()
	if err != nil {
		return fmt.Errorf("launchctl load failed: %w\nOutput: %s", err, strings.TrimSpace(string(output)))
	}
	return nil
}

// Stop unloads the agent. An agent that is not loaded is not an error.
func (a *LaunchAgent) Stop() error {
	output, err := exec.Command("launchctl", "unload", a.PlistPath).CombinedOutput()
	if err != nil {
		out := strings.TrimSpace(string(output))
		if !strings.Contains(out, "Could not find specified service") {
			return fmt.Errorf("launchctl unload failed: %w\nOutput: %s", err, out)
		}
	}
	return nil
}

// IsRunning reports whether launchctl lists the agent.
func (a *LaunchAgent) IsRunning() (bool, error) {
	output, err := exec.Command("launchctl", "list").CombinedOutput()
	if err != nil {
		return false, fmt.Errorf("launchctl list failed: %w", err)
	}
	return strings.Contains(string(output), a.Label), nil
}
