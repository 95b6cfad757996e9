package notify

import (
	"fmt"
	"os/exec"
	"runtime"
	"strings"

	"goalpulse/internal/metrics"
)

// Notifier sends desktop notifications.
type Notifier struct {
	Enabled bool
}

// Send shows a notification. On macOS it shells out to osascript; elsewhere,
// or when disabled, it does nothing.
func (n *Notifier) Send(title, message string) error {
	if n == nil || !n.Enabled {
		return nil
	}
	if runtime.GOOS != "darwin" {
		return nil
	}
	return sendMacOSNotification(title, message)
}

func sendMacOSNotification(title, message string) error {
	cmd := exec.Command("osascript", "-e", appleScript(title, message))
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("send notification: %w", err)
	}
	return nil
}

func appleScript(title, message string) string {
	title = strings.ReplaceAll(title, `"`, `\"`)
	message = strings.ReplaceAll(message, `"`, `\"`)
	return fmt.Sprintf(`display notification "%s" with title "%s"`, message, title)
}

// FormatHealthChange formats a company health status transition.
func FormatHealthChange(previous, current metrics.RiskLevel, score int) (title, message string) {
	switch current {
	case metrics.LevelRed:
		title = "🔴 Goal health is red"
	case metrics.LevelAmber:
		title = "🟠 Goal health is amber"
	default:
		title = "🟢 Goal health is green"
	}
	if previous == "" {
		message = fmt.Sprintf("Health score %d (%s)", score, current)
	} else {
		message = fmt.Sprintf("Health score %d: %s → %s", score, previous, current)
	}
	return title, message
}

// FormatRiskDigest summarises the executive view in one line per section.
func FormatRiskDigest(exec metrics.ExecutiveMetrics) (title, message string) {
	title = fmt.Sprintf("📊 Goal health %d (%s)", exec.HealthScore, exec.HealthStatus)

	lines := []string{
		fmt.Sprintf("Risks: %d critical, %d warning, %d caution",
			exec.RiskCounts.Critical, exec.RiskCounts.Warning, exec.RiskCounts.Caution),
	}
	if n := len(exec.OverdueHighPriority); n > 0 {
		lines = append(lines, fmt.Sprintf("High priority overdue: %d", n))
	}
	if n := len(exec.Blocked); n > 0 {
		lines = append(lines, fmt.Sprintf("Blocked: %d", n))
	}
	for _, r := range exec.TopRisks {
		lines = append(lines, fmt.Sprintf("- [%s] %s: %s", r.Type, r.Goal.Title, r.Message))
	}
	return title, strings.Join(lines, "\n")
}
