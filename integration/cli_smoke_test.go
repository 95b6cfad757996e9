package integration_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"goalpulse/integration/harness"
)

const (
	weekAgo  = "2026-01-07"
	testAsOf = "2026-01-14"
)

func setupWorkspace(t *testing.T) (binPath, workspace, runDir string) {
	t.Helper()
	binPath = harness.BuildBinary(t)
	workspace = t.TempDir()
	runDir = t.TempDir()

	fixture := filepath.Join(harness.RepoRoot(t), "integration", "fixtures", "workspace-min")
	harness.CopyDir(t, fixture, workspace)
	return binPath, workspace, runDir
}

func mustRun(t *testing.T, binPath, runDir string, args ...string) string {
	t.Helper()
	stdout, stderr, code := harness.RunWithEnv(t, binPath, runDir, args, map[string]string{
		"GOALPULSE_DB_DSN": "",
	})
	if code != 0 {
		t.Fatalf("goalpulse %s exit code %d\nstdout:\n%s\nstderr:\n%s", strings.Join(args, " "), code, stdout, stderr)
	}
	return stdout
}

func TestCLISmoke(t *testing.T) {
	binPath, workspace, runDir := setupWorkspace(t)

	stdout, stderr, code := harness.Run(t, binPath, runDir, []string{"--help"})
	if code != 0 {
		t.Fatalf("goalpulse --help exit code %d\nstdout:\n%s\nstderr:\n%s", code, stdout, stderr)
	}
	if !strings.Contains(stdout+stderr, "goal health metrics and risk tracking") {
		t.Fatalf("expected help output to include header\nstdout:\n%s\nstderr:\n%s", stdout, stderr)
	}

	mustRun(t, binPath, runDir, "snapshot", "take", "--workspace", workspace, "--as-of", weekAgo)

	out := mustRun(t, binPath, runDir, "dashboard", "--workspace", workspace, "--as-of", testAsOf, "--json")
	var dash struct {
		GoalCount int `json:"goalCount"`
		Company   struct {
			TotalPlanned int    `json:"totalPlanned"`
			Blocked      int    `json:"blocked"`
			Completed    int    `json:"completed"`
			HealthStatus string `json:"healthStatus"`
		} `json:"company"`
		Individual []struct {
			Name string `json:"name"`
		} `json:"individual"`
		Trends struct {
			WeekOverWeek *struct {
				From string `json:"from"`
				To   string `json:"to"`
			} `json:"weekOverWeek"`
		} `json:"trends"`
	}
	if err := json.Unmarshal([]byte(out), &dash); err != nil {
		t.Fatalf("decode dashboard: %v\n%s", err, out)
	}
	if dash.GoalCount != 4 || dash.Company.TotalPlanned != 4 {
		t.Fatalf("goal count = %d, planned = %d", dash.GoalCount, dash.Company.TotalPlanned)
	}
	if dash.Company.Blocked != 1 || dash.Company.Completed != 1 {
		t.Fatalf("company = %+v", dash.Company)
	}
	var owners []string
	for _, o := range dash.Individual {
		owners = append(owners, o.Name)
	}
	if strings.Join(owners, ",") != "Ann,Bo,Unassigned" {
		t.Fatalf("owners = %v", owners)
	}
	if dash.Trends.WeekOverWeek == nil || dash.Trends.WeekOverWeek.From != weekAgo || dash.Trends.WeekOverWeek.To != testAsOf {
		t.Fatalf("trends = %+v", dash.Trends)
	}

	historyPath := filepath.Join(workspace, "snapshots", "history.json")
	if _, err := os.Stat(historyPath); err != nil {
		t.Fatalf("snapshot history not written at %s: %v", historyPath, err)
	}

	out = mustRun(t, binPath, runDir, "snapshot", "list", "--workspace", workspace, "--as-of", testAsOf)
	if !strings.Contains(out, weekAgo) || !strings.Contains(out, testAsOf) {
		t.Fatalf("snapshot list missing dates:\n%s", out)
	}

	out = mustRun(t, binPath, runDir, "snapshot", "diff", "--workspace", workspace, "--as-of", testAsOf, weekAgo, testAsOf)
	if !strings.Contains(out, "--- snapshot/"+weekAgo) || !strings.Contains(out, "+++ snapshot/"+testAsOf) {
		t.Fatalf("unexpected diff output:\n%s", out)
	}

	out = mustRun(t, binPath, runDir, "trends", "--workspace", workspace, "--as-of", testAsOf)
	if !strings.Contains(out, "Week over week ("+weekAgo) {
		t.Fatalf("unexpected trends output:\n%s", out)
	}

	out = mustRun(t, binPath, runDir, "metrics", "executive", "--workspace", workspace, "--as-of", testAsOf)
	var exec struct {
		TopRisks []struct {
			Type string `json:"type"`
		} `json:"topRisks"`
	}
	if err := json.Unmarshal([]byte(out), &exec); err != nil {
		t.Fatalf("decode executive: %v\n%s", err, out)
	}
	if len(exec.TopRisks) == 0 || exec.TopRisks[0].Type != "critical" {
		t.Fatalf("top risks = %+v", exec.TopRisks)
	}

	auditPath := filepath.Join(workspace, "audit", "audit.sqlite")
	requireAuditEvents(t, auditPath, []string{
		"dashboard_refresh_started",
		"dashboard_refresh_finished",
	})
	out = mustRun(t, binPath, runDir, "audit", "tail", "--workspace", workspace, "-n", "5")
	if !strings.Contains(out, "dashboard_refresh_finished") {
		t.Fatalf("audit tail missing refresh event:\n%s", out)
	}
}

func TestCLIMissingGoalsFails(t *testing.T) {
	binPath, workspace, runDir := setupWorkspace(t)
	if err := os.Remove(filepath.Join(workspace, "goals.json")); err != nil {
		t.Fatal(err)
	}

	_, stderr, code := harness.Run(t, binPath, runDir, []string{"dashboard", "--workspace", workspace})
	if code == 0 {
		t.Fatalf("expected failure without goals file")
	}
	if !strings.Contains(stderr, "fetch goals") {
		t.Fatalf("unexpected stderr:\n%s", stderr)
	}
}

func TestCLIRequiresWorkspace(t *testing.T) {
	binPath := harness.BuildBinary(t)
	_, stderr, code := harness.Run(t, binPath, t.TempDir(), []string{"dashboard"})
	if code == 0 || !strings.Contains(stderr, "--workspace is required") {
		t.Fatalf("code = %d, stderr:\n%s", code, stderr)
	}
}
