package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"goalpulse/internal/audit"
	"goalpulse/internal/daemon"
	"goalpulse/internal/dashboard"
	"goalpulse/internal/goals"
	"goalpulse/internal/notify"
	"goalpulse/internal/snapshot"
	"goalpulse/internal/workspace"
)

const appName = "goalpulse"

func main() {
	flag.String("workspace", "", "Path to workspace root")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "%s: goal health metrics and risk tracking\n\n", appName)
		fmt.Fprintf(os.Stderr, "Usage:\n  %s [command] [flags]\n\n", appName)
		fmt.Fprintln(os.Stderr, "Commands:")
		fmt.Fprintln(os.Stderr, "  init       Initialize a new workspace")
		fmt.Fprintln(os.Stderr, "  dashboard  Compute the full dashboard")
		fmt.Fprintln(os.Stderr, "  goals      Check goal data quality (lint)")
		fmt.Fprintln(os.Stderr, "  metrics    Print one metrics view (individual|squad|company|executive)")
		fmt.Fprintln(os.Stderr, "  snapshot   Manage health snapshots (take|list|diff)")
		fmt.Fprintln(os.Stderr, "  trends     Show week-over-week trends")
		fmt.Fprintln(os.Stderr, "  daemon     Run or manage the refresh daemon")
		fmt.Fprintln(os.Stderr, "  audit      Inspect the audit log")
		fmt.Fprintln(os.Stderr, "  help       Show this help")
		fmt.Fprintln(os.Stderr, "\nFlags:")
		flag.PrintDefaults()
	}

	workspacePath, remaining, err := extractWorkspaceFlag(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	args := remaining
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		flag.Usage()
		return
	}

	var runErr error
	switch args[0] {
	case "init":
		runErr = runInit(args[1:], workspacePath)
	case "dashboard":
		runErr = runDashboard(args[1:], workspacePath)
	case "goals":
		runErr = runGoals(args[1:], workspacePath)
	case "metrics":
		runErr = runMetrics(args[1:], workspacePath)
	case "snapshot":
		runErr = runSnapshot(args[1:], workspacePath)
	case "trends":
		runErr = runTrends(args[1:], workspacePath)
	case "daemon":
		runErr = runDaemon(args[1:], workspacePath)
	case "audit":
		runErr = runAudit(args[1:], workspacePath)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", args[0])
		flag.Usage()
		os.Exit(1)
	}
	if runErr != nil {
		fmt.Fprintln(os.Stderr, runErr)
		os.Exit(1)
	}
}

func extractWorkspaceFlag(args []string) (string, []string, error) {
	var workspacePath string
	remaining := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--workspace" {
			if i+1 >= len(args) {
				return "", nil, fmt.Errorf("--workspace requires a value")
			}
			workspacePath = args[i+1]
			i++
			continue
		}
		if strings.HasPrefix(arg, "--workspace=") {
			workspacePath = strings.TrimPrefix(arg, "--workspace=")
			continue
		}
		remaining = append(remaining, arg)
	}
	return workspacePath, remaining, nil
}

func isHelp(args []string) bool {
	return len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help"
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func runInit(args []string, workspacePath string) error {
	fs := flag.NewFlagSet("init", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	withSample := fs.Bool("sample", true, "Write a sample goals.json when none exists")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if strings.TrimSpace(workspacePath) == "" {
		return fmt.Errorf("--workspace is required")
	}

	root, err := workspace.ResolveRoot(workspacePath)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return fmt.Errorf("create workspace root: %w", err)
	}
	ws, err := workspace.Resolve(root)
	if err != nil {
		return err
	}
	if err := ws.EnsureDirs(); err != nil {
		return err
	}

	logger := audit.NewLogger(ws.AuditDBPath)
	if err := logger.LogEvent("cli", "workspace_init_started", map[string]any{"workspace": ws.Root}); err != nil {
		fmt.Fprintln(os.Stderr, "audit log failed:", err)
	}
	var finishErr error
	defer func() {
		payload := map[string]any{"workspace": ws.Root}
		if finishErr != nil {
			payload["error"] = finishErr.Error()
		}
		_ = logger.LogEvent("cli", "workspace_init_finished", payload)
	}()

	if err := writeFileIfMissing(ws.ConfigPath, defaultConfigTemplate); err != nil {
		finishErr = err
		return finishErr
	}
	if *withSample {
		if err := writeFileIfMissing(ws.GoalsPath, sampleGoalsTemplate); err != nil {
			finishErr = err
			return finishErr
		}
	}

	fmt.Fprintf(os.Stdout, "Initialized workspace: %s\n", ws.Root)
	return nil
}

func writeFileIfMissing(path string, contents string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("stat %s: %w", path, err)
	}
	return os.WriteFile(path, []byte(contents), 0o644)
}

const defaultConfigTemplate = `goals:
  path: goals.json
source:
  timeout: 30s
db:
  driver: pgx
  dsn: ""
snapshots:
  path: snapshots/history.json
  retention_days: 90
trends:
  history_days: 30
cache:
  ttl: 60s
notify:
  enabled: false
daemon:
  interval: 1h
timezone: UTC
`

const sampleGoalsTemplate = `[
  {
    "id": "goal-1",
    "goalTitle": "Publish the first goal health dashboard",
    "owner": "Team Lead",
    "squad": "Platform",
    "status": "In Progress",
    "priority": "High",
    "effortPoints": 3
  }
]
`

type viewFlags struct {
	asOf  *string
	goals *string
}

func addViewFlags(fs *flag.FlagSet) viewFlags {
	return viewFlags{
		asOf:  fs.String("as-of", "", "Evaluate as of this date or RFC3339 time (default: now)"),
		goals: fs.String("goals", "", "Goals file (default: config goals.path)"),
	}
}

func (v viewFlags) options() appOptions {
	return appOptions{AsOf: *v.asOf, GoalsPath: *v.goals}
}

func runDashboard(args []string, workspacePath string) error {
	fs := flag.NewFlagSet("dashboard", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	view := addViewFlags(fs)
	asJSON := fs.Bool("json", false, "Print the full dashboard as JSON")
	sendDigest := fs.Bool("notify", false, "Send the risk digest as a notification")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctx := context.Background()
	a, err := openApp(ctx, workspacePath, view.options())
	if err != nil {
		return err
	}
	defer a.Close()

	svc, err := a.service()
	if err != nil {
		return err
	}
	d, err := svc.Refresh(ctx)
	if err != nil {
		return err
	}

	if *sendDigest {
		title, message := notify.FormatRiskDigest(d.Executive)
		if err := a.notifier.Send(title, message); err != nil {
			a.logger.Printf("digest notification failed: %v", err)
		}
	}
	if *asJSON {
		return writeJSON(os.Stdout, d)
	}
	printDashboard(os.Stdout, d)
	return nil
}

func printDashboard(w io.Writer, d dashboard.Dashboard) {
	c := d.Company
	fmt.Fprintf(w, "As of: %s\n", d.AsOf.Format("2006-01-02 15:04 MST"))
	fmt.Fprintf(w, "Health: %d (%s)\n", c.HealthScore, c.HealthStatus)
	fmt.Fprintf(w, "Goals: %d planned, %d active, %d blocked, %d overdue, %d completed, %d not started\n",
		c.TotalPlanned, c.Active, c.Blocked, c.Overdue, c.Completed, c.NotStarted)
	fmt.Fprintf(w, "Rates: completion %d%%, slippage %d%%, updated this week %d%%\n",
		c.CompletionRate, c.SlippageRate, c.UpdateRecency)
	printTrends(w, d.Trends)

	if len(d.Executive.TopRisks) > 0 {
		fmt.Fprintln(w, "\nTop risks:")
		for _, r := range d.Executive.TopRisks {
			fmt.Fprintf(w, "  [%s] %s (%s): %s\n", r.Type, r.Goal.Title, r.Goal.Owner, r.Message)
		}
	}
	if len(d.Squads) > 0 {
		fmt.Fprintln(w, "\nSquads:")
		for _, s := range d.Squads {
			fmt.Fprintf(w, "  %s: %d goals, %d completed, risk %s, clarity %d%%\n",
				s.Name, s.TotalGoals, s.Completed, s.RiskLevel, s.OwnershipClarity)
		}
	}
}

func printTrends(w io.Writer, t snapshot.Trends) {
	fmt.Fprintf(w, "Trends: completion %s, overdue %s, health %s, velocity %s\n",
		t.CompletionTrend, t.OverdueTrend, t.HealthTrend, t.VelocityTrend)
	if wow := t.WeekOverWeek; wow != nil {
		fmt.Fprintf(w, "Week over week (%s → %s): completed %+d, overdue %+d, health %+d, velocity %+.1f\n",
			wow.From, wow.To, wow.CompletionDelta, wow.OverdueDelta, wow.HealthDelta, wow.VelocityDelta)
	}
}

func runGoals(args []string, workspacePath string) error {
	if isHelp(args) {
		return fmt.Errorf("%s goals: missing subcommand", appName)
	}
	if args[0] != "lint" {
		return fmt.Errorf("%s goals: unknown subcommand %q", appName, args[0])
	}

	fs := flag.NewFlagSet("goals lint", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	view := addViewFlags(fs)
	strict := fs.Bool("strict", false, "Exit non-zero when issues are found")
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}

	ctx := context.Background()
	a, err := openApp(ctx, workspacePath, view.options())
	if err != nil {
		return err
	}
	defer a.Close()

	fetchCtx, cancel := context.WithTimeout(ctx, a.cfg.Source.Timeout)
	defer cancel()
	list, err := a.source.Fetch(fetchCtx)
	if err != nil {
		return fmt.Errorf("fetch goals: %w", err)
	}

	issues := goals.Lint(list, a.now().In(a.cfg.Location()))
	if len(issues) == 0 {
		fmt.Fprintf(os.Stdout, "%d goals, no issues.\n", len(list))
		return nil
	}
	fmt.Fprintln(os.Stdout, issues.Error())
	fmt.Fprintf(os.Stdout, "%d goals, %d issues.\n", len(list), len(issues))
	if *strict {
		return fmt.Errorf("%d goal data issues", len(issues))
	}
	return nil
}

func runMetrics(args []string, workspacePath string) error {
	if isHelp(args) {
		return fmt.Errorf("%s metrics: missing view (individual|squad|company|executive)", appName)
	}
	viewName := args[0]
	switch viewName {
	case "individual", "squad", "company", "executive":
	default:
		return fmt.Errorf("%s metrics: unknown view %q", appName, viewName)
	}

	fs := flag.NewFlagSet("metrics "+viewName, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	view := addViewFlags(fs)
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}

	ctx := context.Background()
	a, err := openApp(ctx, workspacePath, view.options())
	if err != nil {
		return err
	}
	defer a.Close()

	svc, err := a.service()
	if err != nil {
		return err
	}
	d, err := svc.Dashboard(ctx)
	if err != nil {
		return err
	}

	switch viewName {
	case "individual":
		return writeJSON(os.Stdout, d.Individual)
	case "squad":
		return writeJSON(os.Stdout, d.Squads)
	case "company":
		return writeJSON(os.Stdout, d.Company)
	default:
		return writeJSON(os.Stdout, d.Executive)
	}
}

func runSnapshot(args []string, workspacePath string) error {
	if isHelp(args) {
		return fmt.Errorf("%s snapshot: missing subcommand", appName)
	}
	switch args[0] {
	case "take":
		return runSnapshotTake(args[1:], workspacePath)
	case "list":
		return runSnapshotList(args[1:], workspacePath)
	case "diff":
		return runSnapshotDiff(args[1:], workspacePath)
	default:
		return fmt.Errorf("%s snapshot: unknown subcommand %q", appName, args[0])
	}
}

func runSnapshotTake(args []string, workspacePath string) error {
	fs := flag.NewFlagSet("snapshot take", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	view := addViewFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctx := context.Background()
	a, err := openApp(ctx, workspacePath, view.options())
	if err != nil {
		return err
	}
	defer a.Close()

	svc, err := a.service()
	if err != nil {
		return err
	}
	d, err := svc.Refresh(ctx)
	if err != nil {
		return err
	}
	if d.Snapshot == nil {
		return fmt.Errorf("snapshot was not saved; see log output")
	}
	fmt.Fprintf(os.Stdout, "Saved snapshot %s: health %d (%s)\n",
		d.Snapshot.Date, d.Snapshot.Company.HealthScore, d.Snapshot.Company.HealthStatus)
	return nil
}

func runSnapshotList(args []string, workspacePath string) error {
	fs := flag.NewFlagSet("snapshot list", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	days := fs.Int("days", 30, "Days of history to list")
	asJSON := fs.Bool("json", false, "Print snapshots as JSON")
	asOf := fs.String("as-of", "", "List relative to this date (default: today)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctx := context.Background()
	a, err := openApp(ctx, workspacePath, appOptions{AsOf: *asOf})
	if err != nil {
		return err
	}
	defer a.Close()

	snaps, err := a.store.List(ctx, *days)
	if err != nil {
		return err
	}
	if *asJSON {
		return writeJSON(os.Stdout, snaps)
	}
	if len(snaps) == 0 {
		fmt.Fprintln(os.Stdout, "No snapshots.")
		return nil
	}
	for _, s := range snaps {
		fmt.Fprintf(os.Stdout, "%s  health=%d (%s) completed=%d overdue=%d blocked=%d active=%d\n",
			s.Date, s.Company.HealthScore, s.Company.HealthStatus,
			s.Company.Completed, s.Company.Overdue, s.Company.Blocked, s.Company.Active)
	}
	return nil
}

func runSnapshotDiff(args []string, workspacePath string) error {
	fs := flag.NewFlagSet("snapshot diff", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	asOf := fs.String("as-of", "", "Search history relative to this date (default: today)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 2 {
		return fmt.Errorf("usage: %s snapshot diff <from-date> <to-date>", appName)
	}

	ctx := context.Background()
	a, err := openApp(ctx, workspacePath, appOptions{AsOf: *asOf})
	if err != nil {
		return err
	}
	defer a.Close()

	history, err := a.store.List(ctx, a.cfg.Snapshots.RetentionDays)
	if err != nil {
		return err
	}
	from, ok := snapshot.Find(history, fs.Arg(0))
	if !ok {
		return fmt.Errorf("no snapshot for %s", fs.Arg(0))
	}
	to, ok := snapshot.Find(history, fs.Arg(1))
	if !ok {
		return fmt.Errorf("no snapshot for %s", fs.Arg(1))
	}
	text, err := snapshot.Diff(from, to)
	if err != nil {
		return err
	}
	if text == "" {
		fmt.Fprintln(os.Stdout, "No differences.")
		return nil
	}
	fmt.Fprint(os.Stdout, text)
	return nil
}

func runTrends(args []string, workspacePath string) error {
	fs := flag.NewFlagSet("trends", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	days := fs.Int("days", 0, "Days of history to consider (default: config trends.history_days)")
	asJSON := fs.Bool("json", false, "Print trends as JSON")
	asOf := fs.String("as-of", "", "Evaluate relative to this date (default: today)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctx := context.Background()
	a, err := openApp(ctx, workspacePath, appOptions{AsOf: *asOf})
	if err != nil {
		return err
	}
	defer a.Close()

	window := *days
	if window <= 0 {
		window = a.cfg.Trends.HistoryDays
	}
	history, err := a.store.List(ctx, window)
	if err != nil {
		return err
	}
	trends := snapshot.ComputeTrends(history)
	if *asJSON {
		return writeJSON(os.Stdout, trends)
	}
	printTrends(os.Stdout, trends)
	return nil
}

func runDaemon(args []string, workspacePath string) error {
	if isHelp(args) {
		return fmt.Errorf("%s daemon: missing subcommand", appName)
	}
	switch args[0] {
	case "run":
		return runDaemonRun(args[1:], workspacePath)
	case "install", "uninstall", "start", "stop", "status":
		return runDaemonAgent(args[0], args[1:], workspacePath)
	default:
		return fmt.Errorf("%s daemon: unknown subcommand %q", appName, args[0])
	}
}

func runDaemonRun(args []string, workspacePath string) error {
	fs := flag.NewFlagSet("daemon run", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	interval := fs.Duration("interval", 0, "Refresh interval (default: config daemon.interval)")
	watch := fs.Duration("watch", daemon.DefaultWatchInterval, "Goals file poll interval")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctx := context.Background()
	a, err := openApp(ctx, workspacePath, appOptions{})
	if err != nil {
		return err
	}
	defer a.Close()

	svc, err := a.service()
	if err != nil {
		return err
	}
	every := a.cfg.Daemon.Interval
	if *interval > 0 {
		every = *interval
	}

	d, err := daemon.New(daemon.Config{
		Service:       svc,
		Audit:         a.audit,
		Logger:        a.logger,
		Workspace:     a.ws.Root,
		GoalsPath:     a.source.Path,
		Interval:      every,
		WatchInterval: *watch,
	})
	if err != nil {
		return fmt.Errorf("create daemon: %w", err)
	}

	fmt.Fprintf(os.Stdout, "Starting daemon for workspace: %s\n", a.ws.Root)
	fmt.Fprintf(os.Stdout, "Refresh interval: %s, goals poll: %s\n", d.Interval, d.WatchInterval)
	return d.Run(ctx)
}

func runDaemonAgent(action string, args []string, workspacePath string) error {
	fs := flag.NewFlagSet("daemon "+action, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	binary := fs.String("binary", "", "Path to the goalpulse binary (default: this executable)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if strings.TrimSpace(workspacePath) == "" {
		return fmt.Errorf("--workspace is required")
	}
	ws, err := workspace.Resolve(workspacePath)
	if err != nil {
		return err
	}

	binaryPath := *binary
	if binaryPath == "" {
		if binaryPath, err = os.Executable(); err != nil {
			return fmt.Errorf("resolve executable: %w", err)
		}
	}
	agent, err := daemon.NewLaunchAgent(ws, binaryPath)
	if err != nil {
		return err
	}

	switch action {
	case "install":
		if err := agent.Install(); err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "Installed %s\n", agent.PlistPath)
	case "uninstall":
		if err := agent.Uninstall(); err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "Removed %s\n", agent.PlistPath)
	case "start":
		if err := agent.Start(); err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "Started %s\n", agent.Label)
	case "stop":
		if err := agent.Stop(); err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "Stopped %s\n", agent.Label)
	case "status":
		running, err := agent.IsRunning()
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "Label: %s\nRunning: %t\nLog: %s\n", agent.Label, running, agent.LogPath)
	}
	return nil
}

func runAudit(args []string, workspacePath string) error {
	if isHelp(args) {
		return fmt.Errorf("%s audit: missing subcommand", appName)
	}
	if args[0] != "tail" {
		return fmt.Errorf("%s audit: unknown subcommand %q", appName, args[0])
	}

	fs := flag.NewFlagSet("audit tail", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	limit := fs.Int("n", 20, "Number of events to show")
	asJSON := fs.Bool("json", false, "Print events as JSON")
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}
	if strings.TrimSpace(workspacePath) == "" {
		return fmt.Errorf("--workspace is required")
	}
	ws, err := workspace.Resolve(workspacePath)
	if err != nil {
		return err
	}

	events, err := audit.NewLogger(ws.AuditDBPath).Tail(*limit)
	if err != nil {
		return err
	}
	if *asJSON {
		return writeJSON(os.Stdout, events)
	}
	for _, ev := range events {
		fmt.Fprintf(os.Stdout, "%s  %-8s %-28s %s\n",
			ev.TS.UTC().Format("2006-01-02T15:04:05Z"), ev.Actor, ev.Type, string(ev.Payload))
	}
	return nil
}
