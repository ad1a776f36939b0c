package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/rileyhilliard/wfmon/internal/config"
	"github.com/rileyhilliard/wfmon/internal/errors"
	"github.com/rileyhilliard/wfmon/internal/monitor"
	"github.com/rileyhilliard/wfmon/internal/notify"
	"github.com/rileyhilliard/wfmon/internal/parse"
	"github.com/rileyhilliard/wfmon/internal/progress"
	"github.com/rileyhilliard/wfmon/internal/source"
	"github.com/rileyhilliard/wfmon/internal/state"
	"github.com/rileyhilliard/wfmon/internal/ui"
)

// sshDialTimeout bounds the initial SSH connection for remote sources.
const sshDialTimeout = 15 * time.Second

// runLogMonitor handles the log-tailing engines: snakemake, nextflow,
// and cromwell.
func runLogMonitor(engine parse.Engine, args []string, flags *monitorFlags) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logPath := ""
	if len(args) > 0 {
		logPath = args[0]
	}
	engineCfg := cfg.Engines[string(engine)]
	if logPath == "" {
		logPath = engineCfg.Log
	}
	if logPath == "" {
		logPath, err = defaultLogPath(engine)
		if err != nil {
			return err
		}
	}

	host := flags.host
	if host == "" {
		host = engineCfg.Host
	}

	var src source.Source
	var closer io.Closer
	if host != "" {
		remote, err := source.NewRemoteTail(host, logPath, sshDialTimeout)
		if err != nil {
			return err
		}
		src = remote
		closer = remote
	} else {
		src = source.NewTail(logPath)
	}

	procName := flags.process
	if procName == "" {
		procName = engineCfg.Process
	}

	return runMonitor(engine, src, closer, cfg, flags, procName)
}

// runSlurmMonitor polls the scheduler queue instead of a log file.
func runSlurmMonitor(args []string, flags *monitorFlags) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	user := ""
	if len(args) > 0 {
		user = args[0]
	}
	if user == "" {
		user = cfg.Slurm.User
	}
	if user == "" {
		user = os.Getenv("USER")
	}
	if user == "" {
		return errors.New(errors.ErrConfig,
			"Can't determine which user's jobs to watch",
			"Pass a user name: wfmon slurm <user>")
	}

	host := flags.host
	if host == "" {
		host = cfg.Slurm.Host
	}

	// -h drops the header, -o emits JOBID|NAME|STATE.
	var src source.Source
	var closer io.Closer
	if host != "" {
		cmd := fmt.Sprintf("squeue -h -u %s -o '%%i|%%j|%%T'", user)
		remote, err := source.NewRemoteCommand(host, cmd, sshDialTimeout)
		if err != nil {
			return err
		}
		src = remote
		closer = remote
	} else {
		src = source.NewCommand("squeue", "-h", "-u", user, "-o", "%i|%j|%T")
	}

	return runMonitor(parse.EngineSlurm, src, closer, cfg, flags, "")
}

// runMonitor wires the tracker, notifier, and sampler, then runs either
// the dashboard or the plain loop until the workflow finishes or the
// user quits.
func runMonitor(engine parse.Engine, src source.Source, closer io.Closer, cfg *config.Config, flags *monitorFlags, procName string) error {
	if closer != nil {
		defer closer.Close()
	}

	parser, err := parse.ForEngine(engine)
	if err != nil {
		return err
	}

	interval := cfg.Interval
	if flags.interval != "" {
		d, ok := config.ParseInterval(flags.interval)
		if !ok {
			return errors.New(errors.ErrConfig,
				"Invalid interval: "+flags.interval,
				"Use a number of seconds (30) or a duration (30s, 2m).")
		}
		interval = d
	}

	notifyOn := cfg.Notify
	if flags.notify {
		notifyOn = true
	}
	if flags.noNotify {
		notifyOn = false
	}
	var notifier *notify.Notifier
	if notifyOn {
		notifier = notify.NewNotifier(notify.DesktopSink{})
	}

	sampler := buildSampler(flags, procName)
	ui.ApplyColorMode(cfg.Output.Color)

	tracker := monitor.NewTracker(monitor.TrackerOptions{
		Engine:   engine,
		Parser:   parser,
		Source:   src.Describe(),
		Notifier: notifier,
		StateDir: state.Dir(),
	})
	defer tracker.Cleanup()

	if flags.plain || cfg.Output.Plain || !term.IsTerminal(int(os.Stdout.Fd())) {
		return runPlainLoop(tracker, src, sampler, interval)
	}

	model := monitor.NewModel(tracker, src, sampler, interval)
	p := tea.NewProgram(model, tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrJob,
			"Dashboard stopped unexpectedly", "")
	}

	finalModel, ok := final.(monitor.Model)
	if !ok {
		return nil
	}
	if err := finalModel.Err(); err != nil {
		return err
	}

	return reportVerdict(engine, finalModel.Snapshot(), finalModel.Done())
}

func runPlainLoop(tracker *monitor.Tracker, src source.Source, sampler *monitor.ResourceSampler, interval time.Duration) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	snap, err := monitor.RunPlain(ctx, tracker, src, sampler, interval, os.Stdout)
	if err != nil {
		return err
	}
	return reportVerdict(tracker.Engine(), snap, tracker.Complete())
}

// reportVerdict prints the final summary and turns job failures into a
// non-zero exit. Failures already observed decide the exit code even when
// the monitor was interrupted before the workflow finished.
func reportVerdict(engine parse.Engine, snap progress.Snapshot, finished bool) error {
	if snap.Failed > 0 {
		msg := fmt.Sprintf("%s workflow finished: %d of %d jobs failed", engine, snap.Failed, snap.Total)
		if !finished {
			msg = fmt.Sprintf("%s monitor stopped with %d of %d jobs failed", engine, snap.Failed, snap.Total)
		}
		return errors.New(errors.ErrJob, msg, "Check the failed jobs in the workflow log.")
	}

	if !finished {
		// User quit early with nothing failed so far.
		return nil
	}

	fmt.Printf("%s %s workflow complete: %d jobs finished in %s\n",
		ui.SymbolSuccess, engine, snap.Completed, progress.FormatDuration(snap.Elapsed))
	return nil
}

// buildSampler attaches to the engine process when asked to. Discovery
// failures are non-fatal: the dashboard just omits the resource pane.
func buildSampler(flags *monitorFlags, procName string) *monitor.ResourceSampler {
	pid := int32(flags.pid)
	if pid == 0 && procName != "" {
		found, err := monitor.FindEngineProcess(procName)
		if err != nil {
			return nil
		}
		pid = found
	}
	if pid <= 0 {
		return nil
	}
	sampler, err := monitor.NewResourceSampler(pid)
	if err != nil {
		return nil
	}
	return sampler
}

// loadConfig resolves and loads config, honoring --config.
func loadConfig() (*config.Config, error) {
	if configFlag != "" {
		return config.Load(configFlag)
	}
	return config.LoadOrDefault()
}

// defaultLogPath guesses the engine's log location in the current
// directory, matching where each engine writes by default.
func defaultLogPath(engine parse.Engine) (string, error) {
	switch engine {
	case parse.EngineNextflow:
		if _, err := os.Stat(".nextflow.log"); err == nil {
			return ".nextflow.log", nil
		}
	case parse.EngineSnakemake:
		if newest := newestFile(filepath.Join(".snakemake", "log")); newest != "" {
			return newest, nil
		}
	}
	return "", errors.New(errors.ErrSource,
		fmt.Sprintf("No log file given and none found for %s", engine),
		engineUsageHint())
}

// newestFile returns the most recently modified file in dir, or "".
func newestFile(dir string) string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return ""
	}

	type candidate struct {
		path string
		mod  time.Time
	}
	var files []candidate
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		files = append(files, candidate{filepath.Join(dir, e.Name()), info.ModTime()})
	}
	if len(files) == 0 {
		return ""
	}

	sort.Slice(files, func(i, j int) bool { return files[i].mod.After(files[j].mod) })
	return files[0].path
}
