package app

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/pkgstash/internal/backup"
	"github.com/blackwell-systems/pkgstash/internal/config"
	"github.com/blackwell-systems/pkgstash/internal/output"
	"github.com/blackwell-systems/pkgstash/internal/watcher"
)

var (
	watchDaemon      bool
	watchDaemonChild bool
	watchPIDFile     string
	watchLogFile     string
	watchStop        bool

	watchCmd = &cobra.Command{
		Use:   "watch",
		Short: "Back up automatically whenever state changes",
		Long: `Watch the state database and write a full backup each time it changes.

Bursts of changes are coalesced: a backup is taken once the database has been
quiet for the configured debounce interval (watch.debounce, default 5s). Each
backup goes to a new timestamped file in the backup directory.

Watch modes:
  • Foreground (default): Run in current terminal with Ctrl+C to stop
  • Daemon: Run as background process
  • Stop: Stop a running daemon`,
		Example: `  # Run in foreground (Ctrl+C to stop)
  pkgstash watch

  # Run as background daemon
  pkgstash watch --daemon

  # Stop running daemon
  pkgstash watch --stop`,
		Args: cobra.NoArgs,
		RunE: runWatch,
	}
)

func init() {
	watchCmd.Flags().BoolVar(&watchDaemon, "daemon", false, "run as background daemon")
	watchCmd.Flags().BoolVar(&watchDaemonChild, "daemon-child", false, "internal flag for daemon child process")
	watchCmd.Flags().StringVar(&watchPIDFile, "pid-file", "", "PID file path (default: ~/.pkgstash/watch.pid)")
	watchCmd.Flags().StringVar(&watchLogFile, "log-file", "", "log file path (default: ~/.pkgstash/watch.log)")
	watchCmd.Flags().BoolVar(&watchStop, "stop", false, "stop running daemon")

	// Hide the internal daemon-child flag from help
	watchCmd.Flags().MarkHidden("daemon-child")

	RootCmd.AddCommand(watchCmd)
}

// daemonFile returns name inside the data directory unless override is set.
func daemonFile(override, name string) (string, error) {
	if override != "" {
		return override, nil
	}
	dir, err := config.DataDir()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create data directory: %w", err)
	}
	return filepath.Join(dir, name), nil
}

func runWatch(cmd *cobra.Command, args []string) error {
	pidFile, err := daemonFile(watchPIDFile, "watch.pid")
	if err != nil {
		return fmt.Errorf("failed to get default PID file path: %w", err)
	}
	logFile, err := daemonFile(watchLogFile, "watch.log")
	if err != nil {
		return fmt.Errorf("failed to get default log file path: %w", err)
	}

	out := cmd.OutOrStdout()

	if watchStop {
		return stopWatchDaemon(out, pidFile)
	}
	if watchDaemon {
		return startWatchDaemon(out, pidFile, logFile)
	}

	d, err := openDeps()
	if err != nil {
		return err
	}
	defer d.Close()

	w, err := watcher.New(d.cfg.DBPath, d.cfg.BackupDir, func(path string) error {
		return d.engine.Backup(path, backup.AllItems)
	}, watcher.WithDebounce(d.cfg.Watch.Debounce), watcher.WithLogger(d.log))
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}

	if watchDaemonChild {
		return w.RunDaemon(pidFile)
	}
	return runWatchForeground(out, w, d.cfg)
}

func stopWatchDaemon(out io.Writer, pidFile string) error {
	running, err := watcher.IsDaemonRunning(pidFile)
	if err != nil {
		return fmt.Errorf("failed to check daemon status: %w", err)
	}
	if !running {
		fmt.Fprintln(out, "Daemon is not running")
		return nil
	}

	spinner := output.NewSpinner("Stopping daemon")
	spinner.SetWriter(out)
	spinner.Start()
	if err := watcher.StopDaemon(pidFile); err != nil {
		spinner.Stop()
		return fmt.Errorf("failed to stop daemon: %w", err)
	}
	spinner.StopWithMessage("✓ Daemon stopped")
	return nil
}

func startWatchDaemon(out io.Writer, pidFile, logFile string) error {
	// The child re-reads configuration, so pass the global flags through.
	args := []string{"watch", "--pid-file", pidFile}
	if dbPath != "" {
		args = append(args, "--db", dbPath)
	}
	if configPath != "" {
		args = append(args, "--config", configPath)
	}
	if backendName != "" {
		args = append(args, "--backend", backendName)
	}
	if verbose {
		args = append(args, "--verbose")
	}

	spinner := output.NewSpinner("Starting daemon")
	spinner.SetWriter(out)
	spinner.Start()
	if err := watcher.StartDaemon(pidFile, logFile, args); err != nil {
		spinner.Stop()
		return fmt.Errorf("failed to start daemon: %w", err)
	}
	spinner.StopWithMessage("✓ Daemon started")

	fmt.Fprintf(out, "\nAuto-backup daemon started\n")
	fmt.Fprintf(out, "  PID file: %s\n", pidFile)
	fmt.Fprintf(out, "  Log file: %s\n", logFile)
	fmt.Fprintf(out, "\nTo stop: pkgstash watch --stop\n")
	return nil
}

func runWatchForeground(out io.Writer, w *watcher.Watcher, cfg *config.Config) error {
	if err := w.Start(); err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}

	fmt.Fprintf(out, "Watching %s (press Ctrl+C to stop)\n", cfg.DBPath)
	fmt.Fprintf(out, "Backups go to %s\n\n", cfg.BackupDir)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
	defer signal.Stop(sigCh)

	sig := <-sigCh
	fmt.Fprintf(out, "\nReceived signal %v, shutting down...\n", sig)

	if err := w.Stop(); err != nil {
		return fmt.Errorf("failed to stop watcher: %w", err)
	}
	fmt.Fprintln(out, "✓ Watcher stopped")
	return nil
}
