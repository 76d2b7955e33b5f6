// Package main is the CLI entry point for proctord.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/proctorhq/proctord/internal/config"
	"github.com/proctorhq/proctord/internal/daemon"
	"github.com/proctorhq/proctord/internal/domain"
	"github.com/proctorhq/proctord/internal/infra"
	"github.com/proctorhq/proctord/internal/signature"
	"github.com/proctorhq/proctord/internal/usecase"
)

var (
	// Version info (set via ldflags)
	Version   = "0.1.0"
	Commit    = "dev"
	BuildTime = "unknown"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "proctord",
	Short: "Session integrity monitor for remote interviews",
	Long: `proctord monitors a candidate's machine during a remote interview
session. It watches for screen sharing, overlay tools, coding-assistant
windows, and screenshot activity, and terminates the session the moment a
critical violation is confirmed.`,
	Version: Version,
}

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start a monitoring session",
	Long: `Starts monitoring in the foreground. Requires screen recording
permission; without it the session fails to start. The session runs until a
critical violation is confirmed or the process receives SIGINT/SIGTERM.`,
	RunE: runStart,
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Run a one-shot window scan",
	Long: `Takes one window snapshot, classifies every window against the
behavioral signature tables, and prints the matches. No session is started
and no enforcement happens.`,
	RunE: runCheck,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run:   runVersion,
}

// Hidden scrub command - the self-destruct coordinator role, executed from a
// detached temp copy of this binary.
var scrubCmd = &cobra.Command{
	Use:    "scrub <path>",
	Hidden: true,
	Args:   cobra.ExactArgs(1),
	RunE:   runScrub,
}

var (
	sessionID   string
	configPath  string
	scrubLinger time.Duration
	jsonOutput  bool
)

func init() {
	startCmd.Flags().StringVar(&sessionID, "session", "", "Session identifier (generated when omitted)")
	startCmd.Flags().StringVar(&configPath, "config", "", "Path to TOML config file")
	checkCmd.Flags().StringVar(&configPath, "config", "", "Path to TOML config file")
	scrubCmd.Flags().DurationVar(&scrubLinger, "linger", 1500*time.Millisecond, "Delay before deletion")
	versionCmd.Flags().BoolVar(&jsonOutput, "json", false, "Output version info as JSON")

	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(scrubCmd)
}

func runStart(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger := createLogger(cfg)
	defer func() { _ = logger.Sync() }()

	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	windows := infra.NewWindowProvider()
	lister := infra.NewProcessLister()
	blacklist := daemon.NewBlacklistMonitor(lister, cfg.Monitor.ExtraBlacklist, logger)
	tap := infra.NewShortcutTap()

	shotDir := cfg.Screenshots.Directory
	if shotDir == "" {
		shotDir = infra.NewScreenshotDirLocator().Locate()
	}

	sinks := []domain.AlertSink{infra.NewLogSink(logger)}
	if cfg.Audit.Enabled {
		auditDir := cfg.Audit.DataDir
		if auditDir == "" {
			auditDir = infra.DefaultAuditDir()
		}
		store, err := infra.NewEncryptedAuditStore(auditDir)
		if err != nil {
			logger.Warn("audit store unavailable", zap.Error(err))
		} else {
			defer store.Close()
			sinks = append(sinks, store)
		}
	}

	installPath, err := infra.InstallPath()
	if err != nil {
		return fmt.Errorf("resolve install path: %w", err)
	}
	destructor := infra.NewScrubSpawner(cfg.ScrubLinger())

	engineCfg := daemon.EngineConfig{
		PollInterval:        cfg.PollInterval(),
		ProcessScanInterval: cfg.ProcessScanInterval(),
		ScreenshotDir:       shotDir,
		ScreenshotRecency:   cfg.RecencyWindow(),
	}

	// The engine's producers call back into the controller; the controller
	// drives the engine. Closures break the construction cycle.
	var controller *usecase.Controller
	engine := daemon.NewEngine(engineCfg, windows, blacklist, tap, daemon.Callbacks{
		OnViolation:      func(ev domain.ViolationEvent) { controller.HandleViolation(ev) },
		OnBlacklistedApp: func(name string) { controller.HandleBlacklistedApp(name) },
		OnError:          func(err error) { controller.HandleEngineError(err) },
	}, logger)

	controller = usecase.NewController(sessionID, engine,
		infra.NewLoggingObserver(logger), sinks, destructor, installPath, logger)

	if err := controller.Start(); err != nil {
		fmt.Fprintln(os.Stderr, "monitoring could not start:", err)
		return err
	}

	fmt.Printf("proctord session %s monitoring\n", sessionID)

	// A critical violation exits from inside the controller; the quit path
	// below runs the same termination sequence.
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan
	controller.RequestQuit()
	return nil
}

func runCheck(cmd *cobra.Command, args []string) error {
	windows := infra.NewWindowProvider()
	if err := windows.Preflight(); err != nil {
		return fmt.Errorf("permission check failed: %w", err)
	}

	snapshot, err := windows.Snapshot()
	if err != nil {
		return fmt.Errorf("window snapshot failed: %w", err)
	}

	classifier := signature.NewClassifier(windows.ScreenArea())

	fmt.Printf("\n=== Window Scan (%d windows) ===\n", len(snapshot))
	flagged := 0
	for _, w := range snapshot {
		matches := classifier.Classify(w)
		if len(matches) == 0 {
			continue
		}
		flagged++
		fmt.Printf("\n[%d] %s - %q (layer %d)\n", w.ID, w.OwnerProcessName, w.Title, w.Layer)
		for _, m := range matches {
			criticality := "advisory"
			if m.Kind.Critical() {
				criticality = "critical"
			}
			fmt.Printf("  %s (%s): %s\n", m.Kind, criticality, m.Details)
		}
	}
	if flagged == 0 {
		fmt.Println("\nNo suspicious windows found.")
	}
	fmt.Println("================================")
	return nil
}

func runScrub(cmd *cobra.Command, args []string) error {
	infra.Scrub(args[0], scrubLinger)
	return nil
}

func runVersion(cmd *cobra.Command, args []string) {
	if jsonOutput {
		fmt.Printf(`{"version":"%s","commit":"%s","build_time":"%s"}`+"\n",
			Version, Commit, BuildTime)
	} else {
		fmt.Printf("proctord %s (commit: %s, built: %s)\n",
			Version, Commit, BuildTime)
	}
}

func createLogger(cfg *config.Config) *zap.Logger {
	zapCfg := zap.NewProductionConfig()
	if cfg.Logging.Path != "" {
		zapCfg.OutputPaths = []string{cfg.Logging.Path}
		zapCfg.ErrorOutputPaths = []string{cfg.Logging.Path}
	}
	if level, err := zapcore.ParseLevel(cfg.Logging.Level); err == nil && cfg.Logging.Level != "" {
		zapCfg.Level = zap.NewAtomicLevelAt(level)
	}
	zapCfg.EncoderConfig.TimeKey = "time"
	zapCfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := zapCfg.Build()
	if err != nil {
		// Fallback to stderr if file logging fails
		logger, _ = zap.NewProduction()
	}
	return logger
}
