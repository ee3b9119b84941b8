package main

import (
	"fmt"
	"math/rand/v2"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/clive/class-assigner/internal/config"
	"github.com/clive/class-assigner/internal/logging"
	"github.com/clive/class-assigner/internal/roster"
	"github.com/clive/class-assigner/internal/state"
	"github.com/clive/class-assigner/internal/task"
	"github.com/clive/class-assigner/internal/tui"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "class-assigner",
		Short: "Assign students to classes from the terminal",
		Long: `class-assigner keeps a roster of students in memory and lets you edit it,
choose how many classes to split it into, and run the assignment job.

Nothing is saved: the roster is generated at startup and lost on exit.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runTUI,
	}

	flags := cmd.PersistentFlags()
	flags.String("config", "", "config file (default: .class-assigner/config.yaml, then ~/.class-assigner/config.yaml)")
	flags.Int("students", roster.DefaultSeedSize, "number of students generated at startup")
	flags.Int64("seed", 0, "random seed for the generated roster (0 = random)")
	flags.String("route", "/", "page to open at startup")
	flags.Bool("debug", false, "show the debug panel")
	flags.String("log-file", "", "write logs to this file")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")

	cmd.AddCommand(newSeedCmd(), newVersionCmd())
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "class-assigner %s\n", version)
		},
	}
}

// loadConfig reads the configuration with the command's flags on top
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(path, cmd.Flags())
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// newRNG returns a deterministic source for a non-zero seed
func newRNG(seed int64) *rand.Rand {
	if seed == 0 {
		return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return rand.New(rand.NewPCG(uint64(seed), uint64(seed)))
}

func runTUI(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logger, err := logging.New(logging.Options{File: cfg.Log.File, Level: cfg.Log.Level})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	r := roster.Seed(cfg.Students, newRNG(cfg.Seed))
	app := state.New(r, cfg.Settings())
	logger.Info("roster seeded",
		zap.Int("students", r.Len()),
		zap.Int64("seed", cfg.Seed),
		zap.Duration("step_interval", cfg.StepInterval),
	)

	p := tea.NewProgram(
		tui.NewRootModel(tui.Options{
			App:    app,
			Task:   task.New(cfg.StepInterval),
			Route:  cfg.Route,
			Debug:  cfg.Debug,
			Logger: logger,
		}),
		tea.WithAltScreen(),
	)

	if _, err := p.Run(); err != nil {
		logger.Error("program exited", zap.Error(err))
		return fmt.Errorf("run program: %w", err)
	}
	logger.Info("session ended", zap.Int("students", app.StudentCount()))
	return nil
}
