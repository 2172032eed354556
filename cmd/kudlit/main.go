// Package main provides the CLI entrypoint for kudlit.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/kudlit/internal/backend"
	"github.com/verte-zerg/kudlit/internal/claim"
	"github.com/verte-zerg/kudlit/internal/config"
	"github.com/verte-zerg/kudlit/internal/ledger"
	"github.com/verte-zerg/kudlit/internal/notify"
	"github.com/verte-zerg/kudlit/internal/period"
	"github.com/verte-zerg/kudlit/internal/rewards"
	"github.com/verte-zerg/kudlit/internal/store"
	"github.com/verte-zerg/kudlit/internal/tui"
)

var (
	globalUser        string
	globalDB          string
	globalBackendURL  string
	globalReadTimeout time.Duration
	globalLogLevel    string
	globalColor       bool
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "kudlit",
		Short:         "Baybayin transliteration pad with daily and weekly quests",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runPadCmd,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&globalUser, "user", config.DefaultUser, "user id for progress tracking")
	flags.StringVar(&globalDB, "db", "", "progress store: file path, :memory:, or libsql:// URL")
	flags.StringVar(&globalBackendURL, "backend-url", "", "transliteration backend base URL")
	flags.DurationVar(&globalReadTimeout, "read-timeout", config.DefaultReadTimeout, "timeout for progress store reads")
	flags.StringVar(&globalLogLevel, "log-level", config.DefaultLogLevel, "log level (debug, info, warn, error)")
	flags.BoolVar(&globalColor, "color", false, "force colored output")

	rootCmd.AddCommand(newDecodeCmd())
	rootCmd.AddCommand(newEncodeCmd())
	rootCmd.AddCommand(newTableCmd())
	rootCmd.AddCommand(newLoginCmd())
	rootCmd.AddCommand(newQuestsCmd())
	rootCmd.AddCommand(newClaimCmd())
	rootCmd.AddCommand(newProfileCmd())
	rootCmd.AddCommand(newLeaderboardCmd())
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

// app holds the resolved settings and the wired services of one invocation.
type app struct {
	settings config.Settings
	logger   *slog.Logger
	closer   func() error
	bus      *notify.Bus
	rewards  *rewards.Service
}

func loadSettings(cmd *cobra.Command) (config.Settings, error) {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return config.Settings{}, fmt.Errorf("failed to load config: %w", err)
	}
	envCfg, err := config.ParseEnv()
	if err != nil {
		return config.Settings{}, err
	}
	settings, err := config.Resolve(fileCfg, envCfg)
	if err != nil {
		return config.Settings{}, err
	}
	applyStringFlag(cmd, "user", &settings.User, globalUser)
	applyStringFlag(cmd, "db", &settings.DB, globalDB)
	applyStringFlag(cmd, "backend-url", &settings.BackendURL, globalBackendURL)
	applyStringFlag(cmd, "log-level", &settings.LogLevel, globalLogLevel)
	applyDurationFlag(cmd, "read-timeout", &settings.ReadTimeout, globalReadTimeout)
	if settings.User == "" {
		return config.Settings{}, fmt.Errorf("--user must not be empty")
	}
	if settings.ReadTimeout <= 0 {
		return config.Settings{}, fmt.Errorf("--read-timeout must be > 0")
	}
	return settings, nil
}

func openApp(cmd *cobra.Command) (*app, error) {
	settings, err := loadSettings(cmd)
	if err != nil {
		return nil, err
	}
	logger, err := config.NewLogger(os.Stderr, settings.LogLevel, settings.LogFormat)
	if err != nil {
		return nil, err
	}

	var (
		st     store.Store
		closer func() error
	)
	if settings.DB == store.MemoryDSN {
		st = store.NewMemory()
		closer = func() error { return nil }
	} else {
		sqlStore, err := store.Open(settings.DB)
		if err != nil {
			return nil, fmt.Errorf("failed to open db: %w", err)
		}
		st = sqlStore
		closer = sqlStore.Close
	}

	bus := notify.NewBus()
	l := ledger.New(st, ledger.WithReadTimeout(settings.ReadTimeout), ledger.WithLogger(logger))
	svc, err := rewards.New(l, claim.New(st, claim.WithTimeout(settings.ReadTimeout)),
		rewards.WithClock(period.RealClock{}),
		rewards.WithBus(bus),
		rewards.WithLogger(logger),
	)
	if err != nil {
		if cerr := closer(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
		return nil, err
	}
	if settings.DisplayName != "" {
		if _, err := svc.SetDisplayName(cmd.Context(), settings.User, settings.DisplayName); err != nil {
			logger.Warn("display name not stored", "err", err)
		}
	}
	return &app{
		settings: settings,
		logger:   logger,
		closer:   closer,
		bus:      bus,
		rewards:  svc,
	}, nil
}

func (a *app) Close() {
	a.bus.Close()
	if cerr := a.closer(); cerr != nil {
		logErrf("failed to close db: %v\n", cerr)
	}
}

func (a *app) backend() *backend.Client {
	return backend.New(a.settings.BackendURL, a.settings.BackendTimeout)
}

func runPadCmd(cmd *cobra.Command, _ []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	events, unsubscribe := a.bus.Subscribe(16)
	defer unsubscribe()

	model := tui.NewModel(ctx, a.rewards, events, a.settings.User)
	program := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

func applyStringFlag(cmd *cobra.Command, name string, target *string, value string) {
	if !cmd.Flags().Changed(name) {
		return
	}
	*target = value
}

func applyDurationFlag(cmd *cobra.Command, name string, target *time.Duration, value time.Duration) {
	if !cmd.Flags().Changed(name) {
		return
	}
	*target = value
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}

func logErrln(args ...any) {
	if _, err := fmt.Fprintln(os.Stderr, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
