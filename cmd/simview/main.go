package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"simview/internal/config"
	"simview/internal/logging"
	"simview/internal/metrics"
	"simview/internal/store/simdb"
	"simview/internal/theme"
	"simview/internal/view"
)

var version = "0.1.0-dev"

// app carries what every subcommand needs once flags are parsed.
type app struct {
	cfgPath string
	dbPath  string
	cfg     config.Config
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd(&app{}).ExecuteContext(ctx)
	stop()
	logging.Sync()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "simview",
		Short: "Render a social simulation database for agents and auditors",
		Long: `simview reads the SQLite state of a simulated social network and renders
either the perception text an agent reads before acting or an audit report
of posts, threads and recent actions.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load()
		},
		Run: func(cmd *cobra.Command, args []string) {
			theme.PrintBanner(cmd.ErrOrStderr())
			_ = cmd.Help()
		},
	}
	rootCmd.PersistentFlags().StringVar(&a.cfgPath, "config", "./simview.yaml", "config path")
	rootCmd.PersistentFlags().StringVar(&a.dbPath, "db", "", "simulation database (overrides config)")

	rootCmd.AddCommand(
		newVersionCmd(),
		newInitCmd(),
		newPromptCmd(a),
		newPromptsCmd(a),
		newReportCmd(a),
		newLogsCmd(a),
	)
	return rootCmd
}

func (a *app) load() error {
	cfg, err := config.LoadOrDefault(a.cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if a.dbPath != "" {
		cfg.Storage.DBPath = a.dbPath
	}
	a.cfg = cfg
	logging.Init(cfg.Logging.Level)
	metrics.StartServer(cfg.Metrics.Addr)
	return nil
}

func (a *app) openDB() (*simdb.DB, error) {
	return simdb.Open(a.cfg.Storage.DBPath)
}

func (a *app) renderer(db *simdb.DB) *view.Renderer {
	return view.New(view.FromDB(db), a.cfg.Render)
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return nil
		},
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "simview version %s\n", version)
		},
	}
}
