// Package cli implements the tasknest command tree.
package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"tasknest/internal/config"
	"tasknest/internal/labels"
	"tasknest/internal/query"
	"tasknest/internal/storage/sqlite"
)

// Version is overridden at build time with -ldflags.
var Version = "1.0.0"

var configFile string

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "tasknest",
		Short:         "Task boards with a REST API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&configFile, "config", "", "config file (default ./tasknest.yaml)")
	pf.String("db", "", "path to sqlite database file")
	pf.String("locale", "", "display locale for labels and collation")
	pf.String("locale-file", "", "extra label equivalence table (YAML)")
	pf.String("log-level", "", "log level: debug, info, warn, error")
	pf.String("state", "", "path of the local state file")

	root.AddCommand(
		newServeCmd(),
		newBoardsCmd(),
		newTasksCmd(),
		newSearchCmd(),
		newExportCmd(),
		newPrefsCmd(),
		newVersionCmd(),
	)
	return root
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}

// env is what every command needs once configuration is resolved.
type env struct {
	cfg    config.Config
	logger *slog.Logger
	labels *labels.Normalizer
	engine *query.Engine
}

func loadEnv(cmd *cobra.Command) (*env, error) {
	cfg, err := config.Load(configFile, cmd.Flags())
	if err != nil {
		return nil, err
	}
	logger := cfg.Logger(cmd.ErrOrStderr())
	n, err := labels.Load(cfg.LocaleFile)
	if err != nil {
		return nil, fmt.Errorf("load labels: %w", err)
	}
	return &env{
		cfg:    cfg,
		logger: logger,
		labels: n,
		engine: query.NewEngine(n, cfg.Locale),
	}, nil
}

func (e *env) openStore() (*sqlite.Store, error) {
	store, err := sqlite.Open(e.cfg.DBPath, e.logger)
	if err != nil {
		return nil, fmt.Errorf("unable to open database: %w", err)
	}
	return store, nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "tasknest %s\n", Version)
		},
	}
}
