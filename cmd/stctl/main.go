package main

import (
	"fmt"
	"os"

	"github.com/itohio/goshot/pkg/config"
	"github.com/itohio/goshot/pkg/log"
	"github.com/itohio/goshot/pkg/settings"
	"github.com/itohio/goshot/pkg/storage"
	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

type rootFlags struct {
	config  string
	dir     string
	path    string
	verbose bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	rootCmd := &cobra.Command{
		Use:   "stctl",
		Short: "Shot timer settings and simulation tool",
		Long: `stctl inspects and edits the shot timer settings file on a mounted SD card,
renders numbers and times the way the timer display does and runs a simulated timer in the
terminal.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&flags.config, "config", "config.yaml", "Configuration file path")
	rootCmd.PersistentFlags().StringVar(&flags.dir, "dir", "", "Settings medium directory (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flags.path, "path", "", "Settings file path on the medium (overrides config)")
	rootCmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "Debug logging with file:line")

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newRenderCmd())
	rootCmd.AddCommand(newSettingsCmd(flags))
	rootCmd.AddCommand(newSimCmd(flags))

	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "stctl %s (commit %s, built %s)\n", version, commit, date)
			return nil
		},
	}
}

// env is the configuration shared by the subcommands.
type env struct {
	cfg    *config.Config
	medium *storage.Dir
	store  *settings.Store
}

// loadEnv loads the configuration, applies flag overrides and configures logging.
func loadEnv(flags *rootFlags) (*env, error) {
	cfg, err := config.Load(flags.config)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if flags.dir != "" {
		cfg.Storage.Dir = flags.dir
	}
	if flags.path != "" {
		cfg.Storage.SettingsPath = flags.path
	}
	if flags.verbose {
		cfg.Log.Level = "debug"
		cfg.Log.Verbose = true
	}

	log.Configure(log.Config{
		Level:   cfg.Log.Level,
		Output:  os.Stderr,
		Console: cfg.Log.Console,
		Verbose: cfg.Log.Verbose,
	})

	medium := storage.NewDir(cfg.Storage.Dir, log.WithComponent("storage"))
	return &env{
		cfg:    cfg,
		medium: medium,
		store:  settings.NewStore(medium, cfg.Storage.SettingsPath, log.WithComponent("settings")),
	}, nil
}
