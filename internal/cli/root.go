package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/agentx-labs/modgraph/internal/branding"
	"github.com/agentx-labs/modgraph/internal/config"
	"github.com/agentx-labs/modgraph/internal/registry"
	"github.com/spf13/cobra"
)

var (
	buildVersion string
	buildCommit  string
	buildDate    string
)

var (
	flagModsRoot string
	flagVerbose  bool
)

// logger is configured by the root command before any subcommand runs.
var logger = slog.Default()

var rootCmd = &cobra.Command{
	Use:   branding.CLIName(),
	Short: branding.Description(),
	Long: branding.DisplayName() + ` indexes content modules, resolves the references between them,
and clones entities together with everything they depend on.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		config.Load()
		if flagModsRoot != "" {
			config.Override(config.KeyModsRoot, flagModsRoot)
		}

		level := config.LogLevel()
		if flagVerbose {
			level = slog.LevelDebug
		}
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagModsRoot, "mods-root", "", "Directory holding the modules (overrides mods_root)")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Log debug output to stderr")
}

// Execute runs the root command with build info injected via ldflags.
func Execute(version, commit, date string) error {
	buildVersion = version
	buildCommit = commit
	buildDate = date
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	return err
}

// openRegistry loads every module under the configured mods root.
func openRegistry() (*registry.Registry, error) {
	reg, err := registry.New(registry.Config{
		ModsRoot:      config.ModsRoot(),
		DefaultModule: config.DefaultModuleName(),
		Logger:        logger,
	})
	if err != nil {
		return nil, err
	}
	if err := reg.Load(); err != nil {
		reg.Close()
		return nil, fmt.Errorf("loading %s: %w", reg.ModsRoot(), err)
	}
	return reg, nil
}
