package main

import (
	"os"

	"cosmossdk.io/log"
	"github.com/spf13/cobra"
)

// cli carries what every subcommand needs once the root command has loaded
// the config.
type cli struct {
	cfg    Config
	logger log.Logger
}

// NewRootCmd builds the prectl command tree.
func NewRootCmd() *cobra.Command {
	app := &cli{logger: log.NewNopLogger()}

	rootCmd := &cobra.Command{
		Use:          "prectl",
		Short:        "Build and inspect proxy re-encryption policy objects",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			path, err := cmd.Flags().GetString("config")
			if err != nil {
				return err
			}
			cfg, err := LoadConfig(path, cmd.Flags().Changed("config"))
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("level") {
				cfg.Level, _ = cmd.Flags().GetString("level")
			}
			lvl, err := cfg.LogLevel()
			if err != nil {
				return err
			}

			app.cfg = cfg
			app.logger = log.NewLogger(os.Stderr, log.LevelOption(lvl))
			return nil
		},
	}

	rootCmd.PersistentFlags().String("config", DefaultConfigPath(), "Path to the TOML config file")
	rootCmd.PersistentFlags().String("level", defaultLevel, "Log level (overrides the config file)")

	rootCmd.AddCommand(
		keygenCmd(app),
		policyCmd(app),
		grantCmd(app),
		openCmd(app),
		inspectCmd(app),
		brandsCmd(),
	)
	return rootCmd
}
