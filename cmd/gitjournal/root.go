package main

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/choplin/gitjournal/internal/config"
	"github.com/choplin/gitjournal/internal/database"
	"github.com/choplin/gitjournal/internal/services"
)

type rootOptions struct {
	configFile string
	verbose    bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:           "gitjournal",
		Short:         "gitjournal - a journal kept in a git repository",
		Long:          "gitjournal appends timestamped text entries to a local git repository and optionally pushes them.",
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			level := config.LogLevel()
			if opts.verbose {
				level = slog.LevelDebug
			}
			handler := slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})
			slog.SetDefault(slog.New(handler))
		},
	}

	rootCmd.PersistentFlags().StringVar(&opts.configFile, "config", "", "Settings override file (default $XDG_CONFIG_HOME/gitjournal/config.env)")
	rootCmd.PersistentFlags().BoolVar(&opts.verbose, "verbose", false, "Enable debug logging")

	rootCmd.AddCommand(newConfigCmd(opts))
	rootCmd.AddCommand(newAddCmd(opts))
	rootCmd.AddCommand(newListCmd(opts))

	return rootCmd
}

// withSettings opens the settings database for the duration of fn.
func withSettings(ctx context.Context, opts *rootOptions, fn func(*services.SettingsService) error) error {
	dbCtx, err := database.CreateDatabase("")
	if err != nil {
		return err
	}
	defer func() {
		_ = database.CloseDatabase(dbCtx)
	}()

	configFile := opts.configFile
	if configFile == "" {
		configFile = config.GetConfigFilePath()
	}
	slog.DebugContext(ctx, "settings sources", "db", config.GetDBPath(), "file", configFile)

	return fn(services.NewSettingsService(dbCtx, configFile))
}
