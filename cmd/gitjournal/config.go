package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"github.com/choplin/gitjournal/internal/config"
	"github.com/choplin/gitjournal/internal/services"
)

func newConfigCmd(opts *rootOptions) *cobra.Command {
	var (
		path          string
		pushByDefault string
	)

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or update settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var push *bool
			if cmd.Flags().Changed("push-by-default") {
				b, err := strconv.ParseBool(pushByDefault)
				if err != nil {
					return fmt.Errorf("invalid --push-by-default value %q: expected true or false", pushByDefault)
				}
				push = &b
			}

			ctx := cmd.Context()
			return withSettings(ctx, opts, func(svc *services.SettingsService) error {
				if cmd.Flags().Changed("path") {
					if err := svc.SetRepositoryPath(ctx, path); err != nil {
						return err
					}
				}
				if push != nil {
					if err := svc.SetPushByDefault(ctx, *push); err != nil {
						return err
					}
				}

				eff, err := svc.Effective(ctx)
				if err != nil {
					return err
				}

				printSettings(cmd.OutOrStdout(), eff)
				if cmd.Flags().Changed("path") && overridden(eff.RepositoryPathSource) {
					printOverride(cmd.ErrOrStderr(), "repository path", eff.RepositoryPathSource)
				}
				if push != nil && overridden(eff.PushByDefaultSource) {
					printOverride(cmd.ErrOrStderr(), "push-by-default", eff.PushByDefaultSource)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&path, "path", "", "Path of the journal repository")
	cmd.Flags().StringVar(&pushByDefault, "push-by-default", "", "Push after every add (true or false)")

	return cmd
}

func printSettings(w io.Writer, eff services.Effective) {
	path := eff.RepositoryPath
	if path == "" {
		path = "(not set)"
	}
	fmt.Fprintf(w, "Repository path: %s\n", path)
	fmt.Fprintf(w, "Push by default: %t\n", eff.PushByDefault)
}

func overridden(source string) bool {
	return source == config.SourceFile || source == config.SourceEnv
}

func printOverride(w io.Writer, name, source string) {
	where := "the config file"
	if source == config.SourceEnv {
		where = "an environment variable"
	}
	fmt.Fprintln(w, text.FgYellow.Sprintf("Note: %s is overridden by %s.", name, where))
}
