package main

import (
	"fmt"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/spf13/cobra"

	"github.com/choplin/gitjournal/internal/journal"
	"github.com/choplin/gitjournal/internal/services"
	"github.com/choplin/gitjournal/internal/usecase"
)

// pushError marks a push failure that happened after the entry was committed.
type pushError struct {
	commit plumbing.Hash
	repo   string
	err    error
}

func (e *pushError) Error() string {
	return e.err.Error()
}

func (e *pushError) Unwrap() error {
	return e.err
}

func newAddCmd(opts *rootOptions) *cobra.Command {
	var (
		message string
		push    bool
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a journal entry and commit it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			var settings journal.Settings
			err := withSettings(ctx, opts, func(svc *services.SettingsService) error {
				var err error
				settings, err = svc.Load(ctx)
				return err
			})
			if err != nil {
				return err
			}

			uc := usecase.NewEntry(settings)
			result, err := uc.Add(ctx, usecase.AddInput{Message: message, Push: push})
			if err != nil {
				if result != nil && !result.Commit.IsZero() {
					return &pushError{commit: result.Commit, repo: settings.RepositoryPath, err: err}
				}
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), result.Entry.Message)
			return nil
		},
	}

	cmd.Flags().StringVarP(&message, "message", "m", "", "Entry text")
	cmd.Flags().BoolVarP(&push, "push", "p", false, "Push to the tracking branch after committing")
	_ = cmd.MarkFlagRequired("message")

	return cmd
}
