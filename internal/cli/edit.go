package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/roach88/valuer/internal/prompt"
)

// NewEditCommand creates the interactive edit command.
func NewEditCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "edit",
		Short: "Edit the draft interactively",
		Long: `Edit the recipient and items through terminal prompts.

Every change is saved immediately; quitting with Ctrl-C keeps what was
entered so far.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, rootOpts, func(ctx context.Context, s *session) error {
				driver := rootOpts.driver
				if driver == nil {
					driver = prompt.SurveyDriver{Out: cmd.OutOrStdout()}
				}

				err := prompt.NewEditor(s.model, driver, s.cfg.Document.Currency).Run(ctx)
				if err != nil && !errors.Is(err, prompt.ErrAborted) {
					return err
				}
				return s.showDraft()
			})
		},
	}
}
