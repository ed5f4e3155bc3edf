package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/roach88/valuer/internal/valuation"
)

// withSession opens a session, runs fn and closes the session.
// Errors returned by fn are reported through the formatter unless they
// already are ExitErrors.
func withSession(cmd *cobra.Command, opts *RootOptions, fn func(ctx context.Context, s *session) error) error {
	s, err := openSession(cmd, opts)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := fn(cmd.Context(), s); err != nil {
		var reported *ExitError
		if errors.As(err, &reported) {
			return err
		}
		return s.out.Fail(err)
	}
	return nil
}

// showDraft prints the current draft with its totals.
func (s *session) showDraft() error {
	return s.out.Success(newDraftView(s.model.Request(), s.cfg.Document.Currency))
}

// NewShowCommand creates the show command.
func NewShowCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the draft and its totals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, rootOpts, func(ctx context.Context, s *session) error {
				return s.showDraft()
			})
		},
	}
}

// NewRecipientCommand creates the recipient command.
func NewRecipientCommand(rootOpts *RootOptions) *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "recipient <name>",
		Short: "Set the recipient of the valuation",
		Long: `Set the recipient name printed on the document and used in the file name.

Example:
  valuer recipient "Nordby AS" --email post@nordby.example`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, rootOpts, func(ctx context.Context, s *session) error {
				var err error
				if cmd.Flags().Changed("email") {
					err = s.model.SetRecipientContact(ctx, args[0], email)
				} else {
					err = s.model.SetRecipient(ctx, args[0])
				}
				if err != nil {
					return err
				}
				return s.showDraft()
			})
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "recipient email address (pre-fills the mail)")

	return cmd
}

// NewItemCommand creates the item command group.
func NewItemCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "item",
		Short: "Add, update or remove items",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "add",
		Short: "Append a blank item",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, rootOpts, func(ctx context.Context, s *session) error {
				it, err := s.model.AddItem(ctx)
				if err != nil {
					return err
				}
				v := newDraftView(s.model.Request(), s.cfg.Document.Currency)
				v.AddedID = it.ID
				return s.out.Success(v)
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "update <id> <field> <value>",
		Short: "Change one field of an item (name, price or description)",
		Long: `Change one field of an item. Prices are amounts without VAT; a blank
price counts as zero.

Example:
  valuer item update 0190a1b2-... price 1250.00`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, rootOpts, func(ctx context.Context, s *session) error {
				field, err := valuation.ParseField(args[1])
				if err != nil {
					return err
				}
				if err := s.model.UpdateItem(ctx, args[0], field, args[2]); err != nil {
					return err
				}
				return s.showDraft()
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "remove <id>",
		Short: "Remove an item (the last item cannot be removed)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, rootOpts, func(ctx context.Context, s *session) error {
				if err := s.model.RemoveItem(ctx, args[0]); err != nil {
					return err
				}
				return s.showDraft()
			})
		},
	})

	return cmd
}

// NewImportCommand creates the import command.
func NewImportCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Replace the draft with a request from a YAML or JSON file",
		Long: `Replace the draft with the request in a YAML or JSON file.

Items without an id are given one. The file must contain at least one item.

Example file:
  recipient_name: Nordby AS
  items:
    - name: Desk
      unit_price: "100.00"
      description: Solid oak desk`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, rootOpts, func(ctx context.Context, s *session) error {
				req, err := valuation.ReadRequestFile(args[0])
				if err != nil {
					if valuation.IsValidationError(err) {
						return err
					}
					return s.out.FailCommand(ErrCodeInput, "failed to read request file", err)
				}
				if err := s.model.Replace(ctx, req); err != nil {
					return err
				}
				return s.showDraft()
			})
		},
	}
}

// NewResetCommand creates the reset command.
func NewResetCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Discard the draft and start over with one blank item",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, rootOpts, func(ctx context.Context, s *session) error {
				if err := s.model.Reset(ctx); err != nil {
					return err
				}
				return s.showDraft()
			})
		},
	}
}
