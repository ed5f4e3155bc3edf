package cli

import (
	"context"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/valuer/internal/blob"
	"github.com/roach88/valuer/internal/dispatch"
	"github.com/roach88/valuer/internal/mail"
	"github.com/roach88/valuer/internal/render"
)

// newDispatcher wires a dispatcher from the session's configuration.
func (s *session) newDispatcher(opts *RootOptions, extra ...dispatch.Option) (*dispatch.Dispatcher, error) {
	now := opts.clock()
	r, err := render.New(s.cfg.Format, render.WithCreationDate(now()))
	if err != nil {
		return nil, err
	}

	base := []dispatch.Option{
		dispatch.WithProfile(s.cfg.Document),
		dispatch.WithJournal(s.store),
		dispatch.WithClock(now),
		dispatch.WithComposeBase(s.cfg.Mail.ComposeBase),
		dispatch.WithRecorder(opts.metricsRecorder()),
		dispatch.WithLogger(slog.Default()),
	}
	return dispatch.New(r, append(base, extra...)...), nil
}

// NewGenerateCommand creates the generate command (local delivery).
func NewGenerateCommand(rootOpts *RootOptions) *cobra.Command {
	var outDir string

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Render the draft and save the document locally",
		Long: `Render the draft and save it as valuation-{recipient}-{timestamp}.pdf
in the output directory.

Example:
  valuer generate --out ~/Documents/valuations`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, rootOpts, func(ctx context.Context, s *session) error {
				dir := s.cfg.OutputDir
				if outDir != "" {
					dir = outDir
				}
				d, err := s.newDispatcher(rootOpts, dispatch.WithSaver(dispatch.DirSaver{Dir: dir}))
				if err != nil {
					return err
				}
				out, err := d.Dispatch(ctx, s.model.Request(), dispatch.Local)
				if err != nil {
					return err
				}
				return s.out.Success(newDeliveryView(out))
			})
		},
	}

	cmd.Flags().StringVarP(&outDir, "out", "o", "", "output directory (overrides config)")

	return cmd
}

// NewSendCommand creates the send command (remote delivery).
func NewSendCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "send",
		Short: "Publish the document and open a pre-filled mail to the recipient",
		Long: `Render the draft, publish it to the blob store, and open a web-mail
compose window addressed to the recipient with the itemized summary and a
link to the document.

With mail.print_only (or VALUER_PRINT_ONLY=true) the compose URL is printed
instead of opened.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, rootOpts, func(ctx context.Context, s *session) error {
				blobs, err := blob.NewFSStore(s.cfg.Blob.Root, s.cfg.Blob.BaseURL)
				if err != nil {
					return err
				}
				composer, err := mail.NewComposer(s.cfg.Mail.BodyTemplate)
				if err != nil {
					return s.out.FailCommand(ErrCodeConfig, "invalid mail template", err)
				}

				d, err := s.newDispatcher(rootOpts,
					dispatch.WithBlobStore(blobs),
					dispatch.WithMailComposer(composer),
					dispatch.WithOpener(s.opener(rootOpts, cmd)),
				)
				if err != nil {
					return err
				}
				out, err := d.Dispatch(ctx, s.model.Request(), dispatch.Remote)
				if err != nil {
					return err
				}
				return s.out.Success(newDeliveryView(out))
			})
		},
	}
}

// opener picks how the compose URL is presented. In JSON mode a printed URL
// would corrupt the output; the URL is part of the response instead.
func (s *session) opener(opts *RootOptions, cmd *cobra.Command) mail.Opener {
	switch {
	case opts.opener != nil:
		return opts.opener
	case s.cfg.Mail.PrintOnly && opts.Format == "json":
		return mail.WriterOpener{W: io.Discard}
	case s.cfg.Mail.PrintOnly:
		return mail.WriterOpener{W: cmd.OutOrStdout()}
	default:
		return mail.ExecOpener{Command: s.cfg.Mail.OpenCommand}
	}
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		journal bool
		limit   int
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List published documents, newest first",
		Long: `List the documents in the blob store, newest first. With --local, list
the delivery journal instead, which also records locally saved documents.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, rootOpts, func(ctx context.Context, s *session) error {
				if journal {
					deliveries, err := s.store.ReadDeliveries(ctx, limit)
					if err != nil {
						return err
					}
					return s.out.Success(journalView{Deliveries: deliveries})
				}

				blobs, err := blob.NewFSStore(s.cfg.Blob.Root, s.cfg.Blob.BaseURL)
				if err != nil {
					return err
				}
				objs, err := blobs.List(ctx, dispatch.BlobPrefix)
				if err != nil {
					return err
				}
				if limit > 0 && len(objs) > limit {
					objs = objs[:limit]
				}
				return s.out.Success(publishedView{Documents: objs})
			})
		},
	}

	cmd.Flags().BoolVar(&journal, "local", false, "list the delivery journal instead of the blob store")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "show at most n entries (0 = all)")

	return cmd
}
