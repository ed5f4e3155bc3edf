package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/valuer/internal/form"
	"github.com/roach88/valuer/internal/mail"
	"github.com/roach88/valuer/internal/metrics"
	"github.com/roach88/valuer/internal/prompt"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose     bool
	Format      string // "json" | "text"
	ConfigPath  string
	Database    string
	MetricsFile string

	// Collaborators that tests replace. Nil means the production default.
	ids      form.IDGenerator
	now      func() time.Time
	opener   mail.Opener
	driver   prompt.Driver
	envFiles []string

	recorder metrics.Recorder
	prom     *metrics.PrometheusRecorder
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the valuer CLI.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "valuer",
		Short: "valuer - itemized valuation documents",
		Long: `Assemble an itemized valuation request, then render it as a paginated
document and deliver it: saved locally, or published with a pre-filled mail
to the recipient.

The draft is kept in a local SQLite database and survives restarts.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			setupLogging(cmd.ErrOrStderr(), opts.Verbose)
			opts.setupMetrics()
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "path to config file (default valuer.yaml if present)")
	cmd.PersistentFlags().StringVar(&opts.Database, "db", "", "path to SQLite database (overrides config)")
	cmd.PersistentFlags().StringVar(&opts.MetricsFile, "metrics-file", "", "write Prometheus metrics to this file on exit")

	// Add subcommands
	cmd.AddCommand(NewShowCommand(opts))
	cmd.AddCommand(NewRecipientCommand(opts))
	cmd.AddCommand(NewItemCommand(opts))
	cmd.AddCommand(NewImportCommand(opts))
	cmd.AddCommand(NewEditCommand(opts))
	cmd.AddCommand(NewResetCommand(opts))
	cmd.AddCommand(NewPreviewCommand(opts))
	cmd.AddCommand(NewGenerateCommand(opts))
	cmd.AddCommand(NewSendCommand(opts))
	cmd.AddCommand(NewHistoryCommand(opts))

	return cmd
}

// Run executes the CLI with args and returns the process exit code.
// Metrics are written even when the command fails.
func Run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	return run(ctx, &RootOptions{}, args, stdout, stderr)
}

func run(ctx context.Context, opts *RootOptions, args []string, stdout, stderr io.Writer) int {
	cmd := newRootCommand(opts)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.ExecuteContext(ctx)

	if opts.prom != nil && opts.MetricsFile != "" {
		if werr := opts.prom.WriteTextfile(opts.MetricsFile); werr != nil {
			slog.Error("failed to write metrics", "path", opts.MetricsFile, "error", werr)
		}
	}

	if err != nil {
		// ExitErrors were already reported through the formatter.
		var reported *ExitError
		if !errors.As(err, &reported) {
			fmt.Fprintln(stderr, "Error:", err)
		}
	}
	return GetExitCode(err)
}

// setupLogging installs a text handler on w, at debug level when verbose.
func setupLogging(w io.Writer, verbose bool) {
	logLevel := slog.LevelInfo
	if verbose {
		logLevel = slog.LevelDebug
	}
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: logLevel,
	})
	slog.SetDefault(slog.New(handler))
}

func (o *RootOptions) setupMetrics() {
	if o.MetricsFile == "" {
		o.recorder = metrics.NoopRecorder{}
		return
	}
	o.prom = metrics.NewPrometheusRecorder(nil)
	o.recorder = o.prom
}

func (o *RootOptions) metricsRecorder() metrics.Recorder {
	if o.recorder == nil {
		return metrics.NoopRecorder{}
	}
	return o.recorder
}

func (o *RootOptions) idGenerator() form.IDGenerator {
	if o.ids == nil {
		return form.UUIDv7Generator{}
	}
	return o.ids
}

func (o *RootOptions) clock() func() time.Time {
	if o.now == nil {
		return time.Now
	}
	return o.now
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
