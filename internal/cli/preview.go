package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/valuer/internal/compose"
	"github.com/roach88/valuer/internal/config"
	"github.com/roach88/valuer/internal/render"
	"github.com/roach88/valuer/internal/valuation"
)

// previewView is a rendered preview of a draft.
type previewView struct {
	Text        string `json:"text"`
	Fingerprint string `json:"fingerprint"`
	PDF         string `json:"pdf,omitempty"`
}

func (v previewView) String() string {
	s := strings.TrimRight(v.Text, "\n")
	if v.PDF != "" {
		s += "\n\nWrote " + v.PDF
	}
	return s
}

// renderPreview composes req and renders it as text, plus a PDF when
// pdfPath is set. Nothing is published or journaled.
func renderPreview(req valuation.Request, profile compose.Profile, pdfPath string, now time.Time) (previewView, error) {
	tree, err := compose.Compose(req, profile)
	if err != nil {
		return previewView{}, err
	}
	fp, err := tree.Fingerprint()
	if err != nil {
		return previewView{}, err
	}
	text, err := render.Text{}.Render(tree)
	if err != nil {
		return previewView{}, err
	}

	v := previewView{Text: string(text), Fingerprint: fp}
	if pdfPath == "" {
		return v, nil
	}

	data, err := render.NewPDF(render.WithCreationDate(now)).Render(tree)
	if err != nil {
		return previewView{}, err
	}
	if dir := filepath.Dir(pdfPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return previewView{}, fmt.Errorf("create %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(pdfPath, data, 0o644); err != nil {
		return previewView{}, fmt.Errorf("write preview: %w", err)
	}
	v.PDF = pdfPath
	return v, nil
}

// NewPreviewCommand creates the preview command.
func NewPreviewCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		pdfPath string
		from    string
		watch   bool
	)

	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Render the draft without delivering it",
		Long: `Render the draft (or a request file) as text, and optionally as PDF.

With --watch, the request file given by --from is re-rendered every time it
changes until interrupted.

Examples:
  valuer preview
  valuer preview --pdf preview.pdf
  valuer preview --from request.yaml --pdf preview.pdf --watch`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			now := rootOpts.clock()

			if from == "" {
				if watch {
					return newFormatter(rootOpts, cmd).FailCommand(ErrCodeInput, "--watch requires --from", nil)
				}
				return withSession(cmd, rootOpts, func(ctx context.Context, s *session) error {
					v, err := renderPreview(s.model.Request(), s.cfg.Document, pdfPath, now())
					if err != nil {
						return err
					}
					return s.out.Success(v)
				})
			}

			out := newFormatter(rootOpts, cmd)
			cfg, err := loadConfig(rootOpts)
			if err != nil {
				return out.FailCommand(ErrCodeConfig, "invalid configuration", err)
			}

			if err := previewFile(out, cfg, from, pdfPath, now()); err != nil {
				return err
			}
			if !watch {
				return nil
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			out.VerboseLog("Watching %s", from)
			w := &fileWatcher{
				path: from,
				onChange: func() {
					// Errors are reported and the watch continues.
					_ = previewFile(out, cfg, from, pdfPath, now())
				},
			}
			if err := w.Run(ctx); err != nil {
				return out.Fail(err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&pdfPath, "pdf", "", "also write a PDF to this path")
	cmd.Flags().StringVar(&from, "from", "", "render a YAML or JSON request file instead of the draft")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "re-render when the --from file changes")

	return cmd
}

// previewFile renders one request file and reports the result.
func previewFile(out *OutputFormatter, cfg config.Config, path, pdfPath string, now time.Time) error {
	req, err := valuation.ReadRequestFile(path)
	if err != nil {
		if valuation.IsValidationError(err) {
			return out.Fail(err)
		}
		return out.FailCommand(ErrCodeInput, "failed to read request file", err)
	}
	v, err := renderPreview(req, cfg.Document, pdfPath, now)
	if err != nil {
		slog.Debug("preview failed", "path", path, "error", err)
		return out.Fail(err)
	}
	return out.Success(v)
}
