package cli

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/valuer/internal/config"
	"github.com/roach88/valuer/internal/form"
	"github.com/roach88/valuer/internal/store"
)

// session bundles what a draft command needs: configuration, the open
// database and the form model on top of it.
type session struct {
	cfg   config.Config
	store *store.Store
	model *form.Model
	out   *OutputFormatter
}

func newFormatter(opts *RootOptions, cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   opts.Verbose,
	}
}

// loadConfig layers flags over the config file and environment, then validates.
func loadConfig(opts *RootOptions) (config.Config, error) {
	cfg, err := config.Load(opts.ConfigPath, opts.envFiles...)
	if err != nil {
		return config.Config{}, err
	}
	if opts.Database != "" {
		cfg.DBPath = opts.Database
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// openSession loads config, opens the database and the draft. Failures are
// reported through the formatter; the returned error is an ExitError.
func openSession(cmd *cobra.Command, opts *RootOptions) (*session, error) {
	out := newFormatter(opts, cmd)

	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, out.FailCommand(ErrCodeConfig, "invalid configuration", err)
	}

	out.VerboseLog("Opening database %s", cfg.DBPath)
	st, err := store.Open(cfg.DBPath)
	if err != nil {
		return nil, out.FailCommand(ErrCodeStore, "failed to open database", err)
	}
	st.SetClock(opts.clock())

	model, err := form.Open(cmd.Context(), st, opts.idGenerator(),
		form.WithLogger(slog.Default()),
		form.WithRecorder(opts.metricsRecorder()),
	)
	if err != nil {
		st.Close()
		return nil, out.FailCommand(ErrCodeStore, "failed to load draft", err)
	}

	return &session{cfg: cfg, store: st, model: model, out: out}, nil
}

func (s *session) Close() {
	if err := s.store.Close(); err != nil {
		slog.Error("error closing database", "error", err)
	}
}
