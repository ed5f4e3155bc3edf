package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/valuer/internal/mail"
	"github.com/roach88/valuer/internal/render"
)

var envKeys = []string{
	"VALUER_DB", "VALUER_OUTPUT_DIR", "VALUER_FORMAT", "VALUER_BLOB_ROOT",
	"VALUER_BLOB_BASE_URL", "VALUER_COMPOSE_BASE", "VALUER_MAIL_TEMPLATE",
	"VALUER_PRINT_ONLY", "VALUER_OPEN_COMMAND", "VALUER_CURRENCY",
	"VALUER_ISSUER_NAME", "VALUER_ISSUER_EMAIL", "VALUER_ISSUER_LOGO",
}

// clearEnv empties every VALUER_* variable for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
}

func noEnvFile(t *testing.T) string {
	return filepath.Join(t.TempDir(), "absent.env")
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), noEnvFile(t))
	require.Error(t, err, "an explicit config path must exist")

	chdirForTest(t, t.TempDir())
	cfg, err = Load("", noEnvFile(t))
	require.NoError(t, err)

	assert.Equal(t, Default(), cfg)
	assert.Equal(t, "valuer.db", cfg.DBPath)
	assert.Equal(t, render.FormatPDF, cfg.Format)
	assert.Equal(t, mail.DefaultComposeBase, cfg.Mail.ComposeBase)
	assert.Equal(t, "NOK", cfg.Document.Currency)
	assert.Equal(t, "Valuation", cfg.Document.Labels.Title)
	require.NoError(t, cfg.Validate())
}

func TestLoad_YAML(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "valuer.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
db_path: /var/lib/valuer/state.db
format: text
blob:
  root: /srv/pub
  base_url: https://files.example.com
mail:
  print_only: true
document:
  currency: EUR
  labels:
    title: Verdivurdering
  issuer:
    name: Example Appraisals
    phone: "+47 000 00 000"
`), 0o600))

	cfg, err := Load(path, noEnvFile(t))
	require.NoError(t, err)

	assert.Equal(t, "/var/lib/valuer/state.db", cfg.DBPath)
	assert.Equal(t, render.FormatText, cfg.Format)
	assert.Equal(t, "/srv/pub", cfg.Blob.Root)
	assert.Equal(t, "https://files.example.com", cfg.Blob.BaseURL)
	assert.True(t, cfg.Mail.PrintOnly)
	assert.Equal(t, "EUR", cfg.Document.Currency)
	assert.Equal(t, "Verdivurdering", cfg.Document.Labels.Title)
	assert.Equal(t, "Price", cfg.Document.Labels.Price, "unset labels keep their defaults")
	assert.Equal(t, "Example Appraisals", cfg.Document.Issuer.Name)
	assert.Equal(t, ".", cfg.OutputDir, "unset keys keep their defaults")
	assert.Equal(t, mail.DefaultComposeBase, cfg.Mail.ComposeBase)
}

func TestLoad_MalformedYAML(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("format: [unclosed"), 0o600))

	_, err := Load(path, noEnvFile(t))
	assert.Error(t, err)
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("VALUER_DB", "/tmp/override.db")
	t.Setenv("VALUER_FORMAT", "text")
	t.Setenv("VALUER_PRINT_ONLY", "true")
	t.Setenv("VALUER_OPEN_COMMAND", "firefox --new-window")
	t.Setenv("VALUER_ISSUER_NAME", "Env Appraisals")

	path := filepath.Join(t.TempDir(), "valuer.yaml")
	require.NoError(t, os.WriteFile(path, []byte("db_path: from-file.db\nformat: pdf\n"), 0o600))

	cfg, err := Load(path, noEnvFile(t))
	require.NoError(t, err)

	assert.Equal(t, "/tmp/override.db", cfg.DBPath)
	assert.Equal(t, render.FormatText, cfg.Format)
	assert.True(t, cfg.Mail.PrintOnly)
	assert.Equal(t, []string{"firefox", "--new-window"}, cfg.Mail.OpenCommand)
	assert.Equal(t, "Env Appraisals", cfg.Document.Issuer.Name)
}

func TestLoad_InvalidBoolKeepsDefault(t *testing.T) {
	clearEnv(t)
	t.Setenv("VALUER_PRINT_ONLY", "sometimes")
	chdirForTest(t, t.TempDir())

	cfg, err := Load("", noEnvFile(t))
	require.NoError(t, err)
	assert.False(t, cfg.Mail.PrintOnly)
}

func TestLoad_DotEnv(t *testing.T) {
	clearEnv(t)
	os.Unsetenv("VALUER_OUTPUT_DIR")
	t.Cleanup(func() { os.Unsetenv("VALUER_OUTPUT_DIR") })

	envFile := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("VALUER_OUTPUT_DIR=/srv/out\n"), 0o600))

	chdirForTest(t, t.TempDir())
	cfg, err := Load("", envFile)
	require.NoError(t, err)
	assert.Equal(t, "/srv/out", cfg.OutputDir)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty db", func(c *Config) { c.DBPath = " " }},
		{"bad format", func(c *Config) { c.Format = "docx" }},
		{"relative compose base", func(c *Config) { c.Mail.ComposeBase = "/compose" }},
		{"relative blob url", func(c *Config) { c.Blob.BaseURL = "files" }},
		{"missing logo", func(c *Config) { c.Document.Issuer.LogoPath = "/nonexistent/logo.png" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

// chdirForTest mirrors testing.T.Chdir (Go 1.24+) for older toolchains.
func chdirForTest(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(old); err != nil {
			t.Fatal(err)
		}
	})
}
