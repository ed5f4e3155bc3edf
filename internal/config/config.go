// Package config provides runtime configuration for the valuer CLI.
//
// Values are layered: built-in defaults, then the YAML config file, then
// VALUER_* environment variables (optionally seeded from .env files), then
// command-line flags applied by the caller.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/roach88/valuer/internal/compose"
	"github.com/roach88/valuer/internal/mail"
	"github.com/roach88/valuer/internal/render"
)

// DefaultConfigFile is read when no --config flag is given and the file exists.
const DefaultConfigFile = "valuer.yaml"

// DefaultEnvFiles are loaded, when present, before environment overrides apply.
var DefaultEnvFiles = []string{".env", ".env.local"}

// Config holds every tunable of the CLI.
type Config struct {
	DBPath    string          `yaml:"db_path"`
	OutputDir string          `yaml:"output_dir"`
	Format    render.Format   `yaml:"format"`
	Blob      BlobConfig      `yaml:"blob"`
	Mail      MailConfig      `yaml:"mail"`
	Document  compose.Profile `yaml:"document"`
}

// BlobConfig locates the store remote deliveries are published to.
type BlobConfig struct {
	Root    string `yaml:"root"`
	BaseURL string `yaml:"base_url"`
}

// MailConfig controls how the compose window is built and presented.
type MailConfig struct {
	ComposeBase  string   `yaml:"compose_base"`
	BodyTemplate string   `yaml:"body_template"`
	OpenCommand  []string `yaml:"open_command"`
	PrintOnly    bool     `yaml:"print_only"` // print the compose URL instead of opening it
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		DBPath:    "valuer.db",
		OutputDir: ".",
		Format:    render.FormatPDF,
		Blob:      BlobConfig{Root: "published"},
		Mail:      MailConfig{ComposeBase: mail.DefaultComposeBase},
		Document:  compose.DefaultProfile(),
	}
}

// Load builds the configuration from path (or DefaultConfigFile when path
// is empty and that file exists), the given env files (DefaultEnvFiles when
// none are given) and the process environment.
func Load(path string, envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		envFiles = DefaultEnvFiles
	}
	if err := loadEnvFiles(envFiles); err != nil {
		return Config{}, err
	}

	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultConfigFile
	}
	data, err := os.ReadFile(path) // #nosec G304 -- operator-supplied config path
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
		// No config file; defaults and environment only.
	default:
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	cfg.applyEnv()
	return cfg, nil
}

// loadEnvFiles loads each existing file. Variables already set in the
// process environment win.
func loadEnvFiles(files []string) error {
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("load env file %s: %w", f, err)
		}
	}
	return nil
}

func (c *Config) applyEnv() {
	c.DBPath = getenv("VALUER_DB", c.DBPath)
	c.OutputDir = getenv("VALUER_OUTPUT_DIR", c.OutputDir)
	c.Format = render.Format(getenv("VALUER_FORMAT", string(c.Format)))
	c.Blob.Root = getenv("VALUER_BLOB_ROOT", c.Blob.Root)
	c.Blob.BaseURL = getenv("VALUER_BLOB_BASE_URL", c.Blob.BaseURL)
	c.Mail.ComposeBase = getenv("VALUER_COMPOSE_BASE", c.Mail.ComposeBase)
	c.Mail.BodyTemplate = getenv("VALUER_MAIL_TEMPLATE", c.Mail.BodyTemplate)
	c.Mail.PrintOnly = boolenv("VALUER_PRINT_ONLY", c.Mail.PrintOnly)
	if v := getenv("VALUER_OPEN_COMMAND", ""); v != "" {
		c.Mail.OpenCommand = strings.Fields(v)
	}
	c.Document.Currency = getenv("VALUER_CURRENCY", c.Document.Currency)
	c.Document.Issuer.Name = getenv("VALUER_ISSUER_NAME", c.Document.Issuer.Name)
	c.Document.Issuer.Email = getenv("VALUER_ISSUER_EMAIL", c.Document.Issuer.Email)
	c.Document.Issuer.LogoPath = getenv("VALUER_ISSUER_LOGO", c.Document.Issuer.LogoPath)
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if strings.TrimSpace(c.DBPath) == "" {
		return errors.New("db_path is required")
	}
	if c.Format != render.FormatPDF && c.Format != render.FormatText {
		return fmt.Errorf("format must be %q or %q, got %q", render.FormatPDF, render.FormatText, c.Format)
	}
	if c.Mail.ComposeBase != "" {
		u, err := url.Parse(c.Mail.ComposeBase)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("mail.compose_base must be an absolute URL, got %q", c.Mail.ComposeBase)
		}
	}
	if c.Blob.BaseURL != "" {
		u, err := url.Parse(c.Blob.BaseURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("blob.base_url must be an absolute URL, got %q", c.Blob.BaseURL)
		}
	}
	if logo := c.Document.Issuer.LogoPath; logo != "" {
		if _, err := os.Stat(logo); err != nil {
			return fmt.Errorf("document.issuer.logo_path: %w", err)
		}
	}
	return nil
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func boolenv(key string, def bool) bool {
	v := getenv(key, "")
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}
