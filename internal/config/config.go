// Package config loads the imagedl command's settings.
//
// Sources are applied in order, later ones winning: built-in defaults, an
// optional YAML file, an optional .env file, then IMAGEDL_* environment
// variables. The result is validated before it is returned.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/adamwoolhether/imagedl"
	"github.com/adamwoolhether/imagedl/transport"
	"github.com/adamwoolhether/imagedl/validate"
)

// EnvPrefix prefixes every environment variable, e.g. IMAGEDL_TIMEOUT.
const EnvPrefix = "IMAGEDL"

// Config holds all command configuration.
type Config struct {
	Timeout          time.Duration `yaml:"timeout" envconfig:"TIMEOUT" validate:"gte=0"`
	ConnectTimeout   time.Duration `yaml:"connect_timeout" envconfig:"CONNECT_TIMEOUT" validate:"gte=0"`
	MaxRedirects     int           `yaml:"max_redirects" envconfig:"MAX_REDIRECTS" validate:"gte=0,lte=50"`
	VerifyTLS        bool          `yaml:"verify_tls" envconfig:"VERIFY_TLS"`
	UserAgent        string        `yaml:"user_agent" envconfig:"USER_AGENT" validate:"omitempty,printascii"`
	Transport        string        `yaml:"transport" envconfig:"TRANSPORT" validate:"omitempty,oneof=client native ranged"`
	RPS              int           `yaml:"rps" envconfig:"RPS" validate:"gte=0"`
	Burst            int           `yaml:"burst" envconfig:"BURST" validate:"gte=0"`
	Progress         bool          `yaml:"progress" envconfig:"PROGRESS"`
	MaxFileSize      int64         `yaml:"max_file_size" envconfig:"MAX_FILE_SIZE" validate:"gte=0"`
	ValidateMimeType bool          `yaml:"validate_mime_type" envconfig:"VALIDATE_MIME_TYPE"`
	Overwrite        bool          `yaml:"overwrite" envconfig:"OVERWRITE"`
	Concurrency      int           `yaml:"concurrency" envconfig:"CONCURRENCY" validate:"gte=1,lte=64"`
	TempDir          string        `yaml:"temp_dir" envconfig:"TEMP_DIR"`
	LogLevel         string        `yaml:"log_level" envconfig:"LOG_LEVEL" validate:"oneof=debug info warn error"`
	LogFormat        string        `yaml:"log_format" envconfig:"LOG_FORMAT" validate:"oneof=text json"`
	MetricsFile      string        `yaml:"metrics_file" envconfig:"METRICS_FILE"`
}

// Default returns the built-in configuration.
func Default() Config {
	tc := transport.DefaultConfig()

	return Config{
		Timeout:          tc.Timeout,
		ConnectTimeout:   tc.ConnectTimeout,
		MaxRedirects:     tc.MaxRedirects,
		VerifyTLS:        tc.VerifyTLS,
		UserAgent:        tc.UserAgent,
		ValidateMimeType: true,
		Concurrency:      1,
		LogLevel:         "info",
		LogFormat:        "text",
	}
}

// Load builds the configuration. An empty configPath skips the YAML file; a
// missing envFile is ignored, since .env files are optional by nature.
func Load(configPath, envFile string) (Config, error) {
	cfg := Default()

	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file: %w", err)
		}
	}

	if envFile != "" {
		// Variables already set in the environment take precedence.
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load env file: %w", err)
		}
	}

	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return Config{}, fmt.Errorf("process environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate checks every field against its constraints.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Options translates the configuration into imagedl options.
func (c Config) Options(logger *slog.Logger) []imagedl.Option {
	opts := []imagedl.Option{
		imagedl.WithTimeout(c.Timeout),
		imagedl.WithConnectTimeout(c.ConnectTimeout),
		imagedl.WithMaxRedirects(c.MaxRedirects),
		imagedl.WithVerifyTLS(c.VerifyTLS),
		imagedl.WithUserAgent(c.UserAgent),
		imagedl.WithMaxFileSize(c.MaxFileSize),
		imagedl.WithValidateMimeType(c.ValidateMimeType),
		imagedl.WithOverwrite(c.Overwrite),
		imagedl.WithConcurrency(c.Concurrency),
		imagedl.WithProgress(c.Progress),
	}
	if c.Transport != "" {
		opts = append(opts, imagedl.WithTransport(transport.Kind(c.Transport)))
	}
	if c.RPS > 0 {
		opts = append(opts, imagedl.WithThrottle(c.RPS, max(c.Burst, 1)))
	}
	if c.TempDir != "" {
		opts = append(opts, imagedl.WithTempDir(c.TempDir))
	}
	if logger != nil {
		opts = append(opts, imagedl.WithLogger(logger))
	}

	return opts
}

// Logger builds the structured logger described by LogLevel and LogFormat.
func (c Config) Logger(w io.Writer) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(c.LogLevel))); err != nil {
		level = slog.LevelInfo
	}

	hOpts := &slog.HandlerOptions{Level: level}
	if c.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, hOpts))
	}

	return slog.New(slog.NewTextHandler(w, hOpts))
}
