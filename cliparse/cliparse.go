package cliparse

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"golang.org/x/crypto/bcrypt"
)

type Config struct {
	Port            int
	DatabaseURL     string
	DatabaseType    string
	SessionSecret   string
	SessionTTL      time.Duration
	RedisURL        string
	ResultsCacheTTL time.Duration
	MediaDir        string
	MaxUploadBytes  int64
	PasswordCost    int
	LogFormat       string
	LogLevel        string
	EnvFile         string
}

// envBindings maps flags to the environment variables that fill them
// when the flag is not given.
var envBindings = []struct {
	flag string
	env  string
}{
	{"port", "PORT"},
	{"database-url", "DATABASE_URL"},
	{"database-type", "DATABASE_TYPE"},
	{"session-secret", "SESSION_SECRET"},
	{"session-ttl", "SESSION_TTL"},
	{"redis-url", "REDIS_URL"},
	{"results-cache-ttl", "RESULTS_CACHE_TTL"},
	{"media-dir", "MEDIA_DIR"},
	{"max-upload-bytes", "MAX_UPLOAD_BYTES"},
	{"password-cost", "PASSWORD_COST"},
	{"log-format", "LOG_FORMAT"},
	{"log-level", "LOG_LEVEL"},
}

// BindFlags registers every setting on fs with its default.
func BindFlags(fs *pflag.FlagSet, cfg *Config) {
	// Network config (can be CLI args or env)
	fs.IntVarP(&cfg.Port, "port", "p", 3318, "Server port")
	fs.StringVarP(&cfg.DatabaseURL, "database-url", "d", "", "Database URL")
	fs.StringVarP(&cfg.DatabaseType, "database-type", "t", "sqlite", "Database type (sqlite or postgres)")

	// Secrets (prefer env variables, but allow CLI for dev)
	fs.StringVar(&cfg.SessionSecret, "session-secret", "", "Session signing secret (prefer env)")
	fs.DurationVar(&cfg.SessionTTL, "session-ttl", 12*time.Hour, "Session lifetime")

	fs.StringVar(&cfg.RedisURL, "redis-url", "", "Redis URL for the results cache (empty uses memory)")
	fs.DurationVar(&cfg.ResultsCacheTTL, "results-cache-ttl", 5*time.Minute, "How long cached results live")
	fs.StringVar(&cfg.MediaDir, "media-dir", "media", "Directory for uploaded photos")
	fs.Int64Var(&cfg.MaxUploadBytes, "max-upload-bytes", 5<<20, "Largest accepted upload")
	fs.IntVar(&cfg.PasswordCost, "password-cost", bcrypt.DefaultCost, "bcrypt cost for new passwords")

	fs.StringVar(&cfg.LogFormat, "log-format", "text", "Log format (text or json)")
	fs.StringVar(&cfg.LogLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	fs.StringVar(&cfg.EnvFile, "env-file", ".env", "Environment file to load")
}

// Resolve fills settings not given as flags from the environment, after
// loading the env file, and validates the result. Precedence is
// flag > environment > env file > default.
func Resolve(fs *pflag.FlagSet, cfg *Config) error {
	if cfg.EnvFile != "" {
		// godotenv never overrides variables that are already set
		if err := godotenv.Load(cfg.EnvFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", cfg.EnvFile, err)
		}
	}

	for _, b := range envBindings {
		if fs.Changed(b.flag) {
			continue
		}
		value := os.Getenv(b.env)
		if value == "" {
			continue
		}
		if err := fs.Set(b.flag, value); err != nil {
			return fmt.Errorf("invalid %s env variable: %w", b.env, err)
		}
	}

	return cfg.Validate()
}

// Validate checks settings every command needs.
func (c Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port %d out of range", c.Port)
	}
	if c.DatabaseURL == "" {
		return errors.New("database URL required (use -d or DATABASE_URL env)")
	}
	switch c.DatabaseType {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("database type must be sqlite or postgres, got %q", c.DatabaseType)
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("log format must be text or json, got %q", c.LogFormat)
	}
	if _, err := c.SlogLevel(); err != nil {
		return err
	}
	if c.PasswordCost < bcrypt.MinCost || c.PasswordCost > bcrypt.MaxCost {
		return fmt.Errorf("password cost must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	}
	return nil
}

// ValidateServer checks the settings only the web server needs.
func (c Config) ValidateServer() error {
	// Secrets - MUST be provided
	if c.SessionSecret == "" {
		return errors.New("SESSION_SECRET required")
	}
	if c.SessionTTL <= 0 {
		return errors.New("session TTL must be positive")
	}
	if c.ResultsCacheTTL <= 0 {
		return errors.New("results cache TTL must be positive")
	}
	if c.MaxUploadBytes <= 0 {
		return errors.New("max upload bytes must be positive")
	}
	if c.MediaDir == "" {
		return errors.New("media directory required")
	}
	return nil
}

// SlogLevel parses LogLevel.
func (c Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("invalid log level %q", c.LogLevel)
	}
	return level, nil
}

// ParseFlags parses args for the web server and returns its configuration.
func ParseFlags(args []string) (Config, error) {
	var cfg Config

	fs := pflag.NewFlagSet("ballotbox", pflag.ContinueOnError)
	BindFlags(fs, &cfg)

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	if err := Resolve(fs, &cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.ValidateServer(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}
