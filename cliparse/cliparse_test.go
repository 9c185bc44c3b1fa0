// cliparse/cliparse_test.go
package cliparse

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
)

// clearEnv unsets every variable cliparse reads for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, b := range envBindings {
		t.Setenv(b.env, "")
		os.Unsetenv(b.env)
	}
}

func TestParseFlags_EnvVars(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9000")
	t.Setenv("DATABASE_URL", "postgres://test")
	t.Setenv("DATABASE_TYPE", "postgres")
	t.Setenv("SESSION_SECRET", "test-secret")
	t.Setenv("SESSION_TTL", "30m")

	cfg, err := ParseFlags([]string{})
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Port != 9000 {
		t.Errorf("expected port 9000, got %d", cfg.Port)
	}
	if cfg.DatabaseType != "postgres" {
		t.Errorf("expected postgres, got %q", cfg.DatabaseType)
	}
	if cfg.SessionTTL != 30*time.Minute {
		t.Errorf("expected 30m session ttl, got %v", cfg.SessionTTL)
	}
}

func TestParseFlags_CLIOverridesEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9000")

	cfg, err := ParseFlags([]string{"-p", "8080", "-d", "file:test.db", "--session-secret", "s1"})
	if err != nil {
		t.Fatal(err)
	}

	// CLI should override env
	if cfg.Port != 8080 {
		t.Errorf("CLI should override env: expected 8080, got %d", cfg.Port)
	}
}

func TestParseFlags_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := ParseFlags([]string{"-d", "file:test.db", "--session-secret", "s1"})
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Port != 3318 {
		t.Errorf("expected default port 3318, got %d", cfg.Port)
	}
	if cfg.DatabaseType != "sqlite" {
		t.Errorf("expected default sqlite, got %q", cfg.DatabaseType)
	}
	if cfg.SessionTTL != 12*time.Hour {
		t.Errorf("expected default 12h session ttl, got %v", cfg.SessionTTL)
	}
	if cfg.ResultsCacheTTL != 5*time.Minute {
		t.Errorf("expected default 5m cache ttl, got %v", cfg.ResultsCacheTTL)
	}
	if cfg.MaxUploadBytes != 5<<20 {
		t.Errorf("expected default 5 MiB upload limit, got %d", cfg.MaxUploadBytes)
	}
	if cfg.MediaDir != "media" || cfg.RedisURL != "" {
		t.Errorf("unexpected defaults: media=%q redis=%q", cfg.MediaDir, cfg.RedisURL)
	}
}

func TestParseFlags_EnvFile(t *testing.T) {
	clearEnv(t)

	envFile := filepath.Join(t.TempDir(), "test.env")
	content := "DATABASE_URL=file:from-env-file.db\nSESSION_SECRET=file-secret\nPORT=7000\n"
	if err := os.WriteFile(envFile, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	// Process env beats the env file
	t.Setenv("PORT", "7100")

	cfg, err := ParseFlags([]string{"--env-file", envFile})
	if err != nil {
		t.Fatal(err)
	}

	if cfg.DatabaseURL != "file:from-env-file.db" {
		t.Errorf("expected database url from env file, got %q", cfg.DatabaseURL)
	}
	if cfg.SessionSecret != "file-secret" {
		t.Errorf("expected secret from env file, got %q", cfg.SessionSecret)
	}
	if cfg.Port != 7100 {
		t.Errorf("environment should beat env file: expected 7100, got %d", cfg.Port)
	}
}

func TestParseFlags_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		env  map[string]string
	}{
		{"missing database url", []string{"--session-secret", "s"}, nil},
		{"missing secret", []string{"-d", "file:x.db"}, nil},
		{"bad database type", []string{"-d", "x", "--session-secret", "s", "-t", "mysql"}, nil},
		{"bad port env", []string{"-d", "x", "--session-secret", "s"}, map[string]string{"PORT": "abc"}},
		{"port out of range", []string{"-d", "x", "--session-secret", "s", "-p", "70000"}, nil},
		{"bad log format", []string{"-d", "x", "--session-secret", "s", "--log-format", "xml"}, nil},
		{"bad log level", []string{"-d", "x", "--session-secret", "s", "--log-level", "loud"}, nil},
		{"zero session ttl", []string{"-d", "x", "--session-secret", "s", "--session-ttl", "0s"}, nil},
		{"bad password cost", []string{"-d", "x", "--session-secret", "s", "--password-cost", "99"}, nil},
		{"unknown flag", []string{"--nope"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if _, err := ParseFlags(tt.args); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestResolve_SkipsServerChecks(t *testing.T) {
	clearEnv(t)

	var cfg Config
	fs := pflag.NewFlagSet("migrate", pflag.ContinueOnError)
	BindFlags(fs, &cfg)
	if err := fs.Parse([]string{"-d", "file:x.db"}); err != nil {
		t.Fatal(err)
	}

	// Commands that never serve requests do not need a session secret
	if err := Resolve(fs, &cfg); err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if err := cfg.ValidateServer(); err == nil {
		t.Error("ValidateServer() should require a session secret")
	}
}

func TestSlogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"WARN", slog.LevelWarn},
		{"error", slog.LevelError},
	}

	for _, tt := range tests {
		got, err := Config{LogLevel: tt.in}.SlogLevel()
		if err != nil {
			t.Errorf("SlogLevel(%q) error = %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("SlogLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
