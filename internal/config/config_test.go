package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if errWrite := os.WriteFile(path, []byte(content), 0o600); errWrite != nil {
		t.Fatalf("write config: %v", errWrite)
	}
	return path
}

func TestLoadDatabaseDSNFromFile(t *testing.T) {
	t.Setenv(EnvDatabaseDSN, "")
	path := writeConfig(t, "database:\n  dsn: \"emergent.db\"\n")

	dsn, errLoad := LoadDatabaseDSN(path)
	if errLoad != nil {
		t.Fatalf("LoadDatabaseDSN: %v", errLoad)
	}
	if dsn != "emergent.db" {
		t.Fatalf("dsn = %q", dsn)
	}
}

func TestLoadDatabaseDSNEnvOverridesFile(t *testing.T) {
	t.Setenv(EnvDatabaseDSN, "host=localhost dbname=emergent")
	path := writeConfig(t, "database:\n  dsn: \"ignored.db\"\n")

	dsn, errLoad := LoadDatabaseDSN(path)
	if errLoad != nil {
		t.Fatalf("LoadDatabaseDSN: %v", errLoad)
	}
	if dsn != "host=localhost dbname=emergent" {
		t.Fatalf("dsn = %q", dsn)
	}
}

func TestLoadDatabaseDSNMissing(t *testing.T) {
	t.Setenv(EnvDatabaseDSN, "")
	path := writeConfig(t, "database:\n  dsn: \"\"\n")

	_, errLoad := LoadDatabaseDSN(path)
	if !errors.Is(errLoad, ErrMissingDatabaseDSN) {
		t.Fatalf("LoadDatabaseDSN = %v, want ErrMissingDatabaseDSN", errLoad)
	}
}

func TestLoadJWTConfigFromFile(t *testing.T) {
	t.Setenv(EnvJWTSecret, "")
	t.Setenv(EnvJWTExpiry, "")
	path := writeConfig(t, "jwt:\n  secret: \"file-secret\"\n  expiry: 24h\n")

	cfg, errLoad := LoadJWTConfig(path)
	if errLoad != nil {
		t.Fatalf("LoadJWTConfig: %v", errLoad)
	}
	if cfg.Secret != "file-secret" {
		t.Fatalf("secret = %q", cfg.Secret)
	}
	if cfg.Expiry != 24*time.Hour {
		t.Fatalf("expiry = %v", cfg.Expiry)
	}
}

func TestLoadJWTConfigEnvOverrides(t *testing.T) {
	t.Setenv(EnvJWTSecret, "env-secret")
	t.Setenv(EnvJWTExpiry, "1h")
	path := writeConfig(t, "jwt:\n  secret: \"file-secret\"\n  expiry: 24h\n")

	cfg, errLoad := LoadJWTConfig(path)
	if errLoad != nil {
		t.Fatalf("LoadJWTConfig: %v", errLoad)
	}
	if cfg.Secret != "env-secret" {
		t.Fatalf("secret = %q", cfg.Secret)
	}
	if cfg.Expiry != time.Hour {
		t.Fatalf("expiry = %v", cfg.Expiry)
	}
}

func TestLoadJWTConfigMissingSecret(t *testing.T) {
	t.Setenv(EnvJWTSecret, "")
	t.Setenv(EnvJWTExpiry, "")
	path := writeConfig(t, "jwt:\n  expiry: 24h\n")

	_, errLoad := LoadJWTConfig(path)
	if !errors.Is(errLoad, ErrMissingJWTSecret) {
		t.Fatalf("LoadJWTConfig = %v, want ErrMissingJWTSecret", errLoad)
	}
}

func TestLoadJWTConfigDefaultExpiry(t *testing.T) {
	t.Setenv(EnvJWTSecret, "env-secret")
	t.Setenv(EnvJWTExpiry, "")
	path := writeConfig(t, "jwt:\n  secret: \"s\"\n")

	cfg, errLoad := LoadJWTConfig(path)
	if errLoad != nil {
		t.Fatalf("LoadJWTConfig: %v", errLoad)
	}
	if cfg.Expiry != defaultJWTExpiry {
		t.Fatalf("expiry = %v, want %v", cfg.Expiry, defaultJWTExpiry)
	}
}

func TestResolveConfigPathDefault(t *testing.T) {
	resolved := ResolveConfigPath("")
	if filepath.Base(resolved) != "config.yaml" {
		t.Fatalf("resolved = %q", resolved)
	}
	if !filepath.IsAbs(resolved) {
		t.Fatalf("resolved path not absolute: %q", resolved)
	}
}
