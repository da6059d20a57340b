package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv(EnvTokenBackend, TokenBackendMemory)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}

	if !cfg.App.IsDev() {
		t.Fatalf("expected dev env by default, got %q", cfg.App.Env)
	}
	if cfg.API.BaseURL != "http://localhost:3001/api" {
		t.Fatalf("unexpected base url %q", cfg.API.BaseURL)
	}
	if cfg.API.Timeout != 0 {
		t.Fatalf("expected no client timeout by default, got %v", cfg.API.Timeout)
	}
	if cfg.TokenStore.Profile != "default" {
		t.Fatalf("unexpected profile %q", cfg.TokenStore.Profile)
	}
	if got := cfg.FakeAPI.TokenTTL(); got != time.Hour {
		t.Fatalf("expected 1h token ttl, got %v", got)
	}
}

func TestLoad_SQLiteBackendUsesTokenPath(t *testing.T) {
	t.Setenv(EnvTokenBackend, TokenBackendSQLite)
	t.Setenv(EnvTokenSQLitePath, "/tmp/tokens.db")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}
	if cfg.DB.Driver != TokenBackendSQLite {
		t.Fatalf("expected sqlite driver, got %q", cfg.DB.Driver)
	}
	if cfg.DB.DSN != "/tmp/tokens.db" {
		t.Fatalf("expected sqlite path as dsn, got %q", cfg.DB.DSN)
	}
}

func TestLoad_PostgresBackendBuildsLegacyDSN(t *testing.T) {
	t.Setenv(EnvTokenBackend, TokenBackendPostgres)
	t.Setenv(EnvDBHost, "db.internal")
	t.Setenv(EnvDBUser, "fb")
	t.Setenv(EnvDBPassword, "pw")
	t.Setenv(EnvDBName, "tokens")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}
	if cfg.DB.DSN != "postgres://fb:pw@db.internal:5432/tokens?sslmode=disable" {
		t.Fatalf("unexpected dsn %q", cfg.DB.DSN)
	}
}

func TestLoad_PostgresBackendMissingDSN(t *testing.T) {
	t.Setenv(EnvTokenBackend, TokenBackendPostgres)

	if _, err := Load(); err == nil {
		t.Fatal("expected missing postgres settings to return an error")
	}
}

func TestLoad_RejectsUnknownBackend(t *testing.T) {
	t.Setenv(EnvTokenBackend, "floppy")

	if _, err := Load(); err == nil {
		t.Fatal("expected unknown token backend to be rejected")
	}
}
