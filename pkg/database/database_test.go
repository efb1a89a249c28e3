package database_test

import (
	"strings"
	"testing"

	"github.com/JaimeStill/warden/pkg/database"
)

func TestConfigFinalizeDefaults(t *testing.T) {
	cfg := database.Config{Name: "warden", User: "warden"}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("Finalize: %v", err)
	}

	if cfg.Host != "localhost" || cfg.Port != 5432 || cfg.SSLMode != "disable" {
		t.Errorf("defaults not applied: %+v", cfg)
	}
	if cfg.ConnTimeoutDuration().Seconds() != 5 {
		t.Errorf("ConnTimeout = %v, want 5s", cfg.ConnTimeoutDuration())
	}
}

func TestConfigFinalizeValidation(t *testing.T) {
	tests := []struct {
		name string
		cfg  database.Config
	}{
		{"missing name", database.Config{User: "u"}},
		{"missing user", database.Config{Name: "n"}},
		{"bad lifetime", database.Config{Name: "n", User: "u", ConnMaxLifetime: "forever"}},
		{"bad timeout", database.Config{Name: "n", User: "u", ConnTimeout: "soon"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.cfg.Finalize(nil); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestConfigEnvOverride(t *testing.T) {
	t.Setenv("TEST_DB_HOST", "db.internal")
	t.Setenv("TEST_DB_PORT", "6543")
	t.Setenv("TEST_DB_PORT_BAD", "abc")

	cfg := database.Config{Name: "n", User: "u"}
	env := &database.Env{Host: "TEST_DB_HOST", Port: "TEST_DB_PORT", MaxOpenConns: "TEST_DB_PORT_BAD"}
	if err := cfg.Finalize(env); err != nil {
		t.Fatalf("Finalize: %v", err)
	}

	if cfg.Host != "db.internal" || cfg.Port != 6543 {
		t.Errorf("env not applied: %+v", cfg)
	}
	if cfg.MaxOpenConns != 25 {
		t.Errorf("MaxOpenConns = %d, want default 25 on unparsable env", cfg.MaxOpenConns)
	}
}

func TestConfigMerge(t *testing.T) {
	base := database.Config{Host: "a", Port: 1, Name: "n"}
	base.Merge(&database.Config{Host: "b"})

	if base.Host != "b" || base.Port != 1 || base.Name != "n" {
		t.Errorf("merge result = %+v", base)
	}
}

func TestConnectionStrings(t *testing.T) {
	cfg := database.Config{Host: "h", Port: 5432, Name: "warden", User: "w", Password: "p@ss", SSLMode: "disable"}

	if dsn := cfg.Dsn(); !strings.Contains(dsn, "dbname=warden") || !strings.Contains(dsn, "port=5432") {
		t.Errorf("Dsn = %q", dsn)
	}

	want := "postgres://w:p%40ss@h:5432/warden?sslmode=disable"
	if got := cfg.URL(); got != want {
		t.Errorf("URL = %q, want %q", got, want)
	}
}
