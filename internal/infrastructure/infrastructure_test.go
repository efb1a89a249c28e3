package infrastructure_test

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/JaimeStill/warden/internal/config"
	"github.com/JaimeStill/warden/internal/infrastructure"
)

func TestNewLoggerLevel(t *testing.T) {
	tests := []struct {
		env  string
		want slog.Level
	}{
		{"", slog.LevelInfo},
		{"debug", slog.LevelDebug},
		{"WARN", slog.LevelWarn},
		{"error", slog.LevelError},
		{"verbose", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			t.Setenv(infrastructure.EnvLogLevel, tt.env)

			var buf bytes.Buffer
			logger := infrastructure.NewLogger(&buf)

			if !logger.Enabled(context.Background(), tt.want) {
				t.Errorf("level %v not enabled", tt.want)
			}
			if tt.want > slog.LevelDebug && logger.Enabled(context.Background(), tt.want-4) {
				t.Errorf("level below %v enabled", tt.want)
			}
		})
	}
}

func TestNew(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("WARDEN_DB_NAME", "warden")
	t.Setenv("WARDEN_DB_USER", "warden")
	t.Setenv("WARDEN_STORAGE_CONNECTION_STRING",
		"DefaultEndpointsProtocol=http;AccountName=devstoreaccount1;AccountKey=Eby8vdM02xNOcqFlqUwJPLlmEtlCDXJ1OUzFT50uSRZ6IFsuFq2UVErCz4I6tq/K1SZFPTOtr/KBHBeksoGMGw==;BlobEndpoint=http://127.0.0.1:10000/devstoreaccount1;")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	infra, err := infrastructure.New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if infra.Lifecycle == nil || infra.Database == nil || infra.Storage == nil {
		t.Fatalf("infrastructure incomplete: %+v", infra)
	}
	if url := infra.Storage.URL("a.pdf"); !strings.HasSuffix(url, "/submissions/a.pdf") {
		t.Errorf("storage url = %q", url)
	}
}
