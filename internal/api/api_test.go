package api_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/JaimeStill/warden/internal/api"
	"github.com/JaimeStill/warden/internal/config"
	"github.com/JaimeStill/warden/internal/extraction"
	"github.com/JaimeStill/warden/internal/infrastructure"
	"github.com/JaimeStill/warden/internal/workflow"
)

const azuriteConnString = "DefaultEndpointsProtocol=http;AccountName=devstoreaccount1;AccountKey=Eby8vdM02xNOcqFlqUwJPLlmEtlCDXJ1OUzFT50uSRZ6IFsuFq2UVErCz4I6tq/K1SZFPTOtr/KBHBeksoGMGw==;BlobEndpoint=http://127.0.0.1:10000/devstoreaccount1;"

func validConfig(t *testing.T) *config.Config {
	t.Helper()
	t.Chdir(t.TempDir())
	t.Setenv("WARDEN_DB_NAME", "warden")
	t.Setenv("WARDEN_DB_USER", "warden")
	t.Setenv("WARDEN_STORAGE_CONNECTION_STRING", azuriteConnString)
	t.Setenv("WARDEN_CORS_ENABLED", "true")
	t.Setenv("WARDEN_CORS_ORIGINS", "http://localhost:5173")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	return cfg
}

func TestNewModule(t *testing.T) {
	cfg := validConfig(t)

	infra, err := infrastructure.New(cfg)
	if err != nil {
		t.Fatalf("infrastructure: %v", err)
	}

	m, err := api.NewModule(cfg, infra, workflow.Options{Collaborators: &extraction.Collaborators{}})
	if err != nil {
		t.Fatalf("NewModule: %v", err)
	}
	if m.Prefix() != "/api" {
		t.Errorf("prefix = %q, want /api", m.Prefix())
	}

	tests := []struct {
		name   string
		method string
		path   string
		header map[string]string
		want   int
	}{
		{"unknown session", "GET", "/api/sessions/missing", nil, http.StatusNotFound},
		{"progress without user", "GET", "/api/progress", nil, http.StatusBadRequest},
		{"submission without form", "POST", "/api/submissions", nil, http.StatusBadRequest},
		{"cors preflight", "OPTIONS", "/api/submissions", map[string]string{"Origin": "http://localhost:5173"}, http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			for k, v := range tt.header {
				req.Header.Set(k, v)
			}
			rec := httptest.NewRecorder()
			m.ServeHTTP(rec, req)

			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}
