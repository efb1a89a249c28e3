package sessions_test

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/JaimeStill/warden/internal/progress"
	"github.com/JaimeStill/warden/internal/sessions"
	"github.com/JaimeStill/warden/pkg/routes"
)

func TestRegister(t *testing.T) {
	reg := sessions.New()

	s, err := reg.Register("s1", "u1")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if s.Stage != progress.Queued || s.Progress != 0 || s.UserID != "u1" {
		t.Errorf("session = %+v", s)
	}
	if s.CreatedAt.IsZero() {
		t.Error("CreatedAt not set")
	}

	if _, err := reg.Register("s1", "u2"); !errors.Is(err, sessions.ErrActive) {
		t.Errorf("duplicate Register error = %v, want ErrActive", err)
	}

	reg.Clear("s1")
	if _, err := reg.Register("s1", "u1"); err != nil {
		t.Errorf("Register after Clear: %v", err)
	}
}

func TestAdvanceNeverDecreases(t *testing.T) {
	reg := sessions.New()
	reg.Register("s1", "u1")

	steps := []struct {
		stage progress.Stage
		pct   int
		want  int
	}{
		{progress.Extracting, 10, 10},
		{progress.AnalyzingFrames, 50, 50},
		{progress.Transcribing, 30, 50},
		{progress.Moderating, 80, 80},
		{progress.Error, 0, 80},
	}

	for _, step := range steps {
		got, err := reg.Advance("s1", step.stage, step.pct)
		if err != nil {
			t.Fatalf("Advance(%s): %v", step.stage, err)
		}
		if got != step.want {
			t.Errorf("Advance(%s, %d) = %d, want %d", step.stage, step.pct, got, step.want)
		}
	}

	s, _ := reg.Find("s1")
	if s.Stage != progress.Error || s.Progress != 80 {
		t.Errorf("session = %+v", s)
	}
}

func TestAdvanceMissing(t *testing.T) {
	reg := sessions.New()
	if _, err := reg.Advance("nope", progress.Extracting, 10); !errors.Is(err, sessions.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
	if _, err := reg.Find("nope"); !errors.Is(err, sessions.ErrNotFound) {
		t.Errorf("Find error = %v, want ErrNotFound", err)
	}
	reg.Clear("nope")
}

func TestConcurrentRegister(t *testing.T) {
	reg := sessions.New()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		winners int
	)
	for range 50 {
		wg.Go(func() {
			if _, err := reg.Register("same", "u1"); err == nil {
				mu.Lock()
				winners++
				mu.Unlock()
			}
		})
	}
	wg.Wait()

	if winners != 1 {
		t.Errorf("winners = %d, want 1", winners)
	}
}

func TestHandlerFind(t *testing.T) {
	reg := sessions.New()
	reg.Register("s1", "u1")
	reg.Advance("s1", progress.Moderating, 80)

	mux := http.NewServeMux()
	routes.Register(mux, sessions.NewHandler(reg, slog.New(slog.NewTextHandler(io.Discard, nil))).Routes())

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/sessions/s1", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var s sessions.Session
	json.NewDecoder(rec.Body).Decode(&s)
	if s.Stage != progress.Moderating || s.Progress != 80 {
		t.Errorf("session = %+v", s)
	}

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/sessions/missing", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("missing status = %d, want 404", rec.Code)
	}
}
