package submissions_test

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/JaimeStill/warden/internal/moderation"
	"github.com/JaimeStill/warden/internal/progress"
	"github.com/JaimeStill/warden/internal/submissions"
	"github.com/JaimeStill/warden/internal/verification"
	"github.com/JaimeStill/warden/pkg/lifecycle"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

type mockStorage struct {
	uploadFn func(ctx context.Context, key string, reader io.Reader, contentType string) error
	uploaded []string
	deleted  []string
	blobs    map[string]bool
}

func (m *mockStorage) Start(lc *lifecycle.Coordinator) error { return nil }

func (m *mockStorage) Upload(ctx context.Context, key string, reader io.Reader, contentType string) error {
	m.uploaded = append(m.uploaded, key)
	if m.uploadFn != nil {
		if err := m.uploadFn(ctx, key, reader, contentType); err != nil {
			return err
		}
	}
	if m.blobs == nil {
		m.blobs = map[string]bool{}
	}
	m.blobs[key] = true
	return nil
}

func (m *mockStorage) Delete(ctx context.Context, key string) error {
	m.deleted = append(m.deleted, key)
	delete(m.blobs, key)
	return nil
}

func (m *mockStorage) Exists(ctx context.Context, key string) (bool, error) { return m.blobs[key], nil }

// failingConnector opens connections whose queries all fail with err.
type failingConnector struct{ err error }

func (c failingConnector) Connect(context.Context) (driver.Conn, error) { return failingConn(c), nil }

func (c failingConnector) Driver() driver.Driver { return nil }

type failingConn struct{ err error }

func (c failingConn) Prepare(string) (driver.Stmt, error) { return nil, c.err }

func (c failingConn) Close() error { return nil }

func (c failingConn) Begin() (driver.Tx, error) { return failingTx{}, nil }

func (c failingConn) QueryContext(context.Context, string, []driver.NamedValue) (driver.Rows, error) {
	return nil, c.err
}

type failingTx struct{}

func (failingTx) Commit() error   { return nil }
func (failingTx) Rollback() error { return nil }

func (m *mockStorage) URL(key string) string { return "https://assets.example.com/" + key }

type verifierFunc func(ctx context.Context, sub verification.Submission) (*verification.Result, error)

func (f verifierFunc) Verify(ctx context.Context, sub verification.Submission) (*verification.Result, error) {
	return f(ctx, sub)
}

func resultFor(stage progress.Stage, verified bool) *verification.Result {
	return &verification.Result{
		SubmissionID: "sub-1",
		Stage:        stage,
		Variant:      "video",
		Progress:     stage.Percent(),
		Approved:     stage == progress.Complete,
		Verified:     verified,
		Decision:     &moderation.Decision{Confidence: 0.9, Reason: "ok", Flags: []string{}},
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name   string
		result *verification.Result
		want   submissions.Status
		ok     bool
	}{
		{"verified complete", resultFor(progress.Complete, true), submissions.StatusPublished, true},
		{"unverified complete", resultFor(progress.Complete, false), submissions.StatusLive, true},
		{"review required", resultFor(progress.ReviewRequired, true), submissions.StatusReview, true},
		{"rejected", resultFor(progress.Rejected, true), "", false},
		{"error", resultFor(progress.Error, false), "", false},
		{"nil", nil, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := submissions.StatusFor(tt.result)
			if got != tt.want || ok != tt.ok {
				t.Errorf("StatusFor = (%q, %v), want (%q, %v)", got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestStorageKey(t *testing.T) {
	id := uuid.MustParse("6f1c2a9e-8a4b-4f7e-9d3c-2b1a0e9f8d7c")
	prefix := "submissions/" + id.String() + "/"

	tests := []struct {
		filename, want string
	}{
		{"clip.mp4", prefix + "clip.mp4"},
		{"../../etc/passwd", prefix + "passwd"},
		{"", prefix + "asset"},
		{"my clip.mp4", prefix + "my%20clip.mp4"},
	}

	for _, tt := range tests {
		if got := submissions.StorageKey(id, tt.filename); got != tt.want {
			t.Errorf("StorageKey(%q) = %q, want %q", tt.filename, got, tt.want)
		}
	}
}

func TestMapHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{submissions.ErrNotFound, http.StatusNotFound},
		{submissions.ErrDuplicate, http.StatusConflict},
		{verification.ErrActive, http.StatusConflict},
		{submissions.ErrFileTooLarge, http.StatusRequestEntityTooLarge},
		{submissions.ErrInvalidFile, http.StatusBadRequest},
		{submissions.ErrMissingUser, http.StatusBadRequest},
		{fmt.Errorf("%w: %q", verification.ErrUnsupportedContent, "podcast"), http.StatusBadRequest},
		{submissions.ErrRejected, http.StatusUnprocessableEntity},
		{fmt.Errorf("%w: timeout", verification.ErrModerationFailed), http.StatusBadGateway},
		{verification.ErrInvalidDecision, http.StatusBadGateway},
		{errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		if got := submissions.MapHTTPStatus(tt.err); got != tt.want {
			t.Errorf("MapHTTPStatus(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestSubmit(t *testing.T) {
	ctx := context.Background()
	cmd := submissions.SubmitCommand{
		Data:        []byte("video"),
		Filename:    "clip.mp4",
		MimeType:    "video/mp4",
		ContentType: "video",
		UserID:      "u1",
	}

	t.Run("missing user", func(t *testing.T) {
		store := &mockStorage{}
		sys := submissions.New(nil, store, verifierFunc(func(context.Context, verification.Submission) (*verification.Result, error) {
			t.Fatal("verifier called without user")
			return nil, nil
		}), discard)

		noUser := cmd
		noUser.UserID = ""
		if _, err := sys.Submit(ctx, noUser); !errors.Is(err, submissions.ErrMissingUser) {
			t.Errorf("error = %v, want ErrMissingUser", err)
		}
	})

	t.Run("forwards submission", func(t *testing.T) {
		var got verification.Submission
		sys := submissions.New(nil, &mockStorage{}, verifierFunc(func(_ context.Context, sub verification.Submission) (*verification.Result, error) {
			got = sub
			return resultFor(progress.Rejected, true), nil
		}), discard)

		withMeta := cmd
		withMeta.Title = "Launch"
		withMeta.SubmissionID = "sub-1"
		sys.Submit(ctx, withMeta)

		if got.Title != "Launch" || got.SubmissionID != "sub-1" || got.UserID != "u1" || got.MimeType != "video/mp4" {
			t.Errorf("submission = %+v", got)
		}
	})

	t.Run("rejected is not stored", func(t *testing.T) {
		store := &mockStorage{}
		sys := submissions.New(nil, store, verifierFunc(func(context.Context, verification.Submission) (*verification.Result, error) {
			return resultFor(progress.Rejected, true), nil
		}), discard)

		outcome, err := sys.Submit(ctx, cmd)
		if !errors.Is(err, submissions.ErrRejected) {
			t.Fatalf("error = %v, want ErrRejected", err)
		}
		if outcome.Result.Stage != progress.Rejected || outcome.Submission != nil {
			t.Errorf("outcome = %+v", outcome)
		}
		if len(store.uploaded) != 0 {
			t.Errorf("uploaded = %v, want none", store.uploaded)
		}
	})

	t.Run("verification error keeps result", func(t *testing.T) {
		store := &mockStorage{}
		sys := submissions.New(nil, store, verifierFunc(func(context.Context, verification.Submission) (*verification.Result, error) {
			return resultFor(progress.Error, false), fmt.Errorf("%w: unavailable", verification.ErrModerationFailed)
		}), discard)

		outcome, err := sys.Submit(ctx, cmd)
		if !errors.Is(err, verification.ErrModerationFailed) {
			t.Fatalf("error = %v, want ErrModerationFailed", err)
		}
		if outcome == nil || outcome.Result.Stage != progress.Error {
			t.Errorf("outcome = %+v", outcome)
		}
		if len(store.uploaded) != 0 {
			t.Errorf("uploaded = %v, want none", store.uploaded)
		}
	})

	t.Run("upload failure", func(t *testing.T) {
		store := &mockStorage{
			uploadFn: func(context.Context, string, io.Reader, string) error { return errors.New("unreachable") },
		}
		sys := submissions.New(nil, store, verifierFunc(func(context.Context, verification.Submission) (*verification.Result, error) {
			return resultFor(progress.Complete, true), nil
		}), discard)

		outcome, err := sys.Submit(ctx, cmd)
		if err == nil || !strings.Contains(err.Error(), "unreachable") {
			t.Fatalf("error = %v, want upload failure", err)
		}
		if outcome.Result == nil || outcome.Submission != nil {
			t.Errorf("outcome = %+v", outcome)
		}
		if len(store.uploaded) != 1 || !strings.HasPrefix(store.uploaded[0], "submissions/") ||
			!strings.HasSuffix(store.uploaded[0], "/clip.mp4") {
			t.Errorf("uploaded = %v", store.uploaded)
		}
	})

	t.Run("duplicate keeps existing asset", func(t *testing.T) {
		db := sql.OpenDB(failingConnector{err: &pgconn.PgError{
			Code:           "23505",
			ConstraintName: "submissions_submission_id_key",
		}})
		defer db.Close()

		existing := submissions.StorageKey(uuid.New(), "clip.mp4")
		store := &mockStorage{blobs: map[string]bool{existing: true}}
		sys := submissions.New(db, store, verifierFunc(func(context.Context, verification.Submission) (*verification.Result, error) {
			return resultFor(progress.Complete, true), nil
		}), discard)

		again := cmd
		again.SubmissionID = "sub-1"
		again.UserID = "u2"
		_, err := sys.Submit(ctx, again)
		if !errors.Is(err, submissions.ErrDuplicate) {
			t.Fatalf("error = %v, want ErrDuplicate", err)
		}
		if submissions.MapHTTPStatus(err) != http.StatusConflict {
			t.Errorf("status = %d, want 409", submissions.MapHTTPStatus(err))
		}
		if !store.blobs[existing] {
			t.Errorf("existing asset %q was removed", existing)
		}
		if len(store.uploaded) != 1 || store.uploaded[0] == existing {
			t.Fatalf("uploaded = %v, want one fresh key", store.uploaded)
		}
		if len(store.deleted) != 1 || store.deleted[0] != store.uploaded[0] {
			t.Errorf("deleted = %v, want only %q", store.deleted, store.uploaded[0])
		}
	})
}
