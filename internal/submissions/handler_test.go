package submissions_test

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/JaimeStill/warden/internal/progress"
	"github.com/JaimeStill/warden/internal/submissions"
	"github.com/JaimeStill/warden/internal/verification"
)

type mockSystem struct {
	submitFn func(ctx context.Context, cmd submissions.SubmitCommand) (*submissions.Outcome, error)
	findFn   func(ctx context.Context, id string) (*submissions.Submission, error)
}

func (m *mockSystem) Handler(maxUploadSize int64) *submissions.Handler {
	return submissions.NewHandler(m, discard, maxUploadSize)
}

func (m *mockSystem) Submit(ctx context.Context, cmd submissions.SubmitCommand) (*submissions.Outcome, error) {
	return m.submitFn(ctx, cmd)
}

func (m *mockSystem) Find(ctx context.Context, id string) (*submissions.Submission, error) {
	return m.findFn(ctx, id)
}

func setupMux(h *submissions.Handler) *http.ServeMux {
	mux := http.NewServeMux()
	group := h.Routes()
	for _, route := range group.Routes {
		pattern := route.Method + " " + group.Prefix + route.Pattern
		mux.HandleFunc(pattern, route.Handler)
	}
	return mux
}

type part struct {
	filename string
	mime     string
	data     []byte
}

func uploadRequest(t *testing.T, fields map[string]string, file *part) *http.Request {
	t.Helper()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	if file != nil {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="file"; filename="`+file.filename+`"`)
		h.Set("Content-Type", file.mime)
		pw, err := w.CreatePart(h)
		if err != nil {
			t.Fatalf("create part: %v", err)
		}
		pw.Write(file.data)
	}
	w.Close()

	req := httptest.NewRequest("POST", "/submissions", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set(progress.UserHeader, "u1")
	return req
}

func outcomeFor(stage progress.Stage, status submissions.Status) *submissions.Outcome {
	o := &submissions.Outcome{Result: resultFor(stage, true)}
	if status != "" {
		o.Submission = &submissions.Submission{SubmissionID: "sub-1", Status: status}
	}
	return o
}

func TestHandlerSubmit(t *testing.T) {
	clip := &part{filename: "clip.mp4", mime: "video/mp4", data: []byte("mp4")}

	tests := []struct {
		name    string
		outcome *submissions.Outcome
		err     error
		want    int
	}{
		{"published", outcomeFor(progress.Complete, submissions.StatusPublished), nil, http.StatusCreated},
		{"review", outcomeFor(progress.ReviewRequired, submissions.StatusReview), nil, http.StatusAccepted},
		{"rejected", outcomeFor(progress.Rejected, ""), submissions.ErrRejected, http.StatusUnprocessableEntity},
		{"moderation fault", outcomeFor(progress.Error, ""), verification.ErrModerationFailed, http.StatusBadGateway},
		{"unsupported", outcomeFor(progress.Error, ""), verification.ErrUnsupportedContent, http.StatusBadRequest},
		{"active session", nil, verification.ErrActive, http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got submissions.SubmitCommand
			sys := &mockSystem{
				submitFn: func(_ context.Context, cmd submissions.SubmitCommand) (*submissions.Outcome, error) {
					got = cmd
					return tt.outcome, tt.err
				},
			}

			rec := httptest.NewRecorder()
			req := uploadRequest(t, map[string]string{"content_type": "video", "title": "Launch"}, clip)
			setupMux(sys.Handler(1<<20)).ServeHTTP(rec, req)

			if rec.Code != tt.want {
				t.Fatalf("status = %d, want %d: %s", rec.Code, tt.want, rec.Body.String())
			}
			if got.UserID != "u1" || got.Title != "Launch" || got.MimeType != "video/mp4" || string(got.Data) != "mp4" {
				t.Errorf("command = %+v", got)
			}

			var body map[string]any
			if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if tt.err != nil {
				if _, ok := body["error"]; !ok {
					t.Errorf("body missing error: %v", body)
				}
			}
			if tt.outcome != nil {
				if _, ok := body["result"]; !ok {
					t.Errorf("body missing result: %v", body)
				}
			}
		})
	}
}

func TestHandlerSubmitFileRules(t *testing.T) {
	t.Run("live without file", func(t *testing.T) {
		var got submissions.SubmitCommand
		sys := &mockSystem{
			submitFn: func(_ context.Context, cmd submissions.SubmitCommand) (*submissions.Outcome, error) {
				got = cmd
				return outcomeFor(progress.Complete, submissions.StatusLive), nil
			},
		}

		rec := httptest.NewRecorder()
		setupMux(sys.Handler(1<<20)).ServeHTTP(rec, uploadRequest(t, map[string]string{"content_type": "live"}, nil))

		if rec.Code != http.StatusCreated {
			t.Fatalf("status = %d, want 201", rec.Code)
		}
		if got.ContentType != "live" || got.Data != nil {
			t.Errorf("command = %+v", got)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		sys := &mockSystem{
			submitFn: func(context.Context, submissions.SubmitCommand) (*submissions.Outcome, error) {
				t.Fatal("submit called without file")
				return nil, nil
			},
		}

		rec := httptest.NewRecorder()
		setupMux(sys.Handler(1<<20)).ServeHTTP(rec, uploadRequest(t, map[string]string{"content_type": "video"}, nil))

		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})

	t.Run("declared mime overrides part header", func(t *testing.T) {
		var got submissions.SubmitCommand
		sys := &mockSystem{
			submitFn: func(_ context.Context, cmd submissions.SubmitCommand) (*submissions.Outcome, error) {
				got = cmd
				return outcomeFor(progress.Complete, submissions.StatusPublished), nil
			},
		}

		file := &part{filename: "book.epub", mime: "application/octet-stream", data: []byte("PK")}
		req := uploadRequest(t, map[string]string{"content_type": "document", "mime_type": "application/epub+zip"}, file)

		rec := httptest.NewRecorder()
		setupMux(sys.Handler(1<<20)).ServeHTTP(rec, req)

		if got.MimeType != "application/epub+zip" {
			t.Errorf("mime = %q", got.MimeType)
		}
		if got.PageCount != nil {
			t.Errorf("page count = %v, want nil", *got.PageCount)
		}
	})
}

func TestHandlerFind(t *testing.T) {
	sys := &mockSystem{
		findFn: func(_ context.Context, id string) (*submissions.Submission, error) {
			if id != "sub-1" {
				return nil, submissions.ErrNotFound
			}
			return &submissions.Submission{SubmissionID: id, Status: submissions.StatusPublished}, nil
		},
	}
	mux := setupMux(sys.Handler(1 << 20))

	t.Run("found", func(t *testing.T) {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest("GET", "/submissions/sub-1", nil))

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		var s submissions.Submission
		if err := json.NewDecoder(rec.Body).Decode(&s); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if s.Status != submissions.StatusPublished {
			t.Errorf("status = %q", s.Status)
		}
	})

	t.Run("not found", func(t *testing.T) {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest("GET", "/submissions/other", nil))

		if rec.Code != http.StatusNotFound {
			t.Errorf("status = %d, want 404", rec.Code)
		}
	})
}
