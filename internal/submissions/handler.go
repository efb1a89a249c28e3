package submissions

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/JaimeStill/warden/internal/extraction"
	"github.com/JaimeStill/warden/internal/progress"
	"github.com/JaimeStill/warden/pkg/handlers"
	"github.com/JaimeStill/warden/pkg/routes"
)

// Handler provides HTTP endpoints for submissions.
type Handler struct {
	sys           System
	logger        *slog.Logger
	maxUploadSize int64
}

// NewHandler creates a Handler with the given system, logger, and upload size limit.
func NewHandler(sys System, logger *slog.Logger, maxUploadSize int64) *Handler {
	return &Handler{
		sys:           sys,
		logger:        logger.With("handler", "submissions"),
		maxUploadSize: maxUploadSize,
	}
}

// Routes returns the route group definition for submission endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/submissions",
		Routes: []routes.Route{
			{Method: "POST", Pattern: "", Handler: h.Submit},
			{Method: "GET", Pattern: "/{id}", Handler: h.Find},
		},
	}
}

// Submit accepts a multipart upload, verifies it, and records it when the
// content is cleared. The file part is optional for live content.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			handlers.RespondError(w, h.logger, http.StatusRequestEntityTooLarge, ErrFileTooLarge)
			return
		}
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidFile)
		return
	}

	cmd := SubmitCommand{
		ContentType:  extraction.ContentType(strings.TrimSpace(r.FormValue("content_type"))),
		Title:        r.FormValue("title"),
		Description:  r.FormValue("description"),
		SubmissionID: r.FormValue("submission_id"),
		UserID:       r.Header.Get(progress.UserHeader),
	}

	file, header, err := r.FormFile("file")
	switch {
	case err == nil:
		defer file.Close()
		data, err := io.ReadAll(file)
		if err != nil {
			handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidFile)
			return
		}
		cmd.Data = data
		cmd.Filename = header.Filename
		cmd.MimeType = detectMimeType(r.FormValue("mime_type"), header.Header.Get("Content-Type"), data)
		cmd.PageCount = extractPDFPageCount(h.logger, data, cmd.MimeType)
	case errors.Is(err, http.ErrMissingFile) && strings.EqualFold(string(cmd.ContentType), string(extraction.TypeLive)):
		cmd.MimeType = r.FormValue("mime_type")
	default:
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidFile)
		return
	}

	outcome, err := h.sys.Submit(r.Context(), cmd)
	if err != nil {
		status := MapHTTPStatus(err)
		if outcome == nil || outcome.Result == nil {
			handlers.RespondError(w, h.logger, status, err)
			return
		}
		h.logger.Warn("submission not published", "status", status, "submission_id", outcome.Result.SubmissionID, "error", err)
		outcome.Error = err.Error()
		handlers.RespondJSON(w, status, outcome)
		return
	}

	status := http.StatusCreated
	if outcome.Submission != nil && outcome.Submission.Status == StatusReview {
		status = http.StatusAccepted
	}
	handlers.RespondJSON(w, status, outcome)
}

// Find returns a recorded submission by its submission id.
func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	s, err := h.sys.Find(r.Context(), r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, s)
}

func detectMimeType(declared, header string, data []byte) string {
	if declared = strings.TrimSpace(declared); declared != "" {
		return declared
	}
	header = strings.TrimSpace(header)
	if header != "" && header != "application/octet-stream" {
		return header
	}
	return http.DetectContentType(data)
}

func extractPDFPageCount(logger *slog.Logger, data []byte, mimeType string) *int {
	if !strings.HasPrefix(strings.ToLower(mimeType), extraction.MimePDF) {
		return nil
	}

	count, err := api.PageCount(bytes.NewReader(data), nil)
	if err != nil {
		logger.Warn("failed to extract PDF page count", "error", err)
		return nil
	}
	return &count
}
