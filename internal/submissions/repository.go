package submissions

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/JaimeStill/warden/internal/verification"
	"github.com/JaimeStill/warden/pkg/repository"
	"github.com/JaimeStill/warden/pkg/storage"
)

type repo struct {
	db       *sql.DB
	storage  storage.System
	verifier Verifier
	logger   *slog.Logger
}

// New creates a submission repository implementing System.
func New(db *sql.DB, store storage.System, verifier Verifier, logger *slog.Logger) System {
	return &repo{
		db:       db,
		storage:  store,
		verifier: verifier,
		logger:   logger.With("system", "submissions"),
	}
}

func (r *repo) Handler(maxUploadSize int64) *Handler {
	return NewHandler(r, r.logger, maxUploadSize)
}

func (r *repo) Submit(ctx context.Context, cmd SubmitCommand) (*Outcome, error) {
	if cmd.UserID == "" {
		return nil, ErrMissingUser
	}

	result, err := r.verifier.Verify(ctx, verification.Submission{
		Data:         cmd.Data,
		MimeType:     cmd.MimeType,
		ContentType:  cmd.ContentType,
		Title:        cmd.Title,
		Description:  cmd.Description,
		SubmissionID: cmd.SubmissionID,
		UserID:       cmd.UserID,
	})
	if err != nil {
		return &Outcome{Result: result}, err
	}

	status, ok := StatusFor(result)
	if !ok {
		return &Outcome{Result: result}, ErrRejected
	}

	sub, err := r.record(ctx, cmd, result, status)
	if err != nil {
		return &Outcome{Result: result}, err
	}
	return &Outcome{Result: result, Submission: sub}, nil
}

func (r *repo) Find(ctx context.Context, submissionID string) (*Submission, error) {
	q := "SELECT " + columns + " FROM submissions WHERE submission_id = $1"

	s, err := repository.QueryOne(ctx, r.db, q, []any{submissionID}, scanSubmission)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	r.withURL(&s)
	return &s, nil
}

// record stores the asset under the new row's id and inserts the row. A
// failed insert deletes only the blob this call uploaded.
func (r *repo) record(ctx context.Context, cmd SubmitCommand, result *verification.Result, status Status) (*Submission, error) {
	id := uuid.New()

	var key *string
	if len(cmd.Data) > 0 {
		k := StorageKey(id, cmd.Filename)
		if err := r.storage.Upload(ctx, k, bytes.NewReader(cmd.Data), cmd.MimeType); err != nil {
			return nil, fmt.Errorf("upload submission asset: %w", err)
		}
		key = &k
	}

	var (
		confidence *float64
		reason     string
		flags      = []string{}
	)
	if d := result.Decision; d != nil {
		confidence = &d.Confidence
		reason = d.Reason
		if d.Flags != nil {
			flags = d.Flags
		}
	}

	encoded, err := json.Marshal(flags)
	if err != nil {
		return nil, fmt.Errorf("encode flags: %w", err)
	}

	q := `
		INSERT INTO submissions(id, submission_id, user_id, title, description, content_type, mime_type, variant,
			filename, size_bytes, page_count, storage_key, status, verified, confidence, reason, flags)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		RETURNING ` + columns

	args := []any{
		id,
		result.SubmissionID,
		cmd.UserID,
		cmd.Title,
		cmd.Description,
		string(cmd.ContentType),
		cmd.MimeType,
		result.Variant,
		cmd.Filename,
		int64(len(cmd.Data)),
		cmd.PageCount,
		key,
		string(status),
		result.Verified,
		confidence,
		reason,
		encoded,
	}

	s, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Submission, error) {
		return repository.QueryOne(ctx, tx, q, args, scanSubmission)
	})
	if err != nil {
		if key != nil {
			if delErr := r.storage.Delete(ctx, *key); delErr != nil {
				r.logger.WarnContext(ctx, "compensating blob delete failed", "key", *key, "error", delErr)
			}
		}
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.withURL(&s)
	r.logger.InfoContext(ctx, "submission recorded",
		"submission_id", s.SubmissionID,
		"status", s.Status,
		"variant", s.Variant,
	)
	return &s, nil
}

func (r *repo) withURL(s *Submission) {
	if s.StorageKey != nil && r.storage != nil {
		s.URL = r.storage.URL(*s.StorageKey)
	}
}
