package submissions

import (
	"encoding/json"
	"fmt"
	"net/url"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/JaimeStill/warden/pkg/repository"
)

const columns = `id, submission_id, user_id, title, description, content_type, mime_type, variant,
	filename, size_bytes, page_count, storage_key, status, verified, confidence, reason, flags, created_at`

func scanSubmission(s repository.Scanner) (Submission, error) {
	var (
		sub   Submission
		flags []byte
	)
	err := s.Scan(
		&sub.ID,
		&sub.SubmissionID,
		&sub.UserID,
		&sub.Title,
		&sub.Description,
		&sub.ContentType,
		&sub.MimeType,
		&sub.Variant,
		&sub.Filename,
		&sub.SizeBytes,
		&sub.PageCount,
		&sub.StorageKey,
		&sub.Status,
		&sub.Verified,
		&sub.Confidence,
		&sub.Reason,
		&flags,
		&sub.CreatedAt,
	)
	if err != nil {
		return sub, err
	}
	if len(flags) > 0 {
		if err := json.Unmarshal(flags, &sub.Flags); err != nil {
			return sub, fmt.Errorf("decode flags: %w", err)
		}
	}
	if sub.Flags == nil {
		sub.Flags = []string{}
	}
	return sub, nil
}

// StorageKey builds the blob key for an asset from its record id.
// Caller-supplied submission ids never appear in the key, so a new upload
// cannot land on a blob owned by an existing record.
func StorageKey(id uuid.UUID, filename string) string {
	return fmt.Sprintf("submissions/%s/%s", id, sanitizeFilename(filename))
}

func sanitizeFilename(name string) string {
	name = filepath.Base(name)
	if name == "." || name == "/" || name == "" {
		name = "asset"
	}
	return url.PathEscape(name)
}
