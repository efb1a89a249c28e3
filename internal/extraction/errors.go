package extraction

import "errors"

var (
	// ErrNoSignal marks an extraction step that produced nothing.
	ErrNoSignal = errors.New("no signal extracted")
	// ErrEPUBUnavailable indicates EPUB parsing is disabled.
	ErrEPUBUnavailable = errors.New("epub reader unavailable")
	// ErrNoContentFiles indicates an EPUB archive holds no HTML content.
	ErrNoContentFiles = errors.New("epub has no content files")
	// ErrEntryTooLarge indicates an EPUB content file exceeds MaxEPUBEntrySize.
	ErrEntryTooLarge = errors.New("epub entry too large")
)
