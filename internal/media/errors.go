package media

import "errors"

var (
	ErrCommandFailed       = errors.New("media command failed")
	ErrNoDuration          = errors.New("could not determine media duration")
	ErrTranscriptionFailed = errors.New("transcription failed")
)
