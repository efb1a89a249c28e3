// Package extraction turns an uploaded file into the signal bundle that
// moderation inspects. Every extraction step degrades to an empty signal
// on failure instead of aborting the run.
package extraction

import "context"

// Bundle is the normalized signal handed to moderation. Any or all of the
// signal fields may be empty.
type Bundle struct {
	Transcript   string
	Frames       []string
	DocumentText string
	Title        string
	Description  string
	ContentType  ContentType
}

// HasSignal reports whether any extracted signal is present.
func (b Bundle) HasSignal() bool {
	return b.Transcript != "" || len(b.Frames) > 0 || b.DocumentText != ""
}

// Transcriber converts speech audio to text.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, mimeType string) (string, error)
}

// FrameSampler samples count representative frames from a video as
// encoded image strings.
type FrameSampler interface {
	ExtractFrames(ctx context.Context, video []byte, mimeType string, count int) ([]string, error)
}

// Demuxer extracts the audio track of a video. It returns the audio bytes
// and their MIME type.
type Demuxer interface {
	ExtractAudio(ctx context.Context, video []byte, mimeType string) ([]byte, string, error)
}

// EPUBReader extracts plain text from an EPUB archive.
type EPUBReader interface {
	Text(ctx context.Context, data []byte) (string, error)
}
