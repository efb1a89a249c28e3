package extraction

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/JaimeStill/warden/internal/progress"
	"github.com/JaimeStill/warden/pkg/formatting"
)

// Notify is called when extraction enters a sub-stage. Video extraction
// calls it from two goroutines.
type Notify func(stage progress.Stage)

// Collaborators are the external engines extraction depends on. Any of
// them may be nil, which empties the signal they would produce.
type Collaborators struct {
	Transcriber Transcriber
	Frames      FrameSampler
	Demuxer     Demuxer
	EPUB        EPUBReader
}

// Input is the raw upload plus its metadata.
type Input struct {
	Data        []byte
	MimeType    string
	ContentType ContentType
	Title       string
	Description string
}

// Extractor builds a Bundle for each variant.
type Extractor struct {
	collab     Collaborators
	frameCount int
	textLimit  int
	logger     *slog.Logger
}

// New creates an Extractor. EPUB support is resolved once here: disabled
// config drops any reader, and an enabled config without one installs the
// built-in archive reader.
func New(cfg *Config, collab Collaborators, logger *slog.Logger) *Extractor {
	if !cfg.EPUB() {
		collab.EPUB = nil
	} else if collab.EPUB == nil {
		collab.EPUB = NewEPUBReader(cfg.EPUBMaxFiles, cfg.TextLimit)
	}

	return &Extractor{
		collab:     collab,
		frameCount: cfg.FrameCount,
		textLimit:  cfg.TextLimit,
		logger:     logger.With("system", "extraction"),
	}
}

// EPUBEnabled reports whether an EPUB reader is installed.
func (e *Extractor) EPUBEnabled() bool {
	return e.collab.EPUB != nil
}

// Extract produces the bundle for variant. It never fails: each step that
// errors contributes an empty signal. Live and Unsupported yield a
// metadata-only bundle.
func (e *Extractor) Extract(ctx context.Context, variant Variant, in Input, notify Notify) Bundle {
	if notify == nil {
		notify = func(progress.Stage) {}
	}

	b := Bundle{
		Title:       in.Title,
		Description: in.Description,
		ContentType: in.ContentType,
	}

	switch variant {
	case Video:
		b.Transcript, b.Frames = e.video(ctx, in, notify)
	case Audio:
		notify(progress.Transcribing)
		e.recovered(ctx, "transcribe", func() {
			b.Transcript = e.transcribe(ctx, in.Data, in.MimeType)
		})
	case PDF:
		notify(progress.ExtractingText)
		b.DocumentText = e.pdf(ctx, in.Data)
	case EPUB:
		notify(progress.ExtractingText)
		e.recovered(ctx, "epub", func() {
			b.DocumentText = e.epub(ctx, in.Data)
		})
	case MetadataOnly, Live, Unsupported:
	}

	e.logger.InfoContext(ctx, "extraction finished",
		"variant", variant,
		"transcript_chars", len(b.Transcript),
		"frames", len(b.Frames),
		"text_chars", len(b.DocumentText),
	)
	return b
}

// video runs the audio and frame branches concurrently. Branch failures,
// panics included, are absorbed, so the group never returns an error.
func (e *Extractor) video(ctx context.Context, in Input, notify Notify) (string, []string) {
	var (
		g          errgroup.Group
		transcript string
		frames     []string
	)

	g.Go(func() error {
		notify(progress.Transcribing)
		e.recovered(ctx, "demux", func() {
			transcript = e.videoTranscript(ctx, in)
		})
		return nil
	})

	g.Go(func() error {
		notify(progress.AnalyzingFrames)
		e.recovered(ctx, "frames", func() {
			frames = e.frames(ctx, in)
		})
		return nil
	})

	g.Wait()
	return transcript, frames
}

func (e *Extractor) videoTranscript(ctx context.Context, in Input) string {
	if e.collab.Demuxer == nil {
		e.degraded(ctx, "demux", fmt.Errorf("%w: no demuxer", ErrNoSignal))
		return ""
	}

	audio, audioMime, err := e.collab.Demuxer.ExtractAudio(ctx, in.Data, in.MimeType)
	if err != nil {
		e.degraded(ctx, "demux", err)
		return ""
	}
	if len(audio) == 0 {
		e.degraded(ctx, "demux", fmt.Errorf("%w: empty audio track", ErrNoSignal))
		return ""
	}

	return e.transcribe(ctx, audio, audioMime)
}

func (e *Extractor) transcribe(ctx context.Context, audio []byte, mimeType string) string {
	if e.collab.Transcriber == nil {
		e.degraded(ctx, "transcribe", fmt.Errorf("%w: no transcriber", ErrNoSignal))
		return ""
	}

	text, err := e.collab.Transcriber.Transcribe(ctx, audio, mimeType)
	if err != nil {
		e.degraded(ctx, "transcribe", err)
		return ""
	}
	return strings.TrimSpace(text)
}

func (e *Extractor) frames(ctx context.Context, in Input) []string {
	if e.collab.Frames == nil {
		e.degraded(ctx, "frames", fmt.Errorf("%w: no frame sampler", ErrNoSignal))
		return nil
	}

	frames, err := e.collab.Frames.ExtractFrames(ctx, in.Data, in.MimeType, e.frameCount)
	if err != nil {
		e.degraded(ctx, "frames", err)
		return nil
	}
	if len(frames) > e.frameCount {
		frames = frames[:e.frameCount]
	}
	return frames
}

func (e *Extractor) pdf(ctx context.Context, data []byte) string {
	text, err := PDFText(data, e.textLimit)
	if err != nil {
		e.degraded(ctx, "pdf", err)
		return ""
	}
	return text
}

func (e *Extractor) epub(ctx context.Context, data []byte) string {
	if e.collab.EPUB == nil {
		e.degraded(ctx, "epub", ErrEPUBUnavailable)
		return ""
	}

	text, err := e.collab.EPUB.Text(ctx, data)
	if err != nil {
		e.degraded(ctx, "epub", err)
		return ""
	}
	return formatting.Truncate(text, e.textLimit)
}

// recovered runs fn and turns a collaborator panic into a degraded step.
// Whatever fn had not assigned stays empty.
func (e *Extractor) recovered(ctx context.Context, step string, fn func()) {
	defer func() {
		if p := recover(); p != nil {
			e.degraded(ctx, step, fmt.Errorf("%w: panic: %v", ErrNoSignal, p))
		}
	}()
	fn()
}

func (e *Extractor) degraded(ctx context.Context, step string, err error) {
	e.logger.WarnContext(ctx, "extraction step degraded", "step", step, "error", err)
}
