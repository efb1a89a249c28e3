// Package media provides the concrete engines the extraction pipeline
// calls: ffmpeg for demuxing and frame sampling, and an HTTP client for
// speech transcription.
package media

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/JaimeStill/document-context/pkg/document"
	"github.com/JaimeStill/document-context/pkg/encoding"
	"golang.org/x/sync/errgroup"
)

// Runner executes an external command and returns its stdout.
type Runner func(ctx context.Context, name string, args ...string) ([]byte, error)

// FFmpeg demuxes audio and samples frames by shelling out to ffmpeg and
// ffprobe. Each call works in its own temp directory, removed on return.
type FFmpeg struct {
	ffmpeg  string
	ffprobe string
	run     Runner
	logger  *slog.Logger
}

// NewFFmpeg creates an FFmpeg adapter. A nil runner uses os/exec.
func NewFFmpeg(cfg *Config, run Runner, logger *slog.Logger) *FFmpeg {
	if run == nil {
		run = execRunner
	}
	return &FFmpeg{
		ffmpeg:  cfg.FFmpegPath,
		ffprobe: cfg.FFprobePath,
		run:     run,
		logger:  logger.With("system", "ffmpeg"),
	}
}

// ExtractAudio converts the audio track to 16 kHz mono WAV.
func (f *FFmpeg) ExtractAudio(ctx context.Context, video []byte, mimeType string) ([]byte, string, error) {
	dir, input, err := stage(video, mimeType)
	if err != nil {
		return nil, "", err
	}
	defer os.RemoveAll(dir)

	output := filepath.Join(dir, "audio.wav")
	if _, err := f.run(ctx, f.ffmpeg, "-v", "error", "-y", "-i", input, "-vn", "-ac", "1", "-ar", "16000", "-f", "wav", output); err != nil {
		return nil, "", fmt.Errorf("%w: extract audio: %w", ErrCommandFailed, err)
	}

	data, err := os.ReadFile(output)
	if err != nil {
		return nil, "", fmt.Errorf("read audio: %w", err)
	}
	return data, "audio/wav", nil
}

// ExtractFrames grabs count PNG frames evenly spaced across the video and
// returns them as data URIs.
func (f *FFmpeg) ExtractFrames(ctx context.Context, video []byte, mimeType string, count int) ([]string, error) {
	if count < 1 {
		return nil, nil
	}

	dir, input, err := stage(video, mimeType)
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(dir)

	duration, err := f.duration(ctx, input)
	if err != nil {
		return nil, err
	}

	frames := make([]string, count)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(min(runtime.NumCPU(), count), 1))

	for i := range count {
		g.Go(func() error {
			at := duration * float64(i+1) / float64(count+1)
			output := filepath.Join(dir, fmt.Sprintf("frame-%d.png", i+1))

			if _, err := f.run(gctx, f.ffmpeg, "-v", "error", "-y", "-ss", strconv.FormatFloat(at, 'f', 3, 64),
				"-i", input, "-frames:v", "1", "-f", "image2", output); err != nil {
				return fmt.Errorf("%w: frame %d: %w", ErrCommandFailed, i+1, err)
			}

			data, err := os.ReadFile(output)
			if err != nil {
				return fmt.Errorf("read frame %d: %w", i+1, err)
			}

			uri, err := encoding.EncodeImageDataURI(data, document.PNG)
			if err != nil {
				return fmt.Errorf("encode frame %d: %w", i+1, err)
			}
			frames[i] = uri
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	f.logger.DebugContext(ctx, "frames sampled", "count", count, "duration", duration)
	return frames, nil
}

func (f *FFmpeg) duration(ctx context.Context, input string) (float64, error) {
	out, err := f.run(ctx, f.ffprobe, "-v", "error", "-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1", input)
	if err != nil {
		return 0, fmt.Errorf("%w: probe: %w", ErrCommandFailed, err)
	}

	d, err := strconv.ParseFloat(strings.TrimSpace(string(out)), 64)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("%w: %q", ErrNoDuration, strings.TrimSpace(string(out)))
	}
	return d, nil
}

func stage(data []byte, mimeType string) (string, string, error) {
	dir, err := os.MkdirTemp("", "warden-media-*")
	if err != nil {
		return "", "", fmt.Errorf("create temp directory: %w", err)
	}

	input := filepath.Join(dir, "input"+extension(mimeType))
	if err := os.WriteFile(input, data, 0600); err != nil {
		os.RemoveAll(dir)
		return "", "", fmt.Errorf("write input: %w", err)
	}
	return dir, input, nil
}

var extensions = map[string]string{
	"video/mp4":        ".mp4",
	"video/quicktime":  ".mov",
	"video/webm":       ".webm",
	"video/x-matroska": ".mkv",
	"video/x-msvideo":  ".avi",
	"audio/mpeg":       ".mp3",
	"audio/wav":        ".wav",
	"audio/x-wav":      ".wav",
	"audio/ogg":        ".ogg",
	"audio/flac":       ".flac",
	"audio/aac":        ".aac",
	"audio/mp4":        ".m4a",
	"audio/webm":       ".webm",
}

func extension(mimeType string) string {
	mime, _, _ := strings.Cut(mimeType, ";")
	if ext, ok := extensions[strings.ToLower(strings.TrimSpace(mime))]; ok {
		return ext
	}
	return ".bin"
}

func execRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(stderr.String()))
	}
	return stdout.Bytes(), nil
}
