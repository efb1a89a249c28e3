package media_test

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"slices"
	"strings"
	"sync"
	"testing"

	"github.com/JaimeStill/warden/internal/media"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func defaultConfig(t *testing.T) *media.Config {
	t.Helper()
	cfg := &media.Config{}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	return cfg
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 2, 2))); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

type fakeRunner struct {
	mu       sync.Mutex
	calls    [][]string
	duration string
	output   []byte
	fail     string
}

func (f *fakeRunner) run(ctx context.Context, name string, args ...string) ([]byte, error) {
	f.mu.Lock()
	f.calls = append(f.calls, append([]string{name}, args...))
	f.mu.Unlock()

	if name == f.fail {
		return nil, errors.New("exit status 1")
	}
	if name == "ffprobe" {
		return []byte(f.duration), nil
	}
	return nil, os.WriteFile(args[len(args)-1], f.output, 0600)
}

func TestConfigFinalize(t *testing.T) {
	cfg := defaultConfig(t)
	if cfg.FFmpegPath != "ffmpeg" || cfg.FFprobePath != "ffprobe" || cfg.TranscriptionModel != "whisper-1" {
		t.Errorf("defaults = %+v", cfg)
	}

	bad := &media.Config{Timeout: "later"}
	if err := bad.Finalize(nil); err == nil {
		t.Error("expected invalid timeout error")
	}
}

func TestExtractAudio(t *testing.T) {
	runner := &fakeRunner{output: []byte("RIFF")}
	ff := media.NewFFmpeg(defaultConfig(t), runner.run, discard)

	data, mime, err := ff.ExtractAudio(context.Background(), []byte("mp4"), "video/mp4")
	if err != nil {
		t.Fatalf("ExtractAudio: %v", err)
	}
	if string(data) != "RIFF" || mime != "audio/wav" {
		t.Errorf("data = %q, mime = %q", data, mime)
	}

	call := runner.calls[0]
	if call[0] != "ffmpeg" || !slices.Contains(call, "-vn") {
		t.Errorf("call = %v", call)
	}
	input := call[slices.Index(call, "-i")+1]
	if !strings.HasSuffix(input, ".mp4") {
		t.Errorf("input = %q, want .mp4 extension", input)
	}
	if _, err := os.Stat(input); !os.IsNotExist(err) {
		t.Errorf("temp input not removed: %v", err)
	}
}

func TestExtractAudioFailure(t *testing.T) {
	runner := &fakeRunner{fail: "ffmpeg"}
	ff := media.NewFFmpeg(defaultConfig(t), runner.run, discard)

	if _, _, err := ff.ExtractAudio(context.Background(), []byte("x"), "video/mp4"); !errors.Is(err, media.ErrCommandFailed) {
		t.Errorf("error = %v, want ErrCommandFailed", err)
	}
}

func TestExtractFrames(t *testing.T) {
	runner := &fakeRunner{duration: "10.0\n", output: pngBytes(t)}
	ff := media.NewFFmpeg(defaultConfig(t), runner.run, discard)

	frames, err := ff.ExtractFrames(context.Background(), []byte("mp4"), "video/mp4", 3)
	if err != nil {
		t.Fatalf("ExtractFrames: %v", err)
	}
	if len(frames) != 3 {
		t.Fatalf("frames = %d, want 3", len(frames))
	}
	for _, f := range frames {
		if !strings.HasPrefix(f, "data:image/png;base64,") {
			t.Errorf("frame = %.40q, want png data URI", f)
		}
	}

	var offsets []string
	for _, call := range runner.calls {
		if i := slices.Index(call, "-ss"); i >= 0 {
			offsets = append(offsets, call[i+1])
		}
	}
	slices.Sort(offsets)
	if !slices.Equal(offsets, []string{"2.500", "5.000", "7.500"}) {
		t.Errorf("offsets = %v", offsets)
	}
}

func TestExtractFramesNoDuration(t *testing.T) {
	runner := &fakeRunner{duration: "N/A"}
	ff := media.NewFFmpeg(defaultConfig(t), runner.run, discard)

	if _, err := ff.ExtractFrames(context.Background(), []byte("x"), "video/mp4", 3); !errors.Is(err, media.ErrNoDuration) {
		t.Errorf("error = %v, want ErrNoDuration", err)
	}
}

func TestTranscriptionClient(t *testing.T) {
	var (
		gotModel string
		gotFile  []byte
		gotName  string
		gotAuth  string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/audio/transcriptions" {
			http.NotFound(w, r)
			return
		}
		gotAuth = r.Header.Get("Authorization")
		gotModel = r.FormValue("model")
		f, hdr, err := r.FormFile("file")
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		defer f.Close()
		gotName = hdr.Filename
		gotFile, _ = io.ReadAll(f)
		w.Write([]byte(`{"text":"hello world"}`))
	}))
	defer srv.Close()

	cfg := defaultConfig(t)
	cfg.TranscriptionURL = srv.URL + "/v1/"
	cfg.TranscriptionToken = "secret"

	text, err := media.NewTranscriptionClient(cfg, srv.Client()).Transcribe(context.Background(), []byte("RIFF"), "audio/wav")
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if text != "hello world" {
		t.Errorf("text = %q", text)
	}
	if gotModel != "whisper-1" || string(gotFile) != "RIFF" || gotName != "audio.wav" || gotAuth != "Bearer secret" {
		t.Errorf("model = %q, file = %q, name = %q, auth = %q", gotModel, gotFile, gotName, gotAuth)
	}
}

func TestTranscriptionClientErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	cfg := defaultConfig(t)
	cfg.TranscriptionURL = srv.URL

	_, err := media.NewTranscriptionClient(cfg, nil).Transcribe(context.Background(), []byte("x"), "audio/mpeg")
	if !errors.Is(err, media.ErrTranscriptionFailed) || !strings.Contains(err.Error(), "503") {
		t.Errorf("error = %v", err)
	}

	if c := media.NewTranscriptionClient(defaultConfig(t), nil); c != nil {
		t.Error("client created without URL")
	}
}
