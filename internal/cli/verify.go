package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/JaimeStill/warden/internal/config"
	"github.com/JaimeStill/warden/internal/extraction"
	"github.com/JaimeStill/warden/internal/progress"
	"github.com/JaimeStill/warden/internal/verification"
	"github.com/JaimeStill/warden/internal/workflow"
)

type verifyFlags struct {
	contentType  string
	mimeType     string
	title        string
	description  string
	engine       string
	submissionID string
	asJSON       bool
	quiet        bool
}

func newVerifyCmd(opts *options) *cobra.Command {
	f := &verifyFlags{}

	cmd := &cobra.Command{
		Use:   "verify [file]",
		Short: "Run verification against a local file",
		Long: `Run the verification pipeline against a local file and print the decision.

Exit codes: 0 approved, 2 rejected, 3 review required, 1 on any fault.
The file argument may be omitted for live content.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerify(cmd, opts, f, args)
		},
	}

	cmd.Flags().StringVarP(&f.contentType, "type", "t", "", "Declared content type: video, audio, music, document, live")
	cmd.Flags().StringVarP(&f.mimeType, "mime", "m", "", "MIME type (detected from the file when omitted)")
	cmd.Flags().StringVar(&f.title, "title", "", "Submission title")
	cmd.Flags().StringVar(&f.description, "description", "", "Submission description")
	cmd.Flags().StringVar(&f.engine, "engine", "", "Moderation engine override: policy or agent")
	cmd.Flags().StringVar(&f.submissionID, "id", "", "Submission id (generated when omitted)")
	cmd.Flags().BoolVar(&f.asJSON, "json", false, "Print the result as JSON")
	cmd.Flags().BoolVarP(&f.quiet, "quiet", "q", false, "Suppress progress output")
	_ = cmd.MarkFlagRequired("type")

	return cmd
}

func runVerify(cmd *cobra.Command, opts *options, f *verifyFlags, args []string) error {
	sub := verification.Submission{
		ContentType:  extraction.ContentType(f.contentType),
		MimeType:     f.mimeType,
		Title:        f.title,
		Description:  f.description,
		SubmissionID: f.submissionID,
		UserID:       "cli",
	}

	if len(args) == 1 {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return &ExitError{Code: ExitFault, Err: fmt.Errorf("read %s: %w", args[0], err)}
		}
		sub.Data = data
		if sub.MimeType == "" {
			sub.MimeType = detectMime(args[0], data)
		}
	} else if !strings.EqualFold(f.contentType, string(extraction.TypeLive)) {
		return &ExitError{Code: ExitFault, Err: fmt.Errorf("a file is required for %q content", f.contentType)}
	}

	cfg, err := config.LoadPipeline(opts.configPath)
	if err != nil {
		return &ExitError{Code: ExitFault, Err: err}
	}
	if f.engine != "" {
		cfg.Moderation.Engine = f.engine
		if err := cfg.FinalizePipeline(); err != nil {
			return &ExitError{Code: ExitFault, Err: err}
		}
	}

	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: slog.LevelWarn}))

	rt, err := workflow.NewRuntime(cfg, workflow.Options{}, logger)
	if err != nil {
		return &ExitError{Code: ExitFault, Err: err}
	}

	var reporter verification.Reporter
	if !f.quiet {
		reporter = progress.NewReporter(printer(cmd.ErrOrStderr()), logger)
	}

	result, verr := rt.Orchestrator(reporter).Verify(cmd.Context(), sub)
	if result != nil {
		if err := printResult(cmd.OutOrStdout(), result, f.asJSON); err != nil {
			return &ExitError{Code: ExitFault, Err: err}
		}
	}
	if verr != nil {
		return &ExitError{Code: ExitFault, Err: verr}
	}
	return exitFor(result)
}

func exitFor(r *verification.Result) error {
	switch r.Stage {
	case progress.Complete:
		return nil
	case progress.Rejected:
		return &ExitError{Code: ExitRejected}
	case progress.ReviewRequired:
		return &ExitError{Code: ExitReview}
	default:
		return &ExitError{Code: ExitFault, Err: fmt.Errorf("verification ended in stage %s", r.Stage)}
	}
}

func printer(w io.Writer) progress.Channel {
	return progress.ChannelFunc(func(_ context.Context, e progress.Event, _ string) error {
		_, err := fmt.Fprintf(w, "[%3d%%] %-16s %s\n", e.Progress, e.Stage, e.Message)
		return err
	})
}

func printResult(w io.Writer, r *verification.Result, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	}

	fmt.Fprintf(w, "submission: %s\n", r.SubmissionID)
	fmt.Fprintf(w, "variant:    %s\n", r.Variant)
	fmt.Fprintf(w, "stage:      %s\n", r.Stage)
	fmt.Fprintf(w, "verified:   %t\n", r.Verified)
	if d := r.Decision; d != nil {
		fmt.Fprintf(w, "confidence: %.2f\n", d.Confidence)
		fmt.Fprintf(w, "reason:     %s\n", d.Reason)
		if len(d.Flags) > 0 {
			fmt.Fprintf(w, "flags:      %s\n", strings.Join(d.Flags, ", "))
		}
	}
	return nil
}

func detectMime(path string, data []byte) string {
	if t := mime.TypeByExtension(strings.ToLower(filepath.Ext(path))); t != "" {
		return t
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".epub":
		return extraction.MimeEPUB
	}
	return http.DetectContentType(data)
}
