package extraction

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/ledongthuc/pdf"

	"github.com/JaimeStill/warden/pkg/formatting"
)

// PDFText extracts the text of every page, collapses whitespace, and
// truncates to limit runes. Malformed documents return an error.
func PDFText(data []byte, limit int) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("parse pdf: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}

	var sb strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		content, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		sb.WriteString(content)
		sb.WriteByte(' ')
	}

	return formatting.Truncate(formatting.CollapseWhitespace(sb.String()), limit), nil
}

// MaxEPUBEntrySize bounds the decompressed size of a single EPUB content
// file. Larger entries are skipped.
const MaxEPUBEntrySize = 4 << 20

type epubReader struct {
	maxFiles int
	limit    int
}

// NewEPUBReader returns an EPUBReader that reads at most maxFiles content
// documents and truncates the result to limit runes.
func NewEPUBReader(maxFiles, limit int) EPUBReader {
	return &epubReader{maxFiles: maxFiles, limit: limit}
}

// Text reads HTML content documents in archive order, skipping META-INF,
// and strips script and style elements before taking their text.
func (e *epubReader) Text(ctx context.Context, data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open epub: %w", err)
	}

	var (
		parts []string
		read  int
	)
	for _, f := range zr.File {
		if read >= e.maxFiles {
			break
		}
		if !isContentFile(f.Name) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return "", err
		}
		read++

		text, err := htmlText(f)
		if err != nil {
			continue
		}
		parts = append(parts, text)
	}

	if read == 0 {
		return "", ErrNoContentFiles
	}

	return formatting.Truncate(formatting.CollapseWhitespace(strings.Join(parts, " ")), e.limit), nil
}

func isContentFile(name string) bool {
	if strings.HasPrefix(strings.ToUpper(name), "META-INF/") {
		return false
	}
	switch strings.ToLower(path.Ext(name)) {
	case ".html", ".htm", ".xhtml":
		return true
	default:
		return false
	}
}

func htmlText(f *zip.File) (string, error) {
	if f.UncompressedSize64 > MaxEPUBEntrySize {
		return "", fmt.Errorf("%w: %s", ErrEntryTooLarge, f.Name)
	}

	rc, err := f.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(rc, MaxEPUBEntrySize))
	if err != nil {
		return "", err
	}
	doc.Find("script, style").Remove()
	return doc.Text(), nil
}
