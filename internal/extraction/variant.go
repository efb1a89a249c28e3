package extraction

import "strings"

// ContentType is the content type a submitter declares.
type ContentType string

const (
	TypeVideo    ContentType = "video"
	TypeAudio    ContentType = "audio"
	TypeMusic    ContentType = "music"
	TypeDocument ContentType = "document"
	TypeLive     ContentType = "live"
)

// Variant selects the extraction strategy for a submission.
type Variant int

const (
	Unsupported Variant = iota
	Video
	Audio
	PDF
	EPUB
	MetadataOnly
	Live
)

const (
	MimePDF  = "application/pdf"
	MimeEPUB = "application/epub+zip"
)

func (v Variant) String() string {
	switch v {
	case Video:
		return "video"
	case Audio:
		return "audio"
	case PDF:
		return "pdf"
	case EPUB:
		return "epub"
	case MetadataOnly:
		return "metadata-only"
	case Live:
		return "live"
	default:
		return "unsupported"
	}
}

// Resolve maps a declared content type and MIME type to a Variant. Known
// content types with a mismatched MIME degrade to MetadataOnly; unknown
// content types are Unsupported.
func Resolve(contentType ContentType, mimeType string) Variant {
	mime := normalizeMime(mimeType)

	switch ContentType(strings.ToLower(string(contentType))) {
	case TypeLive:
		return Live
	case TypeVideo:
		if strings.HasPrefix(mime, "video/") {
			return Video
		}
		return MetadataOnly
	case TypeAudio, TypeMusic:
		if strings.HasPrefix(mime, "audio/") {
			return Audio
		}
		return MetadataOnly
	case TypeDocument:
		switch mime {
		case MimePDF:
			return PDF
		case MimeEPUB:
			return EPUB
		default:
			return MetadataOnly
		}
	default:
		return Unsupported
	}
}

// normalizeMime lowercases and drops parameters such as "; charset=utf-8".
func normalizeMime(mimeType string) string {
	mime, _, _ := strings.Cut(mimeType, ";")
	return strings.ToLower(strings.TrimSpace(mime))
}
