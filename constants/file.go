package constants

import "strings"

// Format is the coarse input classification used throughout the pipeline.
type Format string

const (
	PDF   Format = "PDF"
	TEXT  Format = "TEXT"
	IMAGE Format = "IMAGE"
)

// Media types recognized at the intake boundary.
const (
	MediaTypePDF  = "application/pdf"
	MediaTypeText = "text/plain"
	MediaTypePNG  = "image/png"
	MediaTypeJPEG = "image/jpeg"
)

// MapMediaType classifies a declared media type. Unknown types map to "".
func MapMediaType(mediaType string) Format {
	mt := strings.ToLower(strings.TrimSpace(mediaType))
	if i := strings.IndexByte(mt, ';'); i >= 0 {
		mt = strings.TrimSpace(mt[:i])
	}
	switch mt {
	case MediaTypePDF:
		return PDF
	case MediaTypeText:
		return TEXT
	case MediaTypePNG, MediaTypeJPEG:
		return IMAGE
	}
	return ""
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// MediaTypeForExt maps a file extension to its declared media type.
// Unknown extensions map to "".
func MediaTypeForExt(ext string) string {
	switch NormalizeExt(ext) {
	case "pdf":
		return MediaTypePDF
	case "txt", "text":
		return MediaTypeText
	case "png":
		return MediaTypePNG
	case "jpg", "jpeg":
		return MediaTypeJPEG
	}
	return ""
}

// Extraction methods recorded on evaluation runs.
const (
	MethodText     = "text"
	MethodPDFText  = "pdf-text"
	MethodPDFOCR   = "pdf-ocr"
	MethodImageOCR = "image-ocr"
)
