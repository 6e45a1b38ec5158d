package media

import (
	"io"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// thumbnailTypes are the image types accepted as thumbnails.
var thumbnailTypes = []string{"image/png", "image/gif", "image/jpeg"}

// DetectMIME sniffs the content type of r. The declared type is used when sniffing finds nothing specific.
func DetectMIME(r io.Reader, declared string) string {
	m, err := mimetype.DetectReader(r)
	if err != nil || m.Is("application/octet-stream") {
		return declared
	}

	mime, _, _ := strings.Cut(m.String(), ";")

	return mime
}

// IsImage reports whether a content type is an image.
func IsImage(mime string) bool {
	return strings.HasPrefix(mime, "image")
}

// IsThumbnailType reports whether a content type may be stored as a thumbnail.
func IsThumbnailType(mime string) bool {
	for _, t := range thumbnailTypes {
		if mime == t {
			return true
		}
	}

	return false
}

// Format returns the GEDCOM FORM value for a file, e.g. "jpg".
func Format(fileName string) string {
	i := strings.LastIndex(fileName, ".")
	if i < 0 || i == len(fileName)-1 {
		return ""
	}

	ext := strings.ToLower(fileName[i+1:])
	if ext == "jpeg" {
		return "jpg"
	}

	return ext
}

// FormatFromMIME returns the FORM value for a content type.
func FormatFromMIME(mime string) string {
	if m := mimetype.Lookup(mime); m != nil {
		return Format("x" + m.Extension())
	}

	return ""
}
