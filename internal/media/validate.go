// Package media validates and stores uploaded media files below a tree's media folder.
package media

import (
	"regexp"
	"strings"
)

var (
	externalRegex  = regexp.MustCompile(`(?i)^https?://`)
	badCharRegex   = regexp.MustCompile(`([/\\<>])`)
	badExtRegex    = regexp.MustCompile(`(?i)(\.(php|pl|cgi|bash|sh|bat|exe|com|htm|html|shtml))$`)
	extensionRegex = regexp.MustCompile(`\.[a-z0-9]{3,5}$`)
	pngRegex       = regexp.MustCompile(`(?i)\.png$`)
)

// NormalizeFolder cleans a user supplied subfolder of the media folder.
// The result is empty or ends with a slash.
func NormalizeFolder(folder string) (string, error) {
	folder = strings.ReplaceAll(folder, `\`, "/")
	folder = strings.Trim(folder, "/")

	if folder == "." || folder == "" {
		return "", nil
	}

	folder += "/"

	if strings.Contains("/"+folder, "/../") {
		return "", ErrFolderTraversal
	}

	return folder, nil
}

// IsExternal reports whether the filename field holds a URL.
func IsExternal(text string) bool {
	return externalRegex.MatchString(text)
}

// ValidateFilename checks a local media filename.
func ValidateFilename(filename string) error {
	if m := badCharRegex.FindStringSubmatch(filename); m != nil {
		return FilenameCharError{Char: m[1]}
	}

	if m := badExtRegex.FindStringSubmatch(filename); m != nil {
		return FilenameExtensionError{Extension: m[1]}
	}

	if filename == "" {
		return ErrNoFile
	}

	return nil
}

// ThumbnailName returns the filename of a thumbnail for a main file.
// PNG thumbnails of other file types get a .png extension.
func ThumbnailName(fileName, thumbMIME string) string {
	if thumbMIME == "image/png" && !pngRegex.MatchString(fileName) {
		return extensionRegex.ReplaceAllString(fileName, ".png")
	}

	return fileName
}
