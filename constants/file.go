package constants

import "strings"

// AllowedExtensions holds the default allowed file extensions for grading input.
var AllowedExtensions = map[string]struct{}{
	"png":  {},
	"jpg":  {},
	"jpeg": {},
	"bmp":  {},
}

// allowedMIMETypes holds the accepted sniffed media types. BMP shows up under
// two names depending on the detector.
var allowedMIMETypes = map[string]struct{}{
	"image/png":      {},
	"image/jpeg":     {},
	"image/bmp":      {},
	"image/x-ms-bmp": {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// IsAllowedExt checks if a file extension is in the allowed set.
func IsAllowedExt(ext string) bool {
	_, ok := AllowedExtensions[NormalizeExt(ext)]
	return ok
}

// IsAllowedMIME checks if a sniffed media type is in the allowed set.
// Parameters after ';' (e.g. charset) are ignored.
func IsAllowedMIME(mediaType string) bool {
	mt := strings.ToLower(strings.TrimSpace(mediaType))
	if i := strings.IndexByte(mt, ';'); i >= 0 {
		mt = strings.TrimSpace(mt[:i])
	}
	_, ok := allowedMIMETypes[mt]
	return ok
}
