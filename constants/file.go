package constants

import "strings"

// AllowedExtensions holds the file extensions accepted for document upload.
// Balance sheets arrive as PDFs only.
var AllowedExtensions = map[string]struct{}{
	"pdf": {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// ExtensionAllowed reports whether a (possibly dotted) extension is accepted.
func ExtensionAllowed(ext string) bool {
	_, ok := AllowedExtensions[NormalizeExt(ext)]
	return ok
}
