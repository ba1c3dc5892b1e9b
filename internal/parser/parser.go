// Package parser extracts plain text from document files. Each supported
// format has its own extractor; Parse dispatches on the file extension.
package parser

import (
	"fmt"
	"path/filepath"
	"strings"
)

var supportedExtensions = map[string]bool{
	".pdf":  true,
	".docx": true,
	".html": true,
	".htm":  true,
	".txt":  true,
	".md":   true,
}

// Parse extracts text from the file at path. The format is chosen by
// extension. Returns an error for unsupported formats or unreadable files.
func Parse(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return parsePDF(path)
	case ".docx":
		return parseDOCX(path)
	case ".html", ".htm":
		return parseHTML(path)
	case ".txt", ".md":
		return parseText(path)
	default:
		return "", fmt.Errorf("unsupported document format: %s", filepath.Ext(path))
	}
}

// IsSupported reports whether Parse can handle the file's extension.
func IsSupported(path string) bool {
	return supportedExtensions[strings.ToLower(filepath.Ext(path))]
}

// IsTemporary reports whether the name looks like an editor artifact
// (Office lock files, macOS resource forks, .tmp files) that should be
// skipped during collection.
func IsTemporary(path string) bool {
	base := filepath.Base(path)
	return strings.HasPrefix(base, "~$") ||
		strings.HasPrefix(base, "._") ||
		strings.HasSuffix(base, ".tmp")
}
