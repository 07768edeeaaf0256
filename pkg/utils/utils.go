package utils

import (
	"path/filepath"
	"strings"
)

// isSeparator treats both slash flavours as separators, whatever the host OS.
// Names arrive from a webview and may have been built on another platform.
func isSeparator(r rune) bool {
	return r == '/' || r == '\\'
}

// BaseName returns the last element of name. Trailing separators are ignored,
// so "docs/" yields "docs" and "/" yields "".
func BaseName(name string) string {
	name = strings.TrimRightFunc(name, isSeparator)
	if i := strings.LastIndexFunc(name, isSeparator); i >= 0 {
		name = name[i+1:]
	}
	// Drive letters such as "C:" are not stripped by the split above.
	return strings.TrimPrefix(name, filepath.VolumeName(name))
}

// HasTraversal reports whether any element of name is "..".
func HasTraversal(name string) bool {
	for _, elem := range strings.FieldsFunc(name, isSeparator) {
		if elem == ".." {
			return true
		}
	}
	return false
}

// IsAllowedFilenameChar reports whether r may appear in a sanitized filename.
func IsAllowedFilenameChar(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	case r == '.', r == '_', r == '-':
		return true
	}
	return false
}

// SanitizeFilename keeps only the last path element of name and drops every
// character outside [A-Za-z0-9._-]. The result may be empty; callers decide
// whether that is acceptable.
func SanitizeFilename(name string) string {
	base := BaseName(name)
	var b strings.Builder
	b.Grow(len(base))
	for _, r := range base {
		if IsAllowedFilenameChar(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// TruncateFilename shortens an already sanitized name to at most max bytes.
// The extension is kept when the stem can still hold at least one byte.
func TruncateFilename(name string, max int) string {
	if max <= 0 {
		return ""
	}
	if len(name) <= max {
		return name
	}
	ext := filepath.Ext(name)
	if ext != "" && len(ext) < max {
		return name[:max-len(ext)] + ext
	}
	return name[:max]
}
