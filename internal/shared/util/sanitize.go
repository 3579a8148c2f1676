package util

import (
	"errors"
	"path"
	"strings"
	"unicode"
)

const maxFileNameLen = 120

var errInvalidFileName = errors.New("invalid file name")

// SanitizeFileName makes an uploaded file name safe to use as the last
// segment of a storage key. Traversal attempts are rejected, separators and
// control characters are replaced, and long names are shortened keeping the
// extension.
func SanitizeFileName(name string) (string, error) {
	if strings.Contains(name, "..") {
		return "", errInvalidFileName
	}
	s := strings.Map(func(r rune) rune {
		switch {
		case r == '/' || r == '\\':
			return '_'
		case unicode.IsControl(r):
			return -1
		}
		return r
	}, strings.TrimSpace(name))
	if s == "" {
		return "", errInvalidFileName
	}

	if len(s) > maxFileNameLen {
		ext := path.Ext(s)
		if len(ext) > 16 {
			ext = ""
		}
		s = strings.ToValidUTF8(s[:maxFileNameLen-len(ext)], "") + ext
	}
	return s, nil
}
