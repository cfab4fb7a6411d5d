package util

import (
	"errors"
	"strings"
)

const maxFileNameLen = 255

// SanitizeFileName makes a caller-supplied name safe for use inside an object
// storage key: path separators are flattened and traversal patterns rejected.
func SanitizeFileName(name string) (string, error) {
	if strings.Contains(name, "..") {
		return "", errors.New("invalid file name")
	}
	s := strings.TrimSpace(name)
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	if s == "" || len(s) > maxFileNameLen {
		return "", errors.New("invalid file name")
	}
	return s, nil
}
