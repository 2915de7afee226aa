// Package utils provides shared helper functions.
package utils

import (
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"
)

// EnsureDir ensures a directory exists, creating it if necessary.
func EnsureDir(path string) (string, error) {
	if err := os.MkdirAll(path, 0755); err != nil {
		return "", err
	}
	return path, nil
}

// GetDataPath returns the virtualco data directory (~/.virtualco).
func GetDataPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".virtualco")
}

// ExpandHome replaces a leading ~ with the user's home directory.
func ExpandHome(path string) string {
	if strings.HasPrefix(path, "~") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[1:])
	}
	return path
}

// Timestamp returns the current time as an ISO 8601 string.
func Timestamp() string {
	return time.Now().Format(time.RFC3339)
}

// TruncateString truncates a string to maxLen, adding suffix if truncated.
func TruncateString(s string, maxLen int, suffix string) string {
	if len(s) <= maxLen {
		return s
	}
	if suffix == "" {
		suffix = "..."
	}
	cutoff := maxLen - len(suffix)
	if cutoff < 0 {
		cutoff = 0
	}
	return s[:cutoff] + suffix
}

// RoleCategory strips a trailing seat number from a role:
// "Backend Dev 1" → "Backend Dev". Roles without a number are returned as is.
func RoleCategory(role string) string {
	role = strings.TrimSpace(role)
	i := strings.LastIndexByte(role, ' ')
	if i <= 0 || i == len(role)-1 {
		return role
	}
	for _, r := range role[i+1:] {
		if !unicode.IsDigit(r) {
			return role
		}
	}
	return strings.TrimSpace(role[:i])
}

// SafeFilename converts a string to a safe filename by replacing unsafe characters.
func SafeFilename(name string) string {
	unsafe := `<>:"/\|?*() `
	for _, c := range unsafe {
		name = strings.ReplaceAll(name, string(c), "_")
	}
	return strings.Trim(name, "_")
}
