package errors

import (
	"strings"
	"unicode"

	"github.com/google/uuid"
)

// ValidateSource validates an image source: a local path or an http(s) URL.
func ValidateSource(src string) error {
	if src == "" {
		return New(ErrCodeInvalidInput, "source cannot be empty")
	}
	if strings.Contains(src, "://") {
		return ValidateURL(src)
	}
	for _, r := range src {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "source contains invalid characters")
		}
	}
	return nil
}

// ValidatePath validates a relative output path for safety.
// It prevents path traversal and ensures reasonable path length.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - No absolute paths (must be relative)
//   - No path traversal sequences (..)
//   - No backslashes (Windows-style paths)
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	if strings.HasPrefix(path, "/") {
		return New(ErrCodeInvalidPath, "path must be relative (cannot start with /)")
	}

	if strings.Contains(path, "..") {
		return New(ErrCodeInvalidPath, "path cannot contain path traversal sequences (..)")
	}

	if strings.Contains(path, "\\") {
		return New(ErrCodeInvalidPath, "path cannot contain backslashes")
	}

	return nil
}

// ValidateURL validates a URL string for safety.
// It ensures the URL has a safe scheme (http or https).
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}

	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}

	return nil
}

// ValidateArtworkID checks that id is a canonical UUID.
func ValidateArtworkID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return New(ErrCodeInvalidInput, "invalid artwork id %q", id)
	}
	return nil
}

// ValidateFormats checks every entry of formats against allowed.
func ValidateFormats(formats []string, allowed ...string) error {
	if len(formats) == 0 {
		return New(ErrCodeInvalidFormat, "no output format given")
	}
	for _, f := range formats {
		ok := false
		for _, a := range allowed {
			if f == a {
				ok = true
				break
			}
		}
		if !ok {
			return New(ErrCodeInvalidFormat, "unsupported format %q (must be one of: %s)", f, strings.Join(allowed, ", "))
		}
	}
	return nil
}
