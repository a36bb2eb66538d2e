package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// MaxCountdownSeconds bounds the configurable countdown so no capture waits
// indefinitely.
const MaxCountdownSeconds = 30

// ValidateCountdown checks that a countdown value is within 0..MaxCountdownSeconds.
func ValidateCountdown(seconds int) error {
	if seconds < 0 || seconds > MaxCountdownSeconds {
		return New(ErrCodeInvalidCountdown, "countdown must be between 0 and %d seconds, got %d", MaxCountdownSeconds, seconds)
	}
	return nil
}

var hexColorRegex = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// ValidateHexColor validates a CSS-style hex color (#rgb or #rrggbb).
func ValidateHexColor(s string) error {
	if !hexColorRegex.MatchString(s) {
		return New(ErrCodeInvalidDecoration, "invalid hex color: %q", s)
	}
	return nil
}

// ValidateAssetRef validates a decoration asset reference (overlay or sticker).
// References are relative names resolved against an asset directory, so
// they must not escape it.
//
// Validation rules:
//   - No empty refs
//   - Maximum length of 256 characters
//   - No control characters or null bytes
//   - No absolute paths, path traversal (..) or backslashes
func ValidateAssetRef(ref string) error {
	if ref == "" {
		return New(ErrCodeInvalidDecoration, "asset reference cannot be empty")
	}
	if len(ref) > 256 {
		return New(ErrCodeInvalidDecoration, "asset reference too long (max 256 characters)")
	}
	for _, r := range ref {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidDecoration, "asset reference contains invalid control characters")
		}
	}
	if strings.HasPrefix(ref, "/") {
		return New(ErrCodeInvalidDecoration, "asset reference must be relative: %q", ref)
	}
	for _, pattern := range []string{"..", "\\", "//"} {
		if strings.Contains(ref, pattern) {
			return New(ErrCodeInvalidDecoration, "asset reference contains invalid characters: %q", pattern)
		}
	}
	return nil
}

// ValidatePath validates an output or input file path supplied by the user.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
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
	return nil
}
