package errors

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// MaxNotesLength is the maximum number of characters accepted in snapshot notes.
const MaxNotesLength = 500

// maxIDLength bounds snapshot and diagram identifiers.
const maxIDLength = 128

// ValidateID validates a snapshot or diagram identifier for safety.
// Identifiers end up in file names and store keys, so the rules are conservative:
//   - No empty IDs
//   - No control characters
//   - No path separators or traversal sequences
//   - Maximum length of 128 characters
func ValidateID(id string) error {
	if strings.TrimSpace(id) == "" {
		return New(ErrCodeInvalidID, "id cannot be empty")
	}

	if len(id) > maxIDLength {
		return New(ErrCodeInvalidID, "id too long (max %d characters)", maxIDLength)
	}

	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidID, "id contains invalid control characters")
		}
	}

	for _, pattern := range []string{"..", "/", "\\", "\x00"} {
		if strings.Contains(id, pattern) {
			return New(ErrCodeInvalidID, "id contains invalid characters: %q", pattern)
		}
	}

	return nil
}

// ValidateNotes validates free-text snapshot notes.
// Empty notes are allowed. Newlines and tabs are allowed; other control
// characters are not.
func ValidateNotes(notes string) error {
	if !utf8.ValidString(notes) {
		return New(ErrCodeInvalidNotes, "notes must be valid UTF-8")
	}

	if n := utf8.RuneCountInString(notes); n > MaxNotesLength {
		return New(ErrCodeInvalidNotes, "notes too long (%d characters, max %d)", n, MaxNotesLength)
	}

	for _, r := range notes {
		if r == '\n' || r == '\t' || r == '\r' {
			continue
		}
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidNotes, "notes contain invalid control characters")
		}
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
