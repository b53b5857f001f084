package errors

import (
	"strings"
	"unicode"
)

// MaxIDLength bounds task, edge and session identifiers.
const MaxIDLength = 256

// ValidateTaskID checks a task identifier coming from an external store or
// request body. IDs must be non-empty, at most MaxIDLength bytes, and free of
// control characters and surrounding whitespace.
func ValidateTaskID(id string) error {
	return validateID(ErrCodeInvalidTaskID, "task ID", id)
}

// ValidateEdgeID applies the same rules to edge identifiers.
func ValidateEdgeID(id string) error {
	return validateID(ErrCodeInvalidInput, "edge ID", id)
}

// ValidateSessionID applies the same rules to session identifiers, and
// additionally rejects path separators so IDs can name files.
func ValidateSessionID(id string) error {
	if err := validateID(ErrCodeInvalidInput, "session ID", id); err != nil {
		return err
	}
	if strings.ContainsAny(id, `/\`) || strings.Contains(id, "..") {
		return New(ErrCodeInvalidInput, "session ID contains invalid characters: %q", id)
	}
	return nil
}

func validateID(code Code, what, id string) error {
	if id == "" {
		return New(code, "%s cannot be empty", what)
	}
	if len(id) > MaxIDLength {
		return New(code, "%s too long (max %d characters)", what, MaxIDLength)
	}
	if strings.TrimSpace(id) != id {
		return New(code, "%s has leading or trailing whitespace: %q", what, id)
	}
	for _, r := range id {
		if unicode.IsControl(r) {
			return New(code, "%s contains invalid control characters", what)
		}
	}
	return nil
}
