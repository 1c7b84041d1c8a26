package errors

import (
	"strings"
	"unicode"
)

// MaxCanvasSize bounds the width and height of a rendered canvas.
const MaxCanvasSize = 16384

// ValidateCanvas checks that a canvas is drawable.
func ValidateCanvas(width, height float64) error {
	if width <= 0 || height <= 0 {
		return New(ErrCodeInvalidInput, "canvas must have positive dimensions, got %gx%g", width, height)
	}
	if width > MaxCanvasSize || height > MaxCanvasSize {
		return New(ErrCodeInvalidInput, "canvas too large (max %d pixels per side)", MaxCanvasSize)
	}
	return nil
}

// ValidatePath validates a user-supplied file path for safety.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 4096 characters
//   - No null bytes or control characters
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 4096
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

// ValidateName validates a short identifier such as a database or collection
// name. It rejects path separators and control characters.
func ValidateName(kind, name string) error {
	if name == "" {
		return New(ErrCodeInvalidInput, "%s cannot be empty", kind)
	}
	if len(name) > 120 {
		return New(ErrCodeInvalidInput, "%s too long (max 120 characters)", kind)
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "%s contains invalid control characters", kind)
		}
	}
	if strings.ContainsAny(name, "/\\$\x00") {
		return New(ErrCodeInvalidInput, "%s contains invalid characters: %q", kind, name)
	}
	return nil
}
