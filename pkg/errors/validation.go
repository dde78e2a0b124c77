package errors

import (
	"path/filepath"
	"regexp"
	"strings"
	"unicode"
)

// Cell types accepted by ValidateCellType.
const (
	CellTypeSingle = "single"
	CellTypeSpread = "spread"
)

// Resize modes accepted by ValidateResizeMode.
const (
	ResizeFit      = "fit"
	ResizeCover    = "cover"
	ResizeNoResize = "noResize"
)

// unsafeFilenameChars matches everything except word characters, whitespace,
// hyphens and dots.
var unsafeFilenameChars = regexp.MustCompile(`[^\w\s\-.]`)

// SanitizeFilename reduces name to a safe file stem: the base name with every
// character outside [A-Za-z0-9_ .-] removed and surrounding space trimmed.
func SanitizeFilename(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	base := filepath.Base(name)
	if base == "." || base == "/" {
		return ""
	}
	return strings.TrimSpace(unsafeFilenameChars.ReplaceAllString(base, ""))
}

// ValidateBoardName validates a board name after sanitizing it and returns
// the sanitized form.
//
// The validation rules are intentionally conservative:
//   - No empty names (after sanitizing)
//   - No control characters
//   - No names made only of dots
//   - Maximum length of 128 characters
func ValidateBoardName(name string) (string, error) {
	for _, r := range name {
		if unicode.IsControl(r) {
			return "", New(ErrCodeConfiguration, "board name contains invalid control characters")
		}
	}

	clean := SanitizeFilename(name)
	if clean == "" {
		return "", New(ErrCodeConfiguration, "invalid board name: %q", name)
	}
	if strings.Trim(clean, ".") == "" {
		return "", New(ErrCodeConfiguration, "invalid board name: %q", name)
	}
	if len(clean) > 128 {
		return "", New(ErrCodeConfiguration, "board name too long (max 128 characters)")
	}
	return clean, nil
}

// ValidateDestination validates a destination folder path.
//
// Validation rules:
//   - Path cannot be empty or blank
//   - No null bytes or control characters
func ValidateDestination(path string) error {
	if strings.TrimSpace(path) == "" {
		return New(ErrCodeConfiguration, "destination folder is required")
	}
	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeConfiguration, "destination folder contains invalid characters")
		}
	}
	return nil
}

// ValidateCellType checks that a cell type is "single" or "spread"
// (case-insensitive) and returns its canonical form.
func ValidateCellType(cellType string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(cellType)) {
	case CellTypeSingle:
		return CellTypeSingle, nil
	case CellTypeSpread:
		return CellTypeSpread, nil
	}
	return "", New(ErrCodeInvalidCellType, "invalid cell type: %q (must be one of: single, spread)", cellType)
}

// ValidateResizeMode checks that a resize mode is fit, cover or noResize
// (case-insensitive) and returns its canonical form.
func ValidateResizeMode(mode string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "fit":
		return ResizeFit, nil
	case "cover":
		return ResizeCover, nil
	case "noresize", "no-resize", "none":
		return ResizeNoResize, nil
	}
	return "", New(ErrCodeInvalidResizeMode, "invalid resize mode: %q (must be one of: fit, cover, noResize)", mode)
}
