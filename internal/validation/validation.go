// Package validation checks user-supplied paths before they reach the
// filesystem or the reparse control channel.
package validation

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/felixgeelhaar/junction/internal/ports"
)

// Common validation errors.
var (
	ErrEmptyInput       = errors.New("input cannot be empty")
	ErrInvalidPath      = errors.New("invalid path")
	ErrPathTraversal    = errors.New("path traversal detected")
	ErrNewlineInjection = errors.New("newline injection detected")
)

// controlCharRegex matches ASCII control characters other than newlines,
// which are reported separately.
var controlCharRegex = regexp.MustCompile(`[\x00-\x09\x0b\x0c\x0e-\x1f\x7f]`)

// ValidatePath rejects empty paths and paths carrying NUL, newlines or other
// control characters. None of them can name a directory on NTFS.
func ValidatePath(path string) error {
	if strings.TrimSpace(path) == "" {
		return ErrEmptyInput
	}

	if strings.ContainsAny(path, "\n\r") {
		return fmt.Errorf("%w: %q", ErrNewlineInjection, path)
	}

	if strings.Contains(path, "\x00") {
		return fmt.Errorf("%w: path contains null byte", ErrInvalidPath)
	}

	if controlCharRegex.MatchString(path) {
		return fmt.Errorf("%w: path contains a control character", ErrInvalidPath)
	}

	return nil
}

// ValidateLink validates the link and target arguments of a create request.
func ValidateLink(link, target string) error {
	if err := ValidatePath(link); err != nil {
		return fmt.Errorf("link: %w", err)
	}
	if err := ValidatePath(target); err != nil {
		return fmt.Errorf("target: %w", err)
	}
	if filepath.Clean(link) == filepath.Clean(target) {
		return fmt.Errorf("%w: link and target are the same path", ErrInvalidPath)
	}
	return nil
}

// ValidatePathWithBase validates path and checks that, once joined onto
// base when relative, it stays inside base.
func ValidatePathWithBase(path, base string) error {
	if err := ValidatePath(path); err != nil {
		return err
	}

	full := path
	if !filepath.IsAbs(path) {
		full = filepath.Join(base, path)
	}
	if !ports.IsPathWithinRoot(base, full) {
		return fmt.Errorf("%w: path %q escapes base directory %q", ErrPathTraversal, path, base)
	}

	return nil
}
