package mcp

import (
	"errors"
	"fmt"

	"github.com/felixgeelhaar/junction/internal/validation"
)

// maxStatusPaths bounds a single junction_status request.
const maxStatusPaths = 256

// ValidateLinkPath validates a link argument.
func ValidateLinkPath(link string) error {
	if err := validation.ValidatePath(link); err != nil {
		return fmt.Errorf("invalid link: %w", err)
	}
	return nil
}

// ValidateCreateInput validates CreateInput fields.
func ValidateCreateInput(in *CreateInput) error {
	if err := validation.ValidateLink(in.Link, in.Target); err != nil {
		return fmt.Errorf("invalid input: %w", err)
	}
	return nil
}

// ValidateStatusInput validates StatusInput fields.
func ValidateStatusInput(in *StatusInput) error {
	if len(in.Paths) == 0 {
		return errors.New("invalid paths: at least one path is required")
	}
	if len(in.Paths) > maxStatusPaths {
		return fmt.Errorf("invalid paths: at most %d paths per request", maxStatusPaths)
	}
	for i, p := range in.Paths {
		if err := validation.ValidatePath(p); err != nil {
			return fmt.Errorf("invalid paths[%d]: %w", i, err)
		}
	}
	return nil
}
