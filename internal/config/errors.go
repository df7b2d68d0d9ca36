package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// Error codes for categorization.
const (
	ErrCodeConfigNotFound    = "CONFIG_NOT_FOUND"
	ErrCodeConfigParse       = "CONFIG_PARSE"
	ErrCodeValidationFailed  = "VALIDATION_FAILED"
	ErrCodeUnsupportedFormat = "UNSUPPORTED_FORMAT"
)

// UserError is an error with a code, a location and an actionable suggestion.
type UserError struct {
	Code       string // Error code for categorization (e.g., "CONFIG_NOT_FOUND")
	Message    string // User-friendly error message
	Context    string // File path, line number, or field name
	Suggestion string // Actionable suggestion to fix the error
	Underlying error  // Wrapped error for error chain
}

// Error returns the formatted error message.
func (e *UserError) Error() string {
	if e.Context == "" {
		return e.Message
	}
	return fmt.Sprintf("%s (at %s)", e.Message, e.Context)
}

// Unwrap returns the underlying error for error chain support.
func (e *UserError) Unwrap() error {
	return e.Underlying
}

// Is supports errors.Is() for comparing error codes.
func (e *UserError) Is(target error) bool {
	if t, ok := target.(*UserError); ok {
		return e.Code == t.Code
	}
	return false
}

// Detail returns the code, message, location and suggestion on separate lines.
func (e *UserError) Detail() string {
	var b strings.Builder

	fmt.Fprintf(&b, "[%s] %s", e.Code, e.Message)
	if e.Context != "" {
		fmt.Fprintf(&b, "\n  Location: %s", e.Context)
	}
	if e.Suggestion != "" {
		fmt.Fprintf(&b, "\n  Suggestion: %s", e.Suggestion)
	}

	return b.String()
}

// ErrorList accumulates validation errors so all of them are reported at once.
type ErrorList struct {
	errors []*UserError
}

// Add adds an error to the list.
func (l *ErrorList) Add(err *UserError) {
	if err != nil {
		l.errors = append(l.errors, err)
	}
}

// AddValidation adds a validation error for field.
func (l *ErrorList) AddValidation(field, message, suggestion string) {
	l.Add(&UserError{
		Code:       ErrCodeValidationFailed,
		Message:    fmt.Sprintf("%s: %s", field, message),
		Context:    field,
		Suggestion: suggestion,
	})
}

// Len returns the number of errors.
func (l *ErrorList) Len() int {
	return len(l.errors)
}

// Errors returns a copy of the collected errors.
func (l *ErrorList) Errors() []*UserError {
	return append([]*UserError(nil), l.errors...)
}

// Error implements the error interface for ErrorList.
func (l *ErrorList) Error() string {
	if len(l.errors) == 1 {
		return l.errors[0].Error()
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d errors occurred:\n", len(l.errors))
	for i, err := range l.errors {
		fmt.Fprintf(&b, "  %d. %s\n", i+1, err.Error())
	}
	return b.String()
}

// Unwrap exposes the individual errors to errors.Is and errors.As.
func (l *ErrorList) Unwrap() []error {
	out := make([]error, len(l.errors))
	for i, err := range l.errors {
		out[i] = err
	}
	return out
}

// AsError returns the list as an error, or nil if empty.
func (l *ErrorList) AsError() error {
	if len(l.errors) == 0 {
		return nil
	}
	return l
}

// NewConfigNotFoundError creates an error for a missing file.
func NewConfigNotFoundError(path string) *UserError {
	return &UserError{
		Code:       ErrCodeConfigNotFound,
		Message:    fmt.Sprintf("file not found: %s", path),
		Context:    path,
		Suggestion: "Check the path passed with --config or -f.",
	}
}

// NewUnsupportedFormatError creates an error for an unknown file extension.
func NewUnsupportedFormatError(path string, supported []string) *UserError {
	return &UserError{
		Code:       ErrCodeUnsupportedFormat,
		Message:    "unsupported file format",
		Context:    path,
		Suggestion: "Use one of: " + strings.Join(supported, ", "),
	}
}

// NewParseError translates decoder errors into a UserError that names the
// line when the decoder reports one.
func NewParseError(path string, format Format, err error) *UserError {
	context := path
	var derr *toml.DecodeError
	if errors.As(err, &derr) {
		row, col := derr.Position()
		context = fmt.Sprintf("%s (line %d, column %d)", path, row, col)
	} else if line := yamlLine(err.Error()); line != "" {
		context = fmt.Sprintf("%s (line %s)", path, line)
	}

	suggestion := map[Format]string{
		FormatYAML: "Check your YAML syntax. Common issues: incorrect indentation, missing colons, or unquoted special characters.",
		FormatTOML: "Check your TOML syntax. Strings need quotes and tables are declared with [name].",
		FormatINI:  "Put settings under a [junction] section as key = value lines.",
	}[format]

	var strict *toml.StrictMissingError
	if errors.As(err, &strict) || strings.Contains(err.Error(), "not found in type") {
		suggestion = "Remove or fix the misspelled key."
	}

	return &UserError{
		Code:       ErrCodeConfigParse,
		Message:    fmt.Sprintf("failed to parse %s file", format),
		Context:    context,
		Suggestion: suggestion,
		Underlying: err,
	}
}

// yamlLine pulls "3" out of "yaml: line 3: ...".
func yamlLine(msg string) string {
	_, after, ok := strings.Cut(msg, "line ")
	if !ok {
		return ""
	}
	line, _, _ := strings.Cut(after, ":")
	return strings.TrimSpace(line)
}

// GetUserError extracts a UserError from an error chain, if present.
func GetUserError(err error) *UserError {
	var ue *UserError
	if errors.As(err, &ue) {
		return ue
	}
	return nil
}
