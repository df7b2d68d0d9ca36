package config

import (
	"bytes"
	"errors"
	"io"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Format is a file format selected by extension.
type Format string

// Supported formats.
const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
	FormatINI  Format = "ini"
)

// FormatOf returns the format for path's extension.
func FormatOf(path string) (Format, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, true
	case ".toml":
		return FormatTOML, true
	case ".ini":
		return FormatINI, true
	default:
		return "", false
	}
}

// Unmarshal decodes YAML or TOML data into v, choosing the decoder from
// path's extension. Unknown keys are rejected. An empty document leaves v
// untouched.
func Unmarshal(path string, data []byte, v interface{}) error {
	format, ok := FormatOf(path)
	if !ok || format == FormatINI {
		return NewUnsupportedFormatError(path, []string{".yaml", ".yml", ".toml"})
	}

	var err error
	switch format {
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err = dec.Decode(v); errors.Is(err, io.EOF) {
			err = nil
		}
	case FormatTOML:
		err = toml.NewDecoder(bytes.NewReader(data)).DisallowUnknownFields().Decode(v)
	}
	if err != nil {
		return NewParseError(path, format, err)
	}
	return nil
}
