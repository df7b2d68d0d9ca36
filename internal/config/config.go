// Package config loads CLI settings from YAML, TOML or INI files.
package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"gopkg.in/ini.v1"

	"github.com/felixgeelhaar/junction/internal/ports"
)

// iniSection holds the settings in INI files.
const iniSection = "junction"

// DefaultFiles are looked up, in order, when no --config is given.
var DefaultFiles = []string{"junction.yaml", "junction.yml", "junction.toml", "junction.ini"}

// Config holds the settings shared by all commands.
type Config struct {
	LogLevel  string `yaml:"log_level" toml:"log_level" ini:"log_level" json:"log_level"`
	LogFormat string `yaml:"log_format" toml:"log_format" ini:"log_format" json:"log_format"`
	// Overwrite is the default for create --force and manifest entries
	// that do not set overwrite themselves.
	Overwrite bool `yaml:"overwrite" toml:"overwrite" ini:"overwrite" json:"overwrite"`
	// Manifest is used by apply when -f is not given. Relative paths are
	// resolved against the config file's directory.
	Manifest string `yaml:"manifest" toml:"manifest" ini:"manifest" json:"manifest,omitempty"`
}

var iniKeys = map[string]bool{"log_level": true, "log_format": true, "overwrite": true, "manifest": true}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		LogLevel:  "info",
		LogFormat: "text",
	}
}

// Level returns the parsed log level, falling back to info.
func (c *Config) Level() ports.Level {
	lvl, err := ports.ParseLevel(c.LogLevel)
	if err != nil {
		return ports.LevelInfo
	}
	return lvl
}

// Validate reports every invalid field.
func (c *Config) Validate() error {
	var errs ErrorList

	if _, err := ports.ParseLevel(c.LogLevel); err != nil {
		errs.AddValidation("log_level", fmt.Sprintf("unknown level %q", c.LogLevel),
			"Use one of: debug, info, warn, error")
	}
	switch c.LogFormat {
	case "", "text", "json":
	default:
		errs.AddValidation("log_format", fmt.Sprintf("unknown format %q", c.LogFormat),
			"Use text or json")
	}
	if strings.ContainsAny(c.Manifest, "\x00\n") {
		errs.AddValidation("manifest", "path contains a control character", "")
	}

	return errs.AsError()
}

// Loader reads config files through a FileSystem.
type Loader struct {
	fs ports.FileSystem
}

// NewLoader creates a Loader.
func NewLoader(fs ports.FileSystem) *Loader {
	return &Loader{fs: fs}
}

// Load reads and validates the config file at path. Keys missing from the
// file keep their defaults.
func (l *Loader) Load(path string) (*Config, error) {
	if !l.fs.Exists(path) {
		return nil, NewConfigNotFoundError(path)
	}
	data, err := l.fs.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	cfg := Default()
	format, ok := FormatOf(path)
	switch {
	case !ok:
		return nil, NewUnsupportedFormatError(path, []string{".yaml", ".yml", ".toml", ".ini"})
	case format == FormatINI:
		if err := loadINI(path, data, cfg); err != nil {
			return nil, err
		}
	default:
		if err := Unmarshal(path, data, cfg); err != nil {
			return nil, err
		}
	}

	if cfg.Manifest != "" {
		cfg.Manifest = ports.ExpandPath(cfg.Manifest)
		if !filepath.IsAbs(cfg.Manifest) {
			cfg.Manifest = filepath.Join(filepath.Dir(path), cfg.Manifest)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadDefault loads the first of DefaultFiles found in dir. It returns the
// built-in defaults and an empty path when none exists.
func (l *Loader) LoadDefault(dir string) (*Config, string, error) {
	for _, name := range DefaultFiles {
		path := filepath.Join(dir, name)
		if l.fs.Exists(path) {
			cfg, err := l.Load(path)
			return cfg, path, err
		}
	}
	return Default(), "", nil
}

func loadINI(path string, data []byte, cfg *Config) error {
	f, err := ini.Load(data)
	if err != nil {
		return NewParseError(path, FormatINI, err)
	}
	if !f.HasSection(iniSection) {
		return nil
	}

	sec := f.Section(iniSection)
	var errs ErrorList
	for _, key := range sec.KeyStrings() {
		if !iniKeys[key] {
			errs.Add(&UserError{
				Code:       ErrCodeConfigParse,
				Message:    fmt.Sprintf("unknown key %q in [%s]", key, iniSection),
				Context:    path,
				Suggestion: "Remove or fix the misspelled key.",
			})
		}
	}
	if err := errs.AsError(); err != nil {
		return err
	}

	if err := sec.MapTo(cfg); err != nil {
		return NewParseError(path, FormatINI, err)
	}
	return nil
}
