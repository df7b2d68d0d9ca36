// Package manifest applies a declarative list of junctions.
//
// A manifest names each link and its target. Relative paths are resolved
// against the manifest's root, which defaults to the directory holding the
// manifest file. Links must stay inside root; targets may point anywhere.
package manifest

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/felixgeelhaar/junction/internal/config"
	"github.com/felixgeelhaar/junction/internal/ports"
	"github.com/felixgeelhaar/junction/internal/validation"
)

// Entry is one link in a manifest.
type Entry struct {
	Link   string `yaml:"link" toml:"link" json:"link"`
	Target string `yaml:"target" toml:"target" json:"target"`
	// Overwrite overrides the run's default when set.
	Overwrite *bool `yaml:"overwrite,omitempty" toml:"overwrite,omitempty" json:"overwrite,omitempty"`
}

// Manifest is a parsed link manifest.
type Manifest struct {
	Root  string  `yaml:"root,omitempty" toml:"root,omitempty" json:"root,omitempty"`
	Links []Entry `yaml:"links" toml:"links" json:"links"`

	source string
}

// Source returns the file the manifest was loaded from.
func (m *Manifest) Source() string {
	return m.source
}

// Load reads, parses and validates the manifest at path. The format is
// chosen by extension (.yaml, .yml or .toml).
func Load(fs ports.FileSystem, path string) (*Manifest, error) {
	abs, err := fs.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", path, err)
	}
	if !fs.Exists(abs) {
		return nil, config.NewConfigNotFoundError(path)
	}
	data, err := fs.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return Parse(abs, data)
}

// Parse decodes data and validates the result. path must be absolute; it
// picks the decoder and anchors a relative root.
func Parse(path string, data []byte) (*Manifest, error) {
	m := &Manifest{}
	if err := config.Unmarshal(path, data, m); err != nil {
		return nil, err
	}
	m.source = path

	base := filepath.Dir(path)
	switch {
	case m.Root == "":
		m.Root = base
	default:
		m.Root = ports.ExpandPath(m.Root)
		if !filepath.IsAbs(m.Root) {
			m.Root = filepath.Join(base, m.Root)
		}
	}
	m.Root = filepath.Clean(m.Root)

	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// Validate reports every invalid entry.
func (m *Manifest) Validate() error {
	var errs config.ErrorList

	if len(m.Links) == 0 {
		errs.AddValidation("links", "manifest has no links", "Add at least one {link, target} entry.")
	}

	seen := make(map[string]int, len(m.Links))
	for i, e := range m.Links {
		field := fmt.Sprintf("links[%d]", i)

		if err := validation.ValidatePathWithBase(ports.ExpandPath(e.Link), m.Root); err != nil {
			errs.AddValidation(field+".link", err.Error(), "Links must live under root; targets may point anywhere.")
			continue
		}
		if err := validation.ValidatePath(e.Target); err != nil {
			errs.AddValidation(field+".target", err.Error(), "")
			continue
		}

		link, target := m.Resolve(e)
		if link == target {
			errs.AddValidation(field, "link and target are the same path", "")
			continue
		}
		key := strings.ToLower(link)
		if prev, dup := seen[key]; dup {
			errs.AddValidation(field+".link", fmt.Sprintf("duplicate of links[%d]", prev), "List each link once.")
			continue
		}
		seen[key] = i
	}

	return errs.AsError()
}

// Resolve returns the entry's link and target as absolute, cleaned paths.
func (m *Manifest) Resolve(e Entry) (link, target string) {
	return m.resolve(e.Link), m.resolve(e.Target)
}

func (m *Manifest) resolve(p string) string {
	p = ports.ExpandPath(p)
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(m.Root, p)
}
