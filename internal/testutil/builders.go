package testutil

import (
	"fmt"
	"strings"
)

// TestLink is one manifest entry for testing.
type TestLink struct {
	Link      string
	Target    string
	Overwrite *bool
}

// TestManifest is a link manifest for testing.
type TestManifest struct {
	Root  string
	Links []TestLink
}

// ManifestBuilder builds test manifests.
type ManifestBuilder struct {
	manifest TestManifest
}

// NewManifestBuilder creates a new manifest builder.
func NewManifestBuilder() *ManifestBuilder {
	return &ManifestBuilder{}
}

// WithRoot sets the manifest root.
func (b *ManifestBuilder) WithRoot(root string) *ManifestBuilder {
	b.manifest.Root = root
	return b
}

// WithLink adds an entry that uses the run's overwrite default.
func (b *ManifestBuilder) WithLink(link, target string) *ManifestBuilder {
	b.manifest.Links = append(b.manifest.Links, TestLink{Link: link, Target: target})
	return b
}

// WithOverwriteLink adds an entry that sets overwrite itself.
func (b *ManifestBuilder) WithOverwriteLink(link, target string, overwrite bool) *ManifestBuilder {
	b.manifest.Links = append(b.manifest.Links, TestLink{Link: link, Target: target, Overwrite: &overwrite})
	return b
}

// Build returns the constructed manifest.
func (b *ManifestBuilder) Build() TestManifest {
	return b.manifest
}

// ToYAML renders the manifest as YAML. Paths are single-quoted so
// backslashes survive.
func (m TestManifest) ToYAML() string {
	var sb strings.Builder

	if m.Root != "" {
		fmt.Fprintf(&sb, "root: %s\n", yamlQuote(m.Root))
	}
	sb.WriteString("links:\n")
	for _, l := range m.Links {
		fmt.Fprintf(&sb, "  - link: %s\n", yamlQuote(l.Link))
		fmt.Fprintf(&sb, "    target: %s\n", yamlQuote(l.Target))
		if l.Overwrite != nil {
			fmt.Fprintf(&sb, "    overwrite: %t\n", *l.Overwrite)
		}
	}

	return sb.String()
}

// ToTOML renders the manifest as TOML using literal strings, so paths must
// not contain single quotes.
func (m TestManifest) ToTOML() string {
	var sb strings.Builder

	if m.Root != "" {
		fmt.Fprintf(&sb, "root = '%s'\n", m.Root)
	}
	for _, l := range m.Links {
		sb.WriteString("\n[[links]]\n")
		fmt.Fprintf(&sb, "link = '%s'\n", l.Link)
		fmt.Fprintf(&sb, "target = '%s'\n", l.Target)
		if l.Overwrite != nil {
			fmt.Fprintf(&sb, "overwrite = %t\n", *l.Overwrite)
		}
	}

	return sb.String()
}

func yamlQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
