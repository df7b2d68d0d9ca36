// Package app wires the junction manager to the host adapters and provides
// the operations shared by the CLI and the MCP server.
package app

import (
	"context"
	"fmt"
	"io"

	"github.com/felixgeelhaar/junction/internal/adapters/devicecontrol"
	"github.com/felixgeelhaar/junction/internal/adapters/filesystem"
	"github.com/felixgeelhaar/junction/internal/adapters/logging"
	"github.com/felixgeelhaar/junction/internal/config"
	"github.com/felixgeelhaar/junction/internal/domain/junction"
	"github.com/felixgeelhaar/junction/internal/domain/manifest"
	"github.com/felixgeelhaar/junction/internal/domain/platform"
	"github.com/felixgeelhaar/junction/internal/ports"
	"github.com/felixgeelhaar/junction/internal/validation"
)

// Junction is the application facade.
type Junction struct {
	fs       ports.FileSystem
	dc       ports.DeviceControl
	platform *platform.Platform
	log      ports.Logger
	manager  *junction.Manager
	out      io.Writer
}

// Option configures a Junction.
type Option func(*Junction)

// WithFileSystem replaces the real filesystem.
func WithFileSystem(fs ports.FileSystem) Option {
	return func(j *Junction) {
		j.fs = fs
	}
}

// WithDeviceControl replaces the platform control channel.
func WithDeviceControl(dc ports.DeviceControl) Option {
	return func(j *Junction) {
		j.dc = dc
	}
}

// WithPlatform replaces the detected platform.
func WithPlatform(p *platform.Platform) Option {
	return func(j *Junction) {
		j.platform = p
	}
}

// WithLogger sets the logger.
func WithLogger(l ports.Logger) Option {
	return func(j *Junction) {
		j.log = l
	}
}

// New creates the facade. Without options it uses the real filesystem and
// the control channel for the detected platform.
func New(out io.Writer, opts ...Option) *Junction {
	j := &Junction{out: out}
	for _, opt := range opts {
		opt(j)
	}

	if j.platform == nil {
		j.platform = platform.Detect()
	}
	if j.fs == nil {
		j.fs = filesystem.NewRealFileSystem()
	}
	if j.dc == nil {
		j.dc = devicecontrol.New(j.platform)
	}
	if j.log == nil {
		j.log = logging.NewNopLogger()
	}

	j.manager = junction.NewManager(j.fs, j.dc, junction.WithLogger(j.log))
	return j
}

// Platform returns the host the facade runs on.
func (j *Junction) Platform() *platform.Platform {
	return j.platform
}

// Manager returns the underlying junction manager.
func (j *Junction) Manager() *junction.Manager {
	return j.manager
}

// Create validates its arguments and makes link a junction to target.
func (j *Junction) Create(ctx context.Context, link, target string, overwrite bool) error {
	if err := validation.ValidateLink(link, target); err != nil {
		return err
	}
	j.log.Debug(ctx, "create requested", ports.F("link", link), ports.F("target", target), ports.F("overwrite", overwrite))
	return j.manager.Create(link, target, overwrite)
}

// Delete removes the junction or empty directory at link.
func (j *Junction) Delete(ctx context.Context, link string) error {
	if err := validation.ValidatePath(link); err != nil {
		return fmt.Errorf("link: %w", err)
	}
	j.log.Debug(ctx, "delete requested", ports.F("link", link))
	return j.manager.Delete(link)
}

// Exists reports whether link is a junction.
func (j *Junction) Exists(_ context.Context, link string) (bool, error) {
	if err := validation.ValidatePath(link); err != nil {
		return false, fmt.Errorf("link: %w", err)
	}
	return j.manager.Exists(link)
}

// Target returns the junction target of link. ok is false when link is not
// a junction.
func (j *Junction) Target(_ context.Context, link string) (string, bool, error) {
	if err := validation.ValidatePath(link); err != nil {
		return "", false, fmt.Errorf("link: %w", err)
	}
	return j.manager.GetTarget(link)
}

// Status inspects every path. It stops at the first hard failure and
// returns the links inspected so far.
func (j *Junction) Status(_ context.Context, paths ...string) ([]junction.Link, error) {
	links := make([]junction.Link, 0, len(paths))
	for _, p := range paths {
		if err := validation.ValidatePath(p); err != nil {
			return links, fmt.Errorf("%q: %w", p, err)
		}
		l, err := j.manager.Inspect(p)
		if err != nil {
			return links, err
		}
		links = append(links, l)
	}
	return links, nil
}

// LoadConfig loads path, or the first default config file in dir when path
// is empty. The returned string is the file used, empty for defaults.
func (j *Junction) LoadConfig(path, dir string) (*config.Config, string, error) {
	loader := config.NewLoader(j.fs)
	if path == "" {
		return loader.LoadDefault(dir)
	}
	cfg, err := loader.Load(path)
	return cfg, path, err
}

// Plan loads the manifest at path and inspects every entry.
func (j *Junction) Plan(ctx context.Context, path string, overwrite bool) (*manifest.Plan, error) {
	m, err := manifest.Load(j.fs, path)
	if err != nil {
		return nil, err
	}
	j.log.Debug(ctx, "manifest loaded", ports.F("path", m.Source()), ports.F("links", len(m.Links)))
	return manifest.NewPlan(m, j.manager, overwrite), nil
}

// Apply executes plan.
func (j *Junction) Apply(ctx context.Context, plan *manifest.Plan, dryRun bool) *manifest.Report {
	return manifest.NewApplier(j.manager).Apply(ports.ContextWithLogger(ctx, j.log), plan, dryRun)
}

// PrintPlan writes a human-readable plan.
func (j *Junction) PrintPlan(plan *manifest.Plan) {
	j.printf("\nJunction Plan (%s)\n", plan.Source)
	j.printf("=============\n\n")

	if !plan.Changes() && plan.Count(manifest.ActionConflict) == 0 {
		j.printf("No changes needed. Every link is in place.\n")
		return
	}

	for _, s := range plan.Steps {
		j.printf("  %s %s -> %s\n", actionMark(s.Action), s.Link, s.Target)
		if s.Action != manifest.ActionSatisfied {
			j.printf("      %s\n", s.Reason)
		}
	}
}

// PrintReport writes a human-readable run report.
func (j *Junction) PrintReport(r *manifest.Report) {
	title := "Apply Results"
	if r.DryRun {
		title = "Dry Run"
	}
	j.printf("\n%s\n", title)
	j.printf("=============\n\n")

	for _, res := range r.Results {
		switch res.Status {
		case manifest.StatusFailed, manifest.StatusSkipped:
			j.printf("  ✗ %s: %v\n", res.Step.Link, res.Err)
		case manifest.StatusConflict:
			j.printf("  ! %s: %s\n", res.Step.Link, res.Step.Reason)
		default:
			j.printf("  ✓ %s (%s)\n", res.Step.Link, res.Status)
		}
	}

	j.printf("\nSummary: %s\n", r.Summary())
}

func actionMark(a manifest.Action) string {
	switch a {
	case manifest.ActionCreate:
		return "+"
	case manifest.ActionReplace:
		return "~"
	case manifest.ActionConflict:
		return "!"
	default:
		return "✓"
	}
}

func (j *Junction) printf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(j.out, format, args...)
}
