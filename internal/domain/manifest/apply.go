package manifest

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/junction/internal/ports"
)

// Linker inspects and creates junctions.
type Linker interface {
	Inspector
	Create(link, target string, overwrite bool) error
}

// Status is the outcome of one step.
type Status string

// Step outcomes.
const (
	StatusCreated   Status = "created"
	StatusReplaced  Status = "replaced"
	StatusSatisfied Status = "satisfied"
	StatusConflict  Status = "conflict"
	StatusFailed    Status = "failed"
	StatusPlanned   Status = "planned"
	StatusSkipped   Status = "skipped"
)

// Result is the outcome of one step.
type Result struct {
	Step   Step
	Status Status
	Err    error
}

// Report summarizes one run.
type Report struct {
	RunID    string
	Source   string
	DryRun   bool
	Started  time.Time
	Finished time.Time
	Results  []Result
}

// Count returns the number of results with status s.
func (r *Report) Count(s Status) int {
	n := 0
	for _, res := range r.Results {
		if res.Status == s {
			n++
		}
	}
	return n
}

// OK reports whether every step either succeeded, was already satisfied,
// or was only planned.
func (r *Report) OK() bool {
	return r.Count(StatusConflict)+r.Count(StatusFailed)+r.Count(StatusSkipped) == 0
}

// Summary returns a one-line count of outcomes, omitting zeros.
func (r *Report) Summary() string {
	order := []Status{StatusPlanned, StatusCreated, StatusReplaced, StatusSatisfied, StatusConflict, StatusFailed, StatusSkipped}
	parts := make([]string, 0, len(order))
	for _, s := range order {
		if n := r.Count(s); n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", n, s))
		}
	}
	if len(parts) == 0 {
		return "nothing to do"
	}
	return strings.Join(parts, ", ")
}

// Applier executes plans.
type Applier struct {
	linker Linker
	log    ports.Logger
	now    func() time.Time
}

// ApplierOption configures an Applier.
type ApplierOption func(*Applier)

// WithLogger sets the logger. Without it Apply uses the logger carried by
// its context, if any.
func WithLogger(l ports.Logger) ApplierOption {
	return func(a *Applier) {
		a.log = l
	}
}

// WithClock replaces time.Now for report timestamps.
func WithClock(now func() time.Time) ApplierOption {
	return func(a *Applier) {
		a.now = now
	}
}

// NewApplier creates an Applier that creates junctions through linker.
func NewApplier(linker Linker, opts ...ApplierOption) *Applier {
	a := &Applier{linker: linker, now: time.Now}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Apply runs the steps in order. A failing step is recorded and the run
// continues. Conflicts are reported and never forced. Once ctx is done the
// remaining steps are marked skipped. With dryRun nothing is changed and
// create/replace steps are reported as planned.
func (a *Applier) Apply(ctx context.Context, p *Plan, dryRun bool) *Report {
	r := &Report{
		RunID:   uuid.New().String(),
		Source:  p.Source,
		DryRun:  dryRun,
		Started: a.now(),
		Results: make([]Result, 0, len(p.Steps)),
	}

	log := a.log
	if log == nil {
		log = ports.LoggerFromContext(ctx)
	}
	if log != nil {
		log = log.With(ports.F("run_id", r.RunID))
	}

	for _, s := range p.Steps {
		res := a.applyStep(ctx, s, dryRun)
		r.Results = append(r.Results, res)
		if log != nil {
			logResult(ctx, log, res)
		}
	}

	r.Finished = a.now()
	if log != nil {
		log.Info(ctx, "manifest applied", ports.F("summary", r.Summary()), ports.F("dry_run", dryRun))
	}
	return r
}

func (a *Applier) applyStep(ctx context.Context, s Step, dryRun bool) Result {
	if err := ctx.Err(); err != nil {
		return Result{Step: s, Status: StatusSkipped, Err: err}
	}

	switch {
	case s.Err != nil:
		return Result{Step: s, Status: StatusFailed, Err: s.Err}
	case s.Action == ActionSatisfied:
		return Result{Step: s, Status: StatusSatisfied}
	case s.Action == ActionConflict:
		return Result{Step: s, Status: StatusConflict}
	case dryRun:
		return Result{Step: s, Status: StatusPlanned}
	}

	if err := a.linker.Create(s.Link, s.Target, s.Action == ActionReplace); err != nil {
		return Result{Step: s, Status: StatusFailed, Err: err}
	}
	if s.Action == ActionReplace {
		return Result{Step: s, Status: StatusReplaced}
	}
	return Result{Step: s, Status: StatusCreated}
}

func logResult(ctx context.Context, log ports.Logger, res Result) {
	fields := []ports.Field{
		ports.F("link", res.Step.Link),
		ports.F("target", res.Step.Target),
		ports.F("status", string(res.Status)),
	}
	switch res.Status {
	case StatusFailed, StatusSkipped:
		log.Error(ctx, "manifest entry failed", append(fields, ports.F("error", res.Err.Error()))...)
	case StatusConflict:
		log.Warn(ctx, "manifest entry conflicts", append(fields, ports.F("reason", res.Step.Reason))...)
	default:
		log.Debug(ctx, "manifest entry", fields...)
	}
}
