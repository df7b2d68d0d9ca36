package manifest

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/junction/internal/domain/junction"
	"github.com/felixgeelhaar/junction/internal/ports"
	"github.com/felixgeelhaar/junction/internal/testutil/mocks"
)

type env struct {
	fs  *mocks.FileSystem
	dc  *mocks.DeviceControl
	log *mocks.Logger
	mgr *junction.Manager
}

func newEnv(t *testing.T) *env {
	t.Helper()
	fs := mocks.NewFileSystem()
	fs.AddDir("/work/targets/a")
	fs.AddDir("/work/targets/b")
	dc := mocks.NewDeviceControl(fs)
	t.Cleanup(func() {
		assert.Zero(t, dc.OpenHandles(), "handles left open")
	})
	return &env{fs: fs, dc: dc, log: mocks.NewLogger(), mgr: junction.NewManager(fs, dc)}
}

func mustParse(t *testing.T, content string) *Manifest {
	t.Helper()
	m, err := Parse(manifestPath, []byte(content))
	require.NoError(t, err)
	return m
}

func TestNewPlan_Actions(t *testing.T) {
	t.Parallel()
	e := newEnv(t)

	// existing junction to the right target
	require.NoError(t, e.mgr.Create("/work/ok", "/work/targets/a", false))
	// existing junction to the wrong target
	require.NoError(t, e.mgr.Create("/work/moved", "/work/targets/b", false))
	e.fs.AddDir("/work/plain")
	e.fs.AddFile("/work/file", "x")

	m := mustParse(t, `
links:
  - {link: new, target: targets/a}
  - {link: ok, target: targets/a}
  - {link: moved, target: targets/a}
  - {link: plain, target: targets/a}
  - {link: file, target: targets/a, overwrite: true}
`)
	p := NewPlan(m, e.mgr, false)

	require.Len(t, p.Steps, 5)
	want := []Action{ActionCreate, ActionSatisfied, ActionConflict, ActionConflict, ActionConflict}
	for i, s := range p.Steps {
		assert.Equal(t, i, s.Index)
		assert.Equal(t, want[i], s.Action, "step %d (%s)", i, s.Link)
		assert.NotEmpty(t, s.Reason)
		assert.NoError(t, s.Err)
	}
	assert.Equal(t, junction.StateJunction, p.Steps[2].Current.State)
	assert.Equal(t, filepath.Clean("/work/targets/b"), p.Steps[2].Current.Target)
	assert.Equal(t, junction.StateFile, p.Steps[4].Current.State)
	assert.True(t, p.Changes())
	assert.Equal(t, 3, p.Count(ActionConflict))
}

func TestNewPlan_OverwriteTurnsConflictsIntoReplace(t *testing.T) {
	t.Parallel()
	e := newEnv(t)
	require.NoError(t, e.mgr.Create("/work/moved", "/work/targets/b", false))
	e.fs.AddDir("/work/plain")

	m := mustParse(t, `
links:
  - {link: moved, target: targets/a}
  - {link: plain, target: targets/a}
  - {link: kept, target: targets/a, overwrite: false}
`)
	e.fs.AddDir("/work/kept")

	p := NewPlan(m, e.mgr, true)

	assert.Equal(t, ActionReplace, p.Steps[0].Action)
	assert.Equal(t, ActionReplace, p.Steps[1].Action)
	assert.Equal(t, ActionConflict, p.Steps[2].Action)
	assert.False(t, p.Steps[2].Overwrite)
}

func TestNewPlan_TargetComparisonIgnoresCase(t *testing.T) {
	t.Parallel()
	e := newEnv(t)
	require.NoError(t, e.mgr.Create("/work/ok", "/work/targets/a", false))

	p := NewPlan(mustParse(t, "links:\n  - {link: ok, target: TARGETS/A}\n"), e.mgr, false)

	assert.Equal(t, ActionSatisfied, p.Steps[0].Action)
	assert.False(t, p.Changes())
}

type failingInspector struct{ err error }

func (f failingInspector) Inspect(string) (junction.Link, error) {
	return junction.Link{}, f.err
}

func TestNewPlan_InspectFailure(t *testing.T) {
	t.Parallel()
	boom := errors.New("denied")

	p := NewPlan(mustParse(t, "links:\n  - {link: a, target: b}\n"), failingInspector{boom}, true)

	require.Len(t, p.Steps, 1)
	assert.Equal(t, ActionConflict, p.Steps[0].Action)
	assert.ErrorIs(t, p.Steps[0].Err, boom)
}

func TestApplier_Apply(t *testing.T) {
	t.Parallel()
	e := newEnv(t)
	require.NoError(t, e.mgr.Create("/work/ok", "/work/targets/a", false))
	require.NoError(t, e.mgr.Create("/work/moved", "/work/targets/b", false))
	e.fs.AddFile("/work/file", "x")

	m := mustParse(t, `
links:
  - {link: new, target: targets/a}
  - {link: ok, target: targets/a}
  - {link: moved, target: targets/a, overwrite: true}
  - {link: file, target: targets/a}
  - {link: dangling, target: targets/missing}
`)
	start := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	a := NewApplier(e.mgr, WithLogger(e.log), WithClock(func() time.Time { return start }))

	r := a.Apply(context.Background(), NewPlan(m, e.mgr, false), false)

	_, err := uuid.Parse(r.RunID)
	require.NoError(t, err)
	assert.Equal(t, manifestPath, r.Source)
	assert.Equal(t, start, r.Started)
	assert.Equal(t, start, r.Finished)

	statuses := make([]Status, 0, len(r.Results))
	for _, res := range r.Results {
		statuses = append(statuses, res.Status)
	}
	assert.Equal(t, []Status{StatusCreated, StatusSatisfied, StatusReplaced, StatusConflict, StatusFailed}, statuses)
	assert.ErrorIs(t, r.Results[4].Err, junction.ErrDirectoryNotFound)
	assert.False(t, r.OK())
	assert.Equal(t, "1 created, 1 replaced, 1 satisfied, 1 conflict, 1 failed", r.Summary())

	target, ok, err := e.mgr.GetTarget("/work/moved")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, filepath.Clean("/work/targets/a"), target)
	exists, err := e.mgr.Exists("/work/new")
	require.NoError(t, err)
	assert.True(t, exists)

	for _, entry := range e.log.Entries() {
		assert.Equal(t, r.RunID, entry.Fields["run_id"])
	}
	assert.Equal(t, []string{"manifest entry failed"}, e.log.Messages(ports.LevelError))
	assert.Equal(t, []string{"manifest entry conflicts"}, e.log.Messages(ports.LevelWarn))
	assert.Equal(t, []string{"manifest applied"}, e.log.Messages(ports.LevelInfo))
}

func TestApplier_LoggerFromContext(t *testing.T) {
	t.Parallel()
	e := newEnv(t)
	m := mustParse(t, "links:\n  - {link: new, target: targets/a}\n")

	r := NewApplier(e.mgr).Apply(ports.ContextWithLogger(context.Background(), e.log), NewPlan(m, e.mgr, false), false)

	assert.Equal(t, []string{"manifest applied"}, e.log.Messages(ports.LevelInfo))
	assert.Equal(t, r.RunID, e.log.Entries()[0].Fields["run_id"])
}

func TestApplier_DryRunChangesNothing(t *testing.T) {
	t.Parallel()
	e := newEnv(t)
	m := mustParse(t, "links:\n  - {link: new, target: targets/a}\n")

	r := NewApplier(e.mgr).Apply(context.Background(), NewPlan(m, e.mgr, false), true)

	assert.True(t, r.DryRun)
	assert.True(t, r.OK())
	assert.Equal(t, StatusPlanned, r.Results[0].Status)
	assert.Equal(t, "1 planned", r.Summary())
	assert.False(t, e.fs.Exists("/work/new"))
	assert.Empty(t, e.dc.Sent())
}

func TestApplier_CancelledContextSkipsRemaining(t *testing.T) {
	t.Parallel()
	e := newEnv(t)
	m := mustParse(t, "links:\n  - {link: a1, target: targets/a}\n  - {link: a2, target: targets/b}\n")
	p := NewPlan(m, e.mgr, false)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r := NewApplier(e.mgr).Apply(ctx, p, false)

	for _, res := range r.Results {
		assert.Equal(t, StatusSkipped, res.Status)
		assert.ErrorIs(t, res.Err, context.Canceled)
	}
	assert.False(t, e.fs.Exists("/work/a1"))
	assert.Equal(t, "2 skipped", r.Summary())
}

func TestApplier_InspectFailureReportedAsFailed(t *testing.T) {
	t.Parallel()
	boom := errors.New("denied")
	p := NewPlan(mustParse(t, "links:\n  - {link: a, target: b}\n"), failingInspector{boom}, false)

	r := NewApplier(nil).Apply(context.Background(), p, false)

	assert.Equal(t, StatusFailed, r.Results[0].Status)
	assert.ErrorIs(t, r.Results[0].Err, boom)
}

func TestReport_EmptySummary(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "nothing to do", (&Report{}).Summary())
	assert.True(t, (&Report{}).OK())
}
