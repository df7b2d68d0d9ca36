package manifest

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/felixgeelhaar/junction/internal/domain/junction"
)

// Action is what applying an entry will do.
type Action string

// Plan actions.
const (
	ActionCreate    Action = "create"
	ActionReplace   Action = "replace"
	ActionSatisfied Action = "satisfied"
	ActionConflict  Action = "conflict"
)

// Inspector reports what is at a link path.
type Inspector interface {
	Inspect(link string) (junction.Link, error)
}

// Step is one planned entry.
type Step struct {
	Index     int
	Link      string
	Target    string
	Overwrite bool
	Current   junction.Link
	Action    Action
	Reason    string
	// Err is set when the link could not be inspected.
	Err error
}

// Plan is the ordered set of steps for a manifest.
type Plan struct {
	Source string
	Steps  []Step
}

// NewPlan inspects every entry and decides its action. defaultOverwrite
// applies to entries that do not set overwrite.
func NewPlan(m *Manifest, in Inspector, defaultOverwrite bool) *Plan {
	p := &Plan{Source: m.Source(), Steps: make([]Step, 0, len(m.Links))}

	for i, e := range m.Links {
		link, target := m.Resolve(e)
		s := Step{Index: i, Link: link, Target: target, Overwrite: defaultOverwrite}
		if e.Overwrite != nil {
			s.Overwrite = *e.Overwrite
		}

		cur, err := in.Inspect(link)
		if err != nil {
			s.Action = ActionConflict
			s.Reason = "cannot inspect link"
			s.Err = err
		} else {
			s.Current = cur
			s.Action, s.Reason = decide(cur, target, s.Overwrite)
		}
		p.Steps = append(p.Steps, s)
	}

	return p
}

func decide(cur junction.Link, target string, overwrite bool) (Action, string) {
	switch cur.State {
	case junction.StateAbsent:
		return ActionCreate, "link does not exist"
	case junction.StateFile:
		return ActionConflict, "a file exists at the link path"
	case junction.StateJunction:
		if samePath(cur.Target, target) {
			return ActionSatisfied, "junction already points at target"
		}
		if overwrite {
			return ActionReplace, fmt.Sprintf("junction points at %s", cur.Target)
		}
		return ActionConflict, fmt.Sprintf("junction points at %s and overwrite is off", cur.Target)
	default:
		if overwrite {
			return ActionReplace, "directory will become a junction"
		}
		return ActionConflict, "a directory exists and overwrite is off"
	}
}

// samePath compares cleaned paths case-insensitively, as NTFS does.
func samePath(a, b string) bool {
	return strings.EqualFold(filepath.Clean(a), filepath.Clean(b))
}

// Count returns the number of steps with action a.
func (p *Plan) Count(a Action) int {
	n := 0
	for _, s := range p.Steps {
		if s.Action == a {
			n++
		}
	}
	return n
}

// Changes reports whether applying the plan would modify anything.
func (p *Plan) Changes() bool {
	return p.Count(ActionCreate)+p.Count(ActionReplace) > 0
}
