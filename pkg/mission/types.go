package mission

import (
	"errors"
	"fmt"
	"slices"
)

// TransitionDef is a labeled edge out of a declared state.
type TransitionDef struct {
	Target string `json:"target" yaml:"target"`
	// Condition is the edge label. Empty means unconditional.
	Condition string `json:"condition,omitempty" yaml:"condition,omitempty"`
}

// StateDef is one declared state of a mission.
type StateDef struct {
	Name        string          `json:"name" yaml:"name"`
	Transitions []TransitionDef `json:"transitions,omitempty" yaml:"transitions,omitempty"`
}

// Spec is a vehicle's mission specification. It is replaced wholesale when a
// new one arrives and never mutated in place.
type Spec struct {
	States []StateDef `json:"states" yaml:"states"`
}

var (
	ErrEmptyStateName = errors.New("state name is empty")
	ErrEmptyTarget    = errors.New("transition target is empty")
)

// Validate rejects specs the builder cannot represent. Duplicate names and
// transitions to undeclared states are accepted.
func (s Spec) Validate() error {
	var errs []error
	for i, st := range s.States {
		if st.Name == "" {
			errs = append(errs, fmt.Errorf("states[%d]: %w", i, ErrEmptyStateName))
		}
		for j, tr := range st.Transitions {
			if tr.Target == "" {
				errs = append(errs, fmt.Errorf("states[%d].transitions[%d]: %w", i, j, ErrEmptyTarget))
			}
		}
	}
	return errors.Join(errs...)
}

// Clone returns a deep copy.
func (s Spec) Clone() Spec {
	out := Spec{States: make([]StateDef, len(s.States))}
	for i, st := range s.States {
		out.States[i] = StateDef{Name: st.Name, Transitions: slices.Clone(st.Transitions)}
	}
	return out
}

// UndeclaredTargets lists, in first-reference order, transition targets that
// have no StateDef of their own.
func (s Spec) UndeclaredTargets() []string {
	declared := make(map[string]struct{}, len(s.States))
	for _, st := range s.States {
		declared[st.Name] = struct{}{}
	}

	var out []string
	seen := make(map[string]struct{})
	for _, st := range s.States {
		for _, tr := range st.Transitions {
			if _, ok := declared[tr.Target]; ok {
				continue
			}
			if _, ok := seen[tr.Target]; ok {
				continue
			}
			seen[tr.Target] = struct{}{}
			out = append(out, tr.Target)
		}
	}
	return out
}

// Edge is a directed, optionally labeled transition in a Graph.
type Edge struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Label  string `json:"label,omitempty"`
}

// Graph is the derived, render-agnostic mission graph for one update.
//
// Highlighted is either empty or one of Nodes.
type Graph struct {
	// Nodes in first-insertion order, without duplicates.
	Nodes []string `json:"nodes"`
	Edges []Edge   `json:"edges"`

	// Highlighted is the node matched to Activity, if any.
	Highlighted string `json:"highlighted,omitempty"`

	// Activity is the raw activity string the graph was built for.
	Activity string `json:"activity,omitempty"`

	// Synthetic names the node added for an unrecognized activity.
	Synthetic string `json:"synthetic,omitempty"`
}

// HasNode reports whether name is a node of g.
func (g Graph) HasNode(name string) bool {
	return slices.Contains(g.Nodes, name)
}
