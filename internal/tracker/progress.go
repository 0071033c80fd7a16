package tracker

import (
	"context"
	"fmt"

	"github.com/looplab/fsm"

	fsmutil "github.com/autopeer-io/missionlens/internal/pkg/util/fsm"
	"github.com/autopeer-io/missionlens/pkg/mission"
)

// Progress follows a vehicle through its declared mission. Each declared
// transition becomes an event named "src->dst"; the current highlighted node
// is the machine state.
type Progress struct {
	machine *fsm.FSM
	labels  map[string]string
	entered []string
}

// Step describes how the highlighted node moved.
type Step struct {
	From string `json:"from,omitempty"`
	To   string `json:"to"`
	// Condition is the label of the declared transition taken, if any.
	Condition string `json:"condition,omitempty"`
	// OffPlan is set when no declared transition links From to To.
	OffPlan bool `json:"offPlan,omitempty"`
}

// NewProgress compiles spec into a progress machine positioned at initial.
// An empty initial means no state is highlighted yet.
func NewProgress(spec mission.Spec, initial string) *Progress {
	p := &Progress{labels: make(map[string]string)}

	var events fsm.Events
	for _, st := range spec.States {
		for _, tr := range st.Transitions {
			name := fsmutil.EventName(st.Name, tr.Target)
			// duplicate edges share one event and keep the first condition
			if _, ok := p.labels[name]; ok {
				continue
			}
			p.labels[name] = tr.Condition
			events = append(events, fsm.EventDesc{Name: name, Src: []string{st.Name}, Dst: tr.Target})
		}
	}

	p.machine = fsm.NewFSM(initial, events, fsm.Callbacks{
		"enter_state": fsmutil.WrapEvent(p.onEnter),
	})
	return p
}

func (p *Progress) onEnter(_ context.Context, e *fsm.Event) error {
	p.entered = append(p.entered, e.Dst)
	return nil
}

// Current returns the machine state.
func (p *Progress) Current() string {
	return p.machine.Current()
}

// Entered returns the states entered through declared transitions, in order.
func (p *Progress) Entered() []string {
	return p.entered
}

// Advance moves the machine to highlighted. A change along a declared
// transition fires its event; any other change is applied directly and
// reported as off plan. An unchanged or empty target is a no-op.
func (p *Progress) Advance(ctx context.Context, highlighted string) (Step, bool, error) {
	from := p.machine.Current()
	if highlighted == "" || highlighted == from {
		return Step{}, false, nil
	}

	step := Step{From: from, To: highlighted}
	name := fsmutil.EventName(from, highlighted)

	if from != "" && p.machine.Can(name) {
		if err := fsmutil.IgnoreNoTransition(p.machine.Event(ctx, name)); err != nil {
			return Step{}, false, fmt.Errorf("advance %s: %w", name, err)
		}
		step.Condition = p.labels[name]
		return step, true, nil
	}

	// the first highlight is where tracking starts, not a deviation
	step.OffPlan = from != ""
	p.machine.SetState(highlighted)
	return step, true, nil
}
