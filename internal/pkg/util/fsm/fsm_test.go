package fsm

import (
	"context"
	"errors"
	"testing"

	"github.com/looplab/fsm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapEventCancels(t *testing.T) {
	veto := errors.New("veto")
	machine := fsm.NewFSM("Hover",
		fsm.Events{{Name: EventName("Hover", "Land"), Src: []string{"Hover"}, Dst: "Land"}},
		fsm.Callbacks{
			"before_" + EventName("Hover", "Land"): WrapEvent(func(context.Context, *fsm.Event) error { return veto }),
		},
	)

	err := machine.Event(context.Background(), "Hover->Land")
	var canceled fsm.CanceledError
	require.ErrorAs(t, err, &canceled)
	assert.ErrorContains(t, err, "veto")
	assert.Equal(t, "Hover", machine.Current())
}

func TestWrapEventAfterTransition(t *testing.T) {
	late := errors.New("late")
	machine := fsm.NewFSM("Hover",
		fsm.Events{{Name: EventName("Hover", "Land"), Src: []string{"Hover"}, Dst: "Land"}},
		fsm.Callbacks{
			"enter_state": WrapEvent(func(context.Context, *fsm.Event) error { return late }),
		},
	)

	err := machine.Event(context.Background(), "Hover->Land")
	assert.ErrorContains(t, err, "late")
	assert.Equal(t, "Land", machine.Current())
}

func TestIgnoreNoTransition(t *testing.T) {
	machine := fsm.NewFSM("Land", fsm.Events{{Name: "again", Src: []string{"Land"}, Dst: "Land"}}, nil)

	err := machine.Event(context.Background(), "again")
	require.Error(t, err)
	assert.NoError(t, IgnoreNoTransition(err))

	boom := errors.New("boom")
	assert.Equal(t, boom, IgnoreNoTransition(boom))
	assert.NoError(t, IgnoreNoTransition(nil))
}
