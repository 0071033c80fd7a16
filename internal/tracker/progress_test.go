package tracker

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autopeer-io/missionlens/pkg/mission"
)

func missionSpec() mission.Spec {
	return mission.Spec{States: []mission.StateDef{
		{Name: "Takeoff", Transitions: []mission.TransitionDef{{Target: "Hover", Condition: "altitude_reached"}}},
		{Name: "Hover", Transitions: []mission.TransitionDef{
			{Target: "Land", Condition: "rtl_triggered"},
			{Target: "Land", Condition: "battery_low"},
		}},
	}}
}

func TestProgressDeclaredTransitions(t *testing.T) {
	ctx := context.Background()
	p := NewProgress(missionSpec(), "")

	step, moved, err := p.Advance(ctx, "Takeoff")
	require.NoError(t, err)
	assert.True(t, moved)
	assert.Equal(t, Step{To: "Takeoff"}, step)

	step, moved, err = p.Advance(ctx, "Hover")
	require.NoError(t, err)
	assert.True(t, moved)
	assert.Equal(t, Step{From: "Takeoff", To: "Hover", Condition: "altitude_reached"}, step)

	step, _, err = p.Advance(ctx, "Land")
	require.NoError(t, err)
	assert.Equal(t, "rtl_triggered", step.Condition)
	assert.False(t, step.OffPlan)

	assert.Equal(t, "Land", p.Current())
	assert.Equal(t, []string{"Hover", "Land"}, p.Entered())
}

func TestProgressOffPlan(t *testing.T) {
	ctx := context.Background()
	p := NewProgress(missionSpec(), "Takeoff")

	step, moved, err := p.Advance(ctx, "Land")
	require.NoError(t, err)
	assert.True(t, moved)
	assert.True(t, step.OffPlan)
	assert.Equal(t, "Land", p.Current())
	assert.Empty(t, p.Entered())

	// Land has no declared way back
	step, _, err = p.Advance(ctx, "Hover")
	require.NoError(t, err)
	assert.True(t, step.OffPlan)
}

func TestProgressNoop(t *testing.T) {
	p := NewProgress(missionSpec(), "Hover")

	_, moved, err := p.Advance(context.Background(), "Hover")
	require.NoError(t, err)
	assert.False(t, moved)

	_, moved, err = p.Advance(context.Background(), "")
	require.NoError(t, err)
	assert.False(t, moved)
	assert.Equal(t, "Hover", p.Current())
}
