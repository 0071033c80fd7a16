package render

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autopeer-io/missionlens/pkg/mission"
)

func runTasksSpec() mission.Spec {
	return mission.Spec{States: []mission.StateDef{
		{Name: "Takeoff", Transitions: []mission.TransitionDef{{Target: "RunTasks", Condition: "airborne"}}},
		{Name: "RunTasks", Transitions: []mission.TransitionDef{{Target: "Land"}}},
	}}
}

func TestPalette(t *testing.T) {
	p := DefaultPalette()
	assert.Equal(t, "#1E90FF", p.Color("DodgerBlue"))
	assert.Equal(t, "#1E90FF", p.Color("dodgerblue"))
	assert.Equal(t, FallbackColor, p.Color("Magenta"))
	require.NoError(t, p.Validate())

	merged := p.Merge(Palette{"Magenta": "#ff00aa", "Red": "#aa0000"})
	assert.Equal(t, "#FF00AA", merged.Color("magenta"))
	assert.Equal(t, "#AA0000", merged.Color("Red"))
	assert.Equal(t, "#FF0000", p.Color("Red"), "Merge must not mutate the receiver")

	assert.Error(t, Palette{"red": "red"}.Validate())
}

func TestAdapterView(t *testing.T) {
	b := mission.NewBuilder(mission.NewNormalizer())
	g := b.Resolve(runTasksSpec(), "Inspect_TowerPX4")

	a := NewAdapter(nil)
	got := a.View("Gold", g)

	want := View{
		VehicleID: "Gold",
		Nodes: []NodeView{
			{Name: "Takeoff", Label: "Takeoff"},
			{Name: "RunTasks", Label: "RunTasks"},
			{Name: "Land", Label: "Land"},
			{Name: "DynamicState", Label: "Inspect_TowerPX4", Filled: true, FillColor: "#FFD700"},
		},
		Edges: []EdgeView{
			{Source: "Takeoff", Target: "RunTasks", Label: "airborne"},
			{Source: "RunTasks", Target: "Land"},
			{Source: "RunTasks", Target: "DynamicState"},
			{Source: "DynamicState", Target: "RunTasks"},
		},
		Highlighted: "DynamicState",
		Activity:    "Inspect_TowerPX4",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("View() mismatch (-want +got):\n%s", diff)
	}
}

func TestAdapterViewCustomDynamicNode(t *testing.T) {
	b := mission.NewBuilder(mission.NewNormalizer())
	b.DynamicNode = "Extra"
	g := b.Resolve(runTasksSpec(), "Inspect_TowerPX4")

	v := NewAdapter(nil).View("Gold", g)
	require.Len(t, v.Nodes, 4)
	assert.Equal(t, NodeView{Name: "Extra", Label: "Inspect_TowerPX4", Filled: true, FillColor: "#FFD700"}, v.Nodes[3])
	assert.Equal(t, "Extra", v.Highlighted)
}

func TestAdapterSetPalette(t *testing.T) {
	g := mission.Graph{Nodes: []string{"Hover"}, Highlighted: "Hover"}
	a := NewAdapter(DefaultPalette())

	assert.Equal(t, FallbackColor, a.View("Magenta", g).Nodes[0].FillColor)

	a.SetPalette(NewPalette(map[string]string{"Magenta": "#FF00AA"}))
	assert.Equal(t, "#FF00AA", a.View("Magenta", g).Nodes[0].FillColor)
}

func TestAdapterNoHighlight(t *testing.T) {
	g := mission.NewBuilder(mission.NewNormalizer()).Resolve(runTasksSpec(), "")
	v := NewAdapter(nil).View("Red", g)
	for _, n := range v.Nodes {
		assert.False(t, n.Filled, n.Name)
		assert.Empty(t, n.FillColor, n.Name)
	}
}

func TestJSONRenderer(t *testing.T) {
	v := View{
		VehicleID:   "Red",
		Nodes:       []NodeView{{Name: "Hover", Label: "Hover", Filled: true, FillColor: "#FF0000"}},
		Edges:       []EdgeView{},
		Highlighted: "Hover",
	}

	var buf bytes.Buffer
	require.NoError(t, JSONRenderer{}.Render(&buf, v))

	var back View
	require.NoError(t, json.Unmarshal(buf.Bytes(), &back))
	assert.Equal(t, v, back)
	assert.Contains(t, buf.String(), `"fillColor":"#FF0000"`)
}

func TestDOTRenderer(t *testing.T) {
	v := View{
		VehicleID: "Red",
		Nodes: []NodeView{
			{Name: "Takeoff", Label: "Takeoff"},
			{Name: "Hover", Label: `Say "hi"`, Filled: true, FillColor: "#FF0000"},
		},
		Edges: []EdgeView{
			{Source: "Takeoff", Target: "Hover", Label: "altitude_reached"},
			{Source: "Hover", Target: "Takeoff"},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, DOTRenderer{}.Render(&buf, v))
	out := buf.String()

	assert.Contains(t, out, `digraph "Red" {`)
	assert.Contains(t, out, "rankdir=TB")
	assert.Contains(t, out, "shape=rectangle")
	assert.Contains(t, out, `"Takeoff" [label="Takeoff"];`)
	assert.Contains(t, out, `"Hover" [label="Say \"hi\"", fillcolor="#FF0000"];`)
	assert.Contains(t, out, `"Takeoff" -> "Hover" [label="altitude_reached"];`)
	assert.Contains(t, out, `"Hover" -> "Takeoff";`)
}

func TestForFormat(t *testing.T) {
	r, err := ForFormat("DOT")
	require.NoError(t, err)
	assert.IsType(t, DOTRenderer{}, r)

	r, err = ForFormat("")
	require.NoError(t, err)
	assert.Equal(t, "application/json", r.ContentType())

	_, err = ForFormat("png")
	assert.Error(t, err)
}
