// Package render turns a mission.Graph into the descriptive node and edge
// lists handed to drawing front ends, and writes them as JSON or Graphviz
// DOT source.
package render

import (
	"sync/atomic"

	"github.com/autopeer-io/missionlens/pkg/mission"
)

// NodeView is one drawable node.
type NodeView struct {
	Name      string `json:"name"`
	Label     string `json:"label"`
	Filled    bool   `json:"filled"`
	FillColor string `json:"fillColor,omitempty"`
}

// EdgeView is one drawable edge.
type EdgeView struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Label  string `json:"label,omitempty"`
}

// View is the render-ready form of a mission graph for one vehicle.
type View struct {
	VehicleID   string     `json:"vehicleId"`
	Nodes       []NodeView `json:"nodes"`
	Edges       []EdgeView `json:"edges"`
	Highlighted string     `json:"highlighted,omitempty"`
	Activity    string     `json:"activity,omitempty"`
}

// Adapter builds Views. It is safe for concurrent use and its palette may be
// swapped while in use.
type Adapter struct {
	palette atomic.Pointer[Palette]
}

// NewAdapter returns an Adapter using palette, or DefaultPalette when nil.
func NewAdapter(palette Palette) *Adapter {
	a := &Adapter{}
	a.SetPalette(palette)
	return a
}

// SetPalette replaces the palette.
func (a *Adapter) SetPalette(p Palette) {
	if p == nil {
		p = DefaultPalette()
	}
	a.palette.Store(&p)
}

// Palette returns the current palette.
func (a *Adapter) Palette() Palette {
	return *a.palette.Load()
}

// View converts g for vehicleID. Only the highlighted node is filled, and
// the synthetic node, whatever the builder named it, is labelled with the
// raw activity.
func (a *Adapter) View(vehicleID string, g mission.Graph) View {
	color := a.Palette().Color(vehicleID)

	v := View{
		VehicleID:   vehicleID,
		Nodes:       make([]NodeView, 0, len(g.Nodes)),
		Edges:       make([]EdgeView, 0, len(g.Edges)),
		Highlighted: g.Highlighted,
		Activity:    g.Activity,
	}
	for _, name := range g.Nodes {
		n := NodeView{Name: name, Label: name}
		if g.Synthetic != "" && name == g.Synthetic {
			n.Label = g.Activity
		}
		if name == g.Highlighted {
			n.Filled = true
			n.FillColor = color
		}
		v.Nodes = append(v.Nodes, n)
	}
	for _, e := range g.Edges {
		v.Edges = append(v.Edges, EdgeView(e))
	}
	return v
}
