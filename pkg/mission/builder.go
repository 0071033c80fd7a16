package mission

import (
	"strings"
)

const (
	// DefaultDynamicAnchor is the state a synthetic activity node is attached to.
	DefaultDynamicAnchor = "RunTasks"

	// DefaultDynamicNode names the synthetic node attached to the anchor.
	DefaultDynamicNode = "DynamicState"
)

// Builder derives a Graph and its normalized name Index from a Spec.
type Builder struct {
	Normalizer Normalizer

	// DynamicAnchor is the node that, when present, gets the synthetic
	// DynamicNode wired to it in both directions.
	DynamicAnchor string
	DynamicNode   string

	// SynthesizeOnKeyMiss adds the synthetic node whenever the normalized
	// activity is not an exact index key, even if a declared node already
	// matches it by substring. By default a substring match suppresses it.
	SynthesizeOnKeyMiss bool
}

// NewBuilder returns a Builder with the default anchor and synthetic node names.
func NewBuilder(n Normalizer) Builder {
	return Builder{
		Normalizer:    n,
		DynamicAnchor: DefaultDynamicAnchor,
		DynamicNode:   DefaultDynamicNode,
	}
}

// Build converts spec into a Graph. An empty activity means no activity has
// been reported. The returned Index maps normalized names to node names in
// declaration order, later declarations overwriting earlier ones.
//
// If activity is not recognized, exactly one synthetic node is added for it:
// DynamicNode linked both ways to DynamicAnchor when the anchor exists,
// otherwise a bare node named by the raw activity. The normalized activity is
// then indexed to that node. An activity is recognized when its normalized
// form is an index key or, unless SynthesizeOnKeyMiss is set, when Match
// would already find a declared node for it.
//
// The default gate is looser than an exact key check: HoveringArduPilot
// stays on a declared Hover node instead of gaining a synthetic node that
// Match would never pick. Set SynthesizeOnKeyMiss for the exact key gate,
// where every key miss adds exactly one synthetic node.
func (b Builder) Build(spec Spec, activity string) (Graph, *Index) {
	g := Graph{Activity: activity}
	idx := NewIndex()
	seen := make(map[string]struct{})

	addNode := func(name string) {
		if _, ok := seen[name]; ok {
			return
		}
		seen[name] = struct{}{}
		g.Nodes = append(g.Nodes, name)
	}

	for _, st := range spec.States {
		addNode(st.Name)
		idx.Set(b.Normalizer.Normalize(st.Name), st.Name)

		for _, tr := range st.Transitions {
			g.Edges = append(g.Edges, Edge{Source: st.Name, Target: tr.Target, Label: tr.Condition})
			addNode(tr.Target)
			idx.Set(b.Normalizer.Normalize(tr.Target), tr.Target)
		}
	}

	if activity == "" {
		return g, idx
	}

	key := b.Normalizer.Normalize(activity)
	if idx.Has(key) {
		return g, idx
	}
	if !b.SynthesizeOnKeyMiss && matchKey(idx, key) != "" {
		return g, idx
	}

	if _, ok := seen[b.DynamicAnchor]; ok && b.DynamicAnchor != "" && b.DynamicNode != "" {
		addNode(b.DynamicNode)
		g.Edges = append(g.Edges,
			Edge{Source: b.DynamicAnchor, Target: b.DynamicNode},
			Edge{Source: b.DynamicNode, Target: b.DynamicAnchor},
		)
		g.Synthetic = b.DynamicNode
	} else {
		addNode(activity)
		g.Synthetic = activity
	}
	idx.Set(key, g.Synthetic)

	return g, idx
}

// Match returns the first indexed node, in index order, whose normalized name
// is a substring of the normalized activity or contains it. It returns "" for
// an empty activity or when nothing matches.
func (b Builder) Match(idx *Index, activity string) string {
	if activity == "" || idx == nil {
		return ""
	}

	return matchKey(idx, b.Normalizer.Normalize(activity))
}

func matchKey(idx *Index, key string) string {
	for normalized, name := range idx.All() {
		if strings.Contains(key, normalized) || strings.Contains(normalized, key) {
			return name
		}
	}
	return ""
}

// Resolve builds the graph for spec and highlights the node matching activity.
func (b Builder) Resolve(spec Spec, activity string) Graph {
	g, idx := b.Build(spec, activity)
	g.Highlighted = b.Match(idx, activity)
	return g
}
