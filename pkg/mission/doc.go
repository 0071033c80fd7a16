// Package mission turns a declared mission state machine and a vehicle's
// free-text activity into a graph with the current state highlighted.
//
// The flow for one update is:
//
//	g, idx := builder.Build(spec, activity) // nodes, edges, normalized index
//	g.Highlighted = builder.Match(idx, activity)
//
// or simply builder.Resolve(spec, activity). Activity strings reported by
// autopilot firmware rarely equal declared state names, so names are compared
// in normalized form (see Normalizer) using a loose substring test. When the
// activity matches nothing, the builder adds a synthetic node so that there
// is always something to highlight.
//
// Everything in this package is pure and safe for concurrent use.
package mission
