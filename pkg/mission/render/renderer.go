package render

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// Renderer writes a View in some output format.
type Renderer interface {
	Render(w io.Writer, v View) error
	ContentType() string
}

// ForFormat returns the renderer registered under name ("json" or "dot").
func ForFormat(name string) (Renderer, error) {
	switch strings.ToLower(name) {
	case "json", "":
		return JSONRenderer{}, nil
	case "dot", "gv":
		return DOTRenderer{}, nil
	default:
		return nil, fmt.Errorf("unknown render format %q", name)
	}
}

// JSONRenderer writes the View as a single JSON document.
type JSONRenderer struct {
	Indent bool
}

func (r JSONRenderer) Render(w io.Writer, v View) error {
	enc := json.NewEncoder(w)
	if r.Indent {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}

func (JSONRenderer) ContentType() string { return "application/json" }

// DOTRenderer writes Graphviz DOT source. Layout: rectangular nodes, top to
// bottom, straight edges, transparent background.
type DOTRenderer struct{}

func (DOTRenderer) ContentType() string { return "text/vnd.graphviz; charset=utf-8" }

func (DOTRenderer) Render(w io.Writer, v View) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "digraph %s {\n", quote(v.VehicleID))
	bw.WriteString("\tgraph [rankdir=TB, splines=line, ranksep=\"0.3 equally\", nodesep=\"1 equally\", bgcolor=transparent];\n")
	bw.WriteString("\tnode [shape=rectangle, style=filled, fillcolor=transparent, color=black, fontcolor=black];\n")
	bw.WriteString("\tedge [color=black, fontcolor=black];\n")

	for _, n := range v.Nodes {
		attrs := []string{"label=" + quote(n.Label)}
		if n.Filled {
			attrs = append(attrs, "fillcolor="+quote(n.FillColor))
		}
		fmt.Fprintf(bw, "\t%s [%s];\n", quote(n.Name), strings.Join(attrs, ", "))
	}
	for _, e := range v.Edges {
		if e.Label != "" {
			fmt.Fprintf(bw, "\t%s -> %s [label=%s];\n", quote(e.Source), quote(e.Target), quote(e.Label))
			continue
		}
		fmt.Fprintf(bw, "\t%s -> %s;\n", quote(e.Source), quote(e.Target))
	}
	bw.WriteString("}\n")

	return bw.Flush()
}

var dotEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`)

func quote(s string) string {
	return `"` + dotEscaper.Replace(s) + `"`
}
