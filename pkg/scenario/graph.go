package scenario

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/goccy/go-graphviz"
)

// ToDOT renders the trigger nesting tree as Graphviz DOT. With a trace,
// triggers whose popup is visible at the end are filled.
func ToDOT(sc *Scenario, tr *Trace) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	fmt.Fprintf(&buf, "  label=%q;\n", sc.Name)
	buf.WriteString("\n")

	for _, ts := range sc.Triggers {
		attrs := []string{fmt.Sprintf("label=%q", fmtLabel(ts))}
		if tr != nil {
			if s, ok := tr.Final(ts.Name); ok {
				switch {
				case !s.Mounted:
					attrs = append(attrs, "style=\"rounded,dashed\"", "fontcolor=grey")
				case s.Visible:
					attrs = append(attrs, "fillcolor=lightblue")
				}
			}
		}
		fmt.Fprintf(&buf, "  %q [%s];\n", ts.Name, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, ts := range sc.Triggers {
		if ts.Parent != "" {
			fmt.Fprintf(&buf, "  %q -> %q;\n", ts.Parent, ts.Name)
		}
	}
	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(ts TriggerSpec) string {
	actions := ts.Action
	if len(actions) == 0 {
		actions = append(append([]string{}, ts.ShowAction...), ts.HideAction...)
	}
	label := ts.Name
	if len(actions) > 0 {
		label += "\n" + strings.Join(actions, ", ")
	}
	if ts.Placement != "" {
		label += "\n" + ts.Placement
	}
	return label
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}
