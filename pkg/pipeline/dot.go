package pipeline

import (
	"bytes"
	"context"
	"fmt"

	"github.com/goccy/go-graphviz"

	"github.com/morphkit/morph/pkg/augment"
	"github.com/morphkit/morph/pkg/transform"
)

// ToDOT renders a composed transform as a Graphviz DOT tree. Sequence
// children hang off their parent in order; one_of branches are drawn
// with dashed edges. The resulting DOT string can be rendered with
// [RenderSVG].
func ToDOT(t augment.Transform) string {
	var buf bytes.Buffer
	buf.WriteString("digraph pipeline {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, margin=\"0.2,0.1\"];\n")
	buf.WriteString("\n")

	var next int
	writeNode(&buf, t, &next)

	buf.WriteString("}\n")
	return buf.String()
}

// writeNode emits the node for t and its subtree, returning t's node id.
func writeNode(buf *bytes.Buffer, t augment.Transform, next *int) int {
	id := *next
	*next++

	switch tt := t.(type) {
	case *augment.Sequence:
		fmt.Fprintf(buf, "  n%d [label=\"Sequence\", fillcolor=lightblue];\n", id)
		for i, child := range tt.Transforms() {
			childID := writeNode(buf, child, next)
			fmt.Fprintf(buf, "  n%d -> n%d [label=\"%d\"];\n", id, childID, i)
		}
	case transform.OneOf:
		fmt.Fprintf(buf, "  n%d [label=\"OneOf\", fillcolor=lightyellow];\n", id)
		for _, choice := range tt.Choices {
			childID := writeNode(buf, choice, next)
			fmt.Fprintf(buf, "  n%d -> n%d [style=dashed];\n", id, childID)
		}
	default:
		fmt.Fprintf(buf, "  n%d [label=%q];\n", id, augment.Name(t))
	}
	return id
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
