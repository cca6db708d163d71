package markup

import (
	"fmt"

	"fontprune/utils/debug"
)

type treeWriter struct {
	*debug.TreeWriter
}

// String returns a readable tree of the document: elements with their inline
// styles and style blocks with source offsets. It exists solely for manual
// inspection during debugging.
func (d *Document) String() string {
	if d == nil {
		return "<nil Document>"
	}
	tw := treeWriter{debug.NewTreeWriter()}
	tw.Line(0, "Document bytes=%d", len(d.Source))
	for i, blk := range d.StyleBlocks {
		tw.Span(1, fmt.Sprintf("StyleBlock[%d]", i), blk.Start, blk.End)
		tw.TextBlock(2, "text", blk.Text)
	}
	tw.node(1, d.Root)
	return tw.String()
}

func (tw treeWriter) node(depth int, n *Node) {
	if n == nil {
		return
	}
	tw.Line(depth, "<%s> children=%d", n.Tag, len(n.Children))
	if n.HasStyle {
		tw.TextBlock(depth+1, "style", n.Style)
	}
	for _, c := range n.Children {
		tw.node(depth+1, c)
	}
}
