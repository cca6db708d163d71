package css

import (
	"fmt"

	"fontprune/utils/debug"
)

type treeWriter struct {
	*debug.TreeWriter
}

// String returns a readable tree of the parsed stylesheet. It exists solely
// for manual inspection during debugging.
func (s *Stylesheet) String() string {
	if s == nil {
		return "<nil Stylesheet>"
	}
	tw := treeWriter{debug.NewTreeWriter()}
	tw.Line(0, "Stylesheet items=%d", len(s.Items))
	tw.items(1, s.Items)
	if len(s.Warnings) > 0 {
		tw.Line(1, "Warnings: %d", len(s.Warnings))
		for _, w := range s.Warnings {
			tw.Line(2, "%s", w)
		}
	}
	return tw.String()
}

func (tw treeWriter) items(depth int, items []StylesheetItem) {
	for _, it := range items {
		switch {
		case it.FontFace != nil:
			ff := it.FontFace
			tw.Span(depth, fmt.Sprintf("@font-face closed=%t lastSemicolon=%d", ff.Closed, ff.LastSemicolon), ff.Start, ff.End)
			tw.declarations(depth+1, ff.Declarations)
		case it.AtRule != nil:
			ar := it.AtRule
			tw.Span(depth, fmt.Sprintf("@%s %q closed=%t", ar.Name, ar.Prelude, ar.Closed), ar.Start, ar.End)
			tw.declarations(depth+1, ar.Declarations)
			tw.items(depth+1, ar.Items)
		case it.Rule != nil:
			r := it.Rule
			tw.Span(depth, fmt.Sprintf("Rule %q closed=%t", r.Prelude, r.Closed), r.Start, r.End)
			tw.declarations(depth+1, r.Declarations)
		}
	}
}

func (tw treeWriter) declarations(depth int, decls Declarations) {
	for _, d := range decls {
		label := d.Property
		if d.Important {
			label += " !important"
		}
		tw.TextBlock(depth, label, d.Text())
	}
}
