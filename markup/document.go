// Package markup builds a lightweight element tree of an HTML document with
// the byte offsets of its <style> blocks, so the document can be rewritten
// without re-serializing untouched markup.
package markup

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/net/html"
)

// Node is an element of the document tree.
type Node struct {
	Tag      string // lower-cased tag name, "#document" for the root
	Style    string // unescaped value of the style attribute
	HasStyle bool
	Parent   *Node
	Children []*Node
}

// Walk visits n and its descendants in document order. enter is called
// before children are visited, leave (if not nil) after.
func (n *Node) Walk(enter, leave func(*Node)) {
	enter(n)
	for _, c := range n.Children {
		c.Walk(enter, leave)
	}
	if leave != nil {
		leave(n)
	}
}

// StyleBlock is the CSS text of a <style> element.
type StyleBlock struct {
	Start int // offset of the first byte after <style ...>
	End   int // offset of the closing </style> (or end of document)
	Text  string
}

// Document is a parsed HTML document.
type Document struct {
	Source      string
	Root        *Node
	StyleBlocks []StyleBlock
}

// elements that never have content
var voidElements = map[string]bool{
	"area":   true,
	"base":   true,
	"br":     true,
	"col":    true,
	"embed":  true,
	"hr":     true,
	"img":    true,
	"input":  true,
	"link":   true,
	"meta":   true,
	"param":  true,
	"source": true,
	"track":  true,
	"wbr":    true,
}

// start tags closing an open <p>
var closesParagraph = map[string]bool{
	"address": true, "article": true, "aside": true, "blockquote": true,
	"details": true, "dialog": true, "div": true, "dl": true,
	"fieldset": true, "figcaption": true, "figure": true, "footer": true,
	"form": true, "h1": true, "h2": true, "h3": true, "h4": true, "h5": true,
	"h6": true, "header": true, "hgroup": true, "hr": true, "li": true,
	"main": true, "menu": true, "nav": true, "ol": true, "p": true,
	"pre": true, "section": true, "table": true, "ul": true, "dd": true,
	"dt": true,
}

// elements an implied end tag never crosses
var scopeBoundaries = map[string]bool{
	"applet": true, "button": true, "caption": true, "html": true,
	"marquee": true, "object": true, "table": true, "td": true, "th": true,
	"template": true, "svg": true, "math": true,
}

// closeImplied returns the element a new start tag is appended to after the
// end tags HTML implies for it: an open <p> is closed by block level
// elements, <li> by <li>, <dt>/<dd> by either.
func closeImplied(cur *Node, tag string) *Node {
	if closesParagraph[tag] {
		if p := openInScope(cur, "p", nil); p != nil {
			cur = p.Parent
		}
	}
	switch tag {
	case "li":
		if li := openInScope(cur, "li", map[string]bool{"ol": true, "ul": true}); li != nil {
			cur = li.Parent
		}
	case "dt", "dd":
		if d := openInScope(cur, "dt", map[string]bool{"dl": true}); d != nil {
			cur = d.Parent
		} else if d := openInScope(cur, "dd", map[string]bool{"dl": true}); d != nil {
			cur = d.Parent
		}
	}
	return cur
}

// openInScope finds the nearest open element named tag, stopping at scope
// boundaries and at the extra ones given.
func openInScope(cur *Node, tag string, extra map[string]bool) *Node {
	for n := cur; n != nil && n.Parent != nil; n = n.Parent {
		if n.Tag == tag {
			return n
		}
		if scopeBoundaries[n.Tag] || extra[n.Tag] {
			return nil
		}
	}
	return nil
}

// Parse tokenizes source and builds the element tree. Nesting is resolved
// best-effort: end tags close the nearest open element with the same name,
// unmatched end tags are ignored and the common implied end tags (<p>, <li>,
// <dt>, <dd>) are handled.
func Parse(source string, log *zap.Logger) (*Document, error) {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("markup")

	doc := &Document{Source: source, Root: &Node{Tag: "#document"}}
	z := html.NewTokenizer(strings.NewReader(source))

	var (
		cur      = doc.Root
		offset   int
		rawStyle bool
		styles   int
	)
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			if err := z.Err(); !errors.Is(err, io.EOF) {
				return nil, fmt.Errorf("unable to tokenize document at offset %d: %w", offset, err)
			}
			break
		}
		// Raw must be measured before TagName/TagAttr modify the buffer
		start := offset
		offset += len(z.Raw())

		inStyle := rawStyle
		rawStyle = false

		switch tt {
		case html.StartTagToken, html.SelfClosingTagToken:
			name, hasAttr := z.TagName()
			n := &Node{Tag: string(name), Parent: cur}
			for hasAttr {
				var key, val []byte
				key, val, hasAttr = z.TagAttr()
				if string(key) == "style" && !n.HasStyle {
					n.Style, n.HasStyle = string(val), true
					styles++
				}
			}
			cur = closeImplied(cur, n.Tag)
			n.Parent = cur
			cur.Children = append(cur.Children, n)
			if n.Tag == "style" {
				// tokenizer switches to raw text mode after <style>
				rawStyle = true
			}
			if tt == html.StartTagToken && !voidElements[n.Tag] {
				cur = n
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			tag := string(name)
			for p := cur; p != doc.Root; p = p.Parent {
				if p.Tag == tag {
					cur = p.Parent
					break
				}
			}
		case html.TextToken:
			if inStyle {
				doc.StyleBlocks = append(doc.StyleBlocks, StyleBlock{Start: start, End: offset, Text: source[start:offset]})
			}
		}
	}

	log.Debug("Document parsed", zap.Int("bytes", len(source)), zap.Int("style blocks", len(doc.StyleBlocks)), zap.Int("style attributes", styles))
	return doc, nil
}

// Rewrite returns the document source with style block texts replaced.
// Blocks whose index is absent from replacements are kept as is.
func (d *Document) Rewrite(replacements map[int]string) string {
	if len(replacements) == 0 {
		return d.Source
	}
	var sb strings.Builder
	sb.Grow(len(d.Source))
	last := 0
	for i, blk := range d.StyleBlocks {
		text, ok := replacements[i]
		if !ok {
			continue
		}
		sb.WriteString(d.Source[last:blk.Start])
		sb.WriteString(text)
		last = blk.End
	}
	sb.WriteString(d.Source[last:])
	return sb.String()
}
