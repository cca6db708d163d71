package css

import (
	"strings"

	"github.com/tdewolff/parse/v2/css"
)

// Token is a single lexer token with its byte offset in the parsed text.
type Token struct {
	Type   css.TokenType
	Data   string
	Offset int
}

func (t Token) end() int {
	return t.Offset + len(t.Data)
}

// insignificant reports whether token carries no value (whitespace or comment).
func (t Token) insignificant() bool {
	return t.Type == css.WhitespaceToken || t.Type == css.CommentToken
}

// Declaration is a single "property: value" pair.
type Declaration struct {
	Property  string  // lower-cased property name
	Value     []Token // value tokens, trimmed, without !important
	Important bool
	Start     int // offset of the property name
	End       int // offset just past the last value token
}

// Text returns the value with comments dropped and whitespace runs collapsed
// to a single space.
func (d Declaration) Text() string {
	var sb strings.Builder
	space := false
	for _, t := range d.Value {
		if t.insignificant() {
			space = true
			continue
		}
		if space && sb.Len() > 0 {
			sb.WriteByte(' ')
		}
		space = false
		sb.WriteString(t.Data)
	}
	return sb.String()
}

// List splits the value on top-level commas. Quoted strings are unquoted and
// sequences of identifiers are joined with a single space, so
// `"Open Sans", Foo  Bar, serif` yields ["Open Sans", "Foo Bar", "serif"].
func (d Declaration) List() []string {
	var (
		items []string
		sb    strings.Builder
		depth int
		space bool
	)
	flush := func() {
		items = append(items, sb.String())
		sb.Reset()
		space = false
	}
	for _, t := range d.Value {
		switch {
		case t.insignificant():
			space = true
			continue
		case t.Type == css.CommaToken && depth == 0:
			flush()
			continue
		case t.Type == css.FunctionToken || t.Type == css.LeftParenthesisToken:
			depth++
		case t.Type == css.RightParenthesisToken && depth > 0:
			depth--
		}
		if space && sb.Len() > 0 {
			sb.WriteByte(' ')
		}
		space = false
		if t.Type == css.StringToken {
			sb.WriteString(unquote(t.Data))
		} else {
			sb.WriteString(t.Data)
		}
	}
	if sb.Len() > 0 || len(items) > 0 {
		flush()
	}
	return items
}

// Declarations is an ordered declaration list.
type Declarations []Declaration

// Get returns the last declaration of the property (later declarations win).
func (ds Declarations) Get(property string) (Declaration, bool) {
	for i := len(ds) - 1; i >= 0; i-- {
		if ds[i].Property == property {
			return ds[i], true
		}
	}
	return Declaration{}, false
}

// Has reports whether the property is declared at all.
func (ds Declarations) Has(property string) bool {
	_, ok := ds.Get(property)
	return ok
}

// Rule is a qualified rule: selector prelude and declaration block.
type Rule struct {
	Prelude      string
	Declarations Declarations
	Start, End   int
	Closed       bool // false when input ended before '}'
}

// AtRule is any at-rule other than @font-face. Conditional group rules
// (@media, @supports, ...) have their nested rules in Items, other rules with
// a block keep their declarations.
type AtRule struct {
	Name         string // lower-cased, without '@'
	Prelude      string
	Items        []StylesheetItem
	Declarations Declarations
	Start, End   int
	Closed       bool
}

// FontFace is an @font-face block.
type FontFace struct {
	Declarations Declarations
	Start        int // offset of '@'
	End          int // offset just past '}' (or end of input)
	BodyStart    int // offset just past '{'
	BodyEnd      int // offset of '}' (or end of input)
	// LastSemicolon is the offset of the last top-level ';' in the body, -1 if there is none.
	LastSemicolon int
	Closed        bool
}

// Family returns the first family named by the block's font-family
// declaration, with quotes removed.
func (ff *FontFace) Family() (string, bool) {
	d, ok := ff.Declarations.Get("font-family")
	if !ok {
		return "", false
	}
	for _, fam := range d.List() {
		if fam = strings.TrimSpace(fam); fam != "" {
			return fam, true
		}
	}
	return "", false
}

// Value returns the text of the named descriptor or empty string.
func (ff *FontFace) Value(property string) string {
	if d, ok := ff.Declarations.Get(property); ok {
		return d.Text()
	}
	return ""
}

// StylesheetItem is a single top-level item in a stylesheet.
// Exactly one of Rule, AtRule or FontFace is non-nil.
type StylesheetItem struct {
	Rule     *Rule
	AtRule   *AtRule
	FontFace *FontFace
}

// Stylesheet represents a parsed CSS stylesheet.
type Stylesheet struct {
	Items    []StylesheetItem // All top-level items in source order
	Warnings []string
}

// FontFaces returns all @font-face blocks, including those nested in group
// at-rules, in source order.
func (s *Stylesheet) FontFaces() []*FontFace {
	var faces []*FontFace
	walkItems(s.Items, func(item StylesheetItem) {
		if item.FontFace != nil {
			faces = append(faces, item.FontFace)
		}
	})
	return faces
}

// Rules returns all qualified rules, including those nested in group
// at-rules, in source order.
func (s *Stylesheet) Rules() []*Rule {
	var rules []*Rule
	walkItems(s.Items, func(item StylesheetItem) {
		if item.Rule != nil {
			rules = append(rules, item.Rule)
		}
	})
	return rules
}

// DeclarationBlocks returns the declaration lists of all rules and of
// at-rules with a declaration body (@page and alike). @font-face blocks are
// not included.
func (s *Stylesheet) DeclarationBlocks() []Declarations {
	var blocks []Declarations
	walkItems(s.Items, func(item StylesheetItem) {
		switch {
		case item.Rule != nil:
			blocks = append(blocks, item.Rule.Declarations)
		case item.AtRule != nil && len(item.AtRule.Declarations) > 0:
			blocks = append(blocks, item.AtRule.Declarations)
		}
	})
	return blocks
}

func walkItems(items []StylesheetItem, fn func(StylesheetItem)) {
	for _, item := range items {
		fn(item)
		if item.AtRule != nil {
			walkItems(item.AtRule.Items, fn)
		}
	}
}

// unquote removes surrounding quotes from a CSS string token and resolves
// simple escapes.
func unquote(s string) string {
	if len(s) == 0 {
		return s
	}
	q := s[0]
	if q != '"' && q != '\'' {
		return s
	}
	s = s[1:]
	if len(s) > 0 && s[len(s)-1] == q {
		s = s[:len(s)-1]
	}
	if !strings.ContainsRune(s, '\\') {
		return s
	}
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			i++
			if s[i] == '\n' {
				// escaped newline is a line continuation
				continue
			}
		}
		sb.WriteByte(s[i])
	}
	return sb.String()
}
