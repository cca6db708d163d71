// Package css is a small recursive-descent CSS parser built on top of the
// tdewolff CSS lexer. It keeps byte offsets for everything it produces so the
// caller can edit the source text in place.
package css

import (
	"strings"

	parse "github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
	"go.uber.org/zap"
)

// Parser parses stylesheets and inline declaration lists.
type Parser struct {
	log *zap.Logger
}

// NewParser creates a new CSS parser.
func NewParser(log *zap.Logger) *Parser {
	if log == nil {
		log = zap.NewNop()
	}
	return &Parser{log: log.Named("css-parser")}
}

// groupRules are at-rules whose block contains nested rules.
var groupRules = map[string]bool{
	"media":          true,
	"supports":       true,
	"document":       true,
	"layer":          true,
	"container":      true,
	"scope":          true,
	"starting-style": true,
}

// Parse parses CSS text into a Stylesheet.
func (p *Parser) Parse(text string) *Stylesheet {
	st := newStream(text)
	sheet := &Stylesheet{}
	sheet.Items = p.parseItems(st, sheet, false)
	if len(sheet.Warnings) > 0 {
		p.log.Debug("CSS parsed with warnings", zap.Strings("warnings", sheet.Warnings))
	}
	return sheet
}

// ParseInline parses the content of a style attribute.
func (p *Parser) ParseInline(text string) Declarations {
	st := newStream(text)
	var warnings []string
	decls := p.parseDeclarationList(st, &warnings, true)
	if len(warnings) > 0 {
		p.log.Debug("Inline style parsed with warnings", zap.String("style", text), zap.Strings("warnings", warnings))
	}
	return decls
}

// stream is a token buffer with single token lookahead.
type stream struct {
	tokens []Token
	pos    int
	size   int
}

func newStream(text string) *stream {
	lexer := css.NewLexer(parse.NewInputString(text))
	st := &stream{size: len(text)}
	offset := 0
	for {
		tt, data := lexer.Next()
		if tt == css.ErrorToken {
			break
		}
		st.tokens = append(st.tokens, Token{Type: tt, Data: string(data), Offset: offset})
		offset += len(data)
	}
	return st
}

func (s *stream) eof() bool {
	return s.pos >= len(s.tokens)
}

func (s *stream) peek() Token {
	if s.eof() {
		return Token{Type: css.ErrorToken, Offset: s.size}
	}
	return s.tokens[s.pos]
}

func (s *stream) next() Token {
	t := s.peek()
	if !s.eof() {
		s.pos++
	}
	return t
}

// skipRun consumes tokens matching run exactly (type and text) and reports
// whether it did.
func (s *stream) skipRun(run []Token) bool {
	if s.pos+len(run) > len(s.tokens) {
		return false
	}
	for i, want := range run {
		if t := s.tokens[s.pos+i]; t.Type != want.Type || t.Data != want.Data {
			return false
		}
	}
	s.pos += len(run)
	return true
}

// CDATA section markers wrapping SVG style sheets, as the lexer splits them.
var (
	cdataOpen = []Token{
		{Type: css.DelimToken, Data: "<"},
		{Type: css.DelimToken, Data: "!"},
		{Type: css.LeftBracketToken, Data: "["},
		{Type: css.IdentToken, Data: "CDATA"},
		{Type: css.LeftBracketToken, Data: "["},
	}
	cdataClose = []Token{
		{Type: css.RightBracketToken, Data: "]"},
		{Type: css.RightBracketToken, Data: "]"},
		{Type: css.DelimToken, Data: ">"},
	}
)

func (s *stream) skipInsignificant() {
	for !s.eof() && s.peek().insignificant() {
		s.pos++
	}
}

// parseItems parses a rule list until end of input or, when nested, until the
// closing brace (which is left in the stream).
func (p *Parser) parseItems(st *stream, sheet *Stylesheet, nested bool) []StylesheetItem {
	var items []StylesheetItem
	for {
		st.skipInsignificant()
		t := st.peek()
		switch t.Type {
		case css.ErrorToken:
			return items
		case css.CDOToken, css.CDCToken, css.SemicolonToken:
			st.next()
		case css.RightBraceToken:
			if nested {
				return items
			}
			sheet.Warnings = append(sheet.Warnings, "unbalanced '}' ignored")
			st.next()
		case css.AtKeywordToken:
			if item, ok := p.parseAtRule(st, sheet); ok {
				items = append(items, item)
			}
		default:
			if st.skipRun(cdataOpen) || st.skipRun(cdataClose) {
				continue
			}
			if rule := p.parseQualifiedRule(st, sheet); rule != nil {
				items = append(items, StylesheetItem{Rule: rule})
			}
		}
	}
}

// parseAtRule: at-keyword prelude ( ';' | block ).
func (p *Parser) parseAtRule(st *stream, sheet *Stylesheet) (StylesheetItem, bool) {
	kw := st.next()
	name := strings.ToLower(strings.TrimPrefix(kw.Data, "@"))
	prelude, term := p.parsePrelude(st, true)

	if term.Type != css.LeftBraceToken {
		// statement at-rule (@import, @charset) or truncated input
		return StylesheetItem{}, false
	}
	bodyStart := term.end()

	switch {
	case name == "font-face":
		ff := &FontFace{Start: kw.Offset, BodyStart: bodyStart, LastSemicolon: -1}
		ff.Declarations = p.parseDeclarationList(st, &sheet.Warnings, false)
		ff.LastSemicolon = lastSemicolon(st.tokens, bodyStart, st.peek().Offset)
		ff.BodyEnd, ff.End, ff.Closed = p.closeBlock(st, sheet, "@font-face")
		p.log.Debug("Parsed @font-face", zap.Int("offset", ff.Start), zap.Int("declarations", len(ff.Declarations)), zap.Bool("closed", ff.Closed))
		return StylesheetItem{FontFace: ff}, true
	case groupRules[name]:
		ar := &AtRule{Name: name, Prelude: prelude, Start: kw.Offset}
		ar.Items = p.parseItems(st, sheet, true)
		_, ar.End, ar.Closed = p.closeBlock(st, sheet, "@"+name)
		return StylesheetItem{AtRule: ar}, true
	default:
		ar := &AtRule{Name: name, Prelude: prelude, Start: kw.Offset}
		ar.Declarations = p.parseDeclarationList(st, &sheet.Warnings, false)
		_, ar.End, ar.Closed = p.closeBlock(st, sheet, "@"+name)
		return StylesheetItem{AtRule: ar}, true
	}
}

// parseQualifiedRule: prelude block.
func (p *Parser) parseQualifiedRule(st *stream, sheet *Stylesheet) *Rule {
	start := st.peek().Offset
	prelude, term := p.parsePrelude(st, false)
	if term.Type != css.LeftBraceToken {
		if term.Type != css.ErrorToken {
			sheet.Warnings = append(sheet.Warnings, "rule without block: "+prelude)
		}
		return nil
	}
	rule := &Rule{Prelude: prelude, Start: start}
	rule.Declarations = p.parseDeclarationList(st, &sheet.Warnings, false)
	_, rule.End, rule.Closed = p.closeBlock(st, sheet, prelude)
	return rule
}

// parsePrelude consumes tokens up to and including '{' (or ';' for at-rules,
// or '}' which is left in the stream) and returns the trimmed prelude text and
// the terminating token.
func (p *Parser) parsePrelude(st *stream, atRule bool) (string, Token) {
	var sb strings.Builder
	depth := 0
	for {
		t := st.peek()
		switch t.Type {
		case css.ErrorToken:
			return strings.TrimSpace(sb.String()), t
		case css.LeftParenthesisToken, css.FunctionToken, css.LeftBracketToken:
			depth++
		case css.RightParenthesisToken, css.RightBracketToken:
			if depth > 0 {
				depth--
			}
		case css.LeftBraceToken:
			if depth == 0 {
				st.next()
				return strings.TrimSpace(sb.String()), t
			}
		case css.RightBraceToken:
			if depth == 0 {
				return strings.TrimSpace(sb.String()), t
			}
		case css.SemicolonToken:
			if atRule && depth == 0 {
				st.next()
				return strings.TrimSpace(sb.String()), t
			}
		}
		st.next()
		if t.Type == css.CommentToken {
			continue
		}
		sb.WriteString(t.Data)
	}
}

// closeBlock consumes the '}' ending a block. It returns the offset of the
// brace, the offset past it and whether the block was actually closed.
func (p *Parser) closeBlock(st *stream, sheet *Stylesheet, what string) (int, int, bool) {
	t := st.peek()
	if t.Type == css.RightBraceToken {
		st.next()
		return t.Offset, t.end(), true
	}
	sheet.Warnings = append(sheet.Warnings, "unterminated block: "+what)
	return st.size, st.size, false
}

// parseDeclarationList parses declarations until end of input or the closing
// brace of the enclosing block (left in the stream). With inline set a stray
// '}' is skipped instead.
func (p *Parser) parseDeclarationList(st *stream, warnings *[]string, inline bool) Declarations {
	var decls Declarations
	for {
		st.skipInsignificant()
		t := st.peek()
		switch t.Type {
		case css.ErrorToken:
			return decls
		case css.RightBraceToken:
			if !inline {
				return decls
			}
			*warnings = append(*warnings, "unbalanced '}' ignored")
			st.next()
		case css.SemicolonToken:
			st.next()
		case css.IdentToken:
			if d, ok := p.parseDeclaration(st); ok {
				decls = append(decls, d)
			} else {
				*warnings = append(*warnings, "malformed declaration: "+t.Data)
			}
		case css.CustomPropertyNameToken:
			// custom properties are not resolved
			p.skipComponent(st)
		case css.LeftBraceToken:
			*warnings = append(*warnings, "nested block ignored")
			p.skipBlock(st)
		default:
			*warnings = append(*warnings, "unexpected token in declaration list: "+t.Data)
			p.skipComponent(st)
		}
	}
}

// parseDeclaration: ident ws* ':' value.
func (p *Parser) parseDeclaration(st *stream) (Declaration, bool) {
	name := st.next()
	st.skipInsignificant()
	if st.peek().Type != css.ColonToken {
		p.skipComponent(st)
		return Declaration{}, false
	}
	st.next()

	d := Declaration{Property: strings.ToLower(name.Data), Start: name.Offset}
	var value []Token
	depth := 0
loop:
	for {
		t := st.peek()
		switch t.Type {
		case css.ErrorToken:
			break loop
		case css.SemicolonToken, css.RightBraceToken:
			if depth == 0 {
				break loop
			}
			if t.Type == css.RightBraceToken {
				depth--
			}
		case css.LeftBraceToken, css.LeftParenthesisToken, css.FunctionToken, css.LeftBracketToken:
			depth++
		case css.RightParenthesisToken, css.RightBracketToken:
			if depth > 0 {
				depth--
			}
		}
		value = append(value, st.next())
	}

	value = trimTokens(value)
	value, d.Important = stripImportant(value)
	d.Value = value
	d.End = name.end()
	if len(value) > 0 {
		d.End = value[len(value)-1].end()
	}
	return d, true
}

// skipComponent skips tokens up to the next ';' at depth 0 (consumed) or the
// closing '}' of the enclosing block (left in the stream).
func (p *Parser) skipComponent(st *stream) {
	depth := 0
	for {
		t := st.peek()
		switch t.Type {
		case css.ErrorToken:
			return
		case css.SemicolonToken:
			if depth == 0 {
				st.next()
				return
			}
		case css.RightBraceToken:
			if depth == 0 {
				return
			}
			depth--
		case css.LeftBraceToken:
			depth++
		}
		st.next()
	}
}

// skipBlock skips a balanced {...} block starting at the current '{'.
func (p *Parser) skipBlock(st *stream) {
	depth := 0
	for {
		t := st.next()
		switch t.Type {
		case css.ErrorToken:
			return
		case css.LeftBraceToken:
			depth++
		case css.RightBraceToken:
			depth--
			if depth <= 0 {
				return
			}
		}
	}
}

func trimTokens(tokens []Token) []Token {
	for len(tokens) > 0 && tokens[0].insignificant() {
		tokens = tokens[1:]
	}
	for len(tokens) > 0 && tokens[len(tokens)-1].insignificant() {
		tokens = tokens[:len(tokens)-1]
	}
	return tokens
}

// stripImportant removes a trailing "! important" from value tokens.
func stripImportant(tokens []Token) ([]Token, bool) {
	n := len(tokens)
	if n < 2 || tokens[n-1].Type != css.IdentToken || !strings.EqualFold(tokens[n-1].Data, "important") {
		return tokens, false
	}
	i := n - 2
	for i >= 0 && tokens[i].insignificant() {
		i--
	}
	if i < 0 || tokens[i].Type != css.DelimToken || tokens[i].Data != "!" {
		return tokens, false
	}
	return trimTokens(tokens[:i]), true
}

// lastSemicolon finds the offset of the last ';' at brace depth 0 among
// tokens in [from, to).
func lastSemicolon(tokens []Token, from, to int) int {
	last, depth := -1, 0
	for _, t := range tokens {
		if t.Offset < from {
			continue
		}
		if t.Offset >= to {
			break
		}
		switch t.Type {
		case css.LeftBraceToken:
			depth++
		case css.RightBraceToken:
			depth--
		case css.SemicolonToken:
			if depth == 0 {
				last = t.Offset
			}
		}
	}
	return last
}
