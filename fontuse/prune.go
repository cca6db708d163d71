package fontuse

import (
	"regexp"
	"strings"

	"go.uber.org/zap"

	"fontprune/css"
	"fontprune/fonts"
	"fontprune/markup"
)

// CompatibilityProperty is inserted into every retained @font-face block.
const CompatibilityProperty = "mso-font-alt: 'Arial';"

const compatibilityMarker = "mso-font-alt"

var blankLines = regexp.MustCompile(`\n\s*\n\s*\n`)

// faceTriplet returns the variant declared by an @font-face block. Blocks
// that are unterminated or have no usable family yield false and must be left
// alone.
func faceTriplet(ff *css.FontFace) (fonts.Triplet, bool) {
	if !ff.Closed {
		return fonts.Triplet{}, false
	}
	fam, ok := ff.Family()
	if !ok {
		return fonts.Triplet{}, false
	}
	if fam = fonts.NormalizeFamily(fam); !fonts.UsableFamily(fam) {
		return fonts.Triplet{}, false
	}
	return fonts.Triplet{
		Family: fam,
		Weight: fonts.NormalizeWeight(ff.Value("font-weight")),
		Style:  fonts.NormalizeStyle(ff.Value("font-style")),
	}, true
}

// Prune removes from text (which sheet was parsed from) every @font-face
// block whose variant is not in used. It returns the new text and the removed
// variants.
func Prune(text string, sheet *css.Stylesheet, used *fonts.Set) (string, *fonts.Set) {
	removed := fonts.NewSet()

	var (
		sb   strings.Builder
		last int
	)
	for _, ff := range sheet.FontFaces() {
		t, ok := faceTriplet(ff)
		if !ok || used.Contains(t) {
			continue
		}
		sb.WriteString(text[last:ff.Start])
		last = ff.End
		removed.Add(t)
	}
	if removed.Len() == 0 {
		return text, removed
	}
	sb.WriteString(text[last:])
	return blankLines.ReplaceAllString(sb.String(), "\n\n"), removed
}

// Annotate inserts CompatibilityProperty after the last semicolon of every
// @font-face block in text that declares a family and does not have it yet.
// It returns the new text and the number of annotated blocks.
func Annotate(text string, sheet *css.Stylesheet) (string, int) {
	var (
		sb    strings.Builder
		last  int
		count int
	)
	for _, ff := range sheet.FontFaces() {
		if !ff.Closed || ff.LastSemicolon < 0 || !ff.Declarations.Has("font-family") {
			continue
		}
		if strings.Contains(strings.ToLower(text[ff.BodyStart:ff.BodyEnd]), compatibilityMarker) {
			continue
		}
		pos := ff.LastSemicolon + 1
		sb.WriteString(text[last:pos])
		sb.WriteString(" " + CompatibilityProperty)
		last = pos
		count++
	}
	if count == 0 {
		return text, 0
	}
	sb.WriteString(text[last:])
	return sb.String(), count
}

// Result is the outcome of processing a document.
type Result struct {
	Output    string
	Used      *fonts.Set
	Removed   *fonts.Set
	Kept      *fonts.Set // variants of @font-face blocks left in the output
	Annotated int
	// Sheets are parsed style blocks of the input, in document order.
	Sheets []*css.Stylesheet
}

// Processor runs the whole pipeline on a parsed document.
type Processor struct {
	parser    *css.Parser
	collector *Collector
	log       *zap.Logger
}

func NewProcessor(mode Inheritance, log *zap.Logger) *Processor {
	if log == nil {
		log = zap.NewNop()
	}
	parser := css.NewParser(log)
	return &Processor{
		parser:    parser,
		collector: NewCollector(parser, mode, log),
		log:       log.Named("fontuse"),
	}
}

// Process collects used variants, prunes unused @font-face blocks and
// annotates the remaining ones. The document itself is not modified.
func (p *Processor) Process(doc *markup.Document) *Result {
	sheets := make([]*css.Stylesheet, len(doc.StyleBlocks))
	for i, blk := range doc.StyleBlocks {
		sheets[i] = p.parser.Parse(blk.Text)
	}

	res := &Result{
		Used:    p.collector.Collect(doc, sheets),
		Removed: fonts.NewSet(),
		Kept:    fonts.NewSet(),
		Sheets:  sheets,
	}

	replacements := make(map[int]string)
	for i, blk := range doc.StyleBlocks {
		text, removed := Prune(blk.Text, sheets[i], res.Used)
		res.Removed.Merge(removed)

		sheet := sheets[i]
		if removed.Len() > 0 {
			// offsets moved
			sheet = p.parser.Parse(text)
		}
		for _, ff := range sheet.FontFaces() {
			if t, ok := faceTriplet(ff); ok {
				res.Kept.Add(t)
			}
		}
		text, n := Annotate(text, sheet)
		res.Annotated += n

		if text != blk.Text {
			replacements[i] = text
		}
		p.log.Debug("Style block processed", zap.Int("block", i), zap.Int("rules", len(sheets[i].Rules())), zap.Int("faces", len(sheets[i].FontFaces())), zap.Int("removed", removed.Len()), zap.Int("annotated", n))
	}
	res.Output = doc.Rewrite(replacements)

	p.log.Debug("Document processed", zap.Int("used", res.Used.Len()), zap.Int("kept", res.Kept.Len()), zap.Int("removed", res.Removed.Len()), zap.Int("annotated", res.Annotated))
	return res
}
