// Package fontuse finds which @font-face variants of a document are used,
// removes the rest and annotates what is left.
package fontuse

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"fontprune/css"
	"fontprune/fonts"
	"fontprune/markup"
)

// Inheritance selects how weight/style-only inline declarations are
// attributed to a previously declared family.
type Inheritance int

const (
	// InheritLinear carries the last seen family through the whole document
	// in source order, across siblings.
	InheritLinear Inheritance = iota
	// InheritScoped passes the context to descendants only.
	InheritScoped
)

func (i Inheritance) String() string {
	if i == InheritScoped {
		return "scoped"
	}
	return "linear"
}

// ParseInheritance converts configuration value to Inheritance.
func ParseInheritance(s string) (Inheritance, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "linear":
		return InheritLinear, nil
	case "scoped":
		return InheritScoped, nil
	}
	return InheritLinear, fmt.Errorf("unknown inheritance mode %q", s)
}

// usage is what a single declaration list says about fonts.
type usage struct {
	families  []string
	weight    string
	hasWeight bool
	style     string
	hasStyle  bool
}

func usageOf(decls css.Declarations) usage {
	var u usage
	if d, ok := decls.Get("font-family"); ok {
		for _, fam := range d.List() {
			if fam = fonts.NormalizeFamily(fam); fonts.UsableFamily(fam) {
				u.families = append(u.families, fam)
			}
		}
	}
	if d, ok := decls.Get("font-weight"); ok {
		u.weight, u.hasWeight = d.Text(), true
	}
	if d, ok := decls.Get("font-style"); ok {
		u.style, u.hasStyle = d.Text(), true
	}
	return u
}

// direct returns a triplet for every family of the declaration list.
func (u usage) direct() []fonts.Triplet {
	if len(u.families) == 0 {
		return nil
	}
	w, s := fonts.NormalizeWeight(u.weight), fonts.NormalizeStyle(u.style)
	out := make([]fonts.Triplet, 0, len(u.families))
	for _, fam := range u.families {
		out = append(out, fonts.Triplet{Family: fam, Weight: w, Style: s})
	}
	return out
}

// fontContext is the family, weight and style in effect for an element.
type fontContext struct {
	family string
	weight int
	style  fonts.Style
}

// apply returns the context updated by u and whether the element uses a
// variant worth recording.
func (fc fontContext) apply(u usage) (fontContext, bool) {
	if len(u.families) > 0 {
		return fontContext{
			family: u.families[0],
			weight: fonts.NormalizeWeight(u.weight),
			style:  fonts.NormalizeStyle(u.style),
		}, true
	}
	if fc.family == "" {
		return fc, false
	}
	changed := false
	if u.hasWeight {
		fc.weight, changed = fonts.NormalizeWeight(u.weight), true
	}
	if u.hasStyle {
		fc.style, changed = fonts.NormalizeStyle(u.style), true
	}
	return fc, changed
}

func (fc fontContext) triplet() fonts.Triplet {
	return fonts.Triplet{Family: fc.family, Weight: fc.weight, Style: fc.style}
}

// Collector builds the set of font variants used by a document.
type Collector struct {
	parser *css.Parser
	mode   Inheritance
	log    *zap.Logger
}

func NewCollector(parser *css.Parser, mode Inheritance, log *zap.Logger) *Collector {
	if log == nil {
		log = zap.NewNop()
	}
	if parser == nil {
		parser = css.NewParser(log)
	}
	return &Collector{parser: parser, mode: mode, log: log.Named("collector")}
}

// Collect returns variants referenced by inline style attributes of the
// document and by rules of the given stylesheets.
func (c *Collector) Collect(doc *markup.Document, sheets []*css.Stylesheet) *fonts.Set {
	used := c.CollectInline(doc.Root)
	for _, sheet := range sheets {
		used.Merge(c.CollectRules(sheet))
	}
	return used
}

// CollectInline walks the element tree threading a font context through it.
func (c *Collector) CollectInline(root *markup.Node) *fonts.Set {
	var (
		used     = fonts.NewSet()
		ctx      fontContext
		saved    []fontContext
		inherits int
	)

	enter := func(n *markup.Node) {
		if c.mode == InheritScoped {
			saved = append(saved, ctx)
		}
		if !n.HasStyle {
			return
		}
		u := usageOf(c.parser.ParseInline(n.Style))
		for _, t := range u.direct() {
			used.Add(t)
		}
		var emit bool
		if ctx, emit = ctx.apply(u); emit {
			if used.Add(ctx.triplet()) && len(u.families) == 0 {
				inherits++
				c.log.Debug("Variant attributed by inheritance", zap.String("element", n.Tag), zap.Stringer("variant", ctx.triplet()))
			}
		}
	}

	var leave func(*markup.Node)
	if c.mode == InheritScoped {
		leave = func(*markup.Node) {
			ctx = saved[len(saved)-1]
			saved = saved[:len(saved)-1]
		}
	}

	root.Walk(enter, leave)
	c.log.Debug("Inline styles collected", zap.Stringer("mode", c.mode), zap.Int("variants", used.Len()), zap.Int("inherited", inherits))
	return used
}

// CollectRules returns variants referenced by the stylesheet's rules.
// @font-face blocks are not usage sites.
func (c *Collector) CollectRules(sheet *css.Stylesheet) *fonts.Set {
	used := fonts.NewSet()
	for _, decls := range sheet.DeclarationBlocks() {
		for _, t := range usageOf(decls).direct() {
			used.Add(t)
		}
	}
	return used
}
