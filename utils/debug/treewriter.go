// Package debug helps producing human readable dumps of parsed documents for
// debug reports.
package debug

import (
	"fmt"
	"strconv"
	"strings"
)

// MaxText is the longest text value TextBlock prints in full. Style sheets
// can be huge, dumps are for structure.
const MaxText = 120

type TreeWriter struct {
	w *strings.Builder
}

func NewTreeWriter() *TreeWriter {
	return &TreeWriter{
		w: &strings.Builder{},
	}
}

func (tw TreeWriter) String() string {
	return tw.w.String()
}

func (tw TreeWriter) indent(depth int) {
	for range depth {
		tw.w.WriteString("  ")
	}
}

func (tw TreeWriter) Line(depth int, format string, args ...any) {
	tw.indent(depth)
	fmt.Fprintf(tw.w, format, args...)
	tw.w.WriteByte('\n')
}

// TextBlock writes quoted value, long values are cut to MaxText bytes with
// original length noted.
func (tw TreeWriter) TextBlock(depth int, label, value string) {
	tw.indent(depth)
	tw.w.WriteString(label)
	tw.w.WriteString(": ")
	tw.w.WriteString(encodeText(value))
	tw.w.WriteByte('\n')
}

// Span writes label with source byte range.
func (tw TreeWriter) Span(depth int, label string, start, end int) {
	tw.Line(depth, "%s [%d:%d]", label, start, end)
}

func encodeText(raw string) string {
	if raw == "" {
		return raw
	}
	if len(raw) <= MaxText {
		return strconv.Quote(raw)
	}
	cut := MaxText
	// do not split multibyte sequence
	for cut > 0 && !isRuneStart(raw[cut]) {
		cut--
	}
	return strconv.Quote(raw[:cut]) + "... (" + strconv.Itoa(len(raw)) + " bytes)"
}

func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}
