// Package fonts defines font variant triplets and the normalization rules used
// to compare font usage sites with @font-face declarations.
package fonts

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Style is the normalized font-style of a variant.
type Style int

const (
	StyleNormal Style = iota
	StyleItalic
)

func (s Style) String() string {
	if s == StyleItalic {
		return "italic"
	}
	return "normal"
}

const (
	DefaultWeight = 400
	MinWeight     = 100
	MaxWeight     = 900
)

// Triplet identifies a single font variant.
type Triplet struct {
	Family string
	Weight int
	Style  Style
}

// Key returns the identity used for matching. Family names are compared
// case-insensitively.
func (t Triplet) Key() Triplet {
	return Triplet{Family: strings.ToLower(t.Family), Weight: t.Weight, Style: t.Style}
}

func (t Triplet) String() string {
	return fmt.Sprintf("%s | %d | %s", t.Family, t.Weight, t.Style)
}

var genericFamilies = map[string]bool{
	"serif":         true,
	"sans-serif":    true,
	"monospace":     true,
	"cursive":       true,
	"fantasy":       true,
	"system-ui":     true,
	"ui-serif":      true,
	"ui-sans-serif": true,
	"ui-monospace":  true,
	"ui-rounded":    true,
	"emoji":         true,
	"math":          true,
	"fangsong":      true,
}

// CSS-wide keywords never name a family either.
var globalKeywords = map[string]bool{
	"inherit": true,
	"initial": true,
	"unset":   true,
	"revert":  true,
}

// IsGeneric reports whether family is a CSS generic family keyword.
func IsGeneric(family string) bool {
	return genericFamilies[strings.ToLower(family)]
}

// NormalizeFamily strips surrounding quotes and whitespace from a single
// family name.
func NormalizeFamily(family string) string {
	return strings.Trim(family, " '\"\t\r\n\f")
}

// UsableFamily reports whether a normalized family name can correspond to an
// embedded font.
func UsableFamily(family string) bool {
	if family == "" {
		return false
	}
	return !IsGeneric(family) && !globalKeywords[strings.ToLower(family)]
}

// NormalizeWeight maps a font-weight value to a multiple of 100 in
// [MinWeight, MaxWeight]. Empty and unrecognized values yield DefaultWeight.
func NormalizeWeight(value string) int {
	v := strings.ToLower(strings.TrimSpace(value))
	switch v {
	case "", "normal":
		return DefaultWeight
	case "bold", "bolder":
		return 700
	case "lighter":
		return 300
	}
	n, err := strconv.Atoi(v)
	switch {
	case errors.Is(err, strconv.ErrRange):
		// too many digits, still a number
		if strings.HasPrefix(v, "-") {
			return MinWeight
		}
		return MaxWeight
	case err != nil:
		return DefaultWeight
	}
	n = min(max(n, MinWeight), MaxWeight)
	// half-up: 650 -> 700
	return int(math.Floor(float64(n)/100+0.5)) * 100
}

// NormalizeStyle maps a font-style value to StyleItalic or StyleNormal.
// Oblique, with or without an angle, counts as italic.
func NormalizeStyle(value string) Style {
	v := strings.ToLower(strings.TrimSpace(value))
	if v == "italic" || v == "oblique" || strings.HasPrefix(v, "oblique ") {
		return StyleItalic
	}
	return StyleNormal
}
