package fonts

import (
	"testing"
)

func TestNormalizeWeight(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"", 400},
		{"normal", 400},
		{"bold", 700},
		{"BOLD", 700},
		{"bolder", 700},
		{"lighter", 300},
		{"300", 300},
		{" 300 ", 300},
		{"650", 700},
		{"649", 600},
		{"50", 100},
		{"-5", 100},
		{"1000", 900},
		{"950", 900},
		{"99999999999999999999", 900},
		{"-99999999999999999999", 100},
		{"+99999999999999999999", 900},
		{"garbage", 400},
		{"350.5", 400},
		{"100 900", 400},
	}
	for _, tt := range tests {
		if got := NormalizeWeight(tt.in); got != tt.want {
			t.Errorf("NormalizeWeight(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeStyle(t *testing.T) {
	tests := []struct {
		in   string
		want Style
	}{
		{"", StyleNormal},
		{"normal", StyleNormal},
		{"italic", StyleItalic},
		{"Italic", StyleItalic},
		{"OBLIQUE", StyleItalic},
		{"oblique 10deg", StyleItalic},
		{"slanted", StyleNormal},
	}
	for _, tt := range tests {
		if got := NormalizeStyle(tt.in); got != tt.want {
			t.Errorf("NormalizeStyle(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeFamily(t *testing.T) {
	tests := map[string]string{
		`'Foo'`:         "Foo",
		`"Open Sans"`:   "Open Sans",
		"  Bar  ":       "Bar",
		"\t'Baz'\n":     "Baz",
		`"`:             "",
		"Roboto Mono":   "Roboto Mono",
		`'Foo Bar'  `:   "Foo Bar",
		`Times New Rom`: "Times New Rom",
	}
	for in, want := range tests {
		if got := NormalizeFamily(in); got != want {
			t.Errorf("NormalizeFamily(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestUsableFamily(t *testing.T) {
	for _, fam := range []string{"serif", "Sans-Serif", "monospace", "system-ui", "fangsong", "inherit", ""} {
		if UsableFamily(fam) {
			t.Errorf("UsableFamily(%q) = true, want false", fam)
		}
	}
	for _, fam := range []string{"Foo", "Arial", "serif-display"} {
		if !UsableFamily(fam) {
			t.Errorf("UsableFamily(%q) = false, want true", fam)
		}
	}
	if !IsGeneric("SERIF") || IsGeneric("inherit") {
		t.Error("IsGeneric must only match generic family keywords")
	}
}

func TestSet(t *testing.T) {
	s := NewSet()
	if !s.Add(Triplet{"Foo", 700, StyleNormal}) {
		t.Fatal("first Add should report insertion")
	}
	if s.Add(Triplet{"foo", 700, StyleNormal}) {
		t.Error("family comparison must be case-insensitive")
	}
	if !s.Contains(Triplet{"FOO", 700, StyleNormal}) {
		t.Error("Contains must be case-insensitive")
	}
	if s.Contains(Triplet{"Foo", 700, StyleItalic}) {
		t.Error("different style must not match")
	}

	other := NewSet(Triplet{"Font10", 400, StyleNormal}, Triplet{"Font2", 400, StyleNormal}, Triplet{"Foo", 400, StyleItalic}, Triplet{"Foo", 400, StyleNormal})
	s.Merge(other)
	s.Merge(nil)

	got := s.Sorted()
	want := []Triplet{
		{"Font2", 400, StyleNormal},
		{"Font10", 400, StyleNormal},
		{"Foo", 400, StyleNormal},
		{"Foo", 400, StyleItalic},
		{"Foo", 700, StyleNormal},
	}
	if len(got) != len(want) {
		t.Fatalf("Sorted() returned %d items, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Sorted()[%d] = %v, want %v", i, got[i], want[i])
		}
	}
	if got[0].Family != "Font2" || s.Sorted()[4].Family != "Foo" {
		t.Error("first spelling must be kept")
	}
}

func TestSet_Nil(t *testing.T) {
	var s *Set
	if s.Len() != 0 || s.Contains(Triplet{Family: "Foo"}) || s.Sorted() != nil {
		t.Error("nil set must behave as empty")
	}
}

func TestTripletString(t *testing.T) {
	tr := Triplet{"Foo", 700, StyleItalic}
	if got := tr.String(); got != "Foo | 700 | italic" {
		t.Errorf("String() = %q", got)
	}
}
