package fonts

import (
	"maps"
	"slices"
	"strings"

	"github.com/maruel/natural"
)

// Set is a de-duplicated collection of triplets. The first spelling of a
// family seen is the one kept.
type Set struct {
	items map[Triplet]Triplet
}

func NewSet(triplets ...Triplet) *Set {
	s := &Set{items: make(map[Triplet]Triplet)}
	for _, t := range triplets {
		s.Add(t)
	}
	return s
}

// Add inserts t and reports whether it was not present before.
func (s *Set) Add(t Triplet) bool {
	k := t.Key()
	if _, ok := s.items[k]; ok {
		return false
	}
	s.items[k] = t
	return true
}

// Merge adds all triplets from other.
func (s *Set) Merge(other *Set) {
	if other == nil {
		return
	}
	for _, t := range other.items {
		s.Add(t)
	}
}

func (s *Set) Contains(t Triplet) bool {
	if s == nil {
		return false
	}
	_, ok := s.items[t.Key()]
	return ok
}

func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.items)
}

// Sorted returns the triplets ordered by family (natural order), weight and
// style.
func (s *Set) Sorted() []Triplet {
	if s == nil {
		return nil
	}
	out := slices.Collect(maps.Values(s.items))
	slices.SortFunc(out, compare)
	return out
}

func compare(a, b Triplet) int {
	if a.Family != b.Family {
		la, lb := strings.ToLower(a.Family), strings.ToLower(b.Family)
		if la != lb {
			if natural.Less(la, lb) {
				return -1
			}
			return 1
		}
		return strings.Compare(a.Family, b.Family)
	}
	if a.Weight != b.Weight {
		return a.Weight - b.Weight
	}
	return int(a.Style) - int(b.Style)
}
