package addrrange

import (
	"sort"
	"strings"
)

// Set is an ordered collection of non-empty ranges in which no two
// elements overlap or touch: inserting a range that does coalesces it
// with its neighbors. Elements are sorted by upper bound.
//
// A Set is owned by its caller and is not safe for concurrent use.
type Set struct {
	ranges []Range
}

// NewSet returns a set holding the given ranges, coalesced as needed.
func NewSet(rr ...Range) *Set {
	s := &Set{}
	for _, r := range rr {
		s.Insert(r)
	}
	return s
}

// Insert adds r to the set. r is merged with the first eligible element
// and the merged element then absorbs every following element it now
// overlaps or touches, so an insertion bridging two separate runs leaves
// a single element. Inserting an empty range is a no-op.
func (s *Set) Insert(r Range) {
	if r.IsEmpty() {
		return
	}
	for i := range s.ranges {
		if !s.ranges[i].CanMerge(r) {
			continue
		}
		s.ranges[i].Merge(r)
		// Every element before i is not mergeable with the grown
		// element; the ones after it may have become so.
		j := i + 1
		for j < len(s.ranges) && s.ranges[i].CanMerge(s.ranges[j]) {
			s.ranges[i].Merge(s.ranges[j])
			j++
		}
		s.ranges = append(s.ranges[:i+1], s.ranges[j:]...)
		return
	}
	i := sort.Search(len(s.ranges), func(i int) bool {
		return r.Less(s.ranges[i])
	})
	s.ranges = append(s.ranges, Range{})
	copy(s.ranges[i+1:], s.ranges[i:])
	s.ranges[i] = r
}

// Remove deletes the addresses of r from the set, splitting elements
// that straddle a boundary of r. Removing an empty range is a no-op.
func (s *Set) Remove(r Range) {
	if r.IsEmpty() {
		return
	}
	out := make([]Range, 0, len(s.ranges)+1)
	for _, e := range s.ranges {
		if !e.Overlaps(r) {
			out = append(out, e)
			continue
		}
		if e.From() < r.From() {
			out = append(out, FromTo(e.From(), r.From()-1))
		}
		if e.To() > r.To() {
			out = append(out, FromTo(r.To()+1, e.To()))
		}
	}
	s.ranges = out
}

// Len returns the number of ranges in the set.
func (s *Set) Len() int {
	return len(s.ranges)
}

// Ranges returns a copy of the ranges in the set, sorted by upper bound.
func (s *Set) Ranges() []Range {
	rr := make([]Range, len(s.ranges))
	copy(rr, s.ranges)
	return rr
}

// Covers reports whether the address addr falls in one of the ranges of
// the set.
func (s *Set) Covers(addr uint64) bool {
	i := sort.Search(len(s.ranges), func(i int) bool {
		return addr <= s.ranges[i].To()
	})
	return i < len(s.ranges) && s.ranges[i].Covers(addr)
}

// Gaps returns the ranges of window not covered by the set, sorted by
// upper bound.
func (s *Set) Gaps(window Range) []Range {
	if window.IsEmpty() {
		return nil
	}
	var gaps []Range
	next := window.From()
	for _, e := range s.ranges {
		if e.To() < next {
			continue
		}
		if e.From() > window.To() {
			break
		}
		if e.From() > next {
			gaps = append(gaps, FromTo(next, e.From()-1))
		}
		if e.To() >= window.To() {
			return gaps
		}
		next = e.To() + 1
	}
	return append(gaps, FromTo(next, window.To()))
}

// Equal reports whether both sets cover the same addresses.
func (s *Set) Equal(other *Set) bool {
	if len(s.ranges) != len(other.ranges) {
		return false
	}
	for i := range s.ranges {
		if s.ranges[i] != other.ranges[i] {
			return false
		}
	}
	return true
}

func (s *Set) String() string {
	rr := make([]string, 0, len(s.ranges))
	for _, e := range s.ranges {
		rr = append(rr, e.String())
	}
	return "[" + strings.Join(rr, ",") + "]"
}
