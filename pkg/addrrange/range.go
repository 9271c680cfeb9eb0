package addrrange

import (
	"errors"
	"fmt"
	"math/bits"
	"strconv"
	"strings"
)

// ErrOverflow is returned when a range would extend past the top of the
// 64 bit address space.
var ErrOverflow = errors.New("range overflows the 64 bit address space")

// Range is a closed interval [from, to] over 64 bit addresses, or the
// empty range. Ranges never wrap around 0 and a single Range must not
// span the full 64 bit space: the size of such a range is not
// representable and New refuses to construct it.
type Range struct {
	from uint64
	to   uint64
}

// Empty returns the canonical empty range.
func Empty() Range {
	return Range{from: 1, to: 0}
}

// New returns the range [from, from+size-1]. size may be 0, which yields
// an empty range positioned at from. ErrOverflow is returned when the
// range would extend past the top of the address space.
func New(from, size uint64) (Range, error) {
	end, carry := bits.Add64(from, size, 0)
	if carry != 0 {
		return Range{}, ErrOverflow
	}
	if from == 0 && size == 0 {
		// [0, -1] cannot be encoded, see Range.
		return Range{}, ErrOverflow
	}
	return Range{from: from, to: end - 1}.check(), nil
}

// MustNew is like New but panics on overflow. It is intended for callers
// that already proved the range fits.
func MustNew(from, size uint64) Range {
	r, err := New(from, size)
	if err != nil {
		panic(fmt.Sprintf("addrrange: range from %d size %d: %v", from, size, err))
	}
	return r
}

// FromTo returns the range [from, to]. It panics when to precedes from,
// except for to == from-1 which yields the empty range at from. It also
// panics on the full-span range [0, MaxUint64], which Range cannot
// represent.
func FromTo(from, to uint64) Range {
	if from == 0 && to == ^uint64(0) {
		panic("addrrange: range 0-18446744073709551615 spans the full 64 bit address space")
	}
	return Range{from: from, to: to}.check()
}

func ParseRange(s string) (Range, error) {
	h := strings.IndexByte(s, '-')
	if h == -1 {
		return Range{}, fmt.Errorf("no hyphen in range %q", s)
	}
	from, to := s[:h], s[h+1:]
	fromUint64, err := strconv.ParseUint(from, 10, 64)
	if err != nil {
		return Range{}, fmt.Errorf("invalid from address %q in range %q", from, s)
	}
	toUint64, err := strconv.ParseUint(to, 10, 64)
	if err != nil {
		return Range{}, fmt.Errorf("invalid to address %q in range %q", to, s)
	}
	if toUint64 < fromUint64 {
		return Range{}, fmt.Errorf("to address precedes from address in range %q", s)
	}
	return Range{from: fromUint64, to: toUint64}, nil
}

// check panics when r violates the range invariant: either from <= to
// (non-empty) or from == to+1 (empty).
func (r Range) check() Range {
	if r.from > r.to && r.from != r.to+1 {
		panic(fmt.Sprintf("addrrange: malformed range {%d, %d}", r.from, r.to))
	}
	return r
}

// IsEmpty reports whether r is empty.
func (r Range) IsEmpty() bool {
	r.check()
	return r.from > r.to
}

// IsZero reports whether r is the zero Range. The zero value doubles as
// "no range yet" in Extend, so callers tracking a genuine [0, 0] range
// must not rely on IsZero to mean absent.
func (r Range) IsZero() bool {
	return r == Range{}
}

// From returns the lower bound of r. r must not be empty.
func (r Range) From() uint64 {
	if r.IsEmpty() {
		panic("addrrange: From called on an empty range")
	}
	return r.from
}

// To returns the upper bound of r. r must not be empty.
func (r Range) To() uint64 {
	if r.IsEmpty() {
		panic("addrrange: To called on an empty range")
	}
	return r.to
}

// Size returns the number of addresses in r. r must not be empty.
func (r Range) Size() uint64 {
	return r.To() - r.From() + 1
}

// Covers reports whether r covers the address addr.
func (r Range) Covers(addr uint64) bool {
	if r.IsEmpty() {
		return false
	}
	return r.from <= addr && addr <= r.to
}

// Overlaps reports whether r and other share at least one address. If
// either range is empty the result is always false.
func (r Range) Overlaps(other Range) bool {
	if r.IsEmpty() || other.IsEmpty() {
		return false
	}
	return !(other.to < r.from || r.to < other.from)
}

// Contains reports whether r covers all of other. If either range is
// empty the result is always false.
func (r Range) Contains(other Range) bool {
	if r.IsEmpty() || other.IsEmpty() {
		return false
	}
	return r.from <= other.from && r.to >= other.to
}

// CanMerge reports whether r and other overlap or touch: 0-1 can merge
// with 2-3 although they do not overlap. The bounds are inclusive, so a
// range ending at X touches one beginning at X+1.
func (r Range) CanMerge(other Range) bool {
	if r.to < other.from {
		// r.to < other.from, so r.to+1 cannot wrap
		return r.to+1 == other.from
	}
	if other.to < r.from {
		return other.to+1 == r.from
	}
	return true
}

// Merge grows r to the union of r and other and reports success. When
// the ranges neither overlap nor touch, r is left unchanged and Merge
// reports false.
func (r *Range) Merge(other Range) bool {
	if !r.CanMerge(other) {
		return false
	}
	if r.to < other.to {
		r.to = other.to
	}
	if r.from > other.from {
		r.from = other.from
	}
	return true
}

// Extend grows r to cover other as well. A zero Range on either side
// counts as absent: extending by a zero Range is a no-op and extending a
// zero Range adopts other. The upper bounds are inclusive, so comparing
// them directly stays safe for ranges ending at the last address.
func (r *Range) Extend(other Range) {
	if other.IsZero() {
		return
	}
	if r.IsZero() {
		*r = other
		return
	}
	if r.from > other.from {
		r.from = other.from
	}
	if r.to < other.to {
		r.to = other.to
	}
}

// Compare orders ranges by upper bound, then by lower bound. Both bounds
// are inclusive so the comparison never wraps, even for ranges ending at
// the last address of the space.
func (r Range) Compare(other Range) int {
	if r == other {
		return 0
	}
	if r.to != other.to {
		if r.to < other.to {
			return -1
		}
		return 1
	}
	if r.from < other.from {
		return -1
	}
	return 1
}

// Less reports whether r sorts before other.
func (r Range) Less(other Range) bool {
	return r.Compare(other) < 0
}

// Equal reports whether r and other span the same addresses.
func (r Range) Equal(other Range) bool {
	return r == other
}

func (r Range) String() string {
	if r.IsEmpty() {
		return "empty"
	}
	return fmt.Sprintf("%d-%d", r.from, r.to)
}
