// Package intervals provides a set type over integers that stores its
// contents as sorted, disjoint half-open ranges. It is the symbol-set algebra
// used by the transition network: transition labels, vocabulary complements,
// and match tests all come through here.
//
// Invariants maintained by every operation: ranges are non-empty,
// non-overlapping, and non-touching (an insert that bumps up against an
// existing range merges with it). An individual element v is just the range
// [v, v+1).
package intervals

import (
	"fmt"
	"strings"

	"github.com/dekarrin/thunnus"
)

// Interval is a half-open range [Lo, Hi). It is empty when Hi <= Lo.
type Interval struct {
	Lo int
	Hi int
}

// Set is a collection of disjoint, sorted, half-open integer ranges. The zero
// value is an empty set ready for use.
//
// A Set is not safe for concurrent mutation.
type Set struct {
	pairs []Interval
}

// Of returns a new Set containing only the given value.
func Of(value int) Set {
	var s Set
	s.Insert(value)
	return s
}

// OfRange returns a new Set containing the half-open range [lo, hi).
func OfRange(lo, hi int) Set {
	var s Set
	s.InsertRange(lo, hi)
	return s
}

// Pairs returns the underlying ranges in sorted order. The returned slice is
// the set's own storage; callers must not modify it.
func (s Set) Pairs() []Interval {
	return s.pairs
}

// Empty returns whether the set contains no elements.
func (s Set) Empty() bool {
	return len(s.pairs) == 0
}

// Count returns the number of distinct ranges in the set.
func (s Set) Count() int {
	return len(s.pairs)
}

// Len returns the number of elements in the set.
func (s Set) Len() int {
	total := 0
	for _, p := range s.pairs {
		total += p.Hi - p.Lo
	}
	return total
}

// Min returns the smallest element in the set, or 0 if the set is empty.
func (s Set) Min() int {
	if len(s.pairs) == 0 {
		return 0
	}
	return s.pairs[0].Lo
}

// Max returns the largest element in the set, or 0 if the set is empty.
func (s Set) Max() int {
	if len(s.pairs) == 0 {
		return 0
	}
	return s.pairs[len(s.pairs)-1].Hi - 1
}

// Contains returns whether value is an element of the set.
func (s Set) Contains(value int) bool {
	for _, p := range s.pairs {
		if value < p.Lo {
			// list is sorted and value is before this range; not here
			return false
		}
		if value < p.Hi {
			return true
		}
	}
	return false
}

// Copy returns a duplicate of the set that shares no storage with it.
func (s Set) Copy() Set {
	dup := Set{pairs: make([]Interval, len(s.pairs))}
	copy(dup.pairs, s.pairs)
	return dup
}

// Equal returns whether the set has exactly the same contents as another Set
// or *Set. Any other type is not equal.
func (s Set) Equal(o any) bool {
	other, ok := o.(Set)
	if !ok {
		otherPtr, ok := o.(*Set)
		if !ok || otherPtr == nil {
			return false
		}
		other = *otherPtr
	}

	if len(s.pairs) != len(other.pairs) {
		return false
	}
	for i := range s.pairs {
		if s.pairs[i] != other.pairs[i] {
			return false
		}
	}
	return true
}

// Insert adds a single value to the set. Inserting a value already present
// has no effect.
func (s *Set) Insert(value int) {
	s.InsertRange(value, value+1)
}

// InsertRange adds every value in the half-open range [lo, hi) to the set,
// merging with any ranges it overlaps or touches. Inserting an empty range
// has no effect.
func (s *Set) InsertRange(lo, hi int) {
	if hi <= lo {
		return
	}

	for i := 0; i < len(s.pairs); i++ {
		pair := s.pairs[i]
		if lo == pair.Lo && hi == pair.Hi {
			return
		}

		if lo <= pair.Hi && hi >= pair.Lo {
			// overlapping or adjacent; make a single larger range
			merged := Interval{Lo: min(lo, pair.Lo), Hi: max(hi, pair.Hi)}
			s.pairs[i] = merged

			// the merged range may now bump into or swallow ranges after it,
			// so keep folding them in until one is out of reach
			for i+1 < len(s.pairs) {
				next := s.pairs[i+1]
				if merged.Lo > next.Hi || merged.Hi < next.Lo {
					break
				}

				merged = Interval{Lo: min(merged.Lo, next.Lo), Hi: max(merged.Hi, next.Hi)}
				s.pairs[i] = merged
				s.pairs = append(s.pairs[:i+1], s.pairs[i+2:]...)
			}

			return
		} else if hi < pair.Lo {
			// strictly before the current range; insert in place
			s.pairs = append(s.pairs, Interval{})
			copy(s.pairs[i+1:], s.pairs[i:])
			s.pairs[i] = Interval{Lo: lo, Hi: hi}
			return
		}

		// disjoint and after this range; keep scanning
	}

	// after every existing range and disjoint from all of them
	s.pairs = append(s.pairs, Interval{Lo: lo, Hi: hi})
}

// InsertSet adds every element of o to the set.
func (s *Set) InsertSet(o Set) {
	for _, p := range o.pairs {
		s.InsertRange(p.Lo, p.Hi)
	}
}

// Remove removes a single value from the set. Removing a value that is not
// present has no effect. Removing from the middle of a range splits it in
// two.
func (s *Set) Remove(value int) {
	for i := 0; i < len(s.pairs); i++ {
		pair := s.pairs[i]
		if value < pair.Lo {
			// sorted, so it's not in any later range either
			break
		}

		if value == pair.Lo && value+1 == pair.Hi {
			// the whole range is just this value; drop it
			s.pairs = append(s.pairs[:i], s.pairs[i+1:]...)
			break
		}

		if value == pair.Lo {
			s.pairs[i].Lo++
			break
		}

		if value+1 == pair.Hi {
			s.pairs[i].Hi--
			break
		}

		if value > pair.Lo && value+1 < pair.Hi {
			// middle of the range; split it
			oldHi := pair.Hi
			s.pairs[i].Hi = value
			s.InsertRange(value+1, oldHi)
			break
		}
	}
}

// Union returns a new Set holding every element that is in x, y, or both.
func Union(x, y Set) Set {
	result := x.Copy()
	result.InsertSet(y)
	return result
}

// Intersect returns a new Set holding every element that is in both x and y.
func Intersect(x, y Set) Set {
	var result Set

	i := 0
	j := 0
	for i < len(x.pairs) && j < len(y.pairs) {
		mine := x.pairs[i]
		theirs := y.pairs[j]

		if mine.Hi <= theirs.Lo {
			// no overlap possible yet; catch this side up
			i++
		} else if theirs.Hi <= mine.Lo {
			j++
		} else if mine.Lo <= theirs.Lo && mine.Hi >= theirs.Hi {
			// theirs is entirely inside mine
			result.InsertRange(theirs.Lo, theirs.Hi)
			j++
		} else if theirs.Lo <= mine.Lo && theirs.Hi >= mine.Hi {
			// mine is entirely inside theirs
			result.InsertRange(mine.Lo, mine.Hi)
			i++
		} else {
			// partial overlap; take the shared part and advance whichever
			// range started first, since the later-starting one may still
			// collide with what comes next on the other side
			result.InsertRange(max(mine.Lo, theirs.Lo), min(mine.Hi, theirs.Hi))
			if mine.Lo > theirs.Lo {
				j++
			} else if theirs.Lo > mine.Lo {
				i++
			}
		}
	}

	return result
}

// Subtract returns a new Set holding every element of left that is not also
// an element of right.
func Subtract(left, right Set) Set {
	if left.Empty() || right.Empty() {
		return left.Copy()
	}

	result := left.Copy()
	ri := 0
	rj := 0
	for ri < len(result.pairs) && rj < len(right.pairs) {
		cur := result.pairs[ri]
		sub := right.pairs[rj]

		if sub.Hi <= cur.Lo {
			rj++
			continue
		}
		if sub.Lo >= cur.Hi {
			ri++
			continue
		}

		// sub overlaps cur; at most two residual pieces survive
		var before, after Interval
		if sub.Lo > cur.Lo {
			before = Interval{Lo: cur.Lo, Hi: sub.Lo}
		}
		if sub.Hi < cur.Hi {
			after = Interval{Lo: sub.Hi, Hi: cur.Hi}
		}

		if before.Hi > before.Lo {
			if after.Hi > after.Lo {
				// split the current range in two
				result.pairs[ri] = before
				result.pairs = append(result.pairs, Interval{})
				copy(result.pairs[ri+2:], result.pairs[ri+1:])
				result.pairs[ri+1] = after
				ri++
				rj++
			} else {
				result.pairs[ri] = before
				ri++
			}
		} else {
			if after.Hi > after.Lo {
				result.pairs[ri] = after
				rj++
			} else {
				// fully covered; remove it and retry at the same index
				result.pairs = append(result.pairs[:ri], result.pairs[ri+1:]...)
			}
		}
	}

	return result
}

// Complement returns every element of vocabulary that is not in s.
func Complement(s, vocabulary Set) Set {
	if vocabulary.Empty() {
		return Set{}
	}
	return Subtract(vocabulary, s)
}

// ComplementRange is Complement over the vocabulary [lo, hi).
func ComplementRange(s Set, lo, hi int) Set {
	return Complement(s, OfRange(lo, hi))
}

// String renders the set's contents. An empty set is "{}", a set of exactly
// one element is the bare element (or "<EOF>" for the end-of-file marker),
// and anything larger is a brace-wrapped list of elements and lo..hi ranges.
func (s Set) String() string {
	if len(s.pairs) == 0 {
		return "{}"
	}

	var sb strings.Builder
	if s.Len() > 1 {
		sb.WriteRune('{')
	}

	for i, p := range s.pairs {
		if i > 0 {
			sb.WriteString(", ")
		}

		if p.Lo == p.Hi-1 {
			if p.Lo == thunnus.TokenEOF {
				sb.WriteString("<EOF>")
			} else {
				sb.WriteString(fmt.Sprintf("%d", p.Lo))
			}
		} else {
			sb.WriteString(fmt.Sprintf("%d..%d", p.Lo, p.Hi-1))
		}
	}

	if s.Len() > 1 {
		sb.WriteRune('}')
	}

	return sb.String()
}

func min(x, y int) int {
	if x < y {
		return x
	}
	return y
}

func max(x, y int) int {
	if x > y {
		return x
	}
	return y
}
