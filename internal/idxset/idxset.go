// Package idxset is a small fixed-universe bitset over small integer
// indices, used by the resolver to compute FIRST sets and nullability
// without allocating a map per rule. Adapted from the teacher's
// util/intset (github.com/ava12/llx/util/intset), trimmed to the
// operations resolve/first.go needs: union, membership, emptiness. Nothing
// here iterates a set in declaration order, so the teacher's ToSlice/ordered
// walk is not carried over.
package idxset

const wordBits = 64

// Set is a bitset over indices [0, n). The zero value is not usable; use New.
type Set struct {
	words []uint64
}

func New(n int) *Set {
	return &Set{words: make([]uint64, (n+wordBits-1)/wordBits)}
}

func (s *Set) Add(i int) {
	s.words[i/wordBits] |= 1 << uint(i%wordBits)
}

func (s *Set) Contains(i int) bool {
	return s.words[i/wordBits]&(1<<uint(i%wordBits)) != 0
}

func (s *Set) IsEmpty() bool {
	for _, w := range s.words {
		if w != 0 {
			return false
		}
	}
	return true
}

// UnionInto ORs src's bits into dst, returning true if dst changed (used to
// detect fixed-point convergence of the FIRST-set computation).
func UnionInto(dst, src *Set) bool {
	changed := false
	for i := range dst.words {
		merged := dst.words[i] | src.words[i]
		if merged != dst.words[i] {
			changed = true
		}
		dst.words[i] = merged
	}
	return changed
}

func (s *Set) Equal(o *Set) bool {
	if len(s.words) != len(o.words) {
		return false
	}
	for i := range s.words {
		if s.words[i] != o.words[i] {
			return false
		}
	}
	return true
}
