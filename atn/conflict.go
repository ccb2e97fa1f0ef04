package atn

import (
	"github.com/dekarrin/thunnus/internal/murmur"

	"golang.org/x/exp/slices"
)

// ConflictInformation describes the set of alternatives a decision found to
// be in conflict, and whether the conflict is exact (every conflicting
// configuration predicts exactly the same alternative set).
type ConflictInformation struct {
	conflictedAlts []bool
	exact          bool
}

// NewConflictInformation creates a conflict record. The slice is owned by
// the record after the call; index i is true when alternative i conflicts.
func NewConflictInformation(conflictedAlts []bool, exact bool) *ConflictInformation {
	return &ConflictInformation{conflictedAlts: conflictedAlts, exact: exact}
}

// ConflictedAlts returns the conflicting-alternative bitset. Callers must
// not modify it.
func (ci *ConflictInformation) ConflictedAlts() []bool {
	return ci.conflictedAlts
}

// Exact returns whether the conflict is exact.
func (ci *ConflictInformation) Exact() bool {
	return ci.exact
}

// Equals returns whether two records mark the same alternatives with the
// same exactness.
func (ci *ConflictInformation) Equals(o *ConflictInformation) bool {
	if ci == o {
		return true
	}
	if o == nil {
		return false
	}

	return ci.exact == o.exact && slices.Equal(ci.conflictedAlts, o.conflictedAlts)
}

// Hash returns the record's structural hash.
func (ci *ConflictInformation) Hash() int32 {
	h := murmur.Initialize(murmur.DefaultSeed)
	for _, alt := range ci.conflictedAlts {
		bit := int32(0)
		if alt {
			bit = 1
		}
		h = murmur.Update(h, bit)
	}

	exact := int32(0)
	if ci.exact {
		exact = 1
	}
	h = murmur.Update(h, exact)

	return murmur.Finish(h, len(ci.conflictedAlts)+1)
}
