package atn

import (
	"github.com/dekarrin/thunnus/internal/murmur"
)

// SemanticContextType identifies which variant of the predicate lattice a
// SemanticContext is.
type SemanticContextType int

const (
	SemanticPredicate SemanticContextType = iota
	SemanticPrecedencePredicate
	SemanticAnd
	SemanticOr
)

// SemanticContext is a tree of semantic predicates gating a prediction. The
// leaves are grammar predicates and precedence checks; AND and OR nodes
// combine them. Values are immutable once built and freely shareable.
//
// The always-true predicate is the package singleton SemanticContextNone;
// identity comparison against it is part of its contract.
type SemanticContext struct {
	kind SemanticContextType

	// predicate
	ruleIndex        int
	predIndex        int
	contextDependent bool

	// precedence-predicate
	precedence int

	// and, or
	operands []*SemanticContext
}

// SemanticContextNone is the predicate that is always true. CombineAnd
// treats it as identity and CombineOr as absorbing.
var SemanticContextNone = &SemanticContext{
	kind:      SemanticPredicate,
	ruleIndex: -1,
	predIndex: -1,
}

// NewPredicate creates a grammar-predicate leaf.
func NewPredicate(ruleIndex, predIndex int, contextDependent bool) *SemanticContext {
	return &SemanticContext{
		kind:             SemanticPredicate,
		ruleIndex:        ruleIndex,
		predIndex:        predIndex,
		contextDependent: contextDependent,
	}
}

// NewPrecedencePredicate creates a precedence-check leaf that passes when
// the parser's current precedence is at most the given level.
func NewPrecedencePredicate(precedence int) *SemanticContext {
	return &SemanticContext{kind: SemanticPrecedencePredicate, precedence: precedence}
}

// Kind returns which lattice variant this context is.
func (sc *SemanticContext) Kind() SemanticContextType {
	return sc.kind
}

// RuleIndex returns the rule index of a predicate leaf.
func (sc *SemanticContext) RuleIndex() int {
	return sc.ruleIndex
}

// PredIndex returns the predicate index of a predicate leaf.
func (sc *SemanticContext) PredIndex() int {
	return sc.predIndex
}

// ContextDependent returns whether a predicate leaf needs the rule context
// to evaluate.
func (sc *SemanticContext) ContextDependent() bool {
	return sc.contextDependent
}

// Precedence returns the level of a precedence-predicate leaf.
func (sc *SemanticContext) Precedence() int {
	return sc.precedence
}

// Operands returns the children of an AND or OR node.
func (sc *SemanticContext) Operands() []*SemanticContext {
	return sc.operands
}

// CombineAnd conjoins two contexts. Nil and SemanticContextNone are treated
// as identity, nested ANDs are flattened, duplicate operands are dropped,
// and all precedence predicates among the operands reduce to the one with
// the minimum level. If a single operand remains it is returned bare.
func CombineAnd(x, y *SemanticContext) *SemanticContext {
	if x == nil || x == SemanticContextNone {
		return y
	}
	if y == nil || y == SemanticContextNone {
		return x
	}

	operands := gatherOperands(SemanticAnd, x, y)
	operands = reducePrecedencePredicates(operands, func(best, cand int) bool { return cand < best })
	if len(operands) == 1 {
		return operands[0]
	}

	return &SemanticContext{kind: SemanticAnd, operands: operands}
}

// CombineOr disjoins two contexts. Nil is identity, SemanticContextNone is
// absorbing, nested ORs are flattened, duplicate operands are dropped, and
// all precedence predicates among the operands reduce to the one with the
// maximum level. If a single operand remains it is returned bare.
func CombineOr(x, y *SemanticContext) *SemanticContext {
	if x == nil {
		return y
	}
	if y == nil {
		return x
	}
	if x == SemanticContextNone || y == SemanticContextNone {
		return SemanticContextNone
	}

	operands := gatherOperands(SemanticOr, x, y)
	operands = reducePrecedencePredicates(operands, func(best, cand int) bool { return cand > best })
	if len(operands) == 1 {
		return operands[0]
	}

	return &SemanticContext{kind: SemanticOr, operands: operands}
}

// gatherOperands flattens x and y into one operand list, splicing in the
// children of any operand that is itself the node kind under construction,
// and dropping structural duplicates.
func gatherOperands(kind SemanticContextType, x, y *SemanticContext) []*SemanticContext {
	var operands []*SemanticContext

	add := func(op *SemanticContext) {
		for _, existing := range operands {
			if existing.Equals(op) {
				return
			}
		}
		operands = append(operands, op)
	}

	for _, side := range []*SemanticContext{x, y} {
		if side.kind == kind {
			for _, op := range side.operands {
				add(op)
			}
		} else {
			add(side)
		}
	}

	return operands
}

// reducePrecedencePredicates strips every precedence predicate out of the
// operand list and, if there were any, appends back just the one whose level
// wins under better.
func reducePrecedencePredicates(operands []*SemanticContext, better func(best, cand int) bool) []*SemanticContext {
	kept := operands[:0]
	var winner *SemanticContext
	for _, op := range operands {
		if op.kind != SemanticPrecedencePredicate {
			kept = append(kept, op)
			continue
		}
		if winner == nil || better(winner.precedence, op.precedence) {
			winner = op
		}
	}

	if winner != nil {
		kept = append(kept, winner)
	}

	return kept
}

// Equals returns whether two contexts are structurally equal. AND and OR
// operand lists compare without regard to order.
func (sc *SemanticContext) Equals(o *SemanticContext) bool {
	if sc == o {
		return true
	}
	if o == nil || sc.kind != o.kind {
		return false
	}

	switch sc.kind {
	case SemanticPredicate:
		return sc.ruleIndex == o.ruleIndex &&
			sc.predIndex == o.predIndex &&
			sc.contextDependent == o.contextDependent
	case SemanticPrecedencePredicate:
		return sc.precedence == o.precedence
	case SemanticAnd, SemanticOr:
		if len(sc.operands) != len(o.operands) {
			return false
		}
		for _, op := range sc.operands {
			found := false
			for _, other := range o.operands {
				if op.Equals(other) {
					found = true
					break
				}
			}
			if !found {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// Hash returns the context's structural hash. Permuted AND/OR operand lists
// hash identically, matching Equals.
func (sc *SemanticContext) Hash() int32 {
	switch sc.kind {
	case SemanticPredicate:
		h := murmur.Initialize(murmur.DefaultSeed)
		h = murmur.Update(h, int32(sc.ruleIndex))
		h = murmur.Update(h, int32(sc.predIndex))
		dep := int32(0)
		if sc.contextDependent {
			dep = 1
		}
		h = murmur.Update(h, dep)
		return murmur.Finish(h, 3)
	case SemanticPrecedencePredicate:
		return 31 + int32(sc.precedence)
	default:
		// fold operand hashes commutatively so ordering can't matter
		var folded int32
		for _, op := range sc.operands {
			folded ^= op.Hash()
		}
		h := murmur.Initialize(int32(sc.kind))
		h = murmur.Update(h, folded)
		return murmur.Finish(h, len(sc.operands))
	}
}
