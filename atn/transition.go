package atn

import (
	"github.com/dekarrin/thunnus/intervals"
)

// TransitionType identifies which kind of edge a transition is. The numeric
// values are part of the serialized form and must not be reordered.
type TransitionType int

const (
	TransitionEpsilon TransitionType = iota + 1
	TransitionRange
	TransitionRule
	TransitionPredicate
	TransitionAtom
	TransitionAction
	TransitionSet
	TransitionNotSet
	TransitionWildcard
	TransitionPrecedence
)

func (tt TransitionType) String() string {
	switch tt {
	case TransitionEpsilon:
		return "epsilon"
	case TransitionRange:
		return "range"
	case TransitionRule:
		return "rule"
	case TransitionPredicate:
		return "predicate"
	case TransitionAtom:
		return "atom"
	case TransitionAction:
		return "action"
	case TransitionSet:
		return "set"
	case TransitionNotSet:
		return "not-set"
	case TransitionWildcard:
		return "wildcard"
	case TransitionPrecedence:
		return "precedence"
	default:
		return "unknown"
	}
}

// NoOutermostPrecedenceReturn is the sentinel OutermostPrecedenceReturn value
// of an epsilon transition that is not the return edge of a precedence rule
// invoked at precedence zero.
const NoOutermostPrecedenceReturn = -1

// Transition is a labelled directed edge between two ATN states. All ten
// kinds share this one representation; the fields past Target are only
// meaningful for the kinds noted on each accessor.
type Transition struct {
	kind   TransitionType
	target *State

	// epsilon
	outermostPrecedenceReturn int

	// atom
	label int

	// range (half-open)
	rangeLo int
	rangeHi int

	// set, not-set
	set intervals.Set

	// rule
	ruleIndex   int
	follow      *State
	tailCall    bool
	optTailCall bool

	// rule, precedence
	precedence int

	// predicate
	predIndex int

	// action
	actionIndex int

	// predicate, action
	contextDependent bool
}

// NewEpsilonTransition creates an epsilon edge with no outermost precedence
// return.
func NewEpsilonTransition(target *State) *Transition {
	return NewEpsilonReturnTransition(target, NoOutermostPrecedenceReturn)
}

// NewEpsilonReturnTransition creates an epsilon edge carrying an outermost
// precedence return marker: the index of the precedence rule being returned
// from at its outermost precedence level, or NoOutermostPrecedenceReturn.
func NewEpsilonReturnTransition(target *State, outermostPrecedenceReturn int) *Transition {
	return &Transition{
		kind:                      TransitionEpsilon,
		target:                    target,
		outermostPrecedenceReturn: outermostPrecedenceReturn,
	}
}

// NewRangeTransition creates an edge matching the half-open symbol range
// [lo, hi).
func NewRangeTransition(target *State, lo, hi int) *Transition {
	return &Transition{kind: TransitionRange, target: target, rangeLo: lo, rangeHi: hi}
}

// NewRuleTransition creates a rule-invocation edge. Its target is the called
// rule's start state; follow is the state the parser resumes at after the
// callee's rule stop.
func NewRuleTransition(ruleStart *State, ruleIndex int, precedence int, follow *State) *Transition {
	return &Transition{
		kind:       TransitionRule,
		target:     ruleStart,
		ruleIndex:  ruleIndex,
		precedence: precedence,
		follow:     follow,
	}
}

// NewPredicateTransition creates a semantic-predicate edge.
func NewPredicateTransition(target *State, ruleIndex, predIndex int, contextDependent bool) *Transition {
	return &Transition{
		kind:             TransitionPredicate,
		target:           target,
		ruleIndex:        ruleIndex,
		predIndex:        predIndex,
		contextDependent: contextDependent,
	}
}

// NewAtomTransition creates an edge matching exactly one symbol.
func NewAtomTransition(target *State, label int) *Transition {
	return &Transition{kind: TransitionAtom, target: target, label: label}
}

// NewActionTransition creates a lexer-action edge.
func NewActionTransition(target *State, ruleIndex, actionIndex int, contextDependent bool) *Transition {
	return &Transition{
		kind:             TransitionAction,
		target:           target,
		ruleIndex:        ruleIndex,
		actionIndex:      actionIndex,
		contextDependent: contextDependent,
	}
}

// NewSetTransition creates an edge matching any symbol in the given set.
func NewSetTransition(target *State, set intervals.Set) *Transition {
	return &Transition{kind: TransitionSet, target: target, set: set}
}

// NewNotSetTransition creates an edge matching any vocabulary symbol outside
// the given set.
func NewNotSetTransition(target *State, set intervals.Set) *Transition {
	return &Transition{kind: TransitionNotSet, target: target, set: set}
}

// NewWildcardTransition creates an edge matching any vocabulary symbol.
func NewWildcardTransition(target *State) *Transition {
	return &Transition{kind: TransitionWildcard, target: target}
}

// NewPrecedenceTransition creates a precedence-predicate edge.
func NewPrecedenceTransition(target *State, precedence int) *Transition {
	return &Transition{kind: TransitionPrecedence, target: target, precedence: precedence}
}

// Kind returns which of the ten transition kinds this edge is.
func (t *Transition) Kind() TransitionType {
	return t.kind
}

// Target returns the state this edge leads to.
func (t *Transition) Target() *State {
	return t.target
}

// SetTarget redirects the edge to a different state.
func (t *Transition) SetTarget(target *State) {
	t.target = target
}

// IsEpsilon returns whether this edge matches no input. Rule, predicate,
// action, and precedence edges are epsilon for closure purposes along with
// plain epsilon edges.
func (t *Transition) IsEpsilon() bool {
	switch t.kind {
	case TransitionEpsilon, TransitionRule, TransitionPredicate,
		TransitionAction, TransitionPrecedence:
		return true
	default:
		return false
	}
}

// Matches returns whether this edge matches the given input symbol given the
// inclusive vocabulary bounds. Epsilon-typed edges never match input.
func (t *Transition) Matches(symbol, minVocab, maxVocab int) bool {
	switch t.kind {
	case TransitionRange:
		return symbol >= t.rangeLo && symbol < t.rangeHi
	case TransitionAtom:
		return t.label == symbol
	case TransitionSet:
		return t.set.Contains(symbol)
	case TransitionNotSet:
		return symbol >= minVocab && symbol <= maxVocab && !t.set.Contains(symbol)
	case TransitionWildcard:
		return symbol >= minVocab && symbol <= maxVocab
	default:
		return false
	}
}

// OutermostPrecedenceReturn returns the rule index carried by an epsilon
// return edge out of a precedence rule invoked at precedence zero, or
// NoOutermostPrecedenceReturn.
func (t *Transition) OutermostPrecedenceReturn() int {
	return t.outermostPrecedenceReturn
}

// Label returns the single symbol an atom edge matches.
func (t *Transition) Label() int {
	return t.label
}

// Range returns the half-open [lo, hi) symbol range of a range edge.
func (t *Transition) Range() (lo, hi int) {
	return t.rangeLo, t.rangeHi
}

// Set returns the symbol set of a set or not-set edge.
func (t *Transition) Set() intervals.Set {
	return t.set
}

// Label set as an interval set, honoring the edge kind. Atom and range edges
// are converted; epsilon-typed edges yield an empty set.
func (t *Transition) LabelSet() intervals.Set {
	switch t.kind {
	case TransitionAtom:
		return intervals.Of(t.label)
	case TransitionRange:
		return intervals.OfRange(t.rangeLo, t.rangeHi)
	case TransitionSet, TransitionNotSet:
		return t.set
	default:
		return intervals.Set{}
	}
}

// RuleIndex returns the rule index of a rule, predicate, or action edge.
func (t *Transition) RuleIndex() int {
	return t.ruleIndex
}

// Precedence returns the precedence of a rule or precedence edge.
func (t *Transition) Precedence() int {
	return t.precedence
}

// FollowState returns the state a rule edge resumes at after the called rule
// completes.
func (t *Transition) FollowState() *State {
	return t.follow
}

// TailCall reports the cached tail-call analysis over true transitions for a
// rule edge.
func (t *Transition) TailCall() bool {
	return t.tailCall
}

// SetTailCall caches the tail-call analysis result. Panics on non-rule
// edges.
func (t *Transition) SetTailCall(v bool) {
	if t.kind != TransitionRule {
		panic("setting tail-call flag on non-rule transition")
	}
	t.tailCall = v
}

// OptimizedTailCall reports the cached tail-call analysis over optimized
// transitions for a rule edge.
func (t *Transition) OptimizedTailCall() bool {
	return t.optTailCall
}

// SetOptimizedTailCall caches the optimized-path tail-call analysis result.
// Panics on non-rule edges.
func (t *Transition) SetOptimizedTailCall(v bool) {
	if t.kind != TransitionRule {
		panic("setting tail-call flag on non-rule transition")
	}
	t.optTailCall = v
}

// PredIndex returns the predicate index of a predicate edge.
func (t *Transition) PredIndex() int {
	return t.predIndex
}

// ActionIndex returns the action index of an action edge.
func (t *Transition) ActionIndex() int {
	return t.actionIndex
}

// ContextDependent returns whether a predicate or action edge needs the
// rule context to evaluate.
func (t *Transition) ContextDependent() bool {
	return t.contextDependent
}

// Predicate returns the precedence edge's condition as a semantic context.
func (t *Transition) Predicate() *SemanticContext {
	return NewPrecedencePredicate(t.precedence)
}
