// Package thunnus is the runtime core of an adaptive LL(*) parser and lexer
// engine. It holds the pieces a generated recognizer leans on at runtime: the
// prediction-context graph that tracks which parser call stacks are live at a
// decision point, the deserializer that rebuilds a compiled transition network
// from its wire form, the interval-set algebra used for symbol matching, and
// the skeleton of the DFA cache the simulator fills in as input is seen.
//
// It's named for the genus of the tuna, continuing a proud tradition of
// naming compiler projects after fish that are in no way related to
// compilers.
//
// The driver loops, the prediction algorithm itself, and anything that knows
// what an error message should look like all live elsewhere; this module only
// promises that the data structures underneath them behave.
package thunnus

// TokenEOF is the reserved token type that marks the end of the input
// stream.
const TokenEOF = -1

// TokenEpsilon is the reserved token type for transitions that consume no
// input. It never appears in a token stream; it exists so "matches nothing"
// has a representable symbol.
const TokenEpsilon = -2

// Token is the minimal view of a lexed token that the runtime core needs.
// Anything else a token carries (lexeme, position, channel) is the business
// of the driver, not of prediction.
type Token interface {
	// Type returns the token type. TokenEOF is returned at end of input.
	Type() int
}

// RuleContext is one frame of the runtime parser stack, viewed as a linked
// list through Parent. The prediction machinery lifts a chain of these into a
// prediction context when it needs full-context information.
type RuleContext interface {
	// Parent returns the invoking context, or nil at the outermost rule.
	Parent() RuleContext

	// InvokingState returns the number of the state holding the rule
	// transition that invoked this context, or a negative number for the
	// outermost context.
	InvokingState() int

	// IsEmpty returns whether this context has no invoking state (it is the
	// outermost context).
	IsEmpty() bool
}
