package atn

import (
	"fmt"

	"github.com/dekarrin/rosed"
)

// GrammarType says which kind of recognizer an ATN drives.
type GrammarType int

const (
	// GrammarLexer is a lexer grammar.
	GrammarLexer GrammarType = iota

	// GrammarParser is a parser grammar.
	GrammarParser
)

func (gt GrammarType) String() string {
	if gt == GrammarLexer {
		return "lexer"
	}
	return "parser"
}

// ATN is the augmented transition network of one compiled grammar: every
// state and edge, the rule start/stop tables, the decision list, the lexer
// mode starts and action table, and the lazily filled DFA for each decision
// and mode.
//
// Apart from the DFAs (which the simulator populates) an ATN never changes
// after deserialization, so it is safe to share by reference.
type ATN struct {
	grammarType  GrammarType
	maxTokenType int

	states          []*State
	decisions       []*State
	ruleStartStates []*State
	ruleStopStates  []*State
	modeStartStates []*State

	ruleToTokenType []int

	decisionDFA []*DFA
	modeDFA     []*DFA

	lexerActions []*LexerAction
}

// NewATN creates an empty ATN of the given type. Deserialization is the
// normal way to obtain a populated one.
func NewATN(grammarType GrammarType, maxTokenType int) *ATN {
	return &ATN{grammarType: grammarType, maxTokenType: maxTokenType}
}

// GrammarType returns whether this is a lexer or parser ATN.
func (a *ATN) GrammarType() GrammarType {
	return a.grammarType
}

// IsLexer returns whether this is a lexer ATN.
func (a *ATN) IsLexer() bool {
	return a.grammarType == GrammarLexer
}

// MaxTokenType returns the largest token type any transition of this ATN
// recognizes.
func (a *ATN) MaxTokenType() int {
	return a.maxTokenType
}

// States returns every state, indexed by state number. Entries may be nil
// where the serialized form carried an invalid state.
func (a *ATN) States() []*State {
	return a.states
}

// State returns the state with the given number.
func (a *ATN) State(stateNumber int) *State {
	return a.states[stateNumber]
}

// AddState appends a state, assigning it the next state number. A nil state
// occupies a number but is never linked.
func (a *ATN) AddState(s *State) {
	if s != nil {
		s.num = len(a.states)
	}
	a.states = append(a.states, s)
}

// RemoveState forgets the given state without renumbering the rest; its slot
// becomes nil.
func (a *ATN) RemoveState(s *State) {
	a.states[s.StateNumber()] = nil
}

// Decisions returns the decision states in decision-index order.
func (a *ATN) Decisions() []*State {
	return a.decisions
}

// Decision returns the decision state with the given decision index.
func (a *ATN) Decision(decision int) *State {
	return a.decisions[decision]
}

// DefineDecisionState appends a state to the decision list and assigns its
// decision index.
func (a *ATN) DefineDecisionState(s *State) int {
	a.decisions = append(a.decisions, s)
	s.SetDecision(len(a.decisions) - 1)
	return s.Decision()
}

// RuleStartStates returns the rule-start state of each rule, indexed by rule
// index.
func (a *ATN) RuleStartStates() []*State {
	return a.ruleStartStates
}

// RuleStopStates returns the rule-stop state of each rule, indexed by rule
// index.
func (a *ATN) RuleStopStates() []*State {
	return a.ruleStopStates
}

// ModeStartStates returns the token-start state of each lexer mode, indexed
// by mode.
func (a *ATN) ModeStartStates() []*State {
	return a.modeStartStates
}

// RuleToTokenType maps rule index to token type. For lexer ATNs this is the
// type each rule produces; for parser ATNs it is only populated when rule
// bypass transitions were generated, and holds each rule's bypass token.
func (a *ATN) RuleToTokenType() []int {
	return a.ruleToTokenType
}

// DecisionDFA returns the DFA cache of each decision, indexed by decision.
func (a *ATN) DecisionDFA() []*DFA {
	return a.decisionDFA
}

// ModeDFA returns the DFA cache of each lexer mode, indexed by mode.
func (a *ATN) ModeDFA() []*DFA {
	return a.modeDFA
}

// LexerActions returns the lexer action table that action transitions index
// into.
func (a *ATN) LexerActions() []*LexerAction {
	return a.lexerActions
}

// Describe renders a bordered summary table of the ATN's decisions: one row
// per decision with its state number, state kind, owning rule, and
// alternative count. Purely a debugging aid; nothing parses this.
func (a *ATN) Describe() string {
	data := [][]string{
		{"DECISION", "STATE", "KIND", "RULE", "ALTS"},
	}

	for i, dec := range a.decisions {
		dataRow := []string{
			fmt.Sprintf("%d", i),
			fmt.Sprintf("%d", dec.StateNumber()),
			dec.Kind().String(),
			fmt.Sprintf("%d", dec.RuleIndex()),
			fmt.Sprintf("%d", len(dec.Transitions())),
		}
		data = append(data, dataRow)
	}

	return rosed.Edit("").
		InsertTableOpts(0, data, 80, rosed.Options{
			TableHeaders: true,
			TableBorders: true,
		}).
		String()
}
