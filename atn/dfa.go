package atn

import (
	"fmt"

	"github.com/dekarrin/thunnus"
)

// Bounds of the symbol window a lexer DFA allocates edge slots for. Symbols
// outside the window always take the slow path through the simulator.
const (
	LexerMinDFAEdge = 0
	LexerMaxDFAEdge = 127
)

// AcceptStateInfo describes what accepting in a DFA state means: which
// alternative (or token type) was predicted, and for lexers, which action
// executor to run when the match commits.
type AcceptStateInfo struct {
	prediction int
	executor   *LexerActionExecutor
}

// NewAcceptStateInfo creates accept info with no lexer actions.
func NewAcceptStateInfo(prediction int) *AcceptStateInfo {
	return &AcceptStateInfo{prediction: prediction}
}

// NewAcceptStateInfoWithExecutor creates accept info carrying the lexer
// action executor to run on match.
func NewAcceptStateInfoWithExecutor(prediction int, executor *LexerActionExecutor) *AcceptStateInfo {
	return &AcceptStateInfo{prediction: prediction, executor: executor}
}

// Prediction returns the predicted alternative.
func (asi *AcceptStateInfo) Prediction() int {
	return asi.prediction
}

// LexerActionExecutor returns the executor to run when this accept state
// commits, or nil.
func (asi *AcceptStateInfo) LexerActionExecutor() *LexerActionExecutor {
	return asi.executor
}

// PredPrediction pairs a semantic context with the alternative to predict
// when it passes.
type PredPrediction struct {
	// Pred is the semantic context gating this prediction.
	Pred *SemanticContext

	// Alt is the alternative predicted when Pred passes.
	Alt int
}

// DFAState is one state of a lazily built decision DFA. It stands for the
// configuration set the simulator reached, and caches outgoing edges per
// input symbol inside the DFA's symbol window plus context edges per return
// state for full-context splits. Equality and hash delegate to the
// configuration set.
type DFAState struct {
	stateNumber int

	configs *ConfigSet

	acceptInfo *AcceptStateInfo

	minDFAEdge int
	edges      []*DFAState

	contextEdges   map[int]*DFAState
	contextSymbols map[int]bool

	predicates []PredPrediction
}

// NewDFAState creates a state representing the given configuration set in
// the given DFA. Its edge table spans the DFA's symbol window.
func NewDFAState(dfa *DFA, configs *ConfigSet) *DFAState {
	return &DFAState{
		stateNumber: InvalidStateNumber,
		configs:     configs,
		minDFAEdge:  dfa.MinDFAEdge(),
		edges:       make([]*DFAState, dfa.MaxDFAEdge()-dfa.MinDFAEdge()+1),
	}
}

// StateNumber returns the number the owning DFA assigned this state, or
// InvalidStateNumber before it was added.
func (d *DFAState) StateNumber() int {
	return d.stateNumber
}

// Configs returns the configuration set this state stands for.
func (d *DFAState) Configs() *ConfigSet {
	return d.configs
}

// AcceptStateInfo returns the accept info set by the simulator, or nil while
// this state is not (yet known to be) accepting.
func (d *DFAState) AcceptStateInfo() *AcceptStateInfo {
	return d.acceptInfo
}

// SetAcceptStateInfo records what accepting in this state means.
func (d *DFAState) SetAcceptStateInfo(info *AcceptStateInfo) {
	d.acceptInfo = info
}

// IsAcceptState returns whether the simulator has marked this state
// accepting.
func (d *DFAState) IsAcceptState() bool {
	return d.acceptInfo != nil
}

// Prediction returns the predicted alternative of an accept state, or
// InvalidDecision for a non-accepting state.
func (d *DFAState) Prediction() int {
	if d.acceptInfo == nil {
		return InvalidDecision
	}
	return d.acceptInfo.Prediction()
}

// Target returns the cached next state on the given symbol, or nil on a
// cache miss or a symbol outside the DFA's window.
func (d *DFAState) Target(symbol int) *DFAState {
	idx := symbol - d.minDFAEdge
	if idx < 0 || idx >= len(d.edges) {
		return nil
	}
	return d.edges[idx]
}

// SetTarget caches the next state for the given symbol. Symbols outside the
// DFA's window are ignored.
func (d *DFAState) SetTarget(symbol int, target *DFAState) {
	idx := symbol - d.minDFAEdge
	if idx < 0 || idx >= len(d.edges) {
		return
	}
	d.edges[idx] = target
}

// ContextTarget returns the cached full-context successor for the given
// invoking return state, or nil.
func (d *DFAState) ContextTarget(invokingState int) *DFAState {
	if d.contextEdges == nil {
		return nil
	}
	return d.contextEdges[invokingState]
}

// SetContextTarget caches the full-context successor for the given invoking
// return state.
func (d *DFAState) SetContextTarget(invokingState int, target *DFAState) {
	if d.contextEdges == nil {
		d.contextEdges = map[int]*DFAState{}
	}
	d.contextEdges[invokingState] = target
}

// IsContextSensitive returns whether any symbol at this state needs
// full-context information to predict correctly.
func (d *DFAState) IsContextSensitive() bool {
	return len(d.contextSymbols) > 0
}

// IsContextSymbol returns whether the given symbol was marked context
// sensitive at this state.
func (d *DFAState) IsContextSymbol(symbol int) bool {
	return d.contextSymbols[symbol]
}

// SetContextSymbol marks the given symbol as needing full-context
// information at this state.
func (d *DFAState) SetContextSymbol(symbol int) {
	if d.contextSymbols == nil {
		d.contextSymbols = map[int]bool{}
	}
	d.contextSymbols[symbol] = true
}

// Predicates returns the (semantic context, alternative) pairs the simulator
// attached to this state, in evaluation order.
func (d *DFAState) Predicates() []PredPrediction {
	return d.predicates
}

// SetPredicates attaches the predicate list. The slice is owned by the state
// after the call.
func (d *DFAState) SetPredicates(predicates []PredPrediction) {
	d.predicates = predicates
}

// Equals returns whether two DFA states stand for equal configuration sets.
func (d *DFAState) Equals(o *DFAState) bool {
	if d == o {
		return true
	}
	if o == nil {
		return false
	}
	return d.configs.Equals(o.configs)
}

// Hash returns the hash of the configuration set this state stands for.
func (d *DFAState) Hash() int32 {
	return d.configs.Hash()
}

type precedenceKey struct {
	precedence  int
	fullContext bool
}

// DFA is the lazily populated automaton cached for one decision (or one
// lexer mode). States are added as the simulator realizes configuration
// sets; AddState hash-conses so each distinct set appears once.
//
// A precedence DFA (used for the continue-or-complete decision of a
// left-recursive rule) keys its start states by (precedence, full-context)
// pair instead of using symbol edges from a single start.
type DFA struct {
	states map[int32][]*DFAState

	s0     *DFAState
	s0Full *DFAState

	precedenceStarts map[precedenceKey]*DFAState

	decision   int
	startState *State

	minDFAEdge int
	maxDFAEdge int

	nextStateNumber int

	precedenceDFA bool
}

// NewDFA creates the DFA for the decision anchored at the given ATN state.
// For a lexer ATN the edge window is [LexerMinDFAEdge, LexerMaxDFAEdge]; for
// a parser it is [EOF, max token type].
func NewDFA(a *ATN, startState *State, decision int) *DFA {
	d := &DFA{
		states:     map[int32][]*DFAState{},
		decision:   decision,
		startState: startState,
	}

	if a.IsLexer() {
		d.minDFAEdge = LexerMinDFAEdge
		d.maxDFAEdge = LexerMaxDFAEdge
	} else {
		d.minDFAEdge = thunnus.TokenEOF
		d.maxDFAEdge = a.MaxTokenType()
	}

	return d
}

// Decision returns the decision index this DFA caches, or 0 for a mode DFA.
func (d *DFA) Decision() int {
	return d.decision
}

// ATNStartState returns the ATN decision state this DFA is anchored at.
func (d *DFA) ATNStartState() *State {
	return d.startState
}

// MinDFAEdge returns the smallest symbol the edge tables cover.
func (d *DFA) MinDFAEdge() int {
	return d.minDFAEdge
}

// MaxDFAEdge returns the largest symbol the edge tables cover.
func (d *DFA) MaxDFAEdge() int {
	return d.maxDFAEdge
}

// S0 returns the start state for SLL prediction, or nil before first use.
func (d *DFA) S0() *DFAState {
	return d.s0
}

// SetS0 installs the start state for SLL prediction.
func (d *DFA) SetS0(s *DFAState) {
	d.s0 = s
}

// S0Full returns the start state for full-context prediction, or nil before
// first use.
func (d *DFA) S0Full() *DFAState {
	return d.s0Full
}

// SetS0Full installs the start state for full-context prediction.
func (d *DFA) SetS0Full(s *DFAState) {
	d.s0Full = s
}

// Empty returns whether no states have been realized yet.
func (d *DFA) Empty() bool {
	return len(d.states) == 0
}

// IsContextSensitive returns whether any realized state needed full-context
// information.
func (d *DFA) IsContextSensitive() bool {
	for _, bucket := range d.states {
		for _, s := range bucket {
			if s.IsContextSensitive() {
				return true
			}
		}
	}
	return false
}

// IsPrecedenceDFA returns whether this DFA keys start states by precedence.
func (d *DFA) IsPrecedenceDFA() bool {
	return d.precedenceDFA
}

// SetPrecedenceDFA switches the DFA into (or out of) precedence mode. Only
// valid while the DFA is still empty.
func (d *DFA) SetPrecedenceDFA(v bool) {
	if v == d.precedenceDFA {
		return
	}
	if !d.Empty() {
		panic("cannot change precedence mode of a DFA that already has states")
	}

	d.precedenceDFA = v
	if v {
		d.precedenceStarts = map[precedenceKey]*DFAState{}
	} else {
		d.precedenceStarts = nil
	}
}

// PrecedenceStartState returns the start state recorded for the given
// (precedence, full-context) pair, or nil. Panics if the DFA is not a
// precedence DFA.
func (d *DFA) PrecedenceStartState(precedence int, fullContext bool) *DFAState {
	if !d.precedenceDFA {
		panic("only precedence DFAs may have precedence start states")
	}
	return d.precedenceStarts[precedenceKey{precedence: precedence, fullContext: fullContext}]
}

// SetPrecedenceStartState records the start state for the given (precedence,
// full-context) pair. Panics if the DFA is not a precedence DFA; negative
// precedences are ignored.
func (d *DFA) SetPrecedenceStartState(precedence int, fullContext bool, start *DFAState) {
	if !d.precedenceDFA {
		panic("only precedence DFAs may have precedence start states")
	}
	if precedence < 0 {
		return
	}
	d.precedenceStarts[precedenceKey{precedence: precedence, fullContext: fullContext}] = start
}

// AddState hash-conses a state into the DFA: if a state with an equal
// configuration set already exists it is returned, otherwise the given state
// is numbered, registered, and returned.
func (d *DFA) AddState(s *DFAState) *DFAState {
	h := s.Hash()
	for _, existing := range d.states[h] {
		if existing.Equals(s) {
			return existing
		}
	}

	s.stateNumber = d.nextStateNumber
	d.nextStateNumber++
	d.states[h] = append(d.states[h], s)
	return s
}

func (d *DFA) String() string {
	mode := "symbol"
	if d.precedenceDFA {
		mode = "precedence"
	}
	return fmt.Sprintf("<decision %d, %s-keyed, edges %d..%d>", d.decision, mode, d.minDFAEdge, d.maxDFAEdge)
}
