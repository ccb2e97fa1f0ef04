package atn

import (
	"fmt"

	"github.com/dekarrin/thunnus"
	"github.com/dekarrin/thunnus/intervals"

	"github.com/google/uuid"
	"golang.org/x/exp/slices"
)

// SerializedVersion is the only payload version this deserializer accepts.
const SerializedVersion = 3

// BaseSerializedUUID tags payloads from before lexer actions were
// serialized explicitly.
var BaseSerializedUUID = uuid.MustParse("E4178468-DF95-44D0-AD87-F22A5D5FB6D3")

// AddedLexerActionsUUID tags payloads that carry an explicit lexer action
// table.
var AddedLexerActionsUUID = uuid.MustParse("AB35191A-1603-487E-B75A-479B831EAF6D")

// supportedUUIDs lists every payload tag this deserializer accepts, oldest
// first. A payload tagged with a later entry carries every feature of the
// earlier ones.
var supportedUUIDs = []uuid.UUID{BaseSerializedUUID, AddedLexerActionsUUID}

func isFeatureSupported(feature, actual uuid.UUID) bool {
	featureIndex := slices.Index(supportedUUIDs, feature)
	if featureIndex < 0 {
		return false
	}

	actualIndex := slices.Index(supportedUUIDs, actual)
	return actualIndex >= featureIndex
}

// Deserializer reconstructs an ATN from its compact serialized form: a
// vector of unsigned 16-bit words emitted by the grammar compiler.
type Deserializer struct {
	options DeserializationOptions
}

// NewDeserializer creates a deserializer with the default options.
func NewDeserializer() *Deserializer {
	return NewDeserializerWithOptions(DefaultDeserializationOptions())
}

// NewDeserializerWithOptions creates a deserializer with explicit options.
func NewDeserializerWithOptions(options DeserializationOptions) *Deserializer {
	return &Deserializer{options: options}
}

// wireReader walks the adjusted payload word by word. A read past the end
// panics with the index error, which Deserialize converts into a
// malformed-payload error.
type wireReader struct {
	data []int
	pos  int
}

func (r *wireReader) take() int {
	v := r.data[r.pos]
	r.pos++
	return v
}

// wireUUID reassembles the 8-word UUID section, least significant word
// first: words 0-3 hold UUID bytes 8-15 (clock sequence and node) as one
// 64-bit quantity, word 4 the time-high field, word 5 the time-mid field,
// and words 6-7 the time-low field (low word first).
func wireUUID(data []int, offset int) uuid.UUID {
	a := uint32(uint16(data[offset+6])) | uint32(uint16(data[offset+7]))<<16
	b := uint16(data[offset+5])
	c := uint16(data[offset+4])
	rest := uint64(uint16(data[offset])) |
		uint64(uint16(data[offset+1]))<<16 |
		uint64(uint16(data[offset+2]))<<32 |
		uint64(uint16(data[offset+3]))<<48

	var u uuid.UUID
	u[0] = byte(a >> 24)
	u[1] = byte(a >> 16)
	u[2] = byte(a >> 8)
	u[3] = byte(a)
	u[4] = byte(b >> 8)
	u[5] = byte(b)
	u[6] = byte(c >> 8)
	u[7] = byte(c)
	for i := 0; i < 8; i++ {
		u[8+i] = byte(rest >> uint(56-8*i))
	}

	return u
}

// Deserialize decodes a serialized ATN, links and verifies it, applies the
// configured synthesis and optimization phases, and returns it ready for
// simulation. The payload is not modified.
func (d *Deserializer) Deserialize(payload []uint16) (result *ATN, err error) {
	// any stray read past the payload end or link to a state number the
	// payload never defined surfaces as a panic below; report all of them
	// as one kind of failure rather than crashing on compiler output we
	// were never going to make sense of
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = fmt.Errorf("malformed serialized ATN: %v", r)
		}
	}()

	// every word except the version is offset by +2 on the wire (legacy
	// smoothing so the payload contains no NUL or BOM words)
	data := make([]int, len(payload))
	if len(payload) > 0 {
		data[0] = int(payload[0])
	}
	for i := 1; i < len(payload); i++ {
		data[i] = int(payload[i] - 2)
	}

	r := &wireReader{data: data}

	version := r.take()
	if version != SerializedVersion {
		return nil, fmt.Errorf("could not deserialize ATN with version %d (expected %d)", version, SerializedVersion)
	}

	guid := wireUUID(data, r.pos)
	r.pos += 8
	if !slices.Contains(supportedUUIDs, guid) {
		return nil, fmt.Errorf("could not deserialize ATN with UUID %s (expected %s or a legacy UUID)", guid, AddedLexerActionsUUID)
	}

	supportsLexerActions := isFeatureSupported(AddedLexerActionsUUID, guid)

	grammarType := GrammarType(r.take())
	maxTokenType := r.take()
	a := NewATN(grammarType, maxTokenType)

	//
	// STATES
	//
	type deferredLink struct {
		state  *State
		number int
	}
	var loopBackNumbers []deferredLink
	var endStateNumbers []deferredLink

	nstates := r.take()
	for i := 0; i < nstates; i++ {
		kind := StateType(r.take())
		if kind == StateInvalid {
			a.AddState(nil)
			continue
		}

		ruleIndex := r.take()
		if ruleIndex == 0xFFFF {
			ruleIndex = InvalidRuleIndex
		}

		state := NewState(kind, len(a.States()), ruleIndex)
		if kind == StateLoopEnd {
			loopBackNumbers = append(loopBackNumbers, deferredLink{state: state, number: r.take()})
		} else if state.IsBlockStart() {
			endStateNumbers = append(endStateNumbers, deferredLink{state: state, number: r.take()})
		}

		a.AddState(state)
	}

	// the states the links point at may not have existed yet while reading,
	// so resolve them only now
	for _, link := range loopBackNumbers {
		link.state.SetLoopBackState(a.State(link.number))
	}
	for _, link := range endStateNumbers {
		link.state.SetEndState(a.State(link.number))
	}

	numNonGreedy := r.take()
	for i := 0; i < numNonGreedy; i++ {
		a.State(r.take()).SetGreedy(false)
	}

	numSLL := r.take()
	for i := 0; i < numSLL; i++ {
		a.State(r.take()).SetSLL(true)
	}

	numPrecedence := r.take()
	for i := 0; i < numPrecedence; i++ {
		a.State(r.take()).SetPrecedenceRule(true)
	}

	//
	// RULES
	//
	nrules := r.take()
	if a.IsLexer() {
		a.ruleToTokenType = make([]int, nrules)
	}

	a.ruleStartStates = make([]*State, nrules)
	for i := 0; i < nrules; i++ {
		start := a.State(r.take())
		start.SetLeftFactored(r.take() != 0)
		a.ruleStartStates[i] = start

		if a.IsLexer() {
			tokenType := r.take()
			if tokenType == 0xFFFF {
				tokenType = thunnus.TokenEOF
			}
			a.ruleToTokenType[i] = tokenType

			if !supportsLexerActions {
				// this metadata predates the explicit action table; nothing
				// reads it anymore but it still occupies a word
				_ = r.take()
			}
		}
	}

	a.ruleStopStates = make([]*State, nrules)
	for _, state := range a.States() {
		if state == nil || state.Kind() != StateRuleStop {
			continue
		}

		a.ruleStopStates[state.RuleIndex()] = state
		a.ruleStartStates[state.RuleIndex()].SetStopState(state)
	}

	//
	// MODES
	//
	nmodes := r.take()
	for i := 0; i < nmodes; i++ {
		a.modeStartStates = append(a.modeStartStates, a.State(r.take()))
	}

	a.modeDFA = make([]*DFA, nmodes)
	for i := 0; i < nmodes; i++ {
		a.modeDFA[i] = NewDFA(a, a.modeStartStates[i], 0)
	}

	//
	// SETS
	//
	var sets []intervals.Set
	nsets := r.take()
	for i := 0; i < nsets; i++ {
		nintervals := r.take()
		var set intervals.Set

		if r.take() != 0 {
			set.Insert(thunnus.TokenEOF)
		}

		for j := 0; j < nintervals; j++ {
			lo := r.take()
			hiInclusive := r.take()
			set.InsertRange(lo, hiInclusive+1)
		}

		sets = append(sets, set)
	}

	//
	// EDGES
	//
	nedges := r.take()
	for i := 0; i < nedges; i++ {
		src := r.take()
		trg := r.take()
		kind := TransitionType(r.take())
		arg1 := r.take()
		arg2 := r.take()
		arg3 := r.take()

		t, err := edgeFactory(a, kind, trg, arg1, arg2, arg3, sets)
		if err != nil {
			return nil, err
		}

		a.State(src).AddTransition(t)
	}

	// edges leaving rule stops can be derived from the rule transitions, so
	// they aren't serialized
	for _, state := range a.States() {
		if state == nil {
			continue
		}

		returningToLeftFactored := state.RuleIndex() != InvalidRuleIndex && a.ruleStartStates[state.RuleIndex()].LeftFactored()
		for _, t := range state.Transitions() {
			if t.Kind() != TransitionRule {
				continue
			}

			calleeRule := t.Target().RuleIndex()
			returningFromLeftFactored := a.ruleStartStates[calleeRule].LeftFactored()
			if !returningFromLeftFactored && returningToLeftFactored {
				continue
			}

			outermostPrecedenceReturn := NoOutermostPrecedenceReturn
			if a.ruleStartStates[calleeRule].PrecedenceRule() && t.Precedence() == 0 {
				outermostPrecedenceReturn = calleeRule
			}

			a.ruleStopStates[calleeRule].AddTransition(NewEpsilonReturnTransition(t.FollowState(), outermostPrecedenceReturn))
		}
	}

	for _, state := range a.States() {
		if state == nil {
			continue
		}

		if state.IsBlockStart() {
			// we need to know the end state to set its start state
			if state.EndState() == nil {
				return nil, fmt.Errorf("block start state %d has no end state", state.StateNumber())
			}

			// block end states can only be associated with a single block
			// start state
			if state.EndState().StartState() != nil {
				return nil, fmt.Errorf("block end state %d has two start states", state.EndState().StateNumber())
			}

			state.EndState().SetStartState(state)
		}

		if state.Kind() == StatePlusLoopBack {
			for _, t := range state.Transitions() {
				if t.Target().Kind() == StatePlusBlockStart {
					t.Target().SetLoopBackState(state)
				}
			}
		} else if state.Kind() == StateStarLoopBack {
			for _, t := range state.Transitions() {
				if t.Target().Kind() == StateStarLoopEntry {
					t.Target().SetLoopBackState(state)
				}
			}
		}
	}

	//
	// DECISIONS
	//
	ndecisions := r.take()
	for i := 0; i < ndecisions; i++ {
		state := a.State(r.take())
		state.SetDecision(i)
		a.decisions = append(a.decisions, state)
	}

	//
	// LEXER ACTIONS
	//
	if a.IsLexer() {
		if supportsLexerActions {
			a.lexerActions = make([]*LexerAction, r.take())
			for i := range a.lexerActions {
				actionType := LexerActionType(r.take())

				data1 := r.take()
				if data1 == 0xFFFF {
					data1 = -1
				}

				data2 := r.take()
				if data2 == 0xFFFF {
					data2 = -1
				}

				action, err := lexerActionFactory(actionType, data1, data2)
				if err != nil {
					return nil, err
				}

				a.lexerActions[i] = action
			}
		} else {
			// older payloads carried the custom-action index directly on the
			// action transition; convert each of those into an entry of the
			// new action table and point the transition at it
			var legacyActions []*LexerAction
			for _, state := range a.States() {
				if state == nil {
					continue
				}

				for i, t := range state.Transitions() {
					if t.Kind() != TransitionAction {
						continue
					}

					action := NewCustomAction(t.RuleIndex(), t.ActionIndex())
					state.SetTransition(i, NewActionTransition(t.Target(), t.RuleIndex(), len(legacyActions), false))
					legacyActions = append(legacyActions, action)
				}
			}

			a.lexerActions = legacyActions
		}
	}

	markPrecedenceDecisions(a)

	a.decisionDFA = make([]*DFA, ndecisions)
	for i := 0; i < ndecisions; i++ {
		a.decisionDFA[i] = NewDFA(a, a.decisions[i], i)
	}

	if d.options.VerifyATN {
		if err := verifyATN(a); err != nil {
			return nil, err
		}
	}

	if d.options.GenerateRuleBypassTransitions && a.GrammarType() == GrammarParser {
		if err := generateRuleBypassTransitions(a); err != nil {
			return nil, err
		}

		if d.options.VerifyATN {
			// reverify after modification
			if err := verifyATN(a); err != nil {
				return nil, err
			}
		}
	}

	if d.options.Optimize {
		for {
			optimizationCount := 0
			optimizationCount += inlineSetRules(a)
			optimizationCount += combineChainedEpsilons(a)
			preserveOrder := a.IsLexer()
			optimizationCount += optimizeSets(a, preserveOrder)
			if optimizationCount == 0 {
				break
			}
		}

		if d.options.VerifyATN {
			// reverify after modification
			if err := verifyATN(a); err != nil {
				return nil, err
			}
		}
	}

	identifyTailCalls(a)

	return a, nil
}

// edgeFactory builds the transition for one serialized edge record.
func edgeFactory(a *ATN, kind TransitionType, targetStateNumber, arg1, arg2, arg3 int, sets []intervals.Set) (*Transition, error) {
	target := a.State(targetStateNumber)
	switch kind {
	case TransitionEpsilon:
		return NewEpsilonTransition(target), nil

	case TransitionRange:
		// serialized ranges are inclusive on both ends; the in-memory form
		// is half-open
		if arg3 != 0 {
			return NewRangeTransition(target, thunnus.TokenEOF, arg2+1), nil
		}
		return NewRangeTransition(target, arg1, arg2+1), nil

	case TransitionRule:
		return NewRuleTransition(a.State(arg1), arg2, arg3, target), nil

	case TransitionPredicate:
		return NewPredicateTransition(target, arg1, arg2, arg3 != 0), nil

	case TransitionPrecedence:
		return NewPrecedenceTransition(target, arg1), nil

	case TransitionAtom:
		if arg3 != 0 {
			return NewAtomTransition(target, thunnus.TokenEOF), nil
		}
		return NewAtomTransition(target, arg1), nil

	case TransitionAction:
		return NewActionTransition(target, arg1, arg2, arg3 != 0), nil

	case TransitionSet:
		return NewSetTransition(target, sets[arg1]), nil

	case TransitionNotSet:
		return NewNotSetTransition(target, sets[arg1]), nil

	case TransitionWildcard:
		return NewWildcardTransition(target), nil

	default:
		return nil, fmt.Errorf("edge has invalid transition type %d", kind)
	}
}

// lexerActionFactory builds the lexer action for one serialized action
// record.
func lexerActionFactory(kind LexerActionType, data1, data2 int) (*LexerAction, error) {
	switch kind {
	case LexerActionChannel:
		return NewChannelAction(data1), nil

	case LexerActionCustom:
		return NewCustomAction(data1, data2), nil

	case LexerActionMode:
		return NewModeAction(data1), nil

	case LexerActionMore:
		return LexerActionMoreInstance, nil

	case LexerActionPopMode:
		return LexerActionPopModeInstance, nil

	case LexerActionPushMode:
		return NewPushModeAction(data1), nil

	case LexerActionSkip:
		return LexerActionSkipInstance, nil

	case LexerActionTypeAction:
		return NewTypeAction(data1), nil

	default:
		return nil, fmt.Errorf("lexer action has invalid type %d", kind)
	}
}

// markPrecedenceDecisions finds each star-loop-entry that is the
// continue-or-complete decision of a precedence rule: its rule is a
// precedence rule and its last alternative leads to a loop end that
// epsilon-exits straight to the rule stop.
func markPrecedenceDecisions(a *ATN) {
	for _, state := range a.States() {
		if state == nil || state.Kind() != StateStarLoopEntry {
			continue
		}

		if !a.RuleStartStates()[state.RuleIndex()].PrecedenceRule() {
			continue
		}

		maybeLoopEnd := state.Transition(len(state.Transitions()) - 1).Target()
		if maybeLoopEnd.Kind() != StateLoopEnd {
			continue
		}

		if maybeLoopEnd.OnlyHasEpsilonTransitions() && maybeLoopEnd.Transition(0).Target().Kind() == StateRuleStop {
			state.SetPrecedenceRuleDecision(true)
		}
	}
}
