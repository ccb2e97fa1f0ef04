package atn

import (
	"github.com/dekarrin/thunnus/intervals"
)

// inlineSetRules finds every rule whose whole body reduces, through
// epsilons, to a single atom, range, or set match, and rewrites each call
// site to perform the match directly instead of invoking the rule. The call
// becomes an epsilon into a fresh intermediate state holding the match
// transition straight to the call's follow state. Returns how many calls
// were inlined.
func inlineSetRules(a *ATN) int {
	inlinedCalls := 0

	ruleToInlineTransition := make([]*Transition, len(a.RuleStartStates()))
	for i, startState := range a.RuleStartStates() {
		middleState := startState
		for middleState.OnlyHasEpsilonTransitions() &&
			len(middleState.OptimizedTransitions()) == 1 &&
			middleState.OptimizedTransition(0).Kind() == TransitionEpsilon {
			middleState = middleState.OptimizedTransition(0).Target()
		}

		if len(middleState.OptimizedTransitions()) != 1 {
			continue
		}

		matchTransition := middleState.OptimizedTransition(0)
		matchTarget := matchTransition.Target()
		if matchTransition.IsEpsilon() ||
			!matchTarget.OnlyHasEpsilonTransitions() ||
			len(matchTarget.OptimizedTransitions()) != 1 ||
			matchTarget.OptimizedTransition(0).Target().Kind() != StateRuleStop {
			continue
		}

		switch matchTransition.Kind() {
		case TransitionAtom, TransitionRange, TransitionSet:
			ruleToInlineTransition[i] = matchTransition
		default:
			// not-set and wildcard bodies would need complement handling at
			// the call site; everything else isn't a plain match at all
			continue
		}
	}

	for stateNumber := 0; stateNumber < len(a.States()); stateNumber++ {
		state := a.States()[stateNumber]
		if state == nil || state.RuleIndex() == InvalidRuleIndex {
			continue
		}

		var optimizedTransitions []*Transition
		for i := 0; i < len(state.OptimizedTransitions()); i++ {
			transition := state.OptimizedTransition(i)
			if transition.Kind() != TransitionRule {
				if len(optimizedTransitions) > 0 {
					optimizedTransitions = append(optimizedTransitions, transition)
				}

				continue
			}

			effective := ruleToInlineTransition[transition.Target().RuleIndex()]
			if effective == nil {
				if len(optimizedTransitions) > 0 {
					optimizedTransitions = append(optimizedTransitions, transition)
				}

				continue
			}

			if len(optimizedTransitions) == 0 && i > 0 {
				optimizedTransitions = append(optimizedTransitions, state.OptimizedTransitions()[:i]...)
			}

			inlinedCalls++
			target := transition.FollowState()
			intermediateState := NewState(StateBasic, len(a.States()), target.RuleIndex())
			a.AddState(intermediateState)
			optimizedTransitions = append(optimizedTransitions, NewEpsilonTransition(intermediateState))

			switch effective.Kind() {
			case TransitionAtom:
				intermediateState.AddTransition(NewAtomTransition(target, effective.Label()))
			case TransitionRange:
				lo, hi := effective.Range()
				intermediateState.AddTransition(NewRangeTransition(target, lo, hi))
			case TransitionSet:
				intermediateState.AddTransition(NewSetTransition(target, effective.Set()))
			default:
				panic("inlining a rule body transition kind that cannot be inlined")
			}
		}

		if len(optimizedTransitions) > 0 {
			replaceOptimizedTransitions(state, optimizedTransitions)
		}
	}

	return inlinedCalls
}

// combineChainedEpsilons splices out basic epsilon-only intermediate states:
// an epsilon edge into such a state is replaced by direct epsilon edges to
// the state's own targets, provided neither hop carries an outermost
// precedence return. Returns how many edges were bypassed.
func combineChainedEpsilons(a *ATN) int {
	removedEdges := 0

	for _, state := range a.States() {
		if state == nil || !state.OnlyHasEpsilonTransitions() || state.Kind() == StateRuleStop {
			continue
		}

		var optimizedTransitions []*Transition
	nextTransition:
		for i := 0; i < len(state.OptimizedTransitions()); i++ {
			transition := state.OptimizedTransition(i)
			intermediate := transition.Target()
			if transition.Kind() != TransitionEpsilon ||
				transition.OutermostPrecedenceReturn() != NoOutermostPrecedenceReturn ||
				intermediate.Kind() != StateBasic ||
				!intermediate.OnlyHasEpsilonTransitions() {
				if len(optimizedTransitions) > 0 {
					optimizedTransitions = append(optimizedTransitions, transition)
				}

				continue
			}

			for j := 0; j < len(intermediate.OptimizedTransitions()); j++ {
				hop := intermediate.OptimizedTransition(j)
				if hop.Kind() != TransitionEpsilon || hop.OutermostPrecedenceReturn() != NoOutermostPrecedenceReturn {
					if len(optimizedTransitions) > 0 {
						optimizedTransitions = append(optimizedTransitions, transition)
					}

					continue nextTransition
				}
			}

			removedEdges++
			if len(optimizedTransitions) == 0 && i > 0 {
				optimizedTransitions = append(optimizedTransitions, state.OptimizedTransitions()[:i]...)
			}

			for j := 0; j < len(intermediate.OptimizedTransitions()); j++ {
				target := intermediate.OptimizedTransition(j).Target()
				optimizedTransitions = append(optimizedTransitions, NewEpsilonTransition(target))
			}
		}

		if len(optimizedTransitions) > 0 {
			replaceOptimizedTransitions(state, optimizedTransitions)
		}
	}

	return removedEdges
}

// optimizeSets fuses the alternatives of a decision that each just match one
// atom, range, or set into the shared block end. The matching alternatives
// collapse into a single epsilon to a fresh state carrying one transition
// over the union of their labels. Lexer decisions pass preserveOrder, which
// disables the pass, because alternative order breaks ties between ambiguous
// token rules. Returns how many alternatives were fused away.
func optimizeSets(a *ATN, preserveOrder bool) int {
	if preserveOrder {
		// this optimization currently doesn't preserve edge order
		return 0
	}

	removedPaths := 0
	for _, decision := range a.Decisions() {
		var setTransitions intervals.Set
		for i := 0; i < len(decision.OptimizedTransitions()); i++ {
			epsilonTransition := decision.OptimizedTransition(i)
			if epsilonTransition.Kind() != TransitionEpsilon {
				continue
			}

			if len(epsilonTransition.Target().OptimizedTransitions()) != 1 {
				continue
			}

			transition := epsilonTransition.Target().OptimizedTransition(0)
			if transition.Target().Kind() != StateBlockEnd {
				continue
			}

			switch transition.Kind() {
			case TransitionAtom, TransitionRange, TransitionSet:
				setTransitions.Insert(i)
			}
		}

		if setTransitions.Len() <= 1 {
			continue
		}

		var optimizedTransitions []*Transition
		for i := 0; i < len(decision.OptimizedTransitions()); i++ {
			if !setTransitions.Contains(i) {
				optimizedTransitions = append(optimizedTransitions, decision.OptimizedTransition(i))
			}
		}

		blockEndState := decision.OptimizedTransition(setTransitions.Min()).Target().OptimizedTransition(0).Target()
		var matchSet intervals.Set
		for _, pair := range setTransitions.Pairs() {
			for j := pair.Lo; j < pair.Hi; j++ {
				matchTransition := decision.OptimizedTransition(j).Target().OptimizedTransition(0)
				switch matchTransition.Kind() {
				case TransitionAtom:
					matchSet.Insert(matchTransition.Label())
				case TransitionRange:
					lo, hi := matchTransition.Range()
					matchSet.InsertRange(lo, hi)
				case TransitionSet:
					matchSet.InsertSet(matchTransition.Set())
				}
			}
		}

		var newTransition *Transition
		if matchSet.Count() == 1 {
			if matchSet.Len() == 1 {
				newTransition = NewAtomTransition(blockEndState, matchSet.Min())
			} else {
				pair := matchSet.Pairs()[0]
				newTransition = NewRangeTransition(blockEndState, pair.Lo, pair.Hi)
			}
		} else {
			newTransition = NewSetTransition(blockEndState, matchSet)
		}

		setOptimizedState := NewState(StateBasic, len(a.States()), decision.RuleIndex())
		a.AddState(setOptimizedState)

		setOptimizedState.AddTransition(newTransition)
		optimizedTransitions = append(optimizedTransitions, NewEpsilonTransition(setOptimizedState))

		removedPaths += len(decision.OptimizedTransitions()) - len(optimizedTransitions)

		replaceOptimizedTransitions(decision, optimizedTransitions)
	}

	return removedPaths
}

// replaceOptimizedTransitions installs transitions as the state's optimized
// overlay, discarding any previous overlay.
func replaceOptimizedTransitions(state *State, transitions []*Transition) {
	if state.Optimized() {
		for len(state.OptimizedTransitions()) > 0 {
			state.RemoveOptimizedTransition(len(state.OptimizedTransitions()) - 1)
		}
	}

	for i, t := range transitions {
		state.AddOptimizedTransition(i, t)
	}
}

// testTailCall reports whether a rule invocation is a tail call: every state
// reachable from its follow state, along the chosen transition view, is
// either the rule stop or has only epsilon transitions onward. A previously
// recorded positive result short-circuits, which also makes the analysis
// monotone across reruns.
func testTailCall(a *ATN, transition *Transition, optimizedPath bool) bool {
	if !optimizedPath && transition.TailCall() {
		return true
	}
	if optimizedPath && transition.OptimizedTailCall() {
		return true
	}

	reachable := make([]bool, len(a.States()))
	worklist := []*State{transition.FollowState()}
	for len(worklist) > 0 {
		state := worklist[len(worklist)-1]
		worklist = worklist[:len(worklist)-1]
		if reachable[state.StateNumber()] {
			continue
		}
		reachable[state.StateNumber()] = true

		if state.Kind() == StateRuleStop {
			continue
		}

		if !state.OnlyHasEpsilonTransitions() {
			return false
		}

		transitions := state.Transitions()
		if optimizedPath {
			transitions = state.OptimizedTransitions()
		}

		for _, t := range transitions {
			if t.Kind() != TransitionEpsilon {
				return false
			}

			worklist = append(worklist, t.Target())
		}
	}

	return true
}

// identifyTailCalls computes and caches the tail-call flags of every rule
// transition, over both the true and the optimized transition views.
func identifyTailCalls(a *ATN) {
	for _, state := range a.States() {
		if state == nil {
			continue
		}

		for _, transition := range state.Transitions() {
			if transition.Kind() != TransitionRule {
				continue
			}

			transition.SetTailCall(testTailCall(a, transition, false))
			transition.SetOptimizedTailCall(testTailCall(a, transition, true))
		}

		if !state.Optimized() {
			continue
		}

		for _, transition := range state.OptimizedTransitions() {
			if transition.Kind() != TransitionRule {
				continue
			}

			transition.SetTailCall(testTailCall(a, transition, false))
			transition.SetOptimizedTailCall(testTailCall(a, transition, true))
		}
	}
}
