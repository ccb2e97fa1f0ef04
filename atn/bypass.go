package atn

import "fmt"

// generateRuleBypassTransitions adds, for each parser rule, an extra
// alternative that matches one synthetic bypass token in place of the rule's
// body. Each rule gets a fresh token type past the grammar's real ones, a
// new block around its original body, and a match state for the bypass
// token, so that for every input the original network accepts, the rewritten
// one accepts the same input with bypass tokens standing in for whole rule
// invocations.
//
// For a precedence rule only the prefix section (up to its
// continue-or-complete decision) is wrapped; the loop-back edge is excluded
// so operator repetition is never bypassed.
func generateRuleBypassTransitions(a *ATN) error {
	a.ruleToTokenType = make([]int, len(a.ruleStartStates))
	for i := range a.ruleStartStates {
		a.ruleToTokenType[i] = a.MaxTokenType() + i + 1
	}

	for i := range a.ruleStartStates {
		bypassStart := NewState(StateBlockStart, len(a.States()), i)
		a.AddState(bypassStart)

		bypassStop := NewState(StateBlockEnd, len(a.States()), i)
		a.AddState(bypassStop)

		bypassStart.SetEndState(bypassStop)
		a.DefineDecisionState(bypassStart)

		bypassStop.SetStartState(bypassStart)

		var endState *State
		var excludeTransition *Transition
		if a.ruleStartStates[i].PrecedenceRule() {
			// wrap from the beginning of the rule to the continue-or-complete
			// decision of its closure block
			for _, state := range a.States() {
				if state == nil || state.RuleIndex() != i || state.Kind() != StateStarLoopEntry {
					continue
				}

				maybeLoopEnd := state.Transition(len(state.Transitions()) - 1).Target()
				if maybeLoopEnd.Kind() != StateLoopEnd {
					continue
				}

				if maybeLoopEnd.OnlyHasEpsilonTransitions() && maybeLoopEnd.Transition(0).Target().Kind() == StateRuleStop {
					endState = state
					break
				}
			}

			if endState == nil {
				return fmt.Errorf("rule %d: couldn't identify final state of the precedence rule prefix section", i)
			}

			excludeTransition = endState.LoopBackState().Transition(0)
		} else {
			endState = a.ruleStopStates[i]
		}

		// all non-excluded transitions that currently target the end state
		// need to target the block end instead
		for _, state := range a.States() {
			if state == nil {
				continue
			}

			for _, t := range state.Transitions() {
				if t == excludeTransition {
					continue
				}

				if t.Target() == endState {
					t.SetTarget(bypassStop)
				}
			}
		}

		// all transitions leaving the rule start state need to leave the
		// block start instead
		ruleStart := a.ruleStartStates[i]
		for len(ruleStart.Transitions()) > 0 {
			t := ruleStart.RemoveTransition(len(ruleStart.Transitions()) - 1)
			bypassStart.AddTransition(t)
		}

		// link the new states
		ruleStart.AddTransition(NewEpsilonTransition(bypassStart))
		bypassStop.AddTransition(NewEpsilonTransition(endState))

		matchState := NewState(StateBasic, len(a.States()), i)
		a.AddState(matchState)
		matchState.AddTransition(NewAtomTransition(bypassStop, a.ruleToTokenType[i]))
		bypassStart.AddTransition(NewEpsilonTransition(matchState))
	}

	return nil
}
