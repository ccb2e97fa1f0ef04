package atn

import "fmt"

// VerificationError reports a structural invariant that an ATN failed after
// deserialization or rewriting. Hitting one means the payload came from a
// buggy compiler, not that the input text is wrong.
type VerificationError struct {
	// StateNumber is the state the invariant failed at.
	StateNumber int

	// Problem describes the failed invariant.
	Problem string
}

func (ve VerificationError) Error() string {
	return fmt.Sprintf("ATN verification failed at state %d: %s", ve.StateNumber, ve.Problem)
}

func checkState(condition bool, state *State, problem string) error {
	if condition {
		return nil
	}
	return VerificationError{StateNumber: state.StateNumber(), Problem: problem}
}

// verifyATN checks every structural invariant the simulator later relies on:
// no state mixes epsilon and non-epsilon edges, every deferred link got
// resolved, loop scaffolding has the exact shape the closure code assumes,
// and every real decision carries a decision index.
func verifyATN(a *ATN) error {
	for _, state := range a.States() {
		if state == nil {
			continue
		}

		if err := checkState(state.OnlyHasEpsilonTransitions() || len(state.Transitions()) <= 1, state, "mixes epsilon and non-epsilon transitions"); err != nil {
			return err
		}

		switch state.Kind() {
		case StatePlusBlockStart:
			if err := checkState(state.LoopBackState() != nil, state, "plus block start has no loop-back state"); err != nil {
				return err
			}

		case StateStarLoopEntry:
			if err := checkState(state.LoopBackState() != nil, state, "star loop entry has no loop-back state"); err != nil {
				return err
			}
			if err := checkState(len(state.Transitions()) == 2, state, "star loop entry does not have exactly two transitions"); err != nil {
				return err
			}

			first := state.Transition(0).Target().Kind()
			second := state.Transition(1).Target().Kind()
			switch first {
			case StateStarBlockStart:
				if err := checkState(second == StateLoopEnd, state, "star loop entry block alternative is not paired with a loop end"); err != nil {
					return err
				}
				if err := checkState(state.Greedy(), state, "non-greedy star loop entry lists its block first"); err != nil {
					return err
				}
			case StateLoopEnd:
				if err := checkState(second == StateStarBlockStart, state, "star loop entry loop-end alternative is not paired with a block start"); err != nil {
					return err
				}
				if err := checkState(!state.Greedy(), state, "greedy star loop entry lists its loop end first"); err != nil {
					return err
				}
			default:
				return VerificationError{StateNumber: state.StateNumber(), Problem: "star loop entry transitions target neither block start nor loop end"}
			}

		case StateStarLoopBack:
			if err := checkState(len(state.Transitions()) == 1, state, "star loop back does not have exactly one transition"); err != nil {
				return err
			}
			if err := checkState(state.Transition(0).Target().Kind() == StateStarLoopEntry, state, "star loop back does not return to a star loop entry"); err != nil {
				return err
			}

		case StateLoopEnd:
			if err := checkState(state.LoopBackState() != nil, state, "loop end has no loop-back state"); err != nil {
				return err
			}

		case StateRuleStart:
			if err := checkState(state.StopState() != nil, state, "rule start has no stop state"); err != nil {
				return err
			}

		case StateBlockEnd:
			if err := checkState(state.StartState() != nil, state, "block end has no start state"); err != nil {
				return err
			}
		}

		if state.IsBlockStart() {
			if err := checkState(state.EndState() != nil, state, "block start has no end state"); err != nil {
				return err
			}
		}

		if state.IsDecision() {
			if err := checkState(len(state.Transitions()) <= 1 || state.Decision() != InvalidDecision, state, "decision state with alternatives has no decision index"); err != nil {
				return err
			}
		} else {
			if err := checkState(len(state.Transitions()) <= 1 || state.Kind() == StateRuleStop, state, "non-decision state has multiple alternatives"); err != nil {
				return err
			}
		}
	}

	return nil
}
