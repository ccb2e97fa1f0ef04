package atn

import (
	"github.com/dekarrin/thunnus/internal/murmur"
)

// LexerActionExecutor holds the ordered list of lexer actions to run when a
// match commits. Executors are immutable; AppendAction and
// FixOffsetBeforeMatch return new executors (or the original itself when
// nothing changed, so callers can rely on referential identity as a fast
// path).
type LexerActionExecutor struct {
	actions []*LexerAction
	hash    int32
}

// NewLexerActionExecutor creates an executor over the given actions. The
// slice is owned by the executor after the call.
func NewLexerActionExecutor(actions []*LexerAction) *LexerActionExecutor {
	h := murmur.Initialize(murmur.DefaultSeed)
	for _, action := range actions {
		h = murmur.Update(h, action.Hash())
	}

	return &LexerActionExecutor{
		actions: actions,
		hash:    murmur.Finish(h, len(actions)),
	}
}

// AppendAction returns an executor running every action of executor followed
// by one more. A nil executor is treated as empty.
func AppendAction(executor *LexerActionExecutor, action *LexerAction) *LexerActionExecutor {
	if executor == nil {
		return NewLexerActionExecutor([]*LexerAction{action})
	}

	actions := make([]*LexerAction, 0, len(executor.actions)+1)
	actions = append(actions, executor.actions...)
	actions = append(actions, action)
	return NewLexerActionExecutor(actions)
}

// FixOffsetBeforeMatch pins every position-dependent action that is not
// already indexed to the given input offset, so the action still fires at
// the right place even though the lexer may keep scanning past it before the
// match commits. If no action needed pinning, the original executor is
// returned unchanged.
func (ex *LexerActionExecutor) FixOffsetBeforeMatch(offset int) *LexerActionExecutor {
	var updated []*LexerAction
	for i, action := range ex.actions {
		if action.PositionDependent() && action.Kind() != LexerActionIndexedCustom {
			if updated == nil {
				updated = make([]*LexerAction, len(ex.actions))
				copy(updated, ex.actions)
			}
			updated[i] = NewIndexedCustomAction(offset, updated[i])
		}
	}

	if updated == nil {
		return ex
	}

	return NewLexerActionExecutor(updated)
}

// Actions returns the executor's action list in execution order. Callers
// must not modify it.
func (ex *LexerActionExecutor) Actions() []*LexerAction {
	return ex.actions
}

// Hash returns the executor's precomputed structural hash.
func (ex *LexerActionExecutor) Hash() int32 {
	return ex.hash
}

// Equals returns whether two executors hold structurally equal action lists.
func (ex *LexerActionExecutor) Equals(o *LexerActionExecutor) bool {
	if ex == o {
		return true
	}
	if o == nil || ex.hash != o.hash || len(ex.actions) != len(o.actions) {
		return false
	}

	for i := range ex.actions {
		if !ex.actions[i].Equals(o.actions[i]) {
			return false
		}
	}

	return true
}
