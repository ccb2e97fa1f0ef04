package atn

import (
	"github.com/dekarrin/thunnus/internal/murmur"
)

// LexerActionType identifies which kind of deferred side effect a
// LexerAction performs when a lexer rule matches. The numeric values are
// part of the serialized form and must not be reordered. Every kind at or
// past LexerActionCustom is position-dependent: its effect depends on where
// in the input the action fires.
type LexerActionType int

const (
	LexerActionChannel LexerActionType = iota
	LexerActionMode
	LexerActionMore
	LexerActionPopMode
	LexerActionPushMode
	LexerActionSkip
	LexerActionTypeAction
	LexerActionCustom
	LexerActionIndexedCustom
)

// LexerAction is one deferred lexer side effect. Actions are immutable and
// the parameterless kinds are package singletons (LexerActionSkipInstance
// and friends) compared by identity.
type LexerAction struct {
	kind LexerActionType

	// channel
	channel int

	// mode, push-mode
	mode int

	// type
	tokenType int

	// custom
	ruleIndex   int
	actionIndex int

	// indexed-custom
	offset int
	inner  *LexerAction
}

// The parameterless actions are constructed once and never mutated; identity
// comparison against them is part of their contract.
var (
	LexerActionSkipInstance    = &LexerAction{kind: LexerActionSkip}
	LexerActionMoreInstance    = &LexerAction{kind: LexerActionMore}
	LexerActionPopModeInstance = &LexerAction{kind: LexerActionPopMode}
)

// NewChannelAction creates an action that moves the matched token onto the
// given channel.
func NewChannelAction(channel int) *LexerAction {
	return &LexerAction{kind: LexerActionChannel, channel: channel}
}

// NewModeAction creates an action that switches the lexer to the given mode.
func NewModeAction(mode int) *LexerAction {
	return &LexerAction{kind: LexerActionMode, mode: mode}
}

// NewPushModeAction creates an action that pushes the given mode onto the
// lexer's mode stack.
func NewPushModeAction(mode int) *LexerAction {
	return &LexerAction{kind: LexerActionPushMode, mode: mode}
}

// NewTypeAction creates an action that overrides the matched token's type.
func NewTypeAction(tokenType int) *LexerAction {
	return &LexerAction{kind: LexerActionTypeAction, tokenType: tokenType}
}

// NewCustomAction creates an action that runs grammar-supplied code
// identified by rule and action index.
func NewCustomAction(ruleIndex, actionIndex int) *LexerAction {
	return &LexerAction{kind: LexerActionCustom, ruleIndex: ruleIndex, actionIndex: actionIndex}
}

// NewIndexedCustomAction wraps a position-dependent action with the input
// offset it must execute at, pinning it before the match is committed.
func NewIndexedCustomAction(offset int, inner *LexerAction) *LexerAction {
	return &LexerAction{kind: LexerActionIndexedCustom, offset: offset, inner: inner}
}

// Kind returns which of the action kinds this action is.
func (la *LexerAction) Kind() LexerActionType {
	return la.kind
}

// PositionDependent returns whether the action's effect depends on the exact
// input position it executes at.
func (la *LexerAction) PositionDependent() bool {
	return la.kind >= LexerActionCustom
}

// Channel returns the channel of a channel action.
func (la *LexerAction) Channel() int {
	return la.channel
}

// Mode returns the mode of a mode or push-mode action.
func (la *LexerAction) Mode() int {
	return la.mode
}

// TokenType returns the token type of a type action.
func (la *LexerAction) TokenType() int {
	return la.tokenType
}

// RuleIndex returns the rule index of a custom action.
func (la *LexerAction) RuleIndex() int {
	return la.ruleIndex
}

// ActionIndex returns the action index of a custom action.
func (la *LexerAction) ActionIndex() int {
	return la.actionIndex
}

// Offset returns the pinned input offset of an indexed-custom action.
func (la *LexerAction) Offset() int {
	return la.offset
}

// Action returns the wrapped action of an indexed-custom action.
func (la *LexerAction) Action() *LexerAction {
	return la.inner
}

// Equals returns whether two actions are structurally equal.
func (la *LexerAction) Equals(o *LexerAction) bool {
	if la == o {
		return true
	}
	if o == nil || la.kind != o.kind {
		return false
	}

	switch la.kind {
	case LexerActionChannel:
		return la.channel == o.channel
	case LexerActionMode, LexerActionPushMode:
		return la.mode == o.mode
	case LexerActionTypeAction:
		return la.tokenType == o.tokenType
	case LexerActionCustom:
		return la.ruleIndex == o.ruleIndex && la.actionIndex == o.actionIndex
	case LexerActionIndexedCustom:
		return la.offset == o.offset && la.inner.Equals(o.inner)
	default:
		// the parameterless kinds carry nothing beyond their kind
		return true
	}
}

// Hash returns the action's structural hash.
func (la *LexerAction) Hash() int32 {
	h := murmur.Initialize(murmur.DefaultSeed)
	h = murmur.Update(h, int32(la.kind))

	switch la.kind {
	case LexerActionChannel:
		h = murmur.Update(h, int32(la.channel))
	case LexerActionMode, LexerActionPushMode:
		h = murmur.Update(h, int32(la.mode))
	case LexerActionTypeAction:
		h = murmur.Update(h, int32(la.tokenType))
	case LexerActionCustom:
		h = murmur.Update(h, int32(la.ruleIndex))
		h = murmur.Update(h, int32(la.actionIndex))
	case LexerActionIndexedCustom:
		h = murmur.Update(h, int32(la.offset))
		h = murmur.Update(h, la.inner.Hash())
	}

	return murmur.Finish(h, 3)
}
