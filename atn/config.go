package atn

import (
	"github.com/dekarrin/thunnus/internal/murmur"
)

// Config is one hypothesis the simulator tracks during prediction: being in
// a particular ATN state, having predicted a particular alternative, with a
// particular stack of pending returns and a particular set of semantic
// predicates still to pass.
type Config struct {
	// State is the ATN state this configuration is at.
	State *State

	// Alt is the alternative this configuration predicts, 1-indexed.
	Alt int

	// Context is the prediction context: the stack of return states pending
	// above State.
	Context *PredictionContext

	// Semantic is the conjunction of predicates that must hold for this
	// configuration to be viable. Never nil; SemanticContextNone when
	// unconditional.
	Semantic *SemanticContext
}

// NewConfig creates a configuration. A nil semantic context is normalized to
// SemanticContextNone.
func NewConfig(state *State, alt int, context *PredictionContext, semantic *SemanticContext) *Config {
	if semantic == nil {
		semantic = SemanticContextNone
	}
	return &Config{State: state, Alt: alt, Context: context, Semantic: semantic}
}

// Equals returns whether two configurations agree on state, alternative,
// context, and semantic context.
func (c *Config) Equals(o *Config) bool {
	if c == o {
		return true
	}
	if o == nil {
		return false
	}

	return c.State.StateNumber() == o.State.StateNumber() &&
		c.Alt == o.Alt &&
		c.Context.Equals(o.Context) &&
		c.Semantic.Equals(o.Semantic)
}

// Hash returns the configuration's structural hash.
func (c *Config) Hash() int32 {
	h := murmur.Initialize(murmur.DefaultSeed)
	h = murmur.Update(h, int32(c.State.StateNumber()))
	h = murmur.Update(h, int32(c.Alt))
	h = murmur.Update(h, c.Context.Hash())
	h = murmur.Update(h, c.Semantic.Hash())
	return murmur.Finish(h, 4)
}

// ConfigSet is the ordered collection of configurations a DFA state stands
// for. The simulator builds these during closure; the DFA skeleton only
// needs their equality and hash, which ignore insertion order.
type ConfigSet struct {
	configs []*Config
}

// NewConfigSet creates a set over the given configurations. The slice is
// owned by the set after the call.
func NewConfigSet(configs []*Config) *ConfigSet {
	return &ConfigSet{configs: configs}
}

// Configs returns the configurations in insertion order. Callers must not
// modify the slice.
func (cs *ConfigSet) Configs() []*Config {
	return cs.configs
}

// Len returns the number of configurations in the set.
func (cs *ConfigSet) Len() int {
	return len(cs.configs)
}

// Add appends a configuration unless a structurally equal one is already
// present. Returns whether the set grew.
func (cs *ConfigSet) Add(config *Config) bool {
	for _, existing := range cs.configs {
		if existing.Equals(config) {
			return false
		}
	}
	cs.configs = append(cs.configs, config)
	return true
}

// Equals returns whether two sets hold the same configurations, regardless
// of insertion order.
func (cs *ConfigSet) Equals(o *ConfigSet) bool {
	if cs == o {
		return true
	}
	if o == nil || len(cs.configs) != len(o.configs) {
		return false
	}

	for _, config := range cs.configs {
		found := false
		for _, other := range o.configs {
			if config.Equals(other) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	return true
}

// Hash returns an order-insensitive hash over the member configurations.
func (cs *ConfigSet) Hash() int32 {
	var folded int32
	for _, config := range cs.configs {
		folded ^= config.Hash()
	}

	h := murmur.Initialize(murmur.DefaultSeed)
	h = murmur.Update(h, folded)
	return murmur.Finish(h, len(cs.configs))
}
