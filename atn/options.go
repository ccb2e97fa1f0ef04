package atn

// DeserializationOptions selects which of the optional deserialization
// phases run. The zero value is not useful; start from
// DefaultDeserializationOptions.
type DeserializationOptions struct {
	// VerifyATN runs structural verification after decoding (and again
	// after any phase that rewrites the network).
	VerifyATN bool

	// GenerateRuleBypassTransitions adds, for each parser rule, an
	// alternative that matches a single synthetic bypass token in place of
	// the rule body. Tooling that wants to treat rule invocations as opaque
	// tokens turns this on; it has no effect on lexer ATNs.
	GenerateRuleBypassTransitions bool

	// Optimize runs the semantics-preserving network rewrites (set-rule
	// inlining, epsilon chain collapsing, set collapsing) to quiescence.
	Optimize bool
}

// DefaultDeserializationOptions returns the options used when the caller has
// no opinion: verify and optimize, no bypass transitions.
func DefaultDeserializationOptions() DeserializationOptions {
	return DeserializationOptions{
		VerifyATN: true,
		Optimize:  true,
	}
}
