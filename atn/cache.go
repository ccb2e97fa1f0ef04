package atn

// ContextCache hash-conses prediction-context nodes and memoizes the two
// constructors that build them, so the graph stays linear in the number of
// distinct stack shapes rather than the number of configurations touching
// them.
//
// Three tables: canonical nodes keyed by structure, children keyed by
// (parent, return state), and joins keyed by an unordered operand pair. A
// nil *ContextCache is the uncached mode: every operation falls through to
// plain construction, which is what transient work like AppendContext wants
// so it can't pollute a long-lived cache.
//
// A cache mutates on every GetChild and Join and is not safe for
// unsynchronized concurrent use.
type ContextCache struct {
	contexts map[int32][]*PredictionContext
	children map[contextChildKey]*PredictionContext
	joins    map[contextPair]*PredictionContext
}

type contextChildKey struct {
	parent      *PredictionContext
	returnState int
}

// NewContextCache creates an empty, enabled cache.
func NewContextCache() *ContextCache {
	return &ContextCache{
		contexts: map[int32][]*PredictionContext{},
		children: map[contextChildKey]*PredictionContext{},
		joins:    map[contextPair]*PredictionContext{},
	}
}

// Uncached returns the cache value that caches nothing.
func Uncached() *ContextCache {
	return nil
}

// GetAsCached returns the canonical instance structurally equal to context,
// registering context as canonical if no equal node was seen before.
func (c *ContextCache) GetAsCached(context *PredictionContext) *PredictionContext {
	if c == nil {
		return context
	}

	bucket := c.contexts[context.hash]
	for _, existing := range bucket {
		if existing.Equals(context) {
			return existing
		}
	}

	c.contexts[context.hash] = append(bucket, context)
	return context
}

// GetChild returns the (canonical) singleton node for (parent, returnState),
// building it on first request.
func (c *ContextCache) GetChild(context *PredictionContext, returnState int) *PredictionContext {
	if c == nil {
		return GetChild(context, returnState)
	}

	key := contextChildKey{parent: context, returnState: returnState}
	if child, ok := c.children[key]; ok {
		return child
	}

	child := c.GetAsCached(GetChild(context, returnState))
	c.children[key] = child
	return child
}

// Join returns the (canonical) merge of x and y. The memo key is
// commutative: Join(x, y) and Join(y, x) share one entry.
func (c *ContextCache) Join(x, y *PredictionContext) *PredictionContext {
	if c == nil {
		return Join(x, y, c)
	}

	if joined, ok := c.joins[contextPair{x, y}]; ok {
		return joined
	}
	if joined, ok := c.joins[contextPair{y, x}]; ok {
		return joined
	}

	joined := c.GetAsCached(Join(x, y, c))
	c.joins[contextPair{x, y}] = joined
	return joined
}
