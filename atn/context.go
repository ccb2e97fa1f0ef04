package atn

import (
	"math"
	"sort"

	"github.com/dekarrin/thunnus"
	"github.com/dekarrin/thunnus/internal/murmur"
	"github.com/dekarrin/thunnus/internal/util"
)

// Return-state keys reserved for the "this stack may also be empty here"
// markers. They are the largest representable keys so that, under the sorted
// return-state invariant, an empty marker is always the final entry of a
// node and HasEmpty is a constant-time last-element test.
const (
	// EmptyFullStateKey tags a final entry whose parent is EmptyFull.
	EmptyFullStateKey = math.MaxInt32

	// EmptyLocalStateKey tags a final entry whose parent is EmptyLocal.
	EmptyLocalStateKey = math.MaxInt32 - 1
)

const contextInitialHash = 1

// PredictionContext is one node of the shared DAG that represents the set of
// parser call stacks possible at a decision point. A node is an ordered
// sequence of (parent, return state) entries with the return states sorted
// ascending; a single representation covers singletons and arrays alike.
//
// Nodes are immutable once built. Construction normally goes through a
// ContextCache so that structurally equal nodes collapse to one instance,
// but equality is defined structurally because isomorphic DAGs can still be
// built along different paths before the cache sees them.
type PredictionContext struct {
	parents      []*PredictionContext
	returnStates []int
	hash         int32
}

// EmptyLocal is the "*" context: the caller is unknown, so the stack could
// be anything. It absorbs everything it is joined with. Identity comparison
// against it is part of its contract.
var EmptyLocal = &PredictionContext{hash: calculateEmptyHash()}

// EmptyFull is the "$" context: the parser is at the top of a fully-known
// stack. Identity comparison against it is part of its contract.
var EmptyFull = &PredictionContext{hash: calculateEmptyHash()}

func calculateEmptyHash() int32 {
	h := murmur.Initialize(contextInitialHash)
	return murmur.Finish(h, 0)
}

func newSingletonContext(parent *PredictionContext, returnState int) *PredictionContext {
	h := murmur.Initialize(contextInitialHash)
	h = murmur.Update(h, parent.hash)
	h = murmur.Update(h, int32(returnState))
	h = murmur.Finish(h, 2)

	return &PredictionContext{
		parents:      []*PredictionContext{parent},
		returnStates: []int{returnState},
		hash:         h,
	}
}

func newArrayContext(parents []*PredictionContext, returnStates []int) *PredictionContext {
	if len(parents) != len(returnStates) {
		panic("prediction context parents and return states must be the same length")
	}

	h := murmur.Initialize(contextInitialHash)
	for _, parent := range parents {
		h = murmur.Update(h, parent.hash)
	}
	for _, rs := range returnStates {
		h = murmur.Update(h, int32(rs))
	}
	h = murmur.Finish(h, 2*len(parents))

	return &PredictionContext{parents: parents, returnStates: returnStates, hash: h}
}

// Size returns the number of (parent, return state) entries of this node.
// The two empty sentinels have size zero.
func (pc *PredictionContext) Size() int {
	return len(pc.parents)
}

// ReturnState returns the return state of the entry at the given index.
func (pc *PredictionContext) ReturnState(index int) int {
	return pc.returnStates[index]
}

// Parent returns the parent node of the entry at the given index.
func (pc *PredictionContext) Parent(index int) *PredictionContext {
	return pc.parents[index]
}

// IsEmpty returns whether this node is one of the two empty sentinels.
func (pc *PredictionContext) IsEmpty() bool {
	return len(pc.parents) == 0
}

// IsEmptyLocal returns whether this node is the EmptyLocal sentinel.
func (pc *PredictionContext) IsEmptyLocal() bool {
	return pc == EmptyLocal
}

// HasEmpty returns whether the stacks this node represents include the empty
// stack. The empty markers sort last, so this is a last-entry test.
func (pc *PredictionContext) HasEmpty() bool {
	return pc.IsEmpty() || pc.returnStates[len(pc.returnStates)-1] == EmptyFullStateKey
}

// FindReturnState returns the index of the first entry whose return state is
// not less than the given one.
func (pc *PredictionContext) FindReturnState(returnState int) int {
	return sort.SearchInts(pc.returnStates, returnState)
}

// Hash returns the node's precomputed structural hash.
func (pc *PredictionContext) Hash() int32 {
	return pc.hash
}

// GetChild creates the singleton node representing a return to returnState
// with the given node as the rest of the stack. Prefer ContextCache.GetChild
// when a cache is in play.
func GetChild(parent *PredictionContext, returnState int) *PredictionContext {
	return newSingletonContext(parent, returnState)
}

// AddEmptyContext returns a node representing the given stacks plus the
// empty stack, by tagging on a final EmptyFull entry. Returns the node
// itself if it already has one.
func AddEmptyContext(context *PredictionContext) *PredictionContext {
	if context.HasEmpty() {
		return context
	}

	parents := make([]*PredictionContext, len(context.parents)+1)
	copy(parents, context.parents)
	parents[len(parents)-1] = EmptyFull

	returnStates := make([]int, len(context.returnStates)+1)
	copy(returnStates, context.returnStates)
	returnStates[len(returnStates)-1] = EmptyFullStateKey

	return newArrayContext(parents, returnStates)
}

// RemoveEmptyContext returns a node representing the given stacks minus the
// empty stack. Returns the node itself if it has no empty marker.
func RemoveEmptyContext(context *PredictionContext) *PredictionContext {
	if !context.HasEmpty() {
		return context
	}

	parents := make([]*PredictionContext, len(context.parents)-1)
	copy(parents, context.parents[:len(context.parents)-1])

	returnStates := make([]int, len(context.returnStates)-1)
	copy(returnStates, context.returnStates[:len(context.returnStates)-1])

	return newArrayContext(parents, returnStates)
}

// FromRuleContext lifts a runtime parser stack into a prediction context by
// following the invoking-state chain through each rule transition's follow
// state. With fullContext the lifted stack bottoms out at EmptyFull,
// otherwise at EmptyLocal.
func FromRuleContext(a *ATN, outerContext thunnus.RuleContext, fullContext bool) *PredictionContext {
	if outerContext == nil || outerContext.IsEmpty() {
		if fullContext {
			return EmptyFull
		}
		return EmptyLocal
	}

	var parent *PredictionContext
	if outerContext.Parent() != nil {
		parent = FromRuleContext(a, outerContext.Parent(), fullContext)
	} else if fullContext {
		parent = EmptyFull
	} else {
		parent = EmptyLocal
	}

	state := a.State(outerContext.InvokingState())
	rt := state.Transition(0)
	return GetChild(parent, rt.FollowState().StateNumber())
}

// Join merges two nodes into one representing the union of their stacks. The
// cache memoizes recursive merges and hash-conses results; it may be nil for
// one-off merges that must not pollute a shared cache.
func Join(context0, context1 *PredictionContext, cache *ContextCache) *PredictionContext {
	if context0 == context1 {
		return context0
	}

	if context0.IsEmpty() {
		if context0.IsEmptyLocal() {
			return context0
		}
		return AddEmptyContext(context1)
	} else if context1.IsEmpty() {
		if context1.IsEmptyLocal() {
			return context1
		}
		return AddEmptyContext(context0)
	}

	context0Size := context0.Size()
	context1Size := context1.Size()
	if context0Size == 1 && context1Size == 1 && context0.ReturnState(0) == context1.ReturnState(0) {
		merged := cache.Join(context0.Parent(0), context1.Parent(0))
		if merged == context0.Parent(0) {
			return context0
		}
		if merged == context1.Parent(0) {
			return context1
		}

		return GetChild(merged, context0.ReturnState(0))
	}

	count := 0
	parents := make([]*PredictionContext, 0, context0Size+context1Size)
	returnStates := make([]int, 0, context0Size+context1Size)
	leftIndex := 0
	rightIndex := 0
	canReturnLeft := true
	canReturnRight := true
	for leftIndex < context0Size && rightIndex < context1Size {
		if context0.ReturnState(leftIndex) == context1.ReturnState(rightIndex) {
			parents = append(parents, cache.Join(context0.Parent(leftIndex), context1.Parent(rightIndex)))
			returnStates = append(returnStates, context0.ReturnState(leftIndex))
			canReturnLeft = canReturnLeft && parents[count] == context0.Parent(leftIndex)
			canReturnRight = canReturnRight && parents[count] == context1.Parent(rightIndex)
			leftIndex++
			rightIndex++
		} else if context0.ReturnState(leftIndex) < context1.ReturnState(rightIndex) {
			parents = append(parents, context0.Parent(leftIndex))
			returnStates = append(returnStates, context0.ReturnState(leftIndex))
			canReturnRight = false
			leftIndex++
		} else {
			parents = append(parents, context1.Parent(rightIndex))
			returnStates = append(returnStates, context1.ReturnState(rightIndex))
			canReturnLeft = false
			rightIndex++
		}

		count++
	}

	for leftIndex < context0Size {
		parents = append(parents, context0.Parent(leftIndex))
		returnStates = append(returnStates, context0.ReturnState(leftIndex))
		leftIndex++
		canReturnRight = false
	}

	for rightIndex < context1Size {
		parents = append(parents, context1.Parent(rightIndex))
		returnStates = append(returnStates, context1.ReturnState(rightIndex))
		rightIndex++
		canReturnLeft = false
	}

	if canReturnLeft {
		return context0
	} else if canReturnRight {
		return context1
	}

	if len(parents) == 0 {
		// if either had been EmptyLocal it would have been absorbed up top,
		// so an empty merge can only mean the full empty stack
		return EmptyFull
	}

	return newArrayContext(parents, returnStates)
}

// AppendReturnContext grafts a single return state onto every leaf of
// context, as if every represented stack had been invoked from there.
func AppendReturnContext(context *PredictionContext, returnContext int, cache *ContextCache) *PredictionContext {
	return AppendContext(context, GetChild(EmptyFull, returnContext), cache)
}

// AppendContext grafts suffix onto every leaf of context. Only single-entry
// suffixes are supported; appending a tree suffix panics.
func AppendContext(context, suffix *PredictionContext, cache *ContextCache) *PredictionContext {
	if suffix.Size() > 1 {
		panic("appending a tree suffix is not supported")
	}

	if context.IsEmpty() {
		return suffix
	}

	if context.Size() == 1 {
		return cache.GetChild(AppendContext(context.Parent(0), suffix, cache), context.ReturnState(0))
	}

	visited := map[*PredictionContext]*PredictionContext{}
	return appendContextImpl(context, suffix, visited)
}

func appendContextImpl(context, suffix *PredictionContext, visited map[*PredictionContext]*PredictionContext) *PredictionContext {
	if suffix.IsEmpty() {
		if suffix.IsEmptyLocal() {
			if context.HasEmpty() {
				return EmptyLocal
			}

			panic("appending an empty-local suffix to a context with no empty tail is not supported")
		}

		return context
	}

	if suffix.Size() != 1 {
		panic("appending a tree suffix is not supported")
	}

	if result, ok := visited[context]; ok {
		return result
	}

	var result *PredictionContext
	if context.IsEmpty() {
		result = suffix
	} else {
		parentCount := context.Size()
		if context.HasEmpty() {
			parentCount--
		}

		updatedParents := make([]*PredictionContext, parentCount)
		updatedReturnStates := make([]int, parentCount)
		for i := 0; i < parentCount; i++ {
			updatedReturnStates[i] = context.ReturnState(i)
		}

		for i := 0; i < parentCount; i++ {
			updatedParents[i] = appendContextImpl(context.Parent(i), suffix, visited)
		}

		result = newArrayContext(updatedParents, updatedReturnStates)

		if context.HasEmpty() {
			// the dropped empty tail means the suffix itself is reachable
			// here; fold it back in without touching any shared cache
			result = Join(result, suffix, nil)
		}
	}

	visited[context] = result
	return result
}

// Equals returns whether two nodes represent the same set of stacks. A
// matching precomputed hash gates the traversal, and the traversal itself
// carries a visited set of node pairs so heavily shared DAGs don't blow up.
func (pc *PredictionContext) Equals(o *PredictionContext) bool {
	if pc == o {
		return true
	}
	if o == nil || pc.hash != o.hash {
		return false
	}

	return contextEqual(pc, o)
}

type contextPair [2]*PredictionContext

func contextEqual(x, y *PredictionContext) bool {
	visited := util.NewKeySet[contextPair]()
	var selfWork, otherWork []*PredictionContext

	if !contextEqualStep(x, y, &selfWork, &otherWork) {
		return false
	}

	for len(selfWork) > 0 {
		a := selfWork[len(selfWork)-1]
		b := otherWork[len(otherWork)-1]
		selfWork = selfWork[:len(selfWork)-1]
		otherWork = otherWork[:len(otherWork)-1]

		// the pair is unordered; either orientation counts as seen
		if visited.Has(contextPair{a, b}) || visited.Has(contextPair{b, a}) {
			continue
		}
		visited.Add(contextPair{a, b})

		if !contextEqualStep(a, b, &selfWork, &otherWork) {
			return false
		}
	}

	return true
}

func contextEqualStep(x, y *PredictionContext, selfWork, otherWork *[]*PredictionContext) bool {
	selfSize := x.Size()
	if selfSize == 0 {
		// only one instance of each empty sentinel exists, so identity
		// settles it
		return x == y
	}

	if selfSize != y.Size() {
		return false
	}

	for i := 0; i < selfSize; i++ {
		if x.ReturnState(i) != y.ReturnState(i) {
			return false
		}

		selfParent := x.Parent(i)
		otherParent := y.Parent(i)
		if selfParent == otherParent {
			continue
		}

		if selfParent.hash != otherParent.hash {
			return false
		}

		*selfWork = append(*selfWork, selfParent)
		*otherWork = append(*otherWork, otherParent)
	}

	return true
}
