package tree

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type testToken int

func (tk testToken) Type() int {
	return int(tk)
}

// buildFixtureTree produces:
//
//	R0( R1( TERM 5, TERM 6 ), ERR 7 )
func buildFixtureTree() *Tree {
	root := NewRuleNode(0, nil)
	inner := NewRuleNode(1, root)
	NewTerminalNode(testToken(5), 0, inner)
	NewTerminalNode(testToken(6), 1, inner)
	NewErrorNode(testToken(7), 2, root)
	return root
}

func Test_Tree_Shape(t *testing.T) {
	// setup
	assert := assert.New(t)

	// execute
	root := buildFixtureTree()

	// assert
	assert.Equal(KindRule, root.Kind())
	assert.Equal(2, root.Size())
	assert.Equal(KindRule, root.Child(0).Kind())
	assert.Equal(1, root.Child(0).RuleIndex())
	assert.Equal(KindError, root.Child(1).Kind())
	assert.Same(root, root.Child(0).Parent())
	assert.Nil(root.Parent())

	start, stop := root.SourceInterval()
	assert.Equal(0, start)
	assert.Equal(2, stop)

	start, stop = root.Child(0).SourceInterval()
	assert.Equal(0, start)
	assert.Equal(1, stop)

	start, stop = NewRuleNode(3, nil).SourceInterval()
	assert.Equal(-1, start)
	assert.Equal(-1, stop)
}

func Test_Tree_EqualAndCopy(t *testing.T) {
	// setup
	assert := assert.New(t)
	root := buildFixtureTree()
	same := buildFixtureTree()

	other := buildFixtureTree()
	NewTerminalNode(testToken(9), 3, other)

	// execute
	copied := root.Copy()

	// assert
	assert.True(root.Equal(same))
	assert.True(root.Equal(copied))
	assert.NotSame(root, copied)
	assert.False(root.Equal(other))
	assert.False(root.Equal(nil))

	// copies share no structure: growing the copy leaves the original alone
	NewTerminalNode(testToken(9), 3, copied)
	assert.Equal(2, root.Size())
	assert.Equal(3, copied.Size())
}

func Test_Tree_String(t *testing.T) {
	// setup
	assert := assert.New(t)
	root := buildFixtureTree()
	same := buildFixtureTree()

	// assert: semantically identical trees produce identical strings
	assert.Equal(root.String(), same.String())
	assert.Contains(root.String(), "( R0 )")
	assert.Contains(root.String(), "(TERM 5)")
	assert.Contains(root.String(), "(ERR 7)")
}

type eventListener struct {
	events []string
}

func (el *eventListener) EnterNode(node *Tree) {
	el.events = append(el.events, "enter")
}

func (el *eventListener) ExitNode(node *Tree) {
	el.events = append(el.events, "exit")
}

func (el *eventListener) VisitTerminal(node *Tree) {
	el.events = append(el.events, "term")
}

func (el *eventListener) VisitError(node *Tree) {
	el.events = append(el.events, "err")
}

func Test_Walker(t *testing.T) {
	// setup
	assert := assert.New(t)
	root := buildFixtureTree()
	listener := &eventListener{}

	// execute
	DefaultWalker.Walk(listener, root)

	// assert: depth-first, left to right, enters before exits
	expect := []string{"enter", "enter", "term", "term", "exit", "err", "exit"}
	assert.Equal(expect, listener.events)
}
