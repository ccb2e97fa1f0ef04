// Package tree holds the parse-tree model the runtime hands back to
// drivers: a rooted ordered tree whose nodes are rule invocations, matched
// terminals, or error placeholders, plus the listener-driven walker.
package tree

import (
	"fmt"
	"strings"

	"github.com/dekarrin/thunnus"
)

const (
	treeLevelEmpty               = "        "
	treeLevelOngoing             = "  |     "
	treeLevelPrefix              = "  |%s: "
	treeLevelPrefixLast          = `  \%s: `
	treeLevelPrefixNamePadChar   = '-'
	treeLevelPrefixNamePadAmount = 3
)

func makeTreeLevelPrefix(msg string) string {
	for len([]rune(msg)) < treeLevelPrefixNamePadAmount {
		msg = string(treeLevelPrefixNamePadChar) + msg
	}
	return fmt.Sprintf(treeLevelPrefix, msg)
}

func makeTreeLevelPrefixLast(msg string) string {
	for len([]rune(msg)) < treeLevelPrefixNamePadAmount {
		msg = string(treeLevelPrefixNamePadChar) + msg
	}
	return fmt.Sprintf(treeLevelPrefixLast, msg)
}

// Kind says whether a node is a rule invocation, a matched terminal, or an
// error placeholder the recognizer synthesized during recovery.
type Kind int

const (
	KindRule Kind = iota
	KindTerminal
	KindError
)

func (k Kind) String() string {
	switch k {
	case KindRule:
		return "rule"
	case KindTerminal:
		return "terminal"
	case KindError:
		return "error"
	default:
		return "unknown"
	}
}

// Tree is one node of a parse tree. Rule nodes carry the index of the rule
// they invoke (generated recognizers use it to dispatch to their per-rule
// types); terminal and error nodes carry the matched token and its index in
// the token stream.
type Tree struct {
	kind Kind

	rule int

	token      thunnus.Token
	tokenIndex int

	parent   *Tree
	children []*Tree
}

// NewRuleNode creates a rule node invoking the rule with the given index,
// attached under parent (which may be nil for the root).
func NewRuleNode(ruleIndex int, parent *Tree) *Tree {
	n := &Tree{kind: KindRule, rule: ruleIndex, parent: parent}
	if parent != nil {
		parent.children = append(parent.children, n)
	}
	return n
}

// NewTerminalNode creates a terminal node for the given token at the given
// stream index, attached under parent.
func NewTerminalNode(token thunnus.Token, tokenIndex int, parent *Tree) *Tree {
	n := &Tree{kind: KindTerminal, token: token, tokenIndex: tokenIndex, parent: parent}
	if parent != nil {
		parent.children = append(parent.children, n)
	}
	return n
}

// NewErrorNode creates an error node for the given token at the given stream
// index, attached under parent.
func NewErrorNode(token thunnus.Token, tokenIndex int, parent *Tree) *Tree {
	n := &Tree{kind: KindError, token: token, tokenIndex: tokenIndex, parent: parent}
	if parent != nil {
		parent.children = append(parent.children, n)
	}
	return n
}

// Kind returns which of the three node kinds this node is.
func (t *Tree) Kind() Kind {
	return t.kind
}

// RuleIndex returns the invoked rule of a rule node.
func (t *Tree) RuleIndex() int {
	return t.rule
}

// Token returns the token of a terminal or error node, or nil on rule
// nodes.
func (t *Tree) Token() thunnus.Token {
	return t.token
}

// Parent returns the node this node hangs under, or nil at the root.
func (t *Tree) Parent() *Tree {
	return t.parent
}

// Child returns the i-th child of this node.
func (t *Tree) Child(i int) *Tree {
	return t.children[i]
}

// Size returns the number of children of this node. Terminal and error
// nodes always have zero.
func (t *Tree) Size() int {
	return len(t.children)
}

// SourceInterval returns the inclusive range of token-stream indices this
// node covers. Terminal and error nodes cover exactly their token; a rule
// node covers from its first child's start to its last child's end. A rule
// node with no children returns (-1, -1).
func (t *Tree) SourceInterval() (start, stop int) {
	if t.kind != KindRule {
		return t.tokenIndex, t.tokenIndex
	}

	if len(t.children) == 0 {
		return -1, -1
	}

	start, _ = t.children[0].SourceInterval()
	_, stop = t.children[len(t.children)-1].SourceInterval()
	return start, stop
}

// Copy returns a duplicate, deeply-copied tree. The copy's parent is nil.
func (t *Tree) Copy() *Tree {
	newT := &Tree{
		kind:       t.kind,
		rule:       t.rule,
		token:      t.token,
		tokenIndex: t.tokenIndex,
	}

	for i := range t.children {
		if t.children[i] != nil {
			newChild := t.children[i].Copy()
			newChild.parent = newT
			newT.children = append(newT.children, newChild)
		}
	}

	return newT
}

// String returns a prettified representation of the entire tree suitable for
// use in line-by-line comparisons of tree structure. Two trees are
// considered semantically identical if they produce identical String()
// output.
func (t *Tree) String() string {
	return t.leveledStr("", "")
}

func (t *Tree) leveledStr(firstPrefix, contPrefix string) string {
	var sb strings.Builder

	sb.WriteString(firstPrefix)
	switch t.kind {
	case KindTerminal:
		sb.WriteString(fmt.Sprintf("(TERM %d)", t.token.Type()))
	case KindError:
		sb.WriteString(fmt.Sprintf("(ERR %d)", t.token.Type()))
	default:
		sb.WriteString(fmt.Sprintf("( R%d )", t.rule))
	}

	for i := range t.children {
		sb.WriteRune('\n')
		var leveledFirstPrefix string
		var leveledContPrefix string
		if i+1 < len(t.children) {
			leveledFirstPrefix = contPrefix + makeTreeLevelPrefix("")
			leveledContPrefix = contPrefix + treeLevelOngoing
		} else {
			leveledFirstPrefix = contPrefix + makeTreeLevelPrefixLast("")
			leveledContPrefix = contPrefix + treeLevelEmpty
		}
		itemOut := t.children[i].leveledStr(leveledFirstPrefix, leveledContPrefix)
		sb.WriteString(itemOut)
	}

	return sb.String()
}

// Equal returns whether this tree has the exact same structure as another
// *Tree: same kinds, same rule indices, same token types and stream indices,
// same shape. Token identity beyond the type is not compared.
func (t *Tree) Equal(o *Tree) bool {
	if t == o {
		return true
	}
	if o == nil || t.kind != o.kind {
		return false
	}

	switch t.kind {
	case KindRule:
		if t.rule != o.rule {
			return false
		}
	default:
		if t.token.Type() != o.token.Type() || t.tokenIndex != o.tokenIndex {
			return false
		}
	}

	if len(t.children) != len(o.children) {
		return false
	}

	for i := range t.children {
		if !t.children[i].Equal(o.children[i]) {
			return false
		}
	}

	return true
}
