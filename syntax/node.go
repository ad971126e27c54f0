// Package syntax defines the concrete syntax tree the analyzer walks: a
// tagged union of terminals and nonterminals with trivia (whitespace and
// comments) preserved in the tree, plus a cheap-to-copy cursor over it.
package syntax

import "github.com/oxhq/slotguard/core"

// Kind tags a terminal token.
type Kind uint8

const (
	KindWhitespace Kind = iota
	KindEndOfLine
	KindLineComment
	KindBlockComment
	KindDocLineComment
	KindDocBlockComment
	KindIdentifier
	KindKeyword
	KindNumber
	KindString
	KindPunct
)

// IsTrivia reports whether the kind is whitespace, a comment, or a
// documentation comment.
func (k Kind) IsTrivia() bool {
	switch k {
	case KindWhitespace, KindEndOfLine, KindLineComment, KindBlockComment,
		KindDocLineComment, KindDocBlockComment:
		return true
	}
	return false
}

// IsDocComment reports whether the kind is a documentation comment.
func (k Kind) IsDocComment() bool {
	return k == KindDocLineComment || k == KindDocBlockComment
}

// Rule tags a nonterminal with the grammar rule that produced it.
type Rule uint8

const (
	RuleSourceUnit Rule = iota
	RulePragma
	RuleVersionExpr
	RuleContract
	RuleInheritance
	RuleStruct
	RuleStructMember
	RuleFunction
	RuleParamList
	RuleParam
	RuleStateVar
	RuleTypeName
	RuleExpr
	RuleBlock
	RuleUnknown
)

// Node is either a *Terminal or a *Nonterminal. Nodes are immutable views
// into one parsed document; a parse result owns the whole tree.
type Node interface {
	Span() core.Range
	node()
}

// Terminal is a leaf token with its literal text.
type Terminal struct {
	Kind  Kind
	Text  string
	Range core.Range
}

func (t *Terminal) Span() core.Range { return t.Range }
func (t *Terminal) node()            {}

// Nonterminal is an interior node with ordered children, including any
// trivia terminals that appeared between its tokens.
type Nonterminal struct {
	Rule     Rule
	Children []Node
	Range    core.Range
}

func (n *Nonterminal) Span() core.Range { return n.Range }
func (n *Nonterminal) node()            {}

// IsTrivia reports whether n is a trivia terminal.
func IsTrivia(n Node) bool {
	t, ok := n.(*Terminal)
	return ok && t.Kind.IsTrivia()
}

// TriviaSpan is a trivia terminal captured for annotation extraction.
// Its kind is always one of the trivia kinds.
type TriviaSpan struct {
	Text  string
	Range core.Range
	Kind  Kind
}
