package syntax

import (
	"slices"

	"github.com/oxhq/slotguard/core"
)

// Cursor is a position within a tree: a root plus a path of child indices.
// Copying the path is all it takes to probe a move without committing it,
// so lookahead never duplicates tree content.
type Cursor struct {
	root Node
	path []int
}

// NewCursor returns a cursor positioned at root.
func NewCursor(root Node) *Cursor {
	return &Cursor{root: root}
}

func (c *Cursor) nodeAt(path []int) Node {
	n := c.root
	for _, i := range path {
		n = n.(*Nonterminal).Children[i]
	}
	return n
}

// Node returns the node the cursor is positioned at.
func (c *Cursor) Node() Node {
	return c.nodeAt(c.path)
}

// Span returns the text range of the current node.
func (c *Cursor) Span() core.Range {
	return c.Node().Span()
}

// Clone returns an independent cursor at the same position in the same tree.
func (c *Cursor) Clone() *Cursor {
	return &Cursor{root: c.root, path: slices.Clone(c.path)}
}

// Spawn returns a new cursor rooted at the current node's subtree.
func (c *Cursor) Spawn() *Cursor {
	return NewCursor(c.Node())
}

// GotoFirstChild descends to the first child of the current nonterminal.
func (c *Cursor) GotoFirstChild() bool {
	nt, ok := c.Node().(*Nonterminal)
	if !ok || len(nt.Children) == 0 {
		return false
	}
	c.path = append(slices.Clone(c.path), 0)
	return true
}

// GotoParent ascends one level.
func (c *Cursor) GotoParent() bool {
	if len(c.path) == 0 {
		return false
	}
	c.path = slices.Clone(c.path[:len(c.path)-1])
	return true
}

// GotoNextSibling moves to the next sibling, if any.
func (c *Cursor) GotoNextSibling() bool {
	if len(c.path) == 0 {
		return false
	}
	parent := c.nodeAt(c.path[:len(c.path)-1]).(*Nonterminal)
	i := c.path[len(c.path)-1]
	if i+1 >= len(parent.Children) {
		return false
	}
	c.path = slices.Clone(c.path)
	c.path[len(c.path)-1] = i + 1
	return true
}

// GotoPrevSibling moves to the previous sibling, if any.
func (c *Cursor) GotoPrevSibling() bool {
	if len(c.path) == 0 || c.path[len(c.path)-1] == 0 {
		return false
	}
	c.path = slices.Clone(c.path)
	c.path[len(c.path)-1]--
	return true
}

// GotoNext moves to the next node in document (preorder) order. The
// position is unchanged when no such node exists.
func (c *Cursor) GotoNext() bool {
	if c.GotoFirstChild() {
		return true
	}
	p := slices.Clone(c.path)
	for len(p) > 0 {
		parent := c.nodeAt(p[:len(p)-1]).(*Nonterminal)
		if p[len(p)-1]+1 < len(parent.Children) {
			p[len(p)-1]++
			c.path = p
			return true
		}
		p = p[:len(p)-1]
	}
	return false
}

// GotoPrev moves to the previous node in document (preorder) order: the
// deepest last descendant of the previous sibling, or the parent.
func (c *Cursor) GotoPrev() bool {
	if len(c.path) == 0 {
		return false
	}
	if c.path[len(c.path)-1] == 0 {
		return c.GotoParent()
	}
	p := slices.Clone(c.path)
	p[len(p)-1]--
	for {
		nt, ok := c.nodeAt(p).(*Nonterminal)
		if !ok || len(nt.Children) == 0 {
			break
		}
		p = append(p, len(nt.Children)-1)
	}
	c.path = p
	return true
}

// GotoNextTerminal advances to the next terminal in document order,
// entering subtrees as needed. The position is unchanged on failure.
func (c *Cursor) GotoNextTerminal() bool {
	probe := c.Clone()
	for probe.GotoNext() {
		if _, ok := probe.Node().(*Terminal); ok {
			c.path = probe.path
			return true
		}
	}
	return false
}

// GotoPrevTerminal moves to the previous terminal in document order. The
// position is unchanged on failure.
func (c *Cursor) GotoPrevTerminal() bool {
	probe := c.Clone()
	for probe.GotoPrev() {
		if _, ok := probe.Node().(*Terminal); ok {
			c.path = probe.path
			return true
		}
	}
	return false
}
