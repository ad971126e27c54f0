package syntax

import (
	"fmt"
	"slices"

	"github.com/oxhq/slotguard/core"
)

// GoToLastTerminal advances the cursor terminal by terminal until no
// further terminal exists inside the current subtree, leaving it at the
// final one. Each step is probed on a clone first so a failed step never
// loses the position.
func GoToLastTerminal(c *Cursor) {
	bound := c.Span()
	for {
		probe := c.Clone()
		if !probe.GotoNextTerminal() || probe.Span().Start >= bound.End {
			return
		}
		c.GotoNextTerminal()
	}
}

// GoToFirstNonTrivia advances terminal by terminal until a non-trivia
// terminal inside the current subtree is reached, reporting whether one
// was found. The probe-before-commit discipline matches GoToLastTerminal.
func GoToFirstNonTrivia(c *Cursor) bool {
	bound := c.Span()
	if _, ok := c.Node().(*Terminal); !ok {
		probe := c.Clone()
		if !probe.GotoNextTerminal() || probe.Span().Start >= bound.End {
			return false
		}
		c.GotoNextTerminal()
	}
	for {
		t, ok := c.Node().(*Terminal)
		if !ok {
			return false
		}
		if !t.Kind.IsTrivia() {
			return true
		}
		probe := c.Clone()
		if !probe.GotoNextTerminal() || probe.Span().Start >= bound.End {
			return false
		}
		c.GotoNextTerminal()
	}
}

// TrimmedRange returns the span of the current node with leading and
// trailing trivia stripped. A subtree containing only trivia degenerates
// to the raw subtree bounds.
func TrimmedRange(c *Cursor) core.Range {
	raw := c.Span()
	if _, ok := c.Node().(*Terminal); ok {
		return raw
	}
	start := c.Clone()
	if !GoToFirstNonTrivia(start) {
		return raw
	}
	end := c.Clone()
	GoToLastTerminal(end)
	for IsTrivia(end.Node()) {
		if !end.GotoPrevTerminal() {
			return raw
		}
	}
	return core.Range{Start: start.Span().Start, End: end.Span().End}
}

// LastPrecedingTriviaWithKinds finds the nearest trivia terminal of one of
// the requested kinds preceding the current node in document order. The
// search skips trivia of other kinds (blank lines, unrelated comments) and
// ends at the first non-trivia terminal, which bounds what a comment can
// attach to. Returns nil when nothing matches.
//
// Every requested kind must itself be a trivia kind; anything else is a
// defect in the caller and panics.
func LastPrecedingTriviaWithKinds(c *Cursor, kinds []Kind) *TriviaSpan {
	for _, k := range kinds {
		if !k.IsTrivia() {
			panic(fmt.Sprintf("syntax: LastPrecedingTriviaWithKinds called with non-trivia kind %d", k))
		}
	}
	probe := c.Clone()
	if !GoToFirstNonTrivia(probe) {
		probe = c.Clone()
	}
	for probe.GotoPrevTerminal() {
		t := probe.Node().(*Terminal)
		if slices.Contains(kinds, t.Kind) {
			return &TriviaSpan{Text: t.Text, Range: t.Range, Kind: t.Kind}
		}
		if !t.Kind.IsTrivia() {
			return nil
		}
	}
	return nil
}
