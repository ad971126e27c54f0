package solidity

import (
	"fmt"

	"github.com/oxhq/slotguard/core"
	"github.com/oxhq/slotguard/syntax"
)

// ParseError records a recoverable syntax problem at a byte offset.
type ParseError struct {
	Offset int
	Msg    string
}

func (e ParseError) Error() string {
	return fmt.Sprintf("offset %d: %s", e.Offset, e.Msg)
}

// ParseResult owns the tree for one document snapshot.
type ParseResult struct {
	Valid  bool
	Root   *syntax.Nonterminal
	Errors []ParseError
	Source string
}

// Cursor returns a fresh cursor positioned at the root.
func (r *ParseResult) Cursor() *syntax.Cursor {
	return syntax.NewCursor(r.Root)
}

// Parse builds a concrete syntax tree for a whole source unit. Parsing
// never aborts: constructs outside the supported subset are skimmed into
// opaque nodes and problems are collected into Errors.
func Parse(source string) *ParseResult {
	p := &parser{src: source, toks: lex(source)}
	root := p.parseSourceUnit()
	return &ParseResult{
		Valid:  len(p.errs) == 0,
		Root:   root,
		Errors: p.errs,
		Source: source,
	}
}

var attrKeywords = map[string]bool{
	"public": true, "private": true, "internal": true,
	"constant": true, "immutable": true, "transient": true,
	"override": true, "virtual": true,
}

type parser struct {
	src  string
	toks []*syntax.Terminal
	pos  int
	errs []ParseError
}

// peek returns the next non-trivia token without consuming anything.
func (p *parser) peek() *syntax.Terminal {
	for i := p.pos; i < len(p.toks); i++ {
		if !p.toks[i].Kind.IsTrivia() {
			return p.toks[i]
		}
	}
	return nil
}

// drain moves pending trivia tokens into children. Calling it before
// dispatching a declaration keeps that declaration's leading comments as
// preceding siblings rather than burying them inside the new node.
func (p *parser) drain(children *[]syntax.Node) {
	for p.pos < len(p.toks) && p.toks[p.pos].Kind.IsTrivia() {
		*children = append(*children, p.toks[p.pos])
		p.pos++
	}
}

// take consumes the next non-trivia token, moving it and any trivia before
// it into children. Returns nil at end of input.
func (p *parser) take(children *[]syntax.Node) *syntax.Terminal {
	p.drain(children)
	if p.pos >= len(p.toks) {
		return nil
	}
	t := p.toks[p.pos]
	p.pos++
	*children = append(*children, t)
	return t
}

func (p *parser) currentOffset() int {
	if p.pos < len(p.toks) {
		return p.toks[p.pos].Range.Start
	}
	return len(p.src)
}

func (p *parser) errorf(offset int, format string, args ...any) {
	p.errs = append(p.errs, ParseError{Offset: offset, Msg: fmt.Sprintf(format, args...)})
}

func (p *parser) finish(rule syntax.Rule, children []syntax.Node) *syntax.Nonterminal {
	n := &syntax.Nonterminal{Rule: rule, Children: children}
	if len(children) > 0 {
		n.Range = core.Range{
			Start: children[0].Span().Start,
			End:   children[len(children)-1].Span().End,
		}
	} else {
		off := p.currentOffset()
		n.Range = core.Range{Start: off, End: off}
	}
	return n
}

func (p *parser) parseSourceUnit() *syntax.Nonterminal {
	var children []syntax.Node
	for {
		p.drain(&children)
		tok := p.peek()
		if tok == nil {
			break
		}
		if tok.Kind == syntax.KindKeyword {
			switch tok.Text {
			case "pragma":
				children = append(children, p.parsePragma())
				continue
			case "contract", "interface", "library", "abstract":
				children = append(children, p.parseContract())
				continue
			}
		}
		children = append(children, p.skimStatement())
	}
	root := &syntax.Nonterminal{
		Rule:     syntax.RuleSourceUnit,
		Children: children,
		Range:    core.Range{Start: 0, End: len(p.src)},
	}
	return root
}

// parsePragma groups each version constraint expression (operator prefix
// plus version literal) into its own node so constraint evaluation can
// treat them individually.
func (p *parser) parsePragma() *syntax.Nonterminal {
	var children []syntax.Node
	p.take(&children) // pragma
	if t := p.peek(); t != nil && t.Kind == syntax.KindIdentifier {
		p.take(&children) // solidity, abicoder, experimental
	}
	var expr []syntax.Node
	flush := func() {
		if len(expr) > 0 {
			children = append(children, p.finish(syntax.RuleVersionExpr, expr))
			expr = nil
		}
	}
	for {
		tok := p.peek()
		if tok == nil {
			p.errorf(p.currentOffset(), "unterminated pragma")
			break
		}
		if tok.Text == ";" {
			flush()
			p.take(&children)
			break
		}
		if tok.Text == "||" {
			flush()
			p.take(&children)
			continue
		}
		if tok.Kind == syntax.KindNumber {
			p.take(&expr)
			flush()
			continue
		}
		p.take(&expr) // constraint operator
	}
	flush()
	return p.finish(syntax.RulePragma, children)
}

func (p *parser) parseContract() *syntax.Nonterminal {
	var children []syntax.Node
	if t := p.peek(); t != nil && t.Text == "abstract" {
		p.take(&children)
	}
	p.take(&children) // contract / interface / library
	if t := p.peek(); t != nil && t.Kind == syntax.KindIdentifier {
		p.take(&children)
	} else {
		p.errorf(p.currentOffset(), "expected contract name")
	}
	if t := p.peek(); t != nil && t.Text == "is" {
		p.take(&children)
		for {
			children = append(children, p.parseInheritance())
			if t := p.peek(); t != nil && t.Text == "," {
				p.take(&children)
				continue
			}
			break
		}
	}
	if t := p.peek(); t == nil || t.Text != "{" {
		p.errorf(p.currentOffset(), "expected contract body")
		return p.finish(syntax.RuleContract, children)
	}
	p.take(&children)
	for {
		p.drain(&children)
		tok := p.peek()
		if tok == nil {
			p.errorf(p.currentOffset(), "unclosed contract body")
			break
		}
		if tok.Text == "}" {
			p.take(&children)
			break
		}
		children = append(children, p.parseMember())
	}
	return p.finish(syntax.RuleContract, children)
}

// parseInheritance covers one base in the inheritance list: a possibly
// qualified name and optional constructor arguments.
func (p *parser) parseInheritance() *syntax.Nonterminal {
	var children []syntax.Node
	for {
		t := p.peek()
		if t == nil || (t.Kind != syntax.KindIdentifier && t.Kind != syntax.KindKeyword) {
			break
		}
		p.take(&children)
		if t2 := p.peek(); t2 != nil && t2.Text == "." {
			p.take(&children)
			continue
		}
		break
	}
	if t := p.peek(); t != nil && t.Text == "(" {
		p.skimBalanced(&children, "(", ")")
	}
	return p.finish(syntax.RuleInheritance, children)
}

func (p *parser) parseMember() syntax.Node {
	tok := p.peek()
	if tok.Kind == syntax.KindKeyword {
		switch tok.Text {
		case "struct":
			return p.parseStruct()
		case "function", "constructor", "modifier", "event", "error", "receive", "fallback":
			return p.parseFunction()
		case "mapping":
			return p.parseStateVar()
		default:
			return p.skimStatement()
		}
	}
	if tok.Kind == syntax.KindIdentifier {
		return p.parseStateVar()
	}
	return p.skimStatement()
}

func (p *parser) parseStruct() *syntax.Nonterminal {
	var children []syntax.Node
	p.take(&children) // struct
	if t := p.peek(); t != nil && t.Kind == syntax.KindIdentifier {
		p.take(&children)
	} else {
		p.errorf(p.currentOffset(), "expected struct name")
	}
	if t := p.peek(); t == nil || t.Text != "{" {
		p.errorf(p.currentOffset(), "expected struct body")
		return p.finish(syntax.RuleStruct, children)
	}
	p.take(&children)
	for {
		p.drain(&children)
		tok := p.peek()
		if tok == nil {
			p.errorf(p.currentOffset(), "unclosed struct body")
			break
		}
		if tok.Text == "}" {
			p.take(&children)
			break
		}
		children = append(children, p.parseStructMember())
	}
	return p.finish(syntax.RuleStruct, children)
}

func (p *parser) parseStructMember() *syntax.Nonterminal {
	var children []syntax.Node
	children = append(children, p.parseTypeName())
	for {
		tok := p.take(&children)
		if tok == nil || tok.Text == ";" {
			break
		}
	}
	return p.finish(syntax.RuleStructMember, children)
}

// parseTypeName handles elementary and user types, qualified names,
// mapping types, address payable, and array suffixes.
func (p *parser) parseTypeName() *syntax.Nonterminal {
	var children []syntax.Node
	t := p.peek()
	if t == nil {
		return p.finish(syntax.RuleTypeName, children)
	}
	if t.Text == "mapping" {
		p.take(&children)
		if t2 := p.peek(); t2 != nil && t2.Text == "(" {
			p.skimBalanced(&children, "(", ")")
		}
	} else {
		base := p.take(&children)
		if base != nil && base.Text == "address" {
			if t2 := p.peek(); t2 != nil && t2.Text == "payable" {
				p.take(&children)
			}
		}
		for {
			t2 := p.peek()
			if t2 == nil || t2.Text != "." {
				break
			}
			p.take(&children)
			t3 := p.peek()
			if t3 == nil || (t3.Kind != syntax.KindIdentifier && t3.Kind != syntax.KindKeyword) {
				break
			}
			p.take(&children)
		}
	}
	for {
		t2 := p.peek()
		if t2 == nil || t2.Text != "[" {
			break
		}
		p.skimBalanced(&children, "[", "]")
	}
	return p.finish(syntax.RuleTypeName, children)
}

func (p *parser) parseFunction() *syntax.Nonterminal {
	var children []syntax.Node
	kw := p.take(&children)
	if kw != nil && kw.Text == "function" {
		if t := p.peek(); t != nil && (t.Kind == syntax.KindIdentifier || t.Kind == syntax.KindKeyword) {
			p.take(&children)
		}
	}
	if t := p.peek(); t != nil && t.Text == "(" {
		children = append(children, p.parseParamList())
	}
	for {
		t := p.peek()
		if t == nil {
			p.errorf(p.currentOffset(), "unterminated function definition")
			break
		}
		if t.Text == ";" {
			p.take(&children)
			break
		}
		if t.Text == "{" {
			children = append(children, p.parseBlock())
			break
		}
		if t.Text == "(" {
			// returns(...) and modifier invocation arguments
			p.skimBalanced(&children, "(", ")")
			continue
		}
		p.take(&children)
	}
	return p.finish(syntax.RuleFunction, children)
}

func (p *parser) parseParamList() *syntax.Nonterminal {
	var children []syntax.Node
	p.take(&children) // (
	for {
		t := p.peek()
		if t == nil {
			p.errorf(p.currentOffset(), "unclosed parameter list")
			break
		}
		if t.Text == ")" {
			p.take(&children)
			break
		}
		if t.Text == "," {
			p.take(&children)
			continue
		}
		children = append(children, p.parseParam())
	}
	return p.finish(syntax.RuleParamList, children)
}

func (p *parser) parseParam() *syntax.Nonterminal {
	var children []syntax.Node
	children = append(children, p.parseTypeName())
	for {
		t := p.peek()
		if t == nil || t.Text == "," || t.Text == ")" {
			break
		}
		p.take(&children) // data location keywords and the parameter name
	}
	return p.finish(syntax.RuleParam, children)
}

func (p *parser) parseBlock() *syntax.Nonterminal {
	var children []syntax.Node
	depth := 0
	for {
		tok := p.take(&children)
		if tok == nil {
			p.errorf(p.currentOffset(), "unclosed block")
			break
		}
		if tok.Text == "{" {
			depth++
		}
		if tok.Text == "}" {
			depth--
			if depth <= 0 {
				break
			}
		}
	}
	return p.finish(syntax.RuleBlock, children)
}

func (p *parser) parseStateVar() *syntax.Nonterminal {
	var children []syntax.Node
	children = append(children, p.parseTypeName())
	for {
		t := p.peek()
		if t == nil || t.Kind != syntax.KindKeyword || !attrKeywords[t.Text] {
			break
		}
		p.take(&children)
		if t.Text == "override" {
			if t2 := p.peek(); t2 != nil && t2.Text == "(" {
				var ov []syntax.Node
				p.skimBalanced(&ov, "(", ")")
				children = append(children, p.finish(syntax.RuleUnknown, ov))
			}
		}
	}
	if t := p.peek(); t != nil && t.Kind == syntax.KindIdentifier {
		p.take(&children)
	} else {
		p.errorf(p.currentOffset(), "expected state variable name")
		for {
			tok := p.take(&children)
			if tok == nil || tok.Text == ";" {
				break
			}
		}
		return p.finish(syntax.RuleStateVar, children)
	}
	if t := p.peek(); t != nil && t.Text == "=" {
		p.take(&children)
		var expr []syntax.Node
		depth := 0
		for {
			t2 := p.peek()
			if t2 == nil {
				break
			}
			if depth == 0 && t2.Text == ";" {
				break
			}
			tok := p.take(&expr)
			switch tok.Text {
			case "(", "[", "{":
				depth++
			case ")", "]", "}":
				depth--
			}
		}
		children = append(children, p.finish(syntax.RuleExpr, expr))
	}
	if t := p.peek(); t != nil && t.Text == ";" {
		p.take(&children)
	} else {
		p.errorf(p.currentOffset(), "expected ';' after state variable")
	}
	return p.finish(syntax.RuleStateVar, children)
}

// skimStatement consumes one statement-shaped region: through a matching
// semicolon, or through a balanced brace block.
func (p *parser) skimStatement() *syntax.Nonterminal {
	var children []syntax.Node
	depth := 0
	for {
		tok := p.take(&children)
		if tok == nil {
			break
		}
		switch tok.Text {
		case "{":
			depth++
		case "}":
			depth--
			if depth <= 0 {
				return p.finish(syntax.RuleUnknown, children)
			}
		case ";":
			if depth == 0 {
				return p.finish(syntax.RuleUnknown, children)
			}
		}
	}
	return p.finish(syntax.RuleUnknown, children)
}

// skimBalanced consumes from an opening delimiter through its match.
func (p *parser) skimBalanced(children *[]syntax.Node, open, close string) {
	depth := 0
	for {
		tok := p.take(children)
		if tok == nil {
			p.errorf(p.currentOffset(), "unclosed %q", open)
			return
		}
		switch tok.Text {
		case open:
			depth++
		case close:
			depth--
			if depth <= 0 {
				return
			}
		}
	}
}
