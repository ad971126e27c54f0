package solidity

import (
	"strings"

	"github.com/oxhq/slotguard/core"
	"github.com/oxhq/slotguard/syntax"
)

// nonTriviaTerminals collects the non-trivia terminal descendants of a
// node in document order.
func nonTriviaTerminals(n syntax.Node) []*syntax.Terminal {
	var out []*syntax.Terminal
	var walk func(syntax.Node)
	walk = func(n syntax.Node) {
		switch v := n.(type) {
		case *syntax.Terminal:
			if !v.Kind.IsTrivia() {
				out = append(out, v)
			}
		case *syntax.Nonterminal:
			for _, c := range v.Children {
				walk(c)
			}
		}
	}
	walk(n)
	return out
}

func isWordToken(t *syntax.Terminal) bool {
	switch t.Kind {
	case syntax.KindIdentifier, syntax.KindKeyword, syntax.KindNumber, syntax.KindString:
		return true
	}
	return false
}

// normalizeTokens renders tokens back to canonical single-spaced text:
// "address payable", "mapping(address => uint256)", "uint256[]".
func normalizeTokens(toks []*syntax.Terminal) string {
	var b strings.Builder
	for i, t := range toks {
		if i > 0 {
			prev := toks[i-1]
			if (isWordToken(prev) && isWordToken(t)) || t.Text == "=>" || prev.Text == "=>" {
				b.WriteByte(' ')
			}
		}
		b.WriteString(t.Text)
	}
	return b.String()
}

// NormalizedTypeText renders a type name node as canonical text.
func NormalizedTypeText(typeName *syntax.Nonterminal) string {
	return normalizeTokens(nonTriviaTerminals(typeName))
}

func firstIdentifierChild(n *syntax.Nonterminal) string {
	for _, c := range n.Children {
		if t, ok := c.(*syntax.Terminal); ok && t.Kind == syntax.KindIdentifier {
			return t.Text
		}
	}
	return ""
}

// ContractName returns the declared name of a contract node.
func ContractName(n *syntax.Nonterminal) string {
	return firstIdentifierChild(n)
}

// ContractNameRange returns the range of the contract's name token.
func ContractNameRange(n *syntax.Nonterminal) (core.Range, bool) {
	for _, c := range n.Children {
		if t, ok := c.(*syntax.Terminal); ok && t.Kind == syntax.KindIdentifier {
			return t.Range, true
		}
	}
	return core.Range{}, false
}

// StructName returns the declared name of a struct node.
func StructName(n *syntax.Nonterminal) string {
	return firstIdentifierChild(n)
}

// FunctionName returns the declared name of a function node, or "" for
// constructors and fallback-style definitions.
func FunctionName(n *syntax.Nonterminal) string {
	return firstIdentifierChild(n)
}

// FunctionParams returns the parameter nodes of a function definition.
func FunctionParams(n *syntax.Nonterminal) []*syntax.Nonterminal {
	for _, c := range n.Children {
		if nt, ok := c.(*syntax.Nonterminal); ok && nt.Rule == syntax.RuleParamList {
			var params []*syntax.Nonterminal
			for _, pc := range nt.Children {
				if pnt, ok := pc.(*syntax.Nonterminal); ok && pnt.Rule == syntax.RuleParam {
					params = append(params, pnt)
				}
			}
			return params
		}
	}
	return nil
}

// ParamTypeText returns the normalized type text of a parameter node.
func ParamTypeText(param *syntax.Nonterminal) string {
	for _, c := range param.Children {
		if nt, ok := c.(*syntax.Nonterminal); ok && nt.Rule == syntax.RuleTypeName {
			return NormalizedTypeText(nt)
		}
	}
	return ""
}

// BaseNames returns the simple (unqualified) base type names of a
// contract's inheritance list.
func BaseNames(contract *syntax.Nonterminal) []string {
	var names []string
	for _, c := range contract.Children {
		nt, ok := c.(*syntax.Nonterminal)
		if !ok || nt.Rule != syntax.RuleInheritance {
			continue
		}
		var last string
		for _, bc := range nt.Children {
			t, ok := bc.(*syntax.Terminal)
			if !ok {
				continue
			}
			if t.Text == "(" {
				break // constructor arguments follow
			}
			if t.Kind == syntax.KindIdentifier || t.Kind == syntax.KindKeyword {
				last = t.Text
			}
		}
		if last != "" {
			names = append(names, last)
		}
	}
	return names
}

// StateVarName returns the declared name of a state variable node: the
// first identifier terminal after the type, skipping attribute keywords.
func StateVarName(n *syntax.Nonterminal) string {
	seenType := false
	for _, c := range n.Children {
		switch v := c.(type) {
		case *syntax.Nonterminal:
			if v.Rule == syntax.RuleTypeName {
				seenType = true
			}
		case *syntax.Terminal:
			if !seenType {
				continue
			}
			if v.Kind == syntax.KindIdentifier {
				return v.Text
			}
			if v.Text == "=" || v.Text == ";" {
				return ""
			}
		}
	}
	return ""
}

// StateVarInitializer returns the initializer expression node, or nil.
func StateVarInitializer(n *syntax.Nonterminal) *syntax.Nonterminal {
	for _, c := range n.Children {
		if nt, ok := c.(*syntax.Nonterminal); ok && nt.Rule == syntax.RuleExpr {
			return nt
		}
	}
	return nil
}

// StateVarAttributes returns the attribute keywords on a state variable.
func StateVarAttributes(n *syntax.Nonterminal) []string {
	var attrs []string
	for _, c := range n.Children {
		if t, ok := c.(*syntax.Terminal); ok && t.Kind == syntax.KindKeyword && attrKeywords[t.Text] {
			attrs = append(attrs, t.Text)
		}
	}
	return attrs
}
