package solidity

import (
	"fmt"
	"slices"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/oxhq/slotguard/syntax"
)

// StateVariable is the structured view of one state variable declaration
// re-parsed in isolation.
type StateVariable struct {
	TypeText    string
	Name        string
	Attributes  []string
	Initializer string
}

// HasAttribute reports whether the declaration carries the named attribute.
func (v *StateVariable) HasAttribute(name string) bool {
	return slices.Contains(v.Attributes, name)
}

// ReplacementDeclaration is the declaration with every attribute dropped,
// the form a variable takes inside a namespaced storage struct.
func (v *StateVariable) ReplacementDeclaration() string {
	return v.TypeText + " " + v.Name + ";"
}

// transient storage variables exist from this release on.
var transientMinVersion = semver.MustParse("0.8.28")

// ParseStateVariable re-parses a single declaration extracted from a
// contract body. The version selects the grammar to parse under; nil means
// the union grammar of all supported versions. The grammars differ only in
// which attributes a release accepts.
func ParseStateVariable(text string, version *semver.Version) (*StateVariable, error) {
	p := &parser{src: text, toks: lex(text)}
	node := p.parseStateVar()
	if len(p.errs) > 0 {
		return nil, fmt.Errorf("parse state variable %q: %s", text, p.errs[0].Msg)
	}
	if t := p.peek(); t != nil {
		return nil, fmt.Errorf("parse state variable %q: trailing input at offset %d", text, t.Range.Start)
	}

	var typeNode *syntax.Nonterminal
	for _, c := range node.Children {
		if nt, ok := c.(*syntax.Nonterminal); ok && nt.Rule == syntax.RuleTypeName {
			typeNode = nt
			break
		}
	}
	if typeNode == nil || len(typeNode.Children) == 0 {
		return nil, fmt.Errorf("parse state variable %q: missing type", text)
	}

	sv := &StateVariable{
		TypeText:   NormalizedTypeText(typeNode),
		Name:       StateVarName(node),
		Attributes: StateVarAttributes(node),
	}
	if sv.Name == "" {
		return nil, fmt.Errorf("parse state variable %q: missing name", text)
	}
	if version != nil && sv.HasAttribute("transient") && version.LessThan(transientMinVersion) {
		return nil, fmt.Errorf("parse state variable %q: transient storage needs solc >= %s, inferred %s",
			text, transientMinVersion, version)
	}
	if expr := StateVarInitializer(node); expr != nil {
		r := syntax.TrimmedRange(syntax.NewCursor(expr))
		sv.Initializer = strings.TrimSpace(text[r.Start:r.End])
	}
	return sv, nil
}
