package analyzer

import (
	"strings"

	"github.com/oxhq/slotguard/solidity"
	"github.com/oxhq/slotguard/syntax"
)

var upgradeableBases = map[string]bool{
	"Initializable":   true,
	"UUPSUpgradeable": true,
}

var docCommentKinds = []syntax.Kind{syntax.KindDocLineComment, syntax.KindDocBlockComment}

// isUpgradeable decides whether a contract is upgradeable using three
// independent heuristics, each sufficient on its own:
//
//  1. the inheritance list names Initializable or UUPSUpgradeable exactly,
//  2. the contract defines _authorizeUpgrade with a single address parameter,
//  3. the contract's doc comment carries an @custom:oz-upgrades tag.
func isUpgradeable(contract *syntax.Nonterminal, cur *syntax.Cursor) bool {
	for _, base := range solidity.BaseNames(contract) {
		if upgradeableBases[base] {
			return true
		}
	}

	for _, c := range contract.Children {
		nt, ok := c.(*syntax.Nonterminal)
		if !ok || nt.Rule != syntax.RuleFunction {
			continue
		}
		if solidity.FunctionName(nt) != "_authorizeUpgrade" {
			continue
		}
		params := solidity.FunctionParams(nt)
		if len(params) == 1 && solidity.ParamTypeText(params[0]) == "address" {
			return true
		}
	}

	if span := syntax.LastPrecedingTriviaWithKinds(cur, docCommentKinds); span != nil {
		for _, field := range strings.Fields(span.Text) {
			if field == "@custom:oz-upgrades" || field == "@custom:oz-upgrades-from" {
				return true
			}
		}
	}
	return false
}
