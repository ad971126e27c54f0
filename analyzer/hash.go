package analyzer

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/oxhq/slotguard/core"
	"github.com/oxhq/slotguard/erc7201"
	"github.com/oxhq/slotguard/solidity"
	"github.com/oxhq/slotguard/syntax"
)

// hashFormulaRe matches the canonical ERC-7201 derivation formula as
// transcribed in a comment above the slot constant, capturing the id.
var hashFormulaRe = regexp.MustCompile(
	`keccak256\(abi\.encode\(uint256\(keccak256\("([^"]*)"\)\) - 1\)\) & ~bytes32\(uint256\(0xff\)\)`)

var plainCommentKinds = []syntax.Kind{syntax.KindLineComment, syntax.KindBlockComment}

func formulaComment(kind syntax.Kind, id string) string {
	if kind == syntax.KindBlockComment {
		return "/* " + erc7201.FormulaComment(id) + " */"
	}
	return "// " + erc7201.FormulaComment(id)
}

// validateNamespaceHash cross-checks the slot constant that accompanies
// the confirmed namespace annotation: the derivation formula transcribed
// in its comment, the hash the formula yields, and the hash derived from
// the canonical namespace id all have to agree with the constant's value.
func (a *Analyzer) validateNamespaceHash(doc *Document, cur *syntax.Cursor,
	ann *namespaceAnnotation, contractName, prefix string, sink core.Sink,
) {
	var varNode *syntax.Nonterminal
	var varCur *syntax.Cursor
	forEachMember(cur, func(mc *syntax.Cursor, nt *syntax.Nonterminal) bool {
		if nt.Rule != syntax.RuleStateVar || nt.Span().Start < ann.Range.End {
			return true
		}
		name := solidity.StateVarName(nt)
		if strings.HasSuffix(name, "_STORAGE_LOCATION") || strings.HasSuffix(name, "StorageLocation") {
			varNode, varCur = nt, mc
			return false
		}
		return true
	})
	if varNode == nil {
		return
	}

	var formulaHash string
	commentMismatch := false
	if span := syntax.LastPrecedingTriviaWithKinds(varCur, plainCommentKinds); span != nil {
		if m := hashFormulaRe.FindStringSubmatch(span.Text); m != nil {
			commentID := m[1]
			if commentID != ann.ID {
				commentMismatch = true
				sink.Report(core.Diagnostic{
					Range:       span.Range,
					Message:     fmt.Sprintf("slot comment derives the hash from %q, not the declared namespace id %q", commentID, ann.ID),
					Explanation: "The formula comment documents how the constant below was produced; deriving it from a different id than the annotation invites a stale constant.",
					Severity:    core.SeverityWarning,
					Code:        core.CodeNamespaceIdMismatchHashComment,
					Fix: &core.QuickFix{
						Title: "Correct the derivation comment",
						Edits: []core.TextEdit{{Range: span.Range, NewText: formulaComment(span.Kind, ann.ID)}},
					},
				})
			}
			formulaHash = erc7201.SlotHash(commentID)
		}
	}

	var initText string
	var initRange core.Range
	hasInit := false
	if expr := solidity.StateVarInitializer(varNode); expr != nil {
		initRange = syntax.TrimmedRange(syntax.NewCursor(expr))
		initText = erc7201.NormalizeHex(doc.Source[initRange.Start:initRange.End])
		hasInit = true
	}

	report := func(code core.Code, want string) {
		d := core.Diagnostic{
			Range:       syntax.TrimmedRange(varCur),
			Message:     fmt.Sprintf("slot constant does not match the ERC-7201 hash %s", want),
			Explanation: "The constant selects the storage slot at runtime. A value that disagrees with the derivation formula silently points the namespaced struct at a different slot.",
			Severity:    core.SeverityWarning,
			Code:        code,
		}
		if hasInit {
			d.Range = initRange
			d.Fix = &core.QuickFix{
				Title: "Replace the constant with the derived hash",
				Edits: []core.TextEdit{{Range: initRange, NewText: want}},
			}
		}
		sink.Report(d)
	}

	if formulaHash != "" && !strings.Contains(initText, formulaHash) {
		report(core.CodeNamespaceHashMismatch, formulaHash)
	}

	// The canonical check still works when the comment is missing or
	// unparseable, as long as the annotation itself resolves.
	canonicalHash := erc7201.SlotHash(erc7201.ExpectedID(prefix, contractName))
	if !commentMismatch && canonicalHash != formulaHash && !strings.Contains(initText, canonicalHash) {
		report(core.CodeNamespaceStandaloneHashMismatch, canonicalHash)
	}
}
