package analyzer

import (
	"context"
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/oxhq/slotguard/core"
	"github.com/oxhq/slotguard/erc7201"
	"github.com/oxhq/slotguard/solidity"
	"github.com/oxhq/slotguard/syntax"
)

// AccessorStub records the type of a public variable whose compiler
// generated getter is lost when the variable moves into a storage struct.
type AccessorStub struct {
	TypeText string
}

// NamespaceableVariable is one candidate for relocation into the
// namespaced storage struct.
type NamespaceableVariable struct {
	Replacement string
	Name        string
	Range       core.Range
	Accessor    *AccessorStub
}

// ContractRecord aggregates one contract's namespaceable variables. It is
// built during a single traversal pass and consumed immediately.
type ContractRecord struct {
	Name      string
	Variables []NamespaceableVariable
}

// classifyVariables re-parses every state variable in isolation and sorts
// it into excluded (constant/immutable), initialized (flagged, not
// collectable), or namespaceable. Per-variable diagnostics are withheld
// for contracts not classified upgradeable; the variables are still
// collected for the contract-level hint.
func (a *Analyzer) classifyVariables(_ context.Context, doc *Document, cur *syntax.Cursor,
	contractName string, upgradeable bool, version *semver.Version, sink core.Sink,
) ContractRecord {
	rec := ContractRecord{Name: contractName}
	forEachMember(cur, func(mc *syntax.Cursor, nt *syntax.Nonterminal) bool {
		if nt.Rule != syntax.RuleStateVar {
			return true
		}
		trimmed := syntax.TrimmedRange(mc)
		sv, err := solidity.ParseStateVariable(doc.Source[trimmed.Start:trimmed.End], version)
		if err != nil {
			a.log.Printf("skip state variable in %s: %v", contractName, err)
			return true
		}
		if sv.HasAttribute("immutable") || sv.HasAttribute("constant") {
			return true
		}

		variable := NamespaceableVariable{
			Replacement: sv.ReplacementDeclaration(),
			Name:        sv.Name,
			Range:       trimmed,
		}
		if sv.HasAttribute("public") {
			variable.Accessor = &AccessorStub{TypeText: sv.TypeText}
		}

		if sv.Initializer != "" {
			if upgradeable {
				sink.Report(core.Diagnostic{
					Range:       trimmed,
					Message:     fmt.Sprintf("state variable %s has an initial value", sv.Name),
					Explanation: "Inline initial values are set by the implementation's own constructor context and do not carry over to a proxy; they also cannot be relocated into a namespaced storage struct mechanically.",
					Severity:    core.SeverityWarning,
					Code:        core.CodeVariableHasInitialValue,
				})
			}
			return true
		}

		if upgradeable {
			fix := &core.QuickFix{
				Title: fmt.Sprintf("Move %s into the namespaced storage struct", sv.Name),
				Data: map[string]any{
					"replacement": variable.Replacement,
				},
			}
			if variable.Accessor != nil {
				fix.Data["accessor_type"] = variable.Accessor.TypeText
			}
			sink.Report(core.Diagnostic{
				Range:       trimmed,
				Message:     fmt.Sprintf("state variable %s can be namespaced", sv.Name),
				Explanation: "Plain state variables in upgradeable contracts risk storage collisions across upgrades; ERC-7201 namespaced storage pins them to a deterministic slot.",
				Severity:    core.SeverityInfo,
				Code:        core.CodeVariableCanBeNamespaced,
				Fix:         fix,
			})
		}
		rec.Variables = append(rec.Variables, variable)
		return true
	})
	return rec
}

// reportContractNamespaceable emits the aggregate hint with a payload
// from which a consumer can build the whole namespaced storage refactor.
func (a *Analyzer) reportContractNamespaceable(contract *syntax.Nonterminal,
	rec ContractRecord, prefix string, sink core.Sink,
) {
	nameRange, ok := solidity.ContractNameRange(contract)
	if !ok {
		return
	}
	id := erc7201.ExpectedID(prefix, rec.Name)
	slot := erc7201.SlotHash(id)

	vars := make([]map[string]any, 0, len(rec.Variables))
	var decls []string
	var accessors []map[string]any
	for _, v := range rec.Variables {
		decls = append(decls, v.Replacement)
		entry := map[string]any{
			"name":        v.Name,
			"replacement": v.Replacement,
			"start":       v.Range.Start,
			"end":         v.Range.End,
		}
		if v.Accessor != nil {
			entry["accessor_type"] = v.Accessor.TypeText
			accessors = append(accessors, map[string]any{
				"name": v.Name,
				"type": v.Accessor.TypeText,
			})
		}
		vars = append(vars, entry)
	}

	structName := rec.Name + "Storage"
	constName := strings.ToUpper(rec.Name) + "_STORAGE_LOCATION"
	var b strings.Builder
	fmt.Fprintf(&b, "/// @custom:storage-location erc7201:%s\n", id)
	fmt.Fprintf(&b, "struct %s {\n", structName)
	for _, d := range decls {
		fmt.Fprintf(&b, "    %s\n", d)
	}
	b.WriteString("}\n\n")
	fmt.Fprintf(&b, "// %s\n", erc7201.FormulaComment(id))
	fmt.Fprintf(&b, "bytes32 private constant %s = %s;\n", constName, slot)

	fix := &core.QuickFix{
		Title: fmt.Sprintf("Introduce namespaced storage for %s", rec.Name),
		Data: map[string]any{
			"namespace_id": id,
			"slot":         slot,
			"struct_name":  structName,
			"const_name":   constName,
			"snippet":      b.String(),
			"variables":    vars,
		},
	}
	if len(accessors) > 0 {
		fix.Data["accessors"] = accessors
	}

	sink.Report(core.Diagnostic{
		Range:       nameRange,
		Message:     fmt.Sprintf("contract %s can use namespaced storage", rec.Name),
		Explanation: fmt.Sprintf("%d state variable(s) can move into an ERC-7201 namespaced struct, making the storage layout collision-safe across upgrades.", len(rec.Variables)),
		Severity:    core.SeverityHint,
		Code:        core.CodeContractCanBeNamespaced,
		Fix:         fix,
	})
}
