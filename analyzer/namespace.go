package analyzer

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/oxhq/slotguard/core"
	"github.com/oxhq/slotguard/erc7201"
	"github.com/oxhq/slotguard/syntax"
)

const storageLocationTag = "@custom:storage-location erc7201:"

// namespaceAnnotation couples one struct annotation's namespace id with
// the annotation comment's range.
type namespaceAnnotation struct {
	ID    string
	Range core.Range
	Kind  syntax.Kind
}

// parseStorageLocationLine extracts the namespace id from a /// doc
// comment: the id runs to the next whitespace or the end of the line.
func parseStorageLocationLine(text string) (string, bool) {
	i := strings.Index(text, storageLocationTag)
	if i < 0 {
		return "", false
	}
	id := text[i+len(storageLocationTag):]
	if end := strings.IndexFunc(id, unicode.IsSpace); end >= 0 {
		id = id[:end]
	}
	return id, id != ""
}

// parseStorageLocationBlock extracts the namespace id from a /** */ doc
// comment: the id also stops at the comment terminator when that comes
// first.
func parseStorageLocationBlock(text string) (string, bool) {
	i := strings.Index(text, storageLocationTag)
	if i < 0 {
		return "", false
	}
	id := text[i+len(storageLocationTag):]
	if end := strings.Index(id, "*/"); end >= 0 {
		id = id[:end]
	}
	if end := strings.IndexFunc(id, unicode.IsSpace); end >= 0 {
		id = id[:end]
	}
	return id, id != ""
}

func annotationComment(kind syntax.Kind, id string) string {
	if kind == syntax.KindDocBlockComment {
		return "/** " + erc7201.AnnotationText(id) + " */"
	}
	return "/// " + erc7201.AnnotationText(id)
}

// validateNamespaces collects every struct-level namespace annotation in
// the contract and checks it against the canonical expected id. Exactly
// one annotation is returned for the follow-up hash validation; zero or
// several short-circuit it.
func (a *Analyzer) validateNamespaces(contract *syntax.Nonterminal, cur *syntax.Cursor,
	contractName, prefix string, sink core.Sink,
) *namespaceAnnotation {
	var found []namespaceAnnotation
	forEachMember(cur, func(mc *syntax.Cursor, nt *syntax.Nonterminal) bool {
		if nt.Rule != syntax.RuleStruct {
			return true
		}
		span := syntax.LastPrecedingTriviaWithKinds(mc, docCommentKinds)
		if span == nil {
			return true
		}
		var id string
		var ok bool
		if span.Kind == syntax.KindDocBlockComment {
			id, ok = parseStorageLocationBlock(span.Text)
		} else {
			id, ok = parseStorageLocationLine(span.Text)
		}
		if !ok {
			return true
		}
		found = append(found, namespaceAnnotation{ID: id, Range: span.Range, Kind: span.Kind})
		return true
	})

	switch len(found) {
	case 0:
		return nil
	case 1:
		ann := found[0]
		expected := erc7201.ExpectedID(prefix, contractName)
		if ann.ID != expected {
			sink.Report(core.Diagnostic{
				Range:       ann.Range,
				Message:     fmt.Sprintf("namespace id %q does not match the expected id %q", ann.ID, expected),
				Explanation: "The namespace id determines the storage slot of the struct. An id that does not follow the configured naming scheme makes the layout harder to audit and risks collisions with other namespaces.",
				Severity:    core.SeverityInfo,
				Code:        core.CodeNamespaceIdMismatch,
				Fix: &core.QuickFix{
					Title: fmt.Sprintf("Use namespace id %q", expected),
					Edits: []core.TextEdit{{Range: ann.Range, NewText: annotationComment(ann.Kind, expected)}},
				},
			})
		}
		return &ann
	default:
		counts := make(map[string]int, len(found))
		for _, f := range found {
			counts[f.ID]++
		}
		duplicated := false
		for _, n := range counts {
			if n > 1 {
				duplicated = true
			}
		}
		if duplicated {
			for _, f := range found {
				if counts[f.ID] < 2 {
					continue
				}
				sink.Report(core.Diagnostic{
					Range:       f.Range,
					Message:     fmt.Sprintf("namespace id %q is declared more than once", f.ID),
					Explanation: "Two structs sharing one namespace id resolve to the same storage slot and will overwrite each other's state.",
					Severity:    core.SeverityError,
					Code:        core.CodeDuplicateNamespaceId,
				})
			}
			return nil
		}
		for _, f := range found {
			sink.Report(core.Diagnostic{
				Range:       f.Range,
				Message:     fmt.Sprintf("contract %s declares multiple storage namespaces", contractName),
				Explanation: "A contract normally owns a single namespaced storage struct; several distinct namespaces in one contract are usually a refactoring leftover.",
				Severity:    core.SeverityWarning,
				Code:        core.CodeMultipleNamespaces,
			})
		}
		return nil
	}
}
