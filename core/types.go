package core

import "strings"

// Severity classifies how strongly a diagnostic should surface.
type Severity int

const (
	SeverityHint Severity = iota
	SeverityInfo
	SeverityWarning
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityHint:
		return "hint"
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	}
	return "unknown"
}

// Code is a stable diagnostic identifier. External tooling keys behavior
// off these strings, so they must never change.
type Code string

const (
	CodeVariableCanBeNamespaced         Code = "VariableCanBeNamespaced"
	CodeContractCanBeNamespaced         Code = "ContractCanBeNamespaced"
	CodeNamespaceIdMismatch             Code = "NamespaceIdMismatch"
	CodeNamespaceIdMismatchHashComment  Code = "NamespaceIdMismatchHashComment"
	CodeNamespaceHashMismatch           Code = "NamespaceHashMismatch"
	CodeNamespaceStandaloneHashMismatch Code = "NamespaceStandaloneHashMismatch"
	CodeVariableHasInitialValue         Code = "VariableHasInitialValue"
	CodeMultipleNamespaces              Code = "MultipleNamespaces"
	CodeDuplicateNamespaceId            Code = "DuplicateNamespaceId"
)

// Range is a half-open byte range [Start, End) into the analyzed source.
// Every range attached to a diagnostic is a trimmed range: leading and
// trailing trivia stripped from the underlying syntax node's span.
type Range struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Position converts a byte offset into 1-based line and column numbers.
func Position(source string, offset int) (line, col int) {
	if offset > len(source) {
		offset = len(source)
	}
	prefix := source[:offset]
	line = strings.Count(prefix, "\n") + 1
	if i := strings.LastIndexByte(prefix, '\n'); i >= 0 {
		col = offset - i
	} else {
		col = offset + 1
	}
	return line, col
}

// TextEdit describes a single replacement as data. The engine never
// applies edits itself.
type TextEdit struct {
	Range   Range  `json:"range"`
	NewText string `json:"new_text"`
}

// QuickFix is the structured payload attached to a diagnostic. Edits, when
// present, can be applied mechanically; Data carries extra material for
// consumers that reconstruct larger refactors (namespaced struct skeletons,
// accessor stubs).
type QuickFix struct {
	Title string         `json:"title"`
	Edits []TextEdit     `json:"edits,omitempty"`
	Data  map[string]any `json:"data,omitempty"`
}

// Diagnostic is one finding. Immutable once constructed; ownership passes
// to the Sink it is reported to.
type Diagnostic struct {
	Range       Range     `json:"range"`
	Message     string    `json:"message"`
	Explanation string    `json:"explanation,omitempty"`
	Severity    Severity  `json:"severity"`
	Code        Code      `json:"code"`
	Fix         *QuickFix `json:"fix,omitempty"`
}

// Sink accumulates diagnostics. The engine only ever reports; it never
// reads a sink back.
type Sink interface {
	Report(d Diagnostic)
}

// List is an append-only Sink owned by the caller that started the pass.
type List struct {
	items []Diagnostic
}

func (l *List) Report(d Diagnostic) {
	l.items = append(l.items, d)
}

// Items returns the accumulated diagnostics in report order.
func (l *List) Items() []Diagnostic {
	return l.items
}

// ByCode filters the accumulated diagnostics by code.
func (l *List) ByCode(code Code) []Diagnostic {
	var out []Diagnostic
	for _, d := range l.items {
		if d.Code == code {
			out = append(out, d)
		}
	}
	return out
}
