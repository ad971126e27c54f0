// Package analyzer implements the namespace diagnostic engine: it walks
// each contract definition in a parsed document, classifies
// upgradeability, validates ERC-7201 namespace annotations and slot
// constants, and reports namespaceable state variables. All collaborators
// (settings, version inference, the diagnostic sink) are passed in
// explicitly; the engine holds no process-wide state.
package analyzer

import (
	"context"
	"fmt"
	"io"
	"log"

	"github.com/Masterminds/semver/v3"

	"github.com/oxhq/slotguard/core"
	"github.com/oxhq/slotguard/solidity"
	"github.com/oxhq/slotguard/syntax"
)

// Settings resolves per-document configuration.
type Settings interface {
	NamespacePrefix(ctx context.Context, documentPath string) (string, error)
}

// VersionOracle selects the compiler version used when re-parsing a
// contract fragment in isolation.
type VersionOracle interface {
	InferCompilerVersion(ctx context.Context, doc *Document) (*semver.Version, error)
}

// StaticSettings is a Settings with a fixed namespace prefix.
type StaticSettings string

func (s StaticSettings) NamespacePrefix(context.Context, string) (string, error) {
	return string(s), nil
}

// PragmaVersionOracle infers the compiler version from the document's own
// pragma directives, falling back to the newest supported release.
type PragmaVersionOracle struct{}

func (PragmaVersionOracle) InferCompilerVersion(_ context.Context, doc *Document) (*semver.Version, error) {
	if v, ok := solidity.InferVersion(doc.Source); ok {
		return v, nil
	}
	return solidity.Latest(), nil
}

// Document is one source snapshot. Tree may be pre-populated by the
// caller; Analyze parses on demand otherwise.
type Document struct {
	Path   string
	Source string
	Tree   *solidity.ParseResult
}

// Analyzer runs the diagnostic pass. Safe to reuse across documents; it
// keeps no state between calls.
type Analyzer struct {
	settings Settings
	versions VersionOracle
	log      *log.Logger
}

// New creates an analyzer with the given collaborators.
func New(settings Settings, versions VersionOracle) *Analyzer {
	return &Analyzer{
		settings: settings,
		versions: versions,
		log:      log.New(io.Discard, "", 0),
	}
}

// SetLogger directs skip/recovery messages somewhere visible.
func (a *Analyzer) SetLogger(l *log.Logger) {
	a.log = l
}

// Analyze reports diagnostics for every contract in the document, in
// document order. The sink is owned by the caller; the engine only
// appends. Malformed-but-parseable input never returns an error, it only
// produces fewer diagnostics.
func (a *Analyzer) Analyze(ctx context.Context, doc *Document, sink core.Sink) error {
	if doc.Tree == nil {
		doc.Tree = solidity.Parse(doc.Source)
	}
	prefix, err := a.settings.NamespacePrefix(ctx, doc.Path)
	if err != nil {
		return fmt.Errorf("resolve namespace prefix: %w", err)
	}
	version, err := a.versions.InferCompilerVersion(ctx, doc)
	if err != nil {
		a.log.Printf("infer compiler version for %s: %v", doc.Path, err)
		version = solidity.Latest()
	}

	cur := doc.Tree.Cursor()
	if !cur.GotoFirstChild() {
		return nil
	}
	for {
		if nt, ok := cur.Node().(*syntax.Nonterminal); ok && nt.Rule == syntax.RuleContract {
			a.analyzeContract(ctx, doc, cur.Clone(), nt, prefix, version, sink)
		}
		if !cur.GotoNextSibling() {
			break
		}
	}
	return nil
}

func (a *Analyzer) analyzeContract(ctx context.Context, doc *Document, cur *syntax.Cursor,
	node *syntax.Nonterminal, prefix string, version *semver.Version, sink core.Sink,
) {
	name := solidity.ContractName(node)
	if name == "" {
		a.log.Printf("skip unnamed contract in %s", doc.Path)
		return
	}
	upgradeable := isUpgradeable(node, cur)
	ann := a.validateNamespaces(node, cur, name, prefix, sink)
	if ann != nil {
		a.validateNamespaceHash(doc, cur, ann, name, prefix, sink)
	}
	rec := a.classifyVariables(ctx, doc, cur, name, upgradeable, version, sink)
	if len(rec.Variables) > 0 {
		a.reportContractNamespaceable(node, rec, prefix, sink)
	}
}

// forEachMember visits each nonterminal child of the node under cur with
// an independent cursor positioned at that child. Returning false stops
// the walk.
func forEachMember(cur *syntax.Cursor, fn func(mc *syntax.Cursor, nt *syntax.Nonterminal) bool) {
	c := cur.Clone()
	if !c.GotoFirstChild() {
		return
	}
	for {
		if nt, ok := c.Node().(*syntax.Nonterminal); ok {
			if !fn(c.Clone(), nt) {
				return
			}
		}
		if !c.GotoNextSibling() {
			return
		}
	}
}
