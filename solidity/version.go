package solidity

import (
	"github.com/Masterminds/semver/v3"

	"github.com/oxhq/slotguard/syntax"
)

// supportedVersionStrings lists the solc releases the analyzer knows,
// oldest first. Fragment re-parses and version inference resolve against
// this catalog.
var supportedVersionStrings = []string{
	"0.4.26",
	"0.5.16", "0.5.17",
	"0.6.11", "0.6.12",
	"0.7.5", "0.7.6",
	"0.8.0", "0.8.1", "0.8.2", "0.8.3", "0.8.4", "0.8.5", "0.8.6",
	"0.8.7", "0.8.8", "0.8.9", "0.8.10", "0.8.11", "0.8.12", "0.8.13",
	"0.8.14", "0.8.15", "0.8.16", "0.8.17", "0.8.18", "0.8.19", "0.8.20",
	"0.8.21", "0.8.22", "0.8.23", "0.8.24", "0.8.25", "0.8.26", "0.8.27",
	"0.8.28",
}

// SupportedVersions holds the catalog as parsed versions, oldest first.
var SupportedVersions = func() []*semver.Version {
	out := make([]*semver.Version, len(supportedVersionStrings))
	for i, s := range supportedVersionStrings {
		out[i] = semver.MustParse(s)
	}
	return out
}()

// Latest returns the newest supported compiler version.
func Latest() *semver.Version {
	return SupportedVersions[len(SupportedVersions)-1]
}

// InferVersion parses the source at the newest supported grammar, walks
// every pragma version-constraint set, computes for each individual
// constraint expression the maximum supported version satisfying it, and
// returns the overall maximum among those. The second result is false when
// no constraint was found or none was satisfiable.
func InferVersion(source string) (*semver.Version, bool) {
	res := Parse(source)
	var best *semver.Version
	for _, child := range res.Root.Children {
		pragma, ok := child.(*syntax.Nonterminal)
		if !ok || pragma.Rule != syntax.RulePragma {
			continue
		}
		for _, pc := range pragma.Children {
			expr, ok := pc.(*syntax.Nonterminal)
			if !ok || expr.Rule != syntax.RuleVersionExpr {
				continue
			}
			c, err := semver.NewConstraint(constraintText(expr))
			if err != nil {
				continue
			}
			if m := maxSatisfying(c); m != nil && (best == nil || m.GreaterThan(best)) {
				best = m
			}
		}
	}
	return best, best != nil
}

// constraintText renders a version expression node back to constraint
// syntax, e.g. ">=0.8.0" or "^0.8.20".
func constraintText(expr *syntax.Nonterminal) string {
	var s string
	for _, t := range nonTriviaTerminals(expr) {
		s += t.Text
	}
	return s
}

func maxSatisfying(c *semver.Constraints) *semver.Version {
	for i := len(SupportedVersions) - 1; i >= 0; i-- {
		if c.Check(SupportedVersions[i]) {
			return SupportedVersions[i]
		}
	}
	return nil
}
