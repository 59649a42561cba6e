package resolve

import (
	"regexp"

	"github.com/overdev/pygrammer/diagnostics"
	"github.com/overdev/pygrammer/errors"
	"github.com/overdev/pygrammer/model"
)

const (
	TokenNamingConventionError = errors.NameErrors + 50 + iota
	RuleNamingConventionError
)

var (
	allCapsPattern = regexp.MustCompile(`^[A-Z][A-Z0-9_]*$`)
	// Strict PascalCase: each capital letter starts a run of lowercase
	// letters/digits; no two capitals are ever adjacent (spec.md §7
	// "non-strict-PascalCase rule name").
	pascalCasePattern = regexp.MustCompile(`^[A-Z]([a-z0-9]+[A-Z])*[a-z0-9]*$`)
)

// checkNamingConventions enforces spec.md §7's naming-convention error
// bucket: token names must be ALL_CAPS, rule names must be strict
// PascalCase with no consecutive uppercase letters.
func checkNamingConventions(g *model.Grammar, sink *diagnostics.Sink) {
	for _, name := range g.TokenOrder {
		tok := g.Tokens[name]
		if !allCapsPattern.MatchString(name) {
			sink.Emit(diagnostics.LevelError, errors.FormatPos(itemPos{tok.Line, tok.Col}, TokenNamingConventionError,
				"token name %q must be ALL_CAPS", name))
		}
	}
	for _, name := range g.GroupOrder {
		group := g.TokenGroups[name]
		if !allCapsPattern.MatchString(name) {
			sink.Emit(diagnostics.LevelError, errors.FormatPos(itemPos{group.Line, group.Col}, TokenNamingConventionError,
				"token group name %q must be ALL_CAPS", name))
		}
	}
	for _, name := range g.RuleOrder {
		rule := g.Rules[name]
		if !pascalCasePattern.MatchString(name) {
			sink.Emit(diagnostics.LevelError, errors.FormatPos(itemPos{rule.Line, rule.Col}, RuleNamingConventionError,
				"rule name %q must be strict PascalCase with no consecutive uppercase letters", name))
		}
	}
}
