// Package resolve implements the Resolver & Validator (spec.md §4.3): four
// passes over a model.Grammar that bind names, compute the @expand fixed
// point, check capture-list shape, and run semantic/attribute diagnostics.
// Grounded on _examples/ava12-llx/langdef/parser.go's
// findUndefinedNodes/findUnusedNodes/resolveDependencies/findRecursions
// pipeline: a batch of independent checks, each recording into a shared
// diagnostics sink, run in a fixed sequence with an abort point after each.
package resolve

import (
	"github.com/overdev/pygrammer/diagnostics"
	"github.com/overdev/pygrammer/model"
)

// Run executes the full resolver pipeline, returning diagnostics.ErrAborted
// as soon as any pass records an error (spec.md §7).
func Run(g *model.Grammar, sink *diagnostics.Sink) (*FirstSets, error) {
	bindNames(g, sink)
	if err := sink.EndPass(); err != nil {
		return nil, err
	}

	expandTokens(g, sink)
	if err := sink.EndPass(); err != nil {
		return nil, err
	}

	checkCaptures(g, sink)
	if err := sink.EndPass(); err != nil {
		return nil, err
	}

	checkAttributes(g, sink)
	checkTokenDecorators(g, sink)
	checkScopeDeclare(g, sink)
	checkNullability(g, sink)
	checkNamingConventions(g, sink)
	if err := sink.EndPass(); err != nil {
		return nil, err
	}

	return ComputeFirstSets(g), nil
}
