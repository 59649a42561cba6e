// Package gen wires the full pipeline together: lex the grammar text, parse
// it into a model.Grammar, resolve and validate it, and lower it into a
// stand-alone Go parser's source text. Grounded on
// _examples/ava12-llx/langdef/parser.go's top-level Parse function, which
// runs its own passes (findUndefinedNodes, resolveDependencies, ...) in a
// fixed sequence and returns the first error, adapted here to thread one
// shared diagnostics.Sink through every stage instead of a single *Error.
package gen

import (
	"io"

	"github.com/overdev/pygrammer/codegen"
	"github.com/overdev/pygrammer/diagnostics"
	"github.com/overdev/pygrammer/errors"
	"github.com/overdev/pygrammer/gparse"
	"github.com/overdev/pygrammer/model"
	"github.com/overdev/pygrammer/resolve"
	"github.com/overdev/pygrammer/source"
)

// Options configures a single Run.
type Options struct {
	// PackageName is the Go package the emitted parser belongs to.
	PackageName string

	// Verbosity is the diagnostics threshold: only diagnostics at or below
	// this level in the sink's ordering are rendered (spec.md §4.5).
	Verbosity diagnostics.Level
}

// Result carries everything a caller (cmd/pygrammer, or a test) might want
// out of a successful run.
type Result struct {
	Grammar   *model.Grammar
	FirstSets *resolve.FirstSets
	Source    string
}

// Run executes the full pipeline against text, writing every diagnostic
// emitted along the way to out. It returns diagnostics.ErrAborted as soon as
// any pass records an error, matching spec.md §7's "aborts after completing
// the pass that first records an error".
func Run(sourceName string, text []byte, opts Options, out io.Writer) (*Result, error) {
	sink := diagnostics.New(out, opts.Verbosity)

	g, err := gparse.Parse(source.New(sourceName, text))
	if err != nil {
		if pe, ok := err.(*errors.Error); ok {
			sink.Emit(diagnostics.LevelError, pe)
		} else {
			sink.Emit(diagnostics.LevelError, errors.Format(errors.SyntaxErrors, err.Error()))
		}
		sink.EndPass()
		return nil, diagnostics.ErrAborted
	}

	fs, err := resolve.Run(g, sink)
	if err != nil {
		return nil, err
	}

	generator, err := codegen.New(codegen.Options{PackageName: opts.PackageName})
	if err != nil {
		return nil, err
	}
	src, err := generator.Generate(g, fs)
	if err != nil {
		sink.Emit(diagnostics.LevelError, errors.Format(errors.CodegenErrors, err.Error()))
		sink.EndPass()
		return nil, diagnostics.ErrAborted
	}

	return &Result{Grammar: g, FirstSets: fs, Source: src}, nil
}
