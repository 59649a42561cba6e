// Package codegen lowers a validated model.Grammar into a stand-alone Go
// parser source file (spec.md §4.4): token table, skip routine, per-token
// and per-rule helpers, multiplicity lowering, capture assembly, and
// attribute/directive lowering. Grounded on
// _examples/ava12-llx/cmd/llxgen/llxgen.go for the overall "walk the model,
// emit Go source text" shape, and on
// _examples/pflow-xyz-go-pflow/zkcompile/petrigen/generator.go for using
// text/template plus a Generator struct holding parsed templates instead of
// raw string concatenation for the file skeleton.
package codegen

import (
	"bytes"
	"embed"
	"text/template"

	"github.com/overdev/pygrammer/model"
	"github.com/overdev/pygrammer/resolve"
)

//go:embed templates/*.go.tmpl
var templateFS embed.FS

// Options configures the generated file.
type Options struct {
	// PackageName is the Go package the emitted parser belongs to. The
	// emitted parser is a stand-alone program (spec.md §1), so this is
	// almost always "main".
	PackageName string
}

// Generator renders a model.Grammar into Go source text using the embedded
// parser.go.tmpl skeleton.
type Generator struct {
	opts Options
	tmpl *template.Template
}

func New(opts Options) (*Generator, error) {
	if opts.PackageName == "" {
		opts.PackageName = "main"
	}
	tmpl, err := template.New("parser.go.tmpl").ParseFS(templateFS, "templates/*.go.tmpl")
	if err != nil {
		return nil, err
	}
	return &Generator{opts: opts, tmpl: tmpl}, nil
}

type templateData struct {
	PackageName  string
	StartRule    string
	TokenTable   string
	SkipFunc     string
	TokenHelpers string
	GroupHelpers string
	RuleHelpers  string
	EntryPoint   string
}

// Generate renders the full parser source for g, using fs (the resolver's
// computed FIRST sets) to build constant-time is_<R>() lookahead.
func (gn *Generator) Generate(g *model.Grammar, fs *resolve.FirstSets) (string, error) {
	data := templateData{
		PackageName:  gn.opts.PackageName,
		StartRule:    g.StartRule,
		TokenTable:   genTokenTable(g),
		SkipFunc:     genSkipFunc(g),
		TokenHelpers: genTokenHelpers(g),
		GroupHelpers: genGroupHelpers(g),
		RuleHelpers:  genRuleHelpers(g, fs),
		EntryPoint:   genEntryPoint(g),
	}
	if data.StartRule == "" && len(g.RuleOrder) > 0 {
		data.StartRule = g.RuleOrder[0]
	}

	var buf bytes.Buffer
	if err := gn.tmpl.ExecuteTemplate(&buf, "parser.go.tmpl", data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
