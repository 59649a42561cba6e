package model

// Decorator names recognized on Token declarations (spec.md §3, §4.1).
const (
	DecSkip           = "skip"
	DecInternal       = "internal"
	DecExpand         = "expand"
	DecRelFilePath    = "relfilepath"
	DecAbsFilePath    = "absfilepath"
	DecRelDirPath     = "reldirpath"
	DecAbsDirPath     = "absdirpath"
	DecEnsureRelative = "ensurerelative"
	DecEnsureAbsolute = "ensureabsolute"
	DecLoadAndParse   = "loadandparse"
)

// Token is one `.token` entry: a name, its regex source, decorators,
// exclusions against TokenGroups, and the capture-group index the code
// generator should read the matched value from.
type Token struct {
	Name       string
	Regex      string   // as written in the grammar, pre-expansion
	Decorators map[string]bool
	GroupIndex int      // decorator @N, 0 means "whole match"
	Exclusions []string // TokenGroup names this token must not equal
	Classify   string   // dotted name from @classify, or ""

	// Expanded holds the post-@expand regex once the resolver has computed
	// the fixed point; empty until resolved.
	Expanded string

	Line, Col int
}

func NewToken(name, regex string, line, col int) *Token {
	return &Token{Name: name, Regex: regex, Decorators: map[string]bool{}, Line: line, Col: col}
}

func (t *Token) HasDecorator(name string) bool { return t.Decorators[name] }

func (t *Token) IsSkip() bool     { return t.HasDecorator(DecSkip) }
func (t *Token) IsInternal() bool { return t.HasDecorator(DecInternal) }
func (t *Token) IsExpand() bool   { return t.HasDecorator(DecExpand) }

// TokenGroup is a `.token: NAME` section: a disjoint set of literal
// alternatives with no decorators or exclusions of its own (spec.md §3).
type TokenGroup struct {
	Name      string
	Members   []string
	Line, Col int
}

func NewTokenGroup(name string, line, col int) *TokenGroup {
	return &TokenGroup{Name: name, Line: line, Col: col}
}

func (g *TokenGroup) AddMember(literal string) { g.Members = append(g.Members, literal) }
