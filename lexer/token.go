package lexer

import "github.com/overdev/pygrammer/source"

// Kind classifies a lexeme of the grammar-description language (spec.md
// §4.1). Casing conventions (ALL_CAPS token names vs strict-PascalCase rule
// names) are validated later, by the resolver — the lexer only recognizes
// "an identifier".
type Kind int

const (
	EOF Kind = iota
	SectionKeyword // "token", "rules", or "end" (leading '.' consumed)
	Ident
	Regex     // backtick-delimited, Text holds the raw contents
	String    // quoted, Text holds the decoded regex fragment
	Decorator // '@' + ident or '@' + digit; Text holds the name/digit
	AttrOpen  // "@{"
	Exclusion // '^' + ident; Text holds the referenced name
	Punct     // one of : ; = | ( ) [ ] { } * + ? => , .
)

func (k Kind) String() string {
	switch k {
	case EOF:
		return "end of input"
	case SectionKeyword:
		return "section keyword"
	case Ident:
		return "identifier"
	case Regex:
		return "regex literal"
	case String:
		return "string literal"
	case Decorator:
		return "decorator"
	case AttrOpen:
		return "'@{'"
	case Exclusion:
		return "exclusion"
	case Punct:
		return "punctuation"
	default:
		return "unknown"
	}
}

// Token is one lexeme, carrying enough position information to anchor
// diagnostics (implements errors.SourcePos through source.Pos embedding).
type Token struct {
	Kind Kind
	Text string
	Pos  source.Pos
}

func (t Token) SourceName() string { return t.Pos.SourceName() }
func (t Token) Line() int          { return t.Pos.Line() }
func (t Token) Col() int           { return t.Pos.Col() }

// Is reports whether this token is Punct/SectionKeyword/Decorator/Exclusion
// text equal to s — the dispatch idiom the parser uses throughout, mirroring
// the teacher's string-constant comparisons in langdef/parser.go.
func (t Token) Is(kind Kind, text string) bool {
	return t.Kind == kind && t.Text == text
}
