package lexer

import (
	"testing"

	"github.com/overdev/pygrammer/source"
)

func lexAll(t *testing.T, text string) []Token {
	t.Helper()
	lx := New(source.New("t", []byte(text)))
	var toks []Token
	for {
		tok, err := lx.Next()
		if err != nil {
			t.Fatalf("lex error: %v", err)
		}
		toks = append(toks, tok)
		if tok.Kind == EOF {
			return toks
		}
	}
}

func TestLineComment(t *testing.T) {
	toks := lexAll(t, "WS ;; ignored\n`\\s+`")
	if len(toks) != 3 || toks[0].Kind != Ident || toks[1].Kind != Regex {
		t.Fatalf("unexpected tokens: %+v", toks)
	}
}

func TestBlockComment(t *testing.T) {
	toks := lexAll(t, "A ;* multi\nline *; B")
	if len(toks) != 3 || toks[0].Text != "A" || toks[1].Text != "B" {
		t.Fatalf("unexpected tokens: %+v", toks)
	}
}

func TestSectionKeywords(t *testing.T) {
	toks := lexAll(t, ".token .token: NAME .rules .end")
	kinds := []Kind{SectionKeyword, SectionKeyword, Punct, Ident, SectionKeyword, SectionKeyword, EOF}
	if len(toks) != len(kinds) {
		t.Fatalf("expected %d tokens, got %d: %+v", len(kinds), len(toks), toks)
	}
	for i, k := range kinds {
		if toks[i].Kind != k {
			t.Fatalf("token %d: expected kind %v got %v (%q)", i, k, toks[i].Kind, toks[i].Text)
		}
	}
}

func TestRegexAndStringLiterals(t *testing.T) {
	toks := lexAll(t, "`[0-9]+` \"if\\nelse\" 'a\\'b'")
	if toks[0].Kind != Regex || toks[0].Text != "[0-9]+" {
		t.Fatalf("regex: %+v", toks[0])
	}
	if toks[1].Kind != String || toks[1].Text != "if\nelse" {
		t.Fatalf("string: %+v", toks[1])
	}
	if toks[2].Kind != String || toks[2].Text != "a'b" {
		t.Fatalf("string: %+v", toks[2])
	}
}

func TestDecoratorsAndExclusions(t *testing.T) {
	toks := lexAll(t, "@skip @1 @{ } ^KEYWORD")
	if toks[0].Kind != Decorator || toks[0].Text != "skip" {
		t.Fatalf("dec: %+v", toks[0])
	}
	if toks[1].Kind != Decorator || toks[1].Text != "1" {
		t.Fatalf("dec: %+v", toks[1])
	}
	if toks[2].Kind != AttrOpen {
		t.Fatalf("attropen: %+v", toks[2])
	}
	if toks[4].Kind != Exclusion || toks[4].Text != "KEYWORD" {
		t.Fatalf("exclusion: %+v", toks[4])
	}
}

func TestArrowPunct(t *testing.T) {
	toks := lexAll(t, "=> = : ; | ( ) [ ] { } * + ? , .")
	want := []string{"=>", "=", ":", ";", "|", "(", ")", "[", "]", "{", "}", "*", "+", "?", ",", "."}
	for i, w := range want {
		if toks[i].Kind != Punct || toks[i].Text != w {
			t.Fatalf("token %d: expected %q got %+v", i, w, toks[i])
		}
	}
}

func TestUnterminatedRegexIsLexicalError(t *testing.T) {
	lx := New(source.New("t", []byte("`abc")))
	_, err := lx.Next()
	if err == nil {
		t.Fatal("expected error")
	}
}
