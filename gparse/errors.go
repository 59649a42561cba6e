package gparse

import (
	"github.com/overdev/pygrammer/errors"
	"github.com/overdev/pygrammer/lexer"
)

const (
	UnexpectedEofError = errors.SyntaxErrors + iota
	UnexpectedTokenError
	MissingSectionError
	DuplicateSectionError
	UnknownDecoratorError
	UnknownAttributeError
)

func unexpectedToken(tok lexer.Token, want string) *errors.Error {
	if tok.Kind == lexer.EOF {
		return errors.FormatPos(tok.Pos, UnexpectedEofError, "unexpected end of input, expected %s", want)
	}
	return errors.FormatPos(tok.Pos, UnexpectedTokenError, "unexpected %s %q, expected %s", tok.Kind, tok.Text, want)
}

func missingSectionError(msg string) *errors.Error {
	return errors.Format(MissingSectionError, msg)
}

func duplicateSectionError(tok lexer.Token, name string) *errors.Error {
	return errors.FormatPos(tok.Pos, DuplicateSectionError, "duplicate %s section", name)
}

func unknownDecoratorError(tok lexer.Token) *errors.Error {
	return errors.FormatPos(tok.Pos, UnknownDecoratorError, "unknown decorator %q", tok.Text)
}

func unknownAttributeError(tok lexer.Token) *errors.Error {
	return errors.FormatPos(tok.Pos, UnknownAttributeError, "unknown attribute or directive %q", tok.Text)
}
