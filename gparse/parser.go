// Package gparse implements the Grammar Parser (spec.md §4.2): a hand-written
// recursive-descent parser over the lexeme stream produced by package lexer,
// building a model.Grammar. This is the meta-grammar's own parser — it is
// parsed by hand, not generated, since it describes the fixed language this
// whole system is written in (spec.md §1).
package gparse

import (
	"github.com/overdev/pygrammer/errors"
	"github.com/overdev/pygrammer/lexer"
	"github.com/overdev/pygrammer/model"
	"github.com/overdev/pygrammer/source"
)

const (
	TokenRedefinedError = errors.SyntaxErrors + 50 + iota
	RuleRedefinedError
	EmptyGroupError
	MissingMultiplicityError
	UnexpectedMultiplicityError
	EmptyDefinitionError
)

// Parse reads a full grammar description and returns its model, or the
// first syntax/lexical error encountered (spec.md §7: grammar syntax and
// lexical errors are surfaced as they occur, unlike the batched semantic
// errors the resolver produces).
func Parse(src *source.Source) (*model.Grammar, error) {
	p := &parser{lx: lexer.New(src), g: model.NewGrammar()}
	if err := p.advance(); err != nil {
		return nil, err
	}
	if err := p.parseSections(); err != nil {
		return nil, err
	}
	return p.g, nil
}

type parser struct {
	lx  *lexer.Lexer
	tok lexer.Token
	g   *model.Grammar
}

func (p *parser) advance() error {
	t, err := p.lx.Next()
	if err != nil {
		return err
	}
	p.tok = t
	return nil
}

func (p *parser) expectPunct(text string) error {
	if !p.tok.Is(lexer.Punct, text) {
		return unexpectedToken(p.tok, "'"+text+"'")
	}
	return p.advance()
}

func (p *parser) expectSection(name string) error {
	if !p.tok.Is(lexer.SectionKeyword, name) {
		return unexpectedToken(p.tok, "."+name)
	}
	return p.advance()
}

func (p *parser) expectIdent() (string, source.Pos, error) {
	if p.tok.Kind != lexer.Ident {
		return "", source.Pos{}, unexpectedToken(p.tok, "identifier")
	}
	name, pos := p.tok.Text, p.tok.Pos
	return name, pos, p.advance()
}

// parseSections enforces spec.md §4.2's section order: zero or one .token,
// zero or more .token: NAME, exactly one .rules.
func (p *parser) parseSections() error {
	sawMainTokens := false
	var mainTokensTok lexer.Token

	for p.tok.Kind == lexer.SectionKeyword && p.tok.Text != "rules" {
		if p.tok.Text != "token" {
			return unexpectedToken(p.tok, ".token, .token:, or .rules")
		}
		sectionTok := p.tok
		if err := p.advance(); err != nil {
			return err
		}

		if p.tok.Is(lexer.Punct, ":") {
			if err := p.advance(); err != nil {
				return err
			}
			name, namePos, err := p.expectIdent()
			if err != nil {
				return err
			}
			// tolerate a trailing colon after the group name (spec.md §9
			// Open Question); it is skipped without emitting any
			// diagnostic.
			if p.tok.Is(lexer.Punct, ":") {
				if err := p.advance(); err != nil {
					return err
				}
			}
			if err := p.parseTokenGroupSection(name, namePos); err != nil {
				return err
			}
			continue
		}

		if sawMainTokens {
			return duplicateSectionError(mainTokensTok, "token")
		}
		sawMainTokens = true
		mainTokensTok = sectionTok
		if err := p.parseMainTokenSection(); err != nil {
			return err
		}
	}

	if !p.tok.Is(lexer.SectionKeyword, "rules") {
		return missingSectionError("grammar description must contain exactly one .rules section")
	}
	if err := p.advance(); err != nil {
		return err
	}
	if err := p.parseRulesBody(); err != nil {
		return err
	}

	// The closing .end of .rules was consumed by parseRulesBody; anything
	// beyond it is ignored per spec.md §6, so we deliberately stop reading.
	return nil
}

func (p *parser) parseMainTokenSection() error {
	for p.tok.Kind != lexer.SectionKeyword || p.tok.Text != "end" {
		if p.tok.Kind == lexer.EOF {
			return unexpectedToken(p.tok, ".end")
		}
		if err := p.parseTokenEntry(); err != nil {
			return err
		}
	}
	return p.expectSection("end")
}

func (p *parser) parseTokenGroupSection(name string, pos source.Pos) error {
	group := model.NewTokenGroup(name, pos.Line(), pos.Col())
	for p.tok.Kind != lexer.SectionKeyword || p.tok.Text != "end" {
		if p.tok.Kind == lexer.EOF {
			return unexpectedToken(p.tok, ".end")
		}
		switch p.tok.Kind {
		case lexer.Regex, lexer.String:
			group.AddMember(p.tok.Text)
			if err := p.advance(); err != nil {
				return err
			}
		default:
			return unexpectedToken(p.tok, "regex or string literal")
		}
	}
	if len(group.Members) == 0 {
		return errors.FormatPos(pos, EmptyGroupError, "token group %q has no members", name)
	}
	if _, exists := p.g.Tokens[name]; exists {
		return errors.FormatPos(pos, TokenRedefinedError, "name %q already defined", name)
	}
	if _, exists := p.g.TokenGroups[name]; exists {
		return errors.FormatPos(pos, TokenRedefinedError, "name %q already defined", name)
	}
	p.g.AddTokenGroup(group)
	return p.expectSection("end")
}

func (p *parser) parseTokenEntry() error {
	name, pos, err := p.expectIdent()
	if err != nil {
		return err
	}
	if p.tok.Kind != lexer.Regex && p.tok.Kind != lexer.String {
		return unexpectedToken(p.tok, "regex or string literal")
	}
	regex := p.tok.Text
	if err := p.advance(); err != nil {
		return err
	}

	tok := model.NewToken(name, regex, pos.Line(), pos.Col())
	for p.tok.Kind == lexer.Decorator || p.tok.Kind == lexer.Exclusion {
		if p.tok.Kind == lexer.Exclusion {
			tok.Exclusions = append(tok.Exclusions, p.tok.Text)
			if err := p.advance(); err != nil {
				return err
			}
			continue
		}
		if err := p.applyTokenDecorator(tok); err != nil {
			return err
		}
	}

	if _, exists := p.g.Tokens[name]; exists {
		return errors.FormatPos(pos, TokenRedefinedError, "name %q already defined", name)
	}
	if _, exists := p.g.TokenGroups[name]; exists {
		return errors.FormatPos(pos, TokenRedefinedError, "name %q already defined", name)
	}
	p.g.AddToken(tok)
	return nil
}

var groupIndexDigits = map[string]int{"1": 1, "2": 2, "3": 3, "4": 4, "5": 5, "6": 6, "7": 7, "8": 8, "9": 9}

func (p *parser) applyTokenDecorator(tok *model.Token) error {
	dec := p.tok
	if n, isDigit := groupIndexDigits[dec.Text]; isDigit {
		tok.GroupIndex = n
		return p.advance()
	}

	switch dec.Text {
	case model.DecSkip, model.DecInternal, model.DecExpand,
		model.DecRelFilePath, model.DecAbsFilePath, model.DecRelDirPath, model.DecAbsDirPath,
		model.DecEnsureRelative, model.DecEnsureAbsolute, model.DecLoadAndParse:
		tok.Decorators[dec.Text] = true
		return p.advance()
	case "classify":
		if err := p.advance(); err != nil {
			return err
		}
		dotted, err := p.parseDottedName()
		if err != nil {
			return err
		}
		tok.Classify = dotted
		return nil
	default:
		return unknownDecoratorError(dec)
	}
}

func (p *parser) parseDottedName() (string, error) {
	name, _, err := p.expectIdent()
	if err != nil {
		return "", err
	}
	for p.tok.Is(lexer.Punct, ".") {
		if err := p.advance(); err != nil {
			return "", err
		}
		next, _, err := p.expectIdent()
		if err != nil {
			return "", err
		}
		name += "." + next
	}
	return name, nil
}

// parseRulesBody parses the start directive (if any) and every rule entry,
// then consumes the section's closing .end.
func (p *parser) parseRulesBody() error {
	if p.tok.Kind == lexer.Ident && p.tok.Text == "start" {
		if err := p.advance(); err != nil {
			return err
		}
		if err := p.expectPunct(":"); err != nil {
			return err
		}
		name, _, err := p.expectIdent()
		if err != nil {
			return err
		}
		if err := p.expectPunct(";"); err != nil {
			return err
		}
		p.g.StartRule = name
	}

	for p.tok.Kind != lexer.SectionKeyword || p.tok.Text != "end" {
		if p.tok.Kind == lexer.EOF {
			return unexpectedToken(p.tok, ".end")
		}
		if err := p.parseRuleEntry(); err != nil {
			return err
		}
	}
	return p.expectSection("end")
}

func (p *parser) parseRuleEntry() error {
	name, pos, err := p.expectIdent()
	if err != nil {
		return err
	}
	if err := p.expectPunct(":"); err != nil {
		return err
	}

	rule := model.NewRule(name, pos.Line(), pos.Col())
	if p.tok.Kind == lexer.AttrOpen {
		if err := p.advance(); err != nil {
			return err
		}
		if err := p.parseAttrBlock(rule); err != nil {
			return err
		}
	}

	if err := p.expectPunct("="); err != nil {
		return err
	}

	def, err := p.parseDefinition()
	if err != nil {
		return err
	}
	rule.Definitions = append(rule.Definitions, def)
	for p.tok.Is(lexer.Punct, "|") {
		if err := p.advance(); err != nil {
			return err
		}
		def, err := p.parseDefinition()
		if err != nil {
			return err
		}
		rule.Definitions = append(rule.Definitions, def)
	}

	if err := p.expectPunct(";"); err != nil {
		return err
	}

	if _, exists := p.g.Rules[name]; exists {
		return errors.FormatPos(pos, RuleRedefinedError, "rule %q already defined", name)
	}
	p.g.AddRule(rule)
	return nil
}

var validAttrKeys = map[string]bool{
	model.AttrKey: true, model.AttrFlip: true, model.AttrScope: true, model.AttrDeclare: true,
	model.AttrVerbosity: true, model.AttrClassify: true, model.AttrReclassify: true, model.AttrRetroclassify: true,
}

func (p *parser) parseAttrBlock(rule *model.Rule) error {
	for {
		if p.tok.Kind != lexer.Ident {
			return unexpectedToken(p.tok, "attribute or directive")
		}
		nameTok := p.tok
		name := p.tok.Text
		if err := p.advance(); err != nil {
			return err
		}
		if p.tok.Is(lexer.Punct, ":") {
			if !validAttrKeys[name] {
				return unknownAttributeError(nameTok)
			}
			if err := p.advance(); err != nil {
				return err
			}
			value, err := p.parseDottedName()
			if err != nil {
				return err
			}
			rule.Attributes[name] = value
		} else {
			if name != model.DirMerge {
				return unknownAttributeError(nameTok)
			}
			rule.Directives[name] = true
		}

		if p.tok.Is(lexer.Punct, ",") {
			if err := p.advance(); err != nil {
				return err
			}
			continue
		}
		break
	}
	return p.expectPunct("}")
}

func (p *parser) parseDefinition() (*model.Definition, error) {
	pos := p.tok.Pos
	items, err := p.parseItemList()
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, errors.FormatPos(pos, EmptyDefinitionError, "definition must contain at least one item")
	}

	def := &model.Definition{Items: items, Line: pos.Line(), Col: pos.Col()}
	if p.tok.Is(lexer.Punct, "=>") {
		if err := p.advance(); err != nil {
			return nil, err
		}
		captures, err := p.parseCaptureList()
		if err != nil {
			return nil, err
		}
		def.Captures = captures
	}
	return def, nil
}

func (p *parser) atDefinitionStop() bool {
	if p.tok.Kind == lexer.EOF {
		return true
	}
	if p.tok.Is(lexer.Punct, "=>") || p.tok.Is(lexer.Punct, "|") || p.tok.Is(lexer.Punct, ";") {
		return true
	}
	if p.tok.Is(lexer.Punct, ")") {
		return true
	}
	return false
}

func (p *parser) parseItemList() ([]*model.Item, error) {
	var items []*model.Item
	for !p.atDefinitionStop() {
		item, err := p.parseItem()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

func (p *parser) parseItem() (*model.Item, error) {
	pos := p.tok.Pos
	switch {
	case p.tok.Kind == lexer.Ident:
		name := p.tok.Text
		if err := p.advance(); err != nil {
			return nil, err
		}
		item := &model.Item{Kind: model.UnresolvedRefItem, Ref: name, Line: pos.Line(), Col: pos.Col()}
		return p.parseTrailingMultiplicity(item)

	case p.tok.Kind == lexer.Regex:
		lit := p.tok.Text
		if err := p.advance(); err != nil {
			return nil, err
		}
		item := &model.Item{Kind: model.LiteralItem, Literal: lit, Line: pos.Line(), Col: pos.Col()}
		return p.parseTrailingMultiplicity(item)

	case p.tok.Kind == lexer.String:
		lit := p.tok.Text
		if err := p.advance(); err != nil {
			return nil, err
		}
		item := &model.Item{Kind: model.LiteralItem, Literal: lit, LiteralIsStr: true, Line: pos.Line(), Col: pos.Col()}
		return p.parseTrailingMultiplicity(item)

	case p.tok.Is(lexer.Punct, "["):
		return p.parseOptionalGroup()

	case p.tok.Is(lexer.Punct, "("):
		return p.parseParenGroup()

	default:
		return nil, unexpectedToken(p.tok, "item")
	}
}

func (p *parser) parseTrailingMultiplicity(item *model.Item) (*model.Item, error) {
	switch {
	case p.tok.Is(lexer.Punct, "?"):
		item.Multiplicity = model.ZeroOrOne
		return item, p.advance()
	case p.tok.Is(lexer.Punct, "*"):
		item.Multiplicity = model.ZeroOrMore
		return item, p.advance()
	case p.tok.Is(lexer.Punct, "+"):
		item.Multiplicity = model.OneOrMore
		return item, p.advance()
	default:
		return item, nil
	}
}

func (p *parser) parseOptionalGroup() (*model.Item, error) {
	pos := p.tok.Pos
	if err := p.advance(); err != nil { // '['
		return nil, err
	}
	items, err := p.parseItemListUntil("]")
	if err != nil {
		return nil, err
	}
	if err := p.expectPunct("]"); err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, errors.FormatPos(pos, EmptyGroupError, "optional group must contain at least one item")
	}
	if p.tok.Is(lexer.Punct, "?") || p.tok.Is(lexer.Punct, "*") || p.tok.Is(lexer.Punct, "+") {
		return nil, errors.FormatPos(p.tok.Pos, UnexpectedMultiplicityError,
			"optional group '[...]' may not carry an explicit multiplicity marker")
	}
	group := &model.InlineGroup{Kind: model.Optional, Items: items, Line: pos.Line(), Col: pos.Col()}
	return &model.Item{Kind: model.InlineGroupItem, Group: group, Line: pos.Line(), Col: pos.Col()}, nil
}

// parseItemListUntil parses Item+ stopping at a Punct(stop) or Punct("|") at
// the top of this list (not inside a nested group), matching the item-list
// stop set atDefinitionStop already understands for ")".
func (p *parser) parseItemListUntil(stop string) ([]*model.Item, error) {
	var items []*model.Item
	for {
		if p.tok.Is(lexer.Punct, stop) || p.tok.Is(lexer.Punct, "|") || p.tok.Kind == lexer.EOF {
			return items, nil
		}
		item, err := p.parseItem()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
}

func (p *parser) parseParenGroup() (*model.Item, error) {
	pos := p.tok.Pos
	if err := p.advance(); err != nil { // '('
		return nil, err
	}

	var alts [][]*model.Item
	first, err := p.parseItemListUntil(")")
	if err != nil {
		return nil, err
	}
	if len(first) == 0 {
		return nil, errors.FormatPos(pos, EmptyGroupError, "group must contain at least one item")
	}
	alts = append(alts, first)
	for p.tok.Is(lexer.Punct, "|") {
		if err := p.advance(); err != nil {
			return nil, err
		}
		next, err := p.parseItemListUntil(")")
		if err != nil {
			return nil, err
		}
		if len(next) == 0 {
			return nil, errors.FormatPos(p.tok.Pos, EmptyGroupError, "alternative must contain at least one item")
		}
		alts = append(alts, next)
	}
	if err := p.expectPunct(")"); err != nil {
		return nil, err
	}

	group := &model.InlineGroup{Line: pos.Line(), Col: pos.Col()}
	if len(alts) == 1 {
		group.Kind = model.Sequential
		group.Items = alts[0]
	} else {
		group.Kind = model.Alternative
		group.Items = make([]*model.Item, len(alts))
		for i, alt := range alts {
			if len(alt) == 1 {
				group.Items[i] = alt[0]
			} else {
				sub := &model.InlineGroup{Kind: model.Sequential, Items: alt, Multiplicity: model.One, Line: pos.Line(), Col: pos.Col()}
				group.Items[i] = &model.Item{Kind: model.InlineGroupItem, Group: sub, Line: pos.Line(), Col: pos.Col()}
			}
		}
	}

	switch {
	case p.tok.Is(lexer.Punct, "?"):
		group.Multiplicity = model.ZeroOrOne
		if err := p.advance(); err != nil {
			return nil, err
		}
	case p.tok.Is(lexer.Punct, "*"):
		group.Multiplicity = model.ZeroOrMore
		if err := p.advance(); err != nil {
			return nil, err
		}
	case p.tok.Is(lexer.Punct, "+"):
		group.Multiplicity = model.OneOrMore
		if err := p.advance(); err != nil {
			return nil, err
		}
	default:
		return nil, errors.FormatPos(p.tok.Pos, MissingMultiplicityError,
			"sequential/alternative group '(...)' requires an explicit trailing '?', '+', or '*'")
	}

	return &model.Item{Kind: model.InlineGroupItem, Group: group, Line: pos.Line(), Col: pos.Col()}, nil
}

func (p *parser) parseCaptureList() ([]*model.Capture, error) {
	var caps []*model.Capture
	for {
		if p.tok.Is(lexer.Punct, "|") || p.tok.Is(lexer.Punct, ";") || p.tok.Is(lexer.Punct, ")") || p.tok.Kind == lexer.EOF {
			break
		}
		c, err := p.parseCapture()
		if err != nil {
			return nil, err
		}
		caps = append(caps, c)
	}
	if len(caps) == 0 {
		return nil, unexpectedToken(p.tok, "capture")
	}
	return caps, nil
}

func (p *parser) parseCapture() (*model.Capture, error) {
	pos := p.tok.Pos
	if p.tok.Is(lexer.Punct, "(") {
		if err := p.advance(); err != nil {
			return nil, err
		}
		group, err := p.parseCaptureList()
		if err != nil {
			return nil, err
		}
		if err := p.expectPunct(")"); err != nil {
			return nil, err
		}
		return &model.Capture{Group: group, Line: pos.Line(), Col: pos.Col()}, nil
	}

	list := false
	if p.tok.Is(lexer.Punct, "*") {
		list = true
		if err := p.advance(); err != nil {
			return nil, err
		}
	}
	if p.tok.Kind != lexer.Ident {
		return nil, unexpectedToken(p.tok, "capture name")
	}
	name := p.tok.Text
	if err := p.advance(); err != nil {
		return nil, err
	}
	field := ""
	if p.tok.Is(lexer.Punct, ".") {
		if err := p.advance(); err != nil {
			return nil, err
		}
		if p.tok.Kind != lexer.Ident {
			return nil, unexpectedToken(p.tok, "field name")
		}
		field = p.tok.Text
		if err := p.advance(); err != nil {
			return nil, err
		}
	}
	return &model.Capture{Name: name, Field: field, List: list, Line: pos.Line(), Col: pos.Col()}, nil
}
