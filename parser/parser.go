package parser

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/zwebsuite/zcss/ast"
	"github.com/zwebsuite/zcss/scanner"
	"github.com/zwebsuite/zcss/token"
)

var (
	// ErrMaxDepth is wrapped by the error returned when blocks nest deeper
	// than Options.MaxDepth.
	ErrMaxDepth = errors.New("maximum nesting depth exceeded")

	// ErrInputTooLarge is wrapped by the error returned when the input is
	// larger than Options.MaxInputSize.
	ErrInputTooLarge = errors.New("input too large")
)

// Parse contexts, named after the grammar production they start from.
const (
	contextStylesheet      = "stylesheet"
	contextDeclarationList = "declarationList"
	contextDeclaration     = "declaration"
)

// Scanner represents a type that can retrieve the next token.
// *scanner.Scanner and *TokenScanner both implement it.
type Scanner interface {
	Scan() (token.Token, error)
}

// Parse parses CSS text into a stylesheet.
func Parse(text string, opts Options) (*ast.Stylesheet, error) {
	return ParseContext(context.Background(), text, opts)
}

// ParseContext parses CSS text into a stylesheet. The context is only used
// to parent the tracing span and log records; parsing itself never blocks.
func ParseContext(ctx context.Context, text string, opts Options) (*ast.Stylesheet, error) {
	var ss *ast.Stylesheet
	err := observe(ctx, opts, contextStylesheet, len(text), func() (ast.Node, error) {
		if err := checkSize(text, opts); err != nil {
			return nil, err
		}
		p := newParser(scanner.New(text, opts.Source), opts)
		ss = p.parseStylesheet()
		return ss, p.result()
	})
	if err != nil {
		return nil, err
	}
	return ss, nil
}

// ParseScanner parses a stylesheet from an arbitrary token source.
func ParseScanner(ctx context.Context, s Scanner, opts Options) (*ast.Stylesheet, error) {
	var ss *ast.Stylesheet
	err := observe(ctx, opts, contextStylesheet, -1, func() (ast.Node, error) {
		p := newParser(s, opts)
		ss = p.parseStylesheet()
		return ss, p.result()
	})
	if err != nil {
		return nil, err
	}
	return ss, nil
}

// ParseDeclarationList parses the contents of a block without the
// surrounding braces, such as the value of an HTML style attribute.
func ParseDeclarationList(text string, opts Options) (*ast.Block, error) {
	var b *ast.Block
	err := observe(context.Background(), opts, contextDeclarationList, len(text), func() (ast.Node, error) {
		if err := checkSize(text, opts); err != nil {
			return nil, err
		}
		p := newParser(scanner.New(text, opts.Source), opts)
		b = p.parseDeclarationList()
		return b, p.result()
	})
	if err != nil {
		return nil, err
	}
	return b, nil
}

// ParseDeclaration parses a single name/value declaration.
func ParseDeclaration(text string, opts Options) (*ast.Declaration, error) {
	var d *ast.Declaration
	err := observe(context.Background(), opts, contextDeclaration, len(text), func() (ast.Node, error) {
		if err := checkSize(text, opts); err != nil {
			return nil, err
		}
		p := newParser(scanner.New(text, opts.Source), opts)
		d = p.parseSingleDeclaration()
		return d, p.result()
	})
	if err != nil {
		return nil, err
	}
	return d, nil
}

func checkSize(text string, opts Options) error {
	if opts.MaxInputSize <= 0 || int64(len(text)) <= opts.MaxInputSize {
		return nil
	}
	return &Error{
		Source: opts.Source,
		Pos:    token.Start,
		Message: fmt.Sprintf("input of %s exceeds the limit of %s",
			humanize.IBytes(uint64(len(text))), humanize.IBytes(uint64(opts.MaxInputSize))),
		Err: ErrInputTooLarge,
	}
}

// parser represents a CSS parser. A parser is used for a single call and
// holds no state shared with other calls.
type parser struct {
	s    Scanner
	opts Options

	buf     []token.Token // lookahead buffer
	eof     bool          // scanner exhausted or failed
	prevEnd token.Pos     // end of the last consumed token

	depth  int
	err    error
	lexErr error
}

func newParser(s Scanner, opts Options) *parser {
	return &parser{s: s, opts: opts, prevEnd: token.Start}
}

// parseStylesheet consumes a list of top-level rules until EOF.
func (p *parser) parseStylesheet() *ast.Stylesheet {
	ss := &ast.Stylesheet{}
	start := p.peek().Pos
	for p.err == nil {
		tok := p.peek()
		switch tok.Kind {
		case token.EOF:
			ss.Loc = p.loc(start, tok.Pos)
			return ss
		case token.WHITESPACE, token.CDO, token.CDC:
			p.next()
		case token.COMMENT:
			ss.Children = append(ss.Children, p.parseComment())
		case token.RBRACE:
			p.fail(p.unexpected(tok))
		case token.AT_KEYWORD:
			if r := p.parseAtRule(); r != nil {
				ss.Children = append(ss.Children, r)
			}
		default:
			if r := p.parseRule(); r != nil {
				ss.Children = append(ss.Children, r)
			}
		}
	}
	return nil
}

// parseDeclarationList consumes block contents up to EOF.
func (p *parser) parseDeclarationList() *ast.Block {
	b := &ast.Block{}
	start := p.peek().Pos
	if !p.parseBlockContents(b) {
		return nil
	}
	b.Loc = p.loc(start, p.peek().Pos)
	return b
}

// parseSingleDeclaration consumes exactly one declaration surrounded by
// optional whitespace, comments and a trailing semicolon.
func (p *parser) parseSingleDeclaration() *ast.Declaration {
	p.skipTrivia()
	d := p.parseDeclaration()
	if d == nil {
		return nil
	}
	p.skipTrivia()
	if p.peek().Kind == token.SEMICOLON {
		p.next()
		p.skipTrivia()
	}
	if tok := p.peek(); tok.Kind != token.EOF {
		p.fail(p.expected(tok, "end of input"))
		return nil
	}
	return d
}

// parseRule consumes a style rule: a selector list followed by a block.
func (p *parser) parseRule() *ast.Rule {
	start := p.peek().Pos

	var prelude []token.Token
	var stack []token.Kind
loop:
	for {
		tok := p.peek()
		switch tok.Kind {
		case token.EOF:
			p.fail(p.expected(tok, `"{"`))
			return nil
		case token.SEMICOLON:
			if len(stack) == 0 {
				p.fail(p.expected(tok, `"{"`))
				return nil
			}
		case token.LBRACE:
			if len(stack) == 0 {
				break loop
			}
			stack = append(stack, token.RBRACE)
		case token.FUNCTION, token.LPAREN:
			stack = append(stack, token.RPAREN)
		case token.LBRACK:
			stack = append(stack, token.RBRACK)
		case token.RPAREN, token.RBRACK, token.RBRACE:
			if n := len(stack); n == 0 || stack[n-1] != tok.Kind {
				p.fail(p.unexpected(tok))
				return nil
			}
			stack = stack[:len(stack)-1]
		}
		prelude = append(prelude, p.next())
	}

	selectors := p.parseSelectors(prelude)
	if selectors == nil {
		return nil
	}
	block := p.parseBlock()
	if block == nil {
		return nil
	}
	return &ast.Rule{Selectors: selectors, Block: block, Loc: p.loc(start, p.prevEnd)}
}

// parseSelectors splits a rule prelude on top-level commas. Each selector
// keeps its source text verbatim minus surrounding whitespace.
func (p *parser) parseSelectors(prelude []token.Token) []*ast.Selector {
	var a []*ast.Selector
	var group []token.Token
	depth := 0

	add := func(sep token.Token) bool {
		group = trimWhitespace(group)
		if len(group) == 0 {
			p.fail(p.expected(sep, "selector"))
			return false
		}
		a = append(a, &ast.Selector{
			Text: rawText(group),
			Loc:  p.loc(group[0].Pos, group[len(group)-1].End()),
		})
		group = nil
		return true
	}

	for _, tok := range prelude {
		switch tok.Kind {
		case token.FUNCTION, token.LPAREN, token.LBRACK, token.LBRACE:
			depth++
		case token.RPAREN, token.RBRACK, token.RBRACE:
			depth--
		case token.COMMA:
			if depth == 0 {
				if !add(tok) {
					return nil
				}
				continue
			}
		}
		group = append(group, tok)
	}
	if !add(p.peek()) {
		return nil
	}
	return a
}

// parseBlock consumes a {-block. The current token must be a "{".
func (p *parser) parseBlock() *ast.Block {
	open := p.next()
	if limit := p.opts.maxDepth(); p.depth >= limit {
		p.fail(&Error{
			Source:  p.opts.Source,
			Pos:     open.Pos,
			Message: fmt.Sprintf("blocks nested deeper than %d levels", limit),
			Err:     ErrMaxDepth,
		})
		return nil
	}

	p.depth++
	defer func() { p.depth-- }()

	b := &ast.Block{}
	if !p.parseBlockContents(b) {
		return nil
	}

	// parseBlockContents only returns on "}" or, outside of any block, EOF.
	p.next()
	b.Loc = p.loc(open.Pos, p.prevEnd)
	return b
}

// parseBlockContents consumes declarations, nested rules, at-rules and
// comments up to the closing "}" of the current block, or up to EOF when
// parsing a bare declaration list. The terminator is not consumed.
func (p *parser) parseBlockContents(b *ast.Block) bool {
	for p.err == nil {
		tok := p.peek()
		switch tok.Kind {
		case token.WHITESPACE, token.SEMICOLON:
			p.next()
		case token.COMMENT:
			b.Children = append(b.Children, p.parseComment())
		case token.RBRACE:
			if p.depth == 0 {
				p.fail(p.unexpected(tok))
				return false
			}
			return true
		case token.EOF:
			if p.depth == 0 {
				return true
			}
			p.fail(p.expected(tok, `"}"`))
			return false
		case token.AT_KEYWORD:
			if r := p.parseAtRule(); r != nil {
				b.Children = append(b.Children, r)
			}
		default:
			if p.isNestedRule() {
				if r := p.parseRule(); r != nil {
					b.Children = append(b.Children, r)
				}
			} else if d := p.parseDeclaration(); d != nil {
				b.Children = append(b.Children, d)
			}
		}
	}
	return false
}

type endOfRule int

const (
	endOfRuleUnknown endOfRule = iota
	endOfRuleSemicolon
	endOfRuleOpenBrace
)

// isNestedRule decides whether the tokens at the current position start a
// nested rule rather than a declaration. A custom property is always a
// declaration since its value may contain blocks. Otherwise the tokens are
// scanned for a "{" at the current depth before any ";" or closing "}".
func (p *parser) isNestedRule() bool {
	if p.atCustomProperty() {
		return false
	}
	return p.scanForEndOfRule() == endOfRuleOpenBrace
}

// atCustomProperty reports whether the next tokens are "--name" and ":".
func (p *parser) atCustomProperty() bool {
	tok := p.at(0)
	if tok.Kind != token.IDENT || !strings.HasPrefix(tok.Value, "--") {
		return false
	}
	for i := 1; ; i++ {
		switch p.at(i).Kind {
		case token.WHITESPACE, token.COMMENT:
		case token.COLON:
			return true
		default:
			return false
		}
	}
}

// scanForEndOfRule looks ahead without consuming. The scan is bounded by
// the end of the enclosing block.
func (p *parser) scanForEndOfRule() endOfRule {
	var stack []token.Kind
	for i := 0; ; i++ {
		tok := p.at(i)
		switch tok.Kind {
		case token.EOF:
			return endOfRuleUnknown
		case token.SEMICOLON:
			if len(stack) == 0 {
				return endOfRuleSemicolon
			}
		case token.FUNCTION, token.LPAREN:
			stack = append(stack, token.RPAREN)
		case token.LBRACK:
			stack = append(stack, token.RBRACK)
		case token.LBRACE:
			if len(stack) == 0 {
				return endOfRuleOpenBrace
			}
			stack = append(stack, token.RBRACE)
		case token.RPAREN, token.RBRACK:
			if n := len(stack); n > 0 && stack[n-1] == tok.Kind {
				stack = stack[:n-1]
			}
		case token.RBRACE:
			if n := len(stack); n > 0 && stack[n-1] == tok.Kind {
				stack = stack[:n-1]
			} else {
				return endOfRuleUnknown
			}
		}
	}
}

// parseDeclaration consumes a single declaration up to, but not including,
// the terminating ";" or "}".
func (p *parser) parseDeclaration() *ast.Declaration {
	name := p.peek()
	if name.Kind != token.IDENT {
		p.fail(p.expected(name, "property name"))
		return nil
	}
	p.next()

	// Skip over whitespace. The next token must be a colon.
	p.skipTrivia()
	colon := p.peek()
	if colon.Kind != token.COLON {
		p.fail(p.expected(colon, `":"`))
		return nil
	}
	p.next()

	var value []token.Token
	var stack []token.Kind
loop:
	for {
		tok := p.peek()
		switch tok.Kind {
		case token.EOF:
			if p.depth == 0 && len(stack) == 0 {
				break loop
			}
			p.fail(p.expected(tok, p.closing(stack)))
			return nil
		case token.SEMICOLON:
			if len(stack) == 0 {
				break loop
			}
		case token.RBRACE:
			if len(stack) == 0 {
				break loop
			}
			if stack[len(stack)-1] != token.RBRACE {
				p.fail(p.unexpected(tok))
				return nil
			}
			stack = stack[:len(stack)-1]
		case token.FUNCTION, token.LPAREN:
			stack = append(stack, token.RPAREN)
		case token.LBRACK:
			stack = append(stack, token.RBRACK)
		case token.LBRACE:
			stack = append(stack, token.RBRACE)
		case token.RPAREN, token.RBRACK:
			if n := len(stack); n == 0 || stack[n-1] != tok.Kind {
				p.fail(p.unexpected(tok))
				return nil
			}
			stack = stack[:len(stack)-1]
		}
		value = append(value, p.next())
	}

	end := colon.End()
	if v := trimWhitespace(value); len(v) > 0 {
		end = v[len(v)-1].End()
	}

	value, important := stripImportant(value)
	d := &ast.Declaration{
		Property:  name.Raw,
		Value:     rawText(trimWhitespace(value)),
		Important: important,
		Loc:       p.loc(name.Pos, end),
	}
	if d.Value == "" && !d.IsCustomProperty() {
		p.fail(p.expected(p.peek(), "declaration value"))
		return nil
	}
	return d
}

// parseAtRule consumes an at-rule. The current token must be an at-keyword.
func (p *parser) parseAtRule() *ast.AtRule {
	kw := p.next()
	r := &ast.AtRule{Name: strings.TrimPrefix(kw.Raw, "@")}

	var prelude []token.Token
	var stack []token.Kind
	var terminated bool
loop:
	for {
		tok := p.peek()
		switch tok.Kind {
		case token.EOF:
			if p.depth == 0 && len(stack) == 0 {
				break loop
			}
			p.fail(p.expected(tok, p.closing(stack)))
			return nil
		case token.SEMICOLON:
			if len(stack) == 0 {
				p.next()
				terminated = true
				break loop
			}
		case token.LBRACE:
			if len(stack) == 0 {
				if r.Block = p.parseBlock(); r.Block == nil {
					return nil
				}
				break loop
			}
			stack = append(stack, token.RBRACE)
		case token.RBRACE:
			if len(stack) == 0 {
				if p.depth == 0 {
					p.fail(p.unexpected(tok))
					return nil
				}
				// The enclosing block ends the statement.
				break loop
			}
			if stack[len(stack)-1] != token.RBRACE {
				p.fail(p.unexpected(tok))
				return nil
			}
			stack = stack[:len(stack)-1]
		case token.FUNCTION, token.LPAREN:
			stack = append(stack, token.RPAREN)
		case token.LBRACK:
			stack = append(stack, token.RBRACK)
		case token.RPAREN, token.RBRACK:
			if n := len(stack); n == 0 || stack[n-1] != tok.Kind {
				p.fail(p.unexpected(tok))
				return nil
			}
			stack = stack[:len(stack)-1]
		}
		prelude = append(prelude, p.next())
	}

	prelude = trimWhitespace(prelude)
	end := p.prevEnd
	if r.Block == nil && !terminated {
		// Ended by EOF or the enclosing "}".
		end = kw.End()
		if n := len(prelude); n > 0 {
			end = prelude[n-1].End()
		}
	}
	r.Prelude = rawText(prelude)
	r.Loc = p.loc(kw.Pos, end)
	return r
}

// parseComment consumes a comment token.
func (p *parser) parseComment() *ast.Comment {
	tok := p.next()
	return &ast.Comment{Text: tok.Value, Loc: p.loc(tok.Pos, tok.End())}
}

// skipTrivia skips over whitespace and comment tokens.
func (p *parser) skipTrivia() {
	for {
		switch p.peek().Kind {
		case token.WHITESPACE, token.COMMENT:
			p.next()
		default:
			return
		}
	}
}

// peek returns the next token without consuming it.
func (p *parser) peek() token.Token {
	return p.at(0)
}

// at returns the token i positions ahead, reading from the scanner as
// needed. A scanner error is recorded and turned into an EOF token.
func (p *parser) at(i int) token.Token {
	for len(p.buf) <= i {
		if p.eof {
			return p.buf[len(p.buf)-1]
		}
		tok, err := p.s.Scan()
		if err != nil {
			p.lexErr = err
			tok = token.Token{Kind: token.EOF, Pos: tok.Pos}
		}
		if tok.Kind == token.EOF {
			p.eof = true
		}
		p.buf = append(p.buf, tok)
	}
	return p.buf[i]
}

// next consumes and returns the next token. EOF is never consumed.
func (p *parser) next() token.Token {
	tok := p.peek()
	if tok.Kind == token.EOF {
		return tok
	}
	p.buf = p.buf[1:]
	p.prevEnd = tok.End()
	return tok
}

// loc returns a source span, or nil when positions are omitted.
func (p *parser) loc(start, end token.Pos) *ast.Loc {
	if p.opts.OmitPositions {
		return nil
	}
	return &ast.Loc{Source: p.opts.Source, Start: start, End: end}
}

// result returns the first error of the parse. A scanner failure that the
// grammar never tripped over is still reported.
func (p *parser) result() error {
	if p.err == nil {
		p.err = p.lexErr
	}
	return p.err
}

// fail records err unless an earlier error has been recorded.
func (p *parser) fail(err error) {
	if p.err == nil {
		p.err = err
	}
}

// expected returns an error describing what was expected at tok.
// Reaching an EOF produced by a scanner failure reports the scanner error.
func (p *parser) expected(tok token.Token, what string) error {
	if tok.Kind == token.EOF && p.lexErr != nil {
		return p.lexErr
	}
	found := tok.Describe()
	return &Error{
		Source:   p.opts.Source,
		Pos:      tok.Pos,
		Message:  fmt.Sprintf("expected %s, found %s", what, found),
		Expected: what,
		Found:    found,
	}
}

// unexpected returns an error for a token that is not allowed at all.
func (p *parser) unexpected(tok token.Token) error {
	if tok.Kind == token.EOF && p.lexErr != nil {
		return p.lexErr
	}
	found := tok.Describe()
	return &Error{
		Source:  p.opts.Source,
		Pos:     tok.Pos,
		Message: "unexpected " + found,
		Found:   found,
	}
}

// closing describes the token that would close the innermost open group.
func (p *parser) closing(stack []token.Kind) string {
	if len(stack) == 0 {
		return `"}"`
	}
	switch stack[len(stack)-1] {
	case token.RPAREN:
		return `")"`
	case token.RBRACK:
		return `"]"`
	}
	return `"}"`
}

// stripImportant checks if the last non-whitespace tokens are a
// case-insensitive "!important". If so, it removes them and reports true.
func stripImportant(value []token.Token) ([]token.Token, bool) {
	i := len(value) - 1
	for i >= 0 && value[i].Kind == token.WHITESPACE {
		i--
	}
	if i < 0 || value[i].Kind != token.IDENT || !strings.EqualFold(value[i].Value, "important") {
		return value, false
	}
	i--
	for i >= 0 && value[i].Kind == token.WHITESPACE {
		i--
	}
	if i < 0 || !value[i].IsDelim("!") {
		return value, false
	}
	return value[:i], true
}

// trimWhitespace removes leading and trailing whitespace tokens.
func trimWhitespace(a []token.Token) []token.Token {
	for len(a) > 0 && a[0].Kind == token.WHITESPACE {
		a = a[1:]
	}
	for len(a) > 0 && a[len(a)-1].Kind == token.WHITESPACE {
		a = a[:len(a)-1]
	}
	return a
}

// rawText concatenates the source text of tokens.
func rawText(a []token.Token) string {
	var buf strings.Builder
	for _, tok := range a {
		buf.WriteString(tok.Raw)
	}
	return buf.String()
}

// TokenScanner represents a scanner for a fixed list of tokens.
type TokenScanner struct {
	i      int
	tokens []token.Token
}

// NewTokenScanner returns a new instance of TokenScanner.
func NewTokenScanner(tokens []token.Token) *TokenScanner {
	return &TokenScanner{tokens: tokens}
}

// Scan returns the next token. Once the list is exhausted it returns EOF
// positioned at the end of the last token.
func (s *TokenScanner) Scan() (token.Token, error) {
	if s.i < len(s.tokens) {
		tok := s.tokens[s.i]
		s.i++
		return tok, nil
	}
	pos := token.Start
	if n := len(s.tokens); n > 0 {
		pos = s.tokens[n-1].End()
	}
	return token.Token{Kind: token.EOF, Pos: pos}, nil
}

// Error represents a syntax error.
type Error struct {
	Source  string
	Pos     token.Pos
	Message string

	// Expected and Found describe the mismatch, when there is one.
	Expected string
	Found    string

	// Err is the sentinel the error wraps, if any.
	Err error
}

// Error returns the formatted string error message.
func (e *Error) Error() string {
	if e.Source != "" {
		return fmt.Sprintf("%s:%s: %s", e.Source, e.Pos, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Pos, e.Message)
}

// Unwrap returns the wrapped sentinel error.
func (e *Error) Unwrap() error {
	return e.Err
}
