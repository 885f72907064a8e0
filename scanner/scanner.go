package scanner

import (
	"fmt"
	"iter"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/zwebsuite/zcss/token"
)

// eof represents the end of the input.
const eof rune = -1

// Scanner implements a CSS scanner over an in-memory string.
//
// Every token carries the exact source text it covers, including whitespace
// and comments, so the token stream is lossless. The scanner stops at the
// first malformed token and keeps returning that error until it is Reset.
type Scanner struct {
	src    string
	source string

	off int       // read offset
	pos token.Pos // position of the next token
	err error
}

// New returns a new instance of Scanner. The source label is attached to
// errors and has no effect on the tokens produced.
func New(src, source string) *Scanner {
	s := &Scanner{src: src, source: source}
	s.Reset()
	return s
}

// Reset rewinds the scanner to the beginning of the input.
func (s *Scanner) Reset() {
	s.off = 0
	s.pos = token.Start
	s.err = nil
}

// Source returns the label used in diagnostics.
func (s *Scanner) Source() string { return s.source }

// Scan returns the next token. Once the end of input is reached it returns
// an EOF token on every call.
func (s *Scanner) Scan() (token.Token, error) {
	if s.err != nil {
		return token.Token{Kind: token.ILLEGAL, Pos: s.pos}, s.err
	}

	start := s.off
	tok, err := s.scan()
	if err != nil {
		s.err = err
		return token.Token{Kind: token.ILLEGAL, Pos: s.pos}, err
	}
	tok.Raw = s.src[start:s.off]
	tok.Pos = s.pos
	s.pos = s.pos.Advance(tok.Raw)
	return tok, nil
}

// All returns the token sequence from the start of the input up to and
// including the EOF token or the first error. Each call restarts the
// scanner.
func (s *Scanner) All() iter.Seq2[token.Token, error] {
	return func(yield func(token.Token, error) bool) {
		s.Reset()
		for {
			tok, err := s.Scan()
			if !yield(tok, err) || err != nil || tok.Kind == token.EOF {
				return
			}
		}
	}
}

// Tokenize scans src into a slice of tokens ending with EOF.
func Tokenize(src, source string) ([]token.Token, error) {
	var a []token.Token
	for tok, err := range New(src, source).All() {
		if err != nil {
			return a, err
		}
		a = append(a, tok)
	}
	return a, nil
}

func (s *Scanner) scan() (token.Token, error) {
	ch := s.peek(0)
	switch {
	case ch == eof:
		return token.Token{Kind: token.EOF}, nil
	case isWhitespace(ch):
		return s.scanWhitespace(), nil
	case ch == '/' && s.peek(1) == '*':
		return s.scanComment()
	case ch == '"' || ch == '\'':
		return s.scanString()
	case ch == '#':
		return s.scanHash(), nil
	case ch == '(':
		return s.scanPunct(token.LPAREN), nil
	case ch == ')':
		return s.scanPunct(token.RPAREN), nil
	case ch == '[':
		return s.scanPunct(token.LBRACK), nil
	case ch == ']':
		return s.scanPunct(token.RBRACK), nil
	case ch == '{':
		return s.scanPunct(token.LBRACE), nil
	case ch == '}':
		return s.scanPunct(token.RBRACE), nil
	case ch == ',':
		return s.scanPunct(token.COMMA), nil
	case ch == ':':
		return s.scanPunct(token.COLON), nil
	case ch == ';':
		return s.scanPunct(token.SEMICOLON), nil
	case ch == '+' || ch == '.':
		if startsNumber(ch, s.peek(1), s.peek(2)) {
			return s.scanNumeric()
		}
		return s.scanDelim(), nil
	case ch == '-':
		// A hyphen can start a number, a CDC, an identifier or be a plain delim.
		ch1, ch2 := s.peek(1), s.peek(2)
		if startsNumber(ch, ch1, ch2) {
			return s.scanNumeric()
		} else if ch1 == '-' && ch2 == '>' {
			s.read()
			s.read()
			s.read()
			return token.Token{Kind: token.CDC}, nil
		} else if startsIdent(ch, ch1, ch2) {
			return s.scanIdent()
		}
		return s.scanDelim(), nil
	case ch == '<':
		if s.peek(1) == '!' && s.peek(2) == '-' && s.peek(3) == '-' {
			for i := 0; i < 4; i++ {
				s.read()
			}
			return token.Token{Kind: token.CDO}, nil
		}
		return s.scanDelim(), nil
	case ch == '@':
		// This is an at-keyword token if an identifier follows.
		// Otherwise it's just a DELIM.
		if startsIdent(s.peek(1), s.peek(2), s.peek(3)) {
			s.read()
			return token.Token{Kind: token.AT_KEYWORD, Value: s.scanName()}, nil
		}
		return s.scanDelim(), nil
	case ch == '\\':
		if isValidEscape(ch, s.peek(1)) {
			return s.scanIdent()
		}
		return s.scanDelim(), nil
	case isDigit(ch):
		return s.scanNumeric()
	case isNameStart(ch):
		return s.scanIdent()
	}
	return s.scanDelim(), nil
}

// scanPunct consumes a single punctuation code point.
func (s *Scanner) scanPunct(kind token.Kind) token.Token {
	ch := s.read()
	return token.Token{Kind: kind, Value: string(ch)}
}

// scanDelim consumes a single code point as a delim token.
func (s *Scanner) scanDelim() token.Token {
	ch := s.read()
	return token.Token{Kind: token.DELIM, Value: string(ch)}
}

// scanWhitespace consumes a run of whitespace.
func (s *Scanner) scanWhitespace() token.Token {
	start := s.off
	for isWhitespace(s.peek(0)) {
		s.read()
	}
	return token.Token{Kind: token.WHITESPACE, Value: s.src[start:s.off]}
}

// scanComment consumes all characters up to "*/", inclusive.
// Comments do not nest.
func (s *Scanner) scanComment() (token.Token, error) {
	s.read()
	s.read()
	start := s.off
	for {
		ch := s.read()
		if ch == eof {
			return token.Token{}, s.errorf("unterminated comment")
		} else if ch == '*' && s.peek(0) == '/' {
			end := s.off - 1
			s.read()
			return token.Token{Kind: token.COMMENT, Value: s.src[start:end]}, nil
		}
	}
}

// scanString consumes a quoted string.
//
// This function consumes all code points and escaped code points up until
// a matching, unescaped ending quote. An escaped newline is a line
// continuation and is dropped from the value. Reaching a raw newline or the
// end of input first is an error reported at the opening quote.
func (s *Scanner) scanString() (token.Token, error) {
	ending := s.read()
	var buf strings.Builder
	for {
		ch := s.read()
		switch ch {
		case ending:
			return token.Token{Kind: token.STRING, Value: buf.String()}, nil
		case eof, '\n':
			return token.Token{}, s.errorf("unterminated string")
		case '\\':
			switch s.peek(0) {
			case eof:
				return token.Token{}, s.errorf("unterminated string")
			case '\n':
				s.read()
			default:
				buf.WriteRune(s.scanEscape())
			}
		default:
			buf.WriteRune(ch)
		}
	}
}

// scanNumeric consumes a number, percentage or dimension.
func (s *Scanner) scanNumeric() (token.Token, error) {
	repr, typ := s.scanNumber()
	num, err := strconv.ParseFloat(repr, 64)
	if err != nil {
		return token.Token{}, s.errorf("invalid number literal %q", repr)
	}

	// If the number is immediately followed by an identifier then scan dimension.
	if startsIdent(s.peek(0), s.peek(1), s.peek(2)) {
		unit := s.scanName()
		return token.Token{Kind: token.DIMENSION, Value: repr, Number: num, Unit: unit, Flag: typ}, nil
	}

	// If the number is followed by a percent sign then return a percentage.
	if s.peek(0) == '%' {
		s.read()
		return token.Token{Kind: token.PERCENTAGE, Value: repr, Number: num, Flag: typ}, nil
	}

	return token.Token{Kind: token.NUMBER, Value: repr, Number: num, Flag: typ}, nil
}

// scanNumber consumes the textual representation of a number and reports
// whether it is an "integer" or a "number".
func (s *Scanner) scanNumber() (repr, typ string) {
	var buf strings.Builder
	typ = "integer"

	// If initial code point is + or - then store it.
	if ch := s.peek(0); ch == '+' || ch == '-' {
		buf.WriteRune(s.read())
	}

	buf.WriteString(s.scanDigits())

	// If next code points are a full stop and digit then consume them.
	if s.peek(0) == '.' && isDigit(s.peek(1)) {
		typ = "number"
		buf.WriteRune(s.read())
		buf.WriteString(s.scanDigits())
	}

	// Consume scientific notation (e0, e+0, e-0, E0, E+0, E-0).
	if ch0 := s.peek(0); ch0 == 'e' || ch0 == 'E' {
		ch1, ch2 := s.peek(1), s.peek(2)
		if isDigit(ch1) || ((ch1 == '+' || ch1 == '-') && isDigit(ch2)) {
			typ = "number"
			buf.WriteRune(s.read())
			if !isDigit(ch1) {
				buf.WriteRune(s.read())
			}
			buf.WriteString(s.scanDigits())
		}
	}

	return buf.String(), typ
}

// scanDigits consume a contiguous series of digits.
func (s *Scanner) scanDigits() string {
	start := s.off
	for isDigit(s.peek(0)) {
		s.read()
	}
	return s.src[start:s.off]
}

// scanHash consumes a hash token.
//
// It will return a hash token if the next code points are a name or valid escape.
// It will return a delim token otherwise.
// Hash tokens' type flag is set to "id" if its value is an identifier.
func (s *Scanner) scanHash() token.Token {
	ch1, ch2, ch3 := s.peek(1), s.peek(2), s.peek(3)
	if !isName(ch1) && !isValidEscape(ch1, ch2) {
		return s.scanDelim()
	}

	s.read()
	typ := "unrestricted"
	if startsIdent(ch1, ch2, ch3) {
		typ = "id"
	}
	return token.Token{Kind: token.HASH, Value: s.scanName(), Flag: typ}
}

// scanName consumes contiguous name code points and escaped code points.
func (s *Scanner) scanName() string {
	var buf strings.Builder
	for {
		if ch := s.peek(0); isName(ch) {
			buf.WriteRune(s.read())
		} else if isValidEscape(ch, s.peek(1)) {
			s.read()
			buf.WriteRune(s.scanEscape())
		} else {
			return buf.String()
		}
	}
}

// scanIdent consumes a ident-like token.
// This function can return an ident, function or url.
func (s *Scanner) scanIdent() (token.Token, error) {
	name := s.scanName()
	if s.peek(0) != '(' {
		return token.Token{Kind: token.IDENT, Value: name}, nil
	}
	s.read()

	// An unquoted url( is a single token. A quoted one is a function
	// followed by a string.
	if strings.EqualFold(name, "url") {
		i := 0
		for isWhitespace(s.peek(i)) {
			i++
		}
		if ch := s.peek(i); ch != '"' && ch != '\'' {
			for ; i > 0; i-- {
				s.read()
			}
			return s.scanURL()
		}
	}
	return token.Token{Kind: token.FUNCTION, Value: name}, nil
}

// scanURL consumes the contents of an unquoted url.
// This function assumes that the "url(" and any following whitespace have
// just been consumed.
func (s *Scanner) scanURL() (token.Token, error) {
	var buf strings.Builder
	for {
		ch := s.read()
		switch {
		case ch == ')':
			return token.Token{Kind: token.URL, Value: buf.String()}, nil
		case ch == eof:
			return token.Token{}, s.errorf("unterminated url")
		case isWhitespace(ch):
			for isWhitespace(s.peek(0)) {
				s.read()
			}
			switch s.read() {
			case ')':
				return token.Token{Kind: token.URL, Value: buf.String()}, nil
			case eof:
				return token.Token{}, s.errorf("unterminated url")
			}
			return token.Token{}, s.errorf("invalid url: unexpected whitespace")
		case ch == '"' || ch == '\'' || ch == '(' || isNonPrintable(ch):
			return token.Token{}, s.errorf("invalid url code point: %c (%U)", ch, ch)
		case ch == '\\':
			if !isValidEscape(ch, s.peek(0)) {
				return token.Token{}, s.errorf("unescaped \\ in url")
			}
			buf.WriteRune(s.scanEscape())
		default:
			buf.WriteRune(ch)
		}
	}
}

// scanEscape consumes an escaped code point.
// This function assumes that the backslash has just been consumed.
func (s *Scanner) scanEscape() rune {
	ch := s.read()
	if ch == eof {
		return utf8.RuneError
	} else if !isHexDigit(ch) {
		return ch
	}

	hex := string(ch)
	for i := 0; i < 5 && isHexDigit(s.peek(0)); i++ {
		hex += string(s.read())
	}

	// A single whitespace after a hex escape belongs to the escape.
	if isWhitespace(s.peek(0)) {
		s.read()
	}

	v, _ := strconv.ParseInt(hex, 16, 32)
	if v == 0 || (v >= 0xD800 && v <= 0xDFFF) || v > utf8.MaxRune {
		return utf8.RuneError
	}
	return rune(v)
}

// read consumes the next code point.
//
// The input is preprocessed on the fly: CR, CRLF and FF are returned as LF
// and NULL is replaced with the replacement character. Token Raw text is
// always sliced from the unprocessed input.
func (s *Scanner) read() rune {
	ch, w := s.decode(s.off)
	s.off += w
	return ch
}

// peek returns the code point n positions ahead without consuming it.
func (s *Scanner) peek(n int) rune {
	off := s.off
	for {
		ch, w := s.decode(off)
		if n == 0 || ch == eof {
			return ch
		}
		off += w
		n--
	}
}

// decode returns the preprocessed code point at off and its width in bytes.
func (s *Scanner) decode(off int) (rune, int) {
	if off >= len(s.src) {
		return eof, 0
	}
	ch, w := utf8.DecodeRuneInString(s.src[off:])
	switch ch {
	case '\r':
		if off+1 < len(s.src) && s.src[off+1] == '\n' {
			return '\n', 2
		}
		return '\n', 1
	case '\f':
		return '\n', 1
	case 0:
		return utf8.RuneError, 1
	}
	return ch, w
}

// errorf returns an error positioned at the start of the current token.
func (s *Scanner) errorf(format string, args ...any) error {
	return &Error{Source: s.source, Pos: s.pos, Message: fmt.Sprintf(format, args...)}
}

// startsIdent checks if three code points would start an identifier.
func startsIdent(ch1, ch2, ch3 rune) bool {
	switch {
	case ch1 == '-':
		return isNameStart(ch2) || ch2 == '-' || isValidEscape(ch2, ch3)
	case isNameStart(ch1):
		return true
	case ch1 == '\\':
		return isValidEscape(ch1, ch2)
	}
	return false
}

// startsNumber checks if three code points would start a number.
func startsNumber(ch1, ch2, ch3 rune) bool {
	switch ch1 {
	case '+', '-':
		return isDigit(ch2) || (ch2 == '.' && isDigit(ch3))
	case '.':
		return isDigit(ch2)
	}
	return isDigit(ch1)
}

// isValidEscape checks if two code points are a valid escape.
func isValidEscape(ch1, ch2 rune) bool {
	return ch1 == '\\' && ch2 != '\n'
}

// isWhitespace returns true if the rune is a space, tab, or newline.
func isWhitespace(ch rune) bool {
	return ch == ' ' || ch == '\t' || ch == '\n'
}

// isLetter returns true if the rune is a letter.
func isLetter(ch rune) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

// isDigit returns true if the rune is a digit.
func isDigit(ch rune) bool {
	return (ch >= '0' && ch <= '9')
}

// isHexDigit returns true if the rune is a hex digit.
func isHexDigit(ch rune) bool {
	return (ch >= '0' && ch <= '9') || (ch >= 'a' && ch <= 'f') || (ch >= 'A' && ch <= 'F')
}

// isNonASCII returns true if the rune is greater than U+0080.
func isNonASCII(ch rune) bool {
	return ch >= '\u0080'
}

// isNameStart returns true if the rune can start a name.
func isNameStart(ch rune) bool {
	return isLetter(ch) || isNonASCII(ch) || ch == '_'
}

// isName returns true if the character is a name code point.
func isName(ch rune) bool {
	return isNameStart(ch) || isDigit(ch) || ch == '-'
}

// isNonPrintable returns true if the character is non-printable.
func isNonPrintable(ch rune) bool {
	return (ch >= '\u0000' && ch <= '\u0008') || ch == '\u000B' || (ch >= '\u000E' && ch <= '\u001F') || ch == '\u007F'
}

// Error represents a malformed token.
type Error struct {
	Source  string
	Pos     token.Pos
	Message string
}

// Error returns the formatted string error message.
func (e *Error) Error() string {
	if e.Source != "" {
		return fmt.Sprintf("%s:%s: %s", e.Source, e.Pos, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Pos, e.Message)
}
