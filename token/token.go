package token

import (
	"fmt"
	"strconv"
	"unicode/utf8"
)

// Kind represents the type of a lexical token.
type Kind int

const (
	// Special tokens
	ILLEGAL Kind = iota
	EOF
	WHITESPACE
	COMMENT

	// Name-like tokens
	IDENT
	FUNCTION
	AT_KEYWORD
	HASH
	STRING
	URL

	// Numeric tokens
	NUMBER
	PERCENTAGE
	DIMENSION

	// Punctuation
	DELIM
	COLON
	SEMICOLON
	COMMA
	LBRACK
	RBRACK
	LPAREN
	RPAREN
	LBRACE
	RBRACE
	CDO
	CDC
)

var kinds = [...]string{
	ILLEGAL:    "ILLEGAL",
	EOF:        "EOF",
	WHITESPACE: "WHITESPACE",
	COMMENT:    "COMMENT",
	IDENT:      "IDENT",
	FUNCTION:   "FUNCTION",
	AT_KEYWORD: "AT_KEYWORD",
	HASH:       "HASH",
	STRING:     "STRING",
	URL:        "URL",
	NUMBER:     "NUMBER",
	PERCENTAGE: "PERCENTAGE",
	DIMENSION:  "DIMENSION",
	DELIM:      "DELIM",
	COLON:      "COLON",
	SEMICOLON:  "SEMICOLON",
	COMMA:      "COMMA",
	LBRACK:     "LBRACK",
	RBRACK:     "RBRACK",
	LPAREN:     "LPAREN",
	RPAREN:     "RPAREN",
	LBRACE:     "LBRACE",
	RBRACE:     "RBRACE",
	CDO:        "CDO",
	CDC:        "CDC",
}

// String returns the string representation of the kind.
func (k Kind) String() string {
	if k >= 0 && k < Kind(len(kinds)) {
		return kinds[k]
	}
	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

// Token is a single lexical unit. Raw always holds the exact source text
// covered by the token so a token stream can be concatenated back into the
// original input.
type Token struct {
	Kind Kind

	// Raw is the verbatim source slice.
	Raw string

	// Value is the decoded value: the unescaped name of idents, functions,
	// at-keywords and hashes, the contents of strings and urls, the body of
	// comments and the representation of numeric tokens.
	Value string

	// Numeric tokens only.
	Number float64
	Unit   string

	// Flag is "integer" or "number" for numeric tokens and "id" or
	// "unrestricted" for hash tokens.
	Flag string

	Pos Pos
}

// End returns the position immediately after the token.
func (t Token) End() Pos {
	return t.Pos.Advance(t.Raw)
}

// IsDelim reports whether the token is a DELIM with the given value.
func (t Token) IsDelim(v string) bool {
	return t.Kind == DELIM && t.Value == v
}

// Describe returns a short human readable description of the token for use
// in error messages.
func (t Token) Describe() string {
	switch t.Kind {
	case EOF:
		return "end of input"
	case WHITESPACE:
		return "whitespace"
	case COMMENT:
		return "comment"
	case STRING:
		return "string " + t.Raw
	}
	if t.Raw == "" {
		return t.Kind.String()
	}
	return strconv.Quote(t.Raw)
}

func (t Token) String() string {
	return fmt.Sprintf("%s %q %s", t.Kind, t.Raw, t.Pos)
}

// Pos specifies the position of a token in the source text.
// Offset is a zero-based byte offset. Line and Column are 1-based and
// Column counts runes.
type Pos struct {
	Offset int
	Line   int
	Column int
}

// Start is the position of the first character of any input.
var Start = Pos{Offset: 0, Line: 1, Column: 1}

// IsValid reports whether the position has been set.
func (p Pos) IsValid() bool {
	return p.Line > 0
}

// Advance returns the position reached after reading s from p.
// A "\r\n" pair counts as a single line break.
func (p Pos) Advance(s string) Pos {
	for i := 0; i < len(s); {
		ch, w := utf8.DecodeRuneInString(s[i:])
		i += w
		p.Offset += w
		switch ch {
		case '\r':
			if i < len(s) && s[i] == '\n' {
				p.Column++
				continue
			}
			p.Line, p.Column = p.Line+1, 1
		case '\n', '\f':
			p.Line, p.Column = p.Line+1, 1
		default:
			p.Column++
		}
	}
	return p
}

func (p Pos) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}
