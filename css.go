package zcss

import (
	"context"

	"github.com/zwebsuite/zcss/ast"
	"github.com/zwebsuite/zcss/parser"
	"github.com/zwebsuite/zcss/scanner"
)

// Options configures a parse. See parser.Options.
type Options = parser.Options

// LexError represents a malformed token such as an unterminated string.
type LexError = scanner.Error

// ParseError represents a structural error such as a missing "}".
type ParseError = parser.Error

var (
	ErrMaxDepth      = parser.ErrMaxDepth
	ErrInputTooLarge = parser.ErrInputTooLarge
)

// Parse parses CSS text into a stylesheet. The Source option only labels
// locations and error messages.
func Parse(text string, opts Options) (*ast.Stylesheet, error) {
	return parser.Parse(text, opts)
}

// ParseContext is like Parse but parents the tracing span and log records
// on ctx.
func ParseContext(ctx context.Context, text string, opts Options) (*ast.Stylesheet, error) {
	return parser.ParseContext(ctx, text, opts)
}
