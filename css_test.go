package zcss_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zwebsuite/zcss"
	"github.com/zwebsuite/zcss/ast"
)

func TestParse(t *testing.T) {
	t.Parallel()

	ss, err := zcss.Parse(`.a { .b { color: red; } }`, zcss.Options{Source: "app.css"})
	require.NoError(t, err)
	assert.Equal(t, "app.css", ss.Loc.Source)

	outer := ss.Children[0].(*ast.Rule)
	_, ok := outer.Block.Children[0].(*ast.Rule)
	assert.True(t, ok)
}

func TestParse_Errors(t *testing.T) {
	t.Parallel()

	_, err := zcss.Parse(`.a { color: red;`, zcss.Options{Source: "app.css"})
	var perr *zcss.ParseError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, "app.css", perr.Source)
	assert.Equal(t, 17, perr.Pos.Column)

	_, err = zcss.Parse(`.a { content: "x; }`, zcss.Options{Source: "app.css"})
	var lerr *zcss.LexError
	require.True(t, errors.As(err, &lerr))
	assert.Equal(t, 15, lerr.Pos.Column)

	_, err = zcss.ParseContext(context.Background(), `a{b{}}`, zcss.Options{MaxDepth: 1})
	assert.ErrorIs(t, err, zcss.ErrMaxDepth)

	_, err = zcss.Parse(`a{}`, zcss.Options{MaxInputSize: 1})
	assert.ErrorIs(t, err, zcss.ErrInputTooLarge)
}

// Ensure that two parses of the same input are equal and share no nodes.
func TestParse_Pure(t *testing.T) {
	t.Parallel()

	const src = `.a { color: red; .b { margin: 0 } } @media print { .c { d: e } }`
	a, err := zcss.Parse(src, zcss.Options{})
	require.NoError(t, err)
	b, err := zcss.Parse(src, zcss.Options{})
	require.NoError(t, err)

	assert.True(t, ast.Equal(a, b, true))

	seen := make(map[ast.Node]bool)
	ast.Inspect(a, func(n ast.Node) bool {
		if n != nil {
			seen[n] = true
		}
		return true
	})
	ast.Inspect(b, func(n ast.Node) bool {
		if n != nil {
			assert.False(t, seen[n], "shared node %T", n)
		}
		return true
	})
}
