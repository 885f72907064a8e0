package parser_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zwebsuite/zcss/ast"
	"github.com/zwebsuite/zcss/parser"
	"github.com/zwebsuite/zcss/scanner"
	"github.com/zwebsuite/zcss/token"
)

// Ensure that stylesheets can be parsed into the correct AST.
func TestParse(t *testing.T) {
	t.Parallel()

	var tests = []struct {
		s   string
		v   string
		err string
	}{
		{s: ``, v: ``},
		{s: `.a { color: red }`, v: `.a { color: red; }`},
		{s: `.a { .b { color: red; } }`, v: `.a { .b { color: red; } }`},
		{s: `.a { &:hover { color: red } }`, v: `.a { &:hover { color: red; } }`},
		{s: `.a { a:hover { color: red } }`, v: `.a { a:hover { color: red; } }`},
		{s: `.a { color: red; a:hover { color: blue } }`, v: `.a { color: red; a:hover { color: blue; } }`},
		{s: `a, b > c , d:is(e, f) { x: y }`, v: `a, b > c, d:is(e, f) { x: y; }`},
		{s: `.a { color: red !important; }`, v: `.a { color: red !important; }`},
		{s: `.a { color: red ! IMPORTANT }`, v: `.a { color: red !important; }`},
		{s: `.a { --x: { a: b }; }`, v: `.a { --x: { a: b }; }`},
		{s: `.a { --x : { a: b } }`, v: `.a { --x: { a: b }; }`},
		{s: `.a { --empty:; }`, v: `.a { --empty: ; }`},
		{s: `.a { margin: 0;; ; padding: 1px }`, v: `.a { margin: 0; padding: 1px; }`},
		{s: `.a { color: red; /* c */ }`, v: `.a { color: red; /* c */ }`},
		{s: `.a { background: url(x.png) no-repeat; }`, v: `.a { background: url(x.png) no-repeat; }`},
		{s: `.a { grid-template-areas: "a b" "c d"; }`, v: `.a { grid-template-areas: "a b" "c d"; }`},
		{s: `.a { width: calc(100% - (2 * 1px)); }`, v: `.a { width: calc(100% - (2 * 1px)); }`},
		{s: `.a { content: "}"; }`, v: `.a { content: "}"; }`},
		{s: `<!-- .a {} -->`, v: `.a {}`},
		{s: `/* top */ .a {}`, v: `/* top */ .a {}`},
		{s: `@import url(foo.css) screen;`, v: `@import url(foo.css) screen;`},
		{s: `@charset "utf-8"; .a {}`, v: `@charset "utf-8"; .a {}`},
		{s: `@media (min-width: 100px) { .a { color: red } }`, v: `@media (min-width: 100px) { .a { color: red; } }`},
		{s: `@font-face { font-family: x }`, v: `@font-face { font-family: x; }`},
		{s: `.a { @media print { color: red } }`, v: `.a { @media print { color: red; } }`},
		{s: `.a { @apply foo }`, v: `.a { @apply foo; }`},
		{s: `@layer base`, v: `@layer base;`},

		{s: `}`, err: `1:1: unexpected "}"`},
		{s: `.a`, err: `1:3: expected "{", found end of input`},
		{s: `.a; .b {}`, err: `1:3: expected "{", found ";"`},
		{s: `{ color: red }`, err: `1:1: expected selector, found "{"`},
		{s: `a, , b {}`, err: `1:4: expected selector, found ","`},
		{s: `a) {}`, err: `1:2: unexpected ")"`},
		{s: `.a { color: red;`, err: `1:17: expected "}", found end of input`},
		{s: `.a { color }`, err: `1:12: expected ":", found "}"`},
		{s: `.a { color: }`, err: `1:13: expected declaration value, found "}"`},
		{s: `.a { color: red) }`, err: `1:16: unexpected ")"`},
		{s: `.a { b: fn(x; }`, err: `1:15: unexpected "}"`},
		{s: `.a { b: fn(x`, err: `1:13: expected ")", found end of input`},
		{s: `.a { 12px: x }`, err: `1:6: expected property name, found "12px"`},
		{s: `@media screen { .a { }`, err: `1:23: expected "}", found end of input`},
		{s: `@media (screen`, err: `1:15: expected ")", found end of input`},
		{s: `.a { content: "x; }`, err: `1:15: unterminated string`},
		{s: `.a { color: red } /* x`, err: `1:19: unterminated comment`},
	}

	for i, tt := range tests {
		ss, err := parser.Parse(tt.s, parser.Options{})
		if tt.err != "" {
			assert.EqualError(t, err, tt.err, "%d. <%q>", i, tt.s)
			assert.Nil(t, ss, "%d. <%q>", i, tt.s)
			continue
		}
		if assert.NoError(t, err, "%d. <%q>", i, tt.s) {
			assert.Equal(t, tt.v, ss.String(), "%d. <%q>", i, tt.s)
		}
	}
}

// Ensure that a block containing a rule produces a nested rule node while
// a plain property produces a declaration.
func TestParse_Nesting(t *testing.T) {
	t.Parallel()

	ss, err := parser.Parse(`.a { .b { color: red; } }`, parser.Options{})
	require.NoError(t, err)
	require.Len(t, ss.Children, 1)
	outer := ss.Children[0].(*ast.Rule)
	require.Len(t, outer.Block.Children, 1)
	inner, ok := outer.Block.Children[0].(*ast.Rule)
	require.True(t, ok, "expected nested rule, got %T", outer.Block.Children[0])
	assert.Equal(t, ".b", inner.SelectorText())
	assert.Equal(t, &ast.Declaration{Property: "color", Value: "red"}, withoutLoc(inner.Block.Children[0]))

	ss, err = parser.Parse(`.a { color: red }`, parser.Options{OmitPositions: true})
	require.NoError(t, err)
	assert.Equal(t, []ast.Node{&ast.Declaration{Property: "color", Value: "red"}}, ss.Children[0].(*ast.Rule).Block.Children)
}

// Ensure that a custom property holding a block is never a nested rule.
func TestParse_CustomPropertyBlock(t *testing.T) {
	t.Parallel()

	ss, err := parser.Parse(`.a { --x: { a: b }; color: red }`, parser.Options{OmitPositions: true})
	require.NoError(t, err)
	assert.Equal(t, []ast.Node{
		&ast.Declaration{Property: "--x", Value: "{ a: b }"},
		&ast.Declaration{Property: "color", Value: "red"},
	}, ss.Children[0].(*ast.Rule).Block.Children)
}

// Ensure that selectors keep their source text.
func TestParse_Selectors(t *testing.T) {
	t.Parallel()

	ss, err := parser.Parse("a[href$=\".pdf\" i],\n  ul > li:nth-child(2n + 1) ,*::before {}", parser.Options{})
	require.NoError(t, err)

	r := ss.Children[0].(*ast.Rule)
	require.Len(t, r.Selectors, 3)
	assert.Equal(t, `a[href$=".pdf" i]`, r.Selectors[0].Text)
	assert.Equal(t, `ul > li:nth-child(2n + 1)`, r.Selectors[1].Text)
	assert.Equal(t, `*::before`, r.Selectors[2].Text)
	assert.Equal(t, token.Pos{Offset: 21, Line: 2, Column: 3}, r.Selectors[1].Loc.Start)
}

// Ensure that nodes carry source spans.
func TestParse_Positions(t *testing.T) {
	t.Parallel()

	ss, err := parser.Parse(".a {\n  color: red;\n}\n@import \"x\";", parser.Options{Source: "x.css"})
	require.NoError(t, err)

	r := ss.Children[0].(*ast.Rule)
	d := r.Block.Children[0].(*ast.Declaration)
	at := ss.Children[1].(*ast.AtRule)

	assert.Equal(t, &ast.Loc{Source: "x.css", Start: token.Start, End: token.Pos{Offset: 33, Line: 4, Column: 13}}, ss.Loc)
	assert.Equal(t, &ast.Loc{Source: "x.css", Start: token.Start, End: token.Pos{Offset: 20, Line: 3, Column: 2}}, r.Loc)
	assert.Equal(t, token.Pos{Offset: 3, Line: 1, Column: 4}, r.Block.Loc.Start)
	assert.Equal(t, &ast.Loc{Source: "x.css", Start: token.Pos{Offset: 7, Line: 2, Column: 3}, End: token.Pos{Offset: 17, Line: 2, Column: 13}}, d.Loc)
	assert.Equal(t, &ast.Loc{Source: "x.css", Start: token.Pos{Offset: 21, Line: 4, Column: 1}, End: token.Pos{Offset: 33, Line: 4, Column: 13}}, at.Loc)
}

// Ensure that positions can be left out entirely.
func TestParse_OmitPositions(t *testing.T) {
	t.Parallel()

	ss, err := parser.Parse(`/* c */ .a, .b { x: y; .c { @media print {} } } @import "a";`, parser.Options{OmitPositions: true})
	require.NoError(t, err)
	ast.Inspect(ss, func(n ast.Node) bool {
		if n != nil {
			assert.Nil(t, n.Location(), "%T", n)
		}
		return true
	})
}

// Ensure that errors are labeled with the source name and unwrap to their
// concrete types.
func TestParse_ErrorTypes(t *testing.T) {
	t.Parallel()

	_, err := parser.Parse(`}`, parser.Options{Source: "a.css"})
	assert.EqualError(t, err, `a.css:1:1: unexpected "}"`)
	var perr *parser.Error
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, `"}"`, perr.Found)

	_, err = parser.Parse(`.a { color: red;`, parser.Options{})
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, `"}"`, perr.Expected)
	assert.Equal(t, "end of input", perr.Found)
	assert.Equal(t, token.Pos{Offset: 16, Line: 1, Column: 17}, perr.Pos)

	_, err = parser.Parse(`.a { content: "x; }`, parser.Options{Source: "a.css"})
	assert.EqualError(t, err, `a.css:1:15: unterminated string`)
	var serr *scanner.Error
	require.True(t, errors.As(err, &serr))
	assert.Equal(t, token.Pos{Offset: 14, Line: 1, Column: 15}, serr.Pos)
}

// Ensure that a structural error ahead of a scanner error wins.
func TestParse_FirstErrorWins(t *testing.T) {
	t.Parallel()

	_, err := parser.Parse(`.a { b: c) "x`, parser.Options{})
	assert.EqualError(t, err, `1:10: unexpected ")"`)
}

func TestParse_MaxDepth(t *testing.T) {
	t.Parallel()

	_, err := parser.Parse(`a{b{c{}}}`, parser.Options{MaxDepth: 2})
	assert.ErrorIs(t, err, parser.ErrMaxDepth)
	assert.EqualError(t, err, `1:6: blocks nested deeper than 2 levels`)

	_, err = parser.Parse(`a{b{}}`, parser.Options{MaxDepth: 2})
	assert.NoError(t, err)

	_, err = parser.Parse(strings.Repeat("a{", parser.DefaultMaxDepth)+strings.Repeat("}", parser.DefaultMaxDepth), parser.Options{})
	assert.NoError(t, err)

	_, err = parser.Parse(strings.Repeat("a{", 100000), parser.Options{})
	assert.ErrorIs(t, err, parser.ErrMaxDepth)
}

func TestParse_MaxInputSize(t *testing.T) {
	t.Parallel()

	_, err := parser.Parse(`.a { b: c }`, parser.Options{MaxInputSize: 10})
	assert.ErrorIs(t, err, parser.ErrInputTooLarge)
	assert.EqualError(t, err, `1:1: input of 11 B exceeds the limit of 10 B`)

	_, err = parser.Parse(`.a { b: c }`, parser.Options{MaxInputSize: 11})
	assert.NoError(t, err)
}

func TestParseDeclarationList(t *testing.T) {
	t.Parallel()

	var tests = []struct {
		s   string
		v   string
		err string
	}{
		{s: ``, v: `{}`},
		{s: `color: red`, v: `{ color: red; }`},
		{s: ` color: red; --x: 1; .b { c: d } `, v: `{ color: red; --x: 1; .b { c: d; } }`},
		{s: `color: red; @media print { x: y }`, v: `{ color: red; @media print { x: y; } }`},
		{s: `color: red }`, err: `1:12: unexpected "}"`},
		{s: `color`, err: `1:6: expected ":", found end of input`},
	}

	for i, tt := range tests {
		b, err := parser.ParseDeclarationList(tt.s, parser.Options{})
		if tt.err != "" {
			assert.EqualError(t, err, tt.err, "%d. <%q>", i, tt.s)
			continue
		}
		if assert.NoError(t, err, "%d. <%q>", i, tt.s) {
			assert.Equal(t, tt.v, b.String(), "%d. <%q>", i, tt.s)
		}
	}
}

func TestParseDeclaration(t *testing.T) {
	t.Parallel()

	d, err := parser.ParseDeclaration(` color : red !important ; `, parser.Options{OmitPositions: true})
	require.NoError(t, err)
	assert.Equal(t, &ast.Declaration{Property: "color", Value: "red", Important: true}, d)

	_, err = parser.ParseDeclaration(`color: red; x`, parser.Options{})
	assert.EqualError(t, err, `1:13: expected end of input, found "x"`)

	_, err = parser.ParseDeclaration(``, parser.Options{})
	assert.EqualError(t, err, `1:1: expected property name, found end of input`)
}

// Ensure that a pre-scanned token list can be parsed.
func TestParseScanner(t *testing.T) {
	t.Parallel()

	toks, err := scanner.Tokenize(`.a { b: c }`, "")
	require.NoError(t, err)

	// Drop the EOF token; the token scanner supplies its own.
	ss, err := parser.ParseScanner(context.Background(), parser.NewTokenScanner(toks[:len(toks)-1]), parser.Options{})
	require.NoError(t, err)
	assert.Equal(t, `.a { b: c; }`, ss.String())
	assert.Equal(t, token.Pos{Offset: 11, Line: 1, Column: 12}, ss.Loc.End)
}

// Ensure that concurrent parses of one input produce equal trees.
func TestParse_Parallel(t *testing.T) {
	t.Parallel()

	const src = `@media screen { .a, .b { color: red; .c { --x: { y: z }; } } } /* end */`
	want, err := parser.Parse(src, parser.Options{})
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([]*ast.Stylesheet, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = parser.Parse(src, parser.Options{})
		}(i)
	}
	wg.Wait()

	for i, got := range results {
		require.NotNil(t, got, "%d", i)
		assert.True(t, ast.Equal(want, got, true), "%d", i)
	}
}

func FuzzParse(f *testing.F) {
	for _, s := range []string{
		`.a { .b { color: red; } }`,
		`@media (x) { a { --y: { z } } }`,
		`.a { color: red;`,
		`a{b{c{d:e}}}`,
	} {
		f.Add(s)
	}
	f.Fuzz(func(t *testing.T, s string) {
		ss, err := parser.Parse(s, parser.Options{MaxDepth: 16})
		if err != nil {
			return
		}
		again, err := parser.Parse(s, parser.Options{MaxDepth: 16})
		require.NoError(t, err)
		assert.True(t, ast.Equal(ss, again, true))
	})
}

// withoutLoc returns a copy of a declaration with its location cleared.
func withoutLoc(n ast.Node) ast.Node {
	d := *n.(*ast.Declaration)
	d.Loc = nil
	return &d
}
