package ast_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/zwebsuite/zcss/ast"
	"github.com/zwebsuite/zcss/token"
)

// tree builds:
//
//	/* c */ .a, .b { color: red; .c { margin: 0 !important } } @import "x.css";
func tree() *ast.Stylesheet {
	return &ast.Stylesheet{Children: []ast.Node{
		&ast.Comment{Text: " c "},
		&ast.Rule{
			Selectors: []*ast.Selector{{Text: ".a"}, {Text: ".b"}},
			Block: &ast.Block{Children: []ast.Node{
				&ast.Declaration{Property: "color", Value: "red"},
				&ast.Rule{
					Selectors: []*ast.Selector{{Text: ".c"}},
					Block: &ast.Block{Children: []ast.Node{
						&ast.Declaration{Property: "margin", Value: "0", Important: true},
					}},
				},
			}},
		},
		&ast.AtRule{Name: "import", Prelude: `"x.css"`},
	}}
}

// Ensure that nodes render as compact CSS.
func TestNode_String(t *testing.T) {
	t.Parallel()

	var tests = []struct {
		in ast.Node
		s  string
	}{
		{in: tree(), s: `/* c */ .a, .b { color: red; .c { margin: 0 !important; } } @import "x.css";`},
		{in: &ast.Rule{Selectors: []*ast.Selector{{Text: "a"}}, Block: &ast.Block{}}, s: `a {}`},
		{in: &ast.AtRule{Name: "media", Prelude: "screen", Block: &ast.Block{}}, s: `@media screen {}`},
		{in: &ast.AtRule{Name: "font-face", Block: &ast.Block{}}, s: `@font-face {}`},
		{in: &ast.Declaration{Property: "--x", Value: "{ a: b }"}, s: `--x: { a: b }`},
		{in: &ast.Comment{}, s: `/**/`},
	}

	for i, tt := range tests {
		assert.Equal(t, tt.s, tt.in.String(), "%d", i)
	}
}

// Ensure that Inspect visits nodes depth-first with children in order.
func TestInspect(t *testing.T) {
	t.Parallel()

	var got []string
	ast.Inspect(tree(), func(n ast.Node) bool {
		switch n := n.(type) {
		case *ast.Stylesheet:
			got = append(got, "Stylesheet")
		case *ast.Rule:
			got = append(got, "Rule")
		case *ast.Selector:
			got = append(got, "Selector "+n.Text)
		case *ast.Block:
			got = append(got, "Block")
		case *ast.Declaration:
			got = append(got, "Declaration "+n.Property)
		case *ast.AtRule:
			got = append(got, "AtRule "+n.Name)
		case *ast.Comment:
			got = append(got, "Comment")
		}
		return true
	})

	assert.Equal(t, []string{
		"Stylesheet",
		"Comment",
		"Rule", "Selector .a", "Selector .b", "Block",
		"Declaration color",
		"Rule", "Selector .c", "Block", "Declaration margin",
		"AtRule import",
	}, got)
}

// Ensure that returning false from Inspect skips a subtree.
func TestInspect_Prune(t *testing.T) {
	t.Parallel()

	var n int
	ast.Inspect(tree(), func(node ast.Node) bool {
		if node == nil {
			return false
		}
		n++
		_, isRule := node.(*ast.Rule)
		return !isRule
	})
	assert.Equal(t, 4, n)
}

// Ensure every node but the root has exactly one parent.
func TestParents(t *testing.T) {
	t.Parallel()

	root := tree()
	parents := ast.Parents(root)
	assert.Equal(t, ast.Count(root)-1, len(parents))

	outer := root.Children[1].(*ast.Rule)
	inner := outer.Block.Children[1].(*ast.Rule)
	assert.Same(t, outer.Block, parents[inner])
	assert.Same(t, outer, parents[outer.Block])
	assert.Same(t, root, parents[outer])
	_, ok := parents[root]
	assert.False(t, ok)
}

func TestCount(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 12, ast.Count(tree()))
	assert.Equal(t, 1, ast.Count(&ast.Comment{}))
}

// Ensure trees can be compared with and without locations.
func TestEqual(t *testing.T) {
	t.Parallel()

	assert.True(t, ast.Equal(tree(), tree(), true))

	a, b := tree(), tree()
	a.Children[2].(*ast.AtRule).Loc = &ast.Loc{Start: token.Start}
	assert.True(t, ast.Equal(a, b, false))
	assert.False(t, ast.Equal(a, b, true))

	b.Children[1].(*ast.Rule).Block.Children[0].(*ast.Declaration).Important = true
	assert.False(t, ast.Equal(a, b, false))

	assert.False(t, ast.Equal(&ast.AtRule{Name: "a"}, &ast.AtRule{Name: "a", Block: &ast.Block{}}, false))
	assert.False(t, ast.Equal(&ast.Comment{}, &ast.Selector{}, false))
}

func TestDeclaration_IsCustomProperty(t *testing.T) {
	t.Parallel()

	assert.True(t, (&ast.Declaration{Property: "--x"}).IsCustomProperty())
	assert.False(t, (&ast.Declaration{Property: "-webkit-x"}).IsCustomProperty())
}
