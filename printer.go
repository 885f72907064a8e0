package zcss

import (
	"io"
	"strings"

	"github.com/zwebsuite/zcss/ast"
)

// DefaultIndent is the indentation used when Printer.Indent is empty.
const DefaultIndent = "  "

// Printer represents a configurable CSS printer.
//
// The printed text parses to a tree equal to the printed one, ignoring
// locations. Selectors, values and preludes are written verbatim.
type Printer struct {
	// Indent is the string used for each nesting level.
	Indent string

	// Compact removes all optional whitespace.
	Compact bool
}

// Print writes the CSS text of n to w. Nil nodes print nothing.
func (p *Printer) Print(w io.Writer, n ast.Node) error {
	pp := &printer{w: w, compact: p.Compact, indent: p.Indent}
	if pp.indent == "" {
		pp.indent = DefaultIndent
	}
	pp.node(n, 0)
	return pp.err
}

// Format prints a node to a string using the default configuration.
func Format(n ast.Node) string {
	var p Printer
	var buf strings.Builder
	_ = p.Print(&buf, n)
	return buf.String()
}

// printer holds the state of a single Print call.
type printer struct {
	w       io.Writer
	err     error
	compact bool
	indent  string
}

func (p *printer) node(n ast.Node, depth int) {
	switch n := n.(type) {
	case *ast.Stylesheet:
		if n == nil {
			return
		}
		for i, child := range n.Children {
			if p.compact {
				p.node(child, 0)
				continue
			}
			// Blank line between statements, none after a comment.
			if i > 0 {
				if _, ok := n.Children[i-1].(*ast.Comment); !ok {
					p.write("\n")
				}
			}
			p.node(child, 0)
			p.write("\n")
		}

	case *ast.Rule:
		if n == nil {
			return
		}
		for i, sel := range n.Selectors {
			if i > 0 {
				p.space(",", ", ")
			}
			p.write(sel.Text)
		}
		p.space("", " ")
		p.block(n.Block, depth)

	case *ast.Selector:
		if n == nil {
			return
		}
		p.write(n.Text)

	case *ast.Block:
		if n == nil {
			return
		}
		p.block(n, depth)

	case *ast.Declaration:
		if n == nil {
			return
		}
		p.write(n.Property)
		p.write(":")
		if n.Value != "" {
			p.space("", " ")
			p.write(n.Value)
		}
		if n.Important {
			p.space("", " ")
			p.write("!important")
		}

	case *ast.AtRule:
		if n == nil {
			return
		}
		p.write("@")
		p.write(n.Name)
		if n.Prelude != "" {
			p.write(" ")
			p.write(n.Prelude)
		}
		if n.Block != nil {
			p.space("", " ")
			p.block(n.Block, depth)
		} else {
			p.write(";")
		}

	case *ast.Comment:
		if n == nil {
			return
		}
		p.write("/*")
		p.write(n.Text)
		p.write("*/")
	}
}

// block writes a {-block with its children one per line, or all on one
// line in compact mode.
func (p *printer) block(b *ast.Block, depth int) {
	if b == nil || len(b.Children) == 0 {
		p.write("{}")
		return
	}

	p.write("{")
	for i, child := range b.Children {
		_, isDecl := child.(*ast.Declaration)
		if p.compact {
			p.node(child, depth+1)
			// The last declaration needs no terminator.
			if isDecl && i < len(b.Children)-1 {
				p.write(";")
			}
			continue
		}

		p.write("\n")
		p.write(strings.Repeat(p.indent, depth+1))
		p.node(child, depth+1)
		if isDecl {
			p.write(";")
		}
	}
	if !p.compact {
		p.write("\n")
		p.write(strings.Repeat(p.indent, depth))
	}
	p.write("}")
}

// space writes compact in compact mode and pretty otherwise.
func (p *printer) space(compact, pretty string) {
	if p.compact {
		p.write(compact)
	} else {
		p.write(pretty)
	}
}

func (p *printer) write(s string) {
	if p.err != nil || s == "" {
		return
	}
	_, p.err = io.WriteString(p.w, s)
}
