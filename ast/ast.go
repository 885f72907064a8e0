package ast

import (
	"strings"

	"github.com/zwebsuite/zcss/token"
)

// Node represents a node in the CSS abstract syntax tree.
//
// The set of nodes is closed: Stylesheet, Rule, Selector, Block,
// Declaration, AtRule and Comment. Every node exclusively owns its
// children and the tree is never modified after parsing.
type Node interface {
	node()
	Location() *Loc
	String() string
}

func (_ *Stylesheet) node()  {}
func (_ *Rule) node()        {}
func (_ *Selector) node()    {}
func (_ *Block) node()       {}
func (_ *Declaration) node() {}
func (_ *AtRule) node()      {}
func (_ *Comment) node()     {}

// Loc is the source span of a node. End is exclusive.
type Loc struct {
	Source string
	Start  token.Pos
	End    token.Pos
}

// Stylesheet represents a top-level CSS stylesheet. Its children are
// rules, at-rules and comments.
type Stylesheet struct {
	Children []Node
	Loc      *Loc
}

func (s *Stylesheet) Location() *Loc { return s.Loc }

func (s *Stylesheet) String() string {
	var buf strings.Builder
	for i, n := range s.Children {
		if i > 0 {
			buf.WriteString(" ")
		}
		buf.WriteString(n.String())
	}
	return buf.String()
}

// Rule represents a style rule: a selector list followed by a {-block.
type Rule struct {
	Selectors []*Selector
	Block     *Block
	Loc       *Loc
}

func (r *Rule) Location() *Loc { return r.Loc }

func (r *Rule) String() string {
	return r.SelectorText() + " " + r.Block.String()
}

// SelectorText returns the selectors joined by commas.
func (r *Rule) SelectorText() string {
	a := make([]string, len(r.Selectors))
	for i, sel := range r.Selectors {
		a[i] = sel.Text
	}
	return strings.Join(a, ", ")
}

// Selector is a single complex selector of a rule's selector list. Text is
// the verbatim source of the selector with surrounding whitespace removed.
type Selector struct {
	Text string
	Loc  *Loc
}

func (s *Selector) Location() *Loc { return s.Loc }

func (s *Selector) String() string { return s.Text }

// Block represents the contents of a {-block. Its children are
// declarations, nested rules, at-rules and comments in source order.
type Block struct {
	Children []Node
	Loc      *Loc
}

func (b *Block) Location() *Loc { return b.Loc }

func (b *Block) String() string {
	if len(b.Children) == 0 {
		return "{}"
	}
	var buf strings.Builder
	buf.WriteString("{ ")
	for _, n := range b.Children {
		buf.WriteString(n.String())
		if _, ok := n.(*Declaration); ok {
			buf.WriteString(";")
		}
		buf.WriteString(" ")
	}
	buf.WriteString("}")
	return buf.String()
}

// Declaration represents a property/value pair. Value is the verbatim
// value text without the "!important" suffix.
type Declaration struct {
	Property  string
	Value     string
	Important bool
	Loc       *Loc
}

func (d *Declaration) Location() *Loc { return d.Loc }

func (d *Declaration) String() string {
	s := d.Property + ": " + d.Value
	if d.Important {
		s += " !important"
	}
	return s
}

// IsCustomProperty reports whether the declaration defines a custom
// property such as "--main-color".
func (d *Declaration) IsCustomProperty() bool {
	return strings.HasPrefix(d.Property, "--")
}

// AtRule represents a rule starting with an "@" symbol. Block is nil when
// the rule is terminated by a semicolon.
type AtRule struct {
	Name    string
	Prelude string
	Block   *Block
	Loc     *Loc
}

func (r *AtRule) Location() *Loc { return r.Loc }

func (r *AtRule) String() string {
	var buf strings.Builder
	buf.WriteString("@" + r.Name)
	if r.Prelude != "" {
		buf.WriteString(" " + r.Prelude)
	}
	if r.Block != nil {
		buf.WriteString(" " + r.Block.String())
	} else {
		buf.WriteString(";")
	}
	return buf.String()
}

// Comment represents a /* ... */ comment. Text excludes the delimiters.
type Comment struct {
	Text string
	Loc  *Loc
}

func (c *Comment) Location() *Loc { return c.Loc }

func (c *Comment) String() string { return "/*" + c.Text + "*/" }
