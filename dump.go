package zcss

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/zwebsuite/zcss/ast"
	"github.com/zwebsuite/zcss/token"
)

// DumpFormat is the encoding used by Dump and Decode.
type DumpFormat string

const (
	FormatJSON DumpFormat = "json"
	FormatYAML DumpFormat = "yaml"
)

// DefaultDumpIndent is the indentation width used when DumpOptions.Indent
// is zero.
const DefaultDumpIndent = 2

// Node type names used in dumps.
const (
	typeStylesheet  = "Stylesheet"
	typeRule        = "Rule"
	typeSelector    = "Selector"
	typeBlock       = "Block"
	typeDeclaration = "Declaration"
	typeAtRule      = "AtRule"
	typeComment     = "Comment"
)

// ParseDumpFormat returns the format named by s, case-insensitively.
func ParseDumpFormat(s string) (DumpFormat, error) {
	switch f := DumpFormat(strings.ToLower(s)); f {
	case FormatJSON, FormatYAML:
		return f, nil
	case "":
		return FormatJSON, nil
	}
	return "", fmt.Errorf("unknown dump format %q", s)
}

// DumpOptions configures Dump.
type DumpOptions struct {
	// Format defaults to FormatJSON.
	Format DumpFormat

	// Indent is the number of spaces per level. Negative values produce
	// single-line JSON.
	Indent int
}

// dumpNode is the serialized form of every node type. Field order is the
// order of keys in the output.
type dumpNode struct {
	Type      string      `json:"type" yaml:"type"`
	Loc       *dumpLoc    `json:"loc,omitempty" yaml:"loc,omitempty"`
	Name      string      `json:"name,omitempty" yaml:"name,omitempty"`
	Property  string      `json:"property,omitempty" yaml:"property,omitempty"`
	Prelude   string      `json:"prelude,omitempty" yaml:"prelude,omitempty"`
	Text      string      `json:"text,omitempty" yaml:"text,omitempty"`
	Value     *string     `json:"value,omitempty" yaml:"value,omitempty"`
	Important bool        `json:"important,omitempty" yaml:"important,omitempty"`
	Selectors []*dumpNode `json:"selectors,omitempty" yaml:"selectors,omitempty"`
	Block     *dumpNode   `json:"block,omitempty" yaml:"block,omitempty"`
	Children  []*dumpNode `json:"children,omitempty" yaml:"children,omitempty"`
}

type dumpLoc struct {
	Source string  `json:"source,omitempty" yaml:"source,omitempty"`
	Start  dumpPos `json:"start" yaml:"start"`
	End    dumpPos `json:"end" yaml:"end"`
}

type dumpPos struct {
	Offset int `json:"offset" yaml:"offset"`
	Line   int `json:"line" yaml:"line"`
	Column int `json:"column" yaml:"column"`
}

// Dump writes a structured representation of the tree rooted at n.
// The output is deterministic: keys always appear in the same order.
func Dump(w io.Writer, n ast.Node, opts DumpOptions) error {
	d := newDumpNode(n)

	indent := opts.Indent
	if indent == 0 {
		indent = DefaultDumpIndent
	}

	switch opts.Format {
	case FormatJSON, "":
		enc := json.NewEncoder(w)
		enc.SetEscapeHTML(false)
		if indent > 0 {
			enc.SetIndent("", strings.Repeat(" ", indent))
		}
		if err := enc.Encode(d); err != nil {
			return fmt.Errorf("encode json dump: %w", err)
		}
		return nil

	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(max(indent, DefaultDumpIndent))
		if err := enc.Encode(d); err != nil {
			return fmt.Errorf("encode yaml dump: %w", err)
		}
		if err := enc.Close(); err != nil {
			return fmt.Errorf("encode yaml dump: %w", err)
		}
		return nil
	}
	return fmt.Errorf("unknown dump format %q", opts.Format)
}

// DumpString returns the JSON dump of n.
func DumpString(n ast.Node) string {
	var buf strings.Builder
	_ = Dump(&buf, n, DumpOptions{})
	return buf.String()
}

func newDumpNode(n ast.Node) *dumpNode {
	switch n := n.(type) {
	case *ast.Stylesheet:
		return &dumpNode{Type: typeStylesheet, Loc: newDumpLoc(n.Loc), Children: newDumpNodes(n.Children)}
	case *ast.Rule:
		d := &dumpNode{Type: typeRule, Loc: newDumpLoc(n.Loc)}
		for _, sel := range n.Selectors {
			d.Selectors = append(d.Selectors, newDumpNode(sel))
		}
		if n.Block != nil {
			d.Block = newDumpNode(n.Block)
		}
		return d
	case *ast.Selector:
		return &dumpNode{Type: typeSelector, Loc: newDumpLoc(n.Loc), Text: n.Text}
	case *ast.Block:
		return &dumpNode{Type: typeBlock, Loc: newDumpLoc(n.Loc), Children: newDumpNodes(n.Children)}
	case *ast.Declaration:
		value := n.Value
		return &dumpNode{Type: typeDeclaration, Loc: newDumpLoc(n.Loc), Property: n.Property, Value: &value, Important: n.Important}
	case *ast.AtRule:
		d := &dumpNode{Type: typeAtRule, Loc: newDumpLoc(n.Loc), Name: n.Name, Prelude: n.Prelude}
		if n.Block != nil {
			d.Block = newDumpNode(n.Block)
		}
		return d
	case *ast.Comment:
		return &dumpNode{Type: typeComment, Loc: newDumpLoc(n.Loc), Text: n.Text}
	default:
		panic(fmt.Sprintf("zcss: unexpected node type %T", n))
	}
}

func newDumpNodes(a []ast.Node) []*dumpNode {
	if len(a) == 0 {
		return nil
	}
	other := make([]*dumpNode, len(a))
	for i, n := range a {
		other[i] = newDumpNode(n)
	}
	return other
}

func newDumpLoc(loc *ast.Loc) *dumpLoc {
	if loc == nil {
		return nil
	}
	return &dumpLoc{
		Source: loc.Source,
		Start:  dumpPos(loc.Start),
		End:    dumpPos(loc.End),
	}
}

func (l *dumpLoc) loc() *ast.Loc {
	if l == nil {
		return nil
	}
	return &ast.Loc{
		Source: l.Source,
		Start:  token.Pos(l.Start),
		End:    token.Pos(l.End),
	}
}
