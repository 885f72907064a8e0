package zcss

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/zwebsuite/zcss/ast"
)

// ErrInvalidDump is wrapped by errors returned for malformed dumps.
var ErrInvalidDump = errors.New("invalid dump")

// Decode rebuilds a tree from the output of Dump. Decoding a dump and
// dumping the result again produces identical output.
func Decode(data []byte, format DumpFormat) (ast.Node, error) {
	var d dumpNode
	switch format {
	case FormatJSON, "":
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&d); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidDump, err)
		}
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&d); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidDump, err)
		}
	default:
		return nil, fmt.Errorf("unknown dump format %q", format)
	}
	return d.node("$")
}

// DecodeStylesheet is like Decode but requires a Stylesheet at the root.
func DecodeStylesheet(data []byte, format DumpFormat) (*ast.Stylesheet, error) {
	n, err := Decode(data, format)
	if err != nil {
		return nil, err
	}
	ss, ok := n.(*ast.Stylesheet)
	if !ok {
		return nil, fmt.Errorf("%w: root is %T, not a stylesheet", ErrInvalidDump, n)
	}
	return ss, nil
}

// node converts a decoded node. Path locates d in the dump for errors.
func (d *dumpNode) node(path string) (ast.Node, error) {
	if d == nil {
		return nil, fmt.Errorf("%w: %s: missing node", ErrInvalidDump, path)
	}

	switch d.Type {
	case typeStylesheet:
		children, err := d.children(path, typeRule, typeAtRule, typeComment)
		if err != nil {
			return nil, err
		}
		return &ast.Stylesheet{Children: children, Loc: d.Loc.loc()}, nil

	case typeRule:
		if len(d.Selectors) == 0 {
			return nil, fmt.Errorf("%w: %s: rule without selectors", ErrInvalidDump, path)
		}
		r := &ast.Rule{Loc: d.Loc.loc()}
		for i, sel := range d.Selectors {
			n, err := sel.node(fmt.Sprintf("%s.selectors[%d]", path, i))
			if err != nil {
				return nil, err
			}
			s, ok := n.(*ast.Selector)
			if !ok {
				return nil, fmt.Errorf("%w: %s.selectors[%d]: unexpected %s", ErrInvalidDump, path, i, sel.Type)
			}
			r.Selectors = append(r.Selectors, s)
		}
		block, err := d.block(path)
		if err != nil {
			return nil, err
		} else if block == nil {
			return nil, fmt.Errorf("%w: %s: rule without block", ErrInvalidDump, path)
		}
		r.Block = block
		return r, nil

	case typeSelector:
		if d.Text == "" {
			return nil, fmt.Errorf("%w: %s: empty selector", ErrInvalidDump, path)
		}
		return &ast.Selector{Text: d.Text, Loc: d.Loc.loc()}, nil

	case typeBlock:
		children, err := d.children(path, typeDeclaration, typeRule, typeAtRule, typeComment)
		if err != nil {
			return nil, err
		}
		return &ast.Block{Children: children, Loc: d.Loc.loc()}, nil

	case typeDeclaration:
		if d.Property == "" {
			return nil, fmt.Errorf("%w: %s: declaration without property", ErrInvalidDump, path)
		}
		decl := &ast.Declaration{Property: d.Property, Important: d.Important, Loc: d.Loc.loc()}
		if d.Value != nil {
			decl.Value = *d.Value
		}
		return decl, nil

	case typeAtRule:
		if d.Name == "" {
			return nil, fmt.Errorf("%w: %s: at-rule without name", ErrInvalidDump, path)
		}
		block, err := d.block(path)
		if err != nil {
			return nil, err
		}
		return &ast.AtRule{Name: d.Name, Prelude: d.Prelude, Block: block, Loc: d.Loc.loc()}, nil

	case typeComment:
		return &ast.Comment{Text: d.Text, Loc: d.Loc.loc()}, nil
	}
	return nil, fmt.Errorf("%w: %s: unknown node type %q", ErrInvalidDump, path, d.Type)
}

// children converts child nodes, allowing only the given types.
func (d *dumpNode) children(path string, allowed ...string) ([]ast.Node, error) {
	var a []ast.Node
	for i, child := range d.Children {
		p := fmt.Sprintf("%s.children[%d]", path, i)
		if child == nil || !slices.Contains(allowed, child.Type) {
			return nil, fmt.Errorf("%w: %s: %s not allowed in %s", ErrInvalidDump, p, childType(child), d.Type)
		}
		n, err := child.node(p)
		if err != nil {
			return nil, err
		}
		a = append(a, n)
	}
	return a, nil
}

// block converts the optional block field.
func (d *dumpNode) block(path string) (*ast.Block, error) {
	if d.Block == nil {
		return nil, nil
	}
	if d.Block.Type != typeBlock {
		return nil, fmt.Errorf("%w: %s.block: unexpected %s", ErrInvalidDump, path, d.Block.Type)
	}
	n, err := d.Block.node(path + ".block")
	if err != nil {
		return nil, err
	}
	return n.(*ast.Block), nil
}

func childType(d *dumpNode) string {
	if d == nil {
		return "null"
	}
	return fmt.Sprintf("%q", d.Type)
}
