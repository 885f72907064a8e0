package ast

import "fmt"

// A Visitor's Visit method is invoked for each node encountered by Walk.
// If the result visitor w is not nil, Walk visits each of the children
// of node with the visitor w, followed by a call of w.Visit(nil).
type Visitor interface {
	Visit(node Node) (w Visitor)
}

// Walk traverses an AST in depth-first order, children in source order.
func Walk(v Visitor, node Node) {
	if v = v.Visit(node); v == nil {
		return
	}
	for _, child := range Children(node) {
		Walk(v, child)
	}
	v.Visit(nil)
}

type inspector func(Node) bool

func (f inspector) Visit(node Node) Visitor {
	if f(node) {
		return f
	}
	return nil
}

// Inspect traverses an AST in depth-first order: It starts by calling
// f(node); node must not be nil. If f returns true, Inspect invokes f
// recursively for each of the non-nil children of node, followed by a
// call of f(nil).
func Inspect(node Node, f func(Node) bool) {
	Walk(inspector(f), node)
}

// Children returns the direct children of node in source order.
// A rule's children are its selectors followed by its block.
func Children(node Node) []Node {
	switch n := node.(type) {
	case *Stylesheet:
		return n.Children
	case *Rule:
		a := make([]Node, 0, len(n.Selectors)+1)
		for _, sel := range n.Selectors {
			a = append(a, sel)
		}
		if n.Block != nil {
			a = append(a, n.Block)
		}
		return a
	case *Block:
		return n.Children
	case *AtRule:
		if n.Block != nil {
			return []Node{n.Block}
		}
		return nil
	case *Selector, *Declaration, *Comment:
		return nil
	default:
		panic(fmt.Sprintf("ast.Children: unexpected node type %T", n))
	}
}

// Parents maps every node below root to its parent. The tree itself holds
// no back references; this is for navigation only.
func Parents(root Node) map[Node]Node {
	m := make(map[Node]Node)
	var stack []Node
	Inspect(root, func(n Node) bool {
		if n == nil {
			stack = stack[:len(stack)-1]
			return false
		}
		if len(stack) > 0 {
			m[n] = stack[len(stack)-1]
		}
		stack = append(stack, n)
		return true
	})
	return m
}

// Count returns the number of nodes in the tree rooted at node.
func Count(node Node) int {
	var n int
	Inspect(node, func(x Node) bool {
		if x != nil {
			n++
		}
		return true
	})
	return n
}
