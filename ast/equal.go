package ast

// Equal reports whether two trees have the same shape and content.
// Locations are compared only when withLoc is true.
func Equal(a, b Node, withLoc bool) bool {
	if withLoc && !equalLoc(a.Location(), b.Location()) {
		return false
	}

	switch a := a.(type) {
	case *Stylesheet:
		b, ok := b.(*Stylesheet)
		return ok && equalNodes(a.Children, b.Children, withLoc)
	case *Rule:
		b, ok := b.(*Rule)
		if !ok || len(a.Selectors) != len(b.Selectors) {
			return false
		}
		for i := range a.Selectors {
			if !Equal(a.Selectors[i], b.Selectors[i], withLoc) {
				return false
			}
		}
		return equalBlock(a.Block, b.Block, withLoc)
	case *Selector:
		b, ok := b.(*Selector)
		return ok && a.Text == b.Text
	case *Block:
		b, ok := b.(*Block)
		return ok && equalNodes(a.Children, b.Children, withLoc)
	case *Declaration:
		b, ok := b.(*Declaration)
		return ok && a.Property == b.Property && a.Value == b.Value && a.Important == b.Important
	case *AtRule:
		b, ok := b.(*AtRule)
		return ok && a.Name == b.Name && a.Prelude == b.Prelude && equalBlock(a.Block, b.Block, withLoc)
	case *Comment:
		b, ok := b.(*Comment)
		return ok && a.Text == b.Text
	}
	return false
}

func equalNodes(a, b []Node, withLoc bool) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !Equal(a[i], b[i], withLoc) {
			return false
		}
	}
	return true
}

func equalBlock(a, b *Block, withLoc bool) bool {
	if a == nil || b == nil {
		return a == b
	}
	return Equal(a, b, withLoc)
}

func equalLoc(a, b *Loc) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
