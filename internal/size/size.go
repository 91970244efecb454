// Package size computes canonical structural sizes over the normalized tree.
//
// The size of a node is the weighted count of its whole subtree: every
// canonical node weighs one, except class and function declarations, which
// weigh zero. A declaration is a container for the structure it holds, not
// structure itself, so a class whose only member is a single method measures
// exactly that method's size, and moving statements into a helper method
// leaves the class size unchanged.
package size

import "github.com/refactorcheck/refactorcheck/internal/model"

// Of returns the canonical size of the subtree rooted at n.
func Of(n *model.Node) int {
	if n == nil {
		return 0
	}
	total := 0
	if !n.IsDeclaration() {
		total = 1
	}
	for _, child := range n.Children {
		total += Of(child)
	}
	return total
}

// OfAll sums the sizes of a node sequence, such as a declaration body.
func OfAll(nodes []*model.Node) int {
	total := 0
	for _, n := range nodes {
		total += Of(n)
	}
	return total
}

// OfUnit returns the size of an entire source unit.
func OfUnit(u *model.SourceUnit) int {
	if u == nil {
		return 0
	}
	return OfAll(u.Body)
}
