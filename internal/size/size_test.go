package size

import (
	"testing"

	"github.com/refactorcheck/refactorcheck/internal/model"
)

func node(kind model.Kind, children ...*model.Node) *model.Node {
	return &model.Node{Kind: kind, Children: children}
}

func TestOfLeaf(t *testing.T) {
	t.Parallel()

	if got := Of(node(model.KindPass)); got != 1 {
		t.Errorf("Of(pass) = %d, want 1", got)
	}
	if got := Of(nil); got != 0 {
		t.Errorf("Of(nil) = %d, want 0", got)
	}
}

func TestOfDeclarationWeighsZero(t *testing.T) {
	t.Parallel()

	// return 1 + 2 inside a def: the declaration itself adds nothing.
	method := node(model.KindFunctionDef,
		node(model.KindReturn,
			node(model.KindBinaryOp,
				node(model.KindInteger),
				node(model.KindInteger),
			),
		),
	)
	if got := Of(method); got != 4 {
		t.Errorf("Of(method) = %d, want 4", got)
	}

	class := node(model.KindClassDef, method)
	if got := Of(class); got != 4 {
		t.Errorf("Of(class) = %d, want 4: wrapping a method in a class must not change the measure", got)
	}

	if got := Of(node(model.KindClassDef)); got != 0 {
		t.Errorf("Of(empty class) = %d, want 0", got)
	}
}

func TestOfCountsDecorators(t *testing.T) {
	t.Parallel()

	method := node(model.KindFunctionDef,
		node(model.KindDecorator, node(model.KindIdentifier)),
		node(model.KindReturn),
	)
	if got := Of(method); got != 3 {
		t.Errorf("Of(decorated method) = %d, want 3", got)
	}
}

func TestOfNestedDeclarations(t *testing.T) {
	t.Parallel()

	// Both function wrappers weigh zero; only pass and return count.
	outer := node(model.KindFunctionDef,
		node(model.KindFunctionDef, node(model.KindPass)),
		node(model.KindReturn),
	)
	if got := Of(outer); got != 2 {
		t.Errorf("Of(outer) = %d, want 2", got)
	}
}

func TestOfAll(t *testing.T) {
	t.Parallel()

	forest := []*model.Node{
		node(model.KindExprStmt, node(model.KindString)),
		node(model.KindPass),
	}
	if got := OfAll(forest); got != 3 {
		t.Errorf("OfAll = %d, want 3", got)
	}
	if got := OfAll(nil); got != 0 {
		t.Errorf("OfAll(nil) = %d, want 0", got)
	}
}

func TestOfUnit(t *testing.T) {
	t.Parallel()

	unit := &model.SourceUnit{Body: []*model.Node{
		node(model.KindImport, node(model.KindDottedName, node(model.KindIdentifier))),
		node(model.KindClassDef, node(model.KindFunctionDef, node(model.KindPass))),
	}}
	if got := OfUnit(unit); got != 4 {
		t.Errorf("OfUnit = %d, want 4", got)
	}
	if got := OfUnit(nil); got != 0 {
		t.Errorf("OfUnit(nil) = %d, want 0", got)
	}
}
