// Package parse turns Python source text into the canonical structural tree.
//
// Parsing delegates to tree-sitter; everything downstream consumes only the
// canonical model.Kind / Children abstraction produced here. The translation
// table in this file is the single place grammar node-type names are known,
// which keeps computed sizes stable across grammar versions: a parser upgrade
// can reshape its concrete syntax tree, but as long as the table maps the
// constructs the same way, counts do not move.
package parse

import (
	"context"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"

	"github.com/refactorcheck/refactorcheck/internal/model"
)

// SyntaxError reports source text that is not a well-formed Python program.
// A malformed fixture is a fixture bug, so the error is fatal for the
// invocation and never retried.
type SyntaxError struct {
	Line int
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error at line %d", e.Line)
}

// kindTable maps grammar node types to canonical kinds. Constructs absent
// here are either handled structurally (definitions, strings), spliced, or
// dropped; any other named type normalizes to model.KindUnknown.
var kindTable = map[string]model.Kind{
	// Statements.
	"expression_statement": model.KindExprStmt,
	"assignment":           model.KindAssign,
	"augmented_assignment": model.KindAugAssign,
	"return_statement":     model.KindReturn,
	"pass_statement":       model.KindPass,
	"break_statement":      model.KindBreak,
	"continue_statement":   model.KindContinue,
	"delete_statement":     model.KindDelete,
	"assert_statement":     model.KindAssert,
	"raise_statement":      model.KindRaise,
	"global_statement":     model.KindGlobal,
	"nonlocal_statement":   model.KindNonlocal,
	"if_statement":         model.KindIf,
	"elif_clause":          model.KindElif,
	"else_clause":          model.KindElse,
	"for_statement":        model.KindFor,
	"while_statement":      model.KindWhile,
	"try_statement":        model.KindTry,
	"except_clause":        model.KindExcept,
	"except_group_clause":  model.KindExcept,
	"finally_clause":       model.KindFinally,
	"with_statement":       model.KindWith,
	"with_item":            model.KindWithItem,
	"match_statement":      model.KindMatch,
	"case_clause":          model.KindCase,
	"guard":                model.KindGuard,
	"type_alias_statement": model.KindTypeAlias,
	"print_statement":      model.KindPrint,
	"exec_statement":       model.KindExec,

	// Imports.
	"import_statement":        model.KindImport,
	"import_from_statement":   model.KindImportFrom,
	"future_import_statement": model.KindImportFrom,
	"aliased_import":          model.KindAliasedImport,
	"relative_import":         model.KindRelativeImport,
	"import_prefix":           model.KindImportPrefix,
	"wildcard_import":         model.KindWildcardImport,
	"dotted_name":             model.KindDottedName,

	// Expressions.
	"identifier":               model.KindIdentifier,
	"keyword_identifier":       model.KindIdentifier,
	"attribute":                model.KindAttribute,
	"subscript":                model.KindSubscript,
	"slice":                    model.KindSlice,
	"call":                     model.KindCall,
	"keyword_argument":         model.KindKeywordArg,
	"list_splat":               model.KindListSplat,
	"list_splat_pattern":       model.KindListSplat,
	"dictionary_splat":         model.KindDictSplat,
	"dictionary_splat_pattern": model.KindDictSplat,
	"binary_operator":          model.KindBinaryOp,
	"boolean_operator":         model.KindBoolOp,
	"not_operator":             model.KindNotOp,
	"unary_operator":           model.KindUnaryOp,
	"comparison_operator":      model.KindCompare,
	"lambda":                   model.KindLambda,
	"conditional_expression":   model.KindConditional,
	"named_expression":         model.KindNamedExpr,
	"await":                    model.KindAwait,
	"yield":                    model.KindYield,
	"as_pattern":               model.KindAsPattern,
	"interpolation":            model.KindInterpolation,

	// Literals and containers.
	"integer":                  model.KindInteger,
	"float":                    model.KindFloat,
	"concatenated_string":      model.KindConcatString,
	"true":                     model.KindBoolean,
	"false":                    model.KindBoolean,
	"none":                     model.KindNone,
	"ellipsis":                 model.KindEllipsis,
	"list":                     model.KindList,
	"tuple":                    model.KindTuple,
	"expression_list":          model.KindTuple,
	"pattern_list":             model.KindTuple,
	"tuple_pattern":            model.KindTuple,
	"list_pattern":             model.KindList,
	"set":                      model.KindSet,
	"dictionary":               model.KindDict,
	"pair":                     model.KindPair,
	"list_comprehension":       model.KindListComp,
	"set_comprehension":        model.KindSetComp,
	"dictionary_comprehension": model.KindDictComp,
	"generator_expression":     model.KindGenExp,
	"for_in_clause":            model.KindCompFor,
	"if_clause":                model.KindCompIf,

	// Match patterns.
	"case_pattern":    model.KindCasePattern,
	"keyword_pattern": model.KindKeywordPattern,
	"splat_pattern":   model.KindSplatPattern,
	"class_pattern":   model.KindClassPattern,
	"union_pattern":   model.KindUnionPattern,
	"complex_pattern": model.KindComplexPattern,
}

// dropped lists named node types that never materialize: decoration,
// formatting detail, and signature metadata (names, parameter lists,
// annotations). Counting any of these would make sizes fragile to cosmetic
// edits.
var dropped = map[string]struct{}{
	"comment":                 {},
	"line_continuation":       {},
	"type":                    {},
	"parameters":              {},
	"lambda_parameters":       {},
	"typed_parameter":         {},
	"default_parameter":       {},
	"typed_default_parameter": {},
	"keyword_separator":       {},
	"positional_separator":    {},
	"type_parameter":          {},
	"string_start":            {},
	"string_content":          {},
	"string_end":              {},
	"escape_sequence":         {},
	"format_specifier":        {},
	"type_conversion":         {},
	"chevron":                 {},
}

// spliced lists wrapper types that carry no structural weight of their own:
// their children are adopted directly by the parent. A body is a statement
// sequence, not a node, and parenthesized grouping is invisible.
var spliced = map[string]struct{}{
	"block":                    {},
	"parenthesized_expression": {},
	"argument_list":            {},
	"with_clause":              {},
	"parenthesized_list_splat": {},
	"as_pattern_target":        {},
}

// Parse converts source into a SourceUnit. It returns *SyntaxError when the
// text is not well-formed Python. The returned tree holds no reference to the
// underlying parser and is immutable, so callers may share it across
// goroutines.
func Parse(source []byte) (*model.SourceUnit, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(python.GetLanguage())

	tree, err := parser.ParseCtx(context.Background(), nil, source)
	if err != nil {
		return nil, fmt.Errorf("parsing source: %w", err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		return nil, &SyntaxError{Line: firstErrorLine(root)}
	}

	unit := &model.SourceUnit{}
	for i := 0; i < int(root.NamedChildCount()); i++ {
		unit.Body = append(unit.Body, normalize(root.NamedChild(i), source)...)
	}
	return unit, nil
}

// normalize converts one grammar node into zero or more canonical nodes:
// none for dropped decoration, several for spliced wrappers, one otherwise.
func normalize(n *sitter.Node, source []byte) []*model.Node {
	t := n.Type()

	if _, ok := dropped[t]; ok {
		return nil
	}
	if _, ok := spliced[t]; ok {
		return normalizeChildren(n, source)
	}

	switch t {
	case "function_definition", "class_definition":
		return []*model.Node{normalizeDefinition(n, source, nil)}
	case "decorated_definition":
		return normalizeDecorated(n, source)
	case "string":
		return []*model.Node{normalizeString(n, source)}
	}

	kind, ok := kindTable[t]
	if !ok {
		kind = model.KindUnknown
	}
	node := newNode(kind, n)
	node.Children = normalizeChildren(n, source)
	return []*model.Node{node}
}

func normalizeChildren(n *sitter.Node, source []byte) []*model.Node {
	var out []*model.Node
	for i := 0; i < int(n.NamedChildCount()); i++ {
		out = append(out, normalize(n.NamedChild(i), source)...)
	}
	return out
}

// normalizeDefinition builds a class-def or function-def node. The name is
// recorded as an attribute, not a child; parameter lists and annotations are
// signature metadata and never materialize. Decorators, when present, become
// the declaration's leading children.
func normalizeDefinition(n *sitter.Node, source []byte, decorators []*model.Node) *model.Node {
	kind := model.KindFunctionDef
	if n.Type() == "class_definition" {
		kind = model.KindClassDef
	}

	node := newNode(kind, n)
	nameNode := n.ChildByFieldName("name")
	if nameNode != nil {
		node.Name = nodeText(nameNode, source)
	}

	node.Children = append(node.Children, decorators...)
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		if nameNode != nil && sameNode(child, nameNode) {
			continue
		}
		node.Children = append(node.Children, normalize(child, source)...)
	}
	return node
}

// normalizeDecorated dissolves a decorated_definition wrapper: the inner
// definition takes its place, with the decorators folded in as its leading
// children. A decorated method is still the method.
func normalizeDecorated(n *sitter.Node, source []byte) []*model.Node {
	var decorators []*model.Node
	var def *sitter.Node

	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		switch child.Type() {
		case "decorator":
			dec := newNode(model.KindDecorator, child)
			dec.Children = normalizeChildren(child, source)
			decorators = append(decorators, dec)
		case "function_definition", "class_definition":
			def = child
		}
	}

	if def == nil {
		return decorators
	}
	return []*model.Node{normalizeDefinition(def, source, decorators)}
}

// normalizeString collapses a string literal to a single node. Quote tokens,
// content runs, and escape sequences are formatting detail; only f-string
// interpolations survive, since those hold real expressions.
func normalizeString(n *sitter.Node, source []byte) *model.Node {
	node := newNode(model.KindString, n)
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		if child.Type() == "interpolation" {
			node.Children = append(node.Children, normalize(child, source)...)
		}
	}
	return node
}

func newNode(kind model.Kind, n *sitter.Node) *model.Node {
	return &model.Node{
		Kind:      kind,
		StartLine: int(n.StartPoint().Row) + 1,
		EndLine:   int(n.EndPoint().Row) + 1,
	}
}

func nodeText(n *sitter.Node, source []byte) string {
	return string(source[n.StartByte():n.EndByte()])
}

// sameNode reports whether two handles refer to the same underlying grammar
// node. Handles returned by NamedChild and ChildByFieldName are distinct
// values, so identity is span plus type.
func sameNode(a, b *sitter.Node) bool {
	return a.StartByte() == b.StartByte() && a.EndByte() == b.EndByte() && a.Type() == b.Type()
}

// firstErrorLine locates the first ERROR or missing node in document order.
// Anonymous children matter here: a missing delimiter is an unnamed node.
func firstErrorLine(n *sitter.Node) int {
	if n.Type() == "ERROR" || n.IsMissing() {
		return int(n.StartPoint().Row) + 1
	}
	if !n.HasError() {
		return 0
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		if line := firstErrorLine(n.Child(i)); line > 0 {
			return line
		}
	}
	return int(n.StartPoint().Row) + 1
}
