// Package model defines the canonical structural tree and result types for
// refactorcheck.
package model

// Kind tags a canonical tree node with its structural meaning. The set of
// kinds is closed: every Python construct normalizes to exactly one Kind, and
// the size counter consumes nothing but Kind and Children, so counts stay
// stable across grammar versions.
type Kind string

const (
	// Declarations. These are the only kinds that carry a Name, and the only
	// kinds with zero weight in the size fold: a declaration measures as the
	// sum of what it contains.
	KindClassDef    Kind = "class_def"
	KindFunctionDef Kind = "function_def"

	// Statements.
	KindExprStmt  Kind = "expr_stmt"
	KindAssign    Kind = "assign"
	KindAugAssign Kind = "aug_assign"
	KindReturn    Kind = "return"
	KindPass      Kind = "pass"
	KindBreak     Kind = "break"
	KindContinue  Kind = "continue"
	KindDelete    Kind = "delete"
	KindAssert    Kind = "assert"
	KindRaise     Kind = "raise"
	KindGlobal    Kind = "global"
	KindNonlocal  Kind = "nonlocal"
	KindIf        Kind = "if"
	KindElif      Kind = "elif_clause"
	KindElse      Kind = "else_clause"
	KindFor       Kind = "for"
	KindWhile     Kind = "while"
	KindTry       Kind = "try"
	KindExcept    Kind = "except_clause"
	KindFinally   Kind = "finally_clause"
	KindWith      Kind = "with"
	KindWithItem  Kind = "with_item"
	KindMatch     Kind = "match"
	KindCase      Kind = "case_clause"
	KindGuard     Kind = "guard"
	KindTypeAlias Kind = "type_alias"
	KindPrint     Kind = "print"
	KindExec      Kind = "exec"

	// Imports.
	KindImport         Kind = "import"
	KindImportFrom     Kind = "import_from"
	KindAliasedImport  Kind = "aliased_import"
	KindRelativeImport Kind = "relative_import"
	KindImportPrefix   Kind = "import_prefix"
	KindWildcardImport Kind = "wildcard_import"
	KindDottedName     Kind = "dotted_name"

	// Expressions.
	KindIdentifier    Kind = "identifier"
	KindAttribute     Kind = "attribute"
	KindSubscript     Kind = "subscript"
	KindSlice         Kind = "slice"
	KindCall          Kind = "call"
	KindKeywordArg    Kind = "keyword_arg"
	KindListSplat     Kind = "list_splat"
	KindDictSplat     Kind = "dict_splat"
	KindBinaryOp      Kind = "binary_op"
	KindBoolOp        Kind = "bool_op"
	KindNotOp         Kind = "not_op"
	KindUnaryOp       Kind = "unary_op"
	KindCompare       Kind = "compare"
	KindLambda        Kind = "lambda"
	KindConditional   Kind = "conditional"
	KindNamedExpr     Kind = "named_expr"
	KindAwait         Kind = "await"
	KindYield         Kind = "yield"
	KindDecorator     Kind = "decorator"
	KindAsPattern     Kind = "as_pattern"
	KindInterpolation Kind = "interpolation"

	// Literals and containers.
	KindInteger      Kind = "integer"
	KindFloat        Kind = "float"
	KindString       Kind = "string"
	KindConcatString Kind = "concat_string"
	KindBoolean      Kind = "boolean"
	KindNone         Kind = "none"
	KindEllipsis     Kind = "ellipsis"
	KindList         Kind = "list"
	KindTuple        Kind = "tuple"
	KindSet          Kind = "set"
	KindDict         Kind = "dict"
	KindPair         Kind = "pair"
	KindListComp     Kind = "list_comp"
	KindSetComp      Kind = "set_comp"
	KindDictComp     Kind = "dict_comp"
	KindGenExp       Kind = "gen_exp"
	KindCompFor      Kind = "comp_for"
	KindCompIf       Kind = "comp_if"

	// Match patterns.
	KindCasePattern    Kind = "case_pattern"
	KindKeywordPattern Kind = "keyword_pattern"
	KindSplatPattern   Kind = "splat_pattern"
	KindClassPattern   Kind = "class_pattern"
	KindUnionPattern   Kind = "union_pattern"
	KindComplexPattern Kind = "complex_pattern"

	// KindUnknown is the drift safety valve: a named grammar node the table
	// does not recognize normalizes to it and counts like any ordinary node,
	// so a grammar addition surfaces as a size change rather than a crash.
	KindUnknown Kind = "unknown"
)

// Node is one entry in the canonical structural tree. Children are in source
// order; each child has exactly one parent; the tree is finite and acyclic.
// Name is set only on KindClassDef and KindFunctionDef nodes. Positions are
// 1-based lines kept for diagnostics; no consumer derives structure from
// them.
type Node struct {
	Kind      Kind
	Name      string
	Children  []*Node
	StartLine int
	EndLine   int
}

// IsDeclaration reports whether the node is a named class or function
// definition.
func (n *Node) IsDeclaration() bool {
	return n.Kind == KindClassDef || n.Kind == KindFunctionDef
}

// SourceUnit is the parsed representation of one file: the ordered forest of
// top-level statements. No module wrapper node exists; the forest itself is
// the root.
type SourceUnit struct {
	Body []*Node
}

// Walk visits n and its descendants in pre-order. If fn returns false the
// walk skips the node's children (but continues with its siblings).
func Walk(n *Node, fn func(*Node) bool) {
	if n == nil {
		return
	}
	if !fn(n) {
		return
	}
	for _, c := range n.Children {
		Walk(c, fn)
	}
}

// WalkUnit visits every node of the unit's forest in pre-order.
func WalkUnit(u *SourceUnit, fn func(*Node) bool) {
	for _, n := range u.Body {
		Walk(n, fn)
	}
}

// Located is a successful resolution: the method declaration together with a
// back-reference to the class declaration that owns it.
type Located struct {
	Class  *Node
	Method *Node
}

// SizeReport pairs a located declaration with its computed structural size.
type SizeReport struct {
	Name string
	Line int
	Size int
}

// Measurement holds both size reports produced by one measuring pass.
type Measurement struct {
	Class  SizeReport
	Method SizeReport
}

// SizeCheck compares one declaration's computed size against the caller's
// expectation.
type SizeCheck struct {
	Name     string
	Line     int
	Expected int
	Actual   int
}

// OK reports whether the computed size matches the expectation exactly.
// The metric is discrete and deterministic, so there is no tolerance: any
// drift signals a real structural change.
func (c SizeCheck) OK() bool {
	return c.Expected == c.Actual
}

// Report is the outcome of one verification. A non-matching Report is an
// ordinary value, not an error: callers inspect it rather than catch it.
type Report struct {
	Method SizeCheck
	Class  SizeCheck
}

// Match reports whether both sizes matched.
func (r Report) Match() bool {
	return r.Method.OK() && r.Class.OK()
}

// Locus names which measure diverged: "method", "class", "method+class", or
// "" when the report matches.
func (r Report) Locus() string {
	switch {
	case !r.Method.OK() && !r.Class.OK():
		return "method+class"
	case !r.Method.OK():
		return "method"
	case !r.Class.OK():
		return "class"
	default:
		return ""
	}
}
