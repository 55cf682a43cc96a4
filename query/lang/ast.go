package lang

// ExprKind identifies which literal or call shape an Expr holds.
type ExprKind int

const (
	ExprCall ExprKind = iota
	ExprString
	ExprInt
	ExprFloat
)

// Expr is a node of the parsed query tree: either a function call with
// ordered arguments, or one of the three literal kinds.
//
// Grounded on original_source/server/src/query/parser/ast.rs's
// Expression enum.
type Expr struct {
	Kind ExprKind

	// ExprCall
	Name string
	Args []Expr

	// ExprString
	Str string
	// ExprInt
	Int uint64
	// ExprFloat
	Float float64
}
