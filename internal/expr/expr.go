// Package expr provides immutable predicate trees for scan planning.
// Nodes cache their referenced column set at construction time, so
// classification never re-walks a tree, and rewrites always produce new
// nodes instead of mutating shared ones.
package expr

import (
	"fmt"
	"strings"

	"github.com/tgm2018/OAP/pkg/types"
)

// Expression is a node in a predicate tree.
type Expression interface {
	// String returns a stable textual rendering of the expression.
	String() string

	// References returns the set of columns the expression refers to,
	// computed once when the node is built.
	References() *types.ColumnSet

	// HasSubquery reports whether the tree contains a subquery node.
	HasSubquery() bool

	// Children returns the direct child expressions.
	Children() []Expression
}

// CompareOp is a comparison operator.
type CompareOp string

const (
	OpEq CompareOp = "="
	OpNe CompareOp = "<>"
	OpLt CompareOp = "<"
	OpLe CompareOp = "<="
	OpGt CompareOp = ">"
	OpGe CompareOp = ">="
)

// node carries the cached traversal results shared by every expression kind.
type node struct {
	refs     *types.ColumnSet
	subquery bool
}

func (n node) References() *types.ColumnSet { return n.refs }
func (n node) HasSubquery() bool            { return n.subquery }

func newNode(own *types.Column, children ...Expression) node {
	refs := types.NewColumnSet()
	if own != nil {
		refs.Add(*own)
	}
	sub := false
	for _, c := range children {
		refs = refs.Union(c.References())
		sub = sub || c.HasSubquery()
	}
	return node{refs: refs, subquery: sub}
}

// ColumnRef references a single column of the relation's output.
type ColumnRef struct {
	node
	Column types.Column
}

// NewColumnRef builds a reference to the given column.
func NewColumnRef(col types.Column) *ColumnRef {
	return &ColumnRef{node: newNode(&col), Column: col}
}

func (e *ColumnRef) String() string         { return e.Column.Name }
func (e *ColumnRef) Children() []Expression { return nil }

// Literal is a constant value.
type Literal struct {
	node
	Value interface{}
	Type  types.DataType
}

// NewLiteral builds a constant expression.
func NewLiteral(value interface{}, typ types.DataType) *Literal {
	return &Literal{node: newNode(nil), Value: value, Type: typ}
}

func (e *Literal) String() string {
	if s, ok := e.Value.(string); ok {
		return fmt.Sprintf("%q", s)
	}
	return fmt.Sprint(e.Value)
}
func (e *Literal) Children() []Expression { return nil }

// Comparison is a binary comparison between two expressions.
type Comparison struct {
	node
	Op    CompareOp
	Left  Expression
	Right Expression
}

// NewComparison builds a comparison node.
func NewComparison(op CompareOp, left, right Expression) *Comparison {
	return &Comparison{node: newNode(nil, left, right), Op: op, Left: left, Right: right}
}

func (e *Comparison) String() string {
	return fmt.Sprintf("(%s %s %s)", e.Left, e.Op, e.Right)
}
func (e *Comparison) Children() []Expression { return []Expression{e.Left, e.Right} }

// In tests membership of an expression in a literal list.
type In struct {
	node
	Expr Expression
	List []Expression
}

// NewIn builds an IN node.
func NewIn(ex Expression, list []Expression) *In {
	children := append([]Expression{ex}, list...)
	return &In{node: newNode(nil, children...), Expr: ex, List: list}
}

func (e *In) String() string {
	items := make([]string, len(e.List))
	for i, v := range e.List {
		items[i] = v.String()
	}
	return fmt.Sprintf("(%s IN (%s))", e.Expr, strings.Join(items, ", "))
}
func (e *In) Children() []Expression {
	return append([]Expression{e.Expr}, e.List...)
}

// Between tests a closed range.
type Between struct {
	node
	Expr Expression
	Low  Expression
	High Expression
}

// NewBetween builds a BETWEEN node.
func NewBetween(ex, low, high Expression) *Between {
	return &Between{node: newNode(nil, ex, low, high), Expr: ex, Low: low, High: high}
}

func (e *Between) String() string {
	return fmt.Sprintf("(%s BETWEEN %s AND %s)", e.Expr, e.Low, e.High)
}
func (e *Between) Children() []Expression { return []Expression{e.Expr, e.Low, e.High} }

// IsNull tests an expression for NULL.
type IsNull struct {
	node
	Expr    Expression
	Negated bool
}

// NewIsNull builds an IS [NOT] NULL node.
func NewIsNull(ex Expression, negated bool) *IsNull {
	return &IsNull{node: newNode(nil, ex), Expr: ex, Negated: negated}
}

func (e *IsNull) String() string {
	if e.Negated {
		return fmt.Sprintf("(%s IS NOT NULL)", e.Expr)
	}
	return fmt.Sprintf("(%s IS NULL)", e.Expr)
}
func (e *IsNull) Children() []Expression { return []Expression{e.Expr} }

// Not negates a predicate.
type Not struct {
	node
	Operand Expression
}

// NewNot builds a NOT node.
func NewNot(operand Expression) *Not {
	return &Not{node: newNode(nil, operand), Operand: operand}
}

func (e *Not) String() string         { return fmt.Sprintf("(NOT %s)", e.Operand) }
func (e *Not) Children() []Expression { return []Expression{e.Operand} }

// And is a logical conjunction.
type And struct {
	node
	Left  Expression
	Right Expression
}

// NewAnd builds an AND node.
func NewAnd(left, right Expression) *And {
	return &And{node: newNode(nil, left, right), Left: left, Right: right}
}

func (e *And) String() string         { return fmt.Sprintf("(%s AND %s)", e.Left, e.Right) }
func (e *And) Children() []Expression { return []Expression{e.Left, e.Right} }

// Or is a logical disjunction.
type Or struct {
	node
	Left  Expression
	Right Expression
}

// NewOr builds an OR node.
func NewOr(left, right Expression) *Or {
	return &Or{node: newNode(nil, left, right), Left: left, Right: right}
}

func (e *Or) String() string         { return fmt.Sprintf("(%s OR %s)", e.Left, e.Right) }
func (e *Or) Children() []Expression { return []Expression{e.Left, e.Right} }

// Subquery marks a predicate that embeds a nested query plan. The planner
// never evaluates it; its presence only disqualifies a filter from
// partition pruning.
type Subquery struct {
	node
	PlanID string
}

// NewSubquery builds a subquery marker for the given nested plan id.
func NewSubquery(planID string) *Subquery {
	n := newNode(nil)
	n.subquery = true
	return &Subquery{node: n, PlanID: planID}
}

func (e *Subquery) String() string         { return fmt.Sprintf("(subquery %s)", e.PlanID) }
func (e *Subquery) Children() []Expression { return nil }

// Conjoin folds expressions into a single predicate with a left-to-right
// AND chain. Returns nil for an empty slice.
func Conjoin(exprs []Expression) Expression {
	if len(exprs) == 0 {
		return nil
	}
	out := exprs[0]
	for _, e := range exprs[1:] {
		out = NewAnd(out, e)
	}
	return out
}

// Equal reports structural equality of two expression trees. Column
// references compare by normalized name, literals by value and type.
func Equal(a, b Expression) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	switch x := a.(type) {
	case *ColumnRef:
		y, ok := b.(*ColumnRef)
		return ok && x.Column.Key() == y.Column.Key()
	case *Literal:
		y, ok := b.(*Literal)
		return ok && x.Type == y.Type && x.Value == y.Value
	case *Comparison:
		y, ok := b.(*Comparison)
		return ok && x.Op == y.Op && Equal(x.Left, y.Left) && Equal(x.Right, y.Right)
	case *In:
		y, ok := b.(*In)
		if !ok || !Equal(x.Expr, y.Expr) || len(x.List) != len(y.List) {
			return false
		}
		for i := range x.List {
			if !Equal(x.List[i], y.List[i]) {
				return false
			}
		}
		return true
	case *Between:
		y, ok := b.(*Between)
		return ok && Equal(x.Expr, y.Expr) && Equal(x.Low, y.Low) && Equal(x.High, y.High)
	case *IsNull:
		y, ok := b.(*IsNull)
		return ok && x.Negated == y.Negated && Equal(x.Expr, y.Expr)
	case *Not:
		y, ok := b.(*Not)
		return ok && Equal(x.Operand, y.Operand)
	case *And:
		y, ok := b.(*And)
		return ok && Equal(x.Left, y.Left) && Equal(x.Right, y.Right)
	case *Or:
		y, ok := b.(*Or)
		return ok && Equal(x.Left, y.Left) && Equal(x.Right, y.Right)
	case *Subquery:
		y, ok := b.(*Subquery)
		return ok && x.PlanID == y.PlanID
	default:
		return false
	}
}
