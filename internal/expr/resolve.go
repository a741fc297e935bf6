package expr

import (
	"fmt"

	"github.com/tgm2018/OAP/internal/errors"
	"github.com/tgm2018/OAP/pkg/types"
)

// Resolver binds column references to the exact column identity known in
// a relation's output. Resolution is a pure rewrite: input trees are never
// mutated, and resolving an already-bound tree yields an equal tree.
type Resolver struct {
	output types.Schema
}

// NewResolver creates a resolver over the relation's output schema.
func NewResolver(output types.Schema) *Resolver {
	return &Resolver{output: output}
}

// Resolve returns a new tree with every column reference bound by
// case-insensitive name. An unresolvable name is a fatal planning error;
// silently dropping it could corrupt pruning correctness.
func (r *Resolver) Resolve(e Expression) (Expression, error) {
	switch x := e.(type) {
	case *ColumnRef:
		col, ok := r.output.Resolve(x.Column.Name)
		if !ok {
			return nil, errors.NewPlanningError(errors.CodeUnresolvedColumn,
				fmt.Sprintf("column %q not found in relation output [%s]", x.Column.Name, r.output))
		}
		return NewColumnRef(col), nil
	case *Literal:
		return x, nil
	case *Subquery:
		return x, nil
	case *Comparison:
		left, err := r.Resolve(x.Left)
		if err != nil {
			return nil, err
		}
		right, err := r.Resolve(x.Right)
		if err != nil {
			return nil, err
		}
		return NewComparison(x.Op, left, right), nil
	case *In:
		ex, err := r.Resolve(x.Expr)
		if err != nil {
			return nil, err
		}
		list := make([]Expression, len(x.List))
		for i, item := range x.List {
			if list[i], err = r.Resolve(item); err != nil {
				return nil, err
			}
		}
		return NewIn(ex, list), nil
	case *Between:
		ex, err := r.Resolve(x.Expr)
		if err != nil {
			return nil, err
		}
		low, err := r.Resolve(x.Low)
		if err != nil {
			return nil, err
		}
		high, err := r.Resolve(x.High)
		if err != nil {
			return nil, err
		}
		return NewBetween(ex, low, high), nil
	case *IsNull:
		ex, err := r.Resolve(x.Expr)
		if err != nil {
			return nil, err
		}
		return NewIsNull(ex, x.Negated), nil
	case *Not:
		op, err := r.Resolve(x.Operand)
		if err != nil {
			return nil, err
		}
		return NewNot(op), nil
	case *And:
		left, err := r.Resolve(x.Left)
		if err != nil {
			return nil, err
		}
		right, err := r.Resolve(x.Right)
		if err != nil {
			return nil, err
		}
		return NewAnd(left, right), nil
	case *Or:
		left, err := r.Resolve(x.Left)
		if err != nil {
			return nil, err
		}
		right, err := r.Resolve(x.Right)
		if err != nil {
			return nil, err
		}
		return NewOr(left, right), nil
	default:
		return nil, errors.NewInternalError(fmt.Sprintf("unknown expression kind %T", e), nil)
	}
}

// ResolveAll resolves a slice of predicates, preserving order.
func (r *Resolver) ResolveAll(exprs []Expression) ([]Expression, error) {
	out := make([]Expression, len(exprs))
	for i, e := range exprs {
		resolved, err := r.Resolve(e)
		if err != nil {
			return nil, err
		}
		out[i] = resolved
	}
	return out, nil
}
