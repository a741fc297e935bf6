package expr

import (
	"errors"
	"testing"

	oaperrors "github.com/tgm2018/OAP/internal/errors"
	"github.com/tgm2018/OAP/pkg/types"
)

func testOutput() types.Schema {
	return types.NewSchema(
		types.Column{Name: "UserID", Type: types.TypeInt64},
		types.Column{Name: "Country", Type: types.TypeString},
	)
}

func TestResolveBindsCaseInsensitively(t *testing.T) {
	r := NewResolver(testOutput())

	resolved, err := r.Resolve(NewComparison(OpEq, col("userid"), lit(7)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cmp := resolved.(*Comparison)
	bound := cmp.Left.(*ColumnRef)
	if !bound.Column.Resolved() {
		t.Errorf("expected bound column, got id %d", bound.Column.ID)
	}
	if bound.Column.Name != "UserID" {
		t.Errorf("expected catalog-case name UserID, got %s", bound.Column.Name)
	}
	if bound.Column.Type != types.TypeInt64 {
		t.Errorf("expected bound type int64, got %v", bound.Column.Type)
	}
}

func TestResolveDoesNotMutateInput(t *testing.T) {
	input := NewComparison(OpEq, col("country"), NewLiteral("se", types.TypeString))
	r := NewResolver(testOutput())

	if _, err := r.Resolve(input); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ref := input.Left.(*ColumnRef)
	if ref.Column.Resolved() {
		t.Errorf("input tree was mutated: column bound in place")
	}
}

func TestResolveIdempotent(t *testing.T) {
	r := NewResolver(testOutput())

	once, err := r.Resolve(NewBetween(col("userid"), lit(1), lit(10)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	twice, err := r.Resolve(once)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !Equal(once, twice) {
		t.Errorf("resolving a resolved tree must yield an equal tree")
	}
}

func TestResolveUnknownColumnFails(t *testing.T) {
	r := NewResolver(testOutput())

	_, err := r.Resolve(NewComparison(OpEq, col("no_such"), lit(1)))
	if err == nil {
		t.Fatalf("expected error for unresolved column")
	}
	if oaperrors.GetCode(err) != oaperrors.CodeUnresolvedColumn {
		t.Errorf("expected code %s, got %s", oaperrors.CodeUnresolvedColumn, oaperrors.GetCode(err))
	}

	var pe *oaperrors.PlanError
	if !errors.As(err, &pe) {
		t.Errorf("expected a PlanError in the chain")
	}
}

func TestResolveAllPreservesOrder(t *testing.T) {
	r := NewResolver(testOutput())
	in := []Expression{
		NewComparison(OpEq, col("userid"), lit(1)),
		NewIsNull(col("country"), false),
	}

	out, err := r.ResolveAll(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("expected 2 resolved predicates, got %d", len(out))
	}
	if _, ok := out[0].(*Comparison); !ok {
		t.Errorf("order not preserved: first predicate is %T", out[0])
	}
	if _, ok := out[1].(*IsNull); !ok {
		t.Errorf("order not preserved: second predicate is %T", out[1])
	}
}
