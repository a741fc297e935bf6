package catalog

import (
	"testing"

	"github.com/tgm2018/OAP/internal/expr"
	"github.com/tgm2018/OAP/pkg/types"
)

func partSchema() types.Schema {
	return types.NewSchema(
		types.Column{Name: "dt", Type: types.TypeString},
		types.Column{Name: "hour", Type: types.TypeInt32},
	)
}

func dtRef() *expr.ColumnRef   { return expr.NewColumnRef(types.Unresolved("dt")) }
func hourRef() *expr.ColumnRef { return expr.NewColumnRef(types.Unresolved("hour")) }

func strLit(s string) *expr.Literal { return expr.NewLiteral(s, types.TypeString) }
func i64Lit(v int64) *expr.Literal  { return expr.NewLiteral(v, types.TypeInt64) }

func TestMatchesPartitionEquality(t *testing.T) {
	filters := []expr.Expression{expr.NewComparison(expr.OpEq, dtRef(), strLit("2026-01-02"))}

	if !MatchesPartition(partSchema(), []string{"2026-01-02", "5"}, filters) {
		t.Errorf("matching file must survive")
	}
	if MatchesPartition(partSchema(), []string{"2026-01-03", "5"}, filters) {
		t.Errorf("definitely-false file must be dropped")
	}
}

func TestMatchesPartitionRangeAndFlip(t *testing.T) {
	// 10 <= hour, literal on the left.
	filters := []expr.Expression{expr.NewComparison(expr.OpLe, i64Lit(10), hourRef())}

	if MatchesPartition(partSchema(), []string{"2026-01-02", "5"}, filters) {
		t.Errorf("hour=5 fails 10 <= hour")
	}
	if !MatchesPartition(partSchema(), []string{"2026-01-02", "12"}, filters) {
		t.Errorf("hour=12 satisfies 10 <= hour")
	}
}

func TestMatchesPartitionIn(t *testing.T) {
	filters := []expr.Expression{
		expr.NewIn(dtRef(), []expr.Expression{strLit("2026-01-01"), strLit("2026-01-02")}),
	}

	if !MatchesPartition(partSchema(), []string{"2026-01-02", "0"}, filters) {
		t.Errorf("listed value must survive")
	}
	if MatchesPartition(partSchema(), []string{"2026-02-01", "0"}, filters) {
		t.Errorf("unlisted value must be dropped")
	}
}

func TestMatchesPartitionBetween(t *testing.T) {
	filters := []expr.Expression{expr.NewBetween(hourRef(), i64Lit(8), i64Lit(17))}

	if !MatchesPartition(partSchema(), []string{"x", "12"}, filters) {
		t.Errorf("hour in range must survive")
	}
	if MatchesPartition(partSchema(), []string{"x", "22"}, filters) {
		t.Errorf("hour out of range must be dropped")
	}
}

func TestMatchesPartitionBooleanConnectives(t *testing.T) {
	eq := expr.NewComparison(expr.OpEq, dtRef(), strLit("2026-01-02"))
	late := expr.NewComparison(expr.OpGe, hourRef(), i64Lit(20))

	and := []expr.Expression{expr.NewAnd(eq, late)}
	if MatchesPartition(partSchema(), []string{"2026-01-02", "5"}, and) {
		t.Errorf("AND with one false side must drop the file")
	}
	if !MatchesPartition(partSchema(), []string{"2026-01-02", "23"}, and) {
		t.Errorf("AND with both sides true must keep the file")
	}

	or := []expr.Expression{expr.NewOr(eq, late)}
	if !MatchesPartition(partSchema(), []string{"2026-09-09", "23"}, or) {
		t.Errorf("OR with one true side must keep the file")
	}
	if MatchesPartition(partSchema(), []string{"2026-09-09", "3"}, or) {
		t.Errorf("OR with both sides false must drop the file")
	}

	not := []expr.Expression{expr.NewNot(eq)}
	if MatchesPartition(partSchema(), []string{"2026-01-02", "5"}, not) {
		t.Errorf("NOT of a true predicate must drop the file")
	}
}

func TestMatchesPartitionUnknownKeepsFile(t *testing.T) {
	// Empty value: unknown, never excludes.
	eq := []expr.Expression{expr.NewComparison(expr.OpEq, dtRef(), strLit("2026-01-02"))}
	if !MatchesPartition(partSchema(), []string{"", "5"}, eq) {
		t.Errorf("missing partition value must keep the file")
	}

	// Unparseable numeric value: unknown.
	hourEq := []expr.Expression{expr.NewComparison(expr.OpEq, hourRef(), i64Lit(5))}
	if !MatchesPartition(partSchema(), []string{"x", "not-a-number"}, hourEq) {
		t.Errorf("unparseable value must keep the file")
	}

	// Unsupported shape (IS NULL): unknown.
	isNull := []expr.Expression{expr.NewIsNull(dtRef(), false)}
	if !MatchesPartition(partSchema(), []string{"2026-01-02", "5"}, isNull) {
		t.Errorf("unsupported filter shape must keep the file")
	}
}

func TestMatchesPartitionBooleanOrdering(t *testing.T) {
	schema := types.NewSchema(types.Column{Name: "active", Type: types.TypeBoolean})
	activeRef := expr.NewColumnRef(types.Unresolved("active"))
	boolLit := func(v bool) *expr.Literal { return expr.NewLiteral(v, types.TypeBoolean) }

	// Booleans order false < true, so active < true holds exactly for
	// active=false; the false partition must never be pruned.
	lt := []expr.Expression{expr.NewComparison(expr.OpLt, activeRef, boolLit(true))}
	if !MatchesPartition(schema, []string{"false"}, lt) {
		t.Errorf("active=false satisfies active < true and must survive")
	}
	if MatchesPartition(schema, []string{"true"}, lt) {
		t.Errorf("active=true fails active < true and must be dropped")
	}

	ge := []expr.Expression{expr.NewComparison(expr.OpGe, activeRef, boolLit(true))}
	if MatchesPartition(schema, []string{"false"}, ge) {
		t.Errorf("active=false fails active >= true and must be dropped")
	}
	if !MatchesPartition(schema, []string{"true"}, ge) {
		t.Errorf("active=true satisfies active >= true and must survive")
	}

	// Equality and inequality are unaffected by the ordering.
	eq := []expr.Expression{expr.NewComparison(expr.OpEq, activeRef, boolLit(false))}
	if !MatchesPartition(schema, []string{"false"}, eq) {
		t.Errorf("active=false satisfies active = false")
	}
	if MatchesPartition(schema, []string{"true"}, eq) {
		t.Errorf("active=true fails active = false and must be dropped")
	}
	ne := []expr.Expression{expr.NewComparison(expr.OpNe, activeRef, boolLit(true))}
	if !MatchesPartition(schema, []string{"false"}, ne) {
		t.Errorf("active=false satisfies active <> true")
	}
}

func TestMatchesPartitionConstantFilters(t *testing.T) {
	// Constant false drops everything; constant true keeps everything.
	falseLit := []expr.Expression{expr.NewLiteral(false, types.TypeBoolean)}
	if MatchesPartition(partSchema(), []string{"a", "1"}, falseLit) {
		t.Errorf("constant false must drop the file")
	}
	trueLit := []expr.Expression{expr.NewLiteral(true, types.TypeBoolean)}
	if !MatchesPartition(partSchema(), []string{"a", "1"}, trueLit) {
		t.Errorf("constant true must keep the file")
	}
}

func TestMatchesPartitionNoFilters(t *testing.T) {
	if !MatchesPartition(partSchema(), []string{"a", "1"}, nil) {
		t.Errorf("no filters keeps every file")
	}
}
