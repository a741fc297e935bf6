package index

import (
	"context"
	"testing"

	"github.com/tgm2018/OAP/internal/expr"
	"github.com/tgm2018/OAP/internal/storage"
	"github.com/tgm2018/OAP/pkg/types"
)

func newTestStore(t *testing.T) *storage.LocalStorage {
	t.Helper()
	store, err := storage.NewLocalStorage(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create local storage: %v", err)
	}
	return store
}

func colRef(name string) *expr.ColumnRef {
	return expr.NewColumnRef(types.Unresolved(name))
}

func intLit(v int64) *expr.Literal {
	return expr.NewLiteral(v, types.TypeInt64)
}

func TestMetaWriteLoadRoundtrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	in := &Meta{
		Table:   "events",
		Kind:    "btree",
		Columns: []string{"user_id"},
		Files:   []string{"events/part-0.parquet"},
	}
	if err := in.Write(ctx, store, "warehouse/events"); err != nil {
		t.Fatalf("failed to write sidecar: %v", err)
	}

	out, err := Load(ctx, store, "warehouse/events")
	if err != nil {
		t.Fatalf("failed to load sidecar: %v", err)
	}
	if out == nil {
		t.Fatalf("expected a sidecar, got nil")
	}
	if out.Table != "events" || out.Kind != "btree" {
		t.Errorf("roundtrip mismatch: %+v", out)
	}
	if out.Version != 1 {
		t.Errorf("expected version 1 to be assigned, got %d", out.Version)
	}
	if out.UpdatedAt == 0 {
		t.Errorf("expected UpdatedAt to be set")
	}
}

func TestLoadMissingSidecarIsNil(t *testing.T) {
	store := newTestStore(t)

	meta, err := Load(context.Background(), store, "warehouse/no_index")
	if err != nil {
		t.Fatalf("missing sidecar must not be an error: %v", err)
	}
	if meta != nil {
		t.Errorf("expected nil meta for a table without an index")
	}
}

func TestCoversFilters(t *testing.T) {
	meta := &Meta{Columns: []string{"user_id"}}

	cases := []struct {
		name   string
		filter expr.Expression
		want   bool
	}{
		{"equality on indexed column", expr.NewComparison(expr.OpEq, colRef("user_id"), intLit(7)), true},
		{"range on indexed column", expr.NewComparison(expr.OpGe, colRef("USER_ID"), intLit(7)), true},
		{"literal on the left", expr.NewComparison(expr.OpLt, intLit(7), colRef("user_id")), true},
		{"inequality never uses the index", expr.NewComparison(expr.OpNe, colRef("user_id"), intLit(7)), false},
		{"unindexed column", expr.NewComparison(expr.OpEq, colRef("country"), intLit(1)), false},
		{"in list of literals", expr.NewIn(colRef("user_id"), []expr.Expression{intLit(1), intLit(2)}), true},
		{"between literals", expr.NewBetween(colRef("user_id"), intLit(1), intLit(9)), true},
		{"and needs one usable side",
			expr.NewAnd(
				expr.NewComparison(expr.OpNe, colRef("user_id"), intLit(1)),
				expr.NewComparison(expr.OpEq, colRef("user_id"), intLit(2))),
			true},
		{"or needs both sides usable",
			expr.NewOr(
				expr.NewComparison(expr.OpNe, colRef("user_id"), intLit(1)),
				expr.NewComparison(expr.OpEq, colRef("user_id"), intLit(2))),
			false},
		{"constant filter covers nothing", expr.NewComparison(expr.OpEq, intLit(1), intLit(1)), false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := meta.CoversFilters([]expr.Expression{tc.filter})
			if got != tc.want {
				t.Errorf("CoversFilters = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestCoversFiltersMaintenance(t *testing.T) {
	meta := &Meta{Columns: []string{"user_id"}, Maintenance: true}
	f := expr.NewComparison(expr.OpEq, colRef("user_id"), intLit(7))
	if meta.CoversFilters([]expr.Expression{f}) {
		t.Errorf("a maintenance-mode index must cover nothing")
	}
}

func TestCoversFiltersMixedColumnsRejected(t *testing.T) {
	meta := &Meta{Columns: []string{"user_id"}}
	// References both an indexed and an unindexed column; not fully covered.
	f := expr.NewAnd(
		expr.NewComparison(expr.OpEq, colRef("user_id"), intLit(1)),
		expr.NewComparison(expr.OpEq, colRef("country"), intLit(2)),
	)
	if meta.CoversFilters([]expr.Expression{f}) {
		t.Errorf("filters referencing unindexed columns must not be covered")
	}
}
