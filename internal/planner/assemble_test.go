package planner

import (
	"strings"
	"testing"

	"github.com/tgm2018/OAP/internal/expr"
	"github.com/tgm2018/OAP/internal/format"
	"github.com/tgm2018/OAP/pkg/types"
)

func testScanNode() *ScanNode {
	return &ScanNode{
		Reader:    &format.ParquetReader{},
		TableName: "events",
		Output: types.NewSchema(
			types.Column{Name: "a", Type: types.TypeInt64},
			types.Column{Name: "b", Type: types.TypeInt64},
			types.Column{Name: "dt", Type: types.TypeString},
		),
	}
}

func TestAssembleBareScan(t *testing.T) {
	scan := testScanNode()

	// Projection matches the scan output exactly: no wrapper nodes.
	plan, err := AssemblePlan(scan, nil, []string{"a", "b", "dt"})
	if err != nil {
		t.Fatalf("assemble failed: %v", err)
	}
	if plan.Root != PlanNode(scan) {
		t.Errorf("expected the scan as root, got %T", plan.Root)
	}
}

func TestAssembleFilterNode(t *testing.T) {
	scan := testScanNode()
	residual := []expr.Expression{
		expr.NewComparison(expr.OpGt, ref("a"), i64(1)),
		expr.NewComparison(expr.OpLt, ref("b"), i64(9)),
	}

	plan, err := AssemblePlan(scan, residual, []string{"a", "b", "dt"})
	if err != nil {
		t.Fatalf("assemble failed: %v", err)
	}

	filter, ok := plan.Root.(*FilterNode)
	if !ok {
		t.Fatalf("expected filter at root, got %T", plan.Root)
	}
	// Residuals are conjoined left-to-right.
	want := expr.NewAnd(residual[0], residual[1])
	if !expr.Equal(filter.Condition, want) {
		t.Errorf("expected conjoined condition, got %s", filter.Condition)
	}
	// A filter never changes the schema.
	if filter.Schema().Len() != scan.Output.Len() {
		t.Errorf("filter must preserve the input schema")
	}
}

func TestAssembleProjectNode(t *testing.T) {
	scan := testScanNode()

	plan, err := AssemblePlan(scan, nil, []string{"b"})
	if err != nil {
		t.Fatalf("assemble failed: %v", err)
	}

	project, ok := plan.Root.(*ProjectNode)
	if !ok {
		t.Fatalf("expected projection at root, got %T", plan.Root)
	}
	if got := project.Schema().Names(); len(got) != 1 || got[0] != "b" {
		t.Errorf("expected projected schema [b], got %v", got)
	}
}

func TestAssembleProjectionOrderMatters(t *testing.T) {
	scan := testScanNode()

	// Same columns, different order: a projection is required.
	plan, err := AssemblePlan(scan, nil, []string{"dt", "a", "b"})
	if err != nil {
		t.Fatalf("assemble failed: %v", err)
	}
	if _, ok := plan.Root.(*ProjectNode); !ok {
		t.Errorf("reordered projection must produce a project node, got %T", plan.Root)
	}
}

func TestAssembleProjectionCaseInsensitive(t *testing.T) {
	scan := testScanNode()

	plan, err := AssemblePlan(scan, nil, []string{"A", "B", "DT"})
	if err != nil {
		t.Fatalf("assemble failed: %v", err)
	}
	if plan.Root != PlanNode(scan) {
		t.Errorf("case-differing projection of the same columns needs no project node")
	}
}

func TestAssembleFullTree(t *testing.T) {
	scan := testScanNode()
	residual := []expr.Expression{expr.NewComparison(expr.OpGt, ref("a"), i64(1))}

	plan, err := AssemblePlan(scan, residual, []string{"b"})
	if err != nil {
		t.Fatalf("assemble failed: %v", err)
	}

	project, ok := plan.Root.(*ProjectNode)
	if !ok {
		t.Fatalf("expected project at root, got %T", plan.Root)
	}
	if _, ok := project.Input.(*FilterNode); !ok {
		t.Fatalf("expected filter under the projection, got %T", project.Input)
	}
	if plan.Scan != scan {
		t.Errorf("plan must expose its scan leaf")
	}

	explained := plan.Explain()
	if !strings.Contains(explained, "Project(b)") || !strings.Contains(explained, "Scan(events") {
		t.Errorf("unexpected explain output:\n%s", explained)
	}
}
