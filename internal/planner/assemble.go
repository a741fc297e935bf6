package planner

import (
	"fmt"
	"strings"

	"github.com/tgm2018/OAP/internal/expr"
	"github.com/tgm2018/OAP/internal/format"
	"github.com/tgm2018/OAP/internal/observability"
	"github.com/tgm2018/OAP/pkg/types"
)

// PlanNode is a node in the physical plan tree.
type PlanNode interface {
	// Schema returns the node's output schema.
	Schema() types.Schema

	// Children returns the input nodes (none for a scan).
	Children() []PlanNode

	// String returns a one-line description of the node.
	String() string
}

// ScanNode is the leaf reading the selected files.
type ScanNode struct {
	// Reader is the selected capability (default or optimized).
	Reader format.ReaderCapability

	// Options is the reader option map the selector returned.
	Options map[string]string

	// TableID identifies the scanned table, empty when unknown.
	TableID string

	// TableName is the scanned table's name.
	TableName string

	// Output is the scan's output schema: read columns then partition
	// columns.
	Output types.Schema

	// PartitionFilters are the filters used for directory pruning.
	PartitionFilters []expr.Expression

	// DataFilters are pushed to the reader for statistics skipping; they
	// are hints and may be lossy.
	DataFilters []expr.Expression

	// Tasks is the packed task list handed to the execution engine.
	Tasks []ScanTask
}

func (n *ScanNode) Schema() types.Schema { return n.Output }
func (n *ScanNode) Children() []PlanNode { return nil }

func (n *ScanNode) String() string {
	return fmt.Sprintf("Scan(%s format=%s files=%d tasks=%d)",
		n.TableName, n.Reader.Kind(), n.fileCount(), len(n.Tasks))
}

func (n *ScanNode) fileCount() int {
	seen := make(map[string]struct{})
	for _, t := range n.Tasks {
		for _, c := range t.Chunks {
			seen[c.File.Path] = struct{}{}
		}
	}
	return len(seen)
}

// FilterNode evaluates the conjoined residual filters over scan output.
type FilterNode struct {
	Input     PlanNode
	Condition expr.Expression
}

func (n *FilterNode) Schema() types.Schema { return n.Input.Schema() }
func (n *FilterNode) Children() []PlanNode { return []PlanNode{n.Input} }
func (n *FilterNode) String() string       { return fmt.Sprintf("Filter(%s)", n.Condition) }

// ProjectNode narrows and reorders the output columns.
type ProjectNode struct {
	Input   PlanNode
	Columns []types.Column
}

func (n *ProjectNode) Schema() types.Schema {
	return types.NewSchema(n.Columns...)
}
func (n *ProjectNode) Children() []PlanNode { return []PlanNode{n.Input} }

func (n *ProjectNode) String() string {
	names := make([]string, len(n.Columns))
	for i, c := range n.Columns {
		names[i] = c.Name
	}
	return fmt.Sprintf("Project(%s)", strings.Join(names, ", "))
}

// PhysicalScanPlan is the planner's result: the plan tree, the scan leaf,
// the residual filters, and per-plan statistics.
type PhysicalScanPlan struct {
	// PlanID uniquely identifies this planning result.
	PlanID string

	// Root is the top of the plan tree.
	Root PlanNode

	// Scan is the tree's scan leaf.
	Scan *ScanNode

	// Residual are the filters the FilterNode evaluates, kept separately
	// for downstream inspection.
	Residual []expr.Expression

	// Stats summarizes the planning call.
	Stats observability.PlanStats
}

// Explain renders the plan tree, root first, one node per line.
func (p *PhysicalScanPlan) Explain() string {
	var sb strings.Builder
	explainNode(&sb, p.Root, 0)
	return sb.String()
}

func explainNode(sb *strings.Builder, n PlanNode, depth int) {
	sb.WriteString(strings.Repeat("  ", depth))
	sb.WriteString(n.String())
	sb.WriteByte('\n')
	for _, c := range n.Children() {
		explainNode(sb, c, depth+1)
	}
}

// AssemblePlan composes the final plan tree: the scan, a filter node when
// residual filters exist, and a projection when the underlying output
// does not already match the requested projection exactly.
func AssemblePlan(scan *ScanNode, residual []expr.Expression, projections []string) (*PhysicalScanPlan, error) {
	var root PlanNode = scan

	if len(residual) > 0 {
		root = &FilterNode{Input: root, Condition: expr.Conjoin(residual)}
	}

	if !schemaMatchesProjection(root.Schema(), projections) {
		// PruneSchema guarantees every projected column is in the scan
		// output; a miss here is a planner bug.
		projected, err := root.Schema().Project(projections)
		if err != nil {
			return nil, fmt.Errorf("planner: %w", err)
		}
		root = &ProjectNode{Input: root, Columns: projected.Columns}
	}

	return &PhysicalScanPlan{Root: root, Scan: scan, Residual: residual}, nil
}

// schemaMatchesProjection reports whether the schema already has exactly
// the projected columns in order (case-insensitive names).
func schemaMatchesProjection(schema types.Schema, projections []string) bool {
	if len(schema.Columns) != len(projections) {
		return false
	}
	for i, name := range projections {
		if schema.Columns[i].Key() != strings.ToLower(name) {
			return false
		}
	}
	return true
}
