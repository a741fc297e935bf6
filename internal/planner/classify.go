// Package planner turns a scan request into a physical scan plan:
// it classifies filters, prunes the read schema, selects the reader
// capability, packs files into balanced tasks, and assembles the plan
// tree. All state is request-scoped; nothing survives a planning call.
package planner

import (
	"github.com/tgm2018/OAP/internal/expr"
	"github.com/tgm2018/OAP/pkg/types"
)

// ClassifiedFilters holds the three filter categories. A filter may
// appear in more than one category: data-level pruning is a pushdown
// hint, so a data filter stays residual and is evaluated again after the
// scan.
type ClassifiedFilters struct {
	// Partition filters reference only partition columns (or none) and
	// contain no subquery; they drive directory pruning.
	Partition []expr.Expression

	// Data filters reference no partition columns; they drive file and
	// statistics skipping inside the reader.
	Data []expr.Expression

	// Residual filters must still run after the scan.
	Residual []expr.Expression
}

// ClassifyFilters normalizes every predicate's column references against
// the relation's output and splits the set into partition, data, and
// residual filters. An unresolvable column name aborts planning; silent
// mis-resolution would corrupt pruning.
func ClassifyFilters(output types.Schema, partitionCols *types.ColumnSet, filters []expr.Expression) (ClassifiedFilters, error) {
	resolver := expr.NewResolver(output)
	normalized, err := resolver.ResolveAll(filters)
	if err != nil {
		return ClassifiedFilters{}, err
	}

	var out ClassifiedFilters

	// Partition filters that reference at least one column are fully
	// answered by directory pruning and drop out of the residual set.
	// Zero-reference (constant) filters are kept residual even though
	// they classify as partition filters: a filter with no references is
	// never dropped.
	prunedFromResidual := make([]bool, len(normalized))

	for i, f := range normalized {
		refs := f.References()
		if !f.HasSubquery() && refs.SubsetOf(partitionCols) {
			out.Partition = append(out.Partition, f)
			if !refs.IsEmpty() {
				prunedFromResidual[i] = true
			}
		}
		if !refs.Intersects(partitionCols) {
			out.Data = append(out.Data, f)
		}
	}

	for i, f := range normalized {
		if !prunedFromResidual[i] {
			out.Residual = append(out.Residual, f)
		}
	}
	return out, nil
}
