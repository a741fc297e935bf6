package planner

import (
	"fmt"

	"github.com/tgm2018/OAP/internal/errors"
	"github.com/tgm2018/OAP/internal/expr"
	"github.com/tgm2018/OAP/pkg/types"
)

// PruneSchema computes the minimal on-disk read schema and the scan's
// output schema. Read columns are the data columns referenced by the
// residual filters or the projection; partition columns never appear in
// the read schema because their values come from directory paths, not
// file bytes. The output schema is the read columns followed by the
// partition columns, giving every plan a deterministic column order.
func PruneSchema(dataSchema, partitionSchema types.Schema, residual []expr.Expression, projections []string) (read, output types.Schema, err error) {
	referenced := types.NewColumnSet()
	for _, f := range residual {
		referenced = referenced.Union(f.References())
	}
	for _, name := range projections {
		col, ok := types.Concat(dataSchema, partitionSchema).Resolve(name)
		if !ok {
			return types.Schema{}, types.Schema{}, errors.NewPlanningError(errors.CodeUnresolvedColumn,
				fmt.Sprintf("projected column %q not found in relation output", name))
		}
		referenced.Add(col)
	}

	partitionCols := partitionSchema.ColumnSet()

	var readCols []types.Column
	for _, c := range dataSchema.Columns {
		if referenced.Contains(c) && !partitionCols.Contains(c) {
			readCols = append(readCols, c)
		}
	}

	read = types.NewSchema(readCols...)
	output = types.Concat(read, partitionSchema)
	return read, output, nil
}
