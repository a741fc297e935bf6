// Package catalog manages table descriptors and data file registrations
// in a sqlite catalog, and provides the file-listing capability the
// planner consumes. Listing prunes partition directories against the
// partition filters; pruning is conservative and keeps any file a filter
// cannot definitively exclude.
package catalog

import (
	"context"

	"github.com/tgm2018/OAP/internal/expr"
	"github.com/tgm2018/OAP/internal/format"
	"github.com/tgm2018/OAP/pkg/types"
)

// TableDescriptor describes one file-backed relation.
type TableDescriptor struct {
	// ID is the catalog-assigned table id (uuid).
	ID string

	// Name is the unique table name.
	Name string

	// Root is the object-store prefix holding the table's files.
	Root string

	// Format is the base format family of the table's data files.
	Format format.Kind

	// PartitionSchema describes the directory-encoded partition columns.
	PartitionSchema types.Schema

	// DataSchema describes the columns stored in the file bytes.
	DataSchema types.Schema

	// Bucket is the bucketing layout, nil for non-bucketed tables.
	Bucket *types.BucketSpec

	// Options is the table's reader option map.
	Options map[string]string
}

// Output returns the relation's output schema: data columns followed by
// partition columns, with sequential column ids.
func (t *TableDescriptor) Output() types.Schema {
	return types.Concat(t.DataSchema, t.PartitionSchema)
}

// FileLister is the narrow listing capability a scan request carries.
// Implementations may parallelize I/O internally; the planner only
// consumes the final list.
type FileLister interface {
	// ListFiles returns the candidate files after partition pruning.
	ListFiles(ctx context.Context, partitionFilters []expr.Expression) ([]types.FileEntry, error)
}
