package format

import (
	"context"
	"fmt"
	"strconv"

	oaperrors "github.com/tgm2018/OAP/internal/errors"
	"github.com/tgm2018/OAP/internal/expr"
	"github.com/tgm2018/OAP/internal/index"
	"github.com/tgm2018/OAP/internal/storage"
	"github.com/tgm2018/OAP/pkg/types"
)

// ParquetReader is the default Parquet capability. It carries no state;
// the actual byte-level reader lives in the execution layer.
type ParquetReader struct{}

func (r *ParquetReader) Kind() Kind { return KindParquet }

func (r *ParquetReader) Initialize(ctx context.Context, options map[string]string, files []types.FileEntry) error {
	return validateOptions(options)
}

func (r *ParquetReader) ProbeIndexAvailable(ctx context.Context, dataFilters []expr.Expression) (bool, error) {
	return false, nil
}

func (r *ParquetReader) ReadOnlyMaintenance() bool { return false }

// OrcReader is the default ORC capability.
type OrcReader struct{}

func (r *OrcReader) Kind() Kind { return KindOrc }

func (r *OrcReader) Initialize(ctx context.Context, options map[string]string, files []types.FileEntry) error {
	return validateOptions(options)
}

func (r *OrcReader) ProbeIndexAvailable(ctx context.Context, dataFilters []expr.Expression) (bool, error) {
	return false, nil
}

func (r *OrcReader) ReadOnlyMaintenance() bool { return false }

// UnknownReader is the pass-through capability for unrecognized formats.
type UnknownReader struct {
	Format string
}

func (r *UnknownReader) Kind() Kind { return KindUnknown }

func (r *UnknownReader) Initialize(ctx context.Context, options map[string]string, files []types.FileEntry) error {
	return nil
}

func (r *UnknownReader) ProbeIndexAvailable(ctx context.Context, dataFilters []expr.Expression) (bool, error) {
	return false, nil
}

func (r *UnknownReader) ReadOnlyMaintenance() bool { return false }

// MaintenanceReader wraps a relation's capability while an index build or
// validation job owns the index directory. It answers every probe
// negatively so the selector leaves the relation on its current reader.
type MaintenanceReader struct {
	Inner ReaderCapability
}

func (r *MaintenanceReader) Kind() Kind { return KindMaintenance }

func (r *MaintenanceReader) Initialize(ctx context.Context, options map[string]string, files []types.FileEntry) error {
	return nil
}

func (r *MaintenanceReader) ProbeIndexAvailable(ctx context.Context, dataFilters []expr.Expression) (bool, error) {
	return false, nil
}

func (r *MaintenanceReader) ReadOnlyMaintenance() bool { return true }

// OptimizedReader is the cache/index capable capability for both columnar
// families. Initialize loads the table's index sidecar and records the
// candidate file list; probes answer from the loaded sidecar.
type OptimizedReader struct {
	kind      Kind
	store     storage.ObjectStorage
	tableRoot string

	meta  *index.Meta
	files []types.FileEntry
}

// NewOptimizedParquet creates an uninitialized optimized Parquet capability.
func NewOptimizedParquet(store storage.ObjectStorage, tableRoot string) *OptimizedReader {
	return &OptimizedReader{kind: KindOptimizedParquet, store: store, tableRoot: tableRoot}
}

// NewOptimizedOrc creates an uninitialized optimized ORC capability.
func NewOptimizedOrc(store storage.ObjectStorage, tableRoot string) *OptimizedReader {
	return &OptimizedReader{kind: KindOptimizedOrc, store: store, tableRoot: tableRoot}
}

func (r *OptimizedReader) Kind() Kind { return r.kind }

// Initialize validates options, loads the index sidecar (absence is fine),
// and records the candidate files. Re-initialization refreshes both.
func (r *OptimizedReader) Initialize(ctx context.Context, options map[string]string, files []types.FileEntry) error {
	if err := validateOptions(options); err != nil {
		return err
	}

	meta, err := index.Load(ctx, r.store, r.tableRoot)
	if err != nil {
		return err
	}
	r.meta = meta
	r.files = files
	return nil
}

// ProbeIndexAvailable reports whether the loaded sidecar can serve at
// least one of the data filters. No sidecar, a maintenance-flagged
// sidecar, or uncovered filters all answer false without error.
func (r *OptimizedReader) ProbeIndexAvailable(ctx context.Context, dataFilters []expr.Expression) (bool, error) {
	if r.meta == nil {
		return false, nil
	}
	return r.meta.CoversFilters(dataFilters), nil
}

// ReadOnlyMaintenance reflects the maintenance flag of the loaded sidecar.
func (r *OptimizedReader) ReadOnlyMaintenance() bool {
	return r.meta != nil && r.meta.Maintenance
}

// Files returns the candidate files recorded by the last Initialize.
func (r *OptimizedReader) Files() []types.FileEntry {
	return r.files
}

// validateOptions rejects malformed reader option values. Unknown keys
// pass through untouched; they may belong to other layers.
func validateOptions(options map[string]string) error {
	for key, value := range options {
		switch key {
		case "oap.orc.filter.pushdown", "oap.parquet.cache.enabled":
			if _, err := strconv.ParseBool(value); err != nil {
				return oaperrors.NewConfigError(oaperrors.CodeInvalidOption,
					fmt.Sprintf("option %s: expected boolean, got %q", key, value))
			}
		}
	}
	return nil
}
