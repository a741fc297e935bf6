// Package index reads and writes the per-table index metadata sidecar the
// optimized readers probe during planning. The sidecar describes which
// columns carry a secondary index and whether a build or validation job
// currently owns the index directory.
package index

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/golang/snappy"

	oaperrors "github.com/tgm2018/OAP/internal/errors"
	"github.com/tgm2018/OAP/internal/expr"
	"github.com/tgm2018/OAP/internal/storage"
	"github.com/tgm2018/OAP/pkg/types"
)

// MetaObjectName is the sidecar object path relative to a table root.
const MetaObjectName = "_oap/index.meta"

// Meta describes the secondary index state for one table root.
type Meta struct {
	// Version tracks sidecar format evolution.
	Version int `json:"version"`

	// Table is the table name the index belongs to.
	Table string `json:"table"`

	// Kind is the index kind: "btree" or "bitmap".
	Kind string `json:"kind"`

	// Columns are the indexed data columns, stored normalized.
	Columns []string `json:"columns"`

	// Files are the data file paths covered by the index.
	Files []string `json:"files"`

	// Maintenance is set for the duration of a build or validation job.
	// Readers must not use the index while it is set.
	Maintenance bool `json:"maintenance"`

	// UpdatedAt is the unix time of the last sidecar write.
	UpdatedAt int64 `json:"updated_at"`
}

// MetaPath returns the sidecar object path for a table root.
func MetaPath(tableRoot string) string {
	return path.Join(tableRoot, MetaObjectName)
}

// Load reads the index sidecar for a table root. A missing sidecar means
// the table has no index and returns (nil, nil); a sidecar that cannot be
// decoded is a fatal configuration error.
func Load(ctx context.Context, store storage.ObjectStorage, tableRoot string) (*Meta, error) {
	objectPath := MetaPath(tableRoot)

	tmp, err := os.CreateTemp("", "oap_index_meta_*.snappy")
	if err != nil {
		return nil, oaperrors.NewIndexError(oaperrors.CodeMetaIO, "failed to create temp file", err)
	}
	tmpPath := tmp.Name()
	tmp.Close()
	defer os.Remove(tmpPath)

	if err := store.Download(ctx, objectPath, tmpPath); err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return nil, nil
		}
		return nil, oaperrors.NewIndexError(oaperrors.CodeMetaIO,
			fmt.Sprintf("failed to download index meta %s", objectPath), err)
	}

	compressed, err := os.ReadFile(tmpPath)
	if err != nil {
		return nil, oaperrors.NewIndexError(oaperrors.CodeMetaIO, "failed to read index meta", err)
	}

	data, err := snappy.Decode(nil, compressed)
	if err != nil {
		return nil, oaperrors.NewIndexError(oaperrors.CodeMetaCorrupt,
			fmt.Sprintf("failed to decompress index meta %s", objectPath), err)
	}

	var meta Meta
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, oaperrors.NewIndexError(oaperrors.CodeMetaCorrupt,
			fmt.Sprintf("failed to decode index meta %s", objectPath), err)
	}
	return &meta, nil
}

// Write serializes the sidecar and uploads it to the table root. Used by
// index build tooling and tests.
func (m *Meta) Write(ctx context.Context, store storage.ObjectStorage, tableRoot string) error {
	if m.Version == 0 {
		m.Version = 1
	}
	m.UpdatedAt = time.Now().Unix()

	data, err := json.Marshal(m)
	if err != nil {
		return oaperrors.NewIndexError(oaperrors.CodeMetaIO, "failed to encode index meta", err)
	}
	compressed := snappy.Encode(nil, data)

	tmp, err := os.CreateTemp("", "oap_index_meta_*.snappy")
	if err != nil {
		return oaperrors.NewIndexError(oaperrors.CodeMetaIO, "failed to create temp file", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(compressed); err != nil {
		tmp.Close()
		return oaperrors.NewIndexError(oaperrors.CodeMetaIO, "failed to write index meta", err)
	}
	if err := tmp.Close(); err != nil {
		return oaperrors.NewIndexError(oaperrors.CodeMetaIO, "failed to close index meta", err)
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		return oaperrors.NewIndexError(oaperrors.CodeMetaIO, "failed to chmod index meta", err)
	}

	localPath := filepath.Clean(tmpPath)
	if err := store.Upload(ctx, localPath, MetaPath(tableRoot)); err != nil {
		return oaperrors.NewIndexError(oaperrors.CodeMetaIO,
			fmt.Sprintf("failed to upload index meta for %s", tableRoot), err)
	}
	return nil
}

// CoversFilters reports whether at least one data filter can be served by
// the index: it references only indexed columns and has an index-usable
// shape. A maintenance-mode index covers nothing.
func (m *Meta) CoversFilters(dataFilters []expr.Expression) bool {
	if m == nil || m.Maintenance || len(m.Columns) == 0 {
		return false
	}

	indexed := types.NewColumnSet()
	for _, name := range m.Columns {
		indexed.Add(types.Unresolved(name))
	}

	for _, f := range dataFilters {
		if f.HasSubquery() {
			continue
		}
		refs := f.References()
		if refs.IsEmpty() || !refs.SubsetOf(indexed) {
			continue
		}
		if usableShape(f) {
			return true
		}
	}
	return false
}

// usableShape reports whether a filter's structure maps onto an index
// lookup: comparisons (except <>), IN, and BETWEEN over a column and
// literals; AND needs one usable side, OR needs both.
func usableShape(e expr.Expression) bool {
	switch x := e.(type) {
	case *expr.Comparison:
		if x.Op == expr.OpNe {
			return false
		}
		return columnVsLiteral(x.Left, x.Right)
	case *expr.In:
		if _, ok := x.Expr.(*expr.ColumnRef); !ok {
			return false
		}
		for _, item := range x.List {
			if _, ok := item.(*expr.Literal); !ok {
				return false
			}
		}
		return true
	case *expr.Between:
		_, isCol := x.Expr.(*expr.ColumnRef)
		_, lowLit := x.Low.(*expr.Literal)
		_, highLit := x.High.(*expr.Literal)
		return isCol && lowLit && highLit
	case *expr.And:
		return usableShape(x.Left) || usableShape(x.Right)
	case *expr.Or:
		return usableShape(x.Left) && usableShape(x.Right)
	default:
		return false
	}
}

// columnVsLiteral reports whether one side is a column reference and the
// other a literal, in either order.
func columnVsLiteral(a, b expr.Expression) bool {
	_, aCol := a.(*expr.ColumnRef)
	_, bLit := b.(*expr.Literal)
	if aCol && bLit {
		return true
	}
	_, bCol := b.(*expr.ColumnRef)
	_, aLit := a.(*expr.Literal)
	return bCol && aLit
}
