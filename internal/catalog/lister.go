package catalog

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/tgm2018/OAP/internal/expr"
	"github.com/tgm2018/OAP/internal/storage"
	"github.com/tgm2018/OAP/pkg/types"
)

// CatalogLister lists a table's candidate files from the sqlite catalog's
// file registry, pruning by partition values.
type CatalogLister struct {
	catalog *SQLiteCatalog
	table   *TableDescriptor
}

// NewCatalogLister creates a lister over the catalog's file registry.
func NewCatalogLister(catalog *SQLiteCatalog, table *TableDescriptor) *CatalogLister {
	return &CatalogLister{catalog: catalog, table: table}
}

// ListFiles returns the table's files surviving the partition filters.
func (l *CatalogLister) ListFiles(ctx context.Context, partitionFilters []expr.Expression) ([]types.FileEntry, error) {
	files, err := l.catalog.TableFiles(ctx, l.table.ID)
	if err != nil {
		return nil, err
	}

	var out []types.FileEntry
	for _, f := range files {
		if MatchesPartition(l.table.PartitionSchema, f.PartitionValues, partitionFilters) {
			out = append(out, f)
		}
	}
	return out, nil
}

// StorageLister lists candidate files directly from object storage,
// deriving partition values from "name=value" directory segments under
// the table root. Useful for tables that are not file-registered in the
// catalog.
type StorageLister struct {
	store storage.ObjectStorage
	table *TableDescriptor
}

// NewStorageLister creates a lister that walks the table root.
func NewStorageLister(store storage.ObjectStorage, table *TableDescriptor) *StorageLister {
	return &StorageLister{store: store, table: table}
}

// ListFiles walks the table root, skips metadata objects (underscore and
// dot prefixed names), and prunes by partition filters.
func (l *StorageLister) ListFiles(ctx context.Context, partitionFilters []expr.Expression) ([]types.FileEntry, error) {
	prefix := strings.TrimSuffix(l.table.Root, "/") + "/"
	objects, err := l.store.ListObjects(ctx, prefix)
	if err != nil {
		return nil, fmt.Errorf("lister: failed to list %s: %w", prefix, err)
	}

	var out []types.FileEntry
	for _, obj := range objects {
		rel := strings.TrimPrefix(obj.Path, prefix)
		if isMetadataPath(rel) {
			continue
		}
		f := types.FileEntry{
			Path:            obj.Path,
			Size:            obj.Size,
			PartitionValues: types.ParsePartitionValues(rel, l.table.PartitionSchema),
		}
		if MatchesPartition(l.table.PartitionSchema, f.PartitionValues, partitionFilters) {
			out = append(out, f)
		}
	}
	return out, nil
}

// isMetadataPath reports whether any path segment marks a metadata object.
func isMetadataPath(rel string) bool {
	for _, seg := range strings.Split(rel, "/") {
		if strings.HasPrefix(seg, "_") || strings.HasPrefix(seg, ".") {
			return true
		}
	}
	return path.Base(rel) == ""
}
