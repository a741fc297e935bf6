// Package format models reader capabilities as a closed tagged variant:
// the base columnar families, their optimized substitutes, the read-only
// maintenance handle, and an explicit unknown case. The selector's
// decision procedure is an exhaustive match over this variant; a new
// format requires a new case rather than inheriting silent behavior.
package format

import (
	"context"

	"github.com/tgm2018/OAP/internal/expr"
	"github.com/tgm2018/OAP/pkg/types"
)

// Kind identifies the format family of a reader capability.
type Kind int

const (
	KindUnknown Kind = iota
	KindParquet
	KindOrc
	KindOptimizedParquet
	KindOptimizedOrc
	KindMaintenance
)

// String returns the catalog name of the format kind.
func (k Kind) String() string {
	switch k {
	case KindParquet:
		return "parquet"
	case KindOrc:
		return "orc"
	case KindOptimizedParquet:
		return "parquet-optimized"
	case KindOptimizedOrc:
		return "orc-optimized"
	case KindMaintenance:
		return "maintenance"
	default:
		return "unknown"
	}
}

// Optimized reports whether the kind is one of the optimized variants.
func (k Kind) Optimized() bool {
	return k == KindOptimizedParquet || k == KindOptimizedOrc
}

// ParseKind parses a format name as stored in the catalog. Unrecognized
// names map to KindUnknown; the selector passes those through unchanged.
func ParseKind(s string) Kind {
	switch s {
	case "parquet":
		return KindParquet
	case "orc":
		return KindOrc
	case "parquet-optimized":
		return KindOptimizedParquet
	case "orc-optimized":
		return KindOptimizedOrc
	case "maintenance":
		return KindMaintenance
	default:
		return KindUnknown
	}
}

// ReaderCapability is the handle the planner carries for a relation's
// reader. The selector either returns the current capability unchanged or
// a freshly initialized optimized capability; it never mutates one.
type ReaderCapability interface {
	// Kind returns the capability's format family.
	Kind() Kind

	// Initialize prepares the capability for the candidate file list.
	// Absence of an index or cache is not an error; only malformed
	// options or broken storage state are.
	Initialize(ctx context.Context, options map[string]string, files []types.FileEntry) error

	// ProbeIndexAvailable reports whether a usable index exists for the
	// given data filters. False is an ordinary negative outcome.
	ProbeIndexAvailable(ctx context.Context, dataFilters []expr.Expression) (bool, error)

	// ReadOnlyMaintenance reports whether the relation's index is being
	// built or validated; substitution must never occur while it is set.
	ReadOnlyMaintenance() bool
}

// BaseReader returns the inert capability for a base format kind.
func BaseReader(kind Kind) ReaderCapability {
	switch kind {
	case KindParquet:
		return &ParquetReader{}
	case KindOrc:
		return &OrcReader{}
	default:
		return &UnknownReader{Format: kind.String()}
	}
}
