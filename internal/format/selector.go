package format

import (
	"context"
	"log"
	"strconv"

	"github.com/tgm2018/OAP/internal/config"
	"github.com/tgm2018/OAP/internal/expr"
	"github.com/tgm2018/OAP/internal/storage"
	"github.com/tgm2018/OAP/pkg/types"
)

// Selector decides whether a relation's reader capability should be
// replaced by an optimized one for this planning call. The decision is a
// pure function of the capability, the session config, the candidate
// files, the data filters, and the output schema; it is re-evaluated on
// every call because filters and schema differ per query.
type Selector struct {
	cfg       config.PlanningConfig
	store     storage.ObjectStorage
	tableRoot string
}

// NewSelector creates a selector for one relation.
func NewSelector(cfg config.PlanningConfig, store storage.ObjectStorage, tableRoot string) *Selector {
	return &Selector{cfg: cfg, store: store, tableRoot: tableRoot}
}

// Select applies the substitution rules in order; the first matching rule
// wins. It returns either the current capability unchanged or a newly
// initialized optimized capability, never a mutated one. The options map
// is returned as passed except on the ORC substitution path, which
// returns an extended copy.
func (s *Selector) Select(
	ctx context.Context,
	current ReaderCapability,
	options map[string]string,
	files []types.FileEntry,
	dataFilters []expr.Expression,
	output types.Schema,
) (ReaderCapability, map[string]string, error) {
	// Never substitute while an index is being built or validated; the
	// optimized reader would see a partially built index.
	if current.ReadOnlyMaintenance() {
		return current, options, nil
	}

	switch current.Kind() {
	case KindParquet:
		if !s.cfg.ParquetOptimizedEnabled {
			return current, options, nil
		}
		candidate := NewOptimizedParquet(s.store, s.tableRoot)
		if err := candidate.Initialize(ctx, options, files); err != nil {
			return nil, nil, err
		}

		cacheEligible := s.cfg.ParquetCacheEnabled &&
			s.cfg.VectorizedReadEnabled &&
			s.cfg.WholeStageEnabled &&
			output.AllAtomic()
		indexEligible, err := candidate.ProbeIndexAvailable(ctx, dataFilters)
		if err != nil {
			return nil, nil, err
		}

		if cacheEligible || indexEligible {
			log.Printf("format selector: substituting optimized parquet reader for %s (cache=%v index=%v)",
				s.tableRoot, cacheEligible, indexEligible)
			return candidate, options, nil
		}
		// The initialized candidate is discarded.
		return current, options, nil

	case KindOrc:
		if !s.cfg.OrcOptimizedEnabled {
			return current, options, nil
		}
		candidate := NewOptimizedOrc(s.store, s.tableRoot)
		if err := candidate.Initialize(ctx, options, files); err != nil {
			return nil, nil, err
		}

		indexEligible, err := candidate.ProbeIndexAvailable(ctx, dataFilters)
		if err != nil {
			return nil, nil, err
		}
		if indexEligible {
			extended := make(map[string]string, len(options)+1)
			for k, v := range options {
				extended[k] = v
			}
			extended[config.OrcPushdownOptionKey] = strconv.FormatBool(s.cfg.FilterPushdownEnabled)
			log.Printf("format selector: substituting optimized orc reader for %s", s.tableRoot)
			return candidate, extended, nil
		}
		return current, options, nil

	case KindOptimizedParquet, KindOptimizedOrc:
		// An external process already chose the optimized path for this
		// relation; refresh its file-list state and keep it.
		if err := current.Initialize(ctx, options, files); err != nil {
			return nil, nil, err
		}
		return current, options, nil

	case KindMaintenance:
		return current, options, nil

	default:
		return current, options, nil
	}
}
