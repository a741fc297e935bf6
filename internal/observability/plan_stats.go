// Package observability provides planning statistics for monitoring
// pruning effectiveness and optimized-reader adoption.
package observability

import (
	"sort"
	"sync"
	"time"
)

// PlanStats summarizes one planning call.
type PlanStats struct {
	// Table is the planned table's name.
	Table string

	// CandidateFiles is the file count after partition pruning.
	CandidateFiles int

	// SelectedBytes is the total byte size of the candidate files.
	SelectedBytes int64

	// SplitChunks is the number of chunks after size splitting.
	SplitChunks int

	// Tasks is the number of scan tasks produced.
	Tasks int

	// PartitionFilters, DataFilters, ResidualFilters are the classified
	// filter counts.
	PartitionFilters int
	DataFilters      int
	ResidualFilters  int

	// ReaderSubstituted reports whether an optimized reader replaced the
	// default one.
	ReaderSubstituted bool

	// FinalFormat is the format kind of the selected reader.
	FinalFormat string
}

// SelectionStats aggregates planning outcomes across calls. It exists for
// operators watching whether the optimized readers actually engage.
type SelectionStats struct {
	mu       sync.RWMutex
	byTable  map[string]*TableSelection
	plans    int64
	substits int64
}

// TableSelection holds per-table aggregates.
type TableSelection struct {
	Table        string
	Plans        int64
	Substituted  int64
	LastPlanned  time.Time
	LastFormat   string
	LastTasks    int
	LastFiles    int
	LastBytes    int64
}

// NewSelectionStats creates an empty aggregate.
func NewSelectionStats() *SelectionStats {
	return &SelectionStats{byTable: make(map[string]*TableSelection)}
}

// RecordPlan folds one plan's stats into the aggregate. O(1), safe for
// concurrent use.
func (s *SelectionStats) RecordPlan(ps PlanStats) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.plans++
	if ps.ReaderSubstituted {
		s.substits++
	}

	t, ok := s.byTable[ps.Table]
	if !ok {
		t = &TableSelection{Table: ps.Table}
		s.byTable[ps.Table] = t
	}
	t.Plans++
	if ps.ReaderSubstituted {
		t.Substituted++
	}
	t.LastPlanned = time.Now()
	t.LastFormat = ps.FinalFormat
	t.LastTasks = ps.Tasks
	t.LastFiles = ps.CandidateFiles
	t.LastBytes = ps.SelectedBytes
}

// Totals returns the overall plan and substitution counts.
func (s *SelectionStats) Totals() (plans, substituted int64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.plans, s.substits
}

// TopTables returns the n most planned tables, most active first.
func (s *SelectionStats) TopTables(n int) []TableSelection {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if n <= 0 || len(s.byTable) == 0 {
		return []TableSelection{}
	}

	out := make([]TableSelection, 0, len(s.byTable))
	for _, t := range s.byTable {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Plans != out[j].Plans {
			return out[i].Plans > out[j].Plans
		}
		return out[i].Table < out[j].Table
	})

	if n > len(out) {
		n = len(out)
	}
	return out[:n]
}
