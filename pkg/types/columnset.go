package types

import "sort"

// ColumnSet is an unordered collection of columns, deduplicated by
// normalized name. The zero value is not usable; use NewColumnSet.
type ColumnSet struct {
	cols map[string]Column
}

// NewColumnSet creates a set containing the given columns.
func NewColumnSet(cols ...Column) *ColumnSet {
	s := &ColumnSet{cols: make(map[string]Column, len(cols))}
	for _, c := range cols {
		s.Add(c)
	}
	return s
}

// Add inserts a column. A later add with the same normalized name wins,
// so resolved identities replace unresolved placeholders.
func (s *ColumnSet) Add(c Column) {
	s.cols[c.Key()] = c
}

// Contains reports whether a column with the same normalized name is present.
func (s *ColumnSet) Contains(c Column) bool {
	_, ok := s.cols[c.Key()]
	return ok
}

// ContainsName reports membership by case-insensitive name.
func (s *ColumnSet) ContainsName(name string) bool {
	_, ok := s.cols[Column{Name: name}.Key()]
	return ok
}

// Len returns the number of distinct columns in the set.
func (s *ColumnSet) Len() int {
	return len(s.cols)
}

// IsEmpty reports whether the set has no columns.
func (s *ColumnSet) IsEmpty() bool {
	return len(s.cols) == 0
}

// Union returns a new set containing the columns of both sets.
func (s *ColumnSet) Union(other *ColumnSet) *ColumnSet {
	out := NewColumnSet()
	for k, c := range s.cols {
		out.cols[k] = c
	}
	for k, c := range other.cols {
		out.cols[k] = c
	}
	return out
}

// Intersects reports whether the two sets share at least one column.
func (s *ColumnSet) Intersects(other *ColumnSet) bool {
	small, large := s, other
	if len(large.cols) < len(small.cols) {
		small, large = large, small
	}
	for k := range small.cols {
		if _, ok := large.cols[k]; ok {
			return true
		}
	}
	return false
}

// SubsetOf reports whether every column in s is present in other.
// The empty set is a subset of everything.
func (s *ColumnSet) SubsetOf(other *ColumnSet) bool {
	for k := range s.cols {
		if _, ok := other.cols[k]; !ok {
			return false
		}
	}
	return true
}

// Names returns the normalized column names in sorted order for
// deterministic iteration and logging.
func (s *ColumnSet) Names() []string {
	names := make([]string, 0, len(s.cols))
	for k := range s.cols {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Columns returns the columns sorted by normalized name.
func (s *ColumnSet) Columns() []Column {
	out := make([]Column, 0, len(s.cols))
	for _, name := range s.Names() {
		out = append(out, s.cols[name])
	}
	return out
}
