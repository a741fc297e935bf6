package types

import (
	"testing"
)

func TestSchemaResolveCaseInsensitive(t *testing.T) {
	schema := NewSchema(
		Column{Name: "UserID", Type: TypeInt64},
		Column{Name: "country", Type: TypeString},
	)

	col, ok := schema.Resolve("userid")
	if !ok {
		t.Fatalf("expected to resolve userid")
	}
	if col.Name != "UserID" {
		t.Errorf("expected original-case name UserID, got %s", col.Name)
	}
	if col.ID != 0 {
		t.Errorf("expected ordinal 0, got %d", col.ID)
	}

	if _, ok := schema.Resolve("missing"); ok {
		t.Errorf("expected missing column to not resolve")
	}
}

func TestNewSchemaAssignsSequentialIDs(t *testing.T) {
	schema := NewSchema(
		Column{ID: 99, Name: "a", Type: TypeInt64},
		Column{ID: -1, Name: "b", Type: TypeString},
	)
	for i, c := range schema.Columns {
		if c.ID != i {
			t.Errorf("column %s: expected id %d, got %d", c.Name, i, c.ID)
		}
	}
}

func TestConcatReassignsIDs(t *testing.T) {
	data := NewSchema(
		Column{Name: "a", Type: TypeInt64},
		Column{Name: "b", Type: TypeString},
	)
	part := NewSchema(Column{Name: "dt", Type: TypeString})

	out := Concat(data, part)
	if out.Len() != 3 {
		t.Fatalf("expected 3 columns, got %d", out.Len())
	}
	dt, ok := out.Resolve("dt")
	if !ok {
		t.Fatalf("expected dt in concatenated schema")
	}
	if dt.ID != 2 {
		t.Errorf("expected dt at ordinal 2, got %d", dt.ID)
	}
}

func TestSchemaProject(t *testing.T) {
	schema := NewSchema(
		Column{Name: "a", Type: TypeInt64},
		Column{Name: "b", Type: TypeString},
		Column{Name: "dt", Type: TypeString},
	)

	out, err := schema.Project([]string{"DT", "a"})
	if err != nil {
		t.Fatalf("project failed: %v", err)
	}
	if got := out.Names(); len(got) != 2 || got[0] != "dt" || got[1] != "a" {
		t.Errorf("expected projected order [dt a], got %v", got)
	}
	if out.Columns[0].ID != 0 {
		t.Errorf("projection must reassign ordinals, got %d", out.Columns[0].ID)
	}

	if _, err := schema.Project([]string{"ghost"}); err == nil {
		t.Errorf("expected error for unknown column")
	}
}

func TestAllAtomic(t *testing.T) {
	atomic := NewSchema(
		Column{Name: "a", Type: TypeInt64},
		Column{Name: "b", Type: TypeTimestamp},
	)
	if !atomic.AllAtomic() {
		t.Errorf("expected scalar-only schema to be atomic")
	}

	nested := NewSchema(
		Column{Name: "a", Type: TypeInt64},
		Column{Name: "tags", Type: TypeArray},
	)
	if nested.AllAtomic() {
		t.Errorf("expected schema with array column to not be atomic")
	}
}

func TestParseDataType(t *testing.T) {
	cases := map[string]DataType{
		"boolean":   TypeBoolean,
		"bool":      TypeBoolean,
		"int":       TypeInt32,
		"bigint":    TypeInt64,
		"double":    TypeFloat64,
		"String":    TypeString,
		"timestamp": TypeTimestamp,
		"map":       TypeMap,
	}
	for input, want := range cases {
		got, err := ParseDataType(input)
		if err != nil {
			t.Errorf("ParseDataType(%q): unexpected error %v", input, err)
			continue
		}
		if got != want {
			t.Errorf("ParseDataType(%q) = %v, want %v", input, got, want)
		}
	}

	if _, err := ParseDataType("decimal128"); err == nil {
		t.Errorf("expected error for unknown type name")
	}
}

func TestColumnSetOperations(t *testing.T) {
	a := Column{Name: "a", Type: TypeInt64}
	b := Column{Name: "b", Type: TypeString}
	c := Column{Name: "c", Type: TypeBoolean}

	s1 := NewColumnSet(a, b)
	s2 := NewColumnSet(b, c)

	if !s1.Contains(Column{Name: "A"}) {
		t.Errorf("expected case-insensitive membership for A")
	}
	if !s1.Intersects(s2) {
		t.Errorf("expected s1 and s2 to intersect on b")
	}
	if s1.SubsetOf(s2) {
		t.Errorf("s1 is not a subset of s2")
	}
	if !NewColumnSet().SubsetOf(s2) {
		t.Errorf("empty set must be a subset of everything")
	}

	union := s1.Union(s2)
	if union.Len() != 3 {
		t.Errorf("expected union of 3 columns, got %d", union.Len())
	}
	names := union.Names()
	want := []string{"a", "b", "c"}
	for i, n := range want {
		if names[i] != n {
			t.Errorf("expected sorted names %v, got %v", want, names)
			break
		}
	}
}

func TestParsePartitionValues(t *testing.T) {
	partition := NewSchema(
		Column{Name: "dt", Type: TypeString},
		Column{Name: "region", Type: TypeString},
	)

	values := ParsePartitionValues("warehouse/t1/dt=2026-01-02/region=eu/part-0.parquet", partition)
	if values[0] != "2026-01-02" || values[1] != "eu" {
		t.Errorf("unexpected partition values %v", values)
	}

	// Missing segments stay empty so pruning treats them as unknown.
	values = ParsePartitionValues("warehouse/t1/dt=2026-01-02/part-0.parquet", partition)
	if values[0] != "2026-01-02" || values[1] != "" {
		t.Errorf("expected empty value for missing segment, got %v", values)
	}
}

func TestParseBucketID(t *testing.T) {
	id, ok := ParseBucketID("t1/dt=2026-01-02/part-00000_00003.parquet")
	if !ok || id != 3 {
		t.Errorf("expected bucket 3, got %d (ok=%v)", id, ok)
	}

	if _, ok := ParseBucketID("t1/part-00000.parquet"); ok {
		t.Errorf("expected no bucket id without suffix")
	}
	if _, ok := ParseBucketID("t1/part_.parquet"); ok {
		t.Errorf("expected no bucket id for empty suffix")
	}
}

func TestBucketForDeterministicFallback(t *testing.T) {
	spec := BucketSpec{Count: 8, Columns: []string{"user_id"}}

	f := FileEntry{Path: "t1/part-00000_00005.parquet", Size: 10}
	if got := spec.BucketFor(f); got != 5 {
		t.Errorf("expected encoded bucket 5, got %d", got)
	}

	// No suffix: the path hash decides, but must stay stable across calls
	// and inside [0, Count).
	unsuffixed := FileEntry{Path: "t1/part-abc.parquet", Size: 10}
	first := spec.BucketFor(unsuffixed)
	if first < 0 || first >= spec.Count {
		t.Fatalf("bucket %d out of range", first)
	}
	for i := 0; i < 10; i++ {
		if spec.BucketFor(unsuffixed) != first {
			t.Fatalf("bucket assignment not deterministic")
		}
	}

	// Encoded ids beyond the bucket count fall back to hashing.
	tooBig := FileEntry{Path: "t1/part-00000_00099.parquet", Size: 10}
	if got := spec.BucketFor(tooBig); got < 0 || got >= spec.Count {
		t.Errorf("out-of-range encoded id must hash into range, got %d", got)
	}
}
