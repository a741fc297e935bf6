package types

import (
	"fmt"
	"path"
	"strconv"
	"strings"

	"github.com/spaolacci/murmur3"
)

// FileEntry is one data file selected for scanning. A file belongs to
// exactly one partition directory and, for bucketed tables, to exactly
// one bucket.
type FileEntry struct {
	// Path is the object path of the file.
	Path string `json:"path"`

	// Size is the file length in bytes.
	Size int64 `json:"size"`

	// PartitionValues is the directory-derived value tuple, aligned with
	// the table's partition schema. Partition column values never come
	// from the file's bytes.
	PartitionValues []string `json:"partition_values"`
}

// String returns "path (size bytes)".
func (f FileEntry) String() string {
	return fmt.Sprintf("%s (%d bytes)", f.Path, f.Size)
}

// ParsePartitionValues derives the partition value tuple for an object
// path from its "name=value" directory segments, aligned with the
// partition schema. Missing segments yield empty strings; pruning treats
// an empty value as unknown and keeps the file.
func ParsePartitionValues(objectPath string, partitionSchema Schema) []string {
	byName := make(map[string]string)
	for _, seg := range strings.Split(path.Dir(objectPath), "/") {
		if eq := strings.IndexByte(seg, '='); eq > 0 {
			byName[strings.ToLower(seg[:eq])] = seg[eq+1:]
		}
	}

	values := make([]string, len(partitionSchema.Columns))
	for i, col := range partitionSchema.Columns {
		values[i] = byName[col.Key()]
	}
	return values
}

// BucketSpec describes a fixed-count hash bucketing layout.
type BucketSpec struct {
	// Count is the number of buckets, fixed for the table's lifetime.
	Count int `json:"count"`

	// Columns are the bucketing columns, informational for the planner.
	Columns []string `json:"columns"`
}

// BucketFor maps a file to its bucket id in [0, Count). Bucketed writers
// encode the bucket id in the file name ("part-00000_00003.parquet");
// files without the suffix hash their path so assignment stays
// deterministic across planning calls.
func (b BucketSpec) BucketFor(f FileEntry) int {
	if b.Count <= 0 {
		return 0
	}
	if id, ok := ParseBucketID(f.Path); ok && id < b.Count {
		return id
	}
	return int(murmur3.Sum32([]byte(f.Path)) % uint32(b.Count))
}

// ParseBucketID extracts the bucket id suffix from a bucketed data file
// name. The convention is "<stem>_<bucket>.<ext>" with a zero-padded
// numeric bucket.
func ParseBucketID(objectPath string) (int, bool) {
	base := path.Base(objectPath)
	if ext := path.Ext(base); ext != "" {
		base = base[:len(base)-len(ext)]
	}
	idx := strings.LastIndexByte(base, '_')
	if idx < 0 || idx == len(base)-1 {
		return 0, false
	}
	id, err := strconv.Atoi(base[idx+1:])
	if err != nil || id < 0 {
		return 0, false
	}
	return id, true
}
