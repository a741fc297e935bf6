package planner

import (
	"fmt"
	"sort"

	"github.com/tgm2018/OAP/pkg/types"
)

// FileChunk is a byte range of one file assigned to a task. Length covers
// the whole file unless the file was split.
type FileChunk struct {
	File   types.FileEntry
	Offset int64
	Length int64
}

// String returns "path[offset+length]".
func (c FileChunk) String() string {
	return fmt.Sprintf("%s[%d+%d]", c.File.Path, c.Offset, c.Length)
}

// ScanTask is one parallel unit of work: an ordered chunk sequence read
// by a single downstream worker. Row order is preserved only within a
// task.
type ScanTask struct {
	// Index is the task's position in the plan's task list; for bucketed
	// tables it equals the bucket id.
	Index int

	// Chunks are the byte ranges this task reads, in listing order for
	// bucketed tables and packing order otherwise.
	Chunks []FileChunk
}

// SizeBytes returns the accumulated chunk length of the task.
func (t ScanTask) SizeBytes() int64 {
	var total int64
	for _, c := range t.Chunks {
		total += c.Length
	}
	return total
}

// PackTasks groups the selected files into scan tasks.
//
// Bucketed tables produce exactly bucket-count tasks, one per bucket id;
// files are grouped by bucket without splitting or balancing, and a
// bucket with no files yields an empty task.
//
// Non-bucketed tables split oversized files into maxSplitBytes chunks
// plus a remainder, then pack chunks with a decreasing-first-fit pass:
// chunks sorted by size descending (path then offset as tie-break, so
// packing is reproducible) are appended to the current task while it
// stays within maxSplitBytes; a chunk that does not fit closes the task
// and opens a new one.
func PackTasks(files []types.FileEntry, bucket *types.BucketSpec, maxSplitBytes int64) []ScanTask {
	if bucket != nil && bucket.Count > 0 {
		return packBuckets(files, *bucket)
	}
	return packBySize(files, maxSplitBytes)
}

func packBuckets(files []types.FileEntry, bucket types.BucketSpec) []ScanTask {
	tasks := make([]ScanTask, bucket.Count)
	for i := range tasks {
		tasks[i].Index = i
	}
	for _, f := range files {
		id := bucket.BucketFor(f)
		tasks[id].Chunks = append(tasks[id].Chunks, FileChunk{File: f, Offset: 0, Length: f.Size})
	}
	return tasks
}

func packBySize(files []types.FileEntry, maxSplitBytes int64) []ScanTask {
	chunks := splitFiles(files, maxSplitBytes)

	sort.SliceStable(chunks, func(i, j int) bool {
		a, b := chunks[i], chunks[j]
		if a.Length != b.Length {
			return a.Length > b.Length
		}
		if a.File.Path != b.File.Path {
			return a.File.Path < b.File.Path
		}
		return a.Offset < b.Offset
	})

	var tasks []ScanTask
	var current ScanTask
	var acc int64

	for _, chunk := range chunks {
		if len(current.Chunks) > 0 && acc+chunk.Length > maxSplitBytes {
			tasks = append(tasks, current)
			current = ScanTask{Index: len(tasks)}
			acc = 0
		}
		current.Chunks = append(current.Chunks, chunk)
		acc += chunk.Length
	}
	if len(current.Chunks) > 0 {
		current.Index = len(tasks)
		tasks = append(tasks, current)
	}

	for i := range tasks {
		tasks[i].Index = i
	}
	return tasks
}

// splitFiles replaces every file larger than maxSplitBytes with
// consecutive maxSplitBytes chunks plus a final remainder; the ranges of
// a split file partition it exactly, no overlap and no gap.
func splitFiles(files []types.FileEntry, maxSplitBytes int64) []FileChunk {
	var chunks []FileChunk
	for _, f := range files {
		if f.Size <= maxSplitBytes {
			chunks = append(chunks, FileChunk{File: f, Offset: 0, Length: f.Size})
			continue
		}
		var offset int64
		for offset+maxSplitBytes <= f.Size {
			chunks = append(chunks, FileChunk{File: f, Offset: offset, Length: maxSplitBytes})
			offset += maxSplitBytes
		}
		if remainder := f.Size - offset; remainder > 0 {
			chunks = append(chunks, FileChunk{File: f, Offset: offset, Length: remainder})
		}
	}
	return chunks
}
