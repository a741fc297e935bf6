package planner

import (
	"context"
	"log"

	"github.com/google/uuid"

	"github.com/tgm2018/OAP/internal/catalog"
	"github.com/tgm2018/OAP/internal/config"
	"github.com/tgm2018/OAP/internal/errors"
	"github.com/tgm2018/OAP/internal/expr"
	"github.com/tgm2018/OAP/internal/format"
	"github.com/tgm2018/OAP/internal/observability"
	"github.com/tgm2018/OAP/internal/storage"
)

// ScanRequest carries everything one planning call needs. The planner
// reads but never mutates the request.
type ScanRequest struct {
	// Table describes the relation being scanned.
	Table *catalog.TableDescriptor

	// Reader is the relation's current reader capability. A nil reader
	// means the relation is not file-backed and planning does not apply.
	Reader format.ReaderCapability

	// Lister produces candidate files after partition pruning. A nil
	// lister means the relation cannot enumerate files and planning does
	// not apply.
	Lister catalog.FileLister

	// Storage is the object store holding the table's data and index
	// sidecars; the selector probes it. Required for a plannable request.
	Storage storage.ObjectStorage

	// Filters are the query's predicates over the relation output.
	Filters []expr.Expression

	// Projection is the requested output column list, in order. An empty
	// projection means all output columns.
	Projection []string

	// Options is the session's reader option map.
	Options map[string]string

	// Config is the session planning configuration.
	Config config.PlanningConfig
}

// Plan builds a physical scan plan for the request, or returns
// (nil, nil) when the request's relation shape is not plannable (no
// reader capability or no file lister). Every other failure is an error;
// planning never degrades silently.
func Plan(ctx context.Context, req ScanRequest) (*PhysicalScanPlan, error) {
	if req.Reader == nil || req.Lister == nil {
		return nil, nil
	}
	if req.Table == nil {
		return nil, errors.NewPlanningError(errors.CodeInvalidRequest, "scan request has no table descriptor")
	}
	if req.Storage == nil {
		return nil, errors.NewPlanningError(errors.CodeInvalidRequest, "scan request has no object storage")
	}
	if err := req.Config.Validate(); err != nil {
		return nil, err
	}

	output := req.Table.Output()
	partitionCols := req.Table.PartitionSchema.ColumnSet()

	classified, err := ClassifyFilters(output, partitionCols, req.Filters)
	if err != nil {
		return nil, err
	}

	files, err := req.Lister.ListFiles(ctx, classified.Partition)
	if err != nil {
		return nil, err
	}

	projections := req.Projection
	if len(projections) == 0 {
		projections = output.Names()
	}

	readSchema, scanOutput, err := PruneSchema(req.Table.DataSchema, req.Table.PartitionSchema, classified.Residual, projections)
	if err != nil {
		return nil, err
	}

	selector := format.NewSelector(req.Config, req.Storage, req.Table.Root)
	reader, options, err := selector.Select(ctx, req.Reader, req.Options, files, classified.Data, scanOutput)
	if err != nil {
		return nil, err
	}

	tasks := PackTasks(files, req.Table.Bucket, req.Config.MaxSplitBytes)

	scan := &ScanNode{
		Reader:           reader,
		Options:          options,
		TableID:          req.Table.ID,
		TableName:        req.Table.Name,
		Output:           scanOutput,
		PartitionFilters: classified.Partition,
		DataFilters:      classified.Data,
		Tasks:            tasks,
	}

	plan, err := AssemblePlan(scan, classified.Residual, projections)
	if err != nil {
		return nil, err
	}
	plan.PlanID = uuid.NewString()

	var selectedBytes int64
	for _, f := range files {
		selectedBytes += f.Size
	}
	var chunks int
	for _, t := range tasks {
		chunks += len(t.Chunks)
	}
	plan.Stats = observability.PlanStats{
		Table:             req.Table.Name,
		CandidateFiles:    len(files),
		SelectedBytes:     selectedBytes,
		SplitChunks:       chunks,
		Tasks:             len(tasks),
		PartitionFilters:  len(classified.Partition),
		DataFilters:       len(classified.Data),
		ResidualFilters:   len(classified.Residual),
		ReaderSubstituted: reader != req.Reader,
		FinalFormat:       reader.Kind().String(),
	}

	log.Printf("planner: %s plan=%s files=%d bytes=%d tasks=%d format=%s readCols=%d",
		req.Table.Name, plan.PlanID, len(files), selectedBytes, len(tasks),
		reader.Kind(), readSchema.Len())

	return plan, nil
}
