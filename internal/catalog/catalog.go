package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	oaperrors "github.com/tgm2018/OAP/internal/errors"
	"github.com/tgm2018/OAP/internal/format"
	"github.com/tgm2018/OAP/pkg/types"
)

// SQLiteCatalog stores table descriptors and file registrations in a
// sqlite database.
type SQLiteCatalog struct {
	db     *sql.DB
	dbPath string
	mu     sync.Mutex // serializes writes; sqlite allows one writer
}

// NewCatalog opens (and initializes) a sqlite catalog at dbPath.
func NewCatalog(dbPath string) (*SQLiteCatalog, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("catalog: failed to open database: %w", err)
	}
	db.SetMaxOpenConns(4)

	c := &SQLiteCatalog{db: db, dbPath: dbPath}
	if err := c.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("catalog: failed to initialize schema: %w", err)
	}
	return c, nil
}

func (c *SQLiteCatalog) initSchema() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS tables (
			table_id         TEXT PRIMARY KEY,
			name             TEXT UNIQUE NOT NULL,
			root             TEXT NOT NULL,
			format           TEXT NOT NULL,
			partition_schema TEXT NOT NULL,
			data_schema      TEXT NOT NULL,
			bucket_count     INTEGER NOT NULL DEFAULT 0,
			bucket_columns   TEXT NOT NULL DEFAULT '[]',
			options          TEXT NOT NULL DEFAULT '{}'
		)`,
		`CREATE TABLE IF NOT EXISTS files (
			table_id         TEXT NOT NULL,
			path             TEXT NOT NULL,
			size_bytes       INTEGER NOT NULL,
			partition_values TEXT NOT NULL,
			PRIMARY KEY (table_id, path)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_files_table ON files(table_id)`,
	}
	for _, stmt := range stmts {
		if _, err := c.db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to execute schema statement: %w", err)
		}
	}
	return nil
}

// CreateTable registers a table descriptor, assigning an id if absent.
func (c *SQLiteCatalog) CreateTable(ctx context.Context, desc *TableDescriptor) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if desc.ID == "" {
		desc.ID = uuid.NewString()
	}

	partSchema, err := json.Marshal(desc.PartitionSchema)
	if err != nil {
		return fmt.Errorf("catalog: failed to encode partition schema: %w", err)
	}
	dataSchema, err := json.Marshal(desc.DataSchema)
	if err != nil {
		return fmt.Errorf("catalog: failed to encode data schema: %w", err)
	}

	bucketCount := 0
	bucketColumns := []string{}
	if desc.Bucket != nil {
		bucketCount = desc.Bucket.Count
		bucketColumns = desc.Bucket.Columns
	}
	bucketCols, err := json.Marshal(bucketColumns)
	if err != nil {
		return fmt.Errorf("catalog: failed to encode bucket columns: %w", err)
	}

	options := desc.Options
	if options == nil {
		options = map[string]string{}
	}
	optionsJSON, err := json.Marshal(options)
	if err != nil {
		return fmt.Errorf("catalog: failed to encode options: %w", err)
	}

	_, err = c.db.ExecContext(ctx,
		`INSERT INTO tables
			(table_id, name, root, format, partition_schema, data_schema, bucket_count, bucket_columns, options)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		desc.ID, desc.Name, desc.Root, desc.Format.String(),
		string(partSchema), string(dataSchema), bucketCount, string(bucketCols), string(optionsJSON),
	)
	if err != nil {
		return fmt.Errorf("catalog: failed to insert table %s: %w", desc.Name, err)
	}
	return nil
}

// GetTable retrieves a table descriptor by name.
func (c *SQLiteCatalog) GetTable(ctx context.Context, name string) (*TableDescriptor, error) {
	row := c.db.QueryRowContext(ctx,
		`SELECT table_id, name, root, format, partition_schema, data_schema, bucket_count, bucket_columns, options
		 FROM tables WHERE name = ?`, name)

	var desc TableDescriptor
	var formatName, partSchema, dataSchema, bucketCols, optionsJSON string
	var bucketCount int

	err := row.Scan(&desc.ID, &desc.Name, &desc.Root, &formatName,
		&partSchema, &dataSchema, &bucketCount, &bucketCols, &optionsJSON)
	if err == sql.ErrNoRows {
		return nil, oaperrors.NewCatalogError(oaperrors.CodeTableNotFound,
			fmt.Sprintf("table %q not found", name), nil)
	}
	if err != nil {
		return nil, fmt.Errorf("catalog: failed to read table %s: %w", name, err)
	}

	desc.Format = format.ParseKind(formatName)
	if err := json.Unmarshal([]byte(partSchema), &desc.PartitionSchema); err != nil {
		return nil, fmt.Errorf("catalog: failed to decode partition schema: %w", err)
	}
	if err := json.Unmarshal([]byte(dataSchema), &desc.DataSchema); err != nil {
		return nil, fmt.Errorf("catalog: failed to decode data schema: %w", err)
	}
	if bucketCount > 0 {
		var cols []string
		if err := json.Unmarshal([]byte(bucketCols), &cols); err != nil {
			return nil, fmt.Errorf("catalog: failed to decode bucket columns: %w", err)
		}
		desc.Bucket = &types.BucketSpec{Count: bucketCount, Columns: cols}
	}
	if err := json.Unmarshal([]byte(optionsJSON), &desc.Options); err != nil {
		return nil, fmt.Errorf("catalog: failed to decode options: %w", err)
	}
	return &desc, nil
}

// RegisterFile records a data file for a table.
func (c *SQLiteCatalog) RegisterFile(ctx context.Context, tableID string, f types.FileEntry) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	values, err := json.Marshal(f.PartitionValues)
	if err != nil {
		return fmt.Errorf("catalog: failed to encode partition values: %w", err)
	}

	_, err = c.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO files (table_id, path, size_bytes, partition_values)
		 VALUES (?, ?, ?, ?)`,
		tableID, f.Path, f.Size, string(values),
	)
	if err != nil {
		return fmt.Errorf("catalog: failed to register file %s: %w", f.Path, err)
	}
	return nil
}

// TableFiles returns every registered file for a table, ordered by path.
func (c *SQLiteCatalog) TableFiles(ctx context.Context, tableID string) ([]types.FileEntry, error) {
	rows, err := c.db.QueryContext(ctx,
		`SELECT path, size_bytes, partition_values FROM files WHERE table_id = ? ORDER BY path`, tableID)
	if err != nil {
		return nil, fmt.Errorf("catalog: failed to query files: %w", err)
	}
	defer rows.Close()

	var files []types.FileEntry
	for rows.Next() {
		var f types.FileEntry
		var values string
		if err := rows.Scan(&f.Path, &f.Size, &values); err != nil {
			return nil, fmt.Errorf("catalog: failed to scan file row: %w", err)
		}
		if err := json.Unmarshal([]byte(values), &f.PartitionValues); err != nil {
			return nil, fmt.Errorf("catalog: failed to decode partition values: %w", err)
		}
		files = append(files, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("catalog: error iterating file rows: %w", err)
	}
	return files, nil
}

// Close closes the catalog database connection.
func (c *SQLiteCatalog) Close() error {
	return c.db.Close()
}
