package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/pageflow/internal/model"
)

// FileName is the database file created in the database directory.
const FileName = "pageflow.db"

// SnapshotDB stores document snapshots in SQLite.
type SnapshotDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures SnapshotDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a SnapshotDB in dbDir.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*SnapshotDB, error) {
	dbPath := filepath.Join(dbDir, FileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// mode=rw refuses to create a missing file, mode=rwc creates it.
	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite only supports one writer
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	sdb := &SnapshotDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := sdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return sdb, nil
}

// Close closes the database connection.
func (sdb *SnapshotDB) Close() error {
	return sdb.db.Close()
}

// Path returns the database file path.
func (sdb *SnapshotDB) Path() string {
	return sdb.dbPath
}

// createTables creates the database schema if it doesn't exist.
func (sdb *SnapshotDB) createTables() error {
	schema := `
	-- Every saved snapshot of every document
	CREATE TABLE IF NOT EXISTS snapshots (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		document TEXT NOT NULL,
		timestamp DATETIME DEFAULT CURRENT_TIMESTAMP,
		fingerprint TEXT NOT NULL,
		descriptor_count INTEGER NOT NULL,
		page_count INTEGER NOT NULL,
		snapshot_json TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_snapshots_document ON snapshots(document);
	CREATE INDEX IF NOT EXISTS idx_snapshots_timestamp ON snapshots(timestamp);
	`

	_, err := sdb.db.ExecContext(context.Background(), schema)
	return err
}

// SaveSnapshot stores a snapshot of document and returns its ID.
func (sdb *SnapshotDB) SaveSnapshot(ctx context.Context, document string, snapshot model.Snapshot) (int64, error) {
	data, err := model.MarshalSnapshot(snapshot)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize snapshot: %w", err)
	}

	query := `
	INSERT INTO snapshots (document, fingerprint, descriptor_count, page_count, snapshot_json)
	VALUES (?, ?, ?, ?, ?)
	`

	result, err := sdb.db.ExecContext(ctx, query,
		document,
		snapshot.Fingerprint(),
		snapshot.Len(),
		len(snapshot.Pages()),
		string(data),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to save snapshot: %w", err)
	}

	return result.LastInsertId()
}

// LatestSnapshot returns the most recent snapshot of document. The boolean
// is false when none was saved.
func (sdb *SnapshotDB) LatestSnapshot(ctx context.Context, document string) (model.Snapshot, bool, error) {
	query := `
	SELECT snapshot_json FROM snapshots
	WHERE document = ?
	ORDER BY id DESC
	LIMIT 1
	`

	var data string
	err := sdb.db.QueryRowContext(ctx, query, document).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Snapshot{}, false, nil
	}
	if err != nil {
		return model.Snapshot{}, false, fmt.Errorf("failed to get snapshot: %w", err)
	}

	snapshot, err := model.UnmarshalSnapshot([]byte(data))
	if err != nil {
		return model.Snapshot{}, false, fmt.Errorf("failed to parse snapshot: %w", err)
	}
	return snapshot, true, nil
}

// SnapshotRecord is a stored snapshot with its metadata.
type SnapshotRecord struct {
	SnapshotMetadata

	// Snapshot is the stored arrangement.
	Snapshot model.Snapshot
}

// GetByID retrieves a snapshot by its database ID. It returns nil when the
// ID does not exist.
func (sdb *SnapshotDB) GetByID(ctx context.Context, id int64) (*SnapshotRecord, error) {
	query := `
	SELECT id, document, timestamp, fingerprint, descriptor_count, page_count, snapshot_json
	FROM snapshots
	WHERE id = ?
	`

	var (
		record    SnapshotRecord
		timestamp string
		data      string
	)
	err := sdb.db.QueryRowContext(ctx, query, id).Scan(
		&record.ID,
		&record.Document,
		&timestamp,
		&record.Fingerprint,
		&record.Descriptors,
		&record.Pages,
		&data,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get snapshot: %w", err)
	}

	record.Timestamp = parseTimestamp(timestamp)
	record.Snapshot, err = model.UnmarshalSnapshot([]byte(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse snapshot: %w", err)
	}
	return &record, nil
}

// SnapshotMetadata summarizes a stored snapshot without its content.
type SnapshotMetadata struct {
	// ID is the unique identifier of the snapshot in the database.
	ID int64

	// Document is the document key.
	Document string

	// Timestamp is when the snapshot was saved.
	Timestamp time.Time

	// Fingerprint is the snapshot's content fingerprint.
	Fingerprint string

	// Descriptors is the number of blocks.
	Descriptors int

	// Pages is the number of pages in the snapshot.
	Pages int
}

// History returns the metadata of every snapshot of document, newest first.
func (sdb *SnapshotDB) History(ctx context.Context, document string) ([]SnapshotMetadata, error) {
	query := `
	SELECT id, document, timestamp, fingerprint, descriptor_count, page_count
	FROM snapshots
	WHERE document = ?
	ORDER BY id DESC
	`

	rows, err := sdb.db.QueryContext(ctx, query, document)
	if err != nil {
		return nil, fmt.Errorf("failed to get snapshot history: %w", err)
	}
	defer rows.Close()

	var results []SnapshotMetadata
	for rows.Next() {
		var (
			meta      SnapshotMetadata
			timestamp string
		)
		if err := rows.Scan(&meta.ID, &meta.Document, &timestamp, &meta.Fingerprint, &meta.Descriptors, &meta.Pages); err != nil {
			return nil, fmt.Errorf("failed to scan metadata: %w", err)
		}
		meta.Timestamp = parseTimestamp(timestamp)
		results = append(results, meta)
	}

	return results, rows.Err()
}

// ListDocuments returns every document key with at least one snapshot.
func (sdb *SnapshotDB) ListDocuments(ctx context.Context) ([]string, error) {
	query := `
	SELECT DISTINCT document FROM snapshots
	ORDER BY document
	`

	rows, err := sdb.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer rows.Close()

	var documents []string
	for rows.Next() {
		var document string
		if err := rows.Scan(&document); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		documents = append(documents, document)
	}

	return documents, rows.Err()
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	"2006-01-02 15:04:05",     // SQLite default datetime format
	"2006-01-02T15:04:05Z",    // ISO 8601 with Z suffix
	"2006-01-02T15:04:05",     // ISO 8601 without timezone
	time.RFC3339,              // Full RFC3339 format
	time.RFC3339Nano,          // RFC3339 with nanoseconds
	"2006-01-02 15:04:05.999", // SQLite with milliseconds
}

// parseTimestamp parses a timestamp using the formats SQLite may return.
// It returns the zero time when no format matches.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
