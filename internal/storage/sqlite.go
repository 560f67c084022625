package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // SQLite driver registration.

	"prayer_bot/internal/model"
	"prayer_bot/migrations"
)

const timeLayout = "2006-01-02T15:04:05Z"

// Record is a row read back from the SQLite log.
type Record struct {
	ID          int64
	Partition   string
	SubmittedAt string
	Name        string
	Request     string
}

// SQLite implements Sink backed by a SQLite database.
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at dsn and runs pending migrations.
func NewSQLite(dsn string) (*SQLite, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// :memory: databases are per connection.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	if err := migrations.Run(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLite{db: db}, nil
}

// Close closes the underlying database connection.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// EnsurePartition registers the partition if it is not known yet.
func (s *SQLite) EnsurePartition(ctx context.Context, partition string) error {
	if partition == "" {
		return fmt.Errorf("ensure partition: empty name")
	}
	now := time.Now().UTC().Format(timeLayout)
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO partitions (name, created_at) VALUES (?, ?)`,
		partition, now,
	)
	if err != nil {
		return fmt.Errorf("insert partition: %w", err)
	}
	return nil
}

// AppendRow appends a (timestamp, name, request) row to an existing partition.
func (s *SQLite) AppendRow(ctx context.Context, partition string, row []string) error {
	if len(row) != 3 {
		return fmt.Errorf("append row: want 3 columns, got %d", len(row))
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO prayer_requests (partition_name, submitted_at, name, request)
		 SELECT ?, ?, ?, ? WHERE EXISTS (SELECT 1 FROM partitions WHERE name = ?)`,
		partition, row[0], row[1], row[2], partition,
	)
	if err != nil {
		return fmt.Errorf("insert request: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("append to %q: %w", partition, model.ErrPartitionNotFound)
	}
	return nil
}

// ListPartitions returns all partition names in creation order.
func (s *SQLite) ListPartitions(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name FROM partitions ORDER BY created_at, name`)
	if err != nil {
		return nil, fmt.Errorf("query partitions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan partition: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// ListRequests returns the rows of a partition in append order.
func (s *SQLite) ListRequests(ctx context.Context, partition string) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, partition_name, submitted_at, name, request
		 FROM prayer_requests WHERE partition_name = ? ORDER BY id`, partition,
	)
	if err != nil {
		return nil, fmt.Errorf("query requests: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []Record
	for rows.Next() {
		var r Record
		if err := rows.Scan(&r.ID, &r.Partition, &r.SubmittedAt, &r.Name, &r.Request); err != nil {
			return nil, fmt.Errorf("scan request: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}
