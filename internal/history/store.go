package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ziadkadry99/netsentry/internal/db"
	"github.com/ziadkadry99/netsentry/internal/scan"
)

// ErrNotFound is returned by GetByID for an unknown id.
var ErrNotFound = errors.New("scan record not found")

// Store persists scan records in the scan_history table.
type Store struct {
	db  *db.DB
	now func() time.Time
}

// NewStore creates a Store backed by the given database.
func NewStore(database *db.DB) *Store {
	return &Store{db: database, now: time.Now}
}

// Record stores the outcome of a scan and returns the new record.
func (s *Store) Record(ctx context.Context, res *scan.Result) (*Record, error) {
	if res == nil {
		return nil, fmt.Errorf("recording scan: nil result")
	}

	rec := &Record{
		ID:            uuid.New().String(),
		Timestamp:     s.now().UTC().Truncate(time.Second),
		Status:        res.Status,
		Anomalies:     res.Anomalies,
		Message:       res.Message,
		Distribution:  res.Distribution,
		TrafficPoints: len(res.TrafficData),
	}

	dist, err := rec.Distribution.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("marshalling distribution: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO scan_history (
			id, timestamp, status, anomalies, message, distribution, traffic_points
		) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.ID,
		rec.Timestamp.Format(time.DateTime),
		rec.Status,
		rec.Anomalies,
		rec.Message,
		string(dist),
		rec.TrafficPoints,
	)
	if err != nil {
		return nil, fmt.Errorf("inserting scan record: %w", err)
	}
	return rec, nil
}

// GetByID retrieves a single scan record.
func (s *Store) GetByID(ctx context.Context, id string) (*Record, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, timestamp, status, anomalies, message, distribution, traffic_points
		FROM scan_history WHERE id = ?`, id)

	rec, err := scanInto(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return rec, err
}

// Filter controls which records List returns.
type Filter struct {
	Status       string
	MinAnomalies int
	Since        *time.Time
	Until        *time.Time
	Limit        int
	Offset       int
}

// List returns matching records, newest first.
func (s *Store) List(ctx context.Context, filter Filter) ([]Record, error) {
	var (
		clauses []string
		args    []any
	)

	if filter.Status != "" {
		clauses = append(clauses, "status = ?")
		args = append(args, filter.Status)
	}
	if filter.MinAnomalies > 0 {
		clauses = append(clauses, "anomalies >= ?")
		args = append(args, filter.MinAnomalies)
	}
	if filter.Since != nil {
		clauses = append(clauses, "timestamp >= ?")
		args = append(args, filter.Since.UTC().Format(time.DateTime))
	}
	if filter.Until != nil {
		clauses = append(clauses, "timestamp <= ?")
		args = append(args, filter.Until.UTC().Format(time.DateTime))
	}

	query := "SELECT id, timestamp, status, anomalies, message, distribution, traffic_points FROM scan_history"
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY timestamp DESC, rowid DESC"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	} else if filter.Offset > 0 {
		query += " LIMIT -1"
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET %d", filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying scan history: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		rec, err := scanInto(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}
	return records, rows.Err()
}

// DeleteBefore removes all records older than the given time.
// Returns the number of deleted rows.
func (s *Store) DeleteBefore(ctx context.Context, before time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM scan_history WHERE timestamp < ?",
		before.UTC().Format(time.DateTime),
	)
	if err != nil {
		return 0, fmt.Errorf("deleting old scan records: %w", err)
	}
	return res.RowsAffected()
}

// rowScanner is implemented by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanInto(sc rowScanner) (*Record, error) {
	var (
		rec  Record
		ts   string
		dist string
	)

	err := sc.Scan(&rec.ID, &ts, &rec.Status, &rec.Anomalies, &rec.Message, &dist, &rec.TrafficPoints)
	if err != nil {
		return nil, err
	}

	if t, parseErr := time.Parse(time.DateTime, ts); parseErr == nil {
		rec.Timestamp = t
	} else if t, parseErr := time.Parse(time.RFC3339, ts); parseErr == nil {
		rec.Timestamp = t
	}

	rec.Distribution = &scan.Distribution{}
	if err := rec.Distribution.UnmarshalJSON([]byte(dist)); err != nil {
		rec.Distribution = nil
	}
	return &rec, nil
}
