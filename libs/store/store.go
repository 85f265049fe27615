package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// ErrRecordNotFound is returned when no archived call exists for an id.
var ErrRecordNotFound = errors.New("call record not found")

// CallRecord is one archived call: immutable once written.
type CallRecord struct {
	ID           string
	CustomerName string
	PhoneNumber  string
	StartedAt    time.Time
	EndedAt      time.Time
	Turns        []TurnRecord
}

// TurnRecord is one archived utterance.
type TurnRecord struct {
	Speaker string
	Text    string
	At      time.Time
}

type Store struct {
	DB *sql.DB
}

func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	s := &Store{DB: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error {
	if s.DB == nil {
		return nil
	}
	return s.DB.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS calls (
			id TEXT PRIMARY KEY,
			customer_name TEXT,
			phone_number TEXT,
			started_at INTEGER,
			ended_at INTEGER
		);`,
		`CREATE TABLE IF NOT EXISTS turns (
			call_id TEXT,
			seq INTEGER,
			speaker TEXT,
			text TEXT,
			at INTEGER,
			PRIMARY KEY (call_id, seq)
		);`,
	}
	for _, q := range stmts {
		if _, err := s.DB.Exec(q); err != nil {
			return err
		}
	}
	return nil
}

// ArchiveCall writes a finished call and its transcript in one transaction.
// Archiving the same call twice is a no-op (first write wins).
func (s *Store) ArchiveCall(ctx context.Context, rec CallRecord) error {
	if rec.ID == "" {
		return errors.New("call id required")
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	res, err := tx.ExecContext(ctx,
		`INSERT OR IGNORE INTO calls(id, customer_name, phone_number, started_at, ended_at) VALUES(?,?,?,?,?)`,
		rec.ID, rec.CustomerName, rec.PhoneNumber, rec.StartedAt.UnixMilli(), rec.EndedAt.UnixMilli())
	if err != nil {
		tx.Rollback()
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// already archived
		tx.Rollback()
		return nil
	}

	for i, t := range rec.Turns {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO turns(call_id, seq, speaker, text, at) VALUES(?,?,?,?,?)`,
			rec.ID, i, t.Speaker, t.Text, t.At.UnixMilli()); err != nil {
			tx.Rollback()
			return err
		}
	}

	return tx.Commit()
}

// GetCallRecord loads an archived call with its transcript in turn order.
func (s *Store) GetCallRecord(ctx context.Context, callID string) (CallRecord, error) {
	var (
		rec       CallRecord
		startedAt int64
		endedAt   int64
	)
	row := s.DB.QueryRowContext(ctx,
		`SELECT id, customer_name, phone_number, started_at, ended_at FROM calls WHERE id = ?`, callID)
	if err := row.Scan(&rec.ID, &rec.CustomerName, &rec.PhoneNumber, &startedAt, &endedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return CallRecord{}, ErrRecordNotFound
		}
		return CallRecord{}, fmt.Errorf("query call: %w", err)
	}
	rec.StartedAt = time.UnixMilli(startedAt)
	rec.EndedAt = time.UnixMilli(endedAt)

	rows, err := s.DB.QueryContext(ctx,
		`SELECT speaker, text, at FROM turns WHERE call_id = ? ORDER BY seq`, callID)
	if err != nil {
		return CallRecord{}, fmt.Errorf("query turns: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			t  TurnRecord
			at int64
		)
		if err := rows.Scan(&t.Speaker, &t.Text, &at); err != nil {
			return CallRecord{}, fmt.Errorf("scan turn: %w", err)
		}
		t.At = time.UnixMilli(at)
		rec.Turns = append(rec.Turns, t)
	}
	return rec, rows.Err()
}
