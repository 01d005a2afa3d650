// Package store persists finished job results in a sqlite database,
// serving as the durable result backend behind bigqc job handles.
// Payloads are JSON compressed with zstd.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/klauspost/compress/zstd"
	_ "modernc.org/sqlite"

	"bigqc"
)

// Store implements bigqc.Backend on a sqlite database
type Store struct {
	db  *sql.DB
	enc *zstd.Encoder
	dec *zstd.Decoder
}

// record is the stored payload: exactly one of the two fields is set
type record struct {
	Output  *bigqc.SinglePointOutput `json:"output,omitempty"`
	Failure *bigqc.ProgramFailure    `json:"failure,omitempty"`
}

// Open opens or creates the result database at path
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", path, err)
	}
	if _, err := db.Exec(`
	CREATE TABLE IF NOT EXISTS results (
		id         TEXT PRIMARY KEY,
		success    INTEGER NOT NULL,
		payload    BLOB NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);`); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: migrate: %w", err)
	}
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		db.Close()
		return nil, err
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db, enc: enc, dec: dec}, nil
}

// Put stores the result for job id, replacing any earlier record
func (s *Store) Put(ctx context.Context, id string, out *bigqc.SinglePointOutput, fail *bigqc.ProgramFailure) error {
	blob, err := json.Marshal(record{Output: out, Failure: fail})
	if err != nil {
		return fmt.Errorf("store: encode %s: %w", id, err)
	}
	success := 0
	if fail == nil {
		success = 1
	}
	_, err = s.db.ExecContext(ctx, `
	INSERT INTO results (id, success, payload) VALUES (?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET success = excluded.success, payload = excluded.payload`,
		id, success, s.enc.EncodeAll(blob, nil))
	if err != nil {
		return fmt.Errorf("store: put %s: %w", id, err)
	}
	return nil
}

// Get loads the result for job id. A missing record, including one
// removed by Delete, reports bigqc.ErrNoResult.
func (s *Store) Get(ctx context.Context, id string) (*bigqc.SinglePointOutput, *bigqc.ProgramFailure, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM results WHERE id = ?`, id).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil, fmt.Errorf("%w: %s", bigqc.ErrNoResult, id)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("store: get %s: %w", id, err)
	}
	blob, err := s.dec.DecodeAll(payload, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("store: decompress %s: %w", id, err)
	}
	var rec record
	if err := json.Unmarshal(blob, &rec); err != nil {
		return nil, nil, fmt.Errorf("store: decode %s: %w", id, err)
	}
	return rec.Output, rec.Failure, nil
}

// Delete removes the stored result for job id, if any
func (s *Store) Delete(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM results WHERE id = ?`, id); err != nil {
		return fmt.Errorf("store: delete %s: %w", id, err)
	}
	return nil
}

// Close releases the database and the compressor state
func (s *Store) Close() error {
	s.enc.Close()
	s.dec.Close()
	return s.db.Close()
}
