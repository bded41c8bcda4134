package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/ai4bd/brick/internal/graph"
	"github.com/ai4bd/brick/internal/ir"
)

// Compilation is one recorded compile run.
type Compilation struct {
	ID            string   `json:"id"`
	Seq           int64    `json:"seq"`
	SnapshotHash  string   `json:"snapshotHash"`
	PropertyCount int      `json:"propertyCount"`
	Source        string   `json:"source"`
	Advisories    []string `json:"advisories,omitempty"`
}

// execer is satisfied by both *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// WriteSnapshot stores g under its content hash.
// Uses ON CONFLICT(hash) DO NOTHING for idempotency; inserted reports
// whether a new row was written.
func (s *Store) WriteSnapshot(ctx context.Context, g *graph.Graph) (inserted bool, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("write snapshot: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	seq, err := nextSeq(ctx, tx)
	if err != nil {
		return false, fmt.Errorf("write snapshot: %w", err)
	}
	inserted, err = writeSnapshot(ctx, tx, g, seq)
	if err != nil {
		return false, err
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("write snapshot: commit: %w", err)
	}
	return inserted, nil
}

// RecordCompilation stores g (if new) and appends a compilation row
// pointing at it. The run gets a fresh UUID and the next logical seq.
func (s *Store) RecordCompilation(ctx context.Context, g *graph.Graph, source string, advisories []string) (Compilation, error) {
	advJSON, err := marshalAdvisories(advisories)
	if err != nil {
		return Compilation{}, fmt.Errorf("record compilation: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Compilation{}, fmt.Errorf("record compilation: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	seq, err := nextSeq(ctx, tx)
	if err != nil {
		return Compilation{}, fmt.Errorf("record compilation: %w", err)
	}
	if _, err := writeSnapshot(ctx, tx, g, seq); err != nil {
		return Compilation{}, err
	}

	c := Compilation{
		ID:            uuid.NewString(),
		Seq:           seq,
		SnapshotHash:  g.Hash(),
		PropertyCount: g.Len(),
		Source:        source,
		Advisories:    advisories,
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO compilations (id, snapshot_hash, seq, source, advisories)
		VALUES (?, ?, ?, ?, ?)
	`, c.ID, c.SnapshotHash, c.Seq, c.Source, advJSON)
	if err != nil {
		return Compilation{}, fmt.Errorf("record compilation: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return Compilation{}, fmt.Errorf("record compilation: commit: %w", err)
	}
	return c, nil
}

func writeSnapshot(ctx context.Context, db execer, g *graph.Graph, seq int64) (bool, error) {
	docJSON, err := marshalDocument(g.Document())
	if err != nil {
		return false, fmt.Errorf("write snapshot: %w", err)
	}

	result, err := db.ExecContext(ctx, `
		INSERT INTO snapshots
		(hash, ir_version, compiler_version, property_count, document, seq)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(hash) DO NOTHING
	`,
		g.Hash(),
		ir.IRVersion,
		ir.CompilerVersion,
		g.Len(),
		docJSON,
		seq,
	)
	if err != nil {
		return false, fmt.Errorf("write snapshot: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("write snapshot: rows affected: %w", err)
	}
	return rows > 0, nil
}

// nextSeq returns the next value of the archive's logical clock. Both
// tables share one clock.
func nextSeq(ctx context.Context, db execer) (int64, error) {
	var seq int64
	err := db.QueryRowContext(ctx, `
		SELECT COALESCE(MAX(seq), 0) + 1 FROM (
			SELECT seq FROM snapshots
			UNION ALL
			SELECT seq FROM compilations
		)
	`).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("next seq: %w", err)
	}
	return seq, nil
}
