package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ai4bd/brick/internal/graph"
)

// ReadSnapshot loads the snapshot stored under hash and rebuilds its
// Graph. Returns ErrNotFound if no such snapshot exists.
func (s *Store) ReadSnapshot(ctx context.Context, hash string) (*graph.Graph, error) {
	var data string
	err := s.db.QueryRowContext(ctx,
		"SELECT document FROM snapshots WHERE hash = ?", hash,
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("read snapshot %s: %w", hash, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("read snapshot %s: %w", hash, err)
	}

	doc, err := unmarshalDocument(data)
	if err != nil {
		return nil, fmt.Errorf("read snapshot %s: %w", hash, err)
	}
	if doc.Hash != hash {
		return nil, fmt.Errorf("read snapshot %s: document carries hash %s", hash, doc.Hash)
	}
	g, err := graph.FromDocument(doc)
	if err != nil {
		return nil, fmt.Errorf("read snapshot %s: %w", hash, err)
	}
	return g, nil
}

const compilationColumns = `
	c.id, c.seq, c.snapshot_hash, s.property_count, c.source, c.advisories
`

func scanCompilation(row interface{ Scan(...any) error }) (Compilation, error) {
	var (
		c       Compilation
		advJSON string
	)
	if err := row.Scan(&c.ID, &c.Seq, &c.SnapshotHash, &c.PropertyCount, &c.Source, &advJSON); err != nil {
		return Compilation{}, err
	}
	adv, err := unmarshalAdvisories(advJSON)
	if err != nil {
		return Compilation{}, err
	}
	c.Advisories = adv
	return c, nil
}

// ListCompilations returns every recorded compilation in logical order.
func (s *Store) ListCompilations(ctx context.Context) ([]Compilation, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT`+compilationColumns+`
		FROM compilations c
		JOIN snapshots s ON s.hash = c.snapshot_hash
		ORDER BY c.seq ASC, c.id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list compilations: %w", err)
	}
	defer rows.Close()

	var out []Compilation
	for rows.Next() {
		c, err := scanCompilation(rows)
		if err != nil {
			return nil, fmt.Errorf("list compilations: scan: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list compilations: %w", err)
	}
	return out, nil
}

// LatestCompilation returns the compilation with the highest seq.
// Returns ErrNotFound on an empty archive.
func (s *Store) LatestCompilation(ctx context.Context) (Compilation, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT`+compilationColumns+`
		FROM compilations c
		JOIN snapshots s ON s.hash = c.snapshot_hash
		ORDER BY c.seq DESC
		LIMIT 1
	`)
	c, err := scanCompilation(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Compilation{}, fmt.Errorf("latest compilation: %w", ErrNotFound)
	}
	if err != nil {
		return Compilation{}, fmt.Errorf("latest compilation: %w", err)
	}
	return c, nil
}

// LatestSnapshot returns the graph produced by the most recent compilation.
func (s *Store) LatestSnapshot(ctx context.Context) (*graph.Graph, Compilation, error) {
	c, err := s.LatestCompilation(ctx)
	if err != nil {
		return nil, Compilation{}, err
	}
	g, err := s.ReadSnapshot(ctx, c.SnapshotHash)
	if err != nil {
		return nil, Compilation{}, err
	}
	return g, c, nil
}
