package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/viant/dknn/vector"
)

// Unlabeled marks an example without a known class.
const Unlabeled = -1

// Example is one input with its activation row per layer.
type Example struct {
	ID          string
	Label       int
	Activations map[string][]float32
}

// SQLiteStore stores examples and their activations.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a store and ensures its schema exists.
func NewSQLiteStore(ctx context.Context, db *sql.DB) (*SQLiteStore, error) {
	if db == nil {
		return nil, fmt.Errorf("store: db is nil")
	}
	if err := EnsureSchema(ctx, db); err != nil {
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

// Put upserts examples and replaces their activations in one transaction.
func (s *SQLiteStore) Put(ctx context.Context, examples []Example) error {
	if len(examples) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	exStmt, err := tx.PrepareContext(ctx, `INSERT INTO examples(id, label) VALUES(?, ?)
ON CONFLICT(id) DO UPDATE SET label = excluded.label`)
	if err != nil {
		return err
	}
	defer exStmt.Close()
	delStmt, err := tx.PrepareContext(ctx, `DELETE FROM activations WHERE id = ?`)
	if err != nil {
		return err
	}
	defer delStmt.Close()
	actStmt, err := tx.PrepareContext(ctx, `INSERT INTO activations(id, layer, embedding) VALUES(?, ?, ?)`)
	if err != nil {
		return err
	}
	defer actStmt.Close()

	for _, e := range examples {
		if e.ID == "" {
			return fmt.Errorf("store: Example.ID must be set")
		}
		if len(e.Activations) == 0 {
			return fmt.Errorf("store: example %q has no activations", e.ID)
		}
		if _, err := exStmt.ExecContext(ctx, e.ID, e.Label); err != nil {
			return err
		}
		if _, err := delStmt.ExecContext(ctx, e.ID); err != nil {
			return err
		}
		for layer, row := range e.Activations {
			blob, err := vector.EncodeEmbedding(row)
			if err != nil {
				return err
			}
			if len(blob) == 0 {
				return fmt.Errorf("store: example %q layer %q has an empty activation", e.ID, layer)
			}
			if _, err := actStmt.ExecContext(ctx, e.ID, layer, blob); err != nil {
				return err
			}
		}
	}
	return tx.Commit()
}

// IDs returns every stored example id in insertion order.
func (s *SQLiteStore) IDs(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM examples ORDER BY rowid`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Labels returns the label of every id, in order. Unknown ids are an error.
func (s *SQLiteStore) Labels(ctx context.Context, ids []string) ([]int, error) {
	labels := make([]int, len(ids))
	for i, id := range ids {
		if err := s.db.QueryRowContext(ctx, `SELECT label FROM examples WHERE id = ?`, id).Scan(&labels[i]); err != nil {
			if err == sql.ErrNoRows {
				return nil, fmt.Errorf("store: unknown example %q", id)
			}
			return nil, err
		}
	}
	return labels, nil
}

// Activations returns, per layer, one row per id in the order of ids. Every
// id must carry the same set of layers with a consistent dimension.
func (s *SQLiteStore) Activations(ctx context.Context, ids []string) (map[string][][]float32, error) {
	out := map[string][][]float32{}
	for i, id := range ids {
		layers, err := s.example(ctx, id)
		if err != nil {
			return nil, err
		}
		if len(layers) == 0 {
			return nil, fmt.Errorf("store: unknown example %q", id)
		}
		if i > 0 && len(layers) != len(out) {
			return nil, fmt.Errorf("store: example %q has %d layers, want %d", id, len(layers), len(out))
		}
		for layer, row := range layers {
			rows, ok := out[layer]
			if i > 0 && !ok {
				return nil, fmt.Errorf("store: example %q has unexpected layer %q", id, layer)
			}
			if ok && len(rows[0]) != len(row) {
				return nil, fmt.Errorf("store: example %q layer %q dim %d, want %d", id, layer, len(row), len(rows[0]))
			}
			if !ok {
				rows = make([][]float32, 0, len(ids))
			}
			out[layer] = append(rows, row)
		}
	}
	return out, nil
}

func (s *SQLiteStore) example(ctx context.Context, id string) (map[string][]float32, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT layer, embedding FROM activations WHERE id = ?`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	layers := map[string][]float32{}
	for rows.Next() {
		var layer string
		var blob []byte
		if err := rows.Scan(&layer, &blob); err != nil {
			return nil, err
		}
		row, err := vector.DecodeEmbedding(blob)
		if err != nil {
			return nil, fmt.Errorf("store: example %q layer %q: %w", id, layer, err)
		}
		layers[layer] = row
	}
	return layers, rows.Err()
}

// Remove deletes an example and its activations.
func (s *SQLiteStore) Remove(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("store: Remove called with empty id")
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM activations WHERE id = ?`, id); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `DELETE FROM examples WHERE id = ?`, id)
	return err
}
