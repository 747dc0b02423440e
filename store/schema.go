package store

import (
	"context"
	"database/sql"
)

const (
	examplesSchema = `
CREATE TABLE IF NOT EXISTS examples (
    id    TEXT PRIMARY KEY,
    label INTEGER NOT NULL DEFAULT -1
);`
	activationsSchema = `
CREATE TABLE IF NOT EXISTS activations (
    id        TEXT NOT NULL REFERENCES examples(id) ON DELETE CASCADE,
    layer     TEXT NOT NULL,
    embedding BLOB NOT NULL,
    PRIMARY KEY(id, layer)
);`
)

// EnsureSchema creates the examples and activations tables if they do not
// exist.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for _, ddl := range []string{examplesSchema, activationsSchema} {
		if _, err := db.ExecContext(ctx, ddl); err != nil {
			return err
		}
	}
	return nil
}
