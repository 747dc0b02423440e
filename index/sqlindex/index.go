package sqlindex

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/viant/dknn/index"
	"github.com/viant/dknn/vector"
)

// Index is a SQLite-backed neighbor index over one table.
type Index struct {
	db     *sql.DB
	table  string
	metric vector.Metric
	dim    int
	size   int
}

// Option configures an Index.
type Option func(*Index)

// WithDistance selects the ranking metric (Euclidean by default).
func WithDistance(m vector.Metric) Option {
	return func(i *Index) {
		if m.Valid() {
			i.metric = m
		}
	}
}

// New creates an index that owns table in db. The table is (re)created on
// Build.
func New(db *sql.DB, table string, opts ...Option) (*Index, error) {
	if db == nil {
		return nil, fmt.Errorf("sqlindex: db is nil")
	}
	if !validIdentifier(table) {
		return nil, fmt.Errorf("sqlindex: invalid table name %q", table)
	}
	i := &Index{db: db, table: table, metric: vector.Euclidean}
	for _, opt := range opts {
		opt(i)
	}
	return i, nil
}

// TableName derives a table name for a layer, replacing characters SQLite
// identifiers cannot carry unquoted.
func TableName(prefix, layer string) string {
	var b strings.Builder
	b.WriteString(prefix)
	for _, r := range layer {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}

func validIdentifier(name string) bool {
	if name == "" {
		return false
	}
	for n, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r == '_':
		case r >= '0' && r <= '9' && n > 0:
		default:
			return false
		}
	}
	return true
}

func (i *Index) function() string {
	if i.metric == vector.Cosine {
		return "knn_cosine"
	}
	return "knn_l2"
}

// Build replaces the table content with vectors in a single transaction.
func (i *Index) Build(ctx context.Context, vectors [][]float32) error {
	dim := 0
	if len(vectors) > 0 {
		dim = len(vectors[0])
	}
	for j := range vectors {
		if len(vectors[j]) != dim {
			return fmt.Errorf("sqlindex: inconsistent vector dims %d vs %d", len(vectors[j]), dim)
		}
	}
	tx, err := i.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	ddl := []string{
		fmt.Sprintf("DROP TABLE IF EXISTS %s", i.table),
		fmt.Sprintf("CREATE TABLE %s (row_idx INTEGER PRIMARY KEY, embedding BLOB NOT NULL)", i.table),
	}
	for _, stmt := range ddl {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("sqlindex: %s: %w", stmt, err)
		}
	}
	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf("INSERT INTO %s(row_idx, embedding) VALUES(?, ?)", i.table))
	if err != nil {
		return err
	}
	defer stmt.Close()
	for j, v := range vectors {
		blob, err := vector.EncodeEmbedding(v)
		if err != nil {
			return err
		}
		if _, err := stmt.ExecContext(ctx, j, blob); err != nil {
			return fmt.Errorf("sqlindex: insert row %d: %w", j, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	i.dim, i.size = dim, len(vectors)
	return nil
}

// Drop removes the index table.
func (i *Index) Drop(ctx context.Context) error {
	if _, err := i.db.ExecContext(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s", i.table)); err != nil {
		return fmt.Errorf("sqlindex: drop %s: %w", i.table, err)
	}
	i.dim, i.size = 0, 0
	return nil
}

// Table returns the name of the backing table.
func (i *Index) Table() string { return i.table }

// Len returns the number of indexed rows.
func (i *Index) Len() int { return i.size }

// FindKNNs ranks every stored row per query in SQL. Rows with an undefined
// distance (NULL) are never returned.
func (i *Index) FindKNNs(ctx context.Context, queries [][]float32, out [][]int) ([][]bool, error) {
	if len(out) != len(queries) {
		return nil, fmt.Errorf("sqlindex: output rows %d != query rows %d", len(out), len(queries))
	}
	q := fmt.Sprintf(`SELECT row_idx FROM (
    SELECT row_idx, %s(embedding, ?) AS dist FROM %s
) WHERE dist IS NOT NULL ORDER BY dist, row_idx LIMIT ?`, i.function(), i.table)
	stmt, err := i.db.PrepareContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("sqlindex: prepare: %w", err)
	}
	defer stmt.Close()

	missing := make([][]bool, len(queries))
	for n, query := range queries {
		if len(query) != i.dim {
			return nil, fmt.Errorf("sqlindex: query dim %d != index dim %d", len(query), i.dim)
		}
		k := len(out[n])
		mask := make([]bool, k)
		for s := range mask {
			mask[s] = true
		}
		blob, err := vector.EncodeEmbedding(query)
		if err != nil {
			return nil, err
		}
		rows, err := stmt.QueryContext(ctx, blob, k)
		if err != nil {
			return nil, fmt.Errorf("sqlindex: query %d: %w", n, err)
		}
		slot := 0
		for rows.Next() && slot < k {
			var row int
			if err := rows.Scan(&row); err != nil {
				rows.Close()
				return nil, err
			}
			out[n][slot] = row
			mask[slot] = false
			slot++
		}
		err = rows.Err()
		rows.Close()
		if err != nil {
			return nil, fmt.Errorf("sqlindex: query %d: %w", n, err)
		}
		missing[n] = mask
	}
	return missing, nil
}

var _ index.Index = (*Index)(nil)
