package dknn

import (
	"database/sql"
	"strings"

	"github.com/pkg/errors"
	"github.com/viant/dknn/index"
	"github.com/viant/dknn/index/bruteforce"
	"github.com/viant/dknn/index/cover"
	"github.com/viant/dknn/index/sqlindex"
	"github.com/viant/dknn/vector"
)

// IndexKind names a neighbor index backend.
type IndexKind string

const (
	// IndexAuto picks cover for large, dense layers and brute otherwise.
	IndexAuto   IndexKind = "auto"
	IndexBrute  IndexKind = "brute"
	IndexCover  IndexKind = "cover"
	IndexSQLite IndexKind = "sqlite"
)

const (
	autoCoverMinRows            = 4000
	autoCoverMinDim             = 64
	autoCoverMinDensity float64 = 16
)

// IndexFactory creates the empty neighbor index for one layer holding rows
// training rows of dimension dim.
type IndexFactory func(layer string, rows, dim int) (index.Index, error)

// resolveKind maps auto to a concrete backend for a layer of the given size.
func (c IndexConfig) resolveKind(rows, dim int) IndexKind {
	switch c.Kind {
	case IndexBrute, IndexCover, IndexSQLite:
		return c.Kind
	}
	if rows >= autoCoverMinRows && dim >= autoCoverMinDim {
		if float64(rows)/float64(dim) >= autoCoverMinDensity {
			return IndexCover
		}
	}
	return IndexBrute
}

func parseBound(name string) (cover.BoundStrategy, bool) {
	switch strings.ToLower(name) {
	case "", "per_node", "pernode", "node":
		return cover.BoundPerNode, true
	case "level", "boundlevel":
		return cover.BoundLevel, true
	}
	return 0, false
}

// factory returns the IndexFactory described by c; db backs the sqlite kind.
// scope is embedded in sqlite table names so models sharing db never touch
// each other's tables.
func (c IndexConfig) factory(db *sql.DB, scope string) IndexFactory {
	metric, _ := vector.ParseMetric(c.Distance)
	bound, _ := parseBound(c.CoverBound)
	prefix := c.TablePrefix
	if prefix == "" {
		prefix = "knn_"
	}
	if scope != "" {
		prefix += scope + "_"
	}
	return func(layer string, rows, dim int) (index.Index, error) {
		switch kind := c.resolveKind(rows, dim); kind {
		case IndexCover:
			opts := []cover.Option{cover.WithDistance(metric), cover.WithBoundStrategy(bound), cover.WithBestFirst(c.BestFirst)}
			if c.CoverBase > 1 {
				opts = append(opts, cover.WithBase(c.CoverBase))
			}
			return cover.New(opts...), nil
		case IndexSQLite:
			if db == nil {
				return nil, errors.Wrap(ErrInvalidConfig, "sqlite index requires a database")
			}
			return sqlindex.New(db, sqlindex.TableName(prefix, layer), sqlindex.WithDistance(metric))
		default:
			return bruteforce.New(bruteforce.WithDistance(metric)), nil
		}
	}
}
