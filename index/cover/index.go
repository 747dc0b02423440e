package cover

import (
	"context"
	"errors"
	"fmt"

	"github.com/viant/dknn/index"
	"github.com/viant/dknn/internal/cover/tree"
	"github.com/viant/dknn/vector"
)

// BoundStrategy re-exports the tree pruning strategies.
type BoundStrategy = tree.BoundStrategy

const (
	BoundPerNode = tree.BoundPerNode
	BoundLevel   = tree.BoundLevel
)

const defaultBase = 1.3

// Index implements index.Index over a cover tree.
type Index struct {
	tree      *tree.Tree
	base      float32
	bound     BoundStrategy
	metric    vector.Metric
	bestFirst bool
	size      int
	dim       int
}

// Option configures an Index.
type Option func(*Index)

// WithBase sets the cover tree base (> 1).
func WithBase(base float32) Option {
	return func(i *Index) {
		if base > 1 {
			i.base = base
		}
	}
}

// WithBoundStrategy selects the pruning bound.
func WithBoundStrategy(s BoundStrategy) Option {
	return func(i *Index) { i.bound = s }
}

// WithDistance selects the ranking metric (Euclidean by default).
func WithDistance(m vector.Metric) Option {
	return func(i *Index) {
		if m.Valid() {
			i.metric = m
		}
	}
}

// WithBestFirst switches queries to the best-first traversal.
func WithBestFirst(enabled bool) Option {
	return func(i *Index) { i.bestFirst = enabled }
}

// New creates an empty cover index.
func New(opts ...Option) *Index {
	i := &Index{base: defaultBase, bound: BoundPerNode, metric: vector.Euclidean}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

func (i *Index) distanceFunction() tree.DistanceFunction {
	if i.metric == vector.Cosine {
		return tree.DistanceFunctionCosine
	}
	return tree.DistanceFunctionEuclidean
}

// Build inserts every row into a fresh tree. Under the cosine metric zero
// rows have no defined distance and are left out.
func (i *Index) Build(ctx context.Context, vectors [][]float32) error {
	t := tree.NewTree(i.base, i.distanceFunction())
	t.SetBoundStrategy(i.bound)
	dim := 0
	if len(vectors) > 0 {
		dim = len(vectors[0])
	}
	for j, v := range vectors {
		if len(v) != dim {
			return fmt.Errorf("cover: inconsistent vector dims %d vs %d", len(v), dim)
		}
		if j%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		if i.metric == vector.Cosine && vector.Magnitude(v) == 0 {
			continue
		}
		t.Insert(tree.NewPoint(int32(j), v...))
	}
	i.tree, i.size, i.dim = t, len(vectors), dim
	return nil
}

// Len returns the number of rows passed to Build.
func (i *Index) Len() int { return i.size }

// Query returns up to k rows ordered by increasing distance.
func (i *Index) Query(query []float32, k int) ([]int, []float64, error) {
	if i.tree == nil {
		return nil, nil, errors.New("cover: index not built")
	}
	if i.size == 0 {
		return nil, nil, nil
	}
	if len(query) != i.dim {
		return nil, nil, fmt.Errorf("cover: query dim %d != index dim %d", len(query), i.dim)
	}
	if i.metric == vector.Cosine && vector.Magnitude(query) == 0 {
		return nil, nil, nil
	}
	point := tree.NewPoint(-1, query...)
	var found []*tree.Neighbor
	if i.bestFirst {
		found = i.tree.KNearestNeighborsBestFirst(point, k)
	} else {
		found = i.tree.KNearestNeighbors(point, k)
	}
	rows, dists := tree.Rows(found)
	return rows, dists, nil
}

// FindKNNs answers a batch of queries.
func (i *Index) FindKNNs(ctx context.Context, queries [][]float32, out [][]int) ([][]bool, error) {
	return index.FindKNNs(ctx, i, i.size, queries, out)
}

var _ index.Index = (*Index)(nil)
