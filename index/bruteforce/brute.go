package bruteforce

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/viant/dknn/index"
	"github.com/viant/dknn/vector"
)

// Index is a brute-force neighbor index.
type Index struct {
	vecs   [][]float32
	dim    int
	mags   []float32
	metric vector.Metric
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

// New creates an empty index.
func New(opts ...Option) *Index {
	i := &Index{metric: vector.Euclidean}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Build loads vectors and precomputes magnitudes.
func (i *Index) Build(_ context.Context, vectors [][]float32) error {
	if i.metric == "" {
		i.metric = vector.Euclidean
	}
	if len(vectors) == 0 {
		i.vecs, i.mags, i.dim = nil, nil, 0
		return nil
	}
	dim := len(vectors[0])
	for j := range vectors {
		if len(vectors[j]) != dim {
			return fmt.Errorf("bruteforce: inconsistent vector dims %d vs %d", len(vectors[j]), dim)
		}
	}
	mags := make([]float32, len(vectors))
	for j := range vectors {
		mags[j] = vector.Magnitude(vectors[j])
	}
	i.vecs = append([][]float32(nil), vectors...)
	i.dim = dim
	i.mags = mags
	return nil
}

// Len returns the number of indexed rows.
func (i *Index) Len() int { return len(i.vecs) }

// Query returns the k nearest rows ordered by increasing distance; ties
// resolve to the lower row. Rows whose distance is undefined (cosine with a
// zero vector) are skipped.
func (i *Index) Query(query []float32, k int) ([]int, []float64, error) {
	if i.dim == 0 || len(i.vecs) == 0 {
		return nil, nil, nil
	}
	if len(query) != i.dim {
		return nil, nil, fmt.Errorf("bruteforce: query dim %d != index dim %d", len(query), i.dim)
	}
	qm := vector.Magnitude(query)
	type scored struct {
		idx  int
		dist float64
	}
	scoreds := make([]scored, 0, len(i.vecs))
	for j := range i.vecs {
		d := float64(i.metric.DistanceWithMagnitude(query, qm, i.vecs[j], i.mags[j]))
		if math.IsNaN(d) {
			continue
		}
		scoreds = append(scoreds, scored{idx: j, dist: d})
	}
	sort.Slice(scoreds, func(a, b int) bool {
		if scoreds[a].dist != scoreds[b].dist {
			return scoreds[a].dist < scoreds[b].dist
		}
		return scoreds[a].idx < scoreds[b].idx
	})
	if k <= 0 || k > len(scoreds) {
		k = len(scoreds)
	}
	rows := make([]int, k)
	dists := make([]float64, k)
	for n := 0; n < k; n++ {
		rows[n] = scoreds[n].idx
		dists[n] = scoreds[n].dist
	}
	return rows, dists, nil
}

// FindKNNs answers a batch of queries.
func (i *Index) FindKNNs(ctx context.Context, queries [][]float32, out [][]int) ([][]bool, error) {
	return index.FindKNNs(ctx, i, len(i.vecs), queries, out)
}

var _ index.Index = (*Index)(nil)
