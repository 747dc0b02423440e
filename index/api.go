package index

import "context"

// Index is a nearest-neighbor search structure built once over the
// preprocessed training rows of one layer and queried many times.
// Neighbors are identified by their 0-based training row.
type Index interface {
	// Build constructs the index over vectors; row i is training example i.
	// Vectors must share one dimension.
	Build(ctx context.Context, vectors [][]float32) error

	// FindKNNs fills out[i] (len(out[i]) == k) with the training rows
	// nearest to queries[i], closest first, and returns a mask of the same
	// shape marking slots the index could not fill. Masked slots in out are
	// left untouched.
	FindKNNs(ctx context.Context, queries [][]float32, out [][]int) (missing [][]bool, err error)

	// Len returns the number of indexed training rows.
	Len() int
}

// Querier answers a single kNN query with up to k training rows ordered by
// increasing distance.
type Querier interface {
	Query(query []float32, k int) (rows []int, distances []float64, err error)
}
