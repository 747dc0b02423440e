package vector

import (
	"math"

	"github.com/viant/vec/search"
)

// Metric names a distance used to rank neighbors.
type Metric string

const (
	// Euclidean ranks by L2 distance. Over normalized, centered rows this is
	// the metric the DkNN neighbor search is defined on.
	Euclidean Metric = "euclidean"
	// Cosine ranks by 1 - cosine similarity.
	Cosine Metric = "cosine"
)

// ParseMetric resolves a metric name, accepting the short aliases used in
// configuration files. An empty name resolves to Euclidean.
func ParseMetric(name string) (Metric, bool) {
	switch name {
	case "", "l2", "euclidean":
		return Euclidean, true
	case "cos", "cosine":
		return Cosine, true
	}
	return "", false
}

// Valid reports whether m is a known metric.
func (m Metric) Valid() bool {
	return m == Euclidean || m == Cosine
}

// Distance returns the distance between a and b. Cosine distance involving a
// zero-magnitude vector is NaN; callers skip such candidates.
func (m Metric) Distance(a, b []float32) float32 {
	if m == Cosine {
		return m.DistanceWithMagnitude(a, Magnitude(a), b, Magnitude(b))
	}
	return search.Float32s(a).EuclideanDistance(b)
}

// DistanceWithMagnitude is Distance with precomputed magnitudes, which only
// the cosine metric uses.
func (m Metric) DistanceWithMagnitude(a []float32, am float32, b []float32, bm float32) float32 {
	if m != Cosine {
		return search.Float32s(a).EuclideanDistance(b)
	}
	if am == 0 || bm == 0 {
		return float32(math.NaN())
	}
	return search.Float32s(a).CosineDistanceWithMagnitude(b, am, bm)
}

// Magnitude returns the L2 norm of v.
func Magnitude(v []float32) float32 {
	if len(v) == 0 {
		return 0
	}
	return search.Float32s(v).Magnitude()
}
