// Package vector holds the numeric helpers shared by the neighbor indexes and
// the DkNN engine:
//   - Preprocessor: per-layer L2 normalization and mean centering
//   - Metric: Euclidean and cosine distances backed by github.com/viant/vec
//   - Embedding encoding (BLOB) used by the SQLite backed packages
package vector
