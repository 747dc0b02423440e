// Package sqlindex provides a neighbor index that stores preprocessed
// training rows in a SQLite table and ranks them with the knn_l2 or
// knn_cosine SQL functions registered by the engine package. The database
// must be opened with engine.Open.
package sqlindex
