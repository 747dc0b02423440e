// Package index defines the neighbor index contract consumed by the DkNN
// engine: build once over preprocessed training rows, then answer batched
// kNN queries with a per-slot missing mask. Implementations in this module
// include a brute-force baseline (bruteforce), a cover tree (cover) and a
// SQLite scan (sqlindex).
package index
