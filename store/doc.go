// Package store keeps labeled per-layer activations in SQLite. A
// SQLiteStore serves as an activation source keyed by example id, so
// activations extracted once from a classifier can back training,
// calibration and inference batches.
package store
