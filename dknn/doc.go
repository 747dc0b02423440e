// Package dknn implements Deep k-Nearest Neighbors: it augments a trained
// classifier with a credibility and confidence score derived from the labels
// of the nearest training examples in several intermediate layers,
// calibrated with conformal prediction.
//
// A Model is built once over the training activations of every layer. Each
// layer gets its own neighbor index over normalized, mean-centered rows.
// Calibrate must run once on held-out data before Predict; it records the
// sorted distribution of true-label nonconformity that p-values are
// computed against.
package dknn
