package dknn

import (
	"github.com/pkg/errors"
)

// Layers is the ordered set of layer names taking part in the DkNN.
type Layers []string

// Validate checks that layers is non-empty with distinct, non-empty names.
func (l Layers) Validate() error {
	if len(l) == 0 {
		return errors.Wrap(ErrInvalidConfig, "no layers")
	}
	seen := make(map[string]bool, len(l))
	for _, name := range l {
		if name == "" {
			return errors.Wrap(ErrInvalidConfig, "empty layer name")
		}
		if seen[name] {
			return errors.Wrapf(ErrInvalidConfig, "duplicate layer %q", name)
		}
		seen[name] = true
	}
	return nil
}

// Activations maps a layer name to one activation row per example.
type Activations = map[string][][]float32

// Corpus is the labeled training data the neighbor indexes are built over.
type Corpus struct {
	Activations Activations
	Labels      []int
}

// MissingLabel is the label assigned to a neighbor slot the index could not
// fill. It coincides with class 0, so under MissingAsLabel an unfilled slot
// is indistinguishable from a class 0 neighbor.
const MissingLabel = 0

// MissingPolicy decides how unfilled neighbor slots enter nonconformity.
type MissingPolicy string

const (
	// MissingAsLabel counts unfilled slots as neighbors labeled
	// MissingLabel, both in the class histogram and in the total.
	MissingAsLabel MissingPolicy = "label"
	// MissingExcluded drops unfilled slots from the histogram and the total.
	MissingExcluded MissingPolicy = "exclude"
)

// Valid reports whether p is a known policy; empty means MissingAsLabel.
func (p MissingPolicy) Valid() bool {
	return p == "" || p == MissingAsLabel || p == MissingExcluded
}

// Neighbors holds, for one layer, the nearest training rows of every
// example, their labels and which slots the index could not fill. All three
// are examples x neighbors.
type Neighbors struct {
	Indices [][]int
	Labels  [][]int
	Missing [][]bool
}

// Len returns the number of examples.
func (n *Neighbors) Len() int { return len(n.Labels) }

// IsMissing reports whether slot of example i was left unfilled.
func (n *Neighbors) IsMissing(i, slot int) bool {
	return n.Missing != nil && n.Missing[i][slot]
}

// CheckShape verifies that every matrix is rows x k. A nil Missing means no
// slot is missing.
func (n *Neighbors) CheckShape(rows, k int) error {
	if n == nil {
		return errors.Wrap(ErrShapeMismatch, "nil neighbors")
	}
	if err := checkMatrix("indices", n.Indices, rows, k); err != nil {
		return err
	}
	if err := checkMatrix("labels", n.Labels, rows, k); err != nil {
		return err
	}
	if n.Missing == nil {
		return nil
	}
	return checkMatrix("missing", n.Missing, rows, k)
}

func checkMatrix[E any](name string, m [][]E, rows, k int) error {
	if len(m) != rows {
		return errors.Wrapf(ErrShapeMismatch, "%s has %d rows, want %d", name, len(m), rows)
	}
	for i, row := range m {
		if len(row) != k {
			return errors.Wrapf(ErrShapeMismatch, "%s row %d has %d slots, want %d", name, i, len(row), k)
		}
	}
	return nil
}

// Table is an examples x classes nonconformity matrix: entry (i, c) counts
// the neighbors of example i, over all layers, not labeled c.
type Table [][]int

// Outcome is the conformal prediction for a batch. Confidences and
// Credibilities are classes wide with only the predicted class populated.
type Outcome struct {
	Predictions   []int
	Confidences   [][]float64
	Credibilities [][]float64
	PValues       [][]float64
}
