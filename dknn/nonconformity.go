package dknn

import (
	"github.com/pkg/errors"
)

// Scorer turns per-layer neighbor labels into a nonconformity Table.
type Scorer struct {
	Layers    Layers
	Classes   int
	Neighbors int
	Missing   MissingPolicy
}

// Score returns, for every example and candidate class c, the number of
// neighbors over all layers whose label differs from c.
//
// Labels outside [0, Classes), negative ones included, are tolerated: they
// never match a class but still count toward the total. Under MissingExcluded unfilled slots are skipped entirely.
func (s Scorer) Score(neighbors map[string]*Neighbors) (Table, error) {
	if len(s.Layers) == 0 {
		return nil, errors.Wrap(ErrShapeMismatch, "no layers to score")
	}
	first, ok := neighbors[s.Layers[0]]
	if !ok || first == nil {
		return nil, errors.Wrapf(ErrShapeMismatch, "neighbors missing layer %q", s.Layers[0])
	}
	n := first.Len()
	for _, name := range s.Layers {
		nb, ok := neighbors[name]
		if !ok {
			return nil, errors.Wrapf(ErrShapeMismatch, "neighbors missing layer %q", name)
		}
		if err := shapeOf(nb, n, s.Neighbors); err != nil {
			return nil, errors.WithMessagef(err, "layer %q", name)
		}
	}

	exclude := s.Missing == MissingExcluded
	table := make(Table, n)
	inClass := make([]int, s.Classes)
	for i := 0; i < n; i++ {
		for c := range inClass {
			inClass[c] = 0
		}
		total := 0
		for _, name := range s.Layers {
			nb := neighbors[name]
			for slot, label := range nb.Labels[i] {
				if exclude && nb.IsMissing(i, slot) {
					continue
				}
				total++
				if label >= 0 && label < s.Classes {
					inClass[label]++
				}
			}
		}
		row := make([]int, s.Classes)
		for c := range row {
			row[c] = total - inClass[c]
		}
		table[i] = row
	}
	return table, nil
}

// shapeOf checks labels and the missing mask; indices are not needed to
// score and may be omitted by callers building Neighbors by hand.
func shapeOf(nb *Neighbors, rows, k int) error {
	if nb == nil {
		return errors.Wrap(ErrShapeMismatch, "nil neighbors")
	}
	if err := checkMatrix("labels", nb.Labels, rows, k); err != nil {
		return err
	}
	if nb.Missing == nil {
		return nil
	}
	return checkMatrix("missing", nb.Missing, rows, k)
}
