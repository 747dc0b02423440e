package dknn

import (
	"context"

	"github.com/pkg/errors"
	"github.com/viant/dknn/index"
	"golang.org/x/sync/errgroup"
	"k8s.io/klog/v2"
)

// FindTrainNeighbors returns, per layer, the Neighbors nearest training rows
// of every activation row together with their training labels.
//
// Rows are normalized and centered exactly as the training rows were before
// indexing; acts is not modified. Slots the index cannot fill keep index 0
// and label MissingLabel and are flagged in Neighbors.Missing. An index
// answering with a mask of the wrong width fails with ErrShapeMismatch; any
// other failure wraps ErrIndexQuery. No partial result is returned.
func (m *Model[T]) FindTrainNeighbors(ctx context.Context, acts Activations) (map[string]*Neighbors, error) {
	results := make([]*Neighbors, len(m.cfg.Layers))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(m.cfg.parallelism())
	for i, name := range m.cfg.Layers {
		g.Go(func() error {
			n, err := m.lookupLayer(gctx, name, acts)
			if err != nil {
				return err
			}
			results[i] = n
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	out := make(map[string]*Neighbors, len(results))
	for i, name := range m.cfg.Layers {
		out[name] = results[i]
	}
	return out, nil
}

func (m *Model[T]) lookupLayer(ctx context.Context, name string, acts Activations) (*Neighbors, error) {
	l, ok := m.layers[name]
	if !ok {
		return nil, errors.Wrapf(ErrIndexQuery, "no index for layer %q", name)
	}
	rows, ok := acts[name]
	if !ok {
		return nil, errors.Wrapf(ErrIndexQuery, "activations missing layer %q", name)
	}
	queries, err := l.pre.Apply(rows)
	if err != nil {
		return nil, errors.Wrapf(ErrIndexQuery, "layer %q: %v", name, err)
	}
	k := m.cfg.Neighbors
	found := index.NewBuffer(len(queries), k)
	missing, err := l.index.FindKNNs(ctx, queries, found)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, errors.Wrapf(ctxErr, "layer %q", name)
		}
		return nil, errors.Wrapf(ErrIndexQuery, "layer %q: %v", name, err)
	}
	if len(missing) != len(queries) {
		return nil, errors.Wrapf(ErrIndexQuery, "layer %q: index returned %d masks for %d queries", name, len(missing), len(queries))
	}

	size := len(m.labels)
	result := &Neighbors{
		Indices: index.NewBuffer(len(queries), k),
		Labels:  index.NewBuffer(len(queries), k),
		Missing: make([][]bool, len(queries)),
	}
	for i := range queries {
		if len(missing[i]) != k || len(found[i]) != k {
			return nil, errors.Wrapf(ErrShapeMismatch, "layer %q: mask row %d has %d slots, want %d", name, i, len(missing[i]), k)
		}
		mask := make([]bool, k)
		for slot := 0; slot < k; slot++ {
			if missing[i][slot] {
				mask[slot] = true
				result.Labels[i][slot] = MissingLabel
				continue
			}
			row := found[i][slot]
			if row < 0 || row >= size {
				return nil, errors.Wrapf(ErrIndexQuery, "layer %q: index returned row %d outside [0, %d)", name, row, size)
			}
			result.Indices[i][slot] = row
			result.Labels[i][slot] = m.labels[row]
		}
		result.Missing[i] = mask
	}
	if klog.V(2).Enabled() {
		klog.Infof("dknn: layer %q: %d of %d neighbor slots missing", name, index.CountMissing(result.Missing), len(queries)*k)
	}
	return result, nil
}
