package dknn

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// Calibration is the empirical nonconformity distribution of held-out data.
type Calibration struct {
	// ID identifies the Calibrate run that produced it.
	ID uuid.UUID
	// Scores holds the true-label nonconformity of every calibration
	// example, ascending, with leading zeros removed.
	Scores []int
	// Size is the number of calibration examples before trimming.
	Size int
	// Trimmed is the number of zero scores removed.
	Trimmed int
}

// Len returns the number of scores kept after trimming.
func (c *Calibration) Len() int { return len(c.Scores) }

// NewCalibration builds a Calibration from a nonconformity table and the
// true labels of its rows.
func NewCalibration(table Table, labels []int) (*Calibration, error) {
	if len(table) != len(labels) {
		return nil, errors.Wrapf(ErrShapeMismatch, "table has %d rows for %d labels", len(table), len(labels))
	}
	scores := make([]int, len(labels))
	for i, label := range labels {
		if label < 0 || label >= len(table[i]) {
			return nil, errors.Wrapf(ErrInvalidInput, "label %d at row %d outside [0, %d)", label, i, len(table[i]))
		}
		scores[i] = table[i][label]
	}
	sort.Ints(scores)
	zeros := 0
	for zeros < len(scores) && scores[zeros] == 0 {
		zeros++
	}
	return &Calibration{
		ID:      uuid.New(),
		Scores:  scores[zeros:],
		Size:    len(labels),
		Trimmed: zeros,
	}, nil
}

func (c *Calibration) clone() *Calibration {
	cp := *c
	cp.Scores = append([]int(nil), c.Scores...)
	return &cp
}

// Calibrate computes the calibration distribution from held-out data and
// labels, replacing any earlier one. On failure the model keeps its prior
// calibration state.
func (m *Model[T]) Calibrate(ctx context.Context, data []T, labels []int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(labels) == 0 {
		return errors.Wrap(ErrInvalidInput, "no calibration examples")
	}
	if len(data) != len(labels) {
		return errors.Wrapf(ErrInvalidInput, "calibration has %d examples but %d labels", len(data), len(labels))
	}
	for i, label := range labels {
		if label < 0 || label >= m.cfg.Classes {
			return errors.Wrapf(ErrInvalidInput, "calibration label %d at row %d outside [0, %d)", label, i, m.cfg.Classes)
		}
	}
	klog.Infof("dknn: starting calibration of %d examples", len(labels))
	neighbors, err := m.neighbors(ctx, data)
	if err != nil {
		return err
	}
	for _, name := range m.cfg.Layers {
		if err := neighbors[name].CheckShape(len(labels), m.cfg.Neighbors); err != nil {
			return errors.WithMessagef(err, "layer %q", name)
		}
	}
	table, err := m.scorer.Score(neighbors)
	if err != nil {
		return err
	}
	calibration, err := NewCalibration(table, labels)
	if err != nil {
		return err
	}
	m.calibration = calibration
	if calibration.Len() == 0 {
		klog.Warningf("dknn: calibration %s kept no examples (all %d scores were zero); predictions will fail", calibration.ID, calibration.Size)
	}
	klog.Infof("dknn: calibration %s complete: kept %d of %d scores", calibration.ID, calibration.Len(), calibration.Size)
	return nil
}

// Calibrated reports whether predictions can be made.
func (m *Model[T]) Calibrated() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.checkCalibrated() == nil
}

// Calibration returns a copy of the current calibration, nil if none.
func (m *Model[T]) Calibration() *Calibration {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.calibration == nil {
		return nil
	}
	return m.calibration.clone()
}

// checkCalibrated must be called with mu held.
func (m *Model[T]) checkCalibrated() error {
	if m.calibration == nil {
		return ErrNotCalibrated
	}
	if m.calibration.Len() == 0 {
		return errors.Wrap(ErrNotCalibrated, "calibration kept no examples")
	}
	return nil
}
