package vector

import "fmt"

// Normalize returns a copy of v scaled to unit L2 norm. A zero vector is
// returned as a zero copy.
func Normalize(v []float32) []float32 {
	out := make([]float32, len(v))
	m := Magnitude(v)
	if m == 0 {
		return out
	}
	for i, x := range v {
		out[i] = x / m
	}
	return out
}

// Mean returns the per-dimension mean of rows. All rows must share one
// dimension.
func Mean(rows [][]float32) ([]float32, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("vector: mean of empty matrix")
	}
	dim := len(rows[0])
	sum := make([]float64, dim)
	for i, row := range rows {
		if len(row) != dim {
			return nil, fmt.Errorf("vector: row %d has dim %d, want %d", i, len(row), dim)
		}
		for j, x := range row {
			sum[j] += float64(x)
		}
	}
	mean := make([]float32, dim)
	n := float64(len(rows))
	for j := range sum {
		mean[j] = float32(sum[j] / n)
	}
	return mean, nil
}

// Preprocessor applies the layer transform used both to build a neighbor
// index and to query it: normalize each row to unit L2 norm, then subtract
// the mean of the normalized training rows.
type Preprocessor struct {
	center []float32
}

// NewPreprocessor computes the center of the normalized training rows.
func NewPreprocessor(train [][]float32) (*Preprocessor, error) {
	normalized := make([][]float32, len(train))
	for i, row := range train {
		normalized[i] = Normalize(row)
	}
	center, err := Mean(normalized)
	if err != nil {
		return nil, err
	}
	return &Preprocessor{center: center}, nil
}

// NewPreprocessorWithCenter wraps an already computed center.
func NewPreprocessorWithCenter(center []float32) *Preprocessor {
	return &Preprocessor{center: append([]float32(nil), center...)}
}

// Dim returns the row dimension the preprocessor accepts.
func (p *Preprocessor) Dim() int { return len(p.center) }

// Center returns a copy of the center.
func (p *Preprocessor) Center() []float32 {
	return append([]float32(nil), p.center...)
}

// ApplyRow returns the normalized, centered copy of row.
func (p *Preprocessor) ApplyRow(row []float32) ([]float32, error) {
	if len(row) != len(p.center) {
		return nil, fmt.Errorf("vector: row dim %d != center dim %d", len(row), len(p.center))
	}
	out := Normalize(row)
	for j := range out {
		out[j] -= p.center[j]
	}
	return out, nil
}

// Apply transforms every row, leaving rows untouched.
func (p *Preprocessor) Apply(rows [][]float32) ([][]float32, error) {
	out := make([][]float32, len(rows))
	for i, row := range rows {
		v, err := p.ApplyRow(row)
		if err != nil {
			return nil, fmt.Errorf("vector: row %d: %w", i, err)
		}
		out[i] = v
	}
	return out, nil
}
