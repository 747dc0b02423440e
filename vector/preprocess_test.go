package vector

import (
	"math"
	"testing"
)

func approx(a, b float32) bool { return math.Abs(float64(a-b)) < 1e-5 }

func TestNormalize(t *testing.T) {
	got := Normalize([]float32{3, 4})
	if !approx(got[0], 0.6) || !approx(got[1], 0.8) {
		t.Fatalf("Normalize(3,4) = %v, want [0.6 0.8]", got)
	}
	zero := Normalize([]float32{0, 0})
	if zero[0] != 0 || zero[1] != 0 {
		t.Fatalf("Normalize(0,0) = %v, want zeros", zero)
	}
}

func TestPreprocessor_CenterIsMeanOfNormalizedRows(t *testing.T) {
	train := [][]float32{{2, 0}, {0, 5}}
	p, err := NewPreprocessor(train)
	if err != nil {
		t.Fatalf("NewPreprocessor failed: %v", err)
	}
	center := p.Center()
	if !approx(center[0], 0.5) || !approx(center[1], 0.5) {
		t.Fatalf("center = %v, want [0.5 0.5]", center)
	}
	// the input must not be mutated by preprocessing
	if train[0][0] != 2 || train[1][1] != 5 {
		t.Fatalf("training rows mutated: %v", train)
	}
}

func TestPreprocessor_ApplyIsDeterministic(t *testing.T) {
	p := NewPreprocessorWithCenter([]float32{0.5, 0.5})
	rows := [][]float32{{10, 0}, {1, 1}}
	first, err := p.Apply(rows)
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	second, err := p.Apply(rows)
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	for i := range first {
		for j := range first[i] {
			if first[i][j] != second[i][j] {
				t.Fatalf("Apply not deterministic at [%d][%d]: %v vs %v", i, j, first[i][j], second[i][j])
			}
		}
	}
	if !approx(first[0][0], 0.5) || !approx(first[0][1], -0.5) {
		t.Fatalf("Apply(10,0) = %v, want [0.5 -0.5]", first[0])
	}
	if rows[0][0] != 10 {
		t.Fatalf("Apply mutated its input: %v", rows[0])
	}
	if _, err := p.Apply([][]float32{{1, 2, 3}}); err == nil {
		t.Fatalf("expected dim mismatch error")
	}
}

func TestMean_Errors(t *testing.T) {
	if _, err := Mean(nil); err == nil {
		t.Fatalf("expected error for empty matrix")
	}
	if _, err := Mean([][]float32{{1, 2}, {1}}); err == nil {
		t.Fatalf("expected error for ragged matrix")
	}
}
