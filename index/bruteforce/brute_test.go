package bruteforce

import (
	"context"
	"testing"

	"github.com/viant/dknn/index"
	"github.com/viant/dknn/vector"
)

func TestIndex_QueryEuclidean(t *testing.T) {
	idx := New()
	vecs := [][]float32{{0, 0}, {1, 0}, {5, 5}, {0.9, 0.1}}
	if err := idx.Build(context.Background(), vecs); err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	rows, dists, err := idx.Query([]float32{1, 0}, 2)
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(rows) != 2 || rows[0] != 1 || rows[1] != 3 {
		t.Fatalf("Query rows = %v, want [1 3]", rows)
	}
	if dists[0] != 0 {
		t.Fatalf("nearest distance = %v, want 0", dists[0])
	}
	if _, _, err := idx.Query([]float32{1}, 1); err == nil {
		t.Fatalf("expected dim mismatch error")
	}
}

func TestIndex_TiesResolveToLowerRow(t *testing.T) {
	idx := New()
	if err := idx.Build(context.Background(), [][]float32{{1, 1}, {1, 1}, {1, 1}}); err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	rows, _, err := idx.Query([]float32{1, 1}, 3)
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	for n, want := range []int{0, 1, 2} {
		if rows[n] != want {
			t.Fatalf("rows = %v, want [0 1 2]", rows)
		}
	}
}

func TestIndex_FindKNNsMarksMissing(t *testing.T) {
	idx := New(WithDistance(vector.Cosine))
	// the zero row has no cosine distance and is never returned
	if err := idx.Build(context.Background(), [][]float32{{1, 0}, {0, 0}, {0, 1}}); err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	out := index.NewBuffer(1, 3)
	missing, err := idx.FindKNNs(context.Background(), [][]float32{{1, 0.1}}, out)
	if err != nil {
		t.Fatalf("FindKNNs failed: %v", err)
	}
	if out[0][0] != 0 || out[0][1] != 2 {
		t.Fatalf("out = %v, want [0 2 _]", out[0])
	}
	if missing[0][0] || missing[0][1] || !missing[0][2] {
		t.Fatalf("missing = %v, want [false false true]", missing[0])
	}
}

func TestIndex_BuildRejectsRaggedRows(t *testing.T) {
	if err := New().Build(context.Background(), [][]float32{{1, 2}, {1}}); err == nil {
		t.Fatalf("expected error for inconsistent dims")
	}
}
