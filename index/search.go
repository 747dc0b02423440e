package index

import (
	"context"
	"fmt"
)

// FindKNNs implements Index.FindKNNs on top of a single-query Querier. It
// checks ctx between queries and fails on the first query error. A Querier
// returning fewer than k rows leaves the remaining slots missing.
func FindKNNs(ctx context.Context, q Querier, size int, queries [][]float32, out [][]int) ([][]bool, error) {
	if len(out) != len(queries) {
		return nil, fmt.Errorf("index: output rows %d != query rows %d", len(out), len(queries))
	}
	missing := make([][]bool, len(queries))
	for i, query := range queries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		k := len(out[i])
		rows, _, err := q.Query(query, k)
		if err != nil {
			return nil, fmt.Errorf("index: query %d: %w", i, err)
		}
		if len(rows) > k {
			rows = rows[:k]
		}
		mask := make([]bool, k)
		for slot := range mask {
			if slot >= len(rows) || rows[slot] < 0 || rows[slot] >= size {
				mask[slot] = true
				continue
			}
			out[i][slot] = rows[slot]
		}
		missing[i] = mask
	}
	return missing, nil
}

// NewBuffer allocates an n x k zero-filled output buffer for FindKNNs.
func NewBuffer(n, k int) [][]int {
	buf := make([][]int, n)
	backing := make([]int, n*k)
	for i := range buf {
		buf[i] = backing[i*k : (i+1)*k : (i+1)*k]
	}
	return buf
}

// CountMissing returns the number of masked slots.
func CountMissing(missing [][]bool) int {
	n := 0
	for _, row := range missing {
		for _, m := range row {
			if m {
				n++
			}
		}
	}
	return n
}
