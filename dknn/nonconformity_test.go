package dknn

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScorer_Score(t *testing.T) {
	var testCases = []struct {
		description string
		scorer      Scorer
		neighbors   map[string]*Neighbors
		expect      Table
	}{
		{
			description: "single layer",
			scorer:      Scorer{Layers: Layers{"l1"}, Classes: 2, Neighbors: 3},
			neighbors: map[string]*Neighbors{
				"l1": {Labels: [][]int{{1, 1, 1}, {0, 0, 0}, {0, 1, 1}}},
			},
			expect: Table{{3, 0}, {0, 3}, {2, 1}},
		},
		{
			description: "layers are summed",
			scorer:      Scorer{Layers: Layers{"a", "b"}, Classes: 3, Neighbors: 2},
			neighbors: map[string]*Neighbors{
				"a": {Labels: [][]int{{0, 2}}},
				"b": {Labels: [][]int{{2, 2}}},
			},
			expect: Table{{3, 4, 1}},
		},
		{
			description: "out of range labels count toward total only",
			scorer:      Scorer{Layers: Layers{"l1"}, Classes: 2, Neighbors: 3},
			neighbors: map[string]*Neighbors{
				"l1": {Labels: [][]int{{1, 5, -1}}},
			},
			expect: Table{{3, 2}},
		},
		{
			description: "missing slots counted as class 0",
			scorer:      Scorer{Layers: Layers{"l1"}, Classes: 2, Neighbors: 3, Missing: MissingAsLabel},
			neighbors: map[string]*Neighbors{
				"l1": {Labels: [][]int{{1, 0, 0}}, Missing: [][]bool{{false, true, true}}},
			},
			expect: Table{{1, 2}},
		},
		{
			description: "missing slots excluded",
			scorer:      Scorer{Layers: Layers{"l1"}, Classes: 2, Neighbors: 3, Missing: MissingExcluded},
			neighbors: map[string]*Neighbors{
				"l1": {Labels: [][]int{{1, 0, 0}}, Missing: [][]bool{{false, true, true}}},
			},
			expect: Table{{1, 0}},
		},
	}

	for _, testCase := range testCases {
		actual, err := testCase.scorer.Score(testCase.neighbors)
		require.NoError(t, err, testCase.description)
		assert.Equal(t, testCase.expect, actual, testCase.description)
	}
}

func TestScorer_TotalsAndBounds(t *testing.T) {
	scorer := Scorer{Layers: Layers{"a", "b"}, Classes: 3, Neighbors: 4}
	neighbors := map[string]*Neighbors{
		"a": {Labels: [][]int{{0, 1, 2, 2}, {1, 1, 1, 1}}},
		"b": {Labels: [][]int{{2, 2, 0, 1}, {0, 2, 1, 0}}},
	}
	table, err := scorer.Score(neighbors)
	require.NoError(t, err)
	total := len(scorer.Layers) * scorer.Neighbors
	for i, row := range table {
		inClass := 0
		for _, score := range row {
			assert.GreaterOrEqual(t, score, 0)
			assert.LessOrEqual(t, score, total)
			inClass += total - score
		}
		assert.Equal(t, total, inClass, "row %d", i)
	}
}

func TestScorer_ShapeErrors(t *testing.T) {
	scorer := Scorer{Layers: Layers{"a", "b"}, Classes: 2, Neighbors: 2}
	var testCases = []struct {
		description string
		neighbors   map[string]*Neighbors
	}{
		{
			description: "layer absent",
			neighbors:   map[string]*Neighbors{"a": {Labels: [][]int{{0, 1}}}},
		},
		{
			description: "row counts differ",
			neighbors: map[string]*Neighbors{
				"a": {Labels: [][]int{{0, 1}}},
				"b": {Labels: [][]int{{0, 1}, {1, 1}}},
			},
		},
		{
			description: "wrong width",
			neighbors: map[string]*Neighbors{
				"a": {Labels: [][]int{{0, 1}}},
				"b": {Labels: [][]int{{0, 1, 1}}},
			},
		},
		{
			description: "nil layer",
			neighbors:   map[string]*Neighbors{"a": {Labels: [][]int{{0, 1}}}, "b": nil},
		},
	}
	for _, testCase := range testCases {
		_, err := scorer.Score(testCase.neighbors)
		assert.ErrorIs(t, err, ErrShapeMismatch, testCase.description)
	}
}
