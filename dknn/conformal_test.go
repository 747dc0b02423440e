package dknn

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalibration_PValue(t *testing.T) {
	calibration := &Calibration{Scores: []int{1, 2, 2, 3, 5}}
	var testCases = []struct {
		score  int
		expect float64
	}{
		{score: 0, expect: 1},
		{score: 1, expect: 1},
		{score: 2, expect: 0.8},
		{score: 3, expect: 0.4},
		{score: 4, expect: 0.2},
		{score: 5, expect: 0.2},
		{score: 6, expect: 0},
	}
	for _, testCase := range testCases {
		actual := calibration.PValue(testCase.score)
		assert.InDelta(t, testCase.expect, actual, 1e-12, "score %d", testCase.score)
		assert.GreaterOrEqual(t, actual, 0.0)
		assert.LessOrEqual(t, actual, 1.0)
	}
}

func TestCalibration_ConfCred(t *testing.T) {
	// ten kept scores: 1..6 and four sixes
	calibration := &Calibration{Scores: []int{1, 2, 3, 4, 5, 6, 6, 6, 6, 6}}

	outcome, err := calibration.ConfCred(Table{{0, 6}, {4, 1}})
	require.NoError(t, err)

	assert.Equal(t, []int{0, 1}, outcome.Predictions)
	assert.Equal(t, []float64{1, 0.5}, outcome.PValues[0])
	assert.Equal(t, []float64{1, 0}, outcome.Credibilities[0])
	assert.InDelta(t, 0.5, outcome.Confidences[0][0], 1e-12)
	assert.Equal(t, 0.0, outcome.Confidences[0][1])

	assert.InDelta(t, 0.7, outcome.PValues[1][0], 1e-12)
	assert.InDelta(t, 1.0, outcome.Credibilities[1][1], 1e-12)
	assert.InDelta(t, 0.3, outcome.Confidences[1][1], 1e-12)
}

func TestCalibration_ConfCredTieGoesToLowestClass(t *testing.T) {
	calibration := &Calibration{Scores: []int{2, 3}}
	outcome, err := calibration.ConfCred(Table{{3, 1, 1}})
	require.NoError(t, err)
	assert.Equal(t, 1, outcome.Predictions[0])
	assert.Equal(t, 0.0, outcome.Confidences[0][1])
	assert.Equal(t, 1.0, outcome.Credibilities[0][1])
}

func TestCalibration_ConfCredSingleClass(t *testing.T) {
	calibration := &Calibration{Scores: []int{1, 2}}
	outcome, err := calibration.ConfCred(Table{{2}, {0}})
	require.NoError(t, err)
	assert.Equal(t, []int{0, 0}, outcome.Predictions)
	assert.Equal(t, [][]float64{{1}, {1}}, outcome.Confidences)
	assert.Equal(t, [][]float64{{0.5}, {1}}, outcome.Credibilities)
}

func TestCalibration_ConfCredClassPermutation(t *testing.T) {
	calibration := &Calibration{Scores: []int{1, 2, 3, 4, 5, 6}}
	table := Table{{5, 1, 3}, {2, 6, 4}}
	perm := []int{2, 0, 1}

	permuted := make(Table, len(table))
	for i, row := range table {
		permuted[i] = make([]int, len(row))
		for c, score := range row {
			permuted[i][perm[c]] = score
		}
	}

	outcome, err := calibration.ConfCred(table)
	require.NoError(t, err)
	permutedOutcome, err := calibration.ConfCred(permuted)
	require.NoError(t, err)
	for i, pred := range outcome.Predictions {
		assert.Equal(t, perm[pred], permutedOutcome.Predictions[i])
		assert.Equal(t, outcome.Confidences[i][pred], permutedOutcome.Confidences[i][perm[pred]])
		assert.Equal(t, outcome.Credibilities[i][pred], permutedOutcome.Credibilities[i][perm[pred]])
	}
}

func TestCalibration_ConfCredUncalibrated(t *testing.T) {
	var calibration *Calibration
	_, err := calibration.ConfCred(Table{{1, 0}})
	assert.ErrorIs(t, err, ErrNotCalibrated)
}

func TestCalibration_PValueEmpty(t *testing.T) {
	calibration := &Calibration{}
	assert.Equal(t, 0.0, calibration.PValue(0))
	assert.Equal(t, 0.0, calibration.PValue(3))
}
