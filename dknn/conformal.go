package dknn

import (
	"sort"
)

// PValue returns the fraction of calibration scores at least as large as
// score, or 0 for an empty calibration.
func (c *Calibration) PValue(score int) float64 {
	n := len(c.Scores)
	if n == 0 {
		return 0
	}
	rank := sort.SearchInts(c.Scores, score)
	return float64(n-rank) / float64(n)
}

// ConfCred computes per-class p-values for every row of table and derives
// the prediction, confidence and credibility.
//
// The prediction is the class with the largest p-value, lowest class on
// ties. Confidence is one minus the second largest p-value, or 1 with a
// single class. Credibility is the p-value of the prediction.
func (c *Calibration) ConfCred(table Table) (*Outcome, error) {
	if c == nil || len(c.Scores) == 0 {
		return nil, ErrNotCalibrated
	}
	out := &Outcome{
		Predictions:   make([]int, len(table)),
		Confidences:   make([][]float64, len(table)),
		Credibilities: make([][]float64, len(table)),
		PValues:       make([][]float64, len(table)),
	}
	for i, row := range table {
		classes := len(row)
		p := make([]float64, classes)
		pred := 0
		for j, score := range row {
			p[j] = c.PValue(score)
			if p[j] > p[pred] {
				pred = j
			}
		}
		conf := make([]float64, classes)
		cred := make([]float64, classes)
		if classes > 0 {
			conf[pred] = 1
			if classes > 1 {
				sorted := append([]float64(nil), p...)
				sort.Float64s(sorted)
				conf[pred] = 1 - sorted[classes-2]
			}
			cred[pred] = p[pred]
		}
		out.Predictions[i] = pred
		out.Confidences[i] = conf
		out.Credibilities[i] = cred
		out.PValues[i] = p
	}
	return out, nil
}
