package tree

import "github.com/viant/dknn/vector"

// Point is a vector stored in the tree together with the training row it
// came from.
type Point struct {
	Row       int32
	Magnitude float32
	Vector    []float32
}

// NewPoint constructs a point for row. Query points use row -1.
func NewPoint(row int32, vector ...float32) *Point {
	return &Point{Row: row, Vector: vector}
}

// HasRow reports whether the point refers to a training row.
func (p *Point) HasRow() bool {
	return p != nil && p.Row >= 0
}

func (p *Point) magnitude() float32 {
	if p.Magnitude == 0 && len(p.Vector) > 0 {
		p.Magnitude = vector.Magnitude(p.Vector)
	}
	return p.Magnitude
}
