package tree

// Neighbor describes a candidate returned by a kNN search.
type Neighbor struct {
	Point    *Point
	Distance float32
}

// Neighbors is a max-heap on Distance holding the current k best candidates.
type Neighbors []Neighbor

func (h Neighbors) Len() int           { return len(h) }
func (h Neighbors) Less(i, j int) bool { return h[i].Distance > h[j].Distance }
func (h Neighbors) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *Neighbors) Push(x interface{}) {
	*h = append(*h, x.(Neighbor))
}

func (h *Neighbors) Pop() interface{} {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

// Rows splits search results into training rows and distances.
func Rows(neighbors []*Neighbor) ([]int, []float64) {
	rows := make([]int, 0, len(neighbors))
	dists := make([]float64, 0, len(neighbors))
	for _, n := range neighbors {
		if n == nil || !n.Point.HasRow() {
			continue
		}
		rows = append(rows, int(n.Point.Row))
		dists = append(dists, float64(n.Distance))
	}
	return rows, dists
}
