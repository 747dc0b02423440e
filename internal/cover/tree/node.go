package tree

import "math"

// Node is a cover-tree node. Children are stored by value; radius caches the
// largest distance from point to any descendant, valid while radiusComputed
// matches the tree version.
type Node struct {
	level          int32
	baseLevel      float32
	point          *Point
	children       []Node
	radius         float32
	radiusComputed uint64
}

// NewNode constructs a node for the provided point and level.
func NewNode(point *Point, level int32, base float32) Node {
	return Node{
		level:     level,
		baseLevel: float32(math.Pow(float64(base), float64(level))),
		point:     point,
	}
}

func (n *Node) count() int {
	total := 1
	for i := range n.children {
		total += n.children[i].count()
	}
	return total
}

// Count walks the tree and returns the number of reachable nodes.
func (t *Tree) Count() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.root == nil {
		return 0
	}
	return t.root.count()
}
