package go_geonn

import (
	"cmp"
	"slices"
)

// kdNode is one split of a kd-tree. Children are arena indices, -1 when absent.
type kdNode struct {
	pivot indexedPoint
	axis  int
	left  int32
	right int32
}

// kdArena holds every node of a tree in one slice.
type kdArena struct {
	nodes []kdNode
	root  int32
	depth int
	dims  int
	coord func(p indexedPoint, axis int) float64
}

func newKDArena(dims int, coord func(indexedPoint, int) float64) kdArena {
	return kdArena{root: -1, dims: dims, coord: coord}
}

// build indexes points, reordering the slice in place.
func (a *kdArena) build(points []indexedPoint) {
	a.nodes = make([]kdNode, 0, len(points))
	a.root = a.buildNode(points, 0, 1)
}

// buildNode sorts points on axis, keeps the element at n/2 as pivot and recurses into
// [:n/2] and [n/2+1:] with the next axis. The pivot belongs to neither child.
func (a *kdArena) buildNode(points []indexedPoint, axis, depth int) int32 {
	n := len(points)
	if n == 0 {
		return -1
	}
	a.depth = max(a.depth, depth)

	slices.SortStableFunc(points, func(p, q indexedPoint) int {
		return cmp.Or(cmp.Compare(a.coord(p, axis), a.coord(q, axis)), cmp.Compare(p.id, q.id))
	})

	median := n / 2
	index := int32(len(a.nodes))
	a.nodes = append(a.nodes, kdNode{pivot: points[median], axis: axis, left: -1, right: -1})

	next := (axis + 1) % a.dims
	left := a.buildNode(points[:median], next, depth+1)
	right := a.buildNode(points[median+1:], next, depth+1)
	a.nodes[index].left = left
	a.nodes[index].right = right
	return index
}

// sides returns the child on q's side of node first and the other child second.
func (a *kdArena) sides(node *kdNode, q indexedPoint) (near, far int32, qv, pv float64) {
	qv, pv = a.coord(q, node.axis), a.coord(node.pivot, node.axis)
	if qv < pv {
		return node.left, node.right, qv, pv
	}
	return node.right, node.left, qv, pv
}
