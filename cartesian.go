package go_geonn

import (
	"context"
	"errors"
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/oleiade/lane/v2"
	"go.uber.org/zap"
)

// ErrInvalidK is returned by KNearest for a negative k.
var ErrInvalidK = errors.New("invalid k")

// CartesianKDTree is a 3-D kd-tree over the unit-sphere embedding of the points.
// Chord length grows strictly with the central angle, so the Euclidean nearest point is
// also the geodesic nearest one, including across the antimeridian.
type CartesianKDTree struct {
	points []indexedPoint
	tree   kdArena
}

func NewCartesianKDTree(points []Point, opts ...Option) (*CartesianKDTree, error) {
	if err := Validate(points); err != nil {
		return nil, err
	}
	o := loadOptions(opts...)
	start := time.Now()

	indexed := indexPoints(points)
	t := &CartesianKDTree{
		points: indexed,
		tree:   newKDArena(3, cartesianCoord),
	}
	t.tree.build(slices.Clone(indexed))

	o.logger.Debug("cartesian kd-tree built",
		zap.Int("points", len(points)),
		zap.Int("nodes", len(t.tree.nodes)),
		zap.Int("depth", t.tree.depth),
		zap.Duration("took", time.Since(start)),
	)
	return t, nil
}

func cartesianCoord(p indexedPoint, axis int) float64 {
	switch axis {
	case 0:
		return p.v.X
	case 1:
		return p.v.Y
	default:
		return p.v.Z
	}
}

// AntimeridianSafe is always true for the Cartesian tree.
func (t *CartesianKDTree) AntimeridianSafe() bool {
	return true
}

// Len returns the number of input points.
func (t *CartesianKDTree) Len() int {
	return len(t.points)
}

// Depth returns the number of levels in the tree.
func (t *CartesianKDTree) Depth() int {
	return t.tree.depth
}

// FindNN returns the nearest other point for every input point, in input order.
// Distances are great-circle kilometres.
func (t *CartesianKDTree) FindNN() []Neighbour {
	results := emptyResults(len(t.points))
	for i, q := range t.points {
		results[i] = t.search(q, q.id)
	}
	return results
}

// Nearest returns the indexed point closest to (lat, lng). A point stored at exactly that
// location is a valid answer with distance 0.
func (t *CartesianKDTree) Nearest(lat, lng float64) (Neighbour, error) {
	q := Point{Lat: lat, Lng: lng}
	if err := q.validate(); err != nil {
		return Neighbour{}, err
	}
	return t.search(newIndexedPoint(-1, q), -1), nil
}

func (t *CartesianKDTree) search(q indexedPoint, exclude int) Neighbour {
	best := noCandidate()
	t.nearest(t.tree.root, q, exclude, &best)
	if !best.ok() {
		return Neighbour{}
	}
	return newNeighbour(best.id, best.dist)
}

func (t *CartesianKDTree) nearest(index int32, q indexedPoint, exclude int, best *candidate) {
	if index < 0 {
		return
	}
	node := &t.tree.nodes[index]
	near, far, qv, pv := t.tree.sides(node, q)

	t.nearest(near, q, exclude, best)
	// Identity, not coordinates: distinct points may project to the same vector.
	// Candidates rank by haversine so equal distances resolve to the lowest index; two
	// equal arcs can differ in the last bit of their chords.
	if node.pivot.id != exclude {
		best.consider(node.pivot.id, haversine(q, node.pivot))
	}

	d := qv - pv
	if chord2FromKM(best.dist) >= d*d*(1-boundSlack) {
		t.nearest(far, q, exclude, best)
	}
}

// subtree is a queued kd-tree node with a lower bound on the squared chord to any point in it.
type subtree struct {
	index int32
	bound float64
}

// Search walks the tree best first and calls callback for every indexed point in order of
// increasing distance from (lat, lng). The search stops when callback returns true, when
// every point has been visited or when ctx is done, in which case ctx's error is returned.
// Points at equal distance may arrive in any order.
func (t *CartesianKDTree) Search(ctx context.Context, lat, lng float64, callback func(Neighbour) bool) error {
	query := Point{Lat: lat, Lng: lng}
	if err := query.validate(); err != nil {
		return err
	}
	if t.tree.root < 0 {
		return nil
	}
	q := newIndexedPoint(-1, query)

	priorityQueue := lane.NewMinPriorityQueue[interface{}, float64]()
	priorityQueue.Push(subtree{index: t.tree.root}, 0)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		popped, _, ok := priorityQueue.Pop()
		if !ok {
			return nil
		}
		switch item := popped.(type) {
		case subtree:
			node := &t.tree.nodes[item.index]
			priorityQueue.Push(node.pivot, chord2(q, node.pivot))

			near, far, qv, pv := t.tree.sides(node, q)
			if near >= 0 {
				priorityQueue.Push(subtree{index: near, bound: item.bound}, item.bound)
			}
			if far >= 0 {
				d := qv - pv
				bound := math.Max(item.bound, d*d*(1-boundSlack))
				priorityQueue.Push(subtree{index: far, bound: bound}, bound)
			}
		case indexedPoint:
			if callback(newNeighbour(item.id, haversine(q, item))) {
				return nil
			}
		}
	}
}

// KNearest returns up to k indexed points closest to (lat, lng), nearest first.
func (t *CartesianKDTree) KNearest(lat, lng float64, k int) ([]Neighbour, error) {
	if k < 0 {
		return nil, fmt.Errorf("%w %d: k must not be negative", ErrInvalidK, k)
	}
	result := make([]Neighbour, 0, min(k, len(t.points)))
	if k == 0 {
		if err := (Point{Lat: lat, Lng: lng}).validate(); err != nil {
			return nil, err
		}
		return result, nil
	}
	err := t.Search(context.Background(), lat, lng, func(n Neighbour) bool {
		result = append(result, n)
		return len(result) >= k
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
