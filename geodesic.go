package go_geonn

import (
	"slices"
	"time"

	"go.uber.org/zap"
)

const (
	latAxis = iota
	lngAxis
)

// GeodesicKDTree is a 2-D kd-tree over latitude and longitude that prunes with geodesic
// lower bounds.
//
// Known limitation: longitude is treated as a linear coordinate, so a point whose nearest
// neighbour lies across the ±180° antimeridian can be matched with a farther point. Either
// build with WithPeriodicCovering(true), which indexes every point again at ±360° of
// longitude, or use CartesianKDTree. AntimeridianSafe reports which case applies.
type GeodesicKDTree struct {
	points  []indexedPoint
	tree    kdArena
	covered bool
}

func NewGeodesicKDTree(points []Point, opts ...Option) (*GeodesicKDTree, error) {
	if err := Validate(points); err != nil {
		return nil, err
	}
	o := loadOptions(opts...)
	start := time.Now()

	indexed := indexPoints(points)
	var members []indexedPoint
	if o.periodicCovering {
		members = make([]indexedPoint, 0, 3*len(indexed))
		for _, p := range indexed {
			members = append(members, p, p.shifted(-360), p.shifted(360))
		}
	} else {
		members = slices.Clone(indexed)
	}

	t := &GeodesicKDTree{
		points:  indexed,
		tree:    newKDArena(2, geodesicCoord),
		covered: o.periodicCovering,
	}
	t.tree.build(members)

	o.logger.Debug("geodesic kd-tree built",
		zap.Int("points", len(points)),
		zap.Int("nodes", len(t.tree.nodes)),
		zap.Int("depth", t.tree.depth),
		zap.Bool("periodic_covering", t.covered),
		zap.Duration("took", time.Since(start)),
	)
	return t, nil
}

func geodesicCoord(p indexedPoint, axis int) float64 {
	if axis == latAxis {
		return p.lat()
	}
	return p.lng()
}

// AntimeridianSafe reports whether neighbours across ±180° longitude are ranked correctly.
func (t *GeodesicKDTree) AntimeridianSafe() bool {
	return t.covered
}

// Len returns the number of input points.
func (t *GeodesicKDTree) Len() int {
	return len(t.points)
}

// Depth returns the number of levels in the tree.
func (t *GeodesicKDTree) Depth() int {
	return t.tree.depth
}

// FindNN returns the nearest other point for every input point, in input order.
func (t *GeodesicKDTree) FindNN() []Neighbour {
	results := emptyResults(len(t.points))
	for i, q := range t.points {
		results[i] = t.search(q, q.id)
	}
	return results
}

// Nearest returns the indexed point closest to (lat, lng). A point stored at exactly that
// location is a valid answer with distance 0.
func (t *GeodesicKDTree) Nearest(lat, lng float64) (Neighbour, error) {
	q := Point{Lat: lat, Lng: lng}
	if err := q.validate(); err != nil {
		return Neighbour{}, err
	}
	return t.search(newIndexedPoint(-1, q), -1), nil
}

func (t *GeodesicKDTree) search(q indexedPoint, exclude int) Neighbour {
	best := noCandidate()
	t.nearest(t.tree.root, q, exclude, &best)
	if !best.ok() {
		return Neighbour{}
	}
	return newNeighbour(best.id, best.dist)
}

func (t *GeodesicKDTree) nearest(index int32, q indexedPoint, exclude int, best *candidate) {
	if index < 0 {
		return
	}
	node := &t.tree.nodes[index]
	near, far, _, pv := t.tree.sides(node, q)

	t.nearest(near, q, exclude, best)
	if node.pivot.id != exclude {
		// Measure against the original point: a replica's distance differs in the last
		// bits and would break exact ties.
		best.consider(node.pivot.id, haversine(q, t.points[node.pivot.id]))
	}

	var bound float64
	if node.axis == latAxis {
		bound = latitudeBoundKM(q, pv)
	} else {
		bound = meridianBoundKM(q, pv)
	}
	// Visit on equality too: an equally distant point with a lower index must win.
	if best.dist >= bound*(1-boundSlack) {
		t.nearest(far, q, exclude, best)
	}
}
