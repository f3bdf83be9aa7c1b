package go_geonn

import "fmt"

// Method selects the component FindNearestNeighbours runs.
type Method int

const (
	MethodBruteForce Method = iota
	MethodBruteForceSymmetric
	MethodDistanceCache
	MethodGeodesicKDTree
	MethodCartesianKDTree
)

// Methods lists every available method.
var Methods = []Method{
	MethodBruteForce,
	MethodBruteForceSymmetric,
	MethodDistanceCache,
	MethodGeodesicKDTree,
	MethodCartesianKDTree,
}

func (m Method) String() string {
	switch m {
	case MethodBruteForce:
		return "brute-force"
	case MethodBruteForceSymmetric:
		return "brute-force-symmetric"
	case MethodDistanceCache:
		return "distance-cache"
	case MethodGeodesicKDTree:
		return "geodesic-kdtree"
	case MethodCartesianKDTree:
		return "cartesian-kdtree"
	default:
		return fmt.Sprintf("Method(%d)", int(m))
	}
}

// AntimeridianSafe reports whether the method ranks neighbours across ±180° longitude
// correctly when run with the given options.
func (m Method) AntimeridianSafe(opts ...Option) bool {
	if m == MethodGeodesicKDTree {
		return loadOptions(opts...).periodicCovering
	}
	return true
}

// FindNearestNeighbours returns, for every point, the nearest other point and the
// great-circle distance to it in kilometres. The result has one entry per input point in
// input order; with fewer than two points every entry is the "no neighbour" value.
func FindNearestNeighbours(points []Point, method Method, opts ...Option) ([]Neighbour, error) {
	switch method {
	case MethodBruteForce:
		return BruteForce(points)
	case MethodBruteForceSymmetric:
		return BruteForceSymmetric(points)
	case MethodDistanceCache:
		cache, err := NewDistanceCache(points, opts...)
		if err != nil {
			return nil, err
		}
		return cache.FindNN(), nil
	case MethodGeodesicKDTree:
		tree, err := NewGeodesicKDTree(points, opts...)
		if err != nil {
			return nil, err
		}
		return tree.FindNN(), nil
	case MethodCartesianKDTree:
		tree, err := NewCartesianKDTree(points, opts...)
		if err != nil {
			return nil, err
		}
		return tree.FindNN(), nil
	default:
		return nil, fmt.Errorf("invalid method %d: method must be between %d and %d", int(method), int(MethodBruteForce), int(MethodCartesianKDTree))
	}
}

// Agreement is the outcome of comparing two result sets entry by entry.
type Agreement struct {
	// Mismatches holds every index where the two results differ in neighbour or distance.
	Mismatches []int
	// LengthMismatch is set when the result sets have different lengths; only the common
	// prefix is compared then.
	LengthMismatch bool
}

// Agreed reports whether both result sets were identical.
func (a Agreement) Agreed() bool {
	return !a.LengthMismatch && len(a.Mismatches) == 0
}

// Compare checks two result sets for exact equality of neighbour index and distance.
func Compare(a, b []Neighbour) Agreement {
	agreement := Agreement{LengthMismatch: len(a) != len(b)}
	for i := range min(len(a), len(b)) {
		if a[i] != b[i] {
			agreement.Mismatches = append(agreement.Mismatches, i)
		}
	}
	return agreement
}
