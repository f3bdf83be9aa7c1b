package go_geonn

import (
	"fmt"
	"math"
)

// Neighbour is the result for one input point. The zero value means "no neighbour":
// the index is undefined and so is the distance.
type Neighbour struct {
	index      int
	distanceKM float64
	found      bool
}

func newNeighbour(index int, distanceKM float64) Neighbour {
	return Neighbour{index: index, distanceKM: distanceKM, found: true}
}

// Found reports whether a neighbour exists.
func (n Neighbour) Found() bool {
	return n.found
}

// Index returns the neighbour's position in the input slice.
func (n Neighbour) Index() (int, bool) {
	if !n.found {
		return -1, false
	}
	return n.index, true
}

// DistanceKM returns the great-circle distance to the neighbour.
func (n Neighbour) DistanceKM() (float64, bool) {
	if !n.found {
		return math.NaN(), false
	}
	return n.distanceKM, true
}

func (n Neighbour) String() string {
	if !n.found {
		return "none"
	}
	return fmt.Sprintf("%d (%.6f km)", n.index, n.distanceKM)
}

// candidate tracks the best point seen so far during a search.
type candidate struct {
	id   int
	dist float64
}

func noCandidate() candidate {
	return candidate{id: -1, dist: math.Inf(1)}
}

// consider replaces the candidate when (dist, id) sorts before it, so equal distances
// resolve to the lowest index.
func (c *candidate) consider(id int, dist float64) {
	if dist < c.dist || (dist == c.dist && id < c.id) {
		c.id = id
		c.dist = dist
	}
}

func (c candidate) ok() bool {
	return c.id >= 0
}

func emptyResults(n int) []Neighbour {
	return make([]Neighbour, n)
}
