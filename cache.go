package go_geonn

import (
	"fmt"
	"math"
	"slices"
	"time"

	"go.uber.org/zap"
)

// DistanceCache memoizes pairwise distances. Lookup(i, j) and Lookup(j, i) share one
// stored entry, so each unordered pair is evaluated at most once.
//
// The cache fills lazily and is not safe for concurrent use until FindAll (or FindNN)
// has returned; after that every read is served from the table.
type DistanceCache struct {
	points      []Point
	metric      func(Point, Point) float64
	table       []float64 // packed upper triangle, row i holds columns i+1..n-1
	set         []bool
	evaluations int
	logger      *zap.Logger
}

func NewDistanceCache(points []Point, opts ...Option) (*DistanceCache, error) {
	if err := Validate(points); err != nil {
		return nil, err
	}
	o := loadOptions(opts...)
	n := len(points)
	pairs := n * (n - 1) / 2
	return &DistanceCache{
		points: slices.Clone(points),
		metric: o.metric,
		table:  make([]float64, pairs),
		set:    make([]bool, pairs),
		logger: o.logger,
	}, nil
}

// Len returns the number of points in the cache.
func (c *DistanceCache) Len() int {
	return len(c.points)
}

// Evaluations returns how many times the metric has been called.
func (c *DistanceCache) Evaluations() int {
	return c.evaluations
}

func (c *DistanceCache) offset(i, j int) int {
	n := len(c.points)
	return i*n - i*(i+1)/2 + (j - i - 1)
}

// Lookup returns the distance between points i and j, computing it on first access.
// The distance of a point to itself is 0 and never computed.
// It panics if i or j is out of range.
func (c *DistanceCache) Lookup(i, j int) float64 {
	if i < 0 || j < 0 || i >= len(c.points) || j >= len(c.points) {
		panic(fmt.Sprintf("index out of range: lookup(%d, %d) with %d points", i, j, len(c.points)))
	}
	if i > j {
		i, j = j, i
	}
	if i == j {
		return 0
	}
	k := c.offset(i, j)
	if !c.set[k] {
		c.table[k] = c.metric(c.points[i], c.points[j])
		c.set[k] = true
		c.evaluations++
	}
	return c.table[k]
}

// FindAll fills every pair.
func (c *DistanceCache) FindAll() {
	start := time.Now()
	before := c.evaluations
	for i := range c.points {
		for j := i + 1; j < len(c.points); j++ {
			c.Lookup(i, j)
		}
	}
	c.logger.Debug("distance cache filled",
		zap.Int("points", len(c.points)),
		zap.Int("evaluations", c.evaluations-before),
		zap.Duration("took", time.Since(start)),
	)
}

// FindNN fills the cache and returns the nearest other point for every point.
// The diagonal counts as +Inf, so a point never reports itself; ties go to the lowest index.
func (c *DistanceCache) FindNN() []Neighbour {
	c.FindAll()
	results := emptyResults(len(c.points))
	for i := range c.points {
		best := noCandidate()
		for j := range c.points {
			d := math.Inf(1)
			if i != j {
				d = c.Lookup(i, j)
			}
			if d < best.dist {
				best = candidate{id: j, dist: d}
			}
		}
		if best.ok() {
			results[i] = newNeighbour(best.id, best.dist)
		}
	}
	return results
}
