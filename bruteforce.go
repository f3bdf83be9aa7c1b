package go_geonn

// BruteForce compares every point with every other point. It is the reference every other
// component is checked against: for equal distances the lowest index wins.
func BruteForce(points []Point) ([]Neighbour, error) {
	if err := Validate(points); err != nil {
		return nil, err
	}
	indexed := indexPoints(points)
	results := emptyResults(len(points))
	for i := range indexed {
		best := noCandidate()
		for j := range indexed {
			// Skip only the point itself; a different point at the same location is a
			// valid neighbour at distance 0.
			if i == j {
				continue
			}
			d := haversine(indexed[i], indexed[j])
			if d < best.dist {
				best = candidate{id: j, dist: d}
			}
		}
		if best.ok() {
			results[i] = newNeighbour(best.id, best.dist)
		}
	}
	return results, nil
}

// BruteForceSymmetric evaluates each unordered pair once and updates both points with the
// result. It returns exactly what BruteForce returns with half the distance evaluations.
func BruteForceSymmetric(points []Point) ([]Neighbour, error) {
	if err := Validate(points); err != nil {
		return nil, err
	}
	indexed := indexPoints(points)
	best := make([]candidate, len(indexed))
	for i := range best {
		best[i] = noCandidate()
	}
	// Row j sees its candidates in increasing index order (first as the inner index of
	// earlier rows, then from its own loop), so strict < keeps the lowest index on ties.
	for i := range indexed {
		for j := i + 1; j < len(indexed); j++ {
			d := haversine(indexed[i], indexed[j])
			if d < best[i].dist {
				best[i] = candidate{id: j, dist: d}
			}
			if d < best[j].dist {
				best[j] = candidate{id: i, dist: d}
			}
		}
	}
	results := emptyResults(len(points))
	for i, c := range best {
		if c.ok() {
			results[i] = newNeighbour(c.id, c.dist)
		}
	}
	return results, nil
}
