package go_geonn

import (
	"context"
	"math"
	"math/rand"
	"slices"
	"testing"

	"github.com/sourcegraph/conc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/kdtree"
)

func Test_NewCartesianKDTree_Structure(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	points := randomPoints(r, 1000)
	tree, err := NewCartesianKDTree(points)
	require.NoError(t, err)

	assert.Equal(t, 1000, tree.Len())
	assert.Equal(t, 10, tree.Depth())
	assert.True(t, tree.AntimeridianSafe())

	root := tree.tree.nodes[tree.tree.root]
	assert.Equal(t, 0, root.axis)
	left := tree.tree.nodes[root.left]
	assert.Equal(t, 1, left.axis)
	assert.Equal(t, 2, tree.tree.nodes[left.left].axis)
	assert.Equal(t, 0, tree.tree.nodes[tree.tree.nodes[left.left].left].axis)
}

func Test_CartesianKDTree_FindNN_MatchesBruteForce(t *testing.T) {
	r := rand.New(rand.NewSource(2))
	for _, n := range []int{2, 3, 7, 64, 1000} {
		points := randomPoints(r, n)
		want, err := BruteForce(points)
		require.NoError(t, err)

		tree, err := NewCartesianKDTree(points)
		require.NoError(t, err)
		agreement := Compare(want, tree.FindNN())
		assert.True(t, agreement.Agreed(), "n=%d mismatches at %v", n, agreement.Mismatches)
	}
}

func Test_CartesianKDTree_FindNN_GridTies(t *testing.T) {
	points := gridPoints(-60, 60, 3, -170, 170, 5)
	want, err := BruteForce(points)
	require.NoError(t, err)

	tree, err := NewCartesianKDTree(points)
	require.NoError(t, err)
	got := tree.FindNN()
	agreement := Compare(want, got)
	assert.True(t, agreement.Agreed(), "mismatches at %v", agreement.Mismatches)

	// (-60, -155) has (-60, -160) and (-60, -150) at the same distance; the lower index wins.
	assert.Equal(t, 2, neighbourIndex(t, got[3]))
	assert.Equal(t, neighbourDistance(t, got[3]), Haversine(points[3], points[4]))
}

func Test_CartesianKDTree_Antimeridian(t *testing.T) {
	want, err := BruteForce(antimeridianPoints)
	require.NoError(t, err)

	tree, err := NewCartesianKDTree(antimeridianPoints)
	require.NoError(t, err)
	got := tree.FindNN()
	assert.Equal(t, want, got)
	assert.Equal(t, 1, neighbourIndex(t, got[0]))
	assert.Equal(t, 0, neighbourIndex(t, got[1]))
	assert.InDelta(t, 22.24, neighbourDistance(t, got[0]), 0.01)
}

func Test_CartesianKDTree_ReportsHaversine(t *testing.T) {
	points := []Point{{Lat: 0, Lng: 0}, {Lat: 0, Lng: 1}}
	tree, err := NewCartesianKDTree(points)
	require.NoError(t, err)
	got := tree.FindNN()
	assert.Equal(t, Haversine(points[0], points[1]), neighbourDistance(t, got[0]))
	assert.NotEqual(t, Euclidean(points[0], points[1], false), neighbourDistance(t, got[0]))
}

func Test_CartesianKDTree_SameProjection(t *testing.T) {
	// Both points sit on the north pole and project to the same vector up to rounding;
	// only identity tells them apart.
	points := []Point{{Lat: 90, Lng: 0}, {Lat: 90, Lng: 45}, {Lat: 80, Lng: 0}}
	tree, err := NewCartesianKDTree(points)
	require.NoError(t, err)
	got := tree.FindNN()
	assert.Equal(t, 1, neighbourIndex(t, got[0]))
	assert.Equal(t, 0, neighbourIndex(t, got[1]))
	assert.InDelta(t, 0, neighbourDistance(t, got[0]), 1e-9)

	want, err := BruteForce(points)
	require.NoError(t, err)
	assert.Equal(t, want[:2], got[:2])
}

func Test_CartesianKDTree_MatchesGonum(t *testing.T) {
	r := rand.New(rand.NewSource(3))
	points := randomPoints(r, 2000)

	tree, err := NewCartesianKDTree(points)
	require.NoError(t, err)
	got := tree.FindNN()

	embedded := make(kdtree.Points, len(points))
	for i, p := range points {
		v := ToCartesian(p)
		embedded[i] = kdtree.Point{v.X, v.Y, v.Z}
	}
	reference := kdtree.New(embedded, false)

	for i, p := range points {
		v := ToCartesian(p)
		// The two closest are the point itself and its neighbour.
		keep := kdtree.NewNKeeper(2)
		reference.NearestSet(keep, kdtree.Point{v.X, v.Y, v.Z})
		farthest := 0.0
		for _, c := range keep.Heap {
			farthest = math.Max(farthest, c.Dist)
		}
		j := neighbourIndex(t, got[i])
		assert.InDelta(t, farthest, Euclidean(p, points[j], false), 1e-12, "point %d", i)
	}
}

func Test_CartesianKDTree_Search(t *testing.T) {
	r := rand.New(rand.NewSource(4))
	points := randomPoints(r, 2000)
	tree, err := NewCartesianKDTree(points)
	require.NoError(t, err)

	searchLat, searchLong := 51.44, 13.55
	var results []Neighbour
	err = tree.Search(context.Background(), searchLat, searchLong, func(n Neighbour) bool {
		results = append(results, n)
		return false
	})
	require.NoError(t, err)
	require.Len(t, results, len(points))

	seen := make(map[int]bool)
	prev := 0.0
	for _, n := range results {
		dist := neighbourDistance(t, n)
		assert.True(t, prev <= dist+1e-9, "prev: %f, dist: %f", prev, dist)
		prev = dist
		seen[neighbourIndex(t, n)] = true
	}
	assert.Len(t, seen, len(points))
}

func Test_CartesianKDTree_Search_Stops(t *testing.T) {
	r := rand.New(rand.NewSource(5))
	tree, err := NewCartesianKDTree(randomPoints(r, 100))
	require.NoError(t, err)

	calls := 0
	err = tree.Search(context.Background(), 0, 0, func(Neighbour) bool {
		calls++
		return calls >= 5
	})
	require.NoError(t, err)
	assert.Equal(t, 5, calls)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = tree.Search(ctx, 0, 0, func(Neighbour) bool {
		t.Fatal("callback called after cancel")
		return true
	})
	assert.ErrorIs(t, err, context.Canceled)

	err = tree.Search(context.Background(), -91, 0, func(Neighbour) bool { return true })
	assert.ErrorIs(t, err, ErrInvalidCoordinate)
}

func Test_CartesianKDTree_KNearest(t *testing.T) {
	r := rand.New(rand.NewSource(6))
	points := randomPoints(r, 2000)
	tree, err := NewCartesianKDTree(points)
	require.NoError(t, err)

	query := Point{Lat: -33.8688, Lng: 151.2093}
	order := make([]int, len(points))
	for i := range order {
		order[i] = i
	}
	slices.SortFunc(order, func(a, b int) int {
		da, db := Haversine(query, points[a]), Haversine(query, points[b])
		if da < db {
			return -1
		}
		if da > db {
			return 1
		}
		return a - b
	})

	got, err := tree.KNearest(query.Lat, query.Lng, 10)
	require.NoError(t, err)
	require.Len(t, got, 10)
	for i, n := range got {
		assert.Equal(t, order[i], neighbourIndex(t, n))
		assert.Equal(t, Haversine(query, points[order[i]]), neighbourDistance(t, n))
	}

	got, err = tree.KNearest(0, 0, 5000)
	require.NoError(t, err)
	assert.Len(t, got, len(points))

	got, err = tree.KNearest(0, 0, 0)
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = tree.KNearest(0, 0, -1)
	assert.EqualError(t, err, "invalid k -1: k must not be negative")
	assert.ErrorIs(t, err, ErrInvalidK)
}

func Test_CartesianKDTree_Nearest(t *testing.T) {
	points := []Point{{Lat: 0, Lng: 179.9}, {Lat: 10, Lng: 170}}
	tree, err := NewCartesianKDTree(points)
	require.NoError(t, err)

	n, err := tree.Nearest(0, -179.95)
	require.NoError(t, err)
	assert.Equal(t, 0, neighbourIndex(t, n))

	empty, err := NewCartesianKDTree(nil)
	require.NoError(t, err)
	n, err = empty.Nearest(0, 0)
	require.NoError(t, err)
	assert.False(t, n.Found())
	assert.NoError(t, empty.Search(context.Background(), 0, 0, func(Neighbour) bool {
		t.Fatal("no points to visit")
		return true
	}))
}

func Test_ConcurrentReaders(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	points := randomPointsBetween(r, 500, -90, 90)
	want, err := BruteForce(points)
	require.NoError(t, err)

	cartesian, err := NewCartesianKDTree(points)
	require.NoError(t, err)
	geodesic, err := NewGeodesicKDTree(points)
	require.NoError(t, err)
	cache, err := NewDistanceCache(points)
	require.NoError(t, err)
	cache.FindAll()

	var wg conc.WaitGroup
	for range 8 {
		wg.Go(func() {
			assert.Equal(t, want, cartesian.FindNN())
			assert.Equal(t, want, geodesic.FindNN())
			assert.Equal(t, want, cache.FindNN())
		})
	}
	wg.Wait()
	assert.Equal(t, 500*499/2, cache.Evaluations())
}
