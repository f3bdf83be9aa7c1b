package go_geonn

import (
	"errors"
	"fmt"

	"github.com/golang/geo/r3"
	"github.com/golang/geo/s2"
	"github.com/paulmach/orb"
	"go.uber.org/multierr"
)

const (
	MinLatitude  = -90
	MaxLatitude  = 90
	MinLongitude = -180
	MaxLongitude = 180
)

// ErrInvalidCoordinate is wrapped by every validation failure.
var ErrInvalidCoordinate = errors.New("invalid coordinate")

// Point is a location in decimal degrees. Its id is its position in the slice handed to a
// search component.
type Point struct {
	Lat float64
	Lng float64
}

// Orb returns the point as an orb.Point, which is ordered [lng, lat].
func (p Point) Orb() orb.Point {
	return orb.Point{p.Lng, p.Lat}
}

// PointsFromMultiPoint converts an orb.MultiPoint into points, preserving order.
func PointsFromMultiPoint(mp orb.MultiPoint) []Point {
	points := make([]Point, len(mp))
	for i, p := range mp {
		points[i] = Point{Lat: p.Lat(), Lng: p.Lon()}
	}
	return points
}

func (p Point) validate() error {
	// Written as negated range checks so NaN fails as well.
	if !(p.Lat >= MinLatitude && p.Lat <= MaxLatitude) || !(p.Lng >= MinLongitude && p.Lng <= MaxLongitude) {
		return fmt.Errorf("%w: latitude %f (Min:-90, Max 90) or longitude %f (Min: -180, Max 180)", ErrInvalidCoordinate, p.Lat, p.Lng)
	}
	return nil
}

// Validate checks every point and reports all of the out of range ones at once.
// Use multierr.Errors to get the individual failures.
func Validate(points []Point) error {
	var err error
	for i, p := range points {
		if pErr := p.validate(); pErr != nil {
			err = multierr.Append(err, fmt.Errorf("point %d: %w", i, pErr))
		}
	}
	return err
}

// indexedPoint is the shared internal representation used by every component.
type indexedPoint struct {
	id int
	ll s2.LatLng
	v  r3.Vector
}

func newIndexedPoint(id int, p Point) indexedPoint {
	ll := s2.LatLngFromDegrees(p.Lat, p.Lng)
	return indexedPoint{
		id: id,
		ll: ll,
		v:  s2.PointFromLatLng(ll).Vector,
	}
}

func indexPoints(points []Point) []indexedPoint {
	indexed := make([]indexedPoint, len(points))
	for i, p := range points {
		indexed[i] = newIndexedPoint(i, p)
	}
	return indexed
}

// shifted returns a copy of p moved by deg degrees of longitude, keeping its id.
func (p indexedPoint) shifted(deg float64) indexedPoint {
	p.ll.Lng += s2.LatLngFromDegrees(0, deg).Lng
	return p
}

func (p indexedPoint) lat() float64 {
	return float64(p.ll.Lat)
}

func (p indexedPoint) lng() float64 {
	return float64(p.ll.Lng)
}
