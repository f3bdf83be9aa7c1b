package go_geonn

import "go.uber.org/zap"

type options struct {
	logger           *zap.Logger
	metric           func(Point, Point) float64
	periodicCovering bool
}

// Option configures a search component.
type Option interface {
	apply(*options)
}

func loadOptions(opts ...Option) options {
	o := options{
		logger: zap.NewNop(),
		metric: Haversine,
	}
	for _, opt := range opts {
		opt.apply(&o)
	}
	return o
}

type loggerOption struct {
	logger *zap.Logger
}

func (l loggerOption) apply(o *options) {
	if l.logger != nil {
		o.logger = l.logger
	}
}

// WithLogger sets the logger used for build and fill diagnostics.
// Default: a no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return loggerOption{logger: logger}
}

type metricOption func(Point, Point) float64

func (m metricOption) apply(o *options) {
	if m != nil {
		o.metric = m
	}
}

// WithMetric replaces the distance function of a DistanceCache.
// Default: Haversine. The metric must be symmetric.
func WithMetric(metric func(Point, Point) float64) Option {
	return metricOption(metric)
}

type periodicCovering bool

func (c periodicCovering) apply(o *options) {
	o.periodicCovering = bool(c)
}

// WithPeriodicCovering makes a GeodesicKDTree index every point three times, at its own
// longitude and shifted by ±360°, so neighbours across the antimeridian are found.
// Default: false.
func WithPeriodicCovering(enabled bool) Option {
	return periodicCovering(enabled)
}
