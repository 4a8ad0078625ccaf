package civicdex

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Option configures a Detector.
type Option func(*detectorConfig)

type detectorConfig struct {
	maxFeatures int
	workers     int
	threshold   float64
	logger      *zap.Logger
	registerer  prometheus.Registerer
}

// WithMaxFeatures caps the vocabulary at the n most frequent terms (default 10000).
func WithMaxFeatures(n int) Option {
	return func(c *detectorConfig) {
		c.maxFeatures = n
	}
}

// WithFitWorkers sets how many goroutines analyze complaints during a fit.
func WithFitWorkers(n int) Option {
	return func(c *detectorConfig) {
		c.workers = n
	}
}

// WithDefaultThreshold sets the threshold used by Predict (default 0.8).
// New fails when t is outside [0, 1].
func WithDefaultThreshold(t float64) Option {
	return func(c *detectorConfig) {
		c.threshold = t
	}
}

// WithLogger logs fits through l. Nothing is logged by default.
func WithLogger(l *zap.Logger) Option {
	return func(c *detectorConfig) {
		c.logger = l
	}
}

// WithPrometheus registers detector metrics on reg.
func WithPrometheus(reg prometheus.Registerer) Option {
	return func(c *detectorConfig) {
		c.registerer = reg
	}
}
