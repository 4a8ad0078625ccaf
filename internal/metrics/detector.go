package metrics

import (
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Verdict labels for DetectorPredictions.
const (
	VerdictDuplicate    = "duplicate"
	VerdictUnique       = "unique"
	VerdictNoCandidates = "no_candidates"
)

// Detector holds duplicate-detector Prometheus metrics. A nil *Detector records nothing.
type Detector struct {
	fitDuration prometheus.Histogram
	fits        *prometheus.CounterVec
	complaints  prometheus.Gauge
	vocabulary  prometheus.Gauge
	areas       prometheus.Gauge
	predictions *prometheus.CounterVec
	bestScore   prometheus.Histogram
}

// NewDetector creates detector metrics and registers them on reg,
// reusing collectors that are already registered.
func NewDetector(reg prometheus.Registerer) (*Detector, error) {
	m := &Detector{
		fitDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "civicdex",
			Name:      "detector_fit_duration_seconds",
			Help:      "Corpus fit duration in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}),
		fits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "civicdex",
			Name:      "detector_fits_total",
			Help:      "Total corpus fits by outcome",
		}, []string{"status"}),
		complaints: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "civicdex",
			Name:      "detector_corpus_complaints",
			Help:      "Complaints in the published corpus",
		}),
		vocabulary: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "civicdex",
			Name:      "detector_vocabulary_terms",
			Help:      "Terms in the published vector space",
		}),
		areas: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "civicdex",
			Name:      "detector_areas",
			Help:      "Distinct locations in the published corpus",
		}),
		predictions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "civicdex",
			Name:      "detector_predictions_total",
			Help:      "Duplicate checks by verdict",
		}, []string{"verdict"}),
		bestScore: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "civicdex",
			Name:      "detector_best_score",
			Help:      "Best same-area similarity per duplicate check",
			Buckets:   prometheus.LinearBuckets(0.1, 0.1, 10),
		}),
	}
	if reg == nil {
		return m, nil
	}
	if err := registerOrReuse(reg, &m.fitDuration); err != nil {
		return nil, err
	}
	if err := registerOrReuse(reg, &m.fits); err != nil {
		return nil, err
	}
	if err := registerOrReuse(reg, &m.complaints); err != nil {
		return nil, err
	}
	if err := registerOrReuse(reg, &m.vocabulary); err != nil {
		return nil, err
	}
	if err := registerOrReuse(reg, &m.areas); err != nil {
		return nil, err
	}
	if err := registerOrReuse(reg, &m.predictions); err != nil {
		return nil, err
	}
	if err := registerOrReuse(reg, &m.bestScore); err != nil {
		return nil, err
	}
	return m, nil
}

// registerOrReuse registers a collector or reuses an existing one.
func registerOrReuse[T prometheus.Collector](reg prometheus.Registerer, c *T) error {
	if err := reg.Register(*c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			existing, ok := are.ExistingCollector.(T)
			if !ok {
				return fmt.Errorf("metric already registered with incompatible type: %T", are.ExistingCollector)
			}
			*c = existing
			return nil
		}
		return fmt.Errorf("register metric: %w", err)
	}
	return nil
}

// ObserveFit records a fit attempt. Corpus gauges change only on success.
func (m *Detector) ObserveFit(d time.Duration, err error, complaints, vocabulary, areas int) {
	if m == nil {
		return
	}
	m.fitDuration.Observe(d.Seconds())
	if err != nil {
		m.fits.WithLabelValues("error").Inc()
		return
	}
	m.fits.WithLabelValues("ok").Inc()
	m.complaints.Set(float64(complaints))
	m.vocabulary.Set(float64(vocabulary))
	m.areas.Set(float64(areas))
}

// ObservePrediction records one duplicate check.
func (m *Detector) ObservePrediction(verdict string, score float64) {
	if m == nil {
		return
	}
	m.predictions.WithLabelValues(verdict).Inc()
	if verdict != VerdictNoCandidates {
		m.bestScore.Observe(score)
	}
}
