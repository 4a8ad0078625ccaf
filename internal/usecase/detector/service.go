package detector

import (
	"context"
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/civicdex/internal/corpus"
	"github.com/kailas-cloud/civicdex/internal/domain"
	"github.com/kailas-cloud/civicdex/internal/domain/complaint"
	"github.com/kailas-cloud/civicdex/internal/domain/duplicate"
	"github.com/kailas-cloud/civicdex/internal/metrics"
	"github.com/kailas-cloud/civicdex/internal/textnorm"
)

// Stats describes the published corpus snapshot.
type Stats struct {
	Fitted     bool
	Complaints int
	Vocabulary int
	Areas      int
	FittedAt   time.Time
}

// Service detects duplicate complaints against an immutable corpus snapshot.
// Fits build a new snapshot off to the side and publish it atomically;
// predictions never observe a partially built corpus.
type Service struct {
	current          atomic.Pointer[corpus.Index]
	fitMu            sync.Mutex
	source           Source
	opts             corpus.Options
	defaultThreshold float64
	metrics          *metrics.Detector
	logger           *zap.Logger
}

// New creates a detector. source may be nil when fits are only driven by Fit.
func New(source Source, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		source:           source,
		defaultThreshold: domain.DefaultThreshold,
		logger:           logger,
	}
}

// WithOptions configures vocabulary cap and fit parallelism.
func (s *Service) WithOptions(opts corpus.Options) *Service {
	s.opts = opts
	return s
}

// WithDefaultThreshold configures the threshold used by PredictDefault.
// Values outside [0, 1] are ignored.
func (s *Service) WithDefaultThreshold(t float64) *Service {
	if validThreshold(t) {
		s.defaultThreshold = t
	}
	return s
}

// WithMetrics attaches Prometheus metrics.
func (s *Service) WithMetrics(m *metrics.Detector) *Service {
	s.metrics = m
	return s
}

// DefaultThreshold returns the configured default similarity threshold.
func (s *Service) DefaultThreshold() float64 { return s.defaultThreshold }

// Fit builds a snapshot from complaints and publishes it. On error the
// previously published snapshot stays in place.
func (s *Service) Fit(ctx context.Context, complaints []complaint.Complaint) (Stats, error) {
	s.fitMu.Lock()
	defer s.fitMu.Unlock()
	return s.fitLocked(ctx, complaints)
}

// Retrain reloads the corpus from the configured source and publishes a new snapshot.
func (s *Service) Retrain(ctx context.Context) (Stats, error) {
	if s.source == nil {
		return Stats{}, fmt.Errorf("retrain: %w", domain.ErrSourceUnavailable)
	}

	s.fitMu.Lock()
	defer s.fitMu.Unlock()

	complaints, err := s.source.Load(ctx)
	if err != nil {
		s.logger.Error("Failed to load corpus", zap.Error(err))
		return Stats{}, fmt.Errorf("load corpus: %w", err)
	}
	return s.fitLocked(ctx, complaints)
}

func (s *Service) fitLocked(ctx context.Context, complaints []complaint.Complaint) (Stats, error) {
	start := time.Now()
	s.logger.Info("Fitting corpus", zap.Int("complaints", len(complaints)))

	ix, err := corpus.Build(ctx, complaints, s.opts)
	duration := time.Since(start)
	if err != nil {
		s.metrics.ObserveFit(duration, err, 0, 0, 0)
		s.logger.Warn("Corpus fit rejected, keeping previous snapshot",
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return Stats{}, fmt.Errorf("fit: %w", err)
	}

	s.current.Store(ix)
	s.metrics.ObserveFit(duration, nil, ix.Len(), ix.Vocabulary(), ix.Areas())
	s.logger.Info("Corpus published",
		zap.Int("complaints", ix.Len()),
		zap.Int("vocabulary", ix.Vocabulary()),
		zap.Int("areas", ix.Areas()),
		zap.Duration("duration", duration),
	)
	return statsOf(ix), nil
}

// Predict checks query against same-location complaints of the published snapshot.
func (s *Service) Predict(
	_ context.Context, q complaint.Query, threshold float64,
) (duplicate.Verdict, error) {
	ix := s.current.Load()
	if ix == nil {
		return duplicate.Verdict{}, domain.ErrNotFitted
	}
	if !validThreshold(threshold) {
		return duplicate.Verdict{}, domain.NewThresholdError(threshold)
	}

	hit := ix.Best(q.Location(), textnorm.Normalize(q.Description()))
	if hit.Row < 0 {
		s.metrics.ObservePrediction(metrics.VerdictNoCandidates, 0)
		return duplicate.NoCandidates(), nil
	}

	isDup := hit.Score >= threshold
	match := ix.Record(hit.Row).Complaint()
	if isDup {
		s.metrics.ObservePrediction(metrics.VerdictDuplicate, hit.Score)
	} else {
		s.metrics.ObservePrediction(metrics.VerdictUnique, hit.Score)
	}
	return duplicate.New(isDup, &match, hit.Score, hit.Candidates), nil
}

// PredictDefault is Predict with the configured default threshold.
func (s *Service) PredictDefault(ctx context.Context, q complaint.Query) (duplicate.Verdict, error) {
	return s.Predict(ctx, q, s.defaultThreshold)
}

// Stats describes the currently published snapshot.
func (s *Service) Stats() Stats {
	return statsOf(s.current.Load())
}

// HealthCheck reports ErrNotFitted until the first successful fit.
func (s *Service) HealthCheck(_ context.Context) error {
	if s.current.Load() == nil {
		return domain.ErrNotFitted
	}
	return nil
}

func statsOf(ix *corpus.Index) Stats {
	if ix == nil {
		return Stats{}
	}
	return Stats{
		Fitted:     true,
		Complaints: ix.Len(),
		Vocabulary: ix.Vocabulary(),
		Areas:      ix.Areas(),
		FittedAt:   ix.BuiltAt(),
	}
}

func validThreshold(t float64) bool {
	return !math.IsNaN(t) && t >= 0 && t <= 1
}
