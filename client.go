// Package civicdex detects duplicate civic complaints in-process.
//
// A Detector is fitted on historical complaints (location + description),
// then checks incoming complaints against those filed at the same location
// using TF-IDF cosine similarity.
//
//	d, err := civicdex.New()
//	if err != nil { ... }
//	if _, err := d.FitCSV(ctx, "complaints.csv"); err != nil { ... }
//	v, err := d.Predict(ctx, civicdex.Query{Location: "Bargarh", Description: "Streetlight not working near block A"})
package civicdex

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/kailas-cloud/civicdex/internal/corpus"
	domcomplaint "github.com/kailas-cloud/civicdex/internal/domain/complaint"
	"github.com/kailas-cloud/civicdex/internal/metrics"
	"github.com/kailas-cloud/civicdex/internal/repository/csvsource"
	detectoruc "github.com/kailas-cloud/civicdex/internal/usecase/detector"
)

// Detector is the civicdex library entry point. Safe for concurrent use:
// predictions keep running against the previous corpus while a fit is in progress.
type Detector struct {
	svc *detectoruc.Service
}

// New creates an unfitted Detector.
func New(opts ...Option) (*Detector, error) {
	cfg := &detectorConfig{threshold: DefaultThreshold}
	for _, o := range opts {
		o(cfg)
	}
	if !validThreshold(cfg.threshold) {
		return nil, fmt.Errorf("civicdex: default threshold: %w", ErrInvalidThreshold)
	}

	svc := detectoruc.New(nil, cfg.logger).
		WithOptions(corpus.Options{
			MaxFeatures: cfg.maxFeatures,
			Workers:     cfg.workers,
		}).
		WithDefaultThreshold(cfg.threshold)

	if cfg.registerer != nil {
		m, err := metrics.NewDetector(cfg.registerer)
		if err != nil {
			return nil, fmt.Errorf("civicdex: register metrics: %w", err)
		}
		svc = svc.WithMetrics(m)
	}

	return &Detector{svc: svc}, nil
}

// Fit replaces the corpus with complaints. Complaints without an ID get their
// 1-based position. On error the previous corpus stays in place.
func (d *Detector) Fit(ctx context.Context, complaints []Complaint) (Stats, error) {
	cs := make([]domcomplaint.Complaint, len(complaints))
	for i, c := range complaints {
		id := c.ID
		if id == "" {
			id = strconv.Itoa(i + 1)
		}
		dc, err := domcomplaint.FromRecord(id, c.Location, c.Description, c.Payload)
		if err != nil {
			return Stats{}, fmt.Errorf("complaint %d: %w", i, err)
		}
		cs[i] = dc
	}
	return d.fit(ctx, cs)
}

// FitCSV replaces the corpus with the complaints of a CSV file. The file needs a
// header with location and description columns; id is optional and every other
// column is kept as payload.
func (d *Detector) FitCSV(ctx context.Context, path string) (Stats, error) {
	cs, err := csvsource.New(path).Load(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("load csv: %w", err)
	}
	return d.fit(ctx, cs)
}

// FitReader is FitCSV over an already opened CSV stream.
func (d *Detector) FitReader(ctx context.Context, r io.Reader) (Stats, error) {
	cs, err := csvsource.Parse(ctx, r)
	if err != nil {
		return Stats{}, fmt.Errorf("parse csv: %w", err)
	}
	return d.fit(ctx, cs)
}

func (d *Detector) fit(ctx context.Context, cs []domcomplaint.Complaint) (Stats, error) {
	st, err := d.svc.Fit(ctx, cs)
	if err != nil {
		return Stats{}, err //nolint:wrapcheck // already wrapped by the detector
	}
	return statsFromDomain(st), nil
}

// Predict checks a complaint using the default threshold.
func (d *Detector) Predict(ctx context.Context, q Query) (Verdict, error) {
	return d.PredictWithThreshold(ctx, q, d.svc.DefaultThreshold())
}

// PredictWithThreshold checks a complaint against the same-location corpus.
// threshold must be within [0, 1].
func (d *Detector) PredictWithThreshold(ctx context.Context, q Query, threshold float64) (Verdict, error) {
	v, err := d.svc.Predict(ctx, domcomplaint.NewQuery(q.Location, q.Description), threshold)
	if err != nil {
		return Verdict{}, err //nolint:wrapcheck // sentinel errors are part of the API
	}
	return verdictFromDomain(v), nil
}

// Stats describes the current corpus.
func (d *Detector) Stats() Stats {
	return statsFromDomain(d.svc.Stats())
}

// DefaultThreshold returns the threshold Predict uses.
func (d *Detector) DefaultThreshold() float64 {
	return d.svc.DefaultThreshold()
}
