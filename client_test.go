package civicdex

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

var history = []Complaint{
	{ID: "1", Location: "Bargarh", Description: "Streetlight not working near Block A", Payload: map[string]string{"urgency": "high"}},
	{ID: "2", Location: "Bargarh", Description: "Garbage overflowing beside the market"},
	{ID: "3", Location: "Sambalpur", Description: "Streetlight not working near Block A"},
}

func fitted(t *testing.T, opts ...Option) *Detector {
	t.Helper()
	d, err := New(opts...)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if _, err := d.Fit(context.Background(), history); err != nil {
		t.Fatalf("fit: %v", err)
	}
	return d
}

func TestNew_InvalidThreshold(t *testing.T) {
	for _, th := range []float64{-0.1, 1.01, math.NaN()} {
		if _, err := New(WithDefaultThreshold(th)); !errors.Is(err, ErrInvalidThreshold) {
			t.Errorf("threshold %v: expected ErrInvalidThreshold, got %v", th, err)
		}
	}
}

func TestPredict_NotFitted(t *testing.T) {
	d, err := New()
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if _, err := d.Predict(context.Background(), Query{"Bargarh", "x"}); !errors.Is(err, ErrNotFitted) {
		t.Fatalf("expected ErrNotFitted, got %v", err)
	}
	if d.Stats().Fitted {
		t.Error("expected unfitted stats")
	}
}

func TestPredict_Duplicate(t *testing.T) {
	d := fitted(t)
	v, err := d.Predict(context.Background(), Query{"Bargarh", "streetlight NOT working near block-A."})
	if err != nil {
		t.Fatalf("predict: %v", err)
	}
	if !v.IsDuplicate || v.BestScore != 1.0 {
		t.Fatalf("expected exact duplicate, got %+v", v)
	}
	if v.BestMatch == nil || v.BestMatch.ID != "1" || v.BestMatch.Payload["urgency"] != "high" {
		t.Errorf("unexpected best match: %+v", v.BestMatch)
	}
	if v.Candidates != 2 {
		t.Errorf("candidates = %d, want 2", v.Candidates)
	}
}

func TestPredict_LocationScoped(t *testing.T) {
	d := fitted(t)
	v, err := d.Predict(context.Background(), Query{"Sambalpur", "Garbage overflowing beside the market"})
	if err != nil {
		t.Fatalf("predict: %v", err)
	}
	if v.IsDuplicate || v.BestMatch != nil {
		t.Errorf("complaints from another location must not match: %+v", v)
	}

	v, err = d.Predict(context.Background(), Query{"Jharsuguda", "Garbage overflowing beside the market"})
	if err != nil {
		t.Fatalf("predict: %v", err)
	}
	if v.IsDuplicate || v.BestScore != 0 || v.Candidates != 0 {
		t.Errorf("unknown location: got %+v", v)
	}
}

func TestPredictWithThreshold(t *testing.T) {
	d := fitted(t)
	ctx := context.Background()

	low, err := d.PredictWithThreshold(ctx, Query{"Bargarh", "streetlight broken"}, 0)
	if err != nil {
		t.Fatalf("predict: %v", err)
	}
	if !low.IsDuplicate {
		t.Error("threshold 0 marks any candidate as duplicate")
	}

	high, err := d.PredictWithThreshold(ctx, Query{"Bargarh", "streetlight broken"}, 1)
	if err != nil {
		t.Fatalf("predict: %v", err)
	}
	if high.IsDuplicate {
		t.Error("partial overlap cannot reach threshold 1")
	}
	if low.BestScore != high.BestScore {
		t.Error("threshold must not change the score")
	}

	if _, err := d.PredictWithThreshold(ctx, Query{"Bargarh", "x"}, 2); !errors.Is(err, ErrInvalidThreshold) {
		t.Errorf("expected ErrInvalidThreshold, got %v", err)
	}
}

func TestFit_Errors(t *testing.T) {
	d := fitted(t)
	ctx := context.Background()

	if _, err := d.Fit(ctx, nil); !errors.Is(err, ErrEmptyCorpus) {
		t.Errorf("expected ErrEmptyCorpus, got %v", err)
	}
	if _, err := d.Fit(ctx, []Complaint{{Location: "", Description: "x"}}); !errors.Is(err, ErrInvalidComplaint) {
		t.Errorf("expected ErrInvalidComplaint, got %v", err)
	}
	if st := d.Stats(); st.Complaints != len(history) {
		t.Errorf("failed fits must keep the previous corpus, got %+v", st)
	}
}

func TestFit_AssignsMissingIDs(t *testing.T) {
	d, err := New()
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	_, err = d.Fit(context.Background(), []Complaint{
		{Location: "Puri", Description: "Beach lights off"},
		{Location: "Puri", Description: "Drain blocked on temple road"},
	})
	if err != nil {
		t.Fatalf("fit: %v", err)
	}
	v, err := d.Predict(context.Background(), Query{"Puri", "drain blocked on temple road"})
	if err != nil {
		t.Fatalf("predict: %v", err)
	}
	if v.BestMatch == nil || v.BestMatch.ID != "2" {
		t.Errorf("expected positional id 2, got %+v", v.BestMatch)
	}
}

func TestFit_AcceptsFreeFormRows(t *testing.T) {
	d, err := New()
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	long := strings.Repeat("water logging ", 1600)
	_, err = d.Fit(context.Background(), []Complaint{
		{ID: "C 1", Location: "Puri", Description: "Beach lights off"},
		{ID: "12.0", Location: "Puri", Description: long},
	})
	if err != nil {
		t.Fatalf("fit: %v", err)
	}
	v, err := d.Predict(context.Background(), Query{"Puri", "beach lights off"})
	if err != nil {
		t.Fatalf("predict: %v", err)
	}
	if v.BestMatch == nil || v.BestMatch.ID != "C 1" {
		t.Errorf("expected match C 1, got %+v", v.BestMatch)
	}
}

func TestPredict_OversizedQuery(t *testing.T) {
	d := fitted(t)
	v, err := d.Predict(context.Background(), Query{strings.Repeat("x", 300), "pothole"})
	if err != nil {
		t.Fatalf("predict: %v", err)
	}
	if v.IsDuplicate || v.BestScore != 0 || v.Candidates != 0 {
		t.Errorf("expected no-candidate verdict, got %+v", v)
	}
	if _, err := d.Predict(context.Background(), Query{"Bargarh", strings.Repeat("garbage ", 3000)}); err != nil {
		t.Errorf("long description rejected: %v", err)
	}
}

func TestFitCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "complaints.csv")
	data := "location,description,issue_type\n" +
		"Bargarh,Pothole near the bus stand,road\n" +
		"Bargarh,No water supply since Monday,water\n"
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatalf("write csv: %v", err)
	}

	d, err := New(WithMaxFeatures(100), WithFitWorkers(2))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	st, err := d.FitCSV(context.Background(), path)
	if err != nil {
		t.Fatalf("fit csv: %v", err)
	}
	if !st.Fitted || st.Complaints != 2 || st.Areas != 1 || st.FittedAt.IsZero() {
		t.Errorf("unexpected stats: %+v", st)
	}

	v, err := d.Predict(context.Background(), Query{"Bargarh", "pothole near the bus stand"})
	if err != nil {
		t.Fatalf("predict: %v", err)
	}
	if !v.IsDuplicate || v.BestMatch.Payload["issue_type"] != "road" {
		t.Errorf("unexpected verdict: %+v", v)
	}

	if _, err := d.FitCSV(context.Background(), filepath.Join(t.TempDir(), "missing.csv")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestFitReader_MissingColumn(t *testing.T) {
	d, err := New()
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	_, err = d.FitReader(context.Background(), strings.NewReader("location,text\nPuri,x\n"))
	if !errors.Is(err, ErrInvalidComplaint) {
		t.Errorf("expected ErrInvalidComplaint, got %v", err)
	}
}

func TestWithPrometheus(t *testing.T) {
	reg := prometheus.NewRegistry()
	d := fitted(t, WithPrometheus(reg), WithDefaultThreshold(0.5))
	if d.DefaultThreshold() != 0.5 {
		t.Errorf("default threshold = %v, want 0.5", d.DefaultThreshold())
	}
	if _, err := d.Predict(context.Background(), Query{"Bargarh", "garbage"}); err != nil {
		t.Fatalf("predict: %v", err)
	}
	n, err := testutil.GatherAndCount(reg, "civicdex_detector_predictions_total")
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	if n != 1 {
		t.Errorf("expected one prediction series, got %d", n)
	}
}
