package corpus

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/kailas-cloud/civicdex/internal/domain"
	"github.com/kailas-cloud/civicdex/internal/domain/complaint"
)

func mustComplaint(t *testing.T, id, location, description string) complaint.Complaint {
	t.Helper()
	c, err := complaint.New(id, location, description, nil)
	if err != nil {
		t.Fatalf("new complaint: %v", err)
	}
	return c
}

func testComplaints(t *testing.T) []complaint.Complaint {
	t.Helper()
	return []complaint.Complaint{
		mustComplaint(t, "1", "Bargarh", "Pothole near block A main road"),
		mustComplaint(t, "2", "Sambalpur", "Garbage not collected for a week"),
		mustComplaint(t, "3", "Bargarh", "Streetlight flickering near block A"),
		mustComplaint(t, "4", "Bargarh", "Pothole near block A main road"),
	}
}

func TestBuild_Empty(t *testing.T) {
	_, err := Build(context.Background(), nil, Options{})
	if !errors.Is(err, domain.ErrEmptyCorpus) {
		t.Fatalf("expected ErrEmptyCorpus, got %v", err)
	}
}

func TestBuild_NoTerms(t *testing.T) {
	cs := []complaint.Complaint{mustComplaint(t, "1", "Bargarh", "!!! ?")}
	_, err := Build(context.Background(), cs, Options{})
	if !errors.Is(err, domain.ErrEmptyCorpus) {
		t.Fatalf("expected ErrEmptyCorpus, got %v", err)
	}
}

func TestBuild_Stats(t *testing.T) {
	ix, err := Build(context.Background(), testComplaints(t), Options{Workers: 3})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ix.Len() != 4 {
		t.Errorf("expected 4 records, got %d", ix.Len())
	}
	if ix.Areas() != 2 {
		t.Errorf("expected 2 areas, got %d", ix.Areas())
	}
	if ix.AreaSize("Bargarh") != 3 {
		t.Errorf("expected 3 Bargarh complaints, got %d", ix.AreaSize("Bargarh"))
	}
	if ix.Vocabulary() == 0 {
		t.Error("expected non-empty vocabulary")
	}
	for i := 0; i < ix.Len(); i++ {
		if got := ix.Record(i).Complaint().ID(); got != fmt.Sprint(i+1) {
			t.Errorf("row %d holds complaint %s", i, got)
		}
	}
}

func TestBuild_ParallelismDoesNotChangeResult(t *testing.T) {
	cs := make([]complaint.Complaint, 0, 600)
	for i := 0; i < 600; i++ {
		cs = append(cs, mustComplaint(t, fmt.Sprintf("c-%d", i), fmt.Sprintf("area-%d", i%7),
			fmt.Sprintf("drain %d overflow near ward %d market", i%13, i%5)))
	}
	serial, err := Build(context.Background(), cs, Options{Workers: 1})
	if err != nil {
		t.Fatalf("serial build: %v", err)
	}
	parallel, err := Build(context.Background(), cs, Options{Workers: 8})
	if err != nil {
		t.Fatalf("parallel build: %v", err)
	}
	if serial.Vocabulary() != parallel.Vocabulary() {
		t.Fatalf("vocabulary differs: %d vs %d", serial.Vocabulary(), parallel.Vocabulary())
	}
	for i := 0; i < serial.Len(); i++ {
		a, b := serial.Record(i).Vector(), parallel.Record(i).Vector()
		if a.Len() != b.Len() {
			t.Fatalf("row %d vector length differs", i)
		}
		for k := range a.Values() {
			if a.Indices()[k] != b.Indices()[k] || a.Values()[k] != b.Values()[k] {
				t.Fatalf("row %d vector differs at %d", i, k)
			}
		}
	}
}

func TestBuild_MaxFeatures(t *testing.T) {
	ix, err := Build(context.Background(), testComplaints(t), Options{MaxFeatures: 3})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ix.Vocabulary() != 3 {
		t.Errorf("expected vocabulary capped at 3, got %d", ix.Vocabulary())
	}
}

func TestBuild_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Build(ctx, testComplaints(t), Options{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestBest_UnknownArea(t *testing.T) {
	ix, err := Build(context.Background(), testComplaints(t), Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	hit := ix.Best("Cuttack", "pothole near block a main road")
	if hit.Row != -1 || hit.Score != 0 || hit.Candidates != 0 {
		t.Errorf("expected empty hit, got %+v", hit)
	}
}

func TestBest_TieKeepsEarliestRow(t *testing.T) {
	ix, err := Build(context.Background(), testComplaints(t), Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	hit := ix.Best("Bargarh", "pothole near block a main road")
	if hit.Row != 0 {
		t.Errorf("expected row 0 on tie, got %d", hit.Row)
	}
	if hit.Score != 1.0 {
		t.Errorf("expected exact score 1, got %v", hit.Score)
	}
	if hit.Candidates != 3 {
		t.Errorf("expected 3 candidates, got %d", hit.Candidates)
	}
}

func TestBest_CrossAreaNeverCompared(t *testing.T) {
	ix, err := Build(context.Background(), testComplaints(t), Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	hit := ix.Best("Sambalpur", "pothole near block a main road")
	if hit.Row != 1 {
		t.Fatalf("expected the only Sambalpur row, got %d", hit.Row)
	}
	if hit.Score != 0 {
		t.Errorf("expected no overlap with Sambalpur complaint, got %v", hit.Score)
	}
}
