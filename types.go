package civicdex

import (
	"math"
	"time"

	"github.com/kailas-cloud/civicdex/internal/domain"
	domcomplaint "github.com/kailas-cloud/civicdex/internal/domain/complaint"
	"github.com/kailas-cloud/civicdex/internal/domain/duplicate"
	detectoruc "github.com/kailas-cloud/civicdex/internal/usecase/detector"
)

// DefaultThreshold is the default duplicate similarity threshold.
const DefaultThreshold = domain.DefaultThreshold

// Complaint is a historical complaint.
type Complaint struct {
	ID          string
	Location    string
	Description string
	Payload     map[string]string
}

// Query is an incoming complaint to check. It is never added to the corpus.
type Query struct {
	Location    string
	Description string
}

// Verdict is the result of a duplicate check.
type Verdict struct {
	IsDuplicate bool
	BestMatch   *Complaint // set only when IsDuplicate
	BestScore   float64    // 0 when the location has no complaints
	Candidates  int
}

// Stats describes a fitted corpus.
type Stats struct {
	Fitted     bool
	Complaints int
	Vocabulary int
	Areas      int
	FittedAt   time.Time
}

func complaintFromDomain(c *domcomplaint.Complaint) *Complaint {
	if c == nil {
		return nil
	}
	return &Complaint{
		ID:          c.ID(),
		Location:    c.Location(),
		Description: c.Description(),
		Payload:     c.Payload(),
	}
}

func verdictFromDomain(v duplicate.Verdict) Verdict {
	return Verdict{
		IsDuplicate: v.IsDuplicate(),
		BestMatch:   complaintFromDomain(v.BestMatch()),
		BestScore:   v.BestScore(),
		Candidates:  v.Candidates(),
	}
}

func statsFromDomain(st detectoruc.Stats) Stats {
	return Stats{
		Fitted:     st.Fitted,
		Complaints: st.Complaints,
		Vocabulary: st.Vocabulary,
		Areas:      st.Areas,
		FittedAt:   st.FittedAt,
	}
}

func validThreshold(t float64) bool {
	return !math.IsNaN(t) && t >= 0 && t <= 1
}
