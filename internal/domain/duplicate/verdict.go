package duplicate

import "github.com/kailas-cloud/civicdex/internal/domain/complaint"

// Verdict is the outcome of checking one query against its area.
type Verdict struct {
	isDuplicate bool
	bestMatch   *complaint.Complaint
	bestScore   float64
	candidates  int
}

// New creates a Verdict. The match is kept only when the verdict is a duplicate.
func New(isDuplicate bool, bestMatch *complaint.Complaint, bestScore float64, candidates int) Verdict {
	if !isDuplicate {
		bestMatch = nil
	}
	return Verdict{
		isDuplicate: isDuplicate,
		bestMatch:   bestMatch,
		bestScore:   bestScore,
		candidates:  candidates,
	}
}

// NoCandidates is the verdict for an area without indexed complaints.
func NoCandidates() Verdict { return Verdict{} }

// IsDuplicate reports whether the best score reached the threshold.
func (v Verdict) IsDuplicate() bool { return v.isDuplicate }

// BestMatch returns the matched complaint, nil unless IsDuplicate.
func (v Verdict) BestMatch() *complaint.Complaint { return v.bestMatch }

// BestScore returns the highest cosine similarity seen, 0 without candidates.
func (v Verdict) BestScore() float64 { return v.bestScore }

// Candidates returns how many same-area complaints were compared.
func (v Verdict) Candidates() int { return v.candidates }
