package complaint

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/kailas-cloud/civicdex/internal/domain"
	dombatch "github.com/kailas-cloud/civicdex/internal/domain/batch"
	domcomplaint "github.com/kailas-cloud/civicdex/internal/domain/complaint"
)

// MaxBatchSize is the default maximum number of items per batch request.
const MaxBatchSize = 100

// Draft is an unvalidated complaint as received from a client.
type Draft struct {
	ID          string
	Location    string
	Description string
	Payload     map[string]string
}

// Service manages stored historical complaints. Writes become visible to
// duplicate checks only after the next retrain.
type Service struct {
	repo         Repository
	bulk         BulkUpserter
	maxBatchSize int
	newID        func() string
}

// New creates a complaint service.
func New(repo Repository, bulk BulkUpserter) *Service {
	return &Service{repo: repo, bulk: bulk, maxBatchSize: MaxBatchSize, newID: uuid.NewString}
}

// WithMaxBatchSize configures the maximum batch size.
func (s *Service) WithMaxBatchSize(size int) *Service {
	if size > 0 {
		s.maxBatchSize = size
	}
	return s
}

// Upsert validates and stores a complaint. Returns true if it was created.
func (s *Service) Upsert(ctx context.Context, d Draft) (domcomplaint.Complaint, bool, error) {
	c, err := domcomplaint.New(d.ID, d.Location, d.Description, d.Payload)
	if err != nil {
		return domcomplaint.Complaint{}, false, err
	}
	created, err := s.repo.Upsert(ctx, &c)
	if err != nil {
		return domcomplaint.Complaint{}, false, fmt.Errorf("upsert complaint: %w", err)
	}
	return c, created, nil
}

// Create stores a complaint under a freshly generated id.
func (s *Service) Create(ctx context.Context, d Draft) (domcomplaint.Complaint, error) {
	d.ID = s.newID()
	c, _, err := s.Upsert(ctx, d)
	return c, err
}

// Get returns a stored complaint.
func (s *Service) Get(ctx context.Context, id string) (domcomplaint.Complaint, error) {
	c, err := s.repo.Get(ctx, id)
	if err != nil {
		return domcomplaint.Complaint{}, fmt.Errorf("get complaint: %w", err)
	}
	return c, nil
}

// Delete removes a stored complaint.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete complaint: %w", err)
	}
	return nil
}

// BatchUpsert validates every draft and stores the valid ones in one pipeline.
// Results are positional: results[i] reports drafts[i].
func (s *Service) BatchUpsert(ctx context.Context, drafts []Draft) []dombatch.Result {
	results := make([]dombatch.Result, len(drafts))

	if len(drafts) > s.maxBatchSize {
		for i, d := range drafts {
			results[i] = dombatch.NewError(d.ID,
				fmt.Errorf("batch size exceeds %d: %w", s.maxBatchSize, domain.ErrInvalidComplaint))
		}
		return results
	}

	valid := make([]domcomplaint.Complaint, 0, len(drafts))
	validIdx := make([]int, 0, len(drafts))
	for i, d := range drafts {
		c, err := domcomplaint.New(d.ID, d.Location, d.Description, d.Payload)
		if err != nil {
			results[i] = dombatch.NewError(d.ID, err)
			continue
		}
		valid = append(valid, c)
		validIdx = append(validIdx, i)
	}

	if len(valid) == 0 {
		return results
	}

	if err := s.bulk.BatchUpsert(ctx, valid); err != nil {
		for _, i := range validIdx {
			results[i] = dombatch.NewError(drafts[i].ID, fmt.Errorf("batch upsert: %w", err))
		}
		return results
	}

	for _, i := range validIdx {
		results[i] = dombatch.NewOK(drafts[i].ID)
	}
	return results
}
