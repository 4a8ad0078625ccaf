package complaint

import (
	"context"

	domcomplaint "github.com/kailas-cloud/civicdex/internal/domain/complaint"
)

// Repository defines the storage contract for historical complaints.
type Repository interface {
	Upsert(ctx context.Context, c *domcomplaint.Complaint) (created bool, err error)
	Get(ctx context.Context, id string) (domcomplaint.Complaint, error)
	Delete(ctx context.Context, id string) error
}

// BulkUpserter stores many complaints in one round-trip.
type BulkUpserter interface {
	BatchUpsert(ctx context.Context, cs []domcomplaint.Complaint) error
}
