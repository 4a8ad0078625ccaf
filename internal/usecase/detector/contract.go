package detector

import (
	"context"

	"github.com/kailas-cloud/civicdex/internal/domain/complaint"
)

// Source loads the full batch of historical complaints for a fit.
type Source interface {
	Load(ctx context.Context) ([]complaint.Complaint, error)
}
