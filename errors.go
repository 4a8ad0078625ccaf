package civicdex

import "github.com/kailas-cloud/civicdex/internal/domain"

// Sentinel errors. Use errors.Is to match.
var (
	ErrNotFitted        = domain.ErrNotFitted
	ErrEmptyCorpus      = domain.ErrEmptyCorpus
	ErrInvalidThreshold = domain.ErrInvalidThreshold
	ErrInvalidComplaint = domain.ErrInvalidComplaint
)
