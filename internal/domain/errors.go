package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyCorpus signals a fit attempt over zero complaints or zero terms.
	ErrEmptyCorpus = errors.New("empty corpus")
	// ErrNotFitted signals a prediction before any successful fit.
	ErrNotFitted = errors.New("detector not fitted")
	// ErrInvalidThreshold signals a similarity threshold outside [0, 1].
	ErrInvalidThreshold = errors.New("invalid similarity threshold")
	// ErrComplaintNotFound signals a missing stored complaint.
	ErrComplaintNotFound = errors.New("complaint not found")
	// ErrInvalidComplaint signals a complaint that failed validation.
	ErrInvalidComplaint = errors.New("invalid complaint")
	// ErrSourceUnavailable signals that the configured corpus source cannot serve the operation.
	ErrSourceUnavailable = errors.New("corpus source unavailable")
)

// ThresholdError wraps ErrInvalidThreshold with the rejected value.
type ThresholdError struct {
	Value float64
}

func (e *ThresholdError) Error() string {
	return fmt.Sprintf("%s: %v is outside [0, 1]", ErrInvalidThreshold.Error(), e.Value)
}

func (e *ThresholdError) Unwrap() error { return ErrInvalidThreshold }

// NewThresholdError creates a threshold error for the given value.
func NewThresholdError(v float64) error {
	return &ThresholdError{Value: v}
}
