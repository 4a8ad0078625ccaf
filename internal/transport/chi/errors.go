package chi

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/kailas-cloud/civicdex/internal/domain"
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

func defaultErrorHandlers() []errorHandler {
	return []errorHandler{
		thresholdHandler,
		sentinelHandler(domain.ErrNotFitted, http.StatusServiceUnavailable, ErrorCodeNotFitted),
		sentinelHandler(domain.ErrInvalidComplaint, http.StatusBadRequest, ErrorCodeValidationFailed),
		sentinelHandler(domain.ErrEmptyCorpus, http.StatusUnprocessableEntity, ErrorCodeEmptyCorpus),
		sentinelHandler(domain.ErrComplaintNotFound, http.StatusNotFound, ErrorCodeComplaintNotFound),
		sentinelHandler(domain.ErrSourceUnavailable, http.StatusNotImplemented, ErrorCodeNotImplemented),
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
// Validation errors carry their own detail since they only describe client input.
func safeDomainMessage(err error) string {
	if errors.Is(err, domain.ErrInvalidComplaint) {
		return err.Error()
	}
	sentinels := []error{
		domain.ErrNotFitted,
		domain.ErrEmptyCorpus,
		domain.ErrComplaintNotFound,
		domain.ErrSourceUnavailable,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

// thresholdHandler reports the rejected threshold value.
func thresholdHandler(w http.ResponseWriter, err error, _ string) bool {
	var te *domain.ThresholdError
	if !errors.As(err, &te) {
		return false
	}
	writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed, te.Error())
	return true
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, ErrorCodeInternalError, "internal error")
}

func batchErrorCode(err error) ErrorCode {
	switch {
	case errors.Is(err, domain.ErrInvalidComplaint):
		return ErrorCodeValidationFailed
	case errors.Is(err, domain.ErrComplaintNotFound):
		return ErrorCodeComplaintNotFound
	default:
		return ErrorCodeInternalError
	}
}
