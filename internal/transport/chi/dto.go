package chi

import "time"

// ErrorCode is the machine-readable error code in API error bodies.
type ErrorCode string

// API error codes.
const (
	ErrorCodeBadRequest        ErrorCode = "bad_request"
	ErrorCodeUnauthorized      ErrorCode = "unauthorized"
	ErrorCodeValidationFailed  ErrorCode = "validation_failed"
	ErrorCodeNotFitted         ErrorCode = "not_fitted"
	ErrorCodeEmptyCorpus       ErrorCode = "empty_corpus"
	ErrorCodeComplaintNotFound ErrorCode = "complaint_not_found"
	ErrorCodeNotImplemented    ErrorCode = "not_implemented"
	ErrorCodeInternalError     ErrorCode = "internal_error"
)

// ErrorResponse is the JSON body of every error response.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// CheckDuplicateRequest is the body of POST /duplicates/check.
type CheckDuplicateRequest struct {
	Location            string   `json:"location"`
	Description         string   `json:"description"`
	SimilarityThreshold *float64 `json:"similarity_threshold,omitempty"`
}

// CheckDuplicateResponse reports the verdict for one incoming complaint.
type CheckDuplicateResponse struct {
	IsDuplicate bool               `json:"is_duplicate"`
	BestScore   float64            `json:"best_score"`
	Threshold   float64            `json:"threshold"`
	Candidates  int                `json:"candidates"`
	BestMatch   *ComplaintResponse `json:"best_match,omitempty"`
}

// ComplaintRequest is the body of POST /complaints and PUT /complaints/{id}.
type ComplaintRequest struct {
	Location    string            `json:"location"`
	Description string            `json:"description"`
	Payload     map[string]string `json:"payload,omitempty"`
}

// ComplaintResponse is a stored historical complaint.
type ComplaintResponse struct {
	ID          string            `json:"id"`
	Location    string            `json:"location"`
	Description string            `json:"description"`
	Payload     map[string]string `json:"payload,omitempty"`
}

// BatchUpsertItem is one complaint in POST /complaints/batch.
type BatchUpsertItem struct {
	ID          string            `json:"id"`
	Location    string            `json:"location"`
	Description string            `json:"description"`
	Payload     map[string]string `json:"payload,omitempty"`
}

// BatchUpsertRequest is the body of POST /complaints/batch.
type BatchUpsertRequest struct {
	Items []BatchUpsertItem `json:"items"`
}

// BatchResultItem reports the outcome for one batch item.
type BatchResultItem struct {
	ID     string         `json:"id"`
	Status string         `json:"status"`
	Error  *ErrorResponse `json:"error,omitempty"`
}

// BatchResponse is the body returned by POST /complaints/batch.
type BatchResponse struct {
	Items     []BatchResultItem `json:"items"`
	Succeeded int               `json:"succeeded"`
	Failed    int               `json:"failed"`
}

// CorpusResponse describes the published corpus snapshot.
type CorpusResponse struct {
	Fitted     bool       `json:"fitted"`
	Complaints int        `json:"complaints"`
	Vocabulary int        `json:"vocabulary"`
	Areas      int        `json:"areas"`
	FittedAt   *time.Time `json:"fitted_at,omitempty"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status  string            `json:"status"`
	Checks  map[string]string `json:"checks"`
	Version string            `json:"version"`
}
