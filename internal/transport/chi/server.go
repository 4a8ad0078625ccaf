package chi

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/kailas-cloud/civicdex/internal/domain"
	dombatch "github.com/kailas-cloud/civicdex/internal/domain/batch"
	domcomplaint "github.com/kailas-cloud/civicdex/internal/domain/complaint"
	complaintuc "github.com/kailas-cloud/civicdex/internal/usecase/complaint"
	detectoruc "github.com/kailas-cloud/civicdex/internal/usecase/detector"
	healthuc "github.com/kailas-cloud/civicdex/internal/usecase/health"
	"github.com/kailas-cloud/civicdex/internal/version"
)

// maxBodyBytes caps request bodies; a full batch of maximum-length descriptions fits.
const maxBodyBytes = 4 << 20

// Server serves the duplicate-detection HTTP API.
type Server struct {
	detector      *detectoruc.Service
	complaints    *complaintuc.Service
	health        *healthuc.Service
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server. complaints is nil when the corpus is
// file-backed; complaint endpoints then answer 501.
func NewServer(
	detector *detectoruc.Service,
	complaints *complaintuc.Service,
	health *healthuc.Service,
	logger *zap.Logger,
) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		detector:      detector,
		complaints:    complaints,
		health:        health,
		logger:        logger,
		errorHandlers: defaultErrorHandlers(),
	}
}

// Mount registers API routes on r.
func (s *Server) Mount(r chi.Router) {
	r.Post("/duplicates/check", s.CheckDuplicate)
	r.Get("/corpus", s.GetCorpus)
	r.Post("/corpus/retrain", s.Retrain)
	r.Route("/complaints", func(r chi.Router) {
		r.Post("/", s.CreateComplaint)
		r.Post("/batch", s.BatchUpsert)
		r.Put("/{id}", s.UpsertComplaint)
		r.Get("/{id}", s.GetComplaint)
		r.Delete("/{id}", s.DeleteComplaint)
	})
	r.Get("/health", s.HealthCheck)
}

// CheckDuplicate handles POST /duplicates/check.
func (s *Server) CheckDuplicate(w http.ResponseWriter, r *http.Request) {
	var req CheckDuplicateRequest
	if !decodeBody(w, r, &req) {
		return
	}

	q := domcomplaint.NewQuery(req.Location, req.Description)

	threshold := s.detector.DefaultThreshold()
	if req.SimilarityThreshold != nil {
		threshold = *req.SimilarityThreshold
	}

	v, err := s.detector.Predict(r.Context(), q, threshold)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	resp := CheckDuplicateResponse{
		IsDuplicate: v.IsDuplicate(),
		BestScore:   v.BestScore(),
		Threshold:   threshold,
		Candidates:  v.Candidates(),
	}
	if m := v.BestMatch(); m != nil {
		c := complaintToResponse(m)
		resp.BestMatch = &c
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetCorpus handles GET /corpus.
func (s *Server) GetCorpus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, statsToResponse(s.detector.Stats()))
}

// Retrain handles POST /corpus/retrain.
func (s *Server) Retrain(w http.ResponseWriter, r *http.Request) {
	st, err := s.detector.Retrain(r.Context())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, statsToResponse(st))
}

// CreateComplaint handles POST /complaints; the id is generated.
func (s *Server) CreateComplaint(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w) {
		return
	}
	var req ComplaintRequest
	if !decodeBody(w, r, &req) {
		return
	}

	c, err := s.complaints.Create(r.Context(), complaintuc.Draft{
		Location:    req.Location,
		Description: req.Description,
		Payload:     req.Payload,
	})
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	w.Header().Set("Location", "/complaints/"+c.ID())
	writeJSON(w, http.StatusCreated, complaintToResponse(&c))
}

// UpsertComplaint handles PUT /complaints/{id}.
func (s *Server) UpsertComplaint(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w) {
		return
	}
	var req ComplaintRequest
	if !decodeBody(w, r, &req) {
		return
	}

	c, created, err := s.complaints.Upsert(r.Context(), complaintuc.Draft{
		ID:          chi.URLParam(r, "id"),
		Location:    req.Location,
		Description: req.Description,
		Payload:     req.Payload,
	})
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
		w.Header().Set("Location", "/complaints/"+c.ID())
	}
	writeJSON(w, status, complaintToResponse(&c))
}

// GetComplaint handles GET /complaints/{id}.
func (s *Server) GetComplaint(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w) {
		return
	}
	c, err := s.complaints.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, complaintToResponse(&c))
}

// DeleteComplaint handles DELETE /complaints/{id}.
func (s *Server) DeleteComplaint(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w) {
		return
	}
	if err := s.complaints.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.handleDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// BatchUpsert handles POST /complaints/batch.
func (s *Server) BatchUpsert(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w) {
		return
	}
	var req BatchUpsertRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if len(req.Items) == 0 {
		writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed, "items must not be empty")
		return
	}

	drafts := make([]complaintuc.Draft, len(req.Items))
	for i, item := range req.Items {
		drafts[i] = complaintuc.Draft{
			ID:          item.ID,
			Location:    item.Location,
			Description: item.Description,
			Payload:     item.Payload,
		}
	}

	results := s.complaints.BatchUpsert(r.Context(), drafts)
	resp := BatchResponse{Items: make([]BatchResultItem, len(results))}
	for i, res := range results {
		resp.Items[i] = batchResultToResponse(res)
	}
	resp.Succeeded, resp.Failed = dombatch.Count(results)
	writeJSON(w, http.StatusOK, resp)
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status:  string(report.Status),
		Checks:  checks,
		Version: version.Version,
	})
}

func (s *Server) requireStore(w http.ResponseWriter) bool {
	if s.complaints != nil {
		return true
	}
	writeError(w, http.StatusNotImplemented, ErrorCodeNotImplemented,
		domain.ErrSourceUnavailable.Error()+": complaint storage is not configured")
	return false
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "Invalid request body: "+err.Error())
		return false
	}
	return true
}

func complaintToResponse(c *domcomplaint.Complaint) ComplaintResponse {
	return ComplaintResponse{
		ID:          c.ID(),
		Location:    c.Location(),
		Description: c.Description(),
		Payload:     c.Payload(),
	}
}

func statsToResponse(st detectoruc.Stats) CorpusResponse {
	resp := CorpusResponse{
		Fitted:     st.Fitted,
		Complaints: st.Complaints,
		Vocabulary: st.Vocabulary,
		Areas:      st.Areas,
	}
	if st.Fitted {
		t := st.FittedAt.UTC()
		resp.FittedAt = &t
	}
	return resp
}

func batchResultToResponse(r dombatch.Result) BatchResultItem {
	item := BatchResultItem{
		ID:     r.ID(),
		Status: string(r.Status()),
	}
	if r.Err() != nil {
		item.Error = &ErrorResponse{
			Code:    batchErrorCode(r.Err()),
			Message: safeDomainMessage(r.Err()),
		}
	}
	return item
}
