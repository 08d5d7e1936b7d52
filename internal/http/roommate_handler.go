package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/example/campus-housing/internal/application"
)

type roommateService interface {
	SendRequest(ctx context.Context, principal application.Principal, targetID string) error
	AcceptRequest(ctx context.Context, principal application.Principal, requestorID string) ([]application.Student, error)
	DeclineRequest(ctx context.Context, principal application.Principal, requestorID string) error
	CancelRequest(ctx context.Context, principal application.Principal, targetID string) error
	RemoveConnection(ctx context.Context, principal application.Principal, peerID string) error
	ListIncomingRequests(ctx context.Context, principal application.Principal) ([]application.IncomingRequest, error)
	ListCandidates(ctx context.Context, principal application.Principal, filter application.CandidateFilter) ([]application.Student, error)
}

// RoommateHandler serves the request and connection endpoints of the
// roommate graph.
type RoommateHandler struct {
	service   roommateService
	responder responder
	logger    *slog.Logger
}

// NewRoommateHandler constructs the handler.
func NewRoommateHandler(service roommateService, logger *slog.Logger) *RoommateHandler {
	base := defaultLogger(logger)
	return &RoommateHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *RoommateHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "RoommateHandler", operation, attrs...)
}

type sendRequestRequest struct {
	TargetID string `json:"target_id"`
}

type incomingRequestDTO struct {
	Requestor  studentDTO    `json:"requestor"`
	Comparison comparisonDTO `json:"comparison"`
}

type incomingRequestsResponse struct {
	Requests []incomingRequestDTO `json:"requests"`
}

// ListCandidates returns students the caller could send a request to,
// narrowed by the query string filters.
func (h *RoommateHandler) ListCandidates(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "ListCandidates", "principal_id", principal.UserID)

	filter := candidateFilterFromQuery(r)
	candidates, err := h.service.ListCandidates(r.Context(), principal, filter)
	if err != nil {
		logger.ErrorContext(r.Context(), "failed to list candidates", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, studentsResponse{Students: toStudentDTOs(candidates)})
}

// ListRequests returns the caller's pending incoming requests, each annotated
// with a preference comparison against the requestor.
func (h *RoommateHandler) ListRequests(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "ListRequests", "principal_id", principal.UserID)

	requests, err := h.service.ListIncomingRequests(r.Context(), principal)
	if err != nil {
		logger.ErrorContext(r.Context(), "failed to list incoming requests", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	dtos := make([]incomingRequestDTO, len(requests))
	for i, req := range requests {
		dtos[i] = incomingRequestDTO{
			Requestor:  toStudentDTO(req.Requestor),
			Comparison: toComparisonDTO(req.Comparison),
		}
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, incomingRequestsResponse{Requests: dtos})
}

// SendRequest records a pending request from the caller to the target.
func (h *RoommateHandler) SendRequest(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req sendRequestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "SendRequest", "principal_id", principal.UserID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}
	if req.TargetID == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidUserID)
		return
	}

	logger := h.log(r.Context(), "SendRequest", "principal_id", principal.UserID, "target_id", req.TargetID)

	if err := h.service.SendRequest(r.Context(), principal, req.TargetID); err != nil {
		logger.ErrorContext(r.Context(), "failed to send roommate request", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "roommate request sent")
	w.WriteHeader(http.StatusNoContent)
}

// AcceptRequest accepts the pending request from requestorID and returns the
// merged roommate group.
func (h *RoommateHandler) AcceptRequest(w http.ResponseWriter, r *http.Request, requestorID string) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	if requestorID == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidUserID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "AcceptRequest", "principal_id", principal.UserID, "requestor_id", requestorID)

	updated, err := h.service.AcceptRequest(r.Context(), principal, requestorID)
	if err != nil {
		logger.ErrorContext(r.Context(), "failed to accept roommate request", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "roommate request accepted", "group_size", len(updated))
	h.responder.writeJSON(r.Context(), w, http.StatusOK, studentsResponse{Students: toStudentDTOs(updated)})
}

// DeclineRequest removes the pending request from requestorID.
func (h *RoommateHandler) DeclineRequest(w http.ResponseWriter, r *http.Request, requestorID string) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	if requestorID == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidUserID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "DeclineRequest", "principal_id", principal.UserID, "requestor_id", requestorID)

	if err := h.service.DeclineRequest(r.Context(), principal, requestorID); err != nil {
		logger.ErrorContext(r.Context(), "failed to decline roommate request", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "roommate request declined")
	w.WriteHeader(http.StatusNoContent)
}

// CancelRequest withdraws the caller's own pending request to targetID.
func (h *RoommateHandler) CancelRequest(w http.ResponseWriter, r *http.Request, targetID string) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	if targetID == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidUserID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "CancelRequest", "principal_id", principal.UserID, "target_id", targetID)

	if err := h.service.CancelRequest(r.Context(), principal, targetID); err != nil {
		logger.ErrorContext(r.Context(), "failed to cancel roommate request", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "roommate request cancelled")
	w.WriteHeader(http.StatusNoContent)
}

// RemoveConnection deletes the established edge between the caller and peerID.
func (h *RoommateHandler) RemoveConnection(w http.ResponseWriter, r *http.Request, peerID string) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	if peerID == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidUserID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "RemoveConnection", "principal_id", principal.UserID, "peer_id", peerID)

	if err := h.service.RemoveConnection(r.Context(), principal, peerID); err != nil {
		logger.ErrorContext(r.Context(), "failed to remove roommate connection", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "roommate connection removed")
	w.WriteHeader(http.StatusNoContent)
}

func candidateFilterFromQuery(r *http.Request) application.CandidateFilter {
	query := r.URL.Query()
	var filter application.CandidateFilter
	if v := query.Get("class_year"); v != "" {
		filter.ClassYear = &v
	}
	if v := query.Get("study_habits"); v != "" {
		filter.StudyHabits = &v
	}
	if v := query.Get("sleep_schedule"); v != "" {
		filter.SleepSchedule = &v
	}
	if v := query.Get("cleanliness"); v != "" {
		filter.Cleanliness = &v
	}
	if v := query.Get("visitors"); v != "" {
		filter.Visitors = &v
	}
	if interests := query["interest"]; len(interests) > 0 {
		filter.Interests = interests
	}
	return filter
}
