package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/example/campus-housing/internal/application"
)

type profileService interface {
	GetProfile(ctx context.Context, principal application.Principal) (application.Student, error)
	UpdatePreferences(ctx context.Context, principal application.Principal, input application.PreferencesInput) (application.Student, error)
}

// ProfileHandler serves the caller's own record and preference edits.
type ProfileHandler struct {
	service   profileService
	responder responder
	logger    *slog.Logger
}

// NewProfileHandler constructs the handler.
func NewProfileHandler(service profileService, logger *slog.Logger) *ProfileHandler {
	base := defaultLogger(logger)
	return &ProfileHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *ProfileHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "ProfileHandler", operation, attrs...)
}

type preferencesRequest struct {
	StudyHabits    string   `json:"study_habits"`
	SleepSchedule  string   `json:"sleep_schedule"`
	Cleanliness    string   `json:"cleanliness"`
	Visitors       string   `json:"visitors"`
	Interests      []string `json:"interests"`
	AdditionalInfo string   `json:"additional_info"`
}

// Get returns the caller's own record.
func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "Get", "principal_id", principal.UserID)

	student, err := h.service.GetProfile(r.Context(), principal)
	if err != nil {
		logger.ErrorContext(r.Context(), "failed to load profile", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, studentResponse{Student: toStudentDTO(student)})
}

// UpdatePreferences stores the caller's living preferences.
func (h *ProfileHandler) UpdatePreferences(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req preferencesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "UpdatePreferences", "principal_id", principal.UserID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode preferences", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "UpdatePreferences", "principal_id", principal.UserID)

	student, err := h.service.UpdatePreferences(r.Context(), principal, application.PreferencesInput{
		StudyHabits:    req.StudyHabits,
		SleepSchedule:  req.SleepSchedule,
		Cleanliness:    req.Cleanliness,
		Visitors:       req.Visitors,
		Interests:      req.Interests,
		AdditionalInfo: req.AdditionalInfo,
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "failed to update preferences", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "preferences updated")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, studentResponse{Student: toStudentDTO(student)})
}
