package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/example/campus-housing/internal/application"
)

type adminService interface {
	CreateDorm(ctx context.Context, principal application.Principal, input application.DormInput) (application.Dorm, error)
	CreateRoom(ctx context.Context, principal application.Principal, input application.RoomInput) (application.Room, error)
	UpdateRoom(ctx context.Context, principal application.Principal, dormID, roomID string, input application.RoomInput) (application.Room, error)
	VacateRoom(ctx context.Context, principal application.Principal, dormID, roomID string) error
	AssignTimeSlot(ctx context.Context, principal application.Principal, userIDs []string, slot application.TimeSlot) error
	ListDormRooms(ctx context.Context, principal application.Principal, dormID string) ([]application.Room, error)
	ListWarnings(ctx context.Context, principal application.Principal) ([]application.IntegrityWarning, error)
}

// AdminHandler serves the administrative catalog and oversight endpoints.
type AdminHandler struct {
	service   adminService
	responder responder
	logger    *slog.Logger
}

// NewAdminHandler constructs the handler.
func NewAdminHandler(service adminService, logger *slog.Logger) *AdminHandler {
	base := defaultLogger(logger)
	return &AdminHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *AdminHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "AdminHandler", operation, attrs...)
}

type dormRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type roomRequest struct {
	DormID     string  `json:"dorm_id"`
	RoomNumber string  `json:"room_number"`
	Floor      int     `json:"floor"`
	Capacity   int     `json:"capacity"`
	Type       string  `json:"type"`
	Price      float64 `json:"price"`
}

type timeSlotRequest struct {
	UserIDs []string  `json:"user_ids"`
	Start   time.Time `json:"start"`
	End     time.Time `json:"end"`
}

type dormResponse struct {
	Dorm dormDTO `json:"dorm"`
}

type roomResponse struct {
	Room roomDTO `json:"room"`
}

type warningDTO struct {
	Kind       string    `json:"kind"`
	DormID     string    `json:"dorm_id,omitempty"`
	RoomID     string    `json:"room_id,omitempty"`
	UserID     string    `json:"user_id,omitempty"`
	Detail     string    `json:"detail"`
	ObservedAt time.Time `json:"observed_at"`
}

type warningsResponse struct {
	Warnings []warningDTO `json:"warnings"`
}

// CreateDorm adds a dorm to the catalog.
func (h *AdminHandler) CreateDorm(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req dormRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "CreateDorm", "principal_id", principal.UserID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode dorm", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "CreateDorm", "principal_id", principal.UserID)

	dorm, err := h.service.CreateDorm(r.Context(), principal, application.DormInput{Name: req.Name, Description: req.Description})
	if err != nil {
		logger.ErrorContext(r.Context(), "failed to create dorm", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "dorm created", "dorm_id", dorm.ID)
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, dormResponse{Dorm: toDormDTO(dorm)})
}

// CreateRoom adds a room to a dorm.
func (h *AdminHandler) CreateRoom(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req roomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "CreateRoom", "principal_id", principal.UserID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode room", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "CreateRoom", "principal_id", principal.UserID, "dorm_id", req.DormID)

	room, err := h.service.CreateRoom(r.Context(), principal, roomInputFromRequest(req))
	if err != nil {
		logger.ErrorContext(r.Context(), "failed to create room", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "room created", "room_id", room.RoomID)
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, roomResponse{Room: toRoomDTO(room)})
}

// UpdateRoom edits the catalog fields of an existing room.
func (h *AdminHandler) UpdateRoom(w http.ResponseWriter, r *http.Request, dormID, roomID string) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	if dormID == "" || roomID == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidRoomPath)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req roomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "UpdateRoom", "principal_id", principal.UserID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode room", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}
	req.DormID = dormID

	logger := h.log(r.Context(), "UpdateRoom", "principal_id", principal.UserID, "dorm_id", dormID, "room_id", roomID)

	room, err := h.service.UpdateRoom(r.Context(), principal, dormID, roomID, roomInputFromRequest(req))
	if err != nil {
		logger.ErrorContext(r.Context(), "failed to update room", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "room updated")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, roomResponse{Room: toRoomDTO(room)})
}

// VacateRoom force-releases a room and its occupants.
func (h *AdminHandler) VacateRoom(w http.ResponseWriter, r *http.Request, dormID, roomID string) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	if dormID == "" || roomID == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidRoomPath)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "VacateRoom", "principal_id", principal.UserID, "dorm_id", dormID, "room_id", roomID)

	if err := h.service.VacateRoom(r.Context(), principal, dormID, roomID); err != nil {
		logger.ErrorContext(r.Context(), "failed to vacate room", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "room vacated")
	w.WriteHeader(http.StatusNoContent)
}

// AssignTimeSlot stamps a selection window on a set of students.
func (h *AdminHandler) AssignTimeSlot(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req timeSlotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "AssignTimeSlot", "principal_id", principal.UserID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode time slot", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "AssignTimeSlot", "principal_id", principal.UserID, "user_count", len(req.UserIDs))

	slot := application.TimeSlot{Start: req.Start, End: req.End}
	if err := h.service.AssignTimeSlot(r.Context(), principal, req.UserIDs, slot); err != nil {
		logger.ErrorContext(r.Context(), "failed to assign time slot", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "time slot assigned")
	w.WriteHeader(http.StatusNoContent)
}

// ListRooms returns every room of a dorm, occupied ones included.
func (h *AdminHandler) ListRooms(w http.ResponseWriter, r *http.Request, dormID string) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	if dormID == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidRoomPath)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "ListRooms", "principal_id", principal.UserID, "dorm_id", dormID)

	rooms, err := h.service.ListDormRooms(r.Context(), principal, dormID)
	if err != nil {
		logger.ErrorContext(r.Context(), "failed to list dorm rooms", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, roomsResponse{Rooms: toRoomDTOs(rooms)})
}

// ListWarnings returns recent integrity warnings observed by the services.
func (h *AdminHandler) ListWarnings(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "ListWarnings", "principal_id", principal.UserID)

	warnings, err := h.service.ListWarnings(r.Context(), principal)
	if err != nil {
		logger.ErrorContext(r.Context(), "failed to list warnings", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	dtos := make([]warningDTO, len(warnings))
	for i, warning := range warnings {
		dtos[i] = warningDTO{
			Kind:       warning.Kind,
			DormID:     warning.DormID,
			RoomID:     warning.RoomID,
			UserID:     warning.UserID,
			Detail:     warning.Detail,
			ObservedAt: warning.ObservedAt,
		}
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, warningsResponse{Warnings: dtos})
}

func roomInputFromRequest(req roomRequest) application.RoomInput {
	return application.RoomInput{
		DormID:     req.DormID,
		RoomNumber: req.RoomNumber,
		Floor:      req.Floor,
		Capacity:   req.Capacity,
		Type:       req.Type,
		Price:      req.Price,
	}
}
