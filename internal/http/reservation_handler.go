package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/example/campus-housing/internal/application"
)

type reservationService interface {
	SelectRoom(ctx context.Context, principal application.Principal, dormID, roomID string) (application.RoomRef, error)
	CancelReservation(ctx context.Context, principal application.Principal) error
	ListAvailableRooms(ctx context.Context, principal application.Principal, filter application.RoomFilter) ([]application.Room, error)
}

type dormLister interface {
	ListDorms(ctx context.Context) ([]application.Dorm, error)
}

// ReservationHandler serves the room catalog and the reservation endpoints.
type ReservationHandler struct {
	service   reservationService
	dorms     dormLister
	responder responder
	logger    *slog.Logger
}

// NewReservationHandler constructs the handler.
func NewReservationHandler(service reservationService, dorms dormLister, logger *slog.Logger) *ReservationHandler {
	base := defaultLogger(logger)
	return &ReservationHandler{service: service, dorms: dorms, responder: newResponder(base), logger: base}
}

func (h *ReservationHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "ReservationHandler", operation, attrs...)
}

type selectRoomRequest struct {
	DormID string `json:"dorm_id"`
	RoomID string `json:"room_id"`
}

type reservationResponse struct {
	Reservation roomRefDTO `json:"reservation"`
}

type roomsResponse struct {
	Rooms []roomDTO `json:"rooms"`
}

type dormsResponse struct {
	Dorms []dormDTO `json:"dorms"`
}

// ListDorms returns the dorm catalog.
func (h *ReservationHandler) ListDorms(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.dorms == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	logger := h.log(r.Context(), "ListDorms")

	dorms, err := h.dorms.ListDorms(r.Context())
	if err != nil {
		logger.ErrorContext(r.Context(), "failed to list dorms", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	dtos := make([]dormDTO, len(dorms))
	for i, dorm := range dorms {
		dtos[i] = toDormDTO(dorm)
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, dormsResponse{Dorms: dtos})
}

// ListRooms returns rooms the caller's roommate group could reserve, narrowed
// by the query string filters.
func (h *ReservationHandler) ListRooms(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "ListRooms", "principal_id", principal.UserID)

	filter, err := roomFilterFromQuery(r)
	if err != nil {
		logger.ErrorContext(r.Context(), "invalid room filter", "error", err, "error_kind", "bad_request")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, err)
		return
	}

	rooms, err := h.service.ListAvailableRooms(r.Context(), principal, filter)
	if err != nil {
		logger.ErrorContext(r.Context(), "failed to list available rooms", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, roomsResponse{Rooms: toRoomDTOs(rooms)})
}

// SelectRoom reserves a room for the caller's entire roommate group.
func (h *ReservationHandler) SelectRoom(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req selectRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "SelectRoom", "principal_id", principal.UserID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}
	if req.DormID == "" || req.RoomID == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidRoomPath)
		return
	}

	logger := h.log(r.Context(), "SelectRoom", "principal_id", principal.UserID, "dorm_id", req.DormID, "room_id", req.RoomID)

	ref, err := h.service.SelectRoom(r.Context(), principal, req.DormID, req.RoomID)
	if err != nil {
		logger.ErrorContext(r.Context(), "failed to select room", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "room reserved")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, reservationResponse{Reservation: *toRoomRefDTO(ref)})
}

// CancelReservation releases the caller's reservation for the whole group
// recorded on the room.
func (h *ReservationHandler) CancelReservation(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "CancelReservation", "principal_id", principal.UserID)

	if err := h.service.CancelReservation(r.Context(), principal); err != nil {
		logger.ErrorContext(r.Context(), "failed to cancel reservation", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "reservation cancelled")
	w.WriteHeader(http.StatusNoContent)
}

func roomFilterFromQuery(r *http.Request) (application.RoomFilter, error) {
	query := r.URL.Query()
	filter := application.RoomFilter{DormID: query.Get("dorm_id")}
	if v := query.Get("floor"); v != "" {
		floor, err := strconv.Atoi(v)
		if err != nil {
			return application.RoomFilter{}, errInvalidFloorFilter
		}
		filter.Floor = &floor
	}
	if v := query.Get("type"); v != "" {
		filter.Type = &v
	}
	return filter, nil
}
