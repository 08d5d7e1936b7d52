package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/example/campus-housing/internal/application"
)

var (
	errBadRequestBody      = errors.New("the request body is not valid")
	errInvalidUserID       = errors.New("the user id is not valid")
	errInvalidRoomPath     = errors.New("the dorm and room ids are not valid")
	errInvalidFloorFilter  = errors.New("the floor filter must be an integer")
	errMissingSessionToken = errors.New("a session token is required")
)

type errorResponse struct {
	ErrorCode string            `json:"error_code,omitempty"`
	Message   string            `json:"message"`
	Errors    map[string]string `json:"errors,omitempty"`
}

type responder struct {
	logger *slog.Logger
}

func newResponder(logger *slog.Logger) responder {
	if logger == nil {
		logger = slog.Default()
	}
	return responder{logger: logger}
}

func (r responder) writeJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	if w == nil {
		return
	}

	if status == http.StatusNoContent || payload == nil {
		w.WriteHeader(status)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		r.loggerFor(ctx).ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

func (r responder) writeError(ctx context.Context, w http.ResponseWriter, status int, err error) {
	message := http.StatusText(status)
	if err != nil {
		if msg := strings.TrimSpace(err.Error()); msg != "" {
			message = msg
		}
		r.loggerFor(ctx).ErrorContext(ctx, "request failed", "status", status, "error", err)
	}

	r.writeJSON(ctx, w, status, errorResponse{Message: message})
}

// handleServiceError translates application errors into HTTP responses. Every
// error kind maps to a distinct human-readable message; domain-state
// conflicts all land on 409 with a machine-readable error code.
func (r responder) handleServiceError(ctx context.Context, w http.ResponseWriter, err error) {
	if err == nil {
		r.writeError(ctx, w, http.StatusInternalServerError, errors.New("unknown error"))
		return
	}

	if status, code, message, ok := domainErrorResponse(err); ok {
		r.writeJSON(ctx, w, status, errorResponse{ErrorCode: code, Message: message})
		return
	}

	var vErr *application.ValidationError
	if errors.As(err, &vErr) {
		r.writeJSON(ctx, w, http.StatusUnprocessableEntity, errorResponse{
			ErrorCode: "VALIDATION_FAILED",
			Message:   "some fields are missing or invalid",
			Errors:    vErr.FieldErrors,
		})
		return
	}

	r.loggerFor(ctx).ErrorContext(ctx, "unhandled service error", "error", err)
	r.writeJSON(ctx, w, http.StatusInternalServerError, errorResponse{Message: "an internal error occurred"})
}

func domainErrorResponse(err error) (status int, code, message string, ok bool) {
	switch {
	case errors.Is(err, application.ErrUnauthorized):
		return http.StatusForbidden, "AUTH_FORBIDDEN", "you do not have permission to perform this operation", true
	case errors.Is(err, application.ErrInvalidCredentials):
		return http.StatusUnauthorized, "INVALID_CREDENTIALS", "the email or password is incorrect", true
	case errors.Is(err, application.ErrSessionExpired):
		return http.StatusUnauthorized, "SESSION_EXPIRED", "your session has expired, please sign in again", true
	case errors.Is(err, application.ErrRecordNotFound):
		return http.StatusNotFound, "NOT_FOUND", "the requested record was not found", true
	case errors.Is(err, application.ErrInvalidRequest):
		return http.StatusConflict, "INVALID_REQUEST", "you cannot send a roommate request to yourself", true
	case errors.Is(err, application.ErrAlreadyConnected):
		return http.StatusConflict, "ALREADY_CONNECTED", "you are already roommates with this student", true
	case errors.Is(err, application.ErrRequestPending):
		return http.StatusConflict, "REQUEST_PENDING", "a roommate request between you is already pending", true
	case errors.Is(err, application.ErrNoPendingRequest):
		return http.StatusConflict, "NO_PENDING_REQUEST", "there is no pending request from this student", true
	case errors.Is(err, application.ErrRoomActive):
		return http.StatusConflict, "ROOM_ACTIVE", "cancel your room reservation before removing a roommate", true
	case errors.Is(err, application.ErrGroupHasRoom):
		return http.StatusConflict, "GROUP_HAS_ROOM", "your roommate group already has a room selected", true
	case errors.Is(err, application.ErrRoomUnavailable):
		return http.StatusConflict, "ROOM_UNAVAILABLE", "this room is no longer available", true
	case errors.Is(err, application.ErrCapacityExceeded):
		return http.StatusConflict, "CAPACITY_EXCEEDED", "this room cannot fit your roommate group", true
	case errors.Is(err, application.ErrNoActiveReservation):
		return http.StatusConflict, "NO_ACTIVE_RESERVATION", "you do not have an active room reservation", true
	case errors.Is(err, application.ErrSlotNotActive):
		return http.StatusConflict, "SLOT_NOT_ACTIVE", "your room selection window is not currently open", true
	case errors.Is(err, application.ErrAlreadyExists):
		return http.StatusConflict, "ALREADY_EXISTS", "an account with this email already exists", true
	case errors.Is(err, application.ErrStoreWrite):
		return http.StatusBadGateway, "STORE_WRITE_FAILED", "the change could not be saved, please try again", true
	}
	return 0, "", "", false
}

func (r responder) loggerFor(ctx context.Context) *slog.Logger {
	if logger := LoggerFromContext(ctx); logger != nil {
		return logger
	}
	return r.logger
}

func methodNotAllowed(w http.ResponseWriter, allowed ...string) {
	w.Header().Set("Allow", strings.Join(allowed, ", "))
	http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
}
