package application

import "errors"

var (
	// ErrUnauthorized is returned when the acting principal lacks permission for an operation.
	ErrUnauthorized = errors.New("application: unauthorized")
	// ErrRecordNotFound is returned when a referenced user, room, or dorm does not exist.
	ErrRecordNotFound = errors.New("application: record not found")
	// ErrInvalidRequest is returned for a roommate request that can never be valid,
	// such as a user requesting themselves.
	ErrInvalidRequest = errors.New("application: invalid roommate request")
	// ErrAlreadyConnected is returned when the two users are already roommates.
	ErrAlreadyConnected = errors.New("application: users already connected")
	// ErrRequestPending is returned when a roommate request between the two users
	// is already outstanding in either direction.
	ErrRequestPending = errors.New("application: request already pending")
	// ErrNoPendingRequest is returned when accepting, declining, or cancelling a
	// request that is not outstanding.
	ErrNoPendingRequest = errors.New("application: no pending request")
	// ErrRoomActive is returned when removing a connection while either party
	// holds an active room reservation.
	ErrRoomActive = errors.New("application: active room reservation")
	// ErrGroupHasRoom is returned when a member of the caller's roommate group
	// already holds a room.
	ErrGroupHasRoom = errors.New("application: group already has a room")
	// ErrRoomUnavailable is returned when the requested room is not available,
	// including when a concurrent selection won the room first.
	ErrRoomUnavailable = errors.New("application: room unavailable")
	// ErrCapacityExceeded is returned when the room cannot fit the caller's group.
	ErrCapacityExceeded = errors.New("application: room capacity exceeded")
	// ErrNoActiveReservation is returned when cancelling without a reservation.
	ErrNoActiveReservation = errors.New("application: no active reservation")
	// ErrSlotNotActive is returned when the selection window gate is enabled and
	// the caller is outside their assigned time slot.
	ErrSlotNotActive = errors.New("application: selection window not active")
	// ErrStoreWrite wraps an atomic batch that the store failed to commit.
	ErrStoreWrite = errors.New("application: store write failed")
	// ErrAlreadyExists is returned when a unique attribute, such as an account
	// email, is already taken.
	ErrAlreadyExists = errors.New("application: already exists")
	// ErrInvalidCredentials is returned for a failed authentication attempt.
	ErrInvalidCredentials = errors.New("application: invalid credentials")
	// ErrSessionExpired is returned when a session token is past its TTL.
	ErrSessionExpired = errors.New("application: session expired")
)

// ValidationError captures field level validation issues that callers can surface to users.
type ValidationError struct {
	FieldErrors map[string]string
}

// Error implements the error interface.
func (v *ValidationError) Error() string {
	if v == nil {
		return ""
	}
	return "validation failed"
}

// HasErrors reports whether any field level issues were recorded.
func (v *ValidationError) HasErrors() bool {
	return v != nil && len(v.FieldErrors) > 0
}

// add records a field level validation error.
func (v *ValidationError) add(field, message string) {
	if v.FieldErrors == nil {
		v.FieldErrors = make(map[string]string)
	}
	v.FieldErrors[field] = message
}
