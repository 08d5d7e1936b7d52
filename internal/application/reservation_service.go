package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/example/campus-housing/internal/docstore"
)

// ReservationService owns room occupancy state. It enforces the central
// protocol invariant: at most one member of a connected component holds a
// non-null selected room, and when one does, every member holds the identical
// reference and appears in the room's occupant list.
//
// The room write in every mutation carries the revision observed at read
// time, so two groups racing for one room cannot both win: the loser's batch
// fails in the store and nothing is applied.
type ReservationService struct {
	directory        *Directory
	store            docstore.Store
	warnings         *WarningCache
	now              func() time.Time
	enforceTimeSlots bool
	logger           *slog.Logger
}

// ReservationServiceOptions configures optional reservation behavior.
type ReservationServiceOptions struct {
	// EnforceTimeSlots gates SelectRoom on the caller's assigned window.
	EnforceTimeSlots bool
	Warnings         *WarningCache
	Logger           *slog.Logger
}

// NewReservationService wires dependencies for reservation operations.
func NewReservationService(directory *Directory, store docstore.Store, now func() time.Time, opts ReservationServiceOptions) *ReservationService {
	if now == nil {
		now = time.Now
	}
	return &ReservationService{
		directory:        directory,
		store:            store,
		warnings:         opts.Warnings,
		now:              now,
		enforceTimeSlots: opts.EnforceTimeSlots,
		logger:           defaultLogger(opts.Logger),
	}
}

func (s *ReservationService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "ReservationService", operation, attrs...)
}

// SelectRoom reserves the room for the principal's entire roommate group in
// one atomic batch: the identical reservation snapshot lands on every member
// and the room flips to unavailable with the group as its occupants.
func (s *ReservationService) SelectRoom(ctx context.Context, principal Principal, dormID, roomID string) (ref RoomRef, err error) {
	if s == nil {
		return RoomRef{}, fmt.Errorf("ReservationService is nil")
	}

	logger := s.loggerWith(ctx, "SelectRoom",
		"principal_id", principal.UserID,
		"dorm_id", dormID,
		"room_id", roomID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to select room", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "room selected")
	}()

	self, err := s.directory.GetUser(ctx, principal.UserID)
	if err != nil {
		return RoomRef{}, err
	}

	if s.enforceTimeSlots {
		if self.TimeSlot == nil || !self.TimeSlot.ActiveAt(s.now()) {
			return RoomRef{}, ErrSlotNotActive
		}
	}

	group, missing, err := componentOf(ctx, s.directory, self)
	if err != nil {
		return RoomRef{}, err
	}
	s.recordMissingRoommates(logger, ctx, self.ID, missing)

	for _, member := range group {
		if member.SelectedRoom != nil {
			return RoomRef{}, ErrGroupHasRoom
		}
	}

	room, revision, err := s.directory.GetRoom(ctx, dormID, roomID)
	if err != nil {
		return RoomRef{}, err
	}
	if room.OccupancyStatus != OccupancyAvailable {
		return RoomRef{}, ErrRoomUnavailable
	}
	if room.Capacity < len(group) {
		return RoomRef{}, ErrCapacityExceeded
	}

	stamp := s.now()
	reservation := room.Ref(stamp, self.ID)
	occupants := memberIDs(group)

	writes := make([]docstore.Write, 0, len(group)+1)
	for _, member := range group {
		writes = append(writes, docstore.Write{
			Collection: collUsers,
			ID:         member.ID,
			Fields: map[string]any{
				"selectedRoom": roomRefFields(&reservation),
				"updatedAt":    stamp,
			},
		})
	}
	writes = append(writes, docstore.Write{
		Collection:       collRooms,
		ID:               RoomDocID(dormID, roomID),
		ExpectedRevision: docstore.Rev(revision),
		Fields: map[string]any{
			"occupancyStatus": OccupancyUnavailable,
			"occupants":       occupants,
			"updatedAt":       stamp,
		},
	})

	if err := s.store.CommitBatch(ctx, writes); err != nil {
		if errors.Is(err, docstore.ErrConflict) {
			// Another group took the room between our read and commit.
			return RoomRef{}, ErrRoomUnavailable
		}
		return RoomRef{}, fmt.Errorf("%w: %v", ErrStoreWrite, err)
	}
	return reservation, nil
}

// CancelReservation releases the principal's group reservation. The group is
// resolved from the room's stored occupant list, not the live graph: the
// reservation snapshot stays authoritative even when connections changed
// after selection.
func (s *ReservationService) CancelReservation(ctx context.Context, principal Principal) (err error) {
	if s == nil {
		return fmt.Errorf("ReservationService is nil")
	}

	logger := s.loggerWith(ctx, "CancelReservation",
		"principal_id", principal.UserID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to cancel reservation", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "reservation cancelled")
	}()

	self, err := s.directory.GetUser(ctx, principal.UserID)
	if err != nil {
		return err
	}
	if self.SelectedRoom == nil {
		return ErrNoActiveReservation
	}

	ref := *self.SelectedRoom
	room, revision, err := s.directory.GetRoom(ctx, ref.DormID, ref.RoomID)
	if err != nil {
		if errors.Is(err, ErrRecordNotFound) {
			s.warnings.Record(IntegrityWarning{
				Kind:   WarningDanglingRoomRef,
				DormID: ref.DormID,
				RoomID: ref.RoomID,
				UserID: self.ID,
				Detail: "selected room record no longer exists",
			})
		}
		return err
	}

	resolved, err := s.directory.GetUsers(ctx, room.Occupants)
	if err != nil {
		return err
	}
	if len(resolved) < len(room.Occupants) {
		logger.WarnContext(ctx, "room occupants resolved short",
			"listed", len(room.Occupants),
			"resolved", len(resolved),
		)
		s.warnings.Record(IntegrityWarning{
			Kind:   WarningMissingOccupant,
			DormID: room.DormID,
			RoomID: room.RoomID,
			Detail: fmt.Sprintf("%d of %d listed occupants resolved", len(resolved), len(room.Occupants)),
		})
	}

	// Clear everyone the room lists, plus the caller in case the stored
	// occupant list drifted from the caller's reference.
	clear := make(map[string]struct{}, len(resolved)+1)
	for _, member := range resolved {
		clear[member.ID] = struct{}{}
	}
	clear[self.ID] = struct{}{}

	stamp := s.now()
	writes := make([]docstore.Write, 0, len(clear)+1)
	for id := range clear {
		writes = append(writes, docstore.Write{
			Collection: collUsers,
			ID:         id,
			Fields: map[string]any{
				"selectedRoom": nil,
				"updatedAt":    stamp,
			},
		})
	}
	writes = append(writes, docstore.Write{
		Collection:       collRooms,
		ID:               RoomDocID(room.DormID, room.RoomID),
		ExpectedRevision: docstore.Rev(revision),
		Fields: map[string]any{
			"occupancyStatus": OccupancyAvailable,
			"occupants":       []string{},
			"updatedAt":       stamp,
		},
	})

	if err := s.store.CommitBatch(ctx, writes); err != nil {
		if errors.Is(err, docstore.ErrConflict) {
			return fmt.Errorf("%w: room changed concurrently", ErrStoreWrite)
		}
		return fmt.Errorf("%w: %v", ErrStoreWrite, err)
	}
	return nil
}

// ListAvailableRooms returns the rooms the principal's group could reserve,
// narrowed by the filter. Rooms that are not available are always excluded;
// when the caller belongs to a multi-member group, rooms smaller than the
// group are excluded too.
func (s *ReservationService) ListAvailableRooms(ctx context.Context, principal Principal, filter RoomFilter) (rooms []Room, err error) {
	if s == nil {
		return nil, fmt.Errorf("ReservationService is nil")
	}

	logger := s.loggerWith(ctx, "ListAvailableRooms",
		"principal_id", principal.UserID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to list available rooms", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("result_count", len(rooms)).InfoContext(ctx, "available rooms listed")
	}()

	self, err := s.directory.GetUser(ctx, principal.UserID)
	if err != nil {
		return nil, err
	}
	group, missing, err := componentOf(ctx, s.directory, self)
	if err != nil {
		return nil, err
	}
	s.recordMissingRoommates(logger, ctx, self.ID, missing)
	groupSize := len(group)

	all, err := s.directory.ListRooms(ctx, filter.DormID)
	if err != nil {
		return nil, err
	}

	rooms = make([]Room, 0, len(all))
	for _, room := range all {
		if room.OccupancyStatus != OccupancyAvailable {
			continue
		}
		if filter.Floor != nil && room.Floor != *filter.Floor {
			continue
		}
		if filter.Type != nil && room.Type != *filter.Type {
			continue
		}
		if groupSize > 1 && room.Capacity < groupSize {
			continue
		}
		rooms = append(rooms, room)
	}
	return rooms, nil
}

func (s *ReservationService) recordMissingRoommates(logger *slog.Logger, ctx context.Context, userID string, missing []string) {
	if len(missing) == 0 {
		return
	}
	logger.WarnContext(ctx, "connections reference missing user records",
		"user_id", userID,
		"missing_count", len(missing),
	)
	for _, id := range missing {
		s.warnings.Record(IntegrityWarning{
			Kind:   WarningMissingRoommate,
			UserID: id,
			Detail: fmt.Sprintf("referenced from connections of %s", userID),
		})
	}
}
