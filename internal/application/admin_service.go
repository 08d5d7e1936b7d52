package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/example/campus-housing/internal/docstore"
)

// AdminService covers the housing-office console: dorm and room management,
// time-slot assignment, and the override that vacates a room regardless of
// who reserved it. Every operation requires an administrator principal.
type AdminService struct {
	directory   *Directory
	store       docstore.Store
	warnings    *WarningCache
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewAdminService wires dependencies for administrative operations.
func NewAdminService(directory *Directory, store docstore.Store, warnings *WarningCache, idGenerator func() string, now func() time.Time, logger *slog.Logger) *AdminService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &AdminService{
		directory:   directory,
		store:       store,
		warnings:    warnings,
		idGenerator: idGenerator,
		now:         now,
		logger:      defaultLogger(logger),
	}
}

func (s *AdminService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "AdminService", operation, attrs...)
}

// CreateDorm registers a new dorm.
func (s *AdminService) CreateDorm(ctx context.Context, principal Principal, input DormInput) (dorm Dorm, err error) {
	if s == nil {
		return Dorm{}, fmt.Errorf("AdminService is nil")
	}

	logger := s.loggerWith(ctx, "CreateDorm",
		"principal_id", principal.UserID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create dorm", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("dorm_id", dorm.ID).InfoContext(ctx, "dorm created")
	}()

	if !principal.IsAdmin {
		return Dorm{}, ErrUnauthorized
	}

	vErr := &ValidationError{}
	if strings.TrimSpace(input.Name) == "" {
		vErr.add("name", "name is required")
	}
	if vErr.HasErrors() {
		return Dorm{}, vErr
	}

	stamp := s.now()
	dorm = Dorm{
		ID:          s.idGenerator(),
		Name:        strings.TrimSpace(input.Name),
		Description: strings.TrimSpace(input.Description),
		CreatedAt:   stamp,
		UpdatedAt:   stamp,
	}

	write := docstore.Write{
		Collection: collDorms,
		ID:         dorm.ID,
		Fields: fieldsOf(&dormRecord{
			Name:        dorm.Name,
			Description: dorm.Description,
			CreatedAt:   dorm.CreatedAt,
			UpdatedAt:   dorm.UpdatedAt,
		}),
	}
	if err := s.store.CommitBatch(ctx, []docstore.Write{write}); err != nil {
		return Dorm{}, fmt.Errorf("%w: %v", ErrStoreWrite, err)
	}
	return dorm, nil
}

// CreateRoom registers a new room in a dorm, available and empty.
func (s *AdminService) CreateRoom(ctx context.Context, principal Principal, input RoomInput) (room Room, err error) {
	if s == nil {
		return Room{}, fmt.Errorf("AdminService is nil")
	}

	logger := s.loggerWith(ctx, "CreateRoom",
		"principal_id", principal.UserID,
		"dorm_id", input.DormID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create room", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("room_id", room.RoomID).InfoContext(ctx, "room created")
	}()

	if !principal.IsAdmin {
		return Room{}, ErrUnauthorized
	}

	vErr := validateRoomInput(input)
	if vErr.HasErrors() {
		return Room{}, vErr
	}

	// The dorm must exist before rooms can be filed under it.
	if _, err := s.directory.GetDorm(ctx, input.DormID); err != nil {
		return Room{}, err
	}

	stamp := s.now()
	room = Room{
		DormID:          input.DormID,
		RoomID:          s.idGenerator(),
		RoomNumber:      strings.TrimSpace(input.RoomNumber),
		Floor:           input.Floor,
		Capacity:        input.Capacity,
		Type:            strings.TrimSpace(input.Type),
		Price:           input.Price,
		OccupancyStatus: OccupancyAvailable,
		Occupants:       []string{},
		CreatedAt:       stamp,
		UpdatedAt:       stamp,
	}

	write := docstore.Write{
		Collection: collRooms,
		ID:         RoomDocID(room.DormID, room.RoomID),
		Fields: fieldsOf(&roomRecord{
			DormID:          room.DormID,
			RoomID:          room.RoomID,
			RoomNumber:      room.RoomNumber,
			Floor:           room.Floor,
			Capacity:        room.Capacity,
			Type:            room.Type,
			Price:           room.Price,
			OccupancyStatus: room.OccupancyStatus,
			Occupants:       room.Occupants,
			CreatedAt:       room.CreatedAt,
			UpdatedAt:       room.UpdatedAt,
		}),
	}
	if err := s.store.CommitBatch(ctx, []docstore.Write{write}); err != nil {
		return Room{}, fmt.Errorf("%w: %v", ErrStoreWrite, err)
	}
	return room, nil
}

// UpdateRoom edits catalog attributes of an existing room. Occupancy fields
// are owned by the reservation coordinator and cannot be changed here.
func (s *AdminService) UpdateRoom(ctx context.Context, principal Principal, dormID, roomID string, input RoomInput) (room Room, err error) {
	if s == nil {
		return Room{}, fmt.Errorf("AdminService is nil")
	}

	logger := s.loggerWith(ctx, "UpdateRoom",
		"principal_id", principal.UserID,
		"dorm_id", dormID,
		"room_id", roomID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to update room", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "room updated")
	}()

	if !principal.IsAdmin {
		return Room{}, ErrUnauthorized
	}

	existing, revision, err := s.directory.GetRoom(ctx, dormID, roomID)
	if err != nil {
		return Room{}, err
	}

	vErr := validateRoomInput(RoomInput{
		DormID:     dormID,
		RoomNumber: input.RoomNumber,
		Floor:      input.Floor,
		Capacity:   input.Capacity,
		Type:       input.Type,
		Price:      input.Price,
	})
	if input.Capacity < len(existing.Occupants) {
		vErr.add("capacity", "capacity cannot drop below current occupancy")
	}
	if vErr.HasErrors() {
		return Room{}, vErr
	}

	stamp := s.now()
	room = existing
	room.RoomNumber = strings.TrimSpace(input.RoomNumber)
	room.Floor = input.Floor
	room.Capacity = input.Capacity
	room.Type = strings.TrimSpace(input.Type)
	room.Price = input.Price
	room.UpdatedAt = stamp

	write := docstore.Write{
		Collection:       collRooms,
		ID:               RoomDocID(dormID, roomID),
		ExpectedRevision: docstore.Rev(revision),
		Fields: map[string]any{
			"roomNumber": room.RoomNumber,
			"floor":      room.Floor,
			"capacity":   room.Capacity,
			"type":       room.Type,
			"price":      room.Price,
			"updatedAt":  stamp,
		},
	}
	if err := s.store.CommitBatch(ctx, []docstore.Write{write}); err != nil {
		return Room{}, fmt.Errorf("%w: %v", ErrStoreWrite, err)
	}
	return room, nil
}

// VacateRoom is the administrative override: it clears the room's occupants'
// reservations and resets the room in one batch, restoring the invariant the
// reservation coordinator normally maintains.
func (s *AdminService) VacateRoom(ctx context.Context, principal Principal, dormID, roomID string) (err error) {
	if s == nil {
		return fmt.Errorf("AdminService is nil")
	}

	logger := s.loggerWith(ctx, "VacateRoom",
		"principal_id", principal.UserID,
		"dorm_id", dormID,
		"room_id", roomID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to vacate room", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "room vacated")
	}()

	if !principal.IsAdmin {
		return ErrUnauthorized
	}

	room, revision, err := s.directory.GetRoom(ctx, dormID, roomID)
	if err != nil {
		return err
	}
	if room.OccupancyStatus == OccupancyAvailable && len(room.Occupants) == 0 {
		return ErrNoActiveReservation
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
			DormID: dormID,
			RoomID: roomID,
			Detail: fmt.Sprintf("%d of %d listed occupants resolved", len(resolved), len(room.Occupants)),
		})
	}

	stamp := s.now()
	writes := make([]docstore.Write, 0, len(resolved)+1)
	for _, member := range resolved {
		writes = append(writes, docstore.Write{
			Collection: collUsers,
			ID:         member.ID,
			Fields: map[string]any{
				"selectedRoom": nil,
				"updatedAt":    stamp,
			},
		})
	}
	writes = append(writes, docstore.Write{
		Collection:       collRooms,
		ID:               RoomDocID(dormID, roomID),
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

// AssignTimeSlot stamps the same selection window on every listed student in
// one batch. All ids must resolve; a missing id aborts before any write.
func (s *AdminService) AssignTimeSlot(ctx context.Context, principal Principal, userIDs []string, slot TimeSlot) (err error) {
	if s == nil {
		return fmt.Errorf("AdminService is nil")
	}

	logger := s.loggerWith(ctx, "AssignTimeSlot",
		"principal_id", principal.UserID,
		"user_count", len(userIDs),
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to assign time slot", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "time slot assigned")
	}()

	if !principal.IsAdmin {
		return ErrUnauthorized
	}

	vErr := &ValidationError{}
	if len(uniqueStrings(userIDs)) == 0 {
		vErr.add("userIds", "at least one user is required")
	}
	if !slot.End.After(slot.Start) {
		vErr.add("slot", "window end must be after start")
	}
	if vErr.HasErrors() {
		return vErr
	}

	ids := uniqueStrings(userIDs)
	resolved, err := s.directory.GetUsers(ctx, ids)
	if err != nil {
		return err
	}
	if len(resolved) < len(ids) {
		return ErrRecordNotFound
	}

	stamp := s.now()
	writes := make([]docstore.Write, 0, len(resolved))
	for _, member := range resolved {
		writes = append(writes, docstore.Write{
			Collection: collUsers,
			ID:         member.ID,
			Fields: map[string]any{
				"timeSlot":  &timeSlotRecord{Start: slot.Start, End: slot.End},
				"updatedAt": stamp,
			},
		})
	}
	if err := s.store.CommitBatch(ctx, writes); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreWrite, err)
	}
	return nil
}

// ListWarnings exposes retained data-integrity warnings to administrators.
// ListDormRooms returns every room of the dorm, including occupied ones.
func (s *AdminService) ListDormRooms(ctx context.Context, principal Principal, dormID string) ([]Room, error) {
	if s == nil {
		return nil, fmt.Errorf("AdminService is nil")
	}
	if !principal.IsAdmin {
		return nil, ErrUnauthorized
	}
	if _, err := s.directory.GetDorm(ctx, dormID); err != nil {
		return nil, err
	}
	return s.directory.ListRooms(ctx, dormID)
}

func (s *AdminService) ListWarnings(ctx context.Context, principal Principal) ([]IntegrityWarning, error) {
	if s == nil {
		return nil, fmt.Errorf("AdminService is nil")
	}
	if !principal.IsAdmin {
		return nil, ErrUnauthorized
	}
	return s.warnings.List(), nil
}

func validateRoomInput(input RoomInput) *ValidationError {
	vErr := &ValidationError{}

	if strings.TrimSpace(input.DormID) == "" {
		vErr.add("dormId", "dorm is required")
	}
	if strings.TrimSpace(input.RoomNumber) == "" {
		vErr.add("roomNumber", "room number is required")
	}
	if input.Capacity <= 0 {
		vErr.add("capacity", "capacity must be positive")
	}
	if strings.TrimSpace(input.Type) == "" {
		vErr.add("type", "room type is required")
	}
	if input.Price < 0 {
		vErr.add("price", "price cannot be negative")
	}

	return vErr
}
