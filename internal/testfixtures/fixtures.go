package testfixtures

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/example/campus-housing/internal/docstore"
)

// Collection names mirrored from the housing core so fixtures can seed a bare
// document store.
const (
	CollectionUsers    = "users"
	CollectionRooms    = "rooms"
	CollectionDorms    = "dorms"
	CollectionSessions = "sessions"
)

var (
	studentCounter uint64
	roomCounter    uint64
	dormCounter    uint64
)

var referenceTime = time.Date(2026, time.March, 2, 15, 4, 5, 0, time.UTC)

// ReferenceTime returns the canonical baseline timestamp used by fixtures.
func ReferenceTime() time.Time {
	return referenceTime
}

// ----------------------------- Student fixtures ---------------------------

// PreferencesFixture is a fully populated preference profile.
type PreferencesFixture struct {
	StudyHabits    string
	SleepSchedule  string
	Cleanliness    string
	Visitors       string
	Interests      []string
	AdditionalInfo string
}

// StudentFixture represents a deterministic student document that can be
// seeded into a docstore for service or store tests.
type StudentFixture struct {
	ID               string
	FirstName        string
	LastName         string
	Email            string
	ClassYear        string
	Role             string
	PasswordHash     string
	Preferences      *PreferencesFixture
	IncomingRequests []string
	OutgoingRequests []string
	Connections      []string
	SelectedRoom     map[string]any
	TimeSlot         map[string]any
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// StudentOption configures the generated student fixture.
type StudentOption func(*StudentFixture)

// NewStudentFixture returns a deterministic student fixture with optional
// overrides.
func NewStudentFixture(opts ...StudentOption) StudentFixture {
	idx := atomic.AddUint64(&studentCounter, 1)
	id := fmt.Sprintf("student-%03d", idx)
	created := referenceTime.Add(time.Duration(idx) * time.Minute)
	fixture := StudentFixture{
		ID:               id,
		FirstName:        fmt.Sprintf("First%03d", idx),
		LastName:         fmt.Sprintf("Last%03d", idx),
		Email:            fmt.Sprintf("%s@campus.example.edu", id),
		ClassYear:        "sophomore",
		Role:             "student",
		IncomingRequests: []string{},
		OutgoingRequests: []string{},
		Connections:      []string{},
		CreatedAt:        created,
		UpdatedAt:        created,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithStudentID overrides the generated student ID.
func WithStudentID(id string) StudentOption {
	return func(f *StudentFixture) {
		f.ID = id
	}
}

// WithStudentEmail overrides the generated email address.
func WithStudentEmail(email string) StudentOption {
	return func(f *StudentFixture) {
		f.Email = email
	}
}

// WithStudentClassYear overrides the generated class year.
func WithStudentClassYear(year string) StudentOption {
	return func(f *StudentFixture) {
		f.ClassYear = year
	}
}

// WithStudentRole overrides the role stored on the fixture.
func WithStudentRole(role string) StudentOption {
	return func(f *StudentFixture) {
		f.Role = role
	}
}

// WithStudentPasswordHash overrides the stored password hash.
func WithStudentPasswordHash(hash string) StudentOption {
	return func(f *StudentFixture) {
		f.PasswordHash = hash
	}
}

// WithStudentPreferences sets the preference profile on the fixture.
func WithStudentPreferences(prefs PreferencesFixture) StudentOption {
	return func(f *StudentFixture) {
		f.Preferences = &prefs
	}
}

// WithConnections sets the established roommate connections.
func WithConnections(ids ...string) StudentOption {
	return func(f *StudentFixture) {
		f.Connections = ids
	}
}

// WithIncomingRequests sets the pending incoming request edges.
func WithIncomingRequests(ids ...string) StudentOption {
	return func(f *StudentFixture) {
		f.IncomingRequests = ids
	}
}

// WithOutgoingRequests sets the pending outgoing request edges.
func WithOutgoingRequests(ids ...string) StudentOption {
	return func(f *StudentFixture) {
		f.OutgoingRequests = ids
	}
}

// WithSelectedRoom stamps a reservation snapshot on the fixture. The map uses
// wire field names (dormId, roomId, roomNumber, type, price, selectedAt,
// selectedBy).
func WithSelectedRoom(ref map[string]any) StudentOption {
	return func(f *StudentFixture) {
		f.SelectedRoom = ref
	}
}

// WithTimeSlot stamps a selection window on the fixture. The map uses wire
// field names (start, end).
func WithTimeSlot(slot map[string]any) StudentOption {
	return func(f *StudentFixture) {
		f.TimeSlot = slot
	}
}

// Fields returns the fixture as a document field map in the wire shape the
// housing core persists.
func (f StudentFixture) Fields() map[string]any {
	fields := map[string]any{
		"firstName":        f.FirstName,
		"lastName":         f.LastName,
		"email":            f.Email,
		"classYear":        f.ClassYear,
		"role":             f.Role,
		"incomingRequests": f.IncomingRequests,
		"outgoingRequests": f.OutgoingRequests,
		"connections":      f.Connections,
		"createdAt":        f.CreatedAt.Format(time.RFC3339Nano),
		"updatedAt":        f.UpdatedAt.Format(time.RFC3339Nano),
	}
	if f.PasswordHash != "" {
		fields["passwordHash"] = f.PasswordHash
	}
	if f.Preferences != nil {
		fields["preferences"] = map[string]any{
			"studyHabits":    f.Preferences.StudyHabits,
			"sleepSchedule":  f.Preferences.SleepSchedule,
			"cleanliness":    f.Preferences.Cleanliness,
			"visitors":       f.Preferences.Visitors,
			"interests":      f.Preferences.Interests,
			"additionalInfo": f.Preferences.AdditionalInfo,
		}
	}
	if f.SelectedRoom != nil {
		fields["selectedRoom"] = f.SelectedRoom
	}
	if f.TimeSlot != nil {
		fields["timeSlot"] = f.TimeSlot
	}
	return fields
}

// Write returns the docstore write that seeds the fixture.
func (f StudentFixture) Write() docstore.Write {
	return docstore.Write{Collection: CollectionUsers, ID: f.ID, Fields: f.Fields()}
}

// ------------------------------ Room fixtures -----------------------------

// RoomFixture represents a deterministic room document.
type RoomFixture struct {
	DormID          string
	RoomID          string
	RoomNumber      string
	Floor           int
	Capacity        int
	Type            string
	Price           float64
	OccupancyStatus string
	Occupants       []string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// RoomOption configures the generated room fixture.
type RoomOption func(*RoomFixture)

// NewRoomFixture returns a deterministic room fixture with optional overrides.
func NewRoomFixture(opts ...RoomOption) RoomFixture {
	idx := atomic.AddUint64(&roomCounter, 1)
	created := referenceTime.Add(time.Duration(idx) * time.Minute)
	fixture := RoomFixture{
		DormID:          "dorm-001",
		RoomID:          fmt.Sprintf("room-%03d", idx),
		RoomNumber:      fmt.Sprintf("%d", 100+idx),
		Floor:           1,
		Capacity:        2,
		Type:            "double",
		Price:           4200,
		OccupancyStatus: "available",
		Occupants:       []string{},
		CreatedAt:       created,
		UpdatedAt:       created,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithRoomDorm places the room in the given dorm.
func WithRoomDorm(dormID string) RoomOption {
	return func(f *RoomFixture) {
		f.DormID = dormID
	}
}

// WithRoomID overrides the generated room ID.
func WithRoomID(roomID string) RoomOption {
	return func(f *RoomFixture) {
		f.RoomID = roomID
	}
}

// WithRoomFloor sets the floor.
func WithRoomFloor(floor int) RoomOption {
	return func(f *RoomFixture) {
		f.Floor = floor
	}
}

// WithRoomCapacity sets the capacity.
func WithRoomCapacity(capacity int) RoomOption {
	return func(f *RoomFixture) {
		f.Capacity = capacity
	}
}

// WithRoomType sets the room type.
func WithRoomType(roomType string) RoomOption {
	return func(f *RoomFixture) {
		f.Type = roomType
	}
}

// WithRoomOccupants marks the room unavailable and records its occupants.
func WithRoomOccupants(ids ...string) RoomOption {
	return func(f *RoomFixture) {
		f.OccupancyStatus = "unavailable"
		f.Occupants = ids
	}
}

// DocID returns the document key for the room.
func (f RoomFixture) DocID() string {
	return f.DormID + "/" + f.RoomID
}

// Fields returns the fixture as a document field map in the wire shape the
// housing core persists.
func (f RoomFixture) Fields() map[string]any {
	return map[string]any{
		"dormId":          f.DormID,
		"roomId":          f.RoomID,
		"roomNumber":      f.RoomNumber,
		"floor":           f.Floor,
		"capacity":        f.Capacity,
		"type":            f.Type,
		"price":           f.Price,
		"occupancyStatus": f.OccupancyStatus,
		"occupants":       f.Occupants,
		"createdAt":       f.CreatedAt.Format(time.RFC3339Nano),
		"updatedAt":       f.UpdatedAt.Format(time.RFC3339Nano),
	}
}

// Write returns the docstore write that seeds the fixture.
func (f RoomFixture) Write() docstore.Write {
	return docstore.Write{Collection: CollectionRooms, ID: f.DocID(), Fields: f.Fields()}
}

// ------------------------------ Dorm fixtures -----------------------------

// DormFixture represents a deterministic dorm document.
type DormFixture struct {
	ID          string
	Name        string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// DormOption configures the generated dorm fixture.
type DormOption func(*DormFixture)

// NewDormFixture returns a deterministic dorm fixture with optional overrides.
func NewDormFixture(opts ...DormOption) DormFixture {
	idx := atomic.AddUint64(&dormCounter, 1)
	created := referenceTime.Add(time.Duration(idx) * time.Minute)
	fixture := DormFixture{
		ID:          fmt.Sprintf("dorm-%03d", idx),
		Name:        fmt.Sprintf("Hall %03d", idx),
		Description: "fixture dormitory",
		CreatedAt:   created,
		UpdatedAt:   created,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithDormID overrides the generated dorm ID.
func WithDormID(id string) DormOption {
	return func(f *DormFixture) {
		f.ID = id
	}
}

// WithDormName overrides the generated dorm name.
func WithDormName(name string) DormOption {
	return func(f *DormFixture) {
		f.Name = name
	}
}

// Fields returns the fixture as a document field map.
func (f DormFixture) Fields() map[string]any {
	return map[string]any{
		"name":        f.Name,
		"description": f.Description,
		"createdAt":   f.CreatedAt.Format(time.RFC3339Nano),
		"updatedAt":   f.UpdatedAt.Format(time.RFC3339Nano),
	}
}

// Write returns the docstore write that seeds the fixture.
func (f DormFixture) Write() docstore.Write {
	return docstore.Write{Collection: CollectionDorms, ID: f.ID, Fields: f.Fields()}
}
