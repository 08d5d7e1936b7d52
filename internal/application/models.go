package application

import "time"

// Principal represents the authenticated user invoking a service method.
type Principal struct {
	UserID  string
	IsAdmin bool
}

// Roles assignable to a user account.
const (
	RoleStudent = "student"
	RoleAdmin   = "admin"
)

// Occupancy states of a room.
const (
	OccupancyAvailable   = "available"
	OccupancyUnavailable = "unavailable"
)

// Preferences holds a student's living preferences used for roommate matching.
type Preferences struct {
	StudyHabits    string
	SleepSchedule  string
	Cleanliness    string
	Visitors       string
	Interests      []string
	AdditionalInfo string
}

// TimeSlot is the window during which a student may reserve a room.
type TimeSlot struct {
	Start time.Time
	End   time.Time
}

// ActiveAt reports whether the slot covers the given instant.
func (s TimeSlot) ActiveAt(t time.Time) bool {
	return !t.Before(s.Start) && t.Before(s.End)
}

// RoomRef is the reservation snapshot stamped on every member of a group when
// the group selects a room. The snapshot is authoritative for cancellation
// even if the roommate graph changes afterwards.
type RoomRef struct {
	DormID     string
	RoomID     string
	RoomNumber string
	Type       string
	Price      float64
	SelectedAt time.Time
	SelectedBy string
}

// Student represents a housing account together with its roommate graph state.
//
// IncomingRequests and OutgoingRequests are mirror images across users;
// Connections is a symmetric adjacency set. SelectedRoom is non-nil only when
// every member of the student's connected component holds the identical value.
type Student struct {
	ID               string
	FirstName        string
	LastName         string
	Email            string
	ClassYear        string
	Role             string
	Preferences      *Preferences
	IncomingRequests []string
	OutgoingRequests []string
	Connections      []string
	SelectedRoom     *RoomRef
	TimeSlot         *TimeSlot
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Room represents a dorm room. Identity is the (DormID, RoomID) pair.
type Room struct {
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

// Ref returns the reservation snapshot for this room.
func (r Room) Ref(selectedAt time.Time, selectedBy string) RoomRef {
	return RoomRef{
		DormID:     r.DormID,
		RoomID:     r.RoomID,
		RoomNumber: r.RoomNumber,
		Type:       r.Type,
		Price:      r.Price,
		SelectedAt: selectedAt,
		SelectedBy: selectedBy,
	}
}

// Dorm is a named container of rooms.
type Dorm struct {
	ID          string
	Name        string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// PreferencesInput captures caller provided preference fields.
type PreferencesInput struct {
	StudyHabits    string
	SleepSchedule  string
	Cleanliness    string
	Visitors       string
	Interests      []string
	AdditionalInfo string
}

// CandidateFilter narrows roommate candidate listings. Nil fields are ignored;
// Interests requires every listed interest to be present.
type CandidateFilter struct {
	ClassYear     *string
	StudyHabits   *string
	SleepSchedule *string
	Cleanliness   *string
	Visitors      *string
	Interests     []string
}

// Comparison is the result of comparing two preference profiles.
type Comparison struct {
	MatchesByAttribute map[string]bool
	SharedInterests    []string
	UniqueToFirst      []string
	UniqueToSecond     []string
}

// IncomingRequest pairs a pending requestor with the compatibility comparison
// against the caller's own profile.
type IncomingRequest struct {
	Requestor  Student
	Comparison Comparison
}

// RoomFilter narrows available-room listings.
type RoomFilter struct {
	DormID string
	Floor  *int
	Type   *string
}

// DormInput captures caller provided dorm fields.
type DormInput struct {
	Name        string
	Description string
}

// RoomInput captures caller provided room catalog fields.
type RoomInput struct {
	DormID     string
	RoomNumber string
	Floor      int
	Capacity   int
	Type       string
	Price      float64
}

// SignUpInput captures the fields required to create a housing account.
type SignUpInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	ClassYear string
}

// Session represents an authenticated session issued to a user.
type Session struct {
	Token     string
	UserID    string
	ExpiresAt time.Time
	CreatedAt time.Time
}
