package application

import (
	"encoding/json"
	"fmt"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/example/campus-housing/internal/docstore"
)

// Store collections used by the housing core.
const (
	collUsers    = "users"
	collRooms    = "rooms"
	collDorms    = "dorms"
	collSessions = "sessions"
)

// RoomDocID builds the document key for a room. Room identity is the
// (dormID, roomID) pair; the two parts are joined so one collection holds all
// rooms across dorms.
func RoomDocID(dormID, roomID string) string {
	return dormID + "/" + roomID
}

// Wire shapes persisted in the document store. Optional-field defaults are
// resolved when decoding, so service code always sees fully-shaped records.

type userRecord struct {
	FirstName        string             `json:"firstName"`
	LastName         string             `json:"lastName"`
	Email            string             `json:"email"`
	ClassYear        string             `json:"classYear"`
	Role             string             `json:"role"`
	PasswordHash     string             `json:"passwordHash,omitempty"`
	Preferences      *preferencesRecord `json:"preferences"`
	IncomingRequests []string           `json:"incomingRequests"`
	OutgoingRequests []string           `json:"outgoingRequests"`
	Connections      []string           `json:"connections"`
	SelectedRoom     *roomRefRecord     `json:"selectedRoom"`
	TimeSlot         *timeSlotRecord    `json:"timeSlot"`
	CreatedAt        time.Time          `json:"createdAt"`
	UpdatedAt        time.Time          `json:"updatedAt"`
}

type preferencesRecord struct {
	StudyHabits    string   `json:"studyHabits"`
	SleepSchedule  string   `json:"sleepSchedule"`
	Cleanliness    string   `json:"cleanliness"`
	Visitors       string   `json:"visitors"`
	Interests      []string `json:"interests"`
	AdditionalInfo string   `json:"additionalInfo"`
}

type roomRefRecord struct {
	DormID     string    `json:"dormId"`
	RoomID     string    `json:"roomId"`
	RoomNumber string    `json:"roomNumber"`
	Type       string    `json:"type"`
	Price      float64   `json:"price"`
	SelectedAt time.Time `json:"selectedAt"`
	SelectedBy string    `json:"selectedBy"`
}

type timeSlotRecord struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

type roomRecord struct {
	DormID          string    `json:"dormId"`
	RoomID          string    `json:"roomId"`
	RoomNumber      string    `json:"roomNumber"`
	Floor           int       `json:"floor"`
	Capacity        int       `json:"capacity"`
	Type            string    `json:"type"`
	Price           float64   `json:"price"`
	OccupancyStatus string    `json:"occupancyStatus"`
	Occupants       []string  `json:"occupants"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

type dormRecord struct {
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type sessionRecord struct {
	UserID    string    `json:"userId"`
	ExpiresAt time.Time `json:"expiresAt"`
	CreatedAt time.Time `json:"createdAt"`
}

// decodeInto round-trips a document's field map through JSON into the typed
// wire shape. Dynamic backends hand back loosely typed maps; the round trip
// is what turns them into explicit records at this boundary.
func decodeInto(doc docstore.Document, out any) error {
	raw, err := json.Marshal(doc.Fields)
	if err != nil {
		return fmt.Errorf("decode %s/%s: %w", doc.Collection, doc.ID, err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s/%s: %w", doc.Collection, doc.ID, err)
	}
	return nil
}

// fieldsOf converts a typed wire shape into the field map a docstore.Write
// carries.
func fieldsOf(record any) map[string]any {
	raw, err := json.Marshal(record)
	if err != nil {
		panic(fmt.Sprintf("application: unencodable record: %v", err))
	}
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		panic(fmt.Sprintf("application: unencodable record: %v", err))
	}
	return fields
}

func decodeStudent(doc docstore.Document) (Student, error) {
	var rec userRecord
	if err := decodeInto(doc, &rec); err != nil {
		return Student{}, err
	}

	student := Student{
		ID:               doc.ID,
		FirstName:        rec.FirstName,
		LastName:         rec.LastName,
		Email:            rec.Email,
		ClassYear:        rec.ClassYear,
		Role:             rec.Role,
		IncomingRequests: defaultSet(rec.IncomingRequests),
		OutgoingRequests: defaultSet(rec.OutgoingRequests),
		Connections:      defaultSet(rec.Connections),
		CreatedAt:        rec.CreatedAt,
		UpdatedAt:        rec.UpdatedAt,
	}
	if student.Role == "" {
		student.Role = RoleStudent
	}
	if rec.Preferences != nil {
		student.Preferences = &Preferences{
			StudyHabits:    rec.Preferences.StudyHabits,
			SleepSchedule:  rec.Preferences.SleepSchedule,
			Cleanliness:    rec.Preferences.Cleanliness,
			Visitors:       rec.Preferences.Visitors,
			Interests:      defaultSet(rec.Preferences.Interests),
			AdditionalInfo: rec.Preferences.AdditionalInfo,
		}
	}
	if rec.SelectedRoom != nil {
		student.SelectedRoom = &RoomRef{
			DormID:     rec.SelectedRoom.DormID,
			RoomID:     rec.SelectedRoom.RoomID,
			RoomNumber: rec.SelectedRoom.RoomNumber,
			Type:       rec.SelectedRoom.Type,
			Price:      rec.SelectedRoom.Price,
			SelectedAt: rec.SelectedRoom.SelectedAt,
			SelectedBy: rec.SelectedRoom.SelectedBy,
		}
	}
	if rec.TimeSlot != nil {
		student.TimeSlot = &TimeSlot{Start: rec.TimeSlot.Start, End: rec.TimeSlot.End}
	}
	return student, nil
}

func decodeRoom(doc docstore.Document) (Room, error) {
	var rec roomRecord
	if err := decodeInto(doc, &rec); err != nil {
		return Room{}, err
	}
	room := Room{
		DormID:          rec.DormID,
		RoomID:          rec.RoomID,
		RoomNumber:      rec.RoomNumber,
		Floor:           rec.Floor,
		Capacity:        rec.Capacity,
		Type:            rec.Type,
		Price:           rec.Price,
		OccupancyStatus: rec.OccupancyStatus,
		Occupants:       defaultSet(rec.Occupants),
		CreatedAt:       rec.CreatedAt,
		UpdatedAt:       rec.UpdatedAt,
	}
	if room.OccupancyStatus == "" {
		room.OccupancyStatus = OccupancyAvailable
	}
	return room, nil
}

func decodeDorm(doc docstore.Document) (Dorm, error) {
	var rec dormRecord
	if err := decodeInto(doc, &rec); err != nil {
		return Dorm{}, err
	}
	return Dorm{
		ID:          doc.ID,
		Name:        rec.Name,
		Description: rec.Description,
		CreatedAt:   rec.CreatedAt,
		UpdatedAt:   rec.UpdatedAt,
	}, nil
}

func roomRefFields(ref *RoomRef) any {
	if ref == nil {
		return nil
	}
	return &roomRefRecord{
		DormID:     ref.DormID,
		RoomID:     ref.RoomID,
		RoomNumber: ref.RoomNumber,
		Type:       ref.Type,
		Price:      ref.Price,
		SelectedAt: ref.SelectedAt,
		SelectedBy: ref.SelectedBy,
	}
}

// ---------------------------- set helpers ----------------------------

func defaultSet(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

func containsString(values []string, target string) bool {
	return slices.Contains(values, target)
}

func withString(values []string, add string) []string {
	out := slices.Clone(values)
	if !containsString(out, add) {
		out = append(out, add)
	}
	return sortStrings(out)
}

func withoutString(values []string, remove string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v != remove {
			out = append(out, v)
		}
	}
	return out
}

func withoutStrings(values []string, remove map[string]struct{}) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, drop := remove[v]; !drop {
			out = append(out, v)
		}
	}
	return out
}

func uniqueStrings(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

func sortStrings(values []string) []string {
	sort.Strings(values)
	return values
}
