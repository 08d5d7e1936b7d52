package http

import (
	"time"

	"github.com/example/campus-housing/internal/application"
)

// DTO shapes shared by the handlers. Students appear in profile, roommate,
// and reservation responses, so the conversions live here rather than beside
// any single handler.

type studentDTO struct {
	ID               string           `json:"id"`
	FirstName        string           `json:"first_name"`
	LastName         string           `json:"last_name"`
	Email            string           `json:"email"`
	ClassYear        string           `json:"class_year"`
	Role             string           `json:"role"`
	Preferences      *preferencesDTO  `json:"preferences"`
	IncomingRequests []string         `json:"incoming_requests"`
	OutgoingRequests []string         `json:"outgoing_requests"`
	Connections      []string         `json:"connections"`
	SelectedRoom     *roomRefDTO      `json:"selected_room"`
	TimeSlot         *timeSlotDTO     `json:"time_slot"`
}

type preferencesDTO struct {
	StudyHabits    string   `json:"study_habits"`
	SleepSchedule  string   `json:"sleep_schedule"`
	Cleanliness    string   `json:"cleanliness"`
	Visitors       string   `json:"visitors"`
	Interests      []string `json:"interests"`
	AdditionalInfo string   `json:"additional_info"`
}

type roomRefDTO struct {
	DormID     string    `json:"dorm_id"`
	RoomID     string    `json:"room_id"`
	RoomNumber string    `json:"room_number"`
	Type       string    `json:"type"`
	Price      float64   `json:"price"`
	SelectedAt time.Time `json:"selected_at"`
	SelectedBy string    `json:"selected_by"`
}

type timeSlotDTO struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

type roomDTO struct {
	DormID          string   `json:"dorm_id"`
	RoomID          string   `json:"room_id"`
	RoomNumber      string   `json:"room_number"`
	Floor           int      `json:"floor"`
	Capacity        int      `json:"capacity"`
	Type            string   `json:"type"`
	Price           float64  `json:"price"`
	OccupancyStatus string   `json:"occupancy_status"`
	Occupants       []string `json:"occupants"`
}

type dormDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type comparisonDTO struct {
	MatchesByAttribute map[string]bool `json:"matches_by_attribute"`
	SharedInterests    []string        `json:"shared_interests"`
	UniqueToFirst      []string        `json:"unique_to_first"`
	UniqueToSecond     []string        `json:"unique_to_second"`
}

type studentResponse struct {
	Student studentDTO `json:"student"`
}

type studentsResponse struct {
	Students []studentDTO `json:"students"`
}

func toStudentDTO(s application.Student) studentDTO {
	dto := studentDTO{
		ID:               s.ID,
		FirstName:        s.FirstName,
		LastName:         s.LastName,
		Email:            s.Email,
		ClassYear:        s.ClassYear,
		Role:             s.Role,
		IncomingRequests: s.IncomingRequests,
		OutgoingRequests: s.OutgoingRequests,
		Connections:      s.Connections,
	}
	if s.Preferences != nil {
		dto.Preferences = &preferencesDTO{
			StudyHabits:    s.Preferences.StudyHabits,
			SleepSchedule:  s.Preferences.SleepSchedule,
			Cleanliness:    s.Preferences.Cleanliness,
			Visitors:       s.Preferences.Visitors,
			Interests:      s.Preferences.Interests,
			AdditionalInfo: s.Preferences.AdditionalInfo,
		}
	}
	if s.SelectedRoom != nil {
		dto.SelectedRoom = toRoomRefDTO(*s.SelectedRoom)
	}
	if s.TimeSlot != nil {
		dto.TimeSlot = &timeSlotDTO{Start: s.TimeSlot.Start, End: s.TimeSlot.End}
	}
	return dto
}

func toStudentDTOs(students []application.Student) []studentDTO {
	dtos := make([]studentDTO, len(students))
	for i, s := range students {
		dtos[i] = toStudentDTO(s)
	}
	return dtos
}

func toRoomRefDTO(ref application.RoomRef) *roomRefDTO {
	return &roomRefDTO{
		DormID:     ref.DormID,
		RoomID:     ref.RoomID,
		RoomNumber: ref.RoomNumber,
		Type:       ref.Type,
		Price:      ref.Price,
		SelectedAt: ref.SelectedAt,
		SelectedBy: ref.SelectedBy,
	}
}

func toRoomDTO(room application.Room) roomDTO {
	return roomDTO{
		DormID:          room.DormID,
		RoomID:          room.RoomID,
		RoomNumber:      room.RoomNumber,
		Floor:           room.Floor,
		Capacity:        room.Capacity,
		Type:            room.Type,
		Price:           room.Price,
		OccupancyStatus: room.OccupancyStatus,
		Occupants:       room.Occupants,
	}
}

func toRoomDTOs(rooms []application.Room) []roomDTO {
	dtos := make([]roomDTO, len(rooms))
	for i, room := range rooms {
		dtos[i] = toRoomDTO(room)
	}
	return dtos
}

func toDormDTO(dorm application.Dorm) dormDTO {
	return dormDTO{ID: dorm.ID, Name: dorm.Name, Description: dorm.Description}
}

func toComparisonDTO(c application.Comparison) comparisonDTO {
	return comparisonDTO{
		MatchesByAttribute: c.MatchesByAttribute,
		SharedInterests:    c.SharedInterests,
		UniqueToFirst:      c.UniqueToFirst,
		UniqueToSecond:     c.UniqueToSecond,
	}
}
