package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/example/campus-housing/internal/docstore"
)

// ProfileService lets students read their own record and edit their living
// preferences. Preferences are set once at onboarding and edited in place
// afterwards; the roommate graph fields are never touched here.
type ProfileService struct {
	directory *Directory
	store     docstore.Store
	now       func() time.Time
	logger    *slog.Logger
}

// NewProfileService wires dependencies for profile operations.
func NewProfileService(directory *Directory, store docstore.Store, now func() time.Time, logger *slog.Logger) *ProfileService {
	if now == nil {
		now = time.Now
	}
	return &ProfileService{directory: directory, store: store, now: now, logger: defaultLogger(logger)}
}

func (s *ProfileService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "ProfileService", operation, attrs...)
}

// GetProfile returns the principal's own record.
func (s *ProfileService) GetProfile(ctx context.Context, principal Principal) (Student, error) {
	if s == nil {
		return Student{}, fmt.Errorf("ProfileService is nil")
	}
	return s.directory.GetUser(ctx, principal.UserID)
}

// UpdatePreferences validates and stores the principal's preferences.
func (s *ProfileService) UpdatePreferences(ctx context.Context, principal Principal, input PreferencesInput) (student Student, err error) {
	if s == nil {
		return Student{}, fmt.Errorf("ProfileService is nil")
	}

	logger := s.loggerWith(ctx, "UpdatePreferences",
		"principal_id", principal.UserID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to update preferences", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "preferences updated")
	}()

	vErr := validatePreferencesInput(input)
	if vErr.HasErrors() {
		return Student{}, vErr
	}

	student, err = s.directory.GetUser(ctx, principal.UserID)
	if err != nil {
		return Student{}, err
	}

	prefs := Preferences{
		StudyHabits:    strings.TrimSpace(input.StudyHabits),
		SleepSchedule:  strings.TrimSpace(input.SleepSchedule),
		Cleanliness:    strings.TrimSpace(input.Cleanliness),
		Visitors:       strings.TrimSpace(input.Visitors),
		Interests:      sortStrings(uniqueStrings(input.Interests)),
		AdditionalInfo: strings.TrimSpace(input.AdditionalInfo),
	}

	stamp := s.now()
	write := docstore.Write{
		Collection: collUsers,
		ID:         student.ID,
		Fields: map[string]any{
			"preferences": &preferencesRecord{
				StudyHabits:    prefs.StudyHabits,
				SleepSchedule:  prefs.SleepSchedule,
				Cleanliness:    prefs.Cleanliness,
				Visitors:       prefs.Visitors,
				Interests:      prefs.Interests,
				AdditionalInfo: prefs.AdditionalInfo,
			},
			"updatedAt": stamp,
		},
	}
	if err := s.store.CommitBatch(ctx, []docstore.Write{write}); err != nil {
		return Student{}, fmt.Errorf("%w: %v", ErrStoreWrite, err)
	}

	student.Preferences = &prefs
	student.UpdatedAt = stamp
	return student, nil
}

func validatePreferencesInput(input PreferencesInput) *ValidationError {
	vErr := &ValidationError{}

	if strings.TrimSpace(input.StudyHabits) == "" {
		vErr.add("studyHabits", "study habits are required")
	}
	if strings.TrimSpace(input.SleepSchedule) == "" {
		vErr.add("sleepSchedule", "sleep schedule is required")
	}
	if strings.TrimSpace(input.Cleanliness) == "" {
		vErr.add("cleanliness", "cleanliness is required")
	}
	if strings.TrimSpace(input.Visitors) == "" {
		vErr.add("visitors", "visitor preference is required")
	}

	return vErr
}
