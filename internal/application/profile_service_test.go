package application

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/example/campus-housing/internal/testfixtures"
)

func TestProfileService_UpdatePreferences(t *testing.T) {
	newService := func(t *testing.T) (*ProfileService, *Directory) {
		t.Helper()
		alice := testfixtures.NewStudentFixture(testfixtures.WithStudentID("alice"))
		directory, store := newTestDirectory(t, alice.Write())
		svc := NewProfileService(directory, store, testfixtures.NewClock(testfixtures.ReferenceTime()).NowFunc(), nil)
		return svc, directory
	}

	t.Run("stores a normalised profile", func(t *testing.T) {
		svc, directory := newService(t)

		student, err := svc.UpdatePreferences(context.Background(), Principal{UserID: "alice"}, PreferencesInput{
			StudyHabits:   " quiet ",
			SleepSchedule: "early",
			Cleanliness:   "tidy",
			Visitors:      "rare",
			Interests:     []string{"hiking", "chess", "hiking"},
		})
		if err != nil {
			t.Fatalf("expected success, got %v", err)
		}
		if student.Preferences == nil {
			t.Fatalf("expected preferences set")
		}
		if student.Preferences.StudyHabits != "quiet" {
			t.Fatalf("expected trimmed study habits, got %q", student.Preferences.StudyHabits)
		}
		if !reflect.DeepEqual(student.Preferences.Interests, []string{"chess", "hiking"}) {
			t.Fatalf("expected deduplicated sorted interests, got %v", student.Preferences.Interests)
		}

		stored := mustGetStudent(t, directory, "alice")
		if stored.Preferences == nil || stored.Preferences.SleepSchedule != "early" {
			t.Fatalf("expected persisted preferences, got %+v", stored.Preferences)
		}
	})

	t.Run("collects missing attributes", func(t *testing.T) {
		svc, _ := newService(t)

		_, err := svc.UpdatePreferences(context.Background(), Principal{UserID: "alice"}, PreferencesInput{})
		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
		for _, field := range []string{"studyHabits", "sleepSchedule", "cleanliness", "visitors"} {
			if _, ok := vErr.FieldErrors[field]; !ok {
				t.Fatalf("expected %s validation error, got %v", field, vErr.FieldErrors)
			}
		}
	})

	t.Run("rejects an unknown principal", func(t *testing.T) {
		svc, _ := newService(t)

		if _, err := svc.UpdatePreferences(context.Background(), Principal{UserID: "ghost"}, PreferencesInput{
			StudyHabits:   "quiet",
			SleepSchedule: "early",
			Cleanliness:   "tidy",
			Visitors:      "rare",
		}); !errors.Is(err, ErrRecordNotFound) {
			t.Fatalf("expected ErrRecordNotFound, got %v", err)
		}
	})
}
