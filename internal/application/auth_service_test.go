package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/campus-housing/internal/docstore"
	"github.com/example/campus-housing/internal/testfixtures"
)

func newAuthService(t *testing.T, clock *testfixtures.Clock, writes ...docstore.Write) (*AuthService, *Directory) {
	t.Helper()
	directory, store := newTestDirectory(t, writes...)
	svc := NewAuthService(
		directory,
		store,
		testfixtures.NewIDGenerator("user").NextFunc(),
		testfixtures.NewIDGenerator("token").NextFunc(),
		clock.NowFunc(),
		time.Hour,
		nil,
	)
	return svc, directory
}

func TestAuthService_SignUp(t *testing.T) {
	t.Run("creates a student with an empty roommate graph", func(t *testing.T) {
		svc, directory := newAuthService(t, testfixtures.NewClock(time.Time{}))

		student, err := svc.SignUp(context.Background(), SignUpInput{
			Email:     "New.Student@Campus.Example.EDU",
			Password:  "correct horse",
			FirstName: "New",
			LastName:  "Student",
			ClassYear: "freshman",
		})
		if err != nil {
			t.Fatalf("expected success, got %v", err)
		}
		if student.Email != "new.student@campus.example.edu" {
			t.Fatalf("expected lowercased email, got %s", student.Email)
		}
		if student.Role != RoleStudent {
			t.Fatalf("expected student role, got %s", student.Role)
		}

		stored := mustGetStudent(t, directory, student.ID)
		if len(stored.Connections) != 0 || len(stored.IncomingRequests) != 0 || len(stored.OutgoingRequests) != 0 {
			t.Fatalf("expected empty graph, got %+v", stored)
		}
	})

	t.Run("collects field validation errors", func(t *testing.T) {
		svc, _ := newAuthService(t, testfixtures.NewClock(time.Time{}))

		_, err := svc.SignUp(context.Background(), SignUpInput{
			Email:    "not-an-email",
			Password: "short",
		})

		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
		for _, field := range []string{"email", "password", "firstName", "lastName", "classYear"} {
			if _, ok := vErr.FieldErrors[field]; !ok {
				t.Fatalf("expected %s validation error, got %v", field, vErr.FieldErrors)
			}
		}
	})

	t.Run("rejects a duplicate email", func(t *testing.T) {
		existing := testfixtures.NewStudentFixture(testfixtures.WithStudentEmail("taken@campus.example.edu"))
		svc, _ := newAuthService(t, testfixtures.NewClock(time.Time{}), existing.Write())

		_, err := svc.SignUp(context.Background(), SignUpInput{
			Email:     "Taken@campus.example.edu",
			Password:  "correct horse",
			FirstName: "Second",
			LastName:  "Claimant",
			ClassYear: "freshman",
		})
		if !errors.Is(err, ErrAlreadyExists) {
			t.Fatalf("expected ErrAlreadyExists, got %v", err)
		}
	})
}

func TestAuthService_Authenticate(t *testing.T) {
	signedUp := func(t *testing.T, clock *testfixtures.Clock) (*AuthService, Student) {
		t.Helper()
		svc, _ := newAuthService(t, clock)
		student, err := svc.SignUp(context.Background(), SignUpInput{
			Email:     "alice@campus.example.edu",
			Password:  "correct horse",
			FirstName: "Alice",
			LastName:  "Atwood",
			ClassYear: "sophomore",
		})
		if err != nil {
			t.Fatalf("failed to sign up: %v", err)
		}
		return svc, student
	}

	t.Run("issues a session with the configured TTL", func(t *testing.T) {
		clock := testfixtures.NewClock(time.Time{})
		svc, student := signedUp(t, clock)

		session, err := svc.Authenticate(context.Background(), "alice@campus.example.edu", "correct horse")
		if err != nil {
			t.Fatalf("expected success, got %v", err)
		}
		if session.UserID != student.ID {
			t.Fatalf("expected session for %s, got %s", student.ID, session.UserID)
		}
		if session.Token == "" {
			t.Fatalf("expected a token")
		}
		if want := clock.Now().Add(time.Hour); !session.ExpiresAt.Equal(want) {
			t.Fatalf("expected expiry %v, got %v", want, session.ExpiresAt)
		}
	})

	t.Run("rejects a wrong password", func(t *testing.T) {
		clock := testfixtures.NewClock(time.Time{})
		svc, _ := signedUp(t, clock)

		if _, err := svc.Authenticate(context.Background(), "alice@campus.example.edu", "wrong password"); !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials, got %v", err)
		}
	})

	t.Run("rejects an unknown account without leaking its absence", func(t *testing.T) {
		svc, _ := newAuthService(t, testfixtures.NewClock(time.Time{}))

		if _, err := svc.Authenticate(context.Background(), "nobody@campus.example.edu", "whatever password"); !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials, got %v", err)
		}
	})
}

func TestAuthService_ValidateSession(t *testing.T) {
	login := func(t *testing.T, clock *testfixtures.Clock) (*AuthService, Session) {
		t.Helper()
		svc, _ := newAuthService(t, clock)
		if _, err := svc.SignUp(context.Background(), SignUpInput{
			Email:     "alice@campus.example.edu",
			Password:  "correct horse",
			FirstName: "Alice",
			LastName:  "Atwood",
			ClassYear: "sophomore",
		}); err != nil {
			t.Fatalf("failed to sign up: %v", err)
		}
		session, err := svc.Authenticate(context.Background(), "alice@campus.example.edu", "correct horse")
		if err != nil {
			t.Fatalf("failed to authenticate: %v", err)
		}
		return svc, session
	}

	t.Run("resolves a live token", func(t *testing.T) {
		clock := testfixtures.NewClock(time.Time{})
		svc, session := login(t, clock)

		principal, err := svc.ValidateSession(context.Background(), session.Token)
		if err != nil {
			t.Fatalf("expected success, got %v", err)
		}
		if principal.UserID != session.UserID || principal.IsAdmin {
			t.Fatalf("unexpected principal: %+v", principal)
		}
	})

	t.Run("expires with the clock", func(t *testing.T) {
		clock := testfixtures.NewClock(time.Time{})
		svc, session := login(t, clock)

		clock.Advance(2 * time.Hour)
		if _, err := svc.ValidateSession(context.Background(), session.Token); !errors.Is(err, ErrSessionExpired) {
			t.Fatalf("expected ErrSessionExpired, got %v", err)
		}
	})

	t.Run("rejects an unknown token", func(t *testing.T) {
		svc, _ := newAuthService(t, testfixtures.NewClock(time.Time{}))

		if _, err := svc.ValidateSession(context.Background(), "bogus"); !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	})
}

func TestAuthService_RevokeSession(t *testing.T) {
	t.Run("invalidates the token", func(t *testing.T) {
		clock := testfixtures.NewClock(time.Time{})
		svc, _ := newAuthService(t, clock)
		if _, err := svc.SignUp(context.Background(), SignUpInput{
			Email:     "alice@campus.example.edu",
			Password:  "correct horse",
			FirstName: "Alice",
			LastName:  "Atwood",
			ClassYear: "sophomore",
		}); err != nil {
			t.Fatalf("failed to sign up: %v", err)
		}
		session, err := svc.Authenticate(context.Background(), "alice@campus.example.edu", "correct horse")
		if err != nil {
			t.Fatalf("failed to authenticate: %v", err)
		}

		if err := svc.RevokeSession(context.Background(), session.Token); err != nil {
			t.Fatalf("expected success, got %v", err)
		}
		if _, err := svc.ValidateSession(context.Background(), session.Token); !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized after revocation, got %v", err)
		}
	})

	t.Run("tolerates an unknown token", func(t *testing.T) {
		svc, _ := newAuthService(t, testfixtures.NewClock(time.Time{}))

		if err := svc.RevokeSession(context.Background(), "never-issued"); err != nil {
			t.Fatalf("expected success, got %v", err)
		}
	})
}
