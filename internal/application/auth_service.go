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

// PasswordVerifier compares a stored hash with a candidate password.
type PasswordVerifier func(hashedPassword, password string) error

// AuthService owns accounts and sessions: signup creates a student record
// with an empty roommate graph, Authenticate issues an opaque session token
// with a TTL, and ValidateSession resolves a token back into a principal for
// the transport middleware.
type AuthService struct {
	directory      *Directory
	store          docstore.Store
	verifyPassword PasswordVerifier
	idGenerator    func() string
	tokenGenerator func() string
	now            func() time.Time
	sessionTTL     time.Duration
	logger         *slog.Logger
}

// NewAuthService constructs an AuthService with the provided dependencies.
func NewAuthService(directory *Directory, store docstore.Store, idGenerator, tokenGenerator func() string, now func() time.Time, sessionTTL time.Duration, logger *slog.Logger) *AuthService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if tokenGenerator == nil {
		tokenGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	if sessionTTL <= 0 {
		sessionTTL = 24 * time.Hour
	}
	return &AuthService{
		directory:      directory,
		store:          store,
		verifyPassword: VerifyPassword,
		idGenerator:    idGenerator,
		tokenGenerator: tokenGenerator,
		now:            now,
		sessionTTL:     sessionTTL,
		logger:         defaultLogger(logger),
	}
}

func (s *AuthService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "AuthService", operation, attrs...)
}

// SignUp creates a student account. The roommate graph fields start empty and
// preferences unset; both are filled in by later operations.
func (s *AuthService) SignUp(ctx context.Context, input SignUpInput) (student Student, err error) {
	if s == nil {
		return Student{}, fmt.Errorf("AuthService is nil")
	}

	email := strings.ToLower(strings.TrimSpace(input.Email))

	logger := s.loggerWith(ctx, "SignUp", "email", email)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "signup failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("user_id", student.ID).InfoContext(ctx, "account created")
	}()

	vErr := &ValidationError{}
	if email == "" || !strings.Contains(email, "@") {
		vErr.add("email", "a valid email address is required")
	}
	if len(input.Password) < 8 {
		vErr.add("password", "password must be at least 8 characters")
	}
	if strings.TrimSpace(input.FirstName) == "" {
		vErr.add("firstName", "first name is required")
	}
	if strings.TrimSpace(input.LastName) == "" {
		vErr.add("lastName", "last name is required")
	}
	if strings.TrimSpace(input.ClassYear) == "" {
		vErr.add("classYear", "class year is required")
	}
	if vErr.HasErrors() {
		return Student{}, vErr
	}

	if _, err := s.directory.FindUserByEmail(ctx, email); err == nil {
		return Student{}, ErrAlreadyExists
	} else if !errors.Is(err, ErrRecordNotFound) {
		return Student{}, err
	}

	hash, err := HashPassword(input.Password)
	if err != nil {
		return Student{}, err
	}

	stamp := s.now()
	student = Student{
		ID:               s.idGenerator(),
		FirstName:        strings.TrimSpace(input.FirstName),
		LastName:         strings.TrimSpace(input.LastName),
		Email:            email,
		ClassYear:        strings.TrimSpace(input.ClassYear),
		Role:             RoleStudent,
		IncomingRequests: []string{},
		OutgoingRequests: []string{},
		Connections:      []string{},
		CreatedAt:        stamp,
		UpdatedAt:        stamp,
	}

	write := docstore.Write{
		Collection: collUsers,
		ID:         student.ID,
		Fields: fieldsOf(&userRecord{
			FirstName:        student.FirstName,
			LastName:         student.LastName,
			Email:            student.Email,
			ClassYear:        student.ClassYear,
			Role:             student.Role,
			PasswordHash:     hash,
			IncomingRequests: student.IncomingRequests,
			OutgoingRequests: student.OutgoingRequests,
			Connections:      student.Connections,
			CreatedAt:        student.CreatedAt,
			UpdatedAt:        student.UpdatedAt,
		}),
	}
	if err := s.store.CommitBatch(ctx, []docstore.Write{write}); err != nil {
		return Student{}, fmt.Errorf("%w: %v", ErrStoreWrite, err)
	}
	return student, nil
}

// Authenticate validates credentials and issues a new session token.
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (session Session, err error) {
	if s == nil {
		return Session{}, fmt.Errorf("AuthService is nil")
	}

	email = strings.ToLower(strings.TrimSpace(email))

	logger := s.loggerWith(ctx, "Authenticate", "email", email)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "authentication failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("user_id", session.UserID).InfoContext(ctx, "authentication succeeded")
	}()

	if email == "" || password == "" {
		return Session{}, ErrInvalidCredentials
	}

	user, err := s.directory.FindUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrRecordNotFound) {
			return Session{}, ErrInvalidCredentials
		}
		return Session{}, err
	}

	hash, err := s.passwordHashOf(ctx, user.ID)
	if err != nil {
		return Session{}, err
	}
	if err := s.verifyPassword(hash, password); err != nil {
		return Session{}, ErrInvalidCredentials
	}

	stamp := s.now()
	session = Session{
		Token:     s.tokenGenerator(),
		UserID:    user.ID,
		ExpiresAt: stamp.Add(s.sessionTTL),
		CreatedAt: stamp,
	}

	write := docstore.Write{
		Collection: collSessions,
		ID:         session.Token,
		Fields: fieldsOf(&sessionRecord{
			UserID:    session.UserID,
			ExpiresAt: session.ExpiresAt,
			CreatedAt: session.CreatedAt,
		}),
	}
	if err := s.store.CommitBatch(ctx, []docstore.Write{write}); err != nil {
		return Session{}, fmt.Errorf("%w: %v", ErrStoreWrite, err)
	}
	return session, nil
}

// ValidateSession resolves a token into the authenticated principal.
func (s *AuthService) ValidateSession(ctx context.Context, token string) (Principal, error) {
	if s == nil {
		return Principal{}, fmt.Errorf("AuthService is nil")
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return Principal{}, ErrUnauthorized
	}

	doc, err := s.store.Get(ctx, collSessions, token)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return Principal{}, ErrUnauthorized
		}
		return Principal{}, err
	}
	var rec sessionRecord
	if err := decodeInto(doc, &rec); err != nil {
		return Principal{}, err
	}
	if !s.now().Before(rec.ExpiresAt) {
		return Principal{}, ErrSessionExpired
	}

	user, err := s.directory.GetUser(ctx, rec.UserID)
	if err != nil {
		if errors.Is(err, ErrRecordNotFound) {
			return Principal{}, ErrUnauthorized
		}
		return Principal{}, err
	}
	return Principal{UserID: user.ID, IsAdmin: user.Role == RoleAdmin}, nil
}

// RevokeSession deletes the session for the given token. Revoking an unknown
// token is not an error.
func (s *AuthService) RevokeSession(ctx context.Context, token string) (err error) {
	if s == nil {
		return fmt.Errorf("AuthService is nil")
	}

	logger := s.loggerWith(ctx, "RevokeSession")
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to revoke session", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "session revoked")
	}()

	if _, err := s.store.Get(ctx, collSessions, token); err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return nil
		}
		return err
	}
	write := docstore.Write{Collection: collSessions, ID: token, Delete: true}
	if err := s.store.CommitBatch(ctx, []docstore.Write{write}); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreWrite, err)
	}
	return nil
}

// passwordHashOf reads the stored hash directly from the document, since the
// typed Student record deliberately omits it.
func (s *AuthService) passwordHashOf(ctx context.Context, userID string) (string, error) {
	doc, err := s.store.Get(ctx, collUsers, userID)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", err
	}
	hash, _ := doc.Fields["passwordHash"].(string)
	if hash == "" {
		return "", ErrInvalidCredentials
	}
	return hash, nil
}
