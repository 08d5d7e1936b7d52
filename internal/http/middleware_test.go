package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/example/campus-housing/internal/application"
)

type fakeSessionValidator struct {
	principal application.Principal
	err       error
	gotToken  string
}

func (f *fakeSessionValidator) ValidateSession(ctx context.Context, token string) (application.Principal, error) {
	f.gotToken = token
	if f.err != nil {
		return application.Principal{}, f.err
	}
	return f.principal, nil
}

func decodeErrorResponse(t *testing.T, recorder *httptest.ResponseRecorder) errorResponse {
	t.Helper()

	var body errorResponse
	if err := json.NewDecoder(recorder.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	return body
}

func TestRequireSession(t *testing.T) {
	t.Parallel()

	t.Run("rejects requests without a token", func(t *testing.T) {
		t.Parallel()

		validator := &fakeSessionValidator{}
		handler := RequireSession(validator, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("next handler should not be called without credentials")
		}))

		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/profile", nil))

		if recorder.Code != http.StatusUnauthorized {
			t.Fatalf("expected status 401, got %d", recorder.Code)
		}
		if validator.gotToken != "" {
			t.Fatalf("validator should not be consulted without a token, got %q", validator.gotToken)
		}
	})

	t.Run("maps validation failures onto error codes", func(t *testing.T) {
		t.Parallel()

		tests := []struct {
			name           string
			err            error
			expectedStatus int
			expectedCode   string
		}{
			{
				name:           "expired session",
				err:            application.ErrSessionExpired,
				expectedStatus: http.StatusUnauthorized,
				expectedCode:   "SESSION_EXPIRED",
			},
			{
				name:           "unknown session",
				err:            application.ErrUnauthorized,
				expectedStatus: http.StatusUnauthorized,
				expectedCode:   "SESSION_INVALID",
			},
			{
				name:           "store failure",
				err:            errors.New("backend unavailable"),
				expectedStatus: http.StatusInternalServerError,
			},
		}

		for _, tc := range tests {
			tc := tc
			t.Run(tc.name, func(t *testing.T) {
				t.Parallel()

				validator := &fakeSessionValidator{err: tc.err}
				handler := RequireSession(validator, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					t.Fatal("next handler should not be called when validation fails")
				}))

				req := httptest.NewRequest(http.MethodGet, "/profile", nil)
				req.Header.Set("Authorization", "Bearer some-token")
				recorder := httptest.NewRecorder()
				handler.ServeHTTP(recorder, req)

				if recorder.Code != tc.expectedStatus {
					t.Fatalf("expected status %d, got %d", tc.expectedStatus, recorder.Code)
				}
				body := decodeErrorResponse(t, recorder)
				if body.ErrorCode != tc.expectedCode {
					t.Fatalf("expected error code %q, got %q", tc.expectedCode, body.ErrorCode)
				}
			})
		}
	})

	t.Run("extracts the token from the bearer header", func(t *testing.T) {
		t.Parallel()

		validator := &fakeSessionValidator{principal: application.Principal{UserID: "user-1"}}
		handler := RequireSession(validator, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		}))

		req := httptest.NewRequest(http.MethodGet, "/profile", nil)
		req.Header.Set("Authorization", "Bearer header-token")
		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, req)

		if recorder.Code != http.StatusNoContent {
			t.Fatalf("expected status 204, got %d", recorder.Code)
		}
		if validator.gotToken != "header-token" {
			t.Fatalf("expected token from header, got %q", validator.gotToken)
		}
	})

	t.Run("falls back to the session cookie", func(t *testing.T) {
		t.Parallel()

		validator := &fakeSessionValidator{principal: application.Principal{UserID: "user-1"}}
		handler := RequireSession(validator, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		}))

		req := httptest.NewRequest(http.MethodGet, "/profile", nil)
		req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: "cookie-token"})
		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, req)

		if recorder.Code != http.StatusNoContent {
			t.Fatalf("expected status 204, got %d", recorder.Code)
		}
		if validator.gotToken != "cookie-token" {
			t.Fatalf("expected token from cookie, got %q", validator.gotToken)
		}
	})

	t.Run("attaches the principal to the request context", func(t *testing.T) {
		t.Parallel()

		expected := application.Principal{UserID: "admin-1", IsAdmin: true}
		validator := &fakeSessionValidator{principal: expected}

		var captured application.Principal
		var found bool
		handler := RequireSession(validator, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			captured, found = PrincipalFromContext(r.Context())
			w.WriteHeader(http.StatusOK)
		}))

		req := httptest.NewRequest(http.MethodGet, "/admin/warnings", nil)
		req.Header.Set("Authorization", "Bearer admin-token")
		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, req)

		if recorder.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", recorder.Code)
		}
		if !found {
			t.Fatal("expected principal in request context")
		}
		if captured != expected {
			t.Fatalf("expected principal %+v, got %+v", expected, captured)
		}
	})
}

func TestRequestLogger(t *testing.T) {
	t.Parallel()

	handler := RequestLogger(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if LoggerFromContext(r.Context()) == nil {
			t.Fatal("expected request-scoped logger in context")
		}
		w.WriteHeader(http.StatusOK)
	}))

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/rooms", nil))

	if recorder.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", recorder.Code)
	}
}
