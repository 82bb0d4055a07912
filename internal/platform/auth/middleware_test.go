package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

func TestRequireAuth(t *testing.T) {
	issuer := NewTokenIssuer([]byte("test-secret"), time.Hour)
	e := echo.New()

	handler := RequireAuth(issuer)(func(c echo.Context) error {
		actor := ActorFromContext(c.Request().Context())
		return c.String(http.StatusOK, actor.Username)
	})

	t.Run("missing header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		err := handler(e.NewContext(req, rec))

		he, ok := err.(*echo.HTTPError)
		if !ok || he.Code != http.StatusUnauthorized {
			t.Errorf("expected 401, got %v", err)
		}
	})

	t.Run("malformed header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Token abc123")
		rec := httptest.NewRecorder()
		err := handler(e.NewContext(req, rec))

		he, ok := err.(*echo.HTTPError)
		if !ok || he.Code != http.StatusUnauthorized {
			t.Errorf("expected 401, got %v", err)
		}
	})

	t.Run("invalid token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer not-a-token")
		rec := httptest.NewRecorder()
		err := handler(e.NewContext(req, rec))

		he, ok := err.(*echo.HTTPError)
		if !ok || he.Code != http.StatusUnauthorized {
			t.Errorf("expected 401, got %v", err)
		}
	})

	t.Run("valid token", func(t *testing.T) {
		token, err := issuer.Issue(Actor{ID: uuid.New(), Username: "drsmith", Role: RoleDoctor})
		if err != nil {
			t.Fatalf("issue: %v", err)
		}

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		if err := handler(e.NewContext(req, rec)); err != nil {
			t.Fatalf("handler: %v", err)
		}
		if rec.Body.String() != "drsmith" {
			t.Errorf("actor not propagated, body %q", rec.Body.String())
		}
	})
}

func TestRequireClinicalAdmin(t *testing.T) {
	e := echo.New()

	handler := RequireClinicalAdmin()(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	invoke := func(actor Actor, set bool) error {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if set {
			req = req.WithContext(WithActor(req.Context(), actor))
		}
		rec := httptest.NewRecorder()
		return handler(e.NewContext(req, rec))
	}

	t.Run("no actor", func(t *testing.T) {
		err := invoke(Actor{}, false)
		he, ok := err.(*echo.HTTPError)
		if !ok || he.Code != http.StatusUnauthorized {
			t.Errorf("expected 401, got %v", err)
		}
	})

	t.Run("nurse denied", func(t *testing.T) {
		err := invoke(Actor{ID: uuid.New(), Role: RoleNurse, Authenticated: true}, true)
		he, ok := err.(*echo.HTTPError)
		if !ok || he.Code != http.StatusForbidden {
			t.Errorf("expected 403, got %v", err)
		}
	})

	t.Run("doctor allowed", func(t *testing.T) {
		if err := invoke(Actor{ID: uuid.New(), Role: RoleDoctor, Authenticated: true}, true); err != nil {
			t.Errorf("expected pass, got %v", err)
		}
	})

	t.Run("staff nurse allowed", func(t *testing.T) {
		if err := invoke(Actor{ID: uuid.New(), Role: RoleNurse, IsStaff: true, Authenticated: true}, true); err != nil {
			t.Errorf("expected pass, got %v", err)
		}
	})
}
