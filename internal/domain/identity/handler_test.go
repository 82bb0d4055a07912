package identity

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/hms/hms/internal/platform/auth"
)

func testHandler(t *testing.T) (*Handler, *Service, *auth.TokenIssuer) {
	t.Helper()
	svc := NewService(newMockRepo())
	tokens := auth.NewTokenIssuer([]byte("test-secret"), time.Hour)
	return NewHandler(svc, tokens), svc, tokens
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req
}

func TestLoginHandler(t *testing.T) {
	h, svc, tokens := testHandler(t)
	registerDoctor(t, svc, "drsmith")
	e := echo.New()

	t.Run("success", func(t *testing.T) {
		req := jsonRequest(http.MethodPost, "/api/v1/auth/login", `{"username":"drsmith","password":"s3cret-pass"}`)
		rec := httptest.NewRecorder()
		if err := h.Login(e.NewContext(req, rec)); err != nil {
			t.Fatalf("login: %v", err)
		}
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}

		var resp loginResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if resp.Token == "" {
			t.Error("expected session token")
		}
		actor, err := tokens.Parse(resp.Token)
		if err != nil {
			t.Fatalf("parse issued token: %v", err)
		}
		if actor.Username != "drsmith" || actor.Role != auth.RoleDoctor {
			t.Errorf("token actor = %+v", actor)
		}
		if strings.Contains(rec.Body.String(), "password_hash") {
			t.Error("response leaks password hash")
		}
	})

	t.Run("bad credentials", func(t *testing.T) {
		req := jsonRequest(http.MethodPost, "/api/v1/auth/login", `{"username":"drsmith","password":"wrong"}`)
		rec := httptest.NewRecorder()
		err := h.Login(e.NewContext(req, rec))

		he, ok := err.(*echo.HTTPError)
		if !ok || he.Code != http.StatusUnauthorized {
			t.Errorf("expected 401, got %v", err)
		}
	})
}

func TestRegisterHandler(t *testing.T) {
	h, _, _ := testHandler(t)
	e := echo.New()

	t.Run("created", func(t *testing.T) {
		req := jsonRequest(http.MethodPost, "/api/v1/auth/register",
			`{"username":"nurse1","password":"s3cret-pass","role":"nurse","email":"n1@hospital.test"}`)
		rec := httptest.NewRecorder()
		if err := h.Register(e.NewContext(req, rec)); err != nil {
			t.Fatalf("register: %v", err)
		}
		if rec.Code != http.StatusCreated {
			t.Errorf("status = %d", rec.Code)
		}
	})

	t.Run("validation failure", func(t *testing.T) {
		req := jsonRequest(http.MethodPost, "/api/v1/auth/register", `{"username":"","password":"x","role":"nope"}`)
		rec := httptest.NewRecorder()
		if err := h.Register(e.NewContext(req, rec)); err != nil {
			t.Fatalf("register: %v", err)
		}
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d", rec.Code)
		}

		var resp struct {
			Error  string            `json:"error"`
			Fields map[string]string `json:"fields"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if resp.Error != "validation failed" || len(resp.Fields) == 0 {
			t.Errorf("body = %s", rec.Body.String())
		}
	})
}

func TestLogoutHandler(t *testing.T) {
	h, _, _ := testHandler(t)
	e := echo.New()

	req := jsonRequest(http.MethodPost, "/api/v1/auth/logout", "")
	rec := httptest.NewRecorder()
	if err := h.Logout(e.NewContext(req, rec)); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestProfileHandlers(t *testing.T) {
	h, svc, _ := testHandler(t)
	u := registerDoctor(t, svc, "drsmith")
	e := echo.New()

	withActor := func(req *http.Request) *http.Request {
		return req.WithContext(auth.WithActor(req.Context(), u.Actor()))
	}

	t.Run("get", func(t *testing.T) {
		req := withActor(jsonRequest(http.MethodGet, "/api/v1/admin/profile", ""))
		rec := httptest.NewRecorder()
		if err := h.GetProfile(e.NewContext(req, rec)); err != nil {
			t.Fatalf("get profile: %v", err)
		}
		if rec.Code != http.StatusOK {
			t.Errorf("status = %d", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), `"drsmith"`) {
			t.Errorf("body = %s", rec.Body.String())
		}
	})

	t.Run("update", func(t *testing.T) {
		req := withActor(jsonRequest(http.MethodPut, "/api/v1/admin/profile",
			`{"email":"new@hospital.test","first_name":"Sam","last_name":"Smith"}`))
		rec := httptest.NewRecorder()
		if err := h.UpdateProfile(e.NewContext(req, rec)); err != nil {
			t.Fatalf("update profile: %v", err)
		}
		if rec.Code != http.StatusOK {
			t.Errorf("status = %d", rec.Code)
		}

		var got User
		if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if got.Email != "new@hospital.test" || got.Role != auth.RoleDoctor {
			t.Errorf("profile = %+v", got)
		}
	})
}
