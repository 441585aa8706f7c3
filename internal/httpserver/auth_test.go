package httpserver

import (
	"net/http"
	"strings"
	"testing"

	"github.com/SUHAIBCHEMBAN/autozen/internal/domain"
	usersvc "github.com/SUHAIBCHEMBAN/autozen/internal/service/user"
)

func TestRegisterHandler_Created(t *testing.T) {
	deps := testDeps()
	auth := &stubAuthService{user: &domain.User{ID: "u1", Email: "user@example.com", IsActive: true}}
	deps.AuthSvc = auth

	body := `{"email":"user@example.com","password":"Abcdefg1","firstName":"Pat"}`
	rec := serve(t, deps, jsonRequest(http.MethodPost, "/auth/register", body))

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d body=%s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"email":"user@example.com"`) {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestRegisterHandler_DuplicateIdentity(t *testing.T) {
	deps := testDeps()
	deps.AuthSvc = &stubAuthService{registerErr: domain.ErrAlreadyExists}

	body := `{"email":"user@example.com","password":"Abcdefg1"}`
	rec := serve(t, deps, jsonRequest(http.MethodPost, "/auth/register", body))

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d body=%s", rec.Code, rec.Body.String())
	}
}

func TestRegisterHandler_MalformedBody(t *testing.T) {
	rec := serve(t, testDeps(), jsonRequest(http.MethodPost, "/auth/register", `{"email":`))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d body=%s", rec.Code, rec.Body.String())
	}
}

func TestLoginHandler_IssuesToken(t *testing.T) {
	deps := testDeps()
	auth := &stubAuthService{user: testUser()}
	deps.AuthSvc = auth

	body := `{"identifier":"pat@example.com","password":"Abcdefg1"}`
	rec := serve(t, deps, jsonRequest(http.MethodPost, "/auth/login", body))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"token":"tok-abc"`) {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"expiresIn":3600`) {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestLoginHandler_EmailFieldFallback(t *testing.T) {
	deps := testDeps()
	auth := &stubAuthService{user: testUser()}
	deps.AuthSvc = auth

	body := `{"email":"pat@example.com","password":"Abcdefg1"}`
	rec := serve(t, deps, jsonRequest(http.MethodPost, "/auth/login", body))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rec.Code, rec.Body.String())
	}
	if auth.lastIdentifier != "pat@example.com" {
		t.Fatalf("expected email used as identifier, got %q", auth.lastIdentifier)
	}
}

func TestLoginHandler_InvalidCredentials(t *testing.T) {
	deps := testDeps()
	deps.AuthSvc = &stubAuthService{loginErr: usersvc.ErrInvalidCredentials}

	body := `{"identifier":"pat@example.com","password":"wrong"}`
	rec := serve(t, deps, jsonRequest(http.MethodPost, "/auth/login", body))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d body=%s", rec.Code, rec.Body.String())
	}
}

func TestMeHandler_ReturnsCurrentUser(t *testing.T) {
	rec := serve(t, testDeps(), authedRequest(http.MethodGet, "/me", ""))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"email":"pat@example.com"`) {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestLogoutHandler_RevokesPresentedToken(t *testing.T) {
	deps := testDeps()
	auth := &stubAuthService{user: testUser()}
	deps.AuthSvc = auth

	rec := serve(t, deps, authedRequest(http.MethodPost, "/auth/logout", ""))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rec.Code, rec.Body.String())
	}
	if auth.lastLogout != "tok-abc" {
		t.Fatalf("expected the bearer token to be revoked, got %q", auth.lastLogout)
	}
}
