package user

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/SUHAIBCHEMBAN/autozen/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

type stubRepo struct {
	createUser   *domain.User
	createErr    error
	lastCreated  domain.User
	loginUser    *domain.User
	loginErr     error
	lastLogin    string
	insertErrs   []error
	insertCalls  int
	lastToken    domain.AuthToken
	getTokenTok  *domain.AuthToken
	getTokenUser *domain.User
	getTokenErr  error
	deleteErr    error
	deleted      []string
}

func (s *stubRepo) Create(_ context.Context, u domain.User) (*domain.User, error) {
	s.lastCreated = u
	return s.createUser, s.createErr
}

func (s *stubRepo) GetByLogin(_ context.Context, identifier string) (*domain.User, error) {
	s.lastLogin = identifier
	return s.loginUser, s.loginErr
}

func (s *stubRepo) InsertToken(_ context.Context, t domain.AuthToken) error {
	s.lastToken = t
	var err error
	if s.insertCalls < len(s.insertErrs) {
		err = s.insertErrs[s.insertCalls]
	}
	s.insertCalls++
	return err
}

func (s *stubRepo) GetToken(_ context.Context, _ string) (*domain.AuthToken, *domain.User, error) {
	return s.getTokenTok, s.getTokenUser, s.getTokenErr
}

func (s *stubRepo) DeleteToken(_ context.Context, token string) error {
	s.deleted = append(s.deleted, token)
	return s.deleteErr
}

func hashOf(t *testing.T, password string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	return string(h)
}

func TestRegisterRequiresIdentity(t *testing.T) {
	svc := &Service{repo: &stubRepo{}, passwordMin: 8}
	_, err := svc.Register(context.Background(), RegisterInput{Password: "Password1"})
	var vErr *domain.ValidationError
	if !errors.As(err, &vErr) || vErr.Field != "email or phone" {
		t.Fatalf("expected identity validation error, got %v", err)
	}
}

func TestRegisterPasswordRules(t *testing.T) {
	svc := &Service{repo: &stubRepo{}, passwordMin: 8}

	_, err := svc.Register(context.Background(), RegisterInput{Email: "a@b.com", Password: "short"})
	if err == nil || !strings.Contains(err.Error(), "at least 8 characters") {
		t.Fatalf("expected length error, got %v", err)
	}

	_, err = svc.Register(context.Background(), RegisterInput{Email: "a@b.com", Password: "alllowercase1"})
	if err == nil || !strings.Contains(err.Error(), "uppercase") {
		t.Fatalf("expected composition error, got %v", err)
	}
}

func TestRegisterHashesAndLowers(t *testing.T) {
	repo := &stubRepo{createUser: &domain.User{ID: "u1"}}
	svc := &Service{repo: repo, passwordMin: 8}

	got, err := svc.Register(context.Background(), RegisterInput{
		Email:    "New.User@Example.COM",
		Password: "Password1",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != "u1" {
		t.Fatalf("unexpected user %+v", got)
	}
	if repo.lastCreated.Email != "new.user@example.com" {
		t.Fatalf("expected lowered email, got %q", repo.lastCreated.Email)
	}
	if repo.lastCreated.PasswordHash == "Password1" || repo.lastCreated.PasswordHash == "" {
		t.Fatalf("expected hashed password, got %q", repo.lastCreated.PasswordHash)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(repo.lastCreated.PasswordHash), []byte("Password1")); err != nil {
		t.Fatalf("stored hash does not match password: %v", err)
	}
}

func TestRegisterDuplicate(t *testing.T) {
	svc := &Service{repo: &stubRepo{createErr: domain.ErrAlreadyExists}, passwordMin: 8}
	_, err := svc.Register(context.Background(), RegisterInput{Email: "a@b.com", Password: "Password1"})
	if !errors.Is(err, domain.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestLoginUnknownIdentifier(t *testing.T) {
	svc := &Service{repo: &stubRepo{loginErr: domain.ErrNotFound}, tokenTTL: time.Hour}
	_, _, err := svc.Login(context.Background(), "ghost", "Password1")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	repo := &stubRepo{loginUser: &domain.User{ID: "u1", IsActive: true, PasswordHash: hashOf(t, "Password1")}}
	svc := &Service{repo: repo, tokenTTL: time.Hour}
	_, _, err := svc.Login(context.Background(), "u1@example.com", "WrongPass1")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestLoginInactiveAccount(t *testing.T) {
	repo := &stubRepo{loginUser: &domain.User{ID: "u1", IsActive: false, PasswordHash: hashOf(t, "Password1")}}
	svc := &Service{repo: repo, tokenTTL: time.Hour}
	_, _, err := svc.Login(context.Background(), "u1@example.com", "Password1")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestLoginIssuesToken(t *testing.T) {
	repo := &stubRepo{loginUser: &domain.User{ID: "u1", IsActive: true, PasswordHash: hashOf(t, "Password1")}}
	svc := &Service{repo: repo, tokenTTL: time.Hour}

	u, token, err := svc.Login(context.Background(), "u1@example.com", "Password1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u.ID != "u1" || token == "" {
		t.Fatalf("unexpected result user=%+v token=%q", u, token)
	}
	if repo.lastToken.UserID != "u1" || repo.lastToken.Token != token {
		t.Fatalf("unexpected stored token %+v", repo.lastToken)
	}
	if time.Until(repo.lastToken.ExpiresAt) > time.Hour || time.Until(repo.lastToken.ExpiresAt) < 55*time.Minute {
		t.Fatalf("unexpected expiry %v", repo.lastToken.ExpiresAt)
	}
}

func TestLoginRetriesTokenCollision(t *testing.T) {
	repo := &stubRepo{
		loginUser:  &domain.User{ID: "u1", IsActive: true, PasswordHash: hashOf(t, "Password1")},
		insertErrs: []error{domain.ErrAlreadyExists, nil},
	}
	svc := &Service{repo: repo, tokenTTL: time.Hour}

	_, token, err := svc.Login(context.Background(), "u1@example.com", "Password1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.insertCalls != 2 {
		t.Fatalf("expected 2 insert attempts, got %d", repo.insertCalls)
	}
	if token != repo.lastToken.Token {
		t.Fatalf("returned token does not match stored one")
	}
}

func TestValidateTokenHappyPath(t *testing.T) {
	repo := &stubRepo{
		getTokenTok:  &domain.AuthToken{Token: "tok", UserID: "u1", ExpiresAt: time.Now().Add(time.Hour)},
		getTokenUser: &domain.User{ID: "u1", IsActive: true},
	}
	svc := &Service{repo: repo, tokenTTL: time.Hour}

	u, err := svc.ValidateToken(context.Background(), "tok")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u.ID != "u1" {
		t.Fatalf("unexpected user %+v", u)
	}
}

func TestValidateTokenExpiredDeletesOnTouch(t *testing.T) {
	repo := &stubRepo{
		getTokenTok:  &domain.AuthToken{Token: "tok", UserID: "u1", ExpiresAt: time.Now().Add(-time.Minute)},
		getTokenUser: &domain.User{ID: "u1", IsActive: true},
	}
	svc := &Service{repo: repo, tokenTTL: time.Hour}

	_, err := svc.ValidateToken(context.Background(), "tok")
	if !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
	if len(repo.deleted) != 1 || repo.deleted[0] != "tok" {
		t.Fatalf("expected expired token deleted, got %v", repo.deleted)
	}
}

func TestValidateTokenUnknown(t *testing.T) {
	svc := &Service{repo: &stubRepo{getTokenErr: domain.ErrNotFound}, tokenTTL: time.Hour}
	if _, err := svc.ValidateToken(context.Background(), "nope"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
	if _, err := svc.ValidateToken(context.Background(), ""); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for empty token, got %v", err)
	}
}

func TestLogoutSwallowsUnknownToken(t *testing.T) {
	repo := &stubRepo{deleteErr: domain.ErrNotFound}
	svc := &Service{repo: repo, tokenTTL: time.Hour}
	if err := svc.Logout(context.Background(), "gone"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
