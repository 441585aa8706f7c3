package user

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/SUHAIBCHEMBAN/autozen/internal/domain"
	userrepo "github.com/SUHAIBCHEMBAN/autozen/internal/repository/user"
	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrInvalidCredentials is returned when the identifier/password pair
	// does not match an active account.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidToken indicates the presented token could not be validated.
	ErrInvalidToken = errors.New("invalid token")
)

// Service handles account registration, login and token validation.
type Service struct {
	repo        repo
	tokenTTL    time.Duration
	passwordMin int
}

type repo interface {
	Create(ctx context.Context, u domain.User) (*domain.User, error)
	GetByLogin(ctx context.Context, identifier string) (*domain.User, error)
	InsertToken(ctx context.Context, t domain.AuthToken) error
	GetToken(ctx context.Context, token string) (*domain.AuthToken, *domain.User, error)
	DeleteToken(ctx context.Context, token string) error
}

// New creates a Service. A non-positive tokenTTL falls back to 30 days.
func New(r userrepo.Repository, tokenTTL time.Duration) *Service {
	if tokenTTL <= 0 {
		tokenTTL = 30 * 24 * time.Hour
	}
	return &Service{repo: r, tokenTTL: tokenTTL, passwordMin: 8}
}

// RegisterInput captures the signup payload. Email or phone is required,
// username is optional.
type RegisterInput struct {
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Username  string `json:"username"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// Register creates a new account with a bcrypt password hash.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	email := strings.TrimSpace(strings.ToLower(in.Email))
	phone := strings.TrimSpace(in.Phone)
	if email == "" && phone == "" {
		return nil, &domain.ValidationError{Field: "email or phone"}
	}
	password := strings.TrimSpace(in.Password)
	if err := validatePassword(password, s.passwordMin); err != nil {
		return nil, err
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	return s.repo.Create(ctx, domain.User{
		Email:        email,
		Phone:        phone,
		Username:     strings.TrimSpace(in.Username),
		PasswordHash: string(hashed),
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
	})
}

// Login validates the credentials and issues a bearer token. The identifier
// may be an email address, phone number or username.
func (s *Service) Login(ctx context.Context, identifier, password string) (*domain.User, string, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return nil, "", &domain.ValidationError{Field: "identifier"}
	}
	u, err := s.repo.GetByLogin(ctx, identifier)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}
	if !u.IsActive {
		return nil, "", ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(strings.TrimSpace(password))); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.issueToken(ctx, u.ID)
	if err != nil {
		return nil, "", err
	}
	return u, token, nil
}

// ValidateToken resolves a bearer token to its owner. Expired tokens are
// deleted on touch.
func (s *Service) ValidateToken(ctx context.Context, token string) (*domain.User, error) {
	if token == "" {
		return nil, ErrInvalidToken
	}
	tok, u, err := s.repo.GetToken(ctx, token)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	if tok.Expired(time.Now()) {
		_ = s.repo.DeleteToken(ctx, token)
		return nil, ErrInvalidToken
	}
	if !u.IsActive {
		return nil, ErrInvalidToken
	}
	return u, nil
}

// Logout revokes the token. Revoking an unknown token is not an error.
func (s *Service) Logout(ctx context.Context, token string) error {
	err := s.repo.DeleteToken(ctx, token)
	if errors.Is(err, domain.ErrNotFound) {
		return nil
	}
	return err
}

// TokenTTLSeconds exposes the token lifetime in seconds.
func (s *Service) TokenTTLSeconds() int {
	return int(s.tokenTTL.Seconds())
}

func (s *Service) issueToken(ctx context.Context, userID string) (string, error) {
	expiresAt := time.Now().Add(s.tokenTTL)
	for i := 0; i < 5; i++ {
		token, err := randomToken()
		if err != nil {
			return "", err
		}
		err = s.repo.InsertToken(ctx, domain.AuthToken{
			Token:     token,
			UserID:    userID,
			ExpiresAt: expiresAt,
		})
		if err == nil {
			return token, nil
		}
		if errors.Is(err, domain.ErrAlreadyExists) {
			continue
		}
		return "", err
	}
	return "", errors.New("token collision")
}

func randomToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func validatePassword(p string, min int) error {
	if len(p) < min {
		return &domain.ValidationError{
			Field:   "password",
			Message: fmt.Sprintf("password must be at least %d characters", min),
		}
	}
	hasUpper := false
	hasLower := false
	hasDigit := false
	for _, r := range p {
		switch {
		case r >= 'A' && r <= 'Z':
			hasUpper = true
		case r >= 'a' && r <= 'z':
			hasLower = true
		case r >= '0' && r <= '9':
			hasDigit = true
		}
	}
	if !hasUpper || !hasLower || !hasDigit {
		return &domain.ValidationError{
			Field:   "password",
			Message: "password must contain at least 1 uppercase letter, 1 lowercase letter, and 1 number",
		}
	}
	return nil
}
