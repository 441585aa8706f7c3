package domain

import "time"

// User is a registered account. Login works with either email or phone.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email,omitempty"`
	Phone        string    `json:"phone,omitempty"`
	Username     string    `json:"username,omitempty"`
	PasswordHash string    `json:"-"`
	FirstName    string    `json:"firstName,omitempty"`
	LastName     string    `json:"lastName,omitempty"`
	IsActive     bool      `json:"isActive"`
	IsStaff      bool      `json:"isStaff"`
	CreatedAt    time.Time `json:"createdAt"`
}

// AuthToken is a bearer credential issued at login.
type AuthToken struct {
	Token     string    `json:"token"`
	UserID    string    `json:"-"`
	ExpiresAt time.Time `json:"expiresAt"`
	CreatedAt time.Time `json:"-"`
}

// Expired reports whether the token is past its expiry at the given time.
func (t AuthToken) Expired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}
