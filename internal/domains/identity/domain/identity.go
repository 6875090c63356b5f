package domain

import (
	"errors"
	"net/mail"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrEmptyEmail    = errors.New("email is required")
	ErrInvalidEmail  = errors.New("email is not a valid address")
	ErrEmptyPassword = errors.New("password is required")
	ErrWeakPassword  = errors.New("password must be at least 6 characters")
)

// MinPasswordLength mirrors the identity provider's minimum.
const MinPasswordLength = 6

// Identity is who a session belongs to. Anonymous identities browse and order;
// credentialed ones are staff.
type Identity struct {
	UID       string
	Email     string
	Anonymous bool
}

// IsStaff reports whether the identity may use the admin surface.
func (i Identity) IsStaff() bool {
	return i.UID != "" && !i.Anonymous
}

// Account is a credentialed identity.
type Account struct {
	UID          string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// NewAccount validates the credentials and hashes the password.
func NewAccount(uid, email, password string) (*Account, error) {
	account := &Account{UID: uid}
	if err := account.SetEmail(email); err != nil {
		return nil, err
	}
	if err := account.SetPassword(password); err != nil {
		return nil, err
	}
	return account, nil
}

// NormalizeEmail trims and lower-cases an address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// SetEmail normalises and validates the address.
func (a *Account) SetEmail(email string) error {
	email = NormalizeEmail(email)
	if email == "" {
		return ErrEmptyEmail
	}
	parsed, err := mail.ParseAddress(email)
	if err != nil || parsed.Address != email {
		return ErrInvalidEmail
	}
	a.Email = email
	return nil
}

// SetPassword enforces the minimum length and stores a bcrypt hash.
func (a *Account) SetPassword(password string) error {
	if strings.TrimSpace(password) == "" {
		return ErrEmptyPassword
	}
	if len(password) < MinPasswordLength {
		return ErrWeakPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	a.PasswordHash = string(hash)
	return nil
}

// CheckPassword compares password with the stored hash.
func (a *Account) CheckPassword(password string) bool {
	if a == nil || a.PasswordHash == "" || password == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(password)) == nil
}

// Identity returns the staff identity for the account.
func (a *Account) Identity() Identity {
	return Identity{UID: a.UID, Email: a.Email}
}

// Session binds an opaque token to an identity until it expires.
type Session struct {
	Token     string
	Identity  Identity
	ExpiresAt time.Time
}

// Expired reports whether the session is no longer valid at now.
func (s Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

// ChangeKind tells listeners whether an identity appeared or went away.
type ChangeKind int

const (
	SignedIn ChangeKind = iota
	SignedOut
)

func (k ChangeKind) String() string {
	if k == SignedOut {
		return "signed_out"
	}
	return "signed_in"
}

// Change is delivered to identity subscribers.
type Change struct {
	Kind     ChangeKind
	Identity Identity
	Token    string
}
