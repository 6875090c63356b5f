package mapper

import (
	"time"

	identitydomain "github.com/Apurer/sabor-arte/internal/domains/identity/domain"
)

// Credentials is the login and registration payload.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Identity describes who a token belongs to.
type Identity struct {
	UID       string `json:"uid"`
	Email     string `json:"email,omitempty"`
	Anonymous bool   `json:"anonymous"`
	Staff     bool   `json:"staff"`
}

// Session carries a bearer token and the identity behind it.
type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	Identity
}

// FromDomainIdentity converts a domain identity.
func FromDomainIdentity(who identitydomain.Identity) Identity {
	return Identity{
		UID:       who.UID,
		Email:     who.Email,
		Anonymous: who.Anonymous,
		Staff:     who.IsStaff(),
	}
}

// FromDomainSession converts a domain session.
func FromDomainSession(session identitydomain.Session) Session {
	return Session{
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt.UTC(),
		Identity:  FromDomainIdentity(session.Identity),
	}
}
