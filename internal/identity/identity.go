package identity

import (
	"errors"
	"strings"
)

// ErrMissingIdentity is returned when a participant is built without an email.
var ErrMissingIdentity = errors.New("participant identity is missing")

var replacer = strings.NewReplacer(".", "-", "@", "-")

// Normalize turns an email-like identifier into a storage-safe participant id.
// Every "." and "@" becomes "-". Applying it twice gives the same result.
func Normalize(raw string) string {
	return replacer.Replace(raw)
}

// Participant is the identity every core operation receives explicitly.
type Participant struct {
	ID          string
	Email       string
	DisplayName string
}

func New(email, displayName string) (Participant, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return Participant{}, ErrMissingIdentity
	}
	return Participant{
		ID:          Normalize(email),
		Email:       email,
		DisplayName: strings.TrimSpace(displayName),
	}, nil
}

// IsZero reports whether p carries no identity.
func (p Participant) IsZero() bool {
	return p.ID == ""
}
