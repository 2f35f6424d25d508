package recipient

import (
	"errors"
	"net/mail"
	"strings"
	"time"
)

// Domain errors
var (
	ErrEmptyEmail   = errors.New("recipient email is required")
	ErrInvalidEmail = errors.New("recipient email is not a valid address")
	ErrDuplicate    = errors.New("recipient email is already registered")
	ErrNotFound     = errors.New("recipient not found")
)

// Recipient is a registered address that receives every announcement notification.
type Recipient struct {
	ID        string
	Email     string
	CreatedAt time.Time
}

// NormalizeEmail trims surrounding whitespace and lower-cases the address.
// Uniqueness is enforced on the normalized form.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Validate checks that the Recipient holds a single bare address.
// PRE: Email has been normalized
// POST: Returns nil if valid, error otherwise
func (r *Recipient) Validate() error {
	if r.Email == "" {
		return ErrEmptyEmail
	}
	addr, err := mail.ParseAddress(r.Email)
	if err != nil || addr.Address != r.Email {
		return ErrInvalidEmail
	}
	if r.CreatedAt.IsZero() {
		return errors.New("created_at must be set")
	}
	return nil
}

// Addresses extracts the email addresses from a recipient list, preserving order.
func Addresses(recipients []Recipient) []string {
	out := make([]string, 0, len(recipients))
	for _, r := range recipients {
		if r.Email != "" {
			out = append(out, r.Email)
		}
	}
	return out
}
