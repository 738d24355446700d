package auth

import (
	"fmt"
	"strings"

	"github.com/jrsteele09/go-events-client/users"
)

// Validator rejects requests the server would refuse anyway, before they cost a round trip.
type Validator struct{}

// NewValidator creates a new Validator instance
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateUserCredentials validates login credentials
func (v *Validator) ValidateUserCredentials(email, password string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return fmt.Errorf("%w: email is required", ErrInvalidCredentials)
	}

	// Basic email format validation
	at := strings.IndexByte(email, '@')
	if at <= 0 || !strings.Contains(email[at:], ".") {
		return fmt.Errorf("%w: invalid email format", ErrInvalidCredentials)
	}

	if password == "" {
		return fmt.Errorf("%w: password is required", ErrInvalidCredentials)
	}

	return nil
}

// ValidateProfileUpdate checks a partial profile update.
func (v *Validator) ValidateProfileUpdate(update users.ProfileUpdate) error {
	if update.Empty() {
		return ErrEmptyProfileUpdate
	}
	if update.PasswordNew != "" && update.PasswordCurrent == "" {
		return fmt.Errorf("current password is required to set a new one")
	}
	if update.PasswordCurrent != "" && update.PasswordNew == "" {
		return fmt.Errorf("new password is required")
	}
	return nil
}
