package users

import (
	"strings"

	"github.com/jrsteele09/go-events-client/internal/utils"
)

// User is the signed-in account as returned by the API.
type User struct {
	ID          string     `json:"id"`                     // Unique identifier for the user
	Email       string     `json:"email"`                  // User's email address
	DisplayName string     `json:"display_name,omitempty"` // Name shown in the app
	AvatarURL   string     `json:"avatar_url,omitempty"`   // Profile picture
	CreatedAt   utils.Time `json:"created_at"`             // Date and time when the user registered
}

// Name returns the display name, falling back to the local part of the email.
func (u *User) Name() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	if at := strings.IndexByte(u.Email, '@'); at > 0 {
		return u.Email[:at]
	}
	return u.Email
}

// ProfileUpdate is a partial update of the signed-in user. Empty fields are not sent.
type ProfileUpdate struct {
	DisplayName     string `json:"display_name,omitempty"`
	AvatarURL       string `json:"avatar_url,omitempty"`
	PasswordCurrent string `json:"password_current,omitempty"`
	PasswordNew     string `json:"password_new,omitempty"`
}

// Trimmed returns the update with whitespace-only name and avatar fields dropped.
// Passwords are sent as typed.
func (p ProfileUpdate) Trimmed() ProfileUpdate {
	p.DisplayName = strings.TrimSpace(p.DisplayName)
	p.AvatarURL = strings.TrimSpace(p.AvatarURL)
	return p
}

// Empty reports whether the update would send nothing.
func (p ProfileUpdate) Empty() bool {
	return p == ProfileUpdate{}
}
