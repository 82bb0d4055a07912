package identity

import (
	"time"

	"github.com/google/uuid"

	"github.com/hms/hms/internal/platform/auth"
)

// User maps to the users table. Staff at the hospital: doctors, nurses and
// administrators. PasswordHash never leaves the API.
type User struct {
	ID             uuid.UUID `db:"id" json:"id"`
	Username       string    `db:"username" json:"username"`
	Email          string    `db:"email" json:"email"`
	FirstName      string    `db:"first_name" json:"first_name"`
	LastName       string    `db:"last_name" json:"last_name"`
	Role           string    `db:"role" json:"role"`
	Phone          string    `db:"phone" json:"phone"`
	Specialization string    `db:"specialization" json:"specialization"`
	LicenseNumber  *string   `db:"license_number" json:"license_number,omitempty"`
	ProfilePicture *string   `db:"profile_picture" json:"profile_picture,omitempty"`
	IsStaff        bool      `db:"is_staff" json:"is_staff"`
	IsSuperuser    bool      `db:"is_superuser" json:"is_superuser"`
	PasswordHash   string    `db:"password_hash" json:"-"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// FullName returns "First Last" with leading/trailing space trimmed away
// when either part is empty.
func (u *User) FullName() string {
	if u.FirstName == "" {
		return u.LastName
	}
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// Actor converts the user into the acting identity passed through service
// calls and session tokens.
func (u *User) Actor() auth.Actor {
	return auth.Actor{
		ID:            u.ID,
		Username:      u.Username,
		Role:          u.Role,
		IsStaff:       u.IsStaff,
		IsSuperuser:   u.IsSuperuser,
		Authenticated: true,
	}
}
