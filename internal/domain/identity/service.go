package identity

import (
	"context"

	"github.com/google/uuid"

	"github.com/hms/hms/internal/platform/apperr"
	"github.com/hms/hms/internal/platform/auth"
)

type Service struct {
	users Repository
}

func NewService(users Repository) *Service {
	return &Service{users: users}
}

// RegisterInput carries the registration form. Role is selectable here and
// immutable afterwards; the staff and superuser flags are never settable
// through registration.
type RegisterInput struct {
	Username       string  `json:"username"`
	Email          string  `json:"email"`
	Password       string  `json:"password"`
	FirstName      string  `json:"first_name"`
	LastName       string  `json:"last_name"`
	Role           string  `json:"role"`
	Phone          string  `json:"phone"`
	Specialization string  `json:"specialization"`
	LicenseNumber  *string `json:"license_number,omitempty"`
}

// ProfileUpdate carries the profile-edit form. Username, role and the
// staff/superuser flags are absent so this path cannot escalate privileges.
type ProfileUpdate struct {
	Email          string  `json:"email"`
	FirstName      string  `json:"first_name"`
	LastName       string  `json:"last_name"`
	Phone          string  `json:"phone"`
	Specialization string  `json:"specialization"`
	LicenseNumber  *string `json:"license_number,omitempty"`
}

// Authenticate checks the credentials. Any failure, unknown username or
// wrong password alike, yields the same generic error.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*User, error) {
	u, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if apperr.IsNotFound(err) {
			return nil, apperr.ErrInvalidCredentials
		}
		return nil, err
	}
	if !auth.CheckPassword(u.PasswordHash, password) {
		return nil, apperr.ErrInvalidCredentials
	}
	return u, nil
}

// Register creates a new user account.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*User, error) {
	fields := map[string]string{}
	if in.Username == "" {
		fields["username"] = "username is required"
	}
	if len(in.Password) < auth.MinPasswordLength {
		fields["password"] = "password must be at least 8 characters"
	}
	if !auth.ValidRole(in.Role) {
		fields["role"] = "role must be doctor, nurse or admin"
	}
	if len(fields) > 0 {
		return nil, &apperr.Validation{Fields: fields}
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	license := in.LicenseNumber
	if license != nil && *license == "" {
		license = nil
	}

	u := &User{
		Username:       in.Username,
		Email:          in.Email,
		FirstName:      in.FirstName,
		LastName:       in.LastName,
		Role:           in.Role,
		Phone:          in.Phone,
		Specialization: in.Specialization,
		LicenseNumber:  license,
		PasswordHash:   hash,
	}
	if err := s.users.Create(ctx, u); err != nil {
		if apperr.IsUniqueViolation(err, "users_username_key") {
			return nil, apperr.NewValidation("username", "username is already taken")
		}
		if apperr.IsUniqueViolation(err, "users_license_number_key") {
			return nil, apperr.NewValidation("license_number", "license number is already registered")
		}
		return nil, err
	}
	return u, nil
}

// UpdateProfile applies the profile-edit fields to the acting user's own
// record. Role and the staff/superuser flags are untouched.
func (s *Service) UpdateProfile(ctx context.Context, actor auth.Actor, in ProfileUpdate) (*User, error) {
	u, err := s.users.GetByID(ctx, actor.ID)
	if err != nil {
		return nil, err
	}

	u.Email = in.Email
	u.FirstName = in.FirstName
	u.LastName = in.LastName
	u.Phone = in.Phone
	u.Specialization = in.Specialization
	u.LicenseNumber = in.LicenseNumber
	if u.LicenseNumber != nil && *u.LicenseNumber == "" {
		u.LicenseNumber = nil
	}

	if err := s.users.Update(ctx, u); err != nil {
		if apperr.IsUniqueViolation(err, "users_license_number_key") {
			return nil, apperr.NewValidation("license_number", "license number is already registered")
		}
		return nil, err
	}
	return u, nil
}

func (s *Service) GetUser(ctx context.Context, id uuid.UUID) (*User, error) {
	return s.users.GetByID(ctx, id)
}

func (s *Service) CountByRole(ctx context.Context, role string) (int, error) {
	return s.users.CountByRole(ctx, role)
}

// CreateAdmin provisions a superuser account for the bootstrap CLI.
func (s *Service) CreateAdmin(ctx context.Context, username, email, password string) (*User, error) {
	if username == "" {
		return nil, apperr.NewValidation("username", "username is required")
	}
	if len(password) < auth.MinPasswordLength {
		return nil, apperr.NewValidation("password", "password must be at least 8 characters")
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}

	u := &User{
		Username:     username,
		Email:        email,
		Role:         auth.RoleAdmin,
		IsStaff:      true,
		IsSuperuser:  true,
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, u); err != nil {
		if apperr.IsUniqueViolation(err, "users_username_key") {
			return nil, apperr.NewValidation("username", "username is already taken")
		}
		return nil, err
	}
	return u, nil
}
