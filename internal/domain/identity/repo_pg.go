package identity

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hms/hms/internal/platform/apperr"
	"github.com/hms/hms/internal/platform/db"
)

type repoPG struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

func (r *repoPG) conn(ctx context.Context) db.Querier {
	return db.Conn(ctx, r.pool)
}

const userCols = `id, username, email, first_name, last_name, role, phone,
	specialization, license_number, profile_picture,
	is_staff, is_superuser, password_hash, created_at, updated_at`

func (r *repoPG) Create(ctx context.Context, u *User) error {
	u.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO users (
			id, username, email, first_name, last_name, role, phone,
			specialization, license_number, profile_picture,
			is_staff, is_superuser, password_hash
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)`,
		u.ID, u.Username, u.Email, u.FirstName, u.LastName, u.Role, u.Phone,
		u.Specialization, u.LicenseNumber, u.ProfilePicture,
		u.IsStaff, u.IsSuperuser, u.PasswordHash,
	)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	u, err := scanUser(r.conn(ctx).QueryRow(ctx, `SELECT `+userCols+` FROM users WHERE id = $1`, id))
	if err != nil {
		return nil, apperr.NotFoundIfNoRows(err)
	}
	return u, nil
}

func (r *repoPG) GetByUsername(ctx context.Context, username string) (*User, error) {
	u, err := scanUser(r.conn(ctx).QueryRow(ctx, `SELECT `+userCols+` FROM users WHERE username = $1`, username))
	if err != nil {
		return nil, apperr.NotFoundIfNoRows(err)
	}
	return u, nil
}

// Update persists profile and credential fields. Username, role and the
// staff/superuser flags are not part of the statement.
func (r *repoPG) Update(ctx context.Context, u *User) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE users SET
			email=$2, first_name=$3, last_name=$4, phone=$5,
			specialization=$6, license_number=$7, profile_picture=$8,
			password_hash=$9, updated_at=NOW()
		WHERE id = $1`,
		u.ID, u.Email, u.FirstName, u.LastName, u.Phone,
		u.Specialization, u.LicenseNumber, u.ProfilePicture,
		u.PasswordHash,
	)
	return err
}

func (r *repoPG) CountByRole(ctx context.Context, role string) (int, error) {
	var count int
	err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM users WHERE role = $1`, role).Scan(&count)
	return count, err
}

func scanUser(row pgx.Row) (*User, error) {
	var u User
	err := row.Scan(
		&u.ID, &u.Username, &u.Email, &u.FirstName, &u.LastName, &u.Role, &u.Phone,
		&u.Specialization, &u.LicenseNumber, &u.ProfilePicture,
		&u.IsStaff, &u.IsSuperuser, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}
