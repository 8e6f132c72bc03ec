package selfhosted

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	domainauth "github.com/quartzlabs/crm-ui-api/internal/domain/auth"
	apperrors "github.com/quartzlabs/crm-ui-api/internal/errors"
)

// User is a row in the self-hosted users table.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	DisplayName  string
	Role         domainauth.Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Profile maps the row into the canonical profile.
func (u User) Profile() domainauth.Profile {
	return domainauth.BuildProfile(domainauth.ProfileFields{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Name:      u.DisplayName,
		Role:      string(u.Role),
	})
}

// UserStore persists users in PostgreSQL. Database errors are mapped to
// AppError codes so callers can distinguish duplicates from faults.
type UserStore struct {
	db *sql.DB
}

// NewUserStore wraps a database handle.
func NewUserStore(db *sql.DB) *UserStore {
	return &UserStore{db: db}
}

const userColumns = `id, email, password_hash, first_name, last_name, display_name, role, created_at, updated_at`

// Create inserts a new user. A duplicate email maps to a Conflict error.
func (s *UserStore) Create(ctx context.Context, u User) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, email, password_hash, first_name, last_name, display_name, role)
		VALUES ($1, lower($2), $3, $4, $5, $6, $7)`,
		u.ID, u.Email, u.PasswordHash, u.FirstName, u.LastName, u.DisplayName, u.Role)
	if err != nil {
		return apperrors.MapDBError(err)
	}
	return nil
}

// GetByEmail returns the user for an email address, matched case-insensitively.
func (s *UserStore) GetByEmail(ctx context.Context, email string) (User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = lower($1)`, email)
	return scanUser(row)
}

// GetByID returns the user for an ID.
func (s *UserStore) GetByID(ctx context.Context, id string) (User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

// UpdateNames applies a partial name update; empty values keep the
// current column value.
func (s *UserStore) UpdateNames(ctx context.Context, id, first, last, display string) (User, error) {
	row := s.db.QueryRowContext(ctx, `
		UPDATE users SET
			first_name   = COALESCE(NULLIF($2, ''), first_name),
			last_name    = COALESCE(NULLIF($3, ''), last_name),
			display_name = COALESCE(NULLIF($4, ''), display_name),
			updated_at   = now()
		WHERE id = $1
		RETURNING `+userColumns, id, first, last, display)
	return scanUser(row)
}

// SetResetToken records an out-of-band recovery token for the email and
// returns the matched user.
func (s *UserStore) SetResetToken(ctx context.Context, email, token string, expires time.Time) (User, error) {
	row := s.db.QueryRowContext(ctx, `
		UPDATE users SET reset_token = $2, reset_expires_at = $3, updated_at = now()
		WHERE email = lower($1)
		RETURNING `+userColumns, email, token, expires)
	return scanUser(row)
}

func scanUser(row *sql.Row) (User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName,
		&u.DisplayName, &u.Role, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return User{}, apperrors.MapDBError(fmt.Errorf("scan user: %w", err))
	}
	return u, nil
}
