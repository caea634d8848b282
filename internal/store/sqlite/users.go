package sqlite

import (
	"context"
	"database/sql"

	"github.com/mybooks/mybooks-server/internal/domain"
	"github.com/mybooks/mybooks-server/internal/store"
)

// userColumns is the ordered list of columns selected in user queries.
// Must match the scan order in scanUser.
const userColumns = `id, username, email, first_name, last_name, password_hash,
	is_admin, is_active, created_at, updated_at, last_login_at`

// scanUser scans a sql.Row (or sql.Rows via its Scan method) into a domain.User.
func scanUser(scanner interface{ Scan(dest ...any) error }) (*domain.User, error) {
	var u domain.User

	var (
		isAdmin     int
		isActive    int
		createdAt   string
		updatedAt   string
		lastLoginAt sql.NullString
	)

	err := scanner.Scan(
		&u.ID,
		&u.Username,
		&u.Email,
		&u.FirstName,
		&u.LastName,
		&u.PasswordHash,
		&isAdmin,
		&isActive,
		&createdAt,
		&updatedAt,
		&lastLoginAt,
	)
	if err != nil {
		return nil, err
	}

	u.IsAdmin = isAdmin != 0
	u.IsActive = isActive != 0

	if u.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if u.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	if u.LastLoginAt, err = parseNullableTime(lastLoginAt); err != nil {
		return nil, err
	}

	return &u, nil
}

func insertUser(ctx context.Context, q querier, u *domain.User) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO users (`+userColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID,
		u.Username,
		u.Email,
		u.FirstName,
		u.LastName,
		u.PasswordHash,
		boolToInt(u.IsAdmin),
		boolToInt(u.IsActive),
		formatTime(u.CreatedAt),
		formatTime(u.UpdatedAt),
		nullTimeString(u.LastLoginAt),
	)
	return mapConstraintError(err)
}

// CreateUser inserts a new user.
// Returns store.ErrAlreadyExists on duplicate username.
func (s *Store) CreateUser(ctx context.Context, u *domain.User) error {
	return insertUser(ctx, s.db, u)
}

// CreateUserWithProfile inserts a user and its profile in one transaction.
// A duplicate username or profile name rolls both back.
func (s *Store) CreateUserWithProfile(ctx context.Context, u *domain.User, p *domain.Profile) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if err := insertUser(ctx, tx, u); err != nil {
			return err
		}
		return insertProfile(ctx, tx, p)
	})
}

// GetUser retrieves a user by ID.
func (s *Store) GetUser(ctx context.Context, id string) (*domain.User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	u, err := scanUser(row)
	if err != nil {
		return nil, notFound(err)
	}
	return u, nil
}

// GetUserByUsername retrieves a user by exact username.
func (s *Store) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE username = ?`, username)
	u, err := scanUser(row)
	if err != nil {
		return nil, notFound(err)
	}
	return u, nil
}

// UpdateUser replaces a user's mutable fields.
func (s *Store) UpdateUser(ctx context.Context, u *domain.User) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE users SET
			username = ?, email = ?, first_name = ?, last_name = ?, password_hash = ?,
			is_admin = ?, is_active = ?, updated_at = ?, last_login_at = ?
		WHERE id = ?`,
		u.Username,
		u.Email,
		u.FirstName,
		u.LastName,
		u.PasswordHash,
		boolToInt(u.IsAdmin),
		boolToInt(u.IsActive),
		formatTime(u.UpdatedAt),
		nullTimeString(u.LastLoginAt),
		u.ID,
	)
	if err != nil {
		return mapConstraintError(err)
	}
	return expectOneRow(res)
}

// DeleteUser removes a user. The profile and its votes, owned-book and
// friend rows go with it through ON DELETE CASCADE; catalog rows the
// profile created keep existing with added_by set to NULL.
func (s *Store) DeleteUser(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return expectOneRow(res)
}

// CountUsers returns the number of users.
func (s *Store) CountUsers(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n)
	return n, err
}

// expectOneRow returns store.ErrNotFound when an UPDATE or DELETE matched nothing.
func expectOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}
