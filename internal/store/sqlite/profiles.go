package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/mybooks/mybooks-server/internal/domain"
	"github.com/mybooks/mybooks-server/internal/store"
)

// profileColumns is the ordered list of columns selected in profile queries.
// Must match the scan order in scanProfile.
const profileColumns = `p.id, p.user_id, p.name, p.created_at, p.updated_at`

// scanProfile scans a sql.Row (or sql.Rows via its Scan method) into a domain.Profile.
func scanProfile(scanner interface{ Scan(dest ...any) error }) (*domain.Profile, error) {
	var p domain.Profile

	var (
		createdAt string
		updatedAt string
	)

	if err := scanner.Scan(&p.ID, &p.UserID, &p.Name, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	var err error
	if p.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if p.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}

	return &p, nil
}

func scanProfiles(rows *sql.Rows) ([]*domain.Profile, error) {
	defer rows.Close()

	profiles := []*domain.Profile{}
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}

func insertProfile(ctx context.Context, q querier, p *domain.Profile) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO profiles (id, user_id, name, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)`,
		p.ID,
		p.UserID,
		p.Name,
		formatTime(p.CreatedAt),
		formatTime(p.UpdatedAt),
	)
	return mapConstraintError(err)
}

// GetProfile retrieves a profile by ID.
func (s *Store) GetProfile(ctx context.Context, id string) (*domain.Profile, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+profileColumns+` FROM profiles p WHERE p.id = ?`, id)
	p, err := scanProfile(row)
	if err != nil {
		return nil, notFound(err)
	}
	return p, nil
}

// GetProfileByUserID retrieves the profile belonging to a user.
func (s *Store) GetProfileByUserID(ctx context.Context, userID string) (*domain.Profile, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+profileColumns+` FROM profiles p WHERE p.user_id = ?`, userID)
	p, err := scanProfile(row)
	if err != nil {
		return nil, notFound(err)
	}
	return p, nil
}

// GetProfilesByIDs returns the profiles that exist among ids, ordered by name.
func (s *Store) GetProfilesByIDs(ctx context.Context, ids []string) ([]*domain.Profile, error) {
	if len(ids) == 0 {
		return []*domain.Profile{}, nil
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+profileColumns+` FROM profiles p WHERE p.id IN (`+placeholders(len(ids))+`) ORDER BY p.name`,
		stringArgs(ids)...)
	if err != nil {
		return nil, err
	}
	return scanProfiles(rows)
}

// UpdateProfile saves a profile's name.
func (s *Store) UpdateProfile(ctx context.Context, p *domain.Profile) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE profiles SET name = ?, updated_at = ? WHERE id = ?`,
		p.Name, formatTime(p.UpdatedAt), p.ID)
	if err != nil {
		return mapConstraintError(err)
	}
	return expectOneRow(res)
}

// RenameProfile sets the profile name and the owning user's username in one
// transaction, so that both stay unique together.
func (s *Store) RenameProfile(ctx context.Context, profileID, name string) error {
	now := formatTime(time.Now())
	return s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`UPDATE profiles SET name = ?, updated_at = ? WHERE id = ?`, name, now, profileID)
		if err != nil {
			return mapConstraintError(err)
		}
		if err := expectOneRow(res); err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `
			UPDATE users SET username = ?, updated_at = ?
			WHERE id = (SELECT user_id FROM profiles WHERE id = ?)`,
			name, now, profileID)
		return mapConstraintError(err)
	})
}

// ListProfiles returns a page of profiles ordered by name.
func (s *Store) ListProfiles(ctx context.Context, filter store.NameFilter, page store.PageParams) (*store.Page[*domain.Profile], error) {
	page.Normalize()

	where := ""
	var args []any
	if filter.Name != "" {
		where = ` WHERE p.name LIKE ? ESCAPE '\'`
		args = append(args, likePattern(filter.Name))
	}

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM profiles p`+where, args...).Scan(&total); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+profileColumns+` FROM profiles p`+where+` ORDER BY p.name, p.id LIMIT ? OFFSET ?`,
		append(args, page.PerPage, page.Offset())...)
	if err != nil {
		return nil, err
	}
	profiles, err := scanProfiles(rows)
	if err != nil {
		return nil, err
	}

	return store.NewPage(profiles, page, total), nil
}

// AddFriend links two profiles in both directions. Adding an existing link is a no-op.
func (s *Store) AddFriend(ctx context.Context, profileID, friendID string) error {
	if profileID == friendID {
		return store.ErrInvalidInput
	}
	now := formatTime(time.Now())
	return s.withTx(ctx, func(tx *sql.Tx) error {
		for _, pair := range [][2]string{{profileID, friendID}, {friendID, profileID}} {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO profile_friends (profile_id, friend_id, created_at)
				VALUES (?, ?, ?)
				ON CONFLICT (profile_id, friend_id) DO NOTHING`,
				pair[0], pair[1], now)
			if err != nil {
				return mapConstraintError(err)
			}
		}
		return nil
	})
}

// RemoveFriend unlinks two profiles. Removing a missing link is a no-op.
func (s *Store) RemoveFriend(ctx context.Context, profileID, friendID string) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM profile_friends
		WHERE (profile_id = ? AND friend_id = ?) OR (profile_id = ? AND friend_id = ?)`,
		profileID, friendID, friendID, profileID)
	return err
}

// ListFriends returns a profile's friends ordered by name.
func (s *Store) ListFriends(ctx context.Context, profileID string) ([]*domain.Profile, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+profileColumns+`
		FROM profile_friends f
		JOIN profiles p ON p.id = f.friend_id
		WHERE f.profile_id = ?
		ORDER BY p.name`, profileID)
	if err != nil {
		return nil, err
	}
	return scanProfiles(rows)
}

// AreFriends reports whether the two profiles are linked.
func (s *Store) AreFriends(ctx context.Context, profileID, friendID string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM profile_friends WHERE profile_id = ? AND friend_id = ?)`,
		profileID, friendID).Scan(&exists)
	return exists, err
}

// AddOwnedBook marks a book as owned by the profile. Idempotent.
func (s *Store) AddOwnedBook(ctx context.Context, profileID, bookID string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO profile_books (profile_id, book_id, created_at)
		VALUES (?, ?, ?)
		ON CONFLICT (profile_id, book_id) DO NOTHING`,
		profileID, bookID, formatTime(time.Now()))
	return mapConstraintError(err)
}

// RemoveOwnedBook unmarks a book. Idempotent.
func (s *Store) RemoveOwnedBook(ctx context.Context, profileID, bookID string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM profile_books WHERE profile_id = ? AND book_id = ?`, profileID, bookID)
	return err
}

// ListOwnedBooks returns the profile's owned books ordered by title.
func (s *Store) ListOwnedBooks(ctx context.Context, profileID string) ([]*domain.Book, error) {
	return s.queryBooks(ctx, `
		SELECT `+bookColumns+`
		FROM profile_books pb
		JOIN books b ON b.id = pb.book_id
		WHERE pb.profile_id = ?
		ORDER BY b.title, b.id`, profileID)
}

// OwnsBook reports whether the profile owns the book.
func (s *Store) OwnsBook(ctx context.Context, profileID, bookID string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM profile_books WHERE profile_id = ? AND book_id = ?)`,
		profileID, bookID).Scan(&exists)
	return exists, err
}
