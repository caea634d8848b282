package sqlite

import (
	"context"
	"database/sql"
	"strings"

	"github.com/mybooks/mybooks-server/internal/domain"
	"github.com/mybooks/mybooks-server/internal/store"
)

// voteColumns is the ordered list of columns selected in vote queries.
// Must match the scan order in scanVote.
const voteColumns = `id, profile_id, book_id, value, date, created_at, updated_at`

func scanVote(scanner interface{ Scan(dest ...any) error }) (*domain.Vote, error) {
	var v domain.Vote

	var (
		date      string
		createdAt string
		updatedAt string
	)

	if err := scanner.Scan(&v.ID, &v.ProfileID, &v.BookID, &v.Value, &date, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	var err error
	if v.Date, err = parseDate(date); err != nil {
		return nil, err
	}
	if v.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if v.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &v, nil
}

// GetVote retrieves a vote by ID.
func (s *Store) GetVote(ctx context.Context, id string) (*domain.Vote, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+voteColumns+` FROM votes WHERE id = ?`, id)
	v, err := scanVote(row)
	if err != nil {
		return nil, notFound(err)
	}
	return v, nil
}

// GetVoteFor retrieves the vote a profile cast on a book.
func (s *Store) GetVoteFor(ctx context.Context, profileID, bookID string) (*domain.Vote, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+voteColumns+` FROM votes WHERE profile_id = ? AND book_id = ?`, profileID, bookID)
	v, err := scanVote(row)
	if err != nil {
		return nil, notFound(err)
	}
	return v, nil
}

// UpsertVote inserts the vote, or updates the value of the existing vote for
// the same (profile, book). The stored row is returned; on update it keeps
// its original ID and date.
func (s *Store) UpsertVote(ctx context.Context, v *domain.Vote) (*domain.Vote, error) {
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO votes (`+voteColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (profile_id, book_id) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at
		RETURNING `+voteColumns,
		v.ID,
		v.ProfileID,
		v.BookID,
		v.Value,
		formatDate(v.Date),
		formatTime(v.CreatedAt),
		formatTime(v.UpdatedAt),
	)
	stored, err := scanVote(row)
	if err != nil {
		return nil, mapConstraintError(err)
	}
	return stored, nil
}

// DeleteVote removes a vote.
func (s *Store) DeleteVote(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM votes WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return expectOneRow(res)
}

// ListVotes returns a page of votes, newest first.
func (s *Store) ListVotes(ctx context.Context, filter store.VoteFilter, page store.PageParams) (*store.Page[*domain.Vote], error) {
	page.Normalize()

	var (
		clauses []string
		args    []any
	)
	if filter.ProfileID != "" {
		clauses = append(clauses, "profile_id = ?")
		args = append(args, filter.ProfileID)
	}
	if filter.BookID != "" {
		clauses = append(clauses, "book_id = ?")
		args = append(args, filter.BookID)
	}
	where := ""
	if len(clauses) > 0 {
		where = " WHERE " + strings.Join(clauses, " AND ")
	}

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM votes`+where, args...).Scan(&total); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+voteColumns+` FROM votes`+where+` ORDER BY created_at DESC, id LIMIT ? OFFSET ?`,
		append(args, page.PerPage, page.Offset())...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	votes := []*domain.Vote{}
	for rows.Next() {
		v, err := scanVote(rows)
		if err != nil {
			return nil, err
		}
		votes = append(votes, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return store.NewPage(votes, page, total), nil
}

type voteStat struct {
	count int
	avg   float64
}

// voteStats aggregates vote count and mean value per book.
func (s *Store) voteStats(ctx context.Context, bookIDs []string) (map[string]voteStat, error) {
	out := make(map[string]voteStat, len(bookIDs))
	if len(bookIDs) == 0 {
		return out, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT book_id, COUNT(*), AVG(value)
		FROM votes
		WHERE book_id IN (`+placeholders(len(bookIDs))+`)
		GROUP BY book_id`,
		stringArgs(bookIDs)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			bookID string
			st     voteStat
			avg    sql.NullFloat64
		)
		if err := rows.Scan(&bookID, &st.count, &avg); err != nil {
			return nil, err
		}
		st.avg = avg.Float64
		out[bookID] = st
	}
	return out, rows.Err()
}
