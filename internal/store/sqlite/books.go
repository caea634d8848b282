package sqlite

import (
	"context"
	"database/sql"
	"strings"

	"github.com/mybooks/mybooks-server/internal/domain"
	"github.com/mybooks/mybooks-server/internal/store"
)

// bookColumns is the ordered list of columns selected in book queries.
// Must match the scan order in scanBook. Queries alias books as b.
const bookColumns = `b.id, b.title, b.year, b.rank, b.thumbnail, b.description, b.isbn,
	b.publisher_id, b.added_by, b.added_date, b.created_at, b.updated_at`

// scanBook scans a row into a domain.Book without its relations.
func scanBook(scanner interface{ Scan(dest ...any) error }) (*domain.Book, error) {
	var b domain.Book

	var (
		year      sql.NullInt64
		rank      sql.NullFloat64
		addedDate string
		createdAt string
		updatedAt string
	)

	err := scanner.Scan(
		&b.ID,
		&b.Title,
		&year,
		&rank,
		&b.Thumbnail,
		&b.Description,
		&b.ISBN,
		&b.PublisherID,
		&b.AddedBy,
		&addedDate,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	if year.Valid {
		y := int(year.Int64)
		b.Year = &y
	}
	if rank.Valid {
		r := rank.Float64
		b.Rank = &r
	}

	if b.AddedDate, err = parseDate(addedDate); err != nil {
		return nil, err
	}
	if b.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if b.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}

	b.Authors = []*domain.CatalogEntity{}
	b.Categories = []*domain.CatalogEntity{}

	return &b, nil
}

func nullYear(y *int) sql.NullInt64 {
	if y == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*y), Valid: true}
}

func nullRank(r *float64) sql.NullFloat64 {
	if r == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *r, Valid: true}
}

// queryBooks runs a query selecting bookColumns and hydrates the results.
func (s *Store) queryBooks(ctx context.Context, query string, args ...any) ([]*domain.Book, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	books := []*domain.Book{}
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, err
		}
		books = append(books, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := s.hydrateBooks(ctx, books); err != nil {
		return nil, err
	}
	return books, nil
}

// hydrateBooks fills authors, categories, publisher and vote stats with one
// query per relation for the whole batch.
func (s *Store) hydrateBooks(ctx context.Context, books []*domain.Book) error {
	if len(books) == 0 {
		return nil
	}

	ids := make([]string, 0, len(books))
	var publisherIDs []string
	for _, b := range books {
		ids = append(ids, b.ID)
		if pid, ok := b.PublisherID.Get(); ok {
			publisherIDs = append(publisherIDs, pid)
		}
	}

	authors, err := s.loadCatalogForBooks(ctx, domain.KindAuthor, ids)
	if err != nil {
		return err
	}
	categories, err := s.loadCatalogForBooks(ctx, domain.KindCategory, ids)
	if err != nil {
		return err
	}
	publishers, err := s.loadPublishers(ctx, publisherIDs)
	if err != nil {
		return err
	}

	stats, err := s.voteStats(ctx, ids)
	if err != nil {
		return err
	}

	for _, b := range books {
		if a := authors[b.ID]; a != nil {
			b.Authors = a
		}
		if c := categories[b.ID]; c != nil {
			b.Categories = c
		}
		if pid, ok := b.PublisherID.Get(); ok {
			b.Publisher = publishers[pid]
		}
		if st, ok := stats[b.ID]; ok {
			b.VoteCount = st.count
			avg := st.avg
			b.AverageVote = &avg
		}
	}
	return nil
}

// CreateBook inserts a book row. Associations are set separately.
func (s *Store) CreateBook(ctx context.Context, b *domain.Book) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO books (id, title, year, rank, thumbnail, description, isbn,
			publisher_id, added_by, added_date, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		b.ID,
		b.Title,
		nullYear(b.Year),
		nullRank(b.Rank),
		b.Thumbnail,
		b.Description,
		b.ISBN,
		b.PublisherID,
		b.AddedBy,
		formatDate(b.AddedDate),
		formatTime(b.CreatedAt),
		formatTime(b.UpdatedAt),
	)
	return mapConstraintError(err)
}

// GetBook retrieves a book with its authors, categories, publisher and vote stats.
func (s *Store) GetBook(ctx context.Context, id string) (*domain.Book, error) {
	books, err := s.queryBooks(ctx, `SELECT `+bookColumns+` FROM books b WHERE b.id = ?`, id)
	if err != nil {
		return nil, err
	}
	if len(books) == 0 {
		return nil, store.ErrNotFound
	}
	return books[0], nil
}

// UpdateBook saves the book's scalar fields. The creator and added date never change.
func (s *Store) UpdateBook(ctx context.Context, b *domain.Book) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE books SET
			title = ?, year = ?, rank = ?, thumbnail = ?, description = ?, isbn = ?, updated_at = ?
		WHERE id = ?`,
		b.Title,
		nullYear(b.Year),
		nullRank(b.Rank),
		b.Thumbnail,
		b.Description,
		b.ISBN,
		formatTime(b.UpdatedAt),
		b.ID,
	)
	if err != nil {
		return mapConstraintError(err)
	}
	return expectOneRow(res)
}

// DeleteBook removes a book. Its authors, categories and publisher survive;
// join rows, votes and ownership rows are cascaded.
func (s *Store) DeleteBook(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM books WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return expectOneRow(res)
}

// bookWhere translates a filter into a WHERE clause over books b.
func bookWhere(f store.BookFilter) (string, []any) {
	var (
		clauses []string
		args    []any
	)
	add := func(clause, value string) {
		if value == "" {
			return
		}
		clauses = append(clauses, clause)
		args = append(args, likePattern(value))
	}

	add(`b.title LIKE ? ESCAPE '\'`, f.Title)
	add(`CAST(b.year AS TEXT) LIKE ? ESCAPE '\'`, f.Year)
	add(`b.isbn LIKE ? ESCAPE '\'`, f.ISBN)
	add(`b.description LIKE ? ESCAPE '\'`, f.Description)
	add(`b.thumbnail LIKE ? ESCAPE '\'`, f.Thumbnail)
	add(`EXISTS (SELECT 1 FROM book_authors ba JOIN authors a ON a.id = ba.author_id
		WHERE ba.book_id = b.id AND a.name LIKE ? ESCAPE '\')`, f.Author)
	add(`EXISTS (SELECT 1 FROM book_categories bc JOIN categories c ON c.id = bc.category_id
		WHERE bc.book_id = b.id AND c.name LIKE ? ESCAPE '\')`, f.Category)
	add(`EXISTS (SELECT 1 FROM publishers p WHERE p.id = b.publisher_id AND p.name LIKE ? ESCAPE '\')`, f.Publisher)

	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

// ListBooks returns a page of books matching the filter, ordered by title.
func (s *Store) ListBooks(ctx context.Context, filter store.BookFilter, page store.PageParams) (*store.Page[*domain.Book], error) {
	page.Normalize()
	where, args := bookWhere(filter)

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM books b`+where, args...).Scan(&total); err != nil {
		return nil, err
	}

	books, err := s.queryBooks(ctx,
		`SELECT `+bookColumns+` FROM books b`+where+` ORDER BY b.title, b.id LIMIT ? OFFSET ?`,
		append(args, page.PerPage, page.Offset())...)
	if err != nil {
		return nil, err
	}

	return store.NewPage(books, page, total), nil
}

// ListAllBooks returns every book, for rebuilding the search index.
func (s *Store) ListAllBooks(ctx context.Context) ([]*domain.Book, error) {
	return s.queryBooks(ctx, `SELECT `+bookColumns+` FROM books b ORDER BY b.title, b.id`)
}

// CountBooks returns the number of books.
func (s *Store) CountBooks(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM books`).Scan(&n)
	return n, err
}
