package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mybooks/mybooks-server/internal/domain"
	"github.com/mybooks/mybooks-server/internal/store"
)

// catalogTable describes where a catalog kind lives. Publishers have no
// join table: books reference them through books.publisher_id.
type catalogTable struct {
	table      string
	joinTable  string
	joinColumn string
}

var catalogTables = map[domain.Kind]catalogTable{
	domain.KindAuthor:    {table: "authors", joinTable: "book_authors", joinColumn: "author_id"},
	domain.KindCategory:  {table: "categories", joinTable: "book_categories", joinColumn: "category_id"},
	domain.KindPublisher: {table: "publishers"},
}

func tableFor(kind domain.Kind) (catalogTable, error) {
	t, ok := catalogTables[kind]
	if !ok {
		return catalogTable{}, fmt.Errorf("unknown catalog kind %q: %w", kind, store.ErrInvalidInput)
	}
	return t, nil
}

// catalogColumns is the ordered list of columns selected in catalog queries.
// Must match the scan order in scanCatalogEntity.
const catalogColumns = `c.id, c.name, c.added_by, c.added_date`

// scanCatalogEntity scans a row into a domain.CatalogEntity of the given kind.
func scanCatalogEntity(kind domain.Kind, scanner interface{ Scan(dest ...any) error }) (*domain.CatalogEntity, error) {
	e := domain.CatalogEntity{Kind: kind}

	var addedDate string
	if err := scanner.Scan(&e.ID, &e.Name, &e.AddedBy, &addedDate); err != nil {
		return nil, err
	}

	var err error
	if e.AddedDate, err = parseDate(addedDate); err != nil {
		return nil, err
	}
	return &e, nil
}

func scanCatalogEntities(kind domain.Kind, rows *sql.Rows) ([]*domain.CatalogEntity, error) {
	defer rows.Close()

	entities := []*domain.CatalogEntity{}
	for rows.Next() {
		e, err := scanCatalogEntity(kind, rows)
		if err != nil {
			return nil, err
		}
		entities = append(entities, e)
	}
	return entities, rows.Err()
}

// CreateCatalogEntity inserts an author, category or publisher.
// Returns store.ErrAlreadyExists on a duplicate name.
func (s *Store) CreateCatalogEntity(ctx context.Context, e *domain.CatalogEntity) error {
	t, err := tableFor(e.Kind)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO `+t.table+` (id, name, added_by, added_date) VALUES (?, ?, ?, ?)`,
		e.ID, e.Name, e.AddedBy, formatDate(e.AddedDate))
	return mapConstraintError(err)
}

// GetCatalogEntity retrieves an entity by ID.
func (s *Store) GetCatalogEntity(ctx context.Context, kind domain.Kind, id string) (*domain.CatalogEntity, error) {
	t, err := tableFor(kind)
	if err != nil {
		return nil, err
	}
	row := s.db.QueryRowContext(ctx, `SELECT `+catalogColumns+` FROM `+t.table+` c WHERE c.id = ?`, id)
	e, err := scanCatalogEntity(kind, row)
	if err != nil {
		return nil, notFound(err)
	}
	return e, nil
}

// GetCatalogEntityByName retrieves an entity by exact, case-sensitive name.
func (s *Store) GetCatalogEntityByName(ctx context.Context, kind domain.Kind, name string) (*domain.CatalogEntity, error) {
	t, err := tableFor(kind)
	if err != nil {
		return nil, err
	}
	row := s.db.QueryRowContext(ctx, `SELECT `+catalogColumns+` FROM `+t.table+` c WHERE c.name = ?`, name)
	e, err := scanCatalogEntity(kind, row)
	if err != nil {
		return nil, notFound(err)
	}
	return e, nil
}

// FindOrCreateCatalogEntity looks the template's name up and inserts the
// template when it is missing. A concurrent insert of the same name surfaces
// as a UNIQUE violation, after which the winner's row is returned.
func (s *Store) FindOrCreateCatalogEntity(ctx context.Context, template *domain.CatalogEntity) (*domain.CatalogEntity, bool, error) {
	existing, err := s.GetCatalogEntityByName(ctx, template.Kind, template.Name)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, false, err
	}

	if err := s.CreateCatalogEntity(ctx, template); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			existing, err := s.GetCatalogEntityByName(ctx, template.Kind, template.Name)
			if err != nil {
				return nil, false, err
			}
			return existing, false, nil
		}
		return nil, false, err
	}

	return template, true, nil
}

// UpdateCatalogEntity renames an entity.
func (s *Store) UpdateCatalogEntity(ctx context.Context, e *domain.CatalogEntity) error {
	t, err := tableFor(e.Kind)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `UPDATE `+t.table+` SET name = ? WHERE id = ?`, e.Name, e.ID)
	if err != nil {
		return mapConstraintError(err)
	}
	return expectOneRow(res)
}

// DeleteCatalogEntity removes an entity. Books keep existing: join rows are
// cascaded away and books.publisher_id is set to NULL.
func (s *Store) DeleteCatalogEntity(ctx context.Context, kind domain.Kind, id string) error {
	t, err := tableFor(kind)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM `+t.table+` WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return expectOneRow(res)
}

// ListCatalogEntities returns a page of entities ordered by name.
func (s *Store) ListCatalogEntities(ctx context.Context, kind domain.Kind, filter store.NameFilter, page store.PageParams) (*store.Page[*domain.CatalogEntity], error) {
	t, err := tableFor(kind)
	if err != nil {
		return nil, err
	}
	page.Normalize()

	where := ""
	var args []any
	if filter.Name != "" {
		where = ` WHERE c.name LIKE ? ESCAPE '\'`
		args = append(args, likePattern(filter.Name))
	}

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM `+t.table+` c`+where, args...).Scan(&total); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+catalogColumns+` FROM `+t.table+` c`+where+` ORDER BY c.name, c.id LIMIT ? OFFSET ?`,
		append(args, page.PerPage, page.Offset())...)
	if err != nil {
		return nil, err
	}
	entities, err := scanCatalogEntities(kind, rows)
	if err != nil {
		return nil, err
	}

	return store.NewPage(entities, page, total), nil
}

// ListBooksForCatalogEntity returns the books attached to an entity, ordered by title.
func (s *Store) ListBooksForCatalogEntity(ctx context.Context, kind domain.Kind, id string) ([]*domain.Book, error) {
	t, err := tableFor(kind)
	if err != nil {
		return nil, err
	}
	if t.joinTable == "" {
		return s.queryBooks(ctx,
			`SELECT `+bookColumns+` FROM books b WHERE b.publisher_id = ? ORDER BY b.title, b.id`, id)
	}
	return s.queryBooks(ctx, `
		SELECT `+bookColumns+`
		FROM `+t.joinTable+` j
		JOIN books b ON b.id = j.book_id
		WHERE j.`+t.joinColumn+` = ?
		ORDER BY b.title, b.id`, id)
}

// SetBookCatalog replaces all authors or categories of a book in a single
// transaction, preserving the given order.
func (s *Store) SetBookCatalog(ctx context.Context, bookID string, kind domain.Kind, entityIDs []string) error {
	t, err := tableFor(kind)
	if err != nil {
		return err
	}
	if t.joinTable == "" {
		return fmt.Errorf("%s is not a many-to-many kind: %w", kind, store.ErrInvalidInput)
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+t.joinTable+` WHERE book_id = ?`, bookID); err != nil {
			return fmt.Errorf("delete %s: %w", t.joinTable, err)
		}

		for pos, entityID := range entityIDs {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO `+t.joinTable+` (book_id, `+t.joinColumn+`, position) VALUES (?, ?, ?)
				ON CONFLICT DO NOTHING`,
				bookID, entityID, pos)
			if err != nil {
				return fmt.Errorf("insert %s: %w", t.joinTable, mapConstraintError(err))
			}
		}
		return nil
	})
}

// SetBookPublisher points the book at a publisher, or clears it.
func (s *Store) SetBookPublisher(ctx context.Context, bookID string, publisherID domain.OptionalID) error {
	res, err := s.db.ExecContext(ctx, `UPDATE books SET publisher_id = ? WHERE id = ?`, publisherID, bookID)
	if err != nil {
		return mapConstraintError(err)
	}
	return expectOneRow(res)
}

// loadCatalogForBooks returns the authors or categories of each book, keyed by book ID.
func (s *Store) loadCatalogForBooks(ctx context.Context, kind domain.Kind, bookIDs []string) (map[string][]*domain.CatalogEntity, error) {
	t, err := tableFor(kind)
	if err != nil {
		return nil, err
	}
	out := make(map[string][]*domain.CatalogEntity, len(bookIDs))
	if len(bookIDs) == 0 || t.joinTable == "" {
		return out, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT j.book_id, `+catalogColumns+`
		FROM `+t.joinTable+` j
		JOIN `+t.table+` c ON c.id = j.`+t.joinColumn+`
		WHERE j.book_id IN (`+placeholders(len(bookIDs))+`)
		ORDER BY j.book_id, j.position, c.name`,
		stringArgs(bookIDs)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			bookID    string
			e         = domain.CatalogEntity{Kind: kind}
			addedDate string
		)
		if err := rows.Scan(&bookID, &e.ID, &e.Name, &e.AddedBy, &addedDate); err != nil {
			return nil, err
		}
		if e.AddedDate, err = parseDate(addedDate); err != nil {
			return nil, err
		}
		out[bookID] = append(out[bookID], &e)
	}
	return out, rows.Err()
}

// loadPublishers returns publishers keyed by ID.
func (s *Store) loadPublishers(ctx context.Context, ids []string) (map[string]*domain.CatalogEntity, error) {
	out := make(map[string]*domain.CatalogEntity, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+catalogColumns+` FROM publishers c WHERE c.id IN (`+placeholders(len(ids))+`)`,
		stringArgs(ids)...)
	if err != nil {
		return nil, err
	}
	publishers, err := scanCatalogEntities(domain.KindPublisher, rows)
	if err != nil {
		return nil, err
	}
	for _, p := range publishers {
		out[p.ID] = p
	}
	return out, nil
}
