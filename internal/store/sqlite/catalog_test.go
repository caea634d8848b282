package sqlite

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/mybooks/mybooks-server/internal/domain"
	"github.com/mybooks/mybooks-server/internal/store"
)

func TestCreateAndGetCatalogEntity(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	_, p := makeTestUser(t, s, "alice")

	for _, kind := range domain.Kinds {
		t.Run(string(kind), func(t *testing.T) {
			e := makeTestEntity(t, s, kind, string(kind)+"-1", "Name "+string(kind), domain.SomeID(p.ID))

			got, err := s.GetCatalogEntity(ctx, kind, e.ID)
			if err != nil {
				t.Fatalf("GetCatalogEntity: %v", err)
			}
			if got.Name != e.Name || got.Kind != kind {
				t.Errorf("got %+v, want name %q kind %q", got, e.Name, kind)
			}
			if !got.AddedBy.Is(p.ID) {
				t.Errorf("AddedBy: got %v, want %s", got.AddedBy, p.ID)
			}
			if !got.AddedDate.Equal(e.AddedDate) {
				t.Errorf("AddedDate: got %v, want %v", got.AddedDate, e.AddedDate)
			}
		})
	}
}

func TestCreateCatalogEntity_DuplicateName(t *testing.T) {
	s := newTestStore(t)
	makeTestEntity(t, s, domain.KindAuthor, "author-1", "Tolkien", domain.NoID())

	dup := &domain.CatalogEntity{ID: "author-2", Kind: domain.KindAuthor, Name: "Tolkien", AddedDate: time.Now()}
	err := s.CreateCatalogEntity(context.Background(), dup)
	if !errors.Is(err, store.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}

	// Names are unique per kind, not across kinds.
	makeTestEntity(t, s, domain.KindCategory, "category-1", "Tolkien", domain.NoID())
}

func TestGetCatalogEntityByName_CaseSensitive(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	makeTestEntity(t, s, domain.KindCategory, "category-1", "fantasy", domain.NoID())

	if _, err := s.GetCatalogEntityByName(ctx, domain.KindCategory, "fantasy"); err != nil {
		t.Fatalf("exact match: %v", err)
	}
	if _, err := s.GetCatalogEntityByName(ctx, domain.KindCategory, "Fantasy"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for different case, got %v", err)
	}
}

func TestFindOrCreateCatalogEntity(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	template := &domain.CatalogEntity{ID: "author-1", Kind: domain.KindAuthor, Name: "Le Guin", AddedDate: time.Now()}
	first, created, err := s.FindOrCreateCatalogEntity(ctx, template)
	if err != nil {
		t.Fatalf("first FindOrCreate: %v", err)
	}
	if !created {
		t.Error("expected created=true on first call")
	}

	again := &domain.CatalogEntity{ID: "author-2", Kind: domain.KindAuthor, Name: "Le Guin", AddedDate: time.Now()}
	second, created, err := s.FindOrCreateCatalogEntity(ctx, again)
	if err != nil {
		t.Fatalf("second FindOrCreate: %v", err)
	}
	if created {
		t.Error("expected created=false on second call")
	}
	if second.ID != first.ID {
		t.Errorf("expected reuse of %s, got %s", first.ID, second.ID)
	}
}

func TestFindOrCreateCatalogEntity_Concurrent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	const workers = 8
	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		ids = map[string]bool{}
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tmpl := &domain.CatalogEntity{
				ID:        "category-" + string(rune('a'+i)),
				Kind:      domain.KindCategory,
				Name:      "sci-fi",
				AddedDate: time.Now(),
			}
			e, _, err := s.FindOrCreateCatalogEntity(ctx, tmpl)
			if err != nil {
				t.Errorf("worker %d: %v", i, err)
				return
			}
			mu.Lock()
			ids[e.ID] = true
			mu.Unlock()
		}(i)
	}
	wg.Wait()

	if len(ids) != 1 {
		t.Errorf("expected every worker to see one row, got %v", ids)
	}
}

func TestDeleteCatalogEntity_BooksSurvive(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	book := makeTestBook(t, s, "book-1", "Hobbit", domain.NoID())
	author := makeTestEntity(t, s, domain.KindAuthor, "author-1", "Tolkien", domain.NoID())
	publisher := makeTestEntity(t, s, domain.KindPublisher, "publisher-1", "Pub Inc.", domain.NoID())

	if err := s.SetBookCatalog(ctx, book.ID, domain.KindAuthor, []string{author.ID}); err != nil {
		t.Fatalf("SetBookCatalog: %v", err)
	}
	if err := s.SetBookPublisher(ctx, book.ID, domain.SomeID(publisher.ID)); err != nil {
		t.Fatalf("SetBookPublisher: %v", err)
	}

	if err := s.DeleteCatalogEntity(ctx, domain.KindAuthor, author.ID); err != nil {
		t.Fatalf("delete author: %v", err)
	}
	if err := s.DeleteCatalogEntity(ctx, domain.KindPublisher, publisher.ID); err != nil {
		t.Fatalf("delete publisher: %v", err)
	}

	got, err := s.GetBook(ctx, book.ID)
	if err != nil {
		t.Fatalf("book should survive: %v", err)
	}
	if len(got.Authors) != 0 {
		t.Errorf("expected no authors, got %d", len(got.Authors))
	}
	if got.PublisherID.IsSet() || got.Publisher != nil {
		t.Errorf("expected publisher cleared, got %v", got.PublisherID)
	}
}

func TestDeleteCatalogEntity_NotFound(t *testing.T) {
	s := newTestStore(t)
	err := s.DeleteCatalogEntity(context.Background(), domain.KindAuthor, "author-missing")
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListCatalogEntities_FilterAndPaging(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	names := []string{"Asimov", "Banks", "Bradbury", "Butler", "Clarke"}
	for i, n := range names {
		makeTestEntity(t, s, domain.KindAuthor, "author-"+string(rune('a'+i)), n, domain.NoID())
	}

	page, err := s.ListCatalogEntities(ctx, domain.KindAuthor, store.NameFilter{Name: "b"}, store.PageParams{Page: 1, PerPage: 2})
	if err != nil {
		t.Fatalf("ListCatalogEntities: %v", err)
	}
	// Case-insensitive substring: Banks, Bradbury, Butler.
	if page.Total != 3 {
		t.Errorf("Total: got %d, want 3", page.Total)
	}
	if len(page.Items) != 2 || page.Items[0].Name != "Banks" || page.Items[1].Name != "Bradbury" {
		t.Errorf("unexpected first page: %v", domain.Names(page.Items))
	}
	if !page.HasNext() {
		t.Error("expected a second page")
	}

	page2, err := s.ListCatalogEntities(ctx, domain.KindAuthor, store.NameFilter{Name: "b"}, store.PageParams{Page: 2, PerPage: 2})
	if err != nil {
		t.Fatalf("page 2: %v", err)
	}
	if len(page2.Items) != 1 || page2.Items[0].Name != "Butler" {
		t.Errorf("unexpected second page: %v", domain.Names(page2.Items))
	}
}

func TestListBooksForCatalogEntity(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	b1 := makeTestBook(t, s, "book-1", "The Two Towers", domain.NoID())
	b2 := makeTestBook(t, s, "book-2", "Hobbit", domain.NoID())
	makeTestBook(t, s, "book-3", "Dune", domain.NoID())
	cat := makeTestEntity(t, s, domain.KindCategory, "category-1", "fantasy", domain.NoID())
	pub := makeTestEntity(t, s, domain.KindPublisher, "publisher-1", "Allen & Unwin", domain.NoID())

	for _, b := range []*domain.Book{b1, b2} {
		if err := s.SetBookCatalog(ctx, b.ID, domain.KindCategory, []string{cat.ID}); err != nil {
			t.Fatal(err)
		}
		if err := s.SetBookPublisher(ctx, b.ID, domain.SomeID(pub.ID)); err != nil {
			t.Fatal(err)
		}
	}

	for _, tc := range []struct {
		kind domain.Kind
		id   string
	}{{domain.KindCategory, cat.ID}, {domain.KindPublisher, pub.ID}} {
		books, err := s.ListBooksForCatalogEntity(ctx, tc.kind, tc.id)
		if err != nil {
			t.Fatalf("%s: %v", tc.kind, err)
		}
		if len(books) != 2 || books[0].Title != "Hobbit" || books[1].Title != "The Two Towers" {
			t.Errorf("%s: unexpected books %v", tc.kind, books)
		}
	}
}

func TestSetBookCatalog_Replaces(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	book := makeTestBook(t, s, "book-1", "Good Omens", domain.NoID())
	a1 := makeTestEntity(t, s, domain.KindAuthor, "author-1", "Pratchett", domain.NoID())
	a2 := makeTestEntity(t, s, domain.KindAuthor, "author-2", "Gaiman", domain.NoID())
	a3 := makeTestEntity(t, s, domain.KindAuthor, "author-3", "Adams", domain.NoID())

	if err := s.SetBookCatalog(ctx, book.ID, domain.KindAuthor, []string{a1.ID, a2.ID}); err != nil {
		t.Fatal(err)
	}
	if err := s.SetBookCatalog(ctx, book.ID, domain.KindAuthor, []string{a3.ID, a1.ID}); err != nil {
		t.Fatal(err)
	}

	got, err := s.GetBook(ctx, book.ID)
	if err != nil {
		t.Fatal(err)
	}
	names := domain.Names(got.Authors)
	if len(names) != 2 || names[0] != "Adams" || names[1] != "Pratchett" {
		t.Errorf("expected [Adams Pratchett] in submitted order, got %v", names)
	}

	if err := s.SetBookCatalog(ctx, book.ID, domain.KindAuthor, nil); err != nil {
		t.Fatal(err)
	}
	got, _ = s.GetBook(ctx, book.ID)
	if len(got.Authors) != 0 {
		t.Errorf("expected authors cleared, got %v", domain.Names(got.Authors))
	}
}

func TestSetBookCatalog_RejectsPublisherKind(t *testing.T) {
	s := newTestStore(t)
	book := makeTestBook(t, s, "book-1", "x", domain.NoID())

	err := s.SetBookCatalog(context.Background(), book.ID, domain.KindPublisher, []string{"publisher-1"})
	if !errors.Is(err, store.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestCatalogEntity_CreatorDeletedSetsNull(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u, p := makeTestUser(t, s, "bob")
	e := makeTestEntity(t, s, domain.KindPublisher, "publisher-1", "Tor", domain.SomeID(p.ID))

	if err := s.DeleteUser(ctx, u.ID); err != nil {
		t.Fatalf("DeleteUser: %v", err)
	}

	got, err := s.GetCatalogEntity(ctx, domain.KindPublisher, e.ID)
	if err != nil {
		t.Fatalf("publisher should survive: %v", err)
	}
	if got.AddedBy.IsSet() {
		t.Errorf("expected added_by NULL, got %v", got.AddedBy)
	}
}
