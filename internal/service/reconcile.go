package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/mybooks/mybooks-server/internal/domain"
	domainerrors "github.com/mybooks/mybooks-server/internal/errors"
	"github.com/mybooks/mybooks-server/internal/id"
	"github.com/mybooks/mybooks-server/internal/metrics"
	"github.com/mybooks/mybooks-server/internal/store"
	"golang.org/x/text/unicode/norm"
)

// BookNames are the free-text relation fields of a book form. Authors and
// Categories are comma-separated; Publisher is a single name. A nil field
// leaves that relation as it is.
type BookNames struct {
	Authors    *string
	Categories *string
	Publisher  *string
}

// NormalizeName trims a name and converts it to NFC, so the same name typed
// with composed or decomposed accents reconciles to one row. Matching after
// normalization is exact and case-sensitive.
func NormalizeName(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

// SplitNames splits a comma-separated list into normalized names. Empty
// entries are dropped and repeats collapse to their first occurrence.
func SplitNames(raw string) []string {
	parts := strings.Split(raw, ",")
	names := make([]string, 0, len(parts))
	seen := make(map[string]struct{}, len(parts))
	for _, p := range parts {
		name := NormalizeName(p)
		if name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	return names
}

// ValidateNames checks name lengths before anything is written.
func ValidateNames(names BookNames) error {
	details := map[string]string{}
	check := func(field string, list []string) {
		for _, n := range list {
			if utf8.RuneCountInString(n) > domain.MaxNameLength {
				details[field] = fmt.Sprintf("%q must not exceed %d characters", n, domain.MaxNameLength)
				return
			}
		}
	}
	if names.Authors != nil {
		check("authors", SplitNames(*names.Authors))
	}
	if names.Categories != nil {
		check("categories", SplitNames(*names.Categories))
	}
	if names.Publisher != nil {
		if p := NormalizeName(*names.Publisher); p != "" {
			check("publisher", []string{p})
		}
	}
	if len(details) > 0 {
		return domainerrors.ValidationWithDetails("validation failed", details)
	}
	return nil
}

// Reconciler resolves free-text names to catalog entities, creating the
// missing ones, and attaches them to books.
type Reconciler struct {
	store  store.Store
	logger *slog.Logger
}

// NewReconciler creates a reconciler.
func NewReconciler(store store.Store, logger *slog.Logger) *Reconciler {
	return &Reconciler{store: store, logger: logger}
}

// Resolve returns one entity per name, in order, reusing exact matches and
// creating the rest stamped with the actor's profile and today's date.
func (r *Reconciler) Resolve(ctx context.Context, actor *domain.Actor, kind domain.Kind, names []string) ([]*domain.CatalogEntity, error) {
	entities := make([]*domain.CatalogEntity, 0, len(names))
	for _, name := range names {
		e, err := r.resolveOne(ctx, actor, kind, name)
		if err != nil {
			return nil, err
		}
		entities = append(entities, e)
	}
	return entities, nil
}

func (r *Reconciler) resolveOne(ctx context.Context, actor *domain.Actor, kind domain.Kind, name string) (*domain.CatalogEntity, error) {
	entityID, err := id.Generate(string(kind))
	if err != nil {
		return nil, err
	}

	template := &domain.CatalogEntity{
		ID:        entityID,
		Kind:      kind,
		Name:      name,
		AddedDate: today(),
	}
	if actor != nil {
		template.AddedBy = domain.SomeID(actor.ProfileID)
	}

	e, created, err := r.store.FindOrCreateCatalogEntity(ctx, template)
	if err != nil {
		return nil, fmt.Errorf("reconcile %s %q: %w", kind, name, err)
	}

	if created {
		metrics.RecordCatalogCreated(string(kind), "reconcile")
		r.logger.Info("catalog entity created from book form",
			"kind", kind,
			"id", e.ID,
			"name", e.Name,
		)
	} else {
		metrics.RecordCatalogReused(string(kind))
	}
	return e, nil
}

// Apply replaces the book's authors, categories and publisher with the
// entities named in names. Empty fields clear the relation and nil fields
// are skipped. Applying the same names twice creates nothing new and
// leaves the same associations.
func (r *Reconciler) Apply(ctx context.Context, actor *domain.Actor, bookID string, names BookNames) error {
	for _, rel := range []struct {
		kind domain.Kind
		raw  *string
	}{
		{domain.KindAuthor, names.Authors},
		{domain.KindCategory, names.Categories},
	} {
		if rel.raw == nil {
			continue
		}
		entities, err := r.Resolve(ctx, actor, rel.kind, SplitNames(*rel.raw))
		if err != nil {
			return err
		}
		if err := r.store.SetBookCatalog(ctx, bookID, rel.kind, domain.IDs(entities)); err != nil {
			return fmt.Errorf("set book %s: %w", rel.kind.Plural(), err)
		}
	}

	if names.Publisher == nil {
		return nil
	}
	publisherID := domain.NoID()
	if name := NormalizeName(*names.Publisher); name != "" {
		pub, err := r.resolveOne(ctx, actor, domain.KindPublisher, name)
		if err != nil {
			return err
		}
		publisherID = domain.SomeID(pub.ID)
	}
	if err := r.store.SetBookPublisher(ctx, bookID, publisherID); err != nil {
		return fmt.Errorf("set book publisher: %w", err)
	}

	return nil
}
