// Package main seeds the catalog with system-owned authors, categories and
// publishers. Seeded entries have no creator, so any signed-in member may
// edit or delete them.
//
// Usage:
//
//	go run ./cmd/seed -categories "fantasy, science fiction, history"
//	go run ./cmd/seed -authors "Jane Austen, J.R.R. Tolkien" -publishers "Penguin"
//
// Names that already exist are left alone. All server flags (-data-path,
// -env-file, ...) are accepted.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"unicode/utf8"

	"github.com/samber/do/v2"

	"github.com/mybooks/mybooks-server/internal/di"
	"github.com/mybooks/mybooks-server/internal/domain"
	"github.com/mybooks/mybooks-server/internal/service"
)

func main() {
	raw := map[domain.Kind]*string{
		domain.KindAuthor:    flag.String("authors", "", "Comma-separated author names"),
		domain.KindCategory:  flag.String("categories", "", "Comma-separated category names"),
		domain.KindPublisher: flag.String("publishers", "", "Comma-separated publisher names"),
	}

	injector := di.NewContainer()
	reconciler, err := do.Invoke[*service.Reconciler](injector)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open database: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	failed := false
	for _, kind := range domain.Kinds {
		names := service.SplitNames(*raw[kind])
		if len(names) == 0 {
			continue
		}
		if long := tooLong(names); long != "" {
			fmt.Fprintf(os.Stderr, "%s: %q must not exceed %d characters\n", kind.Plural(), long, domain.MaxNameLength)
			failed = true
			continue
		}

		// A nil actor leaves the creator unset.
		entities, err := reconciler.Resolve(ctx, nil, kind, names)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", kind.Plural(), err)
			failed = true
			continue
		}
		for _, e := range entities {
			fmt.Printf("%-9s %s (%s)\n", kind, e.Name, e.ID)
		}
	}

	_ = injector.Shutdown()
	if failed {
		os.Exit(1)
	}
}

func tooLong(names []string) string {
	for _, n := range names {
		if utf8.RuneCountInString(n) > domain.MaxNameLength {
			return n
		}
	}
	return ""
}
