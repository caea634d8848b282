// Package service implements the catalog's use cases on top of the store:
// name reconciliation, the modification policy, votes, the social graph,
// authentication and the Google Books finder.
package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/mybooks/mybooks-server/internal/domain"
	domainerrors "github.com/mybooks/mybooks-server/internal/errors"
	"github.com/mybooks/mybooks-server/internal/metrics"
	"github.com/mybooks/mybooks-server/internal/store"
)

// now is replaced in tests that need a fixed date.
var now = time.Now

// today returns the current calendar date.
func today() time.Time {
	return domain.DateOf(now())
}

// requireActor rejects anonymous callers.
func requireActor(actor *domain.Actor) error {
	if actor == nil {
		return domainerrors.Unauthorized("authentication required")
	}
	return nil
}

// checkModify applies the modification policy and returns a forbidden error
// carrying msg when it denies.
func checkModify(actor *domain.Actor, creator domain.OptionalID, resource, msg string) error {
	if err := requireActor(actor); err != nil {
		return err
	}
	if !domain.CanModify(actor, creator).Allowed() {
		metrics.RecordPermissionDenied(resource)
		return domainerrors.Forbidden(msg)
	}
	return nil
}

// translate maps store sentinels to domain errors. what names the resource
// in not-found messages.
func translate(err error, what string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrNotFound):
		return domainerrors.NotFoundf("%s not found", what)
	case errors.Is(err, store.ErrAlreadyExists):
		return domainerrors.AlreadyExists(what + " already exists")
	case errors.Is(err, store.ErrInvalidReference):
		return domainerrors.Validation("referenced resource does not exist")
	case errors.Is(err, store.ErrInvalidInput):
		return domainerrors.Validation("invalid input")
	default:
		return fmt.Errorf("%s: %w", what, err)
	}
}

func isNotFound(err error) bool {
	return errors.Is(err, store.ErrNotFound)
}
