package web

import (
	"net/http"

	"github.com/mybooks/mybooks-server/internal/domain"
	domainerrors "github.com/mybooks/mybooks-server/internal/errors"
)

// fail maps a service error onto the page flow. Validation errors call
// rerender with per-field messages; forbidden writes flash the message and
// return to backTo.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error, backTo string, rerender func(errs map[string]string)) {
	var domainErr *domainerrors.Error
	if !domainerrors.As(err, &domainErr) {
		s.logger.Error("request failed", "path", r.URL.Path, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	switch domainErr.Code {
	case domainerrors.CodeUnauthorized, domainerrors.CodeTokenExpired:
		redirect(w, r, loginURL(r))

	case domainerrors.CodeForbidden:
		s.setFlash(w, "error", domainErr.Message)
		if backTo == "" {
			backTo = "/"
		}
		redirect(w, r, backTo)

	case domainerrors.CodeNotFound:
		s.notFound(w, r)

	case domainerrors.CodeValidation, domainerrors.CodeAlreadyExists, domainerrors.CodeConflict:
		errs := domainerrors.FieldErrors(err)
		if len(errs) == 0 {
			errs = map[string]string{"form": domainErr.Message}
		}
		if rerender != nil {
			rerender(errs)
			return
		}
		s.setFlash(w, "error", domainErr.Message)
		redirect(w, r, backTo)

	default:
		s.logger.Error("request failed", "path", r.URL.Path, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

// allowModify turns away callers the modification policy denies before
// they see an edit or delete form: msg is flashed and they return to backTo.
func (s *Server) allowModify(w http.ResponseWriter, r *http.Request, creator domain.OptionalID, msg, backTo string) bool {
	if domain.CanModify(domain.ActorFrom(r.Context()), creator).Allowed() {
		return true
	}
	s.setFlash(w, "error", msg)
	redirect(w, r, backTo)
	return false
}
