package web

import (
	"encoding/base64"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mybooks/mybooks-server/internal/auth"
	"github.com/mybooks/mybooks-server/internal/domain"
	"github.com/mybooks/mybooks-server/internal/metrics"
	"github.com/mybooks/mybooks-server/internal/ratelimit"
)

const (
	sessionCookie = "mybooks_session"
	flashCookie   = "mybooks_flash"
)

// flash is a one-shot message shown on the next rendered page.
type flash struct {
	Level   string // success, warning or error
	Message string
}

// loadSession resolves the session cookie to an actor. Invalid or expired
// sessions are cleared and the request continues anonymously.
func (s *Server) loadSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := r.Cookie(sessionCookie)
		if err != nil || c.Value == "" {
			next.ServeHTTP(w, r)
			return
		}

		actor, err := s.services.Auth.Authenticate(r.Context(), c.Value, auth.TokenKindSession)
		if err != nil {
			s.logger.Debug("dropping invalid session", "error", err)
			s.clearCookie(w, sessionCookie)
			next.ServeHTTP(w, r)
			return
		}
		next.ServeHTTP(w, r.WithContext(domain.WithActor(r.Context(), actor)))
	})
}

// throttle rejects login and registration floods per client IP.
func (s *Server) throttle(next http.Handler) http.Handler {
	if s.opts.LoginLimiter == nil {
		return next
	}
	return ratelimit.Middleware(s.opts.LoginLimiter, func(w http.ResponseWriter, r *http.Request) {
		metrics.RateLimitRejections.WithLabelValues(r.URL.Path).Inc()
		s.logger.Warn("rate limit exceeded", "ip", ratelimit.ClientIP(r), "path", r.URL.Path)
		v := s.newView(r, "Log in")
		v.Flash = &flash{Level: "error", Message: "Too many attempts. Please try again later."}
		s.render(w, r, http.StatusTooManyRequests, "login", v)
	})(next)
}

func (s *Server) setSession(w http.ResponseWriter, token string, expires time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   s.opts.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *Server) clearCookie(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.opts.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

// setFlash stores a message for the next page view.
func (s *Server) setFlash(w http.ResponseWriter, level, message string) {
	value := base64.RawURLEncoding.EncodeToString([]byte(level + "|" + message))
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookie,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.opts.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

// popFlash reads and clears the pending flash message, if any.
func (s *Server) popFlash(w http.ResponseWriter, r *http.Request) *flash {
	c, err := r.Cookie(flashCookie)
	if err != nil || c.Value == "" {
		return nil
	}
	s.clearCookie(w, flashCookie)

	raw, err := base64.RawURLEncoding.DecodeString(c.Value)
	if err != nil {
		return nil
	}
	level, message, ok := strings.Cut(string(raw), "|")
	if !ok || message == "" {
		return nil
	}
	return &flash{Level: level, Message: message}
}

// requireLogin redirects anonymous visitors to the login page and reports
// whether the caller may continue.
func requireLogin(w http.ResponseWriter, r *http.Request) bool {
	if domain.ActorFrom(r.Context()) != nil {
		return true
	}
	redirect(w, r, loginURL(r))
	return false
}

func loginURL(r *http.Request) string {
	next := r.URL.RequestURI()
	// A failed POST returns the visitor to the form, not the action.
	if r.Method != http.MethodGet {
		if u, err := url.Parse(r.Referer()); err == nil && u.Path != "" {
			next = u.RequestURI()
		}
	}
	return "/login/?next=" + url.QueryEscape(next)
}

// safeNext keeps post-login redirects on this site.
func safeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "/book/list/"
	}
	return next
}
