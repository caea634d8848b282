package api

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"

	"github.com/mybooks/mybooks-server/internal/auth"
	"github.com/mybooks/mybooks-server/internal/domain"
	"github.com/mybooks/mybooks-server/internal/metrics"
	"github.com/mybooks/mybooks-server/internal/ratelimit"
	"github.com/mybooks/mybooks-server/internal/service"
)

// bearerToken extracts the token from "Bearer <t>" or "Token <t>".
func bearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok {
		return ""
	}
	switch strings.ToLower(scheme) {
	case "bearer", "token":
		return strings.TrimSpace(token)
	default:
		return ""
	}
}

// authMiddleware resolves the Authorization header to an actor stored in
// the request context. Missing or invalid tokens leave the request
// anonymous; services reject anonymous writes.
func authMiddleware(authService *service.AuthService, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r.Header.Get("Authorization"))
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			actor, err := authService.Authenticate(r.Context(), token, auth.TokenKindAPI)
			if err != nil {
				logger.Debug("rejected API token", "path", r.URL.Path, "error", err)
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(domain.WithActor(r.Context(), actor)))
		})
	}
}

// rateLimited is a huma operation middleware throttling by client IP.
func (s *Server) rateLimited(ctx huma.Context, next func(huma.Context)) {
	if s.opts.AuthLimiter == nil {
		next(ctx)
		return
	}

	r, _ := humachi.Unwrap(ctx)
	ip := ratelimit.ClientIP(r)
	if !s.opts.AuthLimiter.Allow(ip) {
		metrics.RateLimitRejections.WithLabelValues(ctx.Operation().Path).Inc()
		s.logger.Warn("rate limit exceeded", "ip", ip, "path", ctx.Operation().Path)
		_ = huma.WriteErr(s.api, ctx, http.StatusTooManyRequests, "Too many requests. Please try again later.")
		return
	}
	next(ctx)
}
