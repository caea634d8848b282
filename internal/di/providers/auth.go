package providers

import (
	"time"

	"github.com/samber/do/v2"

	"github.com/mybooks/mybooks-server/internal/auth"
	"github.com/mybooks/mybooks-server/internal/config"
	"github.com/mybooks/mybooks-server/internal/logger"
	"github.com/mybooks/mybooks-server/internal/ratelimit"
)

// ProvideTokenService loads or generates the PASETO key and provides the
// token service.
func ProvideTokenService(i do.Injector) (*auth.TokenService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	keyHex, err := auth.LoadOrGenerateKey(cfg.Auth.KeyPath)
	if err != nil {
		return nil, err
	}

	log.Info("Authentication key loaded",
		"path", cfg.Auth.KeyPath,
		"access_token_duration", cfg.Auth.AccessTokenDuration,
		"session_duration", cfg.Auth.SessionDuration,
	)

	return auth.NewTokenService(keyHex, cfg.Auth.AccessTokenDuration, cfg.Auth.SessionDuration)
}

// AuthLimiterHandle wraps the login/registration limiter so its sweeper
// stops on shutdown.
type AuthLimiterHandle struct {
	*ratelimit.KeyedRateLimiter
}

// Shutdown implements do.Shutdownable.
func (h *AuthLimiterHandle) Shutdown() error {
	h.Stop()
	return nil
}

// ProvideAuthLimiter provides the per-client limiter shared by the API
// token endpoints and the web login form.
func ProvideAuthLimiter(i do.Injector) (*AuthLimiterHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)

	limiter := ratelimit.New(ratelimit.PerInterval(cfg.Auth.RateLimit, time.Minute), cfg.Auth.RateBurst)
	return &AuthLimiterHandle{KeyedRateLimiter: limiter}, nil
}
