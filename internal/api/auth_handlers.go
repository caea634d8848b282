package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/mybooks/mybooks-server/internal/auth"
	"github.com/mybooks/mybooks-server/internal/domain"
	"github.com/mybooks/mybooks-server/internal/service"
)

func (s *Server) registerAuthRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID:   "register",
		Method:        http.MethodPost,
		Path:          "/api/v1/register",
		Summary:       "Register new user",
		Description:   "Creates a user and a profile named after the username",
		Tags:          []string{"Authentication"},
		DefaultStatus: http.StatusCreated,
		Middlewares:   huma.Middlewares{s.rateLimited},
	}, s.handleRegister)

	huma.Register(s.api, huma.Operation{
		OperationID: "obtainToken",
		Method:      http.MethodPost,
		Path:        "/api/v1/auth/token",
		Summary:     "Obtain token",
		Description: "Exchanges a username and password for a bearer token",
		Tags:        []string{"Authentication"},
		Middlewares: huma.Middlewares{s.rateLimited},
	}, s.handleToken)

	huma.Register(s.api, huma.Operation{
		OperationID: "getCurrentUser",
		Method:      http.MethodGet,
		Path:        "/api/v1/me",
		Summary:     "Current user",
		Description: "Returns the authenticated user and profile",
		Tags:        []string{"Authentication"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleMe)
}

// === DTOs ===

// RegisterRequest is the request body for registration.
type RegisterRequest struct {
	Username        string `json:"username" doc:"Login name, also the profile name"`
	Password        string `json:"password" doc:"Password (at least 8 characters)"`
	PasswordConfirm string `json:"password_confirm,omitempty" doc:"Must equal password when given"`
	Email           string `json:"email,omitempty" doc:"Email address"`
}

// RegisterInput wraps the register request for Huma.
type RegisterInput struct {
	Body RegisterRequest
}

// AccountResponse is a user with its profile.
type AccountResponse struct {
	User    UserResponse    `json:"user" doc:"User account"`
	Profile ProfileResponse `json:"profile" doc:"Profile"`
}

// AccountOutput wraps the account response for Huma.
type AccountOutput struct {
	Body AccountResponse
}

// TokenRequest is the request body for obtaining a token.
type TokenRequest struct {
	Username string `json:"username" doc:"Login name"`
	Password string `json:"password" doc:"Password"`
}

// TokenInput wraps the token request for Huma.
type TokenInput struct {
	Body TokenRequest
}

// TokenResponse carries a bearer token.
type TokenResponse struct {
	Token     string          `json:"token" doc:"PASETO bearer token"`
	ExpiresAt time.Time       `json:"expires_at" doc:"Token expiry"`
	User      UserResponse    `json:"user" doc:"Authenticated user"`
	Profile   ProfileResponse `json:"profile" doc:"Authenticated profile"`
}

// TokenOutput wraps the token response for Huma.
type TokenOutput struct {
	Body TokenResponse
}

// === Handlers ===

func (s *Server) handleRegister(ctx context.Context, input *RegisterInput) (*AccountOutput, error) {
	user, profile, err := s.services.Auth.Register(ctx, service.RegisterInput{
		Username:        input.Body.Username,
		Password:        input.Body.Password,
		PasswordConfirm: input.Body.PasswordConfirm,
		Email:           input.Body.Email,
	})
	if err != nil {
		return nil, err
	}
	return &AccountOutput{Body: AccountResponse{User: toUser(user), Profile: toProfile(profile)}}, nil
}

func (s *Server) handleToken(ctx context.Context, input *TokenInput) (*TokenOutput, error) {
	res, err := s.services.Auth.Login(ctx, service.LoginInput{
		Username: input.Body.Username,
		Password: input.Body.Password,
	}, auth.TokenKindAPI)
	if err != nil {
		return nil, err
	}
	return &TokenOutput{Body: TokenResponse{
		Token:     res.Token,
		ExpiresAt: res.ExpiresAt,
		User:      toUser(res.User),
		Profile:   toProfile(res.Profile),
	}}, nil
}

func (s *Server) handleMe(ctx context.Context, _ *struct{}) (*AccountOutput, error) {
	user, profile, err := s.services.Auth.Me(ctx, domain.ActorFrom(ctx))
	if err != nil {
		return nil, err
	}
	return &AccountOutput{Body: AccountResponse{User: toUser(user), Profile: toProfile(profile)}}, nil
}
