package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"time"

	"github.com/mybooks/mybooks-server/internal/auth"
	"github.com/mybooks/mybooks-server/internal/domain"
	domainerrors "github.com/mybooks/mybooks-server/internal/errors"
	"github.com/mybooks/mybooks-server/internal/id"
	"github.com/mybooks/mybooks-server/internal/store"
	"github.com/mybooks/mybooks-server/internal/validation"
)

// usernamePattern allows letters, digits and @ . + - _.
var usernamePattern = regexp.MustCompile(`^[\p{L}\p{N}@.+\-_]+$`)

// RegisterInput is the registration form.
type RegisterInput struct {
	Username        string `json:"username" validate:"notblank,max=50"`
	Password        string `json:"password" validate:"required,min=8,max=1024"`
	PasswordConfirm string `json:"password_confirm,omitempty" validate:"omitempty,eqfield=Password"`
	Email           string `json:"email,omitempty" validate:"omitempty,email"`
}

// LoginInput is the login form.
type LoginInput struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResult carries the issued token.
type LoginResult struct {
	Token     string          `json:"token"`
	ExpiresAt time.Time       `json:"expires_at"`
	User      *domain.User    `json:"user"`
	Profile   *domain.Profile `json:"profile"`
}

// AuthService registers users, checks credentials and resolves tokens to actors.
type AuthService struct {
	store      store.Store
	tokens     *auth.TokenService
	validator  *validation.Validator
	hashParams auth.Params
	logger     *slog.Logger
}

// NewAuthService creates an authentication service.
func NewAuthService(store store.Store, tokens *auth.TokenService, validator *validation.Validator, logger *slog.Logger) *AuthService {
	return &AuthService{
		store:      store,
		tokens:     tokens,
		validator:  validator,
		hashParams: auth.DefaultParams,
		logger:     logger,
	}
}

// SetHashParams overrides the argon2id cost used for new hashes.
func (s *AuthService) SetHashParams(p auth.Params) {
	s.hashParams = p
}

func usernameTaken() error {
	return domainerrors.ValidationWithDetails("validation failed", map[string]string{
		"username": "A user with that username already exists.",
	})
}

// Register creates a user and its profile, named after the username, in
// one transaction.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*domain.User, *domain.Profile, error) {
	in.Username = NormalizeName(in.Username)
	if err := s.validator.Validate(in); err != nil {
		return nil, nil, err
	}
	if !usernamePattern.MatchString(in.Username) {
		return nil, nil, domainerrors.ValidationWithDetails("validation failed", map[string]string{
			"username": "may contain only letters, numbers, and @/./+/-/_ characters",
		})
	}

	user, profile, err := s.newUser(in.Username, in.Password, in.Email, false)
	if err != nil {
		return nil, nil, err
	}
	if err := s.store.CreateUserWithProfile(ctx, user, profile); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return nil, nil, usernameTaken()
		}
		return nil, nil, fmt.Errorf("create user: %w", err)
	}

	s.logger.Info("user registered", "user_id", user.ID, "profile_id", profile.ID, "username", user.Username)
	return user, profile, nil
}

func (s *AuthService) newUser(username, password, email string, admin bool) (*domain.User, *domain.Profile, error) {
	hash, err := s.hashParams.Hash(password)
	if err != nil {
		return nil, nil, domainerrors.ValidationWithDetails("validation failed", map[string]string{"password": err.Error()})
	}
	userID, err := id.Generate(id.PrefixUser)
	if err != nil {
		return nil, nil, err
	}

	ts := now()
	user := &domain.User{
		ID:           userID,
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		IsAdmin:      admin,
		IsActive:     true,
		CreatedAt:    ts,
		UpdatedAt:    ts,
	}
	return user, domain.NewProfile(id.NewProfileID(), userID, username), nil
}

// Login verifies credentials and issues a token of the given kind.
// Unknown users, inactive users and wrong passwords are indistinguishable.
func (s *AuthService) Login(ctx context.Context, in LoginInput, kind auth.TokenKind) (*LoginResult, error) {
	if err := s.validator.Validate(in); err != nil {
		return nil, err
	}

	invalid := domainerrors.InvalidCredentials("Please enter a correct username and password.")

	user, err := s.store.GetUserByUsername(ctx, in.Username)
	if err != nil {
		if isNotFound(err) {
			return nil, invalid
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	if !user.IsActive || !auth.VerifyPassword(user.PasswordHash, in.Password) {
		return nil, invalid
	}

	ts := now()
	user.LastLoginAt = &ts
	if s.hashParams.NeedsRehash(user.PasswordHash) {
		if hash, err := s.hashParams.Hash(in.Password); err == nil {
			user.PasswordHash = hash
		}
	}
	user.Touch()
	if err := s.store.UpdateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}

	profile, err := s.store.GetProfileByUserID(ctx, user.ID)
	if err != nil {
		return nil, translate(err, "profile")
	}

	token, err := s.tokens.Generate(user, kind)
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}

	s.logger.Info("user logged in", "user_id", user.ID, "token_kind", kind)
	return &LoginResult{
		Token:     token,
		ExpiresAt: ts.Add(s.tokens.Duration(kind)),
		User:      user,
		Profile:   profile,
	}, nil
}

// Authenticate resolves a token to the acting user. The user is reloaded
// so deactivation and admin changes apply immediately.
func (s *AuthService) Authenticate(ctx context.Context, token string, kind auth.TokenKind) (*domain.Actor, error) {
	claims, err := s.tokens.Verify(token, kind)
	if err != nil {
		return nil, domainerrors.TokenExpired("invalid or expired token")
	}

	user, err := s.store.GetUser(ctx, claims.UserID)
	if err != nil {
		if isNotFound(err) {
			return nil, domainerrors.Unauthorized("user no longer exists")
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	if !user.IsActive {
		return nil, domainerrors.Unauthorized("account is disabled")
	}
	return s.ActorFor(ctx, user)
}

// ActorFor builds the actor for a user.
func (s *AuthService) ActorFor(ctx context.Context, user *domain.User) (*domain.Actor, error) {
	profile, err := s.store.GetProfileByUserID(ctx, user.ID)
	if err != nil {
		return nil, translate(err, "profile")
	}
	return &domain.Actor{
		UserID:    user.ID,
		ProfileID: profile.ID,
		Username:  user.Username,
		IsAdmin:   user.IsAdmin,
	}, nil
}

// Me returns the user and profile behind an actor.
func (s *AuthService) Me(ctx context.Context, actor *domain.Actor) (*domain.User, *domain.Profile, error) {
	if err := requireActor(actor); err != nil {
		return nil, nil, err
	}
	user, err := s.store.GetUser(ctx, actor.UserID)
	if err != nil {
		return nil, nil, translate(err, "user")
	}
	profile, err := s.store.GetProfile(ctx, actor.ProfileID)
	if err != nil {
		return nil, nil, translate(err, "profile")
	}
	return user, profile, nil
}

// EnsureAdmin creates an administrator, or promotes an existing user and
// resets their password. created reports which happened.
func (s *AuthService) EnsureAdmin(ctx context.Context, username, password, email string) (*domain.User, bool, error) {
	username = NormalizeName(username)

	existing, err := s.store.GetUserByUsername(ctx, username)
	switch {
	case err == nil:
		hash, err := s.hashParams.Hash(password)
		if err != nil {
			return nil, false, domainerrors.Validation(err.Error())
		}
		existing.PasswordHash = hash
		existing.IsAdmin = true
		existing.IsActive = true
		if email != "" {
			existing.Email = email
		}
		existing.Touch()
		if err := s.store.UpdateUser(ctx, existing); err != nil {
			return nil, false, fmt.Errorf("update user: %w", err)
		}
		s.logger.Info("user promoted to administrator", "user_id", existing.ID, "username", username)
		return existing, false, nil
	case !isNotFound(err):
		return nil, false, fmt.Errorf("get user: %w", err)
	}

	user, profile, err := s.newUser(username, password, email, true)
	if err != nil {
		return nil, false, err
	}
	if err := s.store.CreateUserWithProfile(ctx, user, profile); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return nil, false, usernameTaken()
		}
		return nil, false, fmt.Errorf("create user: %w", err)
	}
	s.logger.Info("administrator created", "user_id", user.ID, "username", username)
	return user, true, nil
}
