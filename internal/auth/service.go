package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"clr-site/internal/core"
	"clr-site/internal/store"
)

// Common authentication errors
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotActivated   = errors.New("user not activated")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrWeakPassword       = fmt.Errorf("password must be at least %d characters", MinPasswordLength)
)

// Service provides admin authentication
type Service struct {
	users  *UserModel
	tokens *TokenModel
	logger *core.Logger
}

// NewService creates a new authentication service
func NewService(s store.Store, logger *core.Logger) *Service {
	return &Service{
		users:  NewUserModel(s),
		tokens: NewTokenModel(s),
		logger: logger,
	}
}

// AuthenticateUser checks an email and password pair
func (s *Service) AuthenticateUser(ctx context.Context, email, password string) (*User, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		switch {
		case errors.Is(err, ErrRecordNotFound):
			return nil, ErrInvalidCredentials
		default:
			return nil, err
		}
	}

	if !user.Activated {
		return nil, ErrUserNotActivated
	}

	match, err := user.Password.Matches(password)
	if err != nil {
		return nil, err
	}
	if !match {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

// CreateAuthenticationToken replaces the user's session token with a new one
func (s *Service) CreateAuthenticationToken(ctx context.Context, user *User) (*Token, error) {
	if err := s.tokens.DeleteAllForUser(ctx, ScopeAuthentication, user.ID); err != nil {
		return nil, err
	}

	token, err := s.tokens.New(ctx, user.ID, TokenTTL, ScopeAuthentication)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Created authentication token", "user_id", user.ID)
	return token, nil
}

// ValidateToken resolves a session token to its user
func (s *Service) ValidateToken(ctx context.Context, tokenPlaintext string) (*User, error) {
	userID, err := s.tokens.UserIDFor(ctx, ScopeAuthentication, tokenPlaintext)
	if err != nil {
		if errors.Is(err, ErrRecordNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrRecordNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	if !user.Activated {
		return nil, ErrInvalidToken
	}

	return user, nil
}

// CreateUser creates an activated admin
func (s *Service) CreateUser(ctx context.Context, name, email, password string) (*User, error) {
	email = core.NormalizeEmail(email)
	if !core.ValidEmail(email) {
		return nil, core.NewValidationError("A valid email is required", nil)
	}
	if len(password) < MinPasswordLength {
		return nil, ErrWeakPassword
	}

	user := &User{
		Name:      strings.TrimSpace(name),
		Email:     email,
		Activated: true,
	}
	if err := user.Password.Set(password); err != nil {
		return nil, err
	}
	if err := s.users.Insert(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("Created admin user", "user_id", user.ID, "email", user.Email)
	return user, nil
}

// EnsureAdmin creates the bootstrap admin when no admin exists yet. An
// empty password skips bootstrapping.
func (s *Service) EnsureAdmin(ctx context.Context, name, email, password string) error {
	if password == "" {
		return nil
	}

	n, err := s.users.Count(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	_, err = s.CreateUser(ctx, name, email, password)
	if errors.Is(err, ErrDuplicateEmail) {
		return nil
	}
	return err
}

// LogoutUser invalidates all session tokens for a user
func (s *Service) LogoutUser(ctx context.Context, userID int64) error {
	if err := s.tokens.DeleteAllForUser(ctx, ScopeAuthentication, userID); err != nil {
		return err
	}

	s.logger.Info("User logged out", "user_id", userID)
	return nil
}

// PurgeExpiredTokens removes stale session tokens
func (s *Service) PurgeExpiredTokens(ctx context.Context) (int64, error) {
	return s.tokens.DeleteExpired(ctx)
}
