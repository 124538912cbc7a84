package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"clr-site/internal/store"
)

// Common errors
var (
	ErrRecordNotFound = errors.New("record not found")
	ErrDuplicateEmail = errors.New("duplicate email")
)

// UserModel handles store operations for admin users
type UserModel struct {
	store store.Store
}

// NewUserModel creates a new user model
func NewUserModel(s store.Store) *UserModel {
	return &UserModel{store: s}
}

// Insert creates a new user
func (m *UserModel) Insert(ctx context.Context, user *User) error {
	row, err := m.store.Insert(ctx, store.TableAdminUsers, store.Row{
		"name":          user.Name,
		"email":         user.Email,
		"password_hash": string(user.Password.hash),
		"activated":     user.Activated,
		"created_at":    time.Now().UTC(),
	})
	if err != nil {
		if errors.Is(err, store.ErrUniqueViolation) {
			return ErrDuplicateEmail
		}
		return err
	}

	user.ID, _ = row.Int64("id")
	user.CreatedAt, _ = row.Time("created_at")
	return nil
}

// GetByEmail retrieves a user by email
func (m *UserModel) GetByEmail(ctx context.Context, email string) (*User, error) {
	return m.first(ctx, store.Eq("email", strings.ToLower(email)))
}

// GetByID retrieves a user by id
func (m *UserModel) GetByID(ctx context.Context, id int64) (*User, error) {
	return m.first(ctx, store.Eq("id", id))
}

// Count returns the number of admin users
func (m *UserModel) Count(ctx context.Context) (int, error) {
	return m.store.Count(ctx, store.TableAdminUsers)
}

func (m *UserModel) first(ctx context.Context, filter store.Filter) (*User, error) {
	rows, err := m.store.Select(ctx, store.Query{
		Table:   store.TableAdminUsers,
		Filters: []store.Filter{filter},
		Limit:   1,
	})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrRecordNotFound
	}
	return decodeUser(rows[0]), nil
}

func decodeUser(row store.Row) *User {
	user := &User{
		Name:      row.String("name"),
		Email:     row.String("email"),
		Activated: row.Bool("activated"),
	}
	user.ID, _ = row.Int64("id")
	user.CreatedAt, _ = row.Time("created_at")
	user.Password.hash = []byte(row.String("password_hash"))
	return user
}

// TokenModel handles store operations for tokens
type TokenModel struct {
	store store.Store
}

// NewTokenModel creates a new token model
func NewTokenModel(s store.Store) *TokenModel {
	return &TokenModel{store: s}
}

// New creates and stores a new token
func (m *TokenModel) New(ctx context.Context, userID int64, ttl time.Duration, scope string) (*Token, error) {
	token, err := generateToken(userID, ttl, scope)
	if err != nil {
		return nil, err
	}

	_, err = m.store.Insert(ctx, store.TableAdminTokens, store.Row{
		"hash":    token.Hash,
		"user_id": token.UserID,
		"expiry":  token.Expiry.UTC(),
		"scope":   token.Scope,
	})
	return token, err
}

// UserIDFor resolves an unexpired token to its user id
func (m *TokenModel) UserIDFor(ctx context.Context, scope, plaintext string) (int64, error) {
	rows, err := m.store.Select(ctx, store.Query{
		Table: store.TableAdminTokens,
		Filters: []store.Filter{
			store.Eq("hash", hashToken(plaintext)),
			store.Eq("scope", scope),
			{Column: "expiry", Op: store.OpGt, Value: time.Now().UTC()},
		},
		Limit: 1,
	})
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, ErrRecordNotFound
	}
	id, _ := rows[0].Int64("user_id")
	return id, nil
}

// DeleteAllForUser deletes all tokens for a user and scope
func (m *TokenModel) DeleteAllForUser(ctx context.Context, scope string, userID int64) error {
	_, err := m.store.Delete(ctx, store.TableAdminTokens, store.Eq("scope", scope), store.Eq("user_id", userID))
	return err
}

// DeleteExpired removes tokens past their expiry
func (m *TokenModel) DeleteExpired(ctx context.Context) (int64, error) {
	return m.store.Delete(ctx, store.TableAdminTokens, store.Filter{Column: "expiry", Op: store.OpLte, Value: time.Now().UTC()})
}
