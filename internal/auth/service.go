package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/hongminglow/account-be/internal/models"
	"github.com/hongminglow/account-be/internal/storage"
)

// Session is a user together with the token just issued for them.
type Session struct {
	User  models.User
	Token string
}

// Service implements the register, login, logout and token check workflows.
type Service struct {
	store    storage.UserStore
	tokens   *TokenManager
	logger   *slog.Logger
	hashCost int
}

// NewService constructs a Service. hashCost is the bcrypt cost used for new passwords.
func NewService(store storage.UserStore, tokens *TokenManager, logger *slog.Logger, hashCost int) *Service {
	return &Service{store: store, tokens: tokens, logger: logger, hashCost: hashCost}
}

// Register creates a user and signs them in.
func (s *Service) Register(ctx context.Context, username, password string, isAdmin bool) (Session, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" || len(password) > MaxPasswordBytes {
		return Session{}, ErrInvalidInput
	}

	// Early exit only; the store's unique index is what settles concurrent registrations.
	if _, err := s.store.FindByUsername(ctx, username); err == nil {
		return Session{}, ErrDuplicateUser
	} else if !errors.Is(err, storage.ErrNotFound) {
		return Session{}, fmt.Errorf("lookup user: %w", err)
	}

	hash, err := HashPassword(password, s.hashCost)
	if err != nil {
		return Session{}, fmt.Errorf("hash password: %w", err)
	}
	user, err := s.store.CreateUser(ctx, models.User{
		Username:     username,
		PasswordHash: hash,
		IsAdmin:      isAdmin,
	})
	if err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			return Session{}, ErrDuplicateUser
		}
		return Session{}, fmt.Errorf("create user: %w", err)
	}

	session, err := s.startSession(ctx, user)
	if err != nil {
		// The account exists without a token; the user can still log in.
		s.logger.ErrorContext(ctx, "registered user has no session", "user_id", user.ID, "username", user.Username, "error", err)
		return Session{}, err
	}
	s.logger.InfoContext(ctx, "user registered", "user_id", user.ID, "is_admin", user.IsAdmin)
	return session, nil
}

// Login checks credentials and issues a fresh token, replacing the previous one.
func (s *Service) Login(ctx context.Context, username, password string) (Session, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return Session{}, ErrInvalidInput
	}

	user, err := s.store.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return Session{}, ErrInvalidCredentials
		}
		return Session{}, fmt.Errorf("lookup user: %w", err)
	}
	if !user.MatchPassword(password) {
		return Session{}, ErrInvalidCredentials
	}

	session, err := s.startSession(ctx, user)
	if err != nil {
		return Session{}, err
	}
	s.logger.InfoContext(ctx, "user logged in", "user_id", user.ID)
	return session, nil
}

// Authenticate resolves a bearer token to its user. A token that verifies but
// is no longer the user's current token is rejected as invalid.
func (s *Service) Authenticate(ctx context.Context, token string) (models.User, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return models.User{}, ErrMissingToken
	}
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return models.User{}, err
	}
	user, err := s.store.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return models.User{}, ErrUserNotFound
		}
		return models.User{}, fmt.Errorf("lookup user: %w", err)
	}
	if subtle.ConstantTimeCompare([]byte(user.CurrentToken), []byte(token)) != 1 {
		return models.User{}, fmt.Errorf("%w: token superseded", ErrInvalidToken)
	}
	return user, nil
}

// Logout clears the user's current token.
func (s *Service) Logout(ctx context.Context, token string) error {
	user, err := s.Authenticate(ctx, token)
	if err != nil {
		return err
	}
	user.CurrentToken = ""
	if err := s.store.SaveUser(ctx, user); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("save user: %w", err)
	}
	s.logger.InfoContext(ctx, "user logged out", "user_id", user.ID)
	return nil
}

func (s *Service) startSession(ctx context.Context, user models.User) (Session, error) {
	token, err := s.tokens.Generate(user)
	if err != nil {
		return Session{}, fmt.Errorf("generate token: %w", err)
	}
	user.CurrentToken = token
	if err := s.store.SaveUser(ctx, user); err != nil {
		return Session{}, fmt.Errorf("save token: %w", err)
	}
	return Session{User: user, Token: token}, nil
}
