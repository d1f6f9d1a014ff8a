package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/team-calendar/backend/internal/storage"
	"github.com/team-calendar/backend/internal/storage/models"
)

var (
	// ErrUsernameTaken is returned when registering an existing username.
	ErrUsernameTaken = errors.New("username already taken")
	// ErrInvalidCredentials is returned for an unknown user or wrong password.
	ErrInvalidCredentials = errors.New("invalid username or password")
)

// Session is the result of a successful login.
type Session struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      *models.User `json:"user"`
}

// Service registers users and manages their sessions.
type Service struct {
	users    *storage.UserRepository
	sessions SessionStore
	tokens   *TokenIssuer
	logger   *zap.Logger
}

// NewService creates an authentication service.
func NewService(users *storage.UserRepository, sessions SessionStore, tokens *TokenIssuer, logger *zap.Logger) *Service {
	return &Service{users: users, sessions: sessions, tokens: tokens, logger: logger}
}

// Sessions returns the store holding live sessions.
func (s *Service) Sessions() SessionStore {
	return s.sessions
}

// Register creates a user account.
func (s *Service) Register(ctx context.Context, username, password string) (*models.User, error) {
	existing, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrUsernameTaken
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := &models.User{Username: username, PasswordHash: hash}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, storage.ErrConflict) {
			return nil, ErrUsernameTaken
		}
		return nil, err
	}

	s.logger.Info("user registered", zap.String("user_id", user.ID), zap.String("username", username))
	return user, nil
}

// Login checks the credentials and issues a session token.
func (s *Service) Login(ctx context.Context, username, password string) (*Session, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}

	ok, err := CheckPassword(user.PasswordHash, password)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrInvalidCredentials
	}

	token, expiresAt, err := s.tokens.Issue(user.ID, user.Username)
	if err != nil {
		return nil, err
	}
	if err := s.sessions.Save(ctx, HashToken(token), user.ID, expiresAt); err != nil {
		return nil, fmt.Errorf("storing session: %w", err)
	}

	return &Session{Token: token, ExpiresAt: expiresAt, User: user}, nil
}

// Authenticate resolves a token to its user. Revoked, expired and forged
// tokens, as well as tokens of deleted users, yield ErrInvalidToken.
func (s *Service) Authenticate(ctx context.Context, token string) (*models.User, error) {
	claims, err := s.tokens.Verify(token)
	if err != nil {
		return nil, err
	}

	userID, err := s.sessions.Lookup(ctx, HashToken(token))
	if err != nil {
		return nil, err
	}
	if userID == "" || userID != claims.UserID {
		return nil, fmt.Errorf("%w: session revoked", ErrInvalidToken)
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("%w: unknown user", ErrInvalidToken)
	}
	return user, nil
}

// Logout revokes the session of token.
func (s *Service) Logout(ctx context.Context, token string) error {
	return s.sessions.Delete(ctx, HashToken(token))
}
