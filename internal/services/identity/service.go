// Package identity implements the identity registry: the durable
// username -> user record mapping that issues new identities on
// registration and validates returning ones on authentication.
package identity

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/nettd/lobby-server/internal/dependencies/clock"
	"github.com/nettd/lobby-server/internal/model"
	"github.com/nettd/lobby-server/internal/storage"
)

// Service manages user record registration and credential resolution
type Service struct {
	storage storage.Storage
	clock   clock.Clock
	logger  *slog.Logger
}

// New creates a new identity service
func New(storage storage.Storage, clock clock.Clock, logger *slog.Logger) *Service {
	return &Service{
		storage: storage,
		clock:   clock,
		logger:  logger.With(slog.String("component", "identity")),
	}
}

// Register creates a user record for the username, or returns the
// existing record when the secret matches (re-registration from a
// client that lost its id is idempotent). A username held under a
// different secret is a conflict.
func (s *Service) Register(ctx context.Context, username, secret string) (*model.User, error) {
	if !model.ValidUsername(username) {
		return nil, model.ErrUsernameLength
	}

	existing, err := s.storage.GetUserByUsername(ctx, username)
	if err == nil {
		if bcrypt.CompareHashAndPassword([]byte(existing.SecretHash), []byte(secret)) == nil {
			return existing, nil
		}
		return nil, model.ErrUsernameTaken
	}
	if !errors.Is(err, model.ErrUserNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		ID:         model.UserID(uuid.NewString()),
		Username:   username,
		SecretHash: string(hash),
		Match:      model.NewMatchInfo(),
		CreatedAt:  s.clock.Now(),
	}

	if err := s.storage.SaveUser(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("user registered",
		slog.String("user_id", string(user.ID)),
		slog.String("username", username),
	)

	return user, nil
}

// Resolve finds the stored record for the username where either the
// claimed id or the credential secret matches. This dual check lets a
// returning client authenticate with whichever credential it remembered.
func (s *Service) Resolve(ctx context.Context, claimedID model.UserID, username, secret string) (*model.User, error) {
	user, err := s.storage.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	if user.ID == claimedID {
		return user, nil
	}
	if bcrypt.CompareHashAndPassword([]byte(user.SecretHash), []byte(secret)) == nil {
		return user, nil
	}

	return nil, model.ErrUserNotFound
}
