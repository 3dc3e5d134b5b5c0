package identity

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"

	"github.com/nettd/lobby-server/internal/dependencies/mocks"
	"github.com/nettd/lobby-server/internal/model"
	"github.com/nettd/lobby-server/internal/storage/memory"
	"github.com/nettd/lobby-server/internal/testutil"
)

type ServiceSuite struct {
	suite.Suite
	storage *memory.Storage
	clock   *mocks.MockClock
	service *Service
	ctx     context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.storage = memory.New()
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.service = New(s.storage, s.clock, testutil.NopLogger())
	s.ctx = context.Background()
}

// Register tests

func (s *ServiceSuite) TestRegisterSucceeds() {
	user, err := s.service.Register(s.ctx, "alice", "hunter2")
	s.Require().NoError(err)

	s.NotEmpty(user.ID)
	s.Equal("alice", user.Username)
	s.Equal(s.clock.Now(), user.CreatedAt)

	// Secret is stored hashed, never verbatim
	s.NotEqual("hunter2", user.SecretHash)
	s.NoError(bcrypt.CompareHashAndPassword([]byte(user.SecretHash), []byte("hunter2")))

	// New identities start with fresh match state
	s.False(user.Match.Ready)
	s.Equal(100, user.Match.Health)
	s.Equal(10, user.Match.Money)
	s.Empty(user.Match.Towers)
	s.Empty(user.Match.Units)
}

func (s *ServiceSuite) TestRegisterIsPersisted() {
	user, err := s.service.Register(s.ctx, "alice", "hunter2")
	s.Require().NoError(err)

	retrieved, err := s.storage.GetUser(s.ctx, user.ID)
	s.Require().NoError(err)
	s.Equal("alice", retrieved.Username)
}

func (s *ServiceSuite) TestRegisterUsernameTooShort() {
	_, err := s.service.Register(s.ctx, "ab", "hunter2")
	s.ErrorIs(err, model.ErrUsernameLength)
}

func (s *ServiceSuite) TestRegisterUsernameTooLong() {
	_, err := s.service.Register(s.ctx, "averylongusername", "hunter2")
	s.ErrorIs(err, model.ErrUsernameLength)
}

func (s *ServiceSuite) TestRegisterBoundaryLengths() {
	_, err := s.service.Register(s.ctx, "abc", "hunter2")
	s.NoError(err)

	_, err = s.service.Register(s.ctx, "abcdefghijkl", "hunter2")
	s.NoError(err)
}

func (s *ServiceSuite) TestRegisterSameSecretIsIdempotent() {
	first, err := s.service.Register(s.ctx, "alice", "hunter2")
	s.Require().NoError(err)

	second, err := s.service.Register(s.ctx, "alice", "hunter2")
	s.Require().NoError(err)
	s.Equal(first.ID, second.ID)
}

func (s *ServiceSuite) TestRegisterDifferentSecretConflicts() {
	_, err := s.service.Register(s.ctx, "alice", "hunter2")
	s.Require().NoError(err)

	_, err = s.service.Register(s.ctx, "alice", "other")
	s.ErrorIs(err, model.ErrUsernameTaken)
}

// Resolve tests

func (s *ServiceSuite) TestResolveByID() {
	user, err := s.service.Register(s.ctx, "alice", "hunter2")
	s.Require().NoError(err)

	resolved, err := s.service.Resolve(s.ctx, user.ID, "alice", "wrong")
	s.Require().NoError(err)
	s.Equal(user.ID, resolved.ID)
}

func (s *ServiceSuite) TestResolveBySecret() {
	user, err := s.service.Register(s.ctx, "alice", "hunter2")
	s.Require().NoError(err)

	resolved, err := s.service.Resolve(s.ctx, "stale-id", "alice", "hunter2")
	s.Require().NoError(err)
	s.Equal(user.ID, resolved.ID)
}

func (s *ServiceSuite) TestResolveRejectsWhenNeitherMatches() {
	_, err := s.service.Register(s.ctx, "alice", "hunter2")
	s.Require().NoError(err)

	_, err = s.service.Resolve(s.ctx, "stale-id", "alice", "wrong")
	s.ErrorIs(err, model.ErrUserNotFound)
}

func (s *ServiceSuite) TestResolveUnknownUsername() {
	_, err := s.service.Resolve(s.ctx, "any", "ghost", "any")
	s.ErrorIs(err, model.ErrUserNotFound)
}
