package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/nettd/lobby-server/internal/model"
)

type StorageSuite struct {
	suite.Suite
	storage *Storage
	ctx     context.Context
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.storage = New()
	s.ctx = context.Background()
}

// User tests

func (s *StorageSuite) TestSaveAndGetUser() {
	user := &model.User{
		ID:        "user-1",
		Username:  "alice",
		Match:     model.NewMatchInfo(),
		CreatedAt: time.Now(),
	}

	err := s.storage.SaveUser(s.ctx, user)
	s.Require().NoError(err)

	retrieved, err := s.storage.GetUser(s.ctx, "user-1")
	s.Require().NoError(err)
	s.Equal("alice", retrieved.Username)
	s.Equal(100, retrieved.Match.Health)
}

func (s *StorageSuite) TestGetUserNotFound() {
	_, err := s.storage.GetUser(s.ctx, "nope")
	s.ErrorIs(err, model.ErrUserNotFound)
}

func (s *StorageSuite) TestGetUserByUsername() {
	user := &model.User{ID: "user-1", Username: "alice"}
	s.Require().NoError(s.storage.SaveUser(s.ctx, user))

	retrieved, err := s.storage.GetUserByUsername(s.ctx, "alice")
	s.Require().NoError(err)
	s.Equal(model.UserID("user-1"), retrieved.ID)
}

func (s *StorageSuite) TestGetUserByUsernameNotFound() {
	_, err := s.storage.GetUserByUsername(s.ctx, "ghost")
	s.ErrorIs(err, model.ErrUserNotFound)
}

// Room tests

func (s *StorageSuite) TestSaveAndGetRoom() {
	room, err := model.NewRoom("AB12", 2, model.DefaultChatConfig(), time.Now())
	s.Require().NoError(err)
	s.Require().NoError(s.storage.SaveRoom(s.ctx, room))

	retrieved, err := s.storage.GetRoom(s.ctx, "AB12")
	s.Require().NoError(err)
	s.Equal(model.RoomCode("AB12"), retrieved.Code)
	s.Equal(2, retrieved.Capacity)
}

func (s *StorageSuite) TestGetRoomNotFound() {
	_, err := s.storage.GetRoom(s.ctx, "ZZZZ")
	s.ErrorIs(err, model.ErrRoomNotFound)
}

func (s *StorageSuite) TestDeleteRoom() {
	room, _ := model.NewRoom("AB12", 2, model.DefaultChatConfig(), time.Now())
	s.Require().NoError(s.storage.SaveRoom(s.ctx, room))

	s.Require().NoError(s.storage.DeleteRoom(s.ctx, "AB12"))

	_, err := s.storage.GetRoom(s.ctx, "AB12")
	s.ErrorIs(err, model.ErrRoomNotFound)
}

func (s *StorageSuite) TestRoomExists() {
	exists, err := s.storage.RoomExists(s.ctx, "AB12")
	s.Require().NoError(err)
	s.False(exists)

	room, _ := model.NewRoom("AB12", 2, model.DefaultChatConfig(), time.Now())
	s.Require().NoError(s.storage.SaveRoom(s.ctx, room))

	exists, err = s.storage.RoomExists(s.ctx, "AB12")
	s.Require().NoError(err)
	s.True(exists)
}

func (s *StorageSuite) TestListRoomsSorted() {
	for _, code := range []model.RoomCode{"ZZ99", "MAIN", "AB12"} {
		room, _ := model.NewRoom(code, model.UnboundedCapacity, model.DefaultChatConfig(), time.Now())
		s.Require().NoError(s.storage.SaveRoom(s.ctx, room))
	}

	rooms, err := s.storage.ListRooms(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(rooms, 3)
	s.Equal(model.RoomCode("AB12"), rooms[0].Code)
	s.Equal(model.RoomCode("MAIN"), rooms[1].Code)
	s.Equal(model.RoomCode("ZZ99"), rooms[2].Code)
}
