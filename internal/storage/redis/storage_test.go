package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"github.com/nettd/lobby-server/internal/model"
)

type StorageSuite struct {
	suite.Suite
	mini    *miniredis.Miniredis
	storage *Storage
	ctx     context.Context
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.mini = miniredis.RunT(s.T())

	client := redis.NewClient(&redis.Options{
		Addr: s.mini.Addr(),
	})

	cfg := DefaultConfig()
	cfg.RoomTTL = time.Hour

	s.storage = NewWithClient(client, cfg)
	s.ctx = context.Background()
}

func (s *StorageSuite) TearDownTest() {
	if s.storage != nil {
		_ = s.storage.Close()
	}
	if s.mini != nil {
		s.mini.Close()
	}
}

// User tests

func (s *StorageSuite) TestSaveAndGetUser() {
	user := &model.User{
		ID:         "user-1",
		Username:   "alice",
		SecretHash: "hash",
		Match:      model.NewMatchInfo(),
		CreatedAt:  time.Now().UTC().Truncate(time.Second),
	}

	s.Require().NoError(s.storage.SaveUser(s.ctx, user))

	retrieved, err := s.storage.GetUser(s.ctx, "user-1")
	s.Require().NoError(err)
	s.Equal("alice", retrieved.Username)
	s.Equal("hash", retrieved.SecretHash)
	s.Equal(100, retrieved.Match.Health)
	s.Equal(10, retrieved.Match.Money)
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

func (s *StorageSuite) TestUserRecordsHaveNoTTL() {
	user := &model.User{ID: "user-1", Username: "alice"}
	s.Require().NoError(s.storage.SaveUser(s.ctx, user))

	s.Equal(time.Duration(0), s.mini.TTL(userKey("user-1")))
}

// Room tests

func (s *StorageSuite) TestSaveAndGetRoom() {
	room, err := model.NewRoom("AB12", 2, model.DefaultChatConfig(), time.Now().UTC())
	s.Require().NoError(err)
	room.Members = append(room.Members, model.RoomMember{UserID: "user-1", Username: "alice"})
	s.Require().NoError(s.storage.SaveRoom(s.ctx, room))

	retrieved, err := s.storage.GetRoom(s.ctx, "AB12")
	s.Require().NoError(err)
	s.Equal(model.RoomCode("AB12"), retrieved.Code)
	s.Equal(2, retrieved.Capacity)
	s.Require().Len(retrieved.Members, 1)
	s.Equal("alice", retrieved.Members[0].Username)
}

func (s *StorageSuite) TestGetRoomNotFound() {
	_, err := s.storage.GetRoom(s.ctx, "ZZZZ")
	s.ErrorIs(err, model.ErrRoomNotFound)
}

func (s *StorageSuite) TestHostedRoomsExpire() {
	room, _ := model.NewRoom("AB12", 2, model.DefaultChatConfig(), time.Now().UTC())
	s.Require().NoError(s.storage.SaveRoom(s.ctx, room))

	s.Equal(time.Hour, s.mini.TTL(roomKey("AB12")))
}

func (s *StorageSuite) TestDefaultRoomNeverExpires() {
	room, _ := model.NewRoom(model.DefaultRoomCode, model.UnboundedCapacity, model.DefaultChatConfig(), time.Now().UTC())
	s.Require().NoError(s.storage.SaveRoom(s.ctx, room))

	s.Equal(time.Duration(0), s.mini.TTL(roomKey(model.DefaultRoomCode)))
}

func (s *StorageSuite) TestDeleteRoom() {
	room, _ := model.NewRoom("AB12", 2, model.DefaultChatConfig(), time.Now().UTC())
	s.Require().NoError(s.storage.SaveRoom(s.ctx, room))

	s.Require().NoError(s.storage.DeleteRoom(s.ctx, "AB12"))

	_, err := s.storage.GetRoom(s.ctx, "AB12")
	s.ErrorIs(err, model.ErrRoomNotFound)

	rooms, err := s.storage.ListRooms(s.ctx)
	s.Require().NoError(err)
	s.Empty(rooms)
}

func (s *StorageSuite) TestRoomExists() {
	exists, err := s.storage.RoomExists(s.ctx, "AB12")
	s.Require().NoError(err)
	s.False(exists)

	room, _ := model.NewRoom("AB12", 2, model.DefaultChatConfig(), time.Now().UTC())
	s.Require().NoError(s.storage.SaveRoom(s.ctx, room))

	exists, err = s.storage.RoomExists(s.ctx, "AB12")
	s.Require().NoError(err)
	s.True(exists)
}

func (s *StorageSuite) TestListRoomsSorted() {
	for _, code := range []model.RoomCode{"ZZ99", "MAIN", "AB12"} {
		room, _ := model.NewRoom(code, model.UnboundedCapacity, model.DefaultChatConfig(), time.Now().UTC())
		s.Require().NoError(s.storage.SaveRoom(s.ctx, room))
	}

	rooms, err := s.storage.ListRooms(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(rooms, 3)
	s.Equal(model.RoomCode("AB12"), rooms[0].Code)
	s.Equal(model.RoomCode("MAIN"), rooms[1].Code)
	s.Equal(model.RoomCode("ZZ99"), rooms[2].Code)
}

func (s *StorageSuite) TestListRoomsDropsExpiredEntries() {
	room, _ := model.NewRoom("AB12", 2, model.DefaultChatConfig(), time.Now().UTC())
	s.Require().NoError(s.storage.SaveRoom(s.ctx, room))

	// Expire the room body but leave the index entry behind
	s.mini.FastForward(2 * time.Hour)

	rooms, err := s.storage.ListRooms(s.ctx)
	s.Require().NoError(err)
	s.Empty(rooms)

	// The stale index entry was reaped
	s.False(s.mini.Exists(roomsIndexKey()))
}
