// Package room implements the room registry and per-room membership
// operations: creation with unique short codes, joining and leaving,
// match start, and the permanent default room.
package room

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nettd/lobby-server/internal/dependencies/clock"
	"github.com/nettd/lobby-server/internal/dependencies/random"
	"github.com/nettd/lobby-server/internal/events"
	"github.com/nettd/lobby-server/internal/model"
	"github.com/nettd/lobby-server/internal/services/chat"
	"github.com/nettd/lobby-server/internal/services/match"
	"github.com/nettd/lobby-server/internal/storage"
)

// HostedRoomCapacity is the member limit for player-hosted rooms.
// Matches the head-to-head game mode.
const HostedRoomCapacity = 2

// Service manages the room registry and room membership
type Service struct {
	storage   storage.Storage
	chat      *chat.Service
	match     *match.Service
	clock     clock.Clock
	random    random.Random
	publisher events.Publisher
	logger    *slog.Logger
}

// New creates a new room service
func New(
	storage storage.Storage,
	chatService *chat.Service,
	matchService *match.Service,
	clock clock.Clock,
	random random.Random,
	publisher events.Publisher,
	logger *slog.Logger,
) *Service {
	return &Service{
		storage:   storage,
		chat:      chatService,
		match:     matchService,
		clock:     clock,
		random:    random,
		publisher: publisher,
		logger:    logger.With(slog.String("component", "room")),
	}
}

// EnsureDefaultRoom creates the permanent default room if it does not
// exist. Called once at startup; the default room is never destroyed.
func (s *Service) EnsureDefaultRoom(ctx context.Context) error {
	exists, err := s.storage.RoomExists(ctx, model.DefaultRoomCode)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	room, err := model.NewRoom(model.DefaultRoomCode, model.UnboundedCapacity, model.DefaultChatConfig(), s.clock.Now())
	if err != nil {
		return fmt.Errorf("default room: %w", err)
	}
	return s.storage.SaveRoom(ctx, room)
}

// CreateRoom registers a new room under a freshly generated code.
// Codes are drawn uniformly and regenerated until unused; with ~1.6M
// possible codes a handful of retries suffices in practice, but the
// contract is retry-until-unique.
func (s *Service) CreateRoom(ctx context.Context, capacity int) (*model.Room, error) {
	var code model.RoomCode
	for {
		code = model.RoomCode(s.random.String(model.RoomCodeLength, model.RoomCodeAlphabet))
		exists, err := s.storage.RoomExists(ctx, code)
		if err != nil {
			return nil, err
		}
		if !exists {
			break
		}
	}

	room, err := model.NewRoom(code, capacity, model.DefaultChatConfig(), s.clock.Now())
	if err != nil {
		return nil, err
	}

	if err := s.storage.SaveRoom(ctx, room); err != nil {
		return nil, err
	}

	s.logger.Info("room created",
		slog.String("code", string(code)),
		slog.Int("capacity", capacity),
	)
	return room, nil
}

// GetRoom retrieves a room by code
func (s *Service) GetRoom(ctx context.Context, code model.RoomCode) (*model.Room, error) {
	return s.storage.GetRoom(ctx, code)
}

// ListRooms returns all live rooms
func (s *Service) ListRooms(ctx context.Context) ([]*model.Room, error) {
	return s.storage.ListRooms(ctx)
}

// JoinRoom moves the user into the named room, leaving their current
// room first. Membership updates are broadcast to the new room, and
// joins to non-default rooms are announced in its chat.
func (s *Service) JoinRoom(ctx context.Context, user *model.User, code model.RoomCode) (*model.Room, error) {
	room, err := s.storage.GetRoom(ctx, code)
	if err != nil {
		return nil, err
	}

	if user.CurrentRoom == code {
		return nil, model.ErrAlreadyInRoom
	}
	if room.IsFull() {
		return nil, model.ErrRoomFull
	}

	if err := s.LeaveCurrentRoom(ctx, user); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	room.Members = append(room.Members, model.RoomMember{
		UserID:   user.ID,
		Username: user.Username,
		JoinedAt: now,
	})
	room.UpdatedAt = now
	if err := s.storage.SaveRoom(ctx, room); err != nil {
		return nil, err
	}

	user.CurrentRoom = code
	if err := s.storage.SaveUser(ctx, user); err != nil {
		return nil, err
	}

	s.publisher.Publish(code, events.Event{
		Type:     events.TypeMembers,
		RoomCode: code,
		Members:  room.MemberList(),
	})

	// Default room membership changes are deliberately not announced,
	// to keep lobby chat quiet
	if !room.IsDefault() {
		if err := s.chat.PostSystemMessage(ctx, code, fmt.Sprintf("%s has joined the room.", user.Username)); err != nil {
			s.logger.Warn("join announcement failed",
				slog.String("room", string(code)),
				slog.String("error", err.Error()),
			)
		}
	}

	s.logger.Info("user joined room",
		slog.String("room", string(code)),
		slog.String("username", user.Username),
	)
	return room, nil
}

// LeaveCurrentRoom removes the user from whatever room they are in.
// Leaving the default room is a silent detach. Leaving another room
// broadcasts the updated membership, ends any running match, and
// destroys the room once it empties. Safe to call when the user is in
// no room.
func (s *Service) LeaveCurrentRoom(ctx context.Context, user *model.User) error {
	code := user.CurrentRoom
	if code == "" {
		return nil
	}

	room, err := s.storage.GetRoom(ctx, code)
	if err != nil {
		// Registry and user record disagree; clear the dangling
		// reference so teardown stays idempotent
		user.CurrentRoom = ""
		return s.storage.SaveUser(ctx, user)
	}

	room.RemoveMember(user.ID)
	room.UpdatedAt = s.clock.Now()
	user.CurrentRoom = ""

	if err := s.storage.SaveUser(ctx, user); err != nil {
		return err
	}

	if room.IsDefault() {
		// Lightweight detach: no broadcast, no announcement
		return s.storage.SaveRoom(ctx, room)
	}

	s.publisher.Publish(code, events.Event{
		Type:     events.TypeMembers,
		RoomCode: code,
		Members:  room.MemberList(),
	})

	s.match.End(ctx, room)

	if len(room.Members) == 0 {
		return s.destroyRoom(ctx, room)
	}

	return s.storage.SaveRoom(ctx, room)
}

// StartMatch transitions a room from lobby to a pending match,
// resetting every member's per-match state and announcing the start.
func (s *Service) StartMatch(ctx context.Context, code model.RoomCode) ([]model.MemberInfo, error) {
	if code == model.DefaultRoomCode {
		return nil, model.ErrRoomNotFound
	}

	room, err := s.storage.GetRoom(ctx, code)
	if err != nil {
		return nil, err
	}

	if room.Game != nil {
		return nil, model.ErrMatchInProgress
	}
	if len(room.Members) < 2 {
		return nil, model.ErrInsufficientPlayers
	}

	if err := s.match.Create(ctx, room); err != nil {
		return nil, err
	}

	room.UpdatedAt = s.clock.Now()
	if err := s.storage.SaveRoom(ctx, room); err != nil {
		return nil, err
	}

	members := room.MemberList()
	s.publisher.Publish(code, events.Event{
		Type:     events.TypeMatchStarted,
		RoomCode: code,
		Members:  members,
	})

	s.logger.Info("match started",
		slog.String("room", string(code)),
		slog.Int("members", len(members)),
	)
	return members, nil
}

// destroyRoom announces the closure, forces every connection out of the
// room's broadcast group, and deletes the room from the registry.
// Never called for the default room.
func (s *Service) destroyRoom(ctx context.Context, room *model.Room) error {
	if err := s.chat.PostSystemMessage(ctx, room.Code, "Room closing."); err != nil {
		s.logger.Warn("closing announcement failed",
			slog.String("room", string(room.Code)),
			slog.String("error", err.Error()),
		)
	}

	s.publisher.Publish(room.Code, events.Event{
		Type:     events.TypeRoomClosing,
		RoomCode: room.Code,
		Members:  room.MemberList(),
	})
	s.publisher.CloseRoom(room.Code)

	s.logger.Info("room destroyed", slog.String("code", string(room.Code)))
	return s.storage.DeleteRoom(ctx, room.Code)
}
