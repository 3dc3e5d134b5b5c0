// Package match implements the game readiness state machine: per-room
// ready tracking that gates the pending -> active transition.
package match

import (
	"context"
	"log/slog"

	"github.com/nettd/lobby-server/internal/dependencies/clock"
	"github.com/nettd/lobby-server/internal/events"
	"github.com/nettd/lobby-server/internal/model"
	"github.com/nettd/lobby-server/internal/storage"
)

// Service manages match lifecycle and readiness for rooms
type Service struct {
	storage   storage.Storage
	clock     clock.Clock
	publisher events.Publisher
	logger    *slog.Logger
}

// New creates a new match service
func New(storage storage.Storage, clock clock.Clock, publisher events.Publisher, logger *slog.Logger) *Service {
	return &Service{
		storage:   storage,
		clock:     clock,
		publisher: publisher,
		logger:    logger.With(slog.String("component", "match")),
	}
}

// Create attaches a pending game to the room and resets every member's
// per-match state. The caller has already validated the start
// preconditions and saves the room afterwards.
func (s *Service) Create(ctx context.Context, room *model.Room) error {
	room.Game = &model.Game{
		RoomCode:  room.Code,
		State:     model.GameStatePending,
		StartedAt: s.clock.Now(),
	}

	for _, m := range room.Members {
		user, err := s.storage.GetUser(ctx, m.UserID)
		if err != nil {
			return err
		}
		user.Match = model.NewMatchInfo()
		if err := s.storage.SaveUser(ctx, user); err != nil {
			return err
		}
	}

	return nil
}

// SetReady flags the user as ready in their room's pending match. When
// the last member readies up the match transitions to active and the
// all-ready event fires, exactly once.
func (s *Service) SetReady(ctx context.Context, code model.RoomCode, userID model.UserID) ([]model.MemberInfo, error) {
	if code == model.DefaultRoomCode {
		return nil, model.ErrRoomNotFound
	}

	room, err := s.storage.GetRoom(ctx, code)
	if err != nil {
		return nil, err
	}

	if room.Game == nil {
		return nil, model.ErrNoMatchInProgress
	}
	if !room.HasMember(userID) {
		return nil, model.ErrNotInRoom
	}
	if room.Game.State != model.GameStatePending {
		return nil, model.ErrMatchNotPending
	}

	user, err := s.storage.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	user.Match.Ready = true
	if err := s.storage.SaveUser(ctx, user); err != nil {
		return nil, err
	}

	allReady, err := s.allMembersReady(ctx, room)
	if err != nil {
		return nil, err
	}

	members := room.MemberList()

	if allReady {
		room.Game.State = model.GameStateActive
		room.UpdatedAt = s.clock.Now()
		if err := s.storage.SaveRoom(ctx, room); err != nil {
			return nil, err
		}

		s.logger.Info("match active",
			slog.String("room", string(code)),
			slog.Int("members", len(members)),
		)
		s.publisher.Publish(code, events.Event{
			Type:     events.TypeAllReady,
			RoomCode: code,
			Members:  members,
		})
		return members, nil
	}

	s.publisher.Publish(code, events.Event{
		Type:     events.TypeReady,
		RoomCode: code,
		Members:  members,
	})
	return members, nil
}

// End discards the room's game and announces the match end. It is safe
// to call on a room without a game. The caller saves the room.
func (s *Service) End(ctx context.Context, room *model.Room) {
	if room.Game == nil {
		return
	}
	room.Game = nil

	s.logger.Info("match ended", slog.String("room", string(room.Code)))
	s.publisher.Publish(room.Code, events.Event{
		Type:     events.TypeMatchEnded,
		RoomCode: room.Code,
		Members:  room.MemberList(),
	})
}

// allMembersReady is the transition guard: true when every current
// member's ready flag is set
func (s *Service) allMembersReady(ctx context.Context, room *model.Room) (bool, error) {
	for _, m := range room.Members {
		user, err := s.storage.GetUser(ctx, m.UserID)
		if err != nil {
			return false, err
		}
		if !user.Match.Ready {
			return false, nil
		}
	}
	return true, nil
}
