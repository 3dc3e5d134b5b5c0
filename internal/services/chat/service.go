// Package chat implements the per-room chat broadcaster: message
// validation, the append-only room log, and fanout to members.
package chat

import (
	"context"
	"log/slog"
	"strings"

	"github.com/nettd/lobby-server/internal/dependencies/clock"
	"github.com/nettd/lobby-server/internal/events"
	"github.com/nettd/lobby-server/internal/model"
	"github.com/nettd/lobby-server/internal/storage"
)

// Filter screens message text before it is posted. The production
// deployment may plug in an external moderation collaborator; the
// default is a pass-through.
type Filter interface {
	Clean(ctx context.Context, text string) (string, error)
}

// PassthroughFilter performs no filtering
type PassthroughFilter struct{}

// Clean returns the text unchanged
func (PassthroughFilter) Clean(_ context.Context, text string) (string, error) {
	return text, nil
}

// Service validates, logs, and broadcasts chat messages
type Service struct {
	storage   storage.Storage
	clock     clock.Clock
	publisher events.Publisher
	filter    Filter
	logger    *slog.Logger
}

// New creates a new chat service. A nil filter disables filtering.
func New(storage storage.Storage, clock clock.Clock, publisher events.Publisher, filter Filter, logger *slog.Logger) *Service {
	if filter == nil {
		filter = PassthroughFilter{}
	}
	return &Service{
		storage:   storage,
		clock:     clock,
		publisher: publisher,
		filter:    filter,
		logger:    logger.With(slog.String("component", "chat")),
	}
}

// PostResult is the payload returned to the sender and broadcast to the
// room on a successful post
type PostResult struct {
	Message model.ChatMessage
	Members []model.MemberInfo
}

// PostMessage validates and appends a message to the room's log, then
// broadcasts it with the current member list. Rules are checked in
// order: sender membership (the reserved server sender is exempt),
// maximum length, minimum length, then the optional profanity filter.
func (s *Service) PostMessage(ctx context.Context, code model.RoomCode, username, text string) (*PostResult, error) {
	room, err := s.storage.GetRoom(ctx, code)
	if err != nil {
		return nil, err
	}

	if username != model.SystemSender && !room.HasMemberNamed(username) {
		return nil, model.ErrNotInRoom
	}

	trimmed := strings.TrimSpace(text)
	maxChars := room.Chat.Config.MaxMessageChars
	if maxChars != model.UnboundedMessageChars && len([]rune(trimmed)) > maxChars {
		return nil, model.ErrMessageTooLong
	}
	if len([]rune(trimmed)) <= 1 {
		return nil, model.ErrMessageTooShort
	}

	if room.Chat.Config.FilterProfanity {
		cleaned, err := s.filter.Clean(ctx, text)
		if err != nil {
			// The filter is an optional collaborator; a failure must not
			// block chat. Post the original text.
			s.logger.Warn("profanity filter failed",
				slog.String("room", string(code)),
				slog.String("error", err.Error()),
			)
		} else {
			text = cleaned
		}
	}

	msg := model.ChatMessage{
		RoomCode:  code,
		Username:  username,
		Text:      text,
		Timestamp: s.clock.Now().UnixMilli(),
	}

	room.Chat.Append(msg)
	room.UpdatedAt = s.clock.Now()
	if err := s.storage.SaveRoom(ctx, room); err != nil {
		return nil, err
	}

	members := room.MemberList()
	s.publisher.Publish(code, events.Event{
		Type:     events.TypeMessage,
		RoomCode: code,
		Members:  members,
		Message:  &msg,
	})

	return &PostResult{Message: msg, Members: members}, nil
}

// PostSystemMessage posts a message from the reserved server sender
func (s *Service) PostSystemMessage(ctx context.Context, code model.RoomCode, text string) error {
	_, err := s.PostMessage(ctx, code, model.SystemSender, text)
	return err
}
