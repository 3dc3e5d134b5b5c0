// Package session implements the session tracker: which connections
// are still unauthenticated, which user records are active, and the
// ordered teardown that runs on disconnect. Sessions are process
// lifetime only and are not persisted.
package session

import (
	"context"
	"log/slog"
	"sync"

	"github.com/nettd/lobby-server/internal/model"
	"github.com/nettd/lobby-server/internal/services/identity"
	"github.com/nettd/lobby-server/internal/services/room"
	"github.com/nettd/lobby-server/internal/storage"
)

// ConnID identifies a live transport connection
type ConnID string

// Tracker enforces at most one active session per username and gates
// every action on a completed authenticate.
type Tracker struct {
	identity *identity.Service
	rooms    *room.Service
	storage  storage.Storage
	logger   *slog.Logger

	mu sync.Mutex
	// unauth holds connections that opened but have not authenticated
	unauth map[ConnID]struct{}
	// active maps a connection to its resolved user record; a record
	// appears under at most one connection
	active map[ConnID]*model.User
	// activeNames indexes active sessions by username for the
	// single-session check
	activeNames map[string]ConnID
}

// NewTracker creates a new session tracker
func NewTracker(identityService *identity.Service, roomService *room.Service, storage storage.Storage, logger *slog.Logger) *Tracker {
	return &Tracker{
		identity:    identityService,
		rooms:       roomService,
		storage:     storage,
		logger:      logger.With(slog.String("component", "session")),
		unauth:      make(map[ConnID]struct{}),
		active:      make(map[ConnID]*model.User),
		activeNames: make(map[string]ConnID),
	}
}

// Connect registers a newly opened, not yet authenticated connection
func (t *Tracker) Connect(connID ConnID) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.unauth[connID] = struct{}{}
}

// Authenticate resolves the claimed identity, activates the session,
// and admits the user into the default room. A username with a live
// session elsewhere is rejected, as is a connection that already
// authenticated.
func (t *Tracker) Authenticate(ctx context.Context, connID ConnID, claimedID model.UserID, username, secret string) (*model.User, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, taken := t.activeNames[username]; taken {
		return nil, model.ErrAlreadyLoggedIn
	}
	if _, pending := t.unauth[connID]; !pending {
		// Connection already holds a session
		return nil, model.ErrAlreadyLoggedIn
	}

	user, err := t.identity.Resolve(ctx, claimedID, username, secret)
	if err != nil {
		return nil, err
	}

	delete(t.unauth, connID)
	t.active[connID] = user
	t.activeNames[user.Username] = connID

	if _, err := t.rooms.JoinRoom(ctx, user, model.DefaultRoomCode); err != nil {
		t.logger.Warn("default room admission failed",
			slog.String("username", user.Username),
			slog.String("error", err.Error()),
		)
	}

	t.logger.Info("session activated",
		slog.String("username", user.Username),
		slog.String("conn", string(connID)),
	)
	return user, nil
}

// Guard returns the connection's active user record, or
// ErrNotAuthenticated. Every op entry point other than register and
// authenticate goes through this.
func (t *Tracker) Guard(connID ConnID) (*model.User, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, pending := t.unauth[connID]; pending {
		return nil, model.ErrNotAuthenticated
	}
	user, ok := t.active[connID]
	if !ok {
		return nil, model.ErrNotAuthenticated
	}
	return user, nil
}

// Disconnect tears down the connection's session. The steps are
// ordered and individually idempotent so a partial failure cannot
// leave the registries inconsistent: leave the current room, detach
// from the default room, deactivate the session.
func (t *Tracker) Disconnect(ctx context.Context, connID ConnID) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, pending := t.unauth[connID]; pending {
		delete(t.unauth, connID)
		return
	}

	user, ok := t.active[connID]
	if !ok {
		return
	}

	if err := t.rooms.LeaveCurrentRoom(ctx, user); err != nil {
		t.logger.Warn("room leave during disconnect failed",
			slog.String("username", user.Username),
			slog.String("error", err.Error()),
		)
	}
	t.detachFromDefaultRoom(ctx, user)

	delete(t.active, connID)
	delete(t.activeNames, user.Username)

	t.logger.Info("session deactivated", slog.String("username", user.Username))
}

// ActiveSessions reports the number of live authenticated sessions
func (t *Tracker) ActiveSessions() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.active)
}

// detachFromDefaultRoom removes any leftover default-room membership.
// Normally a no-op after LeaveCurrentRoom, it exists as an independent
// teardown step so a dangling membership can never outlive the session.
func (t *Tracker) detachFromDefaultRoom(ctx context.Context, user *model.User) {
	defaultRoom, err := t.storage.GetRoom(ctx, model.DefaultRoomCode)
	if err != nil {
		return
	}
	if defaultRoom.RemoveMember(user.ID) {
		_ = t.storage.SaveRoom(ctx, defaultRoom)
	}
}
