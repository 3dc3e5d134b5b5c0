// Package ws is the realtime gateway: it upgrades HTTP connections to
// websockets, dispatches operation frames to the services, and fans
// room events back out to subscribed connections.
package ws

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/coder/websocket"
	"github.com/google/uuid"

	"github.com/nettd/lobby-server/internal/api/apierr"
	"github.com/nettd/lobby-server/internal/dependencies/clock"
	"github.com/nettd/lobby-server/internal/events"
	"github.com/nettd/lobby-server/internal/model"
	"github.com/nettd/lobby-server/internal/protocol"
	"github.com/nettd/lobby-server/internal/services/chat"
	"github.com/nettd/lobby-server/internal/services/identity"
	"github.com/nettd/lobby-server/internal/services/match"
	"github.com/nettd/lobby-server/internal/services/room"
	"github.com/nettd/lobby-server/internal/services/session"
)

// welcomeMessage greets a user whenever they explicitly enter the
// default room
const welcomeMessage = "Welcome to NetTD!"

// Gateway terminates websocket connections and runs the operation
// loop. Operations across all connections are serialized by a single
// dispatch lock, which makes every operation run to completion before
// the next one observes state.
type Gateway struct {
	tracker  *session.Tracker
	identity *identity.Service
	rooms    *room.Service
	chat     *chat.Service
	match    *match.Service
	hubs     *HubManager
	clock    clock.Clock
	token    string
	logger   *slog.Logger

	mu sync.Mutex
}

// NewGateway creates the realtime gateway. An empty token disables the
// connection gate.
func NewGateway(
	tracker *session.Tracker,
	identityService *identity.Service,
	roomService *room.Service,
	chatService *chat.Service,
	matchService *match.Service,
	hubs *HubManager,
	clock clock.Clock,
	token string,
	logger *slog.Logger,
) *Gateway {
	return &Gateway{
		tracker:  tracker,
		identity: identityService,
		rooms:    roomService,
		chat:     chatService,
		match:    matchService,
		hubs:     hubs,
		clock:    clock,
		token:    token,
		logger:   logger.With(slog.String("component", "gateway")),
	}
}

// ServeHTTP upgrades the request and runs the connection's read loop
// until the peer disconnects.
func (g *Gateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if g.token != "" {
		supplied := r.URL.Query().Get("token")
		if subtle.ConstantTimeCompare([]byte(supplied), []byte(g.token)) != 1 {
			apierr.WriteError(w, apierr.NewUnauthorizedError())
			return
		}
	}

	sock, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		g.logger.Warn("websocket accept failed", slog.String("error", err.Error()))
		return
	}

	connID := session.ConnID(uuid.NewString())
	c := newConn(connID, sock)
	g.tracker.Connect(connID)
	g.logger.Info("connection opened",
		slog.String("conn", string(connID)),
		slog.String("remote", r.RemoteAddr))

	ctx := r.Context()
	go c.writePump(ctx)
	defer g.teardown(context.WithoutCancel(ctx), c, sock)

	for {
		typ, data, err := sock.Read(ctx)
		if err != nil {
			status := websocket.CloseStatus(err)
			if status != websocket.StatusNormalClosure && status != websocket.StatusGoingAway && ctx.Err() == nil {
				g.logger.Debug("read ended",
					slog.String("conn", string(connID)),
					slog.String("error", err.Error()))
			}
			return
		}
		if typ != websocket.MessageText {
			continue
		}
		g.dispatch(ctx, c, data)
	}
}

// teardown runs the full disconnect cascade. The context is detached
// from the request so storage writes survive the peer going away.
func (g *Gateway) teardown(ctx context.Context, c *Conn, sock *websocket.Conn) {
	g.mu.Lock()
	if c.room != "" {
		g.hubs.Unsubscribe(c.room, c)
		c.room = ""
	}
	g.tracker.Disconnect(ctx, c.id)
	g.mu.Unlock()

	c.close()
	_ = sock.Close(websocket.StatusNormalClosure, "")
	g.logger.Info("connection closed", slog.String("conn", string(c.id)))
}

// dispatch decodes one request frame and runs its operation under the
// dispatch lock
func (g *Gateway) dispatch(ctx context.Context, c *Conn, raw []byte) {
	var req protocol.Request
	if err := json.Unmarshal(raw, &req); err != nil || req.Op == "" {
		c.reply(g.logger, protocol.Reply{
			Op:    req.Op,
			Error: errorBody(apierr.NewInvalidRequestError("Malformed frame")),
		})
		return
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	var data any
	var err error
	switch req.Op {
	case protocol.OpRegister:
		data, err = g.handleRegister(ctx, req.Data)
	case protocol.OpAuth:
		data, err = g.handleAuth(ctx, c, req.Data)
	case protocol.OpJoinRoom:
		data, err = g.handleJoinRoom(ctx, c, req.Data)
	case protocol.OpHostRoom:
		data, err = g.handleHostRoom(ctx, c)
	case protocol.OpMessage:
		data, err = g.handleMessage(ctx, c, req.Data)
	case protocol.OpStartMatch:
		data, err = g.handleStartMatch(ctx, c, req.Data)
	case protocol.OpReady:
		data, err = g.handleReady(ctx, c, req.Data)
	default:
		err = apierr.NewInvalidRequestError("Unknown operation")
	}

	if err != nil {
		g.logger.Info("operation rejected",
			slog.String("conn", string(c.id)),
			slog.String("op", req.Op),
			slog.String("error", err.Error()))
		c.reply(g.logger, protocol.Reply{Op: req.Op, Error: errorBody(err)})
		return
	}
	c.reply(g.logger, protocol.Reply{Op: req.Op, Data: data})

	// The welcome greeting trails the reply, addressed to the joiner only
	if req.Op == protocol.OpJoinRoom {
		if rr, ok := data.(protocol.RoomResponse); ok && rr.RoomCode == string(model.DefaultRoomCode) {
			g.greet(c, rr.Members)
		}
	}
}

func (g *Gateway) handleRegister(ctx context.Context, raw json.RawMessage) (any, error) {
	p, err := decodePayload[protocol.RegisterRequest](raw)
	if err != nil {
		return nil, err
	}

	user, err := g.identity.Register(ctx, p.Username, p.Secret)
	if err != nil {
		return nil, err
	}
	return protocol.IdentityResponse{
		ID:       string(user.ID),
		Username: user.Username,
		Secret:   p.Secret,
	}, nil
}

func (g *Gateway) handleAuth(ctx context.Context, c *Conn, raw json.RawMessage) (any, error) {
	p, err := decodePayload[protocol.AuthRequest](raw)
	if err != nil {
		return nil, err
	}

	// Subscribe ahead of the default-room admission so the joiner sees
	// its own membership broadcast. A connection that already holds a
	// subscription keeps it untouched; the rollback below must never
	// strip a live session's fanout.
	fresh := c.room == ""
	if fresh {
		g.hubs.Subscribe(model.DefaultRoomCode, c)
	}
	user, err := g.tracker.Authenticate(ctx, c.id, model.UserID(p.ID), p.Username, p.Secret)
	if err != nil {
		if fresh {
			g.hubs.Unsubscribe(model.DefaultRoomCode, c)
		}
		return nil, err
	}
	c.room = model.DefaultRoomCode

	return protocol.IdentityResponse{
		ID:       string(user.ID),
		Username: user.Username,
		Secret:   p.Secret,
	}, nil
}

func (g *Gateway) handleJoinRoom(ctx context.Context, c *Conn, raw json.RawMessage) (any, error) {
	user, err := g.tracker.Guard(c.id)
	if err != nil {
		return nil, err
	}
	p, err := decodePayload[protocol.JoinRoomRequest](raw)
	if err != nil {
		return nil, err
	}

	code := model.RoomCode(strings.ToUpper(p.RoomCode))
	if !model.ValidRoomCode(code) {
		return nil, model.ErrMalformedRoomCode
	}

	// Re-entering the default room while already home is a no-op that
	// still answers with the membership roster
	if code == model.DefaultRoomCode && user.CurrentRoom == model.DefaultRoomCode {
		home, err := g.rooms.GetRoom(ctx, code)
		if err != nil {
			return nil, err
		}
		return protocol.RoomResponse{RoomCode: string(code), Members: home.MemberList()}, nil
	}

	return g.moveTo(ctx, c, user, code)
}

func (g *Gateway) handleHostRoom(ctx context.Context, c *Conn) (any, error) {
	user, err := g.tracker.Guard(c.id)
	if err != nil {
		return nil, err
	}

	created, err := g.rooms.CreateRoom(ctx, room.HostedRoomCapacity)
	if err != nil {
		return nil, err
	}
	return g.moveTo(ctx, c, user, created.Code)
}

// moveTo switches the connection's broadcast subscription and room
// membership together. The new subscription is attached before the
// join so the member broadcast reaches the mover; the old one is
// dropped after the leave so any closing broadcasts do too.
func (g *Gateway) moveTo(ctx context.Context, c *Conn, user *model.User, code model.RoomCode) (any, error) {
	prev := c.room
	if prev != code {
		g.hubs.Subscribe(code, c)
	}

	joined, err := g.rooms.JoinRoom(ctx, user, code)
	if err != nil {
		if prev != code {
			g.hubs.Unsubscribe(code, c)
		}
		return nil, err
	}

	if prev != "" && prev != code {
		g.hubs.Unsubscribe(prev, c)
	}
	c.room = code

	return protocol.RoomResponse{RoomCode: string(code), Members: joined.MemberList()}, nil
}

func (g *Gateway) handleMessage(ctx context.Context, c *Conn, raw json.RawMessage) (any, error) {
	user, err := g.tracker.Guard(c.id)
	if err != nil {
		return nil, err
	}
	p, err := decodePayload[protocol.MessageRequest](raw)
	if err != nil {
		return nil, err
	}

	code := model.RoomCode(strings.ToUpper(p.RoomCode))
	res, err := g.chat.PostMessage(ctx, code, user.Username, p.Text)
	if err != nil {
		return nil, err
	}
	return protocol.MessageResponse{Message: res.Message, Members: res.Members}, nil
}

func (g *Gateway) handleStartMatch(ctx context.Context, c *Conn, raw json.RawMessage) (any, error) {
	if _, err := g.tracker.Guard(c.id); err != nil {
		return nil, err
	}
	p, err := decodePayload[protocol.StartMatchRequest](raw)
	if err != nil {
		return nil, err
	}

	code := model.RoomCode(strings.ToUpper(p.RoomCode))
	members, err := g.rooms.StartMatch(ctx, code)
	if err != nil {
		return nil, err
	}
	return protocol.RoomResponse{RoomCode: string(code), Members: members}, nil
}

func (g *Gateway) handleReady(ctx context.Context, c *Conn, raw json.RawMessage) (any, error) {
	user, err := g.tracker.Guard(c.id)
	if err != nil {
		return nil, err
	}
	p, err := decodePayload[protocol.ReadyRequest](raw)
	if err != nil {
		return nil, err
	}

	code := model.RoomCode(strings.ToUpper(p.RoomCode))
	members, err := g.match.SetReady(ctx, code, user.ID)
	if err != nil {
		return nil, err
	}
	return protocol.RoomResponse{RoomCode: string(code), Members: members}, nil
}

// greet queues the server welcome for the connection that just entered
// the default room. The greeting is addressed, not broadcast, and is
// not recorded in the room log.
func (g *Gateway) greet(c *Conn, members []model.MemberInfo) {
	msg := model.ChatMessage{
		RoomCode:  model.DefaultRoomCode,
		Username:  model.SystemSender,
		Text:      welcomeMessage,
		Timestamp: g.clock.Now().UnixMilli(),
	}
	frame, err := json.Marshal(events.Event{
		Type:     events.TypeMessage,
		RoomCode: model.DefaultRoomCode,
		Members:  members,
		Message:  &msg,
	})
	if err != nil {
		g.logger.Error("greeting encode failed")
		return
	}
	c.enqueue(frame)
}

// decodePayload unmarshals and validates an operation payload
func decodePayload[T any](raw json.RawMessage) (*T, error) {
	if len(raw) == 0 {
		return nil, apierr.NewInvalidRequestError("Missing payload")
	}
	var p T
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, apierr.NewInvalidRequestError("Malformed payload")
	}
	if err := protocol.Validate(&p); err != nil {
		return nil, err
	}
	return &p, nil
}

func errorBody(err error) *protocol.ErrorBody {
	d := apierr.Describe(err)
	return &protocol.ErrorBody{Code: d.Code, Message: d.Message}
}
