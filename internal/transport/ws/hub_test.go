package ws

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/nettd/lobby-server/internal/events"
	"github.com/nettd/lobby-server/internal/model"
	"github.com/nettd/lobby-server/internal/services/session"
	"github.com/nettd/lobby-server/internal/testutil"
)

type HubSuite struct {
	suite.Suite
	hubs *HubManager
}

func TestHubSuite(t *testing.T) {
	suite.Run(t, new(HubSuite))
}

func (s *HubSuite) SetupTest() {
	s.hubs = NewHubManager(testutil.NopLogger())
}

// testConn builds a connection without a socket; enqueue and the send
// channel are all the hub touches.
func testConn(id string) *Conn {
	return newConn(session.ConnID(id), nil)
}

func (s *HubSuite) receive(c *Conn) events.Event {
	select {
	case frame := <-c.send:
		var ev events.Event
		s.Require().NoError(json.Unmarshal(frame, &ev))
		return ev
	default:
		s.Require().FailNow("no frame queued")
		return events.Event{}
	}
}

func (s *HubSuite) TestPublishReachesSubscribers() {
	alice := testConn("alice")
	bob := testConn("bob")
	s.hubs.Subscribe("AB12", alice)
	s.hubs.Subscribe("AB12", bob)

	s.hubs.Publish("AB12", events.Event{
		Type:     events.TypeMessage,
		RoomCode: "AB12",
		Message:  &model.ChatMessage{Username: "alice", Text: "hello"},
	})

	for _, c := range []*Conn{alice, bob} {
		ev := s.receive(c)
		s.Equal(events.TypeMessage, ev.Type)
		s.Equal(model.RoomCode("AB12"), ev.RoomCode)
		s.Require().NotNil(ev.Message)
		s.Equal("hello", ev.Message.Text)
	}
}

func (s *HubSuite) TestPublishScopedToRoom() {
	alice := testConn("alice")
	bob := testConn("bob")
	s.hubs.Subscribe("AB12", alice)
	s.hubs.Subscribe("CD34", bob)

	s.hubs.Publish("AB12", events.Event{Type: events.TypeMembers, RoomCode: "AB12"})

	s.Len(alice.send, 1)
	s.Empty(bob.send)
}

func (s *HubSuite) TestPublishToUnknownRoomIsNoOp() {
	s.hubs.Publish("ZZZZ", events.Event{Type: events.TypeMembers, RoomCode: "ZZZZ"})
	s.Zero(s.hubs.SubscriberCount("ZZZZ"))
}

func (s *HubSuite) TestUnsubscribeStopsDelivery() {
	alice := testConn("alice")
	s.hubs.Subscribe("AB12", alice)
	s.hubs.Unsubscribe("AB12", alice)

	s.hubs.Publish("AB12", events.Event{Type: events.TypeMembers, RoomCode: "AB12"})
	s.Empty(alice.send)
}

func (s *HubSuite) TestEmptyHubReaped() {
	alice := testConn("alice")
	s.hubs.Subscribe("AB12", alice)
	s.Equal(1, s.hubs.SubscriberCount("AB12"))

	s.hubs.Unsubscribe("AB12", alice)

	s.hubs.mu.RLock()
	_, ok := s.hubs.hubs["AB12"]
	s.hubs.mu.RUnlock()
	s.False(ok)
}

func (s *HubSuite) TestDefaultRoomHubSurvivesEmptying() {
	alice := testConn("alice")
	s.hubs.Subscribe(model.DefaultRoomCode, alice)
	s.hubs.Unsubscribe(model.DefaultRoomCode, alice)

	s.hubs.mu.RLock()
	_, ok := s.hubs.hubs[model.DefaultRoomCode]
	s.hubs.mu.RUnlock()
	s.True(ok)
	s.Zero(s.hubs.SubscriberCount(model.DefaultRoomCode))
}

func (s *HubSuite) TestCloseRoomDropsHub() {
	alice := testConn("alice")
	s.hubs.Subscribe("AB12", alice)

	s.hubs.CloseRoom("AB12")

	s.Zero(s.hubs.SubscriberCount("AB12"))
	s.hubs.Publish("AB12", events.Event{Type: events.TypeMembers, RoomCode: "AB12"})
	s.Empty(alice.send)
}

func (s *HubSuite) TestSlowClientFramesDropped() {
	slow := testConn("slow")
	s.hubs.Subscribe("AB12", slow)

	for i := 0; i < sendBufferSize; i++ {
		s.True(slow.enqueue([]byte("{}")))
	}

	s.hubs.Publish("AB12", events.Event{Type: events.TypeMembers, RoomCode: "AB12"})
	s.Len(slow.send, sendBufferSize)
}
