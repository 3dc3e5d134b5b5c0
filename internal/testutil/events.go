package testutil

import (
	"sync"

	"github.com/nettd/lobby-server/internal/events"
	"github.com/nettd/lobby-server/internal/model"
)

// EventRecorder captures published events for assertions
type EventRecorder struct {
	mu     sync.Mutex
	Events []events.Event
	Closed []model.RoomCode
}

// NewEventRecorder creates an empty recorder
func NewEventRecorder() *EventRecorder {
	return &EventRecorder{}
}

// Publish records the event
func (r *EventRecorder) Publish(room model.RoomCode, ev events.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Events = append(r.Events, ev)
}

// CloseRoom records the closure
func (r *EventRecorder) CloseRoom(room model.RoomCode) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Closed = append(r.Closed, room)
}

// OfType returns the recorded events with the given type, in order
func (r *EventRecorder) OfType(t events.Type) []events.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []events.Event
	for _, ev := range r.Events {
		if ev.Type == t {
			out = append(out, ev)
		}
	}
	return out
}

// Last returns the most recently recorded event, or nil
func (r *EventRecorder) Last() *events.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.Events) == 0 {
		return nil
	}
	ev := r.Events[len(r.Events)-1]
	return &ev
}

var _ events.Publisher = (*EventRecorder)(nil)
