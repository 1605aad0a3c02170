package stream

import (
	"github.com/google/uuid"

	"github.com/preston-bernstein/nba-stream-service/internal/domain/pbp"
)

const defaultSinkBuffer = 16

// Subscriber is one viewer's sink on a game stream. Updates arrive on a
// bounded queue; when the viewer falls behind, the oldest queued update is
// dropped so the stream stays current.
type Subscriber struct {
	id string
	ch chan pbp.Update
}

func newSubscriber(buffer int) *Subscriber {
	if buffer <= 0 {
		buffer = defaultSinkBuffer
	}
	return &Subscriber{
		id: uuid.NewString(),
		ch: make(chan pbp.Update, buffer),
	}
}

// ID returns the subscriber's unique identifier.
func (s *Subscriber) ID() string {
	return s.id
}

// Updates returns the subscriber's receive channel. The channel is closed
// when the stream ends; a game_over update precedes the close.
func (s *Subscriber) Updates() <-chan pbp.Update {
	return s.ch
}

// push enqueues an update, evicting the oldest queued one if the sink is
// full. Only the stream's poll loop calls push, so there is a single
// producer; the consumer may drain concurrently.
func (s *Subscriber) push(u pbp.Update) (dropped bool) {
	select {
	case s.ch <- u:
		return false
	default:
	}

	select {
	case <-s.ch:
	default:
	}

	select {
	case s.ch <- u:
	default:
	}
	return true
}

// closeSink is only called by the poll loop during teardown, never by
// Unsubscribe: the loop may still hold a broadcast snapshot referencing
// this sink.
func (s *Subscriber) closeSink() {
	close(s.ch)
}
