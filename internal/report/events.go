package report

import (
	"sync"
	"time"

	"github.com/kozaktomas/photo-report/internal/constants"
)

// EventType names a state change of a report.
type EventType string

// EventType constants, one per mutating command.
const (
	EventPhotosAdded     EventType = "photos.added"
	EventPhotoRemoved    EventType = "photo.removed"
	EventPhotoCaption    EventType = "photo.caption"
	EventPhotoMoved      EventType = "photo.moved"
	EventPhotosCleared   EventType = "photos.cleared"
	EventPreviewChanged  EventType = "preview.changed"
	EventMetadataChanged EventType = "metadata.changed"
)

// Event is a change notification sent to report listeners.
type Event struct {
	Seq     uint64    `json:"seq"`
	Type    EventType `json:"type"`
	PhotoID string    `json:"photo_id,omitempty"`
	Data    any       `json:"data,omitempty"`
	At      time.Time `json:"at"`
}

// Broadcaster fans events out to listeners. Sends never block: a listener
// whose buffer is full misses the event and is expected to resync from a
// snapshot.
type Broadcaster struct {
	listeners []chan Event
	seq       uint64
	mu        sync.RWMutex
}

// AddListener adds an event listener.
func (b *Broadcaster) AddListener() chan Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	ch := make(chan Event, constants.EventChannelBuffer)
	b.listeners = append(b.listeners, ch)
	return ch
}

// RemoveListener removes an event listener and closes its channel.
func (b *Broadcaster) RemoveListener(ch chan Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, listener := range b.listeners {
		if listener == ch {
			b.listeners = append(b.listeners[:i], b.listeners[i+1:]...)
			close(ch)
			return
		}
	}
}

// ListenerCount returns the number of attached listeners.
func (b *Broadcaster) ListenerCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.listeners)
}

// SendEvent stamps the event with the next sequence number and sends it to
// all listeners.
func (b *Broadcaster) SendEvent(event Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.seq++
	event.Seq = b.seq
	if event.At.IsZero() {
		event.At = time.Now()
	}
	for _, listener := range b.listeners {
		select {
		case listener <- event:
		default:
			// Listener buffer full, skip.
		}
	}
}
