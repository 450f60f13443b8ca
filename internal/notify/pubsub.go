package notify

import (
	"sync"
	"time"
)

// Event topics published by the services.
const (
	TopicBillCreated     = "bill.created"
	TopicBillPaid        = "bill.paid"
	TopicPaymentReceived = "payment.received"
)

// Event describes something that happened to a bill.
type Event struct {
	Topic  string
	BillID string
	UserID string
	At     int64
}

// Hub is a small in-process publish/subscribe fan-out. It replaces
// client-side polling: services publish bill events, and any surface that
// wants change notification subscribes.
type Hub struct {
	mu   sync.RWMutex
	subs map[string][]chan Event
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[string][]chan Event)}
}

// Subscribe returns a buffered channel receiving events for the topic, and
// a cancel func that removes the subscription and closes the channel.
func (h *Hub) Subscribe(topic string) (<-chan Event, func()) {
	ch := make(chan Event, 16)

	h.mu.Lock()
	h.subs[topic] = append(h.subs[topic], ch)
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		chans := h.subs[topic]
		for i, c := range chans {
			if c == ch {
				h.subs[topic] = append(chans[:i], chans[i+1:]...)
				close(ch)
				return
			}
		}
	}
	return ch, cancel
}

// Publish delivers the event to every subscriber of its topic. Slow
// subscribers with a full buffer miss the event rather than block the
// publishing handler.
func (h *Hub) Publish(event Event) {
	if event.At == 0 {
		event.At = time.Now().Unix()
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, ch := range h.subs[event.Topic] {
		select {
		case ch <- event:
		default:
		}
	}
}
