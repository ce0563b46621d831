package realtime

import (
	"log/slog"
	"sync"
	"time"

	"github.com/mcoot/blackjack-go/internal/model"
)

const subscriberBufferSize = 64

// Subscriber is one listener on a room hub: a WebSocket player or an SSE
// spectator. The hub closes Send when the subscriber is removed.
type Subscriber struct {
	ID          string
	Send        chan Message
	connectedAt time.Time
}

// NewSubscriber creates a subscriber with a buffered outbox
func NewSubscriber(id string) *Subscriber {
	return &Subscriber{
		ID:          id,
		Send:        make(chan Message, subscriberBufferSize),
		connectedAt: time.Now(),
	}
}

type hubOp struct {
	msg   Message
	close bool
}

// Hub fans room messages out to subscribers. Messages and the final close
// travel through one channel, so subscribers see them in publish order and
// a closing message is delivered before the hub stops.
type Hub struct {
	code        model.RoomCode
	subscribers map[*Subscriber]bool
	closed      bool
	mu          sync.RWMutex
	logger      *slog.Logger

	ops       chan hubOp
	stopped   chan struct{}
	closeOnce sync.Once
}

// NewHub creates a hub for a room. Call Run to start it.
func NewHub(code model.RoomCode, logger *slog.Logger) *Hub {
	return &Hub{
		code:        code,
		subscribers: make(map[*Subscriber]bool),
		logger:      logger.With(slog.String("room_code", string(code))),
		ops:         make(chan hubOp, 256),
		stopped:     make(chan struct{}),
	}
}

// Run delivers broadcasts until Close
func (h *Hub) Run() {
	defer close(h.stopped)
	h.logger.Debug("room hub started")

	for op := range h.ops {
		if op.close {
			h.mu.Lock()
			h.closed = true
			count := len(h.subscribers)
			for sub := range h.subscribers {
				close(sub.Send)
				delete(h.subscribers, sub)
			}
			h.mu.Unlock()
			h.logger.Debug("room hub stopped", slog.Int("disconnected", count))
			return
		}
		h.fanOut(op.msg)
	}
}

func (h *Hub) fanOut(msg Message) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	dropped := 0
	for sub := range h.subscribers {
		select {
		case sub.Send <- msg:
		default:
			dropped++
			h.logger.Warn("message dropped, subscriber buffer full",
				slog.String("subscriber", sub.ID),
				slog.String("type", string(msg.Type)))
		}
	}
	if dropped > 0 {
		h.logger.Warn("broadcast partially delivered", slog.Int("dropped", dropped), slog.Int("total", len(h.subscribers)))
	}
}

// Register adds a subscriber. Messages broadcast after Register returns
// reach it. Registering on a stopped hub closes the subscriber at once.
func (h *Hub) Register(sub *Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		close(sub.Send)
		return
	}
	h.subscribers[sub] = true
	h.logger.Debug("subscriber registered", slog.String("subscriber", sub.ID), slog.Int("total", len(h.subscribers)))
}

// Unregister removes a subscriber and closes its Send channel
func (h *Hub) Unregister(sub *Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.subscribers[sub] {
		return
	}
	delete(h.subscribers, sub)
	close(sub.Send)
	h.logger.Debug("subscriber unregistered",
		slog.String("subscriber", sub.ID),
		slog.Duration("connection_duration", time.Since(sub.connectedAt)),
		slog.Int("total", len(h.subscribers)))
}

// Broadcast queues msg for every subscriber
func (h *Hub) Broadcast(msg Message) {
	select {
	case h.ops <- hubOp{msg: msg}:
	case <-h.stopped:
	default:
		h.logger.Warn("broadcast dropped, hub buffer full", slog.String("type", string(msg.Type)))
	}
}

// Close stops the hub after everything already broadcast is delivered
func (h *Hub) Close() {
	h.closeOnce.Do(func() {
		select {
		case h.ops <- hubOp{close: true}:
		case <-h.stopped:
		}
	})
}

// Done is closed once the hub has stopped
func (h *Hub) Done() <-chan struct{} {
	return h.stopped
}

// SubscriberCount returns the number of registered subscribers
func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}

// HubManager owns one hub per active room
type HubManager struct {
	hubs   map[model.RoomCode]*Hub
	mu     sync.Mutex
	logger *slog.Logger
}

// NewHubManager creates a new HubManager
func NewHubManager(logger *slog.Logger) *HubManager {
	return &HubManager{
		hubs:   make(map[model.RoomCode]*Hub),
		logger: logger.With(slog.String("component", "realtime")),
	}
}

// Subscribe registers sub on the room's hub, starting one if needed.
// Registration happens under the manager lock so a concurrent
// RemoveIfEmpty cannot retire the hub in between.
func (m *HubManager) Subscribe(code model.RoomCode, sub *Subscriber) *Hub {
	m.mu.Lock()
	defer m.mu.Unlock()

	hub, ok := m.hubs[code]
	if !ok {
		hub = NewHub(code, m.logger)
		m.hubs[code] = hub
		go hub.Run()
	}
	hub.Register(sub)
	return hub
}

// GetHub returns the room's hub, or nil
func (m *HubManager) GetHub(code model.RoomCode) *Hub {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.hubs[code]
}

// RemoveHub closes and forgets the room's hub
func (m *HubManager) RemoveHub(code model.RoomCode) {
	m.mu.Lock()
	hub, ok := m.hubs[code]
	delete(m.hubs, code)
	m.mu.Unlock()

	if ok {
		hub.Close()
		m.logger.Debug("room hub removed", slog.String("room_code", string(code)))
	}
}

// RemoveIfEmpty drops the room's hub when nobody is subscribed
func (m *HubManager) RemoveIfEmpty(code model.RoomCode) {
	m.mu.Lock()
	hub, ok := m.hubs[code]
	if !ok || hub.SubscriberCount() > 0 {
		m.mu.Unlock()
		return
	}
	delete(m.hubs, code)
	m.mu.Unlock()
	hub.Close()
}

// HubCount returns the number of live hubs
func (m *HubManager) HubCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.hubs)
}
