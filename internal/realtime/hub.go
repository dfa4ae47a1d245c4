package realtime

import (
	"strings"
	"sync"

	"github.com/google/uuid"

	types "github.com/yungbote/lessonplan-backend/internal/domain"
	"github.com/yungbote/lessonplan-backend/internal/observability"
	"github.com/yungbote/lessonplan-backend/internal/platform/logger"
)

const (
	EventProgress = "progress"

	// GlobalChannel carries every task's events.
	GlobalChannel = "progress"

	outboundBuffer = 32
)

// TaskChannel carries the events of a single task.
func TaskChannel(taskID string) string { return "task:" + taskID }

type Message struct {
	Channel string              `json:"channel"`
	Event   string              `json:"event"`
	Data    types.ProgressEvent `json:"data"`
}

// Hub fans progress messages out to subscribed clients. Delivery is
// best-effort: a client whose buffer is full misses the message and nobody
// else is held up. There is no replay for late subscribers.
type Hub struct {
	mu            sync.RWMutex
	logger        *logger.Logger
	subscriptions map[string]map[*Client]bool
}

func NewHub(log *logger.Logger) *Hub {
	return &Hub{
		logger:        log.With("component", "ProgressHub"),
		subscriptions: make(map[string]map[*Client]bool),
	}
}

func (hub *Hub) NewClient() *Client {
	id := uuid.New()
	return &Client{
		ID:       id,
		Channels: make(map[string]bool),
		Outbound: make(chan Message, outboundBuffer),
		Logger:   hub.logger.With("clientID", id),
		done:     make(chan struct{}),
	}
}

// Subscribe creates a client listening on the given channels
// (GlobalChannel when none are given).
func (hub *Hub) Subscribe(channels ...string) *Client {
	c := hub.NewClient()
	if len(channels) == 0 {
		channels = []string{GlobalChannel}
	}
	for _, ch := range channels {
		hub.AddChannel(c, ch)
	}
	return c
}

// Unsubscribe detaches the client and closes its outbound channel.
func (hub *Hub) Unsubscribe(c *Client) { hub.CloseClient(c) }

func (hub *Hub) AddChannel(client *Client, channel string) {
	channel = strings.TrimSpace(channel)
	if channel == "" {
		return
	}
	hub.mu.Lock()
	defer hub.mu.Unlock()

	client.Channels[channel] = true
	clients, ok := hub.subscriptions[channel]
	if !ok {
		clients = make(map[*Client]bool)
		hub.subscriptions[channel] = clients
	}
	clients[client] = true
	hub.logger.Debug("client subscribed", "clientID", client.ID, "channel", channel)
}

func (hub *Hub) RemoveChannel(client *Client, channel string) {
	channel = strings.TrimSpace(channel)
	if channel == "" {
		return
	}
	hub.mu.Lock()
	defer hub.mu.Unlock()

	delete(client.Channels, channel)
	hub.detachLocked(client, channel)
}

func (hub *Hub) RemoveClient(client *Client) {
	hub.mu.Lock()
	defer hub.mu.Unlock()

	for ch := range client.Channels {
		hub.detachLocked(client, ch)
	}
	client.Channels = make(map[string]bool)
}

func (hub *Hub) detachLocked(client *Client, channel string) {
	if subs, ok := hub.subscriptions[channel]; ok {
		delete(subs, client)
		if len(subs) == 0 {
			delete(hub.subscriptions, channel)
		}
	}
}

// Broadcast delivers msg to subscribers of msg.Channel.
func (hub *Hub) Broadcast(msg Message) {
	if msg.Channel == "" {
		return
	}
	hub.mu.RLock()
	defer hub.mu.RUnlock()
	for c := range hub.subscriptions[msg.Channel] {
		hub.offer(c, msg)
	}
}

// BroadcastEvent delivers ev once to every client subscribed to the global
// channel or to the event's task channel.
func (hub *Hub) BroadcastEvent(ev types.ProgressEvent) {
	taskCh := TaskChannel(ev.TaskID)
	hub.mu.RLock()
	defer hub.mu.RUnlock()

	seen := map[*Client]bool{}
	for _, ch := range []string{GlobalChannel, taskCh} {
		for c := range hub.subscriptions[ch] {
			if seen[c] {
				continue
			}
			seen[c] = true
			hub.offer(c, Message{Channel: ch, Event: EventProgress, Data: ev})
		}
	}
}

func (hub *Hub) offer(c *Client, msg Message) {
	select {
	case c.Outbound <- msg:
	default:
		observability.Current().IncBroadcastDropped()
		hub.logger.Warn("Dropping progress message; outbound buffer full", "clientID", c.ID, "task_id", msg.Data.TaskID)
	}
}

// SubscriberCount reports how many clients listen on channel.
func (hub *Hub) SubscriberCount(channel string) int {
	hub.mu.RLock()
	defer hub.mu.RUnlock()
	return len(hub.subscriptions[channel])
}

// CloseClient detaches the client before closing its outbound channel so no
// broadcast can send on a closed channel. Safe to call more than once.
func (hub *Hub) CloseClient(client *Client) {
	client.closeOnce.Do(func() {
		close(client.done)
		hub.RemoveClient(client)
		close(client.Outbound)
	})
}
