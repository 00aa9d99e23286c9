// Package websocket pushes view state transitions to the browsers watching
// them, optionally fanned out across replicas through Redis pub/sub.
package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"content-summarizer-web/internal/middleware"
	"content-summarizer-web/internal/models"
)

const (
	channelPrefix = "view_updates:"
	writeWait     = 10 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// TokenParser verifies a visitor token.
type TokenParser interface {
	ParseToken(token string) (string, error)
}

// ViewSource looks up a view's owner and its current state message.
type ViewSource interface {
	Watch(viewID string) (owner string, current models.WSMessage, ok bool)
}

type client struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *client) write(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// subscription is one view's Redis channel. ready closes once Redis has
// confirmed it, or it failed.
type subscription struct {
	cancel context.CancelFunc
	ready  chan struct{}
}

type Hub struct {
	mu            sync.RWMutex
	connections   map[string][]*client
	redisClient   *redis.Client
	auth          TokenParser
	views         ViewSource
	subscriptions map[string]*subscription
	log           *logrus.Logger
}

// NewHub creates a hub. With a nil redisClient messages are delivered only
// to connections held by this process.
func NewHub(redisClient *redis.Client, auth TokenParser, views ViewSource, log *logrus.Logger) *Hub {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Hub{
		connections:   make(map[string][]*client),
		redisClient:   redisClient,
		auth:          auth,
		views:         views,
		subscriptions: make(map[string]*subscription),
		log:           log,
	}
}

func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	viewID := r.URL.Query().Get("view")
	if viewID == "" {
		http.Error(w, "Missing view", http.StatusBadRequest)
		return
	}

	// Authenticate via token query param or the visitor cookie
	tokenStr := r.URL.Query().Get("token")
	if tokenStr == "" {
		if c, err := r.Cookie(middleware.VisitorCookie); err == nil {
			tokenStr = c.Value
		}
	}
	if tokenStr == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	userID, err := h.auth.ParseToken(tokenStr)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	owner, _, ok := h.views.Watch(viewID)
	if !ok {
		http.Error(w, "View not found", http.StatusNotFound)
		return
	}
	if owner != userID {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.WithError(err).Warn("WebSocket upgrade failed")
		return
	}

	c := &client{conn: conn}
	ready := h.registerConnection(viewID, c)

	// Read the state only once transitions can reach this connection, so
	// none falls between the snapshot and the subscription.
	select {
	case <-ready:
	case <-time.After(writeWait):
		h.log.WithField("view_id", viewID).Warn("Redis subscription not confirmed, sending state anyway")
	}
	if _, current, ok := h.views.Watch(viewID); ok {
		if data, err := json.Marshal(current); err == nil {
			c.write(data)
		}
	}

	// Keep connection alive and handle disconnect
	go func() {
		defer h.unregisterConnection(viewID, c)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}
	}()
}

// Publish delivers msg to every connection watching viewID.
func (h *Hub) Publish(viewID string, msg models.WSMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.log.WithError(err).WithField("view_id", viewID).Error("Failed to encode websocket message")
		return
	}

	if h.redisClient != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		err := h.redisClient.Publish(ctx, channelPrefix+viewID, data).Err()
		if err == nil {
			return
		}
		h.log.WithError(err).WithField("view_id", viewID).Warn("Redis publish failed, delivering locally")
	}

	h.broadcast(viewID, data)
}

// Connections returns how many sockets watch viewID on this process.
func (h *Hub) Connections(viewID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.connections[viewID])
}

// Close drops every connection and subscription.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for viewID, clients := range h.connections {
		for _, c := range clients {
			c.conn.Close()
		}
		delete(h.connections, viewID)
	}
	for viewID, sub := range h.subscriptions {
		sub.cancel()
		delete(h.subscriptions, viewID)
	}
}

// registerConnection adds c to viewID's watchers. The returned channel
// closes once published messages will reach c.
func (h *Hub) registerConnection(viewID string, c *client) <-chan struct{} {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.connections[viewID] = append(h.connections[viewID], c)

	var ready chan struct{}
	if h.redisClient == nil {
		ready = make(chan struct{})
		close(ready)
	} else if sub, ok := h.subscriptions[viewID]; ok {
		ready = sub.ready
	} else {
		// First connection for this view starts the pub/sub subscription
		ctx, cancel := context.WithCancel(context.Background())
		sub := &subscription{cancel: cancel, ready: make(chan struct{})}
		h.subscriptions[viewID] = sub
		ready = sub.ready
		go h.subscribeToPubSub(ctx, viewID, sub)
	}

	h.log.WithFields(logrus.Fields{
		"view_id": viewID,
		"total":   len(h.connections[viewID]),
	}).Debug("WebSocket connected")
	return ready
}

func (h *Hub) unregisterConnection(viewID string, c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	c.conn.Close()

	clients := h.connections[viewID]
	for i, existing := range clients {
		if existing == c {
			h.connections[viewID] = append(clients[:i], clients[i+1:]...)
			break
		}
	}

	// If no more connections, cancel pub/sub
	if len(h.connections[viewID]) == 0 {
		delete(h.connections, viewID)
		if sub, ok := h.subscriptions[viewID]; ok {
			sub.cancel()
			delete(h.subscriptions, viewID)
		}
	}

	h.log.WithField("view_id", viewID).Debug("WebSocket disconnected")
}

func (h *Hub) subscribeToPubSub(ctx context.Context, viewID string, sub *subscription) {
	pubsub := h.redisClient.Subscribe(ctx, channelPrefix+viewID)
	defer pubsub.Close()

	_, err := pubsub.Receive(ctx)
	if err != nil {
		// Let the next connection retry.
		h.mu.Lock()
		if h.subscriptions[viewID] == sub {
			delete(h.subscriptions, viewID)
		}
		h.mu.Unlock()
		close(sub.ready)
		if ctx.Err() == nil {
			h.log.WithError(err).WithField("view_id", viewID).Warn("Redis subscribe failed")
		}
		return
	}
	close(sub.ready)

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			h.broadcast(viewID, []byte(msg.Payload))
		}
	}
}

func (h *Hub) broadcast(viewID string, data []byte) {
	h.mu.RLock()
	clients := append([]*client(nil), h.connections[viewID]...)
	h.mu.RUnlock()

	for _, c := range clients {
		if err := c.write(data); err != nil {
			h.log.WithError(err).WithField("view_id", viewID).Debug("WebSocket write failed")
		}
	}
}
