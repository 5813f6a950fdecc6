// Package websocket pushes per-user change notifications to browser clients.
// Events are published on redis by any instance and fanned out here to the
// sockets that the user holds on this instance.
package websocket

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"

	"github.com/rayen43500/Study-Planner-Smart-Learning-Analyzer/internal/services"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// TokenVerifier resolves the user behind an access token.
type TokenVerifier interface {
	ParseUserID(token string) (uuid.UUID, error)
}

// Subscriber delivers raw payloads published on a channel until ctx ends.
type Subscriber interface {
	Subscribe(ctx context.Context, channel string) <-chan string
}

type RedisSubscriber struct {
	client *redis.Client
}

func NewRedisSubscriber(client *redis.Client) *RedisSubscriber {
	return &RedisSubscriber{client: client}
}

func (s *RedisSubscriber) Subscribe(ctx context.Context, channel string) <-chan string {
	out := make(chan string)
	pubsub := s.client.Subscribe(ctx, channel)

	go func() {
		defer close(out)
		defer pubsub.Close()

		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				select {
				case out <- msg.Payload:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out
}

type client struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *client) write(messageType int, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(messageType, data)
}

type Hub struct {
	mu          sync.RWMutex
	clients     map[uuid.UUID][]*client
	cancelFuncs map[uuid.UUID]context.CancelFunc

	verifier   TokenVerifier
	subscriber Subscriber
	upgrader   websocket.Upgrader
}

// NewHub creates a hub. allowedOrigin restricts the browser origin allowed to
// connect; empty accepts any origin.
func NewHub(subscriber Subscriber, verifier TokenVerifier, allowedOrigin string) *Hub {
	return &Hub{
		clients:     make(map[uuid.UUID][]*client),
		cancelFuncs: make(map[uuid.UUID]context.CancelFunc),
		verifier:    verifier,
		subscriber:  subscriber,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return allowedOrigin == "" || origin == "" || origin == allowedOrigin
			},
		},
	}
}

// HandleWebSocket authenticates via the token query parameter since browsers
// cannot set headers on the upgrade request.
func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	tokenStr := r.URL.Query().Get("token")
	if tokenStr == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	userID, err := h.verifier.ParseUserID(tokenStr)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", "user_id", userID, "error", err)
		return
	}

	c := &client{conn: conn}
	h.register(userID, c)
	go h.keepAlive(c)
	go h.readLoop(userID, c)
}

func (h *Hub) readLoop(userID uuid.UUID, c *client) {
	defer h.unregister(userID, c)

	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) keepAlive(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for range ticker.C {
		if err := c.write(websocket.PingMessage, nil); err != nil {
			return
		}
	}
}

func (h *Hub) register(userID uuid.UUID, c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[userID] = append(h.clients[userID], c)

	// First socket of this user on this instance starts the subscription.
	if len(h.clients[userID]) == 1 {
		ctx, cancel := context.WithCancel(context.Background())
		h.cancelFuncs[userID] = cancel
		go h.forward(ctx, userID)
	}

	slog.Info("websocket connected", "user_id", userID, "connections", len(h.clients[userID]))
}

func (h *Hub) unregister(userID uuid.UUID, c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	c.conn.Close()

	clients := h.clients[userID]
	for i, existing := range clients {
		if existing == c {
			h.clients[userID] = append(clients[:i], clients[i+1:]...)
			break
		}
	}

	if len(h.clients[userID]) == 0 {
		delete(h.clients, userID)
		if cancel, ok := h.cancelFuncs[userID]; ok {
			cancel()
			delete(h.cancelFuncs, userID)
		}
	}

	slog.Info("websocket disconnected", "user_id", userID)
}

func (h *Hub) forward(ctx context.Context, userID uuid.UUID) {
	for payload := range h.subscriber.Subscribe(ctx, services.UserUpdatesChannel(userID)) {
		h.broadcast(userID, []byte(payload))
	}
}

func (h *Hub) broadcast(userID uuid.UUID, data []byte) {
	h.mu.RLock()
	clients := append([]*client(nil), h.clients[userID]...)
	h.mu.RUnlock()

	for _, c := range clients {
		if err := c.write(websocket.TextMessage, data); err != nil {
			slog.Debug("websocket write failed", "user_id", userID, "error", err)
		}
	}
}

// ConnectionCount reports the live sockets held for userID.
func (h *Hub) ConnectionCount(userID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}

// Close drops every connection and subscription.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for userID, clients := range h.clients {
		for _, c := range clients {
			c.conn.Close()
		}
		if cancel, ok := h.cancelFuncs[userID]; ok {
			cancel()
		}
	}
	h.clients = make(map[uuid.UUID][]*client)
	h.cancelFuncs = make(map[uuid.UUID]context.CancelFunc)
}
