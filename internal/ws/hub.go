// Package ws pushes post and message events to connected admin dashboards.
package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/erselk/ugur-sahan-website/internal/metrics"
	"github.com/erselk/ugur-sahan-website/internal/store"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 54 * time.Second
	idleTimeout    = 2 * pongWait
	maxInboundSize = 512

	// TopicAll subscribes to every event type.
	TopicAll = "*"
)

type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	cache      *store.Cache
	logger     *zap.SugaredLogger
	metrics    *metrics.Metrics
	upgrader   websocket.Upgrader
	listening  atomic.Bool
	mu         sync.RWMutex
}

type Client struct {
	hub        *Hub
	conn       *websocket.Conn
	send       chan []byte
	topics     map[string]bool
	userID     string
	lastActive atomic.Int64
	mu         sync.RWMutex
}

// Message is the frame sent to dashboards.
type Message struct {
	Type      string          `json:"type"`
	Topic     string          `json:"topic"`
	Data      json.RawMessage `json:"data"`
	Timestamp int64           `json:"timestamp"`
}

// SubscriptionRequest narrows or widens the event types a client receives.
type SubscriptionRequest struct {
	Type   string   `json:"type"`
	Topics []string `json:"topics"`
}

// NewHub builds a hub that accepts upgrades from allowedOrigins. Requests
// without an Origin header are always accepted; "*" accepts any origin.
func NewHub(cache *store.Cache, allowedOrigins []string, logger *zap.SugaredLogger, metrics *metrics.Metrics) *Hub {
	h := &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		cache:      cache,
		logger:     logger,
		metrics:    metrics,
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     originChecker(allowedOrigins),
	}
	return h
}

func originChecker(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, a := range allowed {
			if a == "*" || strings.EqualFold(a, origin) {
				return true
			}
		}
		return false
	}
}

func (h *Hub) Run(ctx context.Context) {
	go h.startSubscription(ctx)
	go h.startClientCleanup(ctx)

	for {
		select {
		case <-ctx.Done():
			h.logger.Infow("WebSocket hub shutting down")
			close(h.done)
			h.closeAll()
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			h.metrics.IncrementConnections(ctx)
			h.logger.Debugw("Client registered", "user_id", client.userID)

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				h.metrics.DecrementConnections(ctx)
			}
			h.mu.Unlock()
			h.logger.Debugw("Client unregistered", "user_id", client.userID)
		}
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		delete(h.clients, client)
		close(client.send)
	}
}

func (h *Hub) startSubscription(ctx context.Context) {
	if pubsub := h.cache.Subscribe(ctx, store.ChannelEvents); pubsub != nil {
		defer pubsub.Close()
		// Receive blocks until Redis confirms the subscription.
		if _, err := pubsub.Receive(ctx); err != nil {
			h.logger.Errorw("Redis subscription failed", "channel", store.ChannelEvents, "error", err)
			return
		}
		h.listening.Store(true)
		h.handleRedisPubSubMessages(ctx, pubsub)
		return
	}

	if sub := h.cache.SubscribeInMemory(ctx, store.ChannelEvents); sub != nil {
		defer sub.Close()
		h.logger.Debugw("Using in-memory PubSub for WebSocket hub", "channel", store.ChannelEvents)
		h.listening.Store(true)
		h.handleMemoryMessages(ctx, sub)
		return
	}

	h.logger.Warnw("No PubSub available; admin feed disabled")
}

func (h *Hub) handleRedisPubSubMessages(ctx context.Context, pubsub *redis.PubSub) {
	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			h.dispatch(msg.Channel, msg.Payload)
		}
	}
}

func (h *Hub) handleMemoryMessages(ctx context.Context, sub *store.Subscription) {
	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			h.dispatch(msg.Channel, msg.Payload)
		}
	}
}

// dispatch wraps a bus payload and sends it to clients subscribed to its
// event type.
func (h *Hub) dispatch(channel, payload string) {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal([]byte(payload), &head); err != nil {
		h.logger.Warnw("Dropping malformed event", "channel", channel, "error", err)
		return
	}

	frame, err := json.Marshal(Message{
		Type:      "event",
		Topic:     head.Type,
		Data:      json.RawMessage(payload),
		Timestamp: time.Now().Unix(),
	})
	if err != nil {
		h.logger.Errorw("Failed to marshal WebSocket message", "error", err)
		return
	}
	h.broadcast(frame, head.Type)
}

func (h *Hub) broadcast(frame []byte, topic string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.clients {
		if !client.isSubscribed(topic) {
			continue
		}
		select {
		case client.send <- frame:
		default:
			// slow consumer
			delete(h.clients, client)
			close(client.send)
			h.metrics.DecrementConnections(context.Background())
		}
	}
}

func (h *Hub) startClientCleanup(ctx context.Context) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			h.cleanupInactiveClients(time.Now().Add(-idleTimeout))
		}
	}
}

func (h *Hub) cleanupInactiveClients(cutoff time.Time) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.clients {
		if time.Unix(0, client.lastActive.Load()).Before(cutoff) {
			delete(h.clients, client)
			close(client.send)
			h.metrics.DecrementConnections(context.Background())
			h.logger.Debugw("Cleaned up inactive client", "user_id", client.userID)
		}
	}
}

func (h *Hub) clientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Listening reports whether the hub is receiving events from the bus.
func (h *Hub) Listening() bool {
	return h.listening.Load()
}

// HandleWebSocket upgrades an authenticated admin request. userID is only
// used for logging.
func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request, userID string) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warnw("WebSocket upgrade failed", "error", err)
		return
	}

	client := &Client{
		hub:    h,
		conn:   conn,
		send:   make(chan []byte, 256),
		topics: map[string]bool{TopicAll: true},
		userID: userID,
	}
	client.touch()

	select {
	case h.register <- client:
	case <-h.done:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

func (c *Client) touch() {
	c.lastActive.Store(time.Now().UnixNano())
}

func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxInboundSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.touch()
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Warnw("WebSocket error", "user_id", c.userID, "error", err)
			}
			return
		}
		c.touch()
		c.handleMessage(message)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) handleMessage(message []byte) {
	var req SubscriptionRequest
	if err := json.Unmarshal(message, &req); err != nil {
		c.hub.logger.Warnw("Invalid subscription message", "error", err)
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	switch req.Type {
	case "subscribe":
		for _, topic := range req.Topics {
			c.topics[topic] = true
		}
	case "unsubscribe":
		for _, topic := range req.Topics {
			delete(c.topics, topic)
		}
	default:
		return
	}
	c.hub.logger.Debugw("Client subscription changed", "type", req.Type, "topics", req.Topics)
}

// isSubscribed matches exact types, "*" and family wildcards such as "post.*".
func (c *Client) isSubscribed(topic string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.topics[TopicAll] || c.topics[topic] {
		return true
	}
	if i := strings.IndexByte(topic, '.'); i > 0 {
		return c.topics[topic[:i]+".*"]
	}
	return false
}
