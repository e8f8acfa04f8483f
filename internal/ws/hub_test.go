package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/erselk/ugur-sahan-website/internal/events"
	"github.com/erselk/ugur-sahan-website/internal/store"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func startHub(t *testing.T, origins []string) (*Hub, *store.Cache, string) {
	t.Helper()
	logger, _ := zap.NewDevelopment()
	cache := store.NewMemoryCache(logger.Sugar())
	hub := NewHub(cache, origins, logger.Sugar(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub.HandleWebSocket(w, r, "admin-1")
	}))
	t.Cleanup(func() {
		server.Close()
		cancel()
		cache.Close()
	})

	require.Eventually(t, hub.Listening, 2*time.Second, 10*time.Millisecond)
	return hub, cache, "ws" + strings.TrimPrefix(server.URL, "http")
}

func dial(t *testing.T, url string, header http.Header) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, header)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	var msg Message
	require.NoError(t, json.Unmarshal(data, &msg))
	return msg
}

func TestHub_ForwardsBusEvents(t *testing.T) {
	hub, cache, url := startHub(t, nil)
	conn := dial(t, url, nil)
	require.Eventually(t, func() bool { return hub.clientCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	event := events.Event{Type: events.PostCreated, PostID: "p1", Slug: "morning-coffee", Timestamp: time.Now().UTC()}
	require.NoError(t, cache.Publish(context.Background(), store.ChannelEvents, event))

	msg := readFrame(t, conn)
	assert.Equal(t, "event", msg.Type)
	assert.Equal(t, string(events.PostCreated), msg.Topic)

	var got events.Event
	require.NoError(t, json.Unmarshal(msg.Data, &got))
	assert.Equal(t, "p1", got.PostID)
	assert.Equal(t, "morning-coffee", got.Slug)
}

func TestHub_TopicFiltering(t *testing.T) {
	hub, cache, url := startHub(t, nil)
	conn := dial(t, url, nil)
	require.Eventually(t, func() bool { return hub.clientCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, conn.WriteJSON(SubscriptionRequest{Type: "unsubscribe", Topics: []string{TopicAll}}))
	require.NoError(t, conn.WriteJSON(SubscriptionRequest{Type: "subscribe", Topics: []string{"message.*"}}))

	var client *Client
	require.Eventually(t, func() bool {
		hub.mu.RLock()
		defer hub.mu.RUnlock()
		for c := range hub.clients {
			client = c
		}
		return client != nil && !client.isSubscribed(string(events.PostCreated)) && client.isSubscribed(string(events.MessageReceived))
	}, 2*time.Second, 10*time.Millisecond)

	ctx := context.Background()
	require.NoError(t, cache.Publish(ctx, store.ChannelEvents, events.Event{Type: events.PostDeleted, PostID: "p1"}))
	require.NoError(t, cache.Publish(ctx, store.ChannelEvents, events.Event{Type: events.MessageReceived, MessageID: "m1"}))

	msg := readFrame(t, conn)
	assert.Equal(t, string(events.MessageReceived), msg.Topic)
}

func TestHub_RejectsForeignOrigin(t *testing.T) {
	_, _, url := startHub(t, []string{"https://ugursahan.com"})

	_, resp, err := websocket.DefaultDialer.Dial(url, http.Header{"Origin": []string{"https://evil.example"}})
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	conn := dial(t, url, http.Header{"Origin": []string{"https://ugursahan.com"}})
	assert.NotNil(t, conn)
}

func TestClient_IsSubscribed(t *testing.T) {
	c := &Client{topics: map[string]bool{"post.*": true, "message.received": true}}
	assert.True(t, c.isSubscribed("post.created"))
	assert.True(t, c.isSubscribed("post.deleted"))
	assert.True(t, c.isSubscribed("message.received"))
	assert.False(t, c.isSubscribed("message.deleted"))
	assert.False(t, c.isSubscribed("noise"))
}

func TestHub_CleanupInactiveClients(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	hub := NewHub(store.NewMemoryCache(logger.Sugar()), nil, logger.Sugar(), nil)

	stale := &Client{send: make(chan []byte, 1), topics: map[string]bool{}}
	stale.lastActive.Store(time.Now().Add(-time.Hour).UnixNano())
	fresh := &Client{send: make(chan []byte, 1), topics: map[string]bool{}}
	fresh.touch()
	hub.clients[stale] = true
	hub.clients[fresh] = true

	hub.cleanupInactiveClients(time.Now().Add(-time.Minute))

	assert.Equal(t, 1, hub.clientCount())
	_, open := <-stale.send
	assert.False(t, open)
}
