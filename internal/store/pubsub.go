package store

import (
	"context"
	"sync"
)

// Message mirrors redis.Message for the in-process bus.
type Message struct {
	Channel string
	Payload string
}

// Subscription receives messages for a fixed set of channels until closed.
type Subscription struct {
	channels map[string]bool
	msgChan  chan *Message
	closeCh  chan struct{}
	closed   bool
	mu       sync.RWMutex
}

func newSubscription(channels []string) *Subscription {
	channelMap := make(map[string]bool, len(channels))
	for _, ch := range channels {
		channelMap[ch] = true
	}
	return &Subscription{
		channels: channelMap,
		msgChan:  make(chan *Message, 100),
		closeCh:  make(chan struct{}),
	}
}

// Channel is closed when the subscription closes.
func (s *Subscription) Channel() <-chan *Message {
	return s.msgChan
}

func (s *Subscription) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.closed {
		s.closed = true
		close(s.closeCh)
		close(s.msgChan)
	}
	return nil
}

// deliver never blocks; a full buffer drops the message.
func (s *Subscription) deliver(msg *Message) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed || !s.channels[msg.Channel] {
		return
	}
	select {
	case s.msgChan <- msg:
	default:
	}
}

// PubSubHub routes published messages to in-process subscriptions.
type PubSubHub struct {
	subscribers map[string][]*Subscription
	mu          sync.RWMutex
}

func NewPubSubHub() *PubSubHub {
	return &PubSubHub{
		subscribers: make(map[string][]*Subscription),
	}
}

// Subscribe registers a subscription that is removed when ctx ends or the
// subscription is closed.
func (h *PubSubHub) Subscribe(ctx context.Context, channels ...string) *Subscription {
	sub := newSubscription(channels)

	h.mu.Lock()
	for _, channel := range channels {
		h.subscribers[channel] = append(h.subscribers[channel], sub)
	}
	h.mu.Unlock()

	go func() {
		select {
		case <-ctx.Done():
			sub.Close()
		case <-sub.closeCh:
		}
		h.remove(sub, channels)
	}()

	return sub
}

func (h *PubSubHub) remove(sub *Subscription, channels []string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, channel := range channels {
		subs := h.subscribers[channel]
		for i, candidate := range subs {
			if candidate == sub {
				h.subscribers[channel] = append(subs[:i], subs[i+1:]...)
				break
			}
		}
		if len(h.subscribers[channel]) == 0 {
			delete(h.subscribers, channel)
		}
	}
}

// Publish sends payload to every subscriber of channel.
func (h *PubSubHub) Publish(channel, payload string) {
	h.mu.RLock()
	subs := make([]*Subscription, len(h.subscribers[channel]))
	copy(subs, h.subscribers[channel])
	h.mu.RUnlock()

	msg := &Message{Channel: channel, Payload: payload}
	for _, sub := range subs {
		sub.deliver(msg)
	}
}

// subscriberCount is used by tests.
func (h *PubSubHub) subscriberCount(channel string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers[channel])
}
