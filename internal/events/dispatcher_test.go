package events

import (
	"context"
	"errors"
	"testing"

	"github.com/erselk/ugur-sahan-website/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

type MockBus struct {
	mock.Mock
}

func (m *MockBus) Publish(ctx context.Context, channel string, message interface{}) error {
	args := m.Called(ctx, channel, message)
	return args.Error(0)
}

type MockBroker struct {
	mock.Mock
}

func (m *MockBroker) Publish(ctx context.Context, event Event) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func TestDispatcherFansOut(t *testing.T) {
	bus := new(MockBus)
	broker := new(MockBroker)
	d := NewDispatcher(bus, "blog:events", broker, zap.NewNop().Sugar())

	post := &domain.Post{
		ID:    "p1",
		Title: domain.LocalizedText{domain.LocaleTR: "Başlık"},
		Slug:  domain.LocalizedText{domain.LocaleEN: "title"},
	}
	event := PostEvent(PostCreated, post)

	bus.On("Publish", mock.Anything, "blog:events", event).Return(nil)
	broker.On("Publish", mock.Anything, event).Return(nil)

	d.Notify(context.Background(), event)

	bus.AssertExpectations(t)
	broker.AssertExpectations(t)
	assert.Equal(t, "title", event.Slug)
	assert.Equal(t, "Başlık", event.Title)
}

func TestDispatcherSwallowsFailures(t *testing.T) {
	bus := new(MockBus)
	broker := new(MockBroker)
	d := NewDispatcher(bus, "blog:events", broker, zap.NewNop().Sugar())

	event := MessageEvent(&domain.Message{ID: "m1", Subject: "Merhaba"})
	bus.On("Publish", mock.Anything, "blog:events", event).Return(errors.New("redis down"))
	broker.On("Publish", mock.Anything, event).Return(errors.New("amqp down"))

	assert.NotPanics(t, func() { d.Notify(context.Background(), event) })
	broker.AssertExpectations(t)
}

func TestDispatcherWithoutBroker(t *testing.T) {
	bus := new(MockBus)
	d := NewDispatcher(bus, "blog:events", nil, zap.NewNop().Sugar())

	bus.On("Publish", mock.Anything, "blog:events", mock.AnythingOfType("events.Event")).Return(nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	d.Notify(ctx, Event{Type: PostDeleted, PostID: "p1"})
	bus.AssertExpectations(t)
}
