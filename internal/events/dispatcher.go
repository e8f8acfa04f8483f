package events

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Bus is the cache pub/sub the websocket hub listens on.
type Bus interface {
	Publish(ctx context.Context, channel string, message interface{}) error
}

// Broker is an external queue such as RabbitMQ.
type Broker interface {
	Publish(ctx context.Context, event Event) error
}

const publishTimeout = 5 * time.Second

// Dispatcher fans an event out to the bus channel and the optional broker.
// Failures are logged only.
type Dispatcher struct {
	bus     Bus
	channel string
	broker  Broker
	logger  *zap.SugaredLogger
}

func NewDispatcher(bus Bus, channel string, broker Broker, logger *zap.SugaredLogger) *Dispatcher {
	return &Dispatcher{bus: bus, channel: channel, broker: broker, logger: logger}
}

func (d *Dispatcher) Notify(ctx context.Context, event Event) {
	// the request may finish before delivery does
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	if d.bus != nil {
		if err := d.bus.Publish(ctx, d.channel, event); err != nil {
			d.logger.Warnw("Failed to publish event to bus", "type", event.Type, "error", err)
		}
	}
	if d.broker != nil {
		if err := d.broker.Publish(ctx, event); err != nil {
			d.logger.Warnw("Failed to publish event to broker", "type", event.Type, "error", err)
		}
	}
}
