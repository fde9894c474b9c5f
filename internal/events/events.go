// Package events publishes user and collection lifecycle events to the
// configured message broker. Publishing is best effort: failures are logged
// and counted but never fail the originating request.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/moviecollections/apiserver/internal/logging"
	"github.com/moviecollections/apiserver/internal/metrics"
	"github.com/moviecollections/apiserver/internal/mq"
	"github.com/moviecollections/apiserver/types"
	"github.com/rs/zerolog"
)

const publishTimeout = 5 * time.Second

// Broker is the subset of mq.MQ the publisher needs.
type Broker interface {
	Publish(ctx context.Context, channel string, data []byte, attrs map[string]string) (string, error)
	Subscribe(ctx context.Context, channel string, handler mq.Handler) error
}

// Publisher emits domain events. A Publisher with a nil broker drops events.
type Publisher struct {
	broker Broker
	log    zerolog.Logger
	now    func() time.Time
}

func NewPublisher(broker Broker) *Publisher {
	return &Publisher{
		broker: broker,
		log:    logging.Component("events"),
		now:    time.Now,
	}
}

// Enabled reports whether events reach a broker.
func (p *Publisher) Enabled() bool {
	return p != nil && p.broker != nil
}

// Publish stamps the event with an id and timestamp and sends it on the
// channel for its type.
func (p *Publisher) Publish(ctx context.Context, event types.Event) {
	if !p.Enabled() {
		return
	}

	event.ID = uuid.NewString()
	event.OccurredAt = p.now().UTC()

	data, err := json.Marshal(event)
	if err != nil {
		p.log.Error().Err(err).Str("type", string(event.Type)).Msg("encode event")
		return
	}

	// The request context may be cancelled as soon as the response is written.
	publishCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	_, err = p.broker.Publish(publishCtx, event.Type.Channel(), data, map[string]string{
		mq.AttrEventID:   event.ID,
		mq.AttrEventType: string(event.Type),
	})
	metrics.RecordEvent(string(event.Type), err)
	if err != nil {
		p.log.Warn().Err(err).Str("type", string(event.Type)).Str("event_id", event.ID).Msg("publish event")
	}
}

// Tail decodes events from channel and passes them to fn until ctx ends.
func (p *Publisher) Tail(ctx context.Context, channel string, fn func(types.Event) error) error {
	return p.broker.Subscribe(ctx, channel, func(ctx context.Context, msg mq.Message) error {
		var event types.Event
		if err := json.Unmarshal(msg.Data, &event); err != nil {
			p.log.Warn().Err(err).Str("message_id", msg.ID).Msg("drop malformed event")
			return nil
		}
		return fn(event)
	})
}
