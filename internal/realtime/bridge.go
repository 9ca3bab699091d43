package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// eventsChannel is the pub/sub channel carrying notification events between
// instances. The webhook correlator publishes here; every instance's
// subscriber fans out to its local hub, so a webhook processed on one
// instance reaches sessions connected to another.
const eventsChannel = "mockups:events"

type eventEnvelope struct {
	EventID string `json:"event_id"`
	Owner   string `json:"owner"`
	Event   Event  `json:"event"`
}

// Publisher publishes notification events to the shared redis channel.
type Publisher struct {
	client *redis.Client
}

// NewPublisher creates a new Publisher
func NewPublisher(client *redis.Client) *Publisher {
	return &Publisher{client: client}
}

// Notify publishes one event addressed to an owner. Delivery is best
// effort: the caller logs failures and never rolls back state.
func (p *Publisher) Notify(ctx context.Context, owner string, event Event) error {
	env := eventEnvelope{
		EventID: uuid.New().String(),
		Owner:   owner,
		Event:   event,
	}

	data, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("failed to marshal notification event: %w", err)
	}

	if err := p.client.Publish(ctx, eventsChannel, data).Err(); err != nil {
		return fmt.Errorf("failed to publish notification event: %w", err)
	}

	return nil
}

// Subscriber consumes the shared channel and forwards events to the local
// hub. Run blocks until ctx is cancelled.
type Subscriber struct {
	client *redis.Client
	hub    *Hub
}

// NewSubscriber creates a new Subscriber
func NewSubscriber(client *redis.Client, hub *Hub) *Subscriber {
	return &Subscriber{client: client, hub: hub}
}

func (s *Subscriber) Run(ctx context.Context) error {
	sub := s.client.Subscribe(ctx, eventsChannel)
	defer sub.Close()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}

			var env eventEnvelope
			if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
				log.Printf("[realtime] dropping malformed event payload: %v", err)
				continue
			}
			if env.Owner == "" {
				log.Printf("[realtime] dropping event %s without owner", env.EventID)
				continue
			}

			delivered := s.hub.Notify(env.Owner, env.Event)
			log.Printf("[realtime] event=%s owner=%s type=%s delivered=%d",
				env.EventID, env.Owner, env.Event.Type, delivered)
		}
	}
}
