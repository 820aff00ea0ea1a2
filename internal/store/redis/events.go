// Package redis broadcasts committed moderation transitions over Redis
// pub/sub for read-side consumers (the WebSocket audit feed). It is an
// optimization only; moderation correctness never depends on it.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/gosuda/warden/internal/domain"
)

// FirehoseChannel carries every moderation event.
const FirehoseChannel = "moderation:events"

// AccountChannel returns the channel carrying one account's events.
func AccountChannel(accountID uuid.UUID) string {
	return "moderation:" + accountID.String()
}

// TransitionEvent is the wire form of a committed transition.
type TransitionEvent struct {
	EntryID    uuid.UUID         `json:"entry_id"`
	AccountID  uuid.UUID         `json:"account_id"`
	Action     domain.ActionType `json:"action"`
	ActorType  string            `json:"actor_type"`
	ActorID    string            `json:"actor_id"`
	Status     domain.Status     `json:"status"`
	OccurredAt time.Time         `json:"occurred_at"`
}

type Events struct {
	client *redis.Client
}

func New(ctx context.Context, addr, password string, db int) (*Events, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis.New: ping: %w", err)
	}

	return &Events{client: client}, nil
}

func (e *Events) Close() error {
	if err := e.client.Close(); err != nil {
		return fmt.Errorf("redis.Events.Close: %w", err)
	}
	return nil
}

// PublishTransition broadcasts a committed transition on the per-account
// channel and the firehose.
func (e *Events) PublishTransition(ctx context.Context, entry *domain.AuditEntry, status domain.Status) error {
	payload, err := json.Marshal(TransitionEvent{
		EntryID:    entry.ID,
		AccountID:  entry.AccountID,
		Action:     entry.Action,
		ActorType:  entry.ActorType,
		ActorID:    entry.ActorID,
		Status:     status,
		OccurredAt: entry.OccurredAt,
	})
	if err != nil {
		return fmt.Errorf("redis.Events.PublishTransition: marshal: %w", err)
	}

	if err := e.client.Publish(ctx, AccountChannel(entry.AccountID), payload).Err(); err != nil {
		return fmt.Errorf("redis.Events.PublishTransition: %w", err)
	}
	if err := e.client.Publish(ctx, FirehoseChannel, payload).Err(); err != nil {
		return fmt.Errorf("redis.Events.PublishTransition: firehose: %w", err)
	}

	return nil
}

// Subscribe streams raw event payloads from a channel until ctx is done.
// The returned cleanup closes the subscription.
func (e *Events) Subscribe(ctx context.Context, channel string) (<-chan []byte, func(), error) {
	sub := e.client.Subscribe(ctx, channel)

	// Wait for subscription confirmation.
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, nil, fmt.Errorf("redis.Events.Subscribe: receive confirmation: %w", err)
	}

	out := make(chan []byte, 64)
	redisCh := sub.Channel()

	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-redisCh:
				if !ok {
					return
				}
				select {
				case out <- []byte(msg.Payload):
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	cleanup := func() {
		_ = sub.Close()
	}

	return out, cleanup, nil
}
