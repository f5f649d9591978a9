// Package gamehub forwards match lifecycle calls to the external game hub over
// Redis Pub/Sub. Publishing is the whole contract: the hub's own accept/reject
// behaviour is opaque to the canvas.
package gamehub

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/dyluth/pixellar/pkg/canvas"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Kind names a lifecycle call.
type Kind string

const (
	// KindStartGame is sent when a match starts.
	KindStartGame Kind = "start_game"

	// KindEndGame is sent when a match ends.
	KindEndGame Kind = "end_game"
)

// LifecycleEvent is the message a hub receives on its game events channel.
type LifecycleEvent struct {
	ID       string          `json:"id"`
	Kind     Kind            `json:"kind"`
	GameID   string          `json:"game_id"`
	Hub      canvas.Identity `json:"hub"`
	SentAtMs int64           `json:"sent_at_ms"`
}

// Notifier implements canvas.GameHub by publishing LifecycleEvents.
type Notifier struct {
	rdb          redis.UniversalClient
	instanceName string
}

// NewNotifier creates a notifier publishing under the given instance namespace.
func NewNotifier(rdb redis.UniversalClient, instanceName string) *Notifier {
	return &Notifier{rdb: rdb, instanceName: instanceName}
}

// StartGame publishes a start_game event to hub.
func (n *Notifier) StartGame(ctx context.Context, hub canvas.Identity, gameID string) error {
	return n.publish(ctx, KindStartGame, hub, gameID)
}

// EndGame publishes an end_game event to hub.
func (n *Notifier) EndGame(ctx context.Context, hub canvas.Identity, gameID string) error {
	return n.publish(ctx, KindEndGame, hub, gameID)
}

func (n *Notifier) publish(ctx context.Context, kind Kind, hub canvas.Identity, gameID string) error {
	event := LifecycleEvent{
		ID:       uuid.New().String(),
		Kind:     kind,
		GameID:   gameID,
		Hub:      hub,
		SentAtMs: time.Now().UnixMilli(),
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal %s event: %w", kind, err)
	}

	channel := canvas.GameEventsChannel(n.instanceName, hub)
	if err := n.rdb.Publish(ctx, channel, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish %s event: %w", kind, err)
	}
	return nil
}

// Subscription delivers the lifecycle events addressed to one hub.
type Subscription struct {
	events <-chan *LifecycleEvent
	cancel func()
	once   sync.Once
}

// Events returns the channel of lifecycle events. Malformed messages are dropped.
func (s *Subscription) Events() <-chan *LifecycleEvent {
	return s.events
}

// Close stops the subscription. Safe to call multiple times.
func (s *Subscription) Close() error {
	s.once.Do(s.cancel)
	return nil
}

// Subscribe listens for lifecycle events addressed to hub.
func Subscribe(ctx context.Context, rdb redis.UniversalClient, instanceName string, hub canvas.Identity) (*Subscription, error) {
	pubsub := rdb.Subscribe(ctx, canvas.GameEventsChannel(instanceName, hub))
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, fmt.Errorf("failed to subscribe to game events: %w", err)
	}

	eventsChan := make(chan *LifecycleEvent, 10)
	subCtx, cancelFunc := context.WithCancel(ctx)

	go func() {
		defer close(eventsChan)
		defer pubsub.Close()

		ch := pubsub.Channel()
		for {
			select {
			case <-subCtx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var event LifecycleEvent
				if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
					continue
				}
				select {
				case eventsChan <- &event:
				case <-subCtx.Done():
					return
				}
			}
		}
	}()

	return &Subscription{events: eventsChan, cancel: cancelFunc}, nil
}
