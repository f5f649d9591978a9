package canvas

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// Subscription represents an active Pub/Sub subscription to pixel events.
// Caller must call Close() when done to clean up resources.
type Subscription struct {
	events <-chan *PixelEvent
	errors <-chan error
	cancel func()
	once   sync.Once
}

// Events returns the channel of pixel events.
// The channel is closed when the subscription is closed or the context is cancelled.
func (s *Subscription) Events() <-chan *PixelEvent {
	return s.events
}

// Errors returns the channel of subscription errors.
// The subscription continues after errors - malformed messages are skipped.
func (s *Subscription) Errors() <-chan error {
	return s.errors
}

// Close stops the subscription and cleans up resources. Implements io.Closer.
// Safe to call multiple times.
func (s *Subscription) Close() error {
	s.once.Do(s.cancel)
	return nil
}

// SubscribePixelEvents subscribes to pixel events for this instance.
// Context cancellation also stops the subscription.
//
// Delivery is at-most-once: Redis Pub/Sub drops messages for slow subscribers, so
// consumers that need the full state should backfill with GetAllPixels.
func (s *Store) SubscribePixelEvents(ctx context.Context) (*Subscription, error) {
	pubsub := s.rdb.Subscribe(ctx, PixelEventsChannel(s.instanceName))

	// Wait for the subscription to be confirmed so no event published after
	// this call returns can be missed
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, fmt.Errorf("failed to subscribe to pixel events: %w", err)
	}

	eventsChan := make(chan *PixelEvent, 64)
	errorsChan := make(chan error, 10)

	subCtx, cancelFunc := context.WithCancel(ctx)

	go func() {
		defer close(eventsChan)
		defer close(errorsChan)
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

				var event PixelEvent
				if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
					select {
					case errorsChan <- fmt.Errorf("failed to unmarshal pixel event: %w", err):
					case <-subCtx.Done():
						return
					}
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

	return &Subscription{
		events: eventsChan,
		errors: errorsChan,
		cancel: cancelFunc,
	}, nil
}
