package canvas

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Authorizer proves that the current call was authorized by actor.
// Implementations must fail closed: a missing or unverifiable proof is an error.
type Authorizer interface {
	RequireAuth(ctx context.Context, actor Identity) error
}

// GameHub is the external match coordination service.
// Both calls are fire-and-forget from the store's point of view.
type GameHub interface {
	StartGame(ctx context.Context, hub Identity, gameID string) error
	EndGame(ctx context.Context, hub Identity, gameID string) error
}

// Store is the canvas state store. It owns every pixel record of one instance
// plus the game hub reference. Safe for concurrent use; it holds no in-process
// state beyond its collaborators.
type Store struct {
	rdb          *redis.Client
	instanceName string
	auth         Authorizer
	hub          GameHub
	clock        Clock
	log          *logrus.Entry
}

// Option configures optional Store collaborators.
type Option func(*Store)

// WithClock overrides the default Redis ledger clock.
func WithClock(c Clock) Option {
	return func(s *Store) { s.clock = c }
}

// WithLogger sets the logger used for store diagnostics.
func WithLogger(l *logrus.Logger) Option {
	return func(s *Store) { s.log = logrus.NewEntry(l) }
}

// NewStore creates a canvas store for the specified instance.
//
// Parameters:
//   - redisOpts: Redis connection options (address, password, DB, etc.)
//   - instanceName: namespace for every key and channel (must not be empty)
//   - auth: authorization collaborator used by Draw
//   - hub: game hub collaborator used by StartGame and EndGame
func NewStore(redisOpts *redis.Options, instanceName string, auth Authorizer, hub GameHub, opts ...Option) (*Store, error) {
	if instanceName == "" {
		return nil, fmt.Errorf("instance name cannot be empty")
	}
	if auth == nil {
		return nil, fmt.Errorf("authorizer cannot be nil")
	}
	if hub == nil {
		return nil, fmt.Errorf("game hub cannot be nil")
	}

	rdb := redis.NewClient(redisOpts)
	s := &Store{
		rdb:          rdb,
		instanceName: instanceName,
		auth:         auth,
		hub:          hub,
		clock:        NewLedgerClock(rdb, instanceName),
		log:          logrus.NewEntry(logrus.StandardLogger()),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.WithFields(logrus.Fields{
		"component": "canvas",
		"instance":  instanceName,
	})

	return s, nil
}

// Close closes the Redis connection. Implements io.Closer.
func (s *Store) Close() error {
	return s.rdb.Close()
}

// Ping verifies Redis connectivity. Useful for health checks.
func (s *Store) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

// InstanceName returns the namespace this store writes under.
func (s *Store) InstanceName() string {
	return s.instanceName
}

// RedisClient exposes the underlying client for collaborators sharing the connection.
func (s *Store) RedisClient() *redis.Client {
	return s.rdb
}

// Initialize binds the store to a game hub, overwriting any previous binding.
// The hub identity is not validated. Re-initialization is permitted.
func (s *Store) Initialize(ctx context.Context, hub Identity) error {
	previous, err := s.rdb.GetSet(ctx, HubKey(s.instanceName), string(hub)).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("failed to write hub reference to Redis: %w", err)
	}

	entry := s.log.WithField("hub", hub)
	if err == nil && previous != string(hub) {
		entry.WithField("previous_hub", previous).Warn("Game hub reference rebound")
		return nil
	}
	entry.Info("Game hub reference initialized")
	return nil
}

// Hub returns the stored game hub reference.
// Returns ErrHubNotInitialized if Initialize was never called.
func (s *Store) Hub(ctx context.Context) (Identity, error) {
	hub, err := s.rdb.Get(ctx, HubKey(s.instanceName)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrHubNotInitialized
		}
		return "", fmt.Errorf("failed to read hub reference from Redis: %w", err)
	}
	return Identity(hub), nil
}

// Draw sets the color of one cell on behalf of painter.
//
// Checks run in order and stop at the first failure, before anything is written:
// authorization (ErrUnauthorized), bounds (ErrOutOfBounds), palette (ErrInvalidColor).
// On success the pixel replaces any previous record at (x, y) and a PixelEvent is
// published in the same transaction.
func (s *Store) Draw(ctx context.Context, painter Identity, x, y uint64, color uint32) error {
	if err := s.auth.RequireAuth(ctx, painter); err != nil {
		if errors.Is(err, ErrUnauthorized) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}

	if err := ValidateCoord(x, y); err != nil {
		return err
	}

	if err := ValidateColor(color); err != nil {
		return err
	}

	timestamp, err := s.clock.Now(ctx)
	if err != nil {
		return fmt.Errorf("failed to read ledger time: %w", err)
	}

	event := PixelEvent{
		ID:    uuid.New().String(),
		Coord: Coord{X: x, Y: y},
		Pixel: Pixel{Color: color, Painter: painter, Timestamp: timestamp},
	}
	eventJSON, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal pixel event: %w", err)
	}

	// Write and publish atomically; last write wins, no compare-and-swap
	_, err = s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, PixelKey(s.instanceName, x, y), PixelToFields(event.Pixel)...)
		pipe.Publish(ctx, PixelEventsChannel(s.instanceName), eventJSON)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to write pixel to Redis: %w", err)
	}

	s.log.WithFields(logrus.Fields{
		"x":         x,
		"y":         y,
		"color":     color,
		"painter":   painter,
		"timestamp": timestamp,
	}).Debug("Pixel drawn")

	return nil
}

// GetPixel returns the pixel at (x, y).
// Off-canvas coordinates and never-drawn cells both report ok=false; the error
// return only signals a storage failure.
func (s *Store) GetPixel(ctx context.Context, x, y uint64) (Pixel, bool, error) {
	if !(Coord{X: x, Y: y}).InBounds() {
		return Pixel{}, false, nil
	}

	hash, err := s.rdb.HGetAll(ctx, PixelKey(s.instanceName, x, y)).Result()
	if err != nil {
		return Pixel{}, false, fmt.Errorf("failed to read pixel from Redis: %w", err)
	}

	// HGetAll returns an empty map for non-existent keys
	if len(hash) == 0 {
		return Pixel{}, false, nil
	}

	pixel, err := HashToPixel(hash)
	if err != nil {
		return Pixel{}, false, fmt.Errorf("failed to deserialize pixel %s: %w", Coord{X: x, Y: y}, err)
	}
	return pixel, true, nil
}

// GetAllPixels returns every drawn cell in row-major order: x ascending, then y
// ascending. Undrawn cells are omitted.
//
// This always costs Width*Height lookups (sent as a single pipeline). That is fine
// for a 50x50 grid; a much larger grid would need an index of written coordinates.
func (s *Store) GetAllPixels(ctx context.Context) ([]PlacedPixel, error) {
	cmds := make([]*redis.MapStringStringCmd, 0, Width*Height)
	_, err := s.rdb.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for x := uint64(0); x < Width; x++ {
			for y := uint64(0); y < Height; y++ {
				cmds = append(cmds, pipe.HGetAll(ctx, PixelKey(s.instanceName, x, y)))
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read canvas from Redis: %w", err)
	}

	pixels := make([]PlacedPixel, 0)
	for i, cmd := range cmds {
		hash := cmd.Val()
		if len(hash) == 0 {
			continue
		}

		coord := Coord{X: uint64(i) / Height, Y: uint64(i) % Height}
		pixel, err := HashToPixel(hash)
		if err != nil {
			return nil, fmt.Errorf("failed to deserialize pixel %s: %w", coord, err)
		}
		pixels = append(pixels, PlacedPixel{Coord: coord, Pixel: pixel})
	}

	return pixels, nil
}

// StartGame forwards a match start to the bound game hub.
// Returns ErrHubNotInitialized if the store was never initialized.
func (s *Store) StartGame(ctx context.Context, gameID string) error {
	hub, err := s.Hub(ctx)
	if err != nil {
		return err
	}

	if err := s.hub.StartGame(ctx, hub, gameID); err != nil {
		return fmt.Errorf("game hub start_game failed: %w", err)
	}

	s.log.WithFields(logrus.Fields{"hub": hub, "game_id": gameID}).Info("Game started")
	return nil
}

// EndGame forwards a match end to the bound game hub.
// Returns ErrHubNotInitialized if the store was never initialized.
func (s *Store) EndGame(ctx context.Context, gameID string) error {
	hub, err := s.Hub(ctx)
	if err != nil {
		return err
	}

	if err := s.hub.EndGame(ctx, hub, gameID); err != nil {
		return fmt.Errorf("game hub end_game failed: %w", err)
	}

	s.log.WithFields(logrus.Fields{"hub": hub, "game_id": gameID}).Info("Game ended")
	return nil
}
