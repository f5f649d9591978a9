package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/dyluth/pixellar/internal/auth"
	"github.com/dyluth/pixellar/internal/gamehub"
	"github.com/dyluth/pixellar/internal/printer"
	"github.com/dyluth/pixellar/pkg/canvas"
	"github.com/redis/go-redis/v9"
)

// lockedAuthorizer is used when no auth secret is configured: reads work, draws fail.
type lockedAuthorizer struct{}

func (lockedAuthorizer) RequireAuth(context.Context, canvas.Identity) error {
	return fmt.Errorf("%w: no auth secret configured", canvas.ErrUnauthorized)
}

// openStore connects to the configured canvas. The returned closer releases
// both the store and the notifier connections.
func openStore(ctx context.Context) (*canvas.Store, func(), error) {
	redisOpts, err := redis.ParseURL(cfg.Redis.URL)
	if err != nil {
		return nil, nil, printer.Error("invalid Redis URL", err.Error(), nil)
	}

	var authorizer canvas.Authorizer = lockedAuthorizer{}
	if cfg.Auth.Secret != "" {
		authorizer, err = auth.NewJWTAuthorizer(cfg.Auth.Secret)
		if err != nil {
			return nil, nil, err
		}
	}

	notifierClient := redis.NewClient(redisOpts)
	notifier := gamehub.NewNotifier(notifierClient, cfg.Instance)

	store, err := canvas.NewStore(redisOpts, cfg.Instance, authorizer, notifier)
	if err != nil {
		notifierClient.Close()
		return nil, nil, fmt.Errorf("failed to create canvas store: %w", err)
	}
	closer := func() {
		store.Close()
		notifierClient.Close()
	}

	if err := store.Ping(ctx); err != nil {
		closer()
		return nil, nil, printer.ErrorWithContext(
			"Redis connection failed",
			fmt.Sprintf("Could not connect to Redis: %v", err),
			map[string]string{"Redis": cfg.Redis.URL, "Instance": cfg.Instance},
			[]string{"Check that Redis is running and --redis-url / PIXELLAR_REDIS_URL is correct"},
		)
	}

	return store, closer, nil
}

// storeError prints a store error with a suggestion and returns it for Cobra.
func storeError(err error) error {
	switch {
	case errors.Is(err, canvas.ErrUnauthorized):
		return printer.Error("unauthorized", err.Error(), []string{
			"Pass a token minted for this painter with --token",
			"Configure auth.secret (or PIXELLAR_AUTH_SECRET) so one can be minted",
		})
	case errors.Is(err, canvas.ErrOutOfBounds):
		return printer.Error("out of bounds", err.Error(), []string{
			fmt.Sprintf("Coordinates must satisfy 0 <= x < %d and 0 <= y < %d", canvas.Width, canvas.Height),
		})
	case errors.Is(err, canvas.ErrInvalidColor):
		return printer.Error("invalid color", err.Error(), []string{
			fmt.Sprintf("Colors are palette indices 0-%d, see: pixellar palette", canvas.MaxColor),
		})
	case errors.Is(err, canvas.ErrHubNotInitialized):
		return printer.Error("game hub not initialized", err.Error(), []string{
			"Bind the canvas to a hub first:\n  pixellar init <hub>",
		})
	default:
		return printer.Error("canvas operation failed", err.Error(), nil)
	}
}
