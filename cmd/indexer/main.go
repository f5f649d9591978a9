package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dyluth/pixellar/internal/indexer"
	"github.com/dyluth/pixellar/internal/logging"
	"github.com/dyluth/pixellar/pkg/canvas"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// readOnly rejects every draw; the indexer only reads and subscribes.
type readOnly struct{}

func (readOnly) RequireAuth(context.Context, canvas.Identity) error {
	return canvas.ErrUnauthorized
}

func (readOnly) StartGame(context.Context, canvas.Identity, string) error {
	return fmt.Errorf("indexer does not forward game lifecycle calls")
}

func (readOnly) EndGame(context.Context, canvas.Identity, string) error {
	return fmt.Errorf("indexer does not forward game lifecycle calls")
}

func main() {
	// 1. Load environment variables
	instanceName := os.Getenv("PIXELLAR_INSTANCE")
	redisURL := os.Getenv("PIXELLAR_REDIS_URL")
	dbPath := os.Getenv("PIXELLAR_INDEX_DB")

	if instanceName == "" || redisURL == "" || dbPath == "" {
		fmt.Fprintf(os.Stderr, "Error: PIXELLAR_INSTANCE, PIXELLAR_REDIS_URL and PIXELLAR_INDEX_DB must be set\n")
		os.Exit(1)
	}

	logLevel := os.Getenv("PIXELLAR_LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}
	if _, err := logging.Setup(os.Stderr, logLevel, os.Getenv("PIXELLAR_LOG_FORMAT")); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	// 2. Parse Redis URL
	redisOpts, err := redis.ParseURL(redisURL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: Invalid PIXELLAR_REDIS_URL: %v\n", err)
		os.Exit(1)
	}

	// 3. Create canvas store
	store, err := canvas.NewStore(redisOpts, instanceName, readOnly{}, readOnly{})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: Failed to create canvas store: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	// 4. Verify Redis connectivity
	ctx := context.Background()
	if err := store.Ping(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: Redis not accessible: %v\n", err)
		os.Exit(1)
	}

	// 5. Open the read model
	db, err := indexer.OpenDB(dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: Failed to open index database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	logrus.WithFields(logrus.Fields{"instance": instanceName, "db": dbPath}).Info("Indexer starting")

	// 6. Setup graceful shutdown
	runCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)

	errCh := make(chan error, 1)
	go func() {
		errCh <- indexer.New(store, db).Run(runCtx)
	}()

	// 7. Wait for shutdown signal or error
	select {
	case sig := <-sigCh:
		logrus.WithField("signal", sig.String()).Info("Shutting down gracefully")
		cancel()
		<-errCh
	case runErr := <-errCh:
		if runErr != nil {
			logrus.WithError(runErr).Error("Indexer failed")
			db.Close()
			store.Close()
			os.Exit(1)
		}
	}

	logrus.Info("Indexer stopped")
}
