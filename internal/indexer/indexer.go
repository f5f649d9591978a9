package indexer

import (
	"context"
	"fmt"

	"github.com/dyluth/pixellar/pkg/canvas"
	"github.com/sirupsen/logrus"
)

// Source is the part of the canvas store the indexer reads from.
type Source interface {
	SubscribePixelEvents(ctx context.Context) (*canvas.Subscription, error)
	GetAllPixels(ctx context.Context) ([]canvas.PlacedPixel, error)
	InstanceName() string
}

// Indexer mirrors a canvas into a DB.
type Indexer struct {
	source Source
	db     *DB
	log    *logrus.Entry
}

// New creates an indexer feeding db from source.
func New(source Source, db *DB) *Indexer {
	return &Indexer{
		source: source,
		db:     db,
		log: logrus.WithFields(logrus.Fields{
			"component": "indexer",
			"instance":  source.InstanceName(),
		}),
	}
}

// Run subscribes to pixel events, backfills the full canvas and then applies
// events until ctx is cancelled. Subscribing before the backfill means a draw
// landing in between is seen at least once; the timestamp guard in Upsert makes
// the duplicate harmless.
func (ix *Indexer) Run(ctx context.Context) error {
	sub, err := ix.source.SubscribePixelEvents(ctx)
	if err != nil {
		return err
	}
	defer sub.Close()

	n, err := ix.Backfill(ctx)
	if err != nil {
		return err
	}
	ix.log.WithField("pixels", n).Info("Backfill complete, watching for pixel events")

	errs := sub.Errors()
	for {
		select {
		case <-ctx.Done():
			ix.log.Info("Indexer stopping")
			return nil

		case event, ok := <-sub.Events():
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("pixel event subscription closed unexpectedly")
			}
			if err := ix.db.Upsert(ctx, event.Placed()); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				return err
			}
			ix.log.WithFields(logrus.Fields{
				"x":       event.Coord.X,
				"y":       event.Coord.Y,
				"color":   event.Pixel.Color,
				"painter": event.Pixel.Painter,
			}).Debug("Pixel indexed")

		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			ix.log.WithError(err).Warn("Skipping malformed pixel event")
		}
	}
}

// Backfill copies every drawn pixel from the source into the DB.
func (ix *Indexer) Backfill(ctx context.Context) (int, error) {
	pixels, err := ix.source.GetAllPixels(ctx)
	if err != nil {
		return 0, fmt.Errorf("backfill failed: %w", err)
	}
	for _, p := range pixels {
		if err := ix.db.Upsert(ctx, p); err != nil {
			return 0, err
		}
	}
	return len(pixels), nil
}
