// Package watch follows canvas activity for the CLI.
package watch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/dyluth/pixellar/internal/filter"
	"github.com/dyluth/pixellar/pkg/canvas"
	"github.com/sirupsen/logrus"
)

// OutputFormat selects how streamed events are written.
type OutputFormat string

const (
	// OutputFormatDefault is one human-readable line per event.
	OutputFormatDefault OutputFormat = "default"
	// OutputFormatJSON is line-delimited PixelEvent JSON.
	OutputFormatJSON OutputFormat = "json"
)

// EventSource yields pixel events; *canvas.Subscription satisfies it.
type EventSource interface {
	Events() <-chan *canvas.PixelEvent
	Errors() <-chan error
}

// PixelReader reads single pixels; *canvas.Store satisfies it.
type PixelReader interface {
	GetPixel(ctx context.Context, x, y uint64) (canvas.Pixel, bool, error)
}

// StreamPixels writes every event from src matching criteria to w until ctx is
// done or the source closes. A nil criteria matches everything.
func StreamPixels(ctx context.Context, src EventSource, criteria *filter.Criteria, format OutputFormat, w io.Writer) error {
	if criteria == nil {
		criteria = &filter.Criteria{}
	}

	errs := src.Errors()
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-src.Events():
			if !ok {
				return nil
			}
			if !criteria.Matches(event.Pixel) {
				continue
			}
			if err := writeEvent(w, event, format); err != nil {
				return err
			}

		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			logrus.WithError(err).Warn("Skipping malformed pixel event")
		}
	}
}

func writeEvent(w io.Writer, event *canvas.PixelEvent, format OutputFormat) error {
	if format == OutputFormatJSON {
		data, err := json.Marshal(event)
		if err != nil {
			return fmt.Errorf("failed to marshal pixel event: %w", err)
		}
		_, err = fmt.Fprintf(w, "%s\n", data)
		return err
	}

	hex, err := canvas.Hex(event.Pixel.Color)
	if err != nil {
		hex = "?"
	}
	_, err = fmt.Fprintf(w, "[%s] 🎨 %s color %d (%s) by %s\n",
		time.Unix(int64(event.Pixel.Timestamp), 0).UTC().Format("15:04:05"),
		event.Coord, event.Pixel.Color, hex, event.Pixel.Painter)
	return err
}

// PollForPixel polls (x, y) until it holds a pixel stamped at or after since.
// Polls every 200ms for the specified timeout duration.
func PollForPixel(ctx context.Context, reader PixelReader, x, y, since uint64, timeout time.Duration) (canvas.Pixel, error) {
	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()

	timeoutCh := time.After(timeout)

	for {
		select {
		case <-ctx.Done():
			return canvas.Pixel{}, ctx.Err()

		case <-timeoutCh:
			return canvas.Pixel{}, fmt.Errorf("timeout waiting for pixel (%d, %d) after %v", x, y, timeout)

		case <-ticker.C:
			pixel, found, err := reader.GetPixel(ctx, x, y)
			if err != nil {
				return canvas.Pixel{}, fmt.Errorf("failed to query pixel: %w", err)
			}
			if found && pixel.Timestamp >= since {
				return pixel, nil
			}
		}
	}
}
