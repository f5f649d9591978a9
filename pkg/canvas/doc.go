// Package canvas provides the Pixellar canvas state store: a fixed-size grid of
// pixel records held in Redis, with authorization-gated writes and permissive reads.
//
// # Overview
//
// The canvas is a 50x50 grid. Any authenticated painter may set the color of a
// single cell; anyone may read a cell or enumerate the whole grid. Every write
// replaces the previous record for that cell outright (last write wins). There is
// no history, no merge and no conflict detection.
//
// # Collaborators
//
// The store depends on three injected interfaces so it can be instantiated many
// times in isolation and tested without any real infrastructure:
//
//   - Authorizer proves that the caller acts as the named painter
//   - Clock supplies a non-decreasing logical timestamp per write
//   - GameHub receives the two fire-and-forget match lifecycle calls
//
// # Usage Example
//
//	store, err := canvas.NewStore(&redis.Options{Addr: "localhost:6379"}, "main", authorizer, hub)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer store.Close()
//
//	if err := store.Draw(ctx, "alice", 0, 0, 6); err != nil {
//		if errors.Is(err, canvas.ErrOutOfBounds) {
//			// caller error, fix the coordinates
//		}
//	}
//
//	pixel, ok, err := store.GetPixel(ctx, 0, 0)
//
// # Redis Schema
//
// All Redis keys follow the pattern: pixellar:{instance_name}:{entity}
//
// Pixels: pixellar:{instance_name}:pixel:{x}:{y} (hash: color, painter, timestamp)
// Hub reference: pixellar:{instance_name}:hub
// Ledger clock: pixellar:{instance_name}:clock
//
// Pub/Sub channels:
//
// Pixel Events: pixellar:{instance_name}:pixel_events
// Game Events: pixellar:{instance_name}:hub:{hub}:game_events
package canvas
