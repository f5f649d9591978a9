package canvas

import "fmt"

// Redis key pattern helpers
//
// All Redis keys and Pub/Sub channels are namespaced by instance name so that
// several canvases can share one Redis server.
//
// Key pattern: pixellar:{instance_name}:{entity}
// Channel pattern: pixellar:{instance_name}:{event_type}_events

// PixelKey returns the Redis key for the pixel hash at (x, y).
// Pattern: pixellar:{instance_name}:pixel:{x}:{y}
func PixelKey(instanceName string, x, y uint64) string {
	return fmt.Sprintf("pixellar:%s:pixel:%d:%d", instanceName, x, y)
}

// HubKey returns the Redis key of the game hub reference singleton.
// Pattern: pixellar:{instance_name}:hub
func HubKey(instanceName string) string {
	return fmt.Sprintf("pixellar:%s:hub", instanceName)
}

// ClockKey returns the Redis key holding the last issued ledger timestamp.
// Pattern: pixellar:{instance_name}:clock
func ClockKey(instanceName string) string {
	return fmt.Sprintf("pixellar:%s:clock", instanceName)
}

// PixelEventsChannel returns the Pub/Sub channel name for pixel events.
// Pattern: pixellar:{instance_name}:pixel_events
func PixelEventsChannel(instanceName string) string {
	return fmt.Sprintf("pixellar:%s:pixel_events", instanceName)
}

// GameEventsChannel returns the Pub/Sub channel a game hub listens on.
// Pattern: pixellar:{instance_name}:hub:{hub}:game_events
func GameEventsChannel(instanceName string, hub Identity) string {
	return fmt.Sprintf("pixellar:%s:hub:%s:game_events", instanceName, hub)
}
