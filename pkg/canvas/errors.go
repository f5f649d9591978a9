package canvas

import (
	"errors"

	"github.com/redis/go-redis/v9"
)

var (
	// ErrUnauthorized means the caller could not prove it acts as the named painter.
	// Recoverable: the caller may retry with valid credentials.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrOutOfBounds means a write targeted a coordinate outside the canvas.
	ErrOutOfBounds = errors.New("coordinates out of bounds")

	// ErrInvalidColor means a write used a color outside the palette.
	ErrInvalidColor = errors.New("invalid color")

	// ErrHubNotInitialized means the store was never bound to a game hub.
	// This is a deployment defect, not a caller mistake: do not retry it.
	ErrHubNotInitialized = errors.New("game hub reference not initialized")
)

// IsNotFound returns true if the error is a Redis "key not found" error (redis.Nil).
func IsNotFound(err error) bool {
	return errors.Is(err, redis.Nil)
}

// IsCallerError reports whether err is one of the validation failures a caller
// can fix by changing its input or credentials.
func IsCallerError(err error) bool {
	return errors.Is(err, ErrUnauthorized) ||
		errors.Is(err, ErrOutOfBounds) ||
		errors.Is(err, ErrInvalidColor)
}
