package canvas

import (
	"fmt"
	"strconv"
)

// Serialization helpers for converting between Pixel and its Redis hash.
//
// A pixel is stored as a three-field hash. Fields are always written together and
// in the fixed order color, painter, timestamp, so a write fully replaces whatever
// record was there before.

// Hash field names, in storage order.
const (
	fieldColor     = "color"
	fieldPainter   = "painter"
	fieldTimestamp = "timestamp"
)

// PixelToFields converts a Pixel to ordered HSET arguments (field, value, ...).
func PixelToFields(p Pixel) []interface{} {
	return []interface{}{
		fieldColor, p.Color,
		fieldPainter, string(p.Painter),
		fieldTimestamp, p.Timestamp,
	}
}

// HashToPixel converts a Redis hash back to a Pixel.
// Every field must be present; a partial hash means the record is corrupt.
func HashToPixel(hash map[string]string) (Pixel, error) {
	colorStr, ok := hash[fieldColor]
	if !ok {
		return Pixel{}, fmt.Errorf("missing %s field", fieldColor)
	}
	color, err := strconv.ParseUint(colorStr, 10, 32)
	if err != nil {
		return Pixel{}, fmt.Errorf("invalid color field: %w", err)
	}

	painter, ok := hash[fieldPainter]
	if !ok {
		return Pixel{}, fmt.Errorf("missing %s field", fieldPainter)
	}

	tsStr, ok := hash[fieldTimestamp]
	if !ok {
		return Pixel{}, fmt.Errorf("missing %s field", fieldTimestamp)
	}
	timestamp, err := strconv.ParseUint(tsStr, 10, 64)
	if err != nil {
		return Pixel{}, fmt.Errorf("invalid timestamp field: %w", err)
	}

	return Pixel{
		Color:     uint32(color),
		Painter:   Identity(painter),
		Timestamp: timestamp,
	}, nil
}
