package canvas

import "fmt"

const (
	// Width is the number of columns on the canvas.
	Width uint64 = 50

	// Height is the number of rows on the canvas.
	Height uint64 = 50

	// PaletteSize is the number of selectable colors.
	PaletteSize = 16

	// MaxColor is the highest valid palette index.
	MaxColor uint32 = PaletteSize - 1
)

// Identity is an opaque actor identity issued by the authorization system.
// It is only ever compared for equality.
type Identity string

// Coord addresses a single cell. Valid coordinates satisfy X < Width and Y < Height.
type Coord struct {
	X uint64 `json:"x"`
	Y uint64 `json:"y"`
}

// InBounds reports whether the coordinate lies on the canvas.
func (c Coord) InBounds() bool {
	return c.X < Width && c.Y < Height
}

// String renders the coordinate as "(x, y)".
func (c Coord) String() string {
	return fmt.Sprintf("(%d, %d)", c.X, c.Y)
}

// Pixel is the current state of one drawn cell.
// Field order (color, painter, timestamp) is part of the storage contract.
type Pixel struct {
	Color     uint32   `json:"color"`     // Palette index, 0-15
	Painter   Identity `json:"painter"`   // Actor credited with the last write
	Timestamp uint64   `json:"timestamp"` // Ledger time of the last write (unix seconds)
}

// PlacedPixel pairs a pixel with its coordinate. Used for full-grid enumeration.
type PlacedPixel struct {
	Coord Coord `json:"coord"`
	Pixel Pixel `json:"pixel"`
}

// PixelEvent is published on the pixel events channel after every successful draw.
type PixelEvent struct {
	ID    string `json:"id"` // UUID - unique identifier for this event
	Coord Coord  `json:"coord"`
	Pixel Pixel  `json:"pixel"`
}

// Placed returns the event as a PlacedPixel.
func (e *PixelEvent) Placed() PlacedPixel {
	return PlacedPixel{Coord: e.Coord, Pixel: e.Pixel}
}

// ValidateColor checks that color is a palette index.
func ValidateColor(color uint32) error {
	if color > MaxColor {
		return fmt.Errorf("%w: %d (must be 0-%d)", ErrInvalidColor, color, MaxColor)
	}
	return nil
}

// ValidateCoord checks that (x, y) lies on the canvas.
func ValidateCoord(x, y uint64) error {
	if !(Coord{X: x, Y: y}).InBounds() {
		return fmt.Errorf("%w: (%d, %d) outside %dx%d canvas", ErrOutOfBounds, x, y, Width, Height)
	}
	return nil
}
