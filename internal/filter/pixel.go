// Package filter selects pixels for CLI listings and streams.
package filter

import (
	"github.com/dyluth/pixellar/pkg/canvas"
)

// Criteria defines filtering criteria for pixels.
// All filters are ANDed together - a pixel must match ALL criteria to pass.
type Criteria struct {
	SinceTimestamp uint64          // Unix seconds, 0 = no filter
	UntilTimestamp uint64          // Unix seconds, 0 = no filter
	Painter        canvas.Identity // Exact painter match, empty = no filter
	Color          *uint32         // Palette index, nil = no filter
}

// Matches returns true if the pixel matches all filter criteria.
func (c *Criteria) Matches(p canvas.Pixel) bool {
	if c.SinceTimestamp > 0 && p.Timestamp < c.SinceTimestamp {
		return false
	}
	if c.UntilTimestamp > 0 && p.Timestamp > c.UntilTimestamp {
		return false
	}
	if c.Painter != "" && p.Painter != c.Painter {
		return false
	}
	if c.Color != nil && p.Color != *c.Color {
		return false
	}
	return true
}

// HasFilters returns true if any filters are active.
func (c *Criteria) HasFilters() bool {
	return c.SinceTimestamp > 0 ||
		c.UntilTimestamp > 0 ||
		c.Painter != "" ||
		c.Color != nil
}

// Apply returns the pixels matching c, preserving order.
func (c *Criteria) Apply(pixels []canvas.PlacedPixel) []canvas.PlacedPixel {
	if !c.HasFilters() {
		return pixels
	}
	out := make([]canvas.PlacedPixel, 0, len(pixels))
	for _, p := range pixels {
		if c.Matches(p.Pixel) {
			out = append(out, p)
		}
	}
	return out
}
