// Package pixelfmt renders canvas pixels for the CLI.
package pixelfmt

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dyluth/pixellar/internal/printer"
	"github.com/dyluth/pixellar/pkg/canvas"
)

// now is replaced in tests.
var now = time.Now

// OutputFormat selects how a pixel listing is written.
type OutputFormat string

const (
	OutputFormatDefault OutputFormat = "default"
	OutputFormatJSONL   OutputFormat = "jsonl"
	OutputFormatGrid    OutputFormat = "grid"
)

// ParseOutputFormat validates a --output flag value.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch OutputFormat(s) {
	case OutputFormatDefault, OutputFormatJSONL, OutputFormatGrid:
		return OutputFormat(s), nil
	}
	return "", fmt.Errorf("unknown output format %q", s)
}

// Write renders pixels in the given format.
func Write(w io.Writer, format OutputFormat, pixels []canvas.PlacedPixel, instanceName string, useColor bool) error {
	switch format {
	case OutputFormatJSONL:
		return FormatJSONL(w, pixels)
	case OutputFormatGrid:
		return RenderGrid(w, pixels, useColor)
	default:
		FormatTable(w, pixels, instanceName)
		return nil
	}
}

// FormatTable writes pixels as a formatted table to the provided writer.
// Returns the number of pixels formatted.
func FormatTable(w io.Writer, pixels []canvas.PlacedPixel, instanceName string) int {
	if len(pixels) == 0 {
		fmt.Fprintf(w, "No pixels drawn on instance '%s'\n", instanceName)
		return 0
	}

	fmt.Fprintf(w, "Pixels for instance '%s':\n\n", instanceName)

	fmt.Fprintf(w, "%-4s %-4s %-5s %-8s %-20s %s\n",
		"X", "Y", "COLOR", "HEX", "PAINTER", "AGE")
	fmt.Fprintf(w, "%-4s %-4s %-5s %-8s %-20s %s\n",
		"----", "----", "-----", "--------", "--------------------", "--------")

	for _, p := range pixels {
		fmt.Fprintf(w, "%-4d %-4d %-5d %-8s %-20s %s\n",
			p.Coord.X,
			p.Coord.Y,
			p.Pixel.Color,
			formatHex(p.Pixel.Color),
			formatPainter(p.Pixel.Painter),
			formatAge(p.Pixel.Timestamp),
		)
	}

	countMsg := "pixel"
	if len(pixels) != 1 {
		countMsg = "pixels"
	}
	fmt.Fprintf(w, "\n%d %s found\n", len(pixels), countMsg)

	return len(pixels)
}

// FormatJSONL writes pixels as line-delimited JSON, one PlacedPixel per line.
func FormatJSONL(w io.Writer, pixels []canvas.PlacedPixel) error {
	for _, p := range pixels {
		data, err := json.Marshal(p)
		if err != nil {
			return fmt.Errorf("failed to marshal pixel to JSON: %w", err)
		}
		if _, err := fmt.Fprintf(w, "%s\n", data); err != nil {
			return fmt.Errorf("failed to write JSONL output: %w", err)
		}
	}
	return nil
}

// FormatSingleJSON writes v as pretty-printed JSON followed by a newline.
func FormatSingleJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	if _, err := w.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write JSON output: %w", err)
	}
	return nil
}

// RenderGrid draws the canvas with y growing downwards. With useColor each cell
// is a two-space palette swatch; otherwise the color index is printed as one
// hex digit and undrawn cells as '.'.
func RenderGrid(w io.Writer, pixels []canvas.PlacedPixel, useColor bool) error {
	var grid [canvas.Width][canvas.Height]*canvas.Pixel
	for i := range pixels {
		c := pixels[i].Coord
		if c.InBounds() {
			grid[c.X][c.Y] = &pixels[i].Pixel
		}
	}

	var sb strings.Builder
	for y := uint64(0); y < canvas.Height; y++ {
		for x := uint64(0); x < canvas.Width; x++ {
			sb.WriteString(cell(grid[x][y], useColor))
		}
		sb.WriteByte('\n')
	}

	if _, err := io.WriteString(w, sb.String()); err != nil {
		return fmt.Errorf("failed to write grid: %w", err)
	}
	return nil
}

func cell(p *canvas.Pixel, useColor bool) string {
	if !useColor {
		if p == nil {
			return "."
		}
		return fmt.Sprintf("%x", p.Color)
	}

	if p == nil {
		return "  "
	}
	r, g, b, err := canvas.RGB(p.Color)
	if err != nil {
		return "??"
	}
	return printer.Swatch(r, g, b, "  ")
}

func formatHex(color uint32) string {
	hex, err := canvas.Hex(color)
	if err != nil {
		return "?"
	}
	return hex
}

// formatPainter truncates long identities (account addresses) for table display.
func formatPainter(p canvas.Identity) string {
	s := string(p)
	if s == "" {
		return "-"
	}
	if len(s) > 20 {
		return s[:8] + "..." + s[len(s)-9:]
	}
	return s
}

// formatAge formats a ledger timestamp (unix seconds) as relative time.
func formatAge(ts uint64) string {
	if ts == 0 {
		return "-"
	}

	diff := now().Sub(time.Unix(int64(ts), 0))
	if diff < 0 {
		diff = 0
	}

	if diff < time.Minute {
		return fmt.Sprintf("%ds ago", int(diff.Seconds()))
	} else if diff < time.Hour {
		return fmt.Sprintf("%dm ago", int(diff.Minutes()))
	} else if diff < 24*time.Hour {
		return fmt.Sprintf("%dh ago", int(diff.Hours()))
	}
	return fmt.Sprintf("%dd ago", int(diff.Hours()/24))
}
