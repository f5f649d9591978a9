package commands

import (
	"fmt"
	"os"

	"github.com/dyluth/pixellar/internal/filter"
	"github.com/dyluth/pixellar/internal/pixelfmt"
	"github.com/dyluth/pixellar/internal/printer"
	"github.com/dyluth/pixellar/internal/timespec"
	"github.com/dyluth/pixellar/pkg/canvas"
	"github.com/spf13/cobra"
)

var (
	pixelsOutput  string
	pixelsPainter string
	pixelsColor   int
	pixelsSince   string
	pixelsUntil   string
)

var pixelsCmd = &cobra.Command{
	Use:   "pixels",
	Short: "List every drawn cell",
	Long: `List every drawn cell in row-major order (x outer, y inner).

Output Formats:
  default - Table with coordinates, color, painter and age
  jsonl   - One JSON object per line, for jq and friends
  grid    - The canvas itself, in palette colors

Filters are ANDed together.

Examples:
  pixellar pixels
  pixellar pixels --output grid
  pixellar pixels --painter alice --since 1h --output jsonl`,
	Args: cobra.NoArgs,
	RunE: runPixels,
}

func init() {
	pixelsCmd.Flags().StringVarP(&pixelsOutput, "output", "o", "default", "Output format (default, jsonl or grid)")
	pixelsCmd.Flags().StringVar(&pixelsPainter, "painter", "", "Only cells last drawn by this painter")
	pixelsCmd.Flags().IntVar(&pixelsColor, "color", -1, "Only cells of this palette index")
	pixelsCmd.Flags().StringVar(&pixelsSince, "since", "", "Only cells drawn after (duration like 1h or RFC3339)")
	pixelsCmd.Flags().StringVar(&pixelsUntil, "until", "", "Only cells drawn before (duration like 1h or RFC3339)")
	rootCmd.AddCommand(pixelsCmd)
}

func runPixels(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	format, err := pixelfmt.ParseOutputFormat(pixelsOutput)
	if err != nil {
		return printer.Error("invalid output format", err.Error(), []string{"Valid formats: default, jsonl, grid"})
	}

	criteria, err := buildCriteria(pixelsPainter, pixelsColor, pixelsSince, pixelsUntil)
	if err != nil {
		return err
	}

	store, closeStore, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	pixels, err := store.GetAllPixels(ctx)
	if err != nil {
		return storeError(err)
	}

	useColor := os.Getenv("NO_COLOR") == ""
	return pixelfmt.Write(printer.Out, format, criteria.Apply(pixels), cfg.Instance, useColor)
}

// buildCriteria turns filter flags into filter criteria. color < 0 means any.
func buildCriteria(painter string, color int, since, until string) (*filter.Criteria, error) {
	sinceTS, untilTS, err := timespec.ParseRange(since, until)
	if err != nil {
		return nil, printer.Error("invalid time range", err.Error(), nil)
	}

	criteria := &filter.Criteria{
		SinceTimestamp: sinceTS,
		UntilTimestamp: untilTS,
		Painter:        canvas.Identity(painter),
	}
	if color >= 0 {
		if color > int(canvas.MaxColor) {
			return nil, printer.Error("invalid color", fmt.Sprintf("%d is not a palette index (0-%d)", color, canvas.MaxColor), nil)
		}
		c := uint32(color)
		criteria.Color = &c
	}
	return criteria, nil
}
