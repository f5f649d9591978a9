package commands

import (
	"time"

	"github.com/dyluth/pixellar/internal/pixelfmt"
	"github.com/dyluth/pixellar/internal/printer"
	"github.com/dyluth/pixellar/internal/watch"
	"github.com/dyluth/pixellar/pkg/canvas"
	"github.com/spf13/cobra"
)

var pixelWait time.Duration

var pixelCmd = &cobra.Command{
	Use:   "pixel X Y",
	Short: "Show one cell",
	Long: `Show the current pixel at (X, Y) as JSON.

Cells that were never drawn, and coordinates off the canvas, are reported as
not drawn. With --wait the command polls until the cell is drawn.

Examples:
  pixellar pixel 10 20
  pixellar pixel 10 20 --wait 30s`,
	Args: cobra.ExactArgs(2),
	RunE: runPixel,
}

func init() {
	pixelCmd.Flags().DurationVar(&pixelWait, "wait", 0, "Poll until the cell is drawn, up to this long")
	rootCmd.AddCommand(pixelCmd)
}

func runPixel(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	x, y, err := parseXY(args[0], args[1])
	if err != nil {
		return err
	}

	store, closeStore, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	var pixel canvas.Pixel
	if pixelWait > 0 {
		pixel, err = watch.PollForPixel(ctx, store, x, y, 0, pixelWait)
		if err != nil {
			return printer.Error("pixel not drawn", err.Error(), nil)
		}
	} else {
		var found bool
		pixel, found, err = store.GetPixel(ctx, x, y)
		if err != nil {
			return storeError(err)
		}
		if !found {
			printer.Info("Pixel %s has not been drawn\n", canvas.Coord{X: x, Y: y})
			return nil
		}
	}

	return pixelfmt.FormatSingleJSON(printer.Out, pixel)
}
