package commands

import (
	"github.com/dyluth/pixellar/internal/printer"
	"github.com/dyluth/pixellar/pkg/canvas"
	"github.com/spf13/cobra"
)

var paletteCmd = &cobra.Command{
	Use:   "palette",
	Short: "Show the 16 canvas colors",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		for i, hex := range canvas.Palette {
			r, g, b, err := canvas.RGB(uint32(i))
			if err != nil {
				return err
			}
			printer.Info("%2d %s %s\n", i, printer.Swatch(r, g, b, "    "), hex)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(paletteCmd)
}
