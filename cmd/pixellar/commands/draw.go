package commands

import (
	"fmt"
	"strconv"

	"github.com/dyluth/pixellar/internal/auth"
	"github.com/dyluth/pixellar/internal/printer"
	"github.com/dyluth/pixellar/pkg/canvas"
	"github.com/spf13/cobra"
)

var (
	drawPainter string
	drawToken   string
)

var drawCmd = &cobra.Command{
	Use:   "draw X Y COLOR",
	Short: "Set the color of one cell",
	Long: `Set the color of one cell as the given painter.

The draw must carry a token proving the painter's identity. With --token the
given token is used; otherwise one is minted with the configured auth secret.

Examples:
  pixellar draw 10 20 5 --painter alice
  pixellar draw 0 0 15 --painter alice --token "$TOKEN"`,
	Args: cobra.ExactArgs(3),
	RunE: runDraw,
}

func init() {
	drawCmd.Flags().StringVarP(&drawPainter, "painter", "p", "", "Painter identity (required)")
	drawCmd.Flags().StringVarP(&drawToken, "token", "t", "", "Bearer token for the painter (minted if omitted)")
	drawCmd.MarkFlagRequired("painter")
	rootCmd.AddCommand(drawCmd)
}

func runDraw(cmd *cobra.Command, args []string) error {
	x, y, err := parseXY(args[0], args[1])
	if err != nil {
		return err
	}
	color, err := strconv.ParseUint(args[2], 10, 32)
	if err != nil {
		return printer.Error("invalid color", fmt.Sprintf("%q is not a palette index", args[2]), nil)
	}

	token := drawToken
	if token == "" {
		if err := cfg.RequireSecret(); err != nil {
			return printer.Error("no token", "No --token given and no auth secret configured to mint one.", []string{
				"Pass --token",
				"Set auth.secret in pixellar.yml or PIXELLAR_AUTH_SECRET",
			})
		}
		issuer, err := auth.NewTokenIssuer(cfg.Auth.Secret, cfg.Auth.TokenTTL)
		if err != nil {
			return err
		}
		if token, err = issuer.Issue(canvas.Identity(drawPainter)); err != nil {
			return printer.Error("failed to mint token", err.Error(), nil)
		}
	}

	ctx := auth.WithToken(cmd.Context(), token)

	store, closeStore, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	if err := store.Draw(ctx, canvas.Identity(drawPainter), x, y, uint32(color)); err != nil {
		return storeError(err)
	}

	printer.Success("Drew color %d at %s as %s\n", color, canvas.Coord{X: x, Y: y}, drawPainter)
	return nil
}

// parseXY parses coordinate arguments. Range checks are left to the store.
func parseXY(xs, ys string) (uint64, uint64, error) {
	x, errX := strconv.ParseUint(xs, 10, 64)
	y, errY := strconv.ParseUint(ys, 10, 64)
	if errX != nil || errY != nil {
		return 0, 0, printer.Error(
			"invalid coordinates",
			fmt.Sprintf("(%s, %s) are not unsigned integers", xs, ys),
			nil,
		)
	}
	return x, y, nil
}
