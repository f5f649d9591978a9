package commands

import (
	"github.com/dyluth/pixellar/internal/printer"
	"github.com/dyluth/pixellar/pkg/canvas"
	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init HUB",
	Short: "Bind the canvas to a game hub",
	Long: `Bind the canvas to a game hub.

The hub identity is stored as-is and receives start_game and end_game calls.
Running init again replaces the previous hub.

Examples:
  pixellar init hub-main
  pixellar init hub-staging --instance staging`,
	Args: cobra.ExactArgs(1),
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	store, closeStore, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	if err := store.Initialize(ctx, canvas.Identity(args[0])); err != nil {
		return storeError(err)
	}

	printer.Success("Canvas '%s' bound to game hub '%s'\n", cfg.Instance, args[0])
	return nil
}
