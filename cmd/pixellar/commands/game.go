package commands

import (
	"github.com/dyluth/pixellar/internal/printer"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var gameCmd = &cobra.Command{
	Use:   "game",
	Short: "Forward match lifecycle calls to the game hub",
}

var gameStartCmd = &cobra.Command{
	Use:   "start [GAME_ID]",
	Short: "Announce a match start to the game hub",
	Long: `Announce a match start to the game hub bound with 'pixellar init'.

A random game id is generated when none is given.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runGameStart,
}

var gameEndCmd = &cobra.Command{
	Use:   "end GAME_ID",
	Short: "Announce a match end to the game hub",
	Args:  cobra.ExactArgs(1),
	RunE:  runGameEnd,
}

func init() {
	gameCmd.AddCommand(gameStartCmd, gameEndCmd)
	rootCmd.AddCommand(gameCmd)
}

func runGameStart(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	gameID := uuid.New().String()
	if len(args) == 1 {
		gameID = args[0]
	}

	store, closeStore, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	if err := store.StartGame(ctx, gameID); err != nil {
		return storeError(err)
	}

	printer.Success("Game %s started\n", gameID)
	return nil
}

func runGameEnd(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	store, closeStore, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	if err := store.EndGame(ctx, args[0]); err != nil {
		return storeError(err)
	}

	printer.Success("Game %s ended\n", args[0])
	return nil
}
