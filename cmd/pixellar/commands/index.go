package commands

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/dyluth/pixellar/internal/indexer"
	"github.com/dyluth/pixellar/internal/pixelfmt"
	"github.com/dyluth/pixellar/internal/printer"
	"github.com/spf13/cobra"
)

var (
	indexDBPath     string
	indexStatsLimit int
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Mirror the canvas into the SQLite read model",
	Long: `Run the indexer in the foreground: backfill the SQLite read model from the
canvas, then apply every pixel event until interrupted.`,
	Args: cobra.NoArgs,
	RunE: runIndex,
}

var indexStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Rank painters by cells owned, from the read model",
	Args:  cobra.NoArgs,
	RunE:  runIndexStats,
}

func init() {
	indexCmd.PersistentFlags().StringVar(&indexDBPath, "db", "", "SQLite database path (overrides config)")
	indexStatsCmd.Flags().IntVar(&indexStatsLimit, "limit", 10, "Number of painters to show (0 for all)")
	indexCmd.AddCommand(indexStatsCmd)
	rootCmd.AddCommand(indexCmd)
}

func openIndexDB() (*indexer.DB, error) {
	path := cfg.Indexer.DBPath
	if indexDBPath != "" {
		path = indexDBPath
	}
	db, err := indexer.OpenDB(path)
	if err != nil {
		return nil, printer.Error("failed to open index database", err.Error(), nil)
	}
	return db, nil
}

func runIndex(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := openIndexDB()
	if err != nil {
		return err
	}
	defer db.Close()

	store, closeStore, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	printer.Step("Indexing canvas '%s' (Ctrl+C to stop)\n", cfg.Instance)
	if err := indexer.New(store, db).Run(ctx); err != nil {
		return printer.Error("indexer failed", err.Error(), nil)
	}
	return nil
}

func runIndexStats(cmd *cobra.Command, args []string) error {
	db, err := openIndexDB()
	if err != nil {
		return err
	}
	defer db.Close()

	stats, err := db.PainterStats(cmd.Context(), indexStatsLimit)
	if err != nil {
		return printer.Error("failed to read painter stats", err.Error(), nil)
	}
	return pixelfmt.FormatSingleJSON(printer.Out, stats)
}
