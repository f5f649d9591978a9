package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dyluth/pixellar/internal/printer"
	"github.com/dyluth/pixellar/internal/watch"
	"github.com/spf13/cobra"
)

var (
	watchOutputFormat string
	watchPainter      string
	watchColor        int
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Stream pixel changes as they happen",
	Long: `Stream every successful draw on the canvas as it happens.

Output Formats:
  default - Human-readable output with timestamps
  json    - Line-delimited JSON for programmatic processing

Examples:
  pixellar watch
  pixellar watch --painter alice
  pixellar watch --output=json > events.jsonl`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVarP(&watchOutputFormat, "output", "o", "default", "Output format (default or json)")
	watchCmd.Flags().StringVar(&watchPainter, "painter", "", "Only draws by this painter")
	watchCmd.Flags().IntVar(&watchColor, "color", -1, "Only draws of this palette index")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	var outputFormat watch.OutputFormat
	switch watchOutputFormat {
	case "default":
		outputFormat = watch.OutputFormatDefault
	case "json":
		outputFormat = watch.OutputFormatJSON
	default:
		return printer.Error(
			"invalid output format",
			fmt.Sprintf("Unknown format: %s", watchOutputFormat),
			[]string{"Valid formats: default, json"},
		)
	}

	criteria, err := buildCriteria(watchPainter, watchColor, "", "")
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	sub, err := store.SubscribePixelEvents(ctx)
	if err != nil {
		return storeError(err)
	}
	defer sub.Close()

	if outputFormat == watch.OutputFormatDefault {
		printer.Step("Watching canvas '%s' (Ctrl+C to stop)\n", cfg.Instance)
	}
	return watch.StreamPixels(ctx, sub, criteria, outputFormat, printer.Out)
}
