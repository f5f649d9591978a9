package commands

import (
	"fmt"
	"os"

	"github.com/dyluth/pixellar/internal/config"
	"github.com/dyluth/pixellar/internal/logging"
	"github.com/dyluth/pixellar/internal/printer"
	"github.com/spf13/cobra"
)

var (
	version string
	commit  string
	date    string

	configPath   string
	instanceFlag string
	redisURLFlag string
	logLevelFlag string

	// cfg is loaded once per invocation by the root PersistentPreRunE.
	cfg *config.PixellarConfig
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "pixellar",
	Short: "Pixellar - shared 50x50 pixel canvas",
	Long: `Pixellar is a shared pixel canvas: a fixed 50x50 grid where any authenticated
painter can set the color of one cell and anyone can read the grid.

Canvas state lives in Redis, namespaced per instance, so several canvases can
share one Redis server.`,
	Version:           version,
	PersistentPreRunE: loadConfig,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
	FParseErrWhitelist: cobra.FParseErrWhitelist{},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	// We print formatted colored errors directly in the printer package
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true
	return rootCmd.Execute()
}

// SetVersionInfo sets the version information for the CLI
func SetVersionInfo(v, c, d string) {
	version = v
	commit = c
	date = d
	rootCmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", v, c, d)
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultPath, "Path to pixellar.yml")
	rootCmd.PersistentFlags().StringVarP(&instanceFlag, "instance", "n", "", "Canvas instance name (overrides config)")
	rootCmd.PersistentFlags().StringVar(&redisURLFlag, "redis-url", "", "Redis URL (overrides config)")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "Log level (overrides config)")
}

// loadConfig reads the config file (a missing default file is fine), then
// applies command-line overrides, which win over both file and environment.
func loadConfig(cmd *cobra.Command, args []string) error {
	allowMissing := !cmd.Flags().Changed("config")

	loaded, err := config.Load(configPath, allowMissing)
	if err != nil {
		return printer.Error(
			"invalid configuration",
			err.Error(),
			[]string{fmt.Sprintf("Check %s and the PIXELLAR_* environment variables", configPath)},
		)
	}

	if instanceFlag != "" {
		loaded.Instance = instanceFlag
	}
	if redisURLFlag != "" {
		loaded.Redis.URL = redisURLFlag
	}
	if logLevelFlag != "" {
		loaded.Log.Level = logLevelFlag
	}
	if err := loaded.Validate(); err != nil {
		return printer.Error("invalid configuration", err.Error(), nil)
	}

	if _, err := logging.Setup(os.Stderr, loaded.Log.Level, loaded.Log.Format); err != nil {
		return printer.Error("invalid log settings", err.Error(), nil)
	}

	cfg = loaded
	return nil
}
