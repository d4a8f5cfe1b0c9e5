// -----------------------------------------------------------------------
// Ordino - declarative task orchestration engine
// -----------------------------------------------------------------------

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/ordino/internal/common"
)

var (
	// Persistent flags
	configFiles  []string
	documentPath string
	logLevel     string

	// Global state, built by loadConfig before every command runs
	config *common.Config
	logger arbor.ILogger
)

var rootCmd = &cobra.Command{
	Use:   "ordino",
	Short: "Declarative task orchestration engine",
	Long: `Ordino drives jobs declared in a single YAML document: plugins or
containers with dependencies, retries, timeouts, cron schedules, result
passing, and lifecycle hooks.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return loadConfig()
	},
}

func init() {
	rootCmd.PersistentFlags().StringSliceVarP(&configFiles, "config", "c", nil,
		"Configuration file path (repeatable, later files override earlier ones)")
	rootCmd.PersistentFlags().StringVarP(&documentPath, "file", "f", "",
		"Job document path (overrides config)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"Log level: debug, info, warn, error (overrides config)")

	rootCmd.AddCommand(jobsCmd)
	rootCmd.AddCommand(pluginsCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig builds the effective configuration in the required order:
// defaults, config files, ORDINO_* env overrides, then CLI flags.
func loadConfig() error {
	if len(configFiles) == 0 {
		if _, err := os.Stat("ordino.toml"); err == nil {
			configFiles = append(configFiles, "ordino.toml")
		}
	}

	cfg, err := common.LoadFromFiles(configFiles...)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	common.ApplyFlagOverrides(cfg, documentPath, logLevel)

	config = cfg
	logger = common.InitLogger(cfg)
	return nil
}

func main() {
	common.InstallCrashHandler("")
	defer common.RecoverWithCrashFile()

	common.LoadVersionFromFile()

	if err := rootCmd.Execute(); err != nil {
		if logger != nil {
			logger.Error().Err(err).Msg("Command failed")
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}
