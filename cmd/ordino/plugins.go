package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ternarybob/ordino/internal/plugins"
	"github.com/ternarybob/ordino/internal/plugins/builtin"
	"github.com/ternarybob/ordino/internal/services/preview"
)

var pluginsCmd = &cobra.Command{
	Use:   "plugins",
	Short: "Inspect the plugin catalog",
}

var pluginsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all available plugins",
	RunE: func(cmd *cobra.Command, args []string) error {
		registry, err := buildCatalog()
		if err != nil {
			return err
		}
		fmt.Print(preview.PluginTable(registry.List()))
		return nil
	},
}

var pluginsInfoCmd = &cobra.Command{
	Use:   "info <name>",
	Short: "Show the documentation of one plugin",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		registry, err := buildCatalog()
		if err != nil {
			return err
		}

		entry, found := registry.Lookup(args[0])
		if !found {
			return fmt.Errorf("plugin %q not found", args[0])
		}

		fmt.Print(preview.PluginInfo(entry))
		return nil
	},
}

func init() {
	pluginsCmd.AddCommand(pluginsListCmd)
	pluginsCmd.AddCommand(pluginsInfoCmd)
}

// buildCatalog assembles the plugin registry the way a run would,
// without loading a job document: built-ins plus the configured
// plugin directory.
func buildCatalog() (*plugins.Registry, error) {
	registry := plugins.NewRegistry(logger)
	if err := builtin.RegisterAll(registry); err != nil {
		return nil, err
	}

	if dir := config.Plugins.Dir; dir != "" {
		if err := registry.LoadDir(dir); err != nil {
			logger.Warn().
				Err(err).
				Str("dir", dir).
				Msg("Failed to load plugin directory")
		}
	}

	return registry, nil
}
