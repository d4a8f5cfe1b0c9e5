package plugins

import (
	"fmt"
	"os"
	goplugin "plugin"
	"strings"

	"github.com/ternarybob/ordino/internal/models"
)

// loadExternal opens a shared-object plugin and resolves its exported
// plugin symbol. The spec may carry the `file:` prefix or be a bare
// path. Load failures wrap ErrPluginExternal; a symbol that does not
// satisfy the Plugin interface wraps ErrPluginWrongInterface.
func loadExternal(spec string) (Plugin, error) {
	path := strings.TrimPrefix(spec, FileSpecPrefix)
	if path == "" {
		return nil, fmt.Errorf("%w: empty plugin path in %q", models.ErrPluginExternal, spec)
	}

	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%w: plugin file %s: %v", models.ErrPluginExternal, path, err)
	}

	lib, err := goplugin.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open %s: %v", models.ErrPluginExternal, path, err)
	}

	symbol, err := lib.Lookup(ExternalSymbol)
	if err != nil {
		return nil, fmt.Errorf("%w: %s does not export %s: %v", models.ErrPluginExternal, path, ExternalSymbol, err)
	}

	// The symbol may be the plugin value itself or a pointer to it
	switch v := symbol.(type) {
	case Plugin:
		return v, nil
	case *Plugin:
		if *v == nil {
			return nil, fmt.Errorf("%w: %s exports a nil %s", models.ErrPluginWrongInterface, path, ExternalSymbol)
		}
		return *v, nil
	default:
		return nil, fmt.Errorf("%w: %s symbol %s is %T, not a plugin", models.ErrPluginWrongInterface, path, ExternalSymbol, symbol)
	}
}
