package builtin

import (
	"github.com/ternarybob/ordino/internal/plugins"
)

// All returns the built-in plugin catalog in registration order
func All() []plugins.Plugin {
	return []plugins.Plugin{
		&Echo{},
		&DelayedEcho{},
		&Binary{},
		&HTTPGet{},
		&Fail{},
		&Exit{},
	}
}

// RegisterAll registers every built-in plugin with the registry
func RegisterAll(registry *plugins.Registry) error {
	for _, p := range All() {
		if err := registry.Register(p); err != nil {
			return err
		}
	}
	return nil
}
