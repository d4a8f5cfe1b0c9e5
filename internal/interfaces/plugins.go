package interfaces

// PluginEntry describes one registered plugin for catalog rendering
type PluginEntry struct {
	Name        string
	Description string
	Docs        string
	External    bool // Loaded from a shared-object file rather than compiled in
}

// PluginRunner executes one plugin dispatch in an isolated worker
type PluginRunner interface {
	// Run dispatches the named plugin with resolved params and waits
	// up to timeoutSeconds for its single result (zero means no
	// timeout). The worker's context is cancelled when the timeout
	// fires. Timeouts, worker panics, and the kill pill surface as
	// the corresponding sentinel errors.
	Run(jobID, pluginName string, params map[string]interface{}, timeoutSeconds int) (interface{}, error)
}

// PluginCatalog exposes the read side of the plugin registry
type PluginCatalog interface {
	// List returns all registered plugins in name order
	List() []PluginEntry

	// Lookup returns the entry for one plugin name
	Lookup(name string) (PluginEntry, bool)
}
