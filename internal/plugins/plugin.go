// Package plugins provides the plugin contract, the typed registry,
// and the isolated plugin executor. Built-in plugins register at
// startup from the builtin subpackage; external plugins load from
// shared-object files referenced by jobs as `plugin: "file:<path>"`.
package plugins

import "context"

// Plugin is the contract every plugin must satisfy. A plugin declares
// a stable name and implements Run taking a single param mapping and
// returning a string, a map[string]string of named outputs, or an
// error.
type Plugin interface {
	// Name returns the stable registration name of the plugin
	Name() string

	// Description returns a one-line summary for the catalog
	Description() string

	// Docs returns the long-form documentation page
	Docs() string

	// Run executes the plugin body with resolved, templated params.
	// The context carries the job timeout; a plugin doing blocking
	// work must stop when it is cancelled.
	Run(ctx context.Context, params map[string]interface{}) (interface{}, error)
}

// Result is one tagged plugin outcome pushed onto the executor sink
type Result struct {
	Value interface{}
	Err   error
}

// ExternalSymbol is the exported symbol name a shared-object plugin
// must provide; its value must satisfy the Plugin interface.
const ExternalSymbol = "OrdinoPlugin"

// FileSpecPrefix marks a job plugin reference that loads from disk
const FileSpecPrefix = "file:"
