package plugins

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/ordino/internal/interfaces"
	"github.com/ternarybob/ordino/internal/models"
)

// Registry indexes plugins by name. It is populated once at startup
// and read-only thereafter; it is constructed explicitly and passed
// through the engine, never held as a singleton.
type Registry struct {
	plugins  map[string]Plugin
	external map[string]bool   // names loaded from shared objects
	aliases  map[string]string // "file:<path>" spec -> registered name
	logger   arbor.ILogger
	mu       sync.RWMutex
}

// NewRegistry creates an empty plugin registry
func NewRegistry(logger arbor.ILogger) *Registry {
	return &Registry{
		plugins:  make(map[string]Plugin),
		external: make(map[string]bool),
		aliases:  make(map[string]string),
		logger:   logger,
	}
}

// Register adds one plugin under its declared name. The contract is
// verified at registration; a duplicate name is rejected with an
// error (the earlier registration wins).
func (r *Registry) Register(p Plugin) error {
	if p == nil {
		return fmt.Errorf("%w: plugin is nil", models.ErrPluginWrongInterface)
	}

	name := p.Name()
	if name == "" {
		return fmt.Errorf("%w: plugin declares an empty name", models.ErrPluginWrongInterface)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.plugins[name]; exists {
		return fmt.Errorf("plugin %q already registered", name)
	}

	r.plugins[name] = p

	r.logger.Debug().
		Str("plugin", name).
		Msg("Plugin registered")

	return nil
}

// RegisterExternal loads a shared-object plugin from a `file:<path>`
// spec (or a bare path) and registers it under its declared name. The
// spec itself becomes an alias so jobs can reference the plugin by
// either form. Loading the same spec twice is a no-op.
func (r *Registry) RegisterExternal(spec string) error {
	r.mu.RLock()
	_, loaded := r.aliases[spec]
	r.mu.RUnlock()
	if loaded {
		return nil
	}

	p, err := loadExternal(spec)
	if err != nil {
		return err
	}

	if err := r.Register(p); err != nil {
		return err
	}

	r.mu.Lock()
	r.external[p.Name()] = true
	r.aliases[spec] = p.Name()
	r.mu.Unlock()

	r.logger.Info().
		Str("plugin", p.Name()).
		Str("spec", spec).
		Msg("External plugin loaded")

	return nil
}

// LoadDir registers every shared object found directly in dir
func (r *Registry) LoadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("%w: failed to read plugin directory %s: %v", models.ErrPluginExternal, dir, err)
	}

	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".so" {
			continue
		}
		spec := FileSpecPrefix + filepath.Join(dir, entry.Name())
		if err := r.RegisterExternal(spec); err != nil {
			return err
		}
	}

	return nil
}

// ResolveName maps a job's plugin reference to the registered name,
// translating `file:` aliases.
func (r *Registry) ResolveName(name string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if registered, ok := r.aliases[name]; ok {
		return registered
	}
	return name
}

// Lookup returns the catalog entry for one plugin reference
func (r *Registry) Lookup(name string) (interfaces.PluginEntry, bool) {
	resolved := r.ResolveName(name)

	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.plugins[resolved]
	if !ok {
		return interfaces.PluginEntry{}, false
	}
	return r.entry(p), true
}

// List returns all registered plugins in name order
func (r *Registry) List() []interfaces.PluginEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entries := make([]interfaces.PluginEntry, 0, len(r.plugins))
	for _, p := range r.plugins {
		entries = append(entries, r.entry(p))
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name < entries[j].Name
	})

	return entries
}

// Get returns the plugin implementation for one reference
func (r *Registry) Get(name string) (Plugin, bool) {
	resolved := r.ResolveName(name)

	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.plugins[resolved]
	return p, ok
}

// Execute runs the named plugin and pushes its return value or caught
// failure onto the sink. This is the worker target of the isolated
// executor: panics inside the plugin body never escape.
func (r *Registry) Execute(ctx context.Context, name string, params map[string]interface{}, sink chan<- Result) {
	defer func() {
		if rec := recover(); rec != nil {
			sink <- Result{Err: fmt.Errorf("%w: plugin %q panicked: %v", models.ErrPluginExecution, name, rec)}
		}
	}()

	p, ok := r.Get(name)
	if !ok {
		sink <- Result{Err: fmt.Errorf("%w: %q", models.ErrPluginNotFound, name)}
		return
	}

	value, err := p.Run(ctx, params)
	sink <- Result{Value: value, Err: err}
}

// entry builds the catalog view of one plugin; callers hold the lock
func (r *Registry) entry(p Plugin) interfaces.PluginEntry {
	return interfaces.PluginEntry{
		Name:        p.Name(),
		Description: p.Description(),
		Docs:        p.Docs(),
		External:    r.external[p.Name()],
	}
}

// Ensure Registry implements the PluginCatalog interface
var _ interfaces.PluginCatalog = (*Registry)(nil)
