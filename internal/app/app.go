// -----------------------------------------------------------------------
// Application wiring - builds the engine from a config and a document
// -----------------------------------------------------------------------

package app

import (
	"fmt"
	"strings"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/ordino/internal/common"
	"github.com/ternarybob/ordino/internal/interfaces"
	"github.com/ternarybob/ordino/internal/jobs"
	"github.com/ternarybob/ordino/internal/models"
	"github.com/ternarybob/ordino/internal/plugins"
	"github.com/ternarybob/ordino/internal/plugins/builtin"
	"github.com/ternarybob/ordino/internal/services/cache"
	"github.com/ternarybob/ordino/internal/services/container"
	"github.com/ternarybob/ordino/internal/services/events"
	"github.com/ternarybob/ordino/internal/services/loader"
	"github.com/ternarybob/ordino/internal/services/resolver"
	"github.com/ternarybob/ordino/internal/services/scheduler"
	"github.com/ternarybob/ordino/internal/services/templater"
	"github.com/ternarybob/ordino/internal/services/validation"
)

// App holds the wired engine components for one document run
type App struct {
	Config   *common.Config
	Logger   arbor.ILogger
	Document *models.JobDocument

	Loader    *loader.Service
	Cache     interfaces.OutputCache
	Registry  *plugins.Registry
	Validator *validation.Service
	Report    *validation.Report

	Manager   *jobs.Manager
	Hooks     *jobs.Hooks
	Bus       interfaces.EventBus
	Scheduler *scheduler.Service
}

// New loads and validates the configured job document and wires the
// engine around it in dependency order: cache, plugin registry,
// validation, resolution, templating, execution, and scheduling.
func New(cfg *common.Config, logger arbor.ILogger) (*App, error) {
	app := &App{
		Config: cfg,
		Logger: logger,
		Loader: loader.NewService(logger),
	}

	doc, err := app.Loader.Load(cfg.Document.Path)
	if err != nil {
		return nil, err
	}
	app.Document = doc

	if err := app.initCache(); err != nil {
		return nil, err
	}
	if err := app.initRegistry(); err != nil {
		return nil, err
	}
	if err := app.initValidation(); err != nil {
		return nil, err
	}
	app.initEngine()

	logger.Info().
		Str("document", cfg.Document.Path).
		Int("jobs", len(doc.Jobs)).
		Int("hooks", len(doc.Hooks)).
		Msg("Engine initialized")

	return app, nil
}

// initCache creates the output cache and removes stale attempt files
// when configured to.
func (a *App) initCache() error {
	cacheService, err := cache.NewService(a.Config.Cache.Dir, a.Logger)
	if err != nil {
		return fmt.Errorf("failed to initialize cache: %w", err)
	}

	if a.Config.Cache.Clean {
		if err := cacheService.Clean(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to clean cache directory")
		}
	}

	a.Cache = cacheService
	return nil
}

// initRegistry registers the built-in plugins, loads every external
// plugin the document references, and scans the configured plugin
// directory for shared objects.
func (a *App) initRegistry() error {
	registry := plugins.NewRegistry(a.Logger)

	if err := builtin.RegisterAll(registry); err != nil {
		return fmt.Errorf("failed to register built-in plugins: %w", err)
	}

	for _, job := range a.Document.Jobs {
		if !strings.HasPrefix(job.Plugin, plugins.FileSpecPrefix) {
			continue
		}
		if err := registry.RegisterExternal(job.Plugin); err != nil {
			return fmt.Errorf("job %q: %w", job.ID, err)
		}
	}

	if dir := a.Config.Plugins.Dir; dir != "" {
		if err := registry.LoadDir(dir); err != nil {
			return err
		}
	}

	a.Registry = registry
	return nil
}

// initValidation runs the full validation pipeline over the document:
// schema, job references and graphs, then hooks. The report collects
// per-check findings for the CLI.
func (a *App) initValidation() error {
	a.Validator = validation.NewService(a.Registry, a.Logger)
	a.Report = validation.NewReport()

	if err := a.Validator.ValidateSchema(a.Document); err != nil {
		return err
	}
	if err := a.Validator.ValidateJobs(a.Document.Jobs, a.Report); err != nil {
		return err
	}
	if err := a.Validator.ValidateHooks(a.Document.Hooks, a.Document.Jobs, a.Report); err != nil {
		return err
	}

	return nil
}

// initEngine wires the execution services around the validated document
func (a *App) initEngine() {
	resolverService := resolver.NewService(a.Cache, a.Logger)
	templaterService := templater.NewService(a.Logger)
	executor := plugins.NewExecutor(a.Registry, a.Logger)
	driver := container.NewDriver(a.Logger)

	a.Manager = jobs.NewManager(
		a.Document.Jobs,
		a.Cache,
		resolverService,
		templaterService,
		executor,
		driver,
		a.Logger,
	)
	a.Hooks = jobs.NewHooks(a.Document, a.Logger)
	a.Bus = events.NewBus(0, a.Logger)

	a.Scheduler = scheduler.NewService(
		a.Manager,
		a.Hooks,
		a.Bus,
		a.Config.Scheduler,
		a.Logger,
	)
}

// Close trips the scheduler gate; the scheduler itself owns shutdown
// of the cron runner and the event loop.
func (a *App) Close() error {
	if a.Scheduler != nil {
		a.Scheduler.Stop()
	}
	return nil
}
