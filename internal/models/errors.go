// -----------------------------------------------------------------------
// Engine error taxonomy - sentinel values matched with errors.Is
// -----------------------------------------------------------------------

package models

import "errors"

// Document errors
var (
	// ErrYamlParse indicates the job document could not be parsed as YAML
	ErrYamlParse = errors.New("yaml parse error")
	// ErrSchema indicates the parsed document violates the document schema
	ErrSchema = errors.New("document schema violation")
	// ErrNoData indicates the document contains neither jobs nor hooks
	ErrNoData = errors.New("document contains no data")
)

// Validation errors
var (
	// ErrJobValidation indicates a job failed reference, cycle, or field validation
	ErrJobValidation = errors.New("job validation failed")
	// ErrHookValidation indicates a hook failed type or job-list validation
	ErrHookValidation = errors.New("hook validation failed")
)

// Plugin errors
var (
	// ErrPluginNotFound indicates the named plugin is not in the registry
	ErrPluginNotFound = errors.New("plugin not found")
	// ErrPluginWrongInterface indicates a discovered plugin does not satisfy the plugin contract
	ErrPluginWrongInterface = errors.New("plugin does not satisfy the plugin contract")
	// ErrPluginExecution indicates the plugin body returned an error or panicked
	ErrPluginExecution = errors.New("plugin execution failed")
	// ErrPluginTimeout indicates the plugin worker exceeded the job timeout
	ErrPluginTimeout = errors.New("plugin execution timed out")
	// ErrPluginExternal indicates an external plugin file could not be loaded
	ErrPluginExternal = errors.New("external plugin load failed")
)

// Container errors
var (
	// ErrContainer indicates a container driver failure (client, create, start, wait, logs)
	ErrContainer = errors.New("container driver failure")
	// ErrContainerExec indicates the container exited with a non-zero status
	ErrContainerExec = errors.New("container exited with non-zero status")
)

// Job errors
var (
	// ErrJobNotFound indicates no job with the requested id exists
	ErrJobNotFound = errors.New("job not found")
	// ErrJobFailed indicates a job reached ERROR after exhausting retries
	ErrJobFailed = errors.New("job failed")
	// ErrJobKill indicates the kill pill fired; the scheduler terminates the run
	ErrJobKill = errors.New("job kill signal")
)

// Hook errors
var (
	// ErrHookNotFound indicates no hook of the requested type was loaded
	ErrHookNotFound = errors.New("hook not found")
)
