package interfaces

// OutputCache stores per-attempt job stdout/stderr under the cache
// directory and reads it back for ${result:…} resolution.
type OutputCache interface {
	// Clean removes stale attempt files from previous runs
	Clean() error

	// WriteOutput stores one attempt's output. Mapping values fan out
	// to one file per key; scalar values produce a single file.
	WriteOutput(jobID string, value interface{}, attempt int, key string, isError bool) error

	// ReadOutput returns the stored output for a job. A positive
	// attempt reads that attempt first and falls back to the most
	// recently written one; attempt <= 0 reads the latest directly.
	ReadOutput(jobID, key string, attempt int, isError bool) (string, error)
}
