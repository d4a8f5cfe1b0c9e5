package interfaces

import (
	"context"

	"github.com/ternarybob/ordino/internal/models"
)

// ContainerRunner runs one containerized job to completion against
// the engine socket declared by the job.
type ContainerRunner interface {
	// Run creates, starts, and waits for the container, returning its
	// exit code and combined log text. The container is removed on
	// every exit path.
	Run(ctx context.Context, container *models.JobContainer, env map[string]string) (exitCode int64, logs string, err error)
}
