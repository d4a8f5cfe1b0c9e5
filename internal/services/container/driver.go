// Package container runs one job inside a docker or podman engine
// reached over its unix socket. The container is created, started,
// waited on, and force-removed on every exit path.
package container

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/docker/docker/api/types"
	containertypes "github.com/docker/docker/api/types/container"
	"github.com/docker/docker/client"
	"github.com/docker/docker/pkg/stdcopy"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/ordino/internal/interfaces"
	"github.com/ternarybob/ordino/internal/models"
)

// logTailBytes bounds the log excerpt attached to exec failures
const logTailBytes = 512

// Driver implements the ContainerRunner interface on the docker
// client SDK; podman is reached through the same API on its socket.
type Driver struct {
	logger arbor.ILogger
}

// NewDriver creates a new container driver
func NewDriver(logger arbor.ILogger) *Driver {
	return &Driver{
		logger: logger,
	}
}

// Run executes one containerized job to completion and returns its
// exit code and combined log text. Driver-level failures wrap
// ErrContainer; a non-zero exit wraps ErrContainerExec.
func (d *Driver) Run(ctx context.Context, spec *models.JobContainer, env map[string]string) (int64, string, error) {
	engineURL, err := spec.EngineURL()
	if err != nil {
		return -1, "", fmt.Errorf("%w: %v", models.ErrContainer, err)
	}

	cli, err := client.NewClientWithOpts(
		client.WithHost(engineURL),
		client.WithAPIVersionNegotiation(),
	)
	if err != nil {
		return -1, "", fmt.Errorf("%w: failed to connect to %s engine at %s: %v", models.ErrContainer, spec.Engine, engineURL, err)
	}
	defer cli.Close()

	config := &containertypes.Config{
		Image: spec.Image,
		Cmd:   spec.Command,
		Env:   envSlice(env),
		User:  spec.User,
	}
	hostConfig := &containertypes.HostConfig{
		Binds:      spec.Volumes,
		Privileged: spec.Privileged,
	}

	created, err := cli.ContainerCreate(ctx, config, hostConfig, nil, nil, "")
	if client.IsErrNotFound(err) {
		if pullErr := d.pullImage(ctx, cli, spec.Image); pullErr != nil {
			return -1, "", pullErr
		}
		created, err = cli.ContainerCreate(ctx, config, hostConfig, nil, nil, "")
	}
	if err != nil {
		return -1, "", fmt.Errorf("%w: failed to create container for image %s: %v", models.ErrContainer, spec.Image, err)
	}

	// Removal happens on every exit path, including wait failures.
	defer func() {
		removeErr := cli.ContainerRemove(context.Background(), created.ID, types.ContainerRemoveOptions{Force: true})
		if removeErr != nil {
			d.logger.Warn().
				Err(removeErr).
				Str("container_id", created.ID).
				Msg("Failed to remove container")
		}
	}()

	if err := cli.ContainerStart(ctx, created.ID, types.ContainerStartOptions{}); err != nil {
		return -1, "", fmt.Errorf("%w: failed to start container %s: %v", models.ErrContainer, created.ID, err)
	}

	d.logger.Info().
		Str("container_id", created.ID).
		Str("image", spec.Image).
		Str("engine", string(spec.Engine)).
		Msg("Container started")

	var exitCode int64
	waitCh, errCh := cli.ContainerWait(ctx, created.ID, containertypes.WaitConditionNotRunning)
	select {
	case waitErr := <-errCh:
		return -1, "", fmt.Errorf("%w: failed waiting for container %s: %v", models.ErrContainer, created.ID, waitErr)
	case status := <-waitCh:
		exitCode = status.StatusCode
	}

	logs, err := d.readLogs(ctx, cli, created.ID)
	if err != nil {
		return exitCode, "", err
	}

	if exitCode != 0 {
		return exitCode, logs, fmt.Errorf("%w: exit code %d: %s", models.ErrContainerExec, exitCode, logTail(logs))
	}

	d.logger.Debug().
		Str("container_id", created.ID).
		Int("log_bytes", len(logs)).
		Msg("Container completed")

	return exitCode, logs, nil
}

// pullImage fetches a missing image before retrying the create
func (d *Driver) pullImage(ctx context.Context, cli *client.Client, image string) error {
	d.logger.Info().
		Str("image", image).
		Msg("Pulling container image")

	reader, err := cli.ImagePull(ctx, image, types.ImagePullOptions{})
	if err != nil {
		return fmt.Errorf("%w: failed to pull image %s: %v", models.ErrContainer, image, err)
	}
	defer reader.Close()

	// Drain the progress stream; the pull completes when it closes
	if _, err := io.Copy(io.Discard, reader); err != nil {
		return fmt.Errorf("%w: image pull for %s interrupted: %v", models.ErrContainer, image, err)
	}
	return nil
}

// readLogs captures and demultiplexes the container's combined output
func (d *Driver) readLogs(ctx context.Context, cli *client.Client, containerID string) (string, error) {
	reader, err := cli.ContainerLogs(ctx, containerID, types.ContainerLogsOptions{
		ShowStdout: true,
		ShowStderr: true,
	})
	if err != nil {
		return "", fmt.Errorf("%w: failed to read logs of container %s: %v", models.ErrContainer, containerID, err)
	}
	defer reader.Close()

	var stdout, stderr bytes.Buffer
	if _, err := stdcopy.StdCopy(&stdout, &stderr, reader); err != nil {
		return "", fmt.Errorf("%w: failed to demux logs of container %s: %v", models.ErrContainer, containerID, err)
	}

	if stderr.Len() == 0 {
		return stdout.String(), nil
	}
	return stdout.String() + stderr.String(), nil
}

// envSlice renders the env map as KEY=VALUE pairs in stable order
func envSlice(env map[string]string) []string {
	if len(env) == 0 {
		return nil
	}

	keys := make([]string, 0, len(env))
	for k := range env {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+env[k])
	}
	return pairs
}

// logTail returns the trailing excerpt of the logs for error messages
func logTail(logs string) string {
	trimmed := strings.TrimSpace(logs)
	if len(trimmed) <= logTailBytes {
		return trimmed
	}
	return "…" + trimmed[len(trimmed)-logTailBytes:]
}

// Ensure Driver implements the ContainerRunner interface
var _ interfaces.ContainerRunner = (*Driver)(nil)
