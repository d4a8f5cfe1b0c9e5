package models

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ContainerEngine identifies the container runtime a job targets
type ContainerEngine string

// ContainerEngine constants
const (
	ContainerEngineDocker ContainerEngine = "docker"
	ContainerEnginePodman ContainerEngine = "podman"
)

// JobContainer describes the containerized execution of a job
type JobContainer struct {
	Image      string            `yaml:"image" json:"image" validate:"required"`
	Command    []string          `yaml:"command,omitempty" json:"command,omitempty"`
	Env        map[string]string `yaml:"env,omitempty" json:"env,omitempty"`
	Volumes    []string          `yaml:"volumes,omitempty" json:"volumes,omitempty"` // host:container bind specs
	Engine     ContainerEngine   `yaml:"engine,omitempty" json:"engine,omitempty" validate:"omitempty,oneof=docker podman"`
	Privileged bool              `yaml:"privileged,omitempty" json:"privileged,omitempty"`
	User       string            `yaml:"user,omitempty" json:"user,omitempty"`
}

// containerFields is the declared yaml key set of a container section
var containerFields = map[string]bool{
	"image": true, "command": true, "env": true, "volumes": true,
	"engine": true, "privileged": true, "user": true,
}

// UnmarshalYAML decodes a container section, rejecting unknown fields
// and defaulting the engine to docker.
func (c *JobContainer) UnmarshalYAML(value *yaml.Node) error {
	if err := rejectUnknownFields(value, containerFields, "container"); err != nil {
		return err
	}
	type containerAlias JobContainer
	alias := containerAlias{Engine: ContainerEngineDocker}
	if err := value.Decode(&alias); err != nil {
		return err
	}
	*c = JobContainer(alias)
	return nil
}

// EngineURL returns the unix socket the driver should dial for the
// configured engine. An unrecognized engine is a validation error.
func (c *JobContainer) EngineURL() (string, error) {
	switch c.Engine {
	case ContainerEngineDocker, "":
		return "unix:///var/run/docker.sock", nil
	case ContainerEnginePodman:
		return fmt.Sprintf("unix:///run/user/%d/podman/podman.sock", os.Getuid()), nil
	default:
		return "", fmt.Errorf("%w: unrecognized container engine %q", ErrJobValidation, c.Engine)
	}
}

// DeepCopy returns an independent copy of the container settings
func (c *JobContainer) DeepCopy() *JobContainer {
	if c == nil {
		return nil
	}
	cp := *c
	cp.Command = copyStrings(c.Command)
	cp.Volumes = copyStrings(c.Volumes)
	cp.Env = copyStringMap(c.Env)
	return &cp
}
