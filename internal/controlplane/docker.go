package controlplane

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/filters"
	"github.com/docker/docker/api/types/network"
	"github.com/docker/docker/client"
	specs "github.com/opencontainers/image-spec/specs-go/v1"

	"syncbench/internal/errdefs"
)

// DockerAPI is the subset of Docker API methods the docker backend uses.
// It exists so tests can substitute a scripted implementation.
type DockerAPI interface {
	Ping(ctx context.Context) (types.Ping, error)
	ContainerCreate(ctx context.Context, config *container.Config, hostConfig *container.HostConfig, networkingConfig *network.NetworkingConfig, platform *specs.Platform, containerName string) (container.CreateResponse, error)
	ContainerStart(ctx context.Context, containerID string, options container.StartOptions) error
	ContainerInspect(ctx context.Context, containerID string) (container.InspectResponse, error)
	ContainerRestart(ctx context.Context, containerID string, options container.StopOptions) error
	ContainerRemove(ctx context.Context, containerID string, options container.RemoveOptions) error
	ContainerList(ctx context.Context, options container.ListOptions) ([]container.Summary, error)
	Close() error
}

// Docker drives workloads as plain containers on a local daemon. Useful for
// benchmarking single-host deployments without a cluster.
type Docker struct {
	api DockerAPI
}

// NewDocker connects to the Docker daemon using the standard environment
// configuration.
func NewDocker() (*Docker, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("create docker client: %w", err)
	}
	return &Docker{api: cli}, nil
}

// Ping verifies the daemon is reachable.
func (d *Docker) Ping(ctx context.Context) error {
	if _, err := d.api.Ping(ctx); err != nil {
		return errdefs.New(errdefs.ControlPlaneUnavailable, "controlplane.ping", err)
	}
	return nil
}

// Create provisions a workload container and starts it. An existing
// container with the same name satisfies the call.
func (d *Docker) Create(ctx context.Context, spec Spec) error {
	_, err := d.api.ContainerInspect(ctx, spec.Name)
	if err == nil {
		return nil
	}
	if !isNotFound(err) {
		return errdefs.New(errdefs.ControlPlaneUnavailable, "controlplane.create", err)
	}

	resp, err := d.api.ContainerCreate(ctx,
		&container.Config{
			Image:  spec.Image,
			Labels: spec.Labels,
		},
		&container.HostConfig{
			RestartPolicy: container.RestartPolicy{Name: container.RestartPolicyUnlessStopped},
		},
		nil, nil, spec.Name)
	if err != nil {
		return errdefs.New(errdefs.ControlPlaneUnavailable, "controlplane.create", err)
	}
	if err := d.api.ContainerStart(ctx, resp.ID, container.StartOptions{}); err != nil {
		return errdefs.New(errdefs.ControlPlaneUnavailable, "controlplane.create", err)
	}
	return nil
}

// Get reports the current status of a named workload.
func (d *Docker) Get(ctx context.Context, name string) (Status, error) {
	info, err := d.api.ContainerInspect(ctx, name)
	if err != nil {
		return Status{}, fmt.Errorf("inspect container %s: %w", name, err)
	}
	return containerStatus(info), nil
}

// Delete removes the workload container. Unknown names are ignored.
func (d *Docker) Delete(ctx context.Context, name string) error {
	err := d.api.ContainerRemove(ctx, name, container.RemoveOptions{Force: true})
	if err != nil && !isNotFound(err) {
		return fmt.Errorf("remove container %s: %w", name, err)
	}
	return nil
}

// ForceRefresh restarts the workload container.
func (d *Docker) ForceRefresh(ctx context.Context, name string) error {
	if err := d.api.ContainerRestart(ctx, name, container.StopOptions{}); err != nil {
		return fmt.Errorf("restart container %s: %w", name, err)
	}
	return nil
}

// List reports all workloads matching the label selector, sorted by name.
func (d *Docker) List(ctx context.Context, selector map[string]string) ([]Status, error) {
	args := filters.NewArgs()
	for key, value := range selector {
		args.Add("label", key+"="+value)
	}
	summaries, err := d.api.ContainerList(ctx, container.ListOptions{All: true, Filters: args})
	if err != nil {
		return nil, errdefs.New(errdefs.ControlPlaneUnavailable, "controlplane.list", err)
	}

	names := make([]string, 0, len(summaries))
	for _, c := range summaries {
		if len(c.Names) == 0 {
			continue
		}
		names = append(names, strings.TrimPrefix(c.Names[0], "/"))
	}
	sort.Strings(names)

	out := make([]Status, 0, len(names))
	for _, name := range names {
		st, err := d.Get(ctx, name)
		if err != nil {
			continue
		}
		out = append(out, st)
	}
	return out, nil
}

// Close closes the underlying docker client connection.
func (d *Docker) Close() error {
	return d.api.Close()
}

// containerStatus maps container state to a workload phase. StartedAt
// doubles as the incarnation: a restart or recreate changes it.
func containerStatus(info container.InspectResponse) Status {
	st := Status{Name: strings.TrimPrefix(info.Name, "/")}
	if info.State == nil {
		st.Phase = PhasePending
		return st
	}
	st.Incarnation = info.State.StartedAt

	switch {
	case info.State.Running && info.State.Health != nil:
		switch info.State.Health.Status {
		case "healthy":
			st.Phase = PhaseReady
			st.Healthy = true
		case "starting":
			st.Phase = PhaseProgressing
		default:
			st.Phase = PhaseDegraded
			st.Message = "health check reports unhealthy"
		}
	case info.State.Running:
		st.Phase = PhaseReady
		st.Healthy = true
	case info.State.Status == "created" || info.State.Status == "restarting":
		st.Phase = PhaseProgressing
	default:
		st.Phase = PhaseDegraded
		st.Message = fmt.Sprintf("container %s (exit code %d)", info.State.Status, info.State.ExitCode)
	}
	return st
}

// isNotFound matches daemon not-found errors structurally instead of
// binding to a particular client version's helper.
func isNotFound(err error) bool {
	if err == nil {
		return false
	}
	var nf interface{ NotFound() }
	return errors.As(err, &nf)
}
