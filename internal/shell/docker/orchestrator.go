package docker

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/igorobed/hw3-api/internal/core/stack"
)

// =============================================================================
// Orchestrator - Manages Stack Lifecycle
// =============================================================================

// Orchestrator realizes stack plans using Docker.
type Orchestrator struct {
	docker Client
	logger *slog.Logger
}

// NewOrchestrator creates a new orchestrator.
func NewOrchestrator(docker Client, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		docker: docker,
		logger: logger,
	}
}

// =============================================================================
// Up
// =============================================================================

// Up creates and starts every resource in the plan: network, named volumes,
// locally built images, then containers in plan order. Dependencies are
// started before their dependents; "started" means the container is running,
// readiness of the process inside is the service's own concern.
//
// On container failure, already created containers and the network are
// cleaned up so a retry starts from a clean slate.
func (o *Orchestrator) Up(ctx context.Context, plan stack.Plan) ([]ContainerInfo, error) {
	o.logger.Info("starting stack",
		"stack", plan.StackName,
		"services", len(plan.Containers),
	)

	// 1. Network (reuse if present). A network created in this invocation is
	// rolled back on failure; a reused one may still carry containers from a
	// previous run and is left alone.
	networkID, networkCreated, err := o.ensureNetwork(plan.Network)
	if err != nil {
		return nil, fmt.Errorf("failed to create network: %w", err)
	}
	cleanupNetwork := func() {
		if networkCreated {
			_ = o.docker.RemoveNetwork(networkID)
		}
	}
	o.logger.Debug("network ready", "network", plan.Network.Name)

	// 2. Named volumes
	for _, vol := range plan.Volumes {
		if err := o.ensureVolume(vol); err != nil {
			cleanupNetwork()
			return nil, fmt.Errorf("failed to create volume %s: %w", vol.Name, err)
		}
		o.logger.Debug("volume ready", "volume", vol.Name)
	}

	// 3. Build local images
	for _, b := range plan.Builds {
		o.logger.Info("building image", "tag", b.Tag, "context", b.Context)
		if err := o.docker.BuildImage(BuildOptions{
			Tag:        b.Tag,
			ContextDir: b.Context,
			Dockerfile: b.Dockerfile,
			Args:       b.Args,
		}); err != nil {
			cleanupNetwork()
			return nil, fmt.Errorf("failed to build image %s: %w", b.Tag, err)
		}
	}

	// 4. Pull registry images that are missing locally
	builtTags := make(map[string]bool, len(plan.Builds))
	for _, b := range plan.Builds {
		builtTags[b.Tag] = true
	}
	for _, c := range plan.Containers {
		if builtTags[c.Image] {
			continue
		}
		exists, _ := o.docker.ImageExists(c.Image)
		if !exists {
			o.logger.Info("pulling image", "image", c.Image)
			if err := o.docker.PullImage(c.Image, PullOptions{}); err != nil {
				o.logger.Warn("failed to pull image, trying anyway", "image", c.Image, "error", err)
			}
		}
	}

	// 5. Existing containers from a previous run of the same stack
	existing, _ := o.docker.ListContainers(ListOptions{
		All: true,
		Filters: map[string]string{
			"label": fmt.Sprintf("%s=%s", stack.LabelStack, plan.StackName),
		},
	})
	existingByService := make(map[string]ContainerInfo)
	for _, c := range existing {
		if svc, ok := c.Labels[stack.LabelService]; ok {
			existingByService[svc] = c
		}
	}

	// 6. Create and start containers in plan order
	var containers []ContainerInfo
	created := make(map[string]string) // serviceName -> containerID

	for _, c := range plan.Containers {
		var containerID string

		if prev, found := existingByService[c.ServiceName]; found {
			containerID = prev.ID
			o.logger.Debug("reusing container", "service", c.ServiceName, "container_id", shortID(containerID))
		} else {
			containerID, err = o.docker.CreateContainer(containerSpecFromPlan(c))
			if err != nil {
				o.cleanupCreatedContainers(created)
				cleanupNetwork()
				return nil, fmt.Errorf("failed to create container %s: %w", c.ServiceName, err)
			}
			o.logger.Debug("created container", "service", c.ServiceName, "container_id", shortID(containerID))
		}

		created[c.ServiceName] = containerID

		if err := o.docker.StartContainer(containerID); err != nil {
			if !strings.Contains(err.Error(), "already running") {
				o.cleanupCreatedContainers(created)
				cleanupNetwork()
				return nil, fmt.Errorf("failed to start container %s: %w", c.ServiceName, err)
			}
		}
		o.logger.Debug("started container", "service", c.ServiceName, "container_id", shortID(containerID))

		info, err := o.docker.InspectContainer(containerID)
		if err != nil {
			o.cleanupCreatedContainers(created)
			cleanupNetwork()
			return nil, fmt.Errorf("failed to inspect container %s: %w", c.ServiceName, err)
		}
		containers = append(containers, *info)
	}

	o.logger.Info("stack started",
		"stack", plan.StackName,
		"containers", len(containers),
	)

	return containers, nil
}

// =============================================================================
// Wait for Running
// =============================================================================

// WaitRunning polls the given containers until all report the running state
// or the timeout elapses. Containers that exit while waiting fail fast.
func (o *Orchestrator) WaitRunning(ctx context.Context, containerIDs []string, timeout time.Duration) error {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	deadline := time.Now().Add(timeout)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			allRunning := true
			for _, id := range containerIDs {
				info, err := o.docker.InspectContainer(id)
				if err != nil {
					return err
				}
				if info.Status == ContainerStatusExited || info.Status == ContainerStatusDead {
					return fmt.Errorf("container %s exited with code %d", info.Name, info.ExitCode)
				}
				if info.Status != ContainerStatusRunning {
					allRunning = false
				}
			}
			if allRunning {
				return nil
			}
			if time.Now().After(deadline) {
				return NewDockerError("WaitRunning", "container", "", "containers did not reach running state", ErrTimeout)
			}
		}
	}
}

// =============================================================================
// Down
// =============================================================================

// Down stops and removes every container of the stack, then the network.
// Named volumes are removed only when removeVolumes is set; bind mount data
// on the host is never touched.
func (o *Orchestrator) Down(ctx context.Context, plan stack.Plan, removeVolumes bool) error {
	o.logger.Info("stopping stack", "stack", plan.StackName)

	containers, err := o.docker.ListContainers(ListOptions{
		All: true,
		Filters: map[string]string{
			"label": fmt.Sprintf("%s=%s", stack.LabelStack, plan.StackName),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to list containers: %w", err)
	}

	timeout := 10 * time.Second
	for _, c := range containers {
		if c.Status == ContainerStatusRunning {
			o.logger.Debug("stopping container", "container_id", shortID(c.ID), "name", c.Name)
			if err := o.docker.StopContainer(c.ID, &timeout); err != nil {
				o.logger.Warn("failed to stop container", "container_id", shortID(c.ID), "error", err)
			}
		}
		if err := o.docker.RemoveContainer(c.ID, RemoveOptions{Force: true}); err != nil {
			o.logger.Warn("failed to remove container", "container_id", shortID(c.ID), "error", err)
		} else {
			o.logger.Debug("removed container", "container_id", shortID(c.ID))
		}
	}

	if err := o.docker.RemoveNetwork(plan.Network.Name); err != nil {
		o.logger.Warn("failed to remove network", "network", plan.Network.Name, "error", err)
	} else {
		o.logger.Debug("removed network", "network", plan.Network.Name)
	}

	if removeVolumes {
		for _, vol := range plan.Volumes {
			if err := o.docker.RemoveVolume(vol.Name, false); err != nil {
				o.logger.Warn("failed to remove volume", "volume", vol.Name, "error", err)
			} else {
				o.logger.Debug("removed volume", "volume", vol.Name)
			}
		}
	}

	o.logger.Info("stack stopped", "stack", plan.StackName, "containers_removed", len(containers))
	return nil
}

// =============================================================================
// Status
// =============================================================================

// Status returns the containers belonging to a stack, including stopped ones.
func (o *Orchestrator) Status(ctx context.Context, stackName string) ([]ContainerInfo, error) {
	return o.docker.ListContainers(ListOptions{
		All: true,
		Filters: map[string]string{
			"label": fmt.Sprintf("%s=%s", stack.LabelStack, stackName),
		},
	})
}

// =============================================================================
// Logs
// =============================================================================

// ServiceLogs returns recent logs for one service of a stack.
func (o *Orchestrator) ServiceLogs(ctx context.Context, stackName, serviceName, tail string) (string, error) {
	containers, err := o.docker.ListContainers(ListOptions{
		All: true,
		Filters: map[string]string{
			"label": fmt.Sprintf("%s=%s", stack.LabelService, serviceName),
		},
	})
	if err != nil {
		return "", err
	}

	var containerID string
	for _, c := range containers {
		if c.Labels[stack.LabelStack] == stackName {
			containerID = c.ID
			break
		}
	}
	if containerID == "" {
		return "", NewDockerError("ServiceLogs", "container", serviceName, "no container for service", ErrContainerNotFound)
	}

	reader, err := o.docker.ContainerLogs(containerID, LogOptions{
		Tail:       tail,
		Timestamps: true,
	})
	if err != nil {
		return "", err
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// =============================================================================
// Helper Methods
// =============================================================================

// ensureNetwork creates the stack network or reuses an existing one.
// The created flag tells the caller whether this invocation owns the network.
func (o *Orchestrator) ensureNetwork(spec stack.NetworkPlan) (networkID string, created bool, err error) {
	networkID, err = o.docker.CreateNetwork(NetworkSpec{
		Name:   spec.Name,
		Driver: "bridge",
		Labels: spec.Labels,
	})
	if err != nil {
		if strings.Contains(err.Error(), "already exists") {
			o.logger.Debug("network already exists, reusing", "network", spec.Name)
			// Docker accepts the name wherever an ID is expected
			return spec.Name, false, nil
		}
		return "", false, err
	}
	return networkID, true, nil
}

// ensureVolume creates a named volume or reuses an existing one.
// Docker volume creation is idempotent for matching specs, so conflicts only
// surface on driver or label mismatch.
func (o *Orchestrator) ensureVolume(spec stack.NamedVolumePlan) error {
	_, err := o.docker.CreateVolume(VolumeSpec{
		Name:   spec.Name,
		Labels: spec.Labels,
	})
	if err != nil && strings.Contains(err.Error(), "already exists") {
		o.logger.Debug("volume already exists, reusing", "volume", spec.Name)
		return nil
	}
	return err
}

// containerSpecFromPlan converts a planned container into a create spec.
func containerSpecFromPlan(c stack.ContainerPlan) ContainerSpec {
	spec := ContainerSpec{
		Name:           c.Name,
		Image:          c.Image,
		Command:        c.Command,
		Entrypoint:     c.Entrypoint,
		Env:            c.Env,
		Labels:         c.Labels,
		NetworkName:    c.NetworkName,
		NetworkAliases: []string{c.NetworkAlias},
		RestartPolicy: RestartPolicy{
			Name:              c.RestartPolicy.Name,
			MaximumRetryCount: c.RestartPolicy.MaximumRetryCount,
		},
	}

	for _, p := range c.Ports {
		spec.Ports = append(spec.Ports, PortBinding{
			ContainerPort: p.ContainerPort,
			HostPort:      p.HostPort,
			Protocol:      p.Protocol,
			HostIP:        p.HostIP,
		})
	}

	for _, v := range c.Volumes {
		spec.Volumes = append(spec.Volumes, VolumeMount{
			Source:   v.Source,
			Target:   v.Target,
			Bind:     v.Bind,
			ReadOnly: v.ReadOnly,
		})
	}

	return spec
}

// cleanupCreatedContainers stops and removes all created containers.
func (o *Orchestrator) cleanupCreatedContainers(containers map[string]string) {
	timeout := 5 * time.Second
	for name, id := range containers {
		_ = o.docker.StopContainer(id, &timeout)
		_ = o.docker.RemoveContainer(id, RemoveOptions{Force: true})
		o.logger.Debug("cleaned up container", "service", name, "container_id", shortID(id))
	}
}

// shortID trims a container ID for log output.
func shortID(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}
