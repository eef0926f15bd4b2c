package stack

import (
	"github.com/igorobed/hw3-api/internal/core/compose"
)

// =============================================================================
// Plan Types
// =============================================================================

// Plan is the complete realization plan for a stack: one network, the named
// volumes, the images to build, and the containers in start order. This is
// the pure output of planning, ready for the shell to execute.
type Plan struct {
	StackName  string
	Network    NetworkPlan
	Volumes    []NamedVolumePlan
	Builds     []ImageBuildPlan
	Containers []ContainerPlan
}

// NetworkPlan represents the stack network to create.
type NetworkPlan struct {
	Name   string
	Labels map[string]string
}

// NamedVolumePlan represents a named volume to create before containers.
type NamedVolumePlan struct {
	Name   string
	Labels map[string]string
}

// ImageBuildPlan represents an image to build from a local context before
// the containers that use it are created.
type ImageBuildPlan struct {
	Tag        string
	Context    string
	Dockerfile string
	Args       map[string]string
}

// ContainerPlan represents a planned container configuration.
type ContainerPlan struct {
	Name          string
	ServiceName   string
	Image         string
	Command       []string
	Entrypoint    []string
	Env           map[string]string
	Labels        map[string]string
	Ports         []PortPlan
	Volumes       []VolumePlan
	NetworkName   string
	NetworkAlias  string
	RestartPolicy RestartPolicyPlan
}

// PortPlan represents a planned port binding.
type PortPlan struct {
	ContainerPort int
	HostPort      int
	Protocol      string
	HostIP        string
}

// VolumePlan represents a planned volume mount.
type VolumePlan struct {
	Source   string
	Target   string
	Bind     bool
	ReadOnly bool
}

// RestartPolicyPlan represents a restart policy.
type RestartPolicyPlan struct {
	Name              string
	MaximumRetryCount int
}

// =============================================================================
// Builder Parameter Types
// =============================================================================

// BuildContainerPlanParams contains all inputs for building a container plan.
type BuildContainerPlanParams struct {
	StackName   string
	ServiceName string
	Service     compose.Service
	Variables   map[string]string
	NetworkName string
	BaseDir     string
}

// BuildPlanParams contains all inputs for planning an entire stack.
type BuildPlanParams struct {
	// StackName scopes every resource name and label.
	StackName string

	// Spec is the parsed topology descriptor.
	Spec *compose.Spec

	// Variables are substituted into service environment values.
	Variables map[string]string

	// BaseDir is the absolute directory of the descriptor file. Relative
	// bind mount sources and build contexts are resolved against it.
	BaseDir string
}
