package stack

import (
	"path/filepath"

	"github.com/igorobed/hw3-api/internal/core/compose"
)

// =============================================================================
// Stack Plan Building Functions
// =============================================================================

// BuildPlan plans the realization of an entire stack.
//
// This is a pure function that transforms a parsed topology descriptor into a
// plan the shell can execute via Docker API:
//   - One network named NetworkName(stackName), joined by every container
//   - One NamedVolumePlan per named volume referenced by a service
//   - One BuildPlan per service with a build section, tagged ImageName()
//   - One ContainerPlan per service, ordered by TopologicalSort
//
// Example:
//
//	spec, _ := compose.Parse(yamlContent)
//	plan := BuildPlan(BuildPlanParams{
//	    StackName: "shortener",
//	    Spec:      spec,
//	    BaseDir:   "/srv/shortener",
//	})
func BuildPlan(params BuildPlanParams) Plan {
	networkName := NetworkName(params.StackName)

	plan := Plan{
		StackName: params.StackName,
		Network: NetworkPlan{
			Name:   networkName,
			Labels: ResourceLabels(params.StackName, ""),
		},
	}

	ordered := TopologicalSort(params.Spec.Services)

	// Named volumes referenced by services, in first-reference order.
	seenVolumes := make(map[string]bool)
	for _, svc := range ordered {
		for _, v := range svc.Volumes {
			if v.Type != compose.VolumeMountTypeVolume || seenVolumes[v.Source] {
				continue
			}
			seenVolumes[v.Source] = true
			plan.Volumes = append(plan.Volumes, NamedVolumePlan{
				Name:   VolumeName(params.StackName, v.Source),
				Labels: ResourceLabels(params.StackName, ""),
			})
		}
	}

	for _, svc := range ordered {
		if svc.Build != nil {
			context := svc.Build.Context
			if !filepath.IsAbs(context) {
				context = filepath.Join(params.BaseDir, context)
			}
			plan.Builds = append(plan.Builds, ImageBuildPlan{
				Tag:        ImageName(params.StackName, svc.Name),
				Context:    context,
				Dockerfile: svc.Build.Dockerfile,
				Args:       svc.Build.Args,
			})
		}

		plan.Containers = append(plan.Containers, BuildContainerPlan(BuildContainerPlanParams{
			StackName:   params.StackName,
			ServiceName: svc.Name,
			Service:     svc,
			Variables:   params.Variables,
			NetworkName: networkName,
			BaseDir:     params.BaseDir,
		}))
	}

	return plan
}

// BuildContainerPlan builds a ContainerPlan from a compose service.
//
// The function:
//   - Generates the container name using ContainerName()
//   - Copies image, command, and entrypoint from the service; services with
//     a build section get the locally built image tag instead
//   - Substitutes variables into environment values
//   - Prefixes named volumes with the stack name and resolves relative bind
//     mount sources against BaseDir
//   - Maps restart policy to Docker format
//   - Merges resource labels with service labels
//
// The container joins the stack network with the service name as alias, so
// services reach each other by service name ("db", "redis_app").
func BuildContainerPlan(params BuildContainerPlanParams) ContainerPlan {
	svc := params.Service

	image := svc.Image
	if svc.Build != nil {
		image = ImageName(params.StackName, params.ServiceName)
	}

	plan := ContainerPlan{
		Name:         ContainerName(params.StackName, params.ServiceName),
		ServiceName:  params.ServiceName,
		Image:        image,
		Command:      svc.Command,
		Entrypoint:   svc.Entrypoint,
		Env:          make(map[string]string),
		Labels:       ResourceLabels(params.StackName, params.ServiceName),
		NetworkName:  params.NetworkName,
		NetworkAlias: params.ServiceName,
	}

	for k, v := range svc.Environment {
		plan.Env[k] = SubstituteVariables(v, params.Variables)
	}

	// Port bindings
	for _, p := range svc.Ports {
		plan.Ports = append(plan.Ports, PortPlan{
			ContainerPort: int(p.Target),
			HostPort:      int(p.Published),
			Protocol:      p.Protocol,
			HostIP:        p.HostIP,
		})
	}

	// Volume mounts
	for _, v := range svc.Volumes {
		source := v.Source
		bind := v.Type == compose.VolumeMountTypeBind
		if v.Type == compose.VolumeMountTypeVolume {
			source = VolumeName(params.StackName, v.Source)
		}
		if bind && !filepath.IsAbs(source) {
			source = filepath.Join(params.BaseDir, source)
		}
		plan.Volumes = append(plan.Volumes, VolumePlan{
			Source:   source,
			Target:   v.Target,
			Bind:     bind,
			ReadOnly: v.ReadOnly,
		})
	}

	plan.RestartPolicy = mapRestartPolicy(svc.Restart)

	// Service labels win over generated ones
	for k, v := range svc.Labels {
		plan.Labels[k] = v
	}

	return plan
}

// mapRestartPolicy maps compose restart policy to Docker restart policy name.
func mapRestartPolicy(policy compose.RestartPolicy) RestartPolicyPlan {
	switch policy {
	case compose.RestartAlways:
		return RestartPolicyPlan{Name: "always"}
	case compose.RestartOnFailure:
		return RestartPolicyPlan{Name: "on-failure"}
	case compose.RestartUnlessStopped:
		return RestartPolicyPlan{Name: "unless-stopped"}
	default:
		return RestartPolicyPlan{Name: "no"}
	}
}
