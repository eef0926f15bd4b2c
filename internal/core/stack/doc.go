// Package stack provides pure functions for planning the realization of a
// topology descriptor.
//
// The package transforms parsed compose services into container plans. All
// functions are pure: no I/O, no Docker calls.
//
//   - Naming: consistent resource names (NetworkName, VolumeName, ContainerName)
//   - Ordering: sort services by depends_on (TopologicalSort)
//   - Variables: substitute ${VAR} placeholders (SubstituteVariables)
//   - Plan: build container plans from compose services (BuildContainerPlan)
//
// The imperative shell (internal/shell/docker) uses these to plan a stack,
// then executes the plans via the Docker API.
package stack
