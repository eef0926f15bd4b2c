package stack

import "fmt"

// =============================================================================
// Resource Naming Functions
// =============================================================================

// Labels applied to every resource created for a stack. They let the
// orchestrator find and clean up its own containers without guessing by name.
const (
	LabelManaged = "com.hw3.managed"
	LabelStack   = "com.hw3.stack"
	LabelService = "com.hw3.service"
)

// NetworkName generates the network name for a stack.
// Pattern: hw3_{stackName}
//
// Example:
//
//	NetworkName("shortener") // returns "hw3_shortener"
func NetworkName(stackName string) string {
	return fmt.Sprintf("hw3_%s", stackName)
}

// VolumeName generates the name for a named volume in a stack.
// Pattern: hw3_{stackName}_{volumeName}
//
// Example:
//
//	VolumeName("shortener", "pgdata") // returns "hw3_shortener_pgdata"
func VolumeName(stackName, volumeName string) string {
	return fmt.Sprintf("hw3_%s_%s", stackName, volumeName)
}

// ContainerName generates the container name for a service in a stack.
// Pattern: hw3_{stackName}_{serviceName}
//
// Example:
//
//	ContainerName("shortener", "db") // returns "hw3_shortener_db"
func ContainerName(stackName, serviceName string) string {
	return fmt.Sprintf("hw3_%s_%s", stackName, serviceName)
}

// ImageName generates the tag for a locally built service image.
// Pattern: hw3_{stackName}_{serviceName}:latest
func ImageName(stackName, serviceName string) string {
	return fmt.Sprintf("hw3_%s_%s:latest", stackName, serviceName)
}

// ResourceLabels returns the label set attached to every resource that
// belongs to a stack. The service label is omitted when serviceName is empty
// (networks and stack-scoped volumes).
func ResourceLabels(stackName, serviceName string) map[string]string {
	labels := map[string]string{
		LabelManaged: "true",
		LabelStack:   stackName,
	}
	if serviceName != "" {
		labels[LabelService] = serviceName
	}
	return labels
}
