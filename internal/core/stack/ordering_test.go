package stack

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/igorobed/hw3-api/internal/core/compose"
)

func serviceNames(services []compose.Service) []string {
	names := make([]string, 0, len(services))
	for _, svc := range services {
		names = append(names, svc.Name)
	}
	return names
}

func TestTopologicalSort(t *testing.T) {
	tests := []struct {
		name     string
		services []compose.Service
		want     []string
	}{
		{
			name:     "empty",
			services: nil,
			want:     nil,
		},
		{
			name: "no dependencies keeps descriptor order",
			services: []compose.Service{
				{Name: "db"},
				{Name: "redis_app"},
			},
			want: []string{"db", "redis_app"},
		},
		{
			name: "linear chain",
			services: []compose.Service{
				{Name: "app", DependsOn: []string{"db"}},
				{Name: "db"},
			},
			want: []string{"db", "app"},
		},
		{
			name: "diamond",
			services: []compose.Service{
				{Name: "app", DependsOn: []string{"db", "redis_app"}},
				{Name: "db"},
				{Name: "redis_app"},
			},
			want: []string{"db", "redis_app", "app"},
		},
		{
			name: "deep chain",
			services: []compose.Service{
				{Name: "d", DependsOn: []string{"c"}},
				{Name: "c", DependsOn: []string{"b"}},
				{Name: "b", DependsOn: []string{"a"}},
				{Name: "a"},
			},
			want: []string{"a", "b", "c", "d"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sorted := TopologicalSort(tt.services)
			assert.Equal(t, tt.want, serviceNames(sorted))
		})
	}
}

func TestTopologicalSortDependentsAfterDependencies(t *testing.T) {
	services := []compose.Service{
		{Name: "app", DependsOn: []string{"db", "redis_app"}},
		{Name: "worker", DependsOn: []string{"db"}},
		{Name: "db"},
		{Name: "redis_app"},
	}

	sorted := TopologicalSort(services)
	assert.Len(t, sorted, 4)

	position := make(map[string]int)
	for i, svc := range sorted {
		position[svc.Name] = i
	}
	for _, svc := range services {
		for _, dep := range svc.DependsOn {
			assert.Less(t, position[dep], position[svc.Name],
				"%s must start after %s", svc.Name, dep)
		}
	}
}

func TestTopologicalSortCycleFallback(t *testing.T) {
	// Cycles are rejected at parse time; the sort must still return every
	// service when handed one directly.
	services := []compose.Service{
		{Name: "a", DependsOn: []string{"b"}},
		{Name: "b", DependsOn: []string{"a"}},
		{Name: "c"},
	}

	sorted := TopologicalSort(services)
	assert.Len(t, sorted, 3)
	assert.ElementsMatch(t, []string{"a", "b", "c"}, serviceNames(sorted))
}
