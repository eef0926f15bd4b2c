package stack

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/igorobed/hw3-api/internal/core/compose"
)

func shortenerSpec() *compose.Spec {
	return &compose.Spec{
		Services: []compose.Service{
			{
				Name:  "db",
				Image: "postgres:16",
				Environment: map[string]string{
					"POSTGRES_USER":     "user",
					"POSTGRES_PASSWORD": "pass",
					"POSTGRES_DB":       "app_db",
				},
				Ports: []compose.Port{
					{Target: 5432, Published: 1221, Protocol: "tcp"},
				},
				Volumes: []compose.VolumeMount{
					{Type: compose.VolumeMountTypeBind, Source: "./data", Target: "/var/lib/postgresql/data"},
				},
			},
			{
				Name:  "redis_app",
				Image: "redis:7",
				Ports: []compose.Port{
					{Target: 6379, Published: 5370, Protocol: "tcp"},
				},
			},
			{
				Name:    "app",
				Build:   &compose.BuildConfig{Context: "."},
				Command: []string{"sleep", "infinity"},
				Environment: map[string]string{
					"TZ": "Europe/Moscow",
				},
				Ports: []compose.Port{
					{Target: 8000, Published: 9999, Protocol: "tcp"},
				},
				Volumes: []compose.VolumeMount{
					{Type: compose.VolumeMountTypeBind, Source: ".", Target: "/app"},
				},
				DependsOn: []string{"db", "redis_app"},
			},
		},
	}
}

func TestBuildPlanShortenerStack(t *testing.T) {
	plan := BuildPlan(BuildPlanParams{
		StackName: "shortener",
		Spec:      shortenerSpec(),
		BaseDir:   "/srv/shortener",
	})

	assert.Equal(t, "shortener", plan.StackName)
	assert.Equal(t, "hw3_shortener", plan.Network.Name)
	assert.Equal(t, "true", plan.Network.Labels[LabelManaged])

	// No named volumes in this stack, only bind mounts
	assert.Empty(t, plan.Volumes)

	// app is the only locally built service
	require.Len(t, plan.Builds, 1)
	assert.Equal(t, "hw3_shortener_app:latest", plan.Builds[0].Tag)
	assert.Equal(t, "/srv/shortener", plan.Builds[0].Context)

	// Dependencies come before the app container
	require.Len(t, plan.Containers, 3)
	assert.Equal(t, "hw3_shortener_db", plan.Containers[0].Name)
	assert.Equal(t, "hw3_shortener_redis_app", plan.Containers[1].Name)
	assert.Equal(t, "hw3_shortener_app", plan.Containers[2].Name)

	app := plan.Containers[2]
	assert.Equal(t, "hw3_shortener_app:latest", app.Image)
	assert.Equal(t, []string{"sleep", "infinity"}, app.Command)
	assert.Equal(t, "Europe/Moscow", app.Env["TZ"])
	require.Len(t, app.Volumes, 1)
	assert.Equal(t, "/srv/shortener", app.Volumes[0].Source)
	assert.Equal(t, "/app", app.Volumes[0].Target)
	assert.True(t, app.Volumes[0].Bind)

	db := plan.Containers[0]
	require.Len(t, db.Volumes, 1)
	assert.Equal(t, "/srv/shortener/data", db.Volumes[0].Source)
	require.Len(t, db.Ports, 1)
	assert.Equal(t, 1221, db.Ports[0].HostPort)
	assert.Equal(t, 5432, db.Ports[0].ContainerPort)
}

// =============================================================================
// Repository Descriptor Tests
// =============================================================================

// loadRepoDescriptor parses the checked-in stack.yml, so these tests track
// the real descriptor instead of a fixture that could drift from it.
func loadRepoDescriptor(t *testing.T) (*compose.Spec, string) {
	t.Helper()
	root := filepath.Join("..", "..", "..")

	content, err := os.ReadFile(filepath.Join(root, "stack.yml"))
	require.NoError(t, err)

	spec, err := compose.Parse(string(content))
	require.NoError(t, err)

	baseDir, err := filepath.Abs(root)
	require.NoError(t, err)
	return spec, baseDir
}

func TestBuildPlanRepositoryDescriptor(t *testing.T) {
	spec, baseDir := loadRepoDescriptor(t)

	plan := BuildPlan(BuildPlanParams{
		StackName: "shortener",
		Spec:      spec,
		BaseDir:   baseDir,
	})

	require.Len(t, plan.Containers, 3)
	assert.Equal(t, "hw3_shortener_db", plan.Containers[0].Name)
	assert.Equal(t, "hw3_shortener_redis_app", plan.Containers[1].Name)
	assert.Equal(t, "hw3_shortener_app", plan.Containers[2].Name, "app starts after its dependencies")

	db := plan.Containers[0]
	require.Len(t, db.Ports, 1)
	assert.Equal(t, 1221, db.Ports[0].HostPort)
	assert.Equal(t, 5432, db.Ports[0].ContainerPort)
	assert.Equal(t, "user", db.Env["POSTGRES_USER"])
	assert.Equal(t, "pass", db.Env["POSTGRES_PASSWORD"])
	assert.Equal(t, "app_db", db.Env["POSTGRES_DB"])
	require.Len(t, db.Volumes, 1)
	assert.Equal(t, filepath.Join(baseDir, "data"), db.Volumes[0].Source)

	redis := plan.Containers[1]
	require.Len(t, redis.Ports, 1)
	assert.Equal(t, 5370, redis.Ports[0].HostPort)
	assert.Equal(t, 6379, redis.Ports[0].ContainerPort)
	assert.Empty(t, redis.Volumes)

	app := plan.Containers[2]
	assert.Equal(t, "hw3_shortener_app:latest", app.Image)
	assert.Equal(t, []string{"sleep", "infinity"}, app.Command, "app idles by default")
	assert.Equal(t, "Europe/Moscow", app.Env["TZ"])
	require.Len(t, app.Ports, 1)
	assert.Equal(t, 9999, app.Ports[0].HostPort)
	assert.Equal(t, 8000, app.Ports[0].ContainerPort)
	require.Len(t, app.Volumes, 1)
	assert.Equal(t, baseDir, app.Volumes[0].Source)
	assert.Equal(t, "/app", app.Volumes[0].Target)

	require.Len(t, plan.Builds, 1)
	assert.Equal(t, baseDir, plan.Builds[0].Context)
}

// The app service bind-mounts the repository over its source directory, so
// binaries baked into the image must live outside that mount or the mount
// hides them at runtime.
func TestAppImageBinariesOutsideSourceMount(t *testing.T) {
	spec, baseDir := loadRepoDescriptor(t)

	app := spec.Service("app")
	require.NotNil(t, app)
	require.Len(t, app.Volumes, 1)
	mountTarget := app.Volumes[0].Target

	dockerfile, err := os.ReadFile(filepath.Join(baseDir, "Dockerfile"))
	require.NoError(t, err)

	var installPaths []string
	fields := strings.Fields(string(dockerfile))
	for i, f := range fields {
		if f == "-o" && i+1 < len(fields) {
			installPaths = append(installPaths, fields[i+1])
		}
	}
	require.NotEmpty(t, installPaths, "Dockerfile should build binaries")

	for _, p := range installPaths {
		assert.True(t, filepath.IsAbs(p), "install path %q should be absolute", p)
		assert.NotEqual(t, mountTarget, p)
		assert.False(t, strings.HasPrefix(p, mountTarget+"/"),
			"install path %q is shadowed by the %s source mount", p, mountTarget)
	}
}

func TestBuildPlanNamedVolumes(t *testing.T) {
	spec := &compose.Spec{
		Services: []compose.Service{
			{
				Name:  "db",
				Image: "postgres:16",
				Volumes: []compose.VolumeMount{
					{Type: compose.VolumeMountTypeVolume, Source: "pgdata", Target: "/var/lib/postgresql/data"},
				},
			},
		},
		Volumes: []compose.Volume{{Name: "pgdata"}},
	}

	plan := BuildPlan(BuildPlanParams{StackName: "shortener", Spec: spec, BaseDir: "/srv"})

	require.Len(t, plan.Volumes, 1)
	assert.Equal(t, "hw3_shortener_pgdata", plan.Volumes[0].Name)

	require.Len(t, plan.Containers, 1)
	mount := plan.Containers[0].Volumes[0]
	assert.Equal(t, "hw3_shortener_pgdata", mount.Source)
	assert.False(t, mount.Bind)
}

func TestBuildContainerPlan(t *testing.T) {
	t.Run("basic fields", func(t *testing.T) {
		plan := BuildContainerPlan(BuildContainerPlanParams{
			StackName:   "shortener",
			ServiceName: "redis_app",
			Service: compose.Service{
				Name:  "redis_app",
				Image: "redis:7",
				Ports: []compose.Port{{Target: 6379, Published: 5370, Protocol: "tcp"}},
			},
			NetworkName: "hw3_shortener",
		})

		assert.Equal(t, "hw3_shortener_redis_app", plan.Name)
		assert.Equal(t, "redis:7", plan.Image)
		assert.Equal(t, "hw3_shortener", plan.NetworkName)
		assert.Equal(t, "redis_app", plan.NetworkAlias)
		assert.Equal(t, "no", plan.RestartPolicy.Name)
		assert.Equal(t, "redis_app", plan.Labels[LabelService])
	})

	t.Run("variable substitution in environment", func(t *testing.T) {
		plan := BuildContainerPlan(BuildContainerPlanParams{
			StackName:   "shortener",
			ServiceName: "db",
			Service: compose.Service{
				Name:        "db",
				Image:       "postgres:16",
				Environment: map[string]string{"POSTGRES_PASSWORD": "${PG_PASS:-pass}"},
			},
			Variables:   map[string]string{"PG_PASS": "secret"},
			NetworkName: "hw3_shortener",
		})

		assert.Equal(t, "secret", plan.Env["POSTGRES_PASSWORD"])
	})

	t.Run("build section overrides image", func(t *testing.T) {
		plan := BuildContainerPlan(BuildContainerPlanParams{
			StackName:   "shortener",
			ServiceName: "app",
			Service: compose.Service{
				Name:  "app",
				Build: &compose.BuildConfig{Context: "."},
			},
			NetworkName: "hw3_shortener",
		})

		assert.Equal(t, "hw3_shortener_app:latest", plan.Image)
	})

	t.Run("absolute bind source kept", func(t *testing.T) {
		plan := BuildContainerPlan(BuildContainerPlanParams{
			StackName:   "shortener",
			ServiceName: "db",
			Service: compose.Service{
				Name:  "db",
				Image: "postgres:16",
				Volumes: []compose.VolumeMount{
					{Type: compose.VolumeMountTypeBind, Source: "/var/data", Target: "/data", ReadOnly: true},
				},
			},
			NetworkName: "hw3_shortener",
			BaseDir:     "/srv",
		})

		require.Len(t, plan.Volumes, 1)
		assert.Equal(t, "/var/data", plan.Volumes[0].Source)
		assert.True(t, plan.Volumes[0].ReadOnly)
	})

	t.Run("service labels override generated", func(t *testing.T) {
		plan := BuildContainerPlan(BuildContainerPlanParams{
			StackName:   "shortener",
			ServiceName: "db",
			Service: compose.Service{
				Name:   "db",
				Image:  "postgres:16",
				Labels: map[string]string{"custom": "value", LabelService: "renamed"},
			},
			NetworkName: "hw3_shortener",
		})

		assert.Equal(t, "value", plan.Labels["custom"])
		assert.Equal(t, "renamed", plan.Labels[LabelService])
	})
}

func TestMapRestartPolicy(t *testing.T) {
	tests := []struct {
		policy compose.RestartPolicy
		want   string
	}{
		{compose.RestartAlways, "always"},
		{compose.RestartOnFailure, "on-failure"},
		{compose.RestartUnlessStopped, "unless-stopped"},
		{compose.RestartNo, "no"},
		{compose.RestartPolicy(""), "no"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, mapRestartPolicy(tt.policy).Name)
		})
	}
}
