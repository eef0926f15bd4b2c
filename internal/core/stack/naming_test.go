package stack

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNetworkName(t *testing.T) {
	assert.Equal(t, "hw3_shortener", NetworkName("shortener"))
}

func TestVolumeName(t *testing.T) {
	assert.Equal(t, "hw3_shortener_pgdata", VolumeName("shortener", "pgdata"))
}

func TestContainerName(t *testing.T) {
	assert.Equal(t, "hw3_shortener_db", ContainerName("shortener", "db"))
}

func TestImageName(t *testing.T) {
	assert.Equal(t, "hw3_shortener_app:latest", ImageName("shortener", "app"))
}

func TestResourceLabels(t *testing.T) {
	t.Run("with service", func(t *testing.T) {
		labels := ResourceLabels("shortener", "app")
		assert.Equal(t, map[string]string{
			LabelManaged: "true",
			LabelStack:   "shortener",
			LabelService: "app",
		}, labels)
	})

	t.Run("without service", func(t *testing.T) {
		labels := ResourceLabels("shortener", "")
		assert.Equal(t, map[string]string{
			LabelManaged: "true",
			LabelStack:   "shortener",
		}, labels)
		assert.NotContains(t, labels, LabelService)
	})
}
