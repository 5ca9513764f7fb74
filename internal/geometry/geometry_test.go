package geometry

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSidecar_Measure(t *testing.T) {
	dir := t.TempDir()
	docPath := filepath.Join(dir, "gripper.stp")

	t.Run("missing sidecar means no geometry", func(t *testing.T) {
		m, err := NewSidecar().Measure(context.Background(), docPath)
		require.NoError(t, err)
		assert.Nil(t, m)
	})

	t.Run("loads measurements and derives range", func(t *testing.T) {
		sidecar := filepath.Join(dir, "gripper.geometry.json")
		payload := `{
			"volume": 1250.5,
			"surface_area": 830.2,
			"center_of_mass": [1.0, 2.0, 3.0],
			"bounding_box": {"min": [0, 0, 0], "max": [10, 20, 5]}
		}`
		require.NoError(t, os.WriteFile(sidecar, []byte(payload), 0o644))

		m, err := NewSidecar().Measure(context.Background(), docPath)
		require.NoError(t, err)
		require.NotNil(t, m)
		assert.Equal(t, 1250.5, m.Volume)
		assert.Equal(t, Vec3{1, 2, 3}, m.CenterOfMass)
		assert.Equal(t, Vec3{10, 20, 5}, m.BoundingBox.Range)
	})

	t.Run("malformed sidecar is an error", func(t *testing.T) {
		bad := filepath.Join(dir, "broken.stp")
		require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.geometry.json"), []byte("{"), 0o644))

		_, err := NewSidecar().Measure(context.Background(), bad)
		assert.Error(t, err)
	})
}

func TestDisabled(t *testing.T) {
	m, err := Disabled().Measure(context.Background(), "whatever.stp")
	assert.NoError(t, err)
	assert.Nil(t, m)
}
