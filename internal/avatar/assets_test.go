package avatar

import (
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oszuidwest/zwfm-avatar/internal/types"
)

// writeTestPNG writes a small PNG image to dir with the given base name.
func writeTestPNG(t *testing.T, dir, name string, w, h int) {
	t.Helper()
	f, err := os.Create(filepath.Join(dir, name+".png"))
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, image.NewRGBA(image.Rect(0, 0, w, h))))
}

func TestLoadAssets(t *testing.T) {
	dir := t.TempDir()
	writeTestPNG(t, dir, "idle", 64, 64)
	writeTestPNG(t, dir, "talking", 64, 48)

	assets, err := LoadAssets(dir)
	require.NoError(t, err)

	idle := assets.Image(types.PoseIdle)
	assert.Equal(t, "image/png", idle.ContentType)
	assert.Equal(t, 64, idle.Width)
	assert.Equal(t, 64, idle.Height)
	assert.NotEmpty(t, idle.Data)

	talking := assets.Image(types.PoseTalking)
	assert.Equal(t, 48, talking.Height)
}

func TestLoadAssetsMissingPose(t *testing.T) {
	dir := t.TempDir()
	writeTestPNG(t, dir, "idle", 32, 32)

	_, err := LoadAssets(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "talking")
}

func TestLoadAssetsUndecodableImage(t *testing.T) {
	dir := t.TempDir()
	writeTestPNG(t, dir, "idle", 32, 32)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "talking.png"), []byte("not an image"), 0o600))

	_, err := LoadAssets(dir)
	assert.Error(t, err)
}

func TestAssetsImageClampsUnknownPose(t *testing.T) {
	dir := t.TempDir()
	writeTestPNG(t, dir, "idle", 16, 16)
	writeTestPNG(t, dir, "talking", 16, 16)

	assets, err := LoadAssets(dir)
	require.NoError(t, err)

	img := assets.Image(types.Pose(42))
	assert.Equal(t, assets.Image(types.PoseIdle), img)
}
