// Package avatar manages the character images and the talking state that
// selects between them.
package avatar

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg" // register JPEG decoder
	_ "image/png"  // register PNG decoder
	"os"
	"path/filepath"

	_ "golang.org/x/image/webp" // register WebP decoder

	"github.com/oszuidwest/zwfm-avatar/internal/types"
	"github.com/oszuidwest/zwfm-avatar/internal/util"
)

// poseExtensions lists the accepted image file extensions, in lookup order.
var poseExtensions = []string{".png", ".webp", ".jpg", ".jpeg"}

// contentTypes maps file extensions to MIME types for serving.
var contentTypes = map[string]string{
	".png":  "image/png",
	".webp": "image/webp",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
}

// PoseImage holds one validated avatar image.
type PoseImage struct {
	Data        []byte
	ContentType string
	Width       int
	Height      int
}

// Assets holds the two avatar pose images.
type Assets struct {
	poses [2]PoseImage
}

// LoadAssets reads and validates the idle and talking images from dir.
// Both poses are required; a missing or undecodable image is a setup error.
func LoadAssets(dir string) (*Assets, error) {
	a := &Assets{}
	for _, pose := range []types.Pose{types.PoseIdle, types.PoseTalking} {
		img, err := loadPose(dir, pose.String())
		if err != nil {
			return nil, fmt.Errorf("load %s pose: %w", pose, err)
		}
		a.poses[pose] = *img
	}
	return a, nil
}

// Image returns the image for the given pose.
func (a *Assets) Image(pose types.Pose) PoseImage {
	if pose != types.PoseIdle && pose != types.PoseTalking {
		pose = types.PoseIdle
	}
	return a.poses[pose]
}

// loadPose finds and decodes the image file for one pose name.
func loadPose(dir, name string) (*PoseImage, error) {
	for _, ext := range poseExtensions {
		path := filepath.Join(dir, name+ext)
		data, err := os.ReadFile(path)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return nil, util.WrapError("read image", err)
		}

		cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
		}

		return &PoseImage{
			Data:        data,
			ContentType: contentTypes[ext],
			Width:       cfg.Width,
			Height:      cfg.Height,
		}, nil
	}
	return nil, fmt.Errorf("no image named %s.png, %s.webp or %s.jpg in %s", name, name, name, dir)
}
