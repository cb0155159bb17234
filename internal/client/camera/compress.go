package camera

import (
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/nfnt/resize"
)

const (
	MaxDimension = 1280
	Quality      = 50
)

// Compress downsizes the image at path to fit MaxDimension and re-encodes it
// as JPEG at Quality, writing <name>-small.jpg into dir.
func Compress(path, dir string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	img, _, err := image.Decode(f)
	f.Close()
	if err != nil {
		return "", fmt.Errorf("failed to decode %s: %v", path, err)
	}

	small := resize.Thumbnail(MaxDimension, MaxDimension, img, resize.Lanczos3)

	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	out := filepath.Join(dir, base+"-small.jpg")
	w, err := os.Create(out)
	if err != nil {
		return "", err
	}
	defer w.Close()

	if err := jpeg.Encode(w, small, &jpeg.Options{Quality: Quality}); err != nil {
		return "", fmt.Errorf("failed to encode %s: %v", out, err)
	}
	return out, nil
}
