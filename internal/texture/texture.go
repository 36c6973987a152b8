// Package texture decodes the image formats model materials commonly
// reference.
package texture

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	// Register stdlib decoders with the image package.
	_ "image/jpeg"
	_ "image/png"

	"github.com/ftrvxmtrx/tga"

	// Register extra decoders from golang.org/x/image.
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
)

// Decode reads and decodes the image file at path.
// TGA has no magic bytes the image registry could sniff, so it is dispatched
// on the file extension; everything else goes through image.Decode.
func Decode(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening texture %s: %w", path, err)
	}
	defer f.Close()

	if strings.EqualFold(filepath.Ext(path), ".tga") {
		img, err := tga.Decode(f)
		if err != nil {
			return nil, fmt.Errorf("decoding TGA %s: %w", path, err)
		}
		return img, nil
	}

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decoding texture %s: %w", path, err)
	}
	return img, nil
}
