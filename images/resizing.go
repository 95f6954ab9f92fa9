package images

import (
	"bytes"
	"fmt"
	"image"
	"image/png"

	"github.com/cshum/vipsgen/vips"
)

// DecodeScaled decodes encoded image bytes and shrinks them to fit inside
// width x height, preserving the aspect ratio. The result is lossless so alpha
// survives the round trip through libvips.
//
// Arguments:
//   - data: The encoded image, in any format libvips can load.
//   - width: The maximum width of the result.
//   - height: The maximum height of the result.
//
// Returns:
//   - image.Image: The scaled image.
//   - error: An error if the image fails to load or resize.
func DecodeScaled(data []byte, width, height int) (image.Image, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty image data")
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid dimensions: width=%d, height=%d", width, height)
	}

	// Load the image from buffer.
	img, err := vips.NewImageFromBuffer(data, &vips.LoadOptions{
		Access: vips.AccessSequential,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load image: %w", err)
	}
	defer img.Close()

	// Resize the image in-place.
	err = img.ThumbnailImage(width, &vips.ThumbnailImageOptions{
		Height: height,
		FailOn: vips.FailOnError,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to resize image: %w", err)
	}

	// Export to PNG buffer.
	resized, err := img.PngsaveBuffer(&vips.PngsaveBufferOptions{})
	if err != nil || len(resized) == 0 {
		return nil, fmt.Errorf("failed to encode resized image")
	}

	decoded, err := png.Decode(bytes.NewReader(resized))
	if err != nil {
		return nil, fmt.Errorf("failed to decode resized PNG: %w", err)
	}

	return decoded, nil
}

// NeedsScaling reports whether an image of the given size exceeds the limits.
// A limit of zero disables that axis.
func NeedsScaling(width, height, maxWidth, maxHeight int) bool {
	return (maxWidth > 0 && width > maxWidth) || (maxHeight > 0 && height > maxHeight)
}
