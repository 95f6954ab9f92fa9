package images

import (
	"image"
	"image/color"

	"github.com/pkg/errors"
	xdraw "golang.org/x/image/draw"
)

// ReadRegion reads a rectangular region of img into a packed ARGB raster.
//
// The region is clipped to the image bounds. *image.NRGBA and *image.RGBA sources
// are read directly; any other color model is first converted to non-premultiplied
// RGBA.
//
// Arguments:
//   - img: The source image.
//   - rect: The region to read, in img's coordinate space.
//
// Returns:
//   - *Raster: The region as packed ARGB, with (0, 0) at rect.Min.
//   - error: ErrInvalidRaster if the clipped region is empty or img is nil.
//
// @example
//
//	r, err := images.ReadRegion(img, img.Bounds())
//	if err != nil {
//	    return err
//	}
func ReadRegion(img image.Image, rect image.Rectangle) (*Raster, error) {
	if img == nil {
		return nil, errors.Wrap(ErrInvalidRaster, "source image is nil")
	}
	rect = rect.Intersect(img.Bounds())
	if rect.Empty() {
		return nil, errors.Wrapf(ErrInvalidRaster, "region %v does not overlap image bounds %v", rect, img.Bounds())
	}

	dst, err := NewRaster(rect.Dx(), rect.Dy())
	if err != nil {
		return nil, err
	}

	switch src := img.(type) {
	case *image.NRGBA:
		readNRGBA(dst, src, rect)
	case *image.RGBA:
		readRGBA(dst, src, rect)
	default:
		// Normalize through x/image/draw so every color model is handled.
		tmp := image.NewNRGBA(image.Rect(0, 0, rect.Dx(), rect.Dy()))
		xdraw.Copy(tmp, image.Point{}, img, rect, xdraw.Src, nil)
		readNRGBA(dst, tmp, tmp.Rect)
	}

	return dst, nil
}

func readNRGBA(dst *Raster, src *image.NRGBA, rect image.Rectangle) {
	i := 0
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		off := src.PixOffset(rect.Min.X, y)
		for x := rect.Min.X; x < rect.Max.X; x++ {
			p := src.Pix[off : off+4 : off+4]
			dst.Pix[i] = PackARGB(p[3], p[0], p[1], p[2])
			off += 4
			i++
		}
	}
}

func readRGBA(dst *Raster, src *image.RGBA, rect image.Rectangle) {
	i := 0
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		off := src.PixOffset(rect.Min.X, y)
		for x := rect.Min.X; x < rect.Max.X; x++ {
			p := src.Pix[off : off+4 : off+4]
			if p[3] == 0xff {
				dst.Pix[i] = PackARGB(0xff, p[0], p[1], p[2])
			} else {
				c := color.NRGBAModel.Convert(color.RGBA{R: p[0], G: p[1], B: p[2], A: p[3]}).(color.NRGBA)
				dst.Pix[i] = PackARGB(c.A, c.R, c.G, c.B)
			}
			off += 4
			i++
		}
	}
}

// ToNRGBA converts the raster into a new *image.NRGBA anchored at (0, 0).
func (r *Raster) ToNRGBA() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, r.Width, r.Height))
	writeNRGBA(img, r, image.Point{})
	return img
}

// WriteRegion writes the raster into dst with its top-left corner at `at`.
// Pixels falling outside dst's bounds are dropped.
//
// Arguments:
//   - dst: The destination image.
//   - r: The raster to write.
//   - at: Destination coordinate of the raster's (0, 0) pixel.
//
// Returns:
//   - error: ErrInvalidRaster if r is malformed or dst is nil.
func WriteRegion(dst xdraw.Image, r *Raster, at image.Point) error {
	if dst == nil {
		return errors.Wrap(ErrInvalidRaster, "destination image is nil")
	}
	if err := r.Validate(); err != nil {
		return err
	}

	if nrgba, ok := dst.(*image.NRGBA); ok {
		writeNRGBA(nrgba, r, at)
		return nil
	}

	src := r.ToNRGBA()
	xdraw.Copy(dst, at, src, src.Rect, xdraw.Src, nil)
	return nil
}

func writeNRGBA(dst *image.NRGBA, r *Raster, at image.Point) {
	target := image.Rect(at.X, at.Y, at.X+r.Width, at.Y+r.Height).Intersect(dst.Rect)
	if target.Empty() {
		return
	}
	for y := target.Min.Y; y < target.Max.Y; y++ {
		off := dst.PixOffset(target.Min.X, y)
		row := (y-at.Y)*r.Width + (target.Min.X - at.X)
		for x := target.Min.X; x < target.Max.X; x++ {
			a, red, g, b := UnpackARGB(r.Pix[row])
			p := dst.Pix[off : off+4 : off+4]
			p[0], p[1], p[2], p[3] = red, g, b, a
			off += 4
			row++
		}
	}
}
