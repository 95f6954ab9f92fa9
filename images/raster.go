package images

import (
	"crypto/md5"
	"encoding/binary"
	"fmt"

	"github.com/pkg/errors"
)

// ErrInvalidRaster is returned when raster dimensions or pixel storage are malformed.
var ErrInvalidRaster = errors.New("invalid raster")

// Raster is a flat, row-major sequence of packed 32-bit ARGB pixels.
//
// Each pixel stores alpha in the most significant byte followed by red, green and
// blue. Channels are not premultiplied.
type Raster struct {
	// Pix holds Width*Height packed pixels, row by row.
	Pix []uint32 `json:"-" yaml:"-"`
	// Width is the number of pixels per row.
	Width int `json:"width" yaml:"width"`
	// Height is the number of rows.
	Height int `json:"height" yaml:"height"`
}

// NewRaster allocates a zeroed raster of the given size.
//
// Arguments:
//   - width: Pixels per row, must be positive.
//   - height: Number of rows, must be positive.
//
// Returns:
//   - *Raster: The allocated raster.
//   - error: ErrInvalidRaster when a dimension is not positive.
func NewRaster(width, height int) (*Raster, error) {
	if width <= 0 || height <= 0 {
		return nil, errors.Wrapf(ErrInvalidRaster, "dimensions %dx%d", width, height)
	}
	return &Raster{
		Pix:    make([]uint32, width*height),
		Width:  width,
		Height: height,
	}, nil
}

// RasterFromPixels wraps an existing pixel slice without copying it.
func RasterFromPixels(pix []uint32, width, height int) (*Raster, error) {
	r := &Raster{Pix: pix, Width: width, Height: height}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return r, nil
}

// Validate checks the raster invariants: positive dimensions and
// len(Pix) == Width*Height.
func (r *Raster) Validate() error {
	if r == nil {
		return errors.Wrap(ErrInvalidRaster, "raster is nil")
	}
	if r.Width <= 0 || r.Height <= 0 {
		return errors.Wrapf(ErrInvalidRaster, "dimensions %dx%d", r.Width, r.Height)
	}
	if r.Pix == nil {
		return errors.Wrap(ErrInvalidRaster, "pixel buffer is nil")
	}
	if len(r.Pix) != r.Width*r.Height {
		return errors.Wrapf(ErrInvalidRaster, "pixel buffer has %d entries, want %d", len(r.Pix), r.Width*r.Height)
	}
	return nil
}

// At returns the packed pixel at (x, y). It panics when out of range.
func (r *Raster) At(x, y int) uint32 {
	return r.Pix[y*r.Width+x]
}

// Set stores a packed pixel at (x, y). It panics when out of range.
func (r *Raster) Set(x, y int, argb uint32) {
	r.Pix[y*r.Width+x] = argb
}

// Clone returns a deep copy of the raster.
func (r *Raster) Clone() *Raster {
	pix := make([]uint32, len(r.Pix))
	copy(pix, r.Pix)
	return &Raster{Pix: pix, Width: r.Width, Height: r.Height}
}

// Len returns the number of pixels.
func (r *Raster) Len() int { return len(r.Pix) }

// String returns a short description of the raster.
func (r *Raster) String() string {
	return fmt.Sprintf("raster %dx%d", r.Width, r.Height)
}

// Checksum generates a deterministic digest of the raster contents and size.
//
// Returns:
//   - A hex-encoded MD5 checksum string.
func (r *Raster) Checksum() string {
	if r == nil || len(r.Pix) == 0 {
		return "empty"
	}

	hash := md5.New()
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], uint32(r.Width))
	hash.Write(buf[:])
	binary.BigEndian.PutUint32(buf[:], uint32(r.Height))
	hash.Write(buf[:])
	for _, p := range r.Pix {
		binary.BigEndian.PutUint32(buf[:], p)
		hash.Write(buf[:])
	}
	return fmt.Sprintf("%x", hash.Sum(nil))
}

// PackARGB packs four 8-bit channels into one ARGB pixel.
func PackARGB(a, r, g, b uint8) uint32 {
	return uint32(a)<<24 | uint32(r)<<16 | uint32(g)<<8 | uint32(b)
}

// UnpackARGB splits a packed ARGB pixel into its channels.
func UnpackARGB(p uint32) (a, r, g, b uint8) {
	return uint8(p >> 24), uint8(p >> 16), uint8(p >> 8), uint8(p)
}
