package images

import (
	"crypto/md5"
	"fmt"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"
)

// MatToRaster copies an 8-bit OpenCV matrix into a packed ARGB raster.
//
// Supported layouts are single channel grayscale (CV_8UC1), BGR (CV_8UC3) and
// BGRA (CV_8UC4). Grayscale and BGR inputs are treated as fully opaque.
//
// Arguments:
//   - mat: The source matrix. It is not modified or closed.
//
// Returns:
//   - *Raster: The converted raster.
//   - error: ErrInvalidRaster for empty matrices, ErrUnsupportedFormat for other types.
//
// @example
//
//	r, err := images.MatToRaster(frame)
//	if err != nil {
//	    return err
//	}
func MatToRaster(mat gocv.Mat) (*Raster, error) {
	if mat.Empty() {
		return nil, errors.Wrap(ErrInvalidRaster, "mat is empty")
	}

	src := mat
	if !mat.IsContinuous() {
		src = mat.Clone()
		defer src.Close()
	}

	data, err := src.DataPtrUint8()
	if err != nil {
		return nil, errors.Wrap(err, "mat data access failed")
	}

	dst, err := NewRaster(src.Cols(), src.Rows())
	if err != nil {
		return nil, err
	}

	switch src.Type() {
	case gocv.MatTypeCV8UC1:
		for i, v := range data[:len(dst.Pix)] {
			dst.Pix[i] = PackARGB(0xff, v, v, v)
		}
	case gocv.MatTypeCV8UC3:
		for i := range dst.Pix {
			p := data[i*3 : i*3+3 : i*3+3]
			dst.Pix[i] = PackARGB(0xff, p[2], p[1], p[0])
		}
	case gocv.MatTypeCV8UC4:
		for i := range dst.Pix {
			p := data[i*4 : i*4+4 : i*4+4]
			dst.Pix[i] = PackARGB(p[3], p[2], p[1], p[0])
		}
	default:
		return nil, errors.Wrapf(ErrUnsupportedFormat, "mat type %v", src.Type())
	}

	return dst, nil
}

// RasterToMat converts a raster into a new BGRA (CV_8UC4) matrix.
// The caller owns the returned Mat and must Close it.
func RasterToMat(r *Raster) (gocv.Mat, error) {
	if err := r.Validate(); err != nil {
		return gocv.NewMat(), err
	}

	data := make([]byte, len(r.Pix)*4)
	for i, p := range r.Pix {
		a, red, g, b := UnpackARGB(p)
		o := data[i*4 : i*4+4 : i*4+4]
		o[0], o[1], o[2], o[3] = b, g, red, a
	}

	mat, err := gocv.NewMatFromBytes(r.Height, r.Width, gocv.MatTypeCV8UC4, data)
	if err != nil {
		return gocv.NewMat(), errors.Wrap(err, "mat allocation failed")
	}
	return mat, nil
}

// ComputeMatChecksum generates a deterministic checksum for a Mat to verify idempotency.
//
// Arguments:
// - mat: The Mat to compute checksum for.
//
// Returns:
// - A hex-encoded MD5 checksum string.
//
// Example:
//
// ```go
//
//	checksum := ComputeMatChecksum(frame)
//	fmt.Printf("Frame checksum: %s\n", checksum)
//
// ```
func ComputeMatChecksum(mat gocv.Mat) string {
	if mat.Empty() {
		return "empty"
	}

	data, _ := mat.DataPtrUint8()
	hash := md5.New()
	hash.Write(data)
	return fmt.Sprintf("%x", hash.Sum(nil))
}
