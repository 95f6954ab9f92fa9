package images

import (
	"bytes"
	"image"
	"image/jpeg"
	"image/png"
	"io"

	"github.com/chai2010/webp"
	"github.com/pkg/errors"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

// DefaultQuality is the lossy encoder quality used when none is configured.
const DefaultQuality = 90

// Decode decodes encoded image bytes of the given format.
//
// Arguments:
//   - data: The encoded image.
//   - format: The encoding of data.
//
// Returns:
//   - image.Image: The decoded image.
//   - error: An error if data is empty, the format is unknown or decoding fails.
func Decode(data []byte, format ImageFormat) (image.Image, error) {
	if len(data) == 0 {
		return nil, errors.New("empty image data")
	}

	r := bytes.NewReader(data)
	var (
		img image.Image
		err error
	)
	switch format {
	case FormatJPEG:
		img, err = jpeg.Decode(r)
	case FormatPNG:
		img, err = png.Decode(r)
	case FormatWebP:
		img, err = webp.Decode(r)
	case FormatBMP:
		img, err = bmp.Decode(r)
	case FormatTIFF:
		img, err = tiff.Decode(r)
	default:
		return nil, errors.Wrapf(ErrUnsupportedFormat, "%q", format)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to decode %s", format)
	}
	return img, nil
}

// DecodeImage decodes an encoded Image and fills in its dimensions.
func DecodeImage(in *Image) (image.Image, error) {
	if in == nil {
		return nil, errors.New("image is nil")
	}
	img, err := Decode(in.Data, in.Format)
	if err != nil {
		return nil, err
	}
	in.Width = img.Bounds().Dx()
	in.Height = img.Bounds().Dy()
	return img, nil
}

// Encode writes img to w in the given format.
// quality applies to JPEG and WebP and falls back to DefaultQuality when not in (0, 100].
func Encode(w io.Writer, img image.Image, format ImageFormat, quality int) error {
	if quality <= 0 || quality > 100 {
		quality = DefaultQuality
	}

	var err error
	switch format {
	case FormatJPEG:
		err = jpeg.Encode(w, img, &jpeg.Options{Quality: quality})
	case FormatPNG:
		err = png.Encode(w, img)
	case FormatWebP:
		err = webp.Encode(w, img, &webp.Options{Quality: float32(quality)})
	case FormatBMP:
		err = bmp.Encode(w, img)
	case FormatTIFF:
		err = tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
	default:
		return errors.Wrapf(ErrUnsupportedFormat, "%q", format)
	}
	if err != nil {
		return errors.Wrapf(err, "failed to encode %s", format)
	}
	return nil
}

// EncodeRaster encodes a raster into an Image of the given format.
func EncodeRaster(r *Raster, format ImageFormat, quality int) (*Image, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := Encode(&buf, r.ToNRGBA(), format, quality); err != nil {
		return nil, err
	}
	return &Image{
		Format: format,
		Data:   buf.Bytes(),
		Width:  r.Width,
		Height: r.Height,
	}, nil
}
