package images

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"
)

func TestRasterMatRoundTrip(t *testing.T) {
	r, err := RasterFromPixels([]uint32{
		0xff102030, 0x80405060,
		0x00000000, 0xffa0b0c0,
	}, 2, 2)
	require.NoError(t, err)

	mat, err := RasterToMat(r)
	require.NoError(t, err)
	defer mat.Close()

	assert.Equal(t, 2, mat.Rows())
	assert.Equal(t, 2, mat.Cols())
	assert.Equal(t, 4, mat.Channels())

	back, err := MatToRaster(mat)
	require.NoError(t, err)
	assert.Equal(t, r.Pix, back.Pix)
	assert.NotEqual(t, "empty", ComputeMatChecksum(mat))
}

func TestMatToRasterBGR(t *testing.T) {
	mat := gocv.NewMatWithSize(1, 2, gocv.MatTypeCV8UC3)
	defer mat.Close()
	mat.SetUCharAt(0, 0, 10) // B
	mat.SetUCharAt(0, 1, 20) // G
	mat.SetUCharAt(0, 2, 30) // R

	r, err := MatToRaster(mat)
	require.NoError(t, err)
	assert.Equal(t, PackARGB(255, 30, 20, 10), r.At(0, 0))
}

func TestMatToRasterGray(t *testing.T) {
	mat := gocv.NewMatWithSize(2, 1, gocv.MatTypeCV8UC1)
	defer mat.Close()
	mat.SetUCharAt(1, 0, 77)

	r, err := MatToRaster(mat)
	require.NoError(t, err)
	assert.Equal(t, 1, r.Width)
	assert.Equal(t, 2, r.Height)
	assert.Equal(t, PackARGB(255, 77, 77, 77), r.At(0, 1))
}

func TestMatToRasterRejects(t *testing.T) {
	empty := gocv.NewMat()
	defer empty.Close()
	_, err := MatToRaster(empty)
	assert.ErrorIs(t, err, ErrInvalidRaster)
	assert.Equal(t, "empty", ComputeMatChecksum(empty))

	floats := gocv.NewMatWithSize(2, 2, gocv.MatTypeCV32F)
	defer floats.Close()
	_, err = MatToRaster(floats)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}
