package main

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/nvr-ai/go-boxblur/config"
	"github.com/nvr-ai/go-boxblur/images"
	"github.com/nvr-ai/go-boxblur/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := uint8(0)
			if (x/4+y/4)%2 == 0 {
				v = 255
			}
			img.SetNRGBA(x, y, color.NRGBA{R: v, G: v, B: v, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
}

func TestApplyFlags(t *testing.T) {
	*flagInput = "in.png"
	*flagRadius = 9
	*flagFormat = "jpg"
	*flagWorkers = 2
	defer func() {
		*flagInput, *flagRadius, *flagFormat, *flagWorkers = "", 3, "", 0
	}()

	cfg := applyFlags(config.Default(), map[string]bool{"input": true, "radius": true, "format": true, "workers": true})
	assert.Equal(t, "in.png", cfg.Input)
	assert.Equal(t, images.FormatJPEG, cfg.Format)
	assert.Equal(t, 2, cfg.Workers)
	assert.Equal(t, []config.FilterSpec{{Name: "boxblur", Radius: 9}}, cfg.Filters)

	untouched := applyFlags(config.Default(), map[string]bool{})
	assert.Equal(t, config.Default(), untouched)
}

func TestOutputPath(t *testing.T) {
	f := util.ImageFile{Path: filepath.Join("shots", "a.png"), Format: images.FormatPNG}

	r := &runner{cfg: config.Default()}
	assert.Equal(t, filepath.Join("shots", "a-blurred.png"), r.outputPath(f, false))

	r.cfg.Output = "out.png"
	assert.Equal(t, "out.png", r.outputPath(f, false))

	r.cfg.Output = "dst"
	r.cfg.Format = images.FormatWebP
	assert.Equal(t, filepath.Join("dst", "a.webp"), r.outputPath(f, true))
}

func TestRunSingleFile(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "check.png")
	writePNG(t, in, 32, 24)

	cfg := config.Default()
	cfg.Input = in
	cfg.ProgressInterval = 0
	r, err := newRunner(cfg)
	require.NoError(t, err)
	require.NoError(t, r.run(context.Background()))

	out := filepath.Join(dir, "check-blurred.png")
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	img, err := images.Decode(data, images.FormatPNG)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 32, 24), img.Bounds())

	// The checkerboard edges are softened: some pixel is neither black nor white.
	raster, err := images.ReadRegion(img, img.Bounds())
	require.NoError(t, err)
	softened := false
	for _, p := range raster.Pix {
		if v := p & 0xff; v != 0 && v != 0xff {
			softened = true
			break
		}
	}
	assert.True(t, softened)
}

func TestRunDirectory(t *testing.T) {
	in := t.TempDir()
	writePNG(t, filepath.Join(in, "frame-1.png"), 16, 16)
	writePNG(t, filepath.Join(in, "frame-2.png"), 8, 12)
	require.NoError(t, os.WriteFile(filepath.Join(in, "broken.png"), []byte("nope"), 0o644))
	out := filepath.Join(t.TempDir(), "out")

	cfg := config.Default()
	cfg.Input = in
	cfg.Output = out
	cfg.Format = images.FormatBMP
	cfg.Filters = []config.FilterSpec{{Name: "gaussian", Sigma: 1.5}, {Name: "resize", Width: 4}}
	r, err := newRunner(cfg)
	require.NoError(t, err)

	err = r.run(context.Background())
	assert.ErrorContains(t, err, "1 of 3 images failed")

	for _, name := range []string{"frame-1.bmp", "frame-2.bmp"} {
		_, err := os.Stat(filepath.Join(out, name))
		assert.NoError(t, err, name)
	}
}

func TestNewRunnerRejectsInvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Filters = []config.FilterSpec{{Name: "sharpen"}}
	_, err := newRunner(cfg)
	assert.ErrorIs(t, err, config.ErrInvalidConfig)
}
