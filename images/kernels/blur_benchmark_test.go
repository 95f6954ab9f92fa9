package kernels

import (
	"context"
	"fmt"
	"image"
	"testing"

	"github.com/nvr-ai/go-boxblur/images"
)

func BenchmarkBlur(b *testing.B) {
	sizes := []struct {
		name string
		w, h int
	}{
		{"640x640", 640, 640},
		{"1080p", 1920, 1080},
	}
	for _, size := range sizes {
		src := randomPixels(1, size.w*size.h)
		for _, radius := range []int{1, 7, 50} {
			for _, parallel := range []bool{false, true} {
				name := fmt.Sprintf("%s/r%d/parallel=%v", size.name, radius, parallel)
				opt := Options{Radius: radius, Parallel: parallel, Pool: &Pool{}}
				b.Run(name, func(b *testing.B) {
					b.ReportAllocs()
					b.SetBytes(int64(len(src) * 4))
					for i := 0; i < b.N; i++ {
						if _, err := BlurWithOptions(context.Background(), src, size.w, size.h, opt); err != nil {
							b.Fatal(err)
						}
					}
				})
			}
		}
	}
}

// Privacy masking: many small regions on one 1080p frame.
func BenchmarkBlurRegions_1080p_10faces(b *testing.B) {
	r, err := images.RasterFromPixels(randomPixels(2, 1920*1080), 1920, 1080)
	if err != nil {
		b.Fatal(err)
	}
	var rois []image.Rectangle
	for i := 0; i < 10; i++ {
		x := (i * 180) % (1920 - 160)
		y := (i * 120) % (1080 - 160)
		rois = append(rois, image.Rect(x, y, x+160, y+160))
	}
	opt := Options{Radius: 9, Parallel: true, Pool: &Pool{}}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := BlurRegions(context.Background(), r, rois, opt); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkGaussianBlur_720p(b *testing.B) {
	src := randomPixels(3, 1280*720)
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := GaussianBlur(context.Background(), src, 1280, 720, 4, 3, Options{Parallel: true}); err != nil {
			b.Fatal(err)
		}
	}
}
