package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/golang/glog"
	"github.com/nvr-ai/go-boxblur/config"
	"github.com/nvr-ai/go-boxblur/filters"
	"github.com/nvr-ai/go-boxblur/images"
	"github.com/nvr-ai/go-boxblur/images/kernels"
	"github.com/nvr-ai/go-boxblur/progress"
	"github.com/nvr-ai/go-boxblur/util"
	"github.com/pkg/errors"
)

// runner applies the configured filter chain to files.
type runner struct {
	cfg   *config.Config
	chain *filters.Chain
}

func newRunner(cfg *config.Config) (*runner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	chain, err := filters.FromConfig(cfg)
	if err != nil {
		return nil, err
	}
	pool := &kernels.Pool{}
	for _, t := range chain.Transforms {
		switch f := t.(type) {
		case *filters.BoxBlur:
			f.Pool = pool
		case *filters.GaussianBlur:
			f.Pool = pool
		}
	}
	return &runner{cfg: cfg, chain: chain}, nil
}

// run processes cfg.Input, which is either one file or a directory.
func (r *runner) run(ctx context.Context) error {
	info, err := os.Stat(r.cfg.Input)
	if err != nil {
		return errors.Wrap(err, "input")
	}
	if !info.IsDir() {
		f, err := util.LoadImageFile(r.cfg.Input)
		if err != nil {
			return err
		}
		return r.processFile(ctx, f, r.outputPath(f, false))
	}

	files, err := util.LoadDirectoryImageFiles(r.cfg.Input)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return errors.Errorf("no images in %s", r.cfg.Input)
	}
	if err := os.MkdirAll(r.cfg.Output, 0o755); err != nil {
		return errors.Wrap(err, "create output directory")
	}

	failed := 0
	for _, f := range files {
		if err := r.processFile(ctx, f, r.outputPath(f, true)); err != nil {
			if ctx.Err() != nil {
				return err
			}
			glog.Errorf("%s: %v", f.Path, err)
			failed++
		}
	}
	glog.Infof("Processed %d/%d images from %s", len(files)-failed, len(files), r.cfg.Input)
	if failed > 0 {
		return errors.Errorf("%d of %d images failed", failed, len(files))
	}
	return nil
}

// outputPath picks where a processed file is written. Without an explicit
// output a single file is written next to its input with a "-blurred" suffix.
func (r *runner) outputPath(f util.ImageFile, batch bool) string {
	format := r.outputFormat(f)
	base := strings.TrimSuffix(filepath.Base(f.Path), filepath.Ext(f.Path))
	ext := "." + string(format)

	switch {
	case batch:
		return filepath.Join(r.cfg.Output, base+ext)
	case r.cfg.Output != "":
		return r.cfg.Output
	}
	return filepath.Join(filepath.Dir(f.Path), base+"-blurred"+ext)
}

func (r *runner) outputFormat(f util.ImageFile) images.ImageFormat {
	if r.cfg.Format != "" {
		return r.cfg.Format
	}
	return f.Format
}

func (r *runner) decode(f util.ImageFile) (*images.Raster, error) {
	img, err := images.Decode(f.Data, f.Format)
	if err != nil {
		return nil, err
	}
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	if images.NeedsScaling(w, h, r.cfg.MaxWidth, r.cfg.MaxHeight) {
		maxW, maxH := r.cfg.MaxWidth, r.cfg.MaxHeight
		if maxW == 0 {
			maxW = w
		}
		if maxH == 0 {
			maxH = h
		}
		scaled, err := images.DecodeScaled(f.Data, maxW, maxH)
		if err != nil {
			return nil, errors.Wrap(err, "scale input")
		}
		glog.V(1).Infof("%s: scaled %dx%d to %v", f.Path, w, h, scaled.Bounds().Size())
		img = scaled
	}
	return images.ReadRegion(img, img.Bounds())
}

func (r *runner) processFile(ctx context.Context, f util.ImageFile, out string) error {
	src, err := r.decode(f)
	if err != nil {
		return errors.Wrap(err, "decode input")
	}

	tracker := progress.NewTracker(progress.Options{
		Name:     filepath.Base(f.Path),
		Interval: r.cfg.ProgressInterval,
		Report: func(s progress.Snapshot) {
			glog.V(1).Infof("%s: %d/%d units (%.1f%%) after %v", s.Name, s.Done, s.Total, s.Percent, s.Elapsed)
		},
	})
	tracker.Start()
	defer tracker.Finished()

	dst, err := r.chain.Apply(ctx, src, tracker)
	if err != nil {
		return errors.Wrap(err, "apply filters")
	}

	encoded, err := images.EncodeRaster(dst, r.outputFormat(f), r.cfg.Quality)
	if err != nil {
		return errors.Wrap(err, "encode output")
	}
	if err := os.WriteFile(out, encoded.Data, 0o644); err != nil {
		return errors.Wrap(err, "write output")
	}

	glog.Infof("%s -> %s (%s, %s, checksum %s)", f.Path, out, dst, r.chain.Name(), dst.Checksum())
	return nil
}
