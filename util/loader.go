// Package util - File helpers shared by the boxblur command and benchmarks.
package util

import (
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/nvr-ai/go-boxblur/images"
	"github.com/pkg/errors"
)

// ImageFile represents an image file.
type ImageFile struct {
	// Path is the path to the image file.
	Path string
	// Data is the raw bytes of the image file.
	Data []byte
	// Format is derived from the file extension.
	Format images.ImageFormat
	// Frame is the frame number parsed from a "frame-N" name, or -1.
	Frame int
}

// LoadDirectoryImageFiles reads every supported image file in dir.
//
// Files named "frame-N.ext" sort by N ahead of all other files, which sort by
// name. Subdirectories and unsupported extensions are skipped.
//
// Arguments:
// - dir: Directory path containing image files.
//
// Returns:
// - []ImageFile: Slice of ImageFile, each containing the raw bytes of an image file.
// - error: Error if the directory or a file cannot be read.
func LoadDirectoryImageFiles(dir string) ([]ImageFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "read directory %s", dir)
	}

	var files []ImageFile
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		format, err := images.DetectFormat(entry.Name())
		if err != nil {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrapf(err, "read %s", path)
		}
		files = append(files, ImageFile{
			Path:   path,
			Data:   data,
			Format: format,
			Frame:  frameNumber(entry.Name()),
		})
	}

	sort.SliceStable(files, func(i, j int) bool {
		a, b := files[i], files[j]
		switch {
		case a.Frame >= 0 && b.Frame >= 0:
			return a.Frame < b.Frame
		case a.Frame >= 0:
			return true
		case b.Frame >= 0:
			return false
		}
		return a.Path < b.Path
	})

	return files, nil
}

// LoadImageFile reads a single image file.
func LoadImageFile(path string) (ImageFile, error) {
	format, err := images.DetectFormat(path)
	if err != nil {
		return ImageFile{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return ImageFile{}, errors.Wrapf(err, "read %s", path)
	}
	return ImageFile{
		Path:   path,
		Data:   data,
		Format: format,
		Frame:  frameNumber(filepath.Base(path)),
	}, nil
}

func frameNumber(name string) int {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	if !strings.HasPrefix(base, "frame-") {
		return -1
	}
	n, err := strconv.Atoi(strings.TrimPrefix(base, "frame-"))
	if err != nil || n < 0 {
		return -1
	}
	return n
}
