package images

import (
	"fmt"
	"math"
	"sort"
)

// AspectRatio represents a frame aspect ratio by name (e.g., "16:9").
type AspectRatio string

// Defines common aspect ratios.
const (
	AspectRatio11  AspectRatio = "1:1"
	AspectRatio169 AspectRatio = "16:9"
	AspectRatio43  AspectRatio = "4:3"
	AspectRatio54  AspectRatio = "5:4"
)

// ResolutionType represents a common name for a frame resolution.
type ResolutionType string

// Resolution identifiers used by the benchmark sweeps.
const (
	ResolutionTypeThumb    ResolutionType = "Thumbnail"
	ResolutionTypeNHD      ResolutionType = "nHD"
	ResolutionTypeSquare   ResolutionType = "Square 640"
	ResolutionTypeHD720p   ResolutionType = "HD 720p"
	ResolutionType1MP54    ResolutionType = "1MP (5:4)"
	ResolutionTypeFHD1080p ResolutionType = "Full HD 1080p"
	ResolutionType2MP43    ResolutionType = "2MP (4:3)"
	ResolutionTypeQHD1440p ResolutionType = "QHD 1440p"
	ResolutionType4KUHD    ResolutionType = "4K UHD"
	ResolutionType8KUHD    ResolutionType = "8K UHD"
)

// ResolutionPixels describes the exact dimensions of a resolution.
type ResolutionPixels struct {
	Width  int `json:"width" yaml:"width"`
	Height int `json:"height" yaml:"height"`
}

// Resolution describes a named frame size. Blur cost scales with pixel count
// only, so the benchmarks sweep these sizes rather than radii.
type Resolution struct {
	Name        ResolutionType   `json:"name" yaml:"name"`
	AspectRatio AspectRatio      `json:"aspectRatio" yaml:"aspectRatio"`
	Pixels      ResolutionPixels `json:"pixels" yaml:"pixels"`
	// Heavy marks sizes that are slow enough to be excluded from quick sweeps.
	Heavy bool `json:"heavy" yaml:"heavy"`
}

// PixelCount returns Width*Height.
func (r Resolution) PixelCount() int {
	return r.Pixels.Width * r.Pixels.Height
}

// GetMegaPixels returns the megapixel value rounded to two decimal places (e.g., 2.07 for 1080p).
func (r Resolution) GetMegaPixels() float64 {
	if r.Pixels.Width <= 0 || r.Pixels.Height <= 0 {
		return 0.0
	}
	mp := float64(r.PixelCount()) / 1_000_000.0
	return math.Round(mp*100) / 100
}

// String returns a human-readable summary of the resolution.
func (r Resolution) String() string {
	return fmt.Sprintf("%s (%dx%d, %.2fMP)", r.Name, r.Pixels.Width, r.Pixels.Height, r.GetMegaPixels())
}

// NewResolution describes an ad-hoc size, e.g. the dimensions of an input file.
func NewResolution(width, height int) Resolution {
	return Resolution{
		Name:   ResolutionType(fmt.Sprintf("%dx%d", width, height)),
		Pixels: ResolutionPixels{Width: width, Height: height},
	}
}

var resolutions = map[ResolutionType]Resolution{
	ResolutionTypeThumb:    {Name: ResolutionTypeThumb, AspectRatio: AspectRatio43, Pixels: ResolutionPixels{Width: 320, Height: 240}},
	ResolutionTypeNHD:      {Name: ResolutionTypeNHD, AspectRatio: AspectRatio169, Pixels: ResolutionPixels{Width: 640, Height: 360}},
	ResolutionTypeSquare:   {Name: ResolutionTypeSquare, AspectRatio: AspectRatio11, Pixels: ResolutionPixels{Width: 640, Height: 640}},
	ResolutionTypeHD720p:   {Name: ResolutionTypeHD720p, AspectRatio: AspectRatio169, Pixels: ResolutionPixels{Width: 1280, Height: 720}},
	ResolutionType1MP54:    {Name: ResolutionType1MP54, AspectRatio: AspectRatio54, Pixels: ResolutionPixels{Width: 1280, Height: 1024}},
	ResolutionTypeFHD1080p: {Name: ResolutionTypeFHD1080p, AspectRatio: AspectRatio169, Pixels: ResolutionPixels{Width: 1920, Height: 1080}},
	ResolutionType2MP43:    {Name: ResolutionType2MP43, AspectRatio: AspectRatio43, Pixels: ResolutionPixels{Width: 1600, Height: 1200}},
	ResolutionTypeQHD1440p: {Name: ResolutionTypeQHD1440p, AspectRatio: AspectRatio169, Pixels: ResolutionPixels{Width: 2560, Height: 1440}},
	ResolutionType4KUHD:    {Name: ResolutionType4KUHD, AspectRatio: AspectRatio169, Pixels: ResolutionPixels{Width: 3840, Height: 2160}, Heavy: true},
	ResolutionType8KUHD:    {Name: ResolutionType8KUHD, AspectRatio: AspectRatio169, Pixels: ResolutionPixels{Width: 7680, Height: 4320}, Heavy: true},
}

// GetAllResolutions returns every catalogued resolution ordered by pixel count.
func GetAllResolutions() []Resolution {
	all := make([]Resolution, 0, len(resolutions))
	for _, res := range resolutions {
		all = append(all, res)
	}
	sortResolutions(all)
	return all
}

// GetQuickResolutions returns the non-heavy resolutions ordered by pixel count.
func GetQuickResolutions() []Resolution {
	quick := make([]Resolution, 0, len(resolutions))
	for _, res := range resolutions {
		if !res.Heavy {
			quick = append(quick, res)
		}
	}
	sortResolutions(quick)
	return quick
}

// GetResolutionByType retrieves a specific resolution by its type.
// O(1) complexity due to map lookup.
func GetResolutionByType(t ResolutionType) (Resolution, bool) {
	res, ok := resolutions[t]
	return res, ok
}

// GetHighestResolutionUnderDimensions retrieves the largest catalogued resolution
// fitting inside width x height.
//
// Arguments:
//   - width: The maximum possible width.
//   - height: The maximum possible height.
//
// Returns:
//   - Resolution: The largest resolution that fits.
//   - bool: True if a resolution was found, otherwise false.
func GetHighestResolutionUnderDimensions(width, height int) (Resolution, bool) {
	var highest Resolution
	var found bool

	for _, res := range resolutions {
		if res.Pixels.Width <= width && res.Pixels.Height <= height {
			if !found || res.PixelCount() > highest.PixelCount() {
				highest = res
				found = true
			}
		}
	}
	return highest, found
}

func sortResolutions(rs []Resolution) {
	sort.Slice(rs, func(i, j int) bool {
		if rs[i].PixelCount() != rs[j].PixelCount() {
			return rs[i].PixelCount() < rs[j].PixelCount()
		}
		return rs[i].Name < rs[j].Name
	})
}
