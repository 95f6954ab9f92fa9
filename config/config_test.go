package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/nvr-ai/go-boxblur/images"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, images.DefaultQuality, cfg.Quality)
	assert.Equal(t, []FilterSpec{{Name: "boxblur", Radius: 3}}, cfg.Filters)
}

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blur.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
input: frames
output: out
format: webp
quality: 75
parallel: false
progressInterval: 250ms
filters:
  - name: gaussian
    sigma: 2.5
    passes: 4
  - name: fill
    color: "#80ff0000"
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "frames", cfg.Input)
	assert.Equal(t, images.FormatWebP, cfg.Format)
	assert.Equal(t, 75, cfg.Quality)
	assert.False(t, cfg.Parallel)
	assert.Equal(t, 250*time.Millisecond, cfg.ProgressInterval)
	require.Len(t, cfg.Filters, 2)
	assert.Equal(t, FilterSpec{Name: "gaussian", Sigma: 2.5, Passes: 4}, cfg.Filters[0])
	assert.Equal(t, "#80ff0000", cfg.Filters[1].Color)
}

func TestLoadJSONKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blur.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"input": "a.png", "output": "b.png"}`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "a.png", cfg.Input)
	assert.Equal(t, images.DefaultQuality, cfg.Quality)
	assert.True(t, cfg.Parallel)
	assert.Equal(t, Default().Filters, cfg.Filters)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"quality": "high"}`), 0o644))
	_, err = Load(path)
	assert.Error(t, err)
}

func TestSaveRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Input = "in"
	cfg.Output = "out"
	cfg.MaxWidth = 1920
	cfg.Filters = append(cfg.Filters, FilterSpec{Name: "resize", Width: 640})

	for _, name := range []string{"cfg.yaml", "cfg.yml", "cfg.json"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			require.NoError(t, cfg.Save(path))

			loaded, err := Load(path)
			require.NoError(t, err)
			assert.Equal(t, cfg, loaded)
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"quality zero", func(c *Config) { c.Quality = 0 }},
		{"quality too high", func(c *Config) { c.Quality = 101 }},
		{"negative max width", func(c *Config) { c.MaxWidth = -1 }},
		{"negative workers", func(c *Config) { c.Workers = -2 }},
		{"negative interval", func(c *Config) { c.ProgressInterval = -time.Second }},
		{"unknown format", func(c *Config) { c.Format = "gif" }},
		{"no filters", func(c *Config) { c.Filters = nil }},
		{"unknown filter", func(c *Config) { c.Filters = []FilterSpec{{Name: "sharpen"}} }},
		{"negative radius", func(c *Config) { c.Filters = []FilterSpec{{Name: "boxblur", Radius: -1}} }},
		{"gaussian without sigma", func(c *Config) { c.Filters = []FilterSpec{{Name: "gaussian"}} }},
		{"fill without color", func(c *Config) { c.Filters = []FilterSpec{{Name: "fill"}} }},
		{"resize to nothing", func(c *Config) { c.Filters = []FilterSpec{{Name: "resize"}} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			assert.True(t, errors.Is(err, ErrInvalidConfig), "got %v", err)
		})
	}
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in      string
		want    uint32
		wantErr bool
	}{
		{"#ff0000", 0xffff0000, false},
		{"00ff00", 0xff00ff00, false},
		{"#800000ff", 0x800000ff, false},
		{" #FFFFFF ", 0xffffffff, false},
		{"", 0, true},
		{"#fff", 0, true},
		{"#gg0000", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseColor(tt.in)
		if tt.wantErr {
			assert.True(t, errors.Is(err, ErrInvalidConfig), "%q", tt.in)
			continue
		}
		require.NoError(t, err, "%q", tt.in)
		assert.Equal(t, tt.want, got, "%q", tt.in)
	}
}
