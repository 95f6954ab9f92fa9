package kernels

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGaussianBoxes(t *testing.T) {
	tests := []struct {
		name  string
		sigma float32
		n     int
		want  []int
	}{
		{"sigma 2", 2, 3, []int{1, 1, 2}},
		{"sigma 10", 10, 3, []int{9, 9, 10}},
		{"tiny sigma is identity", 0.3, 3, []int{0, 0, 0}},
		{"zero sigma", 0, 3, nil},
		{"no boxes", 2, 0, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GaussianBoxes(tt.sigma, tt.n))
		})
	}
}

func TestGaussianBoxesNonDecreasing(t *testing.T) {
	for _, sigma := range []float32{0.8, 1.5, 3, 7.25, 30} {
		for n := 1; n <= 6; n++ {
			radii := GaussianBoxes(sigma, n)
			require.Len(t, radii, n)
			for i := 1; i < n; i++ {
				assert.LessOrEqual(t, radii[i-1], radii[i], "sigma %v n %d", sigma, n)
				assert.LessOrEqual(t, radii[n-1]-radii[0], 1)
			}
		}
	}
}

func TestGaussianBlurChainsBoxes(t *testing.T) {
	const w, h = 24, 18
	src := randomPixels(31, w*h)

	want := src
	for _, r := range GaussianBoxes(2, 3) {
		want = naiveSeparable(want, w, h, r)
	}

	p := &recordingProgress{}
	out, err := GaussianBlur(context.Background(), src, w, h, 2, 3, Options{Progress: p})
	require.NoError(t, err)
	assert.Equal(t, want, out)
	assert.Equal(t, 1, p.totals)
	assert.Equal(t, 3*(w+h), p.total)
	assert.Equal(t, 3*(w+h), p.completed)
	assert.Equal(t, 1, p.finished)
}

func TestGaussianBlurIdentityBoxes(t *testing.T) {
	src := randomPixels(2, 5*5)
	p := &recordingProgress{}

	out, err := GaussianBlur(context.Background(), src, 5, 5, 0.3, 3, Options{Progress: p})
	require.NoError(t, err)
	assert.Equal(t, src, out)
	assert.Equal(t, 0, p.total)
	assert.Equal(t, 1, p.finished)
}

func TestGaussianBlurInvalid(t *testing.T) {
	_, err := GaussianBlur(context.Background(), randomPixels(1, 4), 2, 2, 0, 3, Options{})
	assert.True(t, errors.Is(err, ErrInvalidArgument))

	_, err = GaussianBlur(context.Background(), nil, 2, 2, 1, 3, Options{})
	assert.True(t, errors.Is(err, ErrInvalidArgument))
}
