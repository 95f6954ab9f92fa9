package config

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// ParseColor parses "#RRGGBB" (opaque) or "#AARRGGBB" into a packed ARGB pixel.
// The leading '#' is optional.
func ParseColor(s string) (uint32, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) != 6 && len(hex) != 8 {
		return 0, errors.Wrapf(ErrInvalidConfig, "color %q", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return 0, errors.Wrapf(ErrInvalidConfig, "color %q", s)
	}
	if len(hex) == 6 {
		v |= 0xff000000
	}
	return uint32(v), nil
}
