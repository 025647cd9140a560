package colors

import (
	"fmt"
	"math"
	"strings"

	"github.com/color-game/contest/models"
	"github.com/lucasb-eyer/go-colorful"
)

// FallbackHex is rendered for any sample that cannot be converted
const FallbackHex = "#000000"

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Valid reports whether the sample can be converted. Chroma must be
// non-negative and lightness within [0, 1].
func Valid(sample models.ColorSample) bool {
	if !finite(sample.L) || !finite(sample.C) || !finite(sample.H) || !finite(sample.Alpha) {
		return false
	}
	return sample.C >= 0 && sample.L >= 0 && sample.L <= 1
}

// NormalizeHue maps any hue onto [0, 360). Non-finite hues become 0.
func NormalizeHue(h float64) float64 {
	if !finite(h) {
		return 0
	}
	h = math.Mod(h, 360)
	if h < 0 {
		h += 360
	}
	if h >= 360 {
		h = 0
	}
	return h
}

func toColorful(sample models.ColorSample) (colorful.Color, bool) {
	if !Valid(sample) {
		return colorful.Color{}, false
	}
	col := colorful.OkLch(sample.L, sample.C, NormalizeHue(sample.H))
	if !finite(col.R) || !finite(col.G) || !finite(col.B) {
		return colorful.Color{}, false
	}
	return col, true
}

// ToHex renders the sample as a lowercase #rrggbb string, clamping colors
// outside the sRGB gamut. It returns FallbackHex instead of failing.
func ToHex(sample models.ColorSample) string {
	col, ok := toColorful(sample)
	if !ok {
		return FallbackHex
	}
	return col.Clamped().Hex()
}

// ToPerceptual returns the sample's lightness, chroma and normalized hue
func ToPerceptual(sample models.ColorSample) models.Perceptual {
	p := models.Perceptual{L: sample.L, C: sample.C, H: NormalizeHue(sample.H)}
	if !finite(p.L) {
		p.L = 0
	}
	if !finite(p.C) {
		p.C = 0
	}
	return p
}

// ToLinearRGB returns gamut-clamped linear RGB components in [0, 1]
func ToLinearRGB(sample models.ColorSample) (r, g, b float64) {
	col, ok := toColorful(sample)
	if !ok {
		return 0, 0, 0
	}
	return col.Clamped().LinearRgb()
}

// toRGB255 returns gamut-clamped sRGB components scaled to 0-255 without rounding
func toRGB255(sample models.ColorSample) (r, g, b float64, ok bool) {
	col, ok := toColorful(sample)
	if !ok {
		return 0, 0, 0, false
	}
	col = col.Clamped()
	return col.R * 255, col.G * 255, col.B * 255, true
}

// ParseHex decodes a #rrggbb string into 0-255 components
func ParseHex(hex string) (r, g, b uint8, err error) {
	if len(hex) != 7 || hex[0] != '#' {
		return 0, 0, 0, fmt.Errorf("invalid hex color %q", hex)
	}
	col, err := colorful.Hex(strings.ToLower(hex))
	if err != nil {
		return 0, 0, 0, fmt.Errorf("invalid hex color %q: %w", hex, err)
	}
	r, g, b = col.RGB255()
	return r, g, b, nil
}

// FromHex parses a #rrggbb string into an opaque sample
func FromHex(hex string) (models.ColorSample, error) {
	if _, _, _, err := ParseHex(hex); err != nil {
		return models.ColorSample{}, err
	}
	col, err := colorful.Hex(strings.ToLower(hex))
	if err != nil {
		return models.ColorSample{}, fmt.Errorf("invalid hex color %q: %w", hex, err)
	}
	l, c, h := col.OkLch()
	return models.ColorSample{L: l, C: c, H: NormalizeHue(h), Alpha: 1}, nil
}
