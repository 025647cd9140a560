package colors

import (
	"math"
	"strings"

	"github.com/color-game/contest/models"
)

// AchromaticChroma is the chroma below which a sample has no perceived hue
const AchromaticChroma = 0.04

// UnknownName is returned by NearestNamed for samples that cannot be converted
const UnknownName = "Unknown"

type hueRange struct {
	from, to float64
	family   models.ColorFamily
}

// hueRanges cover [15, 345). Everything else is red.
var hueRanges = []hueRange{
	{15, 45, models.FamilyOrange},
	{45, 75, models.FamilyYellow},
	{75, 105, models.FamilyLime},
	{105, 165, models.FamilyGreen},
	{165, 195, models.FamilyCyan},
	{195, 255, models.FamilyBlue},
	{255, 285, models.FamilyPurple},
	{285, 315, models.FamilyMagenta},
	{315, 345, models.FamilyPink},
}

// Family classifies a sample into one of the fixed color families
func Family(sample models.ColorSample) models.ColorFamily {
	p := ToPerceptual(sample)
	if !finite(sample.L) {
		return models.FamilyGray
	}

	if p.C < AchromaticChroma {
		switch {
		case p.L < 0.2:
			return models.FamilyBlack
		case p.L > 0.9:
			return models.FamilyWhite
		default:
			return models.FamilyGray
		}
	}

	for _, hr := range hueRanges {
		if p.H >= hr.from && p.H < hr.to {
			return hr.family
		}
	}
	return models.FamilyRed
}

func lightnessModifier(l float64) string {
	switch {
	case l < 0.25:
		return "very dark"
	case l < 0.4:
		return "dark"
	case l > 0.85:
		return "very light"
	case l > 0.7:
		return "light"
	}
	return ""
}

func chromaModifier(c float64) string {
	switch {
	case c < AchromaticChroma:
		return ""
	case c < 0.08:
		return "grayish"
	case c < 0.12:
		return "muted"
	case c > 0.25:
		return "vivid"
	case c > 0.18:
		return "bright"
	}
	return ""
}

// QualitativeDescription composes lightness and chroma modifiers with the
// family, e.g. "dark muted blue".
func QualitativeDescription(sample models.ColorSample) string {
	if !finite(sample.L) {
		return "unknown color"
	}
	p := ToPerceptual(sample)
	parts := make([]string, 0, 3)
	for _, part := range []string{lightnessModifier(p.L), chromaModifier(p.C), string(Family(sample))} {
		if part != "" {
			parts = append(parts, part)
		}
	}
	return strings.TrimSpace(strings.Join(parts, " "))
}

// NearestNamed finds the palette color closest to the sample by Euclidean
// distance in 0-255 RGB. The first of several equally close entries wins.
func NearestNamed(sample models.ColorSample, palette []models.PaletteColor) models.NamedMatch {
	hex := ToHex(sample)
	if len(palette) == 0 {
		return models.NamedMatch{Name: strings.ToUpper(hex), Hex: hex}
	}

	r1, g1, b1, ok := toRGB255(sample)
	if !ok {
		return models.NamedMatch{Name: UnknownName, Hex: hex}
	}

	nearest := ""
	found := false
	minDistance := math.Inf(1)
	for _, item := range palette {
		r2, g2, b2, err := ParseHex(item.Hex)
		if err != nil {
			continue
		}
		distance := math.Sqrt(
			math.Pow(r1-float64(r2), 2) +
				math.Pow(g1-float64(g2), 2) +
				math.Pow(b1-float64(b2), 2),
		)
		if !found || distance < minDistance {
			minDistance = distance
			nearest = item.Name
			found = true
		}
	}
	if !found {
		return models.NamedMatch{Name: strings.ToUpper(hex), Hex: hex}
	}
	return models.NamedMatch{Name: nearest, Hex: hex}
}

// Describe builds the full description of a sample. It is pure and cheap
// enough to call on every render.
func Describe(sample models.ColorSample, palette []models.PaletteColor) models.ColorDescription {
	return models.ColorDescription{
		Hex:                ToHex(sample),
		Family:             Family(sample),
		QualitativeText:    QualitativeDescription(sample),
		NearestLibraryName: NearestNamed(sample, palette).Name,
	}
}
