package colors

import (
	"math/rand"

	"github.com/color-game/contest/models"
)

// RandomSample picks a primer color for the next contestant. Lightness and
// chroma stay in a band that renders as a clearly visible, in-gamut color.
func RandomSample(rng *rand.Rand) models.ColorSample {
	return models.ColorSample{
		L:     0.45 + rng.Float64()*0.4,
		C:     0.06 + rng.Float64()*0.14,
		H:     rng.Float64() * 360,
		Alpha: 1,
	}
}
