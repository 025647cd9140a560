package models

// ColorSample is a color in OKLCH space. Values are never mutated in place.
type ColorSample struct {
	L     float64 `json:"l" yaml:"l"`
	C     float64 `json:"c" yaml:"c"`
	H     float64 `json:"h" yaml:"h"`
	Alpha float64 `json:"alpha" yaml:"alpha"`
}

// NeutralPrimer is the placeholder primer color given to legacy entries,
// which never recorded one.
var NeutralPrimer = ColorSample{L: 0.5, C: 0, H: 0, Alpha: 1}

// Perceptual holds the lightness, chroma and hue of a sample with hue
// normalized into [0, 360).
type Perceptual struct {
	L float64 `json:"l"`
	C float64 `json:"c"`
	H float64 `json:"h"`
}

// ColorFamily is a coarse human color category
type ColorFamily string

const (
	FamilyRed     ColorFamily = "red"
	FamilyOrange  ColorFamily = "orange"
	FamilyYellow  ColorFamily = "yellow"
	FamilyLime    ColorFamily = "lime"
	FamilyGreen   ColorFamily = "green"
	FamilyCyan    ColorFamily = "cyan"
	FamilyBlue    ColorFamily = "blue"
	FamilyPurple  ColorFamily = "purple"
	FamilyMagenta ColorFamily = "magenta"
	FamilyPink    ColorFamily = "pink"
	FamilyGray    ColorFamily = "gray"
	FamilyBlack   ColorFamily = "black"
	FamilyWhite   ColorFamily = "white"
)

// ColorDescription is recomputed on every request and never stored
type ColorDescription struct {
	Hex                string      `json:"hex"`
	Family             ColorFamily `json:"family"`
	QualitativeText    string      `json:"qualitativeText"`
	NearestLibraryName string      `json:"nearestLibraryName"`
}

// PaletteColor is one named reference color used for nearest-name lookups
type PaletteColor struct {
	Name string `json:"name" yaml:"name"`
	Hex  string `json:"hex" yaml:"hex"`
}

// NamedMatch is the result of a nearest-name lookup
type NamedMatch struct {
	Name string `json:"name"`
	Hex  string `json:"hex"`
}

// ColorInput is a color as sent by a client. Hue and alpha may be omitted
// and default to 0 and 1.
type ColorInput struct {
	L     float64  `json:"l"`
	C     float64  `json:"c"`
	H     *float64 `json:"h,omitempty"`
	Alpha *float64 `json:"alpha,omitempty"`
}

// Sample converts the input into a ColorSample, filling defaults
func (in ColorInput) Sample() ColorSample {
	sample := ColorSample{L: in.L, C: in.C, Alpha: 1}
	if in.H != nil {
		sample.H = *in.H
	}
	if in.Alpha != nil {
		sample.Alpha = *in.Alpha
	}
	return sample
}

// RandomColorResponse is a freshly generated primer color and its description
type RandomColorResponse struct {
	Color       ColorSample      `json:"color"`
	Description ColorDescription `json:"description"`
}

// ColorRequest names a color either by hex string or by OKLCH channels.
// Hex wins when both are given.
type ColorRequest struct {
	Hex   string      `json:"hex,omitempty"`
	Color *ColorInput `json:"color,omitempty"`
}
