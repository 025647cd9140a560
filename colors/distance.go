package colors

import (
	"fmt"
	"math"
	"strings"

	"github.com/color-game/contest/models"
	"github.com/lucasb-eyer/go-colorful"
)

// Undefined is the distance reported when either sample is not a real
// color (non-finite fields or negative chroma). It sorts after every
// defined distance.
var Undefined = math.Inf(1)

// Metric selects the perceptual distance formula
type Metric string

const (
	// MetricOKLab is Euclidean distance in OKLab, the cartesian form of OKLCH
	MetricOKLab Metric = "oklab"
	// MetricCIEDE2000 is the CIE 2000 color difference on the sRGB rendering
	MetricCIEDE2000 Metric = "ciede2000"
)

// ParseMetric validates a metric name; an empty name selects MetricOKLab
func ParseMetric(name string) (Metric, error) {
	switch Metric(strings.ToLower(strings.TrimSpace(name))) {
	case "", MetricOKLab:
		return MetricOKLab, nil
	case MetricCIEDE2000:
		return MetricCIEDE2000, nil
	}
	return "", fmt.Errorf("unknown scoring metric %q", name)
}

// MaxDistance is the distance treated as "completely wrong" when turning a
// distance into a 0-100 closeness score.
func (m Metric) MaxDistance() float64 {
	if m == MetricCIEDE2000 {
		return 100
	}
	return 1
}

// Distance measures a and b with the metric
func (m Metric) Distance(a, b models.ColorSample) float64 {
	if m == MetricCIEDE2000 {
		return DistanceCIEDE2000(a, b)
	}
	return Distance(a, b)
}

func defined(sample models.ColorSample) bool {
	return finite(sample.L) && finite(sample.C) && finite(sample.H) && sample.C >= 0
}

func toOKLab(sample models.ColorSample) (l, a, b float64) {
	rad := NormalizeHue(sample.H) * math.Pi / 180
	return sample.L, sample.C * math.Cos(rad), sample.C * math.Sin(rad)
}

// Distance is the Euclidean distance between a and b in OKLab. Converting
// hue and chroma to cartesian coordinates makes hue wrap-around take the
// shortest path, and the result is a true metric.
func Distance(a, b models.ColorSample) float64 {
	if !defined(a) || !defined(b) {
		return Undefined
	}
	l1, a1, b1 := toOKLab(a)
	l2, a2, b2 := toOKLab(b)
	return math.Sqrt(
		math.Pow(l1-l2, 2) +
			math.Pow(a1-a2, 2) +
			math.Pow(b1-b2, 2),
	)
}

// DistanceCIEDE2000 compares the two samples with CIEDE2000, scaled to the
// usual 0-100 range.
func DistanceCIEDE2000(a, b models.ColorSample) float64 {
	if !defined(a) || !defined(b) {
		return Undefined
	}
	if a == b {
		return 0
	}
	c1 := colorful.OkLch(a.L, a.C, NormalizeHue(a.H))
	c2 := colorful.OkLch(b.L, b.C, NormalizeHue(b.H))
	d := c1.DistanceCIEDE2000(c2) * 100
	if !finite(d) {
		return Undefined
	}
	return d
}
