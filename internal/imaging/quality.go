package imaging

import (
	"image"
	"math"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// LowContrastStdDev is the L* standard deviation below which a photo is
// reported as low contrast.
const LowContrastStdDev = 12.0

// maxQualitySamples bounds the number of pixels inspected by MeasureQuality.
const maxQualitySamples = 250_000

// Quality summarizes the perceptual lightness of an image in CIE L*a*b*.
type Quality struct {
	// MeanLightness is the average L* value, 0 (black) to 100 (white).
	MeanLightness float64 `json:"mean_lightness"`

	// LightnessStdDev is the standard deviation of L*.
	LightnessStdDev float64 `json:"lightness_stddev"`

	// LowContrast is true when LightnessStdDev is below LowContrastStdDev.
	LowContrast bool `json:"low_contrast"`

	// Samples is the number of pixels measured.
	Samples int `json:"samples"`
}

// MeasureQuality computes lightness statistics for img. Large images are
// sampled on a regular grid.
func MeasureQuality(img image.Image) Quality {
	if img == nil || img.Bounds().Empty() {
		return Quality{}
	}

	b := img.Bounds()
	step := 1
	if n := b.Dx() * b.Dy(); n > maxQualitySamples {
		step = int(math.Ceil(math.Sqrt(float64(n) / maxQualitySamples)))
	}

	var sum, sumSq float64
	var count int
	for y := b.Min.Y; y < b.Max.Y; y += step {
		for x := b.Min.X; x < b.Max.X; x += step {
			c, ok := colorful.MakeColor(img.At(x, y))
			if !ok {
				// Fully transparent pixels carry no lightness.
				continue
			}
			l, _, _ := c.Lab()
			l *= 100
			sum += l
			sumSq += l * l
			count++
		}
	}

	if count == 0 {
		return Quality{}
	}

	mean := sum / float64(count)
	variance := sumSq/float64(count) - mean*mean
	if variance < 0 {
		variance = 0
	}
	stddev := math.Sqrt(variance)

	return Quality{
		MeanLightness:   mean,
		LightnessStdDev: stddev,
		LowContrast:     stddev < LowContrastStdDev,
		Samples:         count,
	}
}
