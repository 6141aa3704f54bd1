package imaging

import (
	"image"
	"image/color"
	"math"
	"testing"
)

func TestMeasureQuality_Uniform(t *testing.T) {
	q := MeasureQuality(createInMemoryImage(40, 40, color.White))

	if math.Abs(q.MeanLightness-100) > 0.5 {
		t.Errorf("MeanLightness: got %.2f, want ~100", q.MeanLightness)
	}
	if q.LightnessStdDev > 0.01 {
		t.Errorf("LightnessStdDev: got %.4f, want 0", q.LightnessStdDev)
	}
	if !q.LowContrast {
		t.Error("uniform image should be low contrast")
	}
	if q.Samples != 1600 {
		t.Errorf("Samples: got %d, want 1600", q.Samples)
	}
}

func TestMeasureQuality_BlackAndWhite(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 20, 20))
	for y := 0; y < 20; y++ {
		for x := 0; x < 20; x++ {
			c := color.Black
			if x < 10 {
				c = color.White
			}
			img.Set(x, y, c)
		}
	}

	q := MeasureQuality(img)
	if math.Abs(q.MeanLightness-50) > 0.5 {
		t.Errorf("MeanLightness: got %.2f, want ~50", q.MeanLightness)
	}
	if math.Abs(q.LightnessStdDev-50) > 0.5 {
		t.Errorf("LightnessStdDev: got %.2f, want ~50", q.LightnessStdDev)
	}
	if q.LowContrast {
		t.Error("black and white image should not be low contrast")
	}
}

func TestMeasureQuality_Transparent(t *testing.T) {
	q := MeasureQuality(image.NewNRGBA(image.Rect(0, 0, 10, 10)))
	if q.Samples != 0 {
		t.Errorf("transparent pixels should be skipped, got %d samples", q.Samples)
	}
}

func TestMeasureQuality_SamplesLargeImages(t *testing.T) {
	q := MeasureQuality(createInMemoryImage(1000, 1000, color.Gray{Y: 128}))
	if q.Samples > maxQualitySamples {
		t.Errorf("Samples: got %d, want at most %d", q.Samples, maxQualitySamples)
	}
	if q.Samples == 0 {
		t.Error("no samples measured")
	}
}

func TestMeasureQuality_Nil(t *testing.T) {
	if q := MeasureQuality(nil); q != (Quality{}) {
		t.Errorf("nil image: got %+v", q)
	}
}
