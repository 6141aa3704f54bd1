package imaging

import (
	"errors"
	"image"
	"image/color"
	"testing"
)

func TestEnhance_UpscalesNarrowImages(t *testing.T) {
	img := createLabelImage(300, 200)

	out, err := Enhance(img, EnhanceOptions{})
	if err != nil {
		t.Fatalf("Enhance failed: %v", err)
	}

	b := out.Bounds()
	if b.Dx() != DefaultMinWidth {
		t.Errorf("width: got %d, want %d", b.Dx(), DefaultMinWidth)
	}
	if b.Dy() != 1000 {
		t.Errorf("height: got %d, want 1000 (aspect preserved)", b.Dy())
	}
}

func TestEnhance_KeepsWideImages(t *testing.T) {
	img := createLabelImage(1600, 100)

	out, err := Enhance(img, DefaultEnhanceOptions())
	if err != nil {
		t.Fatalf("Enhance failed: %v", err)
	}
	if out.Bounds().Dx() != 1600 || out.Bounds().Dy() != 100 {
		t.Errorf("dimensions: got %dx%d, want 1600x100", out.Bounds().Dx(), out.Bounds().Dy())
	}
}

func TestEnhance_Grayscale(t *testing.T) {
	img := createInMemoryImage(50, 50, color.RGBA{200, 40, 90, 255})

	out, err := Enhance(img, EnhanceOptions{MinWidth: 10})
	if err != nil {
		t.Fatalf("Enhance failed: %v", err)
	}

	r, g, b, _ := out.At(25, 25).RGBA()
	if r != g || g != b {
		t.Errorf("pixel not gray: r=%d g=%d b=%d", r, g, b)
	}
}

func TestEnhance_SkipGrayscale(t *testing.T) {
	img := createInMemoryImage(50, 50, color.RGBA{200, 40, 90, 255})

	out, err := Enhance(img, EnhanceOptions{MinWidth: 10, SkipGrayscale: true, Contrast: 1, Sharpness: 1})
	if err != nil {
		t.Fatalf("Enhance failed: %v", err)
	}

	r, g, _, _ := out.At(25, 25).RGBA()
	if r == g {
		t.Error("color channels should be kept")
	}
}

func TestEnhance_IncreasesContrast(t *testing.T) {
	// Two mid-tone halves pulled apart by the contrast boost.
	img := image.NewRGBA(image.Rect(0, 0, 100, 100))
	for y := 0; y < 100; y++ {
		for x := 0; x < 100; x++ {
			v := uint8(100)
			if x >= 50 {
				v = 160
			}
			img.Set(x, y, color.RGBA{v, v, v, 255})
		}
	}

	out, err := Enhance(img, EnhanceOptions{MinWidth: 10})
	if err != nil {
		t.Fatalf("Enhance failed: %v", err)
	}

	before := MeasureQuality(img)
	after := MeasureQuality(out)
	if after.LightnessStdDev <= before.LightnessStdDev {
		t.Errorf("contrast not increased: before %.2f, after %.2f", before.LightnessStdDev, after.LightnessStdDev)
	}
}

func TestEnhance_DoesNotModifyInput(t *testing.T) {
	img := createInMemoryImage(20, 20, color.RGBA{10, 200, 30, 255})
	want := img.RGBAAt(5, 5)

	if _, err := Enhance(img, EnhanceOptions{}); err != nil {
		t.Fatalf("Enhance failed: %v", err)
	}
	if got := img.RGBAAt(5, 5); got != want {
		t.Errorf("input modified: got %v, want %v", got, want)
	}
}

func TestEnhance_Empty(t *testing.T) {
	if _, err := Enhance(nil, EnhanceOptions{}); !errors.Is(err, ErrEmptyImage) {
		t.Errorf("nil image: got %v, want ErrEmptyImage", err)
	}
	if _, err := Enhance(image.NewRGBA(image.Rect(0, 0, 0, 0)), EnhanceOptions{}); !errors.Is(err, ErrEmptyImage) {
		t.Errorf("empty image: got %v, want ErrEmptyImage", err)
	}
}

func TestUpscaledSize(t *testing.T) {
	tests := []struct {
		name         string
		w, h, minW   int
		wantW, wantH int
	}{
		{"narrow", 750, 1000, 1500, 1500, 2000},
		{"exact", 1500, 900, 1500, 1500, 900},
		{"wide", 3000, 900, 1500, 3000, 900},
		{"default min", 500, 100, 0, 1500, 300},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h := UpscaledSize(tt.w, tt.h, tt.minW)
			if w != tt.wantW || h != tt.wantH {
				t.Errorf("got %dx%d, want %dx%d", w, h, tt.wantW, tt.wantH)
			}
		})
	}
}
