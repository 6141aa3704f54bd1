package imaging

import (
	"image"

	"github.com/anthonynsimon/bild/adjust"
	"github.com/anthonynsimon/bild/effect"
	"github.com/disintegration/imaging"
)

const (
	// DefaultContrast is the contrast enhancement factor. 1.0 leaves the
	// image unchanged.
	DefaultContrast = 2.5

	// DefaultSharpness is the sharpness enhancement factor. 1.0 leaves the
	// image unchanged.
	DefaultSharpness = 2.0

	// DefaultMinWidth is the width below which images are upscaled.
	DefaultMinWidth = 1500

	// unsharpRadius is the blur radius used for sharpening, in pixels.
	unsharpRadius = 1.0
)

// EnhanceOptions controls the preprocessing applied before OCR.
// Zero fields take the package defaults.
type EnhanceOptions struct {
	Contrast  float64
	Sharpness float64
	MinWidth  int

	// SkipGrayscale keeps the color channels. Labels are converted to
	// grayscale by default.
	SkipGrayscale bool
}

// DefaultEnhanceOptions returns the preprocessing used for label photos.
func DefaultEnhanceOptions() EnhanceOptions {
	return EnhanceOptions{
		Contrast:  DefaultContrast,
		Sharpness: DefaultSharpness,
		MinWidth:  DefaultMinWidth,
	}
}

func (o EnhanceOptions) withDefaults() EnhanceOptions {
	if o.Contrast == 0 {
		o.Contrast = DefaultContrast
	}
	if o.Sharpness == 0 {
		o.Sharpness = DefaultSharpness
	}
	if o.MinWidth == 0 {
		o.MinWidth = DefaultMinWidth
	}
	return o
}

// Enhance prepares a label photo for text recognition: grayscale, contrast
// boost, sharpening, then a Lanczos upscale so the width is at least
// MinWidth. Aspect ratio is preserved. Images already wide enough are not
// resized.
func Enhance(img image.Image, opts EnhanceOptions) (image.Image, error) {
	if img == nil || img.Bounds().Empty() {
		return nil, ErrEmptyImage
	}
	opts = opts.withDefaults()

	var out image.Image = img
	if !opts.SkipGrayscale {
		out = imaging.Grayscale(out)
	}

	// bild expresses contrast as a delta from the identity factor.
	if opts.Contrast != 1 {
		out = adjust.Contrast(out, opts.Contrast-1)
	}
	if opts.Sharpness > 1 {
		out = effect.UnsharpMask(out, unsharpRadius, opts.Sharpness-1)
	}

	w := out.Bounds().Dx()
	if w < opts.MinWidth {
		out = imaging.Resize(out, opts.MinWidth, 0, imaging.Lanczos)
	}

	return out, nil
}

// UpscaledSize returns the dimensions Enhance would produce for an image of
// the given size.
func UpscaledSize(width, height, minWidth int) (int, int) {
	if minWidth <= 0 {
		minWidth = DefaultMinWidth
	}
	if width <= 0 || width >= minWidth {
		return width, height
	}
	ratio := float64(minWidth) / float64(width)
	return minWidth, int(float64(height)*ratio + 0.5)
}
