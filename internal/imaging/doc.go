// Package imaging loads label photos and prepares them for text recognition.
//
// The preprocessing pipeline mirrors what works well for printed nutrition
// panels shot on a phone: convert to grayscale, boost contrast by a factor of
// 2.5, sharpen by a factor of 2.0, and upscale so the image is at least 1500
// pixels wide. Narrow crops of small print recognize far better after the
// upscale.
//
// # Coordinate System
//
// Pixel coordinates are 0-based with (0,0) at the top-left corner. X grows
// rightward and Y grows downward. For regions, (X1,Y1) is inclusive and
// (X2,Y2) is exclusive. The same convention is used by the OCR bounding
// boxes handed to the layout package.
//
// # Thread Safety
//
// ImageCache is safe for concurrent use. The other functions are stateless
// and never modify their input image.
//
// # Quality
//
// MeasureQuality reports the mean and spread of CIE L* lightness. A small
// spread usually means a washed-out or badly lit photo; callers log it as a
// diagnostic and continue.
package imaging
