package layout

import "math"

// Point is a 2D pixel coordinate.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// BoundingBox holds the four corners of a detected span, ordered
// top-left, top-right, bottom-right, bottom-left.
type BoundingBox [4]Point

// RectBox builds a BoundingBox from an axis-aligned rectangle.
func RectBox(x1, y1, x2, y2 float64) BoundingBox {
	return BoundingBox{
		{X: x1, Y: y1},
		{X: x2, Y: y1},
		{X: x2, Y: y2},
		{X: x1, Y: y2},
	}
}

// Fragment is one OCR-detected text span.
type Fragment struct {
	// Text is the recognized string content.
	Text string `json:"text"`

	// Confidence is the detection certainty (0.0 to 1.0).
	Confidence float64 `json:"confidence"`

	// Box is the span's bounding box in image coordinates.
	Box BoundingBox `json:"box"`
}

// YMid returns the vertical midpoint used for row grouping: the average of the
// top-left and bottom-right y-coordinates.
func (f Fragment) YMid() float64 {
	return (f.Box[0].Y + f.Box[2].Y) / 2
}

// XStart returns the x-coordinate of the top-left corner.
func (f Fragment) XStart() float64 {
	return f.Box[0].X
}

// finite reports whether every corner of the box is a real number.
func (f Fragment) finite() bool {
	for _, p := range f.Box {
		if math.IsNaN(p.X) || math.IsInf(p.X, 0) || math.IsNaN(p.Y) || math.IsInf(p.Y, 0) {
			return false
		}
	}
	return true
}

// Row is a run of fragments judged to lie on the same text line, in
// left-to-right order.
type Row []Fragment

// Texts returns the member texts in row order.
func (r Row) Texts() []string {
	out := make([]string, len(r))
	for i, f := range r {
		out[i] = f.Text
	}
	return out
}
