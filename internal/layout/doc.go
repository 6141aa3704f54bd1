// Package layout rebuilds reading order from positioned OCR fragments.
//
// OCR engines return text spans in no particular order, each with a four-corner
// bounding box and a confidence score. This package turns such a set back into
// the lines of a nutrition-facts table, using geometry alone.
//
// # Coordinate System
//
// Coordinates follow the image convention used by the imaging package: (0,0) is
// the top-left corner, X grows rightward and Y grows downward. Bounding box
// corners are ordered top-left, top-right, bottom-right, bottom-left.
//
// # Algorithm
//
// Reconstruct runs four passes over the input:
//
//  1. Filter: fragments at or below MinConfidence (default 0.5) are dropped,
//     as are fragments with non-finite coordinates.
//  2. Sort: stable sort by the vertical midpoint (YMid).
//  3. Group: a single forward scan opens a new row whenever a fragment is more
//     than RowThreshold pixels (default 10) away from the comparison anchor.
//     Each closed row is stably sorted by XStart.
//  4. Format: a two-fragment row whose second text ends in a unit suffix
//     ("g", "mg", "%") becomes "label: value"; every other row is space-joined.
//
// # Row Anchor
//
// With AnchorLast (the default) the anchor is the most recently appended
// fragment, so a row can drift past the threshold across many fragments on a
// skewed photo. AnchorFirst compares against the row's first member instead
// and bounds each row's vertical span.
//
// # Thread Safety
//
// A Reconstructor holds only immutable options and can be shared between
// goroutines. Reconstruct never retains the caller's slice.
package layout
