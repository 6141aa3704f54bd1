package layout

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrMalformedFragment is returned when an OCR result entry does not have the
// expected [[corners], [text, confidence]] shape.
var ErrMalformedFragment = errors.New("malformed OCR fragment")

// ParseFragmentsJSON decodes an OCR result in the line-detector shape
//
//	[ [ [[x,y],[x,y],[x,y],[x,y]], ["text", confidence] ], ... ]
//
// into Fragments. An empty or null document yields an empty slice.
func ParseFragmentsJSON(data []byte) ([]Fragment, error) {
	var entries []json.RawMessage
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode OCR result: %w", err)
	}

	fragments := make([]Fragment, 0, len(entries))
	for i, raw := range entries {
		f, err := parseEntry(raw)
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		fragments = append(fragments, f)
	}
	return fragments, nil
}

func parseEntry(raw json.RawMessage) (Fragment, error) {
	var parts []json.RawMessage
	if err := json.Unmarshal(raw, &parts); err != nil || len(parts) != 2 {
		return Fragment{}, fmt.Errorf("%w: want [corners, [text, confidence]]", ErrMalformedFragment)
	}

	var corners [][]float64
	if err := json.Unmarshal(parts[0], &corners); err != nil {
		return Fragment{}, fmt.Errorf("%w: corners: %v", ErrMalformedFragment, err)
	}
	if len(corners) != 4 {
		return Fragment{}, fmt.Errorf("%w: got %d corners, want 4", ErrMalformedFragment, len(corners))
	}

	var box BoundingBox
	for i, c := range corners {
		if len(c) != 2 {
			return Fragment{}, fmt.Errorf("%w: corner %d has %d coordinates", ErrMalformedFragment, i, len(c))
		}
		box[i] = Point{X: c[0], Y: c[1]}
	}

	var rec []json.RawMessage
	if err := json.Unmarshal(parts[1], &rec); err != nil || len(rec) != 2 {
		return Fragment{}, fmt.Errorf("%w: want [text, confidence]", ErrMalformedFragment)
	}

	var f Fragment
	if err := json.Unmarshal(rec[0], &f.Text); err != nil {
		return Fragment{}, fmt.Errorf("%w: text: %v", ErrMalformedFragment, err)
	}
	if err := json.Unmarshal(rec[1], &f.Confidence); err != nil {
		return Fragment{}, fmt.Errorf("%w: confidence: %v", ErrMalformedFragment, err)
	}
	f.Box = box

	return f, nil
}
