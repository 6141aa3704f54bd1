// Package labeler wires the label pipeline together: load a photo,
// optionally crop it to the nutrition panel, enhance it, run OCR,
// reconstruct table rows, normalize OCR errors and hand the text to the
// analysis step.
//
// A Service holds the long-lived collaborators (image cache, OCR engine,
// reconstructor, normalizer, analyzer) and is safe for concurrent use.
package labeler
