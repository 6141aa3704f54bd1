// Package lexicon corrects systematic OCR misreads in nutrition-label text.
//
// Normalization is a best-effort pass: it collapses intra-line whitespace,
// applies an ordered table of literal substring replacements, and logs a
// warning when the result does not look like a nutrition label. It never
// fails; on any internal fault the input is returned unchanged.
//
// # Correction Tables
//
// A Table is an immutable ordered list of Rules. Rules are applied over the
// whole text, each one globally, in declared order, so a later rule sees the
// output of earlier ones. DefaultTable returns the built-in English table; the
// bare "q" -> "g" rule in it fires on every lowercase q, including inside
// ordinary words.
package lexicon
