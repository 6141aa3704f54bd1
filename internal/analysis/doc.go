// Package analysis turns cleaned nutrition label text into a health verdict
// using remote inference services.
//
// An Analyzer runs a fixed sequence against a zero-shot Classifier and a
// text Generator:
//
//  1. classify the label text as healthy or unhealthy
//  2. ask the generator for three bullet points explaining the verdict
//  3. ask the generator for a health impact line and a consumption
//     frequency line
//  4. reclassify the impact and frequency lines; the result replaces the
//     first verdict
//
// Steps 1 and 2 must succeed; step 3 and 4 failures keep defaults. The
// whole sequence is retried under a RetryPolicy. When every attempt fails
// Analyze still returns a Report, one of two fixed fallbacks, so callers
// always have something to show.
//
// HuggingFaceClient implements both interfaces against the Hugging Face
// inference API. OpenAIGenerator is an alternative Generator backed by any
// OpenAI compatible chat completions endpoint.
package analysis
