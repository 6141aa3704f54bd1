// Package ocr turns label photos into positioned text fragments.
//
// Two engines implement the Engine interface:
//
//   - TesseractEngine runs a local Tesseract installation through
//     gosseract/v2. Fragments are words (default) or text lines.
//   - VisionEngine calls Google Cloud Vision document text detection and
//     emits one fragment per word with its four-vertex box.
//
// Both report confidence in [0,1] and box corners in image pixels, ordered
// top-left, top-right, bottom-right, bottom-left. Fragments are returned in
// whatever order the engine produced them.
//
// # Prerequisites
//
// Tesseract and its language data must be installed for the local engine:
//   - Ubuntu/Debian: apt-get install tesseract-ocr tesseract-ocr-eng
//   - macOS: brew install tesseract
//
// The Vision engine needs Google Cloud credentials, either inline JSON in
// GOOGLE_CREDENTIALS or a key file path in GOOGLE_APPLICATION_CREDENTIALS.
//
// # Error Handling
//
// Engine failures are returned as *OCRError values that match the package
// sentinels with errors.Is.
package ocr
