package ocr

import (
	"errors"
	"fmt"
)

// Common OCR errors.
var (
	// ErrNoImage is returned when Recognize is called without image data.
	ErrNoImage = errors.New("no image supplied")

	// ErrOCRFailed is returned when the recognition engine fails to process
	// an image.
	ErrOCRFailed = errors.New("OCR processing failed")

	// ErrMissingCredentials is returned when the Vision engine is selected
	// but no Google Cloud credentials can be found.
	ErrMissingCredentials = errors.New("missing Google Cloud credentials: set GOOGLE_APPLICATION_CREDENTIALS or GOOGLE_CREDENTIALS")

	// ErrUnknownEngine is returned by New for an unrecognized engine name.
	ErrUnknownEngine = errors.New("unknown OCR engine")
)

// OCRError wraps an engine failure with the operation that produced it.
type OCRError struct {
	// Op is the operation that failed, e.g. "Tesseract.Recognize".
	Op string

	// Err is the underlying error.
	Err error

	// Details provides additional context about the failure.
	Details string
}

func (e *OCRError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("ocr: %s failed: %s: %v", e.Op, e.Details, e.Err)
	}
	return fmt.Sprintf("ocr: %s failed: %v", e.Op, e.Err)
}

func (e *OCRError) Unwrap() error {
	return e.Err
}

func (e *OCRError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// WrapOCRError wraps err as an *OCRError. Errors that already are an
// *OCRError are returned unchanged; nil stays nil.
func WrapOCRError(op string, err error, details string) error {
	if err == nil {
		return nil
	}

	var ocrErr *OCRError
	if errors.As(err, &ocrErr) {
		return err
	}

	return &OCRError{
		Op:      op,
		Err:     err,
		Details: details,
	}
}
