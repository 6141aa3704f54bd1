package analysis

import (
	"errors"
	"fmt"
)

var (
	// ErrModelLoading is returned when the inference API answers 503 while
	// the model is still being loaded. Retried after the policy's
	// LoadingDelay.
	ErrModelLoading = errors.New("model is loading")

	// ErrEmptyResponse is returned when a 2xx response lacks the expected
	// labels, scores or generated text.
	ErrEmptyResponse = errors.New("empty or malformed model response")
)

// maxErrorBody bounds the response body kept in a StatusError.
const maxErrorBody = 512

// StatusError is returned for non-2xx responses other than model loading.
type StatusError struct {
	Model      string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("analysis: model %s returned status %d", e.Model, e.StatusCode)
	}
	return fmt.Sprintf("analysis: model %s returned status %d: %s", e.Model, e.StatusCode, e.Body)
}

func newStatusError(model string, status int, body []byte) *StatusError {
	return &StatusError{Model: model, StatusCode: status, Body: truncate(string(body), maxErrorBody)}
}

// IsRemoteRefusal reports whether err means the service answered but
// refused or garbled the request, as opposed to a transport failure.
func IsRemoteRefusal(err error) bool {
	var statusErr *StatusError
	return errors.As(err, &statusErr) || errors.Is(err, ErrModelLoading) || errors.Is(err, ErrEmptyResponse)
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
