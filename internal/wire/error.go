package wire

import "fmt"

// StatusError reports a non-2xx response. Body is preserved in full so
// callers can extract the provider's error code; Error renders a bounded
// single-line message for display.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	body := e.Body
	if len(body) > 512 {
		body = body[:512] + "..."
	}
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, body)
}
