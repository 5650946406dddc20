package mlclient

import "fmt"

// UpstreamError reports a failed call to the ML service: a transport
// error, a non-2xx status, or a body that does not decode or validate.
type UpstreamError struct {
	Endpoint   string
	StatusCode int
	Message    string
	Cause      error
}

func (e *UpstreamError) Error() string {
	msg := fmt.Sprintf("ml service %s: %s", e.Endpoint, e.Message)
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("ml service %s: status %d: %s", e.Endpoint, e.StatusCode, e.Message)
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *UpstreamError) Unwrap() error {
	return e.Cause
}
