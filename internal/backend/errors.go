package backend

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrRequestFailed marks a response outside the 2xx range.
	ErrRequestFailed = errors.New("request failed")

	// ErrTransportOrParse marks an unreachable backend or a body that is not JobData.
	ErrTransportOrParse = errors.New("transport or parse failed")
)

type RequestFailedError struct {
	StatusCode int
	URL        string
}

func (e *RequestFailedError) Error() string {
	return fmt.Sprintf("request failed: GET %s: status %d %s", e.URL, e.StatusCode, http.StatusText(e.StatusCode))
}

func (e *RequestFailedError) Is(target error) bool {
	return target == ErrRequestFailed
}

// Outcome names the kind of settlement for logs and the fetch log.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrRequestFailed):
		return "request_failed"
	case errors.Is(err, ErrTransportOrParse):
		return "transport_or_parse_failed"
	default:
		return "error"
	}
}

// StatusCode returns the backend status carried by err, or 0.
func StatusCode(err error) int {
	var rf *RequestFailedError
	if errors.As(err, &rf) {
		return rf.StatusCode
	}
	return 0
}
