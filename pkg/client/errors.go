package client

import (
	"errors"
	"fmt"
)

// UpstreamError means the aggregator was unreachable or returned nothing recoverable
type UpstreamError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *UpstreamError) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.StatusCode == 0 {
		return fmt.Sprintf("upstream aggregator error: %s", msg)
	}
	return fmt.Sprintf("upstream aggregator error (status %d): %s", e.StatusCode, msg)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// IsUpstream returns true if err is (or wraps) an UpstreamError
func IsUpstream(err error) bool {
	var target *UpstreamError
	return errors.As(err, &target)
}
