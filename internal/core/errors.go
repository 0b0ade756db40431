package core

import (
	"errors"
	"fmt"
)

// Error codes carried by Event.Err so viewers can switch on failure class
// without string matching.
const (
	ErrCodeStoreUnavailable     = "store_unavailable"
	ErrCodeStoreWrite           = "store_write_failed"
	ErrCodeLiveFeedDisconnected = "live_feed_disconnected"
)

var (
	ErrStoreUnavailable     = errors.New("store unavailable")
	ErrStoreWrite           = errors.New("store write failed")
	ErrLiveFeedDisconnected = errors.New("live feed disconnected")
)

// CoreError pairs a stable code with the failure it classifies. The chain
// wraps the class sentinel, so callers can match with errors.Is or unwrap
// to *CoreError with errors.As and switch on Code.
type CoreError struct {
	Code string
	Err  error
}

func newCoreError(code string, sentinel, cause error) *CoreError {
	err := sentinel
	if cause != nil {
		err = fmt.Errorf("%w: %v", sentinel, cause)
	}
	return &CoreError{Code: code, Err: err}
}

func (e *CoreError) Error() string {
	return e.Err.Error()
}

func (e *CoreError) Unwrap() error {
	return e.Err
}
