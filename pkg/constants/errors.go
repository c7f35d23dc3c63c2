package constants

import "errors"

// Errors
var (
	ErrInvalidResponse = errors.New("invalid QuarryDB response")
	ErrTimeout         = errors.New("timeout")
	ErrNoBaseURL       = errors.New("base url not set")
	ErrNoMarshaler     = errors.New("marshaler is not set")
	ErrNoUnmarshaler   = errors.New("unmarshaler is not set")
	ErrClosed          = errors.New("connection closed")
)
