package rpc

import (
	"errors"
	"fmt"
)

// Sentinel errors mapped from the service's HTTP status.
var (
	ErrNotFound          = errors.New("rpc function not found")
	ErrUnauthorized      = errors.New("rpc unauthorized")
	ErrRateLimited       = errors.New("rpc rate limited")
	ErrBadRequest        = errors.New("rpc bad request")
	ErrServer            = errors.New("rpc server error")
	ErrMalformedResponse = errors.New("malformed rpc response")
)

// Error describes a failed call. Error() yields the service's own message when
// it sent one, so consumers can surface it unchanged.
type Error struct {
	Op       string
	Function string
	Status   int
	Message  string
	Err      error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s %s failed", e.Op, e.Function)
}

func (e *Error) Unwrap() error { return e.Err }

// apiError is the PostgREST error body.
type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details"`
	Hint    string `json:"hint"`
}
