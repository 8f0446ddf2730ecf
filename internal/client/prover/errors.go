package prover

import "errors"

var (
	ErrUnavailable   = errors.New("server unavailable")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrNotRegistered = errors.New("user not registered")
	ErrRejected      = errors.New("request rejected")
)
