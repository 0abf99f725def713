package server

import "errors"

var (
	ErrEmptyMessage     = errors.New("server: empty message")
	ErrMissingComponent = errors.New("server: component is required")
)
