package resolver

import "errors"

var (
	// ErrUnknownScope indicates a host passed an activation scope other than local or network.
	ErrUnknownScope = errors.New("unknown activation scope")
)
