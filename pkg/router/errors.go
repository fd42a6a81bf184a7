package router

import "errors"

// ErrInvalidConfig is returned for routing configurations that cannot be applied
var ErrInvalidConfig = errors.New("invalid routing config")
