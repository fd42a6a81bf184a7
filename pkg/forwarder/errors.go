package forwarder

import (
	"errors"

	"github.com/james-see/midiunion/pkg/device"
)

var (
	// ErrConfiguration is returned by Start when devices are missing or the routing config is invalid
	ErrConfiguration = device.ErrConfiguration

	// ErrRunning is returned by Start while a session is already running
	ErrRunning = errors.New("forwarder already running")
)
