package device

import "errors"

var (
	// ErrDeviceUnavailable is returned when an input or output cannot be opened
	ErrDeviceUnavailable = errors.New("device unavailable")

	// ErrTransportIO is returned when sending or receiving fails mid-session
	ErrTransportIO = errors.New("transport i/o error")

	// ErrConfiguration is returned when a session is requested without both devices
	ErrConfiguration = errors.New("configuration error")
)
