package sink

import "errors"

var (
	// ErrConnectionFailed is returned when the MQTT broker cannot be reached
	ErrConnectionFailed = errors.New("mqtt connection failed")

	// ErrPublishFailed wraps a failed or timed out publish
	ErrPublishFailed = errors.New("mqtt publish failed")
)
