package slides

import "fmt"

// ConfigurationError reports invalid settings or masks. It is returned
// before any analysis work happens; a run never starts with a partially
// applied configuration.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "invalid configuration: " + e.Reason
}

func configErrorf(format string, args ...any) error {
	return &ConfigurationError{Reason: fmt.Sprintf(format, args...)}
}

// DecodeError wraps a frame read failure from the FrameSource. Segment
// returns it together with the slides that were already confirmed.
type DecodeError struct {
	Frame uint64
	Err   error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("frame %d: read failed: %v", e.Frame, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }
