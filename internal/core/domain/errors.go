package domain

import (
	"errors"
	"fmt"
)

// ErrCountryNotFound is returned by the boundary resolver for an unknown
// country name. Callers decide whether to fall back or surface it.
var ErrCountryNotFound = errors.New("country not found")

// ConfigError is a fatal startup misconfiguration, such as a missing
// service-account credential. It halts the process before serving.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string {
	return "config: " + e.Reason
}

// FetchError wraps a remote analytics service failure or malformed response.
type FetchError struct {
	Op  string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.Op, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// RenderError wraps a failure while assembling a map or chart.
type RenderError struct {
	Stage string
	Err   error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render %s: %v", e.Stage, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }

// IsFetchError reports whether err has a FetchError in its chain.
func IsFetchError(err error) bool {
	var fe *FetchError
	return errors.As(err, &fe)
}
