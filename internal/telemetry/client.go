// Package telemetry reads live robot values for the dashboard: a client for
// the robot's key/value store, the rules that turn structured values into
// display strings, and the hierarchical data tree built from their keys.
package telemetry

import (
	"context"
	"errors"
	"time"
)

// ErrNotConnected is returned when the robot cannot be reached.
var ErrNotConnected = errors.New("not connected to the robot")

// Client is the communication client the dashboard polls.
type Client interface {
	// Keys lists every key currently published.
	Keys(ctx context.Context) ([]string, error)
	// Raw returns the decoded value stored at key, or nil when it is absent.
	Raw(ctx context.Context, key string) (map[string]any, error)
	// Latency measures one round trip to the server.
	Latency(ctx context.Context) (time.Duration, error)
	// Connected reports the outcome of the most recent exchange.
	Connected() bool
	// Reconfigure points the client at a new server.
	Reconfigure(host string, port int)
	Close() error
}
