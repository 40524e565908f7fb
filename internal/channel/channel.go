// Package channel implements the messaging surfaces paginators render to.
package channel

import "context"

// Channel is any long-running messaging surface (slack, terminal, etc).
type Channel interface {
	// Start initializes the channel and begins receiving events.
	Start(ctx context.Context) error

	// Stop gracefully shuts down the channel.
	Stop() error

	// Name returns the channel identifier.
	Name() string
}
