package pushflow

import (
	"context"

	"github.com/kayac/pushflow/apns"
)

// Client sends a single notification to a gateway. *apns.Client satisfies it.
// Send returns either a non-nil Result or a non-nil error.
type Client interface {
	Send(context.Context, *apns.Payload, apns.Address) (*apns.Result, error)
	Close() error
}
