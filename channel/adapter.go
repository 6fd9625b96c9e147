package channel

import (
	"context"
	"errors"
)

// ErrNotConfigured is returned by a Resolver when an organization has no
// active transport for the requested channel. Callers treat it as a
// configuration gap, not a delivery failure.
var ErrNotConfigured = errors.New("channel not configured for organization")

// Message is one outbound message, already personalized.
type Message struct {
	To      string
	Body    string
	Subject string // email only
}

// Adapter sends a message over a single transport (SMS gateway, WhatsApp
// gateway, SMTP). Implementations own their own timeouts and credentials;
// any non-nil error is a terminal delivery failure for the caller.
type Adapter interface {
	Send(ctx context.Context, msg Message) error
}

// Resolver looks up the adapter configured for an organization and channel.
type Resolver interface {
	Resolve(ctx context.Context, organizationID uint, channel string) (Adapter, error)
}
