package broadcaster

import "context"

// Event is one envelope addressed to every live subscriber of an organization.
type Event struct {
	OrgID   string
	Kind    string
	Payload any
}

// Broadcaster pushes org-scoped events to real-time transports.
type Broadcaster interface {
	Broadcast(ctx context.Context, event Event) error
}

// Nop broadcaster discards events.
type Nop struct{}

var _ Broadcaster = (*Nop)(nil)

func (n *Nop) Broadcast(ctx context.Context, event Event) error { return nil }
