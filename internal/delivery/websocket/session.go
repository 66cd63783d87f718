package websocket

import (
	"context"

	"talkwire/pkg/pool"
)

// sessionState tracks the connection lifecycle. A session starts in
// connecting, becomes active once its identity is accepted and its topic
// subscription is in place, and is closed for good on transport disconnect
// or rejected identity.
type sessionState int

const (
	stateConnecting sessionState = iota
	stateActive
	stateClosed
)

// integritySource is any cache manager that can produce its current hash,
// recomputing from the message store on a miss.
type integritySource interface {
	GetHash(ctx context.Context) (int64, error)
}

// pooledHash reads a hash through the bounded pool. A cold cache falls back
// to the message store, so these reads never run on the connection loop
// directly.
func pooledHash(ctx context.Context, workers *pool.Pool, source integritySource) (int64, error) {
	var hash int64
	err := workers.Do(ctx, func(ctx context.Context) error {
		var err error
		hash, err = source.GetHash(ctx)
		return err
	})
	return hash, err
}

func (s sessionState) String() string {
	switch s {
	case stateConnecting:
		return "connecting"
	case stateActive:
		return "active"
	case stateClosed:
		return "closed"
	}
	return "unknown"
}
