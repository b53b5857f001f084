package session

import (
	"context"
	"time"

	"github.com/matzehuels/taskflow/pkg/observability"
)

// DefaultTTL is how long an idle session is kept by stores that expire.
const DefaultTTL = 24 * time.Hour

// Store persists session snapshots.
type Store interface {
	// Get retrieves a snapshot by session ID.
	// Returns nil, nil if the session doesn't exist or has expired.
	Get(ctx context.Context, id string) (*Snapshot, error)

	// Set stores a snapshot, replacing any previous one with the same ID.
	Set(ctx context.Context, snap *Snapshot) error

	// Delete removes a snapshot. Deleting a missing session is not an error.
	Delete(ctx context.Context, id string) error

	// Close releases backend resources.
	Close() error
}

// expiry returns the expiry stamp for a write now, or zero when ttl is not
// positive.
func expiry(ttl time.Duration) time.Time {
	if ttl <= 0 {
		return time.Time{}
	}
	return time.Now().UTC().Add(ttl)
}

// Instrument wraps a store so every Get and Set reports to the
// observability store hooks under the given backend name.
func Instrument(s Store, backend string) Store {
	return &instrumented{Store: s, backend: backend}
}

type instrumented struct {
	Store
	backend string
}

func (i *instrumented) Get(ctx context.Context, id string) (*Snapshot, error) {
	start := time.Now()
	snap, err := i.Store.Get(ctx, id)
	observability.Store().OnLoad(ctx, i.backend, id, time.Since(start), err)
	return snap, err
}

func (i *instrumented) Set(ctx context.Context, snap *Snapshot) error {
	start := time.Now()
	err := i.Store.Set(ctx, snap)
	observability.Store().OnSave(ctx, i.backend, snap.ID, time.Since(start), err)
	return err
}
