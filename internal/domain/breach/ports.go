package breach

import "context"

// Directory is the account-breach directory.
type Directory interface {
	// BreachedAccount returns every breach the account appears in. An unknown
	// account yields an empty slice, not an error.
	BreachedAccount(ctx context.Context, account string) ([]Breach, error)

	// Breach returns a single breach by name or ErrNotFound.
	Breach(ctx context.Context, name string) (Breach, error)
}

// CatalogStore caches public breach records keyed by name. Get returns
// ErrNotFound on a miss.
type CatalogStore interface {
	Get(ctx context.Context, name string) (CatalogEntry, error)
	Upsert(ctx context.Context, entries ...CatalogEntry) error
}
