package business

import "context"

// Repository provides access to the business aggregate. Update enforces the
// per-business serialization point: it fails with a version conflict when
// the snapshot is stale, so a patch computed against an old snapshot is
// never silently applied.
type Repository interface {
	Get(ctx context.Context, id string) (*Business, error)
	List(ctx context.Context) ([]*Business, error)
	SearchNames(ctx context.Context, query string) ([]*Business, error)
	Update(ctx context.Context, b *Business) error
}
