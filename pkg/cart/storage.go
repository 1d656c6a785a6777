package cart

import (
	"context"

	"ikirezi/pkg/domain"
)

// Storage persists the cart as a single JSON document under a fixed key.
// Load reports ok=false when nothing has been persisted yet. Implementations
// must be safe for concurrent use.
type Storage interface {
	Load(ctx context.Context) (data []byte, ok bool, err error)
	Save(ctx context.Context, data []byte) error
	Clear(ctx context.Context) error
}

// persistedCart is the durable document layout. Only items are persisted;
// totals are recomputed on every load.
type persistedCart struct {
	Items []domain.LineItem `json:"items"`
}
