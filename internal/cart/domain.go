package cart

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidProduct  = errors.New("product id must be positive")
	ErrInvalidQuantity = errors.New("quantity must be positive")
	ErrInvalidPrice    = errors.New("unit price must not be negative")

	// ErrNoSnapshot is returned by SnapshotStore implementations when no
	// cart has ever been persisted (first application start).
	ErrNoSnapshot = errors.New("no cart snapshot")
)

// Product is the catalog reference handed to Add. Only the id is required
// to be valid; title and thumbnail are opaque display metadata.
type Product struct {
	ID        int64
	Title     string
	Thumbnail string
	Price     decimal.Decimal
}

// LineItem is one product entry in the cart. The JSON tags are the owned
// persisted format: a flat array of these records under a single storage
// key, no envelope, no version field.
type LineItem struct {
	ProductID int64           `json:"id"`
	Title     string          `json:"title"`
	UnitPrice decimal.Decimal `json:"price"`
	Thumbnail string          `json:"thumbnail"`
	Quantity  int             `json:"quantity"`
}

// SnapshotStore persists the full cart snapshot.
// Consumers define this interface, not the storage implementations.
type SnapshotStore interface {
	Load(ctx context.Context) ([]LineItem, error)
	Save(ctx context.Context, items []LineItem) error
}
