package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nethmidilekshakavi/tulutech-ecommerce-app/internal/cart"
)

func setupTestStore(t *testing.T) *SQLiteStore {
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "storefront.db"))
	require.NoError(t, err)

	require.NoError(t, store.RunMigrations("./migrations"))

	t.Cleanup(func() {
		store.Close()
	})
	return store
}

func TestSQLiteLoad_NoSnapshot(t *testing.T) {
	store := setupTestStore(t)

	items, err := store.Load(context.Background())
	assert.ErrorIs(t, err, cart.ErrNoSnapshot)
	assert.Nil(t, items)
}

func TestSQLiteSaveLoad_RoundTrip(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	saved := []cart.LineItem{
		{ProductID: 1, Title: "Mouse", UnitPrice: decimal.RequireFromString("10.00"), Thumbnail: "https://cdn.example/1.png", Quantity: 2},
		{ProductID: 2, Title: "Keyboard", UnitPrice: decimal.RequireFromString("25.50"), Quantity: 1},
	}
	require.NoError(t, store.Save(ctx, saved))

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 2)

	for i := range saved {
		assert.Equal(t, saved[i].ProductID, loaded[i].ProductID)
		assert.Equal(t, saved[i].Title, loaded[i].Title)
		assert.Equal(t, saved[i].Thumbnail, loaded[i].Thumbnail)
		assert.Equal(t, saved[i].Quantity, loaded[i].Quantity)
		assert.True(t, saved[i].UnitPrice.Equal(loaded[i].UnitPrice))
	}
}

func TestSQLiteSave_LastWriterWins(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	first := []cart.LineItem{{ProductID: 1, UnitPrice: decimal.RequireFromString("10.00"), Quantity: 1}}
	second := []cart.LineItem{{ProductID: 2, UnitPrice: decimal.RequireFromString("5.00"), Quantity: 3}}

	require.NoError(t, store.Save(ctx, first))
	require.NoError(t, store.Save(ctx, second))

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, int64(2), loaded[0].ProductID)
	assert.Equal(t, 3, loaded[0].Quantity)
}

func TestSQLiteSave_EmptyCart(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, []cart.LineItem{{ProductID: 1, UnitPrice: decimal.RequireFromString("1.00"), Quantity: 1}}))
	require.NoError(t, store.Save(ctx, []cart.LineItem{}))

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, loaded)
}
