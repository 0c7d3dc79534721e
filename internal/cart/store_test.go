package cart

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockSnapshotStore struct {
	m       sync.Mutex
	stored  []LineItem
	loadErr error
	saveErr error
	saves   int

	// when set, Load blocks until the channel is closed
	loadGate chan struct{}
}

func (m *mockSnapshotStore) Load(ctx context.Context) ([]LineItem, error) {
	if m.loadGate != nil {
		select {
		case <-m.loadGate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	m.m.Lock()
	defer m.m.Unlock()
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	if m.stored == nil {
		return nil, ErrNoSnapshot
	}
	return m.stored, nil
}

func (m *mockSnapshotStore) Save(_ context.Context, items []LineItem) error {
	m.m.Lock()
	defer m.m.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.stored = items
	m.saves++
	return nil
}

func (m *mockSnapshotStore) lastSaved() []LineItem {
	m.m.Lock()
	defer m.m.Unlock()
	return m.stored
}

func price(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestAdd_AccumulatesQuantityAndKeepsFirstPrice(t *testing.T) {
	store := NewStore(&mockSnapshotStore{})
	defer store.Close()

	require.NoError(t, store.Add(Product{ID: 1, Title: "Mouse", Price: price("10.00")}, 2))
	require.NoError(t, store.Add(Product{ID: 1, Title: "Mouse", Price: price("12.50")}, 3))

	items := store.Items()
	require.Len(t, items, 1)
	assert.Equal(t, int64(1), items[0].ProductID)
	assert.Equal(t, 5, items[0].Quantity)
	assert.True(t, items[0].UnitPrice.Equal(price("10.00")), "first-seen price must win")
}

func TestAdd_KeepsItemsUniqueByProductID(t *testing.T) {
	store := NewStore(&mockSnapshotStore{})
	defer store.Close()

	for i := 0; i < 4; i++ {
		require.NoError(t, store.Add(Product{ID: 7, Price: price("1.00")}, 1))
		require.NoError(t, store.Add(Product{ID: 8, Price: price("2.00")}, 1))
	}

	items := store.Items()
	require.Len(t, items, 2)
	assert.Equal(t, int64(7), items[0].ProductID)
	assert.Equal(t, 4, items[0].Quantity)
	assert.Equal(t, int64(8), items[1].ProductID)
	assert.Equal(t, 4, items[1].Quantity)
}

func TestAdd_InvalidInput(t *testing.T) {
	store := NewStore(&mockSnapshotStore{})
	defer store.Close()

	assert.ErrorIs(t, store.Add(Product{ID: 0, Price: price("1.00")}, 1), ErrInvalidProduct)
	assert.ErrorIs(t, store.Add(Product{ID: -3, Price: price("1.00")}, 1), ErrInvalidProduct)
	assert.ErrorIs(t, store.Add(Product{ID: 1, Price: price("1.00")}, 0), ErrInvalidQuantity)
	assert.ErrorIs(t, store.Add(Product{ID: 1, Price: price("-0.01")}, 1), ErrInvalidPrice)

	assert.Empty(t, store.Items(), "rejected input must not mutate the cart")
}

func TestSetQuantity_ReplacesQuantity(t *testing.T) {
	store := NewStore(&mockSnapshotStore{})
	defer store.Close()

	require.NoError(t, store.Add(Product{ID: 1, Price: price("10.00")}, 2))
	store.SetQuantity(1, 7)

	items := store.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 7, items[0].Quantity)
}

func TestSetQuantity_ZeroRemovesItem(t *testing.T) {
	store := NewStore(&mockSnapshotStore{})
	defer store.Close()

	require.NoError(t, store.Add(Product{ID: 1, Price: price("10.00")}, 2))
	store.SetQuantity(1, 0)
	assert.Empty(t, store.Items())

	require.NoError(t, store.Add(Product{ID: 1, Price: price("10.00")}, 2))
	store.SetQuantity(1, -4)
	assert.Empty(t, store.Items())
}

func TestSetQuantity_MissingItemIsNoOp(t *testing.T) {
	store := NewStore(&mockSnapshotStore{})
	defer store.Close()

	require.NoError(t, store.Add(Product{ID: 1, Price: price("10.00")}, 1))
	store.SetQuantity(42, 5)

	items := store.Items()
	require.Len(t, items, 1)
	assert.Equal(t, int64(1), items[0].ProductID)
}

func TestRemove_MissingItemIsNoOp(t *testing.T) {
	store := NewStore(&mockSnapshotStore{})
	defer store.Close()

	require.NoError(t, store.Add(Product{ID: 1, Price: price("10.00")}, 1))
	store.Remove(99)

	assert.Len(t, store.Items(), 1)
}

func TestClear_EmptiesCart(t *testing.T) {
	store := NewStore(&mockSnapshotStore{})
	defer store.Close()

	require.NoError(t, store.Add(Product{ID: 1, Price: price("10.00")}, 1))
	require.NoError(t, store.Add(Product{ID: 2, Price: price("5.00")}, 3))
	store.Clear()

	assert.Empty(t, store.Items())
}

func TestStore_MutationSequence(t *testing.T) {
	store := NewStore(&mockSnapshotStore{})
	defer store.Close()

	require.NoError(t, store.Add(Product{ID: 1, Price: price("10.00")}, 2))
	require.NoError(t, store.Add(Product{ID: 2, Price: price("5.00")}, 1))
	store.SetQuantity(1, 5)
	store.Remove(2)

	items := store.Items()
	require.Len(t, items, 1)
	assert.Equal(t, int64(1), items[0].ProductID)
	assert.Equal(t, 5, items[0].Quantity)
	assert.True(t, items[0].UnitPrice.Equal(price("10.00")))
}

func TestLoad_RestoresPersistedSnapshot(t *testing.T) {
	snapshots := &mockSnapshotStore{
		stored: []LineItem{
			{ProductID: 1, Title: "Mouse", UnitPrice: price("10.00"), Quantity: 2},
			{ProductID: 2, Title: "Keyboard", UnitPrice: price("25.00"), Quantity: 1},
		},
	}

	store := NewStore(snapshots)
	defer store.Close()

	assert.Eventually(t, func() bool {
		return len(store.Items()) == 2
	}, time.Second, 5*time.Millisecond, "loaded snapshot should appear in memory")

	items := store.Items()
	assert.Equal(t, int64(1), items[0].ProductID)
	assert.Equal(t, 2, items[0].Quantity)
	assert.Equal(t, int64(2), items[1].ProductID)
}

func TestLoad_MutationBeforeLoadWins(t *testing.T) {
	gate := make(chan struct{})
	snapshots := &mockSnapshotStore{
		stored:   []LineItem{{ProductID: 9, UnitPrice: price("99.00"), Quantity: 9}},
		loadGate: gate,
	}

	store := NewStore(snapshots)
	defer store.Close()

	require.NoError(t, store.Add(Product{ID: 1, Price: price("10.00")}, 1))
	close(gate)

	// Give the loader a chance to run; the mutated cart must survive it.
	time.Sleep(50 * time.Millisecond)
	items := store.Items()
	require.Len(t, items, 1)
	assert.Equal(t, int64(1), items[0].ProductID)
}

func TestLoad_SanitizesCorruptSnapshot(t *testing.T) {
	snapshots := &mockSnapshotStore{
		stored: []LineItem{
			{ProductID: 1, UnitPrice: price("10.00"), Quantity: 2},
			{ProductID: 1, UnitPrice: price("11.00"), Quantity: 3}, // duplicate row
			{ProductID: 2, UnitPrice: price("5.00"), Quantity: 0},  // invalid quantity
			{ProductID: 0, UnitPrice: price("5.00"), Quantity: 1},  // invalid id
		},
	}

	store := NewStore(snapshots)
	defer store.Close()

	assert.Eventually(t, func() bool {
		return len(store.Items()) == 1
	}, time.Second, 5*time.Millisecond)

	items := store.Items()
	assert.Equal(t, int64(1), items[0].ProductID)
	assert.Equal(t, 5, items[0].Quantity)
	assert.True(t, items[0].UnitPrice.Equal(price("10.00")))
}

func TestPersist_WritesLatestSnapshot(t *testing.T) {
	snapshots := &mockSnapshotStore{}
	store := NewStore(snapshots)

	require.NoError(t, store.Add(Product{ID: 1, Price: price("10.00")}, 2))
	require.NoError(t, store.Add(Product{ID: 2, Price: price("5.00")}, 1))
	store.SetQuantity(1, 4)

	// Close drains the queue, so the last write reflects the final state.
	store.Close()

	saved := snapshots.lastSaved()
	require.Len(t, saved, 2)
	assert.Equal(t, int64(1), saved[0].ProductID)
	assert.Equal(t, 4, saved[0].Quantity)
	assert.Equal(t, int64(2), saved[1].ProductID)
}

func TestPersist_FailureDoesNotAffectMemory(t *testing.T) {
	snapshots := &mockSnapshotStore{saveErr: context.DeadlineExceeded}
	store := NewStore(snapshots)
	defer store.Close()

	require.NoError(t, store.Add(Product{ID: 1, Price: price("10.00")}, 2))

	items := store.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 2, items[0].Quantity)
}
