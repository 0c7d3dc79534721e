package cart

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"
)

const (
	loadTimeout = 10 * time.Second
	saveTimeout = 5 * time.Second
)

// Store is the single source of truth for the in-progress order.
//
// In-memory state is authoritative; persistence is a durability cache.
// Every mutation enqueues the full snapshot on a capacity-1 coalescing
// channel drained by one background goroutine, so the persisted value
// converges to the latest in-memory state (last-writer-wins) and a failed
// write never rolls anything back.
type Store struct {
	mu      sync.Mutex
	items   []LineItem
	mutated bool // a mutation happened before the initial load resolved

	snapshots SnapshotStore
	persistCh chan []LineItem
	stop      chan struct{}
	wg        sync.WaitGroup
}

// NewStore creates a store and kicks off the asynchronous snapshot load.
// Until the load resolves the cart is empty and treated as authoritative;
// a mutation that lands before the load wins over the loaded snapshot.
func NewStore(snapshots SnapshotStore) *Store {
	s := &Store{
		snapshots: snapshots,
		persistCh: make(chan []LineItem, 1),
		stop:      make(chan struct{}),
	}

	s.wg.Add(2)
	go s.loadSnapshot()
	go s.persistLoop()

	return s
}

// Add inserts a new line item or accumulates quantity onto an existing one.
// The unit price of an existing line item is never overwritten: first-seen
// price wins. That is a deliberate simplification carried over from the
// observed behavior, not pricing logic.
func (s *Store) Add(p Product, qty int) error {
	if p.ID <= 0 {
		return ErrInvalidProduct
	}
	if qty < 1 {
		return ErrInvalidQuantity
	}
	if p.Price.IsNegative() {
		return ErrInvalidPrice
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.items {
		if s.items[i].ProductID == p.ID {
			s.items[i].Quantity += qty
			s.afterMutationLocked()
			return nil
		}
	}

	s.items = append(s.items, LineItem{
		ProductID: p.ID,
		Title:     p.Title,
		UnitPrice: p.Price,
		Thumbnail: p.Thumbnail,
		Quantity:  qty,
	})
	s.afterMutationLocked()
	return nil
}

// Remove drops the line item with the given id. Absent id is a no-op.
func (s *Store) Remove(productID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, item := range s.items {
		if item.ProductID == productID {
			s.items = append(s.items[:i], s.items[i+1:]...)
			s.afterMutationLocked()
			return
		}
	}
}

// SetQuantity replaces the quantity of an existing line item. A quantity
// below 1 removes the item instead of storing a non-positive value.
// Setting quantity on an item that is not in the cart is a no-op; it does
// not create one.
func (s *Store) SetQuantity(productID int64, quantity int) {
	if quantity < 1 {
		s.Remove(productID)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.items {
		if s.items[i].ProductID == productID {
			s.items[i].Quantity = quantity
			s.afterMutationLocked()
			return
		}
	}
}

// Clear empties the cart unconditionally.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = nil
	s.afterMutationLocked()
}

// Items returns a copy of the current ordered line items.
func (s *Store) Items() []LineItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]LineItem, len(s.items))
	copy(out, s.items)
	return out
}

// Close stops the background workers, flushing any still-queued snapshot.
func (s *Store) Close() {
	close(s.stop)
	s.wg.Wait()
}

// afterMutationLocked marks the store dirty and schedules a persistence
// write of the current snapshot. Callers must hold s.mu.
func (s *Store) afterMutationLocked() {
	s.mutated = true

	snap := make([]LineItem, len(s.items))
	copy(snap, s.items)

	// Coalesce: drop a still-queued stale snapshot and keep the newest.
	// s.mu makes this the only producer, so the send cannot block.
	select {
	case s.persistCh <- snap:
	default:
		select {
		case <-s.persistCh:
		default:
		}
		s.persistCh <- snap
	}
}

func (s *Store) loadSnapshot() {
	defer s.wg.Done()

	ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
	defer cancel()

	items, err := s.snapshots.Load(ctx)
	if err != nil {
		if !errors.Is(err, ErrNoSnapshot) {
			log.Printf("cart: failed to load persisted cart: %v", err)
		}
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.mutated {
		// The user already touched the cart; their state wins.
		return
	}
	s.items = sanitize(items)
}

func (s *Store) persistLoop() {
	defer s.wg.Done()

	for {
		select {
		case snap := <-s.persistCh:
			s.save(snap)
		case <-s.stop:
			// Flush whatever is still queued before exiting.
			select {
			case snap := <-s.persistCh:
				s.save(snap)
			default:
			}
			return
		}
	}
}

func (s *Store) save(items []LineItem) {
	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()

	if err := s.snapshots.Save(ctx, items); err != nil {
		log.Printf("cart: failed to persist cart snapshot: %v", err)
	}
}

// sanitize guards against a corrupted or hand-edited persisted payload:
// non-positive quantities are dropped and duplicate product ids are merged
// by accumulating quantity onto the first occurrence.
func sanitize(items []LineItem) []LineItem {
	out := make([]LineItem, 0, len(items))
	seen := make(map[int64]int, len(items))

	for _, item := range items {
		if item.ProductID <= 0 || item.Quantity < 1 {
			continue
		}
		if i, ok := seen[item.ProductID]; ok {
			out[i].Quantity += item.Quantity
			continue
		}
		seen[item.ProductID] = len(out)
		out = append(out, item)
	}

	if len(out) == 0 {
		return nil
	}
	return out
}
