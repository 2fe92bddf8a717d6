// Package snapshot holds the terminal's read-only copy of the backend
// inventory. The store is replaced wholesale on each refresh; there are no
// per-product writes, so a snapshot is always internally consistent.
package snapshot

import (
	"sort"
	"sync"
	"time"

	"github.com/utafrali/PosGo/internal/domain"
)

// Store is a concurrency-safe inventory snapshot. Reads are served from the
// last refreshed state; the advertised stock may be stale relative to the
// backend, which remains the authority at checkout.
type Store struct {
	mu        sync.RWMutex
	products  map[string]domain.Product
	fetchedAt time.Time
}

// NewStore returns an empty snapshot store. It stays empty until the first
// successful refresh.
func NewStore() *Store {
	return &Store{products: make(map[string]domain.Product)}
}

// Replace swaps the entire snapshot for the given product set atomically.
func (s *Store) Replace(products []domain.Product) {
	next := make(map[string]domain.Product, len(products))
	for _, p := range products {
		next[p.PID] = p
	}

	s.mu.Lock()
	s.products = next
	s.fetchedAt = time.Now().UTC()
	s.mu.Unlock()
}

// Get returns the product with the given ID and whether it exists in the
// current snapshot.
func (s *Store) Get(pid string) (domain.Product, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.products[pid]
	return p, ok
}

// List returns all products in the snapshot ordered by product ID.
func (s *Store) List() []domain.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()

	products := make([]domain.Product, 0, len(s.products))
	for _, p := range s.products {
		products = append(products, p)
	}
	sort.Slice(products, func(i, j int) bool { return products[i].PID < products[j].PID })
	return products
}

// Empty reports whether no refresh has populated the store yet, or the last
// refresh returned zero products.
func (s *Store) Empty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.products) == 0
}

// FetchedAt returns when the current snapshot was taken. The zero time means
// no refresh has happened.
func (s *Store) FetchedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.fetchedAt
}
