package snapshot

import (
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/PosGo/internal/domain"
)

func product(pid, name string, qty int) domain.Product {
	return domain.Product{PID: pid, Name: name, Price: decimal.NewFromInt(10), Quantity: qty}
}

func TestStore_ReplaceAndGet(t *testing.T) {
	store := NewStore()
	assert.True(t, store.Empty())
	assert.True(t, store.FetchedAt().IsZero())

	store.Replace([]domain.Product{product("P2", "Sugar", 5), product("P1", "Rice", 3)})

	require.False(t, store.Empty())
	assert.False(t, store.FetchedAt().IsZero())

	got, ok := store.Get("P1")
	require.True(t, ok)
	assert.Equal(t, "Rice", got.Name)
	assert.Equal(t, 3, got.Quantity)

	_, ok = store.Get("P9")
	assert.False(t, ok)
}

func TestStore_ListOrderedByPID(t *testing.T) {
	store := NewStore()
	store.Replace([]domain.Product{product("P3", "c", 1), product("P1", "a", 1), product("P2", "b", 1)})

	list := store.List()
	require.Len(t, list, 3)
	assert.Equal(t, []string{"P1", "P2", "P3"}, []string{list[0].PID, list[1].PID, list[2].PID})
}

func TestStore_ReplaceDropsRemovedProducts(t *testing.T) {
	store := NewStore()
	store.Replace([]domain.Product{product("P1", "Rice", 3), product("P2", "Sugar", 5)})
	store.Replace([]domain.Product{product("P2", "Sugar", 4)})

	_, ok := store.Get("P1")
	assert.False(t, ok, "products absent from the new snapshot must be dropped")

	got, ok := store.Get("P2")
	require.True(t, ok)
	assert.Equal(t, 4, got.Quantity)
}

func TestStore_ConcurrentAccess(t *testing.T) {
	store := NewStore()
	store.Replace([]domain.Product{product("P1", "Rice", 3)})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			store.Replace([]domain.Product{product("P1", "Rice", 3)})
		}()
		go func() {
			defer wg.Done()
			store.Get("P1")
			store.List()
		}()
	}
	wg.Wait()
}
