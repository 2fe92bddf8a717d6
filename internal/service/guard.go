package service

import "sync"

// operatorLock holds the per-operator cart mutex and the in-flight checkout
// flag. Both are needed: the mutex serializes read-modify-write cycles, the
// flag freezes the cart for the full duration of a checkout submission.
type operatorLock struct {
	mu       sync.Mutex
	checkout bool
}

// CheckoutGuard serializes cart access per operator. Every mutation holds the
// operator's lock across its whole read-modify-write, so concurrent requests
// for the same operator cannot lose updates. A checkout submission
// additionally freezes the cart: mutations and further checkouts are rejected
// until the outstanding attempt resolves, and a mutation already holding the
// lock finishes before the submission reads the cart.
type CheckoutGuard struct {
	mu    sync.Mutex
	locks map[string]*operatorLock
}

// NewCheckoutGuard creates an empty guard.
func NewCheckoutGuard() *CheckoutGuard {
	return &CheckoutGuard{locks: make(map[string]*operatorLock)}
}

func (g *CheckoutGuard) get(operatorID string) *operatorLock {
	g.mu.Lock()
	defer g.mu.Unlock()

	l, ok := g.locks[operatorID]
	if !ok {
		l = &operatorLock{}
		g.locks[operatorID] = l
	}
	return l
}

// Acquire locks the operator's cart for a read-modify-write. It blocks while
// another mutation holds the lock and returns false when a checkout
// submission is outstanding; on false the caller must not proceed and must
// not call Release.
func (g *CheckoutGuard) Acquire(operatorID string) bool {
	l := g.get(operatorID)
	l.mu.Lock()
	if l.checkout {
		l.mu.Unlock()
		return false
	}
	return true
}

// Release unlocks the operator's cart after a successful Acquire.
func (g *CheckoutGuard) Release(operatorID string) {
	g.get(operatorID).mu.Unlock()
}

// Begin marks a checkout as in flight for the operator. It waits for any
// mutation holding the lock to finish and returns false if a submission is
// already outstanding. The cart stays frozen until End.
func (g *CheckoutGuard) Begin(operatorID string) bool {
	l := g.get(operatorID)
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.checkout {
		return false
	}
	l.checkout = true
	return true
}

// End releases the operator's checkout slot. Safe to call when none is held.
func (g *CheckoutGuard) End(operatorID string) {
	l := g.get(operatorID)
	l.mu.Lock()
	l.checkout = false
	l.mu.Unlock()
}

// InProgress reports whether a checkout is outstanding for the operator.
func (g *CheckoutGuard) InProgress(operatorID string) bool {
	l := g.get(operatorID)
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.checkout
}
