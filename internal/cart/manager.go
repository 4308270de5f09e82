package cart

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/shopease/shopease-backend/pkg/logger"
	"github.com/shopease/shopease-backend/pkg/metrics"
)

// Manager hands out one Store per scope and keeps persisted snapshots in
// sync. Persistence failures never fail the cart operation itself; the
// in-memory state stays authoritative and the write is retried on the next
// mutation.
type Manager struct {
	mu          sync.Mutex
	stores      map[string]*Store
	persistence Persistence
	logg        *logger.Logger
	metrics     *metrics.CheckoutMetrics
}

// NewManager builds a cart manager on top of the provided persistence port.
func NewManager(persistence Persistence, logg *logger.Logger, m *metrics.CheckoutMetrics) (*Manager, error) {
	if persistence == nil {
		return nil, fmt.Errorf("cart persistence is required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return &Manager{
		stores:      map[string]*Store{},
		persistence: persistence,
		logg:        logg,
		metrics:     m,
	}, nil
}

// Get returns the store for the scope, hydrating it from persistence on
// first access. A scope with no snapshot starts empty.
func (m *Manager) Get(ctx context.Context, scope string) (*Store, error) {
	if scope == "" {
		return nil, fmt.Errorf("cart scope is required")
	}

	m.mu.Lock()
	store, ok := m.stores[scope]
	if !ok {
		store = NewStore(scope)
		m.stores[scope] = store
	}
	m.mu.Unlock()
	if ok {
		return store, nil
	}

	snap, err := m.persistence.Load(ctx, scope)
	if err != nil {
		if errors.Is(err, ErrNoSnapshot) {
			return store, nil
		}
		return nil, err
	}
	store.Restore(snap)
	return store, nil
}

// Add merges a line into the scope's cart and persists the result.
func (m *Manager) Add(ctx context.Context, scope string, line Line) (*Store, error) {
	store, err := m.Get(ctx, scope)
	if err != nil {
		return nil, err
	}
	store.Add(line)
	m.persist(ctx, store)
	return store, nil
}

// SetQuantity updates a line's quantity and persists the result. Unknown
// products are a no-op.
func (m *Manager) SetQuantity(ctx context.Context, scope string, productID uuid.UUID, quantity int) (*Store, error) {
	store, err := m.Get(ctx, scope)
	if err != nil {
		return nil, err
	}
	store.SetQuantity(productID, quantity)
	m.persist(ctx, store)
	return store, nil
}

// Remove deletes a line and persists the result.
func (m *Manager) Remove(ctx context.Context, scope string, productID uuid.UUID) (*Store, error) {
	store, err := m.Get(ctx, scope)
	if err != nil {
		return nil, err
	}
	store.Remove(productID)
	m.persist(ctx, store)
	return store, nil
}

// Clear empties the scope's cart and drops the persisted snapshot.
func (m *Manager) Clear(ctx context.Context, scope string) error {
	store, err := m.Get(ctx, scope)
	if err != nil {
		return err
	}
	store.Clear()
	if err := m.persistence.Clear(ctx, scope); err != nil {
		m.warnPersist(ctx, scope, err)
	}
	return nil
}

// MergeScopes folds the source cart into the destination cart, then clears
// the source. Used when a guest logs in and their device cart should follow
// them into the account scope.
func (m *Manager) MergeScopes(ctx context.Context, fromScope, toScope string) (*Store, error) {
	if fromScope == toScope {
		return m.Get(ctx, toScope)
	}
	source, err := m.Get(ctx, fromScope)
	if err != nil {
		return nil, err
	}
	dest, err := m.Get(ctx, toScope)
	if err != nil {
		return nil, err
	}
	for _, line := range source.Lines() {
		dest.Add(line)
	}
	m.persist(ctx, dest)
	if err := m.Clear(ctx, fromScope); err != nil {
		return nil, err
	}
	return dest, nil
}

// Release drops the scope's in-memory store. The persisted snapshot stays;
// the next Get rehydrates it. Called on logout so hydrated stores do not
// accumulate for the life of the process.
func (m *Manager) Release(scope string) {
	m.mu.Lock()
	delete(m.stores, scope)
	m.mu.Unlock()
}

// Persist flushes the scope's current snapshot. Used after direct Store
// mutations made outside the manager helpers.
func (m *Manager) Persist(ctx context.Context, store *Store) {
	m.persist(ctx, store)
}

func (m *Manager) persist(ctx context.Context, store *Store) {
	if err := m.persistence.Save(ctx, store.Scope(), store.Snapshot()); err != nil {
		m.warnPersist(ctx, store.Scope(), err)
	}
}

func (m *Manager) warnPersist(ctx context.Context, scope string, err error) {
	m.metrics.IncCartSaveFailure()
	ctx = m.logg.WithCartScope(ctx, scope)
	ctx = m.logg.WithField(ctx, "error", err.Error())
	m.logg.Warn(ctx, "cart snapshot write failed")
}
