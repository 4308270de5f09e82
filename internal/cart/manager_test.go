package cart

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/shopease/shopease-backend/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

type failingPersistence struct {
	loads  int
	saves  int
	clears int
}

func (f *failingPersistence) Load(context.Context, string) (Snapshot, error) {
	f.loads++
	return Snapshot{}, ErrNoSnapshot
}

func (f *failingPersistence) Save(context.Context, string, Snapshot) error {
	f.saves++
	return errors.New("redis down")
}

func (f *failingPersistence) Clear(context.Context, string) error {
	f.clears++
	return errors.New("redis down")
}

func TestManagerHydratesFromPersistence(t *testing.T) {
	ctx := context.Background()
	persistence := NewMemoryPersistence()
	productID := uuid.New()
	require.NoError(t, persistence.Save(ctx, "user:42", Snapshot{
		Lines:   []Line{{ProductID: productID, Name: "Turntable", UnitPricePaise: 32000, Quantity: 1}},
		Version: 7,
	}))

	manager, err := NewManager(persistence, testLogger(), nil)
	require.NoError(t, err)

	store, err := manager.Get(ctx, "user:42")
	require.NoError(t, err)
	require.Len(t, store.Lines(), 1)
	require.EqualValues(t, 32000, store.TotalPaise())
}

func TestManagerPersistsMutations(t *testing.T) {
	ctx := context.Background()
	persistence := NewMemoryPersistence()
	manager, err := NewManager(persistence, testLogger(), nil)
	require.NoError(t, err)

	productID := uuid.New()
	_, err = manager.Add(ctx, "guest:abc", Line{ProductID: productID, Name: "Cables", UnitPricePaise: 999, Quantity: 2})
	require.NoError(t, err)

	// a fresh manager sees the persisted snapshot
	other, err := NewManager(persistence, testLogger(), nil)
	require.NoError(t, err)
	store, err := other.Get(ctx, "guest:abc")
	require.NoError(t, err)
	require.EqualValues(t, 1998, store.TotalPaise())
}

func TestManagerSurvivesPersistenceFailure(t *testing.T) {
	ctx := context.Background()
	persistence := &failingPersistence{}
	manager, err := NewManager(persistence, testLogger(), nil)
	require.NoError(t, err)

	productID := uuid.New()
	store, err := manager.Add(ctx, "guest:abc", Line{ProductID: productID, Name: "Amp", UnitPricePaise: 55000, Quantity: 1})
	require.NoError(t, err)

	// the in-memory cart is still authoritative
	require.EqualValues(t, 55000, store.TotalPaise())
	require.Equal(t, 1, persistence.saves)
}

func TestManagerMergeScopes(t *testing.T) {
	ctx := context.Background()
	persistence := NewMemoryPersistence()
	manager, err := NewManager(persistence, testLogger(), nil)
	require.NoError(t, err)

	shared := uuid.New()
	_, err = manager.Add(ctx, "guest:abc", Line{ProductID: shared, Name: "Headphones", UnitPricePaise: 14999, Quantity: 1})
	require.NoError(t, err)
	_, err = manager.Add(ctx, "guest:abc", Line{ProductID: uuid.New(), Name: "Stand", UnitPricePaise: 2500, Quantity: 1})
	require.NoError(t, err)
	_, err = manager.Add(ctx, "user:42", Line{ProductID: shared, Name: "Headphones", UnitPricePaise: 14999, Quantity: 1})
	require.NoError(t, err)

	dest, err := manager.MergeScopes(ctx, "guest:abc", "user:42")
	require.NoError(t, err)

	require.Len(t, dest.Lines(), 2)
	require.EqualValues(t, 2, dest.Lines()[0].Quantity)

	guest, err := manager.Get(ctx, "guest:abc")
	require.NoError(t, err)
	require.True(t, guest.IsEmpty())

	_, err = persistence.Load(ctx, "guest:abc")
	require.ErrorIs(t, err, ErrNoSnapshot)
}

func TestManagerReleaseRehydrates(t *testing.T) {
	ctx := context.Background()
	persistence := NewMemoryPersistence()
	manager, err := NewManager(persistence, testLogger(), nil)
	require.NoError(t, err)

	_, err = manager.Add(ctx, "user:42", Line{ProductID: uuid.New(), Name: "Monitor Speakers", UnitPricePaise: 42000, Quantity: 1})
	require.NoError(t, err)

	manager.Release("user:42")

	// the snapshot survives the release and hydrates a fresh store
	store, err := manager.Get(ctx, "user:42")
	require.NoError(t, err)
	require.EqualValues(t, 42000, store.TotalPaise())
}

func TestManagerClear(t *testing.T) {
	ctx := context.Background()
	persistence := NewMemoryPersistence()
	manager, err := NewManager(persistence, testLogger(), nil)
	require.NoError(t, err)

	_, err = manager.Add(ctx, "user:42", Line{ProductID: uuid.New(), Name: "Mixer", UnitPricePaise: 78000, Quantity: 1})
	require.NoError(t, err)
	require.NoError(t, manager.Clear(ctx, "user:42"))

	store, err := manager.Get(ctx, "user:42")
	require.NoError(t, err)
	require.True(t, store.IsEmpty())
	_, err = persistence.Load(ctx, "user:42")
	require.ErrorIs(t, err, ErrNoSnapshot)
}
