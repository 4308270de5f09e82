package cart

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	redislib "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

type memoryKV struct {
	values map[string]string
}

func newMemoryKV() *memoryKV {
	return &memoryKV{values: map[string]string{}}
}

func (kv *memoryKV) Set(_ context.Context, key string, value any, _ time.Duration) error {
	kv.values[key] = value.(string)
	return nil
}

func (kv *memoryKV) Get(_ context.Context, key string) (string, error) {
	value, ok := kv.values[key]
	if !ok {
		return "", redislib.Nil
	}
	return value, nil
}

func (kv *memoryKV) Del(_ context.Context, keys ...string) error {
	for _, key := range keys {
		delete(kv.values, key)
	}
	return nil
}

func (kv *memoryKV) CartKey(scope string) string {
	return "se:cart:" + scope
}

func TestMemoryPersistenceDropsStaleSnapshot(t *testing.T) {
	ctx := context.Background()
	persistence := NewMemoryPersistence()
	productID := uuid.New()

	require.NoError(t, persistence.Save(ctx, "user:42", Snapshot{Version: 3}))
	// a writer holding the pre-removal state must not bring the line back
	require.NoError(t, persistence.Save(ctx, "user:42", Snapshot{
		Lines:   []Line{{ProductID: productID, Name: "Subwoofer", UnitPricePaise: 90000, Quantity: 1}},
		Version: 1,
	}))

	snap, err := persistence.Load(ctx, "user:42")
	require.NoError(t, err)
	require.EqualValues(t, 3, snap.Version)
	require.Empty(t, snap.Lines)
}

func TestRedisPersistenceDropsStaleSnapshot(t *testing.T) {
	ctx := context.Background()
	persistence := &RedisPersistence{kv: newMemoryKV(), ttl: time.Minute}
	productID := uuid.New()

	require.NoError(t, persistence.Save(ctx, "user:42", Snapshot{Version: 5}))
	require.NoError(t, persistence.Save(ctx, "user:42", Snapshot{
		Lines:   []Line{{ProductID: productID, Name: "Subwoofer", UnitPricePaise: 90000, Quantity: 1}},
		Version: 2,
	}))

	snap, err := persistence.Load(ctx, "user:42")
	require.NoError(t, err)
	require.EqualValues(t, 5, snap.Version)
	require.Empty(t, snap.Lines)

	// equal or newer versions still win
	require.NoError(t, persistence.Save(ctx, "user:42", Snapshot{
		Lines:   []Line{{ProductID: productID, Name: "Subwoofer", UnitPricePaise: 90000, Quantity: 2}},
		Version: 6,
	}))
	snap, err = persistence.Load(ctx, "user:42")
	require.NoError(t, err)
	require.Len(t, snap.Lines, 1)
}
