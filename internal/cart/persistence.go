package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	redislib "github.com/redis/go-redis/v9"

	redisclient "github.com/shopease/shopease-backend/pkg/redis"
)

// ErrNoSnapshot is returned when a scope has no persisted cart.
var ErrNoSnapshot = errors.New("no cart snapshot")

// Persistence is the storage port for cart snapshots. Implementations keyed
// by scope let the same cart survive restarts and follow a shopper across
// devices.
type Persistence interface {
	Load(ctx context.Context, scope string) (Snapshot, error)
	Save(ctx context.Context, scope string, snap Snapshot) error
	Clear(ctx context.Context, scope string) error
}

type cartKV interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
	CartKey(scope string) string
}

// RedisPersistence stores cart snapshots as JSON blobs in Redis with a TTL.
type RedisPersistence struct {
	kv  cartKV
	ttl time.Duration
}

// NewRedisPersistence wires cart storage on top of the shared Redis client.
func NewRedisPersistence(client *redisclient.Client, ttl time.Duration) (*RedisPersistence, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	return &RedisPersistence{kv: client, ttl: ttl}, nil
}

// Load returns the snapshot stored for the scope, or ErrNoSnapshot.
func (p *RedisPersistence) Load(ctx context.Context, scope string) (Snapshot, error) {
	raw, err := p.kv.Get(ctx, p.kv.CartKey(scope))
	if err != nil {
		if errors.Is(err, redislib.Nil) {
			return Snapshot{}, ErrNoSnapshot
		}
		return Snapshot{}, fmt.Errorf("load cart %s: %w", scope, err)
	}
	var snap Snapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		return Snapshot{}, fmt.Errorf("decode cart %s: %w", scope, err)
	}
	return snap, nil
}

// Save writes the snapshot, refreshing the TTL. A snapshot older than the
// stored one is dropped so a stale writer cannot resurrect removed lines.
func (p *RedisPersistence) Save(ctx context.Context, scope string, snap Snapshot) error {
	existing, err := p.Load(ctx, scope)
	if err != nil && !errors.Is(err, ErrNoSnapshot) {
		return err
	}
	if err == nil && existing.Version > snap.Version {
		return nil
	}

	raw, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode cart %s: %w", scope, err)
	}
	if err := p.kv.Set(ctx, p.kv.CartKey(scope), string(raw), p.ttl); err != nil {
		return fmt.Errorf("save cart %s: %w", scope, err)
	}
	return nil
}

// Clear removes the persisted snapshot for the scope.
func (p *RedisPersistence) Clear(ctx context.Context, scope string) error {
	if err := p.kv.Del(ctx, p.kv.CartKey(scope)); err != nil {
		return fmt.Errorf("clear cart %s: %w", scope, err)
	}
	return nil
}

// MemoryPersistence is an in-process Persistence used by tests and local runs
// without Redis.
type MemoryPersistence struct {
	mu    sync.Mutex
	snaps map[string]Snapshot
}

// NewMemoryPersistence builds an empty in-memory store.
func NewMemoryPersistence() *MemoryPersistence {
	return &MemoryPersistence{snaps: map[string]Snapshot{}}
}

// Load returns the stored snapshot or ErrNoSnapshot.
func (p *MemoryPersistence) Load(_ context.Context, scope string) (Snapshot, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	snap, ok := p.snaps[scope]
	if !ok {
		return Snapshot{}, ErrNoSnapshot
	}
	return snap, nil
}

// Save stores the snapshot unless a newer one is already held.
func (p *MemoryPersistence) Save(_ context.Context, scope string, snap Snapshot) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if existing, ok := p.snaps[scope]; ok && existing.Version > snap.Version {
		return nil
	}
	p.snaps[scope] = snap
	return nil
}

// Clear drops the snapshot.
func (p *MemoryPersistence) Clear(_ context.Context, scope string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.snaps, scope)
	return nil
}
