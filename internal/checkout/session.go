package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	redislib "github.com/redis/go-redis/v9"

	"github.com/shopease/shopease-backend/pkg/enums"
	redisclient "github.com/shopease/shopease-backend/pkg/redis"
	"github.com/shopease/shopease-backend/pkg/types"
)

// ErrNoSession is returned when a scope has no checkout in progress.
var ErrNoSession = errors.New("no checkout session")

// Session tracks one scope's progress through checkout. It lives alongside
// the cart snapshot and is dropped once payment is confirmed.
type Session struct {
	Scope           string                 `json:"scope"`
	Stage           enums.CheckoutStage    `json:"stage"`
	Address         *types.ShippingAddress `json:"address,omitempty"`
	OrderID         uuid.UUID              `json:"order_id,omitempty"`
	GatewayOrderRef string                 `json:"gateway_order_ref,omitempty"`
	UpdatedAt       time.Time              `json:"updated_at"`
}

// SessionStore is the storage port for checkout sessions.
type SessionStore interface {
	Load(ctx context.Context, scope string) (Session, error)
	Save(ctx context.Context, session Session) error
	Clear(ctx context.Context, scope string) error
}

type sessionKV interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
	CheckoutSessionKey(scope string) string
}

// RedisSessionStore keeps checkout sessions in Redis with a TTL so abandoned
// checkouts expire on their own.
type RedisSessionStore struct {
	kv  sessionKV
	ttl time.Duration
}

// NewRedisSessionStore wires session storage on top of the shared Redis client.
func NewRedisSessionStore(client *redisclient.Client, ttl time.Duration) (*RedisSessionStore, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	return &RedisSessionStore{kv: client, ttl: ttl}, nil
}

// Load returns the session for the scope, or ErrNoSession.
func (s *RedisSessionStore) Load(ctx context.Context, scope string) (Session, error) {
	raw, err := s.kv.Get(ctx, s.kv.CheckoutSessionKey(scope))
	if err != nil {
		if errors.Is(err, redislib.Nil) {
			return Session{}, ErrNoSession
		}
		return Session{}, fmt.Errorf("load checkout session %s: %w", scope, err)
	}
	var session Session
	if err := json.Unmarshal([]byte(raw), &session); err != nil {
		return Session{}, fmt.Errorf("decode checkout session %s: %w", scope, err)
	}
	return session, nil
}

// Save writes the session, refreshing the TTL.
func (s *RedisSessionStore) Save(ctx context.Context, session Session) error {
	raw, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encode checkout session %s: %w", session.Scope, err)
	}
	if err := s.kv.Set(ctx, s.kv.CheckoutSessionKey(session.Scope), string(raw), s.ttl); err != nil {
		return fmt.Errorf("save checkout session %s: %w", session.Scope, err)
	}
	return nil
}

// Clear drops the session for the scope.
func (s *RedisSessionStore) Clear(ctx context.Context, scope string) error {
	if err := s.kv.Del(ctx, s.kv.CheckoutSessionKey(scope)); err != nil {
		return fmt.Errorf("clear checkout session %s: %w", scope, err)
	}
	return nil
}

// MemorySessionStore is an in-process SessionStore used by tests.
type MemorySessionStore struct {
	mu       sync.Mutex
	sessions map[string]Session
}

// NewMemorySessionStore builds an empty in-memory store.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{sessions: map[string]Session{}}
}

// Load returns the stored session or ErrNoSession.
func (s *MemorySessionStore) Load(_ context.Context, scope string) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[scope]
	if !ok {
		return Session{}, ErrNoSession
	}
	return session, nil
}

// Save stores the session.
func (s *MemorySessionStore) Save(_ context.Context, session Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.Scope] = session
	return nil
}

// Clear drops the session.
func (s *MemorySessionStore) Clear(_ context.Context, scope string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, scope)
	return nil
}
