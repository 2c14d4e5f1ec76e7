package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	redislib "github.com/redis/go-redis/v9"

	"github.com/orangegegege/equipment-manager/pkg/config"
	"github.com/orangegegege/equipment-manager/pkg/enums"
	redisclient "github.com/orangegegege/equipment-manager/pkg/redis"
)

// ErrNoSession signals that the session id does not map to a live session.
var ErrNoSession = errors.New("session not found")

type sessionStore interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
}

type sessionKeyer interface {
	SessionKey(sessionID string) string
	CartKey(sessionID string) string
}

// Manager owns the lifecycle of login sessions in Redis. A session maps the
// JWT jti to the role it was granted; the cart bound to the session shares
// its lifetime and dies with it.
type Manager struct {
	store sessionStore
	keyer sessionKeyer
	ttl   time.Duration
}

// Checker exposes the read-only surface needed by middleware.
type Checker interface {
	Role(ctx context.Context, sessionID string) (enums.Role, error)
}

// NewManager constructs a session manager backed by Redis.
func NewManager(client *redisclient.Client, cfg config.JWTConfig) (*Manager, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	ttl := cfg.SessionTTL()
	if ttl <= 0 {
		return nil, fmt.Errorf("session ttl must be positive")
	}
	return &Manager{
		store: client,
		keyer: client,
		ttl:   ttl,
	}, nil
}

// Create stores a fresh session for the granted role and returns its id.
func (m *Manager) Create(ctx context.Context, role enums.Role) (string, error) {
	if !role.IsValid() {
		return "", fmt.Errorf("invalid role %q", role)
	}
	sessionID := uuid.NewString()
	if err := m.store.Set(ctx, m.keyer.SessionKey(sessionID), string(role), m.ttl); err != nil {
		return "", err
	}
	return sessionID, nil
}

// Role returns the role bound to the session, or ErrNoSession.
func (m *Manager) Role(ctx context.Context, sessionID string) (enums.Role, error) {
	if strings.TrimSpace(sessionID) == "" {
		return "", ErrNoSession
	}
	stored, err := m.store.Get(ctx, m.keyer.SessionKey(sessionID))
	if err != nil {
		if errors.Is(err, redislib.Nil) {
			return "", ErrNoSession
		}
		return "", err
	}
	role, err := enums.ParseRole(stored)
	if err != nil {
		return "", ErrNoSession
	}
	return role, nil
}

// Revoke deletes the session and the cart bound to it.
func (m *Manager) Revoke(ctx context.Context, sessionID string) error {
	if strings.TrimSpace(sessionID) == "" {
		return fmt.Errorf("session id is required")
	}
	return m.store.Del(ctx, m.keyer.SessionKey(sessionID), m.keyer.CartKey(sessionID))
}

// TTL exposes the configured session lifetime; the cart store aligns with it.
func (m *Manager) TTL() time.Duration {
	return m.ttl
}
