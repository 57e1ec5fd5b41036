package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"ledger-service/internal/core/domain"

	goredis "github.com/redis/go-redis/v9"
)

// AccountCache implements ports.AccountCache using Redis. It stores JSON
// snapshots keyed by account number; writers invalidate after commit, so a
// hit may be at most one TTL stale but never reflects an uncommitted state.
type AccountCache struct {
	client *goredis.Client
	prefix string
}

// NewAccountCache creates a new Redis-backed account snapshot cache.
func NewAccountCache(client *goredis.Client) *AccountCache {
	return &AccountCache{
		client: client,
		prefix: "account:",
	}
}

// Get retrieves a cached account snapshot.
// Returns nil, nil if the key does not exist.
func (c *AccountCache) Get(ctx context.Context, accountNumber string) (*domain.Account, error) {
	val, err := c.client.Get(ctx, c.prefix+accountNumber).Bytes()
	if err != nil {
		if err == goredis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("redis account get: %w", err)
	}

	var account domain.Account
	if err := json.Unmarshal(val, &account); err != nil {
		return nil, fmt.Errorf("redis account unmarshal: %w", err)
	}
	return &account, nil
}

// Set stores an account snapshot with TTL.
func (c *AccountCache) Set(ctx context.Context, account *domain.Account, ttl time.Duration) error {
	val, err := json.Marshal(account)
	if err != nil {
		return fmt.Errorf("redis account marshal: %w", err)
	}
	if err := c.client.Set(ctx, c.prefix+account.AccountNumber, val, ttl).Err(); err != nil {
		return fmt.Errorf("redis account set: %w", err)
	}
	return nil
}

// Invalidate drops the cached snapshot for an account.
func (c *AccountCache) Invalidate(ctx context.Context, accountNumber string) error {
	if err := c.client.Del(ctx, c.prefix+accountNumber).Err(); err != nil {
		return fmt.Errorf("redis account del: %w", err)
	}
	return nil
}
