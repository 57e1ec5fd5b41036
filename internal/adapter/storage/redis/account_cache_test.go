package redis

import (
	"context"
	"testing"
	"time"

	"ledger-service/internal/core/domain"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testAccount(number string) *domain.Account {
	return &domain.Account{
		AccountNumber: number,
		HolderName:    "Alice",
		Balance:       domain.NewMoney(decimal.RequireFromString("300.00"), "USD"),
		Currency:      "USD",
		Status:        domain.AccountStatusActive,
		CreatedAt:     time.Now().UTC().Truncate(time.Second),
		UpdatedAt:     time.Now().UTC().Truncate(time.Second),
	}
}

func TestAccountCache_SetAndGet(t *testing.T) {
	s := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: s.Addr()})
	cache := NewAccountCache(client)
	ctx := context.Background()

	account := testAccount("1234567890")

	// Get before set => miss
	result, err := cache.Get(ctx, account.AccountNumber)
	assert.NoError(t, err)
	assert.Nil(t, result)

	require.NoError(t, cache.Set(ctx, account, 30*time.Second))

	result, err = cache.Get(ctx, account.AccountNumber)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, account.AccountNumber, result.AccountNumber)
	assert.Equal(t, account.HolderName, result.HolderName)
	assert.Equal(t, domain.AccountStatusActive, result.Status)
	assert.True(t, result.Balance.Amount.Equal(account.Balance.Amount))
	assert.Equal(t, "USD", result.Balance.Currency)
}

func TestAccountCache_TTLExpiry(t *testing.T) {
	s := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: s.Addr()})
	cache := NewAccountCache(client)
	ctx := context.Background()

	account := testAccount("1234567890")
	require.NoError(t, cache.Set(ctx, account, time.Second))

	// Fast-forward time in miniredis
	s.FastForward(2 * time.Second)

	result, err := cache.Get(ctx, account.AccountNumber)
	assert.NoError(t, err)
	assert.Nil(t, result, "expired snapshot should be a miss")
}

func TestAccountCache_Invalidate(t *testing.T) {
	s := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: s.Addr()})
	cache := NewAccountCache(client)
	ctx := context.Background()

	account := testAccount("1234567890")
	require.NoError(t, cache.Set(ctx, account, time.Hour))

	require.NoError(t, cache.Invalidate(ctx, account.AccountNumber))

	result, err := cache.Get(ctx, account.AccountNumber)
	assert.NoError(t, err)
	assert.Nil(t, result)
}

func TestAccountCache_InvalidateMissingKey(t *testing.T) {
	s := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: s.Addr()})
	cache := NewAccountCache(client)

	// Deleting a key that was never cached is not an error.
	assert.NoError(t, cache.Invalidate(context.Background(), "0000000000"))
}

func TestAccountCache_OverwriteSnapshot(t *testing.T) {
	s := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: s.Addr()})
	cache := NewAccountCache(client)
	ctx := context.Background()

	account := testAccount("1234567890")
	require.NoError(t, cache.Set(ctx, account, time.Hour))

	account.Balance = domain.NewMoney(decimal.RequireFromString("150.00"), "USD")
	require.NoError(t, cache.Set(ctx, account, time.Hour))

	result, err := cache.Get(ctx, account.AccountNumber)
	require.NoError(t, err)
	assert.True(t, result.Balance.Amount.Equal(decimal.RequireFromString("150.00")))
}
