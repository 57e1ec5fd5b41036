package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"

	"ledger-service/internal/core/domain"
	"ledger-service/internal/core/ports"
	"ledger-service/pkg/apperror"

	"github.com/rs/zerolog"
)

const accountNumberDigits = 10

// accountNumberSpace is 10^10, the number of possible 10-digit account numbers.
var accountNumberSpace = big.NewInt(10_000_000_000)

// AccountServiceImpl implements ports.AccountService.
type AccountServiceImpl struct {
	accountRepo ports.AccountRepository
	cache       ports.AccountCache
	cacheTTL    time.Duration
	maxAttempts int
	currency    string
	log         zerolog.Logger
}

// NewAccountService creates a new AccountServiceImpl. maxAttempts bounds the
// account-number uniqueness retry loop; cache may be nil to disable caching.
func NewAccountService(
	accountRepo ports.AccountRepository,
	cache ports.AccountCache,
	cacheTTL time.Duration,
	maxAttempts int,
	currency string,
	log zerolog.Logger,
) *AccountServiceImpl {
	if maxAttempts <= 0 {
		maxAttempts = 5
	}
	return &AccountServiceImpl{
		accountRepo: accountRepo,
		cache:       cache,
		cacheTTL:    cacheTTL,
		maxAttempts: maxAttempts,
		currency:    currency,
		log:         log,
	}
}

// Create opens a new ACTIVE account with a freshly generated account number.
func (s *AccountServiceImpl) Create(ctx context.Context, req ports.CreateAccountRequest) (*domain.Account, error) {
	if strings.TrimSpace(req.HolderName) == "" {
		return nil, apperror.Validation("holder name must not be blank")
	}
	if req.InitialBalance.IsNegative() {
		return nil, apperror.ErrInvalidAmount("initial balance must not be negative")
	}

	accountNumber, err := s.generateAccountNumber(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	account := &domain.Account{
		AccountNumber: accountNumber,
		HolderName:    req.HolderName,
		Balance:       domain.NewMoney(req.InitialBalance.Amount, s.currency),
		Currency:      s.currency,
		Status:        domain.AccountStatusActive,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	created, err := s.accountRepo.Create(ctx, account)
	if err != nil {
		return nil, storeErr("create account", err)
	}

	s.cacheSet(ctx, created)

	s.log.Info().
		Str("account_number", created.AccountNumber).
		Str("holder_name", created.HolderName).
		Msg("account created")

	return created, nil
}

// Get fetches one account, reading through the snapshot cache when possible.
func (s *AccountServiceImpl) Get(ctx context.Context, accountNumber string) (*domain.Account, error) {
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, accountNumber)
		if err != nil {
			s.log.Warn().Err(err).Str("account_number", accountNumber).Msg("account cache read failed, falling through to store")
		}
		if cached != nil {
			return cached, nil
		}
	}

	account, err := s.accountRepo.FindByNumber(ctx, accountNumber)
	if err != nil {
		return nil, storeErr("find account", err)
	}
	if account == nil {
		return nil, apperror.ErrAccountNotFound(accountNumber)
	}

	s.cacheSet(ctx, account)
	return account, nil
}

// List returns all accounts.
func (s *AccountServiceImpl) List(ctx context.Context) ([]domain.Account, error) {
	accounts, err := s.accountRepo.List(ctx)
	if err != nil {
		return nil, storeErr("list accounts", err)
	}
	return accounts, nil
}

// UpdateStatus sets the lifecycle status. No transition rules are enforced.
func (s *AccountServiceImpl) UpdateStatus(ctx context.Context, accountNumber string, status domain.AccountStatus) (*domain.Account, error) {
	updated, err := s.accountRepo.UpdateStatus(ctx, accountNumber, status)
	if err != nil {
		return nil, storeErr("update account status", err)
	}
	if updated == nil {
		return nil, apperror.ErrAccountNotFound(accountNumber)
	}

	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, accountNumber); err != nil {
			s.log.Warn().Err(err).Str("account_number", accountNumber).Msg("failed to invalidate account cache")
		}
	}

	s.log.Info().
		Str("account_number", accountNumber).
		Str("status", string(status)).
		Msg("account status updated")

	return updated, nil
}

// Balance returns the current balance of one account.
func (s *AccountServiceImpl) Balance(ctx context.Context, accountNumber string) (domain.Money, error) {
	account, err := s.Get(ctx, accountNumber)
	if err != nil {
		return domain.Money{}, err
	}
	return account.Balance, nil
}

// generateAccountNumber draws random 10-digit candidates until one is unused.
// The retry loop is bounded: past maxAttempts the caller gets a transient
// generation error instead of an unbounded retry.
func (s *AccountServiceImpl) generateAccountNumber(ctx context.Context) (string, error) {
	for attempt := 0; attempt < s.maxAttempts; attempt++ {
		n, err := rand.Int(rand.Reader, accountNumberSpace)
		if err != nil {
			return "", apperror.InternalError(fmt.Errorf("draw account number: %w", err))
		}
		candidate := fmt.Sprintf("%0*d", accountNumberDigits, n)

		exists, err := s.accountRepo.ExistsByNumber(ctx, candidate)
		if err != nil {
			return "", storeErr("check account number uniqueness", err)
		}
		if !exists {
			return candidate, nil
		}

		s.log.Debug().
			Str("candidate", candidate).
			Int("attempt", attempt+1).
			Msg("account number collision, retrying")
	}
	return "", apperror.ErrAccountNumberExhausted(s.maxAttempts)
}

// cacheSet stores an account snapshot, best-effort.
func (s *AccountServiceImpl) cacheSet(ctx context.Context, account *domain.Account) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, account, s.cacheTTL); err != nil {
		s.log.Warn().Err(err).Str("account_number", account.AccountNumber).Msg("failed to cache account snapshot")
	}
}
