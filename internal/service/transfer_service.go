package service

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"ledger-service/internal/core/domain"
	"ledger-service/internal/core/ports"
	"ledger-service/pkg/apperror"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// TransferServiceImpl implements ports.TransferService. It is the transfer
// engine: validation, locking, balance mutation, and transaction recording
// happen inside one unit of work.
type TransferServiceImpl struct {
	accountRepo ports.AccountRepository
	txRepo      ports.TransactionRepository
	cache       ports.AccountCache
	transactor  ports.DBTransactor
	log         zerolog.Logger
}

// NewTransferService creates a new TransferServiceImpl.
func NewTransferService(
	accountRepo ports.AccountRepository,
	txRepo ports.TransactionRepository,
	cache ports.AccountCache,
	transactor ports.DBTransactor,
	log zerolog.Logger,
) *TransferServiceImpl {
	return &TransferServiceImpl{
		accountRepo: accountRepo,
		txRepo:      txRepo,
		cache:       cache,
		transactor:  transactor,
		log:         log,
	}
}

// Transfer moves req.Amount from the source to the destination account.
//
// Both account rows are locked in ascending account-number order regardless
// of transfer direction, so two opposing transfers on the same pair cannot
// deadlock. Either the debit, the credit, and the SUCCESS record all commit,
// or none do. An insufficient-funds rejection commits exactly one FAILED
// record; rejections before the funds check commit nothing.
func (s *TransferServiceImpl) Transfer(ctx context.Context, req ports.TransferRequest) (*domain.Transaction, error) {
	if req.FromAccountNumber == req.ToAccountNumber {
		return nil, apperror.ErrInvalidAmount("cannot transfer to the same account")
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.ErrStoreUnavailable(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	// Canonical lock order: ascending account number. Account numbers are
	// fixed-width digit strings, so lexicographic order is numeric order.
	first, second := req.FromAccountNumber, req.ToAccountNumber
	if second < first {
		first, second = second, first
	}

	firstAcc, err := s.accountRepo.FindByNumberForUpdate(ctx, dbTx, first)
	if err != nil {
		return nil, storeErr("lock account", err)
	}
	secondAcc, err := s.accountRepo.FindByNumberForUpdate(ctx, dbTx, second)
	if err != nil {
		return nil, storeErr("lock account", err)
	}

	fromAccount, toAccount := firstAcc, secondAcc
	if first != req.FromAccountNumber {
		fromAccount, toAccount = secondAcc, firstAcc
	}

	if fromAccount == nil {
		return nil, apperror.ErrAccountNotFound(req.FromAccountNumber)
	}
	if toAccount == nil {
		return nil, apperror.ErrAccountNotFound(req.ToAccountNumber)
	}
	if !fromAccount.IsActive() {
		return nil, apperror.ErrAccountInactive("source")
	}
	if !toAccount.IsActive() {
		return nil, apperror.ErrAccountInactive("destination")
	}
	if !req.Amount.IsPositive() {
		return nil, apperror.ErrInvalidAmount("transfer amount must be positive")
	}

	amount := domain.NewMoney(req.Amount.Amount, fromAccount.Currency)

	if fromAccount.Balance.Cmp(amount) < 0 {
		return nil, s.recordInsufficientFunds(ctx, dbTx, fromAccount, req, amount)
	}

	if err := fromAccount.Debit(amount); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("debit: %w", err))
	}
	if err := toAccount.Credit(amount); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("credit: %w", err))
	}

	if err := s.accountRepo.Save(ctx, dbTx, fromAccount); err != nil {
		return nil, storeErr("save source account", err)
	}
	if err := s.accountRepo.Save(ctx, dbTx, toAccount); err != nil {
		return nil, storeErr("save destination account", err)
	}

	txn := domain.NewTransaction(req.FromAccountNumber, req.ToAccountNumber, amount, req.Description)
	txn.MarkSuccess()

	recorded, err := s.txRepo.Append(ctx, dbTx, txn)
	if err != nil {
		return nil, storeErr("record transaction", err)
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.ErrStoreUnavailable(fmt.Errorf("commit tx: %w", err))
	}

	s.invalidate(ctx, req.FromAccountNumber, req.ToAccountNumber)

	s.log.Info().
		Str("transaction_id", recorded.TransactionID).
		Str("from", req.FromAccountNumber).
		Str("to", req.ToAccountNumber).
		Str("amount", amount.String()).
		Msg("transfer completed")

	return recorded, nil
}

// recordInsufficientFunds durably records a FAILED transaction for the
// rejected attempt before surfacing the error. The FAILED row commits in the
// same unit of work that holds the locks; no account row is modified.
func (s *TransferServiceImpl) recordInsufficientFunds(
	ctx context.Context,
	dbTx pgx.Tx,
	fromAccount *domain.Account,
	req ports.TransferRequest,
	amount domain.Money,
) error {
	insufficient := apperror.ErrInsufficientFunds(req.FromAccountNumber, fromAccount.Balance, amount)

	txn := domain.NewTransaction(req.FromAccountNumber, req.ToAccountNumber, amount, req.Description)
	txn.MarkFailed(insufficient.Message)

	if _, err := s.txRepo.Append(ctx, dbTx, txn); err != nil {
		return storeErr("record failed transaction", err)
	}
	if err := dbTx.Commit(ctx); err != nil {
		return apperror.ErrStoreUnavailable(fmt.Errorf("commit failed-transfer record: %w", err))
	}

	s.log.Warn().
		Str("from", req.FromAccountNumber).
		Str("to", req.ToAccountNumber).
		Str("amount", amount.String()).
		Str("balance", fromAccount.Balance.String()).
		Msg("transfer rejected: insufficient funds")

	return insufficient
}

// History returns all transactions touching the account, oldest first.
func (s *TransferServiceImpl) History(ctx context.Context, accountNumber string) ([]domain.Transaction, error) {
	txns, err := s.txRepo.FindByAccountNumber(ctx, accountNumber)
	if err != nil {
		return nil, storeErr("load history", err)
	}
	sort.Slice(txns, func(i, j int) bool {
		return txns[i].RecordedAt.Before(txns[j].RecordedAt)
	})
	return txns, nil
}

// invalidate drops cached snapshots for both accounts after a commit.
// Best-effort: a cache failure never fails the transfer.
func (s *TransferServiceImpl) invalidate(ctx context.Context, numbers ...string) {
	if s.cache == nil {
		return
	}
	for _, n := range numbers {
		if err := s.cache.Invalidate(ctx, n); err != nil {
			s.log.Warn().Err(err).Str("account_number", n).Msg("failed to invalidate account cache")
		}
	}
}

// storeErr passes structured errors (e.g. lock timeouts) through unchanged
// and wraps everything else as a store failure.
func storeErr(op string, err error) error {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return err
	}
	return apperror.ErrStoreUnavailable(fmt.Errorf("%s: %w", op, err))
}
