package postgres

import (
	"context"
	"errors"
	"fmt"

	"ledger-service/internal/core/domain"
	"ledger-service/pkg/apperror"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
)

// lockNotAvailable is the SQLSTATE raised when lock_timeout expires while
// waiting on a FOR UPDATE row lock.
const lockNotAvailable = "55P03"

const accountColumns = `id, account_number, holder_name, balance, currency, status, created_at, updated_at`

// AccountRepo implements ports.AccountRepository.
type AccountRepo struct {
	pool Pool
}

// NewAccountRepo creates a new AccountRepo.
func NewAccountRepo(pool Pool) *AccountRepo {
	return &AccountRepo{pool: pool}
}

// Create inserts a new account and returns it with the store-assigned id.
func (r *AccountRepo) Create(ctx context.Context, a *domain.Account) (*domain.Account, error) {
	query := `INSERT INTO accounts (account_number, holder_name, balance, currency, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`

	created := *a
	err := r.pool.QueryRow(ctx, query,
		a.AccountNumber, a.HolderName, a.Balance.Amount, a.Currency,
		a.Status, a.CreatedAt, a.UpdatedAt,
	).Scan(&created.ID)
	if err != nil {
		return nil, fmt.Errorf("insert account: %w", err)
	}
	return &created, nil
}

// FindByNumber fetches an account by its account number (without locking).
func (r *AccountRepo) FindByNumber(ctx context.Context, accountNumber string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE account_number = $1`

	a, err := scanAccount(r.pool.QueryRow(ctx, query, accountNumber))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get account by number: %w", err)
	}
	return a, nil
}

// FindByNumberForUpdate fetches an account with a pessimistic row lock.
// This MUST be called within a transaction; the lock is held until commit
// or rollback.
func (r *AccountRepo) FindByNumberForUpdate(ctx context.Context, tx pgx.Tx, accountNumber string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE account_number = $1 FOR UPDATE`

	a, err := scanAccount(tx.QueryRow(ctx, query, accountNumber))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == lockNotAvailable {
			return nil, apperror.ErrLockTimeout(err)
		}
		return nil, fmt.Errorf("get account for update: %w", err)
	}
	return a, nil
}

// Save persists the balance of a previously locked account within a transaction.
func (r *AccountRepo) Save(ctx context.Context, tx pgx.Tx, a *domain.Account) error {
	query := `UPDATE accounts SET balance = $1, updated_at = NOW() WHERE account_number = $2`

	tag, err := tx.Exec(ctx, query, a.Balance.Amount, a.AccountNumber)
	if err != nil {
		return fmt.Errorf("update account balance: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("account not found: %s", a.AccountNumber)
	}
	return nil
}

// UpdateStatus sets the lifecycle status and returns the updated account,
// or (nil, nil) when no such account exists.
func (r *AccountRepo) UpdateStatus(ctx context.Context, accountNumber string, status domain.AccountStatus) (*domain.Account, error) {
	query := `UPDATE accounts SET status = $1, updated_at = NOW()
		WHERE account_number = $2 RETURNING ` + accountColumns

	a, err := scanAccount(r.pool.QueryRow(ctx, query, status, accountNumber))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("update account status: %w", err)
	}
	return a, nil
}

// ExistsByNumber reports whether an account number is already taken.
func (r *AccountRepo) ExistsByNumber(ctx context.Context, accountNumber string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM accounts WHERE account_number = $1)`

	var exists bool
	if err := r.pool.QueryRow(ctx, query, accountNumber).Scan(&exists); err != nil {
		return false, fmt.Errorf("check account number exists: %w", err)
	}
	return exists, nil
}

// List returns all accounts in creation order.
func (r *AccountRepo) List(ctx context.Context) ([]domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts ORDER BY id`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []domain.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		accounts = append(accounts, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate accounts: %w", err)
	}
	return accounts, nil
}

// scanAccount reads one accountColumns row into a domain.Account.
func scanAccount(row pgx.Row) (*domain.Account, error) {
	a := &domain.Account{}
	var balance decimal.Decimal
	err := row.Scan(
		&a.ID, &a.AccountNumber, &a.HolderName, &balance, &a.Currency,
		&a.Status, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	a.Balance = domain.NewMoney(balance, a.Currency)
	return a, nil
}
