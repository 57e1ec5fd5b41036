package ports

import (
	"context"
	"time"

	"ledger-service/internal/core/domain"

	"github.com/jackc/pgx/v5"
)

//go:generate mockgen -source=repositories.go -destination=mocks/repositories_mock.go -package=mocks

// AccountRepository defines persistence operations for accounts.
// Methods accepting pgx.Tx run inside a unit of work; FindByNumberForUpdate
// additionally acquires an exclusive row lock held until the unit of work
// commits or rolls back.
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) (*domain.Account, error)
	FindByNumber(ctx context.Context, accountNumber string) (*domain.Account, error)
	FindByNumberForUpdate(ctx context.Context, tx pgx.Tx, accountNumber string) (*domain.Account, error)
	Save(ctx context.Context, tx pgx.Tx, account *domain.Account) error
	UpdateStatus(ctx context.Context, accountNumber string, status domain.AccountStatus) (*domain.Account, error)
	ExistsByNumber(ctx context.Context, accountNumber string) (bool, error)
	List(ctx context.Context) ([]domain.Account, error)
}

// TransactionRepository defines append-only persistence for transactions.
// Records are never updated or deleted after Append.
type TransactionRepository interface {
	// Append writes the transaction once and returns it with the
	// store-assigned id and recorded_at timestamp filled in.
	Append(ctx context.Context, tx pgx.Tx, txn *domain.Transaction) (*domain.Transaction, error)
	// FindByAccountNumber returns all transactions where the account is
	// source or destination. Order is stable for a given store state but not
	// chronological; callers needing chronology sort by RecordedAt.
	FindByAccountNumber(ctx context.Context, accountNumber string) ([]domain.Transaction, error)
}

// AccountCache is a best-effort snapshot cache for account reads. A nil
// result with nil error means a miss. Failures degrade to store reads.
type AccountCache interface {
	Get(ctx context.Context, accountNumber string) (*domain.Account, error)
	Set(ctx context.Context, account *domain.Account, ttl time.Duration) error
	Invalidate(ctx context.Context, accountNumber string) error
}

// DBTransactor provides database transaction management.
type DBTransactor interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}
