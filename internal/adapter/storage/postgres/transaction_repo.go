package postgres

import (
	"context"
	"fmt"

	"ledger-service/internal/core/domain"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

const transactionColumns = `id, transaction_id, from_account_number, to_account_number,
	amount, currency, status, description, failure_reason, recorded_at`

// TransactionRepo implements ports.TransactionRepository. The transactions
// table is append-only: there is no update or delete path.
type TransactionRepo struct {
	pool Pool
}

// NewTransactionRepo creates a new TransactionRepo.
func NewTransactionRepo(pool Pool) *TransactionRepo {
	return &TransactionRepo{pool: pool}
}

// Append writes the transaction within the unit of work and returns it with
// the store-assigned id and recorded_at timestamp.
func (r *TransactionRepo) Append(ctx context.Context, tx pgx.Tx, txn *domain.Transaction) (*domain.Transaction, error) {
	query := `INSERT INTO transactions
		(transaction_id, from_account_number, to_account_number, amount, currency, status, description, failure_reason)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, recorded_at`

	recorded := *txn
	err := tx.QueryRow(ctx, query,
		txn.TransactionID, txn.FromAccountNumber, txn.ToAccountNumber,
		txn.Amount.Amount, txn.Currency, txn.Status, txn.Description, txn.FailureReason,
	).Scan(&recorded.ID, &recorded.RecordedAt)
	if err != nil {
		return nil, fmt.Errorf("insert transaction: %w", err)
	}
	return &recorded, nil
}

// FindByAccountNumber returns all transactions where the account appears as
// source or destination, in append order.
func (r *TransactionRepo) FindByAccountNumber(ctx context.Context, accountNumber string) ([]domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions
		WHERE from_account_number = $1 OR to_account_number = $1 ORDER BY id`

	rows, err := r.pool.Query(ctx, query, accountNumber)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var txns []domain.Transaction
	for rows.Next() {
		var t domain.Transaction
		var amount decimal.Decimal
		err := rows.Scan(
			&t.ID, &t.TransactionID, &t.FromAccountNumber, &t.ToAccountNumber,
			&amount, &t.Currency, &t.Status, &t.Description, &t.FailureReason, &t.RecordedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		t.Amount = domain.NewMoney(amount, t.Currency)
		txns = append(txns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return txns, nil
}
