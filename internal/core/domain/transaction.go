package domain

import (
	"time"

	"github.com/google/uuid"
)

// TransactionStatus represents the outcome of a transfer attempt.
type TransactionStatus string

const (
	// TransactionStatusPending is a transient pre-commit state; it is never
	// observable at rest.
	TransactionStatusPending TransactionStatus = "PENDING"
	TransactionStatusSuccess TransactionStatus = "SUCCESS"
	TransactionStatusFailed  TransactionStatus = "FAILED"
)

// Transaction is an immutable record of one transfer attempt. It is written
// exactly once by the transfer engine and never updated or deleted. The
// internal ID and RecordedAt are assigned by the store at append time;
// TransactionID is the external 128-bit token assigned at build time.
type Transaction struct {
	ID                int64             `json:"-"`
	TransactionID     string            `json:"transaction_id"`
	FromAccountNumber string            `json:"from_account_number"`
	ToAccountNumber   string            `json:"to_account_number"`
	Amount            Money             `json:"amount"`
	Currency          string            `json:"currency"`
	Status            TransactionStatus `json:"status"`
	Description       string            `json:"description,omitempty"`
	FailureReason     *string           `json:"failure_reason,omitempty"`
	RecordedAt        time.Time         `json:"recorded_at"`
}

// NewTransaction builds an unrecorded transaction for a transfer attempt.
// Amount carries the originally requested magnitude even for failed attempts.
func NewTransaction(from, to string, amount Money, description string) *Transaction {
	return &Transaction{
		TransactionID:     uuid.New().String(),
		FromAccountNumber: from,
		ToAccountNumber:   to,
		Amount:            amount,
		Currency:          amount.Currency,
		Status:            TransactionStatusPending,
		Description:       description,
	}
}

// MarkSuccess transitions a pending transaction to SUCCESS.
func (t *Transaction) MarkSuccess() {
	t.Status = TransactionStatusSuccess
	t.FailureReason = nil
}

// MarkFailed transitions a pending transaction to FAILED with a reason.
func (t *Transaction) MarkFailed(reason string) {
	t.Status = TransactionStatusFailed
	t.FailureReason = &reason
}

// IsTerminal returns true if the transaction reached a final state.
func (t *Transaction) IsTerminal() bool {
	return t.Status == TransactionStatusSuccess || t.Status == TransactionStatusFailed
}
