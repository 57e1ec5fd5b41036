package domain

import (
	"fmt"
	"time"
)

// AccountStatus represents the lifecycle state of an account.
type AccountStatus string

const (
	AccountStatusActive   AccountStatus = "ACTIVE"
	AccountStatusInactive AccountStatus = "INACTIVE"
)

// Account is a ledger account. The internal ID is assigned by the store on
// creation; AccountNumber is the externally visible identifier (10 ASCII
// digits, globally unique). Balance must never be observed negative outside
// an in-flight transfer.
type Account struct {
	ID            int64         `json:"-"`
	AccountNumber string        `json:"account_number"`
	HolderName    string        `json:"holder_name"`
	Balance       Money         `json:"balance"`
	Currency      string        `json:"currency"`
	Status        AccountStatus `json:"status"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// IsActive reports whether the account may participate in a transfer.
func (a *Account) IsActive() bool {
	return a.Status == AccountStatusActive
}

// Debit subtracts amount from the balance. The amount must be positive and
// must not exceed the current balance.
func (a *Account) Debit(amount Money) error {
	if !amount.IsPositive() {
		return fmt.Errorf("debit amount must be positive, got %s", amount)
	}
	if a.Balance.Cmp(amount) < 0 {
		return fmt.Errorf("debit %s exceeds balance %s of account %s", amount, a.Balance, a.AccountNumber)
	}
	newBalance, err := a.Balance.Sub(amount)
	if err != nil {
		return err
	}
	a.Balance = newBalance
	return nil
}

// Credit adds amount to the balance. The amount must be positive.
func (a *Account) Credit(amount Money) error {
	if !amount.IsPositive() {
		return fmt.Errorf("credit amount must be positive, got %s", amount)
	}
	newBalance, err := a.Balance.Add(amount)
	if err != nil {
		return err
	}
	a.Balance = newBalance
	return nil
}
