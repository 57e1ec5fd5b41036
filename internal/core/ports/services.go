package ports

import (
	"context"

	"ledger-service/internal/core/domain"
)

//go:generate mockgen -source=services.go -destination=mocks/services_mock.go -package=mocks

// TransferService is the transfer engine contract exposed to the HTTP layer.
type TransferService interface {
	Transfer(ctx context.Context, req TransferRequest) (*domain.Transaction, error)
	History(ctx context.Context, accountNumber string) ([]domain.Transaction, error)
}

// TransferRequest holds validated input for one transfer attempt.
type TransferRequest struct {
	FromAccountNumber string
	ToAccountNumber   string
	Amount            domain.Money
	Description       string
}

// AccountService defines account lifecycle operations.
type AccountService interface {
	Create(ctx context.Context, req CreateAccountRequest) (*domain.Account, error)
	Get(ctx context.Context, accountNumber string) (*domain.Account, error)
	List(ctx context.Context) ([]domain.Account, error)
	UpdateStatus(ctx context.Context, accountNumber string, status domain.AccountStatus) (*domain.Account, error)
	Balance(ctx context.Context, accountNumber string) (domain.Money, error)
}

// CreateAccountRequest holds validated input for account creation.
type CreateAccountRequest struct {
	HolderName     string
	InitialBalance domain.Money
}
