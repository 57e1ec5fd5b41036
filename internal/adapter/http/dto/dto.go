package dto

// CreateAccountRequest is the request body for account creation.
// InitialBalance is a decimal string; it defaults to "0" when omitted.
type CreateAccountRequest struct {
	HolderName     string `json:"holder_name" binding:"required,min=1,max=100"`
	InitialBalance string `json:"initial_balance" binding:"omitempty,decimal_amount"`
}

// UpdateAccountStatusRequest is the request body for status changes.
type UpdateAccountStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=ACTIVE INACTIVE"`
}

// TransferRequest is the request body for money transfers.
// Amount is a decimal string so no precision is lost in transit.
type TransferRequest struct {
	FromAccountNumber string `json:"from_account_number" binding:"required,account_number"`
	ToAccountNumber   string `json:"to_account_number" binding:"required,account_number"`
	Amount            string `json:"amount" binding:"required,decimal_amount"`
	Description       string `json:"description" binding:"omitempty,max=255"`
}

// AccountResponse is the response body for account queries.
type AccountResponse struct {
	AccountNumber string `json:"account_number"`
	HolderName    string `json:"holder_name"`
	Balance       string `json:"balance"`
	Currency      string `json:"currency"`
	Status        string `json:"status"`
	CreatedAt     string `json:"created_at"`
	UpdatedAt     string `json:"updated_at"`
}

// BalanceResponse is the response body for balance queries.
type BalanceResponse struct {
	AccountNumber string `json:"account_number"`
	Balance       string `json:"balance"`
	Currency      string `json:"currency"`
}

// TransactionResponse is the response body for transfer results and history.
type TransactionResponse struct {
	TransactionID     string  `json:"transaction_id"`
	FromAccountNumber string  `json:"from_account_number"`
	ToAccountNumber   string  `json:"to_account_number"`
	Amount            string  `json:"amount"`
	Currency          string  `json:"currency"`
	Status            string  `json:"status"`
	Description       string  `json:"description,omitempty"`
	FailureReason     *string `json:"failure_reason,omitempty"`
	RecordedAt        string  `json:"recorded_at"`
}

// TransactionListResponse wraps a transaction history.
type TransactionListResponse struct {
	AccountNumber string                `json:"account_number"`
	Items         []TransactionResponse `json:"items"`
	Total         int                   `json:"total"`
}
