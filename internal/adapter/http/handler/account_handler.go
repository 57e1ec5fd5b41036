package handler

import (
	"time"

	"ledger-service/internal/adapter/http/dto"
	"ledger-service/internal/core/domain"
	"ledger-service/internal/core/ports"
	"ledger-service/pkg/apperror"
	"ledger-service/pkg/response"

	"github.com/gin-gonic/gin"
)

// AccountHandler handles account lifecycle endpoints.
type AccountHandler struct {
	accountSvc ports.AccountService
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(accountSvc ports.AccountService) *AccountHandler {
	return &AccountHandler{accountSvc: accountSvc}
}

// Create handles POST /api/v1/accounts.
func (h *AccountHandler) Create(c *gin.Context) {
	var req dto.CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	if req.InitialBalance == "" {
		req.InitialBalance = "0"
	}
	balance, err := domain.MoneyFromString(req.InitialBalance, domain.DefaultCurrency)
	if err != nil {
		response.Error(c, apperror.ErrInvalidAmount("initial balance is not a valid decimal"))
		return
	}

	account, err := h.accountSvc.Create(c.Request.Context(), ports.CreateAccountRequest{
		HolderName:     req.HolderName,
		InitialBalance: balance,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, toAccountResponse(account))
}

// Get handles GET /api/v1/accounts/:accountNumber.
func (h *AccountHandler) Get(c *gin.Context) {
	account, err := h.accountSvc.Get(c.Request.Context(), c.Param("accountNumber"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, toAccountResponse(account))
}

// List handles GET /api/v1/accounts.
func (h *AccountHandler) List(c *gin.Context) {
	accounts, err := h.accountSvc.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]dto.AccountResponse, 0, len(accounts))
	for i := range accounts {
		items = append(items, toAccountResponse(&accounts[i]))
	}
	response.OK(c, items)
}

// GetBalance handles GET /api/v1/accounts/:accountNumber/balance.
func (h *AccountHandler) GetBalance(c *gin.Context) {
	accountNumber := c.Param("accountNumber")
	balance, err := h.accountSvc.Balance(c.Request.Context(), accountNumber)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.BalanceResponse{
		AccountNumber: accountNumber,
		Balance:       balance.Amount.String(),
		Currency:      balance.Currency,
	})
}

// UpdateStatus handles PATCH /api/v1/accounts/:accountNumber/status.
func (h *AccountHandler) UpdateStatus(c *gin.Context) {
	var req dto.UpdateAccountStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	account, err := h.accountSvc.UpdateStatus(
		c.Request.Context(),
		c.Param("accountNumber"),
		domain.AccountStatus(req.Status),
	)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, toAccountResponse(account))
}

// toAccountResponse converts domain.Account to DTO.
func toAccountResponse(a *domain.Account) dto.AccountResponse {
	return dto.AccountResponse{
		AccountNumber: a.AccountNumber,
		HolderName:    a.HolderName,
		Balance:       a.Balance.Amount.String(),
		Currency:      a.Currency,
		Status:        string(a.Status),
		CreatedAt:     a.CreatedAt.Format(time.RFC3339),
		UpdatedAt:     a.UpdatedAt.Format(time.RFC3339),
	}
}
