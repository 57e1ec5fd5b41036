package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"ledger-service/internal/adapter/http/dto"
	"ledger-service/internal/core/domain"
	"ledger-service/internal/core/ports"
	"ledger-service/internal/core/ports/mocks"
	"ledger-service/pkg/apperror"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func sampleAccount(number string) *domain.Account {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	return &domain.Account{
		ID:            1,
		AccountNumber: number,
		HolderName:    "Alice",
		Balance:       domain.NewMoney(decimal.RequireFromString("300.00"), "USD"),
		Currency:      "USD",
		Status:        domain.AccountStatusActive,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func postJSON(t *testing.T, handler gin.HandlerFunc, body any, params ...gin.Param) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(raw))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Params = params

	handler(c)
	return w
}

func getRequest(handler gin.HandlerFunc, params ...gin.Param) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c.Params = params

	handler(c)
	return w
}

// --- Account Handler Tests ---

func TestCreateAccount_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockSvc := mocks.NewMockAccountService(ctrl)
	h := NewAccountHandler(mockSvc)

	mockSvc.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, req ports.CreateAccountRequest) (*domain.Account, error) {
			assert.Equal(t, "Alice", req.HolderName)
			assert.True(t, req.InitialBalance.Amount.Equal(decimal.RequireFromString("300.00")))
			return sampleAccount("1234567890"), nil
		})

	w := postJSON(t, h.Create, dto.CreateAccountRequest{
		HolderName:     "Alice",
		InitialBalance: "300.00",
	})

	assert.Equal(t, http.StatusCreated, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "1234567890", data["account_number"])
	assert.Equal(t, "300", data["balance"])
	assert.Equal(t, "ACTIVE", data["status"])
}

func TestCreateAccount_DefaultsToZeroBalance(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockSvc := mocks.NewMockAccountService(ctrl)
	h := NewAccountHandler(mockSvc)

	mockSvc.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, req ports.CreateAccountRequest) (*domain.Account, error) {
			assert.True(t, req.InitialBalance.Amount.IsZero())
			acc := sampleAccount("1234567890")
			acc.Balance = domain.Zero("USD")
			return acc, nil
		})

	w := postJSON(t, h.Create, map[string]string{"holder_name": "Bob"})
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestCreateAccount_ValidationError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockSvc := mocks.NewMockAccountService(ctrl)
	h := NewAccountHandler(mockSvc)

	// Missing holder_name => binding error
	w := postJSON(t, h.Create, map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateAccount_NegativeBalanceRejectedByBinding(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockSvc := mocks.NewMockAccountService(ctrl)
	h := NewAccountHandler(mockSvc)

	w := postJSON(t, h.Create, dto.CreateAccountRequest{
		HolderName:     "Alice",
		InitialBalance: "-10.00",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateAccount_GenerationExhausted(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockSvc := mocks.NewMockAccountService(ctrl)
	h := NewAccountHandler(mockSvc)

	mockSvc.EXPECT().Create(gomock.Any(), gomock.Any()).
		Return(nil, apperror.ErrAccountNumberExhausted(5))

	w := postJSON(t, h.Create, dto.CreateAccountRequest{HolderName: "Alice"})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "ACC_003", resp["error_code"])
}

func TestGetAccount_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockSvc := mocks.NewMockAccountService(ctrl)
	h := NewAccountHandler(mockSvc)

	mockSvc.EXPECT().Get(gomock.Any(), "1234567890").Return(sampleAccount("1234567890"), nil)

	w := getRequest(h.Get, gin.Param{Key: "accountNumber", Value: "1234567890"})
	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "Alice", data["holder_name"])
}

func TestGetAccount_NotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockSvc := mocks.NewMockAccountService(ctrl)
	h := NewAccountHandler(mockSvc)

	mockSvc.EXPECT().Get(gomock.Any(), "0000000000").
		Return(nil, apperror.ErrAccountNotFound("0000000000"))

	w := getRequest(h.Get, gin.Param{Key: "accountNumber", Value: "0000000000"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "ACC_001", resp["error_code"])
}

func TestGetBalance_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockSvc := mocks.NewMockAccountService(ctrl)
	h := NewAccountHandler(mockSvc)

	mockSvc.EXPECT().Balance(gomock.Any(), "1234567890").
		Return(domain.NewMoney(decimal.RequireFromString("180.50"), "USD"), nil)

	w := getRequest(h.GetBalance, gin.Param{Key: "accountNumber", Value: "1234567890"})
	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "180.5", data["balance"])
	assert.Equal(t, "USD", data["currency"])
}

func TestUpdateAccountStatus_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockSvc := mocks.NewMockAccountService(ctrl)
	h := NewAccountHandler(mockSvc)

	inactive := sampleAccount("1234567890")
	inactive.Status = domain.AccountStatusInactive

	mockSvc.EXPECT().UpdateStatus(gomock.Any(), "1234567890", domain.AccountStatusInactive).
		Return(inactive, nil)

	w := postJSON(t, h.UpdateStatus,
		dto.UpdateAccountStatusRequest{Status: "INACTIVE"},
		gin.Param{Key: "accountNumber", Value: "1234567890"})

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "INACTIVE", data["status"])
}

func TestUpdateAccountStatus_InvalidStatus(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockSvc := mocks.NewMockAccountService(ctrl)
	h := NewAccountHandler(mockSvc)

	w := postJSON(t, h.UpdateStatus,
		dto.UpdateAccountStatusRequest{Status: "FROZEN"},
		gin.Param{Key: "accountNumber", Value: "1234567890"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// --- Transfer Handler Tests ---

func TestTransfer_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockSvc := mocks.NewMockTransferService(ctrl)
	h := NewTransferHandler(mockSvc)

	txnID := uuid.New().String()
	mockSvc.EXPECT().Transfer(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, req ports.TransferRequest) (*domain.Transaction, error) {
			assert.Equal(t, "1111111111", req.FromAccountNumber)
			assert.Equal(t, "2222222222", req.ToAccountNumber)
			assert.True(t, req.Amount.Amount.Equal(decimal.RequireFromString("120.00")))
			return &domain.Transaction{
				ID:                9,
				TransactionID:     txnID,
				FromAccountNumber: req.FromAccountNumber,
				ToAccountNumber:   req.ToAccountNumber,
				Amount:            req.Amount,
				Currency:          "USD",
				Status:            domain.TransactionStatusSuccess,
				Description:       req.Description,
				RecordedAt:        time.Now().UTC(),
			}, nil
		})

	w := postJSON(t, h.Transfer, dto.TransferRequest{
		FromAccountNumber: "1111111111",
		ToAccountNumber:   "2222222222",
		Amount:            "120.00",
		Description:       "rent",
	})

	assert.Equal(t, http.StatusCreated, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, txnID, data["transaction_id"])
	assert.Equal(t, "SUCCESS", data["status"])
	assert.Equal(t, "120", data["amount"])
}

func TestTransfer_MalformedAccountNumber(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockSvc := mocks.NewMockTransferService(ctrl)
	h := NewTransferHandler(mockSvc)

	w := postJSON(t, h.Transfer, dto.TransferRequest{
		FromAccountNumber: "12345",
		ToAccountNumber:   "2222222222",
		Amount:            "10.00",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTransfer_MalformedAmount(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockSvc := mocks.NewMockTransferService(ctrl)
	h := NewTransferHandler(mockSvc)

	w := postJSON(t, h.Transfer, dto.TransferRequest{
		FromAccountNumber: "1111111111",
		ToAccountNumber:   "2222222222",
		Amount:            "ten dollars",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTransfer_InsufficientFunds(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockSvc := mocks.NewMockTransferService(ctrl)
	h := NewTransferHandler(mockSvc)

	balance := domain.NewMoney(decimal.RequireFromString("100.00"), "USD")
	required := domain.NewMoney(decimal.RequireFromString("250.00"), "USD")
	mockSvc.EXPECT().Transfer(gomock.Any(), gomock.Any()).
		Return(nil, apperror.ErrInsufficientFunds("1111111111", balance, required))

	w := postJSON(t, h.Transfer, dto.TransferRequest{
		FromAccountNumber: "1111111111",
		ToAccountNumber:   "2222222222",
		Amount:            "250.00",
	})

	assert.Equal(t, http.StatusPaymentRequired, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "LED_002", resp["error_code"])
}

func TestHistory_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockSvc := mocks.NewMockTransferService(ctrl)
	h := NewTransferHandler(mockSvc)

	reason := "insufficient funds in account 1111111111"
	mockSvc.EXPECT().History(gomock.Any(), "1111111111").Return([]domain.Transaction{
		{
			TransactionID:     "t-1",
			FromAccountNumber: "1111111111",
			ToAccountNumber:   "2222222222",
			Amount:            domain.NewMoney(decimal.RequireFromString("50.00"), "USD"),
			Currency:          "USD",
			Status:            domain.TransactionStatusSuccess,
			RecordedAt:        time.Now().UTC(),
		},
		{
			TransactionID:     "t-2",
			FromAccountNumber: "1111111111",
			ToAccountNumber:   "2222222222",
			Amount:            domain.NewMoney(decimal.RequireFromString("500.00"), "USD"),
			Currency:          "USD",
			Status:            domain.TransactionStatusFailed,
			FailureReason:     &reason,
			RecordedAt:        time.Now().UTC(),
		},
	}, nil)

	w := getRequest(h.History, gin.Param{Key: "accountNumber", Value: "1111111111"})
	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, float64(2), data["total"])
	items := data["items"].([]interface{})
	failed := items[1].(map[string]interface{})
	assert.Equal(t, "FAILED", failed["status"])
	assert.Equal(t, reason, failed["failure_reason"])
}

func TestHistory_Empty(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockSvc := mocks.NewMockTransferService(ctrl)
	h := NewTransferHandler(mockSvc)

	mockSvc.EXPECT().History(gomock.Any(), "3333333333").Return(nil, nil)

	w := getRequest(h.History, gin.Param{Key: "accountNumber", Value: "3333333333"})
	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, float64(0), data["total"])
}

// --- Health Handler Tests ---

type fakeChecker struct {
	name string
	err  error
}

func (f fakeChecker) Ping(context.Context) error { return f.err }
func (f fakeChecker) Name() string               { return f.name }

func TestHealthCheck_AllHealthy(t *testing.T) {
	w := getRequest(HealthCheck(
		fakeChecker{name: "postgresql"},
		fakeChecker{name: "redis"},
	))
	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp["status"])
}

func TestHealthCheck_Degraded(t *testing.T) {
	w := getRequest(HealthCheck(
		fakeChecker{name: "postgresql"},
		fakeChecker{name: "redis", err: errors.New("connection refused")},
	))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "degraded", resp["status"])
}
