package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/moneyledger/moneyledger/internal/adapter/http/dto"
	"github.com/moneyledger/moneyledger/internal/adapter/http/middleware"
	"github.com/moneyledger/moneyledger/internal/domain"
	"github.com/moneyledger/moneyledger/internal/usecase"
	"github.com/moneyledger/moneyledger/internal/usecase/mocks"
)

type transferHandlerFixture struct {
	accRepo     *mocks.MockAccountRepository
	txnRepo     *mocks.MockTransactionRepository
	postingRepo *mocks.MockPostingRepository
	handler     *TransferHandler
}

func newTransferHandlerFixture() *transferHandlerFixture {
	f := &transferHandlerFixture{
		accRepo:     mocks.NewMockAccountRepository(),
		txnRepo:     mocks.NewMockTransactionRepository(),
		postingRepo: mocks.NewMockPostingRepository(),
	}

	uc := usecase.NewTransferUseCase(usecase.TransferUseCaseConfig{
		TxManager:       mocks.NewMockTransactionManager(),
		AccountRepo:     f.accRepo,
		TransactionRepo: f.txnRepo,
		PostingRepo:     f.postingRepo,
		OutboxRepo:      mocks.NewMockOutboxRepository(),
		IDGen:           mocks.NewMockIDGenerator(),
		Logger:          zerolog.Nop(),
	})
	f.handler = NewTransferHandler(uc, nil)

	return f
}

func (f *transferHandlerFixture) seedAccount(id, userID string, opening int64) {
	ctx := context.Background()
	f.accRepo.Create(ctx, &domain.Account{
		ID:       id,
		UserID:   userID,
		Currency: "INR",
		Status:   domain.AccountStatusActive,
	})
	if opening > 0 {
		f.postingRepo.Create(ctx, nil, &domain.Posting{
			ID:        "seed-" + id,
			AccountID: id,
			Type:      domain.EntryTypeCredit,
			Amount:    decimal.NewFromInt(opening),
		})
	}
}

func authedRequest(method, target string, body []byte, user *domain.User) *http.Request {
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, target, bytes.NewReader(body))
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	ctx := context.WithValue(req.Context(), middleware.UserContextKey, user)
	return req.WithContext(ctx)
}

func withURLParam(req *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestTransferHandler_Submit_Success(t *testing.T) {
	f := newTransferHandlerFixture()
	f.seedAccount("acc-1", "user-1", 500)
	f.seedAccount("acc-2", "user-2", 0)

	body, _ := json.Marshal(dto.SubmitTransferRequest{
		FromAccountID: "acc-1",
		ToAccountID:   "acc-2",
		Amount:        decimal.NewFromInt(150),
	})

	req := authedRequest(http.MethodPost, "/api/v1/transactions", body, &domain.User{ID: "user-1"})
	req.Header.Set(IdempotencyKeyHeader, "key-1")
	rec := httptest.NewRecorder()

	f.handler.Submit(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp dto.SubmitTransferResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Message != "Transaction completed successfully" {
		t.Fatalf("unexpected message %q", resp.Message)
	}
	if resp.Transaction == nil || resp.Transaction.Status != domain.TransactionStatusCompleted {
		t.Fatalf("expected completed transaction, got %+v", resp.Transaction)
	}
}

func TestTransferHandler_Submit_BodyIdempotencyKey(t *testing.T) {
	f := newTransferHandlerFixture()
	f.seedAccount("acc-1", "user-1", 500)
	f.seedAccount("acc-2", "user-2", 0)

	body, _ := json.Marshal(dto.SubmitTransferRequest{
		FromAccountID:  "acc-1",
		ToAccountID:    "acc-2",
		Amount:         decimal.NewFromInt(100),
		IdempotencyKey: "key-in-body",
	})

	submit := func() *httptest.ResponseRecorder {
		// No Idempotency-Key header; the body field carries the key.
		req := authedRequest(http.MethodPost, "/api/v1/transactions", body, &domain.User{ID: "user-1"})
		rec := httptest.NewRecorder()
		f.handler.Submit(rec, req)
		return rec
	}

	if rec := submit(); rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	// The body key must drive idempotency just like the header.
	if rec := submit(); rec.Code != http.StatusOK {
		t.Fatalf("replay: expected 200, got %d", rec.Code)
	}
}

func TestTransferHandler_Submit_Replay(t *testing.T) {
	f := newTransferHandlerFixture()
	f.seedAccount("acc-1", "user-1", 500)
	f.seedAccount("acc-2", "user-2", 0)

	body, _ := json.Marshal(dto.SubmitTransferRequest{
		FromAccountID: "acc-1",
		ToAccountID:   "acc-2",
		Amount:        decimal.NewFromInt(150),
	})

	submit := func() *httptest.ResponseRecorder {
		req := authedRequest(http.MethodPost, "/api/v1/transactions", body, &domain.User{ID: "user-1"})
		req.Header.Set(IdempotencyKeyHeader, "key-replay")
		rec := httptest.NewRecorder()
		f.handler.Submit(rec, req)
		return rec
	}

	if rec := submit(); rec.Code != http.StatusCreated {
		t.Fatalf("first submission: expected 201, got %d", rec.Code)
	}

	rec := submit()
	if rec.Code != http.StatusOK {
		t.Fatalf("replay: expected 200, got %d", rec.Code)
	}

	var resp dto.SubmitTransferResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Message != "Transaction already processed" {
		t.Fatalf("unexpected message %q", resp.Message)
	}
}

func TestTransferHandler_Submit_InFlight(t *testing.T) {
	f := newTransferHandlerFixture()
	f.seedAccount("acc-1", "user-1", 500)
	f.seedAccount("acc-2", "user-2", 0)

	pending := &domain.Transaction{
		ID:             "txn-pending",
		FromAccountID:  "acc-1",
		ToAccountID:    "acc-2",
		Amount:         decimal.NewFromInt(10),
		IdempotencyKey: "key-pending",
		Status:         domain.TransactionStatusPending,
	}
	f.txnRepo.GetByIdempotencyKeyFunc = func(ctx context.Context, key string) (*domain.Transaction, error) {
		return pending, nil
	}

	body, _ := json.Marshal(dto.SubmitTransferRequest{
		FromAccountID: "acc-1",
		ToAccountID:   "acc-2",
		Amount:        decimal.NewFromInt(10),
	})

	req := authedRequest(http.MethodPost, "/api/v1/transactions", body, &domain.User{ID: "user-1"})
	req.Header.Set(IdempotencyKeyHeader, "key-pending")
	rec := httptest.NewRecorder()

	f.handler.Submit(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp dto.SubmitTransferResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Message != "Transaction is still processing" {
		t.Fatalf("unexpected message %q", resp.Message)
	}
	if resp.Transaction != nil {
		t.Fatalf("in-flight response must not carry a transaction")
	}
}

func TestTransferHandler_Submit_InsufficientFunds(t *testing.T) {
	f := newTransferHandlerFixture()
	f.seedAccount("acc-1", "user-1", 50)
	f.seedAccount("acc-2", "user-2", 0)

	body, _ := json.Marshal(dto.SubmitTransferRequest{
		FromAccountID: "acc-1",
		ToAccountID:   "acc-2",
		Amount:        decimal.NewFromInt(100),
	})

	req := authedRequest(http.MethodPost, "/api/v1/transactions", body, &domain.User{ID: "user-1"})
	req.Header.Set(IdempotencyKeyHeader, "key-poor")
	rec := httptest.NewRecorder()

	f.handler.Submit(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestTransferHandler_Submit_MissingUser(t *testing.T) {
	f := newTransferHandlerFixture()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/transactions", bytes.NewBufferString(`{}`))
	rec := httptest.NewRecorder()

	f.handler.Submit(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestTransferHandler_Submit_InvalidBody(t *testing.T) {
	f := newTransferHandlerFixture()

	req := authedRequest(http.MethodPost, "/api/v1/transactions", []byte("{bad json"), &domain.User{ID: "user-1"})
	rec := httptest.NewRecorder()

	f.handler.Submit(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestTransferHandler_Fund_Success(t *testing.T) {
	f := newTransferHandlerFixture()
	f.seedAccount("acc-sys", "user-sys", 0)
	f.seedAccount("acc-2", "user-2", 0)

	body, _ := json.Marshal(dto.FundAccountRequest{
		ToAccountID: "acc-2",
		Amount:      decimal.NewFromInt(1000),
	})

	req := authedRequest(http.MethodPost, "/api/v1/transactions/system/initial-funds", body,
		&domain.User{ID: "user-sys", Role: domain.RoleSystem})
	req.Header.Set(IdempotencyKeyHeader, "key-fund")
	rec := httptest.NewRecorder()

	f.handler.Fund(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp dto.SubmitTransferResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Transaction.ToAccountID != "acc-2" {
		t.Fatalf("expected credit to acc-2, got %+v", resp.Transaction)
	}
}

func TestTransferHandler_Get_NotFound(t *testing.T) {
	f := newTransferHandlerFixture()

	req := withURLParam(httptest.NewRequest(http.MethodGet, "/api/v1/transactions/missing", nil), "id", "missing")
	rec := httptest.NewRecorder()

	f.handler.Get(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestTransferHandler_ListByAccount_NotOwner(t *testing.T) {
	f := newTransferHandlerFixture()
	f.seedAccount("acc-1", "user-1", 0)

	req := authedRequest(http.MethodGet, "/api/v1/accounts/acc-1/transactions", nil, &domain.User{ID: "user-2"})
	req = withURLParam(req, "id", "acc-1")
	rec := httptest.NewRecorder()

	f.handler.ListByAccount(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}
