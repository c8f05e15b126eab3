package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/moneyledger/moneyledger/internal/adapter/http/dto"
	"github.com/moneyledger/moneyledger/internal/adapter/http/middleware"
	"github.com/moneyledger/moneyledger/internal/domain"
	"github.com/moneyledger/moneyledger/internal/infrastructure/metrics"
	"github.com/moneyledger/moneyledger/internal/usecase"
)

// IdempotencyKeyHeader carries the caller-chosen idempotency key for
// transaction submissions.
const IdempotencyKeyHeader = "Idempotency-Key"

// TransferHandler handles transaction submission HTTP requests.
type TransferHandler struct {
	transferUC *usecase.TransferUseCase
	metrics    *metrics.Metrics
}

// NewTransferHandler creates a new TransferHandler. Metrics may be nil.
func NewTransferHandler(transferUC *usecase.TransferUseCase, m *metrics.Metrics) *TransferHandler {
	return &TransferHandler{transferUC: transferUC, metrics: m}
}

// Submit submits a transfer between two accounts.
func (h *TransferHandler) Submit(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	var req dto.SubmitTransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	h.countSubmitted()

	key := r.Header.Get(IdempotencyKeyHeader)
	result, err := h.transferUC.SubmitTransfer(r.Context(), req.ToUseCaseInput(key, user.ID))
	h.writeSubmitOutcome(w, result, err)
}

// Fund submits an initial-funds transaction from the caller's system
// account. The route is guarded by the funding role middleware.
func (h *TransferHandler) Fund(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	var req dto.FundAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	h.countSubmitted()

	key := r.Header.Get(IdempotencyKeyHeader)
	result, err := h.transferUC.FundAccount(r.Context(), req.ToUseCaseInput(key, user.ID))
	h.writeSubmitOutcome(w, result, err)
}

// writeSubmitOutcome translates a submission outcome into the response
// contract: 201 fresh completion, 200 replay, 200 still-processing,
// everything else through the domain error mapping.
func (h *TransferHandler) writeSubmitOutcome(w http.ResponseWriter, result *usecase.TransferResult, err error) {
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateInFlight) {
			writeJSON(w, http.StatusOK, dto.SubmitTransferResponse{
				Message: "Transaction is still processing",
			})
			return
		}

		h.countError(err)
		writeError(w, mapDomainError(err), "failed to submit transaction", err.Error())
		return
	}

	if result.Replayed {
		h.countReplayed()
		writeJSON(w, http.StatusOK, dto.SubmitTransferResponse{
			Message:     "Transaction already processed",
			Transaction: dto.TransactionFromDomain(result.Transaction),
		})
		return
	}

	h.countCompleted(result.Transaction)
	writeJSON(w, http.StatusCreated, dto.SubmitTransferResponse{
		Message:     "Transaction completed successfully",
		Transaction: dto.TransactionFromDomain(result.Transaction),
	})
}

// Get retrieves a transaction by ID.
func (h *TransferHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing transaction ID", "")
		return
	}

	txn, err := h.transferUC.GetTransaction(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get transaction", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.TransactionFromDomain(txn))
}

// ListByAccount lists transactions touching an account.
func (h *TransferHandler) ListByAccount(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	accountID := chi.URLParam(r, "id")
	if accountID == "" {
		writeError(w, http.StatusBadRequest, "missing account ID", "")
		return
	}

	txns, err := h.transferUC.ListTransactionsByAccount(r.Context(), usecase.ListTransactionsByAccountInput{
		AccountID:        accountID,
		RequestingUserID: user.ID,
		Limit:            parseIntQuery(r, "limit", 20),
		Offset:           parseIntQuery(r, "offset", 0),
	})
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list transactions", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.TransactionsFromDomain(txns))
}

func (h *TransferHandler) countSubmitted() {
	if h.metrics != nil {
		h.metrics.TransactionsSubmitted.Inc()
	}
}

func (h *TransferHandler) countCompleted(txn *domain.Transaction) {
	if h.metrics != nil {
		h.metrics.TransactionsCompleted.Inc()
		amount, _ := txn.Amount.Float64()
		h.metrics.TransactionAmount.Observe(amount)
	}
}

func (h *TransferHandler) countReplayed() {
	if h.metrics != nil {
		h.metrics.TransactionsReplayed.Inc()
	}
}

func (h *TransferHandler) countError(err error) {
	if h.metrics == nil {
		return
	}

	if errors.Is(err, domain.ErrPostingFailed) {
		h.metrics.TransactionsFailed.Inc()
	}
	h.metrics.TransactionErrors.WithLabelValues(errorReason(err)).Inc()
}

func errorReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrInsufficientFunds):
		return "insufficient_funds"
	case errors.Is(err, domain.ErrAccountInactive):
		return "account_inactive"
	case errors.Is(err, domain.ErrCurrencyMismatch):
		return "currency_mismatch"
	case errors.Is(err, domain.ErrNotAccountOwner):
		return "not_owner"
	case errors.Is(err, domain.ErrTerminalDuplicate):
		return "terminal_duplicate"
	case errors.Is(err, domain.ErrPostingFailed):
		return "posting_failed"
	case errors.Is(err, domain.ErrAccountNotFound):
		return "account_not_found"
	default:
		return "validation"
	}
}
