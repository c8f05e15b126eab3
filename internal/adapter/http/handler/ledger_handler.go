package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/moneyledger/moneyledger/internal/adapter/http/dto"
	"github.com/moneyledger/moneyledger/internal/adapter/http/middleware"
	"github.com/moneyledger/moneyledger/internal/infrastructure/metrics"
	"github.com/moneyledger/moneyledger/internal/usecase"
)

// LedgerHandler handles read-side ledger HTTP requests.
type LedgerHandler struct {
	ledgerUC *usecase.LedgerUseCase
	metrics  *metrics.Metrics
}

// NewLedgerHandler creates a new LedgerHandler. Metrics may be nil.
func NewLedgerHandler(ledgerUC *usecase.LedgerUseCase, m *metrics.Metrics) *LedgerHandler {
	return &LedgerHandler{ledgerUC: ledgerUC, metrics: m}
}

// Balance returns the derived balance of an owned account.
func (h *LedgerHandler) Balance(w http.ResponseWriter, r *http.Request) {
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

	if h.metrics != nil {
		h.metrics.BalanceQueries.Inc()
	}

	balance, err := h.ledgerUC.BalanceOf(r.Context(), usecase.BalanceOfInput{
		AccountID:        accountID,
		RequestingUserID: user.ID,
	})
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get balance", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.BalanceResponse{
		AccountID: accountID,
		Balance:   balance,
	})
}

// ListEntries lists the posting history of an owned account.
func (h *LedgerHandler) ListEntries(w http.ResponseWriter, r *http.Request) {
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

	postings, err := h.ledgerUC.ListPostings(r.Context(), usecase.ListPostingsInput{
		AccountID:        accountID,
		RequestingUserID: user.ID,
		Limit:            parseIntQuery(r, "limit", 20),
		Offset:           parseIntQuery(r, "offset", 0),
	})
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list entries", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.PostingsFromDomain(postings))
}

// ListByTransaction returns the posting pair of a transaction.
func (h *LedgerHandler) ListByTransaction(w http.ResponseWriter, r *http.Request) {
	transactionID := chi.URLParam(r, "id")
	if transactionID == "" {
		writeError(w, http.StatusBadRequest, "missing transaction ID", "")
		return
	}

	postings, err := h.ledgerUC.GetPostingsByTransaction(r.Context(), transactionID)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list postings", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.PostingsFromDomain(postings))
}

// Consistency runs the ledger-wide debit/credit balance check.
func (h *LedgerHandler) Consistency(w http.ResponseWriter, r *http.Request) {
	report, err := h.ledgerUC.CheckConsistency(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "consistency check failed", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ConsistencyFromReport(report))
}
