package http

import (
	"log/slog"
	"net/http"
	"strings"

	"teto/internal/auth"
	"teto/internal/core"
	"teto/internal/services"
)

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	owner := auth.OwnerID(r.Context())

	year, month := 0, 0
	if r.URL.Query().Get("year") != "" || r.URL.Query().Get("month") != "" {
		var err error
		if year, month, err = parseYearMonth(r); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	txs, err := s.ledger.ListTransactions(r.Context(), owner, year, month)
	if err != nil {
		slog.ErrorContext(r.Context(), "List transactions failed", "error", err)
		writeError(w, http.StatusInternalServerError, "could not load transactions")
		return
	}
	writeJSON(w, http.StatusOK, toTransactionListJSON(txs))
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	owner := auth.OwnerID(r.Context())

	var req transactionRequest
	if !readJSON(w, r, &req) {
		return
	}
	t, err := req.toCore(owner)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	created, err := s.ledger.CreateTransaction(r.Context(), t)
	if err != nil {
		slog.ErrorContext(r.Context(), "Create transaction failed",
			"error", err, "written", len(created))
		writeError(w, http.StatusInternalServerError, "could not save transaction")
		return
	}
	writeJSON(w, http.StatusCreated, toTransactionListJSON(created))
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	owner := auth.OwnerID(r.Context())
	id := strings.TrimSpace(r.PathValue("id"))
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing transaction id")
		return
	}

	var req transactionRequest
	if !readJSON(w, r, &req) {
		return
	}
	t, err := req.toCore(owner)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	t.ID = id

	if err := s.ledger.UpdateTransaction(r.Context(), t); err != nil {
		if services.IsNotFound(err) {
			writeError(w, http.StatusNotFound, "transaction not found")
			return
		}
		slog.ErrorContext(r.Context(), "Update transaction failed", "error", err, "id", id)
		writeError(w, http.StatusInternalServerError, "could not update transaction")
		return
	}
	writeJSON(w, http.StatusOK, toTransactionJSON(t))
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	owner := auth.OwnerID(r.Context())
	id := strings.TrimSpace(r.PathValue("id"))
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing transaction id")
		return
	}

	if err := s.ledger.DeleteTransaction(r.Context(), owner, id); err != nil {
		if services.IsNotFound(err) {
			writeError(w, http.StatusNotFound, "transaction not found")
			return
		}
		slog.ErrorContext(r.Context(), "Delete transaction failed", "error", err, "id", id)
		writeError(w, http.StatusInternalServerError, "could not delete transaction")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handlePayBill records a credit-bill settlement for the given amount.
func (s *Server) handlePayBill(w http.ResponseWriter, r *http.Request) {
	owner := auth.OwnerID(r.Context())

	var req struct {
		Amount string `json:"amount"`
		Date   string `json:"date"`
	}
	if !readJSON(w, r, &req) {
		return
	}
	amount, err := parseAmount(req.Amount)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, core.ErrInvalidAmount.Error())
		return
	}
	date, err := parseDate(req.Date)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid date, want YYYY-MM-DD")
		return
	}

	t, err := s.ledger.PayBill(r.Context(), owner, amount, date)
	if err != nil {
		slog.ErrorContext(r.Context(), "Bill payment failed", "error", err)
		writeError(w, http.StatusInternalServerError, "could not record bill payment")
		return
	}
	writeJSON(w, http.StatusCreated, toTransactionJSON(t))
}
