package http

import (
	"log/slog"
	"net/http"
	"strings"

	"teto/internal/auth"
	"teto/internal/services"
)

func (s *Server) handleListBudgets(w http.ResponseWriter, r *http.Request) {
	owner := auth.OwnerID(r.Context())

	year, month := 0, 0
	if r.URL.Query().Get("year") != "" || r.URL.Query().Get("month") != "" {
		var err error
		if year, month, err = parseYearMonth(r); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	budgets, err := s.ledger.ListBudgets(r.Context(), owner, year, month)
	if err != nil {
		slog.ErrorContext(r.Context(), "List budgets failed", "error", err)
		writeError(w, http.StatusInternalServerError, "could not load budgets")
		return
	}
	out := make([]budgetJSON, 0, len(budgets))
	for _, b := range budgets {
		out = append(out, toBudgetJSON(b))
	}
	writeJSON(w, http.StatusOK, out)
}

// handleSetBudget upserts the ceiling for the (category, month, year) slot.
func (s *Server) handleSetBudget(w http.ResponseWriter, r *http.Request) {
	owner := auth.OwnerID(r.Context())

	var req budgetRequest
	if !readJSON(w, r, &req) {
		return
	}
	b, err := req.toCore(owner)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	saved, err := s.ledger.SetBudget(r.Context(), b)
	if err != nil {
		slog.ErrorContext(r.Context(), "Set budget failed", "error", err)
		writeError(w, http.StatusInternalServerError, "could not save budget")
		return
	}
	writeJSON(w, http.StatusOK, toBudgetJSON(saved))
}

func (s *Server) handleDeleteBudget(w http.ResponseWriter, r *http.Request) {
	owner := auth.OwnerID(r.Context())
	id := strings.TrimSpace(r.PathValue("id"))
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing budget id")
		return
	}

	if err := s.ledger.DeleteBudget(r.Context(), owner, id); err != nil {
		if services.IsNotFound(err) {
			writeError(w, http.StatusNotFound, "budget not found")
			return
		}
		slog.ErrorContext(r.Context(), "Delete budget failed", "error", err, "id", id)
		writeError(w, http.StatusInternalServerError, "could not delete budget")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListInvestments(w http.ResponseWriter, r *http.Request) {
	owner := auth.OwnerID(r.Context())

	report, err := s.ledger.Investments(r.Context(), owner)
	if err != nil {
		slog.ErrorContext(r.Context(), "List investments failed", "error", err)
		writeError(w, http.StatusInternalServerError, "could not load investments")
		return
	}
	entries := make([]investmentJSON, 0, len(report.Entries))
	for _, e := range report.Entries {
		entries = append(entries, toInvestmentJSON(e))
	}
	writeJSON(w, http.StatusOK, struct {
		Entries   []investmentJSON `json:"entries"`
		Patrimony string           `json:"patrimony"`
	}{Entries: entries, Patrimony: report.Patrimony.String()})
}

func (s *Server) handleAddInvestment(w http.ResponseWriter, r *http.Request) {
	owner := auth.OwnerID(r.Context())

	var req investmentRequest
	if !readJSON(w, r, &req) {
		return
	}
	e, err := req.toCore(owner)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	saved, err := s.ledger.AddInvestment(r.Context(), e)
	if err != nil {
		slog.ErrorContext(r.Context(), "Add investment failed", "error", err)
		writeError(w, http.StatusInternalServerError, "could not save investment")
		return
	}
	writeJSON(w, http.StatusCreated, toInvestmentJSON(saved))
}

func (s *Server) handleDeleteInvestment(w http.ResponseWriter, r *http.Request) {
	owner := auth.OwnerID(r.Context())
	id := strings.TrimSpace(r.PathValue("id"))
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing investment id")
		return
	}

	if err := s.ledger.DeleteInvestment(r.Context(), owner, id); err != nil {
		if services.IsNotFound(err) {
			writeError(w, http.StatusNotFound, "investment not found")
			return
		}
		slog.ErrorContext(r.Context(), "Delete investment failed", "error", err, "id", id)
		writeError(w, http.StatusInternalServerError, "could not delete investment")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
