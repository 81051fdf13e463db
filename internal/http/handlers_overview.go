package http

import (
	"log/slog"
	"net/http"

	"teto/internal/auth"
	"teto/internal/charts"
	"teto/internal/core"
)

func (s *Server) handleOverview(w http.ResponseWriter, r *http.Request) {
	owner := auth.OwnerID(r.Context())
	year, month, err := parseYearMonth(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ov, err := s.ledger.Overview(r.Context(), owner, year, month)
	if err != nil {
		slog.ErrorContext(r.Context(), "Overview failed", "error", err, "year", year, "month", month)
		writeError(w, http.StatusInternalServerError, "could not load overview")
		return
	}
	writeJSON(w, http.StatusOK, toOverviewJSON(ov))
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	owner := auth.OwnerID(r.Context())

	cats, err := s.ledger.Categories(r.Context(), owner)
	if err != nil {
		slog.ErrorContext(r.Context(), "Categories failed", "error", err)
		writeError(w, http.StatusInternalServerError, "could not load categories")
		return
	}
	writeJSON(w, http.StatusOK, cats)
}

func (s *Server) handleMonthlyReport(w http.ResponseWriter, r *http.Request) {
	owner := auth.OwnerID(r.Context())

	buckets, err := s.ledger.MonthlyReport(r.Context(), owner)
	if err != nil {
		slog.ErrorContext(r.Context(), "Monthly report failed", "error", err)
		writeError(w, http.StatusInternalServerError, "could not load report")
		return
	}
	writeJSON(w, http.StatusOK, toMonthBucketsJSON(buckets))
}

// handleMonthlyChart renders the income/expense bar chart for the whole
// history. An empty history yields 204, not a broken image.
func (s *Server) handleMonthlyChart(w http.ResponseWriter, r *http.Request) {
	owner := auth.OwnerID(r.Context())

	buckets, err := s.ledger.MonthlyReport(r.Context(), owner)
	if err != nil {
		slog.ErrorContext(r.Context(), "Monthly chart failed", "error", err)
		writeError(w, http.StatusInternalServerError, "could not load report")
		return
	}
	png, err := charts.MonthlyFlowPNG(buckets)
	if err != nil {
		slog.ErrorContext(r.Context(), "Chart render failed", "error", err)
		writeError(w, http.StatusInternalServerError, "could not render chart")
		return
	}
	if png == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	_, _ = w.Write(png)
}

// handleCategoryChart renders the category breakdown pie for the selected
// month.
func (s *Server) handleCategoryChart(w http.ResponseWriter, r *http.Request) {
	owner := auth.OwnerID(r.Context())
	year, month, err := parseYearMonth(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	txs, err := s.ledger.ListTransactions(r.Context(), owner, year, month)
	if err != nil {
		slog.ErrorContext(r.Context(), "Category chart failed", "error", err)
		writeError(w, http.StatusInternalServerError, "could not load transactions")
		return
	}
	png, err := charts.CategoryBreakdownPNG(core.SpendByCategory(txs))
	if err != nil {
		slog.ErrorContext(r.Context(), "Chart render failed", "error", err)
		writeError(w, http.StatusInternalServerError, "could not render chart")
		return
	}
	if png == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	_, _ = w.Write(png)
}
