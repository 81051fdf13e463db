package http

import (
	"log/slog"
	"net/http"

	"teto/internal/auth"
	"teto/internal/core"
)

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	owner := auth.OwnerID(r.Context())

	settings, err := s.ledger.GetSettings(r.Context(), owner)
	if err != nil {
		slog.ErrorContext(r.Context(), "Get settings failed", "error", err)
		writeError(w, http.StatusInternalServerError, "could not load settings")
		return
	}
	writeJSON(w, http.StatusOK, toSettingsJSON(settings))
}

// handleSaveSettings merges the owner's calibration values. Fields are
// decimal strings; an omitted or empty field keeps its current value, and
// zero is an ordinary value, not a sentinel.
func (s *Server) handleSaveSettings(w http.ResponseWriter, r *http.Request) {
	owner := auth.OwnerID(r.Context())

	var req settingsJSON
	if !readJSON(w, r, &req) {
		return
	}

	settings, err := s.ledger.GetSettings(r.Context(), owner)
	if err != nil {
		slog.ErrorContext(r.Context(), "Get settings failed", "error", err)
		writeError(w, http.StatusInternalServerError, "could not load settings")
		return
	}
	settings.OwnerID = owner
	for _, f := range []struct {
		raw  string
		dest *core.Money
	}{
		{req.InitialBalance, &settings.InitialBalance},
		{req.InitialCreditBill, &settings.InitialCreditBill},
		{req.TotalCreditLimit, &settings.TotalCreditLimit},
	} {
		if f.raw == "" {
			continue
		}
		m, err := parseLimit(f.raw)
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, core.ErrInvalidAmount.Error())
			return
		}
		*f.dest = m
	}

	if err := s.ledger.SaveSettings(r.Context(), settings); err != nil {
		slog.ErrorContext(r.Context(), "Save settings failed", "error", err)
		writeError(w, http.StatusInternalServerError, "could not save settings")
		return
	}
	writeJSON(w, http.StatusOK, toSettingsJSON(settings))
}

// handleReset wipes every record collection for the owner. The account and
// its credentials survive.
func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	owner := auth.OwnerID(r.Context())

	if err := s.ledger.ResetAll(r.Context(), owner); err != nil {
		slog.ErrorContext(r.Context(), "Reset failed", "error", err)
		writeError(w, http.StatusInternalServerError, "could not reset data")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
