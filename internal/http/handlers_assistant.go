package http

import (
	"encoding/base64"
	"log/slog"
	"net/http"
	"time"

	"teto/internal/auth"
)

type assistantRequest struct {
	Text string `json:"text"`
	// Image is an optional base64-encoded receipt photo.
	Image string `json:"image"`
}

type candidateJSON struct {
	Description   string `json:"description"`
	Amount        string `json:"amount"`
	Category      string `json:"category"`
	Type          string `json:"type"`
	PaymentMethod string `json:"payment_method"`
	IsRecurring   bool   `json:"is_recurring"`
	Date          string `json:"date"`
}

// handleAssistant runs the extractor over free-form input and returns a
// transaction candidate plus a conversational reply. Nothing is stored:
// the client confirms by posting the candidate to /api/transactions.
func (s *Server) handleAssistant(w http.ResponseWriter, r *http.Request) {
	var req assistantRequest
	if !readJSON(w, r, &req) {
		return
	}

	var img []byte
	if req.Image != "" {
		decoded, err := base64.StdEncoding.DecodeString(req.Image)
		if err != nil {
			writeError(w, http.StatusBadRequest, "image must be base64 encoded")
			return
		}
		img = decoded
	}
	if req.Text == "" && img == nil {
		writeError(w, http.StatusBadRequest, "provide text, an image, or both")
		return
	}

	candidate, reply, err := s.extractor.Extract(r.Context(), sanitizeInput(req.Text), img)
	if err != nil {
		slog.ErrorContext(r.Context(), "Extraction failed", "error", err,
			"owner_id", auth.OwnerID(r.Context()))
		writeError(w, http.StatusInternalServerError, "could not process the input")
		return
	}

	resp := struct {
		Reply     string         `json:"reply"`
		Candidate *candidateJSON `json:"candidate"`
	}{Reply: reply}
	if candidate != nil {
		resp.Candidate = &candidateJSON{
			Description:   candidate.Description,
			Amount:        candidate.Amount.String(),
			Category:      candidate.Category,
			Type:          string(candidate.Type),
			PaymentMethod: string(candidate.PaymentMethod),
			IsRecurring:   candidate.IsRecurring,
			Date:          candidate.Date.Format("2006-01-02"),
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleEvents streams change notifications over server-sent events. One
// "change" event per hub wake; the client re-fetches whatever views it
// shows. Heartbeats keep proxies from closing the idle stream.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}
	owner := auth.OwnerID(r.Context())

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	wake, cancel := s.ledger.Subscribe(owner)
	defer cancel()

	_, _ = w.Write([]byte("event: ready\ndata: {}\n\n"))
	flusher.Flush()

	heartbeat := time.NewTicker(30 * time.Second)
	defer heartbeat.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-wake:
			_, _ = w.Write([]byte("event: change\ndata: {}\n\n"))
			flusher.Flush()
		case <-heartbeat.C:
			_, _ = w.Write([]byte(": keepalive\n\n"))
			flusher.Flush()
		}
	}
}
