package export

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/tally/internal/export"
	"github.com/MrJamesThe3rd/tally/internal/http/respond"
	"github.com/MrJamesThe3rd/tally/internal/session"
	"github.com/MrJamesThe3rd/tally/internal/transaction"
)

type Handler struct {
	svc      *export.Service
	sessions *session.Resolver
	now      func() time.Time
}

func NewHandler(svc *export.Service, sessions *session.Resolver) *Handler {
	return &Handler{svc: svc, sessions: sessions, now: time.Now}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.download)
}

// download streams the caller's statement. ?format=txt returns a plain-text
// digest instead of CSV.
func (h *Handler) download(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := h.sessions.Lookup(r)
	if !ok {
		respond.Error(w, transaction.ErrSessionRequired)
		return
	}

	lines, err := h.svc.Statement(r.Context(), sessionID)
	if err != nil {
		respond.Error(w, err)
		return
	}

	if r.URL.Query().Get("format") == "txt" {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")

		if _, err := w.Write([]byte(h.svc.Summary(lines))); err != nil {
			slog.Error("failed to write statement", "error", err)
		}

		return
	}

	// Render first so a failure can still produce a proper error response.
	var buf bytes.Buffer
	if err := h.svc.WriteCSV(&buf, lines); err != nil {
		respond.Error(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", h.svc.Filename(h.now())))

	if _, err := buf.WriteTo(w); err != nil {
		slog.Error("failed to write statement", "error", err)
	}
}
