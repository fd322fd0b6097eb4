package importcsv

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/tally/internal/http/respond"
	"github.com/MrJamesThe3rd/tally/internal/importer"
	"github.com/MrJamesThe3rd/tally/internal/metrics"
	"github.com/MrJamesThe3rd/tally/internal/session"
	"github.com/MrJamesThe3rd/tally/internal/transaction"
)

const maxUploadSize = 10 << 20

type Handler struct {
	importSvc *importer.Service
	txSvc     *transaction.Service
	sessions  *session.Resolver
}

func NewHandler(importSvc *importer.Service, txSvc *transaction.Service, sessions *session.Resolver) *Handler {
	return &Handler{
		importSvc: importSvc,
		txSvc:     txSvc,
		sessions:  sessions,
	}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.importCSV)
}

type transactionResponse struct {
	ID        uuid.UUID   `json:"id"`
	Title     string      `json:"title"`
	Amount    json.Number `json:"amount"`
	SessionID *string     `json:"session_id"`
	CreatedAt time.Time   `json:"created_at"`
}

type importSuccessResponse struct {
	Imported     int                   `json:"imported"`
	Transactions []transactionResponse `json:"transactions"`
}

func (h *Handler) importCSV(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		respond.BadRequest(w, "file", "failed to parse form: "+err.Error())
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		respond.BadRequest(w, "file", "is required")
		return
	}
	defer file.Close()

	params, err := h.importSvc.Import(importer.Format(r.FormValue("format")), file)
	if err != nil {
		respond.BadRequest(w, "file", err.Error())
		return
	}

	if len(params) == 0 {
		respond.BadRequest(w, "file", "contains no entries")
		return
	}

	sessionID := h.sessions.Ensure(w, r)

	txs, err := h.txSvc.CreateBatch(r.Context(), sessionID, params)
	if err != nil {
		respond.Error(w, err)
		return
	}

	for _, tx := range txs {
		metrics.RecordCreated(string(transaction.DirectionOf(tx.Amount)), 1)
	}

	slog.Info("imported transactions", "count", len(txs))

	respond.JSON(w, http.StatusCreated, toSuccessResponse(txs))
}

func toSuccessResponse(txs []*transaction.Transaction) importSuccessResponse {
	responses := make([]transactionResponse, 0, len(txs))
	for _, tx := range txs {
		responses = append(responses, transactionResponse{
			ID:        tx.ID,
			Title:     tx.Title,
			Amount:    json.Number(tx.Amount.String()),
			SessionID: tx.SessionID,
			CreatedAt: tx.CreatedAt,
		})
	}

	return importSuccessResponse{
		Imported:     len(txs),
		Transactions: responses,
	}
}
