package transaction

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/tally/internal/transaction"
)

type transactionResponse struct {
	ID        uuid.UUID   `json:"id"`
	Title     string      `json:"title"`
	Amount    json.Number `json:"amount"`
	SessionID *string     `json:"session_id"`
	CreatedAt time.Time   `json:"created_at"`
}

type singleResponse struct {
	Transaction transactionResponse `json:"transaction"`
}

type summaryResponse struct {
	Summary struct {
		Amount json.Number `json:"amount"`
		Count  int64       `json:"count"`
	} `json:"summary"`
}

type updatedResponse struct {
	Updated int64 `json:"updated"`
}

type deletedResponse struct {
	Deleted int64 `json:"deleted"`
}

func toResponse(tx *transaction.Transaction) transactionResponse {
	return transactionResponse{
		ID:        tx.ID,
		Title:     tx.Title,
		Amount:    json.Number(tx.Amount.String()),
		SessionID: tx.SessionID,
		CreatedAt: tx.CreatedAt,
	}
}

func toResponseList(txs []*transaction.Transaction) []transactionResponse {
	resp := make([]transactionResponse, len(txs))
	for i, tx := range txs {
		resp[i] = toResponse(tx)
	}

	return resp
}

func toSummaryResponse(s *transaction.Summary) summaryResponse {
	var resp summaryResponse

	resp.Summary.Amount = json.Number(s.Amount.String())
	resp.Summary.Count = s.Count

	return resp
}
