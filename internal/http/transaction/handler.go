package transaction

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/tally/internal/http/respond"
	"github.com/MrJamesThe3rd/tally/internal/metrics"
	"github.com/MrJamesThe3rd/tally/internal/session"
	"github.com/MrJamesThe3rd/tally/internal/transaction"
)

type Handler struct {
	svc      *transaction.Service
	sessions *session.Resolver
	validate *validator.Validate
}

func NewHandler(svc *transaction.Service, sessions *session.Resolver) *Handler {
	return &Handler{
		svc:      svc,
		sessions: sessions,
		validate: newValidator(),
	}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Get("/all", h.listAll)
	r.Get("/summary", h.summary)
	r.Get("/{id}", h.get)
	r.Put("/{id}", h.update)
	r.Delete("/{id}", h.delete)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createTransactionRequest
	if err := decodeAndValidate(r, h.validate, &req); err != nil {
		respond.Error(w, err)
		return
	}

	params := transaction.CreateParams{
		Title:     req.Title,
		Amount:    req.Amount.Decimal,
		Direction: req.Type,
	}
	if err := params.Validate(); err != nil {
		respond.Error(w, err)
		return
	}

	params.SessionID = h.sessions.Ensure(w, r)

	tx, err := h.svc.Create(r.Context(), params)
	if err != nil {
		respond.Error(w, err)
		return
	}

	metrics.RecordCreated(string(req.Type), 1)

	respond.JSON(w, http.StatusCreated, toResponse(tx))
}

// list is the per-session listing; listAll is the operator view.
func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	sessionID, _ := h.sessions.Lookup(r)

	txs, err := h.svc.ListForSession(r.Context(), sessionID)
	if err != nil {
		respond.Error(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponseList(txs))
}

func (h *Handler) listAll(w http.ResponseWriter, r *http.Request) {
	txs, err := h.svc.ListAll(r.Context())
	if err != nil {
		respond.Error(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponseList(txs))
}

func (h *Handler) summary(w http.ResponseWriter, r *http.Request) {
	sessionID, _ := h.sessions.Lookup(r)

	s, err := h.svc.Summarize(r.Context(), sessionID)
	if err != nil {
		respond.Error(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, toSummaryResponse(s))
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	sessionID, id, ok := h.scopedID(w, r)
	if !ok {
		return
	}

	tx, err := h.svc.Get(r.Context(), id, sessionID)
	if err != nil {
		respond.Error(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, singleResponse{Transaction: toResponse(tx)})
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	sessionID, id, ok := h.scopedID(w, r)
	if !ok {
		return
	}

	var req updateTransactionRequest
	if err := decodeAndValidate(r, h.validate, &req); err != nil {
		respond.Error(w, err)
		return
	}

	n, err := h.svc.Update(r.Context(), id, sessionID, transaction.UpdateParams{
		Title:     req.Title,
		Amount:    req.Amount.value(),
		Direction: req.Type,
	})
	if err != nil {
		respond.Error(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, updatedResponse{Updated: n})
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	sessionID, id, ok := h.scopedID(w, r)
	if !ok {
		return
	}

	n, err := h.svc.Delete(r.Context(), id, sessionID)
	if err != nil {
		respond.Error(w, err)
		return
	}

	metrics.RecordDeleted()

	respond.JSON(w, http.StatusOK, deletedResponse{Deleted: n})
}

// scopedID resolves the caller's session and the {id} path parameter,
// writing the error response itself when either is missing or malformed.
func (h *Handler) scopedID(w http.ResponseWriter, r *http.Request) (string, uuid.UUID, bool) {
	sessionID, ok := h.sessions.Lookup(r)
	if !ok {
		respond.Error(w, transaction.ErrSessionRequired)
		return "", uuid.Nil, false
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respond.BadRequest(w, "id", "must be a valid UUID")
		return "", uuid.Nil, false
	}

	return sessionID, id, true
}
