package transaction

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/tally/internal/session"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=transaction
type Repository interface {
	CreateTransaction(ctx context.Context, tx *Transaction) error
	ListTransactions(ctx context.Context, filter Filter) ([]*Transaction, error)
	SumAmount(ctx context.Context, filter Filter) (decimal.Decimal, error)
	CountTransactions(ctx context.Context, filter Filter) (int64, error)
	UpdateTransactions(ctx context.Context, filter Filter, patch Patch) (int64, error)
	DeleteTransactions(ctx context.Context, filter Filter) (int64, error)

	BeginBatch(ctx context.Context, sessionID string) (BatchTx, error)
}

// BatchTx writes several transactions atomically.
type BatchTx interface {
	CreateTransactions(ctx context.Context, txs []*Transaction) error
	Commit() error
	Rollback() error
}

// Filter selects rows. Nil fields match everything, so the zero Filter is unscoped.
type Filter struct {
	ID        *uuid.UUID
	SessionID *string
}

// Patch holds the columns an update replaces. Nil fields are left untouched.
type Patch struct {
	Title  *string
	Amount *decimal.Decimal
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

type CreateParams struct {
	Title     string
	Amount    decimal.Decimal // Unsigned magnitude
	Direction Direction
	SessionID string
}

type UpdateParams struct {
	Title  *string
	Amount *decimal.Decimal
	// Direction is optional. When set, Amount is a magnitude and gets signed
	// like on Create; otherwise Amount is stored exactly as given.
	Direction *Direction
}

// Amounts are stored as NUMERIC(14, 2).
const amountScale = 2

var maxAmount = decimal.New(1, 12)

func (e *ValidationError) checkAmount(d decimal.Decimal) {
	if !d.Equal(d.Round(amountScale)) {
		e.add("amount", fmt.Sprintf("must have at most %d decimal places", amountScale))
	}

	if d.Abs().GreaterThanOrEqual(maxAmount) {
		e.add("amount", "must be less than "+maxAmount.String()+" in absolute value")
	}
}

// Validate reports malformed input without touching the repository.
func (p CreateParams) Validate() error {
	verr := &ValidationError{}

	if strings.TrimSpace(p.Title) == "" {
		verr.add("title", "is required")
	}

	if p.Amount.IsNegative() {
		verr.add("amount", "must be greater than or equal to 0")
	}

	verr.checkAmount(p.Amount)

	if !p.Direction.Valid() {
		verr.add("type", "must be one of: debit credit")
	}

	return verr.orNil()
}

func (p UpdateParams) validate() error {
	hasTitle := p.Title != nil && strings.TrimSpace(*p.Title) != ""
	if !hasTitle && p.Amount == nil {
		return &ValidationError{Fields: []FieldError{{Message: "at least one value must be filled"}}}
	}

	verr := &ValidationError{}

	if p.Amount != nil {
		verr.checkAmount(*p.Amount)
	}

	if p.Direction != nil {
		if !p.Direction.Valid() {
			verr.add("type", "must be one of: debit credit")
		}

		if p.Amount == nil {
			verr.add("type", "requires amount")
		} else if p.Amount.IsNegative() {
			verr.add("amount", "must be greater than or equal to 0 when type is set")
		}
	}

	return verr.orNil()
}

func (p UpdateParams) patch() Patch {
	var patch Patch

	if p.Title != nil && strings.TrimSpace(*p.Title) != "" {
		patch.Title = p.Title
	}

	if p.Amount != nil {
		amount := *p.Amount
		if p.Direction != nil {
			amount = p.Direction.Sign(amount)
		}

		patch.Amount = &amount
	}

	return patch
}

// Create validates and signs a new entry and stores it under the given
// session, minting one when the caller has none.
func (s *Service) Create(ctx context.Context, params CreateParams) (*Transaction, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	sessionID := params.SessionID
	if sessionID == "" {
		sessionID = session.NewID()
	}

	tx := newTransaction(params, sessionID)
	if err := s.repo.CreateTransaction(ctx, tx); err != nil {
		return nil, storeErr("create", err)
	}

	return tx, nil
}

// ListAll returns every row regardless of session. It backs operator tooling
// only and must never serve the per-session client path.
func (s *Service) ListAll(ctx context.Context) ([]*Transaction, error) {
	txs, err := s.repo.ListTransactions(ctx, Filter{})
	if err != nil {
		return nil, storeErr("list", err)
	}

	return txs, nil
}

func (s *Service) ListForSession(ctx context.Context, sessionID string) ([]*Transaction, error) {
	if sessionID == "" {
		return nil, ErrSessionRequired
	}

	txs, err := s.repo.ListTransactions(ctx, Filter{SessionID: &sessionID})
	if err != nil {
		return nil, storeErr("list", err)
	}

	return txs, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID, sessionID string) (*Transaction, error) {
	if sessionID == "" {
		return nil, ErrSessionRequired
	}

	txs, err := s.repo.ListTransactions(ctx, Filter{ID: &id, SessionID: &sessionID})
	if err != nil {
		return nil, storeErr("get", err)
	}

	if len(txs) == 0 {
		return nil, ErrNotFound
	}

	return txs[0], nil
}

func (s *Service) Summarize(ctx context.Context, sessionID string) (*Summary, error) {
	if sessionID == "" {
		return nil, ErrSessionRequired
	}

	filter := Filter{SessionID: &sessionID}

	amount, err := s.repo.SumAmount(ctx, filter)
	if err != nil {
		return nil, storeErr("sum", err)
	}

	count, err := s.repo.CountTransactions(ctx, filter)
	if err != nil {
		return nil, storeErr("count", err)
	}

	return &Summary{Amount: amount, Count: count}, nil
}

// Update replaces the title and/or amount of a session's row and returns the
// number of rows changed. A missing row is not an error.
func (s *Service) Update(ctx context.Context, id uuid.UUID, sessionID string, params UpdateParams) (int64, error) {
	if err := params.validate(); err != nil {
		return 0, err
	}

	if sessionID == "" {
		return 0, ErrSessionRequired
	}

	n, err := s.repo.UpdateTransactions(ctx, Filter{ID: &id, SessionID: &sessionID}, params.patch())
	if err != nil {
		return 0, storeErr("update", err)
	}

	return n, nil
}

// Delete removes a session's row. Zero affected rows is reported as ErrNotFound.
func (s *Service) Delete(ctx context.Context, id uuid.UUID, sessionID string) (int64, error) {
	if sessionID == "" {
		return 0, ErrSessionRequired
	}

	n, err := s.repo.DeleteTransactions(ctx, Filter{ID: &id, SessionID: &sessionID})
	if err != nil {
		return 0, storeErr("delete", err)
	}

	if n == 0 {
		return 0, ErrNotFound
	}

	return n, nil
}

// CreateBatch stores all entries under one session or none of them.
func (s *Service) CreateBatch(ctx context.Context, sessionID string, params []CreateParams) ([]*Transaction, error) {
	if len(params) == 0 {
		return nil, nil
	}

	verr := &ValidationError{}

	for i, p := range params {
		err := p.validate()

		var pverr *ValidationError
		if !errors.As(err, &pverr) {
			continue
		}

		for _, f := range pverr.Fields {
			verr.add(fmt.Sprintf("[%d].%s", i, f.Field), f.Message)
		}
	}

	if err := verr.orNil(); err != nil {
		return nil, err
	}

	if sessionID == "" {
		sessionID = session.NewID()
	}

	btx, err := s.repo.BeginBatch(ctx, sessionID)
	if err != nil {
		return nil, storeErr("begin batch", err)
	}
	defer btx.Rollback()

	txs := make([]*Transaction, len(params))
	for i, p := range params {
		txs[i] = newTransaction(p, sessionID)
	}

	if err := btx.CreateTransactions(ctx, txs); err != nil {
		return nil, storeErr("create batch", err)
	}

	if err := btx.Commit(); err != nil {
		return nil, storeErr("commit batch", err)
	}

	return txs, nil
}

func newTransaction(p CreateParams, sessionID string) *Transaction {
	return &Transaction{
		ID:        uuid.New(),
		Title:     strings.TrimSpace(p.Title),
		Amount:    p.Direction.Sign(p.Amount),
		SessionID: &sessionID,
	}
}

func storeErr(op string, err error) error {
	return &StoreError{Op: op, Err: err}
}
