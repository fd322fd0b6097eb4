package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"hash/fnv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/tally/internal/transaction"
)

var errUnscoped = errors.New("refusing to modify transactions without an id")

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// scanTransaction reads a row in selectTransactionColumns order.
func scanTransaction(s scanner) (*transaction.Transaction, error) {
	var tx transaction.Transaction

	if err := s.Scan(&tx.ID, &tx.Title, &tx.Amount, &tx.SessionID, &tx.CreatedAt); err != nil {
		return nil, err
	}

	return &tx, nil
}

const selectTransactionColumns = `id, title, amount, session_id, created_at`

// whereClause renders the filter as a WHERE clause whose placeholders start at argIdx.
func whereClause(filter transaction.Filter, argIdx int) (string, []any) {
	var (
		conds []string
		args  []any
	)

	if filter.ID != nil {
		conds = append(conds, fmt.Sprintf("id = $%d", argIdx))
		args = append(args, *filter.ID)
		argIdx++
	}

	if filter.SessionID != nil {
		conds = append(conds, fmt.Sprintf("session_id = $%d", argIdx))
		args = append(args, *filter.SessionID)
	}

	if len(conds) == 0 {
		return "", nil
	}

	return " WHERE " + strings.Join(conds, " AND "), args
}

const insertTransaction = `
	INSERT INTO transactions (id, title, amount, session_id, created_at)
	VALUES ($1, $2, $3, $4, NOW())
	RETURNING created_at
`

func (s *Store) CreateTransaction(ctx context.Context, tx *transaction.Transaction) error {
	err := s.db.QueryRowContext(ctx, insertTransaction,
		tx.ID,
		tx.Title,
		tx.Amount,
		tx.SessionID,
	).Scan(&tx.CreatedAt)
	if err != nil {
		return fmt.Errorf("creating transaction: %w", err)
	}

	return nil
}

func (s *Store) ListTransactions(ctx context.Context, filter transaction.Filter) ([]*transaction.Transaction, error) {
	where, args := whereClause(filter, 1)
	query := `SELECT ` + selectTransactionColumns + ` FROM transactions` + where +
		` ORDER BY created_at ASC, id ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing transactions: %w", err)
	}
	defer rows.Close()

	txs := []*transaction.Transaction{}

	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning transaction: %w", err)
		}

		txs = append(txs, tx)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating transactions: %w", err)
	}

	return txs, nil
}

func (s *Store) SumAmount(ctx context.Context, filter transaction.Filter) (decimal.Decimal, error) {
	where, args := whereClause(filter, 1)
	query := `SELECT COALESCE(SUM(amount), 0) FROM transactions` + where

	var sum decimal.Decimal
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&sum); err != nil {
		return decimal.Zero, fmt.Errorf("summing amounts: %w", err)
	}

	return sum, nil
}

func (s *Store) CountTransactions(ctx context.Context, filter transaction.Filter) (int64, error) {
	where, args := whereClause(filter, 1)
	query := `SELECT COUNT(*) FROM transactions` + where

	var n int64
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting transactions: %w", err)
	}

	return n, nil
}

func (s *Store) UpdateTransactions(ctx context.Context, filter transaction.Filter, patch transaction.Patch) (int64, error) {
	if filter.ID == nil {
		return 0, errUnscoped
	}

	var (
		sets []string
		args []any
	)

	argIdx := 1

	if patch.Title != nil {
		sets = append(sets, fmt.Sprintf("title = $%d", argIdx))
		args = append(args, *patch.Title)
		argIdx++
	}

	if patch.Amount != nil {
		sets = append(sets, fmt.Sprintf("amount = $%d", argIdx))
		args = append(args, *patch.Amount)
		argIdx++
	}

	if len(sets) == 0 {
		return 0, nil
	}

	where, whereArgs := whereClause(filter, argIdx)
	query := `UPDATE transactions SET ` + strings.Join(sets, ", ") + where

	res, err := s.db.ExecContext(ctx, query, append(args, whereArgs...)...)
	if err != nil {
		return 0, fmt.Errorf("updating transaction: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("reading affected rows: %w", err)
	}

	return n, nil
}

func (s *Store) DeleteTransactions(ctx context.Context, filter transaction.Filter) (int64, error) {
	if filter.ID == nil {
		return 0, errUnscoped
	}

	where, args := whereClause(filter, 1)

	res, err := s.db.ExecContext(ctx, `DELETE FROM transactions`+where, args...)
	if err != nil {
		return 0, fmt.Errorf("deleting transaction: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("reading affected rows: %w", err)
	}

	return n, nil
}

func batchLockKey(sessionID string) int64 {
	h := fnv.New64a()
	h.Write([]byte("tally-batch"))
	h.Write([]byte{0})
	h.Write([]byte(sessionID))

	return int64(h.Sum64())
}

type batchTx struct {
	tx *sql.Tx
}

// BeginBatch opens a transaction holding an advisory lock on the session, so
// concurrent imports for the same session are applied one after another.
func (s *Store) BeginBatch(ctx context.Context, sessionID string) (transaction.BatchTx, error) {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning batch tx: %w", err)
	}

	if _, err := dbTx.ExecContext(ctx, "SELECT pg_advisory_xact_lock($1)", batchLockKey(sessionID)); err != nil {
		dbTx.Rollback()
		return nil, fmt.Errorf("acquiring batch lock: %w", err)
	}

	return &batchTx{tx: dbTx}, nil
}

func (b *batchTx) Commit() error { return b.tx.Commit() }

func (b *batchTx) Rollback() error {
	if err := b.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return err
	}

	return nil
}

func (b *batchTx) CreateTransactions(ctx context.Context, txs []*transaction.Transaction) error {
	for _, tx := range txs {
		err := b.tx.QueryRowContext(ctx, insertTransaction,
			tx.ID,
			tx.Title,
			tx.Amount,
			tx.SessionID,
		).Scan(&tx.CreatedAt)
		if err != nil {
			return fmt.Errorf("creating transaction %q: %w", tx.Title, err)
		}
	}

	return nil
}
