package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"sms-ledger/internal/logging"
	"sms-ledger/internal/models"
	"sms-ledger/internal/parsererror"
)

const selectTransactions = `
SELECT t.transaction_id, t.amount, t.currency, t.description, t.category_id, c.category,
       COALESCE(r.total, 0), t.datetime, t.source
FROM transactions t
JOIN categories c ON c.category_id = t.category_id
LEFT JOIN (
    SELECT transaction_id, SUM(amount) AS total FROM reimbursements GROUP BY transaction_id
) r ON r.transaction_id = t.transaction_id`

const insertTransaction = `INSERT INTO transactions (amount, currency, description, category_id, datetime, source)
VALUES (?, ?, ?, ?, ?, ?) RETURNING transaction_id`

type scanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row scanner) (models.Transaction, error) {
	var t models.Transaction
	err := row.Scan(&t.ID, &t.Amount, &t.Currency, &t.Description, &t.CategoryID, &t.Category,
		&t.ReimbursedAmount, &t.DateTime, &t.Source)
	if err != nil {
		return t, err
	}
	t.Amount = t.Amount.Round(2)
	t.ReimbursedAmount = t.ReimbursedAmount.Round(2)
	return t, nil
}

// Transactions lists transactions newest first, with category names and reimbursed totals.
func (s *Store) Transactions(ctx context.Context) ([]models.Transaction, error) {
	rows, err := s.db.QueryContext(ctx, selectTransactions+` ORDER BY t.datetime DESC, t.transaction_id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var txs []models.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		txs = append(txs, t)
	}
	return txs, rows.Err()
}

// Transaction returns one transaction or parsererror.ErrNotFound.
func (s *Store) Transaction(ctx context.Context, id int64) (models.Transaction, error) {
	t, err := scanTransaction(s.db.QueryRowContext(ctx, s.rebind(selectTransactions+` WHERE t.transaction_id = ?`), id))
	if errors.Is(err, sql.ErrNoRows) {
		return t, fmt.Errorf("transaction %d: %w", id, parsererror.ErrNotFound)
	}
	if err != nil {
		return t, fmt.Errorf("find transaction: %w", err)
	}
	return t, nil
}

// CreateTransaction inserts one transaction and returns it with its id.
func (s *Store) CreateTransaction(ctx context.Context, t models.Transaction) (models.Transaction, error) {
	if t.Currency == "" {
		t.Currency = models.DefaultCurrency
	}
	err := s.db.QueryRowContext(ctx, s.rebind(insertTransaction),
		t.Amount, t.Currency, t.Description, t.CategoryID, t.DateTime, t.Source).Scan(&t.ID)
	if err != nil {
		return models.Transaction{}, fmt.Errorf("create transaction: %w", mapError(err))
	}
	return t, nil
}

// InsertBatch writes drafts in one database transaction and returns their ids in order.
// Any failure rolls the whole batch back; the returned error wraps a parsererror.RowError.
func (s *Store) InsertBatch(ctx context.Context, drafts []models.Draft) ([]int64, error) {
	if len(drafts) == 0 {
		return nil, parsererror.ErrEmptyBatch
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin batch: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, s.rebind(insertTransaction))
	if err != nil {
		return nil, fmt.Errorf("prepare batch insert: %w", err)
	}
	defer stmt.Close()

	ids := make([]int64, 0, len(drafts))
	for i, d := range drafts {
		var id int64
		err := stmt.QueryRowContext(ctx, d.Amount, d.Currency, d.Description, d.CategoryID, d.DateTime, d.Source).Scan(&id)
		if err != nil {
			s.logger.Warn("Batch insert failed, rolling back",
				logging.F(logging.FieldRow, i), logging.F(logging.FieldTotal, len(drafts)), logging.F(logging.FieldError, err))
			return nil, &parsererror.RowError{Row: i, Err: mapError(err)}
		}
		ids = append(ids, id)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit batch: %w", err)
	}

	s.logger.Info("Inserted transaction batch", logging.F(logging.FieldCount, len(ids)))
	return ids, nil
}

// UpdateTransaction applies the non-nil fields of upd to one row.
func (s *Store) UpdateTransaction(ctx context.Context, id int64, upd models.TransactionUpdate) error {
	if upd.Empty() {
		return &parsererror.ValidationError{Reason: "no fields provided for update"}
	}

	var sets []string
	var args []any
	if upd.CategoryID != nil {
		sets, args = append(sets, "category_id = ?"), append(args, *upd.CategoryID)
	}
	if upd.Description != nil {
		sets, args = append(sets, "description = ?"), append(args, *upd.Description)
	}
	if upd.Amount != nil {
		sets, args = append(sets, "amount = ?"), append(args, *upd.Amount)
	}
	if upd.DateTime != nil {
		sets, args = append(sets, "datetime = ?"), append(args, *upd.DateTime)
	}
	if upd.Source != nil {
		sets, args = append(sets, "source = ?"), append(args, *upd.Source)
	}
	args = append(args, id)

	query := `UPDATE transactions SET ` + strings.Join(sets, ", ") + ` WHERE transaction_id = ?`
	res, err := s.db.ExecContext(ctx, s.rebind(query), args...)
	if err != nil {
		return fmt.Errorf("update transaction %d: %w", id, mapError(err))
	}
	return requireAffected(res, id)
}

// SetTransactionCategory moves one transaction to categoryID.
func (s *Store) SetTransactionCategory(ctx context.Context, id, categoryID int64) error {
	return s.UpdateTransaction(ctx, id, models.TransactionUpdate{CategoryID: &categoryID})
}

// BulkRecategorize moves every transaction whose description equals description exactly
// and whose category is oldCategoryID. It returns the number of rows changed.
func (s *Store) BulkRecategorize(ctx context.Context, description string, oldCategoryID, newCategoryID int64) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		s.rebind(`UPDATE transactions SET category_id = ? WHERE description = ? AND category_id = ?`),
		newCategoryID, description, oldCategoryID)
	if err != nil {
		return 0, fmt.Errorf("bulk recategorize: %w", mapError(err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("bulk recategorize: %w", err)
	}
	return n, nil
}

func requireAffected(res sql.Result, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("transaction %d: %w", id, parsererror.ErrNotFound)
	}
	return nil
}
