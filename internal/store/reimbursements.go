package store

import (
	"context"
	"fmt"

	"sms-ledger/internal/models"
	"sms-ledger/internal/parsererror"
)

// CreateReimbursement records money paid back against an existing transaction.
func (s *Store) CreateReimbursement(ctx context.Context, r models.Reimbursement) (models.Reimbursement, error) {
	if r.TransactionID <= 0 {
		return models.Reimbursement{}, &parsererror.ValidationError{Field: "transaction_id", Reason: "is required"}
	}

	err := s.db.QueryRowContext(ctx, s.rebind(`INSERT INTO reimbursements (amount, transaction_id, description, datetime, source)
VALUES (?, ?, ?, ?, ?) RETURNING reimbursement_id`),
		r.Amount, r.TransactionID, r.Description, r.DateTime, r.Source).Scan(&r.ID)
	if err != nil {
		return models.Reimbursement{}, fmt.Errorf("create reimbursement: %w", mapError(err))
	}
	return r, nil
}
