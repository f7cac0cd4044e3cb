package api

import (
	"sms-ledger/internal/models"

	"github.com/shopspring/decimal"
)

type createCategoryRequest struct {
	Category string `json:"category" validate:"notblank"`
}

type transactionRequest struct {
	Amount      *decimal.Decimal `json:"amount" validate:"required"`
	Currency    string           `json:"currency" validate:"omitempty,currency"`
	Description string           `json:"description"`
	CategoryID  int64            `json:"category_id" validate:"required,min=1"`
	DateTime    string           `json:"datetime" validate:"required,ledgertime"`
	Source      string           `json:"source" validate:"notblank"`
}

// patchTransactionRequest mirrors the fields a client may change. BulkUpdate switches to
// exact-match bulk recategorization; SaveMapping learns description -> category.
type patchTransactionRequest struct {
	Amount        *decimal.Decimal `json:"amount"`
	Description   *string          `json:"description"`
	CategoryID    *int64           `json:"category_id" validate:"omitempty,min=1"`
	DateTime      *string          `json:"datetime" validate:"omitempty,ledgertime"`
	Source        *string          `json:"source" validate:"omitempty,notblank"`
	BulkUpdate    bool             `json:"bulkUpdate"`
	OldCategoryID *int64           `json:"old_category_id" validate:"omitempty,min=1"`
	SaveMapping   bool             `json:"saveMapping"`
}

type descriptionRequest struct {
	Description string `json:"description" validate:"notblank"`
	Category    string `json:"category" validate:"notblank"`
}

type reimbursementRequest struct {
	Amount        *decimal.Decimal `json:"amount" validate:"required"`
	TransactionID int64            `json:"transaction_id" validate:"required,min=1"`
	Description   string           `json:"description"`
	DateTime      string           `json:"datetime" validate:"required,ledgertime"`
	Source        string           `json:"source"`
}

// draftRequest is one row of a confirmed preview. Amount is a pointer so a missing amount
// is rejected instead of decoding to zero.
type draftRequest struct {
	Amount      *decimal.Decimal `json:"amount" validate:"required"`
	Currency    string           `json:"currency" validate:"omitempty,currency"`
	DateTime    string           `json:"datetime"`
	Source      string           `json:"source"`
	Description string           `json:"description"`
	CategoryID  int64            `json:"category_id"`
	Pattern     string           `json:"pattern"`
}

// draft converts the request, filling the default currency and the uncategorized sentinel.
// The remaining field rules are enforced by models.Draft.Validate at commit.
func (r draftRequest) draft(defaultCurrency string) models.Draft {
	d := models.Draft{
		Amount:      *r.Amount,
		Currency:    r.Currency,
		DateTime:    r.DateTime,
		Source:      r.Source,
		Description: r.Description,
		CategoryID:  r.CategoryID,
		Pattern:     r.Pattern,
	}
	if d.Currency == "" {
		d.Currency = defaultCurrency
	}
	if d.CategoryID == 0 {
		d.CategoryID = models.UncategorizedCategoryID
	}
	return d
}
