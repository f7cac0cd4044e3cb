package models

import (
	"regexp"
	"strings"
	"time"

	"sms-ledger/internal/parsererror"

	"github.com/shopspring/decimal"
)

var currencyPattern = regexp.MustCompile(`^[A-Z]{3}$`)

// Draft is an extracted transaction awaiting confirmation. It is mutable while it sits
// in a preview and is turned into a Transaction row on commit.
type Draft struct {
	Amount      decimal.Decimal `json:"amount" yaml:"amount"`
	Currency    string          `json:"currency" yaml:"currency"`
	DateTime    string          `json:"datetime" yaml:"datetime"`
	Source      string          `json:"source" yaml:"source"`
	Description string          `json:"description" yaml:"description"`
	CategoryID  int64           `json:"category_id" yaml:"category_id"`
	// Pattern names the extraction pattern that produced the draft.
	Pattern string `json:"pattern,omitempty" yaml:"pattern,omitempty"`
}

// Validate checks the fields every committed row must carry.
func (d Draft) Validate() error {
	switch {
	case d.Amount.IsNegative():
		return &parsererror.ValidationError{Field: "amount", Reason: "must not be negative"}
	case !currencyPattern.MatchString(d.Currency):
		return &parsererror.ValidationError{Field: "currency", Reason: "must be a 3-letter code"}
	case strings.TrimSpace(d.DateTime) == "":
		return &parsererror.ValidationError{Field: "datetime", Reason: "is required"}
	case strings.TrimSpace(d.Source) == "":
		return &parsererror.ValidationError{Field: "source", Reason: "is required"}
	case strings.TrimSpace(d.Description) == "":
		return &parsererror.ValidationError{Field: "description", Reason: "is required"}
	case d.CategoryID <= 0:
		return &parsererror.ValidationError{Field: "category_id", Reason: "must be a positive id"}
	}
	if _, err := time.Parse(DateTimeLayout, d.DateTime); err != nil {
		return &parsererror.ValidationError{Field: "datetime", Reason: "must use YYYY-MM-DD HH:mm:ss"}
	}
	return nil
}

// Transaction converts the draft into an unsaved Transaction.
func (d Draft) Transaction() Transaction {
	return Transaction{
		Amount:      d.Amount,
		Currency:    d.Currency,
		Description: d.Description,
		CategoryID:  d.CategoryID,
		DateTime:    d.DateTime,
		Source:      d.Source,
	}
}

// IsUncategorized reports whether the draft still carries the sentinel category.
func (d Draft) IsUncategorized() bool {
	return d.CategoryID == UncategorizedCategoryID
}
