// Package models provides the data structures used throughout the application.
package models

import "github.com/shopspring/decimal"

// Category is a spending category. Names are unique.
type Category struct {
	ID   int64  `json:"category_id" yaml:"category_id"`
	Name string `json:"category" yaml:"category"`
}

// DescriptionMapping associates a merchant/narrative fragment with a category name.
// Unique by Description; writing an existing description overwrites its category.
type DescriptionMapping struct {
	Description string `json:"description" yaml:"description"`
	Category    string `json:"category" yaml:"category"`
}

// SourceMapping normalizes a raw source reference (e.g. the last four card digits)
// to a human-readable source name. Unique by Reference.
type SourceMapping struct {
	Reference string `json:"reference" yaml:"reference"`
	Source    string `json:"source" yaml:"source"`
}

// MappingSeed is the layout of a YAML seed file for the mapping tables.
type MappingSeed struct {
	Descriptions []DescriptionMapping `yaml:"descriptions"`
	Sources      []SourceMapping      `yaml:"sources"`
}

// Transaction is a persisted transaction. Category and ReimbursedAmount are only
// populated by listing queries.
type Transaction struct {
	ID               int64           `json:"transaction_id"`
	Amount           decimal.Decimal `json:"amount"`
	Currency         string          `json:"currency"`
	Description      string          `json:"description"`
	CategoryID       int64           `json:"category_id"`
	Category         string          `json:"category,omitempty"`
	ReimbursedAmount decimal.Decimal `json:"reimbursed_amount"`
	DateTime         string          `json:"datetime"`
	Source           string          `json:"source"`
}

// TransactionUpdate carries the fields of a partial transaction update. Nil fields are left alone.
type TransactionUpdate struct {
	Amount      *decimal.Decimal `json:"amount,omitempty"`
	Description *string          `json:"description,omitempty"`
	CategoryID  *int64           `json:"category_id,omitempty"`
	DateTime    *string          `json:"datetime,omitempty"`
	Source      *string          `json:"source,omitempty"`
}

// Empty reports whether the update changes nothing.
func (u TransactionUpdate) Empty() bool {
	return u.Amount == nil && u.Description == nil && u.CategoryID == nil && u.DateTime == nil && u.Source == nil
}

// Reimbursement is money paid back against a transaction.
type Reimbursement struct {
	ID            int64           `json:"reimbursement_id"`
	Amount        decimal.Decimal `json:"amount"`
	TransactionID int64           `json:"transaction_id"`
	Description   string          `json:"description"`
	DateTime      string          `json:"datetime"`
	Source        string          `json:"source"`
}

// MonthlyStat is spending per month and category, net of reimbursements.
type MonthlyStat struct {
	Month           string          `json:"month"`
	Category        string          `json:"category"`
	TotalSpent      decimal.Decimal `json:"total_spent"`
	TotalReimbursed decimal.Decimal `json:"total_reimbursed"`
	NetAmount       decimal.Decimal `json:"net_amount"`
}
