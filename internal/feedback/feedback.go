// Package feedback applies user corrections to committed transactions and, when asked,
// learns them as description mappings for future imports.
package feedback

import (
	"context"
	"fmt"
	"strings"

	"sms-ledger/internal/logging"
	"sms-ledger/internal/models"
	"sms-ledger/internal/parsererror"
)

// Repository is the storage the feedback loop writes through.
type Repository interface {
	Transaction(ctx context.Context, id int64) (models.Transaction, error)
	CategoryByID(ctx context.Context, id int64) (models.Category, error)
	SetTransactionCategory(ctx context.Context, id, categoryID int64) error
	BulkRecategorize(ctx context.Context, description string, oldCategoryID, newCategoryID int64) (int64, error)
	UpsertDescriptionMapping(ctx context.Context, m models.DescriptionMapping) error
}

// Request describes one recategorization.
type Request struct {
	TransactionID int64
	CategoryID    int64
	// Bulk moves every transaction with the same description and category OldCategoryID.
	Bulk          bool
	Description   string
	OldCategoryID int64
	// Learn records Description -> category name as a description mapping.
	Learn bool
}

// Result reports what a recategorization changed.
type Result struct {
	Updated int64                      `json:"updatedCount"`
	Learned *models.DescriptionMapping `json:"learned,omitempty"`
}

// Service implements single and bulk recategorization.
type Service struct {
	repo   Repository
	logger logging.Logger
}

// NewService creates a Service.
func NewService(repo Repository, logger logging.Logger) *Service {
	return &Service{repo: repo, logger: logging.OrDefault(logger)}
}

// Recategorize moves one transaction to categoryID.
func (s *Service) Recategorize(ctx context.Context, transactionID, categoryID int64) error {
	if err := s.repo.SetTransactionCategory(ctx, transactionID, categoryID); err != nil {
		return err
	}
	s.logger.Info("Transaction recategorized",
		logging.F(logging.FieldTransactionID, transactionID), logging.F(logging.FieldCategoryID, categoryID))
	return nil
}

// BulkRecategorize moves every transaction whose description is exactly description and
// whose category is oldCategoryID. Substring matches are deliberately not touched.
func (s *Service) BulkRecategorize(ctx context.Context, description string, oldCategoryID, newCategoryID int64) (int64, error) {
	if description == "" {
		return 0, &parsererror.ValidationError{Field: "description", Reason: "is required for a bulk update"}
	}
	if oldCategoryID <= 0 {
		return 0, &parsererror.ValidationError{Field: "old_category_id", Reason: "is required for a bulk update"}
	}

	n, err := s.repo.BulkRecategorize(ctx, description, oldCategoryID, newCategoryID)
	if err != nil {
		return 0, err
	}
	s.logger.Info("Transactions recategorized in bulk",
		logging.F(logging.FieldDescription, description),
		logging.F(logging.FieldCategoryID, newCategoryID),
		logging.F(logging.FieldCount, n))
	return n, nil
}

// MappingFor builds the mapping description -> name of categoryID without writing it.
// A blank description or an unknown category is rejected here, before anything changes.
func (s *Service) MappingFor(ctx context.Context, description string, categoryID int64) (models.DescriptionMapping, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return models.DescriptionMapping{}, &parsererror.ValidationError{Field: "description", Reason: "is required to learn a mapping"}
	}
	category, err := s.repo.CategoryByID(ctx, categoryID)
	if err != nil {
		return models.DescriptionMapping{}, err
	}
	return models.DescriptionMapping{Description: description, Category: category.Name}, nil
}

// SaveMapping upserts a mapping built by MappingFor.
func (s *Service) SaveMapping(ctx context.Context, mapping models.DescriptionMapping) error {
	if err := s.repo.UpsertDescriptionMapping(ctx, mapping); err != nil {
		return err
	}
	s.logger.Info("Learned description mapping",
		logging.F(logging.FieldDescription, mapping.Description), logging.F(logging.FieldCategory, mapping.Category))
	return nil
}

// Learn upserts a mapping from description to the name of categoryID.
func (s *Service) Learn(ctx context.Context, description string, categoryID int64) (models.DescriptionMapping, error) {
	mapping, err := s.MappingFor(ctx, description, categoryID)
	if err != nil {
		return models.DescriptionMapping{}, err
	}
	if err := s.SaveMapping(ctx, mapping); err != nil {
		return models.DescriptionMapping{}, err
	}
	return mapping, nil
}

// Apply runs a Request. A missing Description or bulk OldCategoryID is taken from the transaction.
// The learned mapping is checked before any transaction moves; only a storage failure while
// saving it can leave the recategorization applied without the mapping.
func (s *Service) Apply(ctx context.Context, req Request) (Result, error) {
	if req.CategoryID <= 0 {
		return Result{}, &parsererror.ValidationError{Field: "category_id", Reason: "must be a positive id"}
	}

	description := req.Description
	if (description == "" && (req.Bulk || req.Learn)) || (req.Bulk && req.OldCategoryID == 0) {
		tx, err := s.repo.Transaction(ctx, req.TransactionID)
		if err != nil {
			return Result{}, err
		}
		if description == "" {
			description = tx.Description
		}
		if req.Bulk && req.OldCategoryID == 0 {
			req.OldCategoryID = tx.CategoryID
		}
	}

	var mapping models.DescriptionMapping
	if req.Learn {
		m, err := s.MappingFor(ctx, description, req.CategoryID)
		if err != nil {
			return Result{}, err
		}
		mapping = m
	}

	var result Result
	if req.Bulk {
		n, err := s.BulkRecategorize(ctx, description, req.OldCategoryID, req.CategoryID)
		if err != nil {
			return Result{}, err
		}
		result.Updated = n
	} else {
		if err := s.Recategorize(ctx, req.TransactionID, req.CategoryID); err != nil {
			return Result{}, err
		}
		result.Updated = 1
	}

	if req.Learn {
		if err := s.SaveMapping(ctx, mapping); err != nil {
			return result, fmt.Errorf("recategorized %d transactions but failed to learn mapping: %w", result.Updated, err)
		}
		result.Learned = &mapping
	}
	return result, nil
}
