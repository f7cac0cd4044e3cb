package store

import (
	"context"

	"sms-ledger/internal/models"
)

// Repository is the storage contract the ingest pipeline, the feedback loop and the
// HTTP layer depend on.
type Repository interface {
	Categories(ctx context.Context) ([]models.Category, error)
	CategoryByID(ctx context.Context, id int64) (models.Category, error)
	CreateCategory(ctx context.Context, name string) (models.Category, error)

	Transactions(ctx context.Context) ([]models.Transaction, error)
	Transaction(ctx context.Context, id int64) (models.Transaction, error)
	CreateTransaction(ctx context.Context, t models.Transaction) (models.Transaction, error)
	InsertBatch(ctx context.Context, drafts []models.Draft) ([]int64, error)
	UpdateTransaction(ctx context.Context, id int64, upd models.TransactionUpdate) error
	SetTransactionCategory(ctx context.Context, id, categoryID int64) error
	BulkRecategorize(ctx context.Context, description string, oldCategoryID, newCategoryID int64) (int64, error)

	DescriptionMappings(ctx context.Context) ([]models.DescriptionMapping, error)
	UpsertDescriptionMapping(ctx context.Context, m models.DescriptionMapping) error
	SourceMappings(ctx context.Context) ([]models.SourceMapping, error)
	UpsertSourceMapping(ctx context.Context, m models.SourceMapping) error
	ImportSeed(ctx context.Context, seed models.MappingSeed) (int, error)

	CreateReimbursement(ctx context.Context, r models.Reimbursement) (models.Reimbursement, error)
	MonthlyStats(ctx context.Context) ([]models.MonthlyStat, error)
}

var (
	_ Repository = (*Store)(nil)
	_ Repository = (*MockStore)(nil)
)
