package store

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"sms-ledger/internal/dateutils"
	"sms-ledger/internal/models"
	"sms-ledger/internal/parsererror"

	"github.com/shopspring/decimal"
)

// MockStore is an in-memory Repository for tests.
type MockStore struct {
	mu sync.Mutex

	CategoryList   []models.Category
	TransactionMap map[int64]models.Transaction
	Descriptions   []models.DescriptionMapping
	Sources        []models.SourceMapping
	Reimbursements []models.Reimbursement

	// Error flags for testing error conditions
	CategoriesError   error
	InsertBatchError  error
	UpdateError       error
	BulkError         error
	DescriptionsError error
	UpsertError       error

	// InsertBatchCalls counts InsertBatch invocations, failed ones included.
	InsertBatchCalls int

	nextID int64
}

// NewMockStore returns a MockStore seeded with the uncategorized category.
func NewMockStore(categories ...models.Category) *MockStore {
	if len(categories) == 0 {
		categories = []models.Category{{ID: models.UncategorizedCategoryID, Name: models.UncategorizedCategoryName}}
	}
	return &MockStore{
		CategoryList:   categories,
		TransactionMap: make(map[int64]models.Transaction),
	}
}

func (m *MockStore) id() int64 {
	m.nextID++
	return m.nextID
}

func (m *MockStore) categoryName(id int64) (string, bool) {
	for _, c := range m.CategoryList {
		if c.ID == id {
			return c.Name, true
		}
	}
	return "", false
}

// Categories returns the mock categories.
func (m *MockStore) Categories(_ context.Context) ([]models.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CategoriesError != nil {
		return nil, m.CategoriesError
	}
	return append([]models.Category(nil), m.CategoryList...), nil
}

// CategoryByID returns a mock category.
func (m *MockStore) CategoryByID(_ context.Context, id int64) (models.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	name, ok := m.categoryName(id)
	if !ok {
		return models.Category{}, fmt.Errorf("category %d: %w", id, parsererror.ErrNotFound)
	}
	return models.Category{ID: id, Name: name}, nil
}

// CreateCategory appends a category unless the name is taken.
func (m *MockStore) CreateCategory(_ context.Context, name string) (models.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if strings.TrimSpace(name) == "" {
		return models.Category{}, &parsererror.ValidationError{Field: "category", Reason: "is required"}
	}
	var maxID int64
	for _, c := range m.CategoryList {
		if c.Name == name {
			return models.Category{}, fmt.Errorf("create category %q: %w", name, parsererror.ErrAlreadyExists)
		}
		if c.ID > maxID {
			maxID = c.ID
		}
	}
	c := models.Category{ID: maxID + 1, Name: name}
	m.CategoryList = append(m.CategoryList, c)
	return c, nil
}

// Transactions returns the mock transactions newest first.
func (m *MockStore) Transactions(_ context.Context) ([]models.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	txs := make([]models.Transaction, 0, len(m.TransactionMap))
	for _, t := range m.TransactionMap {
		txs = append(txs, m.decorate(t))
	}
	sort.Slice(txs, func(i, j int) bool {
		if txs[i].DateTime != txs[j].DateTime {
			return txs[i].DateTime > txs[j].DateTime
		}
		return txs[i].ID > txs[j].ID
	})
	return txs, nil
}

// Transaction returns one mock transaction.
func (m *MockStore) Transaction(_ context.Context, id int64) (models.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.TransactionMap[id]
	if !ok {
		return models.Transaction{}, fmt.Errorf("transaction %d: %w", id, parsererror.ErrNotFound)
	}
	return m.decorate(t), nil
}

func (m *MockStore) decorate(t models.Transaction) models.Transaction {
	t.Category, _ = m.categoryName(t.CategoryID)
	t.ReimbursedAmount = decimal.Zero
	for _, r := range m.Reimbursements {
		if r.TransactionID == t.ID {
			t.ReimbursedAmount = t.ReimbursedAmount.Add(r.Amount)
		}
	}
	return t
}

// CreateTransaction stores one transaction.
func (m *MockStore) CreateTransaction(_ context.Context, t models.Transaction) (models.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.categoryName(t.CategoryID); !ok {
		return models.Transaction{}, &parsererror.ValidationError{Reason: "referenced row does not exist"}
	}
	if t.Currency == "" {
		t.Currency = models.DefaultCurrency
	}
	t.ID = m.id()
	m.TransactionMap[t.ID] = t
	return t, nil
}

// InsertBatch stores every draft or none of them.
func (m *MockStore) InsertBatch(_ context.Context, drafts []models.Draft) ([]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.InsertBatchCalls++
	if len(drafts) == 0 {
		return nil, parsererror.ErrEmptyBatch
	}
	if m.InsertBatchError != nil {
		return nil, m.InsertBatchError
	}
	for i, d := range drafts {
		if _, ok := m.categoryName(d.CategoryID); !ok {
			return nil, &parsererror.RowError{Row: i, Err: &parsererror.ValidationError{Reason: "referenced row does not exist"}}
		}
	}

	ids := make([]int64, len(drafts))
	for i, d := range drafts {
		t := d.Transaction()
		t.ID = m.id()
		m.TransactionMap[t.ID] = t
		ids[i] = t.ID
	}
	return ids, nil
}

// UpdateTransaction applies a partial update.
func (m *MockStore) UpdateTransaction(_ context.Context, id int64, upd models.TransactionUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.UpdateError != nil {
		return m.UpdateError
	}
	if upd.Empty() {
		return &parsererror.ValidationError{Reason: "no fields provided for update"}
	}
	t, ok := m.TransactionMap[id]
	if !ok {
		return fmt.Errorf("transaction %d: %w", id, parsererror.ErrNotFound)
	}
	if upd.CategoryID != nil {
		if _, known := m.categoryName(*upd.CategoryID); !known {
			return &parsererror.ValidationError{Reason: "referenced row does not exist"}
		}
		t.CategoryID = *upd.CategoryID
	}
	if upd.Description != nil {
		t.Description = *upd.Description
	}
	if upd.Amount != nil {
		t.Amount = *upd.Amount
	}
	if upd.DateTime != nil {
		t.DateTime = *upd.DateTime
	}
	if upd.Source != nil {
		t.Source = *upd.Source
	}
	m.TransactionMap[id] = t
	return nil
}

// SetTransactionCategory moves one transaction.
func (m *MockStore) SetTransactionCategory(ctx context.Context, id, categoryID int64) error {
	return m.UpdateTransaction(ctx, id, models.TransactionUpdate{CategoryID: &categoryID})
}

// BulkRecategorize moves transactions matching description and old category exactly.
func (m *MockStore) BulkRecategorize(_ context.Context, description string, oldCategoryID, newCategoryID int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.BulkError != nil {
		return 0, m.BulkError
	}
	var n int64
	for id, t := range m.TransactionMap {
		if t.Description == description && t.CategoryID == oldCategoryID {
			t.CategoryID = newCategoryID
			m.TransactionMap[id] = t
			n++
		}
	}
	return n, nil
}

// DescriptionMappings returns the mock description mappings.
func (m *MockStore) DescriptionMappings(_ context.Context) ([]models.DescriptionMapping, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.DescriptionsError != nil {
		return nil, m.DescriptionsError
	}
	return append([]models.DescriptionMapping(nil), m.Descriptions...), nil
}

// UpsertDescriptionMapping replaces or appends a description mapping.
func (m *MockStore) UpsertDescriptionMapping(_ context.Context, mapping models.DescriptionMapping) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.UpsertError != nil {
		return m.UpsertError
	}
	if err := validateDescriptionMapping(mapping); err != nil {
		return err
	}
	m.upsertDescription(mapping)
	return nil
}

func (m *MockStore) upsertDescription(mapping models.DescriptionMapping) {
	for i, existing := range m.Descriptions {
		if existing.Description == mapping.Description {
			m.Descriptions[i].Category = mapping.Category
			return
		}
	}
	m.Descriptions = append(m.Descriptions, mapping)
}

func (m *MockStore) upsertSource(mapping models.SourceMapping) {
	for i, existing := range m.Sources {
		if existing.Reference == mapping.Reference {
			m.Sources[i].Source = mapping.Source
			return
		}
	}
	m.Sources = append(m.Sources, mapping)
}

// SourceMappings returns the mock source mappings.
func (m *MockStore) SourceMappings(_ context.Context) ([]models.SourceMapping, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.SourceMapping(nil), m.Sources...), nil
}

// UpsertSourceMapping replaces or appends a source mapping.
func (m *MockStore) UpsertSourceMapping(_ context.Context, mapping models.SourceMapping) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := validateSourceMapping(mapping); err != nil {
		return err
	}
	m.upsertSource(mapping)
	return nil
}

// ImportSeed upserts every mapping of seed.
func (m *MockStore) ImportSeed(_ context.Context, seed models.MappingSeed) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, d := range seed.Descriptions {
		m.upsertDescription(d)
	}
	for _, s := range seed.Sources {
		m.upsertSource(s)
	}
	return len(seed.Descriptions) + len(seed.Sources), nil
}

// CreateReimbursement stores a reimbursement for an existing transaction.
func (m *MockStore) CreateReimbursement(_ context.Context, r models.Reimbursement) (models.Reimbursement, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.TransactionMap[r.TransactionID]; !ok {
		return models.Reimbursement{}, &parsererror.ValidationError{Reason: "referenced row does not exist"}
	}
	r.ID = m.id()
	m.Reimbursements = append(m.Reimbursements, r)
	return r, nil
}

// MonthlyStats aggregates the mock transactions.
func (m *MockStore) MonthlyStats(_ context.Context) ([]models.MonthlyStat, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	index := make(map[[2]string]*models.MonthlyStat)
	for _, t := range m.TransactionMap {
		t = m.decorate(t)
		key := [2]string{dateutils.MonthKey(t.DateTime), t.Category}
		st, ok := index[key]
		if !ok {
			st = &models.MonthlyStat{Month: key[0], Category: key[1]}
			index[key] = st
		}
		st.TotalSpent = st.TotalSpent.Add(t.Amount)
		st.TotalReimbursed = st.TotalReimbursed.Add(t.ReimbursedAmount)
	}

	stats := make([]models.MonthlyStat, 0, len(index))
	for _, st := range index {
		st.NetAmount = st.TotalSpent.Sub(st.TotalReimbursed)
		stats = append(stats, *st)
	}
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].Month != stats[j].Month {
			return stats[i].Month > stats[j].Month
		}
		return stats[i].Category < stats[j].Category
	})
	return stats, nil
}
