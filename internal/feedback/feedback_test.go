package feedback

import (
	"context"
	"errors"
	"testing"

	"sms-ledger/internal/logging"
	"sms-ledger/internal/models"
	"sms-ledger/internal/parsererror"
	"sms-ledger/internal/store"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seeded(t *testing.T) (*store.MockStore, []int64) {
	t.Helper()
	m := store.NewMockStore(
		models.Category{ID: 1, Name: "Uncategorized"},
		models.Category{ID: 2, Name: "Transport"},
		models.Category{ID: 3, Name: "Food"},
	)
	draft := func(description string, categoryID int64) models.Draft {
		return models.Draft{
			Amount: decimal.NewFromInt(10), Currency: "LKR", DateTime: "2024-01-15 14:30:00",
			Source: "1234", Description: description, CategoryID: categoryID,
		}
	}
	ids, err := m.InsertBatch(context.Background(), []models.Draft{
		draft("UBER", 1),
		draft("UBER", 1),
		draft("UBER", 3),
		draft("UBER EATS", 1),
	})
	require.NoError(t, err)
	return m, ids
}

func categoryOf(t *testing.T, m *store.MockStore, id int64) int64 {
	t.Helper()
	tx, err := m.Transaction(context.Background(), id)
	require.NoError(t, err)
	return tx.CategoryID
}

func TestRecategorize(t *testing.T) {
	m, ids := seeded(t)
	s := NewService(m, logging.NewMockLogger())
	ctx := context.Background()

	require.NoError(t, s.Recategorize(ctx, ids[0], 2))
	assert.Equal(t, int64(2), categoryOf(t, m, ids[0]))
	assert.Equal(t, int64(1), categoryOf(t, m, ids[1]))

	err := s.Recategorize(ctx, 999, 2)
	assert.True(t, errors.Is(err, parsererror.ErrNotFound))
}

func TestBulkRecategorize_ExactDescriptionAndCategory(t *testing.T) {
	m, ids := seeded(t)
	s := NewService(m, nil)

	n, err := s.BulkRecategorize(context.Background(), "UBER", 1, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	assert.Equal(t, int64(2), categoryOf(t, m, ids[0]))
	assert.Equal(t, int64(2), categoryOf(t, m, ids[1]))
	assert.Equal(t, int64(3), categoryOf(t, m, ids[2]), "different current category is untouched")
	assert.Equal(t, int64(1), categoryOf(t, m, ids[3]), "substring match is untouched")
	assert.Empty(t, m.Descriptions, "bulk update alone learns nothing")
}

func TestBulkRecategorize_Validation(t *testing.T) {
	m, _ := seeded(t)
	s := NewService(m, nil)

	_, err := s.BulkRecategorize(context.Background(), "", 1, 2)
	assert.True(t, parsererror.IsValidation(err))
	_, err = s.BulkRecategorize(context.Background(), "UBER", 0, 2)
	assert.True(t, parsererror.IsValidation(err))
}

func TestLearn(t *testing.T) {
	m, _ := seeded(t)
	s := NewService(m, nil)
	ctx := context.Background()

	mapping, err := s.Learn(ctx, " UBER ", 2)
	require.NoError(t, err)
	assert.Equal(t, models.DescriptionMapping{Description: "UBER", Category: "Transport"}, mapping)

	_, err = s.Learn(ctx, "UBER", 3)
	require.NoError(t, err)
	assert.Equal(t, []models.DescriptionMapping{{Description: "UBER", Category: "Food"}}, m.Descriptions)

	_, err = s.Learn(ctx, "UBER", 42)
	assert.True(t, errors.Is(err, parsererror.ErrNotFound))
}

func TestApply(t *testing.T) {
	ctx := context.Background()

	t.Run("single with learn takes description from the transaction", func(t *testing.T) {
		m, ids := seeded(t)
		s := NewService(m, nil)

		res, err := s.Apply(ctx, Request{TransactionID: ids[3], CategoryID: 3, Learn: true})
		require.NoError(t, err)
		assert.Equal(t, int64(1), res.Updated)
		require.NotNil(t, res.Learned)
		assert.Equal(t, "UBER EATS", res.Learned.Description)
		assert.Equal(t, "Food", res.Learned.Category)
	})

	t.Run("bulk defaults old category to the transaction's", func(t *testing.T) {
		m, ids := seeded(t)
		s := NewService(m, nil)

		res, err := s.Apply(ctx, Request{TransactionID: ids[0], CategoryID: 2, Bulk: true})
		require.NoError(t, err)
		assert.Equal(t, int64(2), res.Updated)
		assert.Nil(t, res.Learned)
	})

	t.Run("bulk with explicit description", func(t *testing.T) {
		m, _ := seeded(t)
		s := NewService(m, nil)

		res, err := s.Apply(ctx, Request{CategoryID: 2, Bulk: true, Description: "UBER", OldCategoryID: 3})
		require.NoError(t, err)
		assert.Equal(t, int64(1), res.Updated)
	})

	t.Run("missing category", func(t *testing.T) {
		m, ids := seeded(t)
		_, err := NewService(m, nil).Apply(ctx, Request{TransactionID: ids[0]})
		assert.True(t, parsererror.IsValidation(err))
	})

	t.Run("unlearnable mapping leaves the transaction alone", func(t *testing.T) {
		m, ids := seeded(t)
		_, err := NewService(m, nil).Apply(ctx, Request{TransactionID: ids[0], CategoryID: 2, Description: "  ", Learn: true})
		assert.True(t, parsererror.IsValidation(err))
		assert.Equal(t, int64(1), categoryOf(t, m, ids[0]))
		assert.Empty(t, m.Descriptions)
	})

	t.Run("learn failure is reported after the update", func(t *testing.T) {
		m, ids := seeded(t)
		m.UpsertError = errors.New("locked")
		res, err := NewService(m, nil).Apply(ctx, Request{TransactionID: ids[0], CategoryID: 2, Learn: true})
		assert.ErrorContains(t, err, "locked")
		assert.Equal(t, int64(1), res.Updated)
		assert.Equal(t, int64(2), categoryOf(t, m, ids[0]))
	})
}
