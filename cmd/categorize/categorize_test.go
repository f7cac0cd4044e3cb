package categorize

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"sms-ledger/internal/config"
	"sms-ledger/internal/container"
	"sms-ledger/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) (*container.Container, int64) {
	t.Helper()
	ctx := context.Background()
	cfg := config.Default()
	cfg.Log.Level = "error"
	cfg.Database.DSN = filepath.Join(t.TempDir(), "ledger.db")
	c, err := container.NewContainer(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	transport, err := c.GetStore().CreateCategory(ctx, "Transport")
	require.NoError(t, err)

	for _, description := range []string{"UBER TRIP", "UBER TRIP", "UBER EATS"} {
		_, err := c.GetStore().CreateTransaction(ctx, models.Transaction{
			Amount: decimal.NewFromInt(5), Description: description, CategoryID: 1,
			DateTime: "2024-01-15 14:30:00", Source: "Visa",
		})
		require.NoError(t, err)
	}
	return c, transport.ID
}

func TestCategorizeCommand_Flags(t *testing.T) {
	assert.Equal(t, "categorize", Cmd.Use)
	for _, name := range []string{"id", "category-id", "bulk", "description", "old-category-id", "learn"} {
		assert.NotNil(t, Cmd.Flags().Lookup(name), name)
	}
}

func TestRunSingle(t *testing.T) {
	ctx := context.Background()
	c, transport := setup(t)

	var out bytes.Buffer
	require.NoError(t, Run(ctx, c, Options{TransactionID: 1, CategoryID: transport, Learn: true}, &out))
	assert.Contains(t, out.String(), "Updated 1 transactions")
	assert.Contains(t, out.String(), `Learned "UBER TRIP" -> Transport`)

	tx, err := c.GetStore().Transaction(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, transport, tx.CategoryID)

	mappings, err := c.GetStore().DescriptionMappings(ctx)
	require.NoError(t, err)
	assert.Equal(t, []models.DescriptionMapping{{Description: "UBER TRIP", Category: "Transport"}}, mappings)
}

func TestRunBulk(t *testing.T) {
	ctx := context.Background()
	c, transport := setup(t)

	var out bytes.Buffer
	require.NoError(t, Run(ctx, c, Options{TransactionID: 1, CategoryID: transport, Bulk: true}, &out))
	assert.Contains(t, out.String(), "Updated 2 transactions")

	eats, err := c.GetStore().Transaction(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, models.UncategorizedCategoryID, eats.CategoryID)
}

func TestRunMissingTransaction(t *testing.T) {
	c, transport := setup(t)
	err := Run(context.Background(), c, Options{TransactionID: 99, CategoryID: transport}, &bytes.Buffer{})
	assert.Error(t, err)
}
