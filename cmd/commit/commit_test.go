package commit

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"sms-ledger/internal/config"
	"sms-ledger/internal/container"
	"sms-ledger/internal/ingest"
	"sms-ledger/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunCommitsSavedPreview(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Log.Level = "error"
	cfg.Database.DSN = filepath.Join(dir, "ledger.db")
	c, err := container.NewContainer(ctx, cfg)
	require.NoError(t, err)
	defer c.Close()

	p := ingest.NewPreview()
	for _, description := range []string{"UBER", "PICKME", "KEELLS"} {
		p.Drafts = append(p.Drafts, models.Draft{
			Amount: decimal.NewFromInt(100), Currency: "LKR", DateTime: "2024-01-15 14:30:00",
			Source: "Visa", Description: description, CategoryID: 1,
		})
	}
	path := filepath.Join(dir, "preview.yaml")
	require.NoError(t, p.Save(path))

	var out bytes.Buffer
	require.NoError(t, Run(ctx, c, path, "3,3", &out))
	assert.Contains(t, out.String(), "Committed 2 transactions")

	txs, err := c.GetStore().Transactions(ctx)
	require.NoError(t, err)
	assert.Len(t, txs, 2)

	assert.Error(t, Run(ctx, c, filepath.Join(dir, "missing.yaml"), "", &out))
}

func TestCommitCommand_Metadata(t *testing.T) {
	assert.Equal(t, "commit", Cmd.Use)
	assert.NotNil(t, Cmd.Flags().Lookup("drop"))
}
