package common

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"

	"sms-ledger/cmd/root"
	"sms-ledger/internal/config"
	"sms-ledger/internal/container"
	"sms-ledger/internal/ingest"
	"sms-ledger/internal/models"
	"sms-ledger/internal/parsererror"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newContainer(t *testing.T) *container.Container {
	t.Helper()
	cfg := config.Default()
	cfg.Log.Level = "error"
	cfg.Database.DSN = filepath.Join(t.TempDir(), "ledger.db")
	c, err := container.NewContainer(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func draft(description string) models.Draft {
	return models.Draft{
		Amount:      decimal.RequireFromString("12.50"),
		Currency:    "LKR",
		DateTime:    "2024-01-15 14:30:00",
		Source:      "Cash",
		Description: description,
		CategoryID:  models.UncategorizedCategoryID,
	}
}

func TestParsePositions(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []int
		fails bool
	}{
		{name: "empty", input: "", want: nil},
		{name: "single", input: "1", want: []int{0}},
		{name: "list with spaces", input: " 3, 1 ,2", want: []int{2, 0, 1}},
		{name: "trailing comma", input: "2,", want: []int{1}},
		{name: "zero", input: "0", fails: true},
		{name: "word", input: "a", fails: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParsePositions(tt.input)
			if tt.fails {
				assert.True(t, parsererror.IsValidation(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPrintPreview(t *testing.T) {
	p := ingest.NewPreview()
	p.Counters = ingest.Counters{TotalRows: 2, NonEmpty: 2, Matched: 1}
	p.Drafts = []models.Draft{draft("KEELLS")}

	var buf bytes.Buffer
	require.NoError(t, PrintPreview(&buf, p))
	out := buf.String()
	assert.Contains(t, out, "2 rows, 2 non-empty, 1 matched (ready)")
	assert.Contains(t, out, "LKR 12.50")
	assert.Contains(t, out, "KEELLS")
}

func TestCommitPreview(t *testing.T) {
	ctx := context.Background()
	c := newContainer(t)

	p := ingest.NewPreview()
	p.Drafts = []models.Draft{draft("A"), draft("B"), draft("C")}

	ids, err := CommitPreview(ctx, c, p, []int{1})
	require.NoError(t, err)
	assert.Len(t, ids, 2)

	txs, err := c.GetStore().Transactions(ctx)
	require.NoError(t, err)
	var descriptions []string
	for _, tx := range txs {
		descriptions = append(descriptions, tx.Description)
	}
	assert.ElementsMatch(t, []string{"A", "C"}, descriptions)

	_, err = CommitPreview(ctx, c, ingest.NewPreview(), nil)
	assert.True(t, errors.Is(err, parsererror.ErrEmptyBatch))

	_, err = CommitPreview(ctx, c, p, []int{9})
	assert.True(t, parsererror.IsValidation(err))
}

func TestContainerRequiresRoot(t *testing.T) {
	root.AppContainer = nil
	_, err := Container()
	assert.Error(t, err)
}
