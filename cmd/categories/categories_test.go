package categories

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"sms-ledger/internal/config"
	"sms-ledger/internal/container"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddAndList(t *testing.T) {
	ctx := context.Background()
	cfg := config.Default()
	cfg.Log.Level = "error"
	cfg.Database.DSN = filepath.Join(t.TempDir(), "ledger.db")
	c, err := container.NewContainer(ctx, cfg)
	require.NoError(t, err)
	defer c.Close()

	var out bytes.Buffer
	require.NoError(t, Add(ctx, c, "Transport", &out))
	assert.Equal(t, "Created category 2 Transport\n", out.String())
	assert.Error(t, Add(ctx, c, "Transport", &out))

	out.Reset()
	require.NoError(t, List(ctx, c, &out))
	assert.Equal(t, "ID  CATEGORY\n2   Transport\n1   Uncategorized\n", out.String())
}
