package sources

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"sms-ledger/internal/config"
	"sms-ledger/internal/container"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const seed = `descriptions:
  - {description: uber, category: Transport}
sources:
  - {reference: "1234", source: DFCC Visa}
  - {reference: "4321", source: Sampath Master}
`

func TestImportAndList(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Log.Level = "error"
	cfg.Database.DSN = filepath.Join(dir, "ledger.db")
	c, err := container.NewContainer(ctx, cfg)
	require.NoError(t, err)
	defer c.Close()

	path := filepath.Join(dir, "seeds.yaml")
	require.NoError(t, os.WriteFile(path, []byte(seed), 0600))

	var out bytes.Buffer
	require.NoError(t, Import(ctx, c, path, &out))
	assert.Contains(t, out.String(), "Imported 3 mappings")

	out.Reset()
	require.NoError(t, List(ctx, c, &out))
	assert.Contains(t, out.String(), "1234       DFCC Visa")
	assert.Contains(t, out.String(), "Sampath Master")

	assert.Error(t, Import(ctx, c, filepath.Join(dir, "missing.yaml"), &out))
}
