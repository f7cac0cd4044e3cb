package mappings

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
	require.NoError(t, Add(ctx, c, "uber", "Transport", &out))
	require.NoError(t, Add(ctx, c, "keells", "Groceries", &out))
	require.NoError(t, Add(ctx, c, "uber", "Taxi", &out))
	assert.Error(t, Add(ctx, c, " ", "Taxi", &out))

	out.Reset()
	require.NoError(t, List(ctx, c, &out))
	assert.Equal(t, "DESCRIPTION  CATEGORY\nuber         Taxi\nkeells       Groceries\n", out.String())
}

func TestMappingsCommand_Subcommands(t *testing.T) {
	names := []string{}
	for _, sub := range Cmd.Commands() {
		names = append(names, sub.Name())
	}
	assert.ElementsMatch(t, []string{"list", "add"}, names)
}
