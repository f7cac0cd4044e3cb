package root_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"sms-ledger/cmd/root"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	root.Init()
}

func TestRootCommand_Metadata(t *testing.T) {
	assert.Equal(t, "sms-ledger", root.Cmd.Use)
	assert.Contains(t, root.Cmd.Short, "bank SMS exports")
	assert.NotNil(t, root.Cmd.Run)
	assert.NotNil(t, root.Cmd.PersistentPreRunE)
	assert.NotNil(t, root.Cmd.PersistentPostRun)
}

func TestRootCommand_Flags(t *testing.T) {
	inputFlag := root.Cmd.PersistentFlags().Lookup("input")
	require.NotNil(t, inputFlag)
	assert.Equal(t, "i", inputFlag.Shorthand)

	outputFlag := root.Cmd.PersistentFlags().Lookup("output")
	require.NotNil(t, outputFlag)
	assert.Equal(t, "o", outputFlag.Shorthand)

	assert.NotNil(t, root.Cmd.PersistentFlags().Lookup("log-level"))
	assert.NotNil(t, root.Cmd.PersistentFlags().Lookup("db"))
}

func TestRequireInput(t *testing.T) {
	defer func() { root.SharedFlags.Input = "" }()

	root.SharedFlags.Input = ""
	_, err := root.RequireInput("import")
	assert.EqualError(t, err, "import: --input is required")

	root.SharedFlags.Input = filepath.Join(t.TempDir(), "missing.csv")
	_, err = root.RequireInput("import")
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "messages.csv")
	require.NoError(t, os.WriteFile(path, []byte("sms\n"), 0600))
	root.SharedFlags.Input = path
	got, err := root.RequireInput("import")
	require.NoError(t, err)
	assert.Equal(t, path, got)
}

func TestNewTable(t *testing.T) {
	var buf bytes.Buffer
	tw := root.NewTable(&buf, "ID", "NAME")
	_, _ = tw.Write([]byte("1\tUncategorized\n"))
	require.NoError(t, tw.Flush())
	assert.Equal(t, "ID  NAME\n1   Uncategorized\n", buf.String())
}
