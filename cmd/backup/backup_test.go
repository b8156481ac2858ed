package backup_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"uhb/trade-ledger/cmd/backup"
	"uhb/trade-ledger/cmd/cmdtest"
	"uhb/trade-ledger/internal/backing"
	"uhb/trade-ledger/internal/models"
)

func exportTo(t *testing.T, dir string) string {
	t.Helper()
	out, err := cmdtest.Run(t, backup.NewCmd(), "export", "--dir", dir)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(out, "Backup written to "))
	return strings.TrimSpace(strings.TrimPrefix(out, "Backup written to "))
}

func TestExportImportRoundTrip(t *testing.T) {
	dir := t.TempDir()

	source := cmdtest.UseMemory(t)
	require.NoError(t, source.GetStore().AddTransaction(models.Transaction{
		ID: 5, Date: "2024-03-01", Direction: models.Buy, Name: "Anand",
		Product: "Dust", Size: "Default", Qty: decimal.NewFromInt(100),
	}))
	path := exportTo(t, dir)
	assert.Regexp(t, `UHB_Backup_\d{4}-\d{2}-\d{2}\.json$`, path)

	target := cmdtest.UseMemory(t)
	out, err := cmdtest.Run(t, backup.NewCmd(), "import", path, "--yes")
	require.NoError(t, err)
	assert.Contains(t, out, "Data restored")
	assert.Equal(t, "100", target.GetStore().CalculateStock("Dust", "Default").String())
}

func TestImport_AsksForConfirmation(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "backup.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"udt_traders_v2":"{\"Anand\":{\"contact\":\"1\",\"type\":\"Dealer\"}}"}`), 0600))

	c := cmdtest.UseMemory(t)

	out, err := cmdtest.RunWithInput(t, backup.NewCmd(), "n\n", "import", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Import cancelled")
	assert.NotContains(t, c.GetStore().Traders(), "Anand")

	out, err = cmdtest.RunWithInput(t, backup.NewCmd(), "yes\n", "import", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Data restored")
	assert.Contains(t, c.GetStore().Traders(), "Anand")
}

func TestImport_CorruptFileLeavesDataAlone(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"udt_traders_v2": 42}`), 0600))

	mem := backing.NewMemory(0)
	c := cmdtest.UseBackend(t, mem)
	require.NoError(t, c.GetStore().AddTrader("Ravi", models.Trader{Contact: "1", Type: models.Customer}))

	_, err := cmdtest.Run(t, backup.NewCmd(), "import", path, "--yes")
	require.Error(t, err)
	_, ok, err := mem.Get(backing.KeyTraders)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Contains(t, c.GetStore().Traders(), "Ravi")
}

func TestReset(t *testing.T) {
	mem := backing.NewMemory(0)
	c := cmdtest.UseBackend(t, mem)
	require.NoError(t, c.GetStore().AddTrader("Ravi", models.Trader{Contact: "1", Type: models.Customer}))

	out, err := cmdtest.RunWithInput(t, backup.NewCmd(), "\n", "reset")
	require.NoError(t, err)
	assert.Contains(t, out, "Reset cancelled")

	out, err = cmdtest.Run(t, backup.NewCmd(), "reset", "-y")
	require.NoError(t, err)
	assert.Contains(t, out, "All data deleted")

	keys, err := mem.Keys()
	require.NoError(t, err)
	assert.Empty(t, keys)
	assert.NotContains(t, c.GetStore().Traders(), "Ravi")
	assert.Contains(t, c.GetStore().Traders(), models.WalkInTrader)

	require.NoError(t, c.Close())
	keys, err = mem.Keys()
	require.NoError(t, err)
	assert.Empty(t, keys, "closing after a reset writes nothing back")
}
