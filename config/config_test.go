package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	workdir := t.TempDir()
	t.Setenv("HOTELLEDGER_SYSTEM_WORKER_DIR", workdir)

	cfg := LoadConfig(filepath.Join(workdir, "missing.yml"))

	assert.Equal(t, workdir, cfg.System.Workdir)
	assert.Equal(t, 1816, cfg.Web.Port)
	assert.Equal(t, "gorm", cfg.Ledger.Backend)
	assert.Equal(t, 10, cfg.Ledger.DetailLimit)
	assert.DirExists(t, cfg.GetLogDir())
	assert.DirExists(t, cfg.GetDataDir())
	assert.Equal(t, filepath.Join(workdir, "data", "ledger.db"), cfg.GetBoltFile())
}

func TestLoadConfigFileAndEnv(t *testing.T) {
	workdir := t.TempDir()
	cfile := filepath.Join(workdir, "hotelledger.yml")
	content := `
system:
  workdir: ` + workdir + `
  location: UTC
web:
  port: 9000
database:
  type: sqlite
  name: ledger
ledger:
  backend: " BOLT "
  detail_limit: 0
`
	require.NoError(t, os.WriteFile(cfile, []byte(content), 0o600))
	t.Setenv("HOTELLEDGER_WEB_PORT", "9100")
	t.Setenv("HOTELLEDGER_LEDGER_SEED_PRODUCTS", "false")
	t.Setenv("HOTELLEDGER_SYSTEM_NODE_ID", "not-a-number")

	cfg := LoadConfig(cfile)

	assert.Equal(t, "UTC", cfg.System.Location)
	assert.Equal(t, 9100, cfg.Web.Port)
	assert.Equal(t, "sqlite", cfg.Database.Type)
	assert.Equal(t, "bolt", cfg.Ledger.Backend)
	assert.Equal(t, 10, cfg.Ledger.DetailLimit)
	assert.False(t, cfg.Ledger.SeedProducts)
	assert.Equal(t, int64(1), cfg.System.NodeId)
	// defaults not present in the file survive
	assert.Equal(t, "hotelledger", cfg.Auth.TokenIssuer)
}

func TestUsesDefaultSecret(t *testing.T) {
	workdir := t.TempDir()
	t.Setenv("HOTELLEDGER_SYSTEM_WORKER_DIR", workdir)

	cfg := LoadConfig(filepath.Join(workdir, "missing.yml"))
	assert.True(t, cfg.UsesDefaultSecret())

	t.Setenv("HOTELLEDGER_WEB_SECRET", "front-desk-secret")
	cfg = LoadConfig(filepath.Join(workdir, "missing.yml"))
	assert.False(t, cfg.UsesDefaultSecret())
	assert.Equal(t, "front-desk-secret", cfg.Web.Secret)
}
