package database

import (
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupAndClose(t *testing.T) {
	originalDB := DB
	t.Cleanup(func() { DB = originalDB })

	dsn := filepath.Join(t.TempDir(), "nested", "citeai.db")
	cfg := DefaultConfig()
	cfg.DSN = dsn

	require.NoError(t, Setup(cfg, logrus.New()))
	assert.NotNil(t, MustDB())
	assert.True(t, MustDB().Migrator().HasTable("generation_logs"))
	assert.FileExists(t, dsn)

	assert.NoError(t, Close())
}

func TestOpen_UnsupportedType(t *testing.T) {
	_, err := Open(&Config{Type: "oracle", DSN: "x"}, logrus.New())
	assert.Error(t, err)
}

func TestMustDB_Panics(t *testing.T) {
	originalDB := DB
	t.Cleanup(func() { DB = originalDB })

	DB = nil
	assert.PanicsWithValue(t, ErrNotInitialized, func() { MustDB() })
}

func TestEnsureDir(t *testing.T) {
	assert.NoError(t, ensureDir("file:memdb?mode=memory&cache=shared"))
	assert.NoError(t, ensureDir(":memory:"))
	assert.NoError(t, ensureDir("local.db"))

	dir := filepath.Join(t.TempDir(), "a", "b")
	require.NoError(t, ensureDir(filepath.Join(dir, "x.db")))
	assert.DirExists(t, dir)
}
