package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_EmptyPath(t *testing.T) {
	_, err := Open(Config{Path: "  "})
	assert.ErrorIs(t, err, ErrEmptyPath)
}

func TestOpen_CreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "data.db")

	db, err := Open(Config{Path: path})
	require.NoError(t, err)
	require.NoError(t, db.Exec("CREATE TABLE t (id INTEGER)").Error)
	require.NoError(t, Close(db))

	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestOpen_Memory(t *testing.T) {
	db, err := Open(Config{Path: MemoryPath})
	require.NoError(t, err)
	defer Close(db)

	require.NoError(t, db.Exec("CREATE TABLE t (id INTEGER)").Error)
	require.NoError(t, db.Exec("INSERT INTO t (id) VALUES (1)").Error)

	var n int64
	require.NoError(t, db.Raw("SELECT COUNT(*) FROM t").Scan(&n).Error)
	assert.Equal(t, int64(1), n)
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, ".openclaw-slack/data.db"), expandPath("~/.openclaw-slack/data.db"))
	assert.Equal(t, "/tmp/x.db", expandPath("/tmp/x.db"))
	assert.NoError(t, Close(nil))
}
