package database

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLiteDSN(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"anonrelay.db", "anonrelay.db?_busy_timeout=5000&_txlock=immediate&_journal_mode=WAL"},
		{"anonrelay.db?cache=shared", "anonrelay.db?cache=shared&_busy_timeout=5000&_txlock=immediate&_journal_mode=WAL"},
		{"anonrelay.db?_busy_timeout=100", "anonrelay.db?_busy_timeout=100&_txlock=immediate&_journal_mode=WAL"},
		{":memory:", ":memory:?_busy_timeout=5000&_txlock=immediate"},
		{"file::memory:?cache=shared", "file::memory:?cache=shared&_busy_timeout=5000&_txlock=immediate"},
		{"a.db?_busy_timeout=1&_txlock=deferred&_journal_mode=DELETE", "a.db?_busy_timeout=1&_txlock=deferred&_journal_mode=DELETE"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, SQLiteDSN(tt.in))
		})
	}
}

func TestNewSQLiteFile(t *testing.T) {
	db, err := New("sqlite", filepath.Join(t.TempDir(), "relay.db"), Pool{}, false)
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	defer sqlDB.Close()

	require.NoError(t, Migrate(db))

	var mode string
	require.NoError(t, db.Raw("PRAGMA journal_mode").Scan(&mode).Error)
	assert.Equal(t, "wal", mode)

	var timeout int
	require.NoError(t, db.Raw("PRAGMA busy_timeout").Scan(&timeout).Error)
	assert.Equal(t, 5000, timeout)
}

func TestNewUnsupportedDriver(t *testing.T) {
	_, err := New("mysql", "dsn", Pool{}, false)
	assert.Error(t, err)
}
