package main

import (
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func stubMigrations(t *testing.T) *[]string {
	t.Helper()
	origUp, origDown, origStatus := migrateUp, migrateDown, migrateStatus
	t.Cleanup(func() {
		migrateUp, migrateDown, migrateStatus = origUp, origDown, origStatus
	})

	var calls []string
	migrateUp = func(*sql.DB, *zap.Logger) error { calls = append(calls, "up"); return nil }
	migrateDown = func(*sql.DB) error { calls = append(calls, "down"); return nil }
	migrateStatus = func(*sql.DB) error { calls = append(calls, "status"); return nil }
	return &calls
}

func TestRun(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	t.Run("Modes", func(t *testing.T) {
		calls := stubMigrations(t)

		for _, mode := range []string{"up", "down", "status"} {
			assert.NoError(t, run(db, mode))
		}
		assert.Equal(t, []string{"up", "down", "status"}, *calls)
	})

	t.Run("Unknown mode", func(t *testing.T) {
		calls := stubMigrations(t)

		err := run(db, "sideways")
		assert.EqualError(t, err, "unknown mode: sideways (use 'up', 'down' or 'status')")
		assert.Empty(t, *calls)
	})

	t.Run("Rollback error", func(t *testing.T) {
		stubMigrations(t)
		migrateDown = func(*sql.DB) error { return errors.New("no migrations") }

		assert.EqualError(t, run(db, "down"), "no migrations")
	})
}
