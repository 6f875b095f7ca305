package sqlstore_test

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/FinanceTrackerAP/FinanceTracker/internal/database"
	"github.com/FinanceTrackerAP/FinanceTracker/internal/docstore"
	"github.com/FinanceTrackerAP/FinanceTracker/internal/docstore/docstoretest"
	"github.com/FinanceTrackerAP/FinanceTracker/internal/docstore/sqlstore"
)

func TestSQLiteStore(t *testing.T) {
	docstoretest.Run(t, func(t *testing.T) docstore.Store {
		path := filepath.Join(t.TempDir(), "docs.db")

		require.NoError(t, database.MigrateSQLite(path))

		db, err := database.OpenSQLite(path)
		require.NoError(t, err)
		t.Cleanup(func() { db.Close() })

		return sqlstore.NewSQLite(db)
	})
}

func TestPostgresStore(t *testing.T) {
	connStr := os.Getenv("FINANCETRACKER_TEST_POSTGRES")
	if connStr == "" {
		t.Skip("FINANCETRACKER_TEST_POSTGRES not set")
	}

	require.NoError(t, database.MigratePostgres(connStr))

	db, err := database.OpenPostgres(connStr)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	docstoretest.Run(t, func(t *testing.T) docstore.Store {
		truncate(t, db)
		return sqlstore.NewPostgres(db)
	})
}

func truncate(t *testing.T, db *sql.DB) {
	t.Helper()

	_, err := db.Exec(`TRUNCATE documents`)
	require.NoError(t, err)
}
