package audit_test

import (
	"context"
	"database/sql"
	"os"
	"testing"

	_ "github.com/lib/pq"
	"github.com/stretchr/testify/require"

	"github.com/alovak/sagepay/audit"
)

// TestPostgresStore runs the Store contract suite against a real database.
// Skips unless DB_DSN is provided.
func TestPostgresStore(t *testing.T) {
	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		t.Skip("DB_DSN not set; skipping DB integration test")
	}

	db, err := sql.Open("postgres", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.Ping())

	ctx := context.Background()
	store := audit.NewPostgresStore(db)
	require.NoError(t, store.EnsureSchema(ctx))

	// Work on a clean slate so reruns don't trip the uniqueness checks.
	_, err = db.ExecContext(ctx, `TRUNCATE sagepay_transactions`)
	require.NoError(t, err)

	testStore(t, store)
}
