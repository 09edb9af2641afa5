package audit_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/alovak/sagepay/audit"
)

func TestSQLiteStore(t *testing.T) {
	store, err := audit.NewSQLiteStore(filepath.Join(t.TempDir(), "audit.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	testStore(t, store)
}

func TestSQLiteStoreReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.db")

	store, err := audit.NewSQLiteStore(path)
	require.NoError(t, err)

	ctx := context.Background()
	_, err = store.RecordRequest(ctx, "code-r", requestParams("code-r"))
	require.NoError(t, err)
	require.NoError(t, store.Close())

	// Records survive a process restart.
	reopened, err := audit.NewSQLiteStore(path)
	require.NoError(t, err)
	t.Cleanup(func() { reopened.Close() })

	rec, err := reopened.FindByCode(ctx, "code-r")
	require.NoError(t, err)
	require.Equal(t, "code-r", rec.VendorTxCode)
	require.False(t, rec.ResponseRecorded)
}
