// Package storagetest provides throwaway stores for tests.
package storagetest

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/yourname/sleepdiary/internal"
	"github.com/yourname/sleepdiary/internal/storage"
)

// NewSQLite opens a migrated SQLite store in a temporary directory. It is
// closed when the test ends.
func NewSQLite(t testing.TB) *storage.SQLiteStorage {
	t.Helper()
	s, err := storage.NewSQLiteStorage(context.Background(), filepath.Join(t.TempDir(), "diary.db"), internal.NewNopLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

// CreateUsers inserts n users and returns their ids.
func CreateUsers(t testing.TB, s storage.Store, n int) []int64 {
	t.Helper()
	ids := make([]int64, 0, n)
	err := storage.RunInTx(context.Background(), s, func(tx storage.Tx) error {
		for i := 0; i < n; i++ {
			id, err := tx.CreateUser(context.Background())
			if err != nil {
				return err
			}
			ids = append(ids, id)
		}
		return nil
	})
	require.NoError(t, err)
	return ids
}

// CreateDiary inserts d directly, bypassing validation.
func CreateDiary(t testing.TB, s storage.Store, d *internal.Diary) {
	t.Helper()
	err := storage.RunInTx(context.Background(), s, func(tx storage.Tx) error {
		return tx.CreateDiary(context.Background(), d)
	})
	require.NoError(t, err)
}
