package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourname/sleepdiary/internal"
)

func TestDiaryDateTakenQuery(t *testing.T) {
	date, err := internal.ParseDate("2024-01-01")
	require.NoError(t, err)

	query, args, err := postgresDialect.diaryDateTaken(7, date, 0)
	require.NoError(t, err)
	assert.Equal(t, "SELECT COUNT(*) FROM diaries WHERE date = $1 AND user_id = $2", query)
	assert.Equal(t, []any{date.Time(), int64(7)}, args)

	query, args, err = sqliteDialect.diaryDateTaken(7, date, 3)
	require.NoError(t, err)
	assert.Equal(t, "SELECT COUNT(*) FROM diaries WHERE date = ? AND user_id = ? AND id <> ?", query)
	assert.Equal(t, []any{"2024-01-01", int64(7), int64(3)}, args)
}

func TestUpdateDiaryQuery(t *testing.T) {
	quality := 4
	query, args, err := sqliteDialect.updateDiary(9, internal.DiaryPatch{SleepQuality: &quality})
	require.NoError(t, err)
	assert.Equal(t, "UPDATE diaries SET sleep_quality = ? WHERE id = ?", query)
	assert.Equal(t, []any{4, int64(9)}, args)

	_, _, err = sqliteDialect.updateDiary(9, internal.DiaryPatch{})
	assert.Error(t, err)
}
