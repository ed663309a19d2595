package storage

import (
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/yourname/sleepdiary/internal"
)

const (
	usersTable   = "users"
	diariesTable = "diaries"

	insertUserSQL = `INSERT INTO users DEFAULT VALUES RETURNING id`
)

var diaryColumns = []string{"id", "user_id", "date", "time_into_bed", "time_out_of_bed", "sleep_quality"}

// dialect builds the diary queries for one backend: its placeholder style and
// how dates and timestamps are bound.
type dialect struct {
	placeholder sq.PlaceholderFormat
	date        func(internal.Date) any
	timestamp   func(time.Time) any
}

func (d dialect) countUsers() (string, []any, error) {
	return sq.Select("COUNT(*)").
		From(usersTable).
		PlaceholderFormat(d.placeholder).
		ToSql()
}

func (d dialect) userExists(userID int64) (string, []any, error) {
	return sq.Select("COUNT(*)").
		From(usersTable).
		Where(sq.Eq{"id": userID}).
		PlaceholderFormat(d.placeholder).
		ToSql()
}

func (d dialect) insertDiary(diary *internal.Diary) (string, []any, error) {
	return sq.Insert(diariesTable).
		Columns("user_id", "date", "time_into_bed", "time_out_of_bed", "sleep_quality").
		Values(
			diary.UserID,
			d.date(diary.Date),
			d.timestamp(diary.TimeIntoBed),
			d.timestamp(diary.TimeOutOfBed),
			diary.SleepQuality,
		).
		Suffix("RETURNING id").
		PlaceholderFormat(d.placeholder).
		ToSql()
}

func (d dialect) listDiaries(userID int64) (string, []any, error) {
	return sq.Select(diaryColumns...).
		From(diariesTable).
		Where(sq.Eq{"user_id": userID}).
		OrderBy("date", "id").
		PlaceholderFormat(d.placeholder).
		ToSql()
}

func (d dialect) findDiary(diaryID, userID int64) (string, []any, error) {
	return sq.Select(diaryColumns...).
		From(diariesTable).
		Where(sq.Eq{"id": diaryID, "user_id": userID}).
		PlaceholderFormat(d.placeholder).
		ToSql()
}

func (d dialect) diaryDateTaken(userID int64, date internal.Date, excludeID int64) (string, []any, error) {
	q := sq.Select("COUNT(*)").
		From(diariesTable).
		Where(sq.Eq{"user_id": userID, "date": d.date(date)})
	if excludeID != 0 {
		q = q.Where(sq.NotEq{"id": excludeID})
	}
	return q.PlaceholderFormat(d.placeholder).ToSql()
}

// updateDiary requires a non-empty patch.
func (d dialect) updateDiary(diaryID int64, patch internal.DiaryPatch) (string, []any, error) {
	set := make(map[string]any, 4)
	if patch.Date != nil {
		set["date"] = d.date(*patch.Date)
	}
	if patch.TimeIntoBed != nil {
		set["time_into_bed"] = d.timestamp(*patch.TimeIntoBed)
	}
	if patch.TimeOutOfBed != nil {
		set["time_out_of_bed"] = d.timestamp(*patch.TimeOutOfBed)
	}
	if patch.SleepQuality != nil {
		set["sleep_quality"] = *patch.SleepQuality
	}
	return sq.Update(diariesTable).
		SetMap(set).
		Where(sq.Eq{"id": diaryID}).
		PlaceholderFormat(d.placeholder).
		ToSql()
}

func (d dialect) deleteDiary(diaryID int64) (string, []any, error) {
	return sq.Delete(diariesTable).
		Where(sq.Eq{"id": diaryID}).
		PlaceholderFormat(d.placeholder).
		ToSql()
}
