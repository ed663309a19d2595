package storage

import (
	"context"

	"github.com/yourname/sleepdiary/internal"
)

// Store hands out request-scoped transactions.
type Store interface {
	Begin(ctx context.Context) (Tx, error)
	Close() error
}

// Tx is a single unit of work against the store. Every read and write of one
// request goes through the same Tx.
type Tx interface {
	UserExists(ctx context.Context, userID int64) (bool, error)
	CreateUser(ctx context.Context) (int64, error)
	CountUsers(ctx context.Context) (int64, error)

	// CreateDiary inserts d and sets d.ID.
	CreateDiary(ctx context.Context, d *internal.Diary) error
	ListDiaries(ctx context.Context, userID int64) ([]internal.Diary, error)
	// FindDiary returns ErrNotFound unless a diary with diaryID is owned by userID.
	FindDiary(ctx context.Context, diaryID, userID int64) (*internal.Diary, error)
	// DiaryDateTaken reports whether another diary of userID exists on date.
	// excludeID is ignored when zero.
	DiaryDateTaken(ctx context.Context, userID int64, date internal.Date, excludeID int64) (bool, error)
	UpdateDiary(ctx context.Context, diaryID int64, patch internal.DiaryPatch) (int64, error)
	DeleteDiary(ctx context.Context, diaryID int64) (int64, error)

	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}
