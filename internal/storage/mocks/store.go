// Package mocks holds testify mocks of the storage interfaces.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/yourname/sleepdiary/internal"
	"github.com/yourname/sleepdiary/internal/storage"
)

type Store struct {
	mock.Mock
}

func (m *Store) Begin(ctx context.Context) (storage.Tx, error) {
	args := m.Called(ctx)
	tx, _ := args.Get(0).(storage.Tx)
	return tx, args.Error(1)
}

func (m *Store) Close() error {
	return m.Called().Error(0)
}

type Tx struct {
	mock.Mock
}

func (m *Tx) UserExists(ctx context.Context, userID int64) (bool, error) {
	args := m.Called(ctx, userID)
	return args.Bool(0), args.Error(1)
}

func (m *Tx) CreateUser(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *Tx) CountUsers(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *Tx) CreateDiary(ctx context.Context, d *internal.Diary) error {
	return m.Called(ctx, d).Error(0)
}

func (m *Tx) ListDiaries(ctx context.Context, userID int64) ([]internal.Diary, error) {
	args := m.Called(ctx, userID)
	list, _ := args.Get(0).([]internal.Diary)
	return list, args.Error(1)
}

func (m *Tx) FindDiary(ctx context.Context, diaryID, userID int64) (*internal.Diary, error) {
	args := m.Called(ctx, diaryID, userID)
	d, _ := args.Get(0).(*internal.Diary)
	return d, args.Error(1)
}

func (m *Tx) DiaryDateTaken(ctx context.Context, userID int64, date internal.Date, excludeID int64) (bool, error) {
	args := m.Called(ctx, userID, date, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *Tx) UpdateDiary(ctx context.Context, diaryID int64, patch internal.DiaryPatch) (int64, error) {
	args := m.Called(ctx, diaryID, patch)
	return args.Get(0).(int64), args.Error(1)
}

func (m *Tx) DeleteDiary(ctx context.Context, diaryID int64) (int64, error) {
	args := m.Called(ctx, diaryID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *Tx) Commit(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *Tx) Rollback(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

var (
	_ storage.Store = (*Store)(nil)
	_ storage.Tx    = (*Tx)(nil)
)
