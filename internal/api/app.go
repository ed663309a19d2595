package api

import (
	"context"

	"github.com/yourname/sleepdiary/internal"
	"github.com/yourname/sleepdiary/internal/service"
)

// DiaryService is what the handlers need from the service layer.
type DiaryService interface {
	List(ctx context.Context, userID int64) ([]internal.Diary, error)
	Create(ctx context.Context, userID int64, body []byte) (*internal.Diary, error)
	Update(ctx context.Context, userID, diaryID int64, body []byte) (*internal.Diary, error)
	Delete(ctx context.Context, userID, diaryID int64) error
}

type App interface {
	Logger() internal.Logger
	Diaries() DiaryService
}

type app struct {
	logger  internal.Logger
	diaries DiaryService
}

func NewApp(logger internal.Logger, diaries DiaryService) App {
	return &app{logger: logger, diaries: diaries}
}

func (a *app) Logger() internal.Logger { return a.logger }
func (a *app) Diaries() DiaryService   { return a.diaries }

var _ DiaryService = (*service.DiaryService)(nil)
